package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ridoystarlord/schemaplan/schema"
)

// CircularDependencyError is returned by ordering and leveling queries when
// the foreign key graph contains a cycle. Cycle holds the table names along
// the cycle, with the first name repeated at the end to show closure.
type CircularDependencyError struct {
	Cycle []string
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("circular dependency detected: %s", strings.Join(e.Cycle, " -> "))
}

// DependencyGraph tracks foreign key relationships between tables and answers
// ordering questions for DDL: which tables must exist before which, what can
// be dropped first, and which tables are independent of each other.
//
// Tables are registered incrementally via AddTable; the graph is never torn
// down. Callers that want a smaller graph build a fresh one from the subset.
type DependencyGraph struct {
	tables map[string]schema.TableRef
	order  []string // registration order, keeps query output deterministic

	dependencies map[string]map[string]struct{} // table -> tables it depends on
	dependents   map[string]map[string]struct{} // table -> tables that depend on it

	levels map[string]int // memoized by DependencyLevels, reset on AddTable
}

func New() *DependencyGraph {
	return &DependencyGraph{
		tables:       map[string]schema.TableRef{},
		dependencies: map[string]map[string]struct{}{},
		dependents:   map[string]map[string]struct{}{},
	}
}

// AddTable registers a table and records one edge per foreign key target.
// Referenced tables are registered as they are encountered, so adding only
// the referencing side of a relationship still yields a complete graph.
// Multiple foreign keys to the same target collapse into a single edge.
func (g *DependencyGraph) AddTable(ref schema.TableRef) {
	name := g.register(ref)

	for _, col := range schema.ForeignKeys(ref) {
		target := g.register(col.ForeignKey.References)
		g.addEdge(name, target)
	}
}

// AddTables registers every table in refs. The resulting graph does not
// depend on the order of refs.
func (g *DependencyGraph) AddTables(refs []schema.TableRef) {
	for _, ref := range refs {
		g.AddTable(ref)
	}
}

func (g *DependencyGraph) register(ref schema.TableRef) string {
	name := ref.TableName()
	if _, ok := g.tables[name]; !ok {
		g.tables[name] = ref
		g.order = append(g.order, name)
		g.levels = nil
	}
	return name
}

func (g *DependencyGraph) addEdge(from, to string) {
	if g.dependencies[from] == nil {
		g.dependencies[from] = map[string]struct{}{}
	}
	if _, ok := g.dependencies[from][to]; ok {
		return
	}
	g.dependencies[from][to] = struct{}{}
	if g.dependents[to] == nil {
		g.dependents[to] = map[string]struct{}{}
	}
	g.dependents[to][from] = struct{}{}
	g.levels = nil
}

// Tables returns all registered tables in registration order.
func (g *DependencyGraph) Tables() []schema.TableRef {
	refs := make([]schema.TableRef, 0, len(g.order))
	for _, name := range g.order {
		refs = append(refs, g.tables[name])
	}
	return refs
}

// Contains reports whether a table with the given name is registered.
func (g *DependencyGraph) Contains(name string) bool {
	_, ok := g.tables[name]
	return ok
}

// Dependencies returns the tables ref depends on through foreign keys.
// Unregistered and dependency-free tables both yield an empty slice.
func (g *DependencyGraph) Dependencies(ref schema.TableRef) []schema.TableRef {
	return g.resolve(g.dependencies[ref.TableName()])
}

// Dependents returns the tables that reference ref through foreign keys.
func (g *DependencyGraph) Dependents(ref schema.TableRef) []schema.TableRef {
	return g.resolve(g.dependents[ref.TableName()])
}

func (g *DependencyGraph) resolve(names map[string]struct{}) []schema.TableRef {
	refs := make([]schema.TableRef, 0, len(names))
	for _, name := range g.order {
		if _, ok := names[name]; ok {
			refs = append(refs, g.tables[name])
		}
	}
	return refs
}

// CreationOrder returns all registered tables ordered so that every table
// appears strictly after everything it depends on. The order is stable for a
// fixed graph: ties break by registration order. Returns
// *CircularDependencyError when the graph cannot be ordered.
func (g *DependencyGraph) CreationOrder() ([]schema.TableRef, error) {
	names, err := g.topologicalSort()
	if err != nil {
		return nil, err
	}
	refs := make([]schema.TableRef, len(names))
	for i, name := range names {
		refs[i] = g.tables[name]
	}
	return refs, nil
}

// DeletionOrder is the exact reverse of CreationOrder: tables with no
// dependents drop first.
func (g *DependencyGraph) DeletionOrder() ([]schema.TableRef, error) {
	refs, err := g.CreationOrder()
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(refs)-1; i < j; i, j = i+1, j-1 {
		refs[i], refs[j] = refs[j], refs[i]
	}
	return refs, nil
}

// topologicalSort runs Kahn's algorithm over the dependency edges, seeded
// with every zero-dependency table in registration order.
func (g *DependencyGraph) topologicalSort() ([]string, error) {
	if cycle := g.detectCycle(); cycle != nil {
		return nil, &CircularDependencyError{Cycle: cycle}
	}

	inDegree := make(map[string]int, len(g.order))
	var queue []string
	for _, name := range g.order {
		inDegree[name] = len(g.dependencies[name])
		if inDegree[name] == 0 {
			queue = append(queue, name)
		}
	}

	result := make([]string, 0, len(g.order))
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		result = append(result, name)

		for _, dep := range g.order {
			if _, ok := g.dependents[name][dep]; !ok {
				continue
			}
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if len(result) != len(g.order) {
		// Unreachable while detectCycle and the indices agree.
		return nil, &CircularDependencyError{Cycle: []string{"unknown"}}
	}
	return result, nil
}

const (
	white = iota // unvisited
	gray         // on the active path
	black        // fully explored
)

type frame struct {
	name string
	deps []string
	next int
}

// detectCycle walks the dependency edges depth-first with an explicit stack
// and three-color marking, so arbitrarily deep graphs cannot overflow the
// call stack. Returns the cycle path (first table repeated at the end) or
// nil when the graph is acyclic.
func (g *DependencyGraph) detectCycle() []string {
	colors := make(map[string]int, len(g.order))

	for _, start := range g.order {
		if colors[start] != white {
			continue
		}

		stack := []*frame{{name: start, deps: g.sortedDependencies(start)}}
		colors[start] = gray
		path := []string{start}

		for len(stack) > 0 {
			top := stack[len(stack)-1]
			if top.next < len(top.deps) {
				next := top.deps[top.next]
				top.next++
				switch colors[next] {
				case white:
					colors[next] = gray
					path = append(path, next)
					stack = append(stack, &frame{name: next, deps: g.sortedDependencies(next)})
				case gray:
					for i, name := range path {
						if name == next {
							cycle := append([]string{}, path[i:]...)
							return append(cycle, next)
						}
					}
				}
				continue
			}
			colors[top.name] = black
			stack = stack[:len(stack)-1]
			path = path[:len(path)-1]
		}
	}
	return nil
}

func (g *DependencyGraph) sortedDependencies(name string) []string {
	deps := make([]string, 0, len(g.dependencies[name]))
	for dep := range g.dependencies[name] {
		deps = append(deps, dep)
	}
	sort.Strings(deps)
	return deps
}

// DependencyLevels partitions the registered tables into levels: level 0 has
// no dependencies, and every other table sits one level above its deepest
// dependency. Tables in the same level share no edge and are safe to process
// concurrently; levels run low-to-high for creation and high-to-low for
// deletion. Fails with *CircularDependencyError on a cyclic graph rather
// than looping forever.
func (g *DependencyGraph) DependencyLevels() (map[int][]schema.TableRef, error) {
	if g.levels == nil {
		ordered, err := g.topologicalSort()
		if err != nil {
			return nil, err
		}
		levels := make(map[string]int, len(ordered))
		for _, name := range ordered {
			level := 0
			for dep := range g.dependencies[name] {
				if levels[dep]+1 > level {
					level = levels[dep] + 1
				}
			}
			levels[name] = level
		}
		g.levels = levels
	}

	grouped := map[int][]schema.TableRef{}
	for _, name := range g.order {
		level := g.levels[name]
		grouped[level] = append(grouped[level], g.tables[name])
	}
	return grouped, nil
}

// Visualize renders the graph as text: one line per table with its
// dependencies, then the level partitioning. Output is deterministic for a
// fixed graph. Debugging aid only.
func (g *DependencyGraph) Visualize() string {
	var b strings.Builder
	b.WriteString("Dependency Graph:\n")
	b.WriteString(strings.Repeat("=", 50) + "\n")

	names := append([]string{}, g.order...)
	sort.Strings(names)
	for _, name := range names {
		deps := g.sortedDependencies(name)
		if len(deps) > 0 {
			fmt.Fprintf(&b, "%s -> %s\n", name, strings.Join(deps, ", "))
		} else {
			fmt.Fprintf(&b, "%s (no dependencies)\n", name)
		}
	}

	b.WriteString("\nDependency Levels:\n")
	b.WriteString(strings.Repeat("-", 50) + "\n")
	levels, err := g.DependencyLevels()
	if err != nil {
		fmt.Fprintf(&b, "unavailable: %v\n", err)
		return b.String()
	}
	nums := make([]int, 0, len(levels))
	for level := range levels {
		nums = append(nums, level)
	}
	sort.Ints(nums)
	for _, level := range nums {
		tableNames := make([]string, 0, len(levels[level]))
		for _, ref := range levels[level] {
			tableNames = append(tableNames, ref.TableName())
		}
		sort.Strings(tableNames)
		fmt.Fprintf(&b, "Level %d: %s\n", level, strings.Join(tableNames, ", "))
	}
	return b.String()
}
