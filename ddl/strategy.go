package ddl

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ridoystarlord/schemaplan/adapter"
	"github.com/ridoystarlord/schemaplan/graph"
	"github.com/ridoystarlord/schemaplan/schema"
)

// Callback is invoked synchronously after every attempted operation. err is
// nil when the operation succeeded.
type Callback func(op Operation, ok bool, err error)

// Strategy plans and executes DDL against an adapter in dependency order.
// Planning is pure; nothing touches the adapter until an Execute method runs.
// There is no rollback: an operation that succeeded stays applied even when
// a later one in the same batch fails.
type Strategy struct {
	adapter adapter.Adapter
	graph   *graph.DependencyGraph

	mu       sync.Mutex
	executed []Operation
}

func NewStrategy(a adapter.Adapter) *Strategy {
	return &Strategy{
		adapter: a,
		graph:   graph.New(),
	}
}

// RegisterTables adds tables to the strategy's dependency graph.
func (s *Strategy) RegisterTables(refs []schema.TableRef) {
	s.graph.AddTables(refs)
}

// Graph exposes the owned dependency graph for introspection.
func (s *Strategy) Graph() *graph.DependencyGraph {
	return s.graph
}

// PlanCreateAll returns CREATE TABLE operations for every registered table,
// ordered so dependencies come first. Pure: inspect, log or diff the plan
// before committing to it.
func (s *Strategy) PlanCreateAll() ([]Operation, error) {
	order, err := s.graph.CreationOrder()
	if err != nil {
		return nil, err
	}
	ops := make([]Operation, len(order))
	for i, ref := range order {
		ops[i] = Operation{Type: CreateTable, Table: ref}
	}
	return ops, nil
}

// PlanDropAll returns DROP TABLE operations in reverse dependency order.
func (s *Strategy) PlanDropAll() ([]Operation, error) {
	order, err := s.graph.DeletionOrder()
	if err != nil {
		return nil, err
	}
	ops := make([]Operation, len(order))
	for i, ref := range order {
		ops[i] = Operation{Type: DropTable, Table: ref}
	}
	return ops, nil
}

// ExecuteOperation runs a single operation against the adapter. Errors come
// back unchanged; batching policy lives in ExecuteOperations.
func (s *Strategy) ExecuteOperation(ctx context.Context, op Operation) error {
	var err error
	switch op.Type {
	case CreateTable:
		err = s.adapter.CreateTable(ctx, op.Table)
	case DropTable:
		err = s.adapter.DropTable(ctx, op.Table)
	default:
		err = fmt.Errorf("operation %s not implemented", op.Type)
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.executed = append(s.executed, op)
	s.mu.Unlock()
	return nil
}

// ExecuteOperations runs ops in order. With stopOnError the batch halts at
// the first failure, leaving the remainder unattempted; otherwise it keeps
// going and accounts for every operation. Every failure lands in the
// Result's error list either way. cb may be nil.
func (s *Strategy) ExecuteOperations(ctx context.Context, ops []Operation, stopOnError bool, cb Callback) Result {
	result := Result{Total: len(ops)}

	for _, op := range ops {
		err := s.ExecuteOperation(ctx, op)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, OperationError{
				Operation: op.String(),
				Error:     err.Error(),
				Kind:      errorKind(err),
			})
			if cb != nil {
				cb(op, false, err)
			}
			if stopOnError {
				break
			}
			continue
		}

		result.Successful++
		if cb != nil {
			cb(op, true, nil)
		}
	}
	return result
}

// CreateAll plans and executes creation of every registered table.
func (s *Strategy) CreateAll(ctx context.Context, stopOnError bool) (Result, error) {
	ops, err := s.PlanCreateAll()
	if err != nil {
		return Result{}, err
	}
	return s.ExecuteOperations(ctx, ops, stopOnError, nil), nil
}

// DropAll plans and executes deletion of every registered table.
func (s *Strategy) DropAll(ctx context.Context, stopOnError bool) (Result, error) {
	ops, err := s.PlanDropAll()
	if err != nil {
		return Result{}, err
	}
	return s.ExecuteOperations(ctx, ops, stopOnError, nil), nil
}

// Executed returns the operations that have completed successfully on this
// strategy, in completion order.
func (s *Strategy) Executed() []Operation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Operation{}, s.executed...)
}

// ParallelGroups partitions ops by dependency level. Operations inside one
// group are mutually independent; groups are ordered low level to high, so
// creation plans run groups front to back and deletion plans run them back
// to front. Grouping only — dispatching workers is the caller's choice (see
// GroupExecutor).
func (s *Strategy) ParallelGroups(ops []Operation) ([][]Operation, error) {
	levels, err := s.graph.DependencyLevels()
	if err != nil {
		return nil, err
	}

	maxLevel := -1
	levelOf := map[string]int{}
	for level, refs := range levels {
		for _, ref := range refs {
			levelOf[ref.TableName()] = level
		}
		if level > maxLevel {
			maxLevel = level
		}
	}

	var groups [][]Operation
	for level := 0; level <= maxLevel; level++ {
		var group []Operation
		for _, op := range ops {
			if l, ok := levelOf[op.Table.TableName()]; ok && l == level {
				group = append(group, op)
			}
		}
		if len(group) > 0 {
			groups = append(groups, group)
		}
	}
	return groups, nil
}

// ValidateOperations audits a plan and returns human-readable issues:
// duplicate operations, operations on unregistered tables, and drops of
// tables that still have dependents. Advisory only — ExecuteOperations does
// not call this.
func (s *Strategy) ValidateOperations(ops []Operation) []string {
	var issues []string

	seen := map[string]bool{}
	for _, op := range ops {
		key := string(op.Type) + ":" + op.Table.TableName()
		if seen[key] {
			issues = append(issues, fmt.Sprintf("duplicate operation: %s", op))
		}
		seen[key] = true
	}

	for _, op := range ops {
		if !s.graph.Contains(op.Table.TableName()) {
			issues = append(issues, fmt.Sprintf("operation on unregistered table: %s", op))
		}
	}

	for _, op := range ops {
		if op.Type != DropTable {
			continue
		}
		dependents := s.graph.Dependents(op.Table)
		if len(dependents) == 0 {
			continue
		}
		names := make([]string, len(dependents))
		for i, ref := range dependents {
			names[i] = ref.TableName()
		}
		issues = append(issues, fmt.Sprintf("DROP %s has dependents: %s", op.Table.TableName(), strings.Join(names, ", ")))
	}

	return issues
}

func errorKind(err error) string {
	return fmt.Sprintf("%T", err)
}
