package ddl

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ridoystarlord/schemaplan/adapter"
	"github.com/ridoystarlord/schemaplan/graph"
	"github.com/ridoystarlord/schemaplan/schema"
)

func table(name string, targets ...schema.TableRef) *schema.Model {
	m := &schema.Model{
		Name: name,
		Columns: []schema.Column{
			{Name: "id", Type: "serial", Primary: true},
		},
	}
	for _, target := range targets {
		m.Columns = append(m.Columns, schema.Column{
			Name:       target.TableName() + "_id",
			Type:       "integer",
			ForeignKey: &schema.ForeignKey{References: target},
		})
	}
	return m
}

func opStrings(ops []Operation) []string {
	out := make([]string, len(ops))
	for i, op := range ops {
		out[i] = op.String()
	}
	return out
}

func TestPlanCreateAll(t *testing.T) {
	company := table("company")
	person := table("person", company)

	s := NewStrategy(&adapter.Recorder{})
	s.RegisterTables([]schema.TableRef{person, company})

	ops, err := s.PlanCreateAll()
	if err != nil {
		t.Fatalf("PlanCreateAll() error = %v", err)
	}
	want := []string{"CREATE_TABLE: company", "CREATE_TABLE: person"}
	if diff := cmp.Diff(want, opStrings(ops)); diff != "" {
		t.Errorf("PlanCreateAll() mismatch (-want +got):\n%s", diff)
	}

	// Planning is pure: nothing reached the adapter.
	if s.adapter.(*adapter.Recorder).Statements() != nil {
		t.Error("PlanCreateAll() executed statements")
	}
}

func TestPlanDropAll(t *testing.T) {
	company := table("company")
	person := table("person", company)

	s := NewStrategy(&adapter.Recorder{})
	s.RegisterTables([]schema.TableRef{company, person})

	ops, err := s.PlanDropAll()
	if err != nil {
		t.Fatalf("PlanDropAll() error = %v", err)
	}
	want := []string{"DROP_TABLE: person", "DROP_TABLE: company"}
	if diff := cmp.Diff(want, opStrings(ops)); diff != "" {
		t.Errorf("PlanDropAll() mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanIsIdempotent(t *testing.T) {
	users := table("users")
	posts := table("posts", users)
	comments := table("comments", posts, users)

	s := NewStrategy(&adapter.Recorder{})
	s.RegisterTables([]schema.TableRef{comments, posts, users})

	first, err := s.PlanCreateAll()
	if err != nil {
		t.Fatalf("PlanCreateAll() error = %v", err)
	}
	second, err := s.PlanCreateAll()
	if err != nil {
		t.Fatalf("PlanCreateAll() error = %v", err)
	}
	if diff := cmp.Diff(opStrings(first), opStrings(second)); diff != "" {
		t.Errorf("PlanCreateAll() not idempotent (-first +second):\n%s", diff)
	}
}

func TestPlanFailsOnCycle(t *testing.T) {
	a := &schema.Model{Name: "a", Columns: []schema.Column{{Name: "id", Type: "serial", Primary: true}}}
	b := &schema.Model{Name: "b", Columns: []schema.Column{{Name: "id", Type: "serial", Primary: true}}}
	a.Columns = append(a.Columns, schema.Column{Name: "b_id", Type: "integer", ForeignKey: &schema.ForeignKey{References: b}})
	b.Columns = append(b.Columns, schema.Column{Name: "a_id", Type: "integer", ForeignKey: &schema.ForeignKey{References: a}})

	rec := &adapter.Recorder{}
	s := NewStrategy(rec)
	s.RegisterTables([]schema.TableRef{a, b})

	_, err := s.PlanCreateAll()
	var cycleErr *graph.CircularDependencyError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("PlanCreateAll() error = %v, want *graph.CircularDependencyError", err)
	}

	// CreateAll must fail before any backend call.
	if _, err := s.CreateAll(context.Background(), true); err == nil {
		t.Fatal("CreateAll() expected error on cyclic graph")
	}
	if rec.Statements() != nil {
		t.Error("CreateAll() reached the adapter despite an unorderable graph")
	}
}

func TestExecuteOperationPropagatesErrorUnchanged(t *testing.T) {
	users := table("users")
	boom := errors.New("connection refused")

	s := NewStrategy(&adapter.Recorder{FailOn: map[string]error{"users": boom}})
	s.RegisterTables([]schema.TableRef{users})

	err := s.ExecuteOperation(context.Background(), Operation{Type: CreateTable, Table: users})
	if !errors.Is(err, boom) {
		t.Errorf("ExecuteOperation() error = %v, want the adapter error unchanged", err)
	}
	if len(s.Executed()) != 0 {
		t.Error("failed operation appended to executed log")
	}
}

func TestExecuteOperationRejectsReservedKinds(t *testing.T) {
	users := table("users")
	s := NewStrategy(&adapter.Recorder{})
	s.RegisterTables([]schema.TableRef{users})

	for _, kind := range []OperationType{AlterTable, CreateIndex, DropIndex} {
		if err := s.ExecuteOperation(context.Background(), Operation{Type: kind, Table: users}); err == nil {
			t.Errorf("ExecuteOperation(%s) expected error", kind)
		}
	}
}

func TestExecuteOperationsStopOnError(t *testing.T) {
	a, b, c := table("a"), table("b"), table("c")
	refs := []schema.TableRef{a, b, c}

	t.Run("stop", func(t *testing.T) {
		rec := &adapter.Recorder{FailOn: map[string]error{"b": errors.New("duplicate table")}}
		s := NewStrategy(rec)
		s.RegisterTables(refs)

		ops, err := s.PlanCreateAll()
		if err != nil {
			t.Fatalf("PlanCreateAll() error = %v", err)
		}
		result := s.ExecuteOperations(context.Background(), ops, true, nil)

		want := Result{Total: 3, Successful: 1, Failed: 1, Errors: result.Errors}
		if diff := cmp.Diff(want, result); diff != "" {
			t.Errorf("Result mismatch (-want +got):\n%s", diff)
		}
		if result.Skipped() != 1 {
			t.Errorf("Skipped() = %d, want 1", result.Skipped())
		}
		if got := len(rec.Statements()); got != 1 {
			t.Errorf("adapter saw %d statements, want 1 (third operation never attempted)", got)
		}
		if len(result.Errors) != 1 || result.Errors[0].Operation != "CREATE_TABLE: b" {
			t.Errorf("Errors = %+v, want the failed operation recorded", result.Errors)
		}
	})

	t.Run("continue", func(t *testing.T) {
		rec := &adapter.Recorder{FailOn: map[string]error{"b": errors.New("duplicate table")}}
		s := NewStrategy(rec)
		s.RegisterTables(refs)

		ops, err := s.PlanCreateAll()
		if err != nil {
			t.Fatalf("PlanCreateAll() error = %v", err)
		}
		result := s.ExecuteOperations(context.Background(), ops, false, nil)

		if result.Total != 3 || result.Successful != 2 || result.Failed != 1 {
			t.Errorf("Result = %+v, want total 3, successful 2, failed 1", result)
		}
		if result.Successful+result.Failed != result.Total {
			t.Error("continue mode must account for every operation")
		}
		if len(result.Errors) != 1 {
			t.Errorf("Errors = %+v, want exactly one entry", result.Errors)
		}
	})
}

func TestExecuteOperationsCallback(t *testing.T) {
	a, b := table("a"), table("b")
	rec := &adapter.Recorder{FailOn: map[string]error{"b": errors.New("boom")}}
	s := NewStrategy(rec)
	s.RegisterTables([]schema.TableRef{a, b})

	ops, err := s.PlanCreateAll()
	if err != nil {
		t.Fatalf("PlanCreateAll() error = %v", err)
	}

	type call struct {
		op  string
		ok  bool
		err bool
	}
	var calls []call
	s.ExecuteOperations(context.Background(), ops, false, func(op Operation, ok bool, err error) {
		calls = append(calls, call{op: op.String(), ok: ok, err: err != nil})
	})

	want := []call{
		{op: "CREATE_TABLE: a", ok: true},
		{op: "CREATE_TABLE: b", ok: false, err: true},
	}
	if diff := cmp.Diff(want, calls, cmp.AllowUnexported(call{})); diff != "" {
		t.Errorf("callback calls mismatch (-want +got):\n%s", diff)
	}
}

func TestExecutedLog(t *testing.T) {
	users := table("users")
	posts := table("posts", users)

	s := NewStrategy(&adapter.Recorder{})
	s.RegisterTables([]schema.TableRef{users, posts})

	if _, err := s.CreateAll(context.Background(), true); err != nil {
		t.Fatalf("CreateAll() error = %v", err)
	}
	want := []string{"CREATE_TABLE: users", "CREATE_TABLE: posts"}
	if diff := cmp.Diff(want, opStrings(s.Executed())); diff != "" {
		t.Errorf("Executed() mismatch (-want +got):\n%s", diff)
	}
}

func TestParallelGroups(t *testing.T) {
	x := table("x")
	y := table("y")
	z := table("z", x, y)

	s := NewStrategy(&adapter.Recorder{})
	s.RegisterTables([]schema.TableRef{x, y, z})

	ops, err := s.PlanCreateAll()
	if err != nil {
		t.Fatalf("PlanCreateAll() error = %v", err)
	}
	groups, err := s.ParallelGroups(ops)
	if err != nil {
		t.Fatalf("ParallelGroups() error = %v", err)
	}

	if len(groups) != 2 {
		t.Fatalf("ParallelGroups() returned %d groups, want 2", len(groups))
	}
	if diff := cmp.Diff([]string{"CREATE_TABLE: x", "CREATE_TABLE: y"}, opStrings(groups[0])); diff != "" {
		t.Errorf("group 0 mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"CREATE_TABLE: z"}, opStrings(groups[1])); diff != "" {
		t.Errorf("group 1 mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateOperations(t *testing.T) {
	users := table("users")
	posts := table("posts", users)
	stray := table("stray")

	s := NewStrategy(&adapter.Recorder{})
	s.RegisterTables([]schema.TableRef{users, posts})

	ops := []Operation{
		{Type: CreateTable, Table: users},
		{Type: CreateTable, Table: users},  // duplicate
		{Type: CreateTable, Table: stray},  // unregistered
		{Type: DropTable, Table: users},    // users still has dependents
	}
	issues := s.ValidateOperations(ops)

	if len(issues) != 3 {
		t.Fatalf("ValidateOperations() = %v, want 3 issues", issues)
	}
	wantSubstrings := []string{
		"duplicate operation: CREATE_TABLE: users",
		"unregistered table: CREATE_TABLE: stray",
		"DROP users has dependents: posts",
	}
	for i, want := range wantSubstrings {
		if !strings.Contains(issues[i], want) {
			t.Errorf("issue %d = %q, want %q", i, issues[i], want)
		}
	}
}

func TestValidateOperationsCleanPlan(t *testing.T) {
	users := table("users")
	posts := table("posts", users)

	s := NewStrategy(&adapter.Recorder{})
	s.RegisterTables([]schema.TableRef{users, posts})

	ops, err := s.PlanCreateAll()
	if err != nil {
		t.Fatalf("PlanCreateAll() error = %v", err)
	}
	if issues := s.ValidateOperations(ops); len(issues) != 0 {
		t.Errorf("ValidateOperations() = %v, want none", issues)
	}
}
