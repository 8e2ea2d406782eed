package adapter

import (
	"context"
	"sync"

	"github.com/ridoystarlord/schemaplan/schema"
)

// Adapter executes single DDL statements against a concrete backend. Each
// call is one synchronous round-trip; a non-nil error means the backend
// rejected the statement. Implementations must be safe for concurrent use
// (or callers hand one adapter to each worker).
type Adapter interface {
	CreateTable(ctx context.Context, ref schema.TableRef) error
	DropTable(ctx context.Context, ref schema.TableRef) error
}

// Recorder is an Adapter that collects the SQL it would have run instead of
// touching a database. It backs --dry-run output and the test suite.
type Recorder struct {
	mu         sync.Mutex
	statements []string

	// FailOn maps table names to errors; a matching CreateTable/DropTable
	// records nothing and returns the mapped error.
	FailOn map[string]error
}

func (r *Recorder) CreateTable(ctx context.Context, ref schema.TableRef) error {
	if err := r.FailOn[ref.TableName()]; err != nil {
		return err
	}
	stmt, err := CreateTableSQL(ref)
	if err != nil {
		return err
	}
	r.record(stmt)
	return nil
}

func (r *Recorder) DropTable(ctx context.Context, ref schema.TableRef) error {
	if err := r.FailOn[ref.TableName()]; err != nil {
		return err
	}
	r.record(DropTableSQL(ref))
	return nil
}

func (r *Recorder) record(stmt string) {
	r.mu.Lock()
	r.statements = append(r.statements, stmt)
	r.mu.Unlock()
}

// Statements returns the recorded SQL in execution order; nil when nothing
// has been recorded.
func (r *Recorder) Statements() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.statements...)
}
