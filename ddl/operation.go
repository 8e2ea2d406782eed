package ddl

import (
	"fmt"

	"github.com/ridoystarlord/schemaplan/schema"
)

type OperationType string

const (
	CreateTable OperationType = "CREATE_TABLE"
	DropTable   OperationType = "DROP_TABLE"

	// Reserved for schema evolution; the executor rejects them today.
	AlterTable  OperationType = "ALTER_TABLE"
	CreateIndex OperationType = "CREATE_INDEX"
	DropIndex   OperationType = "DROP_INDEX"
)

// Operation pairs one DDL action with one table. Operations are values and
// carry no execution state; outcomes live in the Result of the batch that
// ran them.
type Operation struct {
	Type    OperationType
	Table   schema.TableRef
	Details map[string]string
}

func (op Operation) String() string {
	return fmt.Sprintf("%s: %s", op.Type, op.Table.TableName())
}

// OperationError is one failed operation inside a batch Result.
type OperationError struct {
	Operation string `json:"operation"`
	Error     string `json:"error"`
	Kind      string `json:"kind"`
}

// Result summarizes a batch execution. Successful+Failed == Total unless the
// batch stopped early on error, in which case the gap is the count of
// operations never attempted.
type Result struct {
	Total      int              `json:"total"`
	Successful int              `json:"successful"`
	Failed     int              `json:"failed"`
	Errors     []OperationError `json:"errors"`
}

// Skipped returns how many operations the batch never attempted.
func (r Result) Skipped() int {
	return r.Total - r.Successful - r.Failed
}
