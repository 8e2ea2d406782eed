package schema

import "strings"

// Referential actions for foreign keys.
const (
	Restrict = "RESTRICT"
	NoAction = "NO ACTION"
	Cascade  = "CASCADE"
	SetNull  = "SET NULL"
)

// TableRef is a read-only handle to a table definition. The graph and DDL
// layers only ever look at table names and foreign key targets; column types,
// constraints and defaults are the adapter's business.
type TableRef interface {
	// TableName returns the canonical lowercase table name.
	TableName() string
	// Fields returns the table's columns in declaration order.
	Fields() []Column
	// PrimaryKey returns the primary key column, or nil if the table has none.
	PrimaryKey() *Column
}

type Model struct {
	Name    string
	Columns []Column
}

type Column struct {
	Name       string
	Type       string
	Primary    bool
	Unique     bool
	NotNull    bool
	Default    *string
	ForeignKey *ForeignKey
}

// ForeignKey points at an already-resolved target table. References is the
// handle the dependency graph follows; ReferencesColumn may be empty, in
// which case the target's primary key column is used.
type ForeignKey struct {
	References       TableRef
	ReferencesColumn string
	OnDelete         string
	OnUpdate         string
}

func (m *Model) TableName() string {
	return strings.ToLower(m.Name)
}

func (m *Model) Fields() []Column {
	return m.Columns
}

func (m *Model) PrimaryKey() *Column {
	for i := range m.Columns {
		if m.Columns[i].Primary {
			return &m.Columns[i]
		}
	}
	return nil
}

// ForeignKeys returns the columns of t that carry a foreign key.
func ForeignKeys(t TableRef) []Column {
	var fks []Column
	for _, col := range t.Fields() {
		if col.ForeignKey != nil {
			fks = append(fks, col)
		}
	}
	return fks
}
