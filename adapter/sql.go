package adapter

import (
	"fmt"
	"strings"

	"github.com/ridoystarlord/schemaplan/schema"
)

// CreateTableSQL builds the CREATE TABLE statement for ref: quoted
// identifiers, column options, and one inline FOREIGN KEY clause per
// referencing column.
func CreateTableSQL(ref schema.TableRef) (string, error) {
	cols := ref.Fields()
	if len(cols) == 0 {
		return "", fmt.Errorf("table %q has no columns", ref.TableName())
	}

	var defs []string
	for _, col := range cols {
		def := fmt.Sprintf(`"%s" %s`, col.Name, col.Type)
		if col.Primary {
			def += " PRIMARY KEY"
		}
		if col.Unique {
			def += " UNIQUE"
		}
		if col.NotNull {
			def += " NOT NULL"
		}
		if col.Default != nil {
			def += fmt.Sprintf(" DEFAULT %s", *col.Default)
		}
		defs = append(defs, def)

		if col.ForeignKey != nil {
			fk, err := foreignKeySQL(col)
			if err != nil {
				return "", fmt.Errorf("table %q: %v", ref.TableName(), err)
			}
			defs = append(defs, fk)
		}
	}

	return fmt.Sprintf(`CREATE TABLE "%s" (%s);`, ref.TableName(), strings.Join(defs, ", ")), nil
}

func foreignKeySQL(col schema.Column) (string, error) {
	fk := col.ForeignKey
	target := fk.References.TableName()

	refColumn := fk.ReferencesColumn
	if refColumn == "" {
		pk := fk.References.PrimaryKey()
		if pk == nil {
			return "", fmt.Errorf("foreign key on %q: table %q has no primary key", col.Name, target)
		}
		refColumn = pk.Name
	}

	stmt := fmt.Sprintf(`FOREIGN KEY ("%s") REFERENCES "%s" ("%s")`, col.Name, target, refColumn)
	if fk.OnDelete != "" {
		stmt += " ON DELETE " + fk.OnDelete
	}
	if fk.OnUpdate != "" {
		stmt += " ON UPDATE " + fk.OnUpdate
	}
	return stmt, nil
}

// DropTableSQL builds the DROP TABLE statement for ref.
func DropTableSQL(ref schema.TableRef) string {
	return fmt.Sprintf(`DROP TABLE IF EXISTS "%s";`, ref.TableName())
}
