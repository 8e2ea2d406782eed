package loader

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ridoystarlord/schemaplan/schema"
)

type yamlFile struct {
	Tables []yamlTable `yaml:"tables"`
}

type yamlTable struct {
	Name    string       `yaml:"name"`
	Columns []yamlColumn `yaml:"columns"`
}

type yamlColumn struct {
	Name       string          `yaml:"name"`
	Type       string          `yaml:"type"`
	Primary    bool            `yaml:"primary"`
	Unique     bool            `yaml:"unique"`
	NotNull    bool            `yaml:"not_null"`
	Default    *string         `yaml:"default"`
	ForeignKey *yamlForeignKey `yaml:"foreign_key"`
}

type yamlForeignKey struct {
	ReferencesTable  string `yaml:"references_table"`
	ReferencesColumn string `yaml:"references_column"`
	OnDelete         string `yaml:"on_delete"`
	OnUpdate         string `yaml:"on_update"`
}

// LoadModelsFromYAML reads a schema file and resolves every foreign key to
// the model it references. Resolution is two-pass, so tables may reference
// tables declared later in the file; a reference to a table that is not in
// the file at all is an error.
func LoadModelsFromYAML(filename string) ([]*schema.Model, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}

	var yf yamlFile
	if err := yaml.Unmarshal(data, &yf); err != nil {
		return nil, fmt.Errorf("unmarshalling YAML: %w", err)
	}

	models := make([]*schema.Model, 0, len(yf.Tables))
	byName := map[string]*schema.Model{}
	for _, t := range yf.Tables {
		model := &schema.Model{Name: t.Name}
		for _, c := range t.Columns {
			model.Columns = append(model.Columns, schema.Column{
				Name:    c.Name,
				Type:    c.Type,
				Primary: c.Primary,
				Unique:  c.Unique,
				NotNull: c.NotNull,
				Default: c.Default,
			})
		}
		if _, ok := byName[model.TableName()]; ok {
			return nil, fmt.Errorf("duplicate table %q in schema file", model.TableName())
		}
		byName[model.TableName()] = model
		models = append(models, model)
	}

	// Second pass: foreign keys, now that every table has a model.
	for i, t := range yf.Tables {
		for j, c := range t.Columns {
			if c.ForeignKey == nil {
				continue
			}
			target, ok := byName[strings.ToLower(c.ForeignKey.ReferencesTable)]
			if !ok {
				return nil, fmt.Errorf("table %q column %q references unknown table %q",
					t.Name, c.Name, c.ForeignKey.ReferencesTable)
			}
			models[i].Columns[j].ForeignKey = &schema.ForeignKey{
				References:       target,
				ReferencesColumn: c.ForeignKey.ReferencesColumn,
				OnDelete:         c.ForeignKey.OnDelete,
				OnUpdate:         c.ForeignKey.OnUpdate,
			}
		}
	}

	return models, nil
}

// TableRefs converts loaded models to the interface the graph consumes.
func TableRefs(models []*schema.Model) []schema.TableRef {
	refs := make([]schema.TableRef, len(models))
	for i, m := range models {
		refs[i] = m
	}
	return refs
}
