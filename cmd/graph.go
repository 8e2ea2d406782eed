package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/schemaplan/adapter"
)

var graphSchemaFile string

func init() {
	graphCmd.Flags().StringVarP(&graphSchemaFile, "file", "f", "schema.yaml", "Schema YAML file to load")
}

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Visualize the table dependency graph",
	Long: `Print the foreign key dependency graph for the schema file: each table
with the tables it depends on, and the dependency levels that group tables
safe to process concurrently.
`,
	Run: func(cmd *cobra.Command, args []string) {
		strategy, err := loadStrategy(graphSchemaFile, &adapter.Recorder{})
		if err != nil {
			fmt.Println("❌", err)
			os.Exit(1)
		}

		g := strategy.Graph()
		fmt.Println(g.Visualize())

		for _, ref := range g.Tables() {
			dependents := g.Dependents(ref)
			if len(dependents) == 0 {
				continue
			}
			names := make([]string, len(dependents))
			for i, dep := range dependents {
				names[i] = dep.TableName()
			}
			fmt.Printf("%s is referenced by: %v\n", ref.TableName(), names)
		}
	},
}
