package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/schemaplan/adapter"
	"github.com/ridoystarlord/schemaplan/ddl"
	"github.com/ridoystarlord/schemaplan/loader"
)

var (
	planSchemaFile string
	planDrop       bool
	planParallel   bool
)

func init() {
	planCmd.Flags().StringVarP(&planSchemaFile, "file", "f", "schema.yaml", "Schema YAML file to load")
	planCmd.Flags().BoolVar(&planDrop, "drop", false, "Show the DROP plan instead of the CREATE plan")
	planCmd.Flags().BoolVar(&planParallel, "parallel", false, "Group the plan by dependency level")
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the ordered DDL plan without executing anything",
	Long: `Show the dependency-ordered operation list for the schema file.

The plan is computed purely from foreign key relationships: a table is
created only after every table it references, and dropped only before them.

Examples:
  schemaplan plan                 # CREATE plan from schema.yaml
  schemaplan plan --drop          # DROP plan (reverse order)
  schemaplan plan --parallel      # group operations that can run concurrently
`,
	Run: func(cmd *cobra.Command, args []string) {
		strategy, err := loadStrategy(planSchemaFile, &adapter.Recorder{})
		if err != nil {
			fmt.Println("❌", err)
			os.Exit(1)
		}

		ops, err := planOps(strategy, planDrop)
		if err != nil {
			fmt.Println("❌ Planning failed:", err)
			os.Exit(1)
		}

		if !planParallel {
			fmt.Printf("Plan (%d operations):\n", len(ops))
			for i, op := range ops {
				fmt.Printf("  %d. %s\n", i+1, op)
			}
			return
		}

		groups, err := strategy.ParallelGroups(ops)
		if err != nil {
			fmt.Println("❌ Grouping failed:", err)
			os.Exit(1)
		}
		if planDrop {
			reverseGroups(groups)
		}
		fmt.Printf("Plan (%d operations in %d groups):\n", len(ops), len(groups))
		for i, group := range groups {
			fmt.Printf("  Group %d:\n", i+1)
			for _, op := range group {
				fmt.Printf("    - %s\n", op)
			}
		}
	},
}

// loadStrategy builds a strategy over the given adapter from a schema file.
func loadStrategy(schemaFile string, a adapter.Adapter) (*ddl.Strategy, error) {
	models, err := loader.LoadModelsFromYAML(schemaFile)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %v", schemaFile, err)
	}
	strategy := ddl.NewStrategy(a)
	strategy.RegisterTables(loader.TableRefs(models))
	return strategy, nil
}

func planOps(strategy *ddl.Strategy, drop bool) ([]ddl.Operation, error) {
	if drop {
		return strategy.PlanDropAll()
	}
	return strategy.PlanCreateAll()
}

func reverseGroups(groups [][]ddl.Operation) {
	for i, j := 0, len(groups)-1; i < j; i, j = i+1, j-1 {
		groups[i], groups[j] = groups[j], groups[i]
	}
}
