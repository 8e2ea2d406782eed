package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ridoystarlord/schemaplan/adapter"
	"github.com/ridoystarlord/schemaplan/database"
	"github.com/ridoystarlord/schemaplan/ddl"
)

var (
	applySchemaFile string
	applyContinue   bool
	applyDryRun     bool
	applyParallel   bool
	applyWorkers    int
)

func init() {
	applyCmd.Flags().StringVarP(&applySchemaFile, "file", "f", "schema.yaml", "Schema YAML file to load")
	applyCmd.Flags().BoolVar(&applyContinue, "continue-on-error", false, "Keep executing after a failed operation")
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "Print the SQL that would run without touching the database")
	applyCmd.Flags().BoolVar(&applyParallel, "parallel", false, "Execute independent tables concurrently, level by level")
	applyCmd.Flags().IntVar(&applyWorkers, "workers", 4, "Worker count for --parallel")
}

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Create all tables in dependency order",
	Long: `Create every table from the schema file against DATABASE_URL, ordered so
that referenced tables exist before the tables that reference them.

Examples:
  schemaplan apply                       # create all tables
  schemaplan apply --dry-run             # print the SQL instead
  schemaplan apply --continue-on-error   # don't stop at the first failure
  schemaplan apply --parallel            # run independent tables concurrently
`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runDDL(applySchemaFile, false, applyContinue, applyDryRun, applyParallel, applyWorkers); err != nil {
			fmt.Println("❌ Apply failed:", err)
			os.Exit(1)
		}
	},
}

func runDDL(schemaFile string, drop, continueOnError, dryRun, parallel bool, workers int) error {
	var a adapter.Adapter
	recorder := &adapter.Recorder{}
	if dryRun {
		a = recorder
	} else {
		pg, err := adapter.NewPostgres()
		if err != nil {
			return err
		}
		defer database.ClosePool()
		a = pg
	}

	strategy, err := loadStrategy(schemaFile, a)
	if err != nil {
		return err
	}

	ops, err := planOps(strategy, drop)
	if err != nil {
		return fmt.Errorf("planning: %v", err)
	}

	progress := func(op ddl.Operation, ok bool, err error) {
		if ok {
			fmt.Println("✅", op)
		} else {
			fmt.Printf("❌ %s: %v\n", op, err)
		}
	}

	ctx := context.Background()
	var result ddl.Result
	if parallel {
		groups, err := strategy.ParallelGroups(ops)
		if err != nil {
			return fmt.Errorf("grouping: %v", err)
		}
		if drop {
			reverseGroups(groups)
		}
		result = ddl.NewGroupExecutor(strategy, workers).Execute(ctx, groups, !continueOnError, progress)
	} else {
		result = strategy.ExecuteOperations(ctx, ops, !continueOnError, progress)
	}

	if dryRun {
		fmt.Println("\n================ DRY RUN: SQL Preview ================")
		for _, stmt := range recorder.Statements() {
			fmt.Println(stmt)
		}
		fmt.Println("======================================================")
		fmt.Println("(Dry run only. No statements were executed.)")
	}

	printResult(result)
	if result.Failed > 0 {
		return fmt.Errorf("%d of %d operations failed", result.Failed, result.Total)
	}
	return nil
}

func printResult(result ddl.Result) {
	fmt.Printf("\n📊 Summary: %d total, %d successful, %d failed", result.Total, result.Successful, result.Failed)
	if skipped := result.Skipped(); skipped > 0 {
		fmt.Printf(", %d skipped", skipped)
	}
	fmt.Println()

	if result.Failed == 0 {
		color.Green("✅ All operations completed!")
		return
	}
	color.Red("❌ Completed with errors:")
	for i, opErr := range result.Errors {
		fmt.Printf("  %d. %s: %s\n", i+1, opErr.Operation, opErr.Error)
	}
}
