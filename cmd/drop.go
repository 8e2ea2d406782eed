package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	dropSchemaFile string
	dropContinue   bool
	dropDryRun     bool
	dropParallel   bool
	dropWorkers    int
	dropForce      bool
)

func init() {
	dropCmd.Flags().StringVarP(&dropSchemaFile, "file", "f", "schema.yaml", "Schema YAML file to load")
	dropCmd.Flags().BoolVar(&dropContinue, "continue-on-error", false, "Keep executing after a failed operation")
	dropCmd.Flags().BoolVar(&dropDryRun, "dry-run", false, "Print the SQL that would run without touching the database")
	dropCmd.Flags().BoolVar(&dropParallel, "parallel", false, "Execute independent tables concurrently, level by level")
	dropCmd.Flags().IntVar(&dropWorkers, "workers", 4, "Worker count for --parallel")
	dropCmd.Flags().BoolVar(&dropForce, "force", false, "Skip the confirmation prompt")
}

var dropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Drop all tables in reverse dependency order",
	Long: `Drop every table from the schema file, ordered so that referencing tables
go before the tables they reference.

Examples:
  schemaplan drop              # prompts before dropping
  schemaplan drop --force      # no prompt
  schemaplan drop --dry-run    # print the SQL instead
`,
	Run: func(cmd *cobra.Command, args []string) {
		if !dropDryRun && !dropForce {
			fmt.Print("⚠️  This will drop all tables in the schema. Continue? [y/N]: ")
			reader := bufio.NewReader(os.Stdin)
			answer, _ := reader.ReadString('\n')
			if strings.ToLower(strings.TrimSpace(answer)) != "y" {
				fmt.Println("Aborted.")
				return
			}
		}

		if err := runDDL(dropSchemaFile, true, dropContinue, dropDryRun, dropParallel, dropWorkers); err != nil {
			fmt.Println("❌ Drop failed:", err)
			os.Exit(1)
		}
	},
}
