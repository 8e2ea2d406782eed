package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "schemaplan",
	Short: "Dependency-aware DDL planning and execution for table schemas",
	Long: `schemaplan resolves foreign key relationships between tables into a safe
execution order for CREATE/DROP statements and runs them against PostgreSQL.

Examples:

  schemaplan init
  schemaplan plan
  schemaplan graph
  schemaplan apply
`,
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("❌", err)
		os.Exit(1)
	}
}

// Register subcommands
func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(dropCmd)
}
