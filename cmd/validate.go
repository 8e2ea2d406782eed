package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ridoystarlord/schemaplan/adapter"
	"github.com/ridoystarlord/schemaplan/graph"
)

var (
	validateSchemaFile string
	validateFormat     string
)

func init() {
	validateCmd.Flags().StringVarP(&validateSchemaFile, "schema", "s", "schema.yaml", "Schema file to validate")
	validateCmd.Flags().StringVarP(&validateFormat, "format", "f", "text", "Output format (text, json)")
}

type validateReport struct {
	Valid  bool     `json:"valid"`
	Cycle  []string `json:"cycle,omitempty"`
	Issues []string `json:"issues"`
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Audit the schema's DDL plans for hazards",
	Long: `Audit the CREATE and DROP plans derived from the schema file.

Checks performed:
- Circular foreign key dependencies (fatal: no plan can be built)
- Duplicate operations in a plan
- Operations referencing unregistered tables
- DROP operations on tables that still have dependents

Issues other than cycles are advisory; apply/drop do not check them.

Examples:
  schemaplan validate                    # validate schema.yaml
  schemaplan validate -s custom.yaml     # validate another file
  schemaplan validate -f json            # machine-readable output
`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := validateSchema(); err != nil {
			fmt.Printf("❌ Schema validation failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func validateSchema() error {
	strategy, err := loadStrategy(validateSchemaFile, &adapter.Recorder{})
	if err != nil {
		return err
	}

	report := validateReport{Valid: true}

	createOps, err := strategy.PlanCreateAll()
	if err != nil {
		var cycleErr *graph.CircularDependencyError
		if errors.As(err, &cycleErr) {
			report.Valid = false
			report.Cycle = cycleErr.Cycle
			return outputReport(report)
		}
		return err
	}
	report.Issues = append(report.Issues, strategy.ValidateOperations(createOps)...)

	dropOps, err := strategy.PlanDropAll()
	if err != nil {
		return err
	}
	report.Issues = append(report.Issues, strategy.ValidateOperations(dropOps)...)

	return outputReport(report)
}

func outputReport(report validateReport) error {
	if validateFormat == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	}

	if !report.Valid {
		color.Red("❌ Schema cannot be ordered!")
		fmt.Printf("\n🔴 Cycle: %v\n", report.Cycle)
		fmt.Println("\n💡 Break the cycle by removing or restructuring one of the foreign keys above.")
		return nil
	}

	color.Green("✅ Schema can be ordered.")
	if len(report.Issues) > 0 {
		fmt.Printf("\n🟡 Advisory issues (%d):\n", len(report.Issues))
		for i, issue := range report.Issues {
			fmt.Printf("  %d. %s\n", i+1, issue)
		}
	} else {
		fmt.Println("No advisory issues found.")
	}
	return nil
}
