package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example schema.yaml",
	Long: `Create a starter schema.yaml in the current directory with a small set of
related tables demonstrating foreign keys.

Examples:
  schemaplan init
  schemaplan plan
`,
	Run: func(cmd *cobra.Command, args []string) {
		if _, err := os.Stat("schema.yaml"); err == nil {
			fmt.Println("❌ schema.yaml already exists!")
			return
		}

		content := `# Tables are created in dependency order: referenced tables first.
tables:
  - name: users
    columns:
      - name: id
        type: serial
        primary: true
      - name: email
        type: text
        unique: true
        not_null: true
      - name: created_at
        type: timestamp
        default: now()

  - name: posts
    columns:
      - name: id
        type: serial
        primary: true
      - name: title
        type: text
        not_null: true
      - name: user_id
        type: integer
        foreign_key:
          references_table: users
          references_column: id
          on_delete: CASCADE

  - name: comments
    columns:
      - name: id
        type: serial
        primary: true
      - name: body
        type: text
        not_null: true
      - name: post_id
        type: integer
        foreign_key:
          references_table: posts
          on_delete: CASCADE
      - name: user_id
        type: integer
        foreign_key:
          references_table: users
          on_delete: SET NULL
`

		if err := os.WriteFile("schema.yaml", []byte(content), 0644); err != nil {
			fmt.Println("❌ Writing schema.yaml:", err)
			os.Exit(1)
		}

		fmt.Println("✅ Created schema.yaml")
		fmt.Println("💡 Next: schemaplan plan")
	},
}
