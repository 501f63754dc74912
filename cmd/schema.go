package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	schemaFormat string
	schemaPretty bool
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print tables, columns and foreign key references",
	Long: `Print the structural map of the working schema.

"tables" maps each table to its columns in declaration order.
"references" maps a referenced "table.column" to every "table.column"
holding a foreign key to it.

Examples:
  querycanvas schema
  querycanvas schema --pretty
  querycanvas schema --format yaml
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		switch schemaFormat {
		case "json":
			out, err := a.svc.GetSchema(ctx)
			if err != nil {
				return err
			}
			if schemaPretty {
				var buf bytes.Buffer
				if err := json.Indent(&buf, []byte(out), "", "  "); err != nil {
					return err
				}
				out = buf.String()
			}
			fmt.Println(out)
		case "yaml":
			g, err := a.svc.Schema(ctx)
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(g)
			if err != nil {
				return fmt.Errorf("YAML serialization failed: %w", err)
			}
			fmt.Print(string(out))
		default:
			return fmt.Errorf("unsupported format: %s (json, yaml)", schemaFormat)
		}
		return nil
	},
}

func init() {
	schemaCmd.Flags().StringVarP(&schemaFormat, "format", "f", "json", "Output format: json or yaml")
	schemaCmd.Flags().BoolVar(&schemaPretty, "pretty", false, "Indent JSON output")
}
