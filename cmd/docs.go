package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/querycanvas/schema"
)

var (
	docsFormat string
	docsOutput string
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Generate an ERD from the live schema",
	Long: `Generate ERD diagrams from the tables and foreign keys of the working schema.

Supported formats:
  - mermaid: Mermaid ERD diagram
  - graphviz: Graphviz DOT format

Examples:
  querycanvas docs --format mermaid --output erd.md
  querycanvas docs --format graphviz --output erd.dot
  querycanvas docs --format mermaid              # print to stdout
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var render func(schema.Graph) string
		switch docsFormat {
		case "mermaid":
			render = schema.Mermaid
		case "graphviz":
			render = schema.Graphviz
		default:
			return fmt.Errorf("unsupported format: %s (mermaid, graphviz)", docsFormat)
		}

		ctx := cmd.Context()
		a, err := newApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		g, err := a.svc.Schema(ctx)
		if err != nil {
			return err
		}

		if len(g.Tables) == 0 {
			return fmt.Errorf("no tables found in schema %q", a.cfg.Schema)
		}

		content := render(g)
		if docsOutput == "" {
			fmt.Print(content)
			return nil
		}

		if err := os.WriteFile(docsOutput, []byte(content), 0644); err != nil {
			return fmt.Errorf("error writing %s file: %w", docsFormat, err)
		}
		fmt.Printf("✅ %s ERD saved to: %s\n", docsFormat, docsOutput)
		return nil
	},
}

func init() {
	docsCmd.Flags().StringVarP(&docsFormat, "format", "f", "mermaid", "Output format: mermaid or graphviz")
	docsCmd.Flags().StringVarP(&docsOutput, "output", "o", "", "Output file (default stdout)")
}
