package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ridoystarlord/querycanvas/schema"
)

var refsCmd = &cobra.Command{
	Use:   "refs <table.column>",
	Short: "Show foreign keys pointing at or from a column",
	Long: `Show which columns hold a foreign key to the given column (inbound) and
which columns the given column references itself (outbound).

Examples:
  querycanvas refs users.id
  querycanvas refs orders.customer_id
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, column, ok := schema.SplitKey(args[0])
		if !ok {
			return fmt.Errorf("expected table.column, got %q", args[0])
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

		if _, exists := g.Tables[table]; !exists {
			color.Yellow("⚠️  Table %q not found in schema %q", table, a.cfg.Schema)
		}

		showReferences(schema.Key(table, column), g.Dependents(table, column), g.Referenced(table, column))
		return nil
	},
}

func showReferences(key string, inbound, outbound []string) {
	blue := color.New(color.FgBlue, color.Bold)
	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan)

	blue.Printf("🔗 %s\n", key)

	fmt.Println("\n⬅️  Referenced by:")
	if len(inbound) == 0 {
		fmt.Println("   (none)")
	}
	for _, ref := range inbound {
		green.Printf("   - %s\n", ref)
	}

	fmt.Println("\n➡️  References:")
	if len(outbound) == 0 {
		fmt.Println("   (none)")
	}
	for _, ref := range outbound {
		cyan.Printf("   - %s\n", ref)
	}
}
