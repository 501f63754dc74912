package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ridoystarlord/querycanvas/export"
	"github.com/ridoystarlord/querycanvas/results"
)

var (
	querySQL    []string
	queryFormat string
	queryTable  string
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run SQL and print the typed result",
	Long: `Run SQL verbatim and print every row.

The default "raw" format prints the result exactly as the API returns it:
an array of rows, each an array of [column, value] pairs. Other formats:
json (array of objects), yaml, csv, sql (INSERT statements, needs --table)
and table (human readable).

With several --sql flags each statement runs on its own and statements
returning no rows are skipped. Without --sql, SQL is read from stdin.

Examples:
  querycanvas query --sql "SELECT * FROM orders"
  querycanvas query --sql "SELECT 1" --sql "SELECT now()" --format table
  echo "SELECT * FROM users" | querycanvas query --format csv
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		statements := querySQL
		if len(statements) == 0 {
			b, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("reading stdin: %w", err)
			}
			if s := strings.TrimSpace(string(b)); s != "" {
				statements = []string{s}
			}
		}
		if len(statements) == 0 {
			return fmt.Errorf("no SQL given (use --sql or stdin)")
		}

		ctx := cmd.Context()
		a, err := newApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		for _, stmt := range statements {
			if queryFormat == "raw" {
				out, err := a.svc.GetResults(ctx, stmt)
				if err != nil {
					return err
				}
				if len(statements) > 1 && out == "[]" {
					continue
				}
				fmt.Println(out)
				continue
			}

			rows, err := a.svc.Results(ctx, stmt)
			if err != nil {
				return err
			}
			if len(statements) > 1 && len(rows) == 0 {
				continue
			}

			if queryFormat == "table" {
				printTable(os.Stdout, rows)
				continue
			}

			format, err := export.ParseFormat(queryFormat)
			if err != nil {
				return err
			}
			out, err := export.Render(format, queryTable, rows)
			if err != nil {
				return err
			}
			fmt.Println(out)
		}
		return nil
	},
}

func init() {
	queryCmd.Flags().StringArrayVar(&querySQL, "sql", nil, "SQL to run (repeatable)")
	queryCmd.Flags().StringVarP(&queryFormat, "format", "f", "raw", "Output format: raw, json, yaml, csv, sql, table")
	queryCmd.Flags().StringVar(&queryTable, "table", "", "Target table name for --format sql")
}

func printTable(w io.Writer, rows []results.Row) {
	header := color.New(color.FgCyan, color.Bold)
	null := color.New(color.FgHiBlack)

	if len(rows) == 0 {
		fmt.Fprintln(w, "📋 No rows returned")
		return
	}

	cols := results.Columns(rows)
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = len(c)
	}
	for _, row := range rows {
		for i, f := range row {
			if n := len(cellText(f)); n > widths[i] {
				widths[i] = n
			}
		}
	}

	for i, c := range cols {
		header.Fprintf(w, "%-*s  ", widths[i], c)
	}
	fmt.Fprintln(w)
	for i := range cols {
		fmt.Fprint(w, strings.Repeat("-", widths[i])+"  ")
	}
	fmt.Fprintln(w)

	for _, row := range rows {
		for i, f := range row {
			if f.Value.IsNull() {
				null.Fprintf(w, "%-*s  ", widths[i], cellText(f))
				continue
			}
			fmt.Fprintf(w, "%-*s  ", widths[i], cellText(f))
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "📊 %d rows\n", len(rows))
}

func cellText(f results.Field) string {
	if f.Value.IsNull() {
		return "NULL"
	}
	return f.Value.String()
}
