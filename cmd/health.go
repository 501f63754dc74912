package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check database connectivity",
	Long: `Check if the database is accessible and responsive.

Examples:
  querycanvas health                    # Check default database connection
  querycanvas health --timeout 10s      # Set custom timeout
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), healthTimeout)
		defer cancel()

		if err := checkDatabaseHealth(ctx, cmd); err != nil {
			return fmt.Errorf("database health check failed: %w", err)
		}
		color.Green("✅ Database is healthy and accessible")
		return nil
	},
}

var healthTimeout time.Duration

func init() {
	healthCmd.Flags().DurationVarP(&healthTimeout, "timeout", "t", 5*time.Second, "Timeout for health check")
}

func checkDatabaseHealth(ctx context.Context, cmd *cobra.Command) error {
	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	g, err := a.svc.Schema(ctx)
	if err != nil {
		return err
	}

	if len(g.Tables) == 0 {
		color.Yellow("⚠️  Database is accessible but schema %q has no tables", a.cfg.Schema)
		return nil
	}

	fmt.Printf("📊 Found %d tables and %d referenced keys in schema %q\n",
		len(g.Tables), len(g.References), a.cfg.Schema)
	return nil
}
