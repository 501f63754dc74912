package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/querycanvas/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the schema and query API over HTTP",
	Long: `Start the HTTP API used by the schema explorer.

Endpoints:
  GET  /api/schema                       tables and reversed foreign keys
  POST /api/results   {"query": "..."}   query rows as [name, value] pairs
  GET  /api/references?key=table.column  dependents and referenced keys
  POST /api/export?format=csv|json|sql   query rows as a downloadable file
  GET  /api/health                       database connectivity

The API is available at http://localhost:8080 by default.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		return runServer(ctx, a)
	},
}

func init() {
	serveCmd.Flags().String("port", "", "Port to run the web server on (default 8080)")
}

func runServer(ctx context.Context, a *app) error {
	srv := server.New(a.svc, a.pool, a.log)

	fmt.Printf("🚀 Serving querycanvas API on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("Press Ctrl+C to stop the server")

	a.log.Infow("server starting", "port", a.cfg.Port, "schema", a.cfg.Schema)
	if err := srv.ListenAndServe(ctx, ":"+a.cfg.Port); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	a.log.Info("server stopped")
	return nil
}
