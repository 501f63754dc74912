package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ridoystarlord/querycanvas/config"
	"github.com/ridoystarlord/querycanvas/database"
	"github.com/ridoystarlord/querycanvas/logging"
	"github.com/ridoystarlord/querycanvas/service"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "querycanvas",
	Short: "Run SQL against PostgreSQL and explore its schema",
	Long: `querycanvas runs arbitrary SQL and returns every cell as a typed JSON value,
and maps tables, columns and foreign keys for a visual schema explorer.

Examples:

  querycanvas schema
  querycanvas query --sql "SELECT * FROM orders"
  querycanvas refs users.id
  querycanvas serve --port 8080
`,
	SilenceUsage: true,
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
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Path to a config file (yaml, toml or json)")
	flags.String("database-url", "", "PostgreSQL connection string (default $DATABASE_URL)")
	flags.String("schema", "", "Database schema to introspect (default \"public\")")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.String("log-format", "", "Log format: console or json")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(refsCmd)
	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(healthCmd)
}

// app bundles what a command needs once configuration is resolved.
type app struct {
	cfg  config.Config
	log  *zap.SugaredLogger
	pool *database.Pool
	svc  *service.Service
}

func (a *app) Close() {
	a.pool.Close()
	a.log.Sync()
}

// loadConfig resolves configuration from .env, the config file, the
// environment and the persistent flags, in increasing precedence.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	if !config.LoadEnv() {
		fmt.Fprintln(os.Stderr, "ℹ️  No .env file found, continuing...")
	}

	v, err := config.New(configFile)
	if err != nil {
		return config.Config{}, err
	}

	if err := bindFlags(v, cmd, map[string]string{
		config.KeyDatabaseURL: "database-url",
		config.KeySchema:      "schema",
		config.KeyLogLevel:    "log-level",
		config.KeyLogFormat:   "log-format",
		config.KeyPort:        "port",
	}); err != nil {
		return config.Config{}, err
	}

	return config.FromViper(v)
}

func bindFlags(v *viper.Viper, cmd *cobra.Command, keys map[string]string) error {
	for key, name := range keys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("binding --%s: %w", name, err)
		}
	}
	return nil
}

// newApp loads configuration and opens the connection pool.
func newApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	pool, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Sync()
		return nil, err
	}

	return &app{
		cfg:  cfg,
		log:  log,
		pool: pool,
		svc:  service.New(pool, cfg.Schema, log),
	}, nil
}
