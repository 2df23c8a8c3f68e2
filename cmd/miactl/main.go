// Command miactl inspects and maintains a Mia Economia ledger from the
// terminal: print the dashboard summary, list categories, run migrations and
// move data between backends.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"mia/internal/cli"
	"mia/internal/config"
	applog "mia/internal/log"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	root := &cobra.Command{
		Use:           "miactl",
		Short:         "Mia Economia ledger tool",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return initConfig(v, cfgFile)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (yaml, toml or json)")
	flags.String("backend", "", "data backend: memory, sqlite or sheets (default $DATA_BACKEND)")
	flags.String("db", "", "SQLite database path (default $SQLITE_DB_PATH)")
	flags.String("data-dir", "", "seed directory of the memory backend (default $DATA_DIR)")
	flags.String("log-level", "", "log level: debug, info, warn, error")

	_ = v.BindPFlag("backend", flags.Lookup("backend"))
	_ = v.BindPFlag("db", flags.Lookup("db"))
	_ = v.BindPFlag("data_dir", flags.Lookup("data-dir"))
	_ = v.BindPFlag("log_level", flags.Lookup("log-level"))

	root.AddCommand(summaryCmd(v))
	root.AddCommand(categoriesCmd(v))
	root.AddCommand(migrateCmd(v))
	root.AddCommand(importCmd(v))
	root.AddCommand(syncCmd(v))
	root.AddCommand(exportCmd(v))
	root.AddCommand(versionCmd())
	return root
}

func main() {
	cli.LoadEnvFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

// initConfig layers MIA_* variables and the optional config file over the
// flags bound to v.
func initConfig(v *viper.Viper, cfgFile string) error {
	v.SetEnvPrefix("MIA")
	v.AutomaticEnv()

	if cfgFile == "" {
		return nil
	}
	v.SetConfigFile(cfgFile)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// loadConfig reads the server configuration from the environment and applies
// the command line overrides.
func loadConfig(v *viper.Viper) (*config.Config, error) {
	cfg := config.Load()
	if s := v.GetString("backend"); s != "" {
		cfg.DataBackend = s
	}
	if s := v.GetString("db"); s != "" {
		cfg.SQLiteDBPath = s
	}
	if s := v.GetString("data_dir"); s != "" {
		cfg.DataDir = s
	}
	if s := v.GetString("log_level"); s != "" {
		cfg.LogLevel = s
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger keeps log records on stderr so stdout stays parseable.
func newLogger(cfg *config.Config) *applog.Logger {
	return applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Component: applog.ComponentCLI,
		Output:    os.Stderr,
	})
}

// openApp loads the configuration and builds the application graph on the
// configured backend.
func openApp(ctx context.Context, v *viper.Viper) (*cli.App, *applog.Logger, error) {
	cfg, err := loadConfig(v)
	if err != nil {
		return nil, nil, err
	}
	logger := newLogger(cfg)
	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s backend: %w", cfg.DataBackend, err)
	}
	return app, logger, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the miactl version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "miactl %s\n", version)
		},
	}
}
