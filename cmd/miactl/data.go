package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"mia/internal/adapters"
	"mia/internal/cli"
	"mia/internal/core"
	"mia/internal/storage"
)

func migrateCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the SQLite schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(cfg.SQLiteDBPath), 0755); err != nil {
				return fmt.Errorf("failed to create database directory: %w", err)
			}
			ver, err := storage.RunMigrations(cfg.SQLiteDBPath)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render(
				fmt.Sprintf("✓ %s at schema version %d", cfg.SQLiteDBPath, ver)))
			return nil
		},
	}
}

func importCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "import <seed.json>",
		Short: "Load a seed file into the SQLite database",
		Long: `Upsert every collection of a seed file into the SQLite database.
Existing rows with the same id are replaced; categories are matched by name.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			seed, err := core.ReadSeed(args[0])
			if err != nil {
				return fmt.Errorf("failed to read seed: %w", err)
			}

			repo, err := cli.InitSQLite(newLogger(cfg), cfg.SQLiteDBPath)
			if err != nil {
				return err
			}
			defer repo.Close()

			if err := repo.Import(cmd.Context(), seed); err != nil {
				return fmt.Errorf("import failed: %w", err)
			}
			printCounts(cmd, "Imported", seed)
			return nil
		},
	}
}

func syncCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Copy the configured backend into the SQLite database",
		Long: `Read every collection of the configured backend (memory seed or Google
Sheet) and upsert it into the SQLite database given by --db.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			if cfg.DataBackend == "sqlite" {
				return errors.New("source backend is already sqlite; choose --backend memory or sheets")
			}
			logger := newLogger(cfg)

			app, err := cli.NewApp(cmd.Context(), cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to open %s backend: %w", cfg.DataBackend, err)
			}
			defer app.Close()

			repo, err := cli.InitSQLite(logger, cfg.SQLiteDBPath)
			if err != nil {
				return err
			}
			defer repo.Close()

			seed, err := adapters.NewSQLiteAdapter(repo, logger).ImportFrom(cmd.Context(), app.Backend)
			if err != nil {
				return err
			}
			printCounts(cmd, "Synced", seed)
			return nil
		},
	}
}

func exportCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the configured backend as a seed file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			output, _ := cmd.Flags().GetString("output")

			app, _, err := openApp(cmd.Context(), v)
			if err != nil {
				return err
			}
			defer app.Close()

			seed, err := adapters.Export(cmd.Context(), app.Backend)
			if err != nil {
				return fmt.Errorf("export failed: %w", err)
			}

			out := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer f.Close()
				out = f
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(seed); err != nil {
				return fmt.Errorf("failed to write seed: %w", err)
			}
			if out != cmd.OutOrStdout() {
				printCounts(cmd, "Exported", seed)
			}
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "-", "output file, - for stdout")
	return cmd
}

func printCounts(cmd *cobra.Command, verb string, seed core.Seed) {
	fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render(fmt.Sprintf(
		"✓ %s %s transactions, %s categories, %s market items, %s debts, %s vehicles",
		verb,
		humanize.Comma(int64(len(seed.Transactions))),
		humanize.Comma(int64(len(seed.Categories))),
		humanize.Comma(int64(len(seed.MarketItems))),
		humanize.Comma(int64(len(seed.Debts))),
		humanize.Comma(int64(len(seed.Vehicles))))))
}
