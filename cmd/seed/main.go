package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"quietseed/internal/config"
	"quietseed/internal/db"
	"quietseed/internal/repository"
	"quietseed/internal/seed"
)

var errVolatileStore = errors.New("memory storage is rebuilt on every start; set STORAGE_DRIVER to mysql or sqlite")

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		file   string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo users, categories and posts into the configured store",
		Long: "seed reads a YAML fixtures document (the built-in demo content by default) " +
			"and writes it to the database selected by STORAGE_DRIVER. Records that already " +
			"exist are skipped, so the command can be re-run safely.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fixtures, err := loadFixtures(file)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if dryRun {
				fmt.Fprintf(out, "fixtures valid: %d users, %d categories, %d posts\n",
					len(fixtures.Users), len(fixtures.Categories), len(fixtures.Posts))
				return nil
			}

			cfg := config.Load()
			if cfg.StorageDriver == config.DriverMemory {
				return errVolatileStore
			}
			gormDB, err := db.Open(db.Options{
				Driver:     cfg.StorageDriver,
				MySQLDSN:   cfg.MySQLDSN,
				SQLitePath: cfg.SQLitePath,
				Reset:      cfg.ResetDB,
			})
			if err != nil {
				return err
			}

			report, err := seed.Apply(cmd.Context(), repository.NewGormStore(gormDB), fixtures)
			if err != nil {
				return fmt.Errorf("apply fixtures: %w", err)
			}
			printReport(out, report)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "fixtures YAML file (defaults to the built-in demo content)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate the fixtures without writing anything")
	return cmd
}

func loadFixtures(path string) (*seed.Fixtures, error) {
	if path == "" {
		return seed.Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixtures: %w", err)
	}
	defer f.Close()
	return seed.Load(f)
}

func printReport(w io.Writer, r seed.Report) {
	fmt.Fprintln(w, "Seed completed successfully!")
	fmt.Fprintf(w, "  - Users created: %d\n", r.UsersCreated)
	fmt.Fprintf(w, "  - Categories created: %d\n", r.CategoriesCreated)
	fmt.Fprintf(w, "  - Posts created: %d\n", r.PostsCreated)
	fmt.Fprintf(w, "  - Existing records skipped: %d\n", r.Skipped)
}
