package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/saldo/internal/accounts"
	"github.com/cleared-dev/saldo/internal/config"
	"github.com/cleared-dev/saldo/internal/gitops"
	"github.com/cleared-dev/saldo/internal/journal"
	"github.com/cleared-dev/saldo/internal/logging"
	"github.com/cleared-dev/saldo/internal/sqlstore"
	"github.com/cleared-dev/saldo/internal/tags"
)

type initOptions struct {
	name      string
	chart     string
	storage   string
	dsn       string
	tagging   string
	redisAddr string
}

func newInitCommand() *cobra.Command {
	var opts initOptions

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new saldo project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd, absDir, opts)
		},
	}

	cmd.Flags().StringVar(&opts.name, "name", "", "business name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&opts.chart, "chart", "kmu", "default chart of accounts")
	cmd.Flags().StringVar(&opts.storage, "storage", config.StorageCSV, "storage backend: csv, sqlite or postgres")
	cmd.Flags().StringVar(&opts.dsn, "dsn", "", "database path or URL (sqlite defaults to saldo.db)")
	cmd.Flags().StringVar(&opts.tagging, "tagging", config.TaggingFile, "tagging backend: file, redis or none")
	cmd.Flags().StringVar(&opts.redisAddr, "redis-addr", "", "redis address for the redis tagging backend")

	return cmd
}

func runInit(cmd *cobra.Command, dir string, opts initOptions) error {
	ctx := cmd.Context()

	if !slices.Contains(accounts.ChartNames(), opts.chart) {
		return fmt.Errorf("unknown chart %q", opts.chart)
	}

	cfg := config.Default(opts.name, opts.chart)
	cfg.Storage = config.StorageConfig{Backend: opts.storage, DSN: opts.dsn}
	if opts.storage == config.StorageSQLite && opts.dsn == "" {
		cfg.Storage.DSN = "saldo.db"
	}
	cfg.Tagging = config.TaggingConfig{Backend: opts.tagging, RedisAddr: opts.redisAddr}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Join(dir, "accounts"), 0o755); err != nil {
		return fmt.Errorf("creating directory accounts: %w", err)
	}

	// Write saldo.yaml.
	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Write the chart of accounts and an empty journal.
	chart := accounts.DefaultChart(opts.chart)
	svc := accounts.NewService(chart)
	if cfg.Storage.Backend == config.StorageCSV {
		if err := svc.Save(dir); err != nil {
			return fmt.Errorf("writing chart of accounts: %w", err)
		}
		if err := journal.NewService(dir, svc).Save(); err != nil {
			return fmt.Errorf("writing bookings: %w", err)
		}
	} else if err := initDatabase(ctx, dir, cfg, svc); err != nil {
		return err
	}

	// Seed the default tags.
	if err := initTags(ctx, dir, cfg, svc); err != nil {
		return err
	}

	// Write .gitignore.
	gitignore := ".env\n"
	if cfg.Storage.Backend == config.StorageSQLite {
		gitignore += cfg.Storage.DSN + "\n"
	}
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	// Initialize git and create initial commit.
	if err := gitops.Init(dir); err != nil {
		return fmt.Errorf("git init: %w", err)
	}

	hash, err := gitops.CommitAll(dir, "init: Initialize "+opts.name, cfg.Git.AuthorName, cfg.Git.AuthorEmail)
	if err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized saldo project at %s (%s)\n", dir, hash)
	return nil
}

func initDatabase(ctx context.Context, dir string, cfg *config.Config, svc *accounts.Service) error {
	dsn := cfg.Storage.DSN
	if cfg.Storage.Backend == config.StorageSQLite && !filepath.IsAbs(dsn) {
		dsn = filepath.Join(dir, dsn)
	}
	logger, err := logging.New(cfg.Logging.Level)
	if err != nil {
		return err
	}

	store, err := sqlstore.Open(ctx, cfg.Storage.Backend, dsn, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}
	for _, g := range svc.GroupingTypes() {
		if err := store.InsertGroupingType(ctx, g); err != nil {
			return err
		}
	}
	for _, a := range svc.All() {
		if err := store.InsertAccount(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

func initTags(ctx context.Context, dir string, cfg *config.Config, svc *accounts.Service) error {
	tagging := accounts.DefaultTagging(cfg.Business.Chart)

	switch cfg.Tagging.Backend {
	case config.TaggingFile:
		store := tags.NewMemoryStore()
		if err := tags.Seed(ctx, store, svc, tagging); err != nil {
			return err
		}
		if err := store.SaveFile(filepath.Join(dir, TagsFile)); err != nil {
			return fmt.Errorf("writing tags: %w", err)
		}
	case config.TaggingRedis:
		client, err := tags.NewRedisClient(ctx, cfg.Tagging.RedisAddr, cfg.Tagging.RedisDB)
		if err != nil {
			return err
		}
		defer client.Close()
		if err := tags.Seed(ctx, tags.NewRedisStore(client, nil), svc, tagging); err != nil {
			return err
		}
	}
	return nil
}
