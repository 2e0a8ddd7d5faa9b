package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/conorfennell/vocabdrill/internal/config"
	"github.com/conorfennell/vocabdrill/internal/gitsource"
	"github.com/conorfennell/vocabdrill/internal/scheduler"
	"github.com/conorfennell/vocabdrill/internal/storage"
	"github.com/conorfennell/vocabdrill/internal/wordbook"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// globalOptions are the flags shared by every command.
type globalOptions struct {
	dataDir string
	profile string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "vocabdrill",
		Short: "Drill vocabulary with spaced repetition",
		Long: `Drill vocabulary with spaced repetition.

Words are drawn from a CSV word book in batches. Each batch is reviewed until
every word is typed correctly, then rescheduled according to the profile's
interval table and retired once the table is exhausted.

A profile's database must not be used by two processes at the same time.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.dataDir, "data-dir", defaultDataDir(), "Directory holding profile settings and databases")
	cmd.PersistentFlags().StringVarP(&opts.profile, "profile", "p", "default", "Profile name")
	cmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")

	cmd.AddCommand(newInitCmd(opts))
	cmd.AddCommand(newPracticeCmd(opts))
	cmd.AddCommand(newStatusCmd(opts))

	return cmd
}

func defaultDataDir() string {
	if dir := os.Getenv(config.EnvPrefix + "DATA_DIR"); dir != "" {
		return dir
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "vocabdrill")
	}
	return "."
}

// profile bundles everything a command needs to work on one profile.
type profile struct {
	settings config.Settings
	db       *storage.DB
}

// openProfile loads settings, configures logging and opens the database.
func openProfile(cmd *cobra.Command, opts *globalOptions) (*profile, error) {
	settings, err := config.Load(opts.dataDir, opts.profile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	setupLogging(settings.LogLevel)

	if err := os.MkdirAll(opts.dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", opts.dataDir, err)
	}
	dbPath := filepath.Join(opts.dataDir, opts.profile+".db")
	db, err := storage.Open(dbPath)
	if err != nil {
		return nil, err
	}
	slog.Debug("Database opened", "path", dbPath)

	if err := db.SeedCursor(settings.CurrentIndex); err != nil {
		db.Close()
		return nil, err
	}
	return &profile{settings: settings, db: db}, nil
}

func (p *profile) scheduler(dataDir string) (*scheduler.Scheduler, error) {
	bookPath, err := gitsource.Resolve(dataDir, p.settings.WordBookRepo, p.settings.WordBook)
	if err != nil {
		return nil, fmt.Errorf("failed to locate word book: %w", err)
	}
	return scheduler.New(p.db, wordbook.File(bookPath), scheduler.Config{
		BatchSize: p.settings.BatchSize,
		Intervals: p.settings.IntervalTable(),
	})
}

func setupLogging(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelWarn
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}
