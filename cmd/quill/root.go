package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/quillworks/quill/internal/backup"
	"github.com/quillworks/quill/internal/config"
	"github.com/quillworks/quill/internal/document"
	"github.com/quillworks/quill/internal/events"
	storagefile "github.com/quillworks/quill/internal/storage/file"
)

var (
	flagConfig  string
	flagDataDir string
)

var rootCmd = &cobra.Command{
	Use:   "quill",
	Short: "Project persistence and backup for writing projects",
	Long: `quill manages writing projects as plain JSON files: durable saves,
zip backup archives with retention, per-document version snapshots, and
reusable project templates.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default ./quill.yaml, then ~/.quill/quill.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "override the managed data directory")

	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(templateCmd)
}

// app bundles the wired services the command handlers use.
type app struct {
	cfg      config.Config
	logger   *log.Logger
	repo     *storagefile.Repository
	docs     document.Store
	backups  *backup.Engine
	versions *backup.Versions
}

// buildApp is the composition root: config, logger, repository, document
// store, engines, and the event sink.
func buildApp() (*app, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagDataDir != "" {
		// Relocating the data dir moves the whole managed tree.
		cfg.DataDir = flagDataDir
		cfg.BackupDir = filepath.Join(flagDataDir, "backups")
		cfg.VersionsDir = filepath.Join(flagDataDir, "backups", "versions")
	}

	logger := cfg.NewLogger("[quill] ")
	publisher := &events.LogPublisher{Logger: logger}

	repoCfg := storagefile.DefaultConfig(cfg.DataDir)
	repoCfg.Logger = logger
	repoCfg.Publisher = publisher
	repo, err := storagefile.New(repoCfg)
	if err != nil {
		return nil, err
	}

	docs, err := document.NewFileStore(filepath.Join(cfg.DataDir, "documents"), logger)
	if err != nil {
		repo.Close()
		return nil, err
	}

	backupCfg := backup.DefaultConfig(cfg.BackupDir)
	backupCfg.MaxBackups = cfg.MaxBackups
	backupCfg.AutoInterval = cfg.AutoInterval
	backupCfg.Logger = logger
	backupCfg.Publisher = publisher
	engine, err := backup.NewEngine(backupCfg, repo, docs)
	if err != nil {
		repo.Close()
		return nil, err
	}

	versions, err := backup.NewVersions(cfg.VersionsDir, cfg.MaxVersions, logger, publisher)
	if err != nil {
		repo.Close()
		return nil, err
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		repo:     repo,
		docs:     docs,
		backups:  engine,
		versions: versions,
	}, nil
}

// Close releases the repository's watcher.
func (a *app) Close() {
	if err := a.repo.Close(); err != nil {
		a.logger.Printf("close repository: %v", err)
	}
}

// fatal prints the error and exits, the way every command handler
// reports unrecoverable failures.
func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
