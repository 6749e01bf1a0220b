// Package config loads the application configuration and builds the
// shared logger. The config is constructed once at the composition root
// and passed down explicitly; there is no process-wide accessor.
package config

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config is the application-level configuration.
type Config struct {
	// DataDir is the managed storage root. Defaults to
	// ~/.quill on an empty value.
	DataDir string `mapstructure:"data_dir"`

	// BackupDir is where archives go. Defaults to DataDir/backups.
	BackupDir string `mapstructure:"backup_dir"`

	// VersionsDir is where document snapshots go. Defaults to
	// BackupDir/versions.
	VersionsDir string `mapstructure:"versions_dir"`

	MaxBackups   int           `mapstructure:"max_backups"`
	MaxVersions  int           `mapstructure:"max_versions"`
	AutoInterval time.Duration `mapstructure:"auto_backup_interval"`

	// Defaults applied to newly created projects.
	DefaultAuthor string `mapstructure:"default_author"`
	DefaultGenre  string `mapstructure:"default_genre"`

	Log LogConfig `mapstructure:"log"`
}

// LogConfig controls the rotating application log.
type LogConfig struct {
	// File is the log path. Empty means DataDir/quill.log.
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`

	// Quiet suppresses the stderr copy of log output.
	Quiet bool `mapstructure:"quiet"`
}

// Default returns the configuration used when no config file exists.
func Default() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	dataDir := filepath.Join(home, ".quill")
	return Config{
		DataDir:      dataDir,
		BackupDir:    filepath.Join(dataDir, "backups"),
		VersionsDir:  filepath.Join(dataDir, "backups", "versions"),
		MaxBackups:   50,
		MaxVersions:  20,
		AutoInterval: 30 * time.Minute,
		Log: LogConfig{
			File:       filepath.Join(dataDir, "quill.log"),
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 30,
		},
	}
}

// Load reads the YAML config at path, or the default locations
// (./quill.yaml, then ~/.quill/quill.yaml) when path is empty. A missing
// file is not an error; defaults apply.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("quill")
		v.AddConfigPath(".")
		v.AddConfigPath(Default().DataDir)
	}
	v.SetEnvPrefix("QUILL")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Without an explicit path, running configless is fine.
		if path == "" {
			return Default(), nil
		}
		return Default(), fmt.Errorf("read config: %w", err)
	}

	// Unmarshal into a zero value so paths left out of the file are
	// derived from the configured data dir, not the built-in one.
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Default(), fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults fills in fields the config file left empty.
func (c *Config) applyDefaults() {
	d := Default()
	if c.DataDir == "" {
		c.DataDir = d.DataDir
	}
	if c.BackupDir == "" {
		c.BackupDir = filepath.Join(c.DataDir, "backups")
	}
	if c.VersionsDir == "" {
		c.VersionsDir = filepath.Join(c.BackupDir, "versions")
	}
	if c.MaxBackups <= 0 {
		c.MaxBackups = d.MaxBackups
	}
	if c.MaxVersions <= 0 {
		c.MaxVersions = d.MaxVersions
	}
	if c.AutoInterval <= 0 {
		c.AutoInterval = d.AutoInterval
	}
	if c.Log.File == "" {
		c.Log.File = filepath.Join(c.DataDir, "quill.log")
	}
	if c.Log.MaxSizeMB <= 0 {
		c.Log.MaxSizeMB = d.Log.MaxSizeMB
	}
	if c.Log.MaxBackups <= 0 {
		c.Log.MaxBackups = d.Log.MaxBackups
	}
	if c.Log.MaxAgeDays <= 0 {
		c.Log.MaxAgeDays = d.Log.MaxAgeDays
	}
}

// NewLogger builds the application logger: a rotating file via
// lumberjack, tee'd to stderr unless quiet.
func (c *Config) NewLogger(prefix string) *log.Logger {
	rotating := &lumberjack.Logger{
		Filename:   c.Log.File,
		MaxSize:    c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
		MaxAge:     c.Log.MaxAgeDays,
	}
	var out io.Writer = rotating
	if !c.Log.Quiet {
		out = io.MultiWriter(rotating, os.Stderr)
	}
	return log.New(out, prefix, log.LstdFlags)
}
