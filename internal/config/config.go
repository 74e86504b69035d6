// Package config provides application configuration with support for
// command-line flags, environment variables, and .env files.
package config

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Storage modes.
const (
	ModeAuto      = "auto"
	ModeDirectory = "directory"
	ModeBadger    = "badger"
)

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Storage StorageConfig
	Backup  BackupConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string `env:"ICONVAULT_ENV" envDefault:"development"`
	Version     string `env:"-"`
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string `env:"ICONVAULT_LOG_LEVEL" envDefault:"info"`
}

// StorageConfig holds storage backend configuration.
type StorageConfig struct {
	// Mode selects the backend: auto, directory, or badger.
	// auto picks directory when a workspace is configured or remembered,
	// and falls back to badger otherwise.
	Mode string `env:"ICONVAULT_STORAGE_MODE" envDefault:"auto"`
	// Workspace is the user-chosen directory for directory mode.
	Workspace string `env:"ICONVAULT_WORKSPACE"`
	// BadgerPath is the database directory for key-value mode.
	BadgerPath string `env:"ICONVAULT_BADGER_PATH"`
	// StatePath is where the remembered workspace handle is stored.
	StatePath string `env:"ICONVAULT_STATE_PATH"`
}

// BackupConfig holds backup configuration.
type BackupConfig struct {
	Dir string `env:"ICONVAULT_BACKUP_DIR"`
}

// Version is stamped at build time via -ldflags.
var Version = "dev"

// Load builds configuration with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
//
// It parses leading global flags from args and returns the remaining
// arguments (subcommand and its operands).
func Load(args []string) (*Config, []string, error) {
	fs := flag.NewFlagSet("iconvault", flag.ContinueOnError)
	environment := fs.String("env", "", "Environment (development, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	storageMode := fs.String("storage-mode", "", "Storage mode (auto, directory, badger)")
	workspace := fs.String("workspace", "", "Workspace directory for directory mode")
	badgerPath := fs.String("badger-path", "", "Database directory for key-value mode")
	backupDir := fs.String("backup-dir", "", "Directory for backup archives")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, nil, fmt.Errorf("parse environment: %w", err)
	}
	cfg.App.Version = Version

	// Flags override environment.
	applyFlag(&cfg.App.Environment, *environment)
	applyFlag(&cfg.Logger.Level, *logLevel)
	applyFlag(&cfg.Storage.Mode, *storageMode)
	applyFlag(&cfg.Storage.Workspace, *workspace)
	applyFlag(&cfg.Storage.BadgerPath, *badgerPath)
	applyFlag(&cfg.Backup.Dir, *backupDir)

	if err := cfg.applyDefaults(); err != nil {
		return nil, nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, nil, err
	}

	return cfg, fs.Args(), nil
}

// applyDefaults fills path defaults derived from the user's home directory.
func (c *Config) applyDefaults() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("resolve home directory: %w", err)
	}
	dataRoot := filepath.Join(home, "IconVault")

	if c.Storage.BadgerPath == "" {
		c.Storage.BadgerPath = filepath.Join(dataRoot, "db")
	}
	if c.Backup.Dir == "" {
		c.Backup.Dir = filepath.Join(dataRoot, "backups")
	}
	if c.Storage.StatePath == "" {
		confDir, err := os.UserConfigDir()
		if err != nil {
			confDir = filepath.Join(home, ".config")
		}
		c.Storage.StatePath = filepath.Join(confDir, "iconvault", "state.json")
	}
	return nil
}

func (c *Config) validate() error {
	switch c.Storage.Mode {
	case ModeAuto, ModeDirectory, ModeBadger:
	default:
		return fmt.Errorf("invalid storage mode %q (want auto, directory, or badger)", c.Storage.Mode)
	}
	return nil
}

// applyFlag overrides dst when the flag was set to a non-empty value.
func applyFlag(dst *string, flagValue string) {
	if flagValue != "" {
		*dst = flagValue
	}
}

// loadEnvFile reads KEY=VALUE pairs from a .env file and sets any that are
// not already present in the environment, so real env vars win.
func loadEnvFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if _, exists := os.LookupEnv(key); !exists {
			os.Setenv(key, value)
		}
	}
	return scanner.Err()
}
