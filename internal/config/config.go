// Package config resolves the host settings from a .env file and the
// process environment. Command-line flags are applied on top by cmd/signals.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvSerial      = "SIGNALS_SERIAL"
	EnvInstanceID  = "SIGNALS_INSTANCE_ID"
	EnvCacheDir    = "SIGNALS_CACHE_DIR"
	EnvTablesDir   = "SIGNALS_TABLES_DIR"
	EnvStartActive = "SIGNALS_START_ACTIVE"
	EnvDebug       = "SIGNALS_DEBUG"
)

// Defaults used when the environment leaves a setting unset.
const (
	DefaultSerial     = "AB1CD2"
	DefaultInstanceID = 1
)

// Config is everything the host needs to start a module.
type Config struct {
	Serial      string
	InstanceID  int
	CacheDir    string // debug.log, audit.jsonl and the history database live here
	TablesDir   string // empty means the embedded tables
	StartActive bool   // deliver Awake and Activate before the first prompt
	Debug       bool   // mirror debug logging to stderr
}

// Load reads envFile (a missing file is not an error) and then the
// environment.
//
// Expectations:
//   - Variables already set in the process win over the .env file
//   - A missing envFile is ignored; an unreadable one is an error
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %s: %w", envFile, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment.
//
// Expectations:
//   - Unset SIGNALS_SERIAL defaults to DefaultSerial; a set but empty value is kept
//   - SIGNALS_INSTANCE_ID must parse as an integer
//   - SIGNALS_START_ACTIVE and SIGNALS_DEBUG accept strconv.ParseBool forms
//   - SIGNALS_CACHE_DIR defaults to ~/.cache/signals
func FromEnv() (Config, error) {
	c := Config{
		Serial:     DefaultSerial,
		InstanceID: DefaultInstanceID,
		TablesDir:  os.Getenv(EnvTablesDir),
	}
	if v, ok := os.LookupEnv(EnvSerial); ok {
		c.Serial = strings.TrimSpace(v)
	}
	if v := os.Getenv(EnvInstanceID); v != "" {
		id, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return Config{}, fmt.Errorf("config: %s=%q: %w", EnvInstanceID, v, err)
		}
		c.InstanceID = id
	}

	var err error
	if c.StartActive, err = boolEnv(EnvStartActive); err != nil {
		return Config{}, err
	}
	if c.Debug, err = boolEnv(EnvDebug); err != nil {
		return Config{}, err
	}

	c.CacheDir = os.Getenv(EnvCacheDir)
	if c.CacheDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("config: resolve home dir: %w", err)
		}
		c.CacheDir = filepath.Join(home, ".cache", "signals")
	}
	return c, nil
}

func boolEnv(name string) (bool, error) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: %s=%q: %w", name, v, err)
	}
	return b, nil
}

// DebugLogPath is where the controller's debug log is written.
func (c Config) DebugLogPath() string { return filepath.Join(c.CacheDir, "debug.log") }

// AuditLogPath is the auditor's JSONL file.
func (c Config) AuditLogPath() string { return filepath.Join(c.CacheDir, "audit.jsonl") }

// HistoryPath is the LevelDB directory of the verdict history.
func (c Config) HistoryPath() string { return filepath.Join(c.CacheDir, "history") }
