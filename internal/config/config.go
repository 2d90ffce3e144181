// Package config loads server configuration from, in ascending
// precedence, built-in defaults, a TOML file, environment variables,
// and command-line flags.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Budgets mirrors index.Budgets in plain durations-as-milliseconds form,
// the shape a TOML file or flag set naturally produces.
type Budgets struct {
	MaxFiles            int `toml:"max_files"`
	InitialScanBudgetMs int `toml:"initial_scan_budget_ms"`
	IncrementalBudgetMs int `toml:"incremental_budget_ms"`
	SettleWindowMs      int `toml:"settle_window_ms"`
}

// ToolPaths resolves external tool binaries the toolrunner shells out
// to; empty means "look up $PATH".
type ToolPaths struct {
	PerlTidy   string `toml:"perltidy"`
	PerlCritic string `toml:"perlcritic"`
	Prove      string `toml:"prove"`
}

// Config is the fully resolved server configuration.
type Config struct {
	WorkspaceRoots    []string `toml:"workspace_roots"`
	LogLevel          string   `toml:"log_level"`
	TraceLevel        string   `toml:"trace_level"`
	WorkspaceSymbolCap int     `toml:"workspace_symbol_cap"`
	ToolTimeoutMs     int      `toml:"tool_timeout_ms"`

	Budgets Budgets   `toml:"budgets"`
	Tools   ToolPaths `toml:"tools"`
}

// Default returns the built-in configuration baseline, before any file,
// environment, or flag overrides are applied.
func Default() Config {
	return Config{
		LogLevel:           "info",
		TraceLevel:         "off",
		WorkspaceSymbolCap: 10000,
		ToolTimeoutMs:      10000,
		Budgets: Budgets{
			MaxFiles:            20000,
			InitialScanBudgetMs: 10000,
			IncrementalBudgetMs: 2000,
			SettleWindowMs:      1500,
		},
	}
}

// LoadFile merges a TOML config file at path over cfg, returning the
// merged result. A missing file is not an error - callers pass an
// optional --config PATH.
func LoadFile(cfg Config, path string) (Config, error) {
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv applies the environment variables that can override a file-
// or default-derived Config, after the file and before flags.
func ApplyEnv(cfg Config) Config {
	if v := os.Getenv("PERL_LSP_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("PERL_LSP_TRACE_LEVEL"); v != "" {
		cfg.TraceLevel = v
	}
	if v := os.Getenv("WORKSPACE_SYMBOL_CAP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.WorkspaceSymbolCap = n
		}
	}
	if v := os.Getenv("PERL_LSP_TOOL_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.ToolTimeoutMs = n
		}
	}
	return cfg
}

// ToolTimeout returns the configured tool timeout as a time.Duration.
func (c Config) ToolTimeout() time.Duration {
	return time.Duration(c.ToolTimeoutMs) * time.Millisecond
}

// InitialScanBudget returns the configured initial-scan budget as a
// time.Duration.
func (c Config) InitialScanBudget() time.Duration {
	return time.Duration(c.Budgets.InitialScanBudgetMs) * time.Millisecond
}

// IncrementalBudget returns the configured per-change indexing budget
// as a time.Duration.
func (c Config) IncrementalBudget() time.Duration {
	return time.Duration(c.Budgets.IncrementalBudgetMs) * time.Millisecond
}

// SettleWindow returns the configured Degraded->Recovering settle
// window as a time.Duration.
func (c Config) SettleWindow() time.Duration {
	return time.Duration(c.Budgets.SettleWindowMs) * time.Millisecond
}
