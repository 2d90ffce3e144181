package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultBudgets(t *testing.T) {
	cfg := Default()
	if cfg.Budgets.MaxFiles != 20000 {
		t.Fatalf("unexpected default max files: %d", cfg.Budgets.MaxFiles)
	}
}

func TestLoadFileMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	data := "log_level = \"debug\"\n\n[budgets]\nmax_files = 500\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(Default(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected file to override log level, got %q", cfg.LogLevel)
	}
	if cfg.Budgets.MaxFiles != 500 {
		t.Fatalf("expected file to override max files, got %d", cfg.Budgets.MaxFiles)
	}
	if cfg.WorkspaceSymbolCap != 10000 {
		t.Fatalf("expected unrelated default to survive merge, got %d", cfg.WorkspaceSymbolCap)
	}
}

func TestLoadFileMissingIsNotAnError(t *testing.T) {
	cfg, err := LoadFile(Default(), filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("expected no error for a missing config file, got %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("expected defaults to survive, got %q", cfg.LogLevel)
	}
}

func TestApplyEnvOverridesWorkspaceSymbolCap(t *testing.T) {
	t.Setenv("WORKSPACE_SYMBOL_CAP", "42")
	cfg := ApplyEnv(Default())
	if cfg.WorkspaceSymbolCap != 42 {
		t.Fatalf("expected env override to apply, got %d", cfg.WorkspaceSymbolCap)
	}
}
