package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TopFilesPerCategory != 20 || cfg.Parallelism != "high" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "threads: 4\nparallelism: low\ntop_files_per_category: 5\nprogress_interval_ms: 1000\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Threads != 4 || cfg.Parallelism != "low" || cfg.TopFilesPerCategory != 5 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.ProgressIntervalMs != 1000 {
		t.Fatalf("progress interval = %d, want 1000", cfg.ProgressIntervalMs)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("parallelism: turbo\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error for bad parallelism")
	}

	if err := os.WriteFile(path, []byte("threads: -3\nparallelism: low\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error for negative threads")
	}
}
