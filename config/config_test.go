package config

import (
	"path/filepath"
	"testing"
)

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Execution.MaxCycles != DefaultConfig().Execution.MaxCycles {
		t.Fatalf("MaxCycles = %d, want default", cfg.Execution.MaxCycles)
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := DefaultConfig()
	cfg.Execution.MaxCycles = 42
	cfg.Rand.UseSeed = true
	cfg.Rand.Seed = 7

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if got.Execution.MaxCycles != 42 {
		t.Fatalf("MaxCycles = %d, want 42", got.Execution.MaxCycles)
	}
	if !got.Rand.UseSeed || got.Rand.Seed != 7 {
		t.Fatalf("Rand = %+v, want UseSeed=true Seed=7", got.Rand)
	}
}
