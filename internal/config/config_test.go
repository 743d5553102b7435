package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load missing file: %v", err)
	}
	if cfg.World.ChunkWidth != 16 || cfg.World.RenderRadius != 16 {
		t.Fatalf("unexpected defaults: %+v", cfg.World)
	}
}

func TestLoadOverridesAndNormalizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte("world:\n  seed: 99\n  renderRadius: 4\n  meshWorkers: -3\n")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.World.Seed != 99 {
		t.Fatalf("seed = %d, want 99", cfg.World.Seed)
	}
	if cfg.World.RenderRadius != 4 {
		t.Fatalf("renderRadius = %d, want 4", cfg.World.RenderRadius)
	}
	if cfg.World.MeshWorkers < 1 {
		t.Fatalf("meshWorkers = %d, want >= 1", cfg.World.MeshWorkers)
	}
	// Untouched fields keep their defaults.
	if cfg.World.ChunkHeight != 16 {
		t.Fatalf("chunkHeight = %d, want 16", cfg.World.ChunkHeight)
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{not yaml"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
