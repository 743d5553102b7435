// Package config holds the tunable parameters for the voxel streaming core.
package config

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config captures everything needed to bootstrap the world pipeline and the
// window that drives it.
type Config struct {
	World  WorldConfig  `yaml:"world"`
	Window WindowConfig `yaml:"window"`
}

type WorldConfig struct {
	Seed int64 `yaml:"seed"`

	// Chunk volume is ChunkWidth x ChunkHeight x ChunkWidth voxels.
	ChunkWidth  int `yaml:"chunkWidth"`
	ChunkHeight int `yaml:"chunkHeight"`

	// RenderRadius is the horizontal admission radius in chunks. Eviction
	// happens at RenderRadius+2 to keep boundary oscillation from thrashing.
	RenderRadius int `yaml:"renderRadius"`

	// VerticalChunks is how many chunk layers are stacked on the Y axis,
	// centered on zero.
	VerticalChunks int `yaml:"verticalChunks"`

	GenWorkers  int `yaml:"genWorkers"`
	MeshWorkers int `yaml:"meshWorkers"`

	// FluidBudget and LightBudget bound queue work drained per frame.
	FluidBudget int `yaml:"fluidBudget"`
	LightBudget int `yaml:"lightBudget"`
}

type WindowConfig struct {
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	Title  string  `yaml:"title"`
	Vsync  bool    `yaml:"vsync"`
	FOV    float32 `yaml:"fov"`
}

// Default returns the canonical tuning used when no config file is present.
func Default() Config {
	genWorkers := runtime.NumCPU()
	meshWorkers := genWorkers / 2
	if meshWorkers < 1 {
		meshWorkers = 1
	}
	return Config{
		World: WorldConfig{
			Seed:           12,
			ChunkWidth:     16,
			ChunkHeight:    16,
			RenderRadius:   16,
			VerticalChunks: 16,
			GenWorkers:     genWorkers,
			MeshWorkers:    meshWorkers,
			FluidBudget:    64,
			LightBudget:    128,
		},
		Window: WindowConfig{
			Width:  1600,
			Height: 900,
			Title:  "Odyssey",
			Vsync:  true,
			FOV:    70,
		},
	}
}

// Load reads a YAML config from path, layering it over Default. A missing
// file is not an error: the defaults are returned as-is.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.normalize()
	return cfg, nil
}

// normalize clamps values that would break the pipeline rather than
// rejecting the file outright.
func (c *Config) normalize() {
	w := &c.World
	if w.ChunkWidth <= 0 {
		w.ChunkWidth = 16
	}
	if w.ChunkHeight <= 0 {
		w.ChunkHeight = 16
	}
	if w.RenderRadius < 1 {
		w.RenderRadius = 1
	}
	if w.VerticalChunks < 1 {
		w.VerticalChunks = 1
	}
	if w.GenWorkers < 1 {
		w.GenWorkers = 1
	}
	if w.MeshWorkers < 1 {
		w.MeshWorkers = 1
	}
	if w.FluidBudget < 1 {
		w.FluidBudget = 1
	}
	if w.LightBudget < 1 {
		w.LightBudget = 1
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		c.Window.Width = 1600
		c.Window.Height = 900
	}
	if c.Window.FOV <= 0 {
		c.Window.FOV = 70
	}
}
