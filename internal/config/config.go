package config

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"voxcore/internal/packing"
	"voxcore/internal/shading"
)

// Store drivers.
const (
	DriverSQLite = "sqlite"
	DriverBadger = "badger"
)

// Render distance bounds, in chunks.
const (
	MinRenderDistance = 2
	MaxRenderDistance = 32
)

// Config is the file-level configuration shared by the tools.
type Config struct {
	Store       StoreConfig  `yaml:"store"`
	Mesh        MeshConfig   `yaml:"mesh"`
	Render      RenderConfig `yaml:"render"`
	MetricsAddr string       `yaml:"metrics_addr"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Driver string `yaml:"driver"`
	// Path is the SQLite file or the Badger directory. An empty Badger path runs in memory.
	Path string `yaml:"path"`
}

// MeshConfig sizes the encoder pool and picks the packed layout.
type MeshConfig struct {
	Workers   int    `yaml:"workers"`
	QueueSize int    `yaml:"queue_size"`
	Layout    string `yaml:"layout"`
}

// RenderConfig configures the shading stage.
type RenderConfig struct {
	Variant  string     `yaml:"variant"`
	Distance int        `yaml:"distance"`
	FogStart float32    `yaml:"fog_start"`
	FogEnd   float32    `yaml:"fog_end"`
	FogColor [3]float32 `yaml:"fog_color"`
	FlipV    bool       `yaml:"flip_v"`
	Textures string     `yaml:"textures"`
	// FPSLimit caps the viewer frame rate. Zero or less disables the cap.
	FPSLimit int        `yaml:"fps_limit"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Store: StoreConfig{Driver: DriverSQLite, Path: "world.sqlite"},
		Mesh:  MeshConfig{Workers: 4, QueueSize: 256, Layout: packing.Tex13AO.Name},
		Render: RenderConfig{
			Variant:  shading.TexturedAOInteraction.Name,
			Distance: 8,
			FogStart: 80,
			FogEnd:   90,
			FogColor: [3]float32{0.6, 0.75, 0.9},
			Textures: "assets/textures",
			FPSLimit: 120,
		},
	}
}

// Load reads path over the defaults and validates the result. An empty path returns the
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Render.Distance = clampDistance(cfg.Render.Distance)
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail deep inside a component.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case DriverSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for sqlite")
		}
	case DriverBadger:
	default:
		return fmt.Errorf("store.driver %q: want %s or %s", c.Store.Driver, DriverSQLite, DriverBadger)
	}

	if c.Mesh.Workers < 1 {
		return fmt.Errorf("mesh.workers must be at least 1, got %d", c.Mesh.Workers)
	}
	if c.Mesh.QueueSize < 1 {
		return fmt.Errorf("mesh.queue_size must be at least 1, got %d", c.Mesh.QueueSize)
	}
	if c.Render.FogStart < 0 || c.Render.FogStart >= c.Render.FogEnd {
		return fmt.Errorf("render fog band [%g, %g] is empty", c.Render.FogStart, c.Render.FogEnd)
	}

	layout, err := c.Layout()
	if err != nil {
		return err
	}
	variant, err := c.Variant()
	if err != nil {
		return err
	}
	return variant.Check(layout)
}

// Layout resolves mesh.layout.
func (c Config) Layout() (packing.Layout, error) {
	return packing.Lookup(c.Mesh.Layout)
}

// Variant resolves render.variant.
func (c Config) Variant() (shading.Variant, error) {
	return shading.LookupVariant(c.Render.Variant)
}

// RenderSettings holds the live render distance, which the viewer changes at runtime.
type RenderSettings struct {
	mu             sync.RWMutex
	renderDistance int // in chunks
}

var globalRenderSettings = &RenderSettings{
	renderDistance: 8,
}

// GetRenderDistance returns the current render distance in chunks
func GetRenderDistance() int {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.renderDistance
}

// SetRenderDistance sets the render distance in chunks, clamped to the supported range.
func SetRenderDistance(distance int) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.renderDistance = clampDistance(distance)
}

func clampDistance(distance int) int {
	return min(max(distance, MinRenderDistance), MaxRenderDistance)
}

// GetChunkLoadRadius returns radius for chunk loading
func GetChunkLoadRadius() int {
	return GetRenderDistance()
}

// GetChunkEvictRadius returns radius for chunk eviction (larger than load radius)
func GetChunkEvictRadius() int {
	return GetRenderDistance() + 2
}
