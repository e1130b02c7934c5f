package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxcore/internal/packing"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voxcore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  driver: badger
  path: ""
mesh:
  workers: 2
render:
  distance: 100
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DriverBadger, cfg.Store.Driver)
	assert.Equal(t, 2, cfg.Mesh.Workers)
	assert.Equal(t, 256, cfg.Mesh.QueueSize, "default kept")
	assert.Equal(t, MaxRenderDistance, cfg.Render.Distance, "clamped")
	assert.Equal(t, float32(80), cfg.Render.FogStart)
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"driver", func(c *Config) { c.Store.Driver = "postgres" }},
		{"sqlite path", func(c *Config) { c.Store.Path = "" }},
		{"workers", func(c *Config) { c.Mesh.Workers = 0 }},
		{"queue", func(c *Config) { c.Mesh.QueueSize = 0 }},
		{"fog band", func(c *Config) { c.Render.FogEnd = c.Render.FogStart }},
		{"layout", func(c *Config) { c.Mesh.Layout = "tex99" }},
		{"variant", func(c *Config) { c.Render.Variant = "wireframe" }},
		{"ao variant without ao bits", func(c *Config) { c.Mesh.Layout = "tex15" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateLayoutMismatchIsTyped(t *testing.T) {
	cfg := Default()
	cfg.Mesh.Layout = "legacy18"
	assert.ErrorIs(t, cfg.Validate(), packing.ErrLayoutMismatch)
}

func TestSetRenderDistanceClamps(t *testing.T) {
	defer SetRenderDistance(GetRenderDistance())

	SetRenderDistance(0)
	assert.Equal(t, MinRenderDistance, GetRenderDistance())
	SetRenderDistance(1000)
	assert.Equal(t, MaxRenderDistance, GetRenderDistance())
	SetRenderDistance(10)
	assert.Equal(t, 10, GetRenderDistance())
	assert.Equal(t, 12, GetChunkEvictRadius())
}
