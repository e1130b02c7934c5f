package graphics

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxcore/internal/packing"
	"voxcore/internal/shading"
	"voxcore/internal/world"
)

func TestVoxelSources(t *testing.T) {
	vert, frag, err := VoxelSources(packing.Tex13AO, shading.TexturedAOInteractionMip, true)
	require.NoError(t, err)

	for _, src := range []string{vert, frag} {
		assert.True(t, strings.HasPrefix(src, "#version 410 core\n"))
		assert.Contains(t, src, "#define VOX_TEXTURE_MASK 0x1fffu")
		assert.Contains(t, src, "#define VOX_SHADE_INTERACTION 1")
		assert.Contains(t, src, "#define VOX_PER_FACE 1")
		assert.Contains(t, src, "#define VOX_MIP_EMULATE 1")
		assert.Contains(t, src, "#define VOX_FLIP_V 1")
		assert.Contains(t, src, "#define VOX_AO_LOW 0.3")
		assert.Contains(t, src, "#define VOX_PULSE_RATE 4.0")
		assert.Contains(t, src, "#define VOX_PULSE_BIAS 0.7")
		assert.Equal(t, 1, strings.Count(src, "#version"))
	}
	assert.Contains(t, vert, "VOX_CORNERS[24]")
	assert.NotContains(t, frag, "VOX_CORNERS[24]")
	assert.Contains(t, frag, "discard;")
}

func TestVoxelSourcesMinimalVariant(t *testing.T) {
	vert, _, err := VoxelSources(packing.Tex15, shading.Textured, false)
	require.NoError(t, err)
	assert.NotContains(t, vert, "#define VOX_SHADE_AO")
	assert.NotContains(t, vert, "#define VOX_SHADE_INTERACTION")
	assert.NotContains(t, vert, "#define VOX_FLIP_V")
	assert.NotContains(t, vert, "VOX_PULSE_RATE")

	_, frag, err := VoxelSources(packing.Flat13AO, shading.FlatColor, false)
	require.NoError(t, err)
	assert.Contains(t, frag, "#define VOX_FLAT_COLOR 1")
	assert.Contains(t, frag, "#define VOX_COLOR_R_BITS 4u")
	assert.Contains(t, frag, "#define VOX_AO_LOW 0.6")
}

func TestVoxelSourcesRejectsMismatch(t *testing.T) {
	_, _, err := VoxelSources(packing.Legacy18, shading.TexturedAO, false)
	assert.True(t, errors.Is(err, packing.ErrLayoutMismatch))
}

func TestGLSLFloat(t *testing.T) {
	assert.Equal(t, "3.0", glslFloat(3))
	assert.Equal(t, "0.8", glslFloat(0.8))
	assert.Equal(t, "1e-07", glslFloat(1e-7))
}

func TestCameraFront(t *testing.T) {
	c := NewCamera(800, 600)
	assert.InDelta(t, 800.0/600.0, c.AspectRatio, 1e-6)
	assert.True(t, c.Front().ApproxEqualThreshold(mgl32.Vec3{0, 0, -1}, 1e-5))

	c.Yaw, c.Pitch = 0, 0
	assert.True(t, c.Front().ApproxEqualThreshold(mgl32.Vec3{1, 0, 0}, 1e-5))

	c.SetViewport(0, 0)
	assert.InDelta(t, 800.0/600.0, c.AspectRatio, 1e-6, "ignored")
}

func TestCameraMouseClampsPitch(t *testing.T) {
	c := NewCamera(100, 100)
	c.HandleMouseMovement(0, 0)
	c.HandleMouseMovement(50, -5000)
	assert.InDelta(t, -90+5, c.Yaw, 1e-4)
	assert.Equal(t, float32(89), c.Pitch)
}

func TestCameraMove(t *testing.T) {
	c := NewCamera(100, 100)
	c.Yaw = 0
	c.Pitch = 45
	c.Move(2, 0, 0)
	assert.True(t, c.Position.ApproxEqualThreshold(mgl32.Vec3{2, 0, 0}, 1e-5), "pitch does not lift")
	c.Move(0, 1, 3)
	assert.True(t, c.Position.ApproxEqualThreshold(mgl32.Vec3{2, 3, 1}, 1e-5))
}

func TestFrustumCulling(t *testing.T) {
	c := NewCamera(100, 100)
	c.Position = mgl32.Vec3{8, 8, 40}
	c.Yaw, c.Pitch = -90, 0 // looking down -Z
	f := NewFrustum(c.GetProjectionMatrix().Mul4(c.GetViewMatrix()))

	assert.True(t, f.ContainsChunk(world.ChunkCoord{}))
	assert.True(t, f.ContainsChunk(world.ChunkCoord{Z: 2}), "camera's own chunk")
	assert.False(t, f.ContainsChunk(world.ChunkCoord{Z: 5}), "behind")
	assert.False(t, f.ContainsChunk(world.ChunkCoord{X: 40}), "far to the side")
	assert.False(t, f.ContainsChunk(world.ChunkCoord{Z: -100}), "beyond the far plane")
}
