package registry

import (
	"testing"

	"voxcore/internal/world"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTextureLayers(t *testing.T) {
	r := Default()
	assert.Equal(t, []string{"rock.png", "dirt.png", "grass.png", "grass_side.png", "leaves.png", "glass.png"}, r.TextureNames)

	tests := []struct {
		block world.BlockType
		face  world.BlockFace
		layer int
	}{
		{world.BlockTypeRock, world.FaceTop, 0},
		{world.BlockTypeRock, world.FaceLeft, 0},
		{world.BlockTypeGrass, world.FaceTop, 2},
		{world.BlockTypeGrass, world.FaceFront, 3},
		{world.BlockTypeGrass, world.FaceBottom, 1},
		{world.BlockTypeGlass, world.FaceBack, 5},
	}
	for _, tt := range tests {
		layer, ok := r.TextureLayer(tt.block, tt.face)
		require.True(t, ok, "%v %v", tt.block, tt.face)
		assert.Equal(t, tt.layer, layer, "%v %v", tt.block, tt.face)
	}

	_, ok := r.TextureLayer(world.BlockTypeAir, world.FaceTop)
	assert.False(t, ok, "air has no texture")
}

func TestLookup(t *testing.T) {
	r := Default()
	id, err := r.Lookup("leaves")
	require.NoError(t, err)
	assert.Equal(t, world.BlockTypeLeaves, id)
	assert.Equal(t, "leaves", r.Name(id))

	_, err = r.Lookup("bedrock")
	assert.Error(t, err)
	assert.Equal(t, float32(1), r.Hardness(world.BlockType(200)))
}
