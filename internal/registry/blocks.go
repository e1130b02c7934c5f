package registry

import (
	"fmt"

	"voxcore/internal/world"
)

// BlockDefinition defines the properties of a block type
type BlockDefinition struct {
	ID            world.BlockType
	Name          string
	TextureTop    string
	TextureSide   string
	TextureBot    string
	IsTransparent bool
	Color         uint32 // 0xRRGGBB, used by flat-color layouts
	Hardness      float32
}

// Registry maps block ids to their definitions and texture layers. Texture layers are
// numbered in registration order, which is also the layer order of the texture array.
type Registry struct {
	Blocks       map[world.BlockType]*BlockDefinition
	BlockNames   map[string]world.BlockType
	TextureNames []string
	TextureMap   map[string]int
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		Blocks:     make(map[world.BlockType]*BlockDefinition),
		BlockNames: make(map[string]world.BlockType),
		TextureMap: make(map[string]int),
	}
}

// RegisterBlock adds def and its textures. Empty side or bottom textures fall back to the
// top texture.
func (r *Registry) RegisterBlock(def *BlockDefinition) {
	if def.TextureSide == "" {
		def.TextureSide = def.TextureTop
	}
	if def.TextureBot == "" {
		def.TextureBot = def.TextureSide
	}

	r.Blocks[def.ID] = def
	r.BlockNames[def.Name] = def.ID

	r.registerTexture(def.TextureTop)
	r.registerTexture(def.TextureSide)
	r.registerTexture(def.TextureBot)
}

func (r *Registry) registerTexture(name string) {
	if name == "" {
		return
	}
	if _, exists := r.TextureMap[name]; !exists {
		r.TextureMap[name] = len(r.TextureNames)
		r.TextureNames = append(r.TextureNames, name)
	}
}

// TextureLayer returns the texture array layer drawn on face of block b.
func (r *Registry) TextureLayer(b world.BlockType, face world.BlockFace) (int, bool) {
	def, ok := r.Blocks[b]
	if !ok {
		return 0, false
	}
	name := def.TextureSide
	switch face {
	case world.FaceTop:
		name = def.TextureTop
	case world.FaceBottom:
		name = def.TextureBot
	}
	layer, ok := r.TextureMap[name]
	return layer, ok
}

// Color returns the flat color of block b.
func (r *Registry) Color(b world.BlockType) uint32 {
	if def, ok := r.Blocks[b]; ok {
		return def.Color
	}
	return 0
}

// Hardness returns the break-time multiplier of block b. Unknown blocks have hardness 1.
func (r *Registry) Hardness(b world.BlockType) float32 {
	if def, ok := r.Blocks[b]; ok {
		return def.Hardness
	}
	return 1
}

// Lookup resolves a block name such as "rock".
func (r *Registry) Lookup(name string) (world.BlockType, error) {
	id, ok := r.BlockNames[name]
	if !ok {
		return 0, fmt.Errorf("unknown block %q", name)
	}
	return id, nil
}

// Name returns the registered name of block b.
func (r *Registry) Name(b world.BlockType) string {
	if def, ok := r.Blocks[b]; ok {
		return def.Name
	}
	return fmt.Sprintf("block#%d", b)
}

// Default builds the registry of the built-in blocks. Layer order is rock, dirt, grass,
// grass_side, leaves, glass.
func Default() *Registry {
	r := New()

	r.RegisterBlock(&BlockDefinition{
		ID:   world.BlockTypeAir,
		Name: "air",
	})
	r.RegisterBlock(&BlockDefinition{
		ID:         world.BlockTypeRock,
		Name:       "rock",
		TextureTop: "rock.png",
		Color:      0x7f7f7f,
		Hardness:   1,
	})
	r.RegisterBlock(&BlockDefinition{
		ID:         world.BlockTypeDirt,
		Name:       "dirt",
		TextureTop: "dirt.png",
		Color:      0x866043,
		Hardness:   1,
	})
	r.RegisterBlock(&BlockDefinition{
		ID:          world.BlockTypeGrass,
		Name:        "grass",
		TextureTop:  "grass.png",
		TextureSide: "grass_side.png",
		TextureBot:  "dirt.png",
		Color:       0x5d9b3a,
		Hardness:    1,
	})
	r.RegisterBlock(&BlockDefinition{
		ID:            world.BlockTypeLeaves,
		Name:          "leaves",
		TextureTop:    "leaves.png",
		IsTransparent: true,
		Color:         0x3a7a26,
		Hardness:      1,
	})
	r.RegisterBlock(&BlockDefinition{
		ID:            world.BlockTypeGlass,
		Name:          "glass",
		TextureTop:    "glass.png",
		IsTransparent: true,
		Color:         0xc8e6f0,
		Hardness:      1,
	})

	return r
}
