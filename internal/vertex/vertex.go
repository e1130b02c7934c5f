// Package vertex rebuilds renderable vertices from packed words. It is the CPU rendition
// of what voxel.vert does on the GPU and shares its tables with the encoder through
// package packing.
package vertex

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"voxcore/internal/interaction"
	"voxcore/internal/packing"
	"voxcore/internal/world"
)

// Default AO floors.
const (
	AOLowTextured = 0.3
	AOLowFlat     = 0.6
)

// Options fixes how words are decoded. One value is shared by every vertex of a frame.
type Options struct {
	Layout packing.Layout
	// FlipV mirrors the v texture coordinate for bottom-up atlases.
	FlipV bool
	// AOLow is the brightness of a fully occluded corner.
	AOLow float32
	// Interaction enables tagging against the frame's signal.
	Interaction bool
	// PerFace restricts tagging to the signal's face.
	PerFace bool
}

// Vertex is one reconstructed corner.
type Vertex struct {
	Local    mgl32.Vec3 // position inside the chunk
	World    mgl32.Vec3
	UV       mgl32.Vec2
	Block    world.BlockPos
	Face     world.BlockFace
	Corner   int
	Texture  uint32
	AOLevel  uint32
	AO       float32
	Interact uint32
}

// Reconstruct decodes word, emitted for the chunk at coord, and tags it against sig.
// A layout without an AO field yields full brightness. A face code outside [0,5]
// yields the zero Vertex.
func Reconstruct(word uint32, coord world.ChunkCoord, sig interaction.Signal, opt Options) Vertex {
	f := opt.Layout.Unpack(word)
	if f.Face >= world.NumFaces {
		return Vertex{}
	}
	face := world.BlockFace(f.Face)
	corner := int(f.Corner)

	cell := mgl32.Vec3{float32(f.X), float32(f.Y), float32(f.Z)}
	local := cell.Add(packing.CornerOffsetVec(face, corner))

	v := Vertex{
		Local:   local,
		World:   local.Add(coord.Origin()),
		UV:      packing.CornerUV(corner, opt.FlipV),
		Face:    face,
		Corner:  corner,
		Texture: f.Texture,
		AOLevel: 3,
		AO:      1,
	}
	if opt.Layout.Has(packing.FieldAO) {
		v.AOLevel = f.AO
		v.AO = AOFactor(f.AO, opt.AOLow)
	}

	v.Block = world.LocalPos{X: int(f.X), Y: int(f.Y), Z: int(f.Z)}.World(coord)
	if opt.Interaction && sig.Matches(v.Block, face, opt.PerFace) {
		v.Interact = sig.Value
	}
	return v
}

// ReconstructQuad decodes four consecutive words of one face.
func ReconstructQuad(words []uint32, coord world.ChunkCoord, sig interaction.Signal, opt Options) ([packing.CornersPerQuad]Vertex, error) {
	var q [packing.CornersPerQuad]Vertex
	if len(words) != packing.CornersPerQuad {
		return q, fmt.Errorf("vertex: quad needs %d words, got %d", packing.CornersPerQuad, len(words))
	}
	for i, w := range words {
		if face := opt.Layout.Unpack(w).Face; face >= world.NumFaces {
			return q, fmt.Errorf("vertex: word %d has face code %d", i, face)
		}
		q[i] = Reconstruct(w, coord, sig, opt)
	}
	return q, nil
}

// AOFactor maps an AO level in [0,3] to a brightness, mix(low, 1, level/3).
func AOFactor(level uint32, low float32) float32 {
	if level > 3 {
		level = 3
	}
	t := float32(level) / 3
	return low*(1-t) + t
}
