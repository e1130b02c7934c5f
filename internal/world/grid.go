package world

import "fmt"

const (
	// ChunkSize is the edge length of a chunk. Local coordinates are packed into 4 bits,
	// so this must stay at or below 16.
	ChunkSize = 16

	// ChunkVolume is the number of voxels in one chunk and the size of its raw blob.
	ChunkVolume = ChunkSize * ChunkSize * ChunkSize
)

// Grid holds the voxels of one chunk, indexed x + y*16 + z*256.
type Grid [ChunkVolume]BlockType

// Index converts local coordinates into a grid offset.
func Index(x, y, z int) int {
	return x + y*ChunkSize + z*ChunkSize*ChunkSize
}

// At returns the voxel at local coordinates. Out-of-range coordinates read as air.
func (g *Grid) At(x, y, z int) BlockType {
	if x < 0 || x >= ChunkSize || y < 0 || y >= ChunkSize || z < 0 || z >= ChunkSize {
		return BlockTypeAir
	}
	return g[Index(x, y, z)]
}

// Set stores a voxel. Out-of-range coordinates are ignored.
func (g *Grid) Set(x, y, z int, b BlockType) {
	if x < 0 || x >= ChunkSize || y < 0 || y >= ChunkSize || z < 0 || z >= ChunkSize {
		return
	}
	g[Index(x, y, z)] = b
}

// IsEmpty reports whether every voxel is air.
func (g *Grid) IsEmpty() bool {
	for _, b := range g {
		if b != BlockTypeAir {
			return false
		}
	}
	return true
}

// SolidCount returns the number of non-air voxels.
func (g *Grid) SolidCount() int {
	n := 0
	for _, b := range g {
		if b.IsSolid() {
			n++
		}
	}
	return n
}

// MarshalBinary returns the raw voxel bytes.
func (g *Grid) MarshalBinary() ([]byte, error) {
	out := make([]byte, ChunkVolume)
	for i, b := range g {
		out[i] = byte(b)
	}
	return out, nil
}

// UnmarshalBinary fills the grid from raw voxel bytes. The length must match exactly.
func (g *Grid) UnmarshalBinary(data []byte) error {
	if len(data) != ChunkVolume {
		return fmt.Errorf("grid blob is %d bytes, want %d", len(data), ChunkVolume)
	}
	for i, b := range data {
		g[i] = BlockType(b)
	}
	return nil
}
