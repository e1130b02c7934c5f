package world

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ChunkCoord identifies a chunk on the chunk grid.
type ChunkCoord struct {
	X, Y, Z int
}

// Add returns c offset by d.
func (c ChunkCoord) Add(d ChunkCoord) ChunkCoord {
	return ChunkCoord{X: c.X + d.X, Y: c.Y + d.Y, Z: c.Z + d.Z}
}

// Origin returns the world-space position of the chunk's (0,0,0) corner.
func (c ChunkCoord) Origin() mgl32.Vec3 {
	return mgl32.Vec3{
		float32(c.X * ChunkSize),
		float32(c.Y * ChunkSize),
		float32(c.Z * ChunkSize),
	}
}

// DistanceSq returns the squared chunk distance between c and o.
func (c ChunkCoord) DistanceSq(o ChunkCoord) int {
	dx, dy, dz := c.X-o.X, c.Y-o.Y, c.Z-o.Z
	return dx*dx + dy*dy + dz*dz
}

// BlockPos is an integer voxel position in world space.
type BlockPos struct {
	X, Y, Z int
}

// BlockPosFromWorld returns the voxel containing p. Voxel (x,y,z) spans [x,x+1).
func BlockPosFromWorld(p mgl32.Vec3) BlockPos {
	return BlockPos{
		X: int(math.Floor(float64(p.X()))),
		Y: int(math.Floor(float64(p.Y()))),
		Z: int(math.Floor(float64(p.Z()))),
	}
}

// Add returns p offset by (dx, dy, dz).
func (p BlockPos) Add(dx, dy, dz int) BlockPos {
	return BlockPos{X: p.X + dx, Y: p.Y + dy, Z: p.Z + dz}
}

// Chunk returns the coordinate of the chunk containing p.
func (p BlockPos) Chunk() ChunkCoord {
	return ChunkCoord{
		X: floorDiv(p.X, ChunkSize),
		Y: floorDiv(p.Y, ChunkSize),
		Z: floorDiv(p.Z, ChunkSize),
	}
}

// Local returns p relative to its chunk.
func (p BlockPos) Local() LocalPos {
	return LocalPos{
		X: mod(p.X, ChunkSize),
		Y: mod(p.Y, ChunkSize),
		Z: mod(p.Z, ChunkSize),
	}
}

// Center returns the world-space center of the voxel.
func (p BlockPos) Center() mgl32.Vec3 {
	return mgl32.Vec3{float32(p.X) + 0.5, float32(p.Y) + 0.5, float32(p.Z) + 0.5}
}

// LocalPos is a voxel position inside a chunk, each axis in [0, ChunkSize).
type LocalPos struct {
	X, Y, Z int
}

// InBounds reports whether the position lies inside a chunk.
func (l LocalPos) InBounds() bool {
	return l.X >= 0 && l.X < ChunkSize &&
		l.Y >= 0 && l.Y < ChunkSize &&
		l.Z >= 0 && l.Z < ChunkSize
}

// OnBorder reports whether the position touches any face of its chunk.
func (l LocalPos) OnBorder() bool {
	return l.X == 0 || l.X == ChunkSize-1 ||
		l.Y == 0 || l.Y == ChunkSize-1 ||
		l.Z == 0 || l.Z == ChunkSize-1
}

// World converts the local position back to world space for the given chunk.
func (l LocalPos) World(c ChunkCoord) BlockPos {
	return BlockPos{
		X: c.X*ChunkSize + l.X,
		Y: c.Y*ChunkSize + l.Y,
		Z: c.Z*ChunkSize + l.Z,
	}
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// mod returns the non-negative remainder of a / b.
func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
