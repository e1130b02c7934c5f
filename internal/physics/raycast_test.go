package physics_test

import (
	"testing"

	"voxcore/internal/physics"
	"voxcore/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

func newStore(blocks ...world.BlockPos) *world.ChunkStore {
	cs := world.NewChunkStore()
	for _, b := range blocks {
		cs.AddChunk(world.NewChunk(b.Chunk()))
		cs.Set(b, world.BlockTypeRock)
	}
	return cs
}

func TestRaycast(t *testing.T) {
	w := newStore(world.BlockPos{X: 5})

	// Test 1: Raycast hitting the block
	start := mgl32.Vec3{0.5, 0.5, 0.5}
	dir := mgl32.Vec3{1, 0, 0}
	minDist := float32(0.1)
	maxDist := float32(10.0)

	result := physics.Raycast(start, dir, minDist, maxDist, w)

	if !result.Hit {
		t.Fatalf("Expected hit, got miss")
	}
	if result.HitPosition != (world.BlockPos{X: 5}) {
		t.Errorf("Expected hit at {5,0,0}, got %v", result.HitPosition)
	}
	if result.AdjacentPosition != (world.BlockPos{X: 4}) {
		t.Errorf("Expected adjacent at {4,0,0}, got %v", result.AdjacentPosition)
	}
	if result.Face != world.FaceLeft {
		t.Errorf("Expected left face, got %v", result.Face)
	}
	// Ray starts at X=0.5 and hits the X=5.0 boundary. Allow one step of error.
	if result.Distance < 4.49 || result.Distance > 4.53 {
		t.Errorf("Expected distance 4.5, got %f", result.Distance)
	}

	// Test 2: Raycast missing (max dist)
	resultShort := physics.Raycast(start, dir, minDist, 4.0, w)
	if resultShort.Hit {
		t.Errorf("Expected miss due to maxDist, got hit at %v", resultShort.HitPosition)
	}

	// Test 3: Raycast missing (wrong direction)
	resultWrong := physics.Raycast(start, mgl32.Vec3{0, 1, 0}, minDist, maxDist, w)
	if resultWrong.Hit {
		t.Errorf("Expected miss, got hit")
	}
}

func TestRaycastFromAbove(t *testing.T) {
	w := newStore(world.BlockPos{X: 2, Y: 1, Z: 2})
	result := physics.Raycast(mgl32.Vec3{2.5, 4.5, 2.5}, mgl32.Vec3{0, -1, 0}, 0, 10, w)
	if !result.Hit {
		t.Fatalf("Expected hit, got miss")
	}
	if result.Face != world.FaceTop {
		t.Errorf("Expected top face, got %v", result.Face)
	}
	if result.AdjacentPosition != (world.BlockPos{X: 2, Y: 2, Z: 2}) {
		t.Errorf("Expected adjacent above, got %v", result.AdjacentPosition)
	}
}

func TestRaycastNegativeCoordinates(t *testing.T) {
	w := newStore(world.BlockPos{X: -3, Y: 0, Z: 0})
	result := physics.Raycast(mgl32.Vec3{0.5, 0.5, 0.5}, mgl32.Vec3{-1, 0, 0}, 0, 10, w)
	if !result.Hit || result.HitPosition != (world.BlockPos{X: -3}) {
		t.Fatalf("Expected hit at {-3,0,0}, got %+v", result)
	}
	if result.Face != world.FaceRight {
		t.Errorf("Expected right face, got %v", result.Face)
	}
}

func TestRaycastDiagonal(t *testing.T) {
	w := newStore(world.BlockPos{X: 2, Y: 2, Z: 2})
	result := physics.Raycast(mgl32.Vec3{0.5, 0.5, 0.5}, mgl32.Vec3{1, 1, 1}, 0.1, 10, w)
	if !result.Hit {
		t.Fatalf("Expected hit at {2,2,2}, got miss")
	}
	if result.HitPosition != (world.BlockPos{X: 2, Y: 2, Z: 2}) {
		t.Errorf("Expected hit at {2,2,2}, got %v", result.HitPosition)
	}
	dx, dy, dz := result.Face.Normal()
	if dx+dy+dz != -1 {
		t.Errorf("Expected a face pointing back at the ray, got %v", result.Face)
	}
}
