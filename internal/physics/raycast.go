package physics

import (
	"math"

	"voxcore/internal/profiling"
	"voxcore/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	MinReachDistance = 0.1
	MaxReachDistance = 5.0

	stepSize = float32(0.02)
)

// BlockQuery answers whether a world cell is empty. *world.ChunkStore implements it.
type BlockQuery interface {
	IsAir(pos world.BlockPos) bool
}

// RaycastResult stores the result of a raycast operation
type RaycastResult struct {
	HitPosition      world.BlockPos
	AdjacentPosition world.BlockPos
	Face             world.BlockFace // face of HitPosition the ray entered through
	Distance         float32
	Hit              bool
}

// Raycast marches from start along direction and returns the first non-air voxel between
// minDist and maxDist. Voxel (x,y,z) spans [x,x+1) on every axis.
func Raycast(start mgl32.Vec3, direction mgl32.Vec3, minDist, maxDist float32, blocks BlockQuery) RaycastResult {
	defer profiling.Track("physics.Raycast")()
	if direction.Len() == 0 {
		return RaycastResult{}
	}
	direction = direction.Normalize()
	steps := int(maxDist / stepSize)

	lastEmpty := world.BlockPosFromWorld(start)
	result := RaycastResult{Hit: false}

	for i := 0; i <= steps; i++ {
		dist := float32(i) * stepSize
		if dist < minDist {
			continue
		}

		pos := start.Add(direction.Mul(dist))
		blockPos := world.BlockPosFromWorld(pos)

		if !blocks.IsAir(blockPos) {
			result.HitPosition = blockPos
			result.AdjacentPosition = lastEmpty
			result.Distance = dist
			result.Face = entryFace(blockPos, lastEmpty, pos)
			result.Hit = true
			// A diagonal step skipped the true neighbour; use the entered face instead.
			dx, dy, dz := result.Face.Normal()
			result.AdjacentPosition = blockPos.Add(dx, dy, dz)
			return result
		}

		lastEmpty = blockPos
	}

	return result
}

// entryFace picks the face of hit the ray came through. A single-axis step gives it
// directly; otherwise the axis on which the hit point is closest to a face wins.
func entryFace(hit, prev world.BlockPos, p mgl32.Vec3) world.BlockFace {
	if f, ok := world.FaceFromNormal(prev.X-hit.X, prev.Y-hit.Y, prev.Z-hit.Z); ok {
		return f
	}

	local := p.Sub(mgl32.Vec3{float32(hit.X), float32(hit.Y), float32(hit.Z)})
	best := world.FaceTop
	bestDist := float32(math.MaxFloat32)
	consider := func(f world.BlockFace, d float32) {
		if d < bestDist {
			best, bestDist = f, d
		}
	}
	if prev.X < hit.X {
		consider(world.FaceLeft, local.X())
	} else if prev.X > hit.X {
		consider(world.FaceRight, 1-local.X())
	}
	if prev.Y < hit.Y {
		consider(world.FaceBottom, local.Y())
	} else if prev.Y > hit.Y {
		consider(world.FaceTop, 1-local.Y())
	}
	if prev.Z < hit.Z {
		consider(world.FaceBack, local.Z())
	} else if prev.Z > hit.Z {
		consider(world.FaceFront, 1-local.Z())
	}
	return best
}
