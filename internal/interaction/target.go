package interaction

import (
	"voxcore/internal/physics"
	"voxcore/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// Target is the voxel face under the crosshair.
type Target struct {
	Block    world.BlockPos
	Face     world.BlockFace
	Place    world.BlockPos // empty cell in front of Face
	Distance float32
}

// FindTarget casts a ray of length reach from origin along dir.
func FindTarget(blocks physics.BlockQuery, origin, dir mgl32.Vec3, reach float32) (*Target, bool) {
	res := physics.Raycast(origin, dir, physics.MinReachDistance, reach, blocks)
	if !res.Hit {
		return nil, false
	}
	return &Target{
		Block:    res.HitPosition,
		Face:     res.Face,
		Place:    res.AdjacentPosition,
		Distance: res.Distance,
	}, true
}
