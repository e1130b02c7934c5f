package packing

import (
	"voxcore/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// CornersPerQuad is the number of packed words emitted per visible face.
const CornersPerQuad = 4

// QuadIndices is the per-quad index pattern. Corners 0,2,1 and 1,2,3 are counter-clockwise
// seen from outside the face, which is the same two triangles as 0-1-2 / 2-1-3 with the
// opposite winding.
var QuadIndices = [6]uint32{0, 2, 1, 1, 2, 3}

// cornerOffsets maps (face, corner) to a unit-cube corner. Corner c sits at
// base + (c&1)*U + (c>>1)*V, where V x U is the outward normal.
var cornerOffsets = [world.NumFaces][CornersPerQuad][3]int{
	world.FaceTop:    {{0, 1, 0}, {1, 1, 0}, {0, 1, 1}, {1, 1, 1}},
	world.FaceBottom: {{0, 0, 1}, {1, 0, 1}, {0, 0, 0}, {1, 0, 0}},
	world.FaceLeft:   {{0, 1, 0}, {0, 1, 1}, {0, 0, 0}, {0, 0, 1}},
	world.FaceRight:  {{1, 1, 1}, {1, 1, 0}, {1, 0, 1}, {1, 0, 0}},
	world.FaceFront:  {{0, 1, 1}, {1, 1, 1}, {0, 0, 1}, {1, 0, 1}},
	world.FaceBack:   {{1, 1, 0}, {0, 1, 0}, {1, 0, 0}, {0, 0, 0}},
}

// CornerOffset returns the unit-cube corner of (face, corner).
func CornerOffset(face world.BlockFace, corner int) [3]int {
	return cornerOffsets[face][corner]
}

// CornerOffsetVec is CornerOffset as a vector.
func CornerOffsetVec(face world.BlockFace, corner int) mgl32.Vec3 {
	o := cornerOffsets[face][corner]
	return mgl32.Vec3{float32(o[0]), float32(o[1]), float32(o[2])}
}

// FaceAxes returns the in-plane unit vectors U (corner bit 0) and V (corner bit 1) of face.
func FaceAxes(face world.BlockFace) (u, v [3]int) {
	o := cornerOffsets[face]
	for i := 0; i < 3; i++ {
		u[i] = o[1][i] - o[0][i]
		v[i] = o[2][i] - o[0][i]
	}
	return u, v
}

// CornerUV returns the texture coordinate of a corner. flipV mirrors v for atlases stored
// bottom-up.
func CornerUV(corner int, flipV bool) mgl32.Vec2 {
	u := float32(corner & 1)
	v := float32(corner >> 1)
	if flipV {
		v = 1 - v
	}
	return mgl32.Vec2{u, v}
}
