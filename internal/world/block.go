package world

// BlockType is the voxel id stored in a chunk grid. Zero is air.
type BlockType uint8

const (
	BlockTypeAir BlockType = iota
	BlockTypeRock
	BlockTypeDirt
	BlockTypeGrass
	BlockTypeLeaves
	BlockTypeGlass
)

// IsSolid reports whether the voxel occupies its cell. Every non-air voxel is solid.
func (b BlockType) IsSolid() bool {
	return b != BlockTypeAir
}

// BlockFace identifies one of the six faces of a voxel. The numeric values are part of the
// packed vertex format and must not change.
type BlockFace uint8

const (
	FaceTop BlockFace = iota
	FaceBottom
	FaceLeft
	FaceRight
	FaceFront
	FaceBack
)

// NumFaces is the number of voxel faces.
const NumFaces = 6

// Faces lists every face in packed-id order.
var Faces = [NumFaces]BlockFace{FaceTop, FaceBottom, FaceLeft, FaceRight, FaceFront, FaceBack}

var faceNormals = [NumFaces][3]int{
	FaceTop:    {0, 1, 0},
	FaceBottom: {0, -1, 0},
	FaceLeft:   {-1, 0, 0},
	FaceRight:  {1, 0, 0},
	FaceFront:  {0, 0, 1},
	FaceBack:   {0, 0, -1},
}

// Normal returns the outward unit normal of the face.
func (f BlockFace) Normal() (dx, dy, dz int) {
	n := faceNormals[f]
	return n[0], n[1], n[2]
}

// Opposite returns the face pointing the other way.
func (f BlockFace) Opposite() BlockFace {
	return f ^ 1
}

// FaceFromNormal maps an axis-aligned unit offset to a face. ok is false for anything else.
func FaceFromNormal(dx, dy, dz int) (BlockFace, bool) {
	for _, f := range Faces {
		n := faceNormals[f]
		if n[0] == dx && n[1] == dy && n[2] == dz {
			return f, true
		}
	}
	return 0, false
}

func (f BlockFace) String() string {
	switch f {
	case FaceTop:
		return "top"
	case FaceBottom:
		return "bottom"
	case FaceLeft:
		return "left"
	case FaceRight:
		return "right"
	case FaceFront:
		return "front"
	case FaceBack:
		return "back"
	default:
		return "invalid"
	}
}
