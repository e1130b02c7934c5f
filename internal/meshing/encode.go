package meshing

import (
	"fmt"

	"voxcore/internal/packing"
	"voxcore/internal/world"
)

// TextureSource resolves what a face looks like. *registry.Registry implements it.
type TextureSource interface {
	TextureLayer(b world.BlockType, face world.BlockFace) (int, bool)
	Color(b world.BlockType) uint32
}

// Mesh is the packed vertex stream of one chunk: four words per visible face, drawn with
// packing.QuadIndices.
type Mesh struct {
	Coord  world.ChunkCoord
	Layout packing.Layout
	Words  []uint32
	Faces  int
}

// IsEmpty reports whether the chunk has no visible faces.
func (m *Mesh) IsEmpty() bool { return m.Faces == 0 }

// Encode culls hidden faces of nb.Center and packs the rest with per-corner AO. Absent
// face neighbours hide nothing. Cells in edge or corner chunks, which are not part of a
// Neighborhood, read as air.
func Encode(layout packing.Layout, nb *world.Neighborhood, tex TextureSource) (Mesh, error) {
	m := Mesh{Coord: nb.Coord, Layout: layout}
	withAO := layout.Has(packing.FieldAO)
	texWidth := layout.Width(packing.FieldTexture)

	for z := 0; z < world.ChunkSize; z++ {
		for y := 0; y < world.ChunkSize; y++ {
			for x := 0; x < world.ChunkSize; x++ {
				b := nb.Center[world.Index(x, y, z)]
				if !b.IsSolid() {
					continue
				}
				for _, face := range world.Faces {
					dx, dy, dz := face.Normal()
					if solid, known := cell(nb, x+dx, y+dy, z+dz); known && solid {
						continue
					}

					var texture uint32
					if layout.RawColor {
						texture = packing.PackColor(tex.Color(b), texWidth)
					} else {
						layer, ok := tex.TextureLayer(b, face)
						if !ok {
							return Mesh{}, fmt.Errorf("encode chunk %v: block %d has no texture for face %v", nb.Coord, b, face)
						}
						texture = uint32(layer)
					}

					var ao [packing.CornersPerQuad]uint32
					if withAO {
						ao = faceAO(nb, x, y, z, face)
					}

					for corner := 0; corner < packing.CornersPerQuad; corner++ {
						word, err := layout.Pack(packing.Vertex{
							X:       uint32(x),
							Y:       uint32(y),
							Z:       uint32(z),
							Corner:  uint32(corner),
							Face:    uint32(face),
							AO:      ao[corner],
							Texture: texture,
						})
						if err != nil {
							return Mesh{}, fmt.Errorf("encode chunk %v at (%d,%d,%d): %w", nb.Coord, x, y, z, err)
						}
						m.Words = append(m.Words, word)
					}
					m.Faces++
				}
			}
		}
	}
	return m, nil
}

// cell reports whether the local cell (x, y, z), possibly outside the chunk, is solid.
// known is false only when the cell lies in an absent face neighbour.
func cell(nb *world.Neighborhood, x, y, z int) (solid, known bool) {
	ox, oy, oz := outside(x), outside(y), outside(z)
	switch abs(ox) + abs(oy) + abs(oz) {
	case 0:
		return nb.Center.At(x, y, z).IsSolid(), true
	case 1:
		face, _ := world.FaceFromNormal(ox, oy, oz)
		g := nb.Neighbors[face]
		if g == nil {
			return false, false
		}
		return g.At(wrap(x), wrap(y), wrap(z)).IsSolid(), true
	default:
		return false, true
	}
}

func outside(v int) int {
	switch {
	case v < 0:
		return -1
	case v >= world.ChunkSize:
		return 1
	}
	return 0
}

func wrap(v int) int {
	return (v%world.ChunkSize + world.ChunkSize) % world.ChunkSize
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// faceAO returns the AO level of each corner of face: 3 is unoccluded, 0 is a corner
// closed in by both side neighbours.
func faceAO(nb *world.Neighborhood, x, y, z int, face world.BlockFace) [packing.CornersPerQuad]uint32 {
	var out [packing.CornersPerQuad]uint32
	nx, ny, nz := face.Normal()
	u, v := packing.FaceAxes(face)
	px, py, pz := x+nx, y+ny, z+nz

	occluded := func(dx, dy, dz int) uint32 {
		if solid, known := cell(nb, px+dx, py+dy, pz+dz); known && solid {
			return 1
		}
		return 0
	}

	for corner := 0; corner < packing.CornersPerQuad; corner++ {
		su, sv := -1, -1
		if corner&1 == 1 {
			su = 1
		}
		if corner>>1 == 1 {
			sv = 1
		}
		du := [3]int{u[0] * su, u[1] * su, u[2] * su}
		dv := [3]int{v[0] * sv, v[1] * sv, v[2] * sv}

		side1 := occluded(du[0], du[1], du[2])
		side2 := occluded(dv[0], dv[1], dv[2])
		if side1 == 1 && side2 == 1 {
			out[corner] = 0
			continue
		}
		diag := occluded(du[0]+dv[0], du[1]+dv[1], du[2]+dv[2])
		out[corner] = 3 - (side1 + side2 + diag)
	}
	return out
}
