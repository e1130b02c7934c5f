package packing

import (
	"fmt"
	"strings"

	"voxcore/internal/world"
)

// GLSLDefines renders the layout as preprocessor defines for the vertex stage, so the
// shader decodes with the same shifts and masks the encoder packed with.
//
//	#define VOX_X_SHIFT 28u
//	#define VOX_X_MASK 0xfu
//	#define VOX_HAS_AO 1
func (l Layout) GLSLDefines() string {
	var b strings.Builder
	fmt.Fprintf(&b, "// layout %s\n", l.Name)
	fmt.Fprintf(&b, "#define VOX_CHUNK_SIZE %d\n", world.ChunkSize)
	for f := Field(0); f < NumFields; f++ {
		name := strings.ToUpper(f.String())
		fmt.Fprintf(&b, "#define VOX_%s_SHIFT %du\n", name, l.shifts[f])
		fmt.Fprintf(&b, "#define VOX_%s_MASK 0x%xu\n", name, l.Mask(f))
		if l.Has(f) {
			fmt.Fprintf(&b, "#define VOX_HAS_%s 1\n", name)
		}
	}
	if l.RawColor {
		r, g, bb := colorBits(l.widths[FieldTexture])
		fmt.Fprintf(&b, "#define VOX_RAW_COLOR 1\n#define VOX_COLOR_R_BITS %du\n#define VOX_COLOR_G_BITS %du\n#define VOX_COLOR_B_BITS %du\n", r, g, bb)
	}
	return b.String()
}

// GLSLCornerTable renders the corner offset table as a GLSL array constant indexed by
// face*4 + corner.
func GLSLCornerTable() string {
	var b strings.Builder
	b.WriteString("const vec3 VOX_CORNERS[24] = vec3[24](\n")
	for _, f := range world.Faces {
		for c := 0; c < CornersPerQuad; c++ {
			o := cornerOffsets[f][c]
			sep := ","
			if f == world.FaceBack && c == CornersPerQuad-1 {
				sep = ""
			}
			fmt.Fprintf(&b, "\tvec3(%d.0, %d.0, %d.0)%s\n", o[0], o[1], o[2], sep)
		}
	}
	b.WriteString(");\n")
	return b.String()
}
