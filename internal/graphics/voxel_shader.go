package graphics

import (
	_ "embed"
	"fmt"
	"strings"

	"voxcore/internal/packing"
	"voxcore/internal/shading"
)

const glslVersion = "#version 410 core\n"

var (
	//go:embed shaders/voxel.vert
	voxelVert string
	//go:embed shaders/voxel.frag
	voxelFrag string
)

// VoxelSources returns the voxel program specialised for layout and variant. Both stages
// get the same header, so the fragment stage sees the variant flags the vertex stage
// was built with.
func VoxelSources(layout packing.Layout, v shading.Variant, flipV bool) (vert, frag string, err error) {
	if err := v.Check(layout); err != nil {
		return "", "", err
	}

	var h strings.Builder
	h.WriteString(glslVersion)
	fmt.Fprintf(&h, "// variant %s\n", v.Name)
	h.WriteString(layout.GLSLDefines())
	define := func(name string, on bool) {
		if on {
			fmt.Fprintf(&h, "#define %s 1\n", name)
		}
	}
	define("VOX_FLAT_COLOR", v.FlatColor)
	define("VOX_SHADE_AO", v.AO)
	define("VOX_SEMI_TRANSPARENT", v.SemiTransparent)
	define("VOX_SHADE_INTERACTION", v.Interaction)
	define("VOX_PER_FACE", v.PerFace)
	define("VOX_MIP_EMULATE", v.MipEmulate)
	define("VOX_FLIP_V", flipV)
	if v.AO {
		fmt.Fprintf(&h, "#define VOX_AO_LOW %s\n", glslFloat(v.AOLow))
	}
	if v.Interaction {
		fmt.Fprintf(&h, "#define VOX_PULSE_RATE %s\n", glslFloat(v.PulseRate))
		fmt.Fprintf(&h, "#define VOX_PULSE_BIAS %s\n", glslFloat(v.PulseBias))
	}
	header := h.String()

	return header + packing.GLSLCornerTable() + voxelVert, header + voxelFrag, nil
}

// NewVoxelShader compiles the voxel program. Requires a current GL context.
func NewVoxelShader(layout packing.Layout, v shading.Variant, flipV bool) (*Shader, error) {
	vert, frag, err := VoxelSources(layout, v, flipV)
	if err != nil {
		return nil, err
	}
	s, err := NewShader(vert, frag)
	if err != nil {
		return nil, fmt.Errorf("voxel shader %s/%s: %w", layout.Name, v.Name, err)
	}
	return s, nil
}

func glslFloat(f float32) string {
	s := fmt.Sprintf("%g", f)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}
