package shading

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"voxcore/internal/interaction"
	"voxcore/internal/packing"
	"voxcore/internal/vertex"
)

// Fragment stage constants.
const (
	DiscardAlpha = 0.1
	OpaqueAlpha  = 0.9
	SemiAlpha    = 0.8

	MipDistance = 20
	MaxMipLevel = 4
)

// Fragment is an interpolated vertex as seen by the fragment stage.
type Fragment struct {
	World    mgl32.Vec3
	UV       mgl32.Vec2
	Texture  uint32
	AO       float32
	Interact uint32
}

// FragmentAt returns the fragment at a quad corner.
func FragmentAt(v vertex.Vertex) Fragment {
	return Fragment{World: v.World, UV: v.UV, Texture: v.Texture, AO: v.AO, Interact: v.Interact}
}

// Uniforms change once per frame.
type Uniforms struct {
	Time   float32
	Camera mgl32.Vec3
}

// Pipeline binds a variant to its layout and textures.
type Pipeline struct {
	Variant  Variant
	Layout   packing.Layout
	Textures *TextureArray
	Destroy  *TextureArray
	FogStart float32
	FogEnd   float32
	FogColor mgl32.Vec3
}

// NewPipeline checks that layout and textures fit v. Flat-color variants need no
// textures; variants with interaction need the destroy overlay.
func NewPipeline(v Variant, layout packing.Layout, textures, destroy *TextureArray) (*Pipeline, error) {
	if err := v.Check(layout); err != nil {
		return nil, err
	}
	if !v.FlatColor {
		if textures == nil {
			return nil, fmt.Errorf("shading: variant %s needs a texture array", v.Name)
		}
		if textures.Len() > layout.TextureCapacity() {
			return nil, fmt.Errorf("%w: %d layers, layout %s holds %d", packing.ErrEncodingOverflow, textures.Len(), layout.Name, layout.TextureCapacity())
		}
	}
	if v.Interaction && (destroy == nil || destroy.Len() < interaction.DestroyStages) {
		return nil, fmt.Errorf("shading: variant %s needs %d destroy stages", v.Name, interaction.DestroyStages)
	}
	return &Pipeline{
		Variant:  v,
		Layout:   layout,
		Textures: textures,
		Destroy:  destroy,
		FogStart: 80,
		FogEnd:   90,
		FogColor: mgl32.Vec3{0.6, 0.75, 0.9},
	}, nil
}

// Shade returns the color of f. ok is false when the fragment is discarded.
func (p *Pipeline) Shade(f Fragment, u Uniforms) (mgl32.Vec4, bool) {
	v := p.Variant
	dist := f.World.Sub(u.Camera).Len()

	var c mgl32.Vec4
	switch {
	case v.FlatColor:
		r, g, b := packing.UnpackColor(f.Texture, p.Layout.Width(packing.FieldTexture))
		c = mgl32.Vec4{r, g, b, 1}
	case v.MipEmulate:
		c = p.Textures.BoxSample(int(f.Texture), f.UV, 1<<MipLevel(dist))
	default:
		c = p.Textures.Sample(int(f.Texture), f.UV)
	}

	if Discard(c.W()) {
		return mgl32.Vec4{}, false
	}
	if v.SemiTransparent && c.W() < OpaqueAlpha {
		c[3] = SemiAlpha
	}

	rgb := c.Vec3()
	if v.AO {
		rgb = rgb.Mul(f.AO)
	}

	if v.Interaction && f.Interact > interaction.ValueNone {
		rgb = rgb.Mul(Pulse(u.Time, v.PulseRate, v.PulseBias))
		if f.Interact >= interaction.ValueDestroyBase {
			o := p.Destroy.Sample(int(f.Interact-interaction.ValueDestroyBase), f.UV)
			rgb = rgb.Mul(1 - o.W()).Add(o.Vec3().Mul(o.W()))
		}
	}

	fog := FogFactor(dist, p.FogStart, p.FogEnd)
	rgb = rgb.Mul(1 - fog).Add(p.FogColor.Mul(fog))
	return rgb.Vec4(c.W()), true
}

// Discard reports whether a texel of this alpha is dropped entirely.
func Discard(alpha float32) bool { return alpha <= DiscardAlpha }

// Pulse is the highlight brightness at time t.
func Pulse(t, rate, bias float32) float32 {
	return float32(math.Sin(float64(t*rate)))*0.1 + bias
}

// FogFactor is 0 up to start, 1 from end on and linear in between.
func FogFactor(dist, start, end float32) float32 {
	if end <= start {
		if dist >= end {
			return 1
		}
		return 0
	}
	return mgl32.Clamp((dist-start)/(end-start), 0, 1)
}

// MipLevel picks the emulated mip level for a fragment dist units from the camera.
func MipLevel(dist float32) int {
	level := int(math.Floor(math.Log2(math.Max(float64(dist)/MipDistance, 1))))
	return min(max(level, 0), MaxMipLevel)
}
