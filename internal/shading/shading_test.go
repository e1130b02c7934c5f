package shading

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxcore/internal/interaction"
	"voxcore/internal/packing"
)

func uniform(size int, c color.NRGBA) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func layers(t *testing.T, cs ...color.NRGBA) *TextureArray {
	t.Helper()
	images := make([]image.Image, len(cs))
	for i, c := range cs {
		images[i] = uniform(4, c)
	}
	ta, err := NewTextureArray(images)
	require.NoError(t, err)
	return ta
}

func overlay(t *testing.T) *TextureArray {
	t.Helper()
	cs := make([]color.NRGBA, interaction.DestroyStages)
	for i := range cs {
		cs[i] = color.NRGBA{R: uint8(i * 20), A: 255}
	}
	return layers(t, cs...)
}

func pipeline(t *testing.T, v Variant, tex *TextureArray) *Pipeline {
	t.Helper()
	p, err := NewPipeline(v, packing.Tex13AO, tex, overlay(t))
	require.NoError(t, err)
	return p
}

func near(a, b mgl32.Vec3) bool {
	return a.ApproxEqualThreshold(b, 1e-4)
}

func TestDiscardThreshold(t *testing.T) {
	assert.True(t, Discard(0))
	assert.True(t, Discard(0.05))
	assert.True(t, Discard(0.1))
	assert.False(t, Discard(0.11))
}

func TestShadeDiscardsTransparentTexels(t *testing.T) {
	// 8-bit alphas nearest to 0, 0.05, 0.1 and 0.11.
	tex := layers(t,
		color.NRGBA{R: 255, A: 0},
		color.NRGBA{R: 255, A: 13},
		color.NRGBA{R: 255, A: 25},
		color.NRGBA{R: 255, A: 29},
	)
	p := pipeline(t, TexturedAOInteraction, tex)

	for layer, want := range []bool{false, false, false, true} {
		c, ok := p.Shade(Fragment{Texture: uint32(layer), AO: 1}, Uniforms{})
		assert.Equal(t, want, ok, "layer %d", layer)
		if ok {
			assert.InDelta(t, SemiAlpha, c.W(), 1e-6, "partial alpha clamps")
		}
	}
}

func TestShadeKeepsOpaqueAlpha(t *testing.T) {
	p := pipeline(t, TexturedAO, layers(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}))
	c, ok := p.Shade(Fragment{AO: 0.5}, Uniforms{})
	require.True(t, ok)
	assert.Equal(t, float32(1), c.W())
	assert.True(t, near(mgl32.Vec3{0.5, 0.5, 0.5}, c.Vec3()))
}

func TestFogFactor(t *testing.T) {
	cases := map[float32]float32{0: 0, 80: 0, 85: 0.5, 90: 1, 200: 1}
	for d, want := range cases {
		assert.InDelta(t, want, FogFactor(d, 80, 90), 1e-6, "distance %v", d)
	}
	assert.Equal(t, float32(1), FogFactor(5, 5, 5))
}

func TestShadeFogsDistantFragments(t *testing.T) {
	p := pipeline(t, TexturedAO, layers(t, color.NRGBA{A: 255}))
	c, ok := p.Shade(Fragment{World: mgl32.Vec3{200, 0, 0}, AO: 1}, Uniforms{})
	require.True(t, ok)
	assert.True(t, near(p.FogColor, c.Vec3()))

	c, ok = p.Shade(Fragment{World: mgl32.Vec3{85, 0, 0}, AO: 1}, Uniforms{})
	require.True(t, ok)
	assert.True(t, near(p.FogColor.Mul(0.5), c.Vec3()))
}

func TestInteractionValues(t *testing.T) {
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	p := pipeline(t, TexturedAOInteraction, layers(t, white))
	u := Uniforms{Time: 0}
	bias := TexturedAOInteraction.PulseBias

	c, ok := p.Shade(Fragment{AO: 1, Interact: 0}, u)
	require.True(t, ok)
	assert.True(t, near(mgl32.Vec3{1, 1, 1}, c.Vec3()), "no pulse without interaction")

	c, _ = p.Shade(Fragment{AO: 1, Interact: 1}, u)
	assert.True(t, near(mgl32.Vec3{bias, bias, bias}, c.Vec3()), "pulse only")

	c, _ = p.Shade(Fragment{AO: 1, Interact: 2}, u)
	assert.True(t, near(mgl32.Vec3{0, 0, 0}, c.Vec3()), "overlay layer 0")

	c, _ = p.Shade(Fragment{AO: 1, Interact: 11}, u)
	assert.True(t, near(mgl32.Vec3{180.0 / 255, 0, 0}, c.Vec3()), "overlay layer 9")
}

func TestInteractionIgnoredWithoutSupport(t *testing.T) {
	p := pipeline(t, TexturedAO, layers(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}))
	c, _ := p.Shade(Fragment{AO: 1, Interact: 5}, Uniforms{})
	assert.True(t, near(mgl32.Vec3{1, 1, 1}, c.Vec3()))
}

func TestPulseRange(t *testing.T) {
	for _, v := range []Variant{TexturedAOInteraction, TexturedAOInteractionMip} {
		for ts := float32(0); ts < 10; ts += 0.37 {
			got := Pulse(ts, v.PulseRate, v.PulseBias)
			assert.GreaterOrEqual(t, got, v.PulseBias-0.1-1e-6)
			assert.LessOrEqual(t, got, v.PulseBias+0.1+1e-6)
		}
	}
}

func TestMipLevel(t *testing.T) {
	cases := map[float32]int{0: 0, 20: 0, 39.9: 0, 40: 1, 80: 2, 160: 3, 320: 4, 5000: 4}
	for d, want := range cases {
		assert.Equal(t, want, MipLevel(d), "distance %v", d)
	}
}

func TestSampleWrapsAndBoxSampleAverages(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			v := uint8(0)
			if (x+y)%2 == 0 {
				v = 255
			}
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	ta, err := NewTextureArray([]image.Image{img})
	require.NoError(t, err)

	assert.Equal(t, ta.Sample(0, mgl32.Vec2{0.3, 0.1}), ta.Sample(0, mgl32.Vec2{1.3, -0.9}))
	assert.Equal(t, float32(1), ta.Sample(0, mgl32.Vec2{0, 0}).X())
	assert.Equal(t, float32(0), ta.Sample(0, mgl32.Vec2{0.25, 0}).X())

	avg := ta.BoxSample(0, mgl32.Vec2{0.3, 0.3}, 2)
	assert.InDelta(t, 0.5, avg.X(), 1e-6)
	assert.InDelta(t, 1, avg.W(), 1e-6)
	assert.Equal(t, ta.Sample(0, mgl32.Vec2{0.3, 0.3}), ta.BoxSample(0, mgl32.Vec2{0.3, 0.3}, 1))

	assert.Equal(t, mgl32.Vec4{}, ta.Texel(3, 0, 0), "missing layer")
}

func TestMipVariantAveragesFarTexels(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			a := uint8(255)
			if x%2 == 1 {
				a = 0
			}
			img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: a})
		}
	}
	ta, err := NewTextureArray([]image.Image{img})
	require.NoError(t, err)
	p, err := NewPipeline(TexturedAOInteractionMip, packing.Tex13AO, ta, overlay(t))
	require.NoError(t, err)
	p.FogStart, p.FogEnd = 1000, 2000

	// Close up the transparent texel is discarded; at distance 40 it averages with its
	// opaque neighbour.
	_, ok := p.Shade(Fragment{UV: mgl32.Vec2{0.3, 0}, AO: 1}, Uniforms{Camera: mgl32.Vec3{0, 0, 1}})
	assert.False(t, ok)
	c, ok := p.Shade(Fragment{UV: mgl32.Vec2{0.3, 0}, AO: 1}, Uniforms{Camera: mgl32.Vec3{0, 0, 40}})
	require.True(t, ok)
	assert.InDelta(t, SemiAlpha, c.W(), 1e-6)
}

func TestFlatColor(t *testing.T) {
	p, err := NewPipeline(FlatColor, packing.Flat13AO, nil, nil)
	require.NoError(t, err)
	c, ok := p.Shade(Fragment{Texture: packing.PackColor(0xffffff, 13), AO: 1}, Uniforms{})
	require.True(t, ok)
	assert.True(t, near(mgl32.Vec3{1, 1, 1}, c.Vec3()))

	c, _ = p.Shade(Fragment{Texture: packing.PackColor(0xff0000, 13), AO: 0.6}, Uniforms{})
	assert.True(t, near(mgl32.Vec3{0.6, 0, 0}, c.Vec3()))
}

func TestVariantCheck(t *testing.T) {
	ok := []struct {
		v Variant
		l packing.Layout
	}{
		{FlatColor, packing.Flat13AO},
		{Textured, packing.Tex15},
		{Textured, packing.Tex13AO},
		{Textured, packing.Legacy18},
		{TexturedAO, packing.Tex13AO},
		{TexturedAOInteraction, packing.Tex13AO},
		{TexturedAOInteractionMip, packing.Tex13AO},
	}
	for _, c := range ok {
		assert.NoError(t, c.v.Check(c.l), "%s/%s", c.v.Name, c.l.Name)
	}

	bad := []struct {
		v Variant
		l packing.Layout
	}{
		{FlatColor, packing.Tex13AO},
		{Textured, packing.Flat13AO},
		{TexturedAO, packing.Tex15},
		{TexturedAOInteraction, packing.Legacy18},
	}
	for _, c := range bad {
		err := c.v.Check(c.l)
		assert.True(t, errors.Is(err, packing.ErrLayoutMismatch), "%s/%s", c.v.Name, c.l.Name)
	}
}

func TestLookupVariant(t *testing.T) {
	for _, name := range VariantNames() {
		v, err := LookupVariant(name)
		require.NoError(t, err)
		assert.Equal(t, name, v.Name)
	}
	assert.Len(t, VariantNames(), 5)
	_, err := LookupVariant("wireframe")
	assert.Error(t, err)
}

func TestVertexOptions(t *testing.T) {
	o := TexturedAOInteraction.VertexOptions(packing.Tex13AO, true)
	assert.True(t, o.Interaction)
	assert.True(t, o.PerFace)
	assert.True(t, o.FlipV)
	assert.Equal(t, float32(0.3), o.AOLow)
	assert.Equal(t, float32(1), Textured.VertexOptions(packing.Tex15, false).AOLow)
}

func TestNewPipelineRequirements(t *testing.T) {
	tex := layers(t, color.NRGBA{A: 255})
	_, err := NewPipeline(TexturedAOInteraction, packing.Tex13AO, tex, nil)
	assert.Error(t, err, "missing overlay")
	_, err = NewPipeline(TexturedAO, packing.Tex13AO, nil, nil)
	assert.Error(t, err, "missing textures")
	_, err = NewPipeline(TexturedAO, packing.Tex15, tex, nil)
	assert.True(t, errors.Is(err, packing.ErrLayoutMismatch))
}

func TestNewTextureArrayRescales(t *testing.T) {
	ta, err := NewTextureArray([]image.Image{
		uniform(4, color.NRGBA{R: 10, A: 255}),
		uniform(2, color.NRGBA{G: 20, A: 255}),
	})
	require.NoError(t, err)
	require.Equal(t, 2, ta.Len())
	assert.Equal(t, image.Rect(0, 0, 4, 4), ta.Layers[1].Bounds())
	assert.Equal(t, color.NRGBA{G: 20, A: 255}, ta.Layers[1].NRGBAAt(3, 3))

	_, err = NewTextureArray(nil)
	assert.ErrorIs(t, err, ErrNoLayers)
}

func TestLoadTextureArray(t *testing.T) {
	dir := t.TempDir()
	for i, name := range []string{"a.png", "b.png"} {
		f, err := os.Create(filepath.Join(dir, name))
		require.NoError(t, err)
		require.NoError(t, png.Encode(f, uniform(8, color.NRGBA{B: uint8(100 + i), A: 255})))
		require.NoError(t, f.Close())
	}

	ta, err := LoadTextureArray(dir, []string{"b.png", "a.png"})
	require.NoError(t, err)
	assert.Equal(t, 8, ta.Width)
	assert.Equal(t, uint8(101), ta.Layers[0].NRGBAAt(0, 0).B)

	_, err = LoadTextureArray(dir, []string{"missing.png"})
	assert.Error(t, err)
}

func TestGeneratedTextures(t *testing.T) {
	ta, err := SolidTextures([]uint32{0x102030, 0xffffff}, []uint8{0, 128}, 8)
	require.NoError(t, err)
	assert.Equal(t, 2, ta.Len())
	assert.Equal(t, uint8(255), ta.Layers[0].NRGBAAt(1, 1).A)
	assert.Equal(t, uint8(128), ta.Layers[1].NRGBAAt(1, 1).A)

	d, err := DestroyOverlay(16)
	require.NoError(t, err)
	assert.Equal(t, interaction.DestroyStages, d.Len())
	covered := func(layer int) int {
		n := 0
		for y := 0; y < 16; y++ {
			for x := 0; x < 16; x++ {
				if d.Layers[layer].NRGBAAt(x, y).A > 0 {
					n++
				}
			}
		}
		return n
	}
	for s := 1; s < interaction.DestroyStages; s++ {
		assert.GreaterOrEqual(t, covered(s), covered(s-1))
	}
	assert.Equal(t, 256, covered(interaction.DestroyStages-1))
}
