package shading

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	xdraw "golang.org/x/image/draw"
)

// ErrNoLayers is returned when a texture array is built from nothing.
var ErrNoLayers = errors.New("shading: texture array has no layers")

// TextureArray is a stack of equally sized non-premultiplied RGBA layers, the CPU side
// of a 2D array texture.
type TextureArray struct {
	Width, Height int
	Layers        []*image.NRGBA
}

// NewTextureArray converts images to NRGBA layers. Layers that differ in size from the
// first one are rescaled to match it.
func NewTextureArray(images []image.Image) (*TextureArray, error) {
	if len(images) == 0 {
		return nil, ErrNoLayers
	}
	first := images[0].Bounds()
	ta := &TextureArray{Width: first.Dx(), Height: first.Dy()}
	dst := image.Rect(0, 0, ta.Width, ta.Height)

	for _, img := range images {
		layer := image.NewNRGBA(dst)
		if img.Bounds().Dx() == ta.Width && img.Bounds().Dy() == ta.Height {
			draw.Draw(layer, dst, img, img.Bounds().Min, draw.Src)
		} else {
			xdraw.NearestNeighbor.Scale(layer, dst, img, img.Bounds(), draw.Src, nil)
		}
		ta.Layers = append(ta.Layers, layer)
	}
	return ta, nil
}

// LoadTextureArray decodes one PNG per name from dir, in order.
func LoadTextureArray(dir string, names []string) (*TextureArray, error) {
	images := make([]image.Image, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open texture %s: %w", path, err)
		}
		img, _, err := image.Decode(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to decode texture %s: %w", path, err)
		}
		images = append(images, img)
	}
	return NewTextureArray(images)
}

// Len returns the number of layers.
func (t *TextureArray) Len() int { return len(t.Layers) }

// Texel returns the texel at integer coordinates, wrapping on both axes. Row 0 is the
// top of the image. Out-of-range layers read as transparent black.
func (t *TextureArray) Texel(layer, x, y int) mgl32.Vec4 {
	if layer < 0 || layer >= len(t.Layers) {
		return mgl32.Vec4{}
	}
	x = wrap(x, t.Width)
	y = wrap(y, t.Height)
	c := t.Layers[layer].NRGBAAt(x, y)
	return toVec4(c)
}

// Sample is a nearest-neighbour lookup with repeat wrapping.
func (t *TextureArray) Sample(layer int, uv mgl32.Vec2) mgl32.Vec4 {
	x, y := t.texelCoords(uv)
	return t.Texel(layer, x, y)
}

// BoxSample averages the block x block footprint containing uv, aligned to multiples of
// block in texel space.
func (t *TextureArray) BoxSample(layer int, uv mgl32.Vec2, block int) mgl32.Vec4 {
	if block <= 1 {
		return t.Sample(layer, uv)
	}
	x, y := t.texelCoords(uv)
	x0 := x - wrap(x, block)
	y0 := y - wrap(y, block)

	var sum mgl32.Vec4
	for dy := 0; dy < block; dy++ {
		for dx := 0; dx < block; dx++ {
			sum = sum.Add(t.Texel(layer, x0+dx, y0+dy))
		}
	}
	return sum.Mul(1 / float32(block*block))
}

func (t *TextureArray) texelCoords(uv mgl32.Vec2) (int, int) {
	x := int(math.Floor(float64(uv.X() * float32(t.Width))))
	y := int(math.Floor(float64(uv.Y() * float32(t.Height))))
	return wrap(x, t.Width), wrap(y, t.Height)
}

func wrap(v, n int) int {
	return (v%n + n) % n
}

func toVec4(c color.NRGBA) mgl32.Vec4 {
	return mgl32.Vec4{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, float32(c.A) / 255}
}
