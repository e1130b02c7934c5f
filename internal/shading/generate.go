package shading

import (
	"image"
	"image/color"

	"voxcore/internal/interaction"
)

// SolidTextures builds one layer per color, with a light per-texel jitter so faces are
// not perfectly flat. alpha applies to every layer in the same position of alphas; a
// missing entry means opaque.
func SolidTextures(colors []uint32, alphas []uint8, size int) (*TextureArray, error) {
	images := make([]image.Image, 0, len(colors))
	for i, rgb := range colors {
		a := uint8(255)
		if i < len(alphas) && alphas[i] != 0 {
			a = alphas[i]
		}
		img := image.NewNRGBA(image.Rect(0, 0, size, size))
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				j := int(hash(x, y, i)%24) - 12
				img.SetNRGBA(x, y, color.NRGBA{
					R: jitter(uint8(rgb>>16), j),
					G: jitter(uint8(rgb>>8), j),
					B: jitter(uint8(rgb), j),
					A: a,
				})
			}
		}
		images = append(images, img)
	}
	return NewTextureArray(images)
}

// DestroyOverlay builds the crack overlay: stage s darkens a growing share of texels.
func DestroyOverlay(size int) (*TextureArray, error) {
	images := make([]image.Image, 0, interaction.DestroyStages)
	for s := 0; s < interaction.DestroyStages; s++ {
		img := image.NewNRGBA(image.Rect(0, 0, size, size))
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				if int(hash(x, y, 0)%interaction.DestroyStages) <= s {
					img.SetNRGBA(x, y, color.NRGBA{A: 160})
				}
			}
		}
		images = append(images, img)
	}
	return NewTextureArray(images)
}

func hash(x, y, z int) uint32 {
	h := uint32(x)*73856093 ^ uint32(y)*19349663 ^ uint32(z)*83492791
	h ^= h >> 13
	h *= 0x5bd1e995
	h ^= h >> 15
	return h
}

func jitter(c uint8, d int) uint8 {
	return uint8(min(max(int(c)+d, 0), 255))
}
