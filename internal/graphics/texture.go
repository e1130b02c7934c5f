package graphics

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"voxcore/internal/shading"
)

// UploadTextureArray copies ta into a new GL_TEXTURE_2D_ARRAY. Sampling is nearest with
// repeat wrapping, matching shading.TextureArray.Sample.
func UploadTextureArray(ta *shading.TextureArray) uint32 {
	var texture uint32
	gl.GenTextures(1, &texture)
	gl.BindTexture(gl.TEXTURE_2D_ARRAY, texture)

	gl.TexImage3D(
		gl.TEXTURE_2D_ARRAY,
		0,
		gl.RGBA8,
		int32(ta.Width),
		int32(ta.Height),
		int32(ta.Len()),
		0,
		gl.RGBA,
		gl.UNSIGNED_BYTE,
		nil,
	)
	for i, img := range ta.Layers {
		gl.TexSubImage3D(
			gl.TEXTURE_2D_ARRAY,
			0,
			0, 0, int32(i),
			int32(ta.Width),
			int32(ta.Height),
			1,
			gl.RGBA,
			gl.UNSIGNED_BYTE,
			gl.Ptr(img.Pix),
		)
	}

	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_WRAP_T, gl.REPEAT)

	gl.BindTexture(gl.TEXTURE_2D_ARRAY, 0)
	return texture
}
