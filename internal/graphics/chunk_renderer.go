package graphics

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"voxcore/internal/interaction"
	"voxcore/internal/meshing"
	"voxcore/internal/packing"
	"voxcore/internal/profiling"
	"voxcore/internal/shading"
	"voxcore/internal/world"
)

// Texture units used by the voxel program.
const (
	unitTextures = 0
	unitDestroy  = 1
)

type chunkBuffer struct {
	vao   uint32
	vbo   uint32
	quads int32
}

// Frame is the per-frame input of ChunkRenderer.Draw.
type Frame struct {
	View   mgl32.Mat4
	Proj   mgl32.Mat4
	Camera mgl32.Vec3
	Time   float32
	Signal interaction.Signal
}

// ChunkRenderer owns one packed vertex buffer per chunk and draws them with the voxel
// program. All methods must be called on the GL thread.
type ChunkRenderer struct {
	shader   *Shader
	pipeline *shading.Pipeline
	textures uint32
	destroy  uint32

	ebo      uint32
	eboQuads int
	chunks   map[world.ChunkCoord]*chunkBuffer
}

// NewChunkRenderer compiles the program for p and uploads its texture arrays.
func NewChunkRenderer(p *shading.Pipeline, flipV bool) (*ChunkRenderer, error) {
	shader, err := NewVoxelShader(p.Layout, p.Variant, flipV)
	if err != nil {
		return nil, err
	}
	r := &ChunkRenderer{
		shader:   shader,
		pipeline: p,
		chunks:   make(map[world.ChunkCoord]*chunkBuffer),
	}
	if p.Textures != nil {
		r.textures = UploadTextureArray(p.Textures)
	}
	if p.Destroy != nil {
		r.destroy = UploadTextureArray(p.Destroy)
	}
	gl.GenBuffers(1, &r.ebo)

	shader.Use()
	shader.SetInt("u_textures", unitTextures)
	shader.SetInt("u_destroy", unitDestroy)
	return r, nil
}

// ensureIndices grows the shared index buffer to cover quads quads.
func (r *ChunkRenderer) ensureIndices(quads int) {
	if quads <= r.eboQuads {
		return
	}
	n := max(quads, r.eboQuads*2, 1024)
	idx := packing.QuadIndexBuffer(n)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(idx)*4, gl.Ptr(idx), gl.STATIC_DRAW)
	r.eboQuads = n
}

// Upload replaces the buffer of m.Coord. An empty mesh frees it.
func (r *ChunkRenderer) Upload(m meshing.Mesh) {
	if m.IsEmpty() {
		r.Remove(m.Coord)
		return
	}
	defer profiling.Track("graphics.Upload")()

	b := r.chunks[m.Coord]
	if b == nil {
		b = &chunkBuffer{}
		gl.GenVertexArrays(1, &b.vao)
		gl.GenBuffers(1, &b.vbo)
		r.chunks[m.Coord] = b
	}
	r.ensureIndices(m.Faces)

	gl.BindVertexArray(b.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(m.Words)*4, gl.Ptr(m.Words), gl.DYNAMIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribIPointer(0, 1, gl.UNSIGNED_INT, 4, nil)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.ebo)
	gl.BindVertexArray(0)

	b.quads = int32(m.Faces)
}

// Remove frees the buffer of coord.
func (r *ChunkRenderer) Remove(coord world.ChunkCoord) {
	b, ok := r.chunks[coord]
	if !ok {
		return
	}
	gl.DeleteVertexArrays(1, &b.vao)
	gl.DeleteBuffers(1, &b.vbo)
	delete(r.chunks, coord)
}

// Coords lists the chunks with geometry.
func (r *ChunkRenderer) Coords() []world.ChunkCoord {
	out := make([]world.ChunkCoord, 0, len(r.chunks))
	for c := range r.chunks {
		out = append(out, c)
	}
	return out
}

// Len returns the number of chunks with geometry.
func (r *ChunkRenderer) Len() int { return len(r.chunks) }

// Draw renders every chunk inside the view frustum and returns how many were drawn.
func (r *ChunkRenderer) Draw(f Frame) int {
	defer profiling.Track("graphics.Draw")()

	s := r.shader
	s.Use()
	s.SetMatrix4("u_proj", &f.Proj[0])
	s.SetMatrix4("u_view", &f.View[0])
	s.SetVector3("u_camera", f.Camera.X(), f.Camera.Y(), f.Camera.Z())
	s.SetFloat("u_time", f.Time)
	s.SetFloat("u_fog_start", r.pipeline.FogStart)
	s.SetFloat("u_fog_end", r.pipeline.FogEnd)
	fc := r.pipeline.FogColor
	s.SetVector3("u_fog_color", fc.X(), fc.Y(), fc.Z())
	sig := f.Signal
	s.SetIVec4("u_target", int32(sig.Block.X), int32(sig.Block.Y), int32(sig.Block.Z), int32(sig.Face))
	s.SetUint("u_target_value", sig.Value)

	gl.ActiveTexture(gl.TEXTURE0 + unitTextures)
	gl.BindTexture(gl.TEXTURE_2D_ARRAY, r.textures)
	gl.ActiveTexture(gl.TEXTURE0 + unitDestroy)
	gl.BindTexture(gl.TEXTURE_2D_ARRAY, r.destroy)

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	defer gl.Disable(gl.BLEND)

	frustum := NewFrustum(f.Proj.Mul4(f.View))
	drawn := 0
	for coord, b := range r.chunks {
		if !frustum.ContainsChunk(coord) {
			continue
		}
		o := coord.Origin()
		s.SetVector3("u_chunk_origin", o.X(), o.Y(), o.Z())
		gl.BindVertexArray(b.vao)
		gl.DrawElements(gl.TRIANGLES, b.quads*int32(len(packing.QuadIndices)), gl.UNSIGNED_INT, nil)
		drawn++
	}
	gl.BindVertexArray(0)
	return drawn
}

// Dispose frees every GL object.
func (r *ChunkRenderer) Dispose() {
	for coord := range r.chunks {
		r.Remove(coord)
	}
	gl.DeleteBuffers(1, &r.ebo)
	if r.textures != 0 {
		gl.DeleteTextures(1, &r.textures)
	}
	if r.destroy != 0 {
		gl.DeleteTextures(1, &r.destroy)
	}
	r.shader.Delete()
}
