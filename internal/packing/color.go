package packing

// colorBits splits a color field of width w into red, green and blue widths. Green gets
// the leftover bit, so 13 bits split 4/5/4 and 15 bits split 5/5/5.
func colorBits(w int) (r, g, b int) {
	r = w / 3
	b = w / 3
	g = w - r - b
	return r, g, b
}

// PackColor quantizes a 0xRRGGBB color into a color field of width w, red in the high bits.
func PackColor(rgb uint32, w int) uint32 {
	rb, gb, bb := colorBits(w)
	r := (rgb >> 16) & 0xff
	g := (rgb >> 8) & 0xff
	b := rgb & 0xff
	return (r>>(8-rb))<<(gb+bb) | (g>>(8-gb))<<bb | b>>(8-bb)
}

// UnpackColor expands a color field of width w back to normalized channels.
func UnpackColor(v uint32, w int) (r, g, b float32) {
	rb, gb, bb := colorBits(w)
	rm := uint32(1)<<rb - 1
	gm := uint32(1)<<gb - 1
	bm := uint32(1)<<bb - 1
	r = float32((v>>(gb+bb))&rm) / float32(rm)
	g = float32((v>>bb)&gm) / float32(gm)
	b = float32(v&bm) / float32(bm)
	return r, g, b
}

// QuadIndexBuffer expands QuadIndices for quads consecutive quads of four words each.
func QuadIndexBuffer(quads int) []uint32 {
	out := make([]uint32, 0, quads*len(QuadIndices))
	for q := 0; q < quads; q++ {
		base := uint32(q * CornersPerQuad)
		for _, i := range QuadIndices {
			out = append(out, base+i)
		}
	}
	return out
}
