package packing

// Vertex holds the decoded fields of one packed word.
type Vertex struct {
	X, Y, Z uint32
	Corner  uint32
	Face    uint32
	AO      uint32
	Texture uint32
}

// Get returns the value of f.
func (v Vertex) Get(f Field) uint32 {
	switch f {
	case FieldX:
		return v.X
	case FieldY:
		return v.Y
	case FieldZ:
		return v.Z
	case FieldCorner:
		return v.Corner
	case FieldFace:
		return v.Face
	case FieldAO:
		return v.AO
	case FieldTexture:
		return v.Texture
	}
	return 0
}

func (v *Vertex) set(f Field, val uint32) {
	switch f {
	case FieldX:
		v.X = val
	case FieldY:
		v.Y = val
	case FieldZ:
		v.Z = val
	case FieldCorner:
		v.Corner = val
	case FieldFace:
		v.Face = val
	case FieldAO:
		v.AO = val
	case FieldTexture:
		v.Texture = val
	}
}

// Pack encodes v. Any field value that does not fit its width fails with an
// *OverflowError; nothing is truncated.
func (l Layout) Pack(v Vertex) (uint32, error) {
	var word uint32
	for f := Field(0); f < NumFields; f++ {
		val := v.Get(f)
		if val > l.Mask(f) {
			return 0, &OverflowError{Layout: l.Name, Field: f, Value: val, Width: l.widths[f]}
		}
		word |= val << l.shifts[f]
	}
	return word, nil
}

// Unpack decodes a word. Absent fields decode as 0.
func (l Layout) Unpack(word uint32) Vertex {
	var v Vertex
	for f := Field(0); f < NumFields; f++ {
		if l.widths[f] == 0 {
			continue
		}
		v.set(f, (word>>l.shifts[f])&l.Mask(f))
	}
	return v
}

// Extract decodes a single field of word.
func (l Layout) Extract(word uint32, f Field) uint32 {
	if l.widths[f] == 0 {
		return 0
	}
	return (word >> l.shifts[f]) & l.Mask(f)
}
