// Package packing defines the 32-bit packed vertex word shared by the mesh encoder and the
// vertex stage. A Layout is the single table of field widths both sides read.
package packing

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Field is one sub-field of a packed word, in most-significant-first order.
type Field int

const (
	FieldX Field = iota
	FieldY
	FieldZ
	FieldCorner
	FieldFace
	FieldAO
	FieldTexture
	NumFields
)

var fieldNames = [NumFields]string{"x", "y", "z", "corner", "face", "ao", "texture"}

func (f Field) String() string {
	if f < 0 || f >= NumFields {
		return fmt.Sprintf("field(%d)", int(f))
	}
	return fieldNames[f]
}

var (
	// ErrEncodingOverflow is returned when a value does not fit its field.
	ErrEncodingOverflow = errors.New("packing: value exceeds field width")
	// ErrLayoutMismatch is returned when two components are configured with layouts that
	// cannot agree.
	ErrLayoutMismatch = errors.New("packing: layout mismatch")
	// ErrUnknownLayout is returned by Lookup for unregistered names.
	ErrUnknownLayout = errors.New("packing: unknown layout")
)

// OverflowError reports which field overflowed.
type OverflowError struct {
	Layout string
	Field  Field
	Value  uint32
	Width  int
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("packing: %s value %d does not fit %d bits of layout %s", e.Field, e.Value, e.Width, e.Layout)
}

func (e *OverflowError) Unwrap() error { return ErrEncodingOverflow }

// Layout is a named table of field widths. Fields are laid out from bit 31 downwards in
// Field order; a zero width means the field is absent and always decodes as 0.
type Layout struct {
	Name string
	// RawColor marks layouts whose texture field carries a packed RGB color instead of a
	// texture layer.
	RawColor bool
	widths   [NumFields]int
	shifts   [NumFields]int
}

// NewLayout builds a layout from its field widths. The widths must total at most 32 bits.
func NewLayout(name string, widths [NumFields]int) (Layout, error) {
	l := Layout{Name: name, widths: widths}
	pos := 32
	for f, w := range widths {
		if w < 0 {
			return Layout{}, fmt.Errorf("layout %s: negative width for %s", name, Field(f))
		}
		pos -= w
		if pos < 0 {
			return Layout{}, fmt.Errorf("layout %s: fields need more than 32 bits", name)
		}
		l.shifts[f] = pos
	}
	return l, nil
}

func mustLayout(name string, widths [NumFields]int) Layout {
	l, err := NewLayout(name, widths)
	if err != nil {
		panic(err)
	}
	return l
}

func withRawColor(l Layout) Layout {
	l.RawColor = true
	return l
}

// Width returns the bit width of f.
func (l Layout) Width(f Field) int { return l.widths[f] }

// Shift returns the bit offset of the least significant bit of f.
func (l Layout) Shift(f Field) int { return l.shifts[f] }

// Mask returns the unshifted mask of f.
func (l Layout) Mask(f Field) uint32 {
	w := l.widths[f]
	if w == 0 {
		return 0
	}
	return uint32(1)<<w - 1
}

// Has reports whether f is present in the layout.
func (l Layout) Has(f Field) bool { return l.widths[f] > 0 }

// MaxValue returns the largest value f can hold.
func (l Layout) MaxValue(f Field) uint32 { return l.Mask(f) }

// TextureCapacity is the number of distinct texture or color indices the layout can carry.
func (l Layout) TextureCapacity() int { return 1 << l.widths[FieldTexture] }

// Bits returns the total number of bits in use.
func (l Layout) Bits() int {
	n := 0
	for _, w := range l.widths {
		n += w
	}
	return n
}

// Equal reports whether two layouts place every field identically.
func (l Layout) Equal(o Layout) bool {
	return l.widths == o.widths
}

// Require returns ErrLayoutMismatch when the layouts disagree.
func (l Layout) Require(o Layout) error {
	if !l.Equal(o) {
		return fmt.Errorf("%w: %s vs %s", ErrLayoutMismatch, l.Name, o.Name)
	}
	return nil
}

func (l Layout) String() string {
	var b strings.Builder
	b.WriteString(l.Name)
	b.WriteString("[")
	for f := Field(0); f < NumFields; f++ {
		if f > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "%s:%d", f, l.widths[f])
	}
	b.WriteString("]")
	return b.String()
}

// Registered layouts.
var (
	// Flat13AO carries a raw 13-bit color id and AO.
	Flat13AO = withRawColor(mustLayout("flat13-ao", [NumFields]int{4, 4, 4, 2, 3, 2, 13}))
	// Tex15 carries a 15-bit texture layer and no AO.
	Tex15 = mustLayout("tex15", [NumFields]int{4, 4, 4, 2, 3, 0, 15})
	// Tex13AO carries a 13-bit texture layer and AO.
	Tex13AO = mustLayout("tex13-ao", [NumFields]int{4, 4, 4, 2, 3, 2, 13})
	// Legacy18 carries an 18-bit texture layer and no face id. Only top faces are
	// encodable.
	Legacy18 = mustLayout("legacy18", [NumFields]int{4, 4, 4, 2, 0, 0, 18})
)

var layouts = map[string]Layout{
	Flat13AO.Name: Flat13AO,
	Tex15.Name:    Tex15,
	Tex13AO.Name:  Tex13AO,
	Legacy18.Name: Legacy18,
}

// Lookup returns the registered layout called name.
func Lookup(name string) (Layout, error) {
	l, ok := layouts[name]
	if !ok {
		return Layout{}, fmt.Errorf("%w: %q", ErrUnknownLayout, name)
	}
	return l, nil
}

// Names lists the registered layout names in sorted order.
func Names() []string {
	names := make([]string, 0, len(layouts))
	for n := range layouts {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
