// Package shading implements the fragment stage on the CPU: texture array sampling, AO,
// the interaction overlay and fog. voxel.frag in package graphics is the GPU rendition of
// the same steps and is built from the same Variant flags.
package shading

import (
	"fmt"
	"sort"

	"voxcore/internal/packing"
	"voxcore/internal/vertex"
)

// Variant is the set of optional shading features active for a scene. Exactly one is
// selected at startup.
type Variant struct {
	Name string
	// FlatColor reads the texture field as a packed RGB color instead of a layer.
	FlatColor bool
	AO        bool
	AOLow     float32
	// SemiTransparent clamps partial alpha to SemiAlpha.
	SemiTransparent bool
	Interaction     bool
	// PerFace limits interaction tagging to the targeted face.
	PerFace    bool
	PulseRate  float32
	PulseBias  float32
	MipEmulate bool
}

// Registered variants.
var (
	FlatColor = Variant{
		Name:      "flat-color",
		FlatColor: true,
		AO:        true,
		AOLow:     vertex.AOLowFlat,
	}
	Textured = Variant{
		Name:            "textured",
		SemiTransparent: true,
	}
	TexturedAO = Variant{
		Name:            "textured-ao",
		AO:              true,
		AOLow:           vertex.AOLowTextured,
		SemiTransparent: true,
	}
	TexturedAOInteraction = Variant{
		Name:            "textured-ao-interaction",
		AO:              true,
		AOLow:           vertex.AOLowTextured,
		SemiTransparent: true,
		Interaction:     true,
		PerFace:         true,
		PulseRate:       3,
		PulseBias:       0.8,
	}
	TexturedAOInteractionMip = Variant{
		Name:            "textured-ao-interaction-mip",
		AO:              true,
		AOLow:           vertex.AOLowTextured,
		SemiTransparent: true,
		Interaction:     true,
		PerFace:         true,
		PulseRate:       4,
		PulseBias:       0.7,
		MipEmulate:      true,
	}
)

var variants = map[string]Variant{}

func init() {
	for _, v := range []Variant{FlatColor, Textured, TexturedAO, TexturedAOInteraction, TexturedAOInteractionMip} {
		variants[v.Name] = v
	}
}

// LookupVariant returns the variant called name.
func LookupVariant(name string) (Variant, error) {
	v, ok := variants[name]
	if !ok {
		return Variant{}, fmt.Errorf("shading: unknown variant %q", name)
	}
	return v, nil
}

// VariantNames lists the registered variants in sorted order.
func VariantNames() []string {
	names := make([]string, 0, len(variants))
	for n := range variants {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Check reports ErrLayoutMismatch when l cannot feed v.
func (v Variant) Check(l packing.Layout) error {
	switch {
	case v.FlatColor != l.RawColor:
		return fmt.Errorf("%w: variant %s with layout %s: color/texture disagree", packing.ErrLayoutMismatch, v.Name, l.Name)
	case v.AO && !l.Has(packing.FieldAO):
		return fmt.Errorf("%w: variant %s needs AO, layout %s has none", packing.ErrLayoutMismatch, v.Name, l.Name)
	case v.PerFace && !l.Has(packing.FieldFace):
		return fmt.Errorf("%w: variant %s needs a face field, layout %s has none", packing.ErrLayoutMismatch, v.Name, l.Name)
	}
	return nil
}

// VertexOptions returns the reconstructor settings matching v.
func (v Variant) VertexOptions(l packing.Layout, flipV bool) vertex.Options {
	low := v.AOLow
	if !v.AO {
		low = 1
	}
	return vertex.Options{
		Layout:      l,
		FlipV:       flipV,
		AOLow:       low,
		Interaction: v.Interaction,
		PerFace:     v.PerFace,
	}
}
