package arena

import (
	"errors"
	"fmt"
)

var ErrDegenerateBounds = errors.New("degenerate spawn bounds")

type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Region is an axis-aligned box described by two opposite corners.
type Region struct {
	Min Vec3
	Max Vec3
}

// Bounds is the volume hazards may spawn in. Computed once at startup from
// static geometry and immutable afterward.
type Bounds struct {
	Min Vec3
	Max Vec3
}

// ComputeBounds derives the hazard-spawn volume from the playing field and
// the ceiling above it. The horizontal footprint is the field's, pulled
// inward by margin on both axes so hazards never land on the boundary; the
// vertical span runs from the field's top to the ceiling's bottom.
//
// A ceiling at or below the field top, or a margin wide enough to consume
// the footprint, is a configuration error: the server must refuse to start
// rather than spawn into a collapsed volume.
func ComputeBounds(field, ceiling Region, margin float64) (Bounds, error) {
	b := Bounds{
		Min: Vec3{X: field.Min.X + margin, Y: field.Max.Y, Z: field.Min.Z + margin},
		Max: Vec3{X: field.Max.X - margin, Y: ceiling.Min.Y, Z: field.Max.Z - margin},
	}
	if b.Max.Y <= b.Min.Y {
		return Bounds{}, fmt.Errorf("%w: ceiling bottom %.1f not above field top %.1f",
			ErrDegenerateBounds, ceiling.Min.Y, field.Max.Y)
	}
	if b.Max.X <= b.Min.X || b.Max.Z <= b.Min.Z {
		return Bounds{}, fmt.Errorf("%w: margin %.1f exceeds field footprint", ErrDegenerateBounds, margin)
	}
	return b, nil
}

// Contains reports whether p lies within the volume, boundary included.
func (b Bounds) Contains(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}
