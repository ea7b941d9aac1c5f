package material

import (
	"github.com/df07/skean-raytracer/pkg/core"
)

// Emission is a constant light contribution a material adds on top of what
// it scatters. The zero value emits nothing.
type Emission struct {
	Emission core.Color // Emitted light color/intensity
}

// Emit returns the emitted light for this material
func (e Emission) Emit(rayIn core.Ray, hit HitRecord) core.Color {
	return e.Emission
}

// IsEmissive reports whether any channel emits light
func (e Emission) IsEmissive() bool {
	return e.Emission.X != 0 || e.Emission.Y != 0 || e.Emission.Z != 0
}
