package geometry

import (
	"math/rand"

	"github.com/df07/skean-raytracer/pkg/core"
	"github.com/df07/skean-raytracer/pkg/material"
)

// DummyMaterial is a no-op material for intersection tests
type DummyMaterial struct{}

func (DummyMaterial) Scatter(random *rand.Rand, rayIn core.Ray, hit material.HitRecord) (material.ScatterResult, bool) {
	return material.ScatterResult{}, false
}

func (DummyMaterial) Emit(rayIn core.Ray, hit material.HitRecord) core.Color {
	return core.Color{}
}

func vecClose(a, b core.Vec3, tolerance float64) bool {
	return a.Subtract(b).Length() <= tolerance
}
