package material

import (
	"math/rand"

	"github.com/df07/skean-raytracer/pkg/core"
)

// Metal represents a metallic material with specular reflection
type Metal struct {
	Albedo core.Color // Metal color
	Fuzz   float64    // 0.0 = perfect mirror, 1.0 = very fuzzy
	Emission
}

// NewMetal creates a new metal material
func NewMetal(albedo core.Color, fuzz float64) *Metal {
	return &Metal{Albedo: albedo, Fuzz: clampFuzz(fuzz)}
}

// NewEmissiveMetal creates a metal material that also glows
func NewEmissiveMetal(albedo core.Color, fuzz float64, emission core.Color) *Metal {
	return &Metal{Albedo: albedo, Fuzz: clampFuzz(fuzz), Emission: Emission{Emission: emission}}
}

func clampFuzz(fuzz float64) float64 {
	return max(0.0, min(1.0, fuzz))
}

// Scatter implements the Material interface for metal scattering
func (m *Metal) Scatter(random *rand.Rand, rayIn core.Ray, hit HitRecord) (ScatterResult, bool) {
	reflected := rayIn.Direction.Normalize().Reflect(hit.Normal).Normalize()

	if m.Fuzz > 0 {
		reflected = reflected.Add(core.RandomInUnitSphere(random).Multiply(m.Fuzz))
	}

	scattered := core.NewRay(hit.Point, reflected)

	// Fuzz can push the reflection below the surface; treat that as absorbed
	if scattered.Direction.Dot(hit.Normal) <= 0 {
		return ScatterResult{}, false
	}

	return ScatterResult{
		Attenuation: m.Albedo,
		Scattered:   scattered,
	}, true
}
