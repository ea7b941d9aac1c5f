package material

import (
	"math/rand"

	"github.com/df07/skean-raytracer/pkg/core"
)

// Lambertian represents a perfectly diffuse material
type Lambertian struct {
	Albedo core.Color // Base color/reflectance
	Emission
}

// NewLambertian creates a new lambertian material
func NewLambertian(albedo core.Color) *Lambertian {
	return &Lambertian{Albedo: albedo}
}

// NewEmissiveLambertian creates a lambertian material that also glows
func NewEmissiveLambertian(albedo, emission core.Color) *Lambertian {
	return &Lambertian{Albedo: albedo, Emission: Emission{Emission: emission}}
}

// Scatter implements the Material interface for lambertian scattering.
// Offsetting the normal by a uniform unit vector gives a cosine-weighted
// distribution about the normal.
func (l *Lambertian) Scatter(random *rand.Rand, rayIn core.Ray, hit HitRecord) (ScatterResult, bool) {
	scatterDirection := hit.Normal.Add(core.RandomUnitVector(random))

	// The unit vector can almost exactly cancel the normal
	if scatterDirection.NearZero() {
		scatterDirection = hit.Normal
	}

	return ScatterResult{
		Attenuation: l.Albedo,
		Scattered:   core.NewRay(hit.Point, scatterDirection.Normalize()),
	}, true
}
