package integrator

import (
	"math"
	"math/rand"

	"github.com/df07/skean-raytracer/pkg/core"
	"github.com/df07/skean-raytracer/pkg/geometry"
	"github.com/df07/skean-raytracer/pkg/material"
)

// ShadowAcneEpsilon is the minimum ray parameter accepted as a hit, so that
// scattered rays do not re-intersect the surface they start on
const ShadowAcneEpsilon = 0.001

var (
	skyBottom = core.NewColor(1.0, 1.0, 1.0)
	skyTop    = core.NewColor(0.5, 0.7, 1.0)
)

// PathTracingIntegrator implements naive unidirectional path tracing
type PathTracingIntegrator struct{}

// NewPathTracingIntegrator creates a new path tracing integrator
func NewPathTracingIntegrator() *PathTracingIntegrator {
	return &PathTracingIntegrator{}
}

// RayColor computes the color for a single ray using unidirectional path tracing
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, world geometry.Shape, random *rand.Rand, depth int) core.Color {
	// Bounce budget exhausted: no more light is gathered
	if depth <= 0 {
		return core.Color{}
	}

	hit, isHit := world.Hit(ray, ShadowAcneEpsilon, math.Inf(1))
	if !isHit {
		return BackgroundGradient(ray)
	}

	colorEmitted := hit.Material.Emit(ray, *hit)

	scatter, didScatter := hit.Material.Scatter(random, ray, *hit)
	if !didScatter {
		return colorEmitted
	}

	return colorEmitted.Add(pt.scatteredColor(scatter, world, random, depth))
}

// scatteredColor attenuates the light arriving along the scattered ray
func (pt *PathTracingIntegrator) scatteredColor(scatter material.ScatterResult, world geometry.Shape, random *rand.Rand, depth int) core.Color {
	return scatter.Attenuation.MultiplyVec(
		pt.RayColor(scatter.Scattered, world, random, depth-1))
}

// BackgroundGradient returns the sky color seen along r: white looking down,
// sky blue looking up
func BackgroundGradient(r core.Ray) core.Color {
	unitDirection := r.Direction.Normalize()

	// Map y from [-1,1] to [0,1]
	t := 0.5 * (unitDirection.Y + 1.0)

	return skyBottom.Multiply(1.0 - t).Add(skyTop.Multiply(t))
}
