package scene

import (
	"errors"
	"fmt"
	"math/rand"
	"runtime/debug"

	"github.com/df07/skean-raytracer/pkg/core"
	"github.com/df07/skean-raytracer/pkg/geometry"
	"github.com/df07/skean-raytracer/pkg/material"
)

// ErrPlacementExhausted is returned when a sphere cannot be placed without
// overlapping the spheres already in the world
var ErrPlacementExhausted = errors.New("sphere placement attempts exhausted")

// GenerateOptions controls the procedural scene generator
type GenerateOptions struct {
	Seed                        int64   `json:"random_seed"`
	AllowCollision              bool    `json:"allow_collision"`
	NumSpheres                  int     `json:"num_spheres"`
	NumPlanes                   int     `json:"num_planes"`
	MetallicProbability         float64 `json:"metallic_probability"`
	EmissiveProbabilityDiffuse  float64 `json:"emissive_probability_diffuse"`
	EmissiveProbabilityMetallic float64 `json:"emissive_probability_metallic"`
	SmallSphereProbability      float64 `json:"small_sphere_probability"`
	MaxPlacementAttempts        int     `json:"max_placement_attempts"` // Per sphere; 0 means unlimited
}

// DefaultGenerateOptions returns the generator defaults
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Seed:                        0,
		AllowCollision:              false,
		NumSpheres:                  200,
		NumPlanes:                   5,
		MetallicProbability:         0.6,
		EmissiveProbabilityDiffuse:  0.8,
		EmissiveProbabilityMetallic: 0.2,
		SmallSphereProbability:      0.9,
		MaxPlacementAttempts:        10000,
	}
}

// Generate builds a random world of spheres and planes. Small spheres are
// placed in front of the camera, large ones far behind them. Unless
// AllowCollision is set, spheres that overlap an already placed object are
// redrawn. The same options always produce the same scene.
func Generate(opts GenerateOptions, tool string) (*Scene, error) {
	random := rand.New(rand.NewSource(opts.Seed))
	world := make(geometry.World, 0, opts.NumSpheres+opts.NumPlanes)

	for i := 0; i < opts.NumSpheres; i++ {
		sphere, err := placeSphere(random, opts, world)
		if err != nil {
			return nil, fmt.Errorf("sphere %d: %w", i, err)
		}
		world.Add(sphere)
	}

	for i := 0; i < opts.NumPlanes; i++ {
		mat := randomMaterial(random, opts)
		point := core.NewVec3(rangeFloat(random, -50, 50), rangeFloat(random, -50, 50), rangeFloat(random, -50, -25))
		normal := core.NewVec3(rangeFloat(random, -50, 50), rangeFloat(random, -50, 50), rangeFloat(random, -50, -25))
		world.Add(geometry.NewPlane(point, normal, mat))
	}

	s := NewScene(world)
	s.Provenance = newProvenance(tool, opts)
	return s, nil
}

func placeSphere(random *rand.Rand, opts GenerateOptions, world geometry.World) (*geometry.Sphere, error) {
	for attempt := 0; opts.MaxPlacementAttempts <= 0 || attempt < opts.MaxPlacementAttempts; attempt++ {
		mat := randomMaterial(random, opts)

		var sphere *geometry.Sphere
		if chance(random, opts.SmallSphereProbability) {
			center := core.NewVec3(rangeFloat(random, -2, 2), rangeFloat(random, -0.5, 1), rangeFloat(random, -2, -1))
			sphere = geometry.NewSphere(center, rangeFloat(random, 0, 0.4), mat)
		} else {
			center := core.NewVec3(rangeFloat(random, -50, 50), rangeFloat(random, -50, 50), rangeFloat(random, -50, -25))
			sphere = geometry.NewSphere(center, rangeFloat(random, 15, 20), mat)
		}

		if opts.AllowCollision || !world.CollidesWithSphere(sphere) {
			return sphere, nil
		}
	}
	return nil, fmt.Errorf("%w after %d attempts", ErrPlacementExhausted, opts.MaxPlacementAttempts)
}

func randomMaterial(random *rand.Rand, opts GenerateOptions) material.Material {
	albedo := randomColor(random)

	if chance(random, opts.MetallicProbability) {
		if chance(random, opts.EmissiveProbabilityMetallic) {
			emission := randomColor(random)
			return material.NewEmissiveMetal(albedo, random.Float64(), emission)
		}
		return material.NewMetal(albedo, random.Float64())
	}

	if chance(random, opts.EmissiveProbabilityDiffuse) {
		return material.NewEmissiveLambertian(albedo, randomColor(random))
	}
	return material.NewLambertian(albedo)
}

func randomColor(random *rand.Rand) core.Color {
	return core.NewColor(random.Float64(), random.Float64(), random.Float64())
}

// chance returns true with probability p
func chance(random *rand.Rand, p float64) bool {
	return random.Float64() < p
}

// rangeFloat returns a value uniform in [lo, hi)
func rangeFloat(random *rand.Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*random.Float64()
}

func newProvenance(tool string, opts GenerateOptions) *Provenance {
	p := &Provenance{
		AutoGenerated: true,
		Tool:          tool,
		Options:       &opts,
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				p.Revision = setting.Value
			case "vcs.modified":
				p.Modified = setting.Value == "true"
			}
		}
	}
	return p
}
