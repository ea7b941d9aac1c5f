// Command scenegen writes a procedurally generated scene file to stdout.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/df07/skean-raytracer/pkg/scene"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts := scene.DefaultGenerateOptions()

	fs := flag.NewFlagSet("scenegen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Int64Var(&opts.Seed, "seed", opts.Seed, "Random seed used to generate the scene")
	fs.BoolVar(&opts.AllowCollision, "allow-collision", opts.AllowCollision, "Allow generated spheres to overlap")
	fs.IntVar(&opts.NumSpheres, "spheres", opts.NumSpheres, "Number of spheres to generate")
	fs.IntVar(&opts.NumPlanes, "planes", opts.NumPlanes, "Number of planes to generate")
	fs.Float64Var(&opts.MetallicProbability, "metallic", opts.MetallicProbability, "Probability that an object is metallic rather than diffuse")
	fs.Float64Var(&opts.EmissiveProbabilityDiffuse, "emissive-diffuse", opts.EmissiveProbabilityDiffuse, "Probability that a diffuse material is emissive")
	fs.Float64Var(&opts.EmissiveProbabilityMetallic, "emissive-metal", opts.EmissiveProbabilityMetallic, "Probability that a metallic material is emissive")
	fs.Float64Var(&opts.SmallSphereProbability, "small", opts.SmallSphereProbability, "Probability that a sphere is small (radius below 0.4) rather than large (15 to 20)")
	fs.IntVar(&opts.MaxPlacementAttempts, "attempts", opts.MaxPlacementAttempts, "Placement attempts per sphere before giving up (0 = unlimited)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	for name, p := range map[string]float64{
		"metallic":         opts.MetallicProbability,
		"emissive-diffuse": opts.EmissiveProbabilityDiffuse,
		"emissive-metal":   opts.EmissiveProbabilityMetallic,
		"small":            opts.SmallSphereProbability,
	} {
		if !(p >= 0 && p <= 1) {
			fmt.Fprintf(stderr, "Error: -%s must be between 0 and 1, got %v\n", name, p)
			return 2
		}
	}
	if opts.NumSpheres < 0 || opts.NumPlanes < 0 {
		fmt.Fprintln(stderr, "Error: object counts cannot be negative")
		return 2
	}

	s, err := scene.Generate(opts, "scenegen")
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if err := scene.Save(stdout, s); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
