package scene

import (
	"fmt"

	"github.com/df07/skean-raytracer/pkg/core"
	"github.com/df07/skean-raytracer/pkg/geometry"
	"github.com/df07/skean-raytracer/pkg/material"
)

// SceneInfo describes a built-in scene
type SceneInfo struct {
	ID          string `json:"id"`          // Name passed to NewBuiltinScene
	DisplayName string `json:"displayName"` // UI display name
	Description string `json:"description"` // Optional description
}

var builtinScenes = []SceneInfo{
	{ID: "default", DisplayName: "Default", Description: "Diffuse sphere between two metal spheres on a large ground sphere"},
	{ID: "single", DisplayName: "Single Sphere", Description: "One diffuse sphere against the sky"},
	{ID: "random", DisplayName: "Random", Description: "Procedurally generated spheres and planes with emissive materials"},
}

// ListBuiltinScenes returns the scenes NewBuiltinScene can build
func ListBuiltinScenes() []SceneInfo {
	return append([]SceneInfo(nil), builtinScenes...)
}

// NewBuiltinScene creates the built-in scene with the given id
func NewBuiltinScene(id string) (*Scene, error) {
	switch id {
	case "default":
		return NewDefaultScene(), nil
	case "single":
		return NewSingleSphereScene(), nil
	case "random":
		return Generate(DefaultGenerateOptions(), "builtin")
	default:
		return nil, fmt.Errorf("%w: built-in scene %q", ErrUnknownType, id)
	}
}

// NewDefaultScene creates a diffuse sphere flanked by a polished and a brushed
// metal sphere, resting on a huge ground sphere
func NewDefaultScene() *Scene {
	ground := material.NewLambertian(core.NewColor(0.8, 0.8, 0.0))
	center := material.NewLambertian(core.NewColor(0.7, 0.3, 0.3))
	left := material.NewMetal(core.NewColor(0.8, 0.8, 0.8), 0.3)
	right := material.NewMetal(core.NewColor(0.8, 0.6, 0.2), 1.0)

	return NewScene(geometry.NewWorld(
		geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, ground),
		geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, center),
		geometry.NewSphere(core.NewVec3(-1, 0, -1), 0.5, left),
		geometry.NewSphere(core.NewVec3(1, 0, -1), 0.5, right),
	))
}

// NewSingleSphereScene creates one sphere in front of the camera
func NewSingleSphereScene() *Scene {
	return NewScene(geometry.NewWorld(
		geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, material.NewLambertian(core.NewColor(0.5, 0.5, 0.5))),
	))
}
