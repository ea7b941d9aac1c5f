package scene

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/skean-raytracer/pkg/core"
	"github.com/df07/skean-raytracer/pkg/geometry"
	"github.com/df07/skean-raytracer/pkg/material"
	"github.com/df07/skean-raytracer/pkg/renderer"
)

const validScene = `{
  "version": "0.1.3",
  "materials": {
    "chrome": {"type": "Metal", "albedo": [0.9, 0.9, 0.9], "fuzz": 0.05}
  },
  "world": [
    {"type": "Sphere", "center": [0, -100.5, -1], "radius": 100,
     "material": {"type": "Lambertian", "albedo": "steelblue"}},
    {"type": "Sphere", "center": [1, 0, -1], "radius": 0.5, "material": "chrome"},
    {"type": "Sphere", "center": [-1, 0, -1], "radius": 0.5, "material": "chrome"},
    {"type": "Plane", "point": [0, 0, -40], "normal": [0, 0, 1],
     "material": {"type": "Lambertian", "albedo": [0.2, 0.2, 0.2], "emission": [4, 4, 4]}}
  ]
}`

func TestLoad_ValidScene(t *testing.T) {
	s, err := Load(strings.NewReader(validScene))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if s.Version != "0.1.3" {
		t.Errorf("Expected version 0.1.3, got %q", s.Version)
	}
	if s.GetPrimitiveCount() != 4 {
		t.Fatalf("Expected 4 objects, got %d", s.GetPrimitiveCount())
	}

	ground, ok := s.World[0].(*geometry.Sphere)
	if !ok {
		t.Fatalf("Expected sphere, got %T", s.World[0])
	}
	lambertian, ok := ground.Material.(*material.Lambertian)
	if !ok {
		t.Fatalf("Expected Lambertian, got %T", ground.Material)
	}
	expected := core.NewColor(70.0/255, 130.0/255, 180.0/255)
	if !lambertian.Albedo.Equals(expected) {
		t.Errorf("Expected steelblue albedo %v, got %v", expected, lambertian.Albedo)
	}

	right := s.World[1].(*geometry.Sphere)
	left := s.World[2].(*geometry.Sphere)
	if right.Material != left.Material {
		t.Error("Expected named material to be shared between shapes")
	}
	if metal, ok := right.Material.(*material.Metal); !ok || metal.Fuzz != 0.05 {
		t.Errorf("Expected chrome metal with fuzz 0.05, got %#v", right.Material)
	}

	plane, ok := s.World[3].(*geometry.Plane)
	if !ok {
		t.Fatalf("Expected plane, got %T", s.World[3])
	}
	light := plane.Material.(*material.Lambertian)
	if !light.IsEmissive() || !light.Emission.Emission.Equals(core.NewColor(4, 4, 4)) {
		t.Errorf("Expected emission (4,4,4), got %v", light.Emission.Emission)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected error
	}{
		{"not json", `{"version": "0.1.0", "world": [`, ErrSceneParse},
		{"wrong shape", `["version"]`, ErrSceneParse},
		{"missing world", `{"version": "0.1.0"}`, ErrSceneParse},
		{"short vector", `{"version": "0.1.0", "world": [{"type": "Sphere", "center": [0, 0], "radius": 1, "material": {"type": "Lambertian", "albedo": [1, 1, 1]}}]}`, ErrSceneParse},
		{"unknown color", `{"version": "0.1.0", "world": [{"type": "Sphere", "center": [0, 0, 0], "radius": 1, "material": {"type": "Lambertian", "albedo": "notacolor"}}]}`, ErrSceneParse},
		{"missing material", `{"version": "0.1.0", "world": [{"type": "Sphere", "center": [0, 0, 0], "radius": 1}]}`, ErrSceneParse},
		{"missing radius", `{"version": "0.1.0", "world": [{"type": "Sphere", "center": [0, 0, -1], "radious": 0.5, "material": {"type": "Lambertian", "albedo": [1, 1, 1]}}]}`, ErrSceneParse},
		{"missing albedo", `{"version": "0.1.0", "world": [{"type": "Sphere", "center": [0, 0, -1], "radius": 0.5, "material": {"type": "Lambertian"}}]}`, ErrSceneParse},
		{"missing metal albedo", `{"version": "0.1.0", "world": [{"type": "Sphere", "center": [0, 0, -1], "radius": 0.5, "material": {"type": "Metal", "fuzz": 0.1}}]}`, ErrSceneParse},
		{"missing fuzz", `{"version": "0.1.0", "world": [{"type": "Sphere", "center": [0, 0, -1], "radius": 0.5, "material": {"type": "Metal", "albedo": [1, 1, 1]}}]}`, ErrSceneParse},
		{"missing named albedo", `{"version": "0.1.0", "materials": {"matte": {"type": "Lambertian"}}, "world": [{"type": "Plane", "point": [0, 0, 0], "normal": [0, 1, 0], "material": "matte"}]}`, ErrSceneParse},
		{"unknown object", `{"version": "0.1.0", "world": [{"type": "Cube"}]}`, ErrUnknownType},
		{"unknown material", `{"version": "0.1.0", "world": [{"type": "Sphere", "center": [0, 0, 0], "radius": 1, "material": {"type": "Glass"}}]}`, ErrUnknownType},
		{"unknown reference", `{"version": "0.1.0", "world": [{"type": "Sphere", "center": [0, 0, 0], "radius": 1, "material": "gold"}]}`, ErrUnknownType},
		{"newer minor", `{"version": "0.2.0", "world": []}`, ErrVersionMismatch},
		{"older major", `{"version": "0.0.9", "world": []}`, ErrVersionMismatch},
		{"invalid version", `{"version": "one", "world": []}`, ErrVersionMismatch},
		{"missing version", `{"world": []}`, ErrVersionMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.input))
			if !errors.Is(err, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, err)
			}
		})
	}
}

func TestLoad_VersionMismatchMessage(t *testing.T) {
	_, err := Load(strings.NewReader(`{"version": "0.2.1", "world": []}`))
	if err == nil {
		t.Fatal("Expected an error")
	}

	msg := err.Error()
	if !strings.Contains(msg, "0.2.1") || !strings.Contains(msg, FormatConstraint) {
		t.Errorf("Expected message to name both versions, got %q", msg)
	}
}

func TestLoad_ProvenanceSurvivesResave(t *testing.T) {
	input := `{
  "version": "0.1.0",
  "world": [],
  "provenance": {
    "auto_generated": true,
    "tool": "skean-scene-gen",
    "git_commit_hash": "abc123",
    "git_dirty_tree_not_considering_untracked_files": true
  }
}`

	s, err := Load(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Provenance == nil || !s.Provenance.Modified || s.Provenance.Revision != "abc123" {
		t.Fatalf("Expected dirty tree at abc123, got %+v", s.Provenance)
	}

	var buf bytes.Buffer
	if err := Save(&buf, s); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !strings.Contains(buf.String(), `"git_dirty_tree_not_considering_untracked_files": true`) {
		t.Errorf("Expected dirty flag in saved scene, got:\n%s", buf.String())
	}
}

func TestLoad_EmptyWorld(t *testing.T) {
	s, err := Load(strings.NewReader(`{"version": "0.1.0", "world": []}`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(s.World) != 0 {
		t.Errorf("Expected empty world, got %d objects", len(s.World))
	}
}

type unsavableShape struct{}

func (unsavableShape) Hit(core.Ray, float64, float64) (*material.HitRecord, bool) { return nil, false }
func (unsavableShape) CollidesWithSphere(*geometry.Sphere) bool                  { return false }

func TestSave_UnknownShape(t *testing.T) {
	s := NewScene(geometry.NewWorld(unsavableShape{}))

	var buf bytes.Buffer
	if err := Save(&buf, s); !errors.Is(err, ErrUnknownType) {
		t.Errorf("Expected ErrUnknownType, got %v", err)
	}
}

func TestSave_WritesCurrentVersion(t *testing.T) {
	s := NewSingleSphereScene()
	s.Version = "0.1.7"

	var buf bytes.Buffer
	if err := Save(&buf, s); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !strings.Contains(buf.String(), `"version": "`+FormatVersion+`"`) {
		t.Errorf("Expected version %s in output:\n%s", FormatVersion, buf.String())
	}
}

func renderPixels(t *testing.T, world geometry.World) []byte {
	t.Helper()
	config := renderer.Config{Width: 24, Height: 12, SamplesPerPixel: 2, MaxDepth: 4, Seed: 9, NumWorkers: 3}
	pr := renderer.NewProgressiveRaytracer(world, config, nil)
	if _, err := pr.Render(context.Background()); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	return pr.Accumulator().Snapshot().Pix
}

func TestSaveLoad_RendersIdentically(t *testing.T) {
	opts := DefaultGenerateOptions()
	opts.Seed = 5
	opts.NumSpheres = 25
	opts.NumPlanes = 3

	original, err := Generate(opts, "test")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "scene.json")
	if err := SaveFile(path, original); err != nil {
		t.Fatalf("SaveFile failed: %v", err)
	}
	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if len(loaded.World) != len(original.World) {
		t.Fatalf("Expected %d objects, got %d", len(original.World), len(loaded.World))
	}
	if loaded.Provenance == nil || loaded.Provenance.Options == nil || loaded.Provenance.Options.Seed != 5 {
		t.Errorf("Expected provenance to survive the round trip, got %+v", loaded.Provenance)
	}

	if !bytes.Equal(renderPixels(t, original.World), renderPixels(t, loaded.World)) {
		t.Error("Expected the loaded scene to render identically to the original")
	}
}

func TestSaveLoad_RandomValues(t *testing.T) {
	random := rand.New(rand.NewSource(11))
	world := geometry.NewWorld()
	for i := 0; i < 50; i++ {
		mat := material.NewEmissiveMetal(randomColor(random), random.Float64(), randomColor(random).Multiply(1e-7))
		world.Add(geometry.NewSphere(core.RandomVec3(random, -1e6, 1e6), random.ExpFloat64(), mat))
	}

	var buf bytes.Buffer
	if err := Save(&buf, NewScene(world)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	for i := range world {
		want := world[i].(*geometry.Sphere)
		got := loaded.World[i].(*geometry.Sphere)
		if want.Center != got.Center || want.Radius != got.Radius {
			t.Fatalf("Sphere %d: expected %v r=%v, got %v r=%v", i, want.Center, want.Radius, got.Center, got.Radius)
		}
		wm, gm := want.Material.(*material.Metal), got.Material.(*material.Metal)
		if *wm != *gm {
			t.Fatalf("Sphere %d: expected material %+v, got %+v", i, *wm, *gm)
		}
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}
