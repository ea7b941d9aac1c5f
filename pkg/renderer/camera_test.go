package renderer

import (
	"math"
	"testing"

	"github.com/df07/skean-raytracer/pkg/core"
)

func TestCamera_GetRay(t *testing.T) {
	camera := NewCamera(2.0)

	tests := []struct {
		name      string
		u, v      float64
		direction core.Vec3
	}{
		{"center", 0.5, 0.5, core.NewVec3(0, 0, -1)},
		{"lower left", 0, 0, core.NewVec3(-2, -1, -1)},
		{"upper right", 1, 1, core.NewVec3(2, 1, -1)},
		{"upper left", 0, 1, core.NewVec3(-2, 1, -1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := camera.GetRay(tt.u, tt.v)
			if !ray.Origin.Equals(core.Vec3{}) {
				t.Errorf("Expected origin at zero, got %v", ray.Origin)
			}
			if math.Abs(ray.Direction.X-tt.direction.X) > 1e-12 ||
				math.Abs(ray.Direction.Y-tt.direction.Y) > 1e-12 ||
				math.Abs(ray.Direction.Z-tt.direction.Z) > 1e-12 {
				t.Errorf("Expected direction %v, got %v", tt.direction, ray.Direction)
			}
		})
	}
}

func TestCamera_ViewportFollowsAspectRatio(t *testing.T) {
	camera := NewCamera(16.0 / 9.0)

	left := camera.GetRay(0, 0.5).Direction
	right := camera.GetRay(1, 0.5).Direction
	width := right.X - left.X

	if math.Abs(width-2*16.0/9.0) > 1e-12 {
		t.Errorf("Expected viewport width %f, got %f", 2*16.0/9.0, width)
	}
}
