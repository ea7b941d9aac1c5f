package geometry

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/skean-raytracer/pkg/core"
)

func TestSphere_Hit_Miss(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, DummyMaterial{})
	ray := core.NewRay(core.NewVec3(2, 0, 0), core.NewVec3(0, 1, 0))

	hit, isHit := sphere.Hit(ray, 0.001, math.Inf(1))
	if isHit {
		t.Errorf("Expected miss, but got hit at t=%f", hit.T)
	}
}

func TestSphere_Hit_FrontAndBackFace(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, DummyMaterial{})

	tests := []struct {
		name           string
		rayOrigin      core.Vec3
		rayDirection   core.Vec3
		expectedT      float64
		expectedFront  bool
		expectedNormal core.Vec3
	}{
		{
			name:           "front face hit",
			rayOrigin:      core.NewVec3(0, 0, 2),
			rayDirection:   core.NewVec3(0, 0, -1),
			expectedT:      1.0,
			expectedFront:  true,
			expectedNormal: core.NewVec3(0, 0, 1),
		},
		{
			name:           "back face hit",
			rayOrigin:      core.NewVec3(0, 0, 0),
			rayDirection:   core.NewVec3(0, 0, 1),
			expectedT:      1.0,
			expectedFront:  false,
			expectedNormal: core.NewVec3(0, 0, -1),
		},
		{
			name:           "unnormalized direction",
			rayOrigin:      core.NewVec3(0, 0, 3),
			rayDirection:   core.NewVec3(0, 0, -2),
			expectedT:      1.0,
			expectedFront:  true,
			expectedNormal: core.NewVec3(0, 0, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := core.NewRay(tt.rayOrigin, tt.rayDirection)
			hit, isHit := sphere.Hit(ray, 0.001, math.Inf(1))

			if !isHit {
				t.Fatal("Expected hit, but got miss")
			}
			if math.Abs(hit.T-tt.expectedT) > 1e-9 {
				t.Errorf("Expected t=%f, got t=%f", tt.expectedT, hit.T)
			}
			if hit.FrontFace != tt.expectedFront {
				t.Errorf("Expected front face %t, got %t", tt.expectedFront, hit.FrontFace)
			}
			if !vecClose(hit.Normal, tt.expectedNormal, 1e-9) {
				t.Errorf("Expected normal %v, got %v", tt.expectedNormal, hit.Normal)
			}
		})
	}
}

func TestSphere_Hit_Bounds(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, DummyMaterial{})
	ray := core.NewRay(core.NewVec3(0, 0, 2), core.NewVec3(0, 0, -1))

	// Both roots beyond tMax
	if hit, isHit := sphere.Hit(ray, 0.001, 0.5); isHit {
		t.Errorf("Expected miss due to tMax bound, but got hit at t=%f", hit.T)
	}

	// Both roots before tMin
	if hit, isHit := sphere.Hit(ray, 3.5, 1000.0); isHit {
		t.Errorf("Expected miss due to tMin bound, but got hit at t=%f", hit.T)
	}

	// Near root excluded, far root accepted
	hit, isHit := sphere.Hit(ray, 1.5, 1000.0)
	if !isHit {
		t.Fatal("Expected far-root hit")
	}
	if math.Abs(hit.T-3.0) > 1e-9 {
		t.Errorf("Expected far root t=3, got t=%f", hit.T)
	}
}

// Random rays against random spheres: hit iff the discriminant is
// non-negative and a root is in range, smallest such root, point on surface.
func TestSphere_Hit_MatchesQuadratic(t *testing.T) {
	random := rand.New(rand.NewSource(42))
	const tMin, tMax = 0.001, 50.0

	for i := 0; i < 5000; i++ {
		center := core.RandomVec3(random, -3, 3)
		radius := 0.1 + 2*random.Float64()
		sphere := NewSphere(center, radius, DummyMaterial{})

		origin := core.RandomVec3(random, -5, 5)
		direction := core.RandomVec3(random, -1, 1)
		if direction.NearZero() {
			continue
		}
		ray := core.NewRay(origin, direction)

		oc := origin.Subtract(center)
		a := direction.Dot(direction)
		halfB := oc.Dot(direction)
		c := oc.Dot(oc) - radius*radius
		disc := halfB*halfB - a*c

		expectHit := false
		expectedT := 0.0
		if disc >= 0 {
			for _, root := range []float64{(-halfB - math.Sqrt(disc)) / a, (-halfB + math.Sqrt(disc)) / a} {
				if root > tMin && root < tMax {
					expectHit = true
					expectedT = root
					break
				}
			}
		}

		hit, isHit := sphere.Hit(ray, tMin, tMax)
		if isHit != expectHit {
			t.Fatalf("Case %d: expected hit=%t, got %t (disc=%f)", i, expectHit, isHit, disc)
		}
		if !isHit {
			continue
		}
		if hit.T != expectedT {
			t.Fatalf("Case %d: expected t=%f, got %f", i, expectedT, hit.T)
		}
		if math.Abs(hit.Point.Subtract(center).Length()-radius) > 1e-9*(1+radius) {
			t.Fatalf("Case %d: hit point %v not on sphere surface", i, hit.Point)
		}
		if hit.Normal.Dot(ray.Direction) > 0 {
			t.Fatalf("Case %d: normal %v faces away from the ray", i, hit.Normal)
		}
	}
}

func TestSphere_CollidesWithSphere(t *testing.T) {
	base := NewSphere(core.NewVec3(0, 0, 0), 1.0, DummyMaterial{})

	tests := []struct {
		name     string
		other    *Sphere
		expected bool
	}{
		{"overlapping", NewSphere(core.NewVec3(1.5, 0, 0), 1.0, DummyMaterial{}), true},
		{"contained", NewSphere(core.NewVec3(0.1, 0, 0), 0.2, DummyMaterial{}), true},
		{"touching", NewSphere(core.NewVec3(2, 0, 0), 1.0, DummyMaterial{}), false},
		{"apart", NewSphere(core.NewVec3(0, 5, 0), 1.0, DummyMaterial{}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.CollidesWithSphere(tt.other); got != tt.expected {
				t.Errorf("Expected %t, got %t", tt.expected, got)
			}
			if got := tt.other.CollidesWithSphere(base); got != tt.expected {
				t.Errorf("Collision should be symmetric: expected %t, got %t", tt.expected, got)
			}
		})
	}
}
