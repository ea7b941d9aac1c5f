package geometry

import (
	"github.com/df07/skean-raytracer/pkg/core"
	"github.com/df07/skean-raytracer/pkg/material"
)

// Plane represents an infinite plane defined by a point and normal
type Plane struct {
	Point    core.Point3       // A point on the plane
	Normal   core.Vec3         // Normal vector (any non-zero length)
	Material material.Material // Material of the plane
}

// NewPlane creates a new plane
func NewPlane(point core.Point3, normal core.Vec3, mat material.Material) *Plane {
	return &Plane{
		Point:    point,
		Normal:   normal,
		Material: mat,
	}
}

// Hit tests if a ray intersects with the plane
func (p *Plane) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	denominator := p.Normal.Dot(ray.Direction)

	// Ray parallel to the plane
	if denominator == 0 {
		return nil, false
	}

	t := p.Normal.Dot(p.Point.Subtract(ray.Origin)) / denominator
	if t <= tMin || t >= tMax {
		return nil, false
	}

	return material.NewHitRecord(ray, t, p.Normal, p.Material), true
}

// CollidesWithSphere always reports false. Planes are only placed after
// spheres during generation, so overlap is tolerated.
func (p *Plane) CollidesWithSphere(other *Sphere) bool {
	return false
}
