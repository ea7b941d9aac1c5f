package geometry

import (
	"github.com/df07/skean-raytracer/pkg/core"
	"github.com/df07/skean-raytracer/pkg/material"
)

// Shape interface for objects that can be hit by rays
type Shape interface {
	// Hit returns the nearest intersection with t in (tMin, tMax)
	Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool)

	// CollidesWithSphere reports whether the shape overlaps the sphere.
	// Used only while generating scenes.
	CollidesWithSphere(other *Sphere) bool
}
