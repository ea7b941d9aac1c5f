package geometry

import (
	"github.com/df07/skean-raytracer/pkg/core"
	"github.com/df07/skean-raytracer/pkg/material"
)

// World is an ordered collection of shapes. It is itself a Shape whose hit
// is the nearest hit among its members.
type World []Shape

// NewWorld creates a world from shapes
func NewWorld(shapes ...Shape) World {
	return World(shapes)
}

// Add appends a shape to the world
func (w *World) Add(shape Shape) {
	*w = append(*w, shape)
}

// Hit returns the closest member hit within (tMin, tMax)
func (w World) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	var closestHit *material.HitRecord
	closestSoFar := tMax

	for _, shape := range w {
		// Shrinking tMax makes later members compete only against the best hit so far
		if hit, isHit := shape.Hit(ray, tMin, closestSoFar); isHit {
			closestSoFar = hit.T
			closestHit = hit
		}
	}

	return closestHit, closestHit != nil
}

// CollidesWithSphere reports whether any member overlaps the sphere
func (w World) CollidesWithSphere(other *Sphere) bool {
	for _, shape := range w {
		if shape.CollidesWithSphere(other) {
			return true
		}
	}
	return false
}
