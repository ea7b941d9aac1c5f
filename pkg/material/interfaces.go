package material

import (
	"math/rand"

	"github.com/df07/skean-raytracer/pkg/core"
)

// Material interface for objects that can scatter rays
type Material interface {
	// Scatter returns the attenuation and scattered ray, or false if the
	// material absorbed the incoming ray
	Scatter(random *rand.Rand, rayIn core.Ray, hit HitRecord) (ScatterResult, bool)

	// Emit returns light emitted at the hit point (black for non-emissive materials)
	Emit(rayIn core.Ray, hit HitRecord) core.Color
}

// ScatterResult contains the result of material scattering
type ScatterResult struct {
	Attenuation core.Color // Per-channel attenuation
	Scattered   core.Ray   // The scattered ray
}

// HitRecord contains information about a ray-object intersection.
// Build it with NewHitRecord so the normal always faces the incoming ray.
type HitRecord struct {
	Point     core.Point3 // Point of intersection
	Normal    core.Vec3   // Surface normal, always opposing the incoming ray
	T         float64     // Parameter t along the ray
	FrontFace bool        // Whether the geometric outward normal opposed the ray
	Material  Material    // Material of the hit object
}

// NewHitRecord creates a hit record at parameter t along ray, orienting the
// outward normal against the ray
func NewHitRecord(ray core.Ray, t float64, outwardNormal core.Vec3, mat Material) *HitRecord {
	h := &HitRecord{
		Point:    ray.At(t),
		T:        t,
		Material: mat,
	}
	h.setFaceNormal(ray, outwardNormal)
	return h
}

// setFaceNormal sets the normal vector and determines front/back face
func (h *HitRecord) setFaceNormal(ray core.Ray, outwardNormal core.Vec3) {
	h.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	if h.FrontFace {
		h.Normal = outwardNormal
	} else {
		h.Normal = outwardNormal.Negate()
	}
}
