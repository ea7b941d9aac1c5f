package core

import (
	"math/rand"
)

// RandomVec3 returns a vector with each component uniform in [minVal, maxVal)
func RandomVec3(random *rand.Rand, minVal, maxVal float64) Vec3 {
	span := maxVal - minVal
	return Vec3{
		X: minVal + span*random.Float64(),
		Y: minVal + span*random.Float64(),
		Z: minVal + span*random.Float64(),
	}
}

// RandomInUnitSphere generates a random point strictly inside the unit sphere
// by rejection sampling the [-1,1]³ cube
func RandomInUnitSphere(random *rand.Rand) Vec3 {
	for {
		p := RandomVec3(random, -1, 1)
		if p.Length() < 1.0 {
			return p
		}
	}
}

// RandomUnitVector returns a uniformly distributed direction on the unit sphere
func RandomUnitVector(random *rand.Rand) Vec3 {
	for {
		p := RandomInUnitSphere(random)
		// Points too close to the centre lose precision when normalized
		if !p.NearZero() {
			return p.Normalize()
		}
	}
}

// RandomInHemisphere samples the unit sphere and flips the result into the
// hemisphere around normal
func RandomInHemisphere(random *rand.Rand, normal Vec3) Vec3 {
	p := RandomInUnitSphere(random)
	if p.Dot(normal) > 0 {
		return p
	}
	return p.Negate()
}
