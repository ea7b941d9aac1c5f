package renderer

import (
	"image/color"
	"math"
	"runtime"
	"sync/atomic"

	"github.com/df07/skean-raytracer/pkg/core"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	TotalPixels    int     // Total number of pixels rendered
	TotalSamples   int     // Total number of samples taken
	AverageSamples float64 // Average samples per pixel
	MinSamples     int     // Minimum samples taken per pixel
	MaxSamplesUsed int     // Maximum samples actually used by any pixel
}

// Cell accumulates the samples of one pixel. Exactly one goroutine may call
// AddSample; any number may call Load concurrently. A sequence counter makes
// each Load observe a (sum, count) pair that was stored together.
type Cell struct {
	seq   atomic.Uint64 // odd while a write is in progress
	r     atomic.Uint64 // float64 bits of the red sum
	g     atomic.Uint64
	b     atomic.Uint64
	count atomic.Uint64
}

// AddSample adds a new color sample. Must only be called by the cell's owner.
func (c *Cell) AddSample(sample core.Color) {
	r := math.Float64frombits(c.r.Load()) + sample.X
	g := math.Float64frombits(c.g.Load()) + sample.Y
	b := math.Float64frombits(c.b.Load()) + sample.Z
	n := c.count.Load() + 1

	c.seq.Add(1)
	c.r.Store(math.Float64bits(r))
	c.g.Store(math.Float64bits(g))
	c.b.Store(math.Float64bits(b))
	c.count.Store(n)
	c.seq.Add(1)
}

// Load returns the accumulated color sum and sample count
func (c *Cell) Load() (core.Color, int) {
	for {
		before := c.seq.Load()
		if before&1 == 1 {
			runtime.Gosched()
			continue
		}

		sum := core.NewColor(
			math.Float64frombits(c.r.Load()),
			math.Float64frombits(c.g.Load()),
			math.Float64frombits(c.b.Load()),
		)
		count := int(c.count.Load())

		if c.seq.Load() == before {
			return sum, count
		}
	}
}

// GetColor returns the current average linear color for this pixel
func (c *Cell) GetColor() core.Color {
	sum, count := c.Load()
	if count == 0 {
		return core.Color{}
	}
	return sum.Multiply(1.0 / float64(count))
}

// RGBA returns the displayable color of the cell
func (c *Cell) RGBA() color.RGBA {
	sum, count := c.Load()
	return ToRGBA(sum, count)
}

// ToRGBA converts an accumulated sum over count samples to an 8-bit color:
// average, gamma 2 (square root), clamp to [0, 0.999], scale by 256.
// Cells without samples are black.
func ToRGBA(sum core.Color, count int) color.RGBA {
	if count == 0 {
		return color.RGBA{A: 255}
	}

	c := sum.Multiply(1.0/float64(count)).Sqrt().Clamp(0.0, 0.999)
	return color.RGBA{
		R: uint8(256 * c.X),
		G: uint8(256 * c.Y),
		B: uint8(256 * c.Z),
		A: 255,
	}
}
