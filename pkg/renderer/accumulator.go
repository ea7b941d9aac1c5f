package renderer

import (
	"image"
)

// Accumulator is the shared progressive framebuffer: one Cell per pixel,
// row 0 at the top of the image
type Accumulator struct {
	width, height int
	cells         []Cell
}

// NewAccumulator creates an empty accumulator
func NewAccumulator(width, height int) *Accumulator {
	return &Accumulator{
		width:  width,
		height: height,
		cells:  make([]Cell, width*height),
	}
}

// Width returns the image width in pixels
func (a *Accumulator) Width() int { return a.width }

// Height returns the image height in pixels
func (a *Accumulator) Height() int { return a.height }

// Cell returns the cell for pixel (x, y), y counted from the top
func (a *Accumulator) Cell(x, y int) *Cell {
	return &a.cells[y*a.width+x]
}

// Snapshot converts every cell to a displayable pixel. Cells are read one at a
// time, so pixels may be at different sample counts while rendering continues.
func (a *Accumulator) Snapshot() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, a.width, a.height))
	a.SnapshotInto(img)
	return img
}

// SnapshotInto writes the current state into an existing image of the same size
func (a *Accumulator) SnapshotInto(img *image.RGBA) {
	for y := 0; y < a.height; y++ {
		for x := 0; x < a.width; x++ {
			img.SetRGBA(x, y, a.Cell(x, y).RGBA())
		}
	}
}

// Stats calculates sample statistics over the current cell state
func (a *Accumulator) Stats() RenderStats {
	stats := RenderStats{
		TotalPixels: len(a.cells),
	}
	if len(a.cells) == 0 {
		return stats
	}

	stats.MinSamples = int(^uint(0) >> 1)
	for i := range a.cells {
		_, count := a.cells[i].Load()
		stats.TotalSamples += count
		stats.MinSamples = min(stats.MinSamples, count)
		stats.MaxSamplesUsed = max(stats.MaxSamplesUsed, count)
	}

	stats.AverageSamples = float64(stats.TotalSamples) / float64(stats.TotalPixels)
	return stats
}
