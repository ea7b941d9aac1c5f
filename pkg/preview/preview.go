// Package preview shows an accumulator while a render is still running.
package preview

import (
	"image"
	"time"

	"github.com/df07/skean-raytracer/pkg/renderer"
)

// DefaultInterval is the time between preview frames
const DefaultInterval = 250 * time.Millisecond

// Surface displays an accumulator until done is closed or the surface itself
// is closed. Closing a surface never stops the render.
type Surface interface {
	Run(acc *renderer.Accumulator, done <-chan struct{}) error
}

// Loop hands frame a new snapshot of acc every interval. When done is closed
// it delivers one final snapshot and returns. It returns early when frame
// reports false.
func Loop(acc *renderer.Accumulator, interval time.Duration, done <-chan struct{}, frame func(*image.RGBA) bool) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			frame(acc.Snapshot())
			return
		case <-ticker.C:
			if !frame(acc.Snapshot()) {
				return
			}
		}
	}
}
