package preview

import (
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/df07/skean-raytracer/pkg/core"
	"github.com/df07/skean-raytracer/pkg/renderer"
)

func TestLoop_FinalFrame(t *testing.T) {
	acc := renderer.NewAccumulator(2, 1)
	done := make(chan struct{})

	frames := make(chan *image.RGBA, 100)
	finished := make(chan struct{})
	go func() {
		Loop(acc, time.Millisecond, done, func(img *image.RGBA) bool {
			frames <- img
			return true
		})
		close(finished)
	}()

	acc.Cell(0, 0).AddSample(core.NewColor(1, 1, 1))
	close(done)

	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("Loop did not return after done was closed")
	}
	close(frames)

	var last *image.RGBA
	for img := range frames {
		last = img
	}
	if last == nil {
		t.Fatal("Expected at least one frame")
	}
	if got := last.RGBAAt(0, 0); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("Expected final frame to show the sample, got %v", got)
	}
}

func TestLoop_StopsWhenFrameDeclines(t *testing.T) {
	acc := renderer.NewAccumulator(1, 1)
	done := make(chan struct{})
	defer close(done)

	calls := 0
	finished := make(chan struct{})
	go func() {
		Loop(acc, time.Millisecond, done, func(*image.RGBA) bool {
			calls++
			return calls < 3
		})
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("Loop did not stop when the surface closed")
	}
	if calls != 3 {
		t.Errorf("Expected 3 frames, got %d", calls)
	}
}
