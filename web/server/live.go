package server

import (
	"image"
	"net/http"
	"sync"
	"time"

	"github.com/df07/skean-raytracer/pkg/preview"
	"github.com/df07/skean-raytracer/pkg/renderer"
)

// LivePreview streams frames of a render that is running elsewhere (the
// command line renderer) to any number of SSE clients. It implements
// preview.Surface. Clients connecting after the render has finished receive
// the final frame.
type LivePreview struct {
	interval time.Duration
	start    time.Time

	mu          sync.Mutex
	subscribers map[chan SSEEvent]struct{}
	last        *SSEEvent
	finished    bool
}

var _ preview.Surface = (*LivePreview)(nil)

// NewLivePreview creates a live preview that publishes a frame every interval
func NewLivePreview(interval time.Duration) *LivePreview {
	return &LivePreview{
		interval:    interval,
		start:       time.Now(),
		subscribers: make(map[chan SSEEvent]struct{}),
	}
}

// Run publishes frames of acc until done is closed, then publishes the final
// frame and ends every client stream
func (lp *LivePreview) Run(acc *renderer.Accumulator, done <-chan struct{}) error {
	frame := 0
	preview.Loop(acc, lp.interval, done, func(img *image.RGBA) bool {
		complete := false
		select {
		case <-done:
			complete = true
		default:
		}

		frame++
		event, err := frameEvent(frame, img, acc.Stats(), complete, time.Since(lp.start).Milliseconds())
		if err == nil {
			lp.publish(event)
		}
		return true
	})

	lp.finish()
	return nil
}

func (lp *LivePreview) publish(event SSEEvent) {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	lp.last = &event
	for sub := range lp.subscribers {
		select {
		case sub <- event:
		default:
			// Slow client, skip this frame
		}
	}
}

func (lp *LivePreview) finish() {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	lp.finished = true
	for sub := range lp.subscribers {
		close(sub)
		delete(lp.subscribers, sub)
	}
}

// subscribe registers a client. The returned channel starts with the most
// recent frame and is closed when the render finishes.
func (lp *LivePreview) subscribe() chan SSEEvent {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	sub := make(chan SSEEvent, 4)
	if lp.last != nil {
		sub <- *lp.last
	}
	if lp.finished {
		close(sub)
		return sub
	}
	lp.subscribers[sub] = struct{}{}
	return sub
}

func (lp *LivePreview) unsubscribe(sub chan SSEEvent) {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	if _, ok := lp.subscribers[sub]; ok {
		delete(lp.subscribers, sub)
		close(sub)
	}
}

// ServeHTTP streams frames to one client. Disconnecting does not affect the
// render.
func (lp *LivePreview) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	setSSEHeaders(w)
	ctx := r.Context()

	sub := lp.subscribe()
	defer lp.unsubscribe(sub)

	for {
		select {
		case event, ok := <-sub:
			if !ok {
				writeSSEEvent(w, SSEEvent{Type: "complete", Data: "Rendering completed"})
				return
			}
			if err := writeSSEEvent(w, event); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
