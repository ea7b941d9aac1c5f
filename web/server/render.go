package server

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"log"
	"net/http"
	"time"

	"github.com/df07/skean-raytracer/pkg/core"
	"github.com/df07/skean-raytracer/pkg/preview"
	"github.com/df07/skean-raytracer/pkg/renderer"
	"github.com/df07/skean-raytracer/pkg/scene"
)

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene      string `json:"scene"`      // Built-in scene id
	Width      int    `json:"width"`      // Image width
	Height     int    `json:"height"`     // Image height
	Samples    int    `json:"samples"`    // Samples per pixel
	Depth      int    `json:"depth"`      // Maximum bounce depth
	Seed       int64  `json:"seed"`       // Base random seed
	IntervalMs int    `json:"intervalMs"` // Time between preview frames
}

// handleRender renders a built-in scene on demand, streaming preview frames
// and console output via SSE. The render stops when the client disconnects.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	setSSEHeaders(w)
	ctx := r.Context()

	// A single goroutine writes to the response
	sseEventChan := make(chan SSEEvent, 100)
	writerDone := make(chan struct{})
	go func() {
		writeSSEEvents(ctx, w, sseEventChan)
		close(writerDone)
	}()
	defer func() {
		close(sseEventChan)
		<-writerDone
	}()

	send := func(event SSEEvent) {
		select {
		case sseEventChan <- event:
		case <-ctx.Done():
		}
	}

	req, err := parseRenderRequest(r)
	if err != nil {
		send(SSEEvent{Type: "error", Data: fmt.Sprintf("Invalid request: %v", err)})
		return
	}

	sceneObj, err := scene.NewBuiltinScene(req.Scene)
	if err != nil {
		send(SSEEvent{Type: "error", Data: err.Error()})
		return
	}

	consoleChan := make(chan ConsoleMessage, 50)
	webLogger := NewWebLogger(fmt.Sprintf("render-%d", time.Now().UnixNano()), consoleChan)
	consoleDone := make(chan struct{})
	go func() {
		streamConsoleMessages(consoleChan, send)
		close(consoleDone)
	}()

	config := renderer.Config{
		Width:           req.Width,
		Height:          req.Height,
		SamplesPerPixel: req.Samples,
		MaxDepth:        req.Depth,
		Seed:            req.Seed,
	}
	raytracer := renderer.NewProgressiveRaytracer(sceneObj.World, config, webLogger)

	err = streamRender(ctx, raytracer, webLogger, time.Duration(req.IntervalMs)*time.Millisecond, send)

	// The render no longer logs; flush the console before the final event
	close(consoleChan)
	<-consoleDone

	if err != nil {
		send(SSEEvent{Type: "error", Data: fmt.Sprintf("Render error: %v", err)})
		return
	}
	send(SSEEvent{Type: "complete", Data: "Rendering completed"})
}

// streamRender runs the render, sending a frame event every interval and a
// final complete frame once all workers have finished
func streamRender(ctx context.Context, raytracer *renderer.ProgressiveRaytracer, logger core.Logger, interval time.Duration, send func(SSEEvent)) error {
	startTime := time.Now()
	progressChan, errChan := raytracer.RenderProgressive(ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		reporter := renderer.NewProgressReporter(logger)
		for progress := range progressChan {
			reporter.Report(progress)
		}
	}()

	acc := raytracer.Accumulator()
	frame := 0
	preview.Loop(acc, interval, done, func(img *image.RGBA) bool {
		complete := false
		select {
		case <-done:
			complete = true
		default:
		}

		frame++
		event, err := frameEvent(frame, img, acc.Stats(), complete, time.Since(startTime).Milliseconds())
		if err != nil {
			log.Printf("Error encoding frame: %v", err)
			return true
		}
		send(event)
		return ctx.Err() == nil
	})

	// Drain progress in case the loop stopped early
	<-done
	return <-errChan
}

// writeSSEEvents writes events until the channel is closed. After a failed
// write it keeps draining so senders never block.
func writeSSEEvents(ctx context.Context, w http.ResponseWriter, sseEventChan <-chan SSEEvent) {
	failed := false
	for event := range sseEventChan {
		if failed || ctx.Err() != nil {
			continue
		}
		if err := writeSSEEvent(w, event); err != nil {
			failed = true
		}
	}
}

// streamConsoleMessages forwards console messages as SSE events until the
// console channel is closed
func streamConsoleMessages(consoleChan <-chan ConsoleMessage, send func(SSEEvent)) {
	for consoleMsg := range consoleChan {
		data, err := json.Marshal(consoleMsg)
		if err != nil {
			log.Printf("Error marshaling console message: %v", err)
			continue
		}
		send(SSEEvent{Type: "console", Data: string(data)})
	}
}

// parseRenderRequest parses request parameters
func parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	query := r.URL.Query()
	req := &RenderRequest{Scene: "default"}
	if sceneID := query.Get("scene"); sceneID != "" {
		req.Scene = sceneID
	}

	var err error
	if req.Width, err = parseIntParam(query, "width", 400, 1, 2000); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(query, "height", 225, 1, 2000); err != nil {
		return nil, err
	}
	if req.Samples, err = parseIntParam(query, "samples", 10, 1, 10000); err != nil {
		return nil, err
	}
	if req.Depth, err = parseIntParam(query, "depth", 10, 0, 1000); err != nil {
		return nil, err
	}
	seed, err := parseIntParam(query, "seed", 0, -1<<31, 1<<31-1)
	if err != nil {
		return nil, err
	}
	req.Seed = int64(seed)
	if req.IntervalMs, err = parseIntParam(query, "intervalMs", int(preview.DefaultInterval/time.Millisecond), 10, 60000); err != nil {
		return nil, err
	}

	// Performance warning
	if req.Width*req.Height > 800*600 && req.Samples > 100 {
		log.Printf("Render warning: Large image with high samples may render slowly")
	}

	return req, nil
}
