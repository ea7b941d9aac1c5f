package renderer

import (
	"context"
	"fmt"
	"time"

	"github.com/df07/skean-raytracer/pkg/core"
	"github.com/df07/skean-raytracer/pkg/geometry"
	"github.com/df07/skean-raytracer/pkg/integrator"
)

// Config contains the fully resolved rendering configuration
type Config struct {
	Width           int   // Image width in pixels
	Height          int   // Image height in pixels
	SamplesPerPixel int   // Number of sample passes over every pixel
	MaxDepth        int   // Maximum ray bounce depth
	Seed            int64 // Base seed; worker i uses Seed+i
	NumWorkers      int   // Number of parallel workers (0 = use CPU count)
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{
		Width:           400,
		Height:          225,
		SamplesPerPixel: 10,
		MaxDepth:        10,
		Seed:            0,
		NumWorkers:      0,
	}
}

// Validate reports configuration values the renderer cannot work with
func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("invalid resolution %dx%d", c.Width, c.Height)
	case c.SamplesPerPixel < 0:
		return fmt.Errorf("invalid samples per pixel: %d", c.SamplesPerPixel)
	case c.MaxDepth < 0:
		return fmt.Errorf("invalid max depth: %d", c.MaxDepth)
	}
	return nil
}

// AspectRatio returns width/height
func (c Config) AspectRatio() float64 {
	return float64(c.Width) / float64(c.Height)
}

// ProgressiveRaytracer renders a world into a shared accumulator that can be
// observed while rendering is in progress
type ProgressiveRaytracer struct {
	world      geometry.Shape
	camera     *Camera
	integrator integrator.Integrator
	config     Config
	acc        *Accumulator
	logger     core.Logger
}

// NewProgressiveRaytracer creates a new progressive raytracer
func NewProgressiveRaytracer(world geometry.Shape, config Config, logger core.Logger) *ProgressiveRaytracer {
	if logger == nil {
		logger = core.NewNopLogger()
	}
	return &ProgressiveRaytracer{
		world:      world,
		camera:     NewCamera(config.AspectRatio()),
		integrator: integrator.NewPathTracingIntegrator(),
		config:     config,
		acc:        NewAccumulator(config.Width, config.Height),
		logger:     logger,
	}
}

// Accumulator returns the shared framebuffer for previews and output
func (pr *ProgressiveRaytracer) Accumulator() *Accumulator {
	return pr.acc
}

// RenderProgressive starts rendering and returns channels for events.
// The progress channel must be drained; it is closed once every worker has
// finished, after which the error channel yields at most one error and closes.
func (pr *ProgressiveRaytracer) RenderProgressive(ctx context.Context) (<-chan Progress, <-chan error) {
	progressChan := make(chan Progress, 64)
	errChan := make(chan error, 1)

	if err := pr.config.Validate(); err != nil {
		close(progressChan)
		errChan <- err
		close(errChan)
		return progressChan, errChan
	}

	pool := NewWorkerPool(pr.world, pr.camera, pr.integrator, pr.acc, pr.config, progressChan)

	go func() {
		defer close(errChan)
		defer close(progressChan)

		pr.logger.Printf("Rendering %dx%d, %d samples/pixel, depth %d (using %d workers)...\n",
			pr.config.Width, pr.config.Height, pr.config.SamplesPerPixel, pr.config.MaxDepth, pool.GetNumWorkers())

		pool.Start(ctx)
		if err := pool.Wait(); err != nil {
			errChan <- err
		}
	}()

	return progressChan, errChan
}

// Render renders to completion, logging worker progress, and returns the
// final statistics
func (pr *ProgressiveRaytracer) Render(ctx context.Context) (RenderStats, error) {
	startTime := time.Now()
	progressChan, errChan := pr.RenderProgressive(ctx)

	reporter := NewProgressReporter(pr.logger)
	for progress := range progressChan {
		reporter.Report(progress)
	}
	if err := <-errChan; err != nil {
		return RenderStats{}, err
	}

	stats := pr.acc.Stats()
	pr.logger.Printf("Render completed in %v (%.1f samples/pixel, range %d - %d)\n",
		time.Since(startTime), stats.AverageSamples, stats.MinSamples, stats.MaxSamplesUsed)
	return stats, nil
}

// ProgressReporter logs worker progress events
type ProgressReporter struct {
	logger   core.Logger
	finished int
}

// NewProgressReporter creates a reporter that logs through logger
func NewProgressReporter(logger core.Logger) *ProgressReporter {
	return &ProgressReporter{logger: logger}
}

// Report logs a single progress event
func (r *ProgressReporter) Report(p Progress) {
	if p.Done() {
		r.finished++
		r.logger.Printf("Worker %d: rows %d-%d done in %v (%d workers finished)\n",
			p.WorkerID, p.Band.Start, p.Band.End-1, p.Elapsed.Round(time.Millisecond), r.finished)
		return
	}
	r.logger.Printf("Worker %d: pass %d/%d\n", p.WorkerID, p.Pass, p.TotalPasses)
}

// Finished returns how many workers have reported completion
func (r *ProgressReporter) Finished() int {
	return r.finished
}
