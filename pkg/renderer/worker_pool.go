package renderer

import (
	"context"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/df07/skean-raytracer/pkg/geometry"
	"github.com/df07/skean-raytracer/pkg/integrator"
)

// RowBand is a contiguous range of image rows [Start, End), counted from the top
type RowBand struct {
	Start, End int
}

// Progress is reported by a worker after it finishes a sample pass over its band
type Progress struct {
	WorkerID    int
	Band        RowBand
	Pass        int // Passes completed by this worker (1-based)
	TotalPasses int
	Elapsed     time.Duration // Since the worker started
}

// Done reports whether the worker has finished all its passes
func (p Progress) Done() bool {
	return p.Pass == p.TotalPasses
}

// BandRows partitions height rows into at most workers contiguous, disjoint
// bands that together cover every row exactly once
func BandRows(height, workers int) []RowBand {
	if height <= 0 {
		return nil
	}
	workers = max(1, min(workers, height))

	bands := make([]RowBand, workers)
	for i := range bands {
		bands[i] = RowBand{
			Start: i * height / workers,
			End:   (i + 1) * height / workers,
		}
	}
	return bands
}

// WorkerPool renders an accumulator with one goroutine per row band
type WorkerPool struct {
	workers  []*Worker
	progress chan<- Progress
	wg       sync.WaitGroup
	errMu    sync.Mutex
	err      error
}

// Worker owns one row band of the accumulator and a private random stream
type Worker struct {
	ID     int
	Band   RowBand
	random *rand.Rand
	pool   *WorkerPool

	world      geometry.Shape
	camera     *Camera
	integrator integrator.Integrator
	acc        *Accumulator
	config     Config
}

// NewWorkerPool creates one worker per row band. Worker i draws from a
// generator seeded with config.Seed+i. Progress events are sent to progress
// (if non-nil), which the caller must drain.
func NewWorkerPool(world geometry.Shape, camera *Camera, integratorInst integrator.Integrator, acc *Accumulator, config Config, progress chan<- Progress) *WorkerPool {
	numWorkers := config.NumWorkers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	wp := &WorkerPool{progress: progress}
	for i, band := range BandRows(acc.Height(), numWorkers) {
		wp.workers = append(wp.workers, &Worker{
			ID:         i,
			Band:       band,
			random:     rand.New(rand.NewSource(config.Seed + int64(i))),
			pool:       wp,
			world:      world,
			camera:     camera,
			integrator: integratorInst,
			acc:        acc,
			config:     config,
		})
	}

	return wp
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return len(wp.workers)
}

// Start begins all workers
func (wp *WorkerPool) Start(ctx context.Context) {
	for _, worker := range wp.workers {
		wp.wg.Add(1)
		go worker.run(ctx, &wp.wg)
	}
}

// Wait blocks until every worker has returned and reports the first error
func (wp *WorkerPool) Wait() error {
	wp.wg.Wait()
	wp.errMu.Lock()
	defer wp.errMu.Unlock()
	return wp.err
}

func (wp *WorkerPool) setErr(err error) {
	wp.errMu.Lock()
	defer wp.errMu.Unlock()
	if wp.err == nil {
		wp.err = err
	}
}

// run is the main worker loop
func (w *Worker) run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	startTime := time.Now()
	for pass := 1; pass <= w.config.SamplesPerPixel; pass++ {
		// Cancellation is only observed between passes
		if err := ctx.Err(); err != nil {
			w.pool.setErr(err)
			return
		}

		w.renderPass()

		if w.pool.progress != nil {
			w.pool.progress <- Progress{
				WorkerID:    w.ID,
				Band:        w.Band,
				Pass:        pass,
				TotalPasses: w.config.SamplesPerPixel,
				Elapsed:     time.Since(startTime),
			}
		}
	}
}

// renderPass adds one jittered sample to every pixel of the band
func (w *Worker) renderPass() {
	width, height := w.acc.Width(), w.acc.Height()
	uScale := 1.0 / float64(max(width-1, 1))
	vScale := 1.0 / float64(max(height-1, 1))

	for row := w.Band.Start; row < w.Band.End; row++ {
		// Camera v grows upwards while rows grow downwards
		j := height - 1 - row
		for x := 0; x < width; x++ {
			u := (float64(x) + w.random.Float64()) * uScale
			v := (float64(j) + w.random.Float64()) * vScale

			ray := w.camera.GetRay(u, v)
			color := w.integrator.RayColor(ray, w.world, w.random, w.config.MaxDepth)
			w.acc.Cell(x, row).AddSample(color)
		}
	}
}
