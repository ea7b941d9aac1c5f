package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/df07/skean-raytracer/pkg/config"
	"github.com/df07/skean-raytracer/pkg/core"
	"github.com/df07/skean-raytracer/pkg/output"
	"github.com/df07/skean-raytracer/pkg/preview"
	"github.com/df07/skean-raytracer/pkg/preview/window"
	"github.com/df07/skean-raytracer/pkg/renderer"
	"github.com/df07/skean-raytracer/pkg/scene"
	"github.com/df07/skean-raytracer/web/server"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one render and returns the process exit status: 0 on success,
// 2 for configuration errors and 1 for everything else
func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Parse(args)
	if errors.Is(err, flag.ErrHelp) {
		fmt.Fprintln(stdout, "Skean Raytracer")
		config.Usage(stdout)
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		fmt.Fprintln(stderr, "Run with -help for usage.")
		return 2
	}

	logger := core.NewWriterLogger(stderr)
	if cfg.Quiet {
		logger = core.NewNopLogger()
	}

	selectedScene, err := loadScene(cfg, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	// SIGINT stops the workers after their current pass
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	raytracer := renderer.NewProgressiveRaytracer(selectedScene.World, cfg.RendererConfig(), logger)
	acc := raytracer.Accumulator()

	var stats renderer.RenderStats
	var renderErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		stats, renderErr = raytracer.Render(ctx)
	}()

	if cfg.PreviewAddr != "" {
		srv := startPreviewServer(cfg.PreviewAddr, acc, done, logger)
		defer srv.Close()
	}

	if cfg.Window {
		// Runs on the main goroutine; closing the window leaves the render running
		if err := window.New("Skean Raytracer").Run(acc, done); err != nil {
			logger.Printf("Preview window: %v\n", err)
		}
	}

	<-done
	if renderErr != nil {
		fmt.Fprintf(stderr, "Error: render failed: %v\n", renderErr)
		return 1
	}

	if err := output.Write(cfg.Output, acc.Snapshot(), stdout); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if cfg.Output != output.StdoutPath {
		logger.Printf("Render saved as %s\n", cfg.Output)
	}
	logger.Printf("Samples per pixel: %.1f (range %d - %d)\n",
		stats.AverageSamples, stats.MinSamples, stats.MaxSamplesUsed)
	return 0
}

// loadScene builds the world from whichever scene source was configured
func loadScene(cfg config.RenderConfig, logger core.Logger) (*scene.Scene, error) {
	switch {
	case cfg.ScenePath != "":
		logger.Printf("Loading scene %s...\n", cfg.ScenePath)
		return scene.LoadFile(cfg.ScenePath)
	case cfg.Generate:
		logger.Printf("Generating scene (seed %d, %d spheres, %d planes)...\n",
			cfg.GenerateOptions.Seed, cfg.GenerateOptions.NumSpheres, cfg.GenerateOptions.NumPlanes)
		return scene.Generate(cfg.GenerateOptions, "skean")
	default:
		logger.Printf("Using %s scene...\n", cfg.Builtin)
		return scene.NewBuiltinScene(cfg.Builtin)
	}
}

// startPreviewServer serves a live preview of the render on addr
func startPreviewServer(addr string, acc *renderer.Accumulator, done <-chan struct{}, logger core.Logger) *http.Server {
	live := server.NewLivePreview(preview.DefaultInterval)
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.NewServer(0, live).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go live.Run(acc, done)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("Preview server: %v\n", err)
		}
	}()

	logger.Printf("Live preview at http://%s/api/live\n", addr)
	return srv
}
