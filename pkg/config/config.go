package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"runtime"

	"github.com/df07/skean-raytracer/pkg/preview/window"
	"github.com/df07/skean-raytracer/pkg/renderer"
	"github.com/df07/skean-raytracer/pkg/scene"
)

const (
	defaultAspect = 16.0 / 9.0
	defaultWidth  = 400
)

var (
	ErrResolutionConflict = errors.New("aspect ratio, width and height cannot all be specified")
	ErrMissingScene       = errors.New("no scene given: use -scene, -builtin or -generate")
	ErrSceneConflict      = errors.New("only one of -scene, -builtin and -generate may be used")
	ErrInvalidValue       = errors.New("invalid configuration value")
	ErrWindowUnsupported  = errors.New("-window needs a build with the gui tag")
)

// RenderConfig is the fully resolved configuration of one render run
type RenderConfig struct {
	Width           int
	Height          int
	SamplesPerPixel int
	MaxDepth        int
	Seed            int64
	Threads         int
	Output          string // Output path; "-" is standard output

	ScenePath       string // Scene file to load
	Builtin         string // Built-in scene id
	Generate        bool   // Use the procedural generator
	GenerateOptions scene.GenerateOptions

	PreviewAddr string // Address of the SSE preview server, empty to disable
	Window      bool   // Open a preview window (gui builds only)
	Quiet       bool
}

// RendererConfig returns the subset of the configuration the renderer needs
func (c RenderConfig) RendererConfig() renderer.Config {
	return renderer.Config{
		Width:           c.Width,
		Height:          c.Height,
		SamplesPerPixel: c.SamplesPerPixel,
		MaxDepth:        c.MaxDepth,
		Seed:            c.Seed,
		NumWorkers:      c.Threads,
	}
}

// fileConfig mirrors the command line flags. Fields left out of the file are
// nil and keep their defaults.
type fileConfig struct {
	Aspect   *float64 `json:"aspect,omitempty"`
	Width    *int     `json:"width,omitempty"`
	Height   *int     `json:"height,omitempty"`
	Samples  *int     `json:"samples,omitempty"`
	Depth    *int     `json:"depth,omitempty"`
	Seed     *int64   `json:"seed,omitempty"`
	Threads  *int     `json:"threads,omitempty"`
	Output   *string  `json:"output,omitempty"`
	Scene    *string  `json:"scene,omitempty"`
	Builtin  *string  `json:"builtin,omitempty"`
	Generate *bool    `json:"generate,omitempty"`
	GenSeed  *int64   `json:"genSeed,omitempty"`
	Spheres  *int     `json:"spheres,omitempty"`
	Planes   *int     `json:"planes,omitempty"`
	Preview  *string  `json:"preview,omitempty"`
	Window   *bool    `json:"window,omitempty"`
	Quiet    *bool    `json:"quiet,omitempty"`
}

// flagValues holds the values the flag set writes into
type flagValues struct {
	configPath string
	aspect     float64
	width      int
	height     int
	cfg        RenderConfig
}

func newFlagSet(v *flagValues) *flag.FlagSet {
	fs := flag.NewFlagSet("skean", flag.ContinueOnError)
	gen := scene.DefaultGenerateOptions()

	fs.StringVar(&v.configPath, "config", "", "JSON configuration file (flags override its values)")
	fs.Float64Var(&v.aspect, "aspect", defaultAspect, "Aspect ratio (width/height)")
	fs.IntVar(&v.width, "width", defaultWidth, "Image width in pixels")
	fs.IntVar(&v.height, "height", 0, "Image height in pixels")
	fs.IntVar(&v.cfg.SamplesPerPixel, "samples", 10, "Samples per pixel")
	fs.IntVar(&v.cfg.MaxDepth, "depth", 10, "Maximum ray bounce depth")
	fs.Int64Var(&v.cfg.Seed, "seed", 0, "Random seed (worker i uses seed+i)")
	fs.IntVar(&v.cfg.Threads, "threads", runtime.NumCPU(), "Number of render workers")
	fs.StringVar(&v.cfg.Output, "output", "-", "Output file (.ppm or .png), '-' for standard output")
	fs.StringVar(&v.cfg.ScenePath, "scene", "", "Scene file to render")
	fs.StringVar(&v.cfg.Builtin, "builtin", "", "Built-in scene: 'default', 'single' or 'random'")
	fs.BoolVar(&v.cfg.Generate, "generate", false, "Render a procedurally generated scene")
	fs.Int64Var(&v.cfg.GenerateOptions.Seed, "gen-seed", gen.Seed, "Generator random seed")
	fs.IntVar(&v.cfg.GenerateOptions.NumSpheres, "spheres", gen.NumSpheres, "Number of generated spheres")
	fs.IntVar(&v.cfg.GenerateOptions.NumPlanes, "planes", gen.NumPlanes, "Number of generated planes")
	fs.StringVar(&v.cfg.PreviewAddr, "preview", "", "Serve a live preview on this address (e.g. :8080)")
	fs.BoolVar(&v.cfg.Window, "window", false, "Open a live preview window")
	fs.BoolVar(&v.cfg.Quiet, "quiet", false, "Suppress progress output")

	return fs
}

// Usage writes the flag documentation to w
func Usage(w io.Writer) {
	fs := newFlagSet(&flagValues{})
	fs.SetOutput(w)
	fmt.Fprintln(w, "Usage: skean [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fs.PrintDefaults()
}

// Parse resolves the configuration from command line arguments (without the
// program name). Values come from the defaults, then the -config file, then
// flags given explicitly on the command line.
func Parse(args []string) (RenderConfig, error) {
	v := &flagValues{}
	v.cfg.GenerateOptions = scene.DefaultGenerateOptions()

	fs := newFlagSet(v)
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return RenderConfig{}, err
	}
	if fs.NArg() > 0 {
		return RenderConfig{}, fmt.Errorf("%w: unexpected argument %q", ErrInvalidValue, fs.Arg(0))
	}

	// Flags given explicitly on the command line win over the config file
	provided := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		provided[f.Name] = true
	})

	if v.configPath != "" {
		fc, err := loadFile(v.configPath)
		if err != nil {
			return RenderConfig{}, err
		}
		merge(v, fc, provided)
	}

	cfg := v.cfg
	var err error
	cfg.Width, cfg.Height, err = resolveResolution(v, provided)
	if err != nil {
		return RenderConfig{}, err
	}

	if err := validate(cfg); err != nil {
		return RenderConfig{}, err
	}
	return cfg, nil
}

func loadFile(path string) (fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, fmt.Errorf("read config: %w", err)
	}

	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return fileConfig{}, fmt.Errorf("%w: parse config %s: %w", ErrInvalidValue, path, err)
	}
	return fc, nil
}

// merge copies values from the config file that were not given as flags and
// marks them as provided
func merge(v *flagValues, fc fileConfig, provided map[string]bool) {
	set := func(name string, present bool, apply func()) {
		if present && !provided[name] {
			apply()
			provided[name] = true
		}
	}

	set("aspect", fc.Aspect != nil, func() { v.aspect = *fc.Aspect })
	set("width", fc.Width != nil, func() { v.width = *fc.Width })
	set("height", fc.Height != nil, func() { v.height = *fc.Height })
	set("samples", fc.Samples != nil, func() { v.cfg.SamplesPerPixel = *fc.Samples })
	set("depth", fc.Depth != nil, func() { v.cfg.MaxDepth = *fc.Depth })
	set("seed", fc.Seed != nil, func() { v.cfg.Seed = *fc.Seed })
	set("threads", fc.Threads != nil, func() { v.cfg.Threads = *fc.Threads })
	set("output", fc.Output != nil, func() { v.cfg.Output = *fc.Output })
	set("scene", fc.Scene != nil, func() { v.cfg.ScenePath = *fc.Scene })
	set("builtin", fc.Builtin != nil, func() { v.cfg.Builtin = *fc.Builtin })
	set("generate", fc.Generate != nil, func() { v.cfg.Generate = *fc.Generate })
	set("gen-seed", fc.GenSeed != nil, func() { v.cfg.GenerateOptions.Seed = *fc.GenSeed })
	set("spheres", fc.Spheres != nil, func() { v.cfg.GenerateOptions.NumSpheres = *fc.Spheres })
	set("planes", fc.Planes != nil, func() { v.cfg.GenerateOptions.NumPlanes = *fc.Planes })
	set("preview", fc.Preview != nil, func() { v.cfg.PreviewAddr = *fc.Preview })
	set("window", fc.Window != nil, func() { v.cfg.Window = *fc.Window })
	set("quiet", fc.Quiet != nil, func() { v.cfg.Quiet = *fc.Quiet })
}

// resolveResolution derives the image size. Any two of aspect, width and
// height determine the third; a lone width or height uses the default aspect.
func resolveResolution(v *flagValues, provided map[string]bool) (int, int, error) {
	hasAspect, hasWidth, hasHeight := provided["aspect"], provided["width"], provided["height"]

	if hasAspect && hasWidth && hasHeight {
		return 0, 0, ErrResolutionConflict
	}
	if hasAspect && (v.aspect <= 0 || math.IsNaN(v.aspect) || math.IsInf(v.aspect, 0)) {
		return 0, 0, fmt.Errorf("%w: aspect ratio %v", ErrInvalidValue, v.aspect)
	}

	aspect := defaultAspect
	if hasAspect {
		aspect = v.aspect
	}

	width, height := v.width, v.height
	switch {
	case hasWidth && hasHeight:
	case hasHeight:
		width = int(math.Round(float64(height) * aspect))
	default:
		// Width is either given or the default
		height = int(math.Round(float64(width) / aspect))
	}

	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("%w: resolution %dx%d", ErrInvalidValue, width, height)
	}
	return width, height, nil
}

func validate(cfg RenderConfig) error {
	sources := 0
	for _, used := range []bool{cfg.ScenePath != "", cfg.Builtin != "", cfg.Generate} {
		if used {
			sources++
		}
	}
	switch {
	case sources == 0:
		return ErrMissingScene
	case sources > 1:
		return ErrSceneConflict
	}

	switch {
	case cfg.SamplesPerPixel < 1:
		return fmt.Errorf("%w: samples per pixel %d", ErrInvalidValue, cfg.SamplesPerPixel)
	case cfg.MaxDepth < 0:
		return fmt.Errorf("%w: max depth %d", ErrInvalidValue, cfg.MaxDepth)
	case cfg.Threads < 1:
		return fmt.Errorf("%w: threads %d", ErrInvalidValue, cfg.Threads)
	case cfg.Output == "":
		return fmt.Errorf("%w: empty output path", ErrInvalidValue)
	case cfg.GenerateOptions.NumSpheres < 0 || cfg.GenerateOptions.NumPlanes < 0:
		return fmt.Errorf("%w: negative object count", ErrInvalidValue)
	case cfg.Window && !window.Supported:
		return ErrWindowUnsupported
	}
	return nil
}
