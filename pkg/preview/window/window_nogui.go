//go:build !gui

package window

import (
	"errors"

	"github.com/df07/skean-raytracer/pkg/renderer"
)

// ErrUnsupported is returned when the binary was built without the gui tag
var ErrUnsupported = errors.New("preview window not available: rebuild with -tags gui")

// Supported reports whether this build can open windows
const Supported = false

// Window is a placeholder in builds without window support
type Window struct {
	Title string
	FPS   int32
}

// New creates a preview window description
func New(title string) *Window {
	return &Window{Title: title, FPS: 30}
}

// Run always fails with ErrUnsupported
func (w *Window) Run(acc *renderer.Accumulator, done <-chan struct{}) error {
	return ErrUnsupported
}
