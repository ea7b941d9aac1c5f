//go:build gui

// Package window shows a render in progress in a native window.
package window

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/df07/skean-raytracer/pkg/renderer"
)

// Supported reports whether this build can open windows
const Supported = true

// Window is a raylib preview window. Run must be called from the main
// goroutine.
type Window struct {
	Title string
	FPS   int32
}

// New creates a preview window description
func New(title string) *Window {
	return &Window{Title: title, FPS: 30}
}

// Run opens the window and redraws the accumulator every frame until the user
// closes it. Once done is closed the final image stays on screen.
func (w *Window) Run(acc *renderer.Accumulator, done <-chan struct{}) error {
	width, height := acc.Width(), acc.Height()

	rl.InitWindow(int32(width), int32(height), w.Title)
	defer rl.CloseWindow()
	rl.SetTargetFPS(w.FPS)

	img := rl.GenImageColor(width, height, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)

	pixels := make([]color.RGBA, width*height)
	finished := false

	for !rl.WindowShouldClose() {
		if !finished {
			select {
			case <-done:
				finished = true
			default:
			}

			for y := 0; y < height; y++ {
				for x := 0; x < width; x++ {
					pixels[y*width+x] = acc.Cell(x, y).RGBA()
				}
			}
			rl.UpdateTexture(texture, pixels)
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)
		rl.DrawTexture(texture, 0, 0, rl.White)
		if finished {
			rl.DrawText("done", 4, 4, 10, rl.RayWhite)
		}
		rl.EndDrawing()
	}

	return nil
}
