package output

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.SetRGBA(0, 0, color.RGBA{255, 0, 0, 255})
	img.SetRGBA(1, 0, color.RGBA{0, 255, 0, 255})
	img.SetRGBA(2, 0, color.RGBA{0, 0, 255, 255})
	img.SetRGBA(0, 1, color.RGBA{1, 2, 3, 255})
	img.SetRGBA(1, 1, color.RGBA{10, 20, 30, 255})
	img.SetRGBA(2, 1, color.RGBA{100, 200, 250, 255})
	return img
}

func TestWritePPM(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePPM(&buf, testImage()); err != nil {
		t.Fatalf("WritePPM failed: %v", err)
	}

	expected := "P3\n3 2\n255\n" +
		"255 0 0 0 255 0 0 0 255 \n" +
		"1 2 3 10 20 30 100 200 250 \n"
	if buf.String() != expected {
		t.Errorf("Unexpected PPM output:\n%q\nexpected:\n%q", buf.String(), expected)
	}
}

func TestWrite_Stdout(t *testing.T) {
	var stdout bytes.Buffer
	if err := Write(StdoutPath, testImage(), &stdout); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if !strings.HasPrefix(stdout.String(), "P3\n3 2\n255\n") {
		t.Errorf("Expected PPM on stdout, got %q", stdout.String())
	}
}

func TestWrite_Files(t *testing.T) {
	dir := t.TempDir()
	img := testImage()

	ppmPath := filepath.Join(dir, "out.ppm")
	if err := Write(ppmPath, img, nil); err != nil {
		t.Fatalf("Write ppm failed: %v", err)
	}
	data, err := os.ReadFile(ppmPath)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	if !strings.HasPrefix(string(data), "P3\n") {
		t.Errorf("Expected a PPM file, got %q", data[:min(len(data), 10)])
	}

	pngPath := filepath.Join(dir, "out.PNG")
	if err := Write(pngPath, img, nil); err != nil {
		t.Fatalf("Write png failed: %v", err)
	}
	f, err := os.Open(pngPath)
	if err != nil {
		t.Fatalf("Failed to open output: %v", err)
	}
	defer f.Close()

	decoded, err := png.Decode(f)
	if err != nil {
		t.Fatalf("Failed to decode PNG: %v", err)
	}
	r, g, b, _ := decoded.At(2, 1).RGBA()
	if r>>8 != 100 || g>>8 != 200 || b>>8 != 250 {
		t.Errorf("Unexpected pixel in PNG: %d %d %d", r>>8, g>>8, b>>8)
	}
}

func TestWrite_BadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.ppm")
	if err := Write(path, testImage(), nil); err == nil {
		t.Error("Expected an error for an uncreatable path")
	}
}
