// Package output encodes rendered images as plain PPM or PNG files.
package output

import (
	"bufio"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// StdoutPath selects standard output as the destination
const StdoutPath = "-"

// WritePPM writes img as a plain-text PPM: a "P3", "<width> <height>", "255"
// header followed by one line per row, top row first, each pixel written as
// "R G B " with a trailing space.
func WritePPM(w io.Writer, img *image.RGBA) error {
	bw := bufio.NewWriter(w)
	bounds := img.Bounds()

	fmt.Fprintf(bw, "P3\n%d %d\n255\n", bounds.Dx(), bounds.Dy())

	buf := make([]byte, 0, 16)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := img.RGBAAt(x, y)
			buf = buf[:0]
			buf = strconv.AppendUint(buf, uint64(c.R), 10)
			buf = append(buf, ' ')
			buf = strconv.AppendUint(buf, uint64(c.G), 10)
			buf = append(buf, ' ')
			buf = strconv.AppendUint(buf, uint64(c.B), 10)
			buf = append(buf, ' ')
			bw.Write(buf)
		}
		bw.WriteByte('\n')
	}

	return bw.Flush()
}

// WritePNG writes img as a PNG
func WritePNG(w io.Writer, img *image.RGBA) error {
	return png.Encode(w, img)
}

// Write encodes img to path: PNG when the path ends in ".png", PPM otherwise.
// StdoutPath (or an empty path) writes PPM to stdout.
func Write(path string, img *image.RGBA, stdout io.Writer) error {
	if path == "" || path == StdoutPath {
		return WritePPM(stdout, img)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}

	encode := WritePPM
	if strings.EqualFold(filepath.Ext(path), ".png") {
		encode = WritePNG
	}

	if err := encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
