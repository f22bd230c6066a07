// SPDX-License-Identifier: EPL-2.0

package y4m

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
)

var (
	ErrInvalidSize = errors.New("width and height must be positive")
	ErrFrameSize   = errors.New("frame size does not match the stream")
	ErrSubsampling = errors.New("only 4:2:0 frames are supported")
	ErrNilFrame    = errors.New("nil frame")
)

const (
	magic       = "YUV4MPEG2"
	frameMarker = "FRAME\n"
	// Rate used when the container gives none.
	defaultNum = 30
	defaultDen = 1
)

// Writer emits one header followed by FRAME records.
type Writer struct {
	w        *bufio.Writer
	width    int
	height   int
	num, den int
	frames   int
	header   bool
}

// NewWriter returns a writer for width x height pictures at fps frames per
// second. fps <= 0 selects 30 fps.
func NewWriter(w io.Writer, width, height int, fps float64) (*Writer, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidSize
	}
	num, den := Rate(fps)
	return &Writer{
		w:      bufio.NewWriterSize(w, 64<<10),
		width:  width,
		height: height,
		num:    num,
		den:    den,
	}, nil
}

// Rate turns a frame rate into the numerator and denominator of the F
// header field. Integer and NTSC rates are exact.
func Rate(fps float64) (num, den int) {
	if fps <= 0 || math.IsNaN(fps) || math.IsInf(fps, 0) {
		return defaultNum, defaultDen
	}
	if r := math.Round(fps); math.Abs(fps-r) < 1e-3 {
		return int(r), 1
	}
	if r := math.Round(fps * 1.001); math.Abs(fps*1.001-r) < 1e-3 {
		return int(r) * 1000, 1001
	}
	num, den = int(math.Round(fps*1000)), 1000
	g := gcd(num, den)
	return num / g, den / g
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// Frames returns the number of frames written.
func (w *Writer) Frames() int { return w.frames }

func (w *Writer) writeHeader() error {
	if w.header {
		return nil
	}
	w.header = true
	_, err := fmt.Fprintf(w.w, "%s W%d H%d F%d:%d Ip A1:1 C420jpeg\n",
		magic, w.width, w.height, w.num, w.den)
	return err
}

// WriteFrame appends img. Planes are copied row by row, so padded strides
// are fine.
func (w *Writer) WriteFrame(img *image.YCbCr) error {
	if img == nil {
		return ErrNilFrame
	}
	if img.SubsampleRatio != image.YCbCrSubsampleRatio420 {
		return ErrSubsampling
	}
	r := img.Rect
	if r.Dx() != w.width || r.Dy() != w.height {
		return fmt.Errorf("%w: got %dx%d, want %dx%d", ErrFrameSize, r.Dx(), r.Dy(), w.width, w.height)
	}
	if err := w.writeHeader(); err != nil {
		return fmt.Errorf("%w", err)
	}
	if _, err := io.WriteString(w.w, frameMarker); err != nil {
		return fmt.Errorf("%w", err)
	}

	if err := writePlane(w.w, img.Y, img.YOffset(r.Min.X, r.Min.Y), img.YStride, w.width, w.height); err != nil {
		return err
	}
	cw, ch := (w.width+1)/2, (w.height+1)/2
	off := img.COffset(r.Min.X, r.Min.Y)
	if err := writePlane(w.w, img.Cb, off, img.CStride, cw, ch); err != nil {
		return err
	}
	if err := writePlane(w.w, img.Cr, off, img.CStride, cw, ch); err != nil {
		return err
	}
	w.frames++
	return nil
}

func writePlane(w io.Writer, plane []byte, off, stride, width, height int) error {
	for y := range height {
		start := off + y*stride
		if _, err := w.Write(plane[start : start+width]); err != nil {
			return fmt.Errorf("%w", err)
		}
	}
	return nil
}

// Flush writes buffered data. A stream without frames still gets its
// header.
func (w *Writer) Flush() error {
	if err := w.writeHeader(); err != nil {
		return fmt.Errorf("%w", err)
	}
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}
