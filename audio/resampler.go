// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
)

// Resampler streams from src to target sample rate using cubic interpolation.
// Works on interleaved samples; preserves channel count.
// A one-pole low-pass filter runs on the input when downsampling.
type Resampler struct {
	src      Source
	dstRate  int
	ratio    float64 // source frames per output frame
	channels int

	// window holds the frames at t-1, t0, t+1 and t+2. Past the end of the
	// source the last frame is repeated.
	window [4][]float32
	// avail counts the real frames from window[1] on.
	avail  int
	pos    float64
	primed bool
	eof    bool
	buf    []float32

	filter  bool
	alpha   float32
	lowpass []float32
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()
	ratio := float64(src.SampleRate()) / float64(dstRate)

	r := &Resampler{
		src:      src,
		dstRate:  dstRate,
		ratio:    ratio,
		channels: channels,
		buf:      make([]float32, channels),
		filter:   ratio > 1.0,
		alpha:    0.5,
		lowpass:  make([]float32, channels),
	}
	for i := range r.window {
		r.window[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

// read pulls one source frame into dst. It reports false once the source
// is exhausted.
func (r *Resampler) read(dst []float32) (bool, error) {
	for !r.eof {
		n, err := r.src.ReadSamples(r.buf)
		if err == io.EOF {
			r.eof = true
		} else if err != nil {
			return false, fmt.Errorf("%w", err)
		}
		if n < r.channels {
			continue
		}

		copy(dst, r.buf)
		if r.filter {
			if !r.primed && r.avail == 0 {
				copy(r.lowpass, dst)
			}
			for c := range dst {
				// y[n] = alpha * x[n] + (1-alpha) * y[n-1]
				dst[c] = r.alpha*dst[c] + (1-r.alpha)*r.lowpass[c]
				r.lowpass[c] = dst[c]
			}
		}

		return true, nil
	}

	return false, nil
}

func (r *Resampler) prime() error {
	ok, err := r.read(r.window[1])
	if err != nil {
		return err
	}
	if !ok {
		return io.EOF
	}
	copy(r.window[0], r.window[1])
	r.avail = 1

	for i := 2; i < len(r.window); i++ {
		ok, err := r.read(r.window[i])
		if err != nil {
			return err
		}
		if ok {
			r.avail++
		} else {
			copy(r.window[i], r.window[i-1])
		}
	}
	r.primed = true

	return nil
}

// advance moves the window one source frame forward.
func (r *Resampler) advance() error {
	oldest := r.window[0]
	copy(r.window[:], r.window[1:])
	r.window[3] = oldest
	r.avail--

	ok, err := r.read(r.window[3])
	if err != nil {
		return err
	}
	if ok {
		r.avail++
	} else {
		copy(r.window[3], r.window[2])
	}

	return nil
}

// ReadSamples produces dst samples at the target rate.
// dst length should be a multiple of r.channels.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	frames := len(dst) / r.channels
	written := 0
	for written < frames {
		for r.pos >= 1.0 {
			r.pos -= 1.0
			if err := r.advance(); err != nil {
				return written * r.channels, err
			}
		}
		if r.avail < 1 {
			return written * r.channels, io.EOF
		}

		x := float32(r.pos)
		out := dst[written*r.channels:]
		w := &r.window
		for c := range r.channels {
			out[c] = CubicInterpolate(w[0][c], w[1][c], w[2][c], w[3][c], x)
		}
		written++
		r.pos += r.ratio
	}

	return written * r.channels, nil
}
