// SPDX-License-Identifier: EPL-2.0

// Package audiotest generates PCM sources for tests.
package audiotest

import (
	"io"
	"math"
)

// Waveform returns the value of one sample.
type Waveform func(frame, channel int) float32

// Source plays a waveform for a fixed number of frames. It satisfies
// audio.Source.
type Source struct {
	rate     int
	channels int
	frames   int
	pos      int
	wave     Waveform

	// Closed is set by Close.
	Closed bool
	// Chunk, when positive, caps the frames returned per ReadSamples call.
	Chunk int
}

func NewSource(rate, channels, frames int, wave Waveform) *Source {
	return &Source{rate: rate, channels: channels, frames: frames, wave: wave}
}

func NewSilentSource(rate, channels, frames int) *Source {
	return NewConstantSource(rate, channels, frames, 0)
}

func NewConstantSource(rate, channels, frames int, v float32) *Source {
	return NewSource(rate, channels, frames, func(int, int) float32 { return v })
}

// NewSineSource plays the same sine on every channel.
func NewSineSource(rate, channels, frames int, freq float64) *Source {
	return NewSource(rate, channels, frames, func(f, _ int) float32 {
		return float32(math.Sin(2 * math.Pi * freq * float64(f) / float64(rate)))
	})
}

func (s *Source) SampleRate() int { return s.rate }
func (s *Source) Channels() int   { return s.channels }
func (s *Source) BufSize() int    { return 4096 }

func (s *Source) Close() error {
	s.Closed = true
	return nil
}

// Rewind restarts the waveform.
func (s *Source) Rewind() { s.pos = 0 }

func (s *Source) ReadSamples(dst []float32) (int, error) {
	if s.pos >= s.frames {
		return 0, io.EOF
	}

	n := min(len(dst)/s.channels, s.frames-s.pos)
	if s.Chunk > 0 {
		n = min(n, s.Chunk)
	}
	for f := range n {
		for c := range s.channels {
			dst[f*s.channels+c] = s.wave(s.pos+f, c)
		}
	}
	s.pos += n

	if s.pos >= s.frames {
		return n * s.channels, io.EOF
	}
	return n * s.channels, nil
}
