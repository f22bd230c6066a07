// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/ik5/webmdec/audio"
)

const (
	bitDepth  = 16
	formatPCM = 1
)

// Writer streams interleaved PCM into a 16-bit WAV file. The RIFF and data
// chunk sizes are patched on Close, so the destination must be seekable.
type Writer struct {
	enc      *wav.Encoder
	rate     int
	channels int
	buf      *goaudio.IntBuffer
	frames   int
	closed   bool
}

// NewWriter prepares a WAV writer. Nothing is written before the first
// Write call or Close.
func NewWriter(ws io.WriteSeeker, sampleRate, channels int) (*Writer, error) {
	if sampleRate <= 0 || channels <= 0 {
		return nil, ErrInvalidFormat
	}
	return &Writer{
		enc:      wav.NewEncoder(ws, sampleRate, bitDepth, channels, formatPCM),
		rate:     sampleRate,
		channels: channels,
	}, nil
}

func (w *Writer) SampleRate() int { return w.rate }
func (w *Writer) Channels() int   { return w.channels }

// Frames returns the number of sample frames written so far.
func (w *Writer) Frames() int { return w.frames }

// WriteFloat32 writes interleaved float samples in [-1, 1]. Values outside
// the range are clipped.
func (w *Writer) WriteFloat32(samples []float32) error {
	if err := w.check(len(samples)); err != nil {
		return err
	}
	w.buf = audio.ToIntBuffer(samples, w.channels, w.rate, w.buf)
	return w.write()
}

// WriteInt16 writes interleaved 16-bit samples.
func (w *Writer) WriteInt16(samples []int16) error {
	if err := w.check(len(samples)); err != nil {
		return err
	}
	w.buf = w.intBuffer(len(samples))
	for i, s := range samples {
		w.buf.Data[i] = int(s)
	}
	return w.write()
}

// Copy drains src into the file. src must match the writer's rate and
// channel count.
func (w *Writer) Copy(src audio.Source) error {
	if src.SampleRate() != w.rate || src.Channels() != w.channels {
		return fmt.Errorf("%w: source is %d Hz/%d ch, writer is %d Hz/%d ch",
			ErrInvalidFormat, src.SampleRate(), src.Channels(), w.rate, w.channels)
	}
	size := src.BufSize()
	if size < w.channels {
		size = 4096
	}
	size -= size % w.channels
	buf := make([]float32, size)
	for {
		n, err := src.ReadSamples(buf)
		if n > 0 {
			if werr := w.WriteFloat32(buf[:n]); werr != nil {
				return werr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w", err)
		}
	}
}

// Close finalizes the headers. The underlying writer is not closed.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	// An empty file still needs its header.
	if w.frames == 0 {
		w.buf = w.intBuffer(0)
		if err := w.enc.Write(w.buf); err != nil {
			return fmt.Errorf("%w", err)
		}
	}
	w.closed = true
	if err := w.enc.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (w *Writer) check(n int) error {
	if w.closed {
		return ErrClosed
	}
	if n%w.channels != 0 {
		return ErrPartialFrame
	}
	return nil
}

func (w *Writer) intBuffer(n int) *goaudio.IntBuffer {
	if w.buf == nil {
		w.buf = &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: w.channels, SampleRate: w.rate},
			SourceBitDepth: bitDepth,
		}
	}
	if cap(w.buf.Data) < n {
		w.buf.Data = make([]int, n)
	}
	w.buf.Data = w.buf.Data[:n]
	return w.buf
}

func (w *Writer) write() error {
	if len(w.buf.Data) == 0 {
		return nil
	}
	if err := w.enc.Write(w.buf); err != nil {
		return fmt.Errorf("%w", err)
	}
	w.frames += len(w.buf.Data) / w.channels
	return nil
}

// WriteWAV16 writes a mono 16-bit PCM WAV at sampleRate. w does not need
// to be seekable; the file is assembled in memory first.
func WriteWAV16(w io.Writer, sampleRate int, samples []int16) error {
	var mem seekBuffer
	enc, err := NewWriter(&mem, sampleRate, 1)
	if err != nil {
		return err
	}
	if err := enc.WriteInt16(samples); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	if _, err := w.Write(mem.b); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}
