// SPDX-License-Identifier: EPL-2.0

package webmdec

import (
	"errors"
	"io"

	"github.com/ik5/webmdec/audio"
)

// streamSource reads decoded audio from a Stream.
type streamSource struct {
	s       *Stream
	pending []float32
	done    bool
}

// AudioSource exposes the decoded audio track as an audio.Source. Reading
// from it drives DecodeFrame(false, true); the end of the stream is
// reported as io.EOF. Closing the source does not close the stream.
func (s *Stream) AudioSource() (audio.Source, error) {
	const op = "audio source"
	if s.audio == nil {
		return nil, s.fail(op, StreamNoTracks, errors.New("no audio track"))
	}
	if s.audioDec == nil {
		return nil, s.fail(op, DisabledFunction, s.audioOff)
	}
	return &streamSource{s: s}, nil
}

func (a *streamSource) SampleRate() int { return a.s.audioDec.SampleRate() }
func (a *streamSource) Channels() int   { return a.s.audioDec.Channels() }
func (a *streamSource) BufSize() int    { return 4096 }

func (a *streamSource) Close() error {
	a.pending = nil
	a.done = true
	return nil
}

func (a *streamSource) ReadSamples(dst []float32) (int, error) {
	n := 0
	for n < len(dst) {
		if len(a.pending) == 0 {
			if a.done {
				break
			}
			frames, err := a.s.DecodeFrame(false, true)
			if errors.Is(err, ErrStreamEnd) {
				a.done = true
				break
			}
			if err != nil {
				return n, err
			}
			a.pending = frames.Audio.Samples
		}
		c := copy(dst[n:], a.pending)
		a.pending = a.pending[c:]
		n += c
	}

	if n < len(dst) && a.done {
		return n, io.EOF
	}
	return n, nil
}
