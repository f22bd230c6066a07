// SPDX-License-Identifier: EPL-2.0

package webmdec

import (
	"errors"
	"image"

	"go.uber.org/zap"
)

// RawFrame is a compressed frame as stored in the container. Data is owned
// by the stream and valid until the next ReadFrame, DecodeFrame, Seek,
// Rewind or Close.
type RawFrame struct {
	Data []byte
	// Timestamp is the presentation time in seconds.
	Timestamp float64
}

// RawFrames holds what one ReadFrame call produced. A field is nil when no
// frame of that kind was read.
type RawFrames struct {
	Video *RawFrame
	Audio *RawFrame
}

// VideoFrame is a decoded picture in planar 4:2:0. Image belongs to the
// decoder and is valid until the next call that mutates the stream.
type VideoFrame struct {
	Image     *image.YCbCr
	Timestamp float64
}

// AudioFrame holds interleaved float32 samples. Samples is owned by the
// stream and valid until the next call that mutates the stream.
type AudioFrame struct {
	Samples    []float32
	Channels   int
	SampleRate int
	// Timestamp is the time of the first sample, in seconds.
	Timestamp float64
}

// Frames returns the number of sample frames (samples per channel).
func (f *AudioFrame) Frames() int {
	if f.Channels == 0 {
		return 0
	}
	return len(f.Samples) / f.Channels
}

// DecodedFrames holds what one DecodeFrame call produced. A field is nil
// when nothing of that kind was decoded.
type DecodedFrames struct {
	Video *VideoFrame
	Audio *AudioFrame
}

func (s *Stream) checkWant(op string, wantVideo, wantAudio bool) error {
	if !wantVideo && !wantAudio {
		return s.fail(op, InvalidArgument, errors.New("no frame type requested"))
	}
	if wantVideo && s.video == nil {
		return s.fail(op, StreamNoTracks, errors.New("no video track"))
	}
	if wantAudio && s.audio == nil {
		return s.fail(op, StreamNoTracks, errors.New("no audio track"))
	}
	return nil
}

// ReadFrame returns the next compressed frame of the requested kinds. It
// stops at the first packet of either kind, so at most one of the two
// frames is set per call. StreamEnd is returned once the container is
// exhausted.
func (s *Stream) ReadFrame(wantVideo, wantAudio bool) (RawFrames, error) {
	const op = "read frame"
	if err := s.checkWant(op, wantVideo, wantAudio); err != nil {
		return RawFrames{}, err
	}
	gotVideo, gotAudio, err := s.pump(op, wantVideo, wantAudio)
	if err != nil {
		return RawFrames{}, err
	}

	var out RawFrames
	if gotVideo {
		out.Video = &RawFrame{Data: s.rawVideo.data, Timestamp: s.rawVideo.ts}
	}
	if gotAudio {
		out.Audio = &RawFrame{Data: s.rawAudio.data, Timestamp: s.rawAudio.ts}
	}
	return out, nil
}

// DecodeFrame reads and decodes the next frame of the requested kinds. Audio
// is returned as whatever the decoder has queued, so one call may return
// more or fewer samples than one packet holds. Queued audio is drained
// before StreamEnd is reported.
func (s *Stream) DecodeFrame(wantVideo, wantAudio bool) (DecodedFrames, error) {
	const op = "decode frame"
	if err := s.checkWant(op, wantVideo, wantAudio); err != nil {
		return DecodedFrames{}, err
	}
	if wantVideo && s.videoDec == nil {
		return DecodedFrames{}, s.fail(op, DisabledFunction, s.videoOff)
	}
	if wantAudio && s.audioDec == nil {
		return DecodedFrames{}, s.fail(op, DisabledFunction, s.audioOff)
	}

	if wantAudio && !wantVideo && s.audioDec.Available() > 0 && !s.readErr {
		return DecodedFrames{Audio: s.drainAudio()}, nil
	}

	for {
		gotVideo, gotAudio, err := s.pump(op, wantVideo, wantAudio)
		if err != nil {
			if errors.Is(err, ErrStreamEnd) && wantAudio && s.audioDec.Available() > 0 {
				return DecodedFrames{Audio: s.drainAudio()}, nil
			}
			return DecodedFrames{}, err
		}

		var out DecodedFrames
		if gotVideo {
			img, err := s.videoDec.Decode(s.rawVideo.data)
			if err != nil {
				return DecodedFrames{}, s.fail(op, codecKind(err, DecodeFailure), err)
			}
			out.Video = &VideoFrame{Image: img, Timestamp: s.rawVideo.ts}
		}
		if gotAudio {
			if err := s.submitAudio(); err != nil {
				return DecodedFrames{}, s.fail(op, codecKind(err, DecodeFailure), err)
			}
		}
		if wantAudio && s.audioDec.Available() > 0 {
			out.Audio = s.drainAudio()
		}
		if out.Video != nil || out.Audio != nil {
			return out, nil
		}
	}
}

// submitAudio feeds the buffered packet to the decoder one laced frame at a
// time and records where the produced samples sit in time.
func (s *Stream) submitAudio() error {
	rate := float64(s.audioDec.SampleRate())
	ch := s.audioDec.Channels()
	ts := s.rawAudio.ts
	for _, chunk := range s.rawAudio.chunks() {
		before := s.audioDec.Available()
		if err := s.audioDec.Submit(chunk); err != nil {
			return err
		}
		n := s.audioDec.Available() - before
		if n <= 0 {
			continue
		}
		s.clock.push(ts, n)
		if rate > 0 && ch > 0 {
			ts += float64(n/ch) / rate
		}
	}
	return nil
}

func (s *Stream) drainAudio() *AudioFrame {
	ch := s.audioDec.Channels()
	n := s.audioDec.Available()
	if limit := s.opts.maxAudioSamples; limit > 0 && n > limit {
		n = limit
		if ch > 0 && n >= ch {
			n -= n % ch
		}
	}
	if cap(s.pcm) < n {
		s.pcm = make([]float32, n)
	}
	s.pcm = s.pcm[:n]
	n = s.audioDec.Get(s.pcm)
	s.pcm = s.pcm[:n]

	ts, ok := s.clock.consume(n, ch, float64(s.audioDec.SampleRate()))
	if !ok {
		ts = s.rawAudio.ts
		s.log.Debug("audio clock empty", zap.Int("samples", n))
	}
	return &AudioFrame{
		Samples:    s.pcm,
		Channels:   ch,
		SampleRate: s.audioDec.SampleRate(),
		Timestamp:  ts,
	}
}

// pcmSpan is a run of queued samples starting at ts.
type pcmSpan struct {
	ts      float64
	samples int
}

// pcmClock mirrors the decoder's PCM queue with timestamps.
type pcmClock struct {
	spans []pcmSpan
}

func (c *pcmClock) push(ts float64, samples int) {
	c.spans = append(c.spans, pcmSpan{ts: ts, samples: samples})
}

// consume drops n samples and returns the timestamp of the first of them.
func (c *pcmClock) consume(n, channels int, rate float64) (float64, bool) {
	if len(c.spans) == 0 {
		return 0, false
	}
	ts := c.spans[0].ts
	for n > 0 && len(c.spans) > 0 {
		sp := &c.spans[0]
		if n < sp.samples {
			sp.samples -= n
			if channels > 0 && rate > 0 {
				sp.ts += float64(n/channels) / rate
			}
			break
		}
		n -= sp.samples
		c.spans = c.spans[1:]
	}
	if len(c.spans) == 0 {
		c.spans = nil
	}
	return ts, true
}

func (c *pcmClock) reset() { c.spans = nil }
