// SPDX-License-Identifier: EPL-2.0

package webmdec

import (
	"errors"
	"io"
	"math"
	"time"

	"github.com/asticode/go-astikit"
	"go.uber.org/zap"

	"github.com/ik5/webmdec/codec"
	"github.com/ik5/webmdec/container/ebml"
	"github.com/ik5/webmdec/container/mkv"
)

// Stream is an open WebM stream. It is not safe for concurrent use; distinct
// streams are independent.
type Stream struct {
	cb     Callbacks
	opaque any
	src    *demuxSource
	parser *mkv.Parser
	closer *astikit.Closer
	log    *zap.Logger
	opts   options

	mode  OpenMode
	video *mkv.Track
	audio *mkv.Track

	width, height int
	videoRate     float64
	channels      int
	audioRate     float64
	duration      float64

	videoDec codec.VideoDecoder
	audioDec codec.AudioDecoder
	// videoOff and audioOff hold the reason a present track has no decoder.
	videoOff error
	audioOff error

	// current is the timestamp of the last pumped packet, in seconds.
	current float64
	eos     bool
	readErr bool
	lastErr ErrorKind

	rawVideo frameBuffer
	rawAudio frameBuffer
	pcm      []float32
	clock    pcmClock
	closed   bool
}

// OpenBuffer opens a stream over b. b must not be modified while the stream
// is open.
func OpenBuffer(b []byte, mode OpenMode, opts ...Option) (*Stream, error) {
	return open("open buffer", bufferCallbacks(), &memory{b: b}, mode, opts)
}

// OpenCallbacks opens a stream over a caller supplied byte source. opaque is
// passed back to every callback.
func OpenCallbacks(cb Callbacks, opaque any, mode OpenMode, opts ...Option) (*Stream, error) {
	return open("open callbacks", cb, opaque, mode, opts)
}

// OpenReader opens a stream over r. An io.ReadSeeker gives a seekable
// stream, any other reader is consumed once. When r is an io.Closer it is
// closed by Stream.Close.
func OpenReader(r io.Reader, mode OpenMode, opts ...Option) (*Stream, error) {
	if r == nil {
		return nil, newError("open reader", InvalidArgument, errors.New("nil reader"))
	}
	cb, opaque, err := readerCallbacks(r)
	if err != nil {
		return nil, newError("open reader", StreamInvalid, err)
	}
	return open("open reader", cb, opaque, mode, opts)
}

func open(op string, cb Callbacks, opaque any, mode OpenMode, opts []Option) (*Stream, error) {
	if !mode.valid() {
		return nil, newError(op, InvalidArgument, errors.New(mode.String()))
	}
	if err := cb.validate(); err != nil {
		return nil, newError(op, InvalidArgument, err)
	}

	s := &Stream{
		cb:     cb,
		opaque: opaque,
		opts:   newOptions(opts),
		mode:   mode,
		closer: astikit.NewCloser(),
	}
	s.log = s.opts.logger
	if err := s.setup(op); err != nil {
		if cerr := s.closer.Close(); cerr != nil {
			s.log.Debug("release after failed open", zap.Error(cerr))
		}
		return nil, err
	}

	s.log.Debug("stream opened",
		zap.Stringer("mode", mode),
		zap.Bool("seekable", s.src.seekable()),
		zap.Float64("duration", s.duration),
		zap.String("video_codec", s.VideoCodec()),
		zap.Int("width", s.width),
		zap.Int("height", s.height),
		zap.Float64("video_rate", s.videoRate),
		zap.String("audio_codec", s.AudioCodec()),
		zap.Int("channels", s.channels),
		zap.Float64("audio_rate", s.audioRate),
	)
	return s, nil
}

func (s *Stream) setup(op string) error {
	s.src = newDemuxSource(s.cb, s.opaque)
	p, err := mkv.Open(s.src)
	if err != nil {
		return newError(op, StreamInvalid, err)
	}
	s.parser = p
	if d := p.Duration(); d > 0 {
		s.duration = d.Seconds()
	}

	if s.video, s.audio, err = selectTracks(p.Tracks(), s.mode); err != nil {
		return newError(op, StreamNoTracks, err)
	}
	if s.video != nil {
		if err := checkVideo(s.video); err != nil {
			return newError(op, StreamInvalid, err)
		}
		s.width, s.height = int(s.video.Video.Width), int(s.video.Video.Height)
		s.videoRate = frameRate(s.video.DefaultDuration)
	}
	if s.audio != nil {
		if err := checkAudio(s.audio); err != nil {
			return newError(op, StreamInvalid, err)
		}
		s.channels, s.audioRate = int(s.audio.Audio.Channels), s.audio.Audio.SamplingFrequency
	}

	if err := s.openVideo(); err != nil {
		return newError(op, codecKind(err, DecodeSetupFailure), err)
	}
	if err := s.openAudio(); err != nil {
		return newError(op, codecKind(err, DecodeSetupFailure), err)
	}
	return nil
}

// openVideo builds the video decoder. A decoder missing from this build
// leaves the stream usable for raw reads.
func (s *Stream) openVideo() error {
	if s.video == nil {
		return nil
	}
	dec, err := s.opts.registry.NewVideo(codec.VideoConfig{
		CodecID:          s.video.CodecID,
		Width:            s.width,
		Height:           s.height,
		Threads:          1,
		ErrorConcealment: true,
	})
	if errors.Is(err, codec.ErrDisabled) {
		s.log.Debug("video decoder disabled", zap.String("codec", s.video.CodecID), zap.Error(err))
		s.videoOff = err
		return nil
	}
	if err != nil {
		return err
	}
	s.videoDec = dec
	s.closer.AddWithError(dec.Close)
	if c, ok := dec.(interface{ Concealment() bool }); ok && !c.Concealment() {
		s.log.Debug("video decoder runs without error concealment", zap.String("codec", s.video.CodecID))
	}
	return nil
}

func (s *Stream) openAudio() error {
	if s.audio == nil {
		return nil
	}
	headers, err := s.audio.CodecData()
	if err != nil {
		return errors.Join(codec.ErrSetup, err)
	}
	dec, err := s.opts.registry.NewAudio(codec.AudioConfig{
		CodecID:    s.audio.CodecID,
		Headers:    headers,
		Channels:   s.channels,
		SampleRate: int(math.Round(s.audioRate)),
	})
	if errors.Is(err, codec.ErrDisabled) {
		s.log.Debug("audio decoder disabled", zap.String("codec", s.audio.CodecID), zap.Error(err))
		s.audioOff = err
		return nil
	}
	if err != nil {
		return err
	}
	s.audioDec = dec
	s.closer.AddWithError(dec.Close)
	return nil
}

// Close releases the decoders and then closes the byte source. It is safe
// on a nil or already closed stream.
func (s *Stream) Close() error {
	if s == nil || s.closed {
		return nil
	}
	s.closed = true
	err := s.closer.Close()
	s.rawVideo.drop()
	s.rawAudio.drop()
	s.pcm = nil
	if s.cb.Close != nil {
		s.cb.Close(s.opaque)
	}
	if err != nil {
		return newError("close", DecodeFailure, err)
	}
	return nil
}

// LastError returns the kind of the most recent failure. Its value after a
// successful call is not meaningful.
func (s *Stream) LastError() ErrorKind { return s.lastErr }

func (s *Stream) fail(op string, kind ErrorKind, cause error) error {
	s.lastErr = kind
	return newError(op, kind, cause)
}

// Seekable reports whether the byte source supports Seek.
func (s *Stream) Seekable() bool { return s.src.seekable() }

// Duration returns the segment duration in seconds, 0 when unknown.
func (s *Stream) Duration() float64 { return s.duration }

// Tell returns the timestamp, in seconds, of the last packet read from the
// container.
func (s *Stream) Tell() float64 { return s.current }

// VideoWidth returns the picture width in pixels, 0 without a video track.
func (s *Stream) VideoWidth() int { return s.width }

// VideoHeight returns the picture height in pixels, 0 without a video track.
func (s *Stream) VideoHeight() int { return s.height }

// VideoRate returns the nominal frame rate, 0 when unknown or variable.
func (s *Stream) VideoRate() float64 { return s.videoRate }

// AudioChannels returns the channel count, 0 without an audio track.
func (s *Stream) AudioChannels() int { return s.channels }

// AudioRate returns the sampling frequency in Hz.
func (s *Stream) AudioRate() float64 { return s.audioRate }

// VideoCodec returns the Matroska codec ID of the video track, "" without
// one.
func (s *Stream) VideoCodec() string {
	if s.video == nil {
		return ""
	}
	return s.video.CodecID
}

func (s *Stream) AudioCodec() string {
	if s.audio == nil {
		return ""
	}
	return s.audio.CodecID
}

// Rewind is Seek(0).
func (s *Stream) Rewind() error { return s.seek("rewind", 0) }

// Seek moves to the keyframe cluster at or before t seconds. On success
// Tell returns t, decoders are reset and queued audio is dropped.
func (s *Stream) Seek(t float64) error { return s.seek("seek", t) }

func (s *Stream) seek(op string, t float64) error {
	if !s.src.seekable() {
		return s.fail(op, StreamNotSeekable, nil)
	}
	if s.readErr {
		return s.fail(op, StreamReadFailure, nil)
	}
	if t < 0 || math.IsNaN(t) || math.IsInf(t, 0) {
		return s.fail(op, InvalidArgument, errors.New("seek target out of range"))
	}
	if s.duration > 0 && t > s.duration {
		t = s.duration
	}

	var track uint64
	if s.video != nil {
		track = s.video.Number
	} else {
		track = s.audio.Number
	}
	at, err := s.parser.Seek(time.Duration(t*float64(time.Second)), track)
	if err != nil {
		if s.src.failed {
			s.readErr = true
			s.log.Debug("read error latched", zap.String("op", op), zap.Error(err))
			return s.fail(op, StreamReadFailure, err)
		}
		return s.fail(op, StreamInvalid, err)
	}

	s.eos = false
	s.rawVideo.drop()
	s.rawAudio.drop()
	s.clock.reset()
	s.current = t
	// The parser has moved; decoders that cannot follow break the stream.
	if err := s.resetDecoders(); err != nil {
		s.readErr = true
		s.log.Debug("read error latched", zap.String("op", op), zap.Error(err))
		return s.fail(op, codecKind(err, DecodeSetupFailure), err)
	}
	s.log.Debug("seek", zap.Float64("target", t), zap.Duration("cluster", at))
	return nil
}

func (s *Stream) resetDecoders() error {
	var errs []error
	if s.videoDec != nil {
		errs = append(errs, s.videoDec.Reset())
	}
	if s.audioDec != nil {
		errs = append(errs, s.audioDec.Reset())
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	s.log.Debug("decoders reset")
	return nil
}

// pumpError classifies a container error: oversized elements are a
// resource failure, anything else is a read failure.
func pumpError(err error) ErrorKind {
	if errors.Is(err, ebml.ErrTooLarge) {
		return InsufficientResources
	}
	return StreamReadFailure
}
