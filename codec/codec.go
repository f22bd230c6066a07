// SPDX-License-Identifier: EPL-2.0

package codec

import (
	"errors"
	"image"
)

var (
	ErrDisabled               = errors.New("codec: disabled in this build")
	ErrSetup                  = errors.New("codec: setup failed")
	ErrDecode                 = errors.New("codec: decode failed")
	ErrUnsupportedPixelFormat = errors.New("codec: unsupported pixel format")
	ErrUnsupportedCodec       = errors.New("codec: unsupported codec")
)

// Matroska codec IDs handled by webmdec.
const (
	VP8    = "V_VP8"
	VP9    = "V_VP9"
	Vorbis = "A_VORBIS"
)

type VideoConfig struct {
	CodecID string
	Width   int
	Height  int
	// Threads is the number of decoder threads, 0 meaning one.
	Threads int
	// ErrorConcealment asks the decoder to conceal corrupt frames when it
	// supports it.
	ErrorConcealment bool
}

type AudioConfig struct {
	CodecID string
	// Headers are the codec initialisation packets, in stream order.
	Headers    [][]byte
	Channels   int
	SampleRate int
}

type VideoDecoder interface {
	// Decode submits one compressed frame and returns the first picture it
	// produced, in planar 4:2:0.
	Decode(frame []byte) (*image.YCbCr, error)
	// Reset drops all decoding state, as after a seek.
	Reset() error
	Close() error
}

type AudioDecoder interface {
	// Submit decodes one packet and appends its samples to the queue.
	Submit(packet []byte) error
	// Available returns the number of queued samples (not frames).
	Available() int
	// Get moves up to len(dst) queued samples into dst and returns how many
	// were copied.
	Get(dst []float32) int
	// Reset drops the queue and the decoder overlap state.
	Reset() error
	Channels() int
	SampleRate() int
	Close() error
}

type VideoFactory func(cfg VideoConfig) (VideoDecoder, error)

type AudioFactory func(cfg AudioConfig) (AudioDecoder, error)
