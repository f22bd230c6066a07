// SPDX-License-Identifier: EPL-2.0

package webmdec

import (
	"errors"
	"fmt"

	"github.com/ik5/webmdec/codec"
)

// ErrorKind classifies the failure of a public operation.
type ErrorKind int

const (
	NoError ErrorKind = iota
	InvalidArgument
	DisabledFunction
	InsufficientResources
	FileOpenFailed
	StreamInvalid
	StreamNotSeekable
	StreamEnd
	StreamNoTracks
	StreamReadFailure
	DecodeSetupFailure
	DecodeFailure
	UnsupportedPixelFormat
)

var (
	ErrInvalidArgument        = errors.New("invalid argument")
	ErrDisabledFunction       = errors.New("function disabled in this build")
	ErrInsufficientResources  = errors.New("insufficient resources")
	ErrFileOpenFailed         = errors.New("file open failed")
	ErrStreamInvalid          = errors.New("invalid stream")
	ErrStreamNotSeekable      = errors.New("stream not seekable")
	ErrStreamEnd              = errors.New("end of stream")
	ErrStreamNoTracks         = errors.New("required track missing")
	ErrStreamReadFailure      = errors.New("stream read failure")
	ErrDecodeSetupFailure     = errors.New("decoder setup failed")
	ErrDecodeFailure          = errors.New("decode failed")
	ErrUnsupportedPixelFormat = errors.New("unsupported pixel format")
)

var kinds = [...]struct {
	name string
	err  error
}{
	NoError:                {"NoError", nil},
	InvalidArgument:        {"InvalidArgument", ErrInvalidArgument},
	DisabledFunction:       {"DisabledFunction", ErrDisabledFunction},
	InsufficientResources:  {"InsufficientResources", ErrInsufficientResources},
	FileOpenFailed:         {"FileOpenFailed", ErrFileOpenFailed},
	StreamInvalid:          {"StreamInvalid", ErrStreamInvalid},
	StreamNotSeekable:      {"StreamNotSeekable", ErrStreamNotSeekable},
	StreamEnd:              {"StreamEnd", ErrStreamEnd},
	StreamNoTracks:         {"StreamNoTracks", ErrStreamNoTracks},
	StreamReadFailure:      {"StreamReadFailure", ErrStreamReadFailure},
	DecodeSetupFailure:     {"DecodeSetupFailure", ErrDecodeSetupFailure},
	DecodeFailure:          {"DecodeFailure", ErrDecodeFailure},
	UnsupportedPixelFormat: {"UnsupportedPixelFormat", ErrUnsupportedPixelFormat},
}

func (k ErrorKind) String() string {
	if k < 0 || int(k) >= len(kinds) {
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
	return kinds[k].name
}

// Err returns the sentinel error of k, nil for NoError.
func (k ErrorKind) Err() error {
	if k <= 0 || int(k) >= len(kinds) {
		return nil
	}
	return kinds[k].err
}

// KindOf returns the kind of an error returned by this package. Errors that
// carry no kind are reported as StreamInvalid.
func KindOf(err error) ErrorKind {
	if err == nil {
		return NoError
	}
	for k := InvalidArgument; int(k) < len(kinds); k++ {
		if errors.Is(err, kinds[k].err) {
			return k
		}
	}
	return StreamInvalid
}

func newError(op string, kind ErrorKind, cause error) error {
	if cause == nil {
		return fmt.Errorf("webmdec: %s: %w", op, kind.Err())
	}
	return fmt.Errorf("webmdec: %s: %w: %w", op, kind.Err(), cause)
}

// codecKind maps a codec error to the kind reported by the stream, falling
// back to def.
func codecKind(err error, def ErrorKind) ErrorKind {
	switch {
	case errors.Is(err, codec.ErrDisabled):
		return DisabledFunction
	case errors.Is(err, codec.ErrUnsupportedPixelFormat):
		return UnsupportedPixelFormat
	case errors.Is(err, codec.ErrSetup), errors.Is(err, codec.ErrUnsupportedCodec):
		return DecodeSetupFailure
	case errors.Is(err, codec.ErrDecode):
		return DecodeFailure
	}
	return def
}
