// SPDX-License-Identifier: EPL-2.0

package webmdec

import (
	"go.uber.org/zap"

	"github.com/ik5/webmdec/codec"
)

// DefaultMaxFrameSize bounds the size of one assembled frame.
const DefaultMaxFrameSize = 256 << 20

type options struct {
	logger          *zap.Logger
	registry        *codec.Registry
	maxFrameSize    int
	maxAudioSamples int
}

// Option configures a Stream at open time.
type Option func(*options)

// WithLogger sets the logger used for debug traces. The default discards
// everything.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRegistry sets the codec factories used to build decoders. The default
// is DefaultRegistry.
func WithRegistry(r *codec.Registry) Option {
	return func(o *options) {
		if r != nil {
			o.registry = r
		}
	}
}

// WithMaxFrameSize bounds the payload of a single frame. Larger frames fail
// with InsufficientResources.
func WithMaxFrameSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxFrameSize = n
		}
	}
}

// WithMaxAudioSamples bounds the number of samples returned by one
// DecodeFrame call. Zero means everything queued.
func WithMaxAudioSamples(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.maxAudioSamples = n
		}
	}
}

func newOptions(opts []Option) options {
	o := options{maxFrameSize: DefaultMaxFrameSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.registry == nil {
		o.registry = DefaultRegistry()
	}
	return o
}
