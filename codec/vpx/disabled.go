// SPDX-License-Identifier: EPL-2.0

//go:build !(darwin || linux) || novpx

package vpx

import (
	"fmt"
	"image"

	"github.com/ik5/webmdec/codec"
)

const Enabled = false

// Load always fails in this build.
func Load() error {
	return fmt.Errorf("%w: vpx", codec.ErrDisabled)
}

// Decoder is never constructed in this build.
type Decoder struct{}

func New(cfg codec.VideoConfig) (*Decoder, error) {
	return nil, Load()
}

func (*Decoder) Decode([]byte) (*image.YCbCr, error) { return nil, codec.ErrDisabled }
func (*Decoder) Reset() error                        { return nil }
func (*Decoder) Close() error                        { return nil }
func (*Decoder) Concealment() bool                   { return false }
