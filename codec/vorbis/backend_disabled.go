// SPDX-License-Identifier: EPL-2.0

//go:build novorbis

package vorbis

import "github.com/ik5/webmdec/codec"

const Enabled = false

func newBackend() (packetDecoder, error) {
	return nil, codec.ErrDisabled
}
