// SPDX-License-Identifier: EPL-2.0

//go:build !novorbis

package vorbis

import "github.com/jfreymuth/vorbis"

// Enabled reports whether this build can decode Vorbis.
const Enabled = true

func newBackend() (packetDecoder, error) {
	return &vorbis.Decoder{}, nil
}
