// SPDX-License-Identifier: EPL-2.0

package webmdec

import (
	"github.com/ik5/webmdec/codec"
	"github.com/ik5/webmdec/codec/vorbis"
	"github.com/ik5/webmdec/codec/vpx"
)

// DefaultRegistry returns a registry holding the VP8, VP9 and Vorbis
// decoders compiled into this build.
func DefaultRegistry() *codec.Registry {
	r := codec.NewRegistry()
	vpx.Register(r)
	vorbis.Register(r)
	return r
}
