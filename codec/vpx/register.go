// SPDX-License-Identifier: EPL-2.0

package vpx

import "github.com/ik5/webmdec/codec"

// Register adds the VP8 and VP9 factories to r.
func Register(r *codec.Registry) {
	factory := func(cfg codec.VideoConfig) (codec.VideoDecoder, error) {
		d, err := New(cfg)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
	r.RegisterVideo(codec.VP8, factory)
	r.RegisterVideo(codec.VP9, factory)
}
