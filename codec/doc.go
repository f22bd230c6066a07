// SPDX-License-Identifier: EPL-2.0

// Package codec defines the decoder contracts used by webmdec and a
// registry that maps Matroska codec IDs to decoder factories.
//
// # Video
//
// A VideoDecoder takes one compressed frame at a time and returns the
// planar 4:2:0 picture it produced:
//
//	dec, err := registry.NewVideo(codec.VideoConfig{CodecID: codec.VP8, Width: 640, Height: 360})
//	img, err := dec.Decode(frame)
//
// The planes of the returned image may point into decoder memory and are
// only valid until the next call on the decoder.
//
// # Audio
//
// An AudioDecoder keeps a queue of interleaved float32 samples. Every
// submitted packet appends whatever the packet decoded to; callers drain the
// queue with Get at their own pace:
//
//	if err := dec.Submit(packet); err != nil {
//	    return err
//	}
//	buf := make([]float32, dec.Available())
//	n := dec.Get(buf)
//
// # Disabled codecs
//
// Codec packages built with their disabling tag (novpx, novorbis), or whose
// backing library cannot be loaded, register factories that fail with
// ErrDisabled. webmdec keeps such streams readable and only refuses to
// decode them.
package codec
