// SPDX-License-Identifier: EPL-2.0

// Package vpx decodes VP8 and VP9 frames with libvpx.
//
// libvpx is opened at run time with github.com/ebitengine/purego, so the
// package builds without cgo. The library is looked up in the path named
// by WEBMDEC_VPX_LIB first, then under the usual shared library names.
// When it cannot be found, New fails with codec.ErrDisabled; building with
// the novpx tag has the same effect.
//
// Decoders are single threaded unless VideoConfig.Threads says otherwise.
// Pictures are returned as *image.YCbCr aliasing libvpx memory:
//
//	dec, err := vpx.New(codec.VideoConfig{CodecID: codec.VP9, Width: 1280, Height: 720, ErrorConcealment: true})
//	if err != nil {
//	    return err
//	}
//	defer dec.Close()
//
//	img, err := dec.Decode(frame)
//	// img is valid until the next Decode, Reset or Close.
//
// Only 8-bit I420 output is accepted; any other layout fails with
// codec.ErrUnsupportedPixelFormat.
package vpx
