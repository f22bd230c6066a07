// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes the raw Vorbis packets carried by WebM audio
// tracks.
//
// This package uses github.com/jfreymuth/vorbis, the packet decoder behind
// jfreymuth/oggvorbis. WebM stores Vorbis without Ogg pages: the three
// headers are Xiph-laced in the track's CodecPrivate and every block holds
// one audio packet.
//
// # Setup
//
// New requires exactly three header packets. The first must start with
// 0x01 "vorbis" and the third with 0x05 "vorbis"; anything else fails with
// codec.ErrSetup:
//
//	dec, err := vorbis.New(codec.AudioConfig{CodecID: codec.Vorbis, Headers: headers})
//
// # Sample queue
//
// Vorbis packets decode to a variable number of samples. Decoded output is
// appended to a queue of interleaved float32 samples in [-1, 1] and handed
// out with Get, so callers can drain it in whatever sizes suit them:
//
//	if err := dec.Submit(packet); err != nil {
//	    return err
//	}
//	buf := make([]float32, 4096)
//	for dec.Available() > 0 {
//	    n := dec.Get(buf)
//	    // Process buf[:n]
//	}
//
// Reset discards the queue and the overlap state, which is what a seek
// requires.
//
// Building with the novorbis tag leaves the package in place but makes New
// fail with codec.ErrDisabled.
package vorbis
