// SPDX-License-Identifier: EPL-2.0

// Package ebml reads the Extensible Binary Meta Language framing used by
// Matroska and WebM.
//
// An EBML stream is a sequence of elements. Each element starts with a
// variable length ID (1 to 4 bytes, marker bit kept) followed by a variable
// length size (1 to 8 bytes, marker bit stripped) and the payload. A size
// with every value bit set means "unknown", which Matroska allows for the
// Segment and Cluster masters of live or streamed files.
//
// Reader consumes elements from a byte stream while tracking the absolute
// offset, which is what a Matroska demuxer needs to resolve SeekHead and
// Cues positions. Walk iterates the children of a master element that has
// already been loaded in memory.
//
//	r := ebml.NewReader(f)
//	h, err := r.ReadHeader()
//	if err != nil {
//	    return err
//	}
//	if h.ID == ebml.IDHeader {
//	    payload, err := r.ReadPayload(h.Size)
//	    ...
//	}
package ebml
