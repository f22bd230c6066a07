// SPDX-License-Identifier: EPL-2.0

package webmtest

import "encoding/binary"

// VorbisHeaders returns identification, comment and setup packets carrying
// the right packet types and signatures. Only the identification header is
// meaningful; the setup header is not decodable.
func VorbisHeaders(channels uint64, rate float64) [][]byte {
	id := make([]byte, 30)
	id[0] = 0x01
	copy(id[1:], "vorbis")
	binary.LittleEndian.PutUint32(id[7:], 0)
	id[11] = byte(channels)
	binary.LittleEndian.PutUint32(id[12:], uint32(rate))
	id[28] = 0xb8
	id[29] = 0x01

	comment := append([]byte{0x03}, "vorbis"...)
	comment = append(comment, 0, 0, 0, 0, 0, 0, 0, 0, 1)

	setup := append([]byte{0x05}, "vorbis"...)
	setup = append(setup, 0x00)

	return [][]byte{id, comment, setup}
}

// VorbisPrivate returns VorbisHeaders Xiph-laced as Matroska CodecPrivate.
func VorbisPrivate(channels uint64, rate float64) []byte {
	return Lace(XiphLacing, VorbisHeaders(channels, rate))
}
