// SPDX-License-Identifier: EPL-2.0

package ebml

import (
	"encoding/binary"
	"math"
)

// EBML header element IDs.
const (
	IDHeader             uint32 = 0x1a45dfa3
	IDVersion            uint32 = 0x4286
	IDReadVersion        uint32 = 0x42f7
	IDMaxIDLength        uint32 = 0x42f2
	IDMaxSizeLength      uint32 = 0x42f3
	IDDocType            uint32 = 0x4282
	IDDocTypeVersion     uint32 = 0x4287
	IDDocTypeReadVersion uint32 = 0x4285
	IDVoid               uint32 = 0xec
	IDCRC32              uint32 = 0xbf
)

// idLength returns the encoded length of an ID from its first byte,
// or 0 when the byte cannot start an ID.
func idLength(b byte) int {
	switch {
	case b&0x80 != 0:
		return 1
	case b&0x40 != 0:
		return 2
	case b&0x20 != 0:
		return 3
	case b&0x10 != 0:
		return 4
	}
	return 0
}

// vintLength returns the encoded length of a size or vint from its first
// byte, or 0 for the reserved 0x00 marker.
func vintLength(b byte) int {
	for n := 1; n <= 8; n++ {
		if b&(0x80>>(n-1)) != 0 {
			return n
		}
	}
	return 0
}

// ParseID decodes the element ID at the start of b and returns it with the
// number of bytes consumed.
func ParseID(b []byte) (uint32, int, error) {
	if len(b) == 0 {
		return 0, 0, ErrParse
	}
	n := idLength(b[0])
	if n == 0 || len(b) < n {
		return 0, 0, ErrParse
	}
	var id uint32
	for i := range n {
		id = id<<8 | uint32(b[i])
	}
	return id, n, nil
}

// ParseVint decodes an unsigned variable length integer with its marker bit
// removed. unknown reports the reserved all-ones value.
func ParseVint(b []byte) (v uint64, n int, unknown bool, err error) {
	if len(b) == 0 {
		return 0, 0, false, ErrParse
	}
	n = vintLength(b[0])
	if n == 0 || len(b) < n {
		return 0, 0, false, ErrParse
	}
	v, unknown = decodeVint(b[:n])
	return v, n, unknown, nil
}

// ParseSignedVint decodes the signed vint used by EBML lacing, where the
// value is stored with a bias of 2^(7n-1)-1.
func ParseSignedVint(b []byte) (int64, int, error) {
	v, n, _, err := ParseVint(b)
	if err != nil {
		return 0, 0, err
	}
	bias := int64(1)<<(7*n-1) - 1
	return int64(v) - bias, n, nil
}

func decodeVint(b []byte) (uint64, bool) {
	n := len(b)
	mask := byte(0xff >> n)
	v := uint64(b[0] & mask)
	allOnes := b[0]&mask == mask
	for _, c := range b[1:] {
		v = v<<8 | uint64(c)
		allOnes = allOnes && c == 0xff
	}
	return v, allOnes
}

// Uint decodes a big-endian unsigned integer payload of 0 to 8 bytes.
func Uint(b []byte) (uint64, error) {
	if len(b) > 8 {
		return 0, ErrParse
	}
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v, nil
}

// Int decodes a big-endian two's complement payload of 0 to 8 bytes.
func Int(b []byte) (int64, error) {
	if len(b) > 8 {
		return 0, ErrParse
	}
	if len(b) == 0 {
		return 0, nil
	}
	v := int64(int8(b[0]))
	for _, c := range b[1:] {
		v = v<<8 | int64(c)
	}
	return v, nil
}

// Float decodes a 0, 4 or 8 byte IEEE 754 payload.
func Float(b []byte) (float64, error) {
	switch len(b) {
	case 0:
		return 0, nil
	case 4:
		return float64(math.Float32frombits(binary.BigEndian.Uint32(b))), nil
	case 8:
		return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
	}
	return 0, ErrParse
}

// String decodes a string payload, dropping trailing NUL padding.
func String(b []byte) string {
	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}
	return string(b[:end])
}
