// SPDX-License-Identifier: EPL-2.0

package webmtest

import (
	"encoding/binary"
	"math"
)

// ID encodes an element ID, which already carries its length marker.
func ID(id uint32) []byte {
	switch {
	case id >= 1<<24:
		return []byte{byte(id >> 24), byte(id >> 16), byte(id >> 8), byte(id)}
	case id >= 1<<16:
		return []byte{byte(id >> 16), byte(id >> 8), byte(id)}
	case id >= 1<<8:
		return []byte{byte(id >> 8), byte(id)}
	}
	return []byte{byte(id)}
}

// Size encodes n as the shortest size vint that does not collide with the
// unknown-size marker.
func Size(n uint64) []byte {
	for l := 1; l <= 8; l++ {
		if n < 1<<(7*l)-1 {
			return SizeN(n, l)
		}
	}
	return SizeN(n, 8)
}

// SizeN encodes n as a size vint of exactly l bytes.
func SizeN(n uint64, l int) []byte {
	b := make([]byte, l)
	for i := l - 1; i >= 0; i-- {
		b[i] = byte(n)
		n >>= 8
	}
	b[0] |= 0x80 >> (l - 1)
	return b
}

// UnknownSize is the 8 byte all-ones size marker.
func UnknownSize() []byte {
	return []byte{0x01, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
}

// Elem encodes a master or binary element whose payload is the
// concatenation of children.
func Elem(id uint32, children ...[]byte) []byte {
	payload := concat(children...)
	return concat(ID(id), Size(uint64(len(payload))), payload)
}

// UnknownElem is Elem with an unknown size.
func UnknownElem(id uint32, children ...[]byte) []byte {
	return concat(append([][]byte{ID(id), UnknownSize()}, children...)...)
}

// Uint encodes an unsigned integer element in the minimum number of bytes.
func Uint(id uint32, v uint64) []byte {
	var b []byte
	for v > 0 {
		b = append([]byte{byte(v)}, b...)
		v >>= 8
	}
	if len(b) == 0 {
		b = []byte{0}
	}
	return Elem(id, b)
}

// Uint8 encodes an unsigned integer element on 8 bytes, so that its length
// does not depend on the value.
func Uint8(id uint32, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return Elem(id, b[:])
}

func Float(id uint32, v float64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], math.Float64bits(v))
	return Elem(id, b[:])
}

func Float32(id uint32, v float32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], math.Float32bits(v))
	return Elem(id, b[:])
}

func String(id uint32, s string) []byte {
	return Elem(id, []byte(s))
}

func concat(parts ...[]byte) []byte {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]byte, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
