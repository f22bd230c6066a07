// SPDX-License-Identifier: EPL-2.0

package mkv

import (
	"encoding/binary"
	"fmt"

	"github.com/ik5/webmdec/container/ebml"
)

// Lacing modes stored in bits 1-2 of the block flags.
const (
	lacingNone  = 0
	lacingXiph  = 1
	lacingFixed = 2
	lacingEBML  = 3
)

const (
	flagKeyframe  = 0x80
	flagInvisible = 0x08
)

// Packet is one Block or SimpleBlock. Frames holds one entry per laced
// frame, or a single entry for an unlaced block.
type Packet struct {
	Track uint64
	// Timestamp is the absolute block time in nanoseconds. It may be
	// negative for blocks placed before their cluster time.
	Timestamp int64
	// Duration is the BlockDuration in nanoseconds, 0 when absent.
	Duration  int64
	Keyframe  bool
	Invisible bool
	Frames    [][]byte
}

// Size returns the sum of the frame sizes.
func (p *Packet) Size() int {
	n := 0
	for _, f := range p.Frames {
		n += len(f)
	}
	return n
}

type block struct {
	track  uint64
	rel    int16
	flags  byte
	frames [][]byte
}

func parseBlock(b []byte) (block, error) {
	var blk block

	track, n, _, err := ebml.ParseVint(b)
	if err != nil {
		return blk, fmt.Errorf("%w: block track number", ErrInvalid)
	}
	b = b[n:]
	if len(b) < 3 {
		return blk, fmt.Errorf("%w: short block header", ErrInvalid)
	}
	blk.track = track
	blk.rel = int16(binary.BigEndian.Uint16(b))
	blk.flags = b[2]
	b = b[3:]

	switch (blk.flags >> 1) & 0x03 {
	case lacingNone:
		blk.frames = [][]byte{b}
	case lacingXiph:
		blk.frames, err = SplitXiph(b)
	case lacingFixed:
		blk.frames, err = splitFixed(b)
	case lacingEBML:
		blk.frames, err = splitEBML(b)
	}
	return blk, err
}

// SplitXiph splits Xiph laced data: a count byte holding the number of
// frames minus one, the sizes of every frame but the last as runs of 255
// terminated by a smaller byte, then the frame data back to back.
func SplitXiph(b []byte) ([][]byte, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: empty xiph lace", ErrInvalid)
	}
	count := int(b[0]) + 1
	b = b[1:]

	sizes := make([]int, count-1)
	for i := range sizes {
		for {
			if len(b) == 0 {
				return nil, fmt.Errorf("%w: truncated xiph lace sizes", ErrInvalid)
			}
			c := b[0]
			b = b[1:]
			sizes[i] += int(c)
			if c != 0xff {
				break
			}
		}
	}
	return cutFrames(b, sizes)
}

func splitFixed(b []byte) ([][]byte, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: empty fixed lace", ErrInvalid)
	}
	count := int(b[0]) + 1
	b = b[1:]
	if len(b)%count != 0 {
		return nil, fmt.Errorf("%w: fixed lace of %d bytes is not divisible by %d", ErrInvalid, len(b), count)
	}
	size := len(b) / count
	frames := make([][]byte, count)
	for i := range frames {
		frames[i] = b[i*size : (i+1)*size : (i+1)*size]
	}
	return frames, nil
}

func splitEBML(b []byte) ([][]byte, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: empty ebml lace", ErrInvalid)
	}
	count := int(b[0]) + 1
	b = b[1:]

	sizes := make([]int, count-1)
	if len(sizes) > 0 {
		first, n, _, err := ebml.ParseVint(b)
		if err != nil {
			return nil, fmt.Errorf("%w: ebml lace size", ErrInvalid)
		}
		b = b[n:]
		sizes[0] = int(first)
		for i := 1; i < len(sizes); i++ {
			delta, n, err := ebml.ParseSignedVint(b)
			if err != nil {
				return nil, fmt.Errorf("%w: ebml lace delta", ErrInvalid)
			}
			b = b[n:]
			sizes[i] = sizes[i-1] + int(delta)
			if sizes[i] < 0 {
				return nil, fmt.Errorf("%w: negative ebml lace size", ErrInvalid)
			}
		}
	}
	return cutFrames(b, sizes)
}

// cutFrames slices b by the given sizes; the last frame takes what is left.
func cutFrames(b []byte, sizes []int) ([][]byte, error) {
	frames := make([][]byte, 0, len(sizes)+1)
	for _, size := range sizes {
		if size > len(b) {
			return nil, fmt.Errorf("%w: lace overruns block", ErrInvalid)
		}
		frames = append(frames, b[:size:size])
		b = b[size:]
	}
	return append(frames, b), nil
}
