// SPDX-License-Identifier: EPL-2.0

package ebml

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

var (
	ErrParse    = errors.New("ebml: parse error")
	ErrTooLarge = errors.New("ebml: element too large")
)

const (
	readBufferSize = 32 * 1024

	// DefaultMaxPayload bounds the payload ReadPayload is willing to allocate.
	DefaultMaxPayload = 256 << 20
)

// Header is the ID and size prefix of an element.
type Header struct {
	ID   uint32
	Size uint64
	// Unknown is set when the size field was the reserved all-ones value.
	Unknown bool
	// Offset is the absolute position of the first ID byte.
	Offset int64
	// DataOffset is the absolute position of the first payload byte.
	DataOffset int64
}

// End returns the absolute position just past the payload, or -1 when the
// size is unknown.
func (h Header) End() int64 {
	if h.Unknown {
		return -1
	}
	return h.DataOffset + int64(h.Size)
}

// Reader reads EBML elements from a byte stream and keeps track of the
// absolute offset. Seeking is delegated to the underlying source.
type Reader struct {
	src        io.ReadSeeker
	br         *bufio.Reader
	pos        int64
	MaxPayload uint64
}

// NewReader creates a Reader positioned at the current offset of src,
// which is assumed to be 0.
func NewReader(src io.ReadSeeker) *Reader {
	return &Reader{
		src:        src,
		br:         bufio.NewReaderSize(src, readBufferSize),
		MaxPayload: DefaultMaxPayload,
	}
}

// Pos returns the absolute offset of the next unread byte.
func (r *Reader) Pos() int64 { return r.pos }

// ReadHeader reads the ID and size of the next element. io.EOF is only
// returned when the stream ends exactly on an element boundary; a stream
// ending inside the header yields io.ErrUnexpectedEOF.
func (r *Reader) ReadHeader() (Header, error) {
	h := Header{Offset: r.pos}

	b, err := r.br.ReadByte()
	if err != nil {
		return h, err
	}
	r.pos++

	n := idLength(b)
	if n == 0 {
		return h, fmt.Errorf("%w: invalid id marker 0x%02x at %d", ErrParse, b, h.Offset)
	}
	h.ID = uint32(b)
	for range n - 1 {
		if b, err = r.readByte(); err != nil {
			return h, err
		}
		h.ID = h.ID<<8 | uint32(b)
	}

	if b, err = r.readByte(); err != nil {
		return h, err
	}
	n = vintLength(b)
	if n == 0 {
		return h, fmt.Errorf("%w: invalid size marker at %d", ErrParse, r.pos-1)
	}
	var raw [8]byte
	raw[0] = b
	for i := 1; i < n; i++ {
		if raw[i], err = r.readByte(); err != nil {
			return h, err
		}
	}
	h.Size, h.Unknown = decodeVint(raw[:n])
	h.DataOffset = r.pos
	return h, nil
}

func (r *Reader) readByte() (byte, error) {
	b, err := r.br.ReadByte()
	if err != nil {
		return 0, unexpected(err)
	}
	r.pos++
	return b, nil
}

// ReadPayload reads size bytes of element payload.
func (r *Reader) ReadPayload(size uint64) ([]byte, error) {
	if size > r.MaxPayload {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, size)
	}
	buf := make([]byte, size)
	n, err := io.ReadFull(r.br, buf)
	r.pos += int64(n)
	if err != nil {
		return nil, unexpected(err)
	}
	return buf, nil
}

// Skip discards size bytes.
func (r *Reader) Skip(size uint64) error {
	for size > 0 {
		chunk := min(size, uint64(readBufferSize))
		n, err := r.br.Discard(int(chunk))
		r.pos += int64(n)
		if err != nil {
			return unexpected(err)
		}
		size -= chunk
	}
	return nil
}

// SeekTo moves to the absolute offset off, dropping buffered data.
func (r *Reader) SeekTo(off int64) error {
	if _, err := r.src.Seek(off, io.SeekStart); err != nil {
		return fmt.Errorf("ebml: seek to %d: %w", off, err)
	}
	r.br.Reset(r.src)
	r.pos = off
	return nil
}

func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// Walk calls fn for every element encoded back to back in b, which is
// typically the payload of a master element. An unknown size extends to the
// end of b.
func Walk(b []byte, fn func(id uint32, payload []byte) error) error {
	for len(b) > 0 {
		id, n, err := ParseID(b)
		if err != nil {
			return err
		}
		b = b[n:]

		size, n, unknown, err := ParseVint(b)
		if err != nil {
			return err
		}
		b = b[n:]

		if unknown {
			size = uint64(len(b))
		}
		if size > uint64(len(b)) {
			return fmt.Errorf("%w: element 0x%x overruns its parent", ErrParse, id)
		}
		if err := fn(id, b[:size]); err != nil {
			return err
		}
		b = b[size:]
	}
	return nil
}
