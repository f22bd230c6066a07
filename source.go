// SPDX-License-Identifier: EPL-2.0

package webmdec

import (
	"errors"
	"io"
)

// Callbacks is a caller supplied byte source. Read is required. A source
// with Length must also provide Tell and Seek; a source without Length, or
// whose Length is negative, is treated as unseekable.
//
// Read fills p and returns the number of bytes read. On a seekable source a
// short read is a fatal error; on an unseekable source it marks the end of
// the stream. Seek is only called with offsets in [0, Length]. Close is
// called once by Stream.Close and never when opening fails.
type Callbacks struct {
	Length func(opaque any) int64
	Tell   func(opaque any) int64
	Seek   func(opaque any, offset int64)
	Read   func(opaque any, p []byte) int
	Close  func(opaque any)
}

func (cb *Callbacks) validate() error {
	if cb.Read == nil {
		return errors.New("read callback is required")
	}
	if cb.Length != nil && (cb.Tell == nil || cb.Seek == nil) {
		return errors.New("length callback requires tell and seek callbacks")
	}
	return nil
}

// memory is the opaque state of a buffer source.
type memory struct {
	b   []byte
	pos int64
}

func bufferCallbacks() Callbacks {
	return Callbacks{
		Length: func(o any) int64 { return int64(len(o.(*memory).b)) },
		Tell:   func(o any) int64 { return o.(*memory).pos },
		Seek:   func(o any, off int64) { o.(*memory).pos = off },
		Read: func(o any, p []byte) int {
			m := o.(*memory)
			if m.pos >= int64(len(m.b)) {
				return 0
			}
			n := copy(p, m.b[m.pos:])
			m.pos += int64(n)
			return n
		},
	}
}

// readerState is the opaque state of an io.Reader source.
type readerState struct {
	r  io.Reader
	rs io.ReadSeeker
	// base is the offset of the stream start within rs.
	base   int64
	length int64
	pos    int64
}

// readerCallbacks adapts r. An io.ReadSeeker whose size can be probed is
// seekable from its current offset on, anything else is read once from
// start to end.
func readerCallbacks(r io.Reader) (Callbacks, any, error) {
	st := &readerState{r: r, length: -1}
	cb := Callbacks{
		Read: func(o any, p []byte) int {
			st := o.(*readerState)
			n, _ := io.ReadFull(st.r, p)
			st.pos += int64(n)
			return n
		},
	}
	if c, ok := r.(io.Closer); ok {
		cb.Close = func(any) { _ = c.Close() }
	}

	rs, ok := r.(io.ReadSeeker)
	if !ok {
		return cb, st, nil
	}
	start, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		// An os.File on a pipe refuses to seek.
		return cb, st, nil
	}
	end, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return cb, st, err
	}
	if _, err := rs.Seek(start, io.SeekStart); err != nil {
		return cb, st, err
	}

	st.rs, st.base, st.length = rs, start, end-start
	cb.Length = func(o any) int64 { return o.(*readerState).length }
	cb.Tell = func(o any) int64 { return o.(*readerState).pos }
	cb.Seek = func(o any, off int64) {
		st := o.(*readerState)
		if _, err := st.rs.Seek(st.base+off, io.SeekStart); err == nil {
			st.pos = off
		}
	}
	return cb, st, nil
}

var (
	errShortRead   = errors.New("short read on seekable source")
	errNotSeekable = errors.New("source is not seekable")
	errSeekRange   = errors.New("seek outside of source")
)

// demuxSource presents the callbacks as the io.ReadSeeker consumed by the
// container parser.
type demuxSource struct {
	cb     Callbacks
	opaque any
	// length is -1 for unseekable sources.
	length int64
	// failed latches a short read on a seekable source.
	failed bool
	// ended latches a short read on an unseekable source.
	ended bool
}

func newDemuxSource(cb Callbacks, opaque any) *demuxSource {
	s := &demuxSource{cb: cb, opaque: opaque, length: -1}
	if cb.Length != nil {
		if l := cb.Length(opaque); l >= 0 {
			s.length = l
		}
	}
	return s
}

func (s *demuxSource) seekable() bool { return s.length >= 0 }

func (s *demuxSource) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if s.failed {
		return 0, errShortRead
	}

	if !s.seekable() {
		if s.ended {
			return 0, io.EOF
		}
		n := s.cb.Read(s.opaque, p)
		if n <= 0 {
			s.ended = true
			return 0, io.EOF
		}
		if n < len(p) {
			s.ended = true
		}
		return min(n, len(p)), nil
	}

	remaining := s.length - s.cb.Tell(s.opaque)
	if remaining <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > remaining {
		p = p[:remaining]
	}
	n := s.cb.Read(s.opaque, p)
	if n != len(p) {
		s.failed = true
		return max(0, min(n, len(p))), errShortRead
	}
	return n, nil
}

func (s *demuxSource) Seek(offset int64, whence int) (int64, error) {
	if !s.seekable() {
		return 0, errNotSeekable
	}
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = s.cb.Tell(s.opaque) + offset
	case io.SeekEnd:
		abs = s.length + offset
	default:
		return 0, errSeekRange
	}
	if abs < 0 || abs > s.length {
		return 0, errSeekRange
	}
	s.cb.Seek(s.opaque, abs)
	return abs, nil
}
