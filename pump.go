// SPDX-License-Identifier: EPL-2.0

package webmdec

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/ik5/webmdec/container/mkv"
)

// frameBuffer holds the payload of the last frame pumped for one track. The
// slice is reused across calls.
type frameBuffer struct {
	data []byte
	// ends are the offsets where each laced frame of the packet ends.
	ends []int
	ts   float64
}

// assemble concatenates the frames of a packet into b.
func (b *frameBuffer) assemble(frames [][]byte, ts float64, limit int) error {
	size := 0
	for _, f := range frames {
		size += len(f)
	}
	if size > limit {
		return fmt.Errorf("frame of %d bytes exceeds limit of %d", size, limit)
	}

	b.data = b.data[:0]
	b.ends = b.ends[:0]
	for _, f := range frames {
		b.data = append(b.data, f...)
		b.ends = append(b.ends, len(b.data))
	}
	b.ts = ts
	return nil
}

// chunks returns the laced frames of the buffered packet.
func (b *frameBuffer) chunks() [][]byte {
	out := make([][]byte, 0, len(b.ends))
	start := 0
	for _, end := range b.ends {
		out = append(out, b.data[start:end])
		start = end
	}
	return out
}

func (b *frameBuffer) drop() {
	*b = frameBuffer{}
}

// pump reads packets until one of the requested kinds is captured. Packets
// of other tracks are consumed and dropped. A latched stream fails without
// touching the source.
func (s *Stream) pump(op string, wantVideo, wantAudio bool) (gotVideo, gotAudio bool, err error) {
	if s.readErr {
		return false, false, s.fail(op, StreamReadFailure, nil)
	}
	if s.eos {
		return false, false, s.fail(op, StreamEnd, nil)
	}
	for !gotVideo && !gotAudio {
		pkt, err := s.parser.ReadPacket()
		// A truncated element on an unseekable source is its end.
		if errors.Is(err, io.EOF) || (errors.Is(err, io.ErrUnexpectedEOF) && !s.src.seekable()) {
			s.eos = true
			s.log.Debug("end of stream", zap.Float64("tell", s.current))
			return false, false, s.fail(op, StreamEnd, nil)
		}
		if err != nil {
			s.readErr = true
			s.log.Debug("read error latched", zap.Float64("tell", s.current), zap.Error(err))
			return false, false, s.fail(op, pumpError(err), err)
		}

		ts := float64(pkt.Timestamp) / 1e9
		s.advance(ts)

		var buf *frameBuffer
		switch {
		case wantVideo && s.isTrack(s.video, pkt):
			buf, gotVideo = &s.rawVideo, true
		case wantAudio && s.isTrack(s.audio, pkt):
			buf, gotAudio = &s.rawAudio, true
		default:
			continue
		}
		if err := buf.assemble(pkt.Frames, ts, s.opts.maxFrameSize); err != nil {
			s.rawVideo.drop()
			s.rawAudio.drop()
			s.readErr = true
			s.log.Debug("frame too large", zap.Uint64("track", pkt.Track), zap.Error(err))
			return false, false, s.fail(op, InsufficientResources, err)
		}
	}
	return gotVideo, gotAudio, nil
}

func (s *Stream) isTrack(t *mkv.Track, pkt *mkv.Packet) bool {
	return t != nil && t.Number == pkt.Track
}

// advance moves the stream clock to ts. The clock never goes backwards and
// stays within the known duration.
func (s *Stream) advance(ts float64) {
	if ts < s.current {
		return
	}
	if s.duration > 0 && ts > s.duration {
		ts = s.duration
	}
	s.current = max(ts, 0)
}
