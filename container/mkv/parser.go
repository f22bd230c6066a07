// SPDX-License-Identifier: EPL-2.0

package mkv

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ik5/webmdec/container/ebml"
)

var (
	ErrInvalid     = errors.New("mkv: invalid stream")
	ErrNoCues      = errors.New("mkv: no cues")
	ErrUnsupported = errors.New("mkv: unsupported stream")
)

const defaultTimecodeScale = 1_000_000

// Parser pulls packets out of a WebM or Matroska byte stream. It is not
// safe for concurrent use.
type Parser struct {
	r *ebml.Reader

	docType       string
	segmentStart  int64
	segmentEnd    int64
	timecodeScale uint64
	duration      float64
	muxingApp     string
	writingApp    string
	tracks        []Track

	cues       []CuePoint
	cuesOffset int64
	cuesLoaded bool

	// firstCluster is the offset of the first cluster header, or the
	// position where metadata parsing stopped when there is none.
	firstCluster int64
	hasClusters  bool
	clusterTime  uint64
}

// Open reads the EBML header and the segment metadata of src. On return
// the parser is positioned inside the first cluster.
func Open(src io.ReadSeeker) (*Parser, error) {
	p := &Parser{
		r:             ebml.NewReader(src),
		segmentEnd:    -1,
		timecodeScale: defaultTimecodeScale,
		cuesOffset:    -1,
	}
	if err := p.readHeader(); err != nil {
		return nil, err
	}
	if err := p.findSegment(); err != nil {
		return nil, err
	}
	if err := p.readMetadata(); err != nil {
		return nil, err
	}
	if len(p.tracks) == 0 {
		return nil, fmt.Errorf("%w: no tracks", ErrInvalid)
	}
	return p, nil
}

func (p *Parser) readHeader() error {
	h, err := p.r.ReadHeader()
	if err != nil {
		return fmt.Errorf("%w: reading ebml header: %w", ErrInvalid, err)
	}
	if h.ID != ebml.IDHeader || h.Unknown {
		return fmt.Errorf("%w: missing ebml header", ErrInvalid)
	}
	b, err := p.r.ReadPayload(h.Size)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	var readVersion uint64 = 1
	err = ebml.Walk(b, func(id uint32, payload []byte) error {
		var err error
		switch id {
		case ebml.IDDocType:
			p.docType = ebml.String(payload)
		case ebml.IDReadVersion:
			readVersion, err = ebml.Uint(payload)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if readVersion > 1 {
		return fmt.Errorf("%w: ebml read version %d", ErrUnsupported, readVersion)
	}
	if p.docType != "webm" && p.docType != "matroska" {
		return fmt.Errorf("%w: doc type %q", ErrInvalid, p.docType)
	}
	return nil
}

func (p *Parser) findSegment() error {
	for {
		h, err := p.r.ReadHeader()
		if err != nil {
			return fmt.Errorf("%w: looking for segment: %w", ErrInvalid, err)
		}
		if h.ID == IDSegment {
			p.segmentStart = h.DataOffset
			p.segmentEnd = h.End()
			return nil
		}
		if h.Unknown {
			return fmt.Errorf("%w: unknown sized %s before segment", ErrInvalid, ElementName(h.ID))
		}
		if err := p.r.Skip(h.Size); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalid, err)
		}
	}
}

// readMetadata consumes top level elements until the first cluster.
func (p *Parser) readMetadata() error {
	for {
		if p.atSegmentEnd() {
			p.firstCluster = p.r.Pos()
			return nil
		}
		h, err := p.r.ReadHeader()
		if errors.Is(err, io.EOF) {
			p.firstCluster = p.r.Pos()
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalid, err)
		}

		if h.ID == IDCluster {
			p.firstCluster = h.Offset
			p.hasClusters = true
			p.clusterTime = 0
			return nil
		}
		if h.Unknown {
			return fmt.Errorf("%w: unknown sized %s", ErrUnsupported, ElementName(h.ID))
		}

		switch h.ID {
		case IDSeekHead, IDInfo, IDTracks, IDCues:
			b, err := p.r.ReadPayload(h.Size)
			if err != nil {
				return fmt.Errorf("%w: %s: %w", ErrInvalid, ElementName(h.ID), err)
			}
			if err := p.parseTopLevel(h.ID, b); err != nil {
				return fmt.Errorf("%w: %s: %w", ErrInvalid, ElementName(h.ID), err)
			}
		default:
			if err := p.r.Skip(h.Size); err != nil {
				return fmt.Errorf("%w: %w", ErrInvalid, err)
			}
		}
	}
}

func (p *Parser) parseTopLevel(id uint32, b []byte) error {
	var err error
	switch id {
	case IDSeekHead:
		err = p.parseSeekHead(b)
	case IDInfo:
		err = p.parseInfo(b)
	case IDTracks:
		if p.tracks == nil {
			p.tracks, err = parseTracks(b)
		}
	case IDCues:
		if !p.cuesLoaded {
			p.cues, err = parseCues(b, p.segmentStart)
			p.cuesLoaded = err == nil
		}
	}
	return err
}

func (p *Parser) parseSeekHead(b []byte) error {
	return ebml.Walk(b, func(id uint32, payload []byte) error {
		if id != IDSeek {
			return nil
		}
		var (
			target uint32
			pos    uint64
			hasPos bool
		)
		err := ebml.Walk(payload, func(id uint32, v []byte) error {
			var err error
			switch id {
			case IDSeekID:
				var u uint64
				u, err = ebml.Uint(v)
				target = uint32(u)
			case IDSeekPosition:
				pos, err = ebml.Uint(v)
				hasPos = true
			}
			return err
		})
		if err != nil {
			return err
		}
		if target == IDCues && hasPos && p.cuesOffset < 0 {
			p.cuesOffset = p.segmentStart + int64(pos)
		}
		return nil
	})
}

func (p *Parser) parseInfo(b []byte) error {
	return ebml.Walk(b, func(id uint32, payload []byte) error {
		var err error
		switch id {
		case IDTimecodeScale:
			var v uint64
			if v, err = ebml.Uint(payload); err == nil && v > 0 {
				p.timecodeScale = v
			}
		case IDDuration:
			p.duration, err = ebml.Float(payload)
		case IDMuxingApp:
			p.muxingApp = ebml.String(payload)
		case IDWritingApp:
			p.writingApp = ebml.String(payload)
		}
		return err
	})
}

func (p *Parser) atSegmentEnd() bool {
	return p.segmentEnd >= 0 && p.r.Pos() >= p.segmentEnd
}

func (p *Parser) DocType() string { return p.docType }

// TimecodeScale returns the number of nanoseconds per timecode tick.
func (p *Parser) TimecodeScale() uint64 { return p.timecodeScale }

// Duration returns the segment duration, 0 when the file does not declare
// one.
func (p *Parser) Duration() time.Duration {
	return time.Duration(p.duration * float64(p.timecodeScale))
}

func (p *Parser) MuxingApp() string  { return p.muxingApp }
func (p *Parser) WritingApp() string { return p.writingApp }

// Tracks returns the track entries in file order.
func (p *Parser) Tracks() []Track { return p.tracks }

// Track returns the entry with the given track number.
func (p *Parser) Track(number uint64) (*Track, bool) {
	for i := range p.tracks {
		if p.tracks[i].Number == number {
			return &p.tracks[i], true
		}
	}
	return nil, false
}

// ReadPacket returns the next block of the segment. io.EOF is returned once
// the segment is exhausted.
func (p *Parser) ReadPacket() (*Packet, error) {
	for {
		if p.atSegmentEnd() {
			return nil, io.EOF
		}
		h, err := p.r.ReadHeader()
		if err != nil {
			return nil, err
		}

		switch h.ID {
		case IDCluster:
			p.clusterTime = 0
			continue
		case IDSegment, ebml.IDHeader:
			// A chained segment is outside what this parser plays.
			return nil, io.EOF
		}

		if h.Unknown {
			return nil, fmt.Errorf("%w: unknown sized %s", ErrUnsupported, ElementName(h.ID))
		}

		switch h.ID {
		case IDTimecode:
			b, err := p.r.ReadPayload(h.Size)
			if err != nil {
				return nil, err
			}
			if p.clusterTime, err = ebml.Uint(b); err != nil {
				return nil, fmt.Errorf("%w: cluster timecode", ErrInvalid)
			}
		case IDSimpleBlock:
			b, err := p.r.ReadPayload(h.Size)
			if err != nil {
				return nil, err
			}
			blk, err := parseBlock(b)
			if err != nil {
				return nil, err
			}
			pkt := p.packet(blk)
			pkt.Keyframe = blk.flags&flagKeyframe != 0
			return pkt, nil
		case IDBlockGroup:
			b, err := p.r.ReadPayload(h.Size)
			if err != nil {
				return nil, err
			}
			pkt, err := p.parseBlockGroup(b)
			if err != nil {
				return nil, err
			}
			if pkt != nil {
				return pkt, nil
			}
		default:
			if err := p.r.Skip(h.Size); err != nil {
				return nil, err
			}
		}
	}
}

func (p *Parser) parseBlockGroup(b []byte) (*Packet, error) {
	var (
		blk      block
		hasBlock bool
		refs     int
		duration uint64
	)
	err := ebml.Walk(b, func(id uint32, payload []byte) error {
		var err error
		switch id {
		case IDBlock:
			blk, err = parseBlock(payload)
			hasBlock = err == nil
		case IDReferenceBlock:
			refs++
		case IDBlockDuration:
			duration, err = ebml.Uint(payload)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if !hasBlock {
		return nil, nil
	}
	pkt := p.packet(blk)
	pkt.Keyframe = refs == 0
	pkt.Duration = int64(duration * p.timecodeScale)
	return pkt, nil
}

func (p *Parser) packet(blk block) *Packet {
	ticks := int64(p.clusterTime) + int64(blk.rel)
	return &Packet{
		Track:     blk.track,
		Timestamp: ticks * int64(p.timecodeScale),
		Invisible: blk.flags&flagInvisible != 0,
		Frames:    blk.frames,
	}
}

// Seek positions the parser on the cluster holding the last cue point at or
// before ts for the given track, falling back to a linear cluster scan when
// the file has no cues. It returns the timestamp of the chosen cluster.
func (p *Parser) Seek(ts time.Duration, track uint64) (time.Duration, error) {
	if ts < 0 {
		return 0, fmt.Errorf("%w: negative seek target", ErrInvalid)
	}
	if !p.hasClusters {
		return 0, p.r.SeekTo(p.firstCluster)
	}
	target := uint64(ts) / p.timecodeScale

	if err := p.loadCues(); err == nil {
		cue, ok := findCue(p.cues, target, track)
		if !ok {
			return 0, p.r.SeekTo(p.firstCluster)
		}
		if err := p.r.SeekTo(cue.Cluster); err != nil {
			return 0, err
		}
		return time.Duration(cue.Time * p.timecodeScale), nil
	} else if !errors.Is(err, ErrNoCues) {
		return 0, err
	}
	return p.scanClusters(target)
}

func (p *Parser) loadCues() error {
	if p.cuesLoaded {
		if len(p.cues) == 0 {
			return ErrNoCues
		}
		return nil
	}
	if p.cuesOffset < 0 {
		return ErrNoCues
	}
	p.cuesLoaded = true

	// Truncated files keep a SeekHead pointing past their end.
	if err := p.r.SeekTo(p.cuesOffset); err != nil {
		return fmt.Errorf("%w: %w", ErrNoCues, err)
	}
	h, err := p.r.ReadHeader()
	if err != nil || h.ID != IDCues || h.Unknown {
		return ErrNoCues
	}
	b, err := p.r.ReadPayload(h.Size)
	if err != nil {
		return ErrNoCues
	}
	if p.cues, err = parseCues(b, p.segmentStart); err != nil || len(p.cues) == 0 {
		p.cues = nil
		return ErrNoCues
	}
	return nil
}

// scanClusters walks cluster headers from the first cluster and stops on
// the last one whose timecode is not after target.
func (p *Parser) scanClusters(target uint64) (time.Duration, error) {
	if err := p.r.SeekTo(p.firstCluster); err != nil {
		return 0, err
	}

	best, bestTime := p.firstCluster, uint64(0)
	cluster, clusterEnd := int64(-1), int64(-1)
	for !p.atSegmentEnd() {
		h, err := p.r.ReadHeader()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, err
		}

		if h.ID == IDCluster {
			cluster, clusterEnd = h.Offset, h.End()
			continue
		}
		if h.ID == IDSegment || h.ID == ebml.IDHeader {
			break
		}
		if h.Unknown {
			return 0, fmt.Errorf("%w: unknown sized %s", ErrUnsupported, ElementName(h.ID))
		}
		if h.ID != IDTimecode || cluster < 0 {
			if err := p.r.Skip(h.Size); err != nil {
				return 0, err
			}
			continue
		}

		b, err := p.r.ReadPayload(h.Size)
		if err != nil {
			return 0, err
		}
		tc, err := ebml.Uint(b)
		if err != nil {
			return 0, fmt.Errorf("%w: cluster timecode", ErrInvalid)
		}
		if tc > target {
			break
		}
		best, bestTime = cluster, tc
		cluster = -1
		if clusterEnd >= 0 {
			if err := p.r.SeekTo(clusterEnd); err != nil {
				return 0, err
			}
		}
	}

	if err := p.r.SeekTo(best); err != nil {
		return 0, err
	}
	return time.Duration(bestTime * p.timecodeScale), nil
}
