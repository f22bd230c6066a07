// SPDX-License-Identifier: EPL-2.0

// Package webmtest builds synthetic WebM files and fake codecs for tests.
package webmtest

import (
	"encoding/binary"

	"github.com/ik5/webmdec/container/ebml"
	"github.com/ik5/webmdec/container/mkv"
)

type Lacing int

const (
	NoLacing Lacing = iota
	XiphLacing
	FixedLacing
	EBMLLacing
)

// Block is a SimpleBlock, or a BlockGroup when Group is set.
type Block struct {
	Track uint64
	// Time is absolute, in timecode ticks.
	Time     int64
	Keyframe bool
	Frames   [][]byte
	Lacing   Lacing
	Group    bool
	Duration uint64
}

type Cluster struct {
	Time   uint64
	Blocks []Block
}

// Track describes a TrackEntry. The Video element is written when Width or
// Height is set, the Audio element when Channels or Rate is set.
type Track struct {
	Number          uint64
	Type            mkv.TrackType
	CodecID         string
	CodecPrivate    []byte
	Width, Height   uint64
	DefaultDuration uint64
	Channels        uint64
	Rate            float64
}

type File struct {
	// DocType defaults to "webm".
	DocType       string
	TimecodeScale uint64
	// Duration is in timecode ticks, omitted when zero.
	Duration float64
	Tracks   []Track
	Clusters []Cluster
	// Cues writes one cue point per cluster at the end of the segment.
	Cues bool
	// SeekHead writes a SeekHead pointing at the cues.
	SeekHead bool
	// UnknownSizes writes the segment and every cluster with an unknown
	// size.
	UnknownSizes bool
}

func VideoTrack(number uint64, codecID string, width, height, defaultDuration uint64) Track {
	return Track{
		Number:          number,
		Type:            mkv.TrackVideo,
		CodecID:         codecID,
		Width:           width,
		Height:          height,
		DefaultDuration: defaultDuration,
	}
}

func AudioTrack(number uint64, channels uint64, rate float64) Track {
	return Track{
		Number:       number,
		Type:         mkv.TrackAudio,
		CodecID:      "A_VORBIS",
		CodecPrivate: VorbisPrivate(channels, rate),
		Channels:     channels,
		Rate:         rate,
	}
}

// Simple returns an unlaced SimpleBlock.
func Simple(track uint64, time int64, keyframe bool, data []byte) Block {
	return Block{Track: track, Time: time, Keyframe: keyframe, Frames: [][]byte{data}}
}

// Bytes encodes the file.
func (f *File) Bytes() []byte {
	docType := f.DocType
	if docType == "" {
		docType = "webm"
	}
	header := Elem(ebml.IDHeader,
		Uint(ebml.IDVersion, 1),
		Uint(ebml.IDReadVersion, 1),
		Uint(ebml.IDMaxIDLength, 4),
		Uint(ebml.IDMaxSizeLength, 8),
		String(ebml.IDDocType, docType),
		Uint(ebml.IDDocTypeVersion, 4),
		Uint(ebml.IDDocTypeReadVersion, 2),
	)

	var infoChildren [][]byte
	if f.TimecodeScale > 0 {
		infoChildren = append(infoChildren, Uint(mkv.IDTimecodeScale, f.TimecodeScale))
	}
	if f.Duration > 0 {
		infoChildren = append(infoChildren, Float(mkv.IDDuration, f.Duration))
	}
	infoChildren = append(infoChildren, String(mkv.IDMuxingApp, "webmtest"), String(mkv.IDWritingApp, "webmtest"))
	info := Elem(mkv.IDInfo, infoChildren...)

	var entries [][]byte
	for _, t := range f.Tracks {
		entries = append(entries, t.bytes())
	}
	tracks := Elem(mkv.IDTracks, entries...)

	var (
		clusters [][]byte
		offsets  []int
	)
	for _, c := range f.Clusters {
		clusters = append(clusters, c.bytes(f.UnknownSizes))
	}

	seekHeadLen := 0
	if f.SeekHead {
		seekHeadLen = len(seekHead(0))
	}
	off := seekHeadLen + len(info) + len(tracks)
	for _, c := range clusters {
		offsets = append(offsets, off)
		off += len(c)
	}

	var body [][]byte
	if f.SeekHead {
		body = append(body, seekHead(uint64(off)))
	}
	body = append(body, info, tracks)
	body = append(body, clusters...)
	if f.Cues {
		body = append(body, f.cues(offsets))
	}

	var segment []byte
	if f.UnknownSizes {
		segment = UnknownElem(mkv.IDSegment, body...)
	} else {
		segment = Elem(mkv.IDSegment, body...)
	}
	return concat(header, segment)
}

func seekHead(cuesPos uint64) []byte {
	return Elem(mkv.IDSeekHead,
		Elem(mkv.IDSeek,
			Elem(mkv.IDSeekID, ID(mkv.IDCues)),
			Uint8(mkv.IDSeekPosition, cuesPos),
		),
	)
}

func (f *File) cues(offsets []int) []byte {
	var cueTrack uint64 = 1
	for _, t := range f.Tracks {
		if t.Type == mkv.TrackVideo {
			cueTrack = t.Number
			break
		}
	}
	var points [][]byte
	for i, c := range f.Clusters {
		points = append(points, Elem(mkv.IDCuePoint,
			Uint(mkv.IDCueTime, c.Time),
			Elem(mkv.IDCueTrackPositions,
				Uint(mkv.IDCueTrack, cueTrack),
				Uint(mkv.IDCueClusterPosition, uint64(offsets[i])),
			),
		))
	}
	return Elem(mkv.IDCues, points...)
}

func (t Track) bytes() []byte {
	children := [][]byte{
		Uint(mkv.IDTrackNumber, t.Number),
		Uint(mkv.IDTrackUID, t.Number),
		Uint(mkv.IDTrackType, uint64(t.Type)),
		String(mkv.IDCodecID, t.CodecID),
	}
	if len(t.CodecPrivate) > 0 {
		children = append(children, Elem(mkv.IDCodecPrivate, t.CodecPrivate))
	}
	if t.DefaultDuration > 0 {
		children = append(children, Uint(mkv.IDDefaultDuration, t.DefaultDuration))
	}
	if t.Width > 0 || t.Height > 0 {
		children = append(children, Elem(mkv.IDVideo,
			Uint(mkv.IDPixelWidth, t.Width),
			Uint(mkv.IDPixelHeight, t.Height),
		))
	}
	if t.Channels > 0 || t.Rate > 0 {
		children = append(children, Elem(mkv.IDAudio,
			Uint(mkv.IDChannels, t.Channels),
			Float(mkv.IDSamplingFrequency, t.Rate),
		))
	}
	return Elem(mkv.IDTrackEntry, children...)
}

func (c Cluster) bytes(unknown bool) []byte {
	children := [][]byte{Uint(mkv.IDTimecode, c.Time)}
	for _, b := range c.Blocks {
		children = append(children, b.bytes(c.Time))
	}
	if unknown {
		return UnknownElem(mkv.IDCluster, children...)
	}
	return Elem(mkv.IDCluster, children...)
}

func (b Block) bytes(clusterTime uint64) []byte {
	var hdr [3]byte
	binary.BigEndian.PutUint16(hdr[:2], uint16(int16(b.Time-int64(clusterTime))))
	flags := byte(b.Lacing) << 1
	if b.Keyframe && !b.Group {
		flags |= 0x80
	}
	hdr[2] = flags

	payload := concat(Size(b.Track), hdr[:], Lace(b.Lacing, b.Frames))
	if !b.Group {
		return Elem(mkv.IDSimpleBlock, payload)
	}
	children := [][]byte{Elem(mkv.IDBlock, payload)}
	if !b.Keyframe {
		children = append(children, Uint(mkv.IDReferenceBlock, 1))
	}
	if b.Duration > 0 {
		children = append(children, Uint(mkv.IDBlockDuration, b.Duration))
	}
	return Elem(mkv.IDBlockGroup, children...)
}

// Lace encodes frames with the given lacing. NoLacing writes the frames
// back to back.
func Lace(l Lacing, frames [][]byte) []byte {
	if l == NoLacing {
		return concat(frames...)
	}
	out := []byte{byte(len(frames) - 1)}
	switch l {
	case XiphLacing:
		for _, f := range frames[:len(frames)-1] {
			n := len(f)
			for n >= 255 {
				out = append(out, 255)
				n -= 255
			}
			out = append(out, byte(n))
		}
	case EBMLLacing:
		if len(frames) > 1 {
			out = append(out, Size(uint64(len(frames[0])))...)
			for i := 1; i < len(frames)-1; i++ {
				out = append(out, signedVint(int64(len(frames[i])-len(frames[i-1])))...)
			}
		}
	}
	return concat(out, concat(frames...))
}

// signedVint encodes v with the lacing bias on the shortest length that
// holds it.
func signedVint(v int64) []byte {
	for l := 1; l <= 8; l++ {
		bias := int64(1)<<(7*l-1) - 1
		if v > -bias && v <= bias {
			return SizeN(uint64(v+bias), l)
		}
	}
	return SizeN(uint64(v), 8)
}
