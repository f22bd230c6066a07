// SPDX-License-Identifier: EPL-2.0

package mkv

import (
	"fmt"

	"github.com/ik5/webmdec/container/ebml"
)

type TrackType uint8

const (
	TrackVideo    TrackType = 0x01
	TrackAudio    TrackType = 0x02
	TrackComplex  TrackType = 0x03
	TrackLogo     TrackType = 0x10
	TrackSubtitle TrackType = 0x11
	TrackButtons  TrackType = 0x12
	TrackControl  TrackType = 0x20
	TrackMetadata TrackType = 0x21
)

func (t TrackType) String() string {
	switch t {
	case TrackVideo:
		return "video"
	case TrackAudio:
		return "audio"
	case TrackComplex:
		return "complex"
	case TrackLogo:
		return "logo"
	case TrackSubtitle:
		return "subtitle"
	case TrackButtons:
		return "buttons"
	case TrackControl:
		return "control"
	case TrackMetadata:
		return "metadata"
	}
	return fmt.Sprintf("TrackType(%d)", uint8(t))
}

// VideoParams holds the Video master of a track entry.
type VideoParams struct {
	Width         uint64
	Height        uint64
	DisplayWidth  uint64
	DisplayHeight uint64
	StereoMode    uint64
	AlphaMode     uint64
}

// AudioParams holds the Audio master of a track entry, with the Matroska
// defaults applied to missing children.
type AudioParams struct {
	SamplingFrequency float64
	OutputFrequency   float64
	Channels          uint64
	BitDepth          uint64
}

type Track struct {
	Number   uint64
	UID      uint64
	Type     TrackType
	Name     string
	Language string
	CodecID  string
	// CodecPrivate is the raw codec private blob. CodecData splits it.
	CodecPrivate []byte
	Enabled      bool
	Default      bool
	Lacing       bool
	// DefaultDuration is the nominal frame duration in nanoseconds, 0 when
	// the file does not carry one.
	DefaultDuration uint64
	CodecDelay      uint64
	SeekPreRoll     uint64

	Video *VideoParams
	Audio *AudioParams
}

// CodecData returns the codec initialisation packets. Vorbis keeps its
// three headers Xiph-laced in CodecPrivate; every other codec gets the blob
// as a single packet, or nothing when it is empty.
func (t *Track) CodecData() ([][]byte, error) {
	if len(t.CodecPrivate) == 0 {
		return nil, nil
	}
	if t.CodecID == "A_VORBIS" {
		return SplitXiph(t.CodecPrivate)
	}
	return [][]byte{t.CodecPrivate}, nil
}

func parseTracks(b []byte) ([]Track, error) {
	var tracks []Track
	err := ebml.Walk(b, func(id uint32, payload []byte) error {
		if id != IDTrackEntry {
			return nil
		}
		t, err := parseTrackEntry(payload)
		if err != nil {
			return err
		}
		tracks = append(tracks, t)
		return nil
	})
	return tracks, err
}

func parseTrackEntry(b []byte) (Track, error) {
	t := Track{Enabled: true, Default: true, Lacing: true}
	err := ebml.Walk(b, func(id uint32, payload []byte) error {
		var err error
		switch id {
		case IDTrackNumber:
			t.Number, err = ebml.Uint(payload)
		case IDTrackUID:
			t.UID, err = ebml.Uint(payload)
		case IDTrackType:
			var v uint64
			v, err = ebml.Uint(payload)
			t.Type = TrackType(v)
		case IDFlagEnabled:
			t.Enabled, err = flag(payload)
		case IDFlagDefault:
			t.Default, err = flag(payload)
		case IDFlagLacing:
			t.Lacing, err = flag(payload)
		case IDDefaultDuration:
			t.DefaultDuration, err = ebml.Uint(payload)
		case IDName:
			t.Name = ebml.String(payload)
		case IDLanguage:
			t.Language = ebml.String(payload)
		case IDCodecID:
			t.CodecID = ebml.String(payload)
		case IDCodecPrivate:
			t.CodecPrivate = payload
		case IDCodecDelay:
			t.CodecDelay, err = ebml.Uint(payload)
		case IDSeekPreRoll:
			t.SeekPreRoll, err = ebml.Uint(payload)
		case IDVideo:
			t.Video, err = parseVideo(payload)
		case IDAudio:
			t.Audio, err = parseAudio(payload)
		}
		return err
	})
	if err != nil {
		return t, err
	}
	if t.Number == 0 {
		return t, fmt.Errorf("%w: track entry without a track number", ErrInvalid)
	}
	return t, nil
}

func parseVideo(b []byte) (*VideoParams, error) {
	v := &VideoParams{}
	err := ebml.Walk(b, func(id uint32, payload []byte) error {
		var err error
		switch id {
		case IDPixelWidth:
			v.Width, err = ebml.Uint(payload)
		case IDPixelHeight:
			v.Height, err = ebml.Uint(payload)
		case IDDisplayWidth:
			v.DisplayWidth, err = ebml.Uint(payload)
		case IDDisplayHeight:
			v.DisplayHeight, err = ebml.Uint(payload)
		case IDStereoMode:
			v.StereoMode, err = ebml.Uint(payload)
		case IDAlphaMode:
			v.AlphaMode, err = ebml.Uint(payload)
		}
		return err
	})
	return v, err
}

func parseAudio(b []byte) (*AudioParams, error) {
	a := &AudioParams{SamplingFrequency: 8000, Channels: 1}
	err := ebml.Walk(b, func(id uint32, payload []byte) error {
		var err error
		switch id {
		case IDSamplingFrequency:
			a.SamplingFrequency, err = ebml.Float(payload)
		case IDOutputSamplingFrequency:
			a.OutputFrequency, err = ebml.Float(payload)
		case IDChannels:
			a.Channels, err = ebml.Uint(payload)
		case IDBitDepth:
			a.BitDepth, err = ebml.Uint(payload)
		}
		return err
	})
	if a.OutputFrequency == 0 {
		a.OutputFrequency = a.SamplingFrequency
	}
	return a, err
}

func flag(b []byte) (bool, error) {
	v, err := ebml.Uint(b)
	return v != 0, err
}
