// SPDX-License-Identifier: EPL-2.0

package mkv_test

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ik5/webmdec/container/mkv"
	"github.com/ik5/webmdec/internal/webmtest"
)

func avFile() *webmtest.File {
	return &webmtest.File{
		Duration: 3000,
		Tracks: []webmtest.Track{
			webmtest.VideoTrack(1, "V_VP8", 64, 32, 33_333_333),
			webmtest.AudioTrack(2, 1, 44100),
		},
		Clusters: []webmtest.Cluster{
			{Time: 0, Blocks: []webmtest.Block{
				webmtest.Simple(1, 0, true, []byte{0x10}),
				webmtest.Simple(2, 0, true, []byte{0x20}),
				webmtest.Simple(1, 33, false, []byte{0x11}),
			}},
			{Time: 1000, Blocks: []webmtest.Block{
				webmtest.Simple(1, 1000, true, []byte{0x12}),
				webmtest.Simple(2, 1010, true, []byte{0x21}),
			}},
			{Time: 2000, Blocks: []webmtest.Block{
				webmtest.Simple(1, 2000, true, []byte{0x13}),
			}},
		},
	}
}

func readAll(t *testing.T, p *mkv.Parser) []*mkv.Packet {
	t.Helper()
	var pkts []*mkv.Packet
	for {
		pkt, err := p.ReadPacket()
		if err == io.EOF {
			return pkts
		}
		require.NoError(t, err)
		pkts = append(pkts, pkt)
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()

	p, err := mkv.Open(bytes.NewReader(avFile().Bytes()))
	require.NoError(t, err)
	require.Equal(t, "webm", p.DocType())
	require.Equal(t, uint64(1_000_000), p.TimecodeScale())
	require.Equal(t, 3*time.Second, p.Duration())
	require.Equal(t, "webmtest", p.MuxingApp())

	tracks := p.Tracks()
	require.Len(t, tracks, 2)
	require.Equal(t, mkv.TrackVideo, tracks[0].Type)
	require.Equal(t, "V_VP8", tracks[0].CodecID)
	require.Equal(t, uint64(64), tracks[0].Video.Width)
	require.Equal(t, uint64(32), tracks[0].Video.Height)
	require.Equal(t, uint64(33_333_333), tracks[0].DefaultDuration)
	require.Nil(t, tracks[0].Audio)

	audio, ok := p.Track(2)
	require.True(t, ok)
	require.Equal(t, mkv.TrackAudio, audio.Type)
	require.Equal(t, uint64(1), audio.Audio.Channels)
	require.Equal(t, 44100.0, audio.Audio.SamplingFrequency)

	headers, err := audio.CodecData()
	require.NoError(t, err)
	require.Equal(t, webmtest.VorbisHeaders(1, 44100), headers)

	_, ok = p.Track(7)
	require.False(t, ok)
}

func TestOpen_Invalid(t *testing.T) {
	t.Parallel()

	_, err := mkv.Open(bytes.NewReader([]byte("RIFF....WAVEfmt ")))
	require.ErrorIs(t, err, mkv.ErrInvalid)

	_, err = mkv.Open(bytes.NewReader(nil))
	require.ErrorIs(t, err, mkv.ErrInvalid)

	f := avFile()
	f.DocType = "ogg"
	_, err = mkv.Open(bytes.NewReader(f.Bytes()))
	require.ErrorIs(t, err, mkv.ErrInvalid)

	f = avFile()
	f.Tracks = nil
	_, err = mkv.Open(bytes.NewReader(f.Bytes()))
	require.ErrorIs(t, err, mkv.ErrInvalid)

	data := avFile().Bytes()
	_, err = mkv.Open(bytes.NewReader(data[:60]))
	require.ErrorIs(t, err, mkv.ErrInvalid)
}

func TestReadPacket(t *testing.T) {
	t.Parallel()

	for _, unknown := range []bool{false, true} {
		f := avFile()
		f.UnknownSizes = unknown
		p, err := mkv.Open(bytes.NewReader(f.Bytes()))
		require.NoError(t, err)

		pkts := readAll(t, p)
		require.Len(t, pkts, 6)

		want := []struct {
			track uint64
			ts    time.Duration
			key   bool
			data  byte
		}{
			{1, 0, true, 0x10},
			{2, 0, true, 0x20},
			{1, 33 * time.Millisecond, false, 0x11},
			{1, time.Second, true, 0x12},
			{2, 1010 * time.Millisecond, true, 0x21},
			{1, 2 * time.Second, true, 0x13},
		}
		for i, w := range want {
			require.Equal(t, w.track, pkts[i].Track, "packet %d", i)
			require.Equal(t, int64(w.ts), pkts[i].Timestamp, "packet %d", i)
			require.Equal(t, w.key, pkts[i].Keyframe, "packet %d", i)
			require.Equal(t, [][]byte{{w.data}}, pkts[i].Frames, "packet %d", i)
		}

		_, err = p.ReadPacket()
		require.Equal(t, io.EOF, err)
	}
}

func TestReadPacket_BlockGroupAndLacing(t *testing.T) {
	t.Parallel()

	frames := [][]byte{bytes.Repeat([]byte{1}, 300), {2, 2}, {3, 3, 3}}
	f := &webmtest.File{
		TimecodeScale: 500_000,
		Tracks:        []webmtest.Track{webmtest.AudioTrack(1, 2, 48000)},
		Clusters: []webmtest.Cluster{{Time: 10, Blocks: []webmtest.Block{
			{Track: 1, Time: 10, Keyframe: true, Frames: frames, Lacing: webmtest.XiphLacing},
			{Track: 1, Time: 12, Keyframe: true, Frames: frames, Lacing: webmtest.EBMLLacing},
			{Track: 1, Time: 14, Keyframe: true, Frames: [][]byte{{4, 4}, {5, 5}}, Lacing: webmtest.FixedLacing},
			{Track: 1, Time: 16, Frames: [][]byte{{6}}, Group: true, Duration: 4},
			{Track: 1, Time: 20, Keyframe: true, Frames: [][]byte{{7}}, Group: true},
			{Track: 1, Time: 8, Keyframe: true, Frames: [][]byte{{8}}},
		}}},
	}
	p, err := mkv.Open(bytes.NewReader(f.Bytes()))
	require.NoError(t, err)

	pkts := readAll(t, p)
	require.Len(t, pkts, 6)
	require.Equal(t, frames, pkts[0].Frames)
	require.Equal(t, 305, pkts[0].Size())
	require.Equal(t, frames, pkts[1].Frames)
	require.Equal(t, [][]byte{{4, 4}, {5, 5}}, pkts[2].Frames)

	require.False(t, pkts[3].Keyframe)
	require.Equal(t, int64(8_000_000), pkts[3].Timestamp)
	require.Equal(t, int64(2_000_000), pkts[3].Duration)
	require.True(t, pkts[4].Keyframe)
	require.Equal(t, int64(4_000_000), pkts[5].Timestamp)
}

func TestSplitXiph(t *testing.T) {
	t.Parallel()

	_, err := mkv.SplitXiph(nil)
	require.ErrorIs(t, err, mkv.ErrInvalid)

	_, err = mkv.SplitXiph([]byte{0x02, 0xff})
	require.ErrorIs(t, err, mkv.ErrInvalid)

	_, err = mkv.SplitXiph([]byte{0x01, 0x05, 1, 2})
	require.ErrorIs(t, err, mkv.ErrInvalid)

	got, err := mkv.SplitXiph([]byte{0x01, 0x01, 9, 8, 7})
	require.NoError(t, err)
	require.Equal(t, [][]byte{{9}, {8, 7}}, got)
}

func TestSeek(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cues bool
	}{
		{"cues", true},
		{"cluster scan", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := avFile()
			f.Cues = tt.cues
			f.SeekHead = tt.cues
			p, err := mkv.Open(bytes.NewReader(f.Bytes()))
			require.NoError(t, err)
			readAll(t, p)

			at, err := p.Seek(1500*time.Millisecond, 1)
			require.NoError(t, err)
			require.Equal(t, time.Second, at)
			pkt, err := p.ReadPacket()
			require.NoError(t, err)
			require.Equal(t, [][]byte{{0x12}}, pkt.Frames)

			at, err = p.Seek(5*time.Second, 1)
			require.NoError(t, err)
			require.Equal(t, 2*time.Second, at)
			pkt, err = p.ReadPacket()
			require.NoError(t, err)
			require.Equal(t, [][]byte{{0x13}}, pkt.Frames)

			at, err = p.Seek(0, 1)
			require.NoError(t, err)
			require.Equal(t, time.Duration(0), at)
			require.Len(t, readAll(t, p), 6)

			_, err = p.Seek(-time.Second, 1)
			require.ErrorIs(t, err, mkv.ErrInvalid)
		})
	}
}

func TestSeek_UnknownSizes(t *testing.T) {
	t.Parallel()

	f := avFile()
	f.UnknownSizes = true
	p, err := mkv.Open(bytes.NewReader(f.Bytes()))
	require.NoError(t, err)

	at, err := p.Seek(2500*time.Millisecond, 1)
	require.NoError(t, err)
	require.Equal(t, 2*time.Second, at)
	pkts := readAll(t, p)
	require.Len(t, pkts, 1)
	require.Equal(t, int64(2*time.Second), pkts[0].Timestamp)
}

func TestTrackTypeString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "video", mkv.TrackVideo.String())
	require.Equal(t, "subtitle", mkv.TrackSubtitle.String())
	require.Equal(t, "TrackType(9)", mkv.TrackType(9).String())
	require.Equal(t, "Cluster", mkv.ElementName(mkv.IDCluster))
	require.Equal(t, "0x000000e7", mkv.ElementName(mkv.IDTimecode))
}
