// SPDX-License-Identifier: EPL-2.0

package webmdec_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ik5/webmdec"
	"github.com/ik5/webmdec/container/mkv"
	"github.com/ik5/webmdec/internal/webmtest"
)

func TestSeek(t *testing.T) {
	t.Parallel()

	variants := map[string]func(*webmtest.File){
		"cues":          func(f *webmtest.File) { f.Cues, f.SeekHead = true, true },
		"cluster scan":  func(*webmtest.File) {},
		"cues no index": func(f *webmtest.File) { f.Cues = true },
	}

	for name, tweak := range variants {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			f := movie()
			tweak(f)
			s, codecs := open(t, f, webmdec.ModeAny)

			require.NoError(t, s.Seek(1.5))
			require.Equal(t, 1.5, s.Tell())
			require.Equal(t, 1, codecs.Video().Resets)
			require.Equal(t, 1, codecs.Audio().Resets)

			// Playback restarts at the keyframe cluster before the target.
			got, err := s.ReadFrame(true, false)
			require.NoError(t, err)
			require.Equal(t, []byte{0x12}, got.Video.Data)
			require.Equal(t, 1.0, got.Video.Timestamp)
			require.Equal(t, 1.5, s.Tell())

			got, err = s.ReadFrame(true, false)
			require.NoError(t, err)
			require.Equal(t, []byte{0x13}, got.Video.Data)
			require.Equal(t, 2.0, s.Tell())

			_, err = s.ReadFrame(true, false)
			require.ErrorIs(t, err, webmdec.ErrStreamEnd)

			// Seeking clears the end of stream.
			require.NoError(t, s.Rewind())
			require.Zero(t, s.Tell())
			require.Len(t, readAll(t, s, true, true), 6)

			require.NoError(t, s.Seek(0.5))
			require.Equal(t, 0.5, s.Tell())
			got, err = s.ReadFrame(true, false)
			require.NoError(t, err)
			require.Equal(t, []byte{0x10}, got.Video.Data)
		})
	}
}

func TestSeek_TruncatedCues(t *testing.T) {
	t.Parallel()
	f := movie()
	f.Cues, f.SeekHead = true, true
	data := f.Bytes()
	// Cut one byte into the last cluster, dropping the cues.
	cues := bytes.LastIndex(data, webmtest.ID(mkv.IDCues))
	require.Positive(t, cues)
	data = data[:cues-1]

	codecs := &webmtest.Codecs{}
	s, err := webmdec.OpenBuffer(data, webmdec.ModeAny, webmdec.WithRegistry(codecs.Registry()))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Seek(1.5))
	require.Equal(t, 1.5, s.Tell())
	got, err := s.ReadFrame(true, false)
	require.NoError(t, err)
	require.Equal(t, []byte{0x12}, got.Video.Data)

	require.NoError(t, s.Seek(0.5))
	got, err = s.ReadFrame(true, false)
	require.NoError(t, err)
	require.Equal(t, []byte{0x10}, got.Video.Data)
}

func TestSeek_ResetFailureBreaksStream(t *testing.T) {
	t.Parallel()
	s, codecs := open(t, movie(), webmdec.ModeAny)
	codecs.Video().ResetErr = errors.New("reset refused")

	err := s.Seek(1.5)
	require.ErrorIs(t, err, webmdec.ErrDecodeSetupFailure)
	require.Equal(t, 1.5, s.Tell())

	_, err = s.ReadFrame(true, true)
	require.ErrorIs(t, err, webmdec.ErrStreamReadFailure)
	require.ErrorIs(t, s.Rewind(), webmdec.ErrStreamReadFailure)
	require.Equal(t, 1.5, s.Tell())
}

func TestSeek_Bounds(t *testing.T) {
	t.Parallel()
	s, _ := open(t, movie(), webmdec.ModeAny)

	require.ErrorIs(t, s.Seek(-1), webmdec.ErrInvalidArgument)
	require.Equal(t, webmdec.InvalidArgument, s.LastError())
	require.Zero(t, s.Tell())

	require.NoError(t, s.Seek(10))
	require.Equal(t, 3.0, s.Tell())
	got, err := s.ReadFrame(true, true)
	require.NoError(t, err)
	require.Equal(t, []byte{0x13}, got.Video.Data)
	require.LessOrEqual(t, s.Tell(), s.Duration())
}

func TestSeek_DropsQueuedAudio(t *testing.T) {
	t.Parallel()
	s, codecs := open(t, audioOnly(), webmdec.ModeAny, webmdec.WithMaxAudioSamples(50))

	f, err := s.DecodeFrame(false, true)
	require.NoError(t, err)
	require.Len(t, f.Audio.Samples, 50)
	require.Equal(t, 150, codecs.Audio().Available())

	require.NoError(t, s.Rewind())
	require.Zero(t, codecs.Audio().Available())

	f, err = s.DecodeFrame(false, true)
	require.NoError(t, err)
	require.Zero(t, f.Audio.Timestamp)
}

func TestSeek_Unseekable(t *testing.T) {
	t.Parallel()
	codecs := &webmtest.Codecs{}
	s, err := webmdec.OpenReader(plainReader{bytes.NewReader(movie().Bytes())}, webmdec.ModeAny,
		webmdec.WithRegistry(codecs.Registry()))
	require.NoError(t, err)
	defer s.Close()

	first, err := s.ReadFrame(true, false)
	require.NoError(t, err)
	require.Equal(t, []byte{0x10}, first.Video.Data)

	require.ErrorIs(t, s.Seek(1.0), webmdec.ErrStreamNotSeekable)
	require.Equal(t, webmdec.StreamNotSeekable, s.LastError())
	require.ErrorIs(t, s.Rewind(), webmdec.ErrStreamNotSeekable)
	require.Zero(t, codecs.Video().Resets)

	next, err := s.ReadFrame(true, false)
	require.NoError(t, err)
	require.Equal(t, []byte{0x11}, next.Video.Data)
}
