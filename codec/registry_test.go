// SPDX-License-Identifier: EPL-2.0

package codec

import (
	"errors"
	"image"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type nopVideo struct{ cfg VideoConfig }

func (d *nopVideo) Decode([]byte) (*image.YCbCr, error) {
	return image.NewYCbCr(image.Rect(0, 0, d.cfg.Width, d.cfg.Height), image.YCbCrSubsampleRatio420), nil
}
func (d *nopVideo) Reset() error { return nil }
func (d *nopVideo) Close() error { return nil }

func TestRegistry(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	_, ok := r.Video(VP8)
	require.False(t, ok)

	r.RegisterVideo(VP8, func(cfg VideoConfig) (VideoDecoder, error) { return &nopVideo{cfg: cfg}, nil })
	r.RegisterAudio(Vorbis, func(AudioConfig) (AudioDecoder, error) { return nil, ErrDisabled })
	require.Equal(t, []string{Vorbis, VP8}, r.Codecs())

	dec, err := r.NewVideo(VideoConfig{CodecID: VP8, Width: 4, Height: 2})
	require.NoError(t, err)
	img, err := dec.Decode(nil)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 4, 2), img.Rect)

	_, err = r.NewVideo(VideoConfig{CodecID: VP9})
	require.ErrorIs(t, err, ErrUnsupportedCodec)

	_, err = r.NewAudio(AudioConfig{CodecID: Vorbis})
	require.ErrorIs(t, err, ErrDisabled)

	_, err = r.NewAudio(AudioConfig{CodecID: "A_OPUS"})
	require.True(t, errors.Is(err, ErrUnsupportedCodec))
}

func TestRegistry_Concurrent(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				r.RegisterVideo(VP9, func(VideoConfig) (VideoDecoder, error) { return nil, nil })
			} else {
				r.Video(VP9)
			}
		}(i)
	}
	wg.Wait()

	_, ok := r.Video(VP9)
	require.True(t, ok)
}
