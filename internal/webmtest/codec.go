// SPDX-License-Identifier: EPL-2.0

package webmtest

import (
	"image"
	"sync"

	"github.com/ik5/webmdec/codec"
)

// FakeVideo decodes a frame into a picture whose Y plane is filled with the
// first payload byte and whose chroma planes are 0x80.
type FakeVideo struct {
	Config  codec.VideoConfig
	Decoded int
	Resets  int
	Closed  bool
	// Err, when set, is returned by Decode.
	Err error
	// ResetErr, when set, is returned by Reset.
	ResetErr error

	img *image.YCbCr
}

func (v *FakeVideo) Decode(frame []byte) (*image.YCbCr, error) {
	if v.Err != nil {
		return nil, v.Err
	}
	if len(frame) == 0 {
		return nil, codec.ErrDecode
	}
	if v.img == nil {
		v.img = image.NewYCbCr(image.Rect(0, 0, v.Config.Width, v.Config.Height), image.YCbCrSubsampleRatio420)
	}
	fill(v.img.Y, frame[0])
	fill(v.img.Cb, 0x80)
	fill(v.img.Cr, 0x80)
	v.Decoded++
	return v.img, nil
}

func (v *FakeVideo) Reset() error {
	v.Resets++
	return v.ResetErr
}

func (v *FakeVideo) Close() error {
	v.Closed = true
	return nil
}

// FakeAudio turns every packet into SamplesPerPacket frames whose samples
// all equal the first payload byte divided by 256.
type FakeAudio struct {
	Config           codec.AudioConfig
	SamplesPerPacket int
	Submitted        int
	Resets           int
	Closed           bool
	Err              error

	queue []float32
}

func (a *FakeAudio) Submit(packet []byte) error {
	if a.Err != nil {
		return a.Err
	}
	if len(packet) == 0 {
		return codec.ErrDecode
	}
	v := float32(packet[0]) / 256
	for range a.SamplesPerPacket * a.Config.Channels {
		a.queue = append(a.queue, v)
	}
	a.Submitted++
	return nil
}

func (a *FakeAudio) Available() int { return len(a.queue) }

func (a *FakeAudio) Get(dst []float32) int {
	n := copy(dst, a.queue)
	a.queue = a.queue[n:]
	return n
}

func (a *FakeAudio) Reset() error {
	a.queue = nil
	a.Resets++
	return nil
}

func (a *FakeAudio) Channels() int   { return a.Config.Channels }
func (a *FakeAudio) SampleRate() int { return a.Config.SampleRate }

func (a *FakeAudio) Close() error {
	a.Closed = true
	return nil
}

// Codecs hands out fake decoders through a codec.Registry and keeps track
// of every instance it built.
type Codecs struct {
	// VideoErr and AudioErr, when set, are returned by the factories.
	VideoErr error
	AudioErr error
	// SamplesPerPacket defaults to 1024.
	SamplesPerPacket int

	mtx    sync.Mutex
	Videos []*FakeVideo
	Audios []*FakeAudio
}

func (c *Codecs) Registry() *codec.Registry {
	r := codec.NewRegistry()
	video := func(cfg codec.VideoConfig) (codec.VideoDecoder, error) {
		if c.VideoErr != nil {
			return nil, c.VideoErr
		}
		c.mtx.Lock()
		defer c.mtx.Unlock()
		v := &FakeVideo{Config: cfg}
		c.Videos = append(c.Videos, v)
		return v, nil
	}
	r.RegisterVideo(codec.VP8, video)
	r.RegisterVideo(codec.VP9, video)
	r.RegisterAudio(codec.Vorbis, func(cfg codec.AudioConfig) (codec.AudioDecoder, error) {
		if c.AudioErr != nil {
			return nil, c.AudioErr
		}
		c.mtx.Lock()
		defer c.mtx.Unlock()
		spp := c.SamplesPerPacket
		if spp == 0 {
			spp = 1024
		}
		a := &FakeAudio{Config: cfg, SamplesPerPacket: spp}
		c.Audios = append(c.Audios, a)
		return a, nil
	})
	return r
}

// Video returns the last video decoder built, or nil.
func (c *Codecs) Video() *FakeVideo {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	if len(c.Videos) == 0 {
		return nil
	}
	return c.Videos[len(c.Videos)-1]
}

// Audio returns the last audio decoder built, or nil.
func (c *Codecs) Audio() *FakeAudio {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	if len(c.Audios) == 0 {
		return nil
	}
	return c.Audios[len(c.Audios)-1]
}

func fill(b []byte, v byte) {
	for i := range b {
		b[i] = v
	}
}
