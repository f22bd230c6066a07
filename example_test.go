// SPDX-License-Identifier: EPL-2.0

package webmdec_test

import (
	"errors"
	"fmt"

	"github.com/ik5/webmdec"
	"github.com/ik5/webmdec/internal/webmtest"
)

// Example_readFrames walks the compressed frames of a stream.
func Example_readFrames() {
	codecs := &webmtest.Codecs{}
	s, err := webmdec.OpenBuffer(movie().Bytes(), webmdec.ModeAny, webmdec.WithRegistry(codecs.Registry()))
	if err != nil {
		fmt.Println("open:", err)
		return
	}
	defer s.Close()

	fmt.Printf("%s %dx%d @ %g fps, %s %d ch @ %g Hz\n",
		s.VideoCodec(), s.VideoWidth(), s.VideoHeight(), s.VideoRate(),
		s.AudioCodec(), s.AudioChannels(), s.AudioRate())

	var video, audio int
	for {
		f, err := s.ReadFrame(true, true)
		if errors.Is(err, webmdec.ErrStreamEnd) {
			break
		}
		if err != nil {
			fmt.Println("read:", err)
			return
		}
		if f.Video != nil {
			video++
		}
		if f.Audio != nil {
			audio++
		}
	}
	fmt.Printf("%d video and %d audio frames, ended at %gs\n", video, audio, s.Tell())
	// Output:
	// V_VP8 64x32 @ 30 fps, A_VORBIS 1 ch @ 44100 Hz
	// 4 video and 2 audio frames, ended at 2s
}

// Example_decodeFrames decodes video with a custom set of decoders.
func Example_decodeFrames() {
	codecs := &webmtest.Codecs{}
	s, err := webmdec.OpenBuffer(movie().Bytes(), webmdec.ModeVideoOnly, webmdec.WithRegistry(codecs.Registry()))
	if err != nil {
		fmt.Println("open:", err)
		return
	}
	defer s.Close()

	if err := s.Seek(2); err != nil {
		fmt.Println("seek:", err)
		return
	}
	f, err := s.DecodeFrame(true, false)
	if err != nil {
		fmt.Println("decode:", err)
		return
	}
	fmt.Printf("%v at %gs, Y=0x%02x\n", f.Video.Image.Rect, f.Video.Timestamp, f.Video.Image.Y[0])
	// Output: (0,0)-(64,32) at 2s, Y=0x13
}
