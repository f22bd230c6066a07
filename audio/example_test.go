// SPDX-License-Identifier: EPL-2.0

package audio_test

import (
	"fmt"
	"io"

	"github.com/ik5/webmdec/audio"
	"github.com/ik5/webmdec/internal/audiotest"
)

// Example_processingChain resamples a stereo tone to 8 kHz mono.
func Example_processingChain() {
	source := audiotest.NewSineSource(44100, 2, 44100, 440.0) // 1 second

	mono := audio.NewMonoMixer(audio.NewResampler(source, 8000))
	defer mono.Close()

	total := 0
	buf := make([]float32, 1024)
	for {
		n, err := mono.ReadSamples(buf)
		total += n
		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Println("error:", err)
			return
		}
	}

	fmt.Printf("%d Hz, %d channel(s), %d samples\n", mono.SampleRate(), mono.Channels(), total)
	// Output: 8000 Hz, 1 channel(s), 8000 samples
}

func ExampleToIntBuffer() {
	buf := audio.ToIntBuffer([]float32{0, 0.5, -1, 1}, 2, 48000, nil)

	fmt.Println(buf.Format.NumChannels, buf.Format.SampleRate, buf.Data)
	// Output: 2 48000 [0 16383 -32767 32767]
}
