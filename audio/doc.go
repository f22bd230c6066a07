// SPDX-License-Identifier: EPL-2.0

// Package audio provides the PCM pipeline used to consume decoded audio.
//
// The building blocks are:
//   - Source, a pull stream of interleaved float32 samples
//   - Resampler for sample rate conversion
//   - MonoMixer for channel mixing
//   - conversions to int16 and to go-audio buffers
//
// # Source Interface
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// Decoded WebM audio is exposed as a Source by webmdec.Stream.AudioSource,
// so the processors below can be chained onto it.
//
// # Resampling
//
// The Resampler changes the sample rate with Catmull-Rom cubic
// interpolation. When downsampling, a one-pole low-pass filter runs on the
// input first:
//
//	resampler := audio.NewResampler(source, 16000)
//	buf := make([]float32, 4096)
//	n, err := resampler.ReadSamples(buf)
//
// # Channel Mixing
//
// The MonoMixer converts multi-channel audio to mono by averaging:
//
//	mono := audio.NewMonoMixer(source)
//
// # Sample Format
//
// Samples are float32 in [-1.0, 1.0]. Float32ToInt16 clamps and scales
// them to 16 bits, and ToIntBuffer fills a github.com/go-audio/audio
// IntBuffer for encoders such as go-audio/wav.
//
// # Error Handling
//
// ReadSamples returns io.EOF when no more data is available:
//
//	for {
//	    n, err := source.ReadSamples(buf)
//	    // use buf[:n]
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	}
package audio
