// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
)

// CubicInterpolate performs Catmull-Rom interpolation.
// x is the fractional position between y1 and y2 (0 <= x <= 1)
// y0, y1, y2, y3 are four consecutive samples
func CubicInterpolate(y0, y1, y2, y3, x float32) float32 {
	a0 := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	a1 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	a2 := -0.5*y0 + 0.5*y2
	a3 := y1

	return a0*x*x*x + a1*x*x + a2*x + a3
}

// Float32ToInt16 clamps x to [-1, 1] and scales it to 16 bits.
func Float32ToInt16(x float32) int16 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	// 32767 for both signs keeps the scale symmetric
	return int16(x * 32767.0)
}

// ToIntBuffer converts interleaved float32 samples into a 16-bit
// go-audio buffer. dst is reused when not nil.
func ToIntBuffer(samples []float32, channels, sampleRate int, dst *goaudio.IntBuffer) *goaudio.IntBuffer {
	if dst == nil {
		dst = &goaudio.IntBuffer{}
	}
	if dst.Format == nil || dst.Format.NumChannels != channels || dst.Format.SampleRate != sampleRate {
		dst.Format = &goaudio.Format{NumChannels: channels, SampleRate: sampleRate}
	}
	dst.SourceBitDepth = 16

	if cap(dst.Data) < len(samples) {
		dst.Data = make([]int, len(samples))
	}
	dst.Data = dst.Data[:len(samples)]
	for i, x := range samples {
		dst.Data[i] = int(Float32ToInt16(x))
	}
	return dst
}

// ResampleToMono16 is a high-level convenience function that resamples audio to a target
// sample rate, converts it to mono, and collects all samples as 16-bit PCM data.
//
// This function creates a processing pipeline:
//  1. Resamples the source audio to targetRate using cubic interpolation
//  2. Converts the resampled audio to mono by averaging channels
//  3. Reads all samples from the pipeline
//  4. Converts float32 samples to int16 PCM format
//
// It returns the collected samples and the output rate. Reaching the end of
// src is not an error.
func ResampleToMono16(src Source, targetRate int, bufferSize int) ([]int16, int, error) {
	if targetRate <= 0 || bufferSize <= 0 {
		return nil, targetRate, ErrInvalidRate
	}

	// Create the processing pipeline: resample -> mono
	resampler := NewResampler(src, targetRate)
	mono := NewMonoMixer(resampler)

	pcm16 := make([]int16, 0, targetRate)
	buf := make([]float32, bufferSize)

	for {
		n, err := mono.ReadSamples(buf)
		for i := range n {
			pcm16 = append(pcm16, Float32ToInt16(buf[i]))
		}

		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, targetRate, fmt.Errorf("%w", err)
		}
	}

	return pcm16, targetRate, nil
}
