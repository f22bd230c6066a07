// SPDX-License-Identifier: EPL-2.0

// Package wav writes and reads 16-bit PCM WAV files on top of
// github.com/go-audio/wav.
//
// # Writing
//
// Writer streams interleaved samples of any channel count:
//
//	f, _ := os.Create("out.wav")
//	w, err := wav.NewWriter(f, 48000, 2)
//	if err != nil {
//	    return err
//	}
//	err = w.WriteFloat32(samples)
//	...
//	err = w.Close() // patches the header sizes, f stays open
//
// Writer.Copy drains an audio.Source, which is how a decoded WebM audio
// track is exported. WriteWAV16 writes a whole mono buffer to any
// io.Writer in one call.
//
// # Reading
//
// Decoder turns a WAV file back into an audio.Source with samples scaled
// to [-1, 1). Only 16-bit PCM is accepted.
package wav
