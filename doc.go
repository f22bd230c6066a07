// SPDX-License-Identifier: EPL-2.0

// Package webmdec reads and decodes WebM streams carrying one VP8 or VP9
// video track and one Vorbis audio track.
//
// A Stream is opened from memory, a file, an io.Reader or a set of
// callbacks, and then pulled one frame at a time:
//
//	s, err := webmdec.OpenFile("movie.webm", webmdec.ModeAny)
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	for {
//	    f, err := s.DecodeFrame(true, true)
//	    if errors.Is(err, webmdec.ErrStreamEnd) {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    if f.Video != nil {
//	        // f.Video.Image is planar 4:2:0
//	    }
//	    if f.Audio != nil {
//	        // f.Audio.Samples is interleaved float32
//	    }
//	}
//
// # Open Modes
//
// ModeAny accepts streams with either track, ModeVideoOnly and
// ModeAudioOnly require their track and hide the other one.
//
// # Raw Frames
//
// ReadFrame returns the compressed payloads without decoding them. Laced
// frames of one block are concatenated.
//
// # Buffer Ownership
//
// Slices and images returned by ReadFrame and DecodeFrame belong to the
// stream. They stay valid until the next ReadFrame, DecodeFrame, Seek,
// Rewind or Close call on the same stream.
//
// # Seeking
//
// Seek moves to the cluster holding the last keyframe at or before the
// target, using the Cues index when the file has one. Frames decoded right
// after a seek may therefore start slightly before the target. Tell
// reports the target until packets past it are read.
//
// # Errors
//
// Every failure wraps one of the ErrXxx sentinels, so it can be tested
// with errors.Is or classified with KindOf. The stream also remembers the
// kind of its last failure, see Stream.LastError. A short read on a
// seekable source or an oversized frame breaks the stream for good; the end
// of the stream can be undone with Seek.
//
// # Decoders
//
// VP8 and VP9 are decoded by libvpx, loaded at run time (see package
// codec/vpx); Vorbis by a pure Go decoder. Builds tagged novpx or
// novorbis leave the matching decoder out, and DecodeFrame then fails with
// DisabledFunction for that track. Other decoders can be plugged in with
// WithRegistry.
//
// # Audio Pipeline
//
// Stream.AudioSource adapts decoded audio to the audio package, and
// DecodeAudioToMono16 resamples it to mono 16-bit PCM in one call.
package webmdec
