// SPDX-License-Identifier: EPL-2.0

package webmdec

import (
	"errors"

	"github.com/ik5/webmdec/audio"
)

// DecodeAudioToMono16 decodes the rest of the audio track, resamples it to
// targetRate and mixes it down to mono 16-bit PCM.
func DecodeAudioToMono16(s *Stream, targetRate int) ([]int16, error) {
	src, err := s.AudioSource()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	pcm, _, err := audio.ResampleToMono16(src, targetRate, src.BufSize())
	if errors.Is(err, audio.ErrInvalidRate) {
		return nil, s.fail("decode audio", InvalidArgument, err)
	}
	if err != nil {
		return nil, err
	}
	return pcm, nil
}
