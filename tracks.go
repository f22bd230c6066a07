// SPDX-License-Identifier: EPL-2.0

package webmdec

import (
	"fmt"
	"strings"

	"github.com/ik5/webmdec/container/mkv"
)

// OpenMode selects which tracks a Stream requires and exposes.
type OpenMode int

const (
	// ModeAny opens streams with a video track, an audio track or both.
	ModeAny OpenMode = iota
	// ModeVideoOnly requires a video track and ignores audio.
	ModeVideoOnly
	// ModeAudioOnly requires an audio track and ignores video.
	ModeAudioOnly
)

func (m OpenMode) String() string {
	switch m {
	case ModeAny:
		return "any"
	case ModeVideoOnly:
		return "video"
	case ModeAudioOnly:
		return "audio"
	}
	return fmt.Sprintf("OpenMode(%d)", int(m))
}

func (m OpenMode) valid() bool { return m >= ModeAny && m <= ModeAudioOnly }

// ParseOpenMode accepts the names returned by OpenMode.String, plus
// "video-only" and "audio-only".
func ParseOpenMode(s string) (OpenMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any":
		return ModeAny, nil
	case "video", "video-only", "video_only":
		return ModeVideoOnly, nil
	case "audio", "audio-only", "audio_only":
		return ModeAudioOnly, nil
	}
	return ModeAny, fmt.Errorf("%w: open mode %q", ErrInvalidArgument, s)
}

// selectTracks picks the first video and first audio track and drops the
// one the mode excludes.
func selectTracks(tracks []mkv.Track, mode OpenMode) (video, audio *mkv.Track, err error) {
	for i := range tracks {
		t := &tracks[i]
		switch t.Type {
		case mkv.TrackVideo:
			if video == nil {
				video = t
			}
		case mkv.TrackAudio:
			if audio == nil {
				audio = t
			}
		}
	}

	switch mode {
	case ModeVideoOnly:
		audio = nil
	case ModeAudioOnly:
		video = nil
	}
	if video == nil && audio == nil {
		return nil, nil, fmt.Errorf("no %s track", trackWord(mode))
	}
	return video, audio, nil
}

func trackWord(mode OpenMode) string {
	switch mode {
	case ModeVideoOnly:
		return "video"
	case ModeAudioOnly:
		return "audio"
	}
	return "video or audio"
}

func checkVideo(t *mkv.Track) error {
	if t.Video == nil {
		return fmt.Errorf("video track %d has no video settings", t.Number)
	}
	if t.Video.Width == 0 || t.Video.Height == 0 {
		return fmt.Errorf("video track %d has size %dx%d", t.Number, t.Video.Width, t.Video.Height)
	}
	return nil
}

func checkAudio(t *mkv.Track) error {
	if t.Audio == nil {
		return fmt.Errorf("audio track %d has no audio settings", t.Number)
	}
	if t.Audio.Channels == 0 || t.Audio.SamplingFrequency <= 0 {
		return fmt.Errorf("audio track %d has %d channels at %g Hz",
			t.Number, t.Audio.Channels, t.Audio.SamplingFrequency)
	}
	return nil
}
