// SPDX-License-Identifier: EPL-2.0

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ik5/webmdec"
	"github.com/ik5/webmdec/audio"
	"github.com/ik5/webmdec/formats/wav"
	"github.com/ik5/webmdec/formats/y4m"
)

type dumper struct {
	cfg  *config
	out  io.Writer
	log  *zap.Logger
	opts []webmdec.Option
}

func (d *dumper) run(input string) error {
	mode, err := webmdec.ParseOpenMode(d.cfg.Mode)
	if err != nil {
		return errors.Wrap(err, "parse mode")
	}

	opts := append([]webmdec.Option{webmdec.WithLogger(d.log)}, d.opts...)
	s, err := webmdec.OpenFile(input, mode, opts...)
	if err != nil {
		return errors.Wrapf(err, "open %s", input)
	}
	defer s.Close()

	d.printInfo(s)

	if d.cfg.Seek > 0 {
		if err := s.Seek(d.cfg.Seek); err != nil {
			return errors.Wrap(err, "seek")
		}
	}

	if d.cfg.Raw {
		return d.countPackets(s)
	}

	pipeline := d.cfg.AudioOut != "" && (d.cfg.Resample > 0 || d.cfg.Mono)
	wantVideo := d.cfg.VideoOut != "" && s.VideoWidth() > 0
	wantAudio := d.cfg.AudioOut != "" && s.AudioChannels() > 0 && !pipeline
	if d.cfg.VideoOut != "" && !wantVideo {
		return errors.New("video-out requested but the stream has no video track")
	}
	if d.cfg.AudioOut != "" && s.AudioChannels() == 0 {
		return errors.New("audio-out requested but the stream has no audio track")
	}

	if wantVideo || wantAudio {
		if err := d.decode(s, wantVideo, wantAudio); err != nil {
			return err
		}
	}

	if pipeline {
		// The pipeline pulls audio on its own, so it runs as a second pass.
		if wantVideo {
			if err := s.Seek(d.cfg.Seek); err != nil {
				return errors.Wrap(err, "seek back for audio")
			}
		}
		return d.exportAudio(s)
	}
	return nil
}

func (d *dumper) printInfo(s *webmdec.Stream) {
	fmt.Fprintf(d.out, "duration: %.3fs seekable: %t\n", s.Duration(), s.Seekable())
	if s.VideoWidth() > 0 {
		fmt.Fprintf(d.out, "video: %s %dx%d @ %.3f fps\n", s.VideoCodec(), s.VideoWidth(), s.VideoHeight(), s.VideoRate())
	}
	if s.AudioChannels() > 0 {
		fmt.Fprintf(d.out, "audio: %s %d ch @ %.0f Hz\n", s.AudioCodec(), s.AudioChannels(), s.AudioRate())
	}
}

func (d *dumper) countPackets(s *webmdec.Stream) error {
	wantVideo, wantAudio := s.VideoWidth() > 0, s.AudioChannels() > 0
	var videos, audios, size int
	for {
		f, err := s.ReadFrame(wantVideo, wantAudio)
		if errors.Is(err, webmdec.ErrStreamEnd) {
			break
		}
		if err != nil {
			return errors.Wrap(err, "read frame")
		}
		if f.Video != nil {
			videos++
			size += len(f.Video.Data)
		}
		if f.Audio != nil {
			audios++
			size += len(f.Audio.Data)
		}
	}
	fmt.Fprintf(d.out, "packets: video %d audio %d bytes %d\n", videos, audios, size)
	return nil
}

func (d *dumper) decode(s *webmdec.Stream, wantVideo, wantAudio bool) error {
	var (
		vw       *y4m.Writer
		aw       *wav.Writer
		vf, af   *os.File
		err      error
		pictures int
	)
	if wantVideo {
		if vf, err = os.Create(d.cfg.VideoOut); err != nil {
			return errors.Wrap(err, "create video output")
		}
		defer vf.Close()
		if vw, err = y4m.NewWriter(vf, s.VideoWidth(), s.VideoHeight(), s.VideoRate()); err != nil {
			return errors.Wrap(err, "video writer")
		}
	}
	if wantAudio {
		if af, err = os.Create(d.cfg.AudioOut); err != nil {
			return errors.Wrap(err, "create audio output")
		}
		defer af.Close()
		if aw, err = wav.NewWriter(af, int(s.AudioRate()), s.AudioChannels()); err != nil {
			return errors.Wrap(err, "audio writer")
		}
	}

	for {
		f, err := s.DecodeFrame(wantVideo, wantAudio)
		if errors.Is(err, webmdec.ErrStreamEnd) {
			break
		}
		if err != nil {
			return errors.Wrap(err, "decode frame")
		}
		if f.Video != nil {
			if err := vw.WriteFrame(f.Video.Image); err != nil {
				return errors.Wrap(err, "write picture")
			}
			pictures++
		}
		if f.Audio != nil {
			if err := aw.WriteFloat32(f.Audio.Samples); err != nil {
				return errors.Wrap(err, "write audio")
			}
		}
	}

	if vw != nil {
		if err := vw.Flush(); err != nil {
			return errors.Wrap(err, "flush video")
		}
		fmt.Fprintf(d.out, "wrote %d frames to %s\n", pictures, d.cfg.VideoOut)
	}
	if aw != nil {
		if err := aw.Close(); err != nil {
			return errors.Wrap(err, "finish audio")
		}
		fmt.Fprintf(d.out, "wrote %d samples to %s\n", aw.Frames(), d.cfg.AudioOut)
	}
	d.log.Debug("decode done", zap.Int("pictures", pictures))
	return nil
}

// exportAudio writes audio through the resample and mono stages.
func (d *dumper) exportAudio(s *webmdec.Stream) error {
	src, err := s.AudioSource()
	if err != nil {
		return errors.Wrap(err, "audio source")
	}
	defer src.Close()

	if d.cfg.Resample > 0 {
		src = audio.NewResampler(src, d.cfg.Resample)
	}
	if d.cfg.Mono {
		src = audio.NewMonoMixer(src)
	}

	f, err := os.Create(d.cfg.AudioOut)
	if err != nil {
		return errors.Wrap(err, "create audio output")
	}
	defer f.Close()

	w, err := wav.NewWriter(f, src.SampleRate(), src.Channels())
	if err != nil {
		return errors.Wrap(err, "audio writer")
	}
	if err := w.Copy(src); err != nil {
		return errors.Wrap(err, "export audio")
	}
	if err := w.Close(); err != nil {
		return errors.Wrap(err, "finish audio")
	}
	fmt.Fprintf(d.out, "wrote %d samples at %d Hz to %s\n", w.Frames(), src.SampleRate(), d.cfg.AudioOut)
	return nil
}
