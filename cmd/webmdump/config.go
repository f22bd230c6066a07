// SPDX-License-Identifier: EPL-2.0

package main

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "WEBMDUMP"

type config struct {
	AudioOut string  `mapstructure:"audio_out"`
	VideoOut string  `mapstructure:"video_out"`
	Mode     string  `mapstructure:"mode"`
	Seek     float64 `mapstructure:"seek"`
	// Resample is the output rate of the audio export, 0 keeps the
	// stream rate.
	Resample int  `mapstructure:"resample"`
	Mono     bool `mapstructure:"mono"`
	// Raw only counts compressed packets.
	Raw bool `mapstructure:"raw"`

	Log logConfig `mapstructure:"log"`
}

type logConfig struct {
	Path         string        `mapstructure:"path"`
	Level        string        `mapstructure:"level"`
	RotationTime time.Duration `mapstructure:"rotation_time"`
	Age          int           `mapstructure:"age"`
}

// flag name -> config key
var flagKeys = map[string]string{
	"audio-out": "audio_out",
	"video-out": "video_out",
	"mode":      "mode",
	"seek":      "seek",
	"resample":  "resample",
	"mono":      "mono",
	"raw":       "raw",
	"log-level": "log.level",
	"log-path":  "log.path",
}

func newFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("webmdump", pflag.ContinueOnError)
	fs.SortFlags = false
	fs.String("audio-out", "", "write decoded audio to this WAV file")
	fs.String("video-out", "", "write decoded video to this Y4M file")
	fs.StringP("mode", "m", "any", "tracks to open: any, video or audio")
	fs.Float64("seek", 0, "start position in seconds")
	fs.Int("resample", 0, "resample exported audio to this rate in Hz")
	fs.Bool("mono", false, "mix exported audio down to one channel")
	fs.Bool("raw", false, "count compressed packets without decoding")
	fs.StringP("config", "c", "", "config file (yaml, toml or json)")
	fs.String("log-level", "info", "log level")
	fs.String("log-path", "", "log file, rotated daily; stderr when empty")
	return fs
}

// loadConfig parses args and merges them with the config file and the
// WEBMDUMP_* environment. Flags set on the command line win.
func loadConfig(fs *pflag.FlagSet, args []string) (*config, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	v.SetDefault("log.rotation_time", 24*time.Hour)
	v.SetDefault("log.age", 7)

	for name, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return nil, errors.Wrapf(err, "bind flag %s", name)
		}
	}

	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, "read in config")
		}
	}

	cfg := new(config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	return cfg, cfg.validate()
}

func (c *config) validate() error {
	switch {
	case c.Seek < 0:
		return errors.Errorf("seek must not be negative, got %v", c.Seek)
	case c.Resample < 0:
		return errors.Errorf("resample must not be negative, got %d", c.Resample)
	case c.Raw && (c.AudioOut != "" || c.VideoOut != ""):
		return errors.New("raw cannot be combined with audio-out or video-out")
	}
	return nil
}
