// SPDX-License-Identifier: EPL-2.0

// Command webmdump prints what a WebM file holds and exports its decoded
// tracks as WAV and YUV4MPEG2.
//
//	webmdump [flags] <input.webm>
//
// Every flag can also come from a config file (--config) or from a
// WEBMDUMP_ prefixed environment variable, e.g. WEBMDUMP_LOG_LEVEL=debug.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/ik5/webmdec"
)

func main() {
	if err := execute(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "webmdump:", err)
		os.Exit(1)
	}
}

func execute(args []string, out io.Writer, opts ...webmdec.Option) error {
	fs := newFlags()
	fs.SetOutput(out)
	cfg, err := loadConfig(fs, args)
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(out, "usage: webmdump [flags] <input.webm>\n%s", fs.FlagUsages())
		return errors.New("expected exactly one input file")
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Debug("starting", zap.String("version", webmdec.Version()), zap.String("input", fs.Arg(0)))
	d := &dumper{cfg: cfg, out: out, log: logger, opts: opts}
	if err := d.run(fs.Arg(0)); err != nil {
		logger.Error("dump failed", zap.Error(err))
		return err
	}
	return nil
}
