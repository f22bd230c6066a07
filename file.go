// SPDX-License-Identifier: EPL-2.0

//go:build !nofile

package webmdec

import (
	"os"

	"go.uber.org/zap"
)

// OpenFile opens the WebM file at path. The file is closed by Stream.Close,
// or right away when opening the stream fails.
func OpenFile(path string, mode OpenMode, opts ...Option) (*Stream, error) {
	const op = "open file"
	f, err := os.Open(path)
	if err != nil {
		return nil, newError(op, FileOpenFailed, err)
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, newError(op, FileOpenFailed, err)
	}

	cb, opaque, err := readerCallbacks(f)
	if err != nil {
		_ = f.Close()
		return nil, newError(op, FileOpenFailed, err)
	}
	s, err := open(op, cb, opaque, mode, opts)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	s.log.Debug("file opened", zap.String("path", path), zap.Int64("size", fi.Size()))
	return s, nil
}
