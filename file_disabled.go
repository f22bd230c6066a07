// SPDX-License-Identifier: EPL-2.0

//go:build nofile

package webmdec

import "errors"

// OpenFile is unavailable in builds tagged nofile.
func OpenFile(path string, mode OpenMode, opts ...Option) (*Stream, error) {
	return nil, newError("open file", DisabledFunction, errors.New("built with nofile"))
}
