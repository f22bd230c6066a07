// SPDX-License-Identifier: EPL-2.0

package wav

import "errors"

var (
	ErrNotWavFile            = errors.New("not a WAV file")
	ErrOnlyPCM16bitSupported = errors.New("only PCM 16-bit supported")
	ErrInvalidFormat         = errors.New("sample rate and channels must be positive")
	ErrPartialFrame          = errors.New("sample count must be a multiple of channels")
	ErrClosed                = errors.New("writer is closed")
)
