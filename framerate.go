// SPDX-License-Identifier: EPL-2.0

package webmdec

import "math"

const rateTolerance = 1e-3

// frameRate infers a frame rate from a default frame duration in
// nanoseconds, snapping to integer and NTSC (N/1.001) rates. Only rates
// just above a whole number snap. It returns 0 when the duration is unknown.
func frameRate(defaultDuration uint64) float64 {
	if defaultDuration == 0 {
		return 0
	}
	rate := 1e9 / float64(defaultDuration)
	if r := math.Floor(rate); rate-r < rateTolerance {
		return r
	}
	if s := rate * 1.001; s-math.Floor(s) < rateTolerance {
		return math.Floor(s) / 1.001
	}
	return rate
}
