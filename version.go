// SPDX-License-Identifier: EPL-2.0

package webmdec

const version = "1.0.0"

// Version returns the semantic version of the library.
func Version() string { return version }
