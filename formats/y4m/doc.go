// SPDX-License-Identifier: EPL-2.0

// Package y4m writes decoded 4:2:0 pictures as a YUV4MPEG2 stream, the
// raw format read by ffmpeg, mpv and most encoders.
package y4m
