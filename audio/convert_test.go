// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"math"
	"testing"

	"github.com/ik5/webmdec/internal/audiotest"
)

func TestCubicInterpolate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		y0, y1, y2, y3 float32
		x              float32
		want           float32
	}{
		{"start returns y1", 0, 1, 2, 3, 0, 1},
		{"end returns y2", 0, 1, 2, 3, 1, 2},
		{"linear data stays linear", 1, 2, 3, 4, 0.25, 2.25},
		{"flat", 0.5, 0.5, 0.5, 0.5, 0.7, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := CubicInterpolate(tt.y0, tt.y1, tt.y2, tt.y3, tt.x)
			if math.Abs(float64(got-tt.want)) > 1e-5 {
				t.Errorf("CubicInterpolate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFloat32ToInt16(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float32
		want int16
	}{
		{0, 0},
		{1, 32767},
		{-1, -32767},
		{0.5, 16383},
		{-0.5, -16383},
		{1.5, 32767},
		{-2, -32767},
	}

	for _, tt := range tests {
		if got := Float32ToInt16(tt.in); got != tt.want {
			t.Errorf("Float32ToInt16(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestToIntBuffer(t *testing.T) {
	t.Parallel()

	buf := ToIntBuffer([]float32{0, 1, -1, 0.5}, 2, 44100, nil)
	if buf.Format.NumChannels != 2 || buf.Format.SampleRate != 44100 {
		t.Errorf("Format = %+v, want 2 channels at 44100", *buf.Format)
	}
	if buf.SourceBitDepth != 16 {
		t.Errorf("SourceBitDepth = %d, want 16", buf.SourceBitDepth)
	}
	want := []int{0, 32767, -32767, 16383}
	for i := range want {
		if buf.Data[i] != want[i] {
			t.Errorf("Data[%d] = %d, want %d", i, buf.Data[i], want[i])
		}
	}

	again := ToIntBuffer([]float32{0.5}, 2, 44100, buf)
	if again != buf || len(again.Data) != 1 || again.Data[0] != 16383 {
		t.Errorf("reused buffer = %p %v, want %p [16383]", again, again.Data, buf)
	}
}

func TestResampleToMono16(t *testing.T) {
	t.Parallel()

	pcm, rate, err := ResampleToMono16(audiotest.NewConstantSource(16000, 2, 16000, 0.5), 8000, 4096)
	if err != nil {
		t.Fatalf("ResampleToMono16() error = %v", err)
	}
	if rate != 8000 {
		t.Errorf("rate = %d, want 8000", rate)
	}
	if math.Abs(float64(len(pcm)-8000)) > 2 {
		t.Errorf("got %d samples, want 8000±2", len(pcm))
	}
	for i, s := range pcm {
		if s != 16383 {
			t.Fatalf("pcm[%d] = %d, want 16383", i, s)
		}
	}
}

func TestResampleToMono16_InvalidRate(t *testing.T) {
	t.Parallel()

	_, _, err := ResampleToMono16(audiotest.NewSilentSource(8000, 1, 10), 0, 4096)
	if !errors.Is(err, ErrInvalidRate) {
		t.Errorf("ResampleToMono16() error = %v, want %v", err, ErrInvalidRate)
	}
}
