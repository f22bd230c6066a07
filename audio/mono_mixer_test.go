// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"math"
	"testing"

	"github.com/ik5/webmdec/internal/audiotest"
)

func TestMonoMixer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		channels int
		wave     audiotest.Waveform
		want     float32
	}{
		{"mono passthrough", 1, func(int, int) float32 { return 0.3 }, 0.3},
		{"stereo", 2, func(_, c int) float32 { return []float32{0.2, 0.6}[c] }, 0.4},
		{"three channels", 3, func(_, c int) float32 { return float32(c) * 0.3 }, 0.3},
		{"opposite phases", 2, func(_, c int) float32 { return []float32{1, -1}[c] }, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := NewMonoMixer(audiotest.NewSource(8000, tt.channels, 300, tt.wave))
			if m.Channels() != 1 {
				t.Errorf("Channels() = %d, want 1", m.Channels())
			}

			out := readAll(t, m, 128)
			if len(out) != 300 {
				t.Fatalf("got %d samples, want 300", len(out))
			}
			for i, v := range out {
				if math.Abs(float64(v-tt.want)) > 1e-6 {
					t.Fatalf("out[%d] = %v, want %v", i, v, tt.want)
				}
			}
		})
	}
}

func TestMonoMixer_EmptyDst(t *testing.T) {
	t.Parallel()

	m := NewMonoMixer(audiotest.NewSilentSource(8000, 2, 10))
	if n, err := m.ReadSamples(nil); n != 0 || err != nil {
		t.Errorf("ReadSamples(nil) = %d, %v, want 0, nil", n, err)
	}
}

func TestMonoMixer_EOF(t *testing.T) {
	t.Parallel()

	m := NewMonoMixer(audiotest.NewSilentSource(8000, 2, 10))
	n, err := m.ReadSamples(make([]float32, 64))
	if n != 10 || err != io.EOF {
		t.Errorf("ReadSamples() = %d, %v, want 10, io.EOF", n, err)
	}
	if n, err = m.ReadSamples(make([]float32, 64)); n != 0 || err != io.EOF {
		t.Errorf("ReadSamples() after end = %d, %v, want 0, io.EOF", n, err)
	}
}
