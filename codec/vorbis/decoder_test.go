// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"errors"
	"testing"

	"github.com/ik5/webmdec/codec"
	"github.com/ik5/webmdec/internal/webmtest"
)

// mockPacketDecoder simulates vorbis.Decoder for testing
type mockPacketDecoder struct {
	sampleRate int
	channels   int
	headers    int
	cleared    int
	// perPacket is the number of frames returned by each Decode call.
	perPacket  int
	decodeErr  error
	headerErr  error
	nextSample float32
}

func (m *mockPacketDecoder) ReadHeader([]byte) error {
	if m.headerErr != nil {
		return m.headerErr
	}
	m.headers++
	return nil
}

func (m *mockPacketDecoder) Decode(packet []byte) ([]float32, error) {
	if m.decodeErr != nil {
		return nil, m.decodeErr
	}
	out := make([]float32, m.perPacket*m.channels)
	for i := range out {
		out[i] = m.nextSample
		m.nextSample++
	}
	return out, nil
}

func (m *mockPacketDecoder) Clear()          { m.cleared++ }
func (m *mockPacketDecoder) Channels() int   { return m.channels }
func (m *mockPacketDecoder) SampleRate() int { return m.sampleRate }

func TestValidateHeaders(t *testing.T) {
	t.Parallel()

	good := webmtest.VorbisHeaders(2, 48000)
	tests := []struct {
		name    string
		headers [][]byte
		wantErr bool
	}{
		{"valid", good, false},
		{"no headers", nil, true},
		{"two headers", good[:2], true},
		{"four headers", append(append([][]byte{}, good...), good[2]), true},
		{"bad identification", [][]byte{good[1], good[1], good[2]}, true},
		{"bad setup", [][]byte{good[0], good[1], good[1]}, true},
		{"short identification", [][]byte{{0x01, 'v', 'o'}, good[1], good[2]}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateHeaders(tt.headers)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateHeaders() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, codec.ErrSetup) {
				t.Errorf("ValidateHeaders() error = %v, want ErrSetup", err)
			}
		})
	}
}

func TestNewDecoder(t *testing.T) {
	t.Parallel()

	m := &mockPacketDecoder{sampleRate: 44100, channels: 2}
	d, err := newDecoder(m, webmtest.VorbisHeaders(2, 44100))
	if err != nil {
		t.Fatalf("newDecoder() error = %v", err)
	}
	if m.headers != 3 {
		t.Errorf("ReadHeader calls = %d, want 3", m.headers)
	}
	if d.Channels() != 2 {
		t.Errorf("Channels() = %d, want 2", d.Channels())
	}
	if d.SampleRate() != 44100 {
		t.Errorf("SampleRate() = %d, want 44100", d.SampleRate())
	}
	if d.Available() != 0 {
		t.Errorf("Available() = %d, want 0", d.Available())
	}
}

func TestNewDecoder_Errors(t *testing.T) {
	t.Parallel()

	headers := webmtest.VorbisHeaders(1, 8000)

	_, err := newDecoder(&mockPacketDecoder{sampleRate: 8000, channels: 1, headerErr: errors.New("boom")}, headers)
	if !errors.Is(err, codec.ErrSetup) {
		t.Errorf("newDecoder() error = %v, want ErrSetup", err)
	}

	_, err = newDecoder(&mockPacketDecoder{sampleRate: 8000}, headers)
	if !errors.Is(err, codec.ErrSetup) {
		t.Errorf("newDecoder() with 0 channels error = %v, want ErrSetup", err)
	}

	m := &mockPacketDecoder{sampleRate: 8000, channels: 1}
	_, err = newDecoder(m, headers[:2])
	if !errors.Is(err, codec.ErrSetup) {
		t.Errorf("newDecoder() with 2 headers error = %v, want ErrSetup", err)
	}
	if m.headers != 0 {
		t.Errorf("ReadHeader calls = %d, want 0 after failed validation", m.headers)
	}
}

func TestDecoder_SubmitGet(t *testing.T) {
	t.Parallel()

	m := &mockPacketDecoder{sampleRate: 44100, channels: 2, perPacket: 1500}
	d, err := newDecoder(m, webmtest.VorbisHeaders(2, 44100))
	if err != nil {
		t.Fatalf("newDecoder() error = %v", err)
	}

	if err := d.Submit([]byte{1}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if err := d.Submit([]byte{2}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if got := d.Available(); got != 6000 {
		t.Fatalf("Available() = %d, want 6000", got)
	}

	buf := make([]float32, 2500)
	if n := d.Get(buf); n != 2500 {
		t.Fatalf("Get() = %d, want 2500", n)
	}
	for i, v := range buf {
		if v != float32(i) {
			t.Fatalf("buf[%d] = %v, want %v", i, v, float32(i))
		}
	}

	// Samples keep their order across a refill after a partial drain.
	if err := d.Submit([]byte{3}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	all := make([]float32, 10000)
	n := d.Get(all)
	if n != 6500 {
		t.Fatalf("Get() = %d, want 6500", n)
	}
	for i, v := range all[:n] {
		if want := float32(2500 + i); v != want {
			t.Fatalf("all[%d] = %v, want %v", i, v, want)
		}
	}
	if d.Available() != 0 {
		t.Errorf("Available() = %d, want 0", d.Available())
	}
	if n := d.Get(all); n != 0 {
		t.Errorf("Get() on empty queue = %d, want 0", n)
	}
}

func TestDecoder_Reset(t *testing.T) {
	t.Parallel()

	m := &mockPacketDecoder{sampleRate: 48000, channels: 1, perPacket: 256}
	d, err := newDecoder(m, webmtest.VorbisHeaders(1, 48000))
	if err != nil {
		t.Fatalf("newDecoder() error = %v", err)
	}
	if err := d.Submit([]byte{1}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if err := d.Reset(); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if d.Available() != 0 {
		t.Errorf("Available() after Reset = %d, want 0", d.Available())
	}
	if m.cleared != 1 {
		t.Errorf("Clear calls = %d, want 1", m.cleared)
	}
}

func TestDecoder_SubmitError(t *testing.T) {
	t.Parallel()

	m := &mockPacketDecoder{sampleRate: 48000, channels: 1}
	d, err := newDecoder(m, webmtest.VorbisHeaders(1, 48000))
	if err != nil {
		t.Fatalf("newDecoder() error = %v", err)
	}
	m.decodeErr = errors.New("corrupt packet")
	if err := d.Submit([]byte{1}); !errors.Is(err, codec.ErrDecode) {
		t.Errorf("Submit() error = %v, want ErrDecode", err)
	}
}

func TestPCMQueue(t *testing.T) {
	t.Parallel()

	var q pcmQueue
	in := make([]float32, 100)
	for i := range in {
		in[i] = float32(i)
	}

	for round := range 50 {
		q.Append(in)
		out := make([]float32, 60)
		if n := q.Read(out); n != 60 {
			t.Fatalf("round %d: Read() = %d, want 60", round, n)
		}
	}
	if got, want := q.Len(), 50*40; got != want {
		t.Fatalf("Len() = %d, want %d", got, want)
	}
	// The consumed prefix is reclaimed, so the buffer stays near what is queued.
	if cap(q.buf) > 8*q.Len() {
		t.Errorf("cap = %d for %d queued samples", cap(q.buf), q.Len())
	}

	q.Reset()
	if q.Len() != 0 {
		t.Errorf("Len() after Reset = %d, want 0", q.Len())
	}

	big := make([]float32, maxIdleCap+1)
	q.Append(big)
	q.Read(make([]float32, len(big)))
	if q.buf != nil {
		t.Errorf("drained oversized queue kept cap %d", cap(q.buf))
	}
}
