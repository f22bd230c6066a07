// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"fmt"

	"github.com/ik5/webmdec/codec"
)

// blockSize bounds how many samples are appended to the queue at once.
const blockSize = 1024

var (
	identSignature = append([]byte{0x01}, "vorbis"...)
	setupSignature = append([]byte{0x05}, "vorbis"...)
)

// packetDecoder is an interface for vorbis.Decoder to allow testing
type packetDecoder interface {
	ReadHeader(header []byte) error
	Decode(packet []byte) ([]float32, error)
	Clear()
	Channels() int
	SampleRate() int
}

// Decoder decodes raw Vorbis packets, as stored in WebM blocks, into a
// queue of interleaved float32 samples.
type Decoder struct {
	dec   packetDecoder
	queue pcmQueue
}

// New validates the three Vorbis headers of cfg and primes a decoder with
// them.
func New(cfg codec.AudioConfig) (*Decoder, error) {
	dec, err := newBackend()
	if err != nil {
		return nil, err
	}
	return newDecoder(dec, cfg.Headers)
}

// Register adds the Vorbis factory to r.
func Register(r *codec.Registry) {
	r.RegisterAudio(codec.Vorbis, func(cfg codec.AudioConfig) (codec.AudioDecoder, error) {
		d, err := New(cfg)
		if err != nil {
			return nil, err
		}
		return d, nil
	})
}

// ValidateHeaders checks the header count and the signatures of the
// identification and setup headers.
func ValidateHeaders(headers [][]byte) error {
	if len(headers) != 3 {
		return fmt.Errorf("%w: vorbis: %d header packets, want 3", codec.ErrSetup, len(headers))
	}
	if !bytes.HasPrefix(headers[0], identSignature) {
		return fmt.Errorf("%w: vorbis: bad identification header", codec.ErrSetup)
	}
	if !bytes.HasPrefix(headers[2], setupSignature) {
		return fmt.Errorf("%w: vorbis: bad setup header", codec.ErrSetup)
	}
	return nil
}

func newDecoder(dec packetDecoder, headers [][]byte) (*Decoder, error) {
	if err := ValidateHeaders(headers); err != nil {
		return nil, err
	}
	for i, h := range headers {
		if err := dec.ReadHeader(h); err != nil {
			return nil, fmt.Errorf("%w: vorbis: header %d: %w", codec.ErrSetup, i, err)
		}
	}
	if dec.Channels() <= 0 || dec.SampleRate() <= 0 {
		return nil, fmt.Errorf("%w: vorbis: %d channels at %d Hz", codec.ErrSetup, dec.Channels(), dec.SampleRate())
	}
	return &Decoder{dec: dec}, nil
}

func (d *Decoder) Channels() int   { return d.dec.Channels() }
func (d *Decoder) SampleRate() int { return d.dec.SampleRate() }
func (d *Decoder) Available() int  { return d.queue.Len() }
func (d *Decoder) Get(dst []float32) int {
	return d.queue.Read(dst)
}

// Submit decodes one audio packet. The first packet after the headers or a
// Reset yields no samples, as Vorbis needs the previous block to overlap.
func (d *Decoder) Submit(packet []byte) error {
	pcm, err := d.dec.Decode(packet)
	if err != nil {
		return fmt.Errorf("%w: vorbis: %w", codec.ErrDecode, err)
	}
	for len(pcm) > 0 {
		n := min(len(pcm), blockSize)
		d.queue.Append(pcm[:n])
		pcm = pcm[n:]
	}
	return nil
}

func (d *Decoder) Reset() error {
	d.queue.Reset()
	d.dec.Clear()
	return nil
}

func (d *Decoder) Close() error {
	d.queue.Reset()
	return nil
}
