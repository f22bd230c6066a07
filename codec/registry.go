// SPDX-License-Identifier: EPL-2.0

package codec

import (
	"fmt"
	"sort"
	"sync"
)

// Registry of decoder factories by Matroska codec ID (e.g., "V_VP8",
// "A_VORBIS").
type Registry struct {
	video map[string]VideoFactory
	audio map[string]AudioFactory

	mtx *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		video: make(map[string]VideoFactory),
		audio: make(map[string]AudioFactory),
		mtx:   &sync.Mutex{},
	}
}

func (r *Registry) RegisterVideo(codecID string, f VideoFactory) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.video[codecID] = f
}

func (r *Registry) RegisterAudio(codecID string, f AudioFactory) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.audio[codecID] = f
}

func (r *Registry) Video(codecID string) (VideoFactory, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	f, ok := r.video[codecID]
	return f, ok
}

func (r *Registry) Audio(codecID string) (AudioFactory, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	f, ok := r.audio[codecID]
	return f, ok
}

// Codecs lists the registered codec IDs, sorted.
func (r *Registry) Codecs() []string {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	ids := make([]string, 0, len(r.video)+len(r.audio))
	for id := range r.video {
		ids = append(ids, id)
	}
	for id := range r.audio {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// NewVideo builds a video decoder for cfg.CodecID.
func (r *Registry) NewVideo(cfg VideoConfig) (VideoDecoder, error) {
	f, ok := r.Video(cfg.CodecID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCodec, cfg.CodecID)
	}
	return f(cfg)
}

// NewAudio builds an audio decoder for cfg.CodecID.
func (r *Registry) NewAudio(cfg AudioConfig) (AudioDecoder, error) {
	f, ok := r.Audio(cfg.CodecID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCodec, cfg.CodecID)
	}
	return f(cfg)
}
