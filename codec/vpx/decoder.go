// SPDX-License-Identifier: EPL-2.0

//go:build (darwin || linux) && !novpx

package vpx

import (
	"fmt"
	"image"
	"runtime"
	"unsafe"

	"github.com/ik5/webmdec/codec"
)

// Enabled reports whether this build carries the libvpx binding. The
// library itself may still be missing at run time, see Load.
const Enabled = true

// state is handed to libvpx by address and stays pinned for the decoder's
// lifetime.
type state struct {
	ctx vpxCodecCtx
	cfg vpxDecCfg
}

// Decoder decodes VP8 or VP9 frames with libvpx.
type Decoder struct {
	cfg    codec.VideoConfig
	iface  uintptr
	flags  int64
	st     *state
	pinner runtime.Pinner
	open   bool
	img    image.YCbCr
}

// New initialises a libvpx decoder for cfg. When error concealment is
// requested but the codec cannot do it, the decoder is set up without it.
func New(cfg codec.VideoConfig) (*Decoder, error) {
	if err := Load(); err != nil {
		return nil, fmt.Errorf("%w: %w", codec.ErrDisabled, err)
	}

	var iface uintptr
	switch cfg.CodecID {
	case codec.VP8:
		iface = vpxCodecVP8Dx()
	case codec.VP9:
		iface = vpxCodecVP9Dx()
	default:
		return nil, fmt.Errorf("%w: %q", codec.ErrUnsupportedCodec, cfg.CodecID)
	}
	if iface == 0 {
		return nil, fmt.Errorf("%w: libvpx built without %s", codec.ErrDisabled, cfg.CodecID)
	}

	threads := cfg.Threads
	if threads <= 0 {
		threads = 1
	}
	d := &Decoder{
		cfg:   cfg,
		iface: iface,
		st: &state{cfg: vpxDecCfg{
			threads: uint32(threads),
			w:       uint32(cfg.Width),
			h:       uint32(cfg.Height),
		}},
	}
	if cfg.ErrorConcealment && vpxCodecGetCaps(iface)&capErrorConcealment != 0 {
		d.flags = useErrorConcealment
	}
	d.pinner.Pin(d.st)

	if err := d.init(); err != nil {
		d.pinner.Unpin()
		return nil, err
	}
	return d, nil
}

// Concealment reports whether the decoder runs with error concealment.
func (d *Decoder) Concealment() bool { return d.flags&useErrorConcealment != 0 }

func (d *Decoder) init() error {
	d.st.ctx = vpxCodecCtx{}
	rc := vpxCodecDecInitVer(&d.st.ctx, d.iface, &d.st.cfg, d.flags, decoderABIVersion)
	if rc == codecIncapable && d.flags&useErrorConcealment != 0 {
		d.flags &^= useErrorConcealment
		d.st.ctx = vpxCodecCtx{}
		rc = vpxCodecDecInitVer(&d.st.ctx, d.iface, &d.st.cfg, d.flags, decoderABIVersion)
	}
	if rc != codecOK {
		return fmt.Errorf("%w: vpx: init %s: %s", codec.ErrSetup, d.cfg.CodecID, vpxCodecErrToString(rc))
	}
	d.open = true
	return nil
}

// Decode submits one frame and returns the first image libvpx produced. The
// planes point into libvpx buffers and are valid until the next Decode,
// Reset or Close.
func (d *Decoder) Decode(frame []byte) (*image.YCbCr, error) {
	if !d.open {
		return nil, fmt.Errorf("%w: vpx: decoder closed", codec.ErrDecode)
	}
	if len(frame) == 0 {
		return nil, fmt.Errorf("%w: vpx: empty frame", codec.ErrDecode)
	}

	rc := vpxCodecDecode(&d.st.ctx, &frame[0], uint32(len(frame)), 0, 0)
	runtime.KeepAlive(frame)
	if rc != codecOK {
		return nil, fmt.Errorf("%w: vpx: %s", codec.ErrDecode, vpxCodecErrToString(rc))
	}

	var iter uintptr
	p := vpxCodecGetFrame(&d.st.ctx, &iter)
	if p == 0 {
		return nil, fmt.Errorf("%w: vpx: no frame", codec.ErrDecode)
	}
	if err := wrapImage(&d.img, (*vpxImage)(unsafe.Pointer(p))); err != nil {
		return nil, err
	}
	return &d.img, nil
}

// wrapImage points dst at the planes of a libvpx I420 image without copying.
func wrapImage(dst *image.YCbCr, img *vpxImage) error {
	if img.fmt != imgFmtI420 || img.xChromaShift != 1 || img.yChromaShift != 1 {
		return fmt.Errorf("%w: vpx: format 0x%x with chroma shift %d/%d",
			codec.ErrUnsupportedPixelFormat, img.fmt, img.xChromaShift, img.yChromaShift)
	}
	w, h := int(img.dw), int(img.dh)
	ch := (h + 1) / 2
	ys, cs := int(img.stride[0]), int(img.stride[1])
	if ys < w || cs < (w+1)/2 || int(img.stride[2]) != cs {
		return fmt.Errorf("%w: vpx: strides %v for %dx%d", codec.ErrUnsupportedPixelFormat, img.stride[:3], w, h)
	}

	*dst = image.YCbCr{
		Y:              unsafe.Slice((*byte)(unsafe.Pointer(img.planes[0])), ys*h),
		Cb:             unsafe.Slice((*byte)(unsafe.Pointer(img.planes[1])), cs*ch),
		Cr:             unsafe.Slice((*byte)(unsafe.Pointer(img.planes[2])), cs*ch),
		YStride:        ys,
		CStride:        cs,
		SubsampleRatio: image.YCbCrSubsampleRatio420,
		Rect:           image.Rect(0, 0, w, h),
	}
	return nil
}

// Reset tears the libvpx context down and sets it up again, dropping
// reference frames.
func (d *Decoder) Reset() error {
	if d.st == nil {
		return fmt.Errorf("%w: vpx: decoder closed", codec.ErrSetup)
	}
	if d.open {
		vpxCodecDestroy(&d.st.ctx)
		d.open = false
	}
	d.img = image.YCbCr{}
	return d.init()
}

func (d *Decoder) Close() error {
	if d.st == nil {
		return nil
	}
	if d.open {
		vpxCodecDestroy(&d.st.ctx)
		d.open = false
	}
	d.img = image.YCbCr{}
	d.pinner.Unpin()
	d.st = nil
	return nil
}
