// SPDX-License-Identifier: EPL-2.0

//go:build (darwin || linux) && !novpx

package vpx

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/ebitengine/purego"
)

// LibraryEnv names the environment variable that overrides the libvpx
// search path.
const LibraryEnv = "WEBMDEC_VPX_LIB"

// ABI constants from vpx_decoder.h, vpx_codec.h and vpx_image.h of libvpx
// 1.8 and later.
const (
	decoderABIVersion = 12

	codecOK        = 0
	codecIncapable = 4

	useErrorConcealment = 0x20000
	capErrorConcealment = 0x80000

	imgFmtI420 = 0x102
)

// vpxCodecCtx mirrors vpx_codec_ctx_t.
type vpxCodecCtx struct {
	name      uintptr
	iface     uintptr
	err       int32
	_         int32
	errDetail uintptr
	initFlags int64
	config    uintptr
	priv      uintptr
}

// vpxDecCfg mirrors vpx_codec_dec_cfg_t.
type vpxDecCfg struct {
	threads uint32
	w       uint32
	h       uint32
}

// vpxImage mirrors vpx_image_t.
type vpxImage struct {
	fmt          uint32
	cs           uint32
	rng          uint32
	w            uint32
	h            uint32
	bitDepth     uint32
	dw           uint32
	dh           uint32
	rw           uint32
	rh           uint32
	xChromaShift uint32
	yChromaShift uint32
	planes       [4]uintptr
	stride       [4]int32
	bps          int32
	userPriv     uintptr
	imgData      uintptr
	imgDataOwner int32
	selfAllocd   int32
	fbPriv       uintptr
}

var (
	libOnce sync.Once
	libErr  error

	vpxCodecVP8Dx       func() uintptr
	vpxCodecVP9Dx       func() uintptr
	vpxCodecDecInitVer  func(ctx *vpxCodecCtx, iface uintptr, cfg *vpxDecCfg, flags int64, ver int32) int32
	vpxCodecDecode      func(ctx *vpxCodecCtx, data *byte, size uint32, userPriv uintptr, deadline int64) int32
	vpxCodecGetFrame    func(ctx *vpxCodecCtx, iter *uintptr) uintptr
	vpxCodecDestroy     func(ctx *vpxCodecCtx) int32
	vpxCodecGetCaps     func(iface uintptr) int64
	vpxCodecErrToString func(err int32) string
)

// Load opens libvpx once and binds the decoder entry points. It is called by
// New; calling it directly tells whether video decoding is available.
func Load() error {
	libOnce.Do(func() {
		libErr = load()
	})
	return libErr
}

func load() error {
	var errs []error
	for _, path := range libraryPaths() {
		lib, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := bindSymbols(lib); err != nil {
			purego.Dlclose(lib)
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		return nil
	}
	return fmt.Errorf("vpx: libvpx not found: %w", errors.Join(errs...))
}

func libraryPaths() []string {
	var paths []string
	if p := os.Getenv(LibraryEnv); p != "" {
		paths = append(paths, p)
	}
	if runtime.GOOS == "darwin" {
		return append(paths,
			"libvpx.dylib",
			"/opt/homebrew/lib/libvpx.dylib",
			"/usr/local/lib/libvpx.dylib",
		)
	}
	return append(paths,
		"libvpx.so",
		"libvpx.so.9",
		"libvpx.so.8",
		"libvpx.so.7",
		"libvpx.so.6",
	)
}

func bindSymbols(lib uintptr) error {
	symbols := []struct {
		fptr any
		name string
	}{
		{&vpxCodecVP8Dx, "vpx_codec_vp8_dx"},
		{&vpxCodecVP9Dx, "vpx_codec_vp9_dx"},
		{&vpxCodecDecInitVer, "vpx_codec_dec_init_ver"},
		{&vpxCodecDecode, "vpx_codec_decode"},
		{&vpxCodecGetFrame, "vpx_codec_get_frame"},
		{&vpxCodecDestroy, "vpx_codec_destroy"},
		{&vpxCodecGetCaps, "vpx_codec_get_caps"},
		{&vpxCodecErrToString, "vpx_codec_err_to_string"},
	}
	for _, s := range symbols {
		sym, err := purego.Dlsym(lib, s.name)
		if err != nil {
			return err
		}
		purego.RegisterFunc(s.fptr, sym)
	}
	return nil
}
