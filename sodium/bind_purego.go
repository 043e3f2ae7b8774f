//go:build !sodium_cgo && (darwin || freebsd || linux || windows)

package sodium

import (
	"runtime"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/skiptools/skip-salt/internal/dylib"
)

// puregoBinding calls libsodium through Go function values registered with
// purego. No cgo is involved.
type puregoBinding struct {
	present map[string]bool

	sodiumInit       func() int32
	versionString    func() unsafe.Pointer
	versionMajor     func() int32
	versionMinor     func() int32
	random           func() uint32
	uniform          func(upperBound uint32) uint32
	buf              func(buf unsafe.Pointer, size uintptr)
	bufDeterministic func(buf unsafe.Pointer, size uintptr, seed unsafe.Pointer)
	seedbytes        func() uintptr
	stirFn           func()
	memzeroFn        func(pnt unsafe.Pointer, size uintptr)
	memcmpFn         func(b1, b2 unsafe.Pointer, size uintptr) int32
	compareFn        func(b1, b2 unsafe.Pointer, size uintptr) int32
	minimalFn        func() int32
}

const backendName = "purego"

func bind(h dylib.Handle) (backend, error) {
	b := &puregoBinding{present: make(map[string]bool)}
	entries := []struct {
		name string
		fptr any
	}{
		{symInit, &b.sodiumInit},
		{symVersionString, &b.versionString},
		{symVersionMajor, &b.versionMajor},
		{symVersionMinor, &b.versionMinor},
		{symRandom, &b.random},
		{symUniform, &b.uniform},
		{symBuf, &b.buf},
		{symBufDeterministic, &b.bufDeterministic},
		{symSeedBytes, &b.seedbytes},
		{symStir, &b.stirFn},
		{symMemzero, &b.memzeroFn},
		{symMemcmp, &b.memcmpFn},
		{symCompare, &b.compareFn},
		{symMinimal, &b.minimalFn},
	}
	for _, e := range entries {
		addr, err := lookup(h, e.name)
		if err != nil {
			return nil, err
		}
		if addr == 0 {
			continue
		}
		purego.RegisterFunc(e.fptr, addr)
		b.present[e.name] = true
	}
	return b, nil
}

func (b *puregoBinding) has(symbol string) bool { return b.present[symbol] }

func (b *puregoBinding) Init() int32 { return b.sodiumInit() }

func (b *puregoBinding) VersionString() (string, bool) {
	p := b.versionString()
	if p == nil {
		return "", false
	}
	return goString(p), true
}

func (b *puregoBinding) LibraryVersionMajor() int32 { return b.versionMajor() }

func (b *puregoBinding) LibraryVersionMinor() int32 { return b.versionMinor() }

func (b *puregoBinding) RandomUint32() uint32 { return b.random() }

func (b *puregoBinding) RandomUniform(upperBound uint32) uint32 { return b.uniform(upperBound) }

func (b *puregoBinding) randomBytes(buf []byte) {
	b.buf(bytesPtr(buf), uintptr(len(buf)))
	runtime.KeepAlive(buf)
}

func (b *puregoBinding) randomBytesDeterministic(buf []byte, seed *[SeedSize]byte) {
	b.bufDeterministic(bytesPtr(buf), uintptr(len(buf)), unsafe.Pointer(seed))
	runtime.KeepAlive(buf)
	runtime.KeepAlive(seed)
}

func (b *puregoBinding) seedBytes() int { return int(b.seedbytes()) }

func (b *puregoBinding) stir() { b.stirFn() }

func (b *puregoBinding) memzero(buf []byte) {
	b.memzeroFn(bytesPtr(buf), uintptr(len(buf)))
	runtime.KeepAlive(buf)
}

func (b *puregoBinding) memcmp(x, y []byte) int32 {
	rc := b.memcmpFn(bytesPtr(x), bytesPtr(y), uintptr(len(x)))
	runtime.KeepAlive(x)
	runtime.KeepAlive(y)
	return rc
}

func (b *puregoBinding) compare(x, y []byte) int32 {
	rc := b.compareFn(bytesPtr(x), bytesPtr(y), uintptr(len(x)))
	runtime.KeepAlive(x)
	runtime.KeepAlive(y)
	return rc
}

func (b *puregoBinding) minimal() int32 { return b.minimalFn() }

func bytesPtr(b []byte) unsafe.Pointer { return unsafe.Pointer(unsafe.SliceData(b)) }
