//go:build sodium_cgo

package sodium

/*
#include <stddef.h>
#include <stdint.h>

static int salt_call_int(uintptr_t fn) {
	return ((int (*)(void))fn)();
}

static const char* salt_call_cstr(uintptr_t fn) {
	return ((const char* (*)(void))fn)();
}

static uint32_t salt_call_u32(uintptr_t fn) {
	return ((uint32_t (*)(void))fn)();
}

static uint32_t salt_call_u32_u32(uintptr_t fn, uint32_t a) {
	return ((uint32_t (*)(const uint32_t))fn)(a);
}

static size_t salt_call_size(uintptr_t fn) {
	return ((size_t (*)(void))fn)();
}

static void salt_call_void(uintptr_t fn) {
	((void (*)(void))fn)();
}

static void salt_call_buf(uintptr_t fn, void* p, size_t n) {
	((void (*)(void* const, const size_t))fn)(p, n);
}

static void salt_call_buf_seed(uintptr_t fn, void* p, size_t n, const unsigned char* seed) {
	((void (*)(void* const, const size_t, const unsigned char*))fn)(p, n, seed);
}

static int salt_call_cmp(uintptr_t fn, const void* a, const void* b, size_t n) {
	return ((int (*)(const void*, const void*, size_t))fn)(a, b, n);
}
*/
import "C"

import (
	"unsafe"

	"github.com/skiptools/skip-salt/internal/dylib"
)

// cgoBinding calls libsodium through C trampolines over the resolved
// function pointers.
type cgoBinding struct {
	addrs map[string]C.uintptr_t
}

const backendName = "cgo"

func bind(h dylib.Handle) (backend, error) {
	b := &cgoBinding{addrs: make(map[string]C.uintptr_t)}
	for _, names := range [][]string{RequiredSymbols, OptionalSymbols} {
		for _, name := range names {
			addr, err := lookup(h, name)
			if err != nil {
				return nil, err
			}
			if addr != 0 {
				b.addrs[name] = C.uintptr_t(addr)
			}
		}
	}
	return b, nil
}

func (b *cgoBinding) has(symbol string) bool {
	_, ok := b.addrs[symbol]
	return ok
}

func (b *cgoBinding) Init() int32 { return int32(C.salt_call_int(b.addrs[symInit])) }

func (b *cgoBinding) VersionString() (string, bool) {
	p := C.salt_call_cstr(b.addrs[symVersionString])
	if p == nil {
		return "", false
	}
	return C.GoString(p), true
}

func (b *cgoBinding) LibraryVersionMajor() int32 {
	return int32(C.salt_call_int(b.addrs[symVersionMajor]))
}

func (b *cgoBinding) LibraryVersionMinor() int32 {
	return int32(C.salt_call_int(b.addrs[symVersionMinor]))
}

func (b *cgoBinding) RandomUint32() uint32 { return uint32(C.salt_call_u32(b.addrs[symRandom])) }

func (b *cgoBinding) RandomUniform(upperBound uint32) uint32 {
	return uint32(C.salt_call_u32_u32(b.addrs[symUniform], C.uint32_t(upperBound)))
}

func (b *cgoBinding) randomBytes(buf []byte) {
	C.salt_call_buf(b.addrs[symBuf], bytesPtr(buf), C.size_t(len(buf)))
}

func (b *cgoBinding) randomBytesDeterministic(buf []byte, seed *[SeedSize]byte) {
	C.salt_call_buf_seed(b.addrs[symBufDeterministic], bytesPtr(buf), C.size_t(len(buf)),
		(*C.uchar)(unsafe.Pointer(&seed[0])))
}

func (b *cgoBinding) seedBytes() int { return int(C.salt_call_size(b.addrs[symSeedBytes])) }

func (b *cgoBinding) stir() { C.salt_call_void(b.addrs[symStir]) }

func (b *cgoBinding) memzero(buf []byte) {
	C.salt_call_buf(b.addrs[symMemzero], bytesPtr(buf), C.size_t(len(buf)))
}

func (b *cgoBinding) memcmp(x, y []byte) int32 {
	return int32(C.salt_call_cmp(b.addrs[symMemcmp], bytesPtr(x), bytesPtr(y), C.size_t(len(x))))
}

func (b *cgoBinding) compare(x, y []byte) int32 {
	return int32(C.salt_call_cmp(b.addrs[symCompare], bytesPtr(x), bytesPtr(y), C.size_t(len(x))))
}

func (b *cgoBinding) minimal() int32 { return int32(C.salt_call_int(b.addrs[symMinimal])) }

func bytesPtr(b []byte) unsafe.Pointer { return unsafe.Pointer(unsafe.SliceData(b)) }
