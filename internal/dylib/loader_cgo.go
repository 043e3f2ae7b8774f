//go:build (darwin || freebsd || linux) && sodium_cgo

package dylib

/*
#cgo linux LDFLAGS: -ldl
#include <dlfcn.h>
#include <stdint.h>
#include <stdlib.h>

static void* salt_dlopen(const char* path) {
	return dlopen(path, RTLD_NOW | RTLD_LOCAL);
}

static uintptr_t salt_dlsym(void* handle, const char* name) {
	dlerror();
	return (uintptr_t)dlsym(handle, name);
}

static const char* salt_dlerror(void) {
	return dlerror();
}

static int salt_dlclose(void* handle) {
	return dlclose(handle);
}
*/
import "C"

import (
	"errors"
	"fmt"
	"unsafe"
)

type cgoHandle struct {
	path   string
	handle unsafe.Pointer
}

// NativeLoader returns a loader that calls dlopen through cgo.
func NativeLoader() Loader {
	return LoaderFunc(openCgo)
}

func openCgo(name string) (Handle, error) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	h := C.salt_dlopen(cname)
	if h == nil {
		return nil, fmt.Errorf("dlopen %s: %w", name, lastDlerror())
	}
	return &cgoHandle{path: name, handle: h}, nil
}

func (h *cgoHandle) Path() string { return h.path }

func (h *cgoHandle) Symbol(name string) (uintptr, error) {
	if h.handle == nil {
		return 0, &SymbolError{Symbol: name, Path: h.path, Err: errors.New("library closed")}
	}
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	addr := uintptr(C.salt_dlsym(h.handle, cname))
	if addr == 0 {
		return 0, &SymbolError{Symbol: name, Path: h.path, Err: lastDlerror()}
	}
	return addr, nil
}

func (h *cgoHandle) Close() error {
	if h.handle == nil {
		return nil
	}
	rc := C.salt_dlclose(h.handle)
	h.handle = nil
	if rc != 0 {
		return fmt.Errorf("dlclose %s: %w", h.path, lastDlerror())
	}
	return nil
}

func lastDlerror() error {
	msg := C.salt_dlerror()
	if msg == nil {
		return errors.New("unknown dynamic linker error")
	}
	return errors.New(C.GoString(msg))
}
