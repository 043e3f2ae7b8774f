//go:build (darwin || freebsd || linux) && !sodium_cgo

package dylib

import (
	"fmt"

	"github.com/ebitengine/purego"
)

type puregoHandle struct {
	path   string
	handle uintptr
}

// NativeLoader returns a loader backed by the system dynamic linker via purego.
// No cgo toolchain is needed.
func NativeLoader() Loader {
	return LoaderFunc(openPurego)
}

func openPurego(name string) (Handle, error) {
	h, err := purego.Dlopen(name, purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		return nil, fmt.Errorf("dlopen %s: %w", name, err)
	}
	return &puregoHandle{path: name, handle: h}, nil
}

func (h *puregoHandle) Path() string { return h.path }

func (h *puregoHandle) Symbol(name string) (uintptr, error) {
	addr, err := purego.Dlsym(h.handle, name)
	if err != nil {
		return 0, &SymbolError{Symbol: name, Path: h.path, Err: err}
	}
	if addr == 0 {
		return 0, &SymbolError{Symbol: name, Path: h.path}
	}
	return addr, nil
}

func (h *puregoHandle) Close() error {
	if h.handle == 0 {
		return nil
	}
	err := purego.Dlclose(h.handle)
	h.handle = 0
	return err
}
