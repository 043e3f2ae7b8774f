//go:build windows

package dylib

import (
	"fmt"
	"path/filepath"

	"golang.org/x/sys/windows"
)

type windowsHandle struct {
	path   string
	module windows.Handle
}

// NativeLoader returns a loader backed by LoadLibraryEx.
func NativeLoader() Loader {
	return LoaderFunc(openWindows)
}

func openWindows(name string) (Handle, error) {
	var (
		mod windows.Handle
		err error
	)
	if filepath.IsAbs(name) {
		// Dependencies of an explicit path resolve next to it first.
		mod, err = windows.LoadLibraryEx(name, 0,
			windows.LOAD_LIBRARY_SEARCH_DLL_LOAD_DIR|windows.LOAD_LIBRARY_SEARCH_DEFAULT_DIRS)
	} else {
		mod, err = windows.LoadLibrary(name)
	}
	if err != nil {
		return nil, fmt.Errorf("LoadLibrary %s: %w", name, err)
	}
	return &windowsHandle{path: name, module: mod}, nil
}

func (h *windowsHandle) Path() string { return h.path }

func (h *windowsHandle) Symbol(name string) (uintptr, error) {
	addr, err := windows.GetProcAddress(h.module, name)
	if err != nil {
		return 0, &SymbolError{Symbol: name, Path: h.path, Err: err}
	}
	return addr, nil
}

func (h *windowsHandle) Close() error {
	if h.module == 0 {
		return nil
	}
	err := windows.FreeLibrary(h.module)
	h.module = 0
	return err
}
