//go:build !darwin && !freebsd && !linux && !windows

package dylib

import (
	"fmt"
	"runtime"
)

// NativeLoader returns a loader that always fails: there is no supported
// dynamic linker binding for this GOOS.
func NativeLoader() Loader {
	return LoaderFunc(func(name string) (Handle, error) {
		return nil, fmt.Errorf("open %s: dynamic loading is not supported on %s", name, runtime.GOOS)
	})
}
