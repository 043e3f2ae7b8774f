//go:build !sodium_cgo && !darwin && !freebsd && !linux && !windows

package sodium

import (
	"fmt"
	"runtime"

	"github.com/skiptools/skip-salt/internal/dylib"
)

const backendName = "unsupported"

func bind(h dylib.Handle) (backend, error) {
	return nil, fmt.Errorf("bind %s: no native call support on %s", h.Path(), runtime.GOOS)
}
