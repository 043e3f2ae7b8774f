//go:build !sodium_cgo && (darwin || freebsd || linux)

package sodium

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// goString copies a NUL-terminated string owned by the native library.
func goString(p unsafe.Pointer) string {
	return unix.BytePtrToString((*byte)(p))
}
