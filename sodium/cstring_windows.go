//go:build !sodium_cgo && windows

package sodium

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// goString copies a NUL-terminated string owned by the native library.
func goString(p unsafe.Pointer) string {
	return windows.BytePtrToString((*byte)(p))
}
