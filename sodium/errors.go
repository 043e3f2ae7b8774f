package sodium

import (
	"errors"
	"fmt"

	"github.com/skiptools/skip-salt/internal/dylib"
)

var (
	// ErrLibraryNotFound: no candidate produced a loadable library.
	ErrLibraryNotFound = dylib.ErrLibraryNotFound
	// ErrSymbolNotFound: a library lacks an entry point.
	ErrSymbolNotFound = dylib.ErrSymbolNotFound
	// ErrPinMismatch: the library file does not match the configured SHA3-256.
	ErrPinMismatch = dylib.ErrPinMismatch
	// ErrPinUnverifiable: strict pinning refused a load through the platform search.
	ErrPinUnverifiable = dylib.ErrPinUnverifiable
	// ErrLibraryNotLoaded: an operation ran before Load succeeded.
	ErrLibraryNotLoaded = errors.New("native library not loaded")
)

type (
	// ResolveError lists every attempt made before resolution gave up.
	ResolveError = dylib.ResolveError
	// Attempt is one entry of a ResolveError.
	Attempt = dylib.Attempt
	// SymbolError names a missing entry point.
	SymbolError = dylib.SymbolError
)

// CallError is a failure status returned by a native call, or a call refused
// before reaching the library because its arguments could not be valid.
type CallError struct {
	Op     string
	Status int32
	Detail string
}

func (e *CallError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Detail)
	}
	return fmt.Sprintf("%s failed: status=%d", e.Op, e.Status)
}

func notLoaded(cause error) error {
	if cause == nil {
		return ErrLibraryNotLoaded
	}
	return fmt.Errorf("%w: %w", ErrLibraryNotLoaded, cause)
}
