package dylib

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrLibraryNotFound is matched by every *ResolveError.
	ErrLibraryNotFound = errors.New("native library not found")
	// ErrSymbolNotFound is matched by *SymbolError.
	ErrSymbolNotFound = errors.New("native symbol not found")
	// ErrPinMismatch means the library file does not hash to the pinned SHA3-256.
	ErrPinMismatch = errors.New("native library hash mismatch")
	// ErrPinUnverifiable means a pin is required but the load went through the
	// platform search, so there is no file to hash.
	ErrPinUnverifiable = errors.New("native library pin cannot be verified for a bare library name")
)

// SymbolError reports a missing entry point in a loaded library.
type SymbolError struct {
	Symbol string
	Path   string
	Err    error
}

func (e *SymbolError) Error() string {
	msg := fmt.Sprintf("symbol %s not found in %s", e.Symbol, e.Path)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SymbolError) Is(target error) bool { return target == ErrSymbolNotFound }

func (e *SymbolError) Unwrap() error { return e.Err }

// Attempt records one load attempt made by the resolver.
type Attempt struct {
	Candidate string
	Path      string
	Tier      Tier
	Err       error
}

func (a Attempt) String() string {
	return fmt.Sprintf("%s (%s, %s): %v", a.Path, a.Candidate, a.Tier, a.Err)
}

// ResolveError is returned when no candidate produced a usable library.
type ResolveError struct {
	Attempts []Attempt
}

func (e *ResolveError) Error() string {
	if len(e.Attempts) == 0 {
		return ErrLibraryNotFound.Error() + ": no candidates configured"
	}
	var b strings.Builder
	b.WriteString(ErrLibraryNotFound.Error())
	b.WriteString("; tried ")
	b.WriteString(strings.Join(e.Candidates(), ", "))
	for _, a := range e.Attempts {
		b.WriteString("\n  ")
		b.WriteString(a.String())
	}
	return b.String()
}

func (e *ResolveError) Is(target error) bool { return target == ErrLibraryNotFound }

func (e *ResolveError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		if a.Err != nil {
			errs = append(errs, a.Err)
		}
	}
	return errs
}

// Candidates returns the distinct candidate names in attempt order.
func (e *ResolveError) Candidates() []string {
	var out []string
	seen := make(map[string]struct{})
	for _, a := range e.Attempts {
		if _, ok := seen[a.Candidate]; ok {
			continue
		}
		seen[a.Candidate] = struct{}{}
		out = append(out, a.Candidate)
	}
	return out
}

// Paths returns every name or path handed to the loader, in attempt order.
func (e *ResolveError) Paths() []string {
	out := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		out = append(out, a.Path)
	}
	return out
}
