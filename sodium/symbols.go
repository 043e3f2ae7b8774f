package sodium

import (
	"errors"
	"slices"

	"github.com/skiptools/skip-salt/internal/dylib"
)

// Native entry points.
const (
	symInit             = "sodium_init"
	symVersionString    = "sodium_version_string"
	symVersionMajor     = "sodium_library_version_major"
	symVersionMinor     = "sodium_library_version_minor"
	symRandom           = "randombytes_random"
	symUniform          = "randombytes_uniform"
	symBuf              = "randombytes_buf"
	symBufDeterministic = "randombytes_buf_deterministic"
	symSeedBytes        = "randombytes_seedbytes"
	symStir             = "randombytes_stir"
	symMemzero          = "sodium_memzero"
	symMemcmp           = "sodium_memcmp"
	symCompare          = "sodium_compare"
	symMinimal          = "sodium_library_minimal"
)

// RequiredSymbols must all be exported by a library for it to be accepted.
var RequiredSymbols = []string{
	symInit,
	symVersionString,
	symVersionMajor,
	symVersionMinor,
	symRandom,
	symUniform,
}

// OptionalSymbols are bound when present. Calls to an absent one return a
// *SymbolError.
var OptionalSymbols = []string{
	symBuf,
	symBufDeterministic,
	symSeedBytes,
	symStir,
	symMemzero,
	symMemcmp,
	symCompare,
	symMinimal,
}

// SeedSize is the seed length of randombytes_buf_deterministic.
const SeedSize = 32

// lookup returns the address of name in h. A missing optional symbol yields 0
// and no error; a missing required symbol is an error.
func lookup(h dylib.Handle, name string) (uintptr, error) {
	addr, err := h.Symbol(name)
	if err == nil {
		return addr, nil
	}
	if !slices.Contains(RequiredSymbols, name) {
		return 0, nil
	}
	if !errors.Is(err, ErrSymbolNotFound) {
		err = &SymbolError{Symbol: name, Path: h.Path(), Err: err}
	}
	return 0, err
}
