// Package sodium binds the native libsodium shared library at run time.
//
// The package implements no cryptography itself. It finds libsodium on the
// current platform, checks the required entry points, calls sodium_init once,
// and then forwards typed calls to the library:
//
//	lib, err := sodium.Load()
//	if err != nil {
//		// errors.Is(err, sodium.ErrLibraryNotFound): libsodium is not installed;
//		// the error lists every name and path that was tried.
//		log.Fatal(err)
//	}
//	v := lib.Version()
//	n := lib.RandomUniform(100)
//
// Load resolves the process-wide Library once; the package-level functions
// (Init, VersionString, RandomUint32, ...) use it and return
// ErrLibraryNotLoaded until Load has succeeded. Open resolves a separate
// Library from an explicit Config.
//
// # Search
//
// Each candidate is tried by name through the platform's library search. If
// that fails it is tried from each directory of the widened search path: the
// candidate's own directories, then Config.ExtraDirs, then the entries of the
// SALT_LIBRARY_PATH environment variable. The variable is rewritten with
// Config.ExtraDirs prepended.
//
// # Backends
//
// By default entry points are called through purego, so cgo is not needed.
// Building with -tags sodium_cgo switches both loading and calling to cgo.
//
// # Environment
//
//	SALT_SODIUM_PATH      explicit library path, tried first
//	SALT_SODIUM_DIRS      extra install directories
//	SALT_SODIUM_SHA3_256  expected SHA3-256 of the library file
//	SALT_SODIUM_STRICT    boolean: require the pin, fail on sodium_init < 0
//	SALT_LOG_LEVEL        level of this package's log lines (default warn)
package sodium
