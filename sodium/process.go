package sodium

import (
	"sync"
	"sync/atomic"
)

// processLibrary is the process-wide Library. It is resolved at most once; a
// failed resolution is final.
type processLibrary struct {
	open func() (*Library, error)

	once sync.Once
	done atomic.Bool
	lib  *Library
	err  error
}

func (p *processLibrary) load() (*Library, error) {
	p.once.Do(func() {
		p.lib, p.err = p.open()
		p.done.Store(true)
	})
	return p.lib, p.err
}

func (p *processLibrary) loaded() (*Library, error) {
	if !p.done.Load() {
		return nil, ErrLibraryNotLoaded
	}
	if p.err != nil {
		return nil, notLoaded(p.err)
	}
	return p.lib, nil
}

var process = &processLibrary{
	open: func() (*Library, error) { return Open(ConfigFromEnv()) },
}

// Load resolves and initializes the process-wide Library using ConfigFromEnv.
// Only the first call does any work; concurrent callers wait for it and share
// its result. sodium_init has completed before any caller returns.
func Load() (*Library, error) { return process.load() }

// Loaded returns the process-wide Library without triggering resolution. It
// returns an error matching ErrLibraryNotLoaded until Load has succeeded.
func Loaded() (*Library, error) { return process.loaded() }

// Init forwards sodium_init on the process-wide Library.
func Init() (int32, error) {
	lib, err := Loaded()
	if err != nil {
		return 0, err
	}
	return lib.Init(), nil
}

// VersionString forwards sodium_version_string on the process-wide Library.
// ok is false when the library returns NULL.
func VersionString() (v string, ok bool, err error) {
	lib, err := Loaded()
	if err != nil {
		return "", false, err
	}
	v, ok = lib.VersionString()
	return v, ok, nil
}

func LibraryVersionMajor() (int32, error) {
	lib, err := Loaded()
	if err != nil {
		return 0, err
	}
	return lib.LibraryVersionMajor(), nil
}

func LibraryVersionMinor() (int32, error) {
	lib, err := Loaded()
	if err != nil {
		return 0, err
	}
	return lib.LibraryVersionMinor(), nil
}

// RandomUint32 forwards randombytes_random on the process-wide Library.
func RandomUint32() (uint32, error) {
	lib, err := Loaded()
	if err != nil {
		return 0, err
	}
	return lib.RandomUint32(), nil
}

// RandomUniform forwards randombytes_uniform on the process-wide Library.
func RandomUniform(upperBound uint32) (uint32, error) {
	lib, err := Loaded()
	if err != nil {
		return 0, err
	}
	return lib.RandomUniform(upperBound), nil
}
