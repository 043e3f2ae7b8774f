package sodium

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/skiptools/skip-salt/internal/dylib"
)

// Library is a resolved, bound and initialized libsodium. It is only obtained
// from Open or Load and is safe for concurrent use. The underlying handle is
// never released.
type Library struct {
	handle     dylib.Handle
	b          backend
	initStatus int32
}

var _ Binding = (*Library)(nil)

// Open resolves libsodium according to cfg, binds its entry points and calls
// sodium_init once. Each call runs its own resolution; use Load for the
// process-wide instance.
//
// A negative sodium_init status is recorded in InitStatus and only fails Open
// when cfg.Strict is set.
func Open(cfg Config) (*Library, error) {
	return open(cfg, dylib.NativeLoader(), bind, libraryLogger(cfg.LogLevel))
}

// libraryLogger returns a logger that writes where the standard logger does,
// at level rather than at the standard logger's level. Unparsable levels fall
// back to warn; ValidateConfig reports them.
func libraryLogger(level string) *logrus.Logger {
	std := logrus.StandardLogger()
	l := logrus.New()
	l.SetOutput(std.Out)
	l.SetFormatter(std.Formatter)
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.WarnLevel
	}
	l.SetLevel(lvl)
	return l
}

type binder func(dylib.Handle) (backend, error)

func open(cfg Config, loader dylib.Loader, bind binder, logger logrus.FieldLogger) (*Library, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	h, err := cfg.resolver(loader, logger).Resolve()
	if err != nil {
		return nil, err
	}
	b, err := bind(h)
	if err != nil {
		_ = h.Close()
		return nil, err
	}

	lib := &Library{handle: h, b: b}
	lib.initStatus = b.Init()
	log := logger.WithFields(logrus.Fields{
		"package":     "sodium",
		"path":        h.Path(),
		"backend":     backendName,
		"init_status": lib.initStatus,
	})
	if lib.initStatus < 0 {
		if cfg.Strict {
			_ = h.Close()
			return nil, &CallError{Op: symInit, Status: lib.initStatus}
		}
		log.Warn("sodium_init failed")
		return lib, nil
	}
	v := lib.Version()
	log.WithFields(logrus.Fields{
		"version": v.String,
		"major":   v.Major,
		"minor":   v.Minor,
	}).Debug("libsodium ready")
	return lib, nil
}

// Path is the name or path the library was loaded from.
func (l *Library) Path() string { return l.handle.Path() }

// Backend names the binding strategy compiled in: "purego" or "cgo".
func (l *Library) Backend() string { return backendName }

// InitStatus is the result of the sodium_init call made by Open.
func (l *Library) InitStatus() int32 { return l.initStatus }

// Version queries the library's version on each call.
func (l *Library) Version() VersionInfo { return versionOf(l.bound()) }

// Has reports whether an optional entry point was found.
func (l *Library) Has(symbol string) bool { return l.bound().has(symbol) }

func (l *Library) Init() int32 { return l.bound().Init() }

func (l *Library) VersionString() (string, bool) { return l.bound().VersionString() }

func (l *Library) LibraryVersionMajor() int32 { return l.bound().LibraryVersionMajor() }

func (l *Library) LibraryVersionMinor() int32 { return l.bound().LibraryVersionMinor() }

func (l *Library) RandomUint32() uint32 { return l.bound().RandomUint32() }

// RandomUniform returns a value in [0, upperBound) without modulo bias. An
// upperBound of 0 is forwarded as is; libsodium returns 0 for it.
func (l *Library) RandomUniform(upperBound uint32) uint32 {
	return l.bound().RandomUniform(upperBound)
}

// RandomBytes fills buf from the library's CSPRNG.
func (l *Library) RandomBytes(buf []byte) error {
	b, err := l.optional(symBuf)
	if err != nil {
		return err
	}
	b.randomBytes(buf)
	return nil
}

// RandomBytesDeterministic fills buf with a stream derived from a SeedSize-byte seed.
func (l *Library) RandomBytesDeterministic(buf, seed []byte) error {
	b, err := l.optional(symBufDeterministic)
	if err != nil {
		return err
	}
	if len(seed) != SeedSize {
		return &CallError{Op: symBufDeterministic, Detail: "seed must be 32 bytes"}
	}
	var s [SeedSize]byte
	copy(s[:], seed)
	b.randomBytesDeterministic(buf, &s)
	return nil
}

// SeedBytes reports randombytes_seedbytes.
func (l *Library) SeedBytes() (int, error) {
	b, err := l.optional(symSeedBytes)
	if err != nil {
		return 0, err
	}
	return b.seedBytes(), nil
}

// Stir reseeds the library's generator.
func (l *Library) Stir() error {
	b, err := l.optional(symStir)
	if err != nil {
		return err
	}
	b.stir()
	return nil
}

// Memzero overwrites buf with zeros in a way the compiler cannot elide.
func (l *Library) Memzero(buf []byte) error {
	b, err := l.optional(symMemzero)
	if err != nil {
		return err
	}
	if len(buf) > 0 {
		b.memzero(buf)
	}
	return nil
}

// Equal compares x and y in constant time. Slices of different lengths are
// unequal.
func (l *Library) Equal(x, y []byte) (bool, error) {
	b, err := l.optional(symMemcmp)
	if err != nil {
		return false, err
	}
	if len(x) != len(y) {
		return false, nil
	}
	if len(x) == 0 {
		return true, nil
	}
	return b.memcmp(x, y) == 0, nil
}

// Compare orders x and y as little-endian numbers in constant time, returning
// -1, 0 or 1. ok is false when the lengths differ.
func (l *Library) Compare(x, y []byte) (cmp int, ok bool, err error) {
	b, err := l.optional(symCompare)
	if err != nil {
		return 0, false, err
	}
	if len(x) != len(y) {
		return 0, false, nil
	}
	if len(x) == 0 {
		return 0, true, nil
	}
	return int(b.compare(x, y)), true, nil
}

// Minimal reports whether the library was built in minimal mode.
func (l *Library) Minimal() (bool, error) {
	b, err := l.optional(symMinimal)
	if err != nil {
		return false, err
	}
	return b.minimal() == 1, nil
}

func (l *Library) bound() backend {
	if l == nil || l.b == nil {
		panic(ErrLibraryNotLoaded)
	}
	return l.b
}

func (l *Library) optional(symbol string) (backend, error) {
	b := l.bound()
	if !b.has(symbol) {
		return nil, &SymbolError{Symbol: symbol, Path: l.Path()}
	}
	return b, nil
}
