package sodium

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skiptools/skip-salt/internal/dylib"
)

// abcSHA3 is SHA3-256("abc").
const abcSHA3 = "3a985da74fe225b2045c172d6bd390bd855f086e3e9d525b46bfe24511431532"

type fakeHandle struct {
	path   string
	closed bool
}

func (h *fakeHandle) Path() string { return h.path }

func (h *fakeHandle) Symbol(name string) (uintptr, error) { return 0x1000, nil }

func (h *fakeHandle) Close() error {
	h.closed = true
	return nil
}

// fakeBackend mimics the observable behavior of libsodium.
type fakeBackend struct {
	missing    map[string]bool
	initStatus int32
	version    string
	noVersion  bool
	major      int32
	minor      int32
	next       uint32
	bounds     []uint32
	inits      int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{version: "1.0.20", major: 26, minor: 2, missing: map[string]bool{}}
}

func (f *fakeBackend) has(symbol string) bool { return !f.missing[symbol] }

func (f *fakeBackend) Init() int32 {
	f.inits++
	if f.initStatus < 0 || f.inits == 1 {
		return f.initStatus
	}
	return 1
}

func (f *fakeBackend) VersionString() (string, bool) {
	if f.noVersion {
		return "", false
	}
	return f.version, true
}

func (f *fakeBackend) LibraryVersionMajor() int32 { return f.major }
func (f *fakeBackend) LibraryVersionMinor() int32 { return f.minor }

func (f *fakeBackend) RandomUint32() uint32 {
	f.next++
	return f.next
}

func (f *fakeBackend) RandomUniform(upperBound uint32) uint32 {
	f.bounds = append(f.bounds, upperBound)
	if upperBound < 2 {
		return 0
	}
	f.next++
	return f.next % upperBound
}

func (f *fakeBackend) randomBytes(buf []byte) {
	for i := range buf {
		buf[i] = byte(f.RandomUint32())
	}
}

func (f *fakeBackend) randomBytesDeterministic(buf []byte, seed *[SeedSize]byte) {
	for i := range buf {
		buf[i] = seed[i%SeedSize] ^ byte(i)
	}
}

func (f *fakeBackend) seedBytes() int { return SeedSize }
func (f *fakeBackend) stir()          {}

func (f *fakeBackend) memzero(buf []byte) { clear(buf) }

func (f *fakeBackend) memcmp(a, b []byte) int32 {
	if bytes.Equal(a, b) {
		return 0
	}
	return -1
}

func (f *fakeBackend) compare(a, b []byte) int32 {
	for i := len(a) - 1; i >= 0; i-- {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	return 0
}

func (f *fakeBackend) minimal() int32 { return 0 }

func newFakeLibrary(fb *fakeBackend) *Library {
	return &Library{handle: &fakeHandle{path: "/fake/libsodium.so"}, b: fb}
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func fakeBinder(fb *fakeBackend) binder {
	return func(dylib.Handle) (backend, error) { return fb, nil }
}

// installLoader returns a loader that only knows path.
func installLoader(path string, h *fakeHandle) dylib.Loader {
	return dylib.LoaderFunc(func(name string) (dylib.Handle, error) {
		if name != path {
			return nil, errors.New("cannot open shared object file")
		}
		return h, nil
	})
}

func writeLibraryFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "libsodium.so")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0o600))
	return path
}

func fakeConfig(path string) Config {
	return Config{
		LibraryPath:   path,
		SearchPathEnv: "SALT_TEST_SODIUM_LIBRARY_PATH",
		LogLevel:      "info",
	}
}

func TestOpenInitializesOnce(t *testing.T) {
	h := &fakeHandle{path: "/fake/libsodium.so"}
	fb := newFakeBackend()

	lib, err := open(fakeConfig(h.path), installLoader(h.path, h), fakeBinder(fb), quietLogger())
	require.NoError(t, err)
	assert.Equal(t, 1, fb.inits)
	assert.Equal(t, int32(0), lib.InitStatus())
	assert.Equal(t, h.path, lib.Path())
	assert.Equal(t, backendName, lib.Backend())

	// A later explicit sodium_init reports "already initialized".
	assert.Equal(t, int32(1), lib.Init())
}

func TestOpenNotFound(t *testing.T) {
	t.Setenv("SALT_TEST_SODIUM_LIBRARY_PATH", "")
	h := &fakeHandle{path: "/fake/libsodium.so"}
	cfg := fakeConfig("")
	cfg.Candidates = []Candidate{{Name: "sodium", File: "libsodium-missing.so"}}

	_, err := open(cfg, installLoader(h.path, h), fakeBinder(newFakeBackend()), quietLogger())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLibraryNotFound))

	var re *ResolveError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, []string{"sodium"}, re.Candidates())
	assert.Contains(t, re.Paths(), "libsodium-missing.so")
}

func TestOpenRejectsInvalidConfig(t *testing.T) {
	cfg := fakeConfig("/fake/libsodium.so")
	cfg.LogLevel = "loud"
	_, err := open(cfg, installLoader("/fake/libsodium.so", &fakeHandle{}), fakeBinder(newFakeBackend()), quietLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log_level")
}

func TestOpenBindFailureClosesHandle(t *testing.T) {
	h := &fakeHandle{path: "/fake/libsodium.so"}
	boom := errors.New("bind failed")
	_, err := open(fakeConfig(h.path), installLoader(h.path, h),
		func(dylib.Handle) (backend, error) { return nil, boom }, quietLogger())
	require.ErrorIs(t, err, boom)
	assert.True(t, h.closed)
}

func TestOpenNegativeInitIsRecorded(t *testing.T) {
	h := &fakeHandle{path: "/fake/libsodium.so"}
	fb := newFakeBackend()
	fb.initStatus = -1

	lib, err := open(fakeConfig(h.path), installLoader(h.path, h), fakeBinder(fb), quietLogger())
	require.NoError(t, err)
	assert.Equal(t, int32(-1), lib.InitStatus())
	assert.False(t, h.closed)
}

func TestOpenStrictNegativeInitFails(t *testing.T) {
	path := writeLibraryFile(t)
	h := &fakeHandle{path: path}
	fb := newFakeBackend()
	fb.initStatus = -1
	cfg := fakeConfig(path)
	cfg.SHA3_256 = abcSHA3
	cfg.Strict = true

	_, err := open(cfg, installLoader(path, h), fakeBinder(fb), quietLogger())
	var ce *CallError
	require.True(t, errors.As(err, &ce), "got %v", err)
	assert.Equal(t, "sodium_init", ce.Op)
	assert.Equal(t, int32(-1), ce.Status)
	assert.True(t, h.closed)
}

func TestOpenPinMismatch(t *testing.T) {
	path := writeLibraryFile(t)
	cfg := fakeConfig(path)
	cfg.Candidates = nil
	cfg.SHA3_256 = "00" + abcSHA3[2:]

	_, err := open(cfg, installLoader(path, &fakeHandle{path: path}), fakeBinder(newFakeBackend()), quietLogger())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPinMismatch))
	assert.True(t, errors.Is(err, ErrLibraryNotFound))
}

func TestLibraryLoggerLevel(t *testing.T) {
	std := logrus.StandardLogger()
	prev := std.GetLevel()
	t.Cleanup(func() { std.SetLevel(prev) })
	std.SetLevel(logrus.TraceLevel)

	assert.Equal(t, logrus.DebugLevel, libraryLogger("debug").GetLevel())
	assert.Equal(t, logrus.WarnLevel, libraryLogger("").GetLevel())
	assert.Equal(t, logrus.WarnLevel, libraryLogger("chatty").GetLevel())
	assert.Equal(t, logrus.TraceLevel, std.GetLevel())
}

func TestOpenLogsAtConfiguredLevel(t *testing.T) {
	h := &fakeHandle{path: "/fake/libsodium.so"}

	var quiet bytes.Buffer
	l := libraryLogger(DefaultConfig().LogLevel)
	l.SetOutput(&quiet)
	_, err := open(fakeConfig(h.path), installLoader(h.path, h), fakeBinder(newFakeBackend()), l)
	require.NoError(t, err)
	assert.Empty(t, quiet.String())

	var verbose bytes.Buffer
	l = libraryLogger("debug")
	l.SetOutput(&verbose)
	_, err = open(fakeConfig(h.path), installLoader(h.path, h), fakeBinder(newFakeBackend()), l)
	require.NoError(t, err)
	assert.Contains(t, verbose.String(), "native library loaded")
	assert.Contains(t, verbose.String(), "libsodium ready")
}

func TestLibraryVersion(t *testing.T) {
	lib := newFakeLibrary(newFakeBackend())
	assert.Equal(t, VersionInfo{Major: 26, Minor: 2, String: "1.0.20", HasString: true}, lib.Version())

	fb := newFakeBackend()
	fb.noVersion = true
	v := newFakeLibrary(fb).Version()
	assert.False(t, v.HasString)
	assert.Empty(t, v.String)
	assert.Equal(t, int32(26), v.Major)
}

func TestRandomUniformForwardsBound(t *testing.T) {
	fb := newFakeBackend()
	lib := newFakeLibrary(fb)

	assert.Equal(t, uint32(0), lib.RandomUniform(0))
	assert.Equal(t, uint32(0), lib.RandomUniform(1))
	assert.Less(t, lib.RandomUniform(10), uint32(10))
	assert.Equal(t, []uint32{0, 1, 10}, fb.bounds)
}

func TestOptionalSymbolMissing(t *testing.T) {
	fb := newFakeBackend()
	fb.missing[symBufDeterministic] = true
	fb.missing[symCompare] = true
	lib := newFakeLibrary(fb)

	assert.False(t, lib.Has(symBufDeterministic))
	assert.True(t, lib.Has(symBuf))

	err := lib.RandomBytesDeterministic(make([]byte, 4), make([]byte, SeedSize))
	var se *SymbolError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, symBufDeterministic, se.Symbol)
	assert.True(t, errors.Is(err, ErrSymbolNotFound))

	_, _, err = lib.Compare([]byte{1}, []byte{1})
	assert.True(t, errors.Is(err, ErrSymbolNotFound))

	require.NoError(t, lib.RandomBytes(make([]byte, 4)))
}

func TestRandomBytesDeterministicSeedLength(t *testing.T) {
	lib := newFakeLibrary(newFakeBackend())

	err := lib.RandomBytesDeterministic(make([]byte, 8), make([]byte, 16))
	var ce *CallError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, symBufDeterministic, ce.Op)

	seed := bytes.Repeat([]byte{0x5a}, SeedSize)
	a := make([]byte, 8)
	b := make([]byte, 8)
	require.NoError(t, lib.RandomBytesDeterministic(a, seed))
	require.NoError(t, lib.RandomBytesDeterministic(b, seed))
	assert.Equal(t, a, b)
}

func TestEqualAndCompare(t *testing.T) {
	lib := newFakeLibrary(newFakeBackend())

	eq, err := lib.Equal([]byte{1, 2}, []byte{1, 2})
	require.NoError(t, err)
	assert.True(t, eq)

	eq, err = lib.Equal([]byte{1, 2}, []byte{1, 2, 3})
	require.NoError(t, err)
	assert.False(t, eq)

	eq, err = lib.Equal(nil, []byte{})
	require.NoError(t, err)
	assert.True(t, eq)

	cmp, ok, err := lib.Compare([]byte{1, 2, 3, 4}, []byte{1, 2, 3, 5})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, -1, cmp)

	_, ok, err = lib.Compare([]byte{1}, []byte{1, 2})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemzero(t *testing.T) {
	lib := newFakeLibrary(newFakeBackend())
	buf := []byte{1, 2, 3}
	require.NoError(t, lib.Memzero(buf))
	assert.Equal(t, []byte{0, 0, 0}, buf)
	require.NoError(t, lib.Memzero(nil))
}

func TestNilLibraryPanics(t *testing.T) {
	var lib *Library
	assert.PanicsWithValue(t, ErrLibraryNotLoaded, func() { lib.RandomUint32() })
}
