package sodium

import (
	"bytes"
	"encoding/hex"
	"errors"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loadNative returns the process-wide Library, skipping the test when
// libsodium is not installed on this machine.
func loadNative(t *testing.T) *Library {
	t.Helper()
	lib, err := Load()
	if errors.Is(err, ErrLibraryNotFound) {
		t.Skipf("libsodium not available: %v", err)
	}
	require.NoError(t, err)
	return lib
}

func TestNativeLoadIsIdempotent(t *testing.T) {
	lib := loadNative(t)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			again, err := Load()
			assert.NoError(t, err)
			assert.Same(t, lib, again)
		}()
	}
	wg.Wait()

	loaded, err := Loaded()
	require.NoError(t, err)
	assert.Same(t, lib, loaded)
	assert.GreaterOrEqual(t, lib.InitStatus(), int32(0))
	assert.Equal(t, int32(1), lib.Init())
}

func TestNativeVersion(t *testing.T) {
	lib := loadNative(t)
	v := lib.Version()
	require.True(t, v.HasString)
	assert.Regexp(t, regexp.MustCompile(`^\d+\.\d+\.\d+`), v.String)
	assert.Positive(t, v.Major)
	assert.Equal(t, v, lib.Version())
}

func TestNativeRandomUniformZero(t *testing.T) {
	lib := loadNative(t)
	for i := 0; i < 10; i++ {
		assert.Equal(t, uint32(0), lib.RandomUniform(0))
		assert.Equal(t, uint32(0), lib.RandomUniform(1))
	}
}

func TestNativeRandomFrequencyBound(t *testing.T) {
	lib := loadNative(t)

	ref := lib.RandomUint32()
	repeats := 0
	for i := 0; i < 100; i++ {
		if lib.RandomUint32() == ref {
			repeats++
		}
	}
	assert.Less(t, repeats, 10)

	ref = lib.RandomUniform(100_000)
	repeats = 0
	for i := 0; i < 100; i++ {
		n := lib.RandomUniform(100_000)
		assert.Less(t, n, uint32(100_000))
		if n == ref {
			repeats++
		}
	}
	assert.Less(t, repeats, 10)
}

func TestNativeRandomUniformCoverage(t *testing.T) {
	lib := loadNative(t)

	const bound, trials = 10, 10_000
	var counts [bound]int
	for i := 0; i < trials; i++ {
		counts[lib.RandomUniform(bound)]++
	}
	for v, c := range counts {
		// Expected 1000 per value; the standard deviation is about 30.
		assert.Greater(t, c, 800, "value %d", v)
		assert.Less(t, c, 1200, "value %d", v)
	}
}

func TestNativeRandomBytesDeterministic(t *testing.T) {
	lib := loadNative(t)
	if !lib.Has(symBufDeterministic) {
		t.Skip("randombytes_buf_deterministic not exported")
	}
	seed, err := hex.DecodeString("00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff")
	require.NoError(t, err)

	out := make([]byte, 10)
	require.NoError(t, lib.RandomBytesDeterministic(out, seed))
	assert.Equal(t, "444dc0602207c270b93f", hex.EncodeToString(out))
}

func TestNativeRandomBytes(t *testing.T) {
	lib := loadNative(t)
	if !lib.Has(symBuf) {
		t.Skip("randombytes_buf not exported")
	}
	a := make([]byte, 32)
	b := make([]byte, 32)
	require.NoError(t, lib.RandomBytes(a))
	require.NoError(t, lib.RandomBytes(b))
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, make([]byte, 32), a)

	if lib.Has(symStir) {
		require.NoError(t, lib.Stir())
	}
	if lib.Has(symSeedBytes) {
		n, err := lib.SeedBytes()
		require.NoError(t, err)
		assert.Equal(t, SeedSize, n)
	}
}

func TestNativeUtilities(t *testing.T) {
	lib := loadNative(t)
	for _, sym := range []string{symMemzero, symMemcmp, symCompare} {
		if !lib.Has(sym) {
			t.Skipf("%s not exported", sym)
		}
	}

	buf := bytes.Repeat([]byte{0xff}, 16)
	require.NoError(t, lib.Memzero(buf))
	assert.Equal(t, make([]byte, 16), buf)

	eq, err := lib.Equal([]byte("secret"), []byte("secret"))
	require.NoError(t, err)
	assert.True(t, eq)
	eq, err = lib.Equal([]byte("secret"), []byte("secreT"))
	require.NoError(t, err)
	assert.False(t, eq)

	cmp, ok, err := lib.Compare([]byte{1, 2, 3, 4}, []byte{1, 2, 3, 5})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, -1, cmp)
	cmp, _, _ = lib.Compare([]byte{9, 0, 0, 1}, []byte{0, 0, 0, 1})
	assert.Equal(t, 1, cmp)
	cmp, _, _ = lib.Compare([]byte{7, 7}, []byte{7, 7})
	assert.Equal(t, 0, cmp)
}
