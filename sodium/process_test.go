package sodium

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// swapProcess replaces the process-wide Library for the duration of a test.
func swapProcess(t *testing.T, p *processLibrary) {
	t.Helper()
	prev := process
	process = p
	t.Cleanup(func() { process = prev })
}

func TestLoadedBeforeLoad(t *testing.T) {
	swapProcess(t, &processLibrary{open: func() (*Library, error) {
		t.Fatal("open must not run")
		return nil, nil
	}})

	_, err := Loaded()
	assert.ErrorIs(t, err, ErrLibraryNotLoaded)

	_, err = Init()
	assert.ErrorIs(t, err, ErrLibraryNotLoaded)
	_, _, err = VersionString()
	assert.ErrorIs(t, err, ErrLibraryNotLoaded)
	_, err = LibraryVersionMajor()
	assert.ErrorIs(t, err, ErrLibraryNotLoaded)
	_, err = LibraryVersionMinor()
	assert.ErrorIs(t, err, ErrLibraryNotLoaded)
	_, err = RandomUint32()
	assert.ErrorIs(t, err, ErrLibraryNotLoaded)
	_, err = RandomUniform(10)
	assert.ErrorIs(t, err, ErrLibraryNotLoaded)
}

func TestLoadConcurrentFirstUse(t *testing.T) {
	var opens atomic.Int32
	fb := newFakeBackend()
	swapProcess(t, &processLibrary{open: func() (*Library, error) {
		opens.Add(1)
		time.Sleep(20 * time.Millisecond)
		lib := newFakeLibrary(fb)
		lib.initStatus = lib.Init()
		return lib, nil
	}})

	const workers = 32
	libs := make([]*Library, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			lib, err := Load()
			assert.NoError(t, err)
			libs[i] = lib
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), opens.Load())
	assert.Equal(t, 1, fb.inits)
	for _, lib := range libs {
		assert.Same(t, libs[0], lib)
	}
}

func TestPackageFunctionsAfterLoad(t *testing.T) {
	fb := newFakeBackend()
	swapProcess(t, &processLibrary{open: func() (*Library, error) {
		return newFakeLibrary(fb), nil
	}})

	_, err := Load()
	require.NoError(t, err)

	lib, err := Loaded()
	require.NoError(t, err)
	assert.NotNil(t, lib)

	status, err := Init()
	require.NoError(t, err)
	assert.Equal(t, int32(0), status)

	v, ok, err := VersionString()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1.0.20", v)

	major, err := LibraryVersionMajor()
	require.NoError(t, err)
	assert.Equal(t, int32(26), major)

	minor, err := LibraryVersionMinor()
	require.NoError(t, err)
	assert.Equal(t, int32(2), minor)

	_, err = RandomUint32()
	require.NoError(t, err)

	n, err := RandomUniform(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), n)
	assert.Equal(t, []uint32{0}, fb.bounds)
}

func TestLoadFailureIsFinal(t *testing.T) {
	var opens atomic.Int32
	cause := &ResolveError{}
	swapProcess(t, &processLibrary{open: func() (*Library, error) {
		opens.Add(1)
		return nil, cause
	}})

	_, err := Load()
	require.Error(t, err)
	_, err = Load()
	require.Error(t, err)
	assert.Equal(t, int32(1), opens.Load())

	_, err = RandomUint32()
	assert.True(t, errors.Is(err, ErrLibraryNotLoaded))
	assert.True(t, errors.Is(err, ErrLibraryNotFound))
}
