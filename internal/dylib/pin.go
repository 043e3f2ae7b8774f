package dylib

import (
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Pin constrains which library files may be loaded.
type Pin struct {
	// SHA3_256 is the expected hex digest of the library file. Empty disables pinning.
	SHA3_256 string
	// Strict rejects loads that cannot be verified against SHA3_256.
	Strict bool
}

func (p Pin) enabled() bool { return p.SHA3_256 != "" }

// verify hashes the file at path and compares it with the pin.
func (p Pin) verify(path string) error {
	if !p.enabled() {
		return nil
	}
	sum, err := FileSHA3_256(path)
	if err != nil {
		return err
	}
	actual := hex.EncodeToString(sum[:])
	if actual != strings.ToLower(strings.TrimSpace(p.SHA3_256)) {
		return fmt.Errorf("%w: %s has %s", ErrPinMismatch, path, actual)
	}
	return nil
}

// FileSHA3_256 returns the SHA3-256 digest of the file at path.
func FileSHA3_256(path string) ([32]byte, error) {
	f, err := openFileInDir(filepath.Dir(path), filepath.Base(path))
	if err != nil {
		return [32]byte{}, err
	}
	defer f.Close()

	h := sha3.New256()
	if _, err := io.Copy(h, f); err != nil {
		return [32]byte{}, fmt.Errorf("hash %s: %w", path, err)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out, nil
}

func openFileInDir(dir, name string) (fs.File, error) {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return nil, fmt.Errorf("invalid file name: %q", name)
	}
	return os.DirFS(dir).Open(name)
}
