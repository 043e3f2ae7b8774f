package dylib

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultSearchPathEnv is the variable the widened tier reads and extends.
const DefaultSearchPathEnv = "SALT_LIBRARY_PATH"

// Candidate is one library the resolver may load.
type Candidate struct {
	// Name identifies the candidate in diagnostics, e.g. "sodium" or "sodiumjni".
	Name string `toml:"name" json:"name"`
	// File is a platform file name such as "libsodium.so.26", or an absolute path.
	File string `toml:"file" json:"file"`
	// Dirs are install directories tried for this candidate only, before ExtraDirs.
	Dirs []string `toml:"dirs" json:"dirs,omitempty"`
}

// IsPath reports whether File names a location rather than a bare library name.
// Paths skip the widened tier.
func (c Candidate) IsPath() bool {
	return filepath.IsAbs(c.File) || strings.ContainsRune(c.File, '/') || strings.ContainsRune(c.File, filepath.Separator)
}

func (c Candidate) label() string {
	if c.Name != "" {
		return c.Name
	}
	return c.File
}

// SearchPath configures the widened tier.
type SearchPath struct {
	// Env names a list-valued environment variable (os.PathListSeparator). Its
	// existing entries are kept after the prepended directories.
	Env string `toml:"env" json:"env"`
	// ExtraDirs are well-known install directories prepended for every candidate.
	ExtraDirs []string `toml:"extra_dirs" json:"extra_dirs"`
}

// DefaultCandidates returns the library names tried on this platform, in order.
func DefaultCandidates() []Candidate { return platformCandidates() }

// DefaultExtraDirs returns the install directories the widened tier adds on this platform.
func DefaultExtraDirs() []string { return platformExtraDirs() }

// DefaultSearchPath combines DefaultSearchPathEnv and DefaultExtraDirs.
func DefaultSearchPath() SearchPath {
	return SearchPath{Env: DefaultSearchPathEnv, ExtraDirs: DefaultExtraDirs()}
}

// NormalizeDirs splits each entry on the path list separator and on commas,
// trims blanks and drops duplicates, preserving first occurrence.
func NormalizeDirs(raw ...string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, token := range raw {
		for _, part := range filepath.SplitList(token) {
			for _, d := range strings.Split(part, ",") {
				d = strings.TrimSpace(d)
				if d == "" {
					continue
				}
				if _, ok := seen[d]; ok {
					continue
				}
				seen[d] = struct{}{}
				out = append(out, d)
			}
		}
	}
	return out
}

// Prepend returns dirs followed by the entries of existing that are not already
// present. existing is never dropped.
func Prepend(existing string, dirs ...string) []string {
	return NormalizeDirs(append(append([]string(nil), dirs...), existing)...)
}

// snapshot returns the current value of Env. The resolver reads it once so
// that every candidate widens from the same starting point.
func (s SearchPath) snapshot() string {
	if s.Env == "" {
		return ""
	}
	return os.Getenv(s.Env)
}

// dirsFor returns the widened directories for c: its own Dirs, then ExtraDirs,
// then the entries of existing.
func (s SearchPath) dirsFor(c Candidate, existing string) []string {
	prefix := make([]string, 0, len(c.Dirs)+len(s.ExtraDirs))
	prefix = append(prefix, c.Dirs...)
	prefix = append(prefix, s.ExtraDirs...)
	return Prepend(existing, prefix...)
}

// export writes ExtraDirs prepended to existing into Env when that differs
// from existing. Candidate Dirs are never exported. changed reports whether
// the variable was rewritten.
func (s SearchPath) export(existing string) (dirs []string, changed bool, err error) {
	dirs = Prepend(existing, s.ExtraDirs...)
	if s.Env == "" {
		return dirs, false, nil
	}
	joined := strings.Join(dirs, string(os.PathListSeparator))
	if joined == existing {
		return dirs, false, nil
	}
	if err := os.Setenv(s.Env, joined); err != nil {
		return dirs, false, err
	}
	return dirs, true, nil
}
