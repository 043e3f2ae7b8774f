package sodium

// Binding is the capability set every native backend provides. Each method is
// a direct forward to the libsodium function of the same name.
//
// Implementations are selected at build time: purego by default, cgo with the
// sodium_cgo build tag.
type Binding interface {
	// Init calls sodium_init: 0 on first success, 1 if already initialized,
	// negative on failure.
	Init() int32
	// VersionString calls sodium_version_string. ok is false when the library
	// returns NULL.
	VersionString() (v string, ok bool)
	LibraryVersionMajor() int32
	LibraryVersionMinor() int32
	// RandomUint32 calls randombytes_random.
	RandomUint32() uint32
	// RandomUniform calls randombytes_uniform. The bound is passed unchanged,
	// including 0.
	RandomUniform(upperBound uint32) uint32
}

// backend is a bound library: the Binding plus optional entry points that are
// only valid when has reports the symbol as present.
type backend interface {
	Binding
	has(symbol string) bool

	randomBytes(buf []byte)
	randomBytesDeterministic(buf []byte, seed *[SeedSize]byte)
	seedBytes() int
	stir()
	memzero(buf []byte)
	memcmp(a, b []byte) int32
	compare(a, b []byte) int32
	minimal() int32
}

// VersionInfo is the library's self-reported version.
type VersionInfo struct {
	Major int32 `json:"major"`
	Minor int32 `json:"minor"`
	// String is the version text, e.g. "1.0.19". HasString is false when the
	// library returned NULL.
	String    string `json:"version,omitempty"`
	HasString bool   `json:"has_version"`
}

func versionOf(b Binding) VersionInfo {
	s, ok := b.VersionString()
	return VersionInfo{
		Major:     b.LibraryVersionMajor(),
		Minor:     b.LibraryVersionMinor(),
		String:    s,
		HasString: ok,
	}
}
