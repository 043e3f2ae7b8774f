package dylib

// Handle is an opened shared library.
type Handle interface {
	// Path is the name or path the library was opened with.
	Path() string
	// Symbol returns the address of an exported entry point.
	Symbol(name string) (uintptr, error)
	Close() error
}

// Loader opens shared libraries. NativeLoader returns the platform implementation;
// tests substitute their own.
type Loader interface {
	Open(name string) (Handle, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(name string) (Handle, error)

func (f LoaderFunc) Open(name string) (Handle, error) { return f(name) }

// Tier is the stage of the two-step search an attempt belongs to.
type Tier int

const (
	// TierDefault loads through the platform's standard library search.
	TierDefault Tier = iota
	// TierWidened loads from the configured install directories and the
	// search-path environment variable.
	TierWidened
)

func (t Tier) String() string {
	switch t {
	case TierDefault:
		return "default"
	case TierWidened:
		return "widened"
	default:
		return "unknown"
	}
}
