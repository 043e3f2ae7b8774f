//go:build darwin

package dylib

func platformCandidates() []Candidate {
	return []Candidate{
		{Name: "sodium", File: "libsodium.dylib"},
		{Name: "sodium.26", File: "libsodium.26.dylib"},
		{Name: "sodium.23", File: "libsodium.23.dylib"},
	}
}

// Homebrew on Apple silicon, Homebrew on Intel, MacPorts.
func platformExtraDirs() []string {
	return []string{
		"/opt/homebrew/lib",
		"/usr/local/lib",
		"/opt/local/lib",
	}
}
