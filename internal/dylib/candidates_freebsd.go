//go:build freebsd

package dylib

func platformCandidates() []Candidate {
	return []Candidate{
		{Name: "sodium", File: "libsodium.so"},
	}
}

func platformExtraDirs() []string { return []string{"/usr/local/lib"} }
