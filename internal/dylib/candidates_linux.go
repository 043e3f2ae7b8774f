//go:build linux && !android

package dylib

func platformCandidates() []Candidate {
	return []Candidate{
		{Name: "sodium", File: "libsodium.so"},
		{Name: "sodium.26", File: "libsodium.so.26"},
		{Name: "sodium.23", File: "libsodium.so.23"},
	}
}

func platformExtraDirs() []string {
	return []string{
		"/usr/local/lib",
		"/home/linuxbrew/.linuxbrew/lib",
		"/opt/local/lib",
	}
}
