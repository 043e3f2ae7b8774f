//go:build windows

package dylib

func platformCandidates() []Candidate {
	return []Candidate{
		{Name: "sodium", File: "libsodium.dll"},
		{Name: "sodium-26", File: "libsodium-26.dll"},
	}
}

func platformExtraDirs() []string { return nil }
