//go:build !darwin && !freebsd && !linux && !windows

package dylib

func platformCandidates() []Candidate {
	return []Candidate{{Name: "sodium", File: "libsodium.so"}}
}

func platformExtraDirs() []string { return nil }
