//go:build android

package dylib

// The JNI aar ships libsodiumjni.so for every ABI; a plain libsodium.so is
// only present when an app bundles it separately.
func platformCandidates() []Candidate {
	return []Candidate{
		{Name: "sodiumjni", File: "libsodiumjni.so"},
		{Name: "sodium", File: "libsodium.so"},
	}
}

func platformExtraDirs() []string { return nil }
