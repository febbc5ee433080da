// Package naming provides short deterministic hashes and identifier helpers
// shared by the registry, the stores and the drivers.
package naming

import (
	"crypto/sha1"
	"fmt"
	"strings"
)

// defaultLength defines the hex length of hashes (bits ~ length * 4).
const defaultLength = 12

// ShortHash returns the hex SHA1 prefix of length n (clamped to digest size).
func ShortHash(s string, n int) string {
	sum := sha1.Sum([]byte(s))
	h := fmt.Sprintf("%x", sum)
	if n > len(h) {
		n = len(h)
	}
	return h[:n]
}

// IdentityHash returns a stable fingerprint of a credential bundle.
// Parts are length-prefixed so ("ab","c") and ("a","bc") never collide.
func IdentityHash(provider, key, secret, tenant string) string {
	var b strings.Builder
	for _, part := range []string{provider, key, secret, tenant} {
		fmt.Fprintf(&b, "%d:%s;", len(part), part)
	}
	return ShortHash(b.String(), defaultLength)
}

// MetaKey joins a provider name and an identity fingerprint into a registry key.
func MetaKey(provider, fingerprint string) string {
	return provider + "/" + fingerprint
}
