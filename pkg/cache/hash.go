package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash returns the hex SHA-256 of data. Tree and layout hashes surfaced in
// API responses come from here, so the full 64-character digest is kept:
// the values double as content identifiers, not just cache keys.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey builds a key of the form "<class>:<digest>". Each part is fed to
// the digest as its own JSON document, so adjacent string parts can never
// collide by concatenation.
func hashKey(class string, parts ...any) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	for _, p := range parts {
		// Encoding to a hash cannot fail for the option structs used here.
		_ = enc.Encode(p)
	}
	return class + ":" + hex.EncodeToString(h.Sum(nil))
}
