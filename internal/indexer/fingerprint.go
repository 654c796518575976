package indexer

import (
	"crypto/sha256"
	"encoding/base64"
)

// Fingerprint returns the base64-encoded SHA-256 of raw. Identical bytes
// always produce identical fingerprints.
func Fingerprint(raw []byte) string {
	sum := sha256.Sum256(raw)
	return base64.StdEncoding.EncodeToString(sum[:])
}
