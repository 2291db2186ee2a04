// Package digest computes content fingerprints for uploaded files.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data. The digest depends
// only on the raw bytes, never on filename or MIME type: it is the sole
// deduplication key for the photo registry.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
