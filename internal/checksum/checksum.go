// Package checksum computes the content digests used as deck versions and
// HTTP entity tags.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// ETag quotes sum as a strong entity tag.
func ETag(sum string) string {
	return `"` + sum + `"`
}

// FromIfMatch extracts the digest from an If-Match header value. Weak tags
// are accepted; "*" and an empty header yield "", meaning no precondition.
// Only the first tag of a list is used.
func FromIfMatch(header string) string {
	tag, _, _ := strings.Cut(header, ",")
	tag = strings.TrimSpace(tag)
	if tag == "*" {
		return ""
	}
	tag = strings.TrimPrefix(tag, "W/")
	return strings.Trim(tag, `"`)
}
