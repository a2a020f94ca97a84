// Package ident generates opaque identifiers for slides, diagrams and assets.
package ident

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// maxAttempts bounds the retry loop in Unique; a uuid collision this many
// times in a row means the source is broken.
const maxAttempts = 16

// Source produces identifiers with a readable prefix.
type Source interface {
	New(prefix string) string
}

// SourceFunc adapts a plain function to Source.
type SourceFunc func(prefix string) string

// New calls f.
func (f SourceFunc) New(prefix string) string { return f(prefix) }

// UUID is the default Source: prefix followed by a random UUID.
var UUID Source = SourceFunc(func(prefix string) string {
	id := uuid.NewString()
	if prefix == "" {
		return id
	}
	return prefix + "-" + id
})

// Unique draws ids from src until one is absent from taken, records it in
// taken and returns it. A nil taken set disables the check.
func Unique(src Source, prefix string, taken map[string]struct{}) string {
	if src == nil {
		src = UUID
	}
	id := src.New(prefix)
	if taken == nil {
		return id
	}
	for i := 0; i < maxAttempts; i++ {
		if _, dup := taken[id]; !dup {
			break
		}
		id = src.New(prefix)
	}
	if _, dup := taken[id]; dup {
		// Fall back to a fresh uuid suffix so the result is never a duplicate.
		id = id + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	}
	taken[id] = struct{}{}
	return id
}

// Sequence returns a deterministic Source for tests: prefix-1, prefix-2, ...
func Sequence() Source {
	n := 0
	return SourceFunc(func(prefix string) string {
		n++
		return prefix + "-" + strconv.Itoa(n)
	})
}
