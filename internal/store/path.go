package store

import (
	"strings"

	"github.com/agrama-dev/agrama/internal/apperr"
)

// MaxPathBytes is the largest path the store will accept (spec.md §3).
const MaxPathBytes = 4096

// Path is the store's primary key: an opaque, validated byte sequence.
type Path string

// ValidatePath enforces spec.md §3's path rules: non-empty, ≤4096 bytes, no
// embedded NUL, no ".." segments after normalization, not absolute.
func ValidatePath(p Path) error {
	s := string(p)
	if len(s) == 0 {
		return apperr.New(apperr.InvalidArgument, "path must not be empty")
	}
	if len(s) > MaxPathBytes {
		return apperr.Newf(apperr.InvalidArgument, "path exceeds %d bytes", MaxPathBytes)
	}
	if strings.ContainsRune(s, 0) {
		return apperr.New(apperr.InvalidArgument, "path must not contain NUL")
	}
	if strings.HasPrefix(s, "/") {
		return apperr.New(apperr.InvalidArgument, "path must not be absolute")
	}
	for _, seg := range strings.Split(s, "/") {
		if seg == ".." {
			return apperr.New(apperr.InvalidArgument, "path must not contain .. segments")
		}
	}
	return nil
}
