// Package routing implements the longest-prefix router: matching the raw,
// still-encoded request path against the configured PrefixTable.
package routing

import (
	"errors"
	"strings"

	"github.com/finch-xu/filehunter/internal/config"
)

// ErrNotMatched is returned when no configured prefix matches the request.
var ErrNotMatched = errors.New("no matching prefix")

// Router wraps an immutable, startup-built PrefixTable for per-request
// lookups. Locations are pre-sorted longest-prefix-first by config.Load, so
// Match is a single linear scan that returns on the first hit.
type Router struct {
	table config.PrefixTable
}

// New builds a Router over an already-validated PrefixTable.
func New(table config.PrefixTable) *Router {
	return &Router{table: table}
}

// Match finds the longest configured prefix matching rawPath (still
// percent-encoded, exactly as received on the wire) and returns the bound
// Location plus the remainder to hand to the sanitizer. The remainder
// includes the separating "/" (or is just "/" when rawPath equals the
// prefix exactly).
func (r *Router) Match(rawPath string) (config.Location, string, error) {
	for _, loc := range r.table.Locations {
		if remainder, ok := matchPrefix(loc.Prefix, rawPath); ok {
			return loc, remainder, nil
		}
	}
	return config.Location{}, "", ErrNotMatched
}

func matchPrefix(prefix, rawPath string) (string, bool) {
	if prefix == "/" {
		remainder := rawPath
		if !strings.HasPrefix(remainder, "/") {
			remainder = "/" + remainder
		}
		return remainder, true
	}

	if rawPath == prefix {
		return "/", true
	}

	if strings.HasPrefix(rawPath, prefix) && len(rawPath) > len(prefix) && rawPath[len(prefix)] == '/' {
		return rawPath[len(prefix):], true
	}

	return "", false
}
