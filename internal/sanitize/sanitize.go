// Package sanitize implements the pure path-sanitization step: turning a raw,
// still-percent-encoded request sub-path into a validated RelPath, or
// rejecting it outright. It never touches the filesystem.
package sanitize

import (
	"errors"
	"net/url"
	"strings"
)

// ErrBadPath is returned for any request target the sanitizer rejects.
var ErrBadPath = errors.New("bad path")

// RelPath is a validated, non-empty, ordered sequence of safe path segments.
type RelPath struct {
	segments []string
}

// Segments returns the ordered segment list. Callers must not mutate it.
func (p RelPath) Segments() []string { return p.segments }

// Join renders the relative path using the host's separator-free join,
// suitable for appending to a canonical root with filepath.Join.
func (p RelPath) Join() string {
	return strings.Join(p.segments, "/")
}

// Last returns the terminal segment (the file name).
func (p RelPath) Last() string {
	if len(p.segments) == 0 {
		return ""
	}
	return p.segments[len(p.segments)-1]
}

// Path percent-decodes remainder (the still-encoded sub-path handed off by
// the router, including any leading "/") and validates every segment per
// spec: no NUL, no empty segment, not "." or "..", no leading dot, no
// embedded separator.
func Path(remainder string) (RelPath, error) {
	if strings.IndexByte(remainder, 0) >= 0 {
		return RelPath{}, ErrBadPath
	}

	decoded, err := url.PathUnescape(remainder)
	if err != nil {
		return RelPath{}, ErrBadPath
	}
	if strings.IndexByte(decoded, 0) >= 0 {
		return RelPath{}, ErrBadPath
	}

	parts := strings.Split(decoded, "/")
	if len(parts) > 0 && parts[0] == "" {
		parts = parts[1:]
	}

	segments := make([]string, 0, len(parts))
	for _, seg := range parts {
		if err := validateSegment(seg); err != nil {
			return RelPath{}, err
		}
		segments = append(segments, seg)
	}

	if len(segments) == 0 {
		return RelPath{}, ErrBadPath
	}

	return RelPath{segments: segments}, nil
}

func validateSegment(seg string) error {
	if seg == "" {
		return ErrBadPath
	}
	if seg == "." || seg == ".." {
		return ErrBadPath
	}
	if strings.HasPrefix(seg, ".") {
		return ErrBadPath
	}
	if strings.ContainsAny(seg, "/\\") {
		return ErrBadPath
	}
	if strings.IndexByte(seg, 0) >= 0 {
		return ErrBadPath
	}
	return nil
}
