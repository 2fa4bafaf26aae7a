// Package resolve implements the resolver probe: a single sandboxed
// (root, RelPath) resolution attempt, per spec.md §4.4. The open is
// performed with github.com/cyphar/filepath-securejoin, which resolves the
// path under root without ever walking outside it even in the presence of
// concurrent symlink swaps; the stat-on-handle and canonicalize-and-verify
// steps below are the belt-and-suspenders defense spec.md §9 calls the
// TOCTOU mitigation.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	securejoin "github.com/cyphar/filepath-securejoin"

	"github.com/finch-xu/filehunter/internal/config"
	"github.com/finch-xu/filehunter/internal/sanitize"
)

// Sentinel dispositions. Callers must not surface these as distinct HTTP
// statuses; spec.md §7 collapses all three into a 404.
var (
	ErrNotFound = errors.New("resolve: not found")
	ErrDenied   = errors.New("resolve: denied")
	ErrBroken   = errors.New("resolve: broken")
)

// OpenFile is an admitted candidate: an open handle plus the attributes
// attested against that same handle.
type OpenFile struct {
	Handle    *os.File
	Size      int64
	ModTime   time.Time
	Canonical string
	Root      string
}

// Close releases the underlying handle. Safe to call on a nil OpenFile.
func (f *OpenFile) Close() error {
	if f == nil || f.Handle == nil {
		return nil
	}
	return f.Handle.Close()
}

// Probe resolves rel under root. ctx is checked before and after the
// filesystem work so a losing Concurrent probe can abandon promptly once
// its handle (if any) has been released.
func Probe(ctx context.Context, root config.RootSpec, rel sanitize.RelPath, maxFileSize int64) (*OpenFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	relPath := rel.Join()

	handle, err := securejoin.OpenInRoot(root.Canonical, relPath)
	if err != nil {
		return nil, classifyOpenErr(err)
	}

	info, err := handle.Stat()
	if err != nil {
		handle.Close()
		return nil, fmt.Errorf("%w: stat handle: %v", ErrBroken, err)
	}

	if !info.Mode().IsRegular() {
		handle.Close()
		return nil, ErrNotFound
	}

	canonical, err := filepath.EvalSymlinks(filepath.Join(root.Canonical, relPath))
	if err != nil {
		handle.Close()
		return nil, fmt.Errorf("%w: canonicalize: %v", ErrBroken, err)
	}
	if !isDescendant(root.Canonical, canonical) {
		handle.Close()
		return nil, ErrBroken
	}

	if maxFileSize > 0 && info.Size() > maxFileSize {
		handle.Close()
		return nil, ErrDenied
	}

	if err := ctx.Err(); err != nil {
		handle.Close()
		return nil, err
	}

	return &OpenFile{
		Handle:    handle,
		Size:      info.Size(),
		ModTime:   info.ModTime(),
		Canonical: canonical,
		Root:      root.Canonical,
	}, nil
}

func classifyOpenErr(err error) error {
	switch {
	case os.IsNotExist(err):
		return ErrNotFound
	case os.IsPermission(err):
		return ErrDenied
	default:
		// securejoin reports symlink-escape and loop conditions through a
		// plain *PathError wrapping an errno; spec.md treats every such
		// containment failure the same way as a broken symlink.
		return fmt.Errorf("%w: %v", ErrBroken, err)
	}
}

// isDescendant reports whether candidate is root itself or lies beneath it,
// compared with segment-boundary discipline (a byte-prefix match alone
// would let "/root-evil" pass as a descendant of "/root").
func isDescendant(root, candidate string) bool {
	if candidate == root {
		return true
	}
	sep := string(filepath.Separator)
	prefix := strings.TrimSuffix(root, sep) + sep
	return strings.HasPrefix(candidate, prefix)
}
