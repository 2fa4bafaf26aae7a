// Package stream implements the streamer (spec.md §4.5): response header
// composition and a backpressured, fixed-buffer chunked body producer. Like
// the teacher's src/api/middleware_timing.go it calls Flush explicitly on the
// response writer, here after every chunk to bound per-request memory.
package stream

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/finch-xu/filehunter/internal/resolve"
)

// Artifact is the winning candidate plus its derived content metadata,
// ready to stream.
type Artifact struct {
	File        *resolve.OpenFile
	ContentType string
}

// NewArtifact derives the media type from name's extension.
func NewArtifact(of *resolve.OpenFile, name string) Artifact {
	return Artifact{File: of, ContentType: MediaType(name)}
}

// Flusher is the subset of http.Flusher the streamer needs. Gin's
// gin.ResponseWriter and the standard library's http.ResponseWriter (when
// it also implements http.Flusher, true for HTTP/1.1 and HTTP/2 in
// net/http) both satisfy it.
type Flusher interface {
	io.Writer
	Flush()
}

// WriteHeaders writes status, Content-Type, Content-Length (for a 200 with
// a non-nil artifact), and the mandatory nosniff header that every response
// carries regardless of outcome.
func WriteHeaders(w http.ResponseWriter, status int, art *Artifact) {
	h := w.Header()
	h.Set("X-Content-Type-Options", "nosniff")
	if art != nil {
		h.Set("Content-Type", art.ContentType)
		h.Set("Content-Length", strconv.FormatInt(art.File.Size, 10))
	}
	w.WriteHeader(status)
}

// Body streams art's bytes to w in bufSize chunks, flushing after each
// write so a slow reader's connection-level readiness — not an in-memory
// buffer — governs how fast the producer runs. headOnly (a HEAD request)
// omits the body entirely. A read or write error aborts the loop without
// retry, matching spec.md's InternalIO/ClientGone dispositions.
func Body(ctx context.Context, w Flusher, art *Artifact, bufSize int64, headOnly bool) error {
	if headOnly || art == nil {
		return nil
	}
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}

	buf := make([]byte, bufSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, readErr := art.File.Handle.Read(buf)
		if n > 0 {
			if _, writeErr := w.Write(buf[:n]); writeErr != nil {
				return writeErr
			}
			w.Flush()
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return readErr
		}
	}
}
