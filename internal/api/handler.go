// Package api is the connection front-end's HTTP routing layer: a gin
// engine whose entire surface is one hand-rolled catch-all handler, in the
// spirit of the teacher's src/api/router.go custom middleware
// ("inspect path and method directly, handle, c.Abort(); else c.Next()")
// generalized from one hardcoded sub-route into the full resolution
// pipeline: route -> sanitize -> filter -> select -> stream.
package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/finch-xu/filehunter/internal/config"
	"github.com/finch-xu/filehunter/internal/logging"
	"github.com/finch-xu/filehunter/internal/routing"
	"github.com/finch-xu/filehunter/internal/sanitize"
	"github.com/finch-xu/filehunter/internal/selector"
	"github.com/finch-xu/filehunter/internal/stream"
)

// deps bundles the immutable, startup-built state the handler closes over
// for every request.
type deps struct {
	cfg    config.ServerConfig
	router *routing.Router
}

// NewEngine builds the gin engine serving cfg's configured locations.
func NewEngine(cfg *config.Config) *gin.Engine {
	d := &deps{
		cfg:    cfg.Server,
		router: routing.New(cfg.Table),
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(serverTimingMiddleware())
	r.Use(accessLogMiddleware())

	r.NoRoute(d.handleRequest)
	r.NoMethod(d.handleRequest)

	return r
}

func (d *deps) handleRequest(c *gin.Context) {
	req := c.Request

	if strings.IndexByte(req.RequestURI, 0) >= 0 {
		stream.WriteHeaders(c.Writer, http.StatusBadRequest, nil)
		return
	}

	method := req.Method
	if method != http.MethodGet && method != http.MethodHead {
		stream.WriteHeaders(c.Writer, http.StatusMethodNotAllowed, nil)
		return
	}

	if d.cfg.MaxHeaders > 0 && len(req.Header) > d.cfg.MaxHeaders {
		stream.WriteHeaders(c.Writer, http.StatusRequestHeaderFieldsTooLarge, nil)
		return
	}
	if d.cfg.MaxBodySize > 0 && req.ContentLength > d.cfg.MaxBodySize {
		stream.WriteHeaders(c.Writer, http.StatusRequestEntityTooLarge, nil)
		return
	}

	loc, remainder, err := d.router.Match(rawTarget(req))
	if errors.Is(err, routing.ErrNotMatched) {
		stream.WriteHeaders(c.Writer, http.StatusNotFound, nil)
		return
	}
	if remainder == "/" {
		// The request names the location itself, not a file under it.
		stream.WriteHeaders(c.Writer, http.StatusNotFound, nil)
		return
	}

	rel, err := sanitize.Path(remainder)
	if err != nil {
		stream.WriteHeaders(c.Writer, http.StatusBadRequest, nil)
		return
	}

	roots := filterRoots(loc.Roots, rel.Last())

	of, err := selector.Select(req.Context(), loc.Mode, roots, rel, d.cfg.MaxFileSize)
	if err != nil {
		stream.WriteHeaders(c.Writer, http.StatusNotFound, nil)
		return
	}
	defer of.Close()

	art := stream.NewArtifact(of, rel.Last())
	stream.WriteHeaders(c.Writer, http.StatusOK, &art)

	if err := stream.Body(req.Context(), c.Writer, &art, d.cfg.StreamBufferSize, method == http.MethodHead); err != nil {
		logging.For("stream").WithField("request_id", c.GetString("requestID")).Debug("stream aborted: ", err)
	}
}

// rawTarget recovers the request target exactly as sent on the wire (before
// net/url's automatic percent-decoding of URL.Path), per spec.md §4.2's
// requirement that routing match on raw, still-encoded bytes.
func rawTarget(r *http.Request) string {
	target := r.RequestURI
	if target == "" {
		target = r.URL.EscapedPath()
	}
	if i := strings.IndexAny(target, "?#"); i >= 0 {
		target = target[:i]
	}
	return target
}

func filterRoots(roots []config.RootSpec, name string) []config.RootSpec {
	out := make([]config.RootSpec, 0, len(roots))
	for _, r := range roots {
		if r.Admits(name) {
			out = append(out, r)
		}
	}
	return out
}
