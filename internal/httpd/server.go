// Package httpd is the connection front-end (spec.md §4.6): a standard
// library http.Server configured for HTTP/1.1-and-h2c protocol
// auto-detection, header/idle/total limits, and graceful shutdown. It
// replaces the teacher's bare router.Run(addr) call (net/http's
// ListenAndServe under the hood), which cannot express any of those limits
// or a drain-on-shutdown sequence.
package httpd

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/finch-xu/filehunter/internal/config"
)

// Server wraps an http.Server built from a validated ServerConfig.
type Server struct {
	http *http.Server
}

// New builds a Server bound to cfg.Bind, serving handler over HTTP/1.1 and
// cleartext HTTP/2 (h2c), with cfg's header, timeout, and concurrent-stream
// limits applied.
func New(cfg config.ServerConfig, handler http.Handler) *Server {
	h2s := &http2.Server{
		MaxConcurrentStreams: uint32(cfg.HTTP2MaxStreams),
	}

	h := h2c.NewHandler(handler, h2s)

	srv := &http.Server{
		Addr:           cfg.Bind,
		Handler:        h,
		MaxHeaderBytes: headerBytesOrDefault(cfg.MaxHeaderSize),
		ReadTimeout:    cfg.ConnectionTimeout,
		WriteTimeout:   cfg.ConnectionTimeout,
		IdleTimeout:    cfg.ConnectionTimeout,
	}
	srv.SetKeepAlivesEnabled(cfg.Keepalive)

	return &Server{http: srv}
}

func headerBytesOrDefault(n int64) int {
	if n <= 0 {
		return http.DefaultMaxHeaderBytes
	}
	return int(n)
}

// ListenAndServe binds the configured address and serves until Shutdown is
// called or a fatal accept error occurs.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", s.http.Addr, err)
	}
	err = s.http.Serve(ln)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and stops accepting new connections,
// bounded by ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// DrainTimeout is the graceful-shutdown bound that cmd/filehunter puts on
// the context it passes to Shutdown; Shutdown itself applies no default.
const DrainTimeout = 30 * time.Second
