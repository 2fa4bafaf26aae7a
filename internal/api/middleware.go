package api

import (
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/finch-xu/filehunter/internal/logging"
)

// requestIDMiddleware stamps every request with a correlation id, carried on
// the gin context for the access-log middleware and available to handlers
// for diagnostics. Grounded on the teacher's direct google/uuid dependency.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("requestID", uuid.NewString())
		c.Next()
	}
}

// accessLogMiddleware is a trimmed-down adaptation of the teacher's
// src/api/router.go logrusMiddleware: same level-on-status dispatch and
// latency measurement, without the secret-redaction machinery this server
// has no query strings or auth tokens to need.
func accessLogMiddleware() gin.HandlerFunc {
	log := logging.For("http")

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := math.Ceil(float64(time.Since(start).Nanoseconds()) / 1e6)

		status := c.Writer.Status()
		entry := log.WithFields(map[string]interface{}{
			"request_id": c.GetString("requestID"),
			"method":     c.Request.Method,
			"status":     status,
			"bytes":      c.Writer.Size(),
			"latency_ms": latency,
		})

		msg := fmt.Sprintf("%s %d %dms", c.Request.Method, status, int(latency))
		switch {
		case status >= http.StatusInternalServerError:
			entry.Error(msg)
		case status >= http.StatusBadRequest:
			entry.Warn(msg)
		default:
			entry.Info(msg)
		}
	}
}

// serverTimingWriter wraps gin.ResponseWriter to stamp a Server-Timing
// header just before the first byte leaves, the way the teacher's
// src/api/middleware_timing.go processingTimeWriter does for its own
// handlers.
type serverTimingWriter struct {
	gin.ResponseWriter
	start   time.Time
	written bool
}

func (w *serverTimingWriter) stamp() {
	if w.written {
		return
	}
	w.written = true
	elapsed := float64(time.Since(w.start).Nanoseconds()) / 1e6
	w.Header().Set("Server-Timing", fmt.Sprintf("total;dur=%.2f", elapsed))
}

func (w *serverTimingWriter) WriteHeader(code int) {
	w.stamp()
	w.ResponseWriter.WriteHeader(code)
}

func (w *serverTimingWriter) Write(b []byte) (int, error) {
	w.stamp()
	return w.ResponseWriter.Write(b)
}

func (w *serverTimingWriter) WriteHeaderNow() {
	w.stamp()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *serverTimingWriter) Flush() {
	w.stamp()
	w.ResponseWriter.Flush()
}

func serverTimingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer = &serverTimingWriter{ResponseWriter: c.Writer, start: time.Now()}
		c.Next()
	}
}
