package stream

import (
	"path/filepath"
	"strings"
)

// builtinMediaTypes is a small, closed lookup from lowercase extension to
// content type. Spec.md §4.5 calls for a "small built-in lookup", not
// content-sniffing or the full mime.TypeByExtension OS-configured table, so
// the mapping lives here rather than behind net/http's mime package (whose
// table is seeded from /etc/mime.types on some platforms and is therefore
// not reproducible across hosts).
var builtinMediaTypes = map[string]string{
	"html": "text/html; charset=utf-8",
	"htm":  "text/html; charset=utf-8",
	"css":  "text/css; charset=utf-8",
	"js":   "text/javascript; charset=utf-8",
	"mjs":  "text/javascript; charset=utf-8",
	"json": "application/json",
	"txt":  "text/plain; charset=utf-8",
	"csv":  "text/csv; charset=utf-8",
	"xml":  "application/xml",
	"pdf":  "application/pdf",
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"svg":  "image/svg+xml",
	"webp": "image/webp",
	"ico":  "image/x-icon",
	"mp4":  "video/mp4",
	"webm": "video/webm",
	"mp3":  "audio/mpeg",
	"wav":  "audio/wav",
	"zip":  "application/zip",
	"gz":   "application/gzip",
	"tar":  "application/x-tar",
	"wasm": "application/wasm",
	"woff": "font/woff",
	"woff2": "font/woff2",
}

const defaultMediaType = "application/octet-stream"

// MediaType returns the content type for a file name's extension, falling
// back to application/octet-stream for anything not in the built-in table.
func MediaType(name string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if ct, ok := builtinMediaTypes[ext]; ok {
		return ct
	}
	return defaultMediaType
}
