// Package config loads and validates the TOML configuration that describes
// server tuning parameters and the prefix-to-roots location table.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Mode is a location's root-selection policy.
type Mode int

const (
	Sequential Mode = iota
	Concurrent
	LatestModified
)

func (m Mode) String() string {
	switch m {
	case Sequential:
		return "sequential"
	case Concurrent:
		return "concurrent"
	case LatestModified:
		return "latest_modified"
	default:
		return "unknown"
	}
}

func parseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sequential":
		return Sequential, nil
	case "concurrent":
		return Concurrent, nil
	case "latest_modified":
		return LatestModified, nil
	default:
		return 0, fmt.Errorf("unknown mode %q", s)
	}
}

// ServerConfig holds process-wide tuning parameters.
type ServerConfig struct {
	Bind              string
	Keepalive         bool
	ConnectionTimeout time.Duration // 0 = unlimited
	MaxHeaderSize     int64
	MaxHeaders        int
	MaxBodySize       int64
	HTTP2MaxStreams   int
	MaxFileSize       int64 // 0 = unlimited
	StreamBufferSize  int64
}

// RootSpec is one candidate root directory, canonicalized at startup.
type RootSpec struct {
	Canonical  string
	Extensions map[string]struct{} // nil/empty means any extension is admitted
}

// Admits reports whether the terminal path segment name is allowed by this
// root's extension whitelist.
func (r RootSpec) Admits(name string) bool {
	if len(r.Extensions) == 0 {
		return true
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	_, ok := r.Extensions[ext]
	return ok
}

// Location binds a normalized URL prefix to a selection mode and an ordered
// list of candidate roots.
type Location struct {
	Prefix string
	Mode   Mode
	Roots  []RootSpec
}

// PrefixTable is the router index: locations sorted by normalized prefix
// length, longest first.
type PrefixTable struct {
	Locations []Location
}

// Config is the fully validated, immutable startup configuration.
type Config struct {
	Server ServerConfig
	Table  PrefixTable
}

type rawRootSpec struct {
	Root       string   `toml:"root"`
	Extensions []string `toml:"extensions"`
}

type rawLocation struct {
	Prefix string        `toml:"prefix"`
	Mode   string        `toml:"mode"`
	Paths  []rawRootSpec `toml:"paths"`
}

type rawServer struct {
	Bind              string `toml:"bind"`
	Keepalive         *bool  `toml:"keepalive"`
	ConnectionTimeout *int64 `toml:"connection_timeout"`
	MaxHeaderSize     string `toml:"max_header_size"`
	MaxHeaders        *int   `toml:"max_headers"`
	MaxBodySize       string `toml:"max_body_size"`
	HTTP2MaxStreams   *int   `toml:"http2_max_streams"`
	MaxFileSize       string `toml:"max_file_size"`
	StreamBufferSize  string `toml:"stream_buffer_size"`
}

type rawConfig struct {
	Server    rawServer     `toml:"server"`
	Locations []rawLocation `toml:"locations"`
}

// Load reads, parses, and validates the TOML file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return validate(raw)
}

func validate(raw rawConfig) (*Config, error) {
	server, err := validateServer(raw.Server)
	if err != nil {
		return nil, err
	}

	if len(raw.Locations) == 0 {
		return nil, fmt.Errorf("config must declare at least one [[locations]] entry")
	}

	locations := make([]Location, 0, len(raw.Locations))
	seenPrefix := make(map[string]struct{}, len(raw.Locations))

	for i, rl := range raw.Locations {
		prefix, err := normalizePrefix(rl.Prefix)
		if err != nil {
			return nil, fmt.Errorf("locations[%d]: %w", i, err)
		}
		if _, dup := seenPrefix[prefix]; dup {
			return nil, fmt.Errorf("locations[%d]: duplicate prefix %q after normalization", i, prefix)
		}
		seenPrefix[prefix] = struct{}{}

		mode, err := parseMode(rl.Mode)
		if err != nil {
			return nil, fmt.Errorf("locations[%d] (%s): %w", i, prefix, err)
		}

		if len(rl.Paths) == 0 {
			return nil, fmt.Errorf("locations[%d] (%s): must declare at least one path", i, prefix)
		}

		roots := make([]RootSpec, 0, len(rl.Paths))
		for j, rp := range rl.Paths {
			root, err := validateRoot(rp)
			if err != nil {
				return nil, fmt.Errorf("locations[%d].paths[%d]: %w", i, j, err)
			}
			roots = append(roots, root)
		}

		locations = append(locations, Location{Prefix: prefix, Mode: mode, Roots: roots})
	}

	sort.SliceStable(locations, func(i, j int) bool {
		return len(locations[i].Prefix) > len(locations[j].Prefix)
	})

	return &Config{Server: server, Table: PrefixTable{Locations: locations}}, nil
}

func validateServer(rs rawServer) (ServerConfig, error) {
	if strings.TrimSpace(rs.Bind) == "" {
		return ServerConfig{}, fmt.Errorf("server.bind is required")
	}

	keepalive := true
	if rs.Keepalive != nil {
		keepalive = *rs.Keepalive
	}

	connTimeout := int64(300)
	if rs.ConnectionTimeout != nil {
		connTimeout = *rs.ConnectionTimeout
	}
	if connTimeout < 0 {
		return ServerConfig{}, fmt.Errorf("server.connection_timeout must be non-negative")
	}

	maxHeaders := 64
	if rs.MaxHeaders != nil {
		maxHeaders = *rs.MaxHeaders
	}
	if maxHeaders < 0 {
		return ServerConfig{}, fmt.Errorf("server.max_headers must be non-negative")
	}

	http2Max := 128
	if rs.HTTP2MaxStreams != nil {
		http2Max = *rs.HTTP2MaxStreams
	}
	if http2Max < 0 {
		return ServerConfig{}, fmt.Errorf("server.http2_max_streams must be non-negative")
	}

	maxHeaderSize, err := sizeOrDefault(rs.MaxHeaderSize, "8KB")
	if err != nil {
		return ServerConfig{}, fmt.Errorf("server.max_header_size: %w", err)
	}
	maxBodySize, err := sizeOrDefault(rs.MaxBodySize, "1MB")
	if err != nil {
		return ServerConfig{}, fmt.Errorf("server.max_body_size: %w", err)
	}
	maxFileSize, err := sizeOrDefault(rs.MaxFileSize, "10MB")
	if err != nil {
		return ServerConfig{}, fmt.Errorf("server.max_file_size: %w", err)
	}
	streamBuf, err := sizeOrDefault(rs.StreamBufferSize, "64KB")
	if err != nil {
		return ServerConfig{}, fmt.Errorf("server.stream_buffer_size: %w", err)
	}
	if streamBuf <= 0 {
		streamBuf, _ = ParseSize("64KB")
	}

	return ServerConfig{
		Bind:              rs.Bind,
		Keepalive:         keepalive,
		ConnectionTimeout: time.Duration(connTimeout) * time.Second,
		MaxHeaderSize:     maxHeaderSize,
		MaxHeaders:        maxHeaders,
		MaxBodySize:       maxBodySize,
		HTTP2MaxStreams:   http2Max,
		MaxFileSize:       maxFileSize,
		StreamBufferSize:  streamBuf,
	}, nil
}

func sizeOrDefault(s, def string) (int64, error) {
	if strings.TrimSpace(s) == "" {
		return ParseSize(def)
	}
	return ParseSize(s)
}

func validateRoot(rp rawRootSpec) (RootSpec, error) {
	if strings.TrimSpace(rp.Root) == "" {
		return RootSpec{}, fmt.Errorf("root is required")
	}

	info, err := os.Stat(rp.Root)
	if err != nil {
		return RootSpec{}, fmt.Errorf("root %q: %w", rp.Root, err)
	}
	if !info.IsDir() {
		return RootSpec{}, fmt.Errorf("root %q is not a directory", rp.Root)
	}

	abs, err := filepath.Abs(rp.Root)
	if err != nil {
		return RootSpec{}, fmt.Errorf("root %q: %w", rp.Root, err)
	}
	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return RootSpec{}, fmt.Errorf("root %q: %w", rp.Root, err)
	}

	var exts map[string]struct{}
	if len(rp.Extensions) > 0 {
		exts = make(map[string]struct{}, len(rp.Extensions))
		for _, e := range rp.Extensions {
			exts[strings.ToLower(strings.TrimPrefix(e, "."))] = struct{}{}
		}
	}

	return RootSpec{Canonical: canonical, Extensions: exts}, nil
}

// normalizePrefix collapses repeated slashes, strips a trailing slash (except
// for the single-character root prefix), and rejects an empty or malformed
// prefix.
func normalizePrefix(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" {
		return "", fmt.Errorf("prefix is required")
	}
	if !strings.HasPrefix(p, "/") {
		return "", fmt.Errorf("prefix %q must start with /", p)
	}

	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}

	if p != "/" {
		p = strings.TrimSuffix(p, "/")
	}

	if p == "" {
		p = "/"
	}

	return p, nil
}
