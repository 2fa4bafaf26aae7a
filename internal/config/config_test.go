package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "filehunter.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMinimalConfig(t *testing.T) {
	dataDir := t.TempDir()

	cfgPath := writeConfig(t, `
[server]
bind = "127.0.0.1:8080"

[[locations]]
prefix = "/"
  [[locations.paths]]
  root = "`+dataDir+`"
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Bind != "127.0.0.1:8080" {
		t.Errorf("bind = %q", cfg.Server.Bind)
	}
	if !cfg.Server.Keepalive {
		t.Error("keepalive should default true")
	}
	if got, want := cfg.Server.MaxFileSize, int64(10*1024*1024); got != want {
		t.Errorf("max_file_size default = %d, want %d", got, want)
	}
	if got, want := cfg.Server.StreamBufferSize, int64(64*1024); got != want {
		t.Errorf("stream_buffer_size default = %d, want %d", got, want)
	}

	if len(cfg.Table.Locations) != 1 {
		t.Fatalf("locations = %d, want 1", len(cfg.Table.Locations))
	}
	loc := cfg.Table.Locations[0]
	if loc.Prefix != "/" || loc.Mode != Sequential {
		t.Errorf("location = %+v", loc)
	}
}

func TestLoadRejectsDuplicatePrefix(t *testing.T) {
	dataDir := t.TempDir()

	cfgPath := writeConfig(t, `
[server]
bind = "127.0.0.1:8080"

[[locations]]
prefix = "/imgs/"
  [[locations.paths]]
  root = "`+dataDir+`"

[[locations]]
prefix = "/imgs"
  [[locations.paths]]
  root = "`+dataDir+`"
`)

	if _, err := Load(cfgPath); err == nil {
		t.Fatal("expected duplicate prefix error, got nil")
	}
}

func TestLoadRejectsMissingBind(t *testing.T) {
	dataDir := t.TempDir()
	cfgPath := writeConfig(t, `
[[locations]]
prefix = "/"
  [[locations.paths]]
  root = "`+dataDir+`"
`)
	if _, err := Load(cfgPath); err == nil {
		t.Fatal("expected missing bind error, got nil")
	}
}

func TestLoadRejectsMissingRoot(t *testing.T) {
	cfgPath := writeConfig(t, `
[server]
bind = "127.0.0.1:8080"

[[locations]]
prefix = "/"
  [[locations.paths]]
  root = "/does/not/exist/anywhere"
`)
	if _, err := Load(cfgPath); err == nil {
		t.Fatal("expected missing root error, got nil")
	}
}

func TestPrefixTableSortedLongestFirst(t *testing.T) {
	dataDir := t.TempDir()
	cfgPath := writeConfig(t, `
[server]
bind = "127.0.0.1:8080"

[[locations]]
prefix = "/api"
  [[locations.paths]]
  root = "`+dataDir+`"

[[locations]]
prefix = "/api/v1"
  [[locations.paths]]
  root = "`+dataDir+`"
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Table.Locations[0].Prefix != "/api/v1" {
		t.Errorf("expected /api/v1 first, got %q", cfg.Table.Locations[0].Prefix)
	}
}

func TestParseSize(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"", 0},
		{"0", 0},
		{"1024", 1024},
		{"8KB", 8 * 1024},
		{"1MB", 1024 * 1024},
		{"10MB", 10 * 1024 * 1024},
		{"1GB", 1024 * 1024 * 1024},
		{"2gb", 2 * 1024 * 1024 * 1024},
	}
	for _, c := range cases {
		got, err := ParseSize(c.in)
		if err != nil {
			t.Errorf("ParseSize(%q) error: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseSize(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestParseSizeRejectsGarbage(t *testing.T) {
	if _, err := ParseSize("abc"); err == nil {
		t.Error("expected error for garbage size string")
	}
}

func TestNormalizePrefix(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"/", "/", false},
		{"/imgs", "/imgs", false},
		{"/imgs/", "/imgs", false},
		{"//imgs//x//", "/imgs/x", false},
		{"", "", true},
		{"imgs", "", true},
	}
	for _, c := range cases {
		got, err := normalizePrefix(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("normalizePrefix(%q) expected error", c.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("normalizePrefix(%q) error: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("normalizePrefix(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
