package stream

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/finch-xu/filehunter/internal/resolve"
)

func TestMediaType(t *testing.T) {
	cases := map[string]string{
		"a.html":    "text/html; charset=utf-8",
		"a.PDF":     "application/pdf",
		"a.unknown": defaultMediaType,
		"noext":     defaultMediaType,
	}
	for name, want := range cases {
		if got := MediaType(name); got != want {
			t.Errorf("MediaType(%q) = %q, want %q", name, got, want)
		}
	}
}

type bufFlusher struct {
	bytes.Buffer
	flushes int
}

func (b *bufFlusher) Flush() { b.flushes++ }

func openFile(t *testing.T, content []byte) *resolve.OpenFile {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "f.bin")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}
	h, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	return &resolve.OpenFile{Handle: h, Size: int64(len(content))}
}

func TestBodyStreamsExactBytes(t *testing.T) {
	content := bytes.Repeat([]byte("ab"), 100)
	of := openFile(t, content)
	defer of.Close()

	art := NewArtifact(of, "f.bin")
	var w bufFlusher
	if err := Body(context.Background(), &w, &art, 16, false); err != nil {
		t.Fatalf("Body: %v", err)
	}

	if !bytes.Equal(w.Bytes(), content) {
		t.Errorf("streamed %d bytes, want %d matching bytes", w.Len(), len(content))
	}
	if w.flushes == 0 {
		t.Error("expected at least one Flush call")
	}
}

func TestBodyHeadOmitsBody(t *testing.T) {
	of := openFile(t, []byte("hello"))
	defer of.Close()

	art := NewArtifact(of, "f.bin")
	var w bufFlusher
	if err := Body(context.Background(), &w, &art, 16, true); err != nil {
		t.Fatalf("Body: %v", err)
	}
	if w.Len() != 0 {
		t.Errorf("HEAD produced %d body bytes, want 0", w.Len())
	}
}

func TestBodyRespectsCancellation(t *testing.T) {
	content := bytes.Repeat([]byte("x"), 1<<20)
	of := openFile(t, content)
	defer of.Close()

	art := NewArtifact(of, "f.bin")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var w bufFlusher
	if err := Body(ctx, &w, &art, 16, false); err == nil {
		t.Error("expected cancellation error")
	}
}
