package sanitize

import (
	"errors"
	"testing"
)

func TestPathAccepts(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"/hello.txt", []string{"hello.txt"}},
		{"/a/b/c.txt", []string{"a", "b", "c.txt"}},
		{"/a%2Fb.txt", []string{"a", "b.txt"}}, // %2F decodes to '/', re-split happens
	}
	for _, c := range cases {
		got, err := Path(c.in)
		if err != nil {
			t.Errorf("Path(%q) error: %v", c.in, err)
			continue
		}
		if len(got.Segments()) != len(c.want) {
			t.Errorf("Path(%q) segments = %v, want %v", c.in, got.Segments(), c.want)
			continue
		}
		for i, s := range got.Segments() {
			if s != c.want[i] {
				t.Errorf("Path(%q) segment %d = %q, want %q", c.in, i, s, c.want[i])
			}
		}
	}
}

func TestPathRejects(t *testing.T) {
	cases := []string{
		"/",
		"//etc/passwd",
		"/./a",
		"/../a",
		"/a/..",
		"/a/../../etc",
		"/.hidden",
		"/a/.hidden",
		"/%2E%2E/etc/passwd",
		"/a\x00b",
		"/%00",
		"",
	}
	for _, in := range cases {
		if _, err := Path(in); !errors.Is(err, ErrBadPath) {
			t.Errorf("Path(%q) = %v, want ErrBadPath", in, err)
		}
	}
}

func TestRelPathJoinAndLast(t *testing.T) {
	p, err := Path("/a/b/c.txt")
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	if got := p.Join(); got != "a/b/c.txt" {
		t.Errorf("Join() = %q", got)
	}
	if got := p.Last(); got != "c.txt" {
		t.Errorf("Last() = %q", got)
	}
}
