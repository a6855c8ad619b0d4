package pipeline

// Notes:
// - Paths are built with filepath so expectations hold on Windows too.
// - Error branches of parseHTML/renderHTML are not covered: the html package
//   does not fail on the inputs this package produces.

import (
	"path/filepath"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestRewriteImagePaths - Only relative img[src] values change
// ---------------------------------------------------------------------------

func TestRewriteImagePaths(t *testing.T) {
	t.Parallel()

	prefix := func(rel string) (string, bool) { return "X/" + rel, true }

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "relative image", in: `<p><img src="img/a.png" alt="a"/></p>`, want: `src="X/img/a.png"`},
		{name: "dot slash", in: `<img src="./a.png">`, want: `src="X/./a.png"`},
		{name: "absolute unchanged", in: `<img src="/abs/a.png">`, want: `src="/abs/a.png"`},
		{name: "https unchanged", in: `<img src="https://e.com/a.png">`, want: `src="https://e.com/a.png"`},
		{name: "data URI unchanged", in: `<img src="data:image/png;base64,AA">`, want: `src="data:image/png;base64,AA"`},
		{name: "links untouched", in: `<a href="other.md">x</a><img src="a.png">`, want: `href="other.md"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := RewriteImagePaths(tt.in, prefix)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, got)
			}
		})
	}
}

func TestRewriteImagePaths_FullDocument(t *testing.T) {
	t.Parallel()

	in := `<!DOCTYPE html><html><head><title>t</title></head><body><img src="a.png"></body></html>`
	got, err := RewriteImagePaths(in, func(rel string) (string, bool) { return "b.png", true })
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, `src="b.png"`) || !strings.Contains(got, "<title>t</title>") {
		t.Errorf("unexpected output:\n%s", got)
	}
}

func TestRewriteImagePaths_NoImages(t *testing.T) {
	t.Parallel()

	in := `<p>unchanged &amp; verbatim</p>`
	got, err := RewriteImagePaths(in, func(string) (string, bool) { return "", true })
	if err != nil {
		t.Fatal(err)
	}
	if got != in {
		t.Errorf("output = %q, want input unchanged", got)
	}
}

// ---------------------------------------------------------------------------
// TestFileURLsFrom / TestRelativeTo - Rewrite strategies
// ---------------------------------------------------------------------------

func TestFileURLsFrom(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rw := FileURLsFrom(dir)

	got, ok := rw("img/a.png")
	if !ok || !strings.HasPrefix(got, "file://") || !strings.HasSuffix(got, "/img/a.png") {
		t.Errorf("rewrite = %q, %v", got, ok)
	}
	if _, ok := rw("../../etc/passwd"); ok {
		t.Error("path escaping the source directory was rewritten")
	}
}

func TestRelativeTo(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	rw := RelativeTo(filepath.Join(root, "policies"), filepath.Join(root, "out"))
	if rw == nil {
		t.Fatal("RelativeTo returned nil")
	}
	got, ok := rw("img/a.png")
	if !ok || got != "../policies/img/a.png" {
		t.Errorf("rewrite = %q, %v, want ../policies/img/a.png", got, ok)
	}

	if RelativeTo(root, root) != nil {
		t.Error("same directory should need no rewrite")
	}
}

func TestIsRelativePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{"a.png", true},
		{"./a.png", true},
		{"../a.png", true},
		{"", false},
		{"#top", false},
		{"//cdn/a.png", false},
		{"mailto:x@y", false},
		{"/abs.png", false},
	}
	for _, tt := range tests {
		if got := isRelativePath(tt.in); got != tt.want {
			t.Errorf("isRelativePath(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// TestInjectStylesheet - Placement fallbacks
// ---------------------------------------------------------------------------

func TestInjectStylesheet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
		css  string
		want string
	}{
		{name: "before head close", doc: "<html><head></head><body></body></html>", css: "a{}", want: "<head><style>a{}</style></head>"},
		{name: "after body open", doc: `<body class="x">t</body>`, css: "a{}", want: `<body class="x"><style>a{}</style>t`},
		{name: "prepended", doc: "<p>t</p>", css: "a{}", want: "<style>a{}</style><p>t</p>"},
		{name: "empty css", doc: "<p>t</p>", css: "", want: "<p>t</p>"},
		{name: "sanitized", doc: "<p>t</p>", css: "</style><script>", want: `<style><\/style><script></style>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := InjectStylesheet(tt.doc, tt.css); !strings.Contains(got, tt.want) {
				t.Errorf("InjectStylesheet() = %q, want containing %q", got, tt.want)
			}
		})
	}
}
