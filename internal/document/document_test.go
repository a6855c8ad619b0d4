package document_test

// Notes:
// - Round-trip checks compare with reflect.DeepEqual; Extra values keep the
//   numeric types the YAML decoder picks, which is the same on both passes.

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/alnah/go-trustforge/internal/document"
	"github.com/alnah/go-trustforge/internal/frontmatter"
)

// ---------------------------------------------------------------------------
// TestNewMetadata - Field mapping and normalization
// ---------------------------------------------------------------------------

func TestNewMetadata(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		raw   map[string]any
		check func(t *testing.T, m document.Metadata)
	}{
		{
			name: "all known fields",
			raw: map[string]any{
				"title": "Access Control Policy", "subtitle": "Internal",
				"version": "1.2.0", "owner": "CISO", "last_reviewed": "2025-01-15",
				"applies_to": []any{"All staff", "Contractors"}, "refs": []any{"PR.AC-01"},
				"footer": "acme.example",
			},
			check: func(t *testing.T, m document.Metadata) {
				want := document.Metadata{
					Title: "Access Control Policy", Subtitle: "Internal", Version: "1.2.0",
					Owner: "CISO", LastReviewed: "2025-01-15",
					AppliesTo: []string{"All staff", "Contractors"}, Refs: []string{"PR.AC-01"},
					Footer: "acme.example",
				}
				if !reflect.DeepEqual(m, want) {
					t.Errorf("got %+v\nwant %+v", m, want)
				}
			},
		},
		{
			name: "scalar applies_to becomes one-element list",
			raw:  map[string]any{"title": "T", "applies_to": "Engineering"},
			check: func(t *testing.T, m document.Metadata) {
				if !reflect.DeepEqual(m.AppliesTo, []string{"Engineering"}) {
					t.Errorf("AppliesTo = %v", m.AppliesTo)
				}
			},
		},
		{
			name: "numeric version and timestamp date",
			raw: map[string]any{
				"title": "T", "version": float64(2.5),
				"last_reviewed": time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			},
			check: func(t *testing.T, m document.Metadata) {
				if m.Version != "2.5" {
					t.Errorf("Version = %q, want 2.5", m.Version)
				}
				if m.LastReviewed != "2025-03-01" {
					t.Errorf("LastReviewed = %q, want 2025-03-01", m.LastReviewed)
				}
			},
		},
		{
			name: "list items stringified and blanks dropped",
			raw:  map[string]any{"title": "T", "refs": []any{"A", uint64(7), "  ", nil}},
			check: func(t *testing.T, m document.Metadata) {
				if !reflect.DeepEqual(m.Refs, []string{"A", "7"}) {
					t.Errorf("Refs = %v", m.Refs)
				}
			},
		},
		{
			name: "unknown keys kept in Extra",
			raw:  map[string]any{"title": "T", "classification": "internal", "review_cycle": uint64(12)},
			check: func(t *testing.T, m document.Metadata) {
				want := map[string]any{"classification": "internal", "review_cycle": uint64(12)}
				if !reflect.DeepEqual(m.Extra, want) {
					t.Errorf("Extra = %v, want %v", m.Extra, want)
				}
			},
		},
		{
			name: "title trimmed",
			raw:  map[string]any{"title": "  Spaced  "},
			check: func(t *testing.T, m document.Metadata) {
				if m.Title != "Spaced" {
					t.Errorf("Title = %q", m.Title)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m, err := document.NewMetadata("p.md", tt.raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, m)
		})
	}
}

func TestNewMetadata_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	nested := map[string]any{"level": "high"}
	raw := map[string]any{"title": "T", "risk": nested}

	m, err := document.NewMetadata("p.md", raw)
	if err != nil {
		t.Fatal(err)
	}
	m.Extra["risk"].(map[string]any)["level"] = "low"

	if nested["level"] != "high" {
		t.Error("input map was mutated through Extra")
	}
}

// ---------------------------------------------------------------------------
// TestNewMetadata_MissingTitle - Required field enforcement
// ---------------------------------------------------------------------------

func TestNewMetadata_MissingTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  map[string]any
	}{
		{name: "absent", raw: map[string]any{"owner": "CISO"}},
		{name: "empty", raw: map[string]any{"title": ""}},
		{name: "whitespace", raw: map[string]any{"title": "   "}},
		{name: "null", raw: map[string]any{"title": nil}},
		{name: "not a scalar", raw: map[string]any{"title": []any{"a"}}},
		{name: "empty mapping", raw: map[string]any{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := document.NewMetadata("policies/p.md", tt.raw)
			if !errors.Is(err, document.ErrMissingField) {
				t.Fatalf("error = %v, want ErrMissingField", err)
			}
			var mfe *document.MissingFieldError
			if !errors.As(err, &mfe) {
				t.Fatalf("error %T is not *MissingFieldError", err)
			}
			if mfe.Field != "title" || mfe.Source != "policies/p.md" {
				t.Errorf("got Field=%q Source=%q", mfe.Field, mfe.Source)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestMetadata_RoundTrip - Marshal then parse yields equal metadata
// ---------------------------------------------------------------------------

func TestMetadata_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		meta document.Metadata
	}{
		{name: "title only", meta: document.Metadata{Title: "Minimal"}},
		{
			name: "numeric-looking strings",
			meta: document.Metadata{Title: "true", Version: "1.0", LastReviewed: "2025-01-01", Owner: "null"},
		},
		{
			name: "lists and quotes",
			meta: document.Metadata{
				Title: `He said "hi": ok`, AppliesTo: []string{"a, b", "c"}, Refs: []string{"#1"},
			},
		},
		{
			name: "extras",
			meta: document.Metadata{
				Title: "With extras",
				Extra: map[string]any{"classification": "internal", "tags": []any{"x", "y"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			block, err := tt.meta.Marshal()
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			raw, _, err := frontmatter.Parse("rt.md", frontmatter.Format(block, ""))
			if err != nil {
				t.Fatalf("Parse: %v\n%s", err, block)
			}
			got, err := document.NewMetadata("rt.md", raw)
			if err != nil {
				t.Fatalf("NewMetadata: %v", err)
			}
			if !reflect.DeepEqual(got, tt.meta) {
				t.Errorf("round trip mismatch\n got %#v\nwant %#v\nblock:\n%s", got, tt.meta, block)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestParse - Document assembly and version warnings
// ---------------------------------------------------------------------------

func TestParse(t *testing.T) {
	t.Parallel()

	src := []byte("---\ntitle: Access\nversion: draft\n---\n# Body\n")
	core, logs := observer.New(zapcore.WarnLevel)

	doc, err := document.Parse("p.md", src, zap.New(core))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Metadata.Title != "Access" || doc.Body != "# Body\n" || doc.Path != "p.md" {
		t.Errorf("doc = %+v", doc)
	}
	if n := logs.FilterMessage("version does not look like a semantic version").Len(); n != 1 {
		t.Errorf("version warnings = %d, want 1", n)
	}
	if doc.BodyLine != 5 {
		t.Errorf("BodyLine = %d, want 5", doc.BodyLine)
	}
	if got := doc.SourceLine(2); got != 6 {
		t.Errorf("SourceLine(2) = %d, want 6", got)
	}
}

func TestParse_VersionText(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"version: 1.10":   "1.10",
		"version: 3.0":    "3.0",
		"version: 2":      "2",
		"version: 1.2.0":  "1.2.0",
		"version: '1.20'": "1.20",
	}
	for line, want := range tests {
		doc, err := document.Parse("p.md", []byte("---\ntitle: Access\n"+line+"\n---\nbody\n"), nil)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", line, err)
		}
		if doc.Metadata.Version != want {
			t.Errorf("Parse(%q) Version = %q, want %q", line, doc.Metadata.Version, want)
		}
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	logger := zaptest.NewLogger(t)

	if _, err := document.Parse("p.md", []byte("---\ntitle: x\n"), logger); !errors.Is(err, frontmatter.ErrMalformed) {
		t.Errorf("unclosed: error = %v, want ErrMalformed", err)
	}
	if _, err := document.Parse("p.md", []byte("# no frontmatter\n"), logger); !errors.Is(err, document.ErrMissingField) {
		t.Errorf("no block: error = %v, want ErrMissingField", err)
	}
}

func TestRead(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "p.md")
	if err := os.WriteFile(path, []byte("\ufeff---\r\ntitle: Bom\r\n---\r\nbody"), 0o600); err != nil {
		t.Fatal(err)
	}

	doc, err := document.Read(path, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Metadata.Title != "Bom" {
		t.Errorf("Title = %q", doc.Metadata.Title)
	}
	if doc.BodyLine != 4 {
		t.Errorf("BodyLine = %d, want 4", doc.BodyLine)
	}

	if _, err := document.Read(filepath.Join(dir, "missing.md"), nil); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want os.ErrNotExist", err)
	}
}

func TestDocument_Source(t *testing.T) {
	t.Parallel()

	doc, err := document.Parse("p.md", []byte("---\ntitle: A\nrefs: X\n---\nbody\n"), nil)
	if err != nil {
		t.Fatal(err)
	}
	src, err := doc.Source()
	if err != nil {
		t.Fatal(err)
	}
	again, err := document.Parse("p.md", src, nil)
	if err != nil {
		t.Fatalf("re-parse: %v\n%s", err, src)
	}
	if !reflect.DeepEqual(again, doc) {
		t.Errorf("re-parse = %+v, want %+v", again, doc)
	}
}
