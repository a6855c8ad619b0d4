package frontmatter_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/alnah/go-trustforge/internal/frontmatter"
)

// ---------------------------------------------------------------------------
// TestSplit - Delimiter detection
// ---------------------------------------------------------------------------

func TestSplit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		src       string
		wantBlock string
		wantBody  string
		wantFound bool
		wantErr   bool
	}{
		{
			name:      "block and body",
			src:       "---\ntitle: Access\n---\n# Heading\n",
			wantBlock: "title: Access\n",
			wantBody:  "# Heading\n",
			wantFound: true,
		},
		{
			name:      "CRLF line endings",
			src:       "---\r\ntitle: Access\r\n---\r\nbody\r\n",
			wantBlock: "title: Access\r\n",
			wantBody:  "body\r\n",
			wantFound: true,
		},
		{
			name:      "leading BOM",
			src:       "\ufeff---\ntitle: Access\n---\nbody",
			wantBlock: "title: Access\n",
			wantBody:  "body",
			wantFound: true,
		},
		{
			name:      "trailing whitespace on delimiters",
			src:       "---  \ntitle: Access\n--- \t\nbody",
			wantBlock: "title: Access\n",
			wantBody:  "body",
			wantFound: true,
		},
		{
			name:      "closing delimiter at EOF",
			src:       "---\ntitle: Access\n---",
			wantBlock: "title: Access\n",
			wantBody:  "",
			wantFound: true,
		},
		{
			name:      "empty block",
			src:       "---\n---\nbody",
			wantBlock: "",
			wantBody:  "body",
			wantFound: true,
		},
		{
			name:      "no block",
			src:       "# Just markdown\n",
			wantBody:  "# Just markdown\n",
			wantFound: false,
		},
		{
			name:      "horizontal rule later is not a block",
			src:       "intro\n---\nmore\n",
			wantBody:  "intro\n---\nmore\n",
			wantFound: false,
		},
		{name: "unclosed block", src: "---\ntitle: Access\nbody\n", wantErr: true},
		{name: "delimiter only", src: "---", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			block, body, found, err := frontmatter.Split("policy.md", []byte(tt.src))
			if tt.wantErr {
				if !errors.Is(err, frontmatter.ErrMalformed) {
					t.Fatalf("error = %v, want ErrMalformed", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if found != tt.wantFound {
				t.Errorf("found = %v, want %v", found, tt.wantFound)
			}
			if string(block) != tt.wantBlock {
				t.Errorf("block = %q, want %q", block, tt.wantBlock)
			}
			if body != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestParse - Decoding and malformed blocks
// ---------------------------------------------------------------------------

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("decodes mapping", func(t *testing.T) {
		t.Parallel()

		fields, body, err := frontmatter.Parse("p.md", []byte("---\ntitle: Access\nowner: CISO\n---\nbody"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if fields["title"] != "Access" || fields["owner"] != "CISO" {
			t.Errorf("fields = %v", fields)
		}
		if body != "body" {
			t.Errorf("body = %q", body)
		}
	})

	t.Run("no block yields empty mapping", func(t *testing.T) {
		t.Parallel()

		fields, body, err := frontmatter.Parse("p.md", []byte("text"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if fields == nil || len(fields) != 0 {
			t.Errorf("fields = %v, want empty map", fields)
		}
		if body != "text" {
			t.Errorf("body = %q", body)
		}
	})

	malformed := []struct {
		name       string
		src        string
		wantReason string
	}{
		{name: "invalid YAML", src: "---\ntitle: [unclosed\n---\nbody", wantReason: "invalid YAML"},
		{name: "sequence root", src: "---\n- a\n- b\n---\nbody", wantReason: "not a mapping"},
		{name: "unclosed", src: "---\ntitle: x\n", wantReason: "missing closing delimiter"},
	}
	for _, tt := range malformed {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := frontmatter.Parse("policies/p.md", []byte(tt.src))
			var mfe *frontmatter.MalformedFrontmatterError
			if !errors.As(err, &mfe) {
				t.Fatalf("error = %v, want *MalformedFrontmatterError", err)
			}
			if mfe.Source != "policies/p.md" {
				t.Errorf("Source = %q", mfe.Source)
			}
			if !strings.Contains(mfe.Reason, tt.wantReason) {
				t.Errorf("Reason = %q, want containing %q", mfe.Reason, tt.wantReason)
			}
			if !strings.Contains(err.Error(), "policies/p.md") {
				t.Errorf("Error() = %q, want source path", err.Error())
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestFormat - Block serialization
// ---------------------------------------------------------------------------

func TestFormat(t *testing.T) {
	t.Parallel()

	out := frontmatter.Format([]byte("title: Access Control\nowner: CISO"), "# Body\n")
	s := string(out)
	if !strings.HasPrefix(s, "---\n") || !strings.HasSuffix(s, "---\n# Body\n") {
		t.Errorf("unexpected layout:\n%s", s)
	}

	back, body, err := frontmatter.Parse("x.md", out)
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	if back["title"] != "Access Control" || body != "# Body\n" {
		t.Errorf("re-parse = %v, %q", back, body)
	}
}

func TestParse_NumberText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		want any
	}{
		{"trailing zero kept", "version: 1.10", "1.10"},
		{"whole float kept", "version: 2.0", "2.0"},
		{"leading zero kept", "version: 007", "007"},
		{"plain float stays number", "version: 1.5", 1.5},
		{"quoted stays string", `version: "1.10"`, "1.10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fields, _, err := frontmatter.Parse("p.md", []byte("---\ntitle: T\n"+tt.line+"\n---\n"))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if fields["version"] != tt.want {
				t.Errorf("version = %#v, want %#v", fields["version"], tt.want)
			}
		})
	}
}
