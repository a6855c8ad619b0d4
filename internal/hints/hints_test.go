package hints

// Notes:
// - ForBrowserConnect tests swap the package-level IsInContainer, so they
//   run sequentially; environment lookups go through a map instead of
//   t.Setenv
// ---------------------------------------------------------------------------

import (
	"strings"
	"testing"
)

func mapEnv(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

// ---------------------------------------------------------------------------
// TestForBrowserConnect - Sandbox and binary suggestions
// ---------------------------------------------------------------------------

func TestForBrowserConnect(t *testing.T) {
	orig := IsInContainer
	defer func() { IsInContainer = orig }()

	tests := []struct {
		name      string
		container bool
		env       map[string]string
		want      []string
		notWant   []string
	}{
		{
			name: "ci",
			env:  map[string]string{"CI": "true"},
			want: []string{"ROD_NO_SANDBOX", "ROD_BROWSER_BIN"},
		},
		{
			name: "gitlab",
			env:  map[string]string{"GITLAB_CI": "1", "ROD_BROWSER_BIN": "/usr/bin/chromium"},
			want: []string{"ROD_NO_SANDBOX"}, notWant: []string{"ROD_BROWSER_BIN"},
		},
		{
			name:      "container",
			container: true,
			want:      []string{"ROD_NO_SANDBOX"},
		},
		{
			name:      "sandbox already off",
			container: true,
			env:       map[string]string{"ROD_NO_SANDBOX": "1"},
			want:      []string{"ROD_BROWSER_BIN"}, notWant: []string{"ROD_NO_SANDBOX"},
		},
		{
			name:    "workstation",
			want:    []string{"--chrome-bin"},
			notWant: []string{"ROD_NO_SANDBOX"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			IsInContainer = func() bool { return tt.container }

			hint := ForBrowserConnect(mapEnv(tt.env))
			for _, w := range tt.want {
				if !strings.Contains(hint, w) {
					t.Errorf("hint %q missing %q", hint, w)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(hint, w) {
					t.Errorf("hint %q should not mention %q", hint, w)
				}
			}
		})
	}

	IsInContainer = func() bool { return false }
	hint := ForBrowserConnect(mapEnv(map[string]string{"ROD_BROWSER_BIN": "/opt/chrome"}))
	if hint != "" {
		t.Errorf("fully configured hint = %q, want empty", hint)
	}
}

// ---------------------------------------------------------------------------
// TestStaticHints - Fixed hints carry the prefix and the key advice
// ---------------------------------------------------------------------------

func TestStaticHints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"xelatex missing", ForXeLaTeXMissing(), "--engine chrome"},
		{"latex failure", ForLaTeXFailure(), "--keep-tex"},
		{"timeout", ForTimeout(), "--timeout"},
		{"output", ForOutputDirectory(), "writable"},
		{"frontmatter", ForFrontmatter(), "three dashes"},
		{"strict record", ForInvalidRecord(true), "drop --strict"},
		{"theme", ForThemeNotFound([]string{"cnciso", "neutral"}), "available: cnciso, neutral"},
		{"framework", ForFrameworkNotFound([]string{"nist-csf-2.0"}), "nist-csf-2.0; or use --catalog"},
		{"framework none", ForFrameworkNotFound(nil), "use --catalog"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if !strings.HasPrefix(tt.got, "\n  hint: ") {
				t.Errorf("hint %q lacks prefix", tt.got)
			}
			if !strings.Contains(tt.got, tt.want) {
				t.Errorf("hint %q missing %q", tt.got, tt.want)
			}
		})
	}
}

func TestEmptyHints(t *testing.T) {
	t.Parallel()

	if got := ForInvalidRecord(false); got != "" {
		t.Errorf("ForInvalidRecord(false) = %q", got)
	}
	if got := ForThemeNotFound(nil); got != "" {
		t.Errorf("ForThemeNotFound(nil) = %q", got)
	}
	if got := formatHints(nil); got != "" {
		t.Errorf("formatHints(nil) = %q", got)
	}
}

func TestForConfigNotFound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		searched []string
		want     string
	}{
		{"no paths", nil, "use --config /path/to/trustforge.yaml"},
		{"user config dir", []string{"trustforge.yaml", "/home/a/.config/trustforge/trustforge.yaml"}, "or create /home/a/.config/trustforge/trustforge.yaml"},
		{"windows separators", []string{`C:\Users\a\.config\trustforge\trustforge.yaml`}, `or create C:\Users\a\.config\trustforge\trustforge.yaml`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ForConfigNotFound(tt.searched)
			if !strings.Contains(got, tt.want) {
				t.Errorf("ForConfigNotFound() = %q, want %q", got, tt.want)
			}
		})
	}
}
