package fileutil_test

// Notes:
// - WriteFileAtomic chmod/rename failure branches are not tested: forcing them
//   requires platform-specific filesystem tricks.
// - Permission-denied writes are exercised with a read-only directory and are
//   skipped when running as root, where permissions are not enforced.

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alnah/go-trustforge/internal/fileutil"
)

// ---------------------------------------------------------------------------
// TestValidateExtension - Extension validation
// ---------------------------------------------------------------------------

func TestValidateExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		extension string
		wantErr   error
	}{
		{name: "tex", extension: "tex"},
		{name: "html", extension: "html"},
		{name: "empty", extension: "", wantErr: fileutil.ErrExtensionEmpty},
		{name: "forward slash", extension: "../etc/passwd", wantErr: fileutil.ErrExtensionPathTraversal},
		{name: "backslash", extension: "..\\win", wantErr: fileutil.ErrExtensionPathTraversal},
		{name: "null byte", extension: "html\x00exe", wantErr: fileutil.ErrExtensionPathTraversal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := fileutil.ValidateExtension(tt.extension)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateExtension(%q) = %v, want %v", tt.extension, err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestStripBOM - Leading byte order mark removal
// ---------------------------------------------------------------------------

func TestStripBOM(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []byte
		want []byte
	}{
		{name: "with BOM", in: []byte("\xef\xbb\xbf---\ntitle: x\n"), want: []byte("---\ntitle: x\n")},
		{name: "without BOM", in: []byte("---\n"), want: []byte("---\n")},
		{name: "empty", in: []byte{}, want: []byte{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := fileutil.StripBOM(tt.in)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("StripBOM() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadSource(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "policy.md")
	if err := os.WriteFile(path, []byte("\xef\xbb\xbfbody"), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := fileutil.ReadSource(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != "body" {
		t.Errorf("ReadSource() = %q, want %q", got, "body")
	}

	if _, err := fileutil.ReadSource(filepath.Join(dir, "missing.md")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want os.ErrNotExist", err)
	}
}

// ---------------------------------------------------------------------------
// TestWriteFileAtomic - Replaces files and creates parents
// ---------------------------------------------------------------------------

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out", "index.csv")

	if err := fileutil.WriteFileAtomic(path, []byte("first"), 0o644); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := fileutil.WriteFileAtomic(path, []byte("second"), 0o644); err != nil {
		t.Fatalf("second write: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "second" {
		t.Errorf("content = %q, want %q", got, "second")
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory holds %d entries, want 1 (temp files left behind)", len(entries))
	}
}

func TestWriteFileAtomic_ReadOnlyDir(t *testing.T) {
	t.Parallel()

	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}

	dir := t.TempDir()
	if err := os.Chmod(dir, 0o500); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(dir, 0o700) })

	err := fileutil.WriteFileAtomic(filepath.Join(dir, "x.html"), []byte("x"), 0o644)
	if !errors.Is(err, fileutil.ErrWrite) {
		t.Fatalf("error = %v, want ErrWrite", err)
	}
	var we *fileutil.WriteError
	if !errors.As(err, &we) {
		t.Fatalf("error %T is not *WriteError", err)
	}
	if we.Path != filepath.Join(dir, "x.html") {
		t.Errorf("Path = %q", we.Path)
	}
}

// ---------------------------------------------------------------------------
// TestWriteTempFile - Temp file lifecycle
// ---------------------------------------------------------------------------

func TestWriteTempFile(t *testing.T) {
	t.Parallel()

	path, cleanup, err := fileutil.WriteTempFile("<html></html>", "html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Ext(path) != ".html" {
		t.Errorf("extension = %q, want .html", filepath.Ext(path))
	}
	if !fileutil.FileExists(path) {
		t.Fatal("temp file does not exist")
	}
	cleanup()
	if fileutil.FileExists(path) {
		t.Error("temp file still exists after cleanup")
	}

	if _, _, err := fileutil.WriteTempFile("x", ""); !errors.Is(err, fileutil.ErrExtensionEmpty) {
		t.Errorf("error = %v, want ErrExtensionEmpty", err)
	}
}

// ---------------------------------------------------------------------------
// TestIsFilePath - Name vs path detection
// ---------------------------------------------------------------------------

func TestIsFilePath(t *testing.T) {
	t.Parallel()

	exts := []string{".yaml", ".yml", ".toml"}
	tests := []struct {
		in   string
		want bool
	}{
		{in: "neutral", want: false},
		{in: "my-theme", want: false},
		{in: "./themes/acme.yaml", want: true},
		{in: "acme.toml", want: true},
		{in: "ACME.YML", want: true},
		{in: "sub/dir", want: true},
		{in: `C:\themes\acme`, want: true},
		{in: "acme.json", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			if got := fileutil.IsFilePath(tt.in, exts...); got != tt.want {
				t.Errorf("IsFilePath(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestOutputPath(t *testing.T) {
	t.Parallel()

	got := fileutil.OutputPath("policies/access-control.md", "out", ".html")
	if want := filepath.Join("out", "access-control.html"); got != want {
		t.Errorf("OutputPath() = %q, want %q", got, want)
	}
}

func TestIsURL(t *testing.T) {
	t.Parallel()

	if !fileutil.IsURL("https://example.com/logo.png") {
		t.Error("https URL not detected")
	}
	if fileutil.IsURL("assets/logo.png") {
		t.Error("relative path detected as URL")
	}
}
