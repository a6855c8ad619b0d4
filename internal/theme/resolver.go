package theme

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/alnah/go-trustforge/internal/assets"
	"github.com/alnah/go-trustforge/internal/fileutil"
	"github.com/alnah/go-trustforge/internal/yamlutil"
)

// Resolver finds themes by name. User directories are searched in order,
// then the built-in themes.
type Resolver struct {
	Dirs     []string
	embedded *assets.EmbeddedLoader
}

// NewResolver creates a Resolver searching dirs before the built-ins.
// Empty entries are ignored.
func NewResolver(dirs ...string) *Resolver {
	r := &Resolver{embedded: assets.NewEmbeddedLoader()}
	for _, d := range dirs {
		if d != "" {
			r.Dirs = append(r.Dirs, d)
		}
	}
	return r
}

// Resolve returns the theme called name. An empty name yields the built-in
// defaults; a name that looks like a path loads that file directly.
func (r *Resolver) Resolve(name string) (*Theme, error) {
	if name == "" {
		return Default(), nil
	}
	if fileutil.IsFilePath(name, assets.ThemeExtensions...) {
		if !fileutil.FileExists(name) {
			return nil, &ThemeNotFoundError{Name: name, Tried: []string{name}, Available: r.Available()}
		}
		return Load(name)
	}

	var tried []string
	for _, dir := range r.Dirs {
		for _, ext := range assets.ThemeExtensions {
			path := filepath.Join(dir, name+ext)
			tried = append(tried, path)
			if fileutil.FileExists(path) {
				t, err := Load(path)
				if err != nil {
					return nil, err
				}
				t.Name = name
				return t, nil
			}
		}
	}

	tried = append(tried, "embedded:"+name)
	file, err := r.embedded.LoadTheme(name)
	if err == nil {
		return Decode(name, file.Path, file.Ext, file.Data)
	}
	if !errors.Is(err, assets.ErrThemeNotFound) && !errors.Is(err, assets.ErrInvalidAssetName) {
		return nil, err
	}
	return nil, &ThemeNotFoundError{Name: name, Tried: tried, Available: r.Available()}
}

// Available lists theme names found in the search directories and the
// built-ins, sorted and deduplicated.
func (r *Resolver) Available() []string {
	names := r.embedded.ThemeNames()
	for _, dir := range r.Dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			ext := filepath.Ext(entry.Name())
			if entry.IsDir() || !slices.Contains(assets.ThemeExtensions, ext) {
				continue
			}
			names = append(names, strings.TrimSuffix(entry.Name(), ext))
		}
	}
	slices.Sort(names)
	return slices.Compact(names)
}

// Load reads and decodes the theme file at path. The theme is named after
// the file's base name.
func Load(path string) (*Theme, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-selected theme file
	if err != nil {
		return nil, &InvalidThemeError{Path: path, Reason: "cannot read file", Err: err}
	}
	ext := strings.ToLower(filepath.Ext(path))
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	t, err := Decode(name, path, ext, data)
	if err != nil {
		return nil, err
	}
	if logo := t.Tokens.Brand.LogoPath; logo != "" && !filepath.IsAbs(logo) {
		t.Tokens.Brand.LogoPath = filepath.Join(filepath.Dir(path), logo)
	}
	return t, nil
}

// Decode parses theme data in the format implied by ext (".yaml", ".yml"
// or ".toml"), validates it and overlays it onto the defaults one section
// deep: tokens missing from the file keep their default values.
func Decode(name, path, ext string, data []byte) (*Theme, error) {
	raw, err := decodeRaw(ext, data)
	if err != nil {
		return nil, &InvalidThemeError{Path: path, Reason: err.Error()}
	}
	pruneNulls(raw)

	doc, err := json.Marshal(raw)
	if err != nil {
		return nil, &InvalidThemeError{Path: path, Reason: "unsupported value", Err: err}
	}
	v, err := validateTokens(doc)
	if err != nil {
		return nil, fmt.Errorf("theme schema: %w", err)
	}
	if v != nil {
		return nil, &InvalidThemeError{Path: path, Token: v.token, Reason: v.message}
	}

	tokens := DefaultTokens()
	if err := json.Unmarshal(doc, &tokens); err != nil {
		return nil, &InvalidThemeError{Path: path, Reason: "cannot apply tokens", Err: err}
	}
	return &Theme{Name: name, Path: path, Tokens: tokens}, nil
}

func decodeRaw(ext string, data []byte) (map[string]any, error) {
	switch ext {
	case ".yaml", ".yml":
		m, err := yamlutil.DecodeMapping(data)
		if err != nil {
			return nil, fmt.Errorf("invalid YAML: %v", err)
		}
		return m, nil
	case ".toml":
		m := map[string]any{}
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("invalid TOML: %v", err)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported theme format %q", ext)
	}
}

// pruneNulls drops null values so that "logo_path:" with no value means
// "keep the default".
func pruneNulls(m map[string]any) {
	for k, v := range m {
		switch vv := v.(type) {
		case nil:
			delete(m, k)
		case map[string]any:
			pruneNulls(vv)
		}
	}
}
