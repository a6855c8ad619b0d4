package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
)

//go:embed styles/*
var styles embed.FS

//go:embed templates/*
var templates embed.FS

//go:embed themes/*
var themes embed.FS

// ThemeExtensions are the theme file formats, in lookup order.
var ThemeExtensions = []string{".yaml", ".yml", ".toml"}

// EmbeddedLoader loads assets compiled into the binary.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

func (e *EmbeddedLoader) LoadStyle(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	content, err := styles.ReadFile("styles/" + name + ".css")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrStyleNotFound, name)
	}
	return string(content), nil
}

func (e *EmbeddedLoader) LoadTemplate(name string, kind Kind) (Template, error) {
	if err := ValidateName(name); err != nil {
		return Template{}, err
	}
	content, err := templates.ReadFile("templates/" + name + string(kind))
	if err != nil {
		return Template{}, fmt.Errorf("%w: %q (%s)", ErrTemplateNotFound, name, kind)
	}
	return Template{Name: name + string(kind), Origin: "embedded", Source: string(content)}, nil
}

// ThemeFile is a theme document: raw bytes plus the format its extension
// implies.
type ThemeFile struct {
	Name string
	Path string // "embedded:<file>" for built-ins
	Ext  string
	Data []byte
}

// LoadTheme loads a built-in theme by name.
func (e *EmbeddedLoader) LoadTheme(name string) (*ThemeFile, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	for _, ext := range ThemeExtensions {
		file := "themes/" + name + ext
		data, err := themes.ReadFile(file)
		if err == nil {
			return &ThemeFile{Name: name, Path: "embedded:" + path.Base(file), Ext: ext, Data: data}, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrThemeNotFound, name)
}

// ThemeNames lists the built-in theme names, sorted.
func (e *EmbeddedLoader) ThemeNames() []string {
	entries, err := fs.ReadDir(themes, "themes")
	if err != nil {
		return nil
	}
	var names []string
	for _, entry := range entries {
		ext := path.Ext(entry.Name())
		if slices.Contains(ThemeExtensions, ext) {
			names = append(names, strings.TrimSuffix(entry.Name(), ext))
		}
	}
	slices.Sort(names)
	return slices.Compact(names)
}

var _ Loader = (*EmbeddedLoader)(nil)
