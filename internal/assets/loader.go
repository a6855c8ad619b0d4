package assets

// Kind selects a template flavor by file extension.
type Kind string

const (
	HTML  Kind = ".html"
	LaTeX Kind = ".tex"
)

// Loader loads stylesheets and document templates by name.
// Implementations may read embedded assets or a directory on disk.
type Loader interface {
	// LoadStyle loads a stylesheet by name (without .css extension).
	// Returns ErrStyleNotFound if the style doesn't exist.
	LoadStyle(name string) (string, error)

	// LoadTemplate loads a template by name and kind.
	// Returns ErrTemplateNotFound if the template doesn't exist.
	LoadTemplate(name string, kind Kind) (Template, error)
}

// Template is template source plus where it came from, for error messages.
type Template struct {
	Name   string
	Origin string // "embedded" or a file path
	Source string
}
