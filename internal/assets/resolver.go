package assets

import "errors"

// Resolver combines a custom directory with the embedded assets. Custom
// assets win; embedded ones fill in whatever the directory lacks.
type Resolver struct {
	custom   Loader // nil if no custom path configured
	embedded *EmbeddedLoader
}

// NewResolver creates a Resolver. An empty customBasePath uses embedded
// assets only; a non-empty one must be a readable directory.
func NewResolver(customBasePath string) (*Resolver, error) {
	r := &Resolver{embedded: NewEmbeddedLoader()}
	if customBasePath != "" {
		fsLoader, err := NewFilesystemLoader(customBasePath)
		if err != nil {
			return nil, err
		}
		r.custom = fsLoader
	}
	return r, nil
}

func (r *Resolver) LoadStyle(name string) (string, error) {
	if r.custom != nil {
		content, err := r.custom.LoadStyle(name)
		if err == nil || !isNotFoundError(err) {
			return content, err
		}
	}
	return r.embedded.LoadStyle(name)
}

func (r *Resolver) LoadTemplate(name string, kind Kind) (Template, error) {
	if r.custom != nil {
		tmpl, err := r.custom.LoadTemplate(name, kind)
		if err == nil || !isNotFoundError(err) {
			return tmpl, err
		}
	}
	return r.embedded.LoadTemplate(name, kind)
}

// Embedded exposes the built-in loader, which also serves themes.
func (r *Resolver) Embedded() *EmbeddedLoader {
	return r.embedded
}

// HasCustomLoader returns true if a custom directory is configured.
func (r *Resolver) HasCustomLoader() bool {
	return r.custom != nil
}

// isNotFoundError reports errors that allow falling back to embedded assets.
// Validation and I/O errors do not.
func isNotFoundError(err error) bool {
	return errors.Is(err, ErrStyleNotFound) || errors.Is(err, ErrTemplateNotFound)
}

var _ Loader = (*Resolver)(nil)
