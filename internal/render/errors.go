package render

import (
	"errors"
	"fmt"
)

var (
	// ErrTemplate is matched by *TemplateError.
	ErrTemplate = errors.New("template error")

	// ErrAssetNotFound is matched by *AssetNotFoundError.
	ErrAssetNotFound = errors.New("asset not found")
)

// TemplateError reports a document template that cannot be parsed, lacks
// a single body placeholder, or fails while executing.
type TemplateError struct {
	Template string
	Reason   string
	Err      error
}

func (e *TemplateError) Error() string {
	msg := fmt.Sprintf("[template] %s: %s", e.Template, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TemplateError) Unwrap() error { return e.Err }

func (e *TemplateError) Is(target error) bool { return target == ErrTemplate }

// AssetNotFoundError reports a file a theme refers to, such as the logo,
// that does not exist.
type AssetNotFoundError struct {
	Path string
	Kind string
}

func (e *AssetNotFoundError) Error() string {
	return fmt.Sprintf("[asset] %s not found: %s", e.Kind, e.Path)
}

func (e *AssetNotFoundError) Is(target error) bool { return target == ErrAssetNotFound }
