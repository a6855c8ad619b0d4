package theme

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrThemeNotFound is matched by *ThemeNotFoundError.
	ErrThemeNotFound = errors.New("theme not found")

	// ErrInvalidTheme is matched by *InvalidThemeError.
	ErrInvalidTheme = errors.New("invalid theme")
)

// ThemeNotFoundError reports a theme name that no search location could
// satisfy.
type ThemeNotFoundError struct {
	Name      string
	Tried     []string
	Available []string
}

func (e *ThemeNotFoundError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[theme] %q not found", e.Name)
	if len(e.Tried) > 0 {
		fmt.Fprintf(&b, " (tried %s)", strings.Join(e.Tried, ", "))
	}
	if len(e.Available) > 0 {
		fmt.Fprintf(&b, "; available: %s", strings.Join(e.Available, ", "))
	}
	return b.String()
}

func (e *ThemeNotFoundError) Is(target error) bool { return target == ErrThemeNotFound }

// InvalidThemeError reports a theme file that cannot be decoded or whose
// tokens fail validation. Token is a dotted path such as "color.primary";
// it is empty for syntax errors.
type InvalidThemeError struct {
	Path   string
	Token  string
	Reason string
	Err    error
}

func (e *InvalidThemeError) Error() string {
	msg := "[theme] " + e.Path
	if e.Token != "" {
		msg += ": " + e.Token
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InvalidThemeError) Unwrap() error { return e.Err }

func (e *InvalidThemeError) Is(target error) bool { return target == ErrInvalidTheme }
