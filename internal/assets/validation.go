package assets

import (
	"fmt"
	"unicode"
)

// maxNameLength bounds asset names; real names are short identifiers.
const maxNameLength = 64

// ValidateName reports whether name can address a style, template or theme.
// Names are bare identifiers: letters, digits, '-' and '_'. Extensions and
// directories are added by the loaders, so separators and dots are rejected.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidAssetName, maxNameLength)
	}
	for _, r := range name {
		if r != '-' && r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return fmt.Errorf("%w: %q contains %q", ErrInvalidAssetName, name, r)
		}
	}
	return nil
}
