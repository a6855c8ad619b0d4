package assets

import "errors"

var (
	ErrStyleNotFound    = errors.New("style not found")
	ErrTemplateNotFound = errors.New("template not found")
	ErrThemeNotFound    = errors.New("theme not found")

	// ErrInvalidAssetName is returned for names that are not bare
	// identifiers; see ValidateName.
	ErrInvalidAssetName = errors.New("invalid asset name")

	// ErrInvalidBasePath is returned when the asset override directory is
	// missing or unreadable.
	ErrInvalidBasePath = errors.New("invalid base path")

	ErrAssetRead     = errors.New("failed to read asset")
	ErrPathTraversal = errors.New("asset resolves outside the base path")
)
