// Package yamlutil wraps YAML parsing so the rest of the module never imports
// the YAML library directly.
package yamlutil

import (
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
)

// MaxInputSize limits YAML input to prevent memory exhaustion (default 1MB).
var MaxInputSize = 1 << 20

var (
	ErrNilData        = errors.New("yamlutil: nil or empty data")
	ErrNilDestination = errors.New("yamlutil: nil destination pointer")
	ErrInputTooLarge  = errors.New("yamlutil: input exceeds maximum size")
	ErrNotMapping     = errors.New("yamlutil: document root is not a mapping")
)

// MapSlice is an ordered mapping; marshaling preserves key order.
type MapSlice = yaml.MapSlice

// MapItem is a single key/value pair of a MapSlice.
type MapItem = yaml.MapItem

func validateInput(data []byte, v any) error {
	if len(data) == 0 {
		return ErrNilData
	}
	if len(data) > MaxInputSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}
	if v == nil {
		return ErrNilDestination
	}
	return nil
}

func Unmarshal(data []byte, v any) error {
	if err := validateInput(data, v); err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}

func Marshal(v any) ([]byte, error) {
	result, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("yamlutil: %w", err)
	}
	return result, nil
}

// UnmarshalStrict rejects unknown fields in the input.
func UnmarshalStrict(data []byte, v any) error {
	if err := validateInput(data, v); err != nil {
		return err
	}
	if err := yaml.UnmarshalWithOptions(data, v, yaml.Strict()); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}

// IsNull reports whether the document holds no value: blank input, only
// comments, or an explicit null. Decoding such a document into a struct
// zeroes it, so callers holding defaults skip the decode.
func IsNull(data []byte) (bool, error) {
	if len(data) > MaxInputSize {
		return false, fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}
	if len(data) == 0 {
		return true, nil
	}
	var root any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return false, fmt.Errorf("yamlutil: %w", err)
	}
	return root == nil, nil
}

// DecodeMapping decodes a document whose root must be a mapping.
// Blank or comment-only input yields an empty, non-nil map.
func DecodeMapping(data []byte) (map[string]any, error) {
	if len(data) > MaxInputSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}

	var root any
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &root); err != nil {
			return nil, fmt.Errorf("yamlutil: %w", err)
		}
	}

	switch m := root.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return m, nil
	default:
		return nil, fmt.Errorf("%w (got %T)", ErrNotMapping, root)
	}
}

// NumberLiterals returns the source text of every top-level mapping value
// written as a plain number, keyed by mapping key. Decoding loses that text:
// "1.10" becomes 1.1 and "007" becomes 7.
func NumberLiterals(data []byte) (map[string]string, error) {
	if len(data) > MaxInputSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}
	file, err := parser.ParseBytes(data, 0)
	if err != nil {
		return nil, fmt.Errorf("yamlutil: %w", err)
	}

	out := map[string]string{}
	for _, doc := range file.Docs {
		var pairs []*ast.MappingValueNode
		switch body := doc.Body.(type) {
		case *ast.MappingNode:
			pairs = body.Values
		case *ast.MappingValueNode:
			pairs = []*ast.MappingValueNode{body}
		}
		for _, pair := range pairs {
			switch pair.Value.(type) {
			case *ast.IntegerNode, *ast.FloatNode:
			default:
				continue
			}
			key := pair.Key.GetToken().Value
			if k, ok := pair.Key.(*ast.StringNode); ok {
				key = k.Value
			}
			out[key] = pair.Value.GetToken().Value
		}
	}
	return out, nil
}
