package tabular

import (
	"errors"
	"fmt"

	"github.com/alnah/go-trustforge/internal/document"
	"github.com/alnah/go-trustforge/internal/yamlutil"
)

// ErrMalformedFile is returned when a record file is not a YAML list or a
// mapping holding one.
var ErrMalformedFile = errors.New("malformed record file")

// File is a decoded record file: the top-level keys (when the root is a
// mapping) and the raw record list.
type File struct {
	Header  map[string]any
	Records []any
}

// Decode reads a YAML record file. The root is either a list of records or
// a mapping whose listKey holds the list. Empty input yields no records.
func Decode(source string, data []byte, listKey string) (*File, error) {
	var root any
	if len(data) > 0 {
		if err := yamlutil.Unmarshal(data, &root); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrMalformedFile, source, err)
		}
	}
	switch x := root.(type) {
	case nil:
		return &File{}, nil
	case []any:
		return &File{Records: x}, nil
	case map[string]any:
		f := &File{Header: x}
		switch list := x[listKey].(type) {
		case nil:
		case []any:
			f.Records = list
		default:
			return nil, fmt.Errorf("%w: %s: %q must be a list, got %T", ErrMalformedFile, source, listKey, list)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("%w: %s: root must be a list or a mapping, got %T", ErrMalformedFile, source, root)
	}
}

// HeaderString returns a scalar top-level key, or "".
func (f *File) HeaderString(key string) string {
	s, _ := document.Scalar(f.Header[key])
	return s
}

// Fields is one raw record.
type Fields map[string]any

// AsFields converts a raw record. It fails when the record is not a mapping.
func AsFields(raw any) (Fields, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("record must be a mapping, got %T", raw)
	}
	return Fields(m), nil
}

// String returns key as a trimmed scalar. Sequences and mappings yield ""
// and false.
func (f Fields) String(key string) (string, bool) {
	return document.Scalar(f[key])
}

// List returns key as a list of non-empty strings.
func (f Fields) List(key string) []string {
	return document.List(f[key])
}
