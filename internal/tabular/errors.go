package tabular

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrInvalidRecord is matched by every *InvalidRecordError.
var ErrInvalidRecord = errors.New("invalid record")

// InvalidRecordError reports a control or risk record that failed
// validation. Index is zero-based within Source.
type InvalidRecordError struct {
	Source string
	Index  int
	ID     string
	Field  string
	Reason string
}

func (e *InvalidRecordError) Error() string {
	id := ""
	if e.ID != "" {
		id = fmt.Sprintf(" (%s)", e.ID)
	}
	return fmt.Sprintf("[record] %s: record %d%s: field %q %s", e.Source, e.Index, id, e.Field, e.Reason)
}

func (e *InvalidRecordError) Is(target error) bool { return target == ErrInvalidRecord }

// RecordError converts a validation failure into an *InvalidRecordError.
// When err holds several field errors the alphabetically first one is
// reported so the message is stable across runs.
func RecordError(source string, index int, id string, err error) error {
	if err == nil {
		return nil
	}
	var verrs validation.Errors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &InvalidRecordError{Source: source, Index: index, ID: id, Field: "-", Reason: err.Error()}
	}
	field := slices.Sorted(maps.Keys(verrs))[0]
	return &InvalidRecordError{
		Source: source,
		Index:  index,
		ID:     id,
		Field:  field,
		Reason: verrs[field].Error(),
	}
}
