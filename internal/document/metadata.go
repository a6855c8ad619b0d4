package document

import (
	"bytes"
	"errors"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/alnah/go-trustforge/internal/yamlutil"
)

// ErrMissingField is matched by every *MissingFieldError.
var ErrMissingField = errors.New("missing required field")

// MissingFieldError reports a required metadata field that is absent, empty,
// or not a scalar.
type MissingFieldError struct {
	Source string
	Field  string
	Reason string
}

func (e *MissingFieldError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "is required"
	}
	return fmt.Sprintf("[metadata] %s: field %q %s", e.Source, e.Field, reason)
}

func (e *MissingFieldError) Is(target error) bool { return target == ErrMissingField }

// Frontmatter keys with a dedicated Metadata field.
const (
	KeyTitle        = "title"
	KeySubtitle     = "subtitle"
	KeyVersion      = "version"
	KeyOwner        = "owner"
	KeyLastReviewed = "last_reviewed"
	KeyAppliesTo    = "applies_to"
	KeyRefs         = "refs"
	KeyFooter       = "footer"
)

var knownKeys = []string{
	KeyTitle, KeySubtitle, KeyVersion, KeyOwner, KeyLastReviewed,
	KeyAppliesTo, KeyRefs, KeyFooter,
}

var versionPattern = regexp.MustCompile(`^v?\d+(\.\d+){0,2}([-+][0-9A-Za-z.+-]+)?$`)

// Metadata is the typed view of a document's frontmatter. Keys without a
// dedicated field are kept verbatim in Extra.
type Metadata struct {
	Title        string         `json:"title"`
	Subtitle     string         `json:"subtitle"`
	Version      string         `json:"version"`
	Owner        string         `json:"owner"`
	LastReviewed string         `json:"last_reviewed"`
	AppliesTo    []string       `json:"applies_to"`
	Refs         []string       `json:"refs"`
	Footer       string         `json:"footer"`
	Extra        map[string]any `json:"-"`
}

// NewMetadata builds Metadata from a decoded frontmatter mapping. The input
// map is not modified.
func NewMetadata(source string, raw map[string]any) (Metadata, error) {
	var m Metadata

	scalars := []struct {
		key string
		dst *string
	}{
		{KeyTitle, &m.Title},
		{KeySubtitle, &m.Subtitle},
		{KeyVersion, &m.Version},
		{KeyOwner, &m.Owner},
		{KeyLastReviewed, &m.LastReviewed},
		{KeyFooter, &m.Footer},
	}
	for _, s := range scalars {
		v, ok := Scalar(raw[s.key])
		if !ok {
			return Metadata{}, &MissingFieldError{Source: source, Field: s.key, Reason: "must be a scalar"}
		}
		*s.dst = v
	}
	m.AppliesTo = List(raw[KeyAppliesTo])
	m.Refs = List(raw[KeyRefs])

	for k, v := range raw {
		if slices.Contains(knownKeys, k) {
			continue
		}
		if m.Extra == nil {
			m.Extra = make(map[string]any)
		}
		m.Extra[k] = deepCopy(v)
	}

	if err := m.validate(); err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			field := slices.Sorted(maps.Keys(verrs))[0]
			return Metadata{}, &MissingFieldError{Source: source, Field: field}
		}
		return Metadata{}, fmt.Errorf("[metadata] %s: %w", source, err)
	}
	return m, nil
}

func (m *Metadata) validate() error {
	return validation.ValidateStruct(m,
		validation.Field(&m.Title, validation.Required),
	)
}

// HasConventionalVersion reports whether Version is empty or looks like a
// semantic version. Other values are accepted but worth a warning.
func (m Metadata) HasConventionalVersion() bool {
	return m.Version == "" || versionPattern.MatchString(m.Version)
}

// Lookup returns a metadata value by frontmatter key, known or extra.
func (m Metadata) Lookup(key string) (any, bool) {
	switch key {
	case KeyTitle:
		return m.Title, true
	case KeySubtitle:
		return m.Subtitle, m.Subtitle != ""
	case KeyVersion:
		return m.Version, m.Version != ""
	case KeyOwner:
		return m.Owner, m.Owner != ""
	case KeyLastReviewed:
		return m.LastReviewed, m.LastReviewed != ""
	case KeyAppliesTo:
		return m.AppliesTo, len(m.AppliesTo) > 0
	case KeyRefs:
		return m.Refs, len(m.Refs) > 0
	case KeyFooter:
		return m.Footer, m.Footer != ""
	}
	v, ok := m.Extra[key]
	return v, ok
}

// Marshal renders the metadata as a YAML block (without delimiters). Known
// fields come first in a fixed order, always quoted; extras follow sorted by
// key. Decoding the result with NewMetadata yields an equal value.
func (m Metadata) Marshal() ([]byte, error) {
	var buf bytes.Buffer

	writeScalar := func(key, v string) {
		if v == "" && key != KeyTitle {
			return
		}
		fmt.Fprintf(&buf, "%s: %s\n", key, strconv.Quote(v))
	}
	writeList := func(key string, vs []string) {
		if len(vs) == 0 {
			return
		}
		quoted := make([]string, len(vs))
		for i, v := range vs {
			quoted[i] = strconv.Quote(v)
		}
		fmt.Fprintf(&buf, "%s: [%s]\n", key, strings.Join(quoted, ", "))
	}

	writeScalar(KeyTitle, m.Title)
	writeScalar(KeySubtitle, m.Subtitle)
	writeScalar(KeyVersion, m.Version)
	writeScalar(KeyOwner, m.Owner)
	writeScalar(KeyLastReviewed, m.LastReviewed)
	writeList(KeyAppliesTo, m.AppliesTo)
	writeList(KeyRefs, m.Refs)
	writeScalar(KeyFooter, m.Footer)

	if len(m.Extra) > 0 {
		extras := make(yamlutil.MapSlice, 0, len(m.Extra))
		for _, k := range slices.Sorted(maps.Keys(m.Extra)) {
			extras = append(extras, yamlutil.MapItem{Key: k, Value: m.Extra[k]})
		}
		data, err := yamlutil.Marshal(extras)
		if err != nil {
			return nil, err
		}
		buf.Write(data)
	}
	return buf.Bytes(), nil
}

// Scalar formats a YAML scalar as a trimmed string. It reports false for
// mappings and sequences.
func Scalar(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", true
	case string:
		return strings.TrimSpace(x), true
	case bool:
		return strconv.FormatBool(x), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case uint64:
		return strconv.FormatUint(x, 10), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format(time.DateOnly), true
		}
		return x.Format(time.RFC3339), true
	case map[string]any, []any:
		return "", false
	default:
		return strings.TrimSpace(fmt.Sprint(x)), true
	}
}

// List normalizes a scalar-or-sequence value into a list of non-empty
// strings. A lone scalar becomes a one-element list.
func List(v any) []string {
	switch x := v.(type) {
	case nil:
		return nil
	case []any:
		var out []string
		for _, item := range x {
			if s, ok := Scalar(item); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		var out []string
		for _, item := range x {
			if s := strings.TrimSpace(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		if s, ok := Scalar(x); ok && s != "" {
			return []string{s}
		}
		return nil
	}
}

func deepCopy(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = deepCopy(item)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = deepCopy(item)
		}
		return out
	default:
		return v
	}
}
