package theme

import (
	"bytes"
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// tokenSchema constrains theme files. Every section and token is optional;
// whatever is absent keeps its default.
const tokenSchema = `{
  "type": "object",
  "additionalProperties": false,
  "$defs": {
    "hex": {"type": "string", "pattern": "^#[0-9A-Fa-f]{6}$"},
    "positive": {"type": "number", "exclusiveMinimum": 0},
    "font": {"type": "string", "minLength": 1}
  },
  "properties": {
    "name": {"type": "string"},
    "description": {"type": "string"},
    "brand": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "name": {"type": "string", "minLength": 1},
        "logo_path": {"type": "string"},
        "logo_height_mm": {"$ref": "#/$defs/positive"}
      }
    },
    "color": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "primary": {"$ref": "#/$defs/hex"},
        "text": {"$ref": "#/$defs/hex"},
        "muted": {"$ref": "#/$defs/hex"},
        "border": {"$ref": "#/$defs/hex"},
        "background": {"$ref": "#/$defs/hex"},
        "primary_light": {"$ref": "#/$defs/hex"},
        "primary_dark": {"$ref": "#/$defs/hex"},
        "secondary": {"$ref": "#/$defs/hex"},
        "accent": {"$ref": "#/$defs/hex"}
      }
    },
    "typography": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "font_body": {"$ref": "#/$defs/font"},
        "font_heading": {"$ref": "#/$defs/font"},
        "font_logo": {"$ref": "#/$defs/font"},
        "font_mono": {"$ref": "#/$defs/font"},
        "scale": {"$ref": "#/$defs/positive"},
        "line_height": {"$ref": "#/$defs/positive"}
      }
    },
    "layout": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "page_margins_mm": {"$ref": "#/$defs/positive"},
        "header": {"type": "boolean"},
        "footer": {"type": "boolean"},
        "watermark": {"type": "string"}
      }
    },
    "pdf": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "link_color": {"$ref": "#/$defs/hex"},
        "heading_color": {"$ref": "#/$defs/hex"}
      }
    },
    "html": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "max_width_px": {"type": "integer", "exclusiveMinimum": 0},
        "heading_weight": {"type": "integer", "minimum": 100, "maximum": 900}
      }
    },
    "code": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "style": {"type": "string", "minLength": 1}
      }
    }
  }
}`

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("theme.json", strings.NewReader(tokenSchema)); err != nil {
		return nil, err
	}
	return compiler.Compile("theme.json")
})

// violation is one leaf of a schema validation failure.
type violation struct {
	token   string
	message string
}

// validateTokens checks a JSON-encoded theme document against the token
// schema and returns the first violation in token order.
func validateTokens(doc []byte) (*violation, error) {
	schema, err := compiledSchema()
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber()
	var inst any
	if err := dec.Decode(&inst); err != nil {
		return nil, err
	}
	err = schema.Validate(inst)
	if err == nil {
		return nil, nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return nil, err
	}
	leaves := collectViolations(verr)
	if len(leaves) == 0 {
		return &violation{message: verr.Message}, nil
	}
	slices.SortStableFunc(leaves, func(a, b violation) int {
		return strings.Compare(a.token, b.token)
	})
	return &leaves[0], nil
}

func collectViolations(err *jsonschema.ValidationError) []violation {
	var out []violation
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if len(node.Causes) == 0 {
			out = append(out, violation{
				token:   tokenPath(node.InstanceLocation),
				message: strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return out
}

// tokenPath turns a JSON pointer ("/color/primary") into "color.primary".
func tokenPath(pointer string) string {
	return strings.ReplaceAll(strings.Trim(pointer, "/"), "/", ".")
}
