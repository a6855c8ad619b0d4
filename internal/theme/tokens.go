// Package theme resolves brand themes and turns their tokens into CSS
// variables, chroma stylesheets and LaTeX colour definitions.
package theme

// Theme is a resolved theme: built-in defaults overlaid with one theme file.
type Theme struct {
	Name   string
	Path   string // source file; "embedded:<file>" for built-ins, empty for defaults
	Tokens Tokens
}

// Tokens groups the theme sections. Field names follow the theme file keys.
type Tokens struct {
	Brand      Brand      `json:"brand"`
	Color      Color      `json:"color"`
	Typography Typography `json:"typography"`
	Layout     Layout     `json:"layout"`
	PDF        PDF        `json:"pdf"`
	HTML       HTML       `json:"html"`
	Code       Code       `json:"code"`
}

type Brand struct {
	Name         string  `json:"name"`
	LogoPath     string  `json:"logo_path"`
	LogoHeightMM float64 `json:"logo_height_mm"`
}

// Color holds hex colours (#RRGGBB). The last four are optional.
type Color struct {
	Primary      string `json:"primary"`
	Text         string `json:"text"`
	Muted        string `json:"muted"`
	Border       string `json:"border"`
	Background   string `json:"background"`
	PrimaryLight string `json:"primary_light,omitempty"`
	PrimaryDark  string `json:"primary_dark,omitempty"`
	Secondary    string `json:"secondary,omitempty"`
	Accent       string `json:"accent,omitempty"`
}

type Typography struct {
	FontBody    string  `json:"font_body"`
	FontHeading string  `json:"font_heading"`
	FontLogo    string  `json:"font_logo"`
	FontMono    string  `json:"font_mono"`
	Scale       float64 `json:"scale"`
	LineHeight  float64 `json:"line_height"`
}

type Layout struct {
	PageMarginsMM float64 `json:"page_margins_mm"`
	Header        bool    `json:"header"`
	Footer        bool    `json:"footer"`
	Watermark     string  `json:"watermark"`
}

type PDF struct {
	LinkColor    string `json:"link_color"`
	HeadingColor string `json:"heading_color"`
}

type HTML struct {
	MaxWidthPX    int `json:"max_width_px"`
	HeadingWeight int `json:"heading_weight"`
}

type Code struct {
	Style string `json:"style"`
}

// DefaultName is the name reported for the built-in defaults.
const DefaultName = "default"

// DefaultCodeStyle is the chroma style used when none is configured or the
// configured one is unknown.
const DefaultCodeStyle = "github"

// DefaultTokens returns the built-in token values.
func DefaultTokens() Tokens {
	return Tokens{
		Brand: Brand{Name: "Trustforge", LogoHeightMM: 24},
		Color: Color{
			Primary:    "#222222",
			Text:       "#222222",
			Muted:      "#555555",
			Border:     "#DDDDDD",
			Background: "#FFFFFF",
		},
		Typography: Typography{
			FontBody:    "Inter",
			FontHeading: "Inter",
			FontLogo:    "Inter",
			FontMono:    "Menlo",
			Scale:       1.0,
			LineHeight:  1.5,
		},
		Layout: Layout{PageMarginsMM: 20, Header: true, Footer: true},
		PDF:    PDF{LinkColor: "#1A73E8", HeadingColor: "#000000"},
		HTML:   HTML{MaxWidthPX: 800, HeadingWeight: 700},
		Code:   Code{Style: DefaultCodeStyle},
	}
}

// Default returns a theme made of the built-in defaults only.
func Default() *Theme {
	return &Theme{Name: DefaultName, Tokens: DefaultTokens()}
}
