package assets

// Built-in asset names.
const (
	BaseStyle        = "base"
	PolicyTemplate   = "policy"
	ControlsTemplate = "controls"
	RisksTemplate    = "risks"
	DefaultTheme     = "neutral"
)

var defaultLoader = NewEmbeddedLoader()

// LoadStyle loads an embedded stylesheet by name.
func LoadStyle(name string) (string, error) {
	return defaultLoader.LoadStyle(name)
}

// LoadTemplate loads an embedded template by name and kind.
func LoadTemplate(name string, kind Kind) (Template, error) {
	return defaultLoader.LoadTemplate(name, kind)
}
