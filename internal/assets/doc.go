// Package assets provides the stylesheets, document templates and themes
// used to render policies, control maps and risk registers.
//
// # Loader Architecture
//
//	Loader (interface)
//	    │
//	    ├── EmbeddedLoader    - go:embed styles, templates and themes
//	    ├── FilesystemLoader  - a user directory with the same layout
//	    └── Resolver          - custom first, embedded fallback
//
// The Resolver only falls back on not-found errors; invalid names and read
// failures are returned as they are.
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── base.css
//	└── templates/
//	    ├── policy.html     # html/template, one policy document
//	    ├── policy.tex      # text/template with << >> delimiters
//	    ├── controls.html   # control crosswalk report
//	    └── risks.html      # risk register report
//
// Themes are YAML or TOML files. Built-ins (neutral, cnciso) live in
// themes/; user themes are looked up by the theme package.
//
// # Security
//
// Asset names are validated to prevent path traversal. FilesystemLoader
// resolves symlinks and verifies paths stay within basePath.
package assets
