// Package pipeline turns a Markdown body into target markup.
//
// Stages:
//   - Preprocessing (line endings, ==highlight==
//     placeholders, optional removal of a hand-written table of contents)
//   - Markdown to HTML fragment via goldmark
//   - Markdown to LaTeX body via a walk of the same goldmark AST
//   - Table of contents and stylesheet injection for HTML output
//
// Constructs a target cannot represent are skipped and reported as
// *ConversionError values on the returned Fragment; they never abort a
// conversion. Full documents (page chrome, metadata, theme) are assembled by
// the render package.
package pipeline
