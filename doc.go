// Package trustforge builds policy documentation: Markdown files with YAML
// frontmatter become branded HTML pages, PDFs, a CSV policy index, control
// maps and risk registers.
//
// # Quick Start
//
// Build a Pipeline, render a document, and close when done:
//
//	p, err := trustforge.New(
//	    trustforge.WithTheme("cnciso"),
//	    trustforge.WithOutDir("out"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
//
//	art, err := p.RenderFile(ctx, "policies/access.md", trustforge.FormatHTML)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("wrote", art.Path)
//
// RenderHTML and RenderPDF return the artifact without writing it, for
// callers that store output elsewhere.
//
// # Rendering Pipeline
//
//  1. Frontmatter split and YAML decode (BOM and CRLF tolerated)
//  2. Metadata validation (title required, unknown keys kept)
//  3. Markdown preprocessing (line endings, ==highlight==, manual TOC)
//  4. Goldmark conversion to HTML, or an AST walk to LaTeX
//  5. Template execution with the theme (html/template, or LaTeX with
//     << >> delimiters)
//  6. PDF only: compilation by xelatex or headless Chrome
//
// Constructs a target cannot express (raw HTML, images in LaTeX) are
// skipped and reported as *ConversionError warnings on the artifact; they
// never fail a render.
//
// # Configuration
//
// Everything a run needs is set with options on New:
//
//	p, err := trustforge.New(
//	    trustforge.WithThemeDirs("themes"),
//	    trustforge.WithTheme("acme"),
//	    trustforge.WithAssetPath("templates-override"),
//	    trustforge.WithTOC("Contents"),
//	    trustforge.WithGeneratedAt("auto:long"),
//	    trustforge.WithCompiler(&trustforge.Chrome{}),
//	    trustforge.WithLogger(logger),
//	)
//
// There is no global state; two Pipelines with different themes can run in
// the same process.
//
// # Index and Exports
//
// BuildIndex walks a source tree and returns one record per document,
// skipping and logging files it cannot parse. ControlMap and RiskRegister
// validate catalogs and registers record by record; invalid records are
// skipped unless WithStrict is set. All three write CSV with a fixed header,
// and control maps and risk registers can also be written as HTML.
//
// # Toolchains
//
// The default PDF toolchain is xelatex from PATH, run twice in an isolated
// temporary directory. Chrome prints the HTML page instead; go-rod
// downloads a managed Chromium when none is installed. Set ROD_NO_SANDBOX=1
// in containers and ROD_BROWSER_BIN to pick a browser binary.
package trustforge
