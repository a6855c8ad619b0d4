package trustforge_test

import (
	"context"
	"fmt"
	"strings"

	"github.com/alnah/go-trustforge"
)

// Example renders a policy to HTML without writing it.
func Example() {
	p, err := trustforge.New(trustforge.WithTheme("neutral"))
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer p.Close()

	doc, err := p.ParseDocument("access.md", []byte("---\ntitle: Access Control\nowner: CISO\n---\n# Purpose\n\nLeast privilege.\n"))
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	art, err := p.RenderHTML(context.Background(), doc)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(art.Path)
	fmt.Println(strings.Contains(string(art.Data), "<title>Access Control</title>"))
	// Output:
	// access.html
	// true
}

// Example_controlMap validates the built-in NIST CSF 2.0 catalog.
func Example_controlMap() {
	p, err := trustforge.New()
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer p.Close()

	exp, err := p.ControlMap("nist-csf-2.0", "")
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(exp.Catalog.Framework, len(exp.Catalog.Entries), len(exp.Skipped))
	// Output: NIST CSF 2.0 12 0
}
