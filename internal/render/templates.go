package render

import (
	"strings"
	"text/template/parse"

	"github.com/alnah/go-trustforge/internal/assets"
)

// templateFuncs are available to every document template.
var templateFuncs = map[string]any{
	"join":  strings.Join,
	"lower": strings.ToLower,
	"upper": strings.ToUpper,
}

// loadTemplate fetches name from loader, or from the embedded assets when
// loader is nil.
func loadTemplate(loader assets.Loader, name string, kind assets.Kind) (assets.Template, error) {
	if loader == nil {
		loader = assets.NewEmbeddedLoader()
	}
	tmpl, err := loader.LoadTemplate(name, kind)
	if err != nil {
		return assets.Template{}, &TemplateError{Template: name + string(kind), Reason: "cannot load", Err: err}
	}
	return tmpl, nil
}

func loadStyle(loader assets.Loader, name string) (string, error) {
	if loader == nil {
		loader = assets.NewEmbeddedLoader()
	}
	css, err := loader.LoadStyle(name)
	if err != nil {
		return "", &TemplateError{Template: name + ".css", Reason: "cannot load", Err: err}
	}
	return css, nil
}

// templateLabel names a template in errors: its file path for user
// templates, its asset name for built-ins.
func templateLabel(t assets.Template) string {
	if t.Origin == "" || t.Origin == "embedded" {
		return t.Name
	}
	return t.Origin
}

// countFieldRefs counts uses of the top-level field name (".Body") in the
// parse trees of a template set.
func countFieldRefs(trees []*parse.Tree, name string) int {
	n := 0
	for _, tree := range trees {
		if tree != nil {
			n += fieldRefs(tree.Root, name)
		}
	}
	return n
}

func fieldRefs(node parse.Node, name string) int {
	switch n := node.(type) {
	case *parse.ListNode:
		if n == nil {
			return 0
		}
		total := 0
		for _, child := range n.Nodes {
			total += fieldRefs(child, name)
		}
		return total
	case *parse.ActionNode:
		return pipeRefs(n.Pipe, name)
	case *parse.TemplateNode:
		return pipeRefs(n.Pipe, name)
	case *parse.IfNode:
		return branchRefs(&n.BranchNode, name)
	case *parse.RangeNode:
		return branchRefs(&n.BranchNode, name)
	case *parse.WithNode:
		return branchRefs(&n.BranchNode, name)
	}
	return 0
}

func branchRefs(b *parse.BranchNode, name string) int {
	return pipeRefs(b.Pipe, name) + fieldRefs(b.List, name) + fieldRefs(b.ElseList, name)
}

func pipeRefs(p *parse.PipeNode, name string) int {
	if p == nil {
		return 0
	}
	total := 0
	for _, cmd := range p.Cmds {
		for _, arg := range cmd.Args {
			switch a := arg.(type) {
			case *parse.FieldNode:
				if len(a.Ident) > 0 && a.Ident[0] == name {
					total++
				}
			case *parse.PipeNode:
				total += pipeRefs(a, name)
			}
		}
	}
	return total
}
