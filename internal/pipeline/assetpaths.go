package pipeline

import (
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// PathRewrite maps a relative asset path found in HTML to a new value. It
// returns false to leave the attribute untouched.
type PathRewrite func(rel string) (string, bool)

// RewriteImagePaths applies rewrite to every relative img[src] in an HTML
// document or fragment. URLs, anchors, data URIs and absolute paths are left
// as they are.
func RewriteImagePaths(content string, rewrite PathRewrite) (string, error) {
	if rewrite == nil || !strings.Contains(strings.ToLower(content), "<img") {
		return content, nil
	}

	doc, isFragment, err := parseHTML(content)
	if err != nil {
		return "", err
	}
	rewriteImages(doc, rewrite)
	return renderHTML(doc, isFragment)
}

// FileURLsFrom resolves relative paths against sourceDir and returns file://
// URLs, for rendering through a browser from a temp file. Paths escaping
// sourceDir are not rewritten.
func FileURLsFrom(sourceDir string) PathRewrite {
	absDir, err := filepath.Abs(sourceDir)
	if err != nil {
		return nil
	}
	return func(rel string) (string, bool) {
		abs := filepath.Join(absDir, rel)
		if !isPathUnderDir(abs, absDir) {
			return "", false
		}
		u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
		return u.String(), true
	}
}

// RelativeTo re-bases paths written relative to sourceDir so they resolve
// from outDir, for HTML written away from its source.
func RelativeTo(sourceDir, outDir string) PathRewrite {
	absSrc, err1 := filepath.Abs(sourceDir)
	absOut, err2 := filepath.Abs(outDir)
	if err1 != nil || err2 != nil || absSrc == absOut {
		return nil
	}
	return func(rel string) (string, bool) {
		p, err := filepath.Rel(absOut, filepath.Join(absSrc, rel))
		if err != nil {
			return "", false
		}
		return filepath.ToSlash(p), true
	}
}

func parseHTML(content string) (*html.Node, bool, error) {
	trimmed := strings.ToLower(strings.TrimSpace(content))
	if strings.HasPrefix(trimmed, "<!doctype") || strings.HasPrefix(trimmed, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(strings.NewReader(content), body)
	if err != nil {
		return nil, true, err
	}
	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return container, true, nil
}

func renderHTML(doc *html.Node, isFragment bool) (string, error) {
	var buf strings.Builder
	if !isFragment {
		if err := html.Render(&buf, doc); err != nil {
			return "", err
		}
		return buf.String(), nil
	}
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func rewriteImages(n *html.Node, rewrite PathRewrite) {
	if n.Type == html.ElementNode && n.DataAtom == atom.Img {
		for i, attr := range n.Attr {
			if attr.Key != "src" || !isRelativePath(attr.Val) {
				continue
			}
			if v, ok := rewrite(attr.Val); ok {
				n.Attr[i].Val = v
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rewriteImages(c, rewrite)
	}
}

func isRelativePath(path string) bool {
	if path == "" || strings.HasPrefix(path, "#") || strings.HasPrefix(path, "//") {
		return false
	}
	for _, scheme := range []string{"http://", "https://", "file://", "data:", "mailto:"} {
		if strings.HasPrefix(path, scheme) {
			return false
		}
	}
	return !filepath.IsAbs(path) && !strings.HasPrefix(path, "/")
}

// isPathUnderDir checks if absPath is dir or inside it.
func isPathUnderDir(absPath, dir string) bool {
	cleanDir := filepath.Clean(dir)
	if !strings.HasSuffix(cleanDir, string(filepath.Separator)) {
		cleanDir += string(filepath.Separator)
	}
	return strings.HasPrefix(filepath.Clean(absPath)+string(filepath.Separator), cleanDir)
}
