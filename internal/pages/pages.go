// Package pages renders page templates into HTML documents and injects the
// bundle's script and stylesheet references.
//
// Templates use html/template syntax. After execution the document is
// parsed with x/net/html; `<!-- script_output -->` and
// `<!-- style_output -->` comments mark where tags go, otherwise styles are
// appended to <head> and scripts to <body>.
package pages

import (
	"bytes"
	"fmt"
	"html/template"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/conneroisu/bundlecfg/internal/derive"
)

// Placeholder comments replaced with the injected tags.
const (
	ScriptPlaceholder = "script_output"
	StylePlaceholder  = "style_output"
)

// LiveReloadSnippet reloads the page when the development server reports a
// rebuild.
const LiveReloadSnippet = `new EventSource('/esbuild').addEventListener('change', () => location.reload())`

// Data is the value templates are executed with.
type Data struct {
	Title   string
	Mode    string
	Scripts []string
	Styles  []string
}

// Options control post-processing of the rendered document.
type Options struct {
	Minify     derive.HTMLMinify
	LiveReload bool
}

// Render executes the template source src and injects the asset tags for
// data.Scripts and data.Styles.
func Render(name string, src []byte, data Data, opts Options) ([]byte, error) {
	protected, restore := protectComments(string(src))
	tmpl, err := template.New(name).Parse(protected)
	if err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", name, err)
	}

	var executed strings.Builder
	if err := tmpl.Execute(&executed, data); err != nil {
		return nil, fmt.Errorf("executing template %s: %w", name, err)
	}

	doc, err := html.Parse(strings.NewReader(restore(executed.String())))
	if err != nil {
		return nil, fmt.Errorf("parsing rendered %s: %w", name, err)
	}

	scripts := make([]*html.Node, 0, len(data.Scripts)+1)
	for _, src := range data.Scripts {
		scripts = append(scripts, element(atom.Script, html.Attribute{Key: "src", Val: src}))
	}
	if opts.LiveReload {
		script := element(atom.Script)
		script.AppendChild(&html.Node{Type: html.TextNode, Data: LiveReloadSnippet})
		scripts = append(scripts, script)
	}

	styles := make([]*html.Node, 0, len(data.Styles))
	for _, href := range data.Styles {
		styles = append(styles, element(atom.Link,
			html.Attribute{Key: "rel", Val: "stylesheet"},
			html.Attribute{Key: "href", Val: href},
		))
	}

	inject(doc, StylePlaceholder, atom.Head, styles)
	inject(doc, ScriptPlaceholder, atom.Body, scripts)

	if opts.Minify.RemoveComments {
		removeComments(doc)
	}
	if opts.Minify.CollapseWhitespace {
		collapseWhitespace(doc, false)
	}

	var out bytes.Buffer
	if err := html.Render(&out, doc); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", name, err)
	}
	return out.Bytes(), nil
}

var commentPattern = regexp.MustCompile(`(?s)<!--.*?-->`)

// protectComments swaps the HTML comments in src for plain text tokens,
// which html/template copies through unchanged where it would strip the
// comments. restore puts the original comments back.
func protectComments(src string) (protected string, restore func(string) string) {
	prefix := "bundlecfg-comment-"
	for strings.Contains(src, prefix) {
		prefix = "x" + prefix
	}

	var pairs []string
	protected = commentPattern.ReplaceAllStringFunc(src, func(comment string) string {
		token := fmt.Sprintf("%s%d;", prefix, len(pairs)/2)
		pairs = append(pairs, token, comment)
		return token
	})
	if len(pairs) == 0 {
		return src, func(s string) string { return s }
	}

	replacer := strings.NewReplacer(pairs...)
	return protected, replacer.Replace
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     a.String(),
		DataAtom: a,
		Attr:     attrs,
	}
}

// inject replaces the placeholder comment with nodes, or appends them to
// the fallback element when there is no placeholder.
func inject(doc *html.Node, placeholder string, fallback atom.Atom, nodes []*html.Node) {
	if len(nodes) == 0 {
		if marker := find(doc, func(n *html.Node) bool { return isPlaceholder(n, placeholder) }); marker != nil {
			marker.Parent.RemoveChild(marker)
		}
		return
	}

	if marker := find(doc, func(n *html.Node) bool { return isPlaceholder(n, placeholder) }); marker != nil {
		for _, n := range nodes {
			marker.Parent.InsertBefore(n, marker)
		}
		marker.Parent.RemoveChild(marker)
		return
	}

	parent := find(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == fallback
	})
	if parent == nil {
		parent = doc
	}
	for _, n := range nodes {
		parent.AppendChild(n)
	}
}

func isPlaceholder(n *html.Node, name string) bool {
	return n.Type == html.CommentNode && strings.TrimSpace(n.Data) == name
}

func find(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, match); found != nil {
			return found
		}
	}
	return nil
}

func removeComments(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.CommentNode {
			n.RemoveChild(c)
		} else {
			removeComments(c)
		}
		c = next
	}
}

// collapseWhitespace folds runs of whitespace into a single space and
// leaves raw text elements alone. Whitespace-only text is dropped at the
// edges of its parent and next to block elements; between inline content
// it becomes one space.
func collapseWhitespace(n *html.Node, raw bool) {
	if raw {
		return
	}
	mergeText(n)

	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		switch c.Type {
		case html.TextNode:
			if strings.TrimSpace(c.Data) == "" && !(inline(c.PrevSibling) && inline(c.NextSibling)) {
				n.RemoveChild(c)
				break
			}
			c.Data = collapse(c.Data)
		case html.ElementNode:
			collapseWhitespace(c, preserves(c.DataAtom))
		default:
			collapseWhitespace(c, false)
		}
		c = next
	}
}

// mergeText joins adjacent text children, which removing comments leaves
// behind.
func mergeText(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		for c.Type == html.TextNode && c.NextSibling != nil && c.NextSibling.Type == html.TextNode {
			next := c.NextSibling
			c.Data += next.Data
			n.RemoveChild(next)
		}
	}
}

func inline(n *html.Node) bool {
	if n == nil {
		return false
	}
	switch n.Type {
	case html.CommentNode:
		return true
	case html.ElementNode:
		return !blocks[n.DataAtom]
	}
	return false
}

var blocks = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true, atom.Base: true,
	atom.Blockquote: true, atom.Body: true, atom.Caption: true, atom.Col: true,
	atom.Colgroup: true, atom.Dd: true, atom.Details: true, atom.Div: true,
	atom.Dl: true, atom.Dt: true, atom.Fieldset: true, atom.Figcaption: true,
	atom.Figure: true, atom.Footer: true, atom.Form: true, atom.H1: true,
	atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Head: true, atom.Header: true, atom.Hr: true, atom.Html: true,
	atom.Legend: true, atom.Li: true, atom.Link: true, atom.Main: true,
	atom.Meta: true, atom.Nav: true, atom.Ol: true, atom.Option: true,
	atom.P: true, atom.Pre: true, atom.Script: true, atom.Section: true,
	atom.Style: true, atom.Summary: true, atom.Table: true, atom.Tbody: true,
	atom.Td: true, atom.Tfoot: true, atom.Th: true, atom.Thead: true,
	atom.Title: true, atom.Tr: true, atom.Ul: true,
}

func preserves(a atom.Atom) bool {
	switch a {
	case atom.Pre, atom.Textarea, atom.Script, atom.Style:
		return true
	}
	return false
}

func collapse(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			if !space {
				b.WriteByte(' ')
				space = true
			}
		default:
			b.WriteRune(r)
			space = false
		}
	}
	return b.String()
}
