package magicurl

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseFragment parses clipboard HTML in a <body> context.
func ParseFragment(content string) ([]*html.Node, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(content), body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse clipboard HTML: %w", err)
	}
	return nodes, nil
}

// RenderNode converts a node tree back to a string.
func RenderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Li: true, atom.Blockquote: true, atom.Pre: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
}

// clipboardDelta converts pasted nodes to a delta. Every text node is offered
// to the matchers, in order, as a proposed plain insert; block elements end
// with a newline and anchors become link attributes.
func clipboardDelta(nodes []*html.Node, matchers []ClipboardMatcher) (*Delta, error) {
	out := &Delta{}
	var walk func(n *html.Node, attrs Attributes) error
	walk = func(n *html.Node, attrs Attributes) error {
		switch n.Type {
		case html.TextNode:
			if strings.TrimSpace(n.Data) == "" && strings.Contains(n.Data, "\n") {
				return nil
			}
			proposed := NewDelta().Insert(n.Data, attrs)
			for _, m := range matchers {
				next, err := m(n, proposed)
				if err != nil {
					return err
				}
				if next != nil {
					proposed = next
				}
			}
			for _, op := range proposed.Ops {
				out.push(op)
			}
			return nil
		case html.ElementNode:
			switch n.DataAtom {
			case atom.Br:
				out.Insert("\n", nil)
				return nil
			case atom.Script, atom.Style, atom.Head:
				return nil
			case atom.A:
				if href := getAttr(n, "href"); href != "" {
					attrs = composeAttributes(attrs, Attributes{AttrLink: href})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := walk(c, attrs); err != nil {
				return err
			}
		}
		if n.Type == html.ElementNode && blockElements[n.DataAtom] && !endsWithNewline(out) {
			out.Insert("\n", nil)
		}
		return nil
	}
	for _, n := range nodes {
		if err := walk(n, nil); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func endsWithNewline(d *Delta) bool {
	if len(d.Ops) == 0 {
		return true
	}
	last := d.Ops[len(d.Ops)-1]
	return last.IsText() && strings.HasSuffix(last.Insert, "\n")
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func element(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: a.String(), DataAtom: a}
}

// RenderHTML renders the document as HTML: one <p> per line, links as
// anchors and video embeds as block-level iframes.
func (d *Document) RenderHTML() (string, error) {
	var blocks []*html.Node
	p := element(atom.P)
	flush := func(force bool) {
		if p.FirstChild == nil {
			if !force {
				return
			}
			p.AppendChild(element(atom.Br))
		}
		blocks = append(blocks, p)
		p = element(atom.P)
	}

	for _, op := range d.contents.Ops {
		if op.Embed != nil {
			flush(false)
			blocks = append(blocks, embedNode(*op.Embed))
			continue
		}
		for i, line := range strings.Split(op.Insert, "\n") {
			if i > 0 {
				flush(true)
			}
			if line != "" {
				p.AppendChild(textNode(line, op.Attributes))
			}
		}
	}
	flush(false)

	var buf strings.Builder
	for _, b := range blocks {
		s, err := RenderNode(b)
		if err != nil {
			return "", err
		}
		buf.WriteString(s)
	}
	return buf.String(), nil
}

func textNode(text string, attrs Attributes) *html.Node {
	t := &html.Node{Type: html.TextNode, Data: text}
	href := attrs[AttrLink]
	if href == "" {
		return t
	}
	a := element(atom.A)
	setAttr(a, "href", href)
	setAttr(a, "rel", "noopener noreferrer")
	setAttr(a, "target", "_blank")
	a.AppendChild(t)
	return a
}

func embedNode(e Embed) *html.Node {
	if e.Key != EmbedVideo {
		n := element(atom.Span)
		setAttr(n, "data-embed", e.Key)
		setAttr(n, "data-value", e.Value)
		return n
	}
	n := element(atom.Iframe)
	setAttr(n, "class", "ql-video")
	setAttr(n, "frameborder", "0")
	setAttr(n, "allowfullscreen", "true")
	setAttr(n, "src", e.Value)
	return n
}
