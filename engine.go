package magicurl

import (
	"log/slog"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Engine links URLs and embeds video links on an editing surface as the user
// types or pastes. Both triggers run synchronously inside the surface's own
// callbacks.
type Engine struct {
	surface Surface
	rw      *Rewriter
	log     *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for commit and pattern-failure records.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// New creates an Engine for surface and registers its paste and text-change handlers.
func New(surface Surface, cfg Config, opts ...Option) *Engine {
	e := &Engine{
		surface: surface,
		rw:      NewRewriter(cfg),
		log:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	surface.OnClipboardText(e.HandlePaste)
	surface.OnTextChange(e.HandleTextChange)
	return e
}

// Rewriter returns the rewriter backing the engine.
func (e *Engine) Rewriter() *Rewriter {
	return e.rw
}

// HandlePaste rewrites the delta proposed for a pasted text node so that URLs
// become links and video links gain an embed. The proposal's ops are replaced
// in place; when nothing matches, or the node already sits inside an anchor,
// it is returned as is.
func (e *Engine) HandlePaste(node *html.Node, proposed *Delta) (*Delta, error) {
	if node == nil || node.Type != html.TextNode || insideLink(node) {
		return proposed, nil
	}
	d, ok, err := e.rw.Paste(node.Data)
	if err != nil {
		e.log.Error("paste scan failed", "error", err)
		return proposed, err
	}
	if !ok {
		return proposed, nil
	}
	if proposed == nil {
		proposed = &Delta{}
	}
	proposed.Ops = d.Ops
	e.log.Debug("paste rewritten", "ops", len(d.Ops))
	return proposed, nil
}

func insideLink(n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.DataAtom == atom.A {
			return true
		}
	}
	return false
}

// HandleTextChange runs a commit check when change looks like the user just
// finished a word.
func (e *Engine) HandleTextChange(change *Delta) error {
	if !completesWord(change) {
		return nil
	}
	return e.CheckTextForURL()
}

// completesWord reports whether change has one or two ops and ends with a text
// insert containing whitespace, which is what typing a space, tab or newline
// produces. Corrective deltas never have this shape: they end with an embed or
// a linked match, or carry a retain, a delete and an insert.
func completesWord(change *Delta) bool {
	if change == nil || len(change.Ops) < 1 || len(change.Ops) > 2 {
		return false
	}
	last := change.Ops[len(change.Ops)-1]
	return last.IsText() && strings.ContainsFunc(last.Insert, isWhitespace)
}

// isWhitespace matches the ECMAScript \s class: unicode.IsSpace without U+0085,
// plus the byte order mark.
func isWhitespace(r rune) bool {
	return r == '\uFEFF' || r != '\u0085' && unicode.IsSpace(r)
}

// CheckTextForURL links the first URL in the leaf under the cursor, embedding
// it when it is a video link. Leaves already inside a link are left alone.
func (e *Engine) CheckTextForURL() error {
	sel, ok := e.surface.Selection()
	if !ok {
		return nil
	}
	leaf, _ := e.surface.Leaf(sel.Index)
	if leaf == nil || leaf.Text() == "" || leaf.InLink() {
		return nil
	}
	leafIndex := e.surface.Index(leaf)
	if leafIndex < 0 {
		return nil
	}

	rewrite, ok, err := e.rw.Typed(leaf.Text(), leafIndex)
	if err != nil {
		e.log.Error("text scan failed", "error", err)
		return err
	}
	if !ok {
		return nil
	}
	e.log.Debug("url committed", "index", leafIndex, "ops", len(rewrite.Ops))
	return e.surface.UpdateContents(rewrite)
}
