package magicurl

import (
	"fmt"
	"maps"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// Document is an in-memory editing surface. Its contents are an insert-only
// delta; newlines separate lines and are never part of a leaf.
// Handlers run synchronously, so a handler that updates the document raises a
// nested text-change before the outer call returns.
type Document struct {
	contents *Delta
	sel      *Range
	changes  []TextChangeHandler
	matchers []ClipboardMatcher
}

var _ Surface = (*Document)(nil)

// NewDocument returns a document holding text, with the caret at its end.
func NewDocument(text string) *Document {
	d := &Document{contents: NewDelta().Insert(text, nil)}
	d.sel = &Range{Index: d.Length()}
	return d
}

// NewDocumentFromDelta returns a document with the given contents, which must
// contain inserts only.
func NewDocumentFromDelta(contents *Delta) (*Document, error) {
	for i, op := range contents.Ops {
		if op.Kind() != OpInsert {
			return nil, fmt.Errorf("%w: op %d is a %s, document contents may only insert", ErrInvalidOp, i, op.Kind())
		}
	}
	d := &Document{contents: contents.Clone()}
	d.sel = &Range{Index: d.Length()}
	return d, nil
}

// Contents returns a copy of the document delta.
func (d *Document) Contents() *Delta {
	return d.contents.Clone()
}

// Text returns the document as plain text. Embeds appear as U+FFFC.
func (d *Document) Text() string {
	return d.contents.Text()
}

// Length is the document length in units.
func (d *Document) Length() int {
	return d.contents.Length()
}

// Selection returns the current selection.
func (d *Document) Selection() (Range, bool) {
	if d.sel == nil {
		return Range{}, false
	}
	return *d.sel, true
}

// SetSelection moves the selection, clamped to the document.
func (d *Document) SetSelection(index, length int) {
	n := d.Length()
	index = min(max(index, 0), n)
	length = min(max(length, 0), n-index)
	d.sel = &Range{Index: index, Length: length}
}

// Blur drops the selection, as when the surface loses focus.
func (d *Document) Blur() {
	d.sel = nil
}

// OnTextChange registers h to run after every change.
func (d *Document) OnTextChange(h TextChangeHandler) {
	d.changes = append(d.changes, h)
}

// OnClipboardText registers m to run on every pasted text node.
func (d *Document) OnClipboardText(m ClipboardMatcher) {
	d.matchers = append(d.matchers, m)
}

// UpdateContents applies change, shifts the selection accordingly and notifies
// the text-change handlers.
func (d *Document) UpdateContents(change *Delta) error {
	var after *Range
	if d.sel != nil {
		r := change.TransformRange(*d.sel)
		after = &r
	}
	return d.update(change, after)
}

// InsertText types text at the selection, replacing any selected range, and
// leaves the caret after it.
func (d *Document) InsertText(text string) error {
	sel, ok := d.Selection()
	if !ok {
		sel = Range{Index: d.Length()}
	}
	change := NewDelta().
		Retain(sel.Index, nil).
		Delete(sel.Length).
		Insert(text, nil)
	return d.update(change, &Range{Index: sel.Index + utf8.RuneCountInString(text)})
}

// PasteText pastes plain text at the selection.
func (d *Document) PasteText(text string) error {
	return d.paste([]*html.Node{{Type: html.TextNode, Data: text}})
}

// PasteHTML pastes an HTML fragment at the selection.
func (d *Document) PasteHTML(fragment string) error {
	nodes, err := ParseFragment(fragment)
	if err != nil {
		return err
	}
	return d.paste(nodes)
}

func (d *Document) paste(nodes []*html.Node) error {
	pasted, err := clipboardDelta(nodes, d.matchers)
	if err != nil {
		return err
	}
	sel, ok := d.Selection()
	if !ok {
		sel = Range{Index: d.Length()}
	}
	change := NewDelta().
		Retain(sel.Index, nil).
		Delete(sel.Length)
	for _, op := range pasted.Ops {
		change.push(op)
	}
	return d.update(change, &Range{Index: sel.Index + pasted.Length()})
}

func (d *Document) update(change *Delta, sel *Range) error {
	next, err := compose(d.contents, change)
	if err != nil {
		return err
	}
	d.contents = next
	if sel != nil {
		d.SetSelection(sel.Index, sel.Length)
	}
	for _, h := range d.changes {
		if err := h(change); err != nil {
			return err
		}
	}
	return nil
}

// compose applies change to the insert-only delta doc.
func compose(doc, change *Delta) (*Delta, error) {
	out := &Delta{}
	it := newOpIterator(doc.Ops)
	for i, op := range change.Ops {
		switch op.Kind() {
		case OpInsert:
			out.push(op)
		case OpRetain, OpDelete:
			for n := op.Len(); n > 0; {
				if !it.hasNext() {
					return nil, fmt.Errorf("failed to apply op %d (%s): %w", i, op.Kind(), ErrOutOfRange)
				}
				piece := it.next(n)
				n -= piece.Len()
				if op.Kind() == OpRetain {
					piece.Attributes = composeAttributes(piece.Attributes, op.Attributes)
					out.push(piece)
				}
			}
		}
	}
	for it.hasNext() {
		out.push(it.next(it.peekLength()))
	}
	return out, nil
}

// composeAttributes applies change on top of base. Empty values remove keys.
func composeAttributes(base, change Attributes) Attributes {
	if len(change) == 0 {
		return base
	}
	out := maps.Clone(base)
	if out == nil {
		out = Attributes{}
	}
	for k, v := range change {
		if v == "" {
			delete(out, k)
			continue
		}
		out[k] = v
	}
	return out
}

// docLeaf is a run of equally formatted text within one line, or one embed.
type docLeaf struct {
	text  string
	embed *Embed
	attrs Attributes
	start int
}

func (l *docLeaf) Text() string { return l.text }

func (l *docLeaf) InLink() bool { return l.attrs[AttrLink] != "" }

func (l *docLeaf) length() int {
	if l.embed != nil {
		return 1
	}
	return utf8.RuneCountInString(l.text)
}

func (d *Document) leaves() []*docLeaf {
	var out []*docLeaf
	pos := 0
	for _, op := range d.contents.Ops {
		if op.Embed != nil {
			out = append(out, &docLeaf{embed: op.Embed, attrs: op.Attributes, start: pos})
			pos++
			continue
		}
		for i, line := range strings.Split(op.Insert, "\n") {
			if i > 0 {
				pos++
			}
			if line == "" {
				continue
			}
			out = append(out, &docLeaf{text: line, attrs: op.Attributes, start: pos})
			pos += utf8.RuneCountInString(line)
		}
	}
	return out
}

// Leaf returns the leaf at index. A position on the boundary between two
// leaves of the same line belongs to the one on the left.
func (d *Document) Leaf(index int) (Leaf, int) {
	var right *docLeaf
	for _, l := range d.leaves() {
		if l.start < index && index <= l.start+l.length() {
			return l, index - l.start
		}
		if l.start == index && right == nil {
			right = l
		}
	}
	if right != nil {
		return right, 0
	}
	return nil, 0
}

// Index returns the start offset of a leaf returned by Leaf, or -1 for
// leaves of other surfaces.
func (d *Document) Index(leaf Leaf) int {
	if l, ok := leaf.(*docLeaf); ok {
		return l.start
	}
	return -1
}
