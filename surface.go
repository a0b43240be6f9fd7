package magicurl

import "golang.org/x/net/html"

// Leaf is the smallest addressable text-bearing unit of an editing surface.
type Leaf interface {
	// Text is the raw text of the leaf. Embeds have no text.
	Text() string
	// InLink reports whether the nearest formatted ancestor is a link.
	InLink() bool
}

// TextChangeHandler is called after a change has been applied to the surface.
type TextChangeHandler func(change *Delta) error

// ClipboardMatcher may rewrite the delta proposed for a pasted text node.
// It returns the delta the surface should apply instead.
type ClipboardMatcher func(node *html.Node, proposed *Delta) (*Delta, error)

// Surface is what the engine needs from a rich-text editing surface.
type Surface interface {
	// Selection returns the current selection, or false when the surface has none.
	Selection() (Range, bool)
	// Leaf returns the leaf at index and the offset of index within it.
	// The leaf is nil when there is nothing at index.
	Leaf(index int) (Leaf, int)
	// Index returns the absolute document offset of the start of leaf.
	Index(leaf Leaf) int
	OnTextChange(h TextChangeHandler)
	OnClipboardText(m ClipboardMatcher)
	// UpdateContents applies change to the document.
	UpdateContents(change *Delta) error
}
