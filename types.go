package magicurl

import "unicode/utf8"

// OpKind identifies which branch of the Op union is populated.
type OpKind string

const (
	OpInsert OpKind = "insert" // Insert text or an embed
	OpRetain OpKind = "retain" // Keep n units, optionally reformatting them
	OpDelete OpKind = "delete" // Remove n units
)

// Attribute keys written by the engine.
const (
	AttrLink   = "link"
	EmbedVideo = "video"
)

// Attributes maps format names to values, e.g. link -> URL.
// On a retain, an empty value removes the attribute.
type Attributes map[string]string

// Embed is a non-text content unit such as a video. It always has length 1.
type Embed struct {
	Key   string
	Value string
}

// Op is a single step of a document edit.
// Exactly one of Insert, Embed, Retain or Delete is meaningful.
type Op struct {
	Insert     string
	Embed      *Embed
	Retain     int
	Delete     int
	Attributes Attributes
}

// Kind reports which operation this is.
func (o Op) Kind() OpKind {
	switch {
	case o.Delete > 0:
		return OpDelete
	case o.Retain > 0:
		return OpRetain
	default:
		return OpInsert
	}
}

// Len is the number of document units the op covers.
func (o Op) Len() int {
	switch {
	case o.Delete > 0:
		return o.Delete
	case o.Retain > 0:
		return o.Retain
	case o.Embed != nil:
		return 1
	default:
		return utf8.RuneCountInString(o.Insert)
	}
}

// IsText reports whether o inserts text (as opposed to an embed).
func (o Op) IsText() bool {
	return o.Kind() == OpInsert && o.Embed == nil
}

// Delta is an ordered list of operations describing one atomic document change.
// When every op is an insert, the Delta describes a whole document.
type Delta struct {
	Ops []Op `json:"ops"`
}

// Range is a selection inside a document. Length 0 is a caret.
type Range struct {
	Index  int `json:"index"`
	Length int `json:"length"`
}
