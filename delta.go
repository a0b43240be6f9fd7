package magicurl

import (
	"encoding/json"
	"fmt"
	"maps"
	"strings"
)

// objectReplacement stands in for embeds in plain-text projections.
const objectReplacement = "\uFFFC"

// NewDelta builds a delta from ops, applying the same merge rules as the builder methods.
func NewDelta(ops ...Op) *Delta {
	d := &Delta{}
	for _, op := range ops {
		d.push(op)
	}
	return d
}

// Insert appends a text insert. Empty text is ignored.
func (d *Delta) Insert(text string, attrs Attributes) *Delta {
	if text == "" {
		return d
	}
	return d.push(Op{Insert: text, Attributes: attrs})
}

// InsertEmbed appends an embed insert.
func (d *Delta) InsertEmbed(key, value string, attrs Attributes) *Delta {
	return d.push(Op{Embed: &Embed{Key: key, Value: value}, Attributes: attrs})
}

// Retain appends a retain of n units. Non-positive n is ignored.
func (d *Delta) Retain(n int, attrs Attributes) *Delta {
	if n <= 0 {
		return d
	}
	return d.push(Op{Retain: n, Attributes: attrs})
}

// Delete appends a delete of n units. Non-positive n is ignored.
func (d *Delta) Delete(n int) *Delta {
	if n <= 0 {
		return d
	}
	return d.push(Op{Delete: n})
}

// push appends op, merging it into the previous op where Quill would.
// Inserts are never moved ahead of a preceding delete.
func (d *Delta) push(op Op) *Delta {
	if op.Len() == 0 {
		return d
	}
	if len(op.Attributes) == 0 {
		op.Attributes = nil
	} else {
		op.Attributes = maps.Clone(op.Attributes)
	}
	if op.Embed != nil {
		e := *op.Embed
		op.Embed = &e
	}

	if n := len(d.Ops); n > 0 {
		last := &d.Ops[n-1]
		switch {
		case op.Kind() == OpDelete && last.Kind() == OpDelete:
			last.Delete += op.Delete
			return d
		case !maps.Equal(op.Attributes, last.Attributes):
		case op.IsText() && last.IsText():
			last.Insert += op.Insert
			return d
		case op.Kind() == OpRetain && last.Kind() == OpRetain:
			last.Retain += op.Retain
			return d
		}
	}
	d.Ops = append(d.Ops, op)
	return d
}

// Length is the total number of units covered by all ops.
func (d *Delta) Length() int {
	n := 0
	for _, op := range d.Ops {
		n += op.Len()
	}
	return n
}

// ChangeLength is how much the document grows (or shrinks) when d is applied.
func (d *Delta) ChangeLength() int {
	n := 0
	for _, op := range d.Ops {
		switch op.Kind() {
		case OpInsert:
			n += op.Len()
		case OpDelete:
			n -= op.Delete
		}
	}
	return n
}

// Text returns the inserted text of a document delta. Embeds appear as U+FFFC.
func (d *Delta) Text() string {
	var b strings.Builder
	for _, op := range d.Ops {
		if op.Kind() != OpInsert {
			continue
		}
		if op.Embed != nil {
			b.WriteString(objectReplacement)
			continue
		}
		b.WriteString(op.Insert)
	}
	return b.String()
}

// Clone returns a deep copy of d.
func (d *Delta) Clone() *Delta {
	return NewDelta(d.Ops...)
}

type opJSON struct {
	Insert     json.RawMessage `json:"insert,omitempty"`
	Retain     int             `json:"retain,omitempty"`
	Delete     int             `json:"delete,omitempty"`
	Attributes Attributes      `json:"attributes,omitempty"`
}

// MarshalJSON encodes o in Quill's wire form.
func (o Op) MarshalJSON() ([]byte, error) {
	out := opJSON{Attributes: o.Attributes}
	switch o.Kind() {
	case OpDelete:
		out.Delete = o.Delete
		out.Attributes = nil
	case OpRetain:
		out.Retain = o.Retain
	default:
		var (
			raw []byte
			err error
		)
		if o.Embed != nil {
			raw, err = json.Marshal(map[string]string{o.Embed.Key: o.Embed.Value})
		} else {
			raw, err = json.Marshal(o.Insert)
		}
		if err != nil {
			return nil, err
		}
		out.Insert = raw
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes Quill's wire form.
func (o *Op) UnmarshalJSON(data []byte) error {
	var in opJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*o = Op{Retain: in.Retain, Delete: in.Delete, Attributes: in.Attributes}

	set := 0
	if in.Retain > 0 {
		set++
	}
	if in.Delete > 0 {
		set++
	}
	if len(in.Insert) > 0 {
		set++
		switch in.Insert[0] {
		case '"':
			if err := json.Unmarshal(in.Insert, &o.Insert); err != nil {
				return err
			}
		case '{':
			var embed map[string]string
			if err := json.Unmarshal(in.Insert, &embed); err != nil {
				return err
			}
			if len(embed) != 1 {
				return fmt.Errorf("%w: embed must have exactly one key, got %d", ErrInvalidOp, len(embed))
			}
			for k, v := range embed {
				o.Embed = &Embed{Key: k, Value: v}
			}
		default:
			return fmt.Errorf("%w: unsupported insert value %s", ErrInvalidOp, in.Insert)
		}
	}
	if set != 1 {
		return fmt.Errorf("%w: %s", ErrInvalidOp, data)
	}
	return nil
}
