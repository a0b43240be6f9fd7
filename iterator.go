package magicurl

import "math"

// opIterator walks a list of ops in arbitrary-sized pieces, splitting text
// inserts, retains and deletes as needed. Embeds are never split.
type opIterator struct {
	ops    []Op
	index  int
	offset int // units already consumed from ops[index]
}

func newOpIterator(ops []Op) *opIterator {
	return &opIterator{ops: ops}
}

func (it *opIterator) hasNext() bool {
	return it.peekLength() < math.MaxInt
}

// peekLength is the number of units left in the current op, or MaxInt past the end.
func (it *opIterator) peekLength() int {
	if it.index >= len(it.ops) {
		return math.MaxInt
	}
	return it.ops[it.index].Len() - it.offset
}

// peekKind is the kind of the current op. Past the end it behaves like an
// implicit retain of the rest of the document.
func (it *opIterator) peekKind() OpKind {
	if it.index >= len(it.ops) {
		return OpRetain
	}
	return it.ops[it.index].Kind()
}

// next consumes at most n units and returns them as a single op.
func (it *opIterator) next(n int) Op {
	if it.index >= len(it.ops) {
		return Op{Retain: math.MaxInt}
	}
	op := it.ops[it.index]
	offset := it.offset
	left := op.Len() - offset
	if n >= left {
		n = left
		it.index++
		it.offset = 0
	} else {
		it.offset += n
	}

	switch op.Kind() {
	case OpDelete:
		return Op{Delete: n}
	case OpRetain:
		return Op{Retain: n, Attributes: op.Attributes}
	}
	if op.Embed != nil {
		return op
	}
	runes := []rune(op.Insert)
	return Op{Insert: string(runes[offset : offset+n]), Attributes: op.Attributes}
}
