package magicurl

// TransformIndex returns where a position in the document moves to once d has
// been applied. Inserts at or before the position push it right; deletes that
// cover text before it pull it left.
func (d *Delta) TransformIndex(index int) int {
	it := newOpIterator(d.Ops)
	offset := 0
	for it.hasNext() && offset <= index {
		length := it.peekLength()
		kind := it.peekKind()
		it.next(length)
		switch kind {
		case OpDelete:
			index -= min(length, index-offset)
			continue
		case OpInsert:
			index += length
		}
		offset += length
	}
	return index
}

// TransformRange moves both ends of r through d.
func (d *Delta) TransformRange(r Range) Range {
	start := d.TransformIndex(r.Index)
	end := d.TransformIndex(r.Index + r.Length)
	return Range{Index: start, Length: max(end-start, 0)}
}
