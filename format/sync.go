package format

// Edit describes a single text change reported by the text-edit collaborator:
// an insertion or a deletion of Length bytes at Position. Edits are applied in
// the order they occurred.
type Edit struct {
	Kind     EditKind `json:"type"`
	Position int      `json:"position"`
	Length   int      `json:"length"`
}

// ShiftOffset adjusts a single stored offset for one edit. Insertions at or
// before the offset push it right. Deletions past the offset leave it alone,
// deletions before it pull it left, and an offset inside a deleted span
// collapses to the deletion point rather than becoming invalid.
func ShiftOffset(o int, e Edit) int {
	switch e.Kind {
	case EditKindInsert:
		if o >= e.Position {
			return o + e.Length
		}
	case EditKindDelete:
		if o >= e.Position+e.Length {
			return o - e.Length
		}
		if o > e.Position {
			return e.Position
		}
	}
	return o
}

// ApplyEdits shifts all stored range and comment offsets in place so they
// keep pointing at the same logical content after the given edits. Ranges
// collapsing to nothing are dropped. Must run before the next render pass.
func (d *Data) ApplyEdits(edits []Edit) {
	if len(edits) == 0 {
		return
	}
	for _, e := range edits {
		if e.Length <= 0 {
			continue
		}
		for i := range d.Ranges {
			d.Ranges[i].Start = ShiftOffset(d.Ranges[i].Start, e)
			d.Ranges[i].End = ShiftOffset(d.Ranges[i].End, e)
		}
		for i := range d.Comments {
			d.Comments[i].Position = ShiftOffset(d.Comments[i].Position, e)
		}
	}

	ranges := d.Ranges[:0]
	for _, r := range d.Ranges {
		if r.Start >= r.End {
			continue
		}
		ranges = append(ranges, r)
	}
	d.Ranges = ranges
}

// DiffTexts is the best-effort scanner producing edit records between two
// text snapshots: common prefix and suffix are located and the differing
// middle is reported as one deletion followed by one insertion. Good enough
// for single contiguous hand-edits; anything fancier belongs to an external
// diff collaborator.
func DiffTexts(oldText, newText string) []Edit {
	if oldText == newText {
		return nil
	}

	prefix := 0
	for prefix < len(oldText) && prefix < len(newText) && oldText[prefix] == newText[prefix] {
		prefix++
	}

	suffix := 0
	for suffix < len(oldText)-prefix && suffix < len(newText)-prefix &&
		oldText[len(oldText)-1-suffix] == newText[len(newText)-1-suffix] {
		suffix++
	}

	var edits []Edit
	if removed := len(oldText) - prefix - suffix; removed > 0 {
		edits = append(edits, Edit{Kind: EditKindDelete, Position: prefix, Length: removed})
	}
	if inserted := len(newText) - prefix - suffix; inserted > 0 {
		edits = append(edits, Edit{Kind: EditKindInsert, Position: prefix, Length: inserted})
	}
	return edits
}
