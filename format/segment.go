package format

import (
	"slices"
)

// Segment is a derived, gap-free, non-overlapping interval of document text
// carrying the union of types of all ranges fully covering it. Segments are
// produced fresh on every render and never persisted.
type Segment struct {
	Start int
	End   int
	Types []Type
}

// Formatted reports whether any range type applies to the segment.
func (s Segment) Formatted() bool {
	return len(s.Types) != 0
}

// Has reports whether the segment carries the given type.
func (s Segment) Has(t Type) bool {
	return slices.Contains(s.Types, t)
}

// BuildSegments converts a set of possibly overlapping ranges over a text of
// known length into a complete sequence of segments: contiguous,
// non-overlapping, their union exactly covering [0, textLen). Ranges failing
// the offset invariant contribute nothing. Overlapping ranges are merged into
// segments carrying every applicable type instead of producing nested output.
func BuildSegments(ranges []Range, textLen int) []Segment {
	if textLen <= 0 {
		return nil
	}

	cuts := make([]int, 0, 2*len(ranges)+2)
	cuts = append(cuts, 0, textLen)
	for _, r := range ranges {
		if !r.Valid(textLen) {
			continue
		}
		cuts = append(cuts, r.Start, r.End)
	}
	slices.Sort(cuts)
	cuts = slices.Compact(cuts)

	segments := make([]Segment, 0, len(cuts)-1)
	for i := 0; i+1 < len(cuts); i++ {
		a, b := cuts[i], cuts[i+1]
		if a >= b {
			continue
		}
		seg := Segment{Start: a, End: b}
		for _, r := range ranges {
			if !r.Valid(textLen) || !r.Covers(a, b) {
				continue
			}
			if !slices.Contains(seg.Types, r.Type) {
				seg.Types = append(seg.Types, r.Type)
			}
		}
		segments = append(segments, seg)
	}
	return segments
}
