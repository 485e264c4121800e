// Package format implements the formatting range model: reconciliation of
// independently extracted range sets, projection of ranges onto gap-free
// segments and offset synchronization after free-form text edits.
//
// All offsets here are byte offsets into the UTF-8 encoded plain text buffer
// of the document. Half-open intervals [Start, End) are used throughout.
package format

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/multierr"
)

// Meta carries type specific payload of a formatting range. Only fields
// relevant for the range type are populated: URL for links, Source/Alt/Caption
// for images, ListStyle/Ordinal for list items.
type Meta struct {
	URL       string `json:"url,omitempty"`
	Source    string `json:"source,omitempty"`
	Alt       string `json:"alt,omitempty"`
	Caption   string `json:"caption,omitempty"`
	ListStyle string `json:"listStyle,omitempty"`
	Ordinal   int    `json:"ordinal,omitempty"`
}

// Range is a single formatting instruction over the document text.
type Range struct {
	ID    string `json:"id"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Type  Type   `json:"type"`
	Meta  *Meta  `json:"meta,omitempty"`
}

// NewRange creates a range with a fresh identifier.
func NewRange(start, end int, t Type) Range {
	return Range{ID: uuid.NewString(), Start: start, End: end, Type: t}
}

// Valid reports whether the range satisfies 0 <= Start < End <= textLen.
func (r Range) Valid(textLen int) bool {
	return r.Start >= 0 && r.Start < r.End && r.End <= textLen
}

// Covers reports whether the range fully contains [start, end).
func (r Range) Covers(start, end int) bool {
	return r.Start <= start && r.End >= end
}

// Comment is a positional annotation attached to a single offset.
type Comment struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
	Text     string `json:"text"`
	Resolved bool   `json:"resolved"`
}

// NewComment creates a comment with a fresh identifier.
func NewComment(position int, text string) Comment {
	return Comment{ID: uuid.NewString(), Position: position, Text: text}
}

// DataVersion identifies the current layout of persisted formatting data.
const DataVersion = "2"

// Data is the persisted formatting state of a document. It round-trips
// losslessly through the project save document as "formattingData".
type Data struct {
	Ranges   []Range   `json:"ranges"`
	Comments []Comment `json:"comments"`
	Version  string    `json:"version"`
}

// NewData returns empty formatting data with the current version stamp.
func NewData() *Data {
	return &Data{Ranges: []Range{}, Comments: []Comment{}, Version: DataVersion}
}

// Clone returns a deep copy.
func (d *Data) Clone() *Data {
	if d == nil {
		return nil
	}
	out := &Data{
		Ranges:   make([]Range, len(d.Ranges)),
		Comments: slices.Clone(d.Comments),
		Version:  d.Version,
	}
	for i, r := range d.Ranges {
		out.Ranges[i] = r
		if r.Meta != nil {
			m := *r.Meta
			out.Ranges[i].Meta = &m
		}
	}
	return out
}

// Validate collects everything wrong with the data against a text of the
// given length. Persisted data may come from corrupted saves, so callers
// typically log the result and proceed with Sanitize instead of failing.
func (d *Data) Validate(textLen int) (err error) {
	seen := make(map[string]bool, len(d.Ranges))
	for i, r := range d.Ranges {
		if !r.Valid(textLen) {
			err = multierr.Append(err, fmt.Errorf("range %d (%s): invalid span [%d, %d) over text of length %d", i, r.ID, r.Start, r.End, textLen))
		}
		if !r.Type.IsValid() {
			err = multierr.Append(err, fmt.Errorf("range %d (%s): unknown type %d", i, r.ID, int(r.Type)))
		}
		if len(r.ID) != 0 {
			if seen[r.ID] {
				err = multierr.Append(err, fmt.Errorf("range %d: duplicate id %s", i, r.ID))
			}
			seen[r.ID] = true
		}
	}
	for i, c := range d.Comments {
		if c.Position < 0 || c.Position > textLen {
			err = multierr.Append(err, fmt.Errorf("comment %d (%s): position %d outside text of length %d", i, c.ID, c.Position, textLen))
		}
	}
	return err
}

// Sanitize drops ranges and comments which are not usable with a text of the
// given length and assigns identifiers where they are missing. Invalid
// persisted entries never abort a render - they are filtered here.
func (d *Data) Sanitize(textLen int) {
	ranges := d.Ranges[:0]
	for _, r := range d.Ranges {
		if !r.Valid(textLen) || !r.Type.IsValid() {
			continue
		}
		if len(r.ID) == 0 {
			r.ID = uuid.NewString()
		}
		ranges = append(ranges, r)
	}
	d.Ranges = ranges

	comments := d.Comments[:0]
	for _, c := range d.Comments {
		if c.Position < 0 || c.Position > textLen {
			continue
		}
		if len(c.ID) == 0 {
			c.ID = uuid.NewString()
		}
		comments = append(comments, c)
	}
	d.Comments = comments
}

// SortRanges orders ranges by start offset ascending, then by end offset.
func SortRanges(ranges []Range) {
	slices.SortStableFunc(ranges, func(a, b Range) int {
		if a.Start != b.Start {
			return a.Start - b.Start
		}
		return a.End - b.End
	})
}

// Covering returns the first range of the given type fully containing
// [start, end), or nil. Used to recover per-type metadata for a derived
// segment.
func Covering(ranges []Range, start, end int, t Type) *Range {
	for i := range ranges {
		if ranges[i].Type == t && ranges[i].Covers(start, end) {
			return &ranges[i]
		}
	}
	return nil
}
