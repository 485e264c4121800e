package format

// Closed vocabulary of formatting range types. Link ranges carry a target URL,
// image ranges a source reference with optional caption, list items ordering
// metadata - see Meta.
// ENUM(bold, italic, underline, strike, heading1, heading2, heading3, quote, list, listItem, link, image, table)
type Type int

// Kind of a single text edit reported by the text-diff collaborator.
// ENUM(insert, delete)
type EditKind int

// Block reports whether ranges of this type describe block level content
// rather than inline character formatting.
func (t Type) Block() bool {
	switch t {
	case TypeHeading1, TypeHeading2, TypeHeading3, TypeQuote, TypeList, TypeListItem, TypeImage, TypeTable:
		return true
	default:
		return false
	}
}

// Heading reports whether the type is one of the heading levels.
func (t Type) Heading() bool {
	return t == TypeHeading1 || t == TypeHeading2 || t == TypeHeading3
}

// HeadingLevel returns 1 based heading level, 0 for non-headings.
func (t Type) HeadingLevel() int {
	switch t {
	case TypeHeading1:
		return 1
	case TypeHeading2:
		return 2
	case TypeHeading3:
		return 3
	default:
		return 0
	}
}
