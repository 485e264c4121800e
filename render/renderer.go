package render

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"ams/css"
	"ams/format"
)

// DefaultChunkSize limits the size of plain text nodes emitted for
// unformatted segments. Chunking exists purely for traversal performance;
// boundaries are picked at whitespace where possible to avoid splitting
// tokens awkwardly.
const DefaultChunkSize = 2048

// leading bullet or number marker possibly leaked into list item text by the
// upstream document extractor. One well-formed marker only - the extractor
// corruption this compensates for should be fixed upstream.
var leadingMarkerRe = regexp.MustCompile(`^\s*(?:[-*\x{2022}\x{25E6}\x{2023}\x{00B7}]|\(?\d{1,3}[.)])\s+`)

// Caret carries a caret position through a render pass: the caller records
// the character offset, the render pass resolves it against the rebuilt DOM.
type Caret struct {
	Offset   int
	Boundary Boundary
}

// Renderer rebuilds a container's DOM from the authoritative text and the
// current formatting state. It is not re-entrant: a render pass mutates the
// container in multiple steps, so callers serialize passes (see Scheduler).
type Renderer struct {
	Text          string
	Data          *format.Data
	ChunkSize     int
	ContextWindow int

	log *zap.Logger
}

// NewRenderer creates a renderer over the given state.
func NewRenderer(text string, data *format.Data, log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	if data == nil {
		data = format.NewData()
	}
	return &Renderer{
		Text:          text,
		Data:          data,
		ChunkSize:     DefaultChunkSize,
		ContextWindow: DefaultContextWindow,
		log:           log.Named("render"),
	}
}

// Render performs one full render pass over the container. caret may be nil.
// Nothing propagates out of here: every failure is recovered locally and
// logged, because an abort would blank the user's entire manuscript view.
func (r *Renderer) Render(container *html.Node, caret *Caret) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Error("Render pass failed, container left as is", zap.Any("panic", p))
		}
	}()

	r.reconcileText(container)
	r.Data.Sanitize(len(r.Text))

	saved := CaptureHighlights(container, r.ContextWindow)

	RemoveChildren(container)

	segments := format.BuildSegments(r.Data.Ranges, len(r.Text))
	for _, seg := range segments {
		chunk := r.Text[seg.Start:seg.End]
		if !seg.Formatted() {
			r.appendChunked(container, chunk)
			continue
		}
		container.AppendChild(r.buildElement(seg, chunk))
	}

	r.placeComments(container)

	if caret != nil {
		caret.Boundary = Locate(container, caret.Offset, caret.Offset)
	}

	RestoreHighlights(container, saved, r.log)

	r.validate(container)
}

// reconcileText is the single reconciliation step between the authoritative
// text and the live DOM. Divergence indicates a synchronization bug between
// the edit collaborator and the stored text; it is logged as an invariant
// violation and the DOM content wins as the more recent source.
func (r *Renderer) reconcileText(container *html.Node) {
	domText := VisibleText(container)
	if len(domText) == 0 || domText == r.Text {
		return
	}
	if len(domText) != len(r.Text) {
		r.log.Warn("Authoritative text diverged from DOM, adopting DOM content",
			zap.Int("text_len", len(r.Text)), zap.Int("dom_len", len(domText)))
		r.Text = domText
		return
	}
	r.log.Warn("Authoritative text diverged from DOM at equal length, keeping authoritative text",
		zap.Int("text_len", len(r.Text)))
}

// appendChunked emits text as a sequence of text nodes, breaking at the last
// whitespace inside each window.
func (r *Renderer) appendChunked(parent *html.Node, text string) {
	size := r.ChunkSize
	if size <= 0 {
		size = DefaultChunkSize
	}
	for len(text) > size {
		cut := size
		if ws := strings.LastIndexAny(text[:size], " \t\n"); ws > 0 {
			cut = ws + 1
		}
		parent.AppendChild(TextNode(text[:cut]))
		text = text[cut:]
	}
	if len(text) != 0 {
		parent.AppendChild(TextNode(text))
	}
}

// buildElement emits one element for a formatted segment. Link wins over
// other carried types, then image, table and list item placeholders; plain
// style combinations become a single wrapper with one class per type.
func (r *Renderer) buildElement(seg format.Segment, chunk string) *html.Node {
	var el *html.Node

	switch {
	case seg.Has(format.TypeLink):
		el = Element("a")
		SetAttr(el, "target", "_blank")
		SetAttr(el, "rel", "noopener noreferrer")
		if m := format.Covering(r.Data.Ranges, seg.Start, seg.End, format.TypeLink); m != nil && m.Meta != nil {
			SetAttr(el, "href", m.Meta.URL)
		}
		el.AppendChild(TextNode(chunk))

	case seg.Has(format.TypeImage):
		el = Element("span")
		if m := format.Covering(r.Data.Ranges, seg.Start, seg.End, format.TypeImage); m != nil && m.Meta != nil && len(m.Meta.Source) != 0 {
			img := Element("img")
			SetAttr(img, "src", m.Meta.Source)
			if len(m.Meta.Alt) != 0 {
				SetAttr(img, "alt", m.Meta.Alt)
			}
			el.AppendChild(img)
			if len(m.Meta.Caption) != 0 {
				SetAttr(el, "title", m.Meta.Caption)
			}
		}
		el.AppendChild(TextNode(chunk))

	case seg.Has(format.TypeTable):
		// text content only, full table structure is out of scope
		el = Element("div")
		el.AppendChild(TextNode(chunk))

	case seg.Has(format.TypeListItem):
		el = Element("li")
		el.AppendChild(TextNode("• " + stripLeadingMarker(chunk)))

	default:
		el = Element("span")
		el.AppendChild(TextNode(chunk))
	}

	classes := make([]string, 0, len(seg.Types))
	for _, t := range seg.Types {
		classes = append(classes, css.ClassFor(t))
	}
	SetAttr(el, "class", strings.Join(classes, " "))
	SetAttr(el, "data-fmt", "1")
	return el
}

// stripLeadingMarker removes a single leading bullet/number marker from list
// item text so the emitted bullet glyph is not doubled.
func stripLeadingMarker(text string) string {
	return leadingMarkerRe.ReplaceAllString(text, "")
}

// placeComments inserts a marker element at every comment position.
// Markers carry the comment-marker class and are excluded from logical text,
// so placement does not shift visible offsets. A position that cannot be
// resolved is skipped, not fatal.
func (r *Renderer) placeComments(container *html.Node) {
	for _, c := range r.Data.Comments {
		b := Locate(container, c.Position, c.Position)
		if b.StartNode == nil {
			if len(r.Text) != 0 {
				r.log.Warn("Unable to place comment marker", zap.String("id", c.ID), zap.Int("position", c.Position))
			}
			continue
		}

		marker := Element("span")
		class := commentMarkerClass
		if c.Resolved {
			class += " resolved"
		}
		SetAttr(marker, "class", class)
		SetAttr(marker, "data-comment-id", c.ID)
		SetAttr(marker, "title", c.Text)
		marker.AppendChild(TextNode("¶"))

		tail := splitTextNode(b.StartNode, b.StartOffset)
		if b.StartOffset == 0 {
			b.StartNode.Parent.InsertBefore(marker, b.StartNode)
		} else {
			b.StartNode.Parent.InsertBefore(marker, tail)
		}
	}
}

// validate is the post-render pass: it logs formatting elements left empty
// by text changes and nested formatting elements, which would indicate a
// segment building bug upstream. Log only, never throws.
func (r *Renderer) validate(container *html.Node) {
	var walk func(n *html.Node, insideFmt bool)
	walk = func(n *html.Node, insideFmt bool) {
		if n.Type == html.ElementNode && Attr(n, "data-fmt") == "1" {
			if len(VisibleText(n)) == 0 {
				r.log.Warn("Formatting element is empty after text changes", zap.String("class", Attr(n, "class")))
			}
			if insideFmt {
				r.log.Warn("Nested formatting elements detected", zap.String("class", Attr(n, "class")))
			}
			insideFmt = true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, insideFmt)
		}
	}
	walk(container, false)
}
