package render

import (
	"slices"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// DefaultContextWindow is how many bytes of surrounding text are captured on
// each side of a highlight for content based relocation.
const DefaultContextWindow = 50

// SavedHighlight is a highlight span captured before a DOM rebuild. Raw DOM
// offsets are invalidated by the rebuild, so relocation is content based:
// surrounding context first, bare text second, the recorded raw offset as the
// last resort.
type SavedHighlight struct {
	SectionID string   `json:"sectionId"`
	Classes   []string `json:"classes"`
	Text      string   `json:"text"`
	Before    string   `json:"before"`
	After     string   `json:"after"`
	Start     int      `json:"start"`

	// inner markup, kept when richer than plain text
	children []*html.Node
}

// CaptureHighlights records every section highlight span in the container
// together with up to window bytes of context on each side.
func CaptureHighlights(container *html.Node, window int) []SavedHighlight {
	if window <= 0 {
		window = DefaultContextWindow
	}
	full := VisibleText(container)

	var saved []SavedHighlight
	running := 0

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && HasClass(n, commentMarkerClass) {
			return
		}
		if n.Type == html.ElementNode && HasClass(n, HighlightClass) {
			text := VisibleText(n)
			h := SavedHighlight{
				SectionID: Attr(n, "data-section-id"),
				Classes:   Classes(n),
				Text:      text,
				Before:    full[max(0, running-window):running],
				After:     full[min(len(full), running+len(text)):min(len(full), running+len(text)+window)],
				Start:     running,
			}
			if richerThanText(n) {
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					h.children = append(h.children, CloneTree(c))
				}
			}
			saved = append(saved, h)
			running += len(text)
			return
		}
		if n.Type == html.TextNode {
			running += len(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := container.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return saved
}

func richerThanText(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.TextNode {
			return true
		}
	}
	return false
}

// RestoreHighlights re-wraps previously captured highlight spans in the
// rebuilt container. Relocation searches the new text for context + text +
// context, then for the bare text, then falls back to the recorded raw
// offset. Highlights are applied in descending offset order so that wrapping
// one does not disturb the not yet processed ones. A highlight whose content
// is gone is logged and skipped - a lost highlight beats an aborted render.
func RestoreHighlights(container *html.Node, saved []SavedHighlight, log *zap.Logger) {
	if len(saved) == 0 {
		return
	}
	if log == nil {
		log = zap.NewNop()
	}
	text := VisibleText(container)

	type located struct {
		SavedHighlight
		at int
	}
	found := make([]located, 0, len(saved))
	for _, h := range saved {
		if len(h.Text) == 0 {
			continue
		}
		at := -1
		if idx := strings.Index(text, h.Before+h.Text+h.After); idx >= 0 {
			at = idx + len(h.Before)
		} else if idx := strings.Index(text, h.Text); idx >= 0 {
			at = idx
		} else if h.Start >= 0 && h.Start+len(h.Text) <= len(text) {
			at = h.Start
		}
		if at < 0 {
			log.Warn("Unable to relocate highlight, leaving it unrestored",
				zap.String("section", h.SectionID), zap.Int("chars", len(h.Text)))
			continue
		}
		found = append(found, located{h, at})
	}

	slices.SortFunc(found, func(a, b located) int { return b.at - a.at })

	for _, h := range found {
		b := Locate(container, h.at, h.at+len(h.Text))
		if b.Empty() {
			log.Warn("No text nodes to restore highlight into", zap.String("section", h.SectionID))
			continue
		}
		span := Element("span")
		if len(h.Classes) != 0 {
			SetAttr(span, "class", strings.Join(h.Classes, " "))
		} else {
			SetAttr(span, "class", HighlightClass)
		}
		if len(h.SectionID) != 0 {
			SetAttr(span, "data-section-id", h.SectionID)
		}
		ok, partial := wrapBoundary(span, b)
		if !ok {
			log.Warn("Unable to wrap highlight span", zap.String("section", h.SectionID))
			continue
		}
		if partial {
			log.Warn("Highlight restored only partially, span edges are in different parents",
				zap.String("section", h.SectionID), zap.Int("chars", len(h.Text)))
		}
		// put saved inner markup back when it was richer than plain text
		if len(h.children) != 0 && VisibleText(span) == h.Text {
			RemoveChildren(span)
			for _, c := range h.children {
				span.AppendChild(CloneTree(c))
			}
		}
	}
}

// wrapBoundary moves the text between boundary positions into the wrapper
// element inserted at the boundary start. Cross-node spans are supported as
// long as both edges share a parent; otherwise only the start node portion is
// wrapped and the wrap is reported as partial (degraded, never fails the
// render).
func wrapBoundary(wrapper *html.Node, b Boundary) (ok, partial bool) {
	if b.Empty() {
		return false, false
	}

	if b.StartNode == b.EndNode {
		n := b.StartNode
		tail := splitTextNode(n, b.EndOffset)
		mid := splitTextNode(n, b.StartOffset)
		if mid == nil || mid == tail {
			return false, false
		}
		parent := mid.Parent
		parent.InsertBefore(wrapper, mid)
		parent.RemoveChild(mid)
		wrapper.AppendChild(mid)
		return true, false
	}

	if b.StartNode.Parent != b.EndNode.Parent {
		// wrap the start node tail only
		tail := Boundary{
			StartNode: b.StartNode, StartOffset: b.StartOffset,
			EndNode: b.StartNode, EndOffset: len(b.StartNode.Data),
		}
		ok, _ = wrapBoundary(wrapper, tail)
		return ok, ok
	}

	parent := b.StartNode.Parent
	splitTextNode(b.EndNode, b.EndOffset)
	first := splitTextNode(b.StartNode, b.StartOffset)
	if first == nil {
		return false, false
	}

	parent.InsertBefore(wrapper, first)
	for n := wrapper.NextSibling; n != nil; {
		next := n.NextSibling
		if n == b.EndNode {
			if b.EndOffset > 0 {
				parent.RemoveChild(n)
				wrapper.AppendChild(n)
			}
			break
		}
		parent.RemoveChild(n)
		wrapper.AppendChild(n)
		n = next
	}
	return true, false
}
