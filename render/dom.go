// Package render projects formatting ranges, comments and highlights onto a
// live HTML node tree. It owns the render pass over a single container
// element: segment derived element emission, comment marker placement, caret
// restoration and highlight round-tripping.
//
// Everything here degrades instead of failing: a render pass never propagates
// an error past its entry point, since aborting would blank the whole
// manuscript view.
package render

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// class of transient comment marker elements, excluded from logical text
const commentMarkerClass = "comment-marker"

// HighlightClass marks user managed section highlight spans. The render pass
// does not own them but must round-trip them across a DOM rebuild.
const HighlightClass = "section-highlight"

// Element creates an element node for the given tag.
func Element(tag string) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
}

// TextNode creates a text node.
func TextNode(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}

// Attr returns the value of the named attribute, empty when absent.
func Attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// SetAttr sets or replaces the named attribute.
func SetAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// Classes returns the element's class list.
func Classes(n *html.Node) []string {
	return strings.Fields(Attr(n, "class"))
}

// HasClass reports whether the element carries the given class.
func HasClass(n *html.Node, class string) bool {
	for _, c := range Classes(n) {
		if c == class {
			return true
		}
	}
	return false
}

// VisibleText returns the logical text content of the container: all text
// nodes in document order, excluding transient comment marker subtrees.
func VisibleText(container *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && HasClass(n, commentMarkerClass) {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := container.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return sb.String()
}

// RemoveChildren detaches all children of the node.
func RemoveChildren(n *html.Node) {
	for n.FirstChild != nil {
		n.RemoveChild(n.FirstChild)
	}
}

// CloneTree deep-copies a node subtree detached from any parent.
func CloneTree(n *html.Node) *html.Node {
	out := &html.Node{
		Type:     n.Type,
		DataAtom: n.DataAtom,
		Data:     n.Data,
		Attr:     append([]html.Attribute(nil), n.Attr...),
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out.AppendChild(CloneTree(c))
	}
	return out
}

// splitTextNode splits a text node at the given offset and returns the node
// holding the tail. Offset is clamped to the node's length. When the split
// point is at either end no new node is created and the adjacent node is
// returned.
func splitTextNode(n *html.Node, offset int) *html.Node {
	if offset <= 0 {
		return n
	}
	if offset >= len(n.Data) {
		return n.NextSibling
	}
	tail := TextNode(n.Data[offset:])
	n.Data = n.Data[:offset]
	n.Parent.InsertBefore(tail, n.NextSibling)
	return tail
}
