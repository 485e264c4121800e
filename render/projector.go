package render

import (
	"golang.org/x/net/html"
)

// Boundary points at concrete text node positions for an abstract character
// offset span. Exact is false when one of the positions could not be resolved
// and a first/last text node fallback was substituted - callers proceed
// degraded rather than aborting the render.
type Boundary struct {
	StartNode   *html.Node
	StartOffset int
	EndNode     *html.Node
	EndOffset   int
	Exact       bool
}

// Empty reports whether no text node could be located at all.
func (b Boundary) Empty() bool {
	return b.StartNode == nil || b.EndNode == nil
}

// Locate maps the half-open span [start, end) over the container's visible
// text onto concrete text nodes. Depth-first traversal of text nodes,
// skipping comment marker subtrees, accumulating a running offset; traversal
// stops as soon as the end position is found. Local offsets are clamped to
// the actual node length to guard against off-by-one drift. Never fails:
// unresolvable positions fall back to the first/last text node.
func Locate(container *html.Node, start, end int) Boundary {
	if start < 0 {
		start = 0
	}
	if end < start {
		end = start
	}

	var (
		b       Boundary
		running int
		first   *html.Node
		last    *html.Node
	)

	var walk func(n *html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && HasClass(n, commentMarkerClass) {
			return false
		}
		if n.Type == html.TextNode {
			if first == nil {
				first = n
			}
			last = n
			length := len(n.Data)
			if b.StartNode == nil && start < running+length {
				b.StartNode = n
				b.StartOffset = clamp(start-running, 0, length)
			}
			// end is allowed to sit on the trailing edge of a node
			if b.StartNode != nil && b.EndNode == nil && end <= running+length {
				b.EndNode = n
				b.EndOffset = clamp(end-running, 0, length)
				return true
			}
			running += length
			return false
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	for c := container.FirstChild; c != nil; c = c.NextSibling {
		if walk(c) {
			break
		}
	}

	b.Exact = b.StartNode != nil && b.EndNode != nil
	if b.StartNode == nil && first != nil {
		// past-the-end positions settle on the trailing edge, everything
		// else degrades to the first text node
		if start >= running && last != nil {
			b.StartNode = last
			b.StartOffset = len(last.Data)
		} else {
			b.StartNode = first
			b.StartOffset = 0
		}
	}
	if b.EndNode == nil && last != nil {
		b.EndNode = last
		b.EndOffset = len(last.Data)
	}
	return b
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
