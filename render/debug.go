package render

import (
	"strings"

	"golang.org/x/net/html"

	"ams/utils/debug"
)

// DumpTree returns a readable tree of a rendered container. It exists solely
// for manual inspection during debugging.
func DumpTree(container *html.Node) string {
	if container == nil {
		return "<nil container>"
	}
	tw := debug.NewTreeWriter()
	dumpNode(tw, container, 0)
	return tw.String()
}

func dumpNode(tw *debug.TreeWriter, n *html.Node, depth int) {
	switch n.Type {
	case html.ElementNode:
		var attrs []string
		for _, a := range n.Attr {
			attrs = append(attrs, a.Key+"="+a.Val)
		}
		if len(attrs) != 0 {
			tw.Line(depth, "<%s> [%s]", n.Data, strings.Join(attrs, " "))
		} else {
			tw.Line(depth, "<%s>", n.Data)
		}
	case html.TextNode:
		tw.TextBlock(depth, "text", n.Data)
	case html.CommentNode:
		tw.TextBlock(depth, "comment", n.Data)
	default:
		tw.Line(depth, "node type %d", n.Type)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		dumpNode(tw, c, depth+1)
	}
}
