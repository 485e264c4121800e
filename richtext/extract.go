// Package richtext converts rich HTML markup into a plain text buffer plus a
// flat set of formatting ranges over it. This is the client side extraction
// feeding the range merger; the resulting offsets rarely agree exactly with
// the backend extraction for the same document, which is what the merger's
// content based realignment is for.
package richtext

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"ams/format"
)

// ObjectChar stands in for images in the extracted text buffer so image
// ranges have a non-empty span to cover.
const ObjectChar = "￼"

// Result is the product of one extraction pass.
type Result struct {
	Text   string
	Ranges []format.Range
}

// Extract parses HTML markup and produces the plain text with formatting
// ranges. Input in legacy encodings is converted based on content sniffing.
func Extract(r io.Reader, log *zap.Logger) (*Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("richtext")

	cr, err := charset.NewReader(r, "")
	if err != nil {
		return nil, fmt.Errorf("unable to determine markup encoding: %w", err)
	}
	doc, err := html.Parse(cr)
	if err != nil {
		return nil, fmt.Errorf("unable to parse markup: %w", err)
	}

	e := &extractor{log: log}
	e.walk(findBody(doc))

	res := &Result{Text: e.text.String(), Ranges: e.ranges}
	log.Debug("Extracted rich markup", zap.Int("chars", len(res.Text)), zap.Int("ranges", len(res.Ranges)))
	return res, nil
}

func findBody(doc *html.Node) *html.Node {
	var body *html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if body != nil {
			return
		}
		if n.Type == html.ElementNode && n.Data == "body" {
			body = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	if body == nil {
		return doc
	}
	return body
}

type extractor struct {
	text    strings.Builder
	ranges  []format.Range
	ordinal []int // list nesting, current item number per level
	log     *zap.Logger
}

func (e *extractor) walk(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		e.node(c)
	}
}

func (e *extractor) node(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		e.appendText(n.Data)
		return
	case html.ElementNode:
	default:
		return
	}

	switch n.Data {
	case "script", "style", "noscript", "head", "template":
		return
	case "br":
		e.breakLine()
		return
	case "img":
		e.emitImage(n)
		return
	}

	start := e.text.Len()

	switch n.Data {
	case "ul", "ol":
		e.ordinal = append(e.ordinal, 0)
		e.walk(n)
		e.ordinal = e.ordinal[:len(e.ordinal)-1]
	case "table":
		e.emitTable(n, start)
		return
	default:
		e.walk(n)
	}

	end := e.text.Len()
	if end <= start {
		return
	}

	for _, t := range typesFor(n.Data) {
		r := format.NewRange(start, end, t)
		switch t {
		case format.TypeLink:
			if href := attrVal(n, "href"); len(href) != 0 {
				r.Meta = &format.Meta{URL: href}
			}
		case format.TypeListItem:
			if len(e.ordinal) != 0 {
				e.ordinal[len(e.ordinal)-1]++
				r.Meta = &format.Meta{Ordinal: e.ordinal[len(e.ordinal)-1], ListStyle: listStyle(n)}
			}
		}
		e.ranges = append(e.ranges, r)
	}

	if blockTag(n.Data) {
		e.breakLine()
	}
}

func (e *extractor) emitImage(n *html.Node) {
	start := e.text.Len()
	e.text.WriteString(ObjectChar)
	r := format.NewRange(start, e.text.Len(), format.TypeImage)
	r.Meta = &format.Meta{Source: attrVal(n, "src"), Alt: attrVal(n, "alt"), Caption: attrVal(n, "title")}
	e.ranges = append(e.ranges, r)
}

// emitTable flattens cell text: cells separated by tabs, rows by newlines.
// Full table structure is out of scope - the range carries text content only.
func (e *extractor) emitTable(n *html.Node, start int) {
	var rows func(n *html.Node)
	rows = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "tr":
				first := true
				for cell := c.FirstChild; cell != nil; cell = cell.NextSibling {
					if cell.Type == html.ElementNode && (cell.Data == "td" || cell.Data == "th") {
						if !first {
							e.text.WriteString("\t")
						}
						first = false
						e.walk(cell)
					}
				}
				e.breakLine()
			default:
				rows(c)
			}
		}
	}
	rows(n)

	if end := e.text.Len(); end > start {
		e.ranges = append(e.ranges, format.NewRange(start, end, format.TypeTable))
	}
	e.breakLine()
}

// appendText collapses whitespace runs the way rendered HTML does.
func (e *extractor) appendText(data string) {
	fields := strings.Fields(data)
	if len(fields) == 0 {
		return
	}
	cur := e.text.String()
	if len(cur) != 0 && !strings.HasSuffix(cur, "\n") && !strings.HasSuffix(cur, " ") &&
		(data[0] == ' ' || data[0] == '\t' || data[0] == '\n' || data[0] == '\r') {
		e.text.WriteString(" ")
	}
	e.text.WriteString(strings.Join(fields, " "))
	if last := data[len(data)-1]; last == ' ' || last == '\t' || last == '\n' || last == '\r' {
		e.text.WriteString(" ")
	}
}

func (e *extractor) breakLine() {
	cur := e.text.String()
	if len(cur) == 0 {
		return
	}
	if strings.HasSuffix(cur, " ") {
		// trailing inline whitespace is absorbed by the line break
		trimmed := strings.TrimRight(cur, " ")
		e.text.Reset()
		e.text.WriteString(trimmed)
	}
	if !strings.HasSuffix(e.text.String(), "\n") {
		e.text.WriteString("\n")
	}
}

func typesFor(tag string) []format.Type {
	switch tag {
	case "b", "strong":
		return []format.Type{format.TypeBold}
	case "i", "em":
		return []format.Type{format.TypeItalic}
	case "u", "ins":
		return []format.Type{format.TypeUnderline}
	case "s", "del", "strike":
		return []format.Type{format.TypeStrike}
	case "h1":
		return []format.Type{format.TypeHeading1}
	case "h2":
		return []format.Type{format.TypeHeading2}
	case "h3", "h4", "h5", "h6":
		return []format.Type{format.TypeHeading3}
	case "blockquote", "q", "cite":
		return []format.Type{format.TypeQuote}
	case "ul", "ol":
		return []format.Type{format.TypeList}
	case "li":
		return []format.Type{format.TypeListItem}
	case "a":
		return []format.Type{format.TypeLink}
	default:
		return nil
	}
}

func blockTag(tag string) bool {
	switch tag {
	case "p", "div", "section", "article", "h1", "h2", "h3", "h4", "h5", "h6",
		"blockquote", "li", "ul", "ol", "pre", "header", "footer", "figure", "figcaption":
		return true
	default:
		return false
	}
}

func listStyle(n *html.Node) string {
	if n.Parent != nil && n.Parent.Type == html.ElementNode && n.Parent.Data == "ol" {
		return "ordered"
	}
	return "unordered"
}

func attrVal(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
