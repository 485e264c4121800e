package richtext

import (
	"strings"
	"testing"

	"ams/format"
)

func extract(t *testing.T, markup string) *Result {
	t.Helper()
	res, err := Extract(strings.NewReader(markup), nil)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	return res
}

func findRange(t *testing.T, res *Result, typ format.Type) format.Range {
	t.Helper()
	for _, r := range res.Ranges {
		if r.Type == typ {
			return r
		}
	}
	t.Fatalf("no range of type %s in %+v", typ, res.Ranges)
	return format.Range{}
}

func TestExtractInline(t *testing.T) {
	res := extract(t, "<p>The <b>quick</b> brown <i>fox</i></p>")
	if res.Text != "The quick brown fox\n" {
		t.Fatalf("unexpected text %q", res.Text)
	}
	b := findRange(t, res, format.TypeBold)
	if res.Text[b.Start:b.End] != "quick" {
		t.Fatalf("bold covers %q", res.Text[b.Start:b.End])
	}
	i := findRange(t, res, format.TypeItalic)
	if res.Text[i.Start:i.End] != "fox" {
		t.Fatalf("italic covers %q", res.Text[i.Start:i.End])
	}
}

func TestExtractNestedInline(t *testing.T) {
	res := extract(t, "<p><b>bold <i>both</i></b></p>")
	b := findRange(t, res, format.TypeBold)
	i := findRange(t, res, format.TypeItalic)
	if res.Text[b.Start:b.End] != "bold both" || res.Text[i.Start:i.End] != "both" {
		t.Fatalf("bold %q italic %q", res.Text[b.Start:b.End], res.Text[i.Start:i.End])
	}
	if i.Start < b.Start || i.End > b.End {
		t.Fatalf("italic range not inside bold: %+v vs %+v", i, b)
	}
}

func TestExtractHeadings(t *testing.T) {
	res := extract(t, "<h1>Title</h1><h2>Chapter</h2><h5>Deep</h5>")
	h1 := findRange(t, res, format.TypeHeading1)
	if res.Text[h1.Start:h1.End] != "Title" {
		t.Fatalf("h1 covers %q", res.Text[h1.Start:h1.End])
	}
	h3 := findRange(t, res, format.TypeHeading3)
	if res.Text[h3.Start:h3.End] != "Deep" {
		t.Fatalf("h5 should map to heading3, covers %q", res.Text[h3.Start:h3.End])
	}
}

func TestExtractLink(t *testing.T) {
	res := extract(t, `<p>see <a href="https://example.com/x">here</a></p>`)
	r := findRange(t, res, format.TypeLink)
	if res.Text[r.Start:r.End] != "here" {
		t.Fatalf("link covers %q", res.Text[r.Start:r.End])
	}
	if r.Meta == nil || r.Meta.URL != "https://example.com/x" {
		t.Fatalf("link meta %+v", r.Meta)
	}
}

func TestExtractLists(t *testing.T) {
	res := extract(t, "<ol><li>one</li><li>two</li></ol>")
	list := findRange(t, res, format.TypeList)
	if got := res.Text[list.Start:list.End]; got != "one\ntwo\n" && got != "one\ntwo" {
		t.Fatalf("list covers %q", got)
	}
	var items []format.Range
	for _, r := range res.Ranges {
		if r.Type == format.TypeListItem {
			items = append(items, r)
		}
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	for n, it := range items {
		if it.Meta == nil || it.Meta.Ordinal != n+1 || it.Meta.ListStyle != "ordered" {
			t.Fatalf("item %d meta %+v", n, it.Meta)
		}
	}
}

func TestExtractImage(t *testing.T) {
	res := extract(t, `<p>before <img src="pic.png" alt="a pic"> after</p>`)
	r := findRange(t, res, format.TypeImage)
	if res.Text[r.Start:r.End] != ObjectChar {
		t.Fatalf("image covers %q", res.Text[r.Start:r.End])
	}
	if r.Meta == nil || r.Meta.Source != "pic.png" || r.Meta.Alt != "a pic" {
		t.Fatalf("image meta %+v", r.Meta)
	}
	if !strings.Contains(res.Text, "before "+ObjectChar+" after") {
		t.Fatalf("text around image broken: %q", res.Text)
	}
}

func TestExtractTable(t *testing.T) {
	res := extract(t, "<table><tr><td>a</td><td>b</td></tr><tr><td>c</td><td>d</td></tr></table>")
	r := findRange(t, res, format.TypeTable)
	got := res.Text[r.Start:r.End]
	if !strings.Contains(got, "a\tb") || !strings.Contains(got, "c\td") {
		t.Fatalf("table covers %q", got)
	}
}

func TestExtractSkipsScripts(t *testing.T) {
	res := extract(t, "<p>keep</p><script>drop()</script><style>p{}</style>")
	if strings.Contains(res.Text, "drop") || strings.Contains(res.Text, "p{}") {
		t.Fatalf("script or style leaked into %q", res.Text)
	}
}

func TestExtractWhitespaceCollapse(t *testing.T) {
	res := extract(t, "<p>a\n\t  b   c</p>")
	if res.Text != "a b c\n" {
		t.Fatalf("unexpected text %q", res.Text)
	}
}

func TestExtractRangesValid(t *testing.T) {
	res := extract(t, `<h1>T</h1><p><b>x <i>y</i></b> <a href="u">z</a></p><ul><li>i</li></ul>`)
	for _, r := range res.Ranges {
		if !r.Valid(len(res.Text)) {
			t.Fatalf("invalid range %+v for text of %d bytes", r, len(res.Text))
		}
		if len(r.ID) == 0 {
			t.Fatalf("range without id: %+v", r)
		}
	}
}
