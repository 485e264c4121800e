package css

import (
	"os"
	"path/filepath"
	"testing"

	"ams/format"
)

func TestClassFor(t *testing.T) {
	cases := []struct {
		typ  format.Type
		want string
	}{
		{format.TypeBold, "fmt-bold"},
		{format.TypeListItem, "fmt-list-item"},
		{format.TypeHeading2, "fmt-heading2"},
	}
	for _, c := range cases {
		if got := ClassFor(c.typ); got != c.want {
			t.Errorf("ClassFor(%s) = %q, want %q", c.typ, got, c.want)
		}
	}
}

func TestLoad(t *testing.T) {
	th, err := Load("", nil)
	if err != nil {
		t.Fatalf("load default: %v", err)
	}
	if !th.Has(ClassFor(format.TypeBold)) {
		t.Fatal("empty path must yield the built-in theme")
	}

	fname := filepath.Join(t.TempDir(), "theme.css")
	if err := os.WriteFile(fname, []byte(".fmt-bold { font-weight: 600; }"), 0644); err != nil {
		t.Fatal(err)
	}
	th, err = Load(fname, nil)
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	if got := th.Declarations("fmt-bold"); len(got) != 1 || got[0].Value != "600" {
		t.Fatalf("unexpected declarations %+v", got)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.css"), nil); err == nil {
		t.Fatal("expected error for missing theme file")
	}
}

func TestParseClassRules(t *testing.T) {
	sheet := []byte(`
.fmt-bold { font-weight: bold; }
.fmt-quote, .fmt-italic { font-style: italic; color: #333; }
@media print { .fmt-bold { color: black; } }
`)
	th, err := Parse(sheet, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	decls := th.Declarations("fmt-bold")
	if len(decls) == 0 {
		t.Fatalf("fmt-bold not parsed")
	}
	if decls[0].Property != "font-weight" || decls[0].Value != "bold" {
		t.Fatalf("unexpected declaration %+v", decls[0])
	}
	for _, class := range []string{"fmt-quote", "fmt-italic"} {
		if got := th.Declarations(class); len(got) != 2 {
			t.Fatalf("%s: expected 2 declarations, got %+v", class, got)
		}
	}
	if !th.Has("fmt-italic") || th.Has("fmt-strike") {
		t.Fatalf("class coverage wrong")
	}
}

func TestParseKeepsRaw(t *testing.T) {
	sheet := []byte(".x { color: red; }")
	th, err := Parse(sheet, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if string(th.Stylesheet()) != string(sheet) {
		t.Fatalf("raw stylesheet not preserved")
	}
}

func TestDefaultThemeCoversFormattingClasses(t *testing.T) {
	th := Default(nil)
	for ft := format.TypeBold; ft <= format.TypeTable; ft++ {
		if class := ClassFor(ft); !th.Has(class) {
			t.Errorf("default theme does not style %s", class)
		}
	}
	if !th.Has("section-highlight") || !th.Has("comment-marker") {
		t.Errorf("default theme missing editor classes")
	}
}
