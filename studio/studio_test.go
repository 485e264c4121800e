package studio

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"ams/config"
	"ams/css"
	"ams/format"
	"ams/render"
	"ams/state"
	"ams/store"
)

func setupTestEnv(t *testing.T) (context.Context, *state.LocalEnv) {
	t.Helper()

	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg.Project.StorePath = filepath.Join(t.TempDir(), "projects.db")

	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)
	env.Log = zaptest.NewLogger(t)
	env.Cfg = cfg
	return ctx, env
}

func openTestStore(t *testing.T, env *state.LocalEnv) *store.Store {
	t.Helper()
	st, err := openStore(env)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestImporterDirectory(t *testing.T) {
	ctx, env := setupTestEnv(t)
	st := openTestStore(t, env)

	srcDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(srcDir, "plain.txt"), []byte("First line.\r\nSecond line.\r\n"), 0644); err != nil {
		t.Fatalf("create text file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(srcDir, "rich.html"),
		[]byte("<html><body><p>Hello <b>bold</b> world.</p></body></html>"), 0644); err != nil {
		t.Fatalf("create html file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(srcDir, "skip.bin"), []byte{0x00}, 0644); err != nil {
		t.Fatalf("create binary file: %v", err)
	}

	imp := &importer{st: st}
	if err := imp.processDir(ctx, srcDir, env.Log); err != nil {
		t.Fatalf("processDir failed: %v", err)
	}
	if imp.count != 2 {
		t.Errorf("imported %d projects, want 2", imp.count)
	}

	summaries, err := st.List()
	if err != nil {
		t.Fatalf("list projects: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("store has %d projects, want 2", len(summaries))
	}

	for _, s := range summaries {
		p, err := st.Load(s.ID)
		if err != nil {
			t.Fatalf("load %s: %v", s.ID, err)
		}
		switch s.Title {
		case "plain":
			if strings.Contains(p.Text, "\r") {
				t.Error("text project keeps carriage returns")
			}
			if len(p.Formatting.Ranges) != 0 {
				t.Errorf("text project has %d ranges, want 0", len(p.Formatting.Ranges))
			}
		case "rich":
			if !strings.Contains(p.Text, "Hello bold world.") {
				t.Errorf("unexpected extracted text %q", p.Text)
			}
			if len(p.Formatting.Ranges) == 0 {
				t.Error("html project has no formatting ranges")
			}
		default:
			t.Errorf("unexpected project title %q", s.Title)
		}
	}
}

func TestImporterArchive(t *testing.T) {
	ctx, env := setupTestEnv(t)
	st := openTestStore(t, env)

	zipPath := filepath.Join(t.TempDir(), "docs.zip")
	zipFile, err := os.Create(zipPath)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	w := zip.NewWriter(zipFile)
	f, err := w.Create("chapter.html")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	f.Write([]byte("<html><body><h1>Title</h1><p>Body text.</p></body></html>"))
	f2, err := w.Create("notes.bin")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	f2.Write([]byte{0x00, 0x01})
	w.Close()
	zipFile.Close()

	imp := &importer{st: st}
	if err := imp.processArchive(ctx, zipPath, env.Log); err != nil {
		t.Fatalf("processArchive failed: %v", err)
	}
	if imp.count != 1 {
		t.Errorf("imported %d projects, want 1", imp.count)
	}

	summaries, err := st.List()
	if err != nil {
		t.Fatalf("list projects: %v", err)
	}
	if len(summaries) != 1 || summaries[0].Title != "chapter" {
		t.Fatalf("unexpected projects: %+v", summaries)
	}
}

func TestImporterMergeInto(t *testing.T) {
	ctx, env := setupTestEnv(t)
	st := openTestStore(t, env)

	// seed a project with plain text and no formatting
	imp := &importer{st: st, title: "Target"}
	r := strings.NewReader("Hello bold world.\n")
	if err := imp.processDocument(ctx, r, "target.txt", docText, env.Log); err != nil {
		t.Fatalf("seed import failed: %v", err)
	}

	summaries, err := st.List()
	if err != nil || len(summaries) != 1 {
		t.Fatalf("unexpected store state: %v %+v", err, summaries)
	}
	id := summaries[0].ID

	// merging an HTML rendition of the same content adopts its formatting
	merge := &importer{st: st, into: id}
	hr := strings.NewReader("<html><body><p>Hello <b>bold</b> world.</p></body></html>")
	if err := merge.processDocument(ctx, hr, "target.html", docHTML, env.Log); err != nil {
		t.Fatalf("merge import failed: %v", err)
	}

	p, err := st.Load(id)
	if err != nil {
		t.Fatalf("load merged project: %v", err)
	}
	if p.Text != "Hello bold world.\n" {
		t.Errorf("merge changed project text to %q", p.Text)
	}
	if len(p.Formatting.Ranges) == 0 {
		t.Fatal("no formatting ranges after merge")
	}
	found := false
	for _, r := range p.Formatting.Ranges {
		if !r.Valid(len(p.Text)) {
			t.Errorf("invalid range after merge: %+v", r)
		}
		if r.Type == format.TypeBold && p.Text[r.Start:r.End] == "bold" {
			found = true
		}
	}
	if !found {
		t.Error("bold range was not adopted onto target text")
	}
}

func TestImporterPanicRecovery(t *testing.T) {
	ctx, env := setupTestEnv(t)
	st := openTestStore(t, env)

	imp := &importer{st: st}
	err := imp.processDocument(ctx, failingReader{}, "bad.txt", docText, env.Log)
	if err == nil {
		t.Error("expected error from failing reader")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { panic("reader exploded") }

func TestResolveProject(t *testing.T) {
	ctx, env := setupTestEnv(t)
	st := openTestStore(t, env)

	imp := &importer{st: st, title: "My Novel"}
	if err := imp.processDocument(ctx, strings.NewReader("text\n"), "novel.txt", docText, env.Log); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	summaries, _ := st.List()
	id := summaries[0].ID

	if p, err := resolveProject(st, id, env.Log); err != nil || p.ID != id {
		t.Errorf("resolve by id failed: %v", err)
	}
	if p, err := resolveProject(st, "my novel", env.Log); err != nil || p.ID != id {
		t.Errorf("resolve by title failed: %v", err)
	}
	if _, err := resolveProject(st, "no such project", env.Log); err == nil {
		t.Error("expected error for missing project")
	}

	// second project with the same title makes title lookup ambiguous
	imp2 := &importer{st: st, title: "My Novel"}
	if err := imp2.processDocument(ctx, strings.NewReader("other\n"), "novel2.txt", docText, env.Log); err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if _, err := resolveProject(st, "My Novel", env.Log); err == nil {
		t.Error("expected error for ambiguous title")
	}
}

func TestWriteDocument(t *testing.T) {
	_, env := setupTestEnv(t)

	data := format.NewData()
	data.Ranges = append(data.Ranges, format.NewRange(0, 5, format.TypeBold))

	container := render.Element("div")
	render.SetAttr(container, "class", "manuscript")
	render.NewRenderer("Hello world\n", data, env.Log).Render(container, nil)

	var buf bytes.Buffer
	if err := writeDocument(&buf, "My <Title>", css.Default(env.Log), container); err != nil {
		t.Fatalf("writeDocument failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"<!DOCTYPE html>", "&lt;Title&gt;", "fmt-bold", "class=\"manuscript\"", "<style>"} {
		if !strings.Contains(out, want) {
			t.Errorf("document misses %q", want)
		}
	}
}
