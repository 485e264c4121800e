package export

import (
	"path"
	"strconv"
	"time"

	"github.com/beevik/etree"

	"ams/manuscript"
	"ams/state"
)

// buildManifest produces the bundle manifest: project metadata, the chapter
// list with previews and the audio inventory.
func buildManifest(p *manuscript.Project, chapters []manuscript.Chapter, env *state.LocalEnv) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("manuscript")
	root.CreateAttr("id", p.ID)
	root.CreateAttr("generated", time.Now().UTC().Format(time.RFC3339))

	meta := root.CreateElement("metadata")
	meta.CreateElement("title").SetText(p.Title)
	if len(p.Author) != 0 {
		meta.CreateElement("author").SetText(p.Author)
	}
	if len(p.Language) != 0 {
		meta.CreateElement("language").SetText(p.Language)
	}
	meta.CreateElement("updated").SetText(p.UpdatedAt.UTC().Format(time.RFC3339))

	if env.Cfg.Export.Cover.Generate {
		cover := root.CreateElement("cover")
		cover.CreateAttr("href", coverName)
		cover.CreateAttr("media-type", "image/jpeg")
	}

	styles := root.CreateElement("stylesheet")
	styles.CreateAttr("href", path.Join(stylesDir, stylesheetName))
	styles.CreateAttr("media-type", "text/css")

	toc := root.CreateElement("chapters")
	for _, c := range chapters {
		ch := toc.CreateElement("chapter")
		ch.CreateAttr("index", strconv.Itoa(c.Index))
		ch.CreateAttr("level", strconv.Itoa(c.Level))
		ch.CreateAttr("href", path.Join(chaptersDir, c.FileName+".xhtml"))
		ch.CreateElement("title").SetText(c.Title)
		if len(c.Preview) != 0 {
			ch.CreateElement("preview").SetText(c.Preview)
		}
		for _, a := range p.ChapterAudio(c.Index) {
			au := ch.CreateElement("audio")
			au.CreateAttr("href", path.Join(audioDir, a.Name))
			au.CreateAttr("media-type", a.Mime)
		}
	}

	unassigned := p.ChapterAudio(-1)
	if len(unassigned) != 0 {
		extra := root.CreateElement("unassigned-audio")
		for _, a := range unassigned {
			au := extra.CreateElement("audio")
			au.CreateAttr("href", path.Join(audioDir, a.Name))
			au.CreateAttr("media-type", a.Mime)
		}
	}

	doc.Indent(2)
	return doc.WriteToBytes()
}
