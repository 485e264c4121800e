package export

import (
	"bytes"
	"fmt"
	"path"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"ams/format"
	"ams/manuscript"
	"ams/render"
	"ams/state"
)

// chapterXHTML renders one chapter to a standalone XHTML document, applying
// project formatting through the same renderer the editor uses.
func chapterXHTML(p *manuscript.Project, c manuscript.Chapter, env *state.LocalEnv, log *zap.Logger) ([]byte, error) {
	text, data := sliceFormatting(p, c)

	container := render.Element("div")
	render.SetAttr(container, "class", "manuscript")
	r := render.NewRenderer(text, data, log)
	r.ChunkSize = env.Cfg.Render.ChunkSize
	r.ContextWindow = env.Cfg.Render.ContextWindow
	r.Render(container, nil)

	var body bytes.Buffer
	if err := html.Render(&body, container); err != nil {
		return nil, fmt.Errorf("unable to serialize chapter markup: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="utf-8"?>` + "\n")
	buf.WriteString(`<!DOCTYPE html>` + "\n")
	buf.WriteString(`<html xmlns="http://www.w3.org/1999/xhtml">` + "\n<head>\n")
	fmt.Fprintf(&buf, "<title>%s</title>\n", html.EscapeString(c.Title))
	fmt.Fprintf(&buf, `<link rel="stylesheet" type="text/css" href="%s"/>`+"\n",
		path.Join("..", stylesDir, stylesheetName))
	buf.WriteString("</head>\n<body>\n")
	buf.Write(body.Bytes())
	buf.WriteString("\n</body>\n</html>\n")
	return buf.Bytes(), nil
}

// sliceFormatting clips project formatting to the chapter span and rebases
// offsets so they address the chapter text.
func sliceFormatting(p *manuscript.Project, c manuscript.Chapter) (string, *format.Data) {
	text := p.Text[c.Start:c.End]
	data := format.NewData()
	if p.Formatting == nil {
		return text, data
	}
	for _, r := range p.Formatting.Ranges {
		start := max(r.Start, c.Start)
		end := min(r.End, c.End)
		if start >= end {
			continue
		}
		nr := r
		nr.Start = start - c.Start
		nr.End = end - c.Start
		data.Ranges = append(data.Ranges, nr)
	}
	for _, cm := range p.Formatting.Comments {
		if cm.Position < c.Start || cm.Position > c.End {
			continue
		}
		nc := cm
		nc.Position = cm.Position - c.Start
		data.Comments = append(data.Comments, nc)
	}
	return text, data
}
