package manuscript

import (
	"fmt"
	"strings"

	"github.com/gosimple/slug"

	"ams/content/text"
	"ams/format"
)

// Chapter is a contiguous slice of manuscript text anchored at a heading
// range. Chapters never overlap and together cover the whole text.
type Chapter struct {
	Index    int    `json:"index"`
	Title    string `json:"title"`
	Level    int    `json:"level"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	FileName string `json:"file_name"`
	Preview  string `json:"preview,omitempty"`
}

const frontMatterTitle = "Front Matter"

// previewLimit caps chapter preview length in bytes.
const previewLimit = 200

// Chapters derives the chapter list from heading ranges. Text before the
// first heading becomes a front matter chapter. The optional splitter
// produces a first-sentence preview for each chapter body.
func (p *Project) Chapters(splitter *text.Splitter) []Chapter {
	if len(p.Text) == 0 {
		return nil
	}

	var heads []format.Range
	if p.Formatting != nil {
		for _, r := range p.Formatting.Ranges {
			if r.Type.Heading() && r.Valid(len(p.Text)) {
				heads = append(heads, r)
			}
		}
	}
	format.SortRanges(heads)

	var out []Chapter
	if len(heads) == 0 || heads[0].Start > 0 {
		end := len(p.Text)
		if len(heads) != 0 {
			end = heads[0].Start
		}
		out = append(out, Chapter{Title: frontMatterTitle, Start: 0, End: end})
	}

	for i, h := range heads {
		end := len(p.Text)
		if i+1 < len(heads) {
			end = heads[i+1].Start
		}
		title := strings.TrimSpace(p.Text[h.Start:h.End])
		if len(title) == 0 {
			title = fmt.Sprintf("Chapter %d", i+1)
		}
		out = append(out, Chapter{
			Title: title,
			Level: h.Type.HeadingLevel(),
			Start: h.Start,
			End:   end,
		})
	}

	seen := make(map[string]int)
	for i := range out {
		out[i].Index = i
		out[i].FileName = chapterFileName(out[i].Title, i, seen)
		if splitter != nil {
			out[i].Preview = preview(splitter, p.Text[bodyStart(out[i], heads):out[i].End])
		}
	}
	return out
}

// bodyStart skips the heading text itself so previews come from chapter body.
func bodyStart(c Chapter, heads []format.Range) int {
	for _, h := range heads {
		if h.Start == c.Start && c.Level != 0 {
			if h.End < c.End {
				return h.End
			}
			return c.End
		}
	}
	return c.Start
}

func chapterFileName(title string, index int, seen map[string]int) string {
	name := slug.Make(title)
	if len(name) == 0 {
		name = fmt.Sprintf("chapter-%d", index)
	}
	if n, dup := seen[name]; dup {
		seen[name] = n + 1
		name = fmt.Sprintf("%s-%d", name, n+1)
	} else {
		seen[name] = 1
	}
	return name
}

func preview(splitter *text.Splitter, body string) string {
	body = strings.TrimSpace(body)
	if len(body) == 0 {
		return ""
	}
	for sentence := range splitter.Sentences(body) {
		s := strings.TrimSpace(sentence)
		if len(s) == 0 {
			continue
		}
		for i := range s {
			if i > previewLimit {
				// cut on a rune boundary
				return s[:i]
			}
		}
		return s
	}
	return ""
}
