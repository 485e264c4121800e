// Package manuscript models an audiobook manuscript project: its text, the
// formatting and comments over it, derived chapters and attached narration
// audio.
package manuscript

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"ams/format"
)

// Project is the unit of work the studio operates on.
type Project struct {
	ID         string       `json:"id"`
	Title      string       `json:"title"`
	Author     string       `json:"author,omitempty"`
	Language   string       `json:"language,omitempty"`
	Text       string       `json:"text"`
	Formatting *format.Data `json:"formattingData"`
	Audio      []Attachment `json:"audio,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// Attachment is a narration audio file tied to a chapter.
type Attachment struct {
	Name         string `json:"name"`
	Mime         string `json:"mime"`
	ChapterIndex int    `json:"chapter_index"`
	Data         []byte `json:"data,omitempty"`
}

// New creates an empty project.
func New(title, author string) *Project {
	now := time.Now().UTC()
	return &Project{
		ID:         uuid.NewString(),
		Title:      title,
		Author:     author,
		Formatting: format.NewData(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// SetContent replaces project text and formatting in one step. Formatting is
// sanitized against the new text so stale ranges never survive a content
// swap.
func (p *Project) SetContent(text string, data *format.Data) {
	if data == nil {
		data = format.NewData()
	}
	data.Sanitize(len(text))
	p.Text = text
	p.Formatting = data
	p.UpdatedAt = time.Now().UTC()
}

// ApplyEdits shifts formatting and comments after text edits and swaps in the
// new text. The edits must describe the transition from p.Text to newText.
func (p *Project) ApplyEdits(newText string, edits []format.Edit) {
	if p.Formatting == nil {
		p.Formatting = format.NewData()
	}
	p.Formatting.ApplyEdits(edits)
	p.Formatting.Sanitize(len(newText))
	p.Text = newText
	p.UpdatedAt = time.Now().UTC()
}

// Validate checks project consistency.
func (p *Project) Validate() error {
	if len(p.ID) == 0 {
		return fmt.Errorf("project has no id")
	}
	if len(p.Title) == 0 {
		return fmt.Errorf("project %s has no title", p.ID)
	}
	if p.Formatting != nil {
		if err := p.Formatting.Validate(len(p.Text)); err != nil {
			return fmt.Errorf("project %s formatting: %w", p.ID, err)
		}
	}
	return nil
}
