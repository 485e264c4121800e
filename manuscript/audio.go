package manuscript

import (
	"fmt"
	"sort"
	"strings"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
	"github.com/maruel/natural"
)

// AttachAudio adds a narration file to the project. Content must be a known
// audio container; the chapter index of -1 leaves the attachment unassigned.
func (p *Project) AttachAudio(name string, chapterIndex int, data []byte) error {
	kind, err := filetype.Match(data)
	if err != nil {
		return fmt.Errorf("unable to detect type of %s: %w", name, err)
	}
	if kind == filetype.Unknown || !isAudio(kind.MIME.Value) {
		return fmt.Errorf("%s is not a recognized audio file (detected %q)", name, kind.MIME.Value)
	}
	for _, a := range p.Audio {
		if a.Name == name {
			return fmt.Errorf("audio %s is already attached", name)
		}
	}
	p.Audio = append(p.Audio, Attachment{
		Name:         name,
		Mime:         kind.MIME.Value,
		ChapterIndex: chapterIndex,
		Data:         data,
	})
	return nil
}

// AssignAudioToChapters maps unassigned attachments to chapters in natural
// name order, so "track2.mp3" lands before "track10.mp3". Extra attachments
// past the chapter count stay unassigned.
func (p *Project) AssignAudioToChapters(chapters []Chapter) {
	var idx []int
	for i, a := range p.Audio {
		if a.ChapterIndex < 0 {
			idx = append(idx, i)
		}
	}
	sort.Slice(idx, func(a, b int) bool {
		return natural.Less(p.Audio[idx[a]].Name, p.Audio[idx[b]].Name)
	})
	for n, i := range idx {
		if n >= len(chapters) {
			break
		}
		p.Audio[i].ChapterIndex = chapters[n].Index
	}
}

// ChapterAudio returns attachments assigned to the given chapter in natural
// name order.
func (p *Project) ChapterAudio(chapterIndex int) []Attachment {
	var out []Attachment
	for _, a := range p.Audio {
		if a.ChapterIndex == chapterIndex {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(a, b int) bool {
		return natural.Less(out[a].Name, out[b].Name)
	})
	return out
}

func isAudio(mime string) bool {
	if strings.HasPrefix(mime, "audio/") {
		return true
	}
	// m4b audiobooks match the mp4 video container
	return mime == matchers.TypeMp4.MIME.Value
}
