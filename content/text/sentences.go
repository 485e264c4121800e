package text

import (
	"iter"
	"strings"
	"unicode"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// Splitter tokenizes manuscript text into sentences for chapter previews and
// narration cue points.
type Splitter struct {
	*sentences.DefaultSentenceTokenizer
}

// NewSplitter builds a sentence tokenizer for the given language. Only the
// English punkt model ships with the binary; for other languages sentence
// splitting is turned off and Split degrades to whole-paragraph output.
func NewSplitter(lang language.Tag, log *zap.Logger) *Splitter {
	if log == nil {
		log = zap.NewNop()
	}

	base, confidence := lang.Base()
	if confidence == language.No || base.String() != "en" {
		log.Warn("No sentence tokenizer model for language, turning off sentence splitting", zap.Stringer("language", lang))
		return nil
	}

	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		log.Warn("Unable to initialize sentence tokenizer", zap.Stringer("language", lang), zap.Error(err))
		return nil
	}
	return &Splitter{tokenizer}
}

// Split returns slice of sentences.
// For memory-efficient streaming, use Sentences iterator instead.
func (s *Splitter) Split(in string) []string {

	var result []string
	if s == nil {
		// tokenizer is off
		return append(result, in)
	}

	for _, sentence := range s.Tokenize(in) {
		result = append(result, sentence.Text)
	}

	// Sentences tokenizer has a funny way of working - sentence trailing
	// spaces belong to the next sentence. Move them back where they belong
	// so previews and narration cues do not start mid-whitespace.

	for i := range len(result) - 1 {
		for idx, sym := range result[i+1] {
			if !unicode.IsSpace(sym) {
				result[i] = result[i] + result[i+1][0:idx]
				result[i+1] = result[i+1][idx:]
				break
			}
		}
	}
	return result
}

// Sentences returns an iterator over sentences. This is more memory-efficient
// than Split for large texts; it applies the same space-trimming logic.
func (s *Splitter) Sentences(in string) iter.Seq[string] {
	return func(yield func(string) bool) {
		if s == nil {
			yield(in)
			return
		}

		toks := s.Tokenize(in)
		if len(toks) == 0 {
			return
		}

		for i := 0; i < len(toks)-1; i++ {
			text := toks[i].Text
			nextText := toks[i+1].Text
			for idx, sym := range nextText {
				if !unicode.IsSpace(sym) {
					text = text + nextText[0:idx]
					toks[i+1].Text = nextText[idx:]
					break
				}
			}
			if !yield(text) {
				return
			}
		}
		yield(toks[len(toks)-1].Text)
	}
}

// SplitWords returns slice of words.
// For memory-efficient streaming, use Words iterator instead.
func (*Splitter) SplitWords(in string, ignoreNBSP bool) []string {
	var (
		result = []string{}
		word   strings.Builder
	)
	for _, sym := range in {
		if isSeparator(sym, ignoreNBSP) {
			result = append(result, word.String())
			word.Reset()
			continue
		}
		word.WriteRune(sym)
	}
	return append(result, word.String())
}

// Words returns an iterator over words.
// The ignoreNBSP parameter determines whether NBSP (0xA0) is treated as a separator.
func (*Splitter) Words(in string, ignoreNBSP bool) iter.Seq[string] {
	return func(yield func(string) bool) {
		var word strings.Builder
		for _, sym := range in {
			if isSeparator(sym, ignoreNBSP) {
				if !yield(word.String()) {
					return
				}
				word.Reset()
				continue
			}
			word.WriteRune(sym)
		}
		yield(word.String())
	}
}

func isSeparator(r rune, ignoreNBSP bool) bool {
	if uint32(r) <= unicode.MaxLatin1 {
		switch r {
		// exclude NBSP from the list of white space separators for latin1 symbols
		case '\t', '\n', '\v', '\f', '\r', ' ', 0x85:
			return true
		case 0xA0: // NBSP
			return ignoreNBSP
		}
		return false
	}
	return unicode.IsSpace(r)
}
