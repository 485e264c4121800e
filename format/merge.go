package format

import (
	"strings"

	"go.uber.org/zap"
)

// DefaultMaxLengthDelta is the default limit on the length difference between
// the primary and the secondary text beyond which per-range alignment is not
// attempted. Tuning constant without a derivation, kept configurable.
const DefaultMaxLengthDelta = 50

// Merger reconciles two independently produced range sets over the same
// logical document. The primary text is always the text of record: the
// secondary extraction contributes formatting only, never content.
type Merger struct {
	// MaxLengthDelta limits text length mismatch for alignment attempts.
	MaxLengthDelta int

	log *zap.Logger
}

// NewMerger creates a merger with default settings.
func NewMerger(log *zap.Logger) *Merger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Merger{MaxLengthDelta: DefaultMaxLengthDelta, log: log.Named("merger")}
}

// Merge combines primary (backend extracted) and secondary (rich markup
// extracted) range sets into one set consistent with primaryText.
//
// Same text - secondary ranges are adopted verbatim. Near-miss texts - each
// secondary range is realigned by exact substring search, falling back to
// proportional offset scaling. Large mismatch - secondary ranges are ignored.
// Primary ranges not already covered by an aligned range of the same type are
// appended so formatting the secondary pass missed is not lost.
func (m *Merger) Merge(primary []Range, primaryText string, secondary []Range, secondaryText string) []Range {
	var aligned []Range

	switch {
	case len(secondary) != 0 && primaryText == secondaryText:
		aligned = append(aligned, secondary...)

	case len(secondary) != 0 && absInt(len(primaryText)-len(secondaryText)) < m.MaxLengthDelta:
		aligned = m.alignRanges(secondary, primaryText, secondaryText)

	default:
		if len(secondary) != 0 {
			m.log.Debug("Secondary extraction text mismatch too large, using primary ranges only",
				zap.Int("primary_len", len(primaryText)), zap.Int("secondary_len", len(secondaryText)))
		}
	}

	// Keep primary formatting the secondary pass missed, avoiding duplicate
	// double-application: a primary range is dropped when an aligned range of
	// the same type fully contains its span.
	result := aligned
	for _, r := range primary {
		if coveredBySameType(aligned, r) {
			continue
		}
		result = append(result, r)
	}

	SortRanges(result)

	valid := result[:0]
	for _, r := range result {
		if !r.Valid(len(primaryText)) {
			m.log.Debug("Dropping invalid range after merge",
				zap.String("id", r.ID), zap.Int("start", r.Start), zap.Int("end", r.End), zap.Stringer("type", r.Type))
			continue
		}
		valid = append(valid, r)
	}
	return valid
}

// alignRanges rewrites secondary range offsets to positions in primaryText.
// Content based realignment is preferred: the two extractors rarely agree on
// exact offsets but usually agree on content. Proportional scaling is a lossy
// fallback for near-miss cases.
func (m *Merger) alignRanges(secondary []Range, primaryText, secondaryText string) []Range {
	scale := float64(len(primaryText)) / float64(len(secondaryText))

	out := make([]Range, 0, len(secondary))
	for _, r := range secondary {
		if !r.Valid(len(secondaryText)) {
			m.log.Debug("Dropping invalid secondary range", zap.String("id", r.ID), zap.Int("start", r.Start), zap.Int("end", r.End))
			continue
		}

		covered := secondaryText[r.Start:r.End]
		if idx := strings.Index(primaryText, covered); idx >= 0 {
			r.Start, r.End = idx, idx+len(covered)
			out = append(out, r)
			continue
		}

		// no exact occurrence - scale offsets proportionally
		r.Start = clampInt(int(float64(r.Start)*scale), 0, len(primaryText))
		r.End = clampInt(int(float64(r.End)*scale), 0, len(primaryText))
		if r.Start >= r.End {
			m.log.Debug("Alignment failed, dropping range", zap.String("id", r.ID), zap.Stringer("type", r.Type))
			continue
		}
		out = append(out, r)
	}
	return out
}

func coveredBySameType(ranges []Range, r Range) bool {
	for _, a := range ranges {
		if a.Type == r.Type && a.Covers(r.Start, r.End) {
			return true
		}
	}
	return false
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
