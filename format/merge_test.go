package format

import (
	"reflect"
	"strings"
	"testing"
)

func TestMergeAdoptsSecondaryOnIdenticalText(t *testing.T) {
	text := "The quick brown fox"
	primary := []Range{{ID: "p1", Start: 0, End: 3, Type: TypeBold}}
	secondary := []Range{
		{ID: "s1", Start: 0, End: 3, Type: TypeBold},
		{ID: "s2", Start: 4, End: 9, Type: TypeItalic},
	}

	got := NewMerger(nil).Merge(primary, text, secondary, text)

	if len(got) != 2 {
		t.Fatalf("expected 2 ranges, got %d: %v", len(got), got)
	}
	for i, want := range []string{"s1", "s2"} {
		if got[i].ID != want {
			t.Fatalf("range %d: expected id %s, got %s", i, want, got[i].ID)
		}
	}
}

func TestMergeIdempotence(t *testing.T) {
	text := "Some manuscript text with formatting"
	set := []Range{
		{ID: "a", Start: 0, End: 4, Type: TypeBold},
		{ID: "b", Start: 5, End: 15, Type: TypeItalic},
	}

	got := NewMerger(nil).Merge(set, text, set, text)

	if !reflect.DeepEqual(got, set) {
		t.Fatalf("merging a set with itself changed it:\n got %v\nwant %v", got, set)
	}
}

func TestMergeAlignmentBySubstring(t *testing.T) {
	// extractors disagree about whitespace: primary has an extra space, so
	// content based search must relocate the range
	primaryText := "Hello  world"
	secondaryText := "Hello world"
	secondary := []Range{{ID: "s", Start: 6, End: 11, Type: TypeBold}}

	got := NewMerger(nil).Merge(nil, primaryText, secondary, secondaryText)

	if len(got) != 1 {
		t.Fatalf("expected 1 range, got %v", got)
	}
	if got[0].Start != 7 || got[0].End != 12 {
		t.Fatalf("expected realigned span [7, 12), got [%d, %d)", got[0].Start, got[0].End)
	}
	if primaryText[got[0].Start:got[0].End] != "world" {
		t.Fatalf("realigned range covers %q", primaryText[got[0].Start:got[0].End])
	}
}

func TestMergeProportionalFallback(t *testing.T) {
	primaryText := strings.Repeat("a", 100)
	secondaryText := strings.Repeat("b", 80)
	secondary := []Range{{ID: "s", Start: 8, End: 16, Type: TypeBold}}

	got := NewMerger(nil).Merge(nil, primaryText, secondary, secondaryText)

	if len(got) != 1 {
		t.Fatalf("expected 1 range, got %v", got)
	}
	// scale is 100/80 = 1.25
	if got[0].Start != 10 || got[0].End != 20 {
		t.Fatalf("expected scaled span [10, 20), got [%d, %d)", got[0].Start, got[0].End)
	}
}

func TestMergeProportionalFallbackDropsCollapsed(t *testing.T) {
	primaryText := strings.Repeat("a", 10)
	secondaryText := strings.Repeat("b", 50)
	// delta is 40 < 50, no substring match, scale 0.2 collapses [2, 6) to [0, 1)
	// which survives, but [2, 3) collapses to [0, 0) and is dropped
	secondary := []Range{{ID: "s", Start: 2, End: 3, Type: TypeBold}}

	got := NewMerger(nil).Merge(nil, primaryText, secondary, secondaryText)

	if len(got) != 0 {
		t.Fatalf("expected collapsed range to be dropped, got %v", got)
	}
}

func TestMergeLargeMismatchUsesPrimaryOnly(t *testing.T) {
	primaryText := strings.Repeat("a", 200)
	secondaryText := strings.Repeat("b", 80)
	primary := []Range{{ID: "p", Start: 0, End: 10, Type: TypeBold}}
	secondary := []Range{{ID: "s", Start: 0, End: 10, Type: TypeItalic}}

	got := NewMerger(nil).Merge(primary, primaryText, secondary, secondaryText)

	if len(got) != 1 || got[0].ID != "p" {
		t.Fatalf("expected primary ranges only, got %v", got)
	}
}

func TestMergeKeepsUncoveredPrimary(t *testing.T) {
	text := "The quick brown fox jumps"
	primary := []Range{
		{ID: "p1", Start: 4, End: 9, Type: TypeBold},    // covered by s1, same type
		{ID: "p2", Start: 10, End: 15, Type: TypeBold},  // not covered
		{ID: "p3", Start: 4, End: 9, Type: TypeItalic},  // covered span, different type
	}
	secondary := []Range{{ID: "s1", Start: 0, End: 9, Type: TypeBold}}

	got := NewMerger(nil).Merge(primary, text, secondary, text)

	ids := make([]string, len(got))
	for i, r := range got {
		ids[i] = r.ID
	}
	want := []string{"s1", "p3", "p2"}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
}

func TestMergeDropsInvalidRanges(t *testing.T) {
	text := "short"
	primary := []Range{
		{ID: "bad1", Start: 3, End: 3, Type: TypeBold},
		{ID: "bad2", Start: 2, End: 100, Type: TypeBold},
		{ID: "good", Start: 0, End: 5, Type: TypeItalic},
	}

	got := NewMerger(nil).Merge(primary, text, nil, "")

	if len(got) != 1 || got[0].ID != "good" {
		t.Fatalf("expected invalid ranges dropped, got %v", got)
	}
}

func TestMergeConfigurableThreshold(t *testing.T) {
	primaryText := strings.Repeat("a", 100)
	secondaryText := strings.Repeat("b", 80)
	secondary := []Range{{ID: "s", Start: 0, End: 8, Type: TypeBold}}

	m := NewMerger(nil)
	m.MaxLengthDelta = 10

	got := m.Merge(nil, primaryText, secondary, secondaryText)
	if len(got) != 0 {
		t.Fatalf("expected no ranges with tightened threshold, got %v", got)
	}
}
