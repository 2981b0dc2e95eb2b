package segment

import (
	"strings"
	"testing"
	"time"
)

func TestStore_Upsert_AccumulatesDeltas(t *testing.T) {
	store := NewStore("waiting…")

	key := Key("item1", 0)
	for _, delta := range []string{"Bon", "jour"} {
		d := delta
		store.Upsert(key, func(seg *Segment) {
			seg.Text += d
		})
	}

	lines := store.Lines()
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0] != "Bonjour"+ContinuationMarker {
		t.Errorf("expected %q, got %q", "Bonjour"+ContinuationMarker, lines[0])
	}
}

func TestStore_Upsert_CompletionOverridesDeltas(t *testing.T) {
	store := NewStore("waiting…")

	key := Key("item1", 0)
	store.Upsert(key, func(seg *Segment) { seg.Text += "Hel" })
	store.Upsert(key, func(seg *Segment) { seg.Text += "lo" })
	store.Upsert(key, func(seg *Segment) {
		seg.Text = "Hello there"
		seg.Final = true
	})

	lines := store.Lines()
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0] != "Hello there" {
		t.Errorf("expected %q, got %q", "Hello there", lines[0])
	}
}

func TestStore_Upsert_FinalSegmentIsFrozen(t *testing.T) {
	store := NewStore("waiting…")

	store.Upsert("r1", func(seg *Segment) {
		seg.Text = "done"
		seg.Final = true
	})
	store.Upsert("r1", func(seg *Segment) { seg.Text += " more" })

	if got := store.Lines()[0]; got != "done" {
		t.Errorf("final segment mutated: %q", got)
	}
}

func TestStore_Lines_EmptyYieldsPlaceholder(t *testing.T) {
	store := NewStore("listening…")

	lines := store.Lines()
	if len(lines) != 1 || lines[0] != "listening…" {
		t.Fatalf("expected placeholder, got %v", lines)
	}

	store.Upsert("r1", func(seg *Segment) { seg.Text = "hello" })
	for _, line := range store.Lines() {
		if line == "listening…" {
			t.Error("placeholder rendered for non-empty store")
		}
	}
}

func TestStore_Lines_PlaceholderOnlyWhileStoreEmpty(t *testing.T) {
	store := NewStore("listening…")

	// A freshly created segment has no text yet; the store is non-empty, so
	// the placeholder must not come back.
	store.Upsert("r1", nil)
	if lines := store.Lines(); len(lines) != 0 {
		t.Fatalf("expected no lines for an empty segment, got %v", lines)
	}
	if got := store.Render(); got != "" {
		t.Errorf("expected empty render, got %q", got)
	}

	// Whitespace-only text is dropped the same way.
	store.Upsert("r1", func(seg *Segment) { seg.Text = "   " })
	if lines := store.Lines(); len(lines) != 0 {
		t.Errorf("expected no lines for a blank segment, got %v", lines)
	}
}

func TestStore_Lines_CreationOrder(t *testing.T) {
	store := NewStore("-")
	base := time.Now()
	clock := base
	store.now = func() time.Time {
		clock = clock.Add(time.Millisecond)
		return clock
	}

	store.Upsert("b", func(seg *Segment) { seg.Text = "first" })
	store.Upsert("a", func(seg *Segment) { seg.Text = "second" })
	// Touching an old segment must not move it.
	store.Upsert("b", func(seg *Segment) { seg.Text = "first updated" })

	got := strings.Join(store.Lines(), "|")
	want := "first updated" + ContinuationMarker + "|" + "second" + ContinuationMarker
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestStore_Reset(t *testing.T) {
	store := NewStore("-")
	store.Upsert("a", func(seg *Segment) { seg.Text = "x" })

	store.Reset()
	store.Reset()

	if store.Len() != 0 {
		t.Errorf("expected empty store after reset, got %d segments", store.Len())
	}
	if lines := store.Lines(); len(lines) != 1 || lines[0] != "-" {
		t.Errorf("expected placeholder after reset, got %v", lines)
	}
}

func TestKey(t *testing.T) {
	if got := Key("item_42", 1); got != "item_42:1" {
		t.Errorf("unexpected key %q", got)
	}
}
