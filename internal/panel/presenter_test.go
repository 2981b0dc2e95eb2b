package panel

import (
	"testing"

	"github.com/lexiqai/translate-client/internal/segment"
)

type fakeDisplay struct {
	text       string
	active     bool
	activeSets int
	scrolls    int
}

func (d *fakeDisplay) SetText(text string) { d.text = text }
func (d *fakeDisplay) SetActive(active bool) {
	d.active = active
	d.activeSets++
}
func (d *fakeDisplay) ScrollToEnd() { d.scrolls++ }

func TestPresenter_ShowRendersStore(t *testing.T) {
	store := segment.NewStore("waiting…")
	display := &fakeDisplay{}
	p := New(store, display)

	store.Upsert("r1", func(seg *segment.Segment) { seg.Text = "Hallo" })
	p.Show()

	if !display.active {
		t.Error("expected panel active after Show")
	}
	if display.text != "Hallo"+segment.ContinuationMarker {
		t.Errorf("unexpected rendered text %q", display.text)
	}
	if display.scrolls != 1 {
		t.Errorf("expected 1 scroll, got %d", display.scrolls)
	}
}

func TestPresenter_ShowEmptyStoreDoesNotScroll(t *testing.T) {
	display := &fakeDisplay{}
	p := New(segment.NewStore("waiting…"), display)

	p.Show()

	if display.text != "waiting…" {
		t.Errorf("expected placeholder, got %q", display.text)
	}
	if display.scrolls != 0 {
		t.Errorf("expected no scroll on placeholder, got %d", display.scrolls)
	}
}

func TestPresenter_ActivateIsIdempotent(t *testing.T) {
	display := &fakeDisplay{}
	p := New(segment.NewStore("-"), display)

	p.Activate()
	p.Activate()

	if display.activeSets != 1 {
		t.Errorf("expected a single SetActive call, got %d", display.activeSets)
	}
}

func TestPresenter_ResetRestoresPlaceholder(t *testing.T) {
	store := segment.NewStore("waiting…")
	display := &fakeDisplay{}
	p := New(store, display)

	store.Upsert("r1", func(seg *segment.Segment) { seg.Text = "text" })
	p.Show()
	p.Reset()

	if display.active {
		t.Error("expected panel inactive after Reset")
	}
	if display.text != "waiting…" {
		t.Errorf("expected placeholder after Reset, got %q", display.text)
	}
	if store.Len() != 0 {
		t.Errorf("expected empty store after Reset, got %d", store.Len())
	}

	// Reset then Activate must emit SetActive(true) again.
	p.Activate()
	if !display.active {
		t.Error("expected panel active after re-activation")
	}
}
