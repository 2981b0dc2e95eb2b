// Package panel renders a segment store into a display region.
package panel

import (
	"github.com/lexiqai/translate-client/internal/segment"
)

// Display is the UI boundary a presenter draws into. Implementations must be
// cheap and non-blocking; ScrollToEnd in particular is a hint that may be
// deferred to the next repaint.
type Display interface {
	SetText(text string)
	SetActive(active bool)
	ScrollToEnd()
}

// Presenter couples one segment store with one display region.
type Presenter struct {
	store   *segment.Store
	display Display
	active  bool
}

func New(store *segment.Store, display Display) *Presenter {
	return &Presenter{store: store, display: display}
}

// Store exposes the underlying segment store for the event router.
func (p *Presenter) Store() *segment.Store {
	return p.store
}

// Activate marks the panel visibly live. Styling only, not logic-critical.
func (p *Presenter) Activate() {
	if !p.active {
		p.active = true
		p.display.SetActive(true)
	}
}

// Reset clears the store, restores the placeholder and deactivates the panel.
func (p *Presenter) Reset() {
	p.store.Reset()
	p.active = false
	p.display.SetActive(false)
	p.display.SetText(p.store.Render())
}

// Show activates the panel and renders the store. The only path that must
// run after a store mutation that should become visible.
func (p *Presenter) Show() {
	p.Activate()
	p.display.SetText(p.store.Render())
	if p.store.Len() > 0 {
		p.display.ScrollToEnd()
	}
}
