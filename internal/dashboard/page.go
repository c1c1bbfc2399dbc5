// Package dashboard holds the display state of the ice-conditions page and
// the renderer that writes fetched values into it.
package dashboard

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chrissnell/canalwatch/internal/constants"
	"github.com/chrissnell/canalwatch/internal/types"
)

// ErrUnknownBinding is returned when a write targets a binding the page does not have
var ErrUnknownBinding = errors.New("unknown UI binding")

// Element is the displayed state of one binding target
type Element struct {
	Text  string `json:"text"`
	Class string `json:"class,omitempty"`
}

// Notice is the transient user-visible error text
type Notice struct {
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// PageState is a point-in-time copy of the page
type PageState struct {
	Elements map[string]Element `json:"elements"`
	Notice   *Notice            `json:"notice,omitempty"`
	Revision uint64             `json:"revision"`
}

// Page is the set of binding targets the renderer writes to.  Targets are
// fixed at construction: the per-location fields of every canonical
// location plus the overall status and last-update singletons.
type Page struct {
	mu       sync.RWMutex
	elements map[string]*Element
	notice   *Notice
	revision uint64
}

// NewPage creates a page with bindings for the given canonical locations
func NewPage(locations []types.Location) *Page {
	p := &Page{elements: make(map[string]*Element)}
	for _, loc := range locations {
		for _, prefix := range []string{constants.IcePrefix, constants.TempPrefix, constants.SnowPrefix, constants.StatusPrefix} {
			p.elements[constants.BindingID(prefix, loc.Key)] = &Element{Text: "--"}
		}
	}
	p.elements[constants.OverallStatusID] = &Element{Text: "Loading..."}
	p.elements[constants.LastUpdateID] = &Element{Text: "--"}
	return p
}

// SetText replaces the text of a binding, leaving its class alone
func (p *Page) SetText(id, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	el, ok := p.elements[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownBinding, id)
	}
	el.Text = text
	p.revision++
	return nil
}

// SetBadge replaces both the text and the style class of a binding
func (p *Page) SetBadge(id, text, class string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	el, ok := p.elements[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownBinding, id)
	}
	el.Text = text
	el.Class = class
	p.revision++
	return nil
}

// Element returns the current state of one binding
func (p *Page) Element(id string) (Element, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	el, ok := p.elements[id]
	if !ok {
		return Element{}, false
	}
	return *el, true
}

// ShowNotice sets the user-visible error text
func (p *Page) ShowNotice(message string, at time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notice = &Notice{Message: message, At: at}
	p.revision++
}

// ClearNotice removes the error text, if any
func (p *Page) ClearNotice() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.notice != nil {
		p.notice = nil
		p.revision++
	}
}

// Notice returns the current error text, or nil
func (p *Page) Notice() *Notice {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.notice == nil {
		return nil
	}
	n := *p.notice
	return &n
}

// Snapshot copies the whole page
func (p *Page) Snapshot() PageState {
	p.mu.RLock()
	defer p.mu.RUnlock()

	state := PageState{
		Elements: make(map[string]Element, len(p.elements)),
		Revision: p.revision,
	}
	for id, el := range p.elements {
		state.Elements[id] = *el
	}
	if p.notice != nil {
		n := *p.notice
		state.Notice = &n
	}
	return state
}
