// Package panel defines the contract for auxiliary views that sit beside the
// main screen, and the ordered registry the event bus dispatches through.
package panel

import (
	"errors"
	"fmt"

	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/event"
	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/state"
)

// Panel is an independent view with its own RGBA canvas.
//
// HandleEvent may only read v and mutate the panel itself. ActiveCanvas returns
// the last rendered canvas (w*h*4 bytes) without recomputing it; only a
// RequestRender addressed to the panel redraws.
type Panel interface {
	Name() string
	Size() (w, h int)
	HandleEvent(v state.View, e event.Event) []event.Event
	ActiveCanvas() []byte
}

var ErrDuplicatePanel = errors.New("panel already registered")

// Registry keeps panels in registration order; dispatch order is observable.
type Registry struct {
	panels []Panel
	byName map[string]int
}

func NewRegistry(panels ...Panel) (*Registry, error) {
	r := &Registry{byName: make(map[string]int)}
	for _, p := range panels {
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register appends p. Names must be unique.
func (r *Registry) Register(p Panel) error {
	name := p.Name()
	if _, ok := r.byName[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicatePanel, name)
	}
	r.byName[name] = len(r.panels)
	r.panels = append(r.panels, p)
	return nil
}

// Panels returns the panels in registration order.
func (r *Registry) Panels() []Panel {
	out := make([]Panel, len(r.panels))
	copy(out, r.panels)
	return out
}

func (r *Registry) Lookup(name string) (Panel, bool) {
	i, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	return r.panels[i], true
}

func (r *Registry) Len() int { return len(r.panels) }

// RenderRequested reports whether e is a RequestRender addressed to name (or to everyone).
func RenderRequested(e event.Event, name string) bool {
	rr, ok := e.(event.RequestRender)
	return ok && (rr.Panel == "" || rr.Panel == name)
}

// ClickFor returns the click if e is a MouseClick addressed to name.
func ClickFor(e event.Event, name string) (event.MouseClick, bool) {
	mc, ok := e.(event.MouseClick)
	if !ok || mc.Panel != name {
		return event.MouseClick{}, false
	}
	return mc, true
}
