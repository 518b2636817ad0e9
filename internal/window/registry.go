package window

import (
	"github.com/ItsNotGoodName/x-tilewm/internal/geom"
)

// Effect is called after the registry applied a change to a window.
type Effect func(attrs Attributes)

type slot struct {
	gen   uint32
	live  bool
	attrs Attributes
}

// Registry owns window lifetime. Handles to destroyed windows stop resolving
// because the slot generation moves on.
//
// Registry is not safe for concurrent use. It belongs to the host's
// interaction thread together with the layout engine.
type Registry struct {
	slots []slot
	free  []uint32

	configureEffects []Effect
	visibleEffects   []Effect
}

func NewRegistry() *Registry {
	return &Registry{}
}

// OnConfigure registers fn to run after a geometry change is applied.
func (r *Registry) OnConfigure(fn Effect) {
	r.configureEffects = append(r.configureEffects, fn)
}

// OnVisible registers fn to run after a visibility change is applied.
func (r *Registry) OnVisible(fn Effect) {
	r.visibleEffects = append(r.visibleEffects, fn)
}

func (r *Registry) Create(spec Spec) Handle {
	var index uint32
	if n := len(r.free); n > 0 {
		index = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		index = uint32(len(r.slots))
		r.slots = append(r.slots, slot{})
	}

	s := &r.slots[index]
	s.gen++
	if s.gen == 0 {
		s.gen = 1
	}
	s.live = true

	h := Handle{index: index, gen: s.gen}
	s.attrs = Attributes{
		Handle:    h,
		Workspace: spec.Workspace,
		Mapped:    true,
		Visible:   true,
		Box:       spec.Box,
		Class:     spec.Class,
		Title:     spec.Title,
	}

	return h
}

func (r *Registry) lookup(h Handle) *slot {
	if h.IsZero() || int(h.index) >= len(r.slots) {
		return nil
	}
	s := &r.slots[h.index]
	if !s.live || s.gen != h.gen {
		return nil
	}
	return s
}

// Destroy invalidates h. It reports false for an already stale handle.
func (r *Registry) Destroy(h Handle) bool {
	s := r.lookup(h)
	if s == nil {
		return false
	}
	s.live = false
	s.attrs = Attributes{}
	r.free = append(r.free, h.index)
	return true
}

func (r *Registry) Resolve(h Handle) (Attributes, bool) {
	s := r.lookup(h)
	if s == nil {
		return Attributes{}, false
	}
	return s.attrs, true
}

// Configure applies a geometry change and confirms it.
func (r *Registry) Configure(h Handle, box geom.Box) bool {
	s := r.lookup(h)
	if s == nil {
		return false
	}
	s.attrs.Box = box
	for _, fn := range r.configureEffects {
		fn(s.attrs)
	}
	return true
}

func (r *Registry) SetVisible(h Handle, visible bool) bool {
	s := r.lookup(h)
	if s == nil {
		return false
	}
	if s.attrs.Visible == visible {
		return true
	}
	s.attrs.Visible = visible
	for _, fn := range r.visibleEffects {
		fn(s.attrs)
	}
	return true
}

// SetMapped records a client side map or unmap.
func (r *Registry) SetMapped(h Handle, mapped bool) bool {
	s := r.lookup(h)
	if s == nil {
		return false
	}
	s.attrs.Mapped = mapped
	return true
}

func (r *Registry) SetWorkspace(h Handle, workspace int) bool {
	s := r.lookup(h)
	if s == nil {
		return false
	}
	s.attrs.Workspace = workspace
	return true
}

// List returns the attributes of all live windows in slot order.
func (r *Registry) List() []Attributes {
	var list []Attributes
	for i := range r.slots {
		if r.slots[i].live {
			list = append(list, r.slots[i].attrs)
		}
	}
	return list
}

func (r *Registry) Len() int {
	return len(r.slots) - len(r.free)
}
