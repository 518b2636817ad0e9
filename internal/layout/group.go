package layout

import (
	"slices"
	"strings"

	"github.com/ItsNotGoodName/x-tilewm/internal/window"
)

// Group is a set of windows sharing one tile. Only the active member is in
// the layout and visible.
type Group struct {
	members []window.Handle
	active  int
}

func (g *Group) Members() []window.Handle {
	return slices.Clone(g.members)
}

func (g *Group) Active() window.Handle {
	return g.members[g.active]
}

// Group returns the group h belongs to.
func (e *Engine) Group(h window.Handle) (*Group, bool) {
	n, ok := e.nodes[h]
	if !ok || n.group == nil {
		return nil, false
	}
	return n.group, true
}

func (e *Engine) groupActive(n *Node) bool {
	return n.group == nil || n.group.Active() == n.Window
}

func joinHandles(hs []window.Handle) string {
	s := make([]string, len(hs))
	for i, h := range hs {
		s[i] = h.String()
	}
	return strings.Join(s, ",")
}

// ToggleGroup turns the tile of h into a group, or dissolves the group of h
// and tiles every member again.
func (e *Engine) ToggleGroup(h window.Handle) bool {
	n, ok := e.nodes[h]
	if !ok {
		return false
	}
	if _, ok := e.windows.Resolve(h); !ok {
		return false
	}

	if g := n.group; g != nil {
		active := g.Active()
		for _, m := range g.members {
			e.nodes[m].group = nil
		}
		prev := active
		for _, m := range g.members {
			if m == active {
				continue
			}
			e.windows.SetVisible(m, true)
			e.reinsert(m, prev, DirectionDefault)
			prev = m
		}
		e.post("togglegroup", "0,%s", joinHandles(g.members))
		return true
	}

	if _, ok := e.tiled(h); !ok {
		return false
	}
	n.group = &Group{members: []window.Handle{h}}
	e.post("togglegroup", "1,%s", h)
	return true
}

// MoveIntoGroup moves the tile h into the group of its neighbor in dir and
// makes it the active member.
func (e *Engine) MoveIntoGroup(h window.Handle, dir Direction) bool {
	n, ok := e.tiled(h)
	if !ok || n.group != nil || n.Fullscreen != FullscreenNone {
		return false
	}
	target, ok := e.Neighbor(h, dir)
	if !ok {
		return false
	}
	g := e.nodes[target].group
	if g == nil {
		return false
	}

	e.strategy.OnWindowRemovedTiling(h)
	g.members = append(g.members, h)
	n.group = g
	e.setGroupActive(g, h)
	return true
}

// MoveOutOfGroup takes h out of its group and tiles it next to the group.
func (e *Engine) MoveOutOfGroup(h window.Handle) bool {
	n, ok := e.nodes[h]
	if !ok || n.group == nil {
		return false
	}
	g := n.group
	if len(g.members) == 1 {
		n.group = nil
		return true
	}

	focused := e.focused == h
	if n.Fullscreen != FullscreenNone {
		e.SetFullscreen(h, FullscreenNone, false)
	}
	e.detachFromGroup(n)
	e.windows.SetVisible(h, true)
	e.reinsert(h, g.Active(), DirectionDefault)
	if focused {
		e.OnWindowFocusChange(h)
	}
	return true
}

// ChangeGroupActive cycles the active member of the group of h.
func (e *Engine) ChangeGroupActive(h window.Handle, forward bool) bool {
	n, ok := e.nodes[h]
	if !ok || n.group == nil || len(n.group.members) < 2 {
		return false
	}
	g := n.group
	next := g.active + 1
	if !forward {
		next = g.active - 1 + len(g.members)
	}
	e.setGroupActive(g, g.members[next%len(g.members)])
	return true
}

// setGroupActive hands the group's tile to target.
func (e *Engine) setGroupActive(g *Group, target window.Handle) {
	old := g.Active()
	idx := slices.Index(g.members, target)
	if old == target || idx == -1 {
		return
	}

	oldNode := e.nodes[old]
	if oldNode.Fullscreen != FullscreenNone {
		e.SetFullscreen(old, FullscreenNone, false)
	}

	if e.strategy.IsWindowTiled(old) {
		e.strategy.ReplaceWindowDataWith(old, target)
	}
	e.windows.SetVisible(old, false)
	e.windows.SetVisible(target, true)
	g.active = idx
	e.strategy.RecalculateWindow(target)

	if e.lastTiled[oldNode.Workspace] == old {
		e.lastTiled[oldNode.Workspace] = target
	}
	if e.focused == old {
		e.OnWindowFocusChange(target)
	}
}

// detachFromGroup removes n from its group. When n was the active member its
// tile goes to the next member, so n leaves the layout unless it was alone.
func (e *Engine) detachFromGroup(n *Node) {
	g := n.group
	idx := slices.Index(g.members, n.Window)
	wasActive := g.active == idx

	if wasActive && len(g.members) > 1 {
		next := g.members[(idx+1)%len(g.members)]
		if e.strategy.IsWindowTiled(n.Window) {
			e.strategy.ReplaceWindowDataWith(n.Window, next)
		}
		e.windows.SetVisible(next, true)
	}

	g.members = slices.Delete(g.members, idx, idx+1)
	n.group = nil
	switch {
	case len(g.members) == 0:
		return
	case wasActive && idx >= len(g.members):
		g.active = 0
	case wasActive:
		g.active = idx
	case idx < g.active:
		g.active--
	}

	if wasActive {
		e.strategy.RecalculateWindow(g.Active())
		for ws, h := range e.lastTiled {
			if h == n.Window {
				e.lastTiled[ws] = g.Active()
			}
		}
	}
}

// GroupRenderHints are the border hints of a grouped window.
func (e *Engine) GroupRenderHints(h window.Handle) RenderHints {
	n, ok := e.nodes[h]
	if !ok || n.group == nil {
		return RenderHints{}
	}
	gradient := e.cfg.GroupInactiveBorder
	if e.focused == h {
		gradient = e.cfg.GroupActiveBorder
	}
	return RenderHints{IsBorderGradient: true, BorderGradient: gradient}
}

func (e *Engine) groupMessage(header MessageHeader, command string) Reply {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ReplyUnhandled{}
	}

	var ok bool
	switch fields[0] {
	case "togglegroup":
		ok = e.ToggleGroup(header.Window)
	case "changegroupactive":
		forward := len(fields) < 2 || fields[1] != "b"
		ok = e.ChangeGroupActive(header.Window, forward)
	case "moveintogroup":
		if len(fields) < 2 {
			return ReplyInvalid{Reason: "missing direction"}
		}
		dir, err := ParseDirection(fields[1])
		if err != nil {
			return ReplyInvalid{Reason: err.Error()}
		}
		ok = e.MoveIntoGroup(header.Window, dir)
	case "moveoutofgroup":
		ok = e.MoveOutOfGroup(header.Window)
	default:
		return ReplyUnhandled{}
	}

	if !ok {
		return ReplyInvalid{Reason: fields[0] + " not applicable"}
	}
	return ReplyOK{}
}
