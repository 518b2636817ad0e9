package layout

import (
	"github.com/ItsNotGoodName/x-tilewm/internal/geom"
	"github.com/ItsNotGoodName/x-tilewm/internal/window"
)

// Drag is a pointer drag session. The zero value is idle.
type Drag struct {
	active   bool
	mode     DragMode
	window   window.Handle
	corner   Corner
	begin    geom.Vector2D
	last     geom.Vector2D
	beginBox geom.Box
}

func (d Drag) Active() bool { return d.active }
func (d Drag) Mode() DragMode { return d.mode }
func (d Drag) Window() window.Handle { return d.window }
func (d Drag) Corner() Corner { return d.corner }
func (d Drag) Begin() geom.Vector2D { return d.begin }
func (d Drag) BeginBox() geom.Box { return d.beginBox }
func (d Drag) LastCursor() geom.Vector2D { return d.last }

func (d *Drag) reset() {
	*d = Drag{}
}

func (e *Engine) Drag() Drag {
	return e.drag
}

// cornerFor is the corner of box in the quadrant that holds p.
func cornerFor(box geom.Box, p geom.Vector2D) Corner {
	mid := box.Middle()
	left, top := p.X < mid.X, p.Y < mid.Y
	switch {
	case top && left:
		return CornerTopLeft
	case top:
		return CornerTopRight
	case left:
		return CornerBottomLeft
	default:
		return CornerBottomRight
	}
}

// OnBeginDragWindow grabs the focused window. It reports false and stays
// idle when nothing draggable is focused.
func (e *Engine) OnBeginDragWindow(mode DragMode, cursor geom.Vector2D) bool {
	e.drag.reset()

	h := e.focused
	attrs, ok := e.draggable(h)
	if !ok {
		return false
	}

	corner := CornerNone
	if mode == DragResize {
		corner = cornerFor(attrs.Box, cursor)
	}
	e.drag = Drag{
		active:   true,
		mode:     mode,
		window:   h,
		corner:   corner,
		begin:    cursor,
		last:     cursor,
		beginBox: attrs.Box,
	}
	return true
}

func (e *Engine) draggable(h window.Handle) (window.Attributes, bool) {
	n, ok := e.nodes[h]
	if !ok || n.Fullscreen != FullscreenNone || !e.IsWindowReachable(h) {
		return window.Attributes{}, false
	}
	return e.windows.Resolve(h)
}

// OnMouseMove applies the cursor movement since the previous call to the
// grabbed window. A grabbed window that went away ends the session.
func (e *Engine) OnMouseMove(cursor geom.Vector2D) {
	if !e.drag.active {
		return
	}
	if _, ok := e.draggable(e.drag.window); !ok {
		e.drag.reset()
		return
	}

	delta := cursor.Sub(e.drag.last)
	e.drag.last = cursor
	if delta.IsZero() {
		return
	}

	switch e.drag.mode {
	case DragMove:
		e.MoveActiveWindow(delta, e.drag.window)
	case DragResize:
		e.ResizeActiveWindow(delta, e.drag.corner, e.drag.window)
	}
}

// OnEndDragWindow ends the session. A tiled window dropped onto another tile
// is re-tiled on the side of that tile nearest the cursor, otherwise it snaps
// back into place.
func (e *Engine) OnEndDragWindow() {
	if !e.drag.active {
		return
	}
	d := e.drag
	e.drag.reset()

	if _, ok := e.draggable(d.window); !ok {
		return
	}
	if d.mode != DragMove {
		return
	}
	n, ok := e.tiled(d.window)
	if !ok {
		return
	}

	target, ok := e.tileAt(n.Workspace, d.last, d.window)
	if !ok {
		e.strategy.RecalculateWindow(d.window)
		return
	}
	box, _ := e.tileBox(target)
	dir := dropDirection(box, d.last)

	e.strategy.OnWindowRemovedTiling(d.window)
	e.reinsert(d.window, target, dir)
	e.post("movewindow", "%s,%s", d.window, dir)
}

func (e *Engine) tileAt(workspace int, p geom.Vector2D, exclude window.Handle) (window.Handle, bool) {
	for _, h := range e.strategy.Tiles(workspace) {
		if h == exclude {
			continue
		}
		if box, ok := e.tileBox(h); ok && box.Contains(p) {
			return h, true
		}
	}
	return window.Handle{}, false
}
