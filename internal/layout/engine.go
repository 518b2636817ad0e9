package layout

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/ItsNotGoodName/x-tilewm/internal/bus"
	"github.com/ItsNotGoodName/x-tilewm/internal/geom"
	"github.com/ItsNotGoodName/x-tilewm/internal/window"
)

var ErrUnknownStrategy = errors.New("unknown layout strategy")

// Windows is the window registry as seen by the engine.
type Windows interface {
	Resolve(h window.Handle) (window.Attributes, bool)
	Configure(h window.Handle, box geom.Box) bool
	SetVisible(h window.Handle, visible bool) bool
}

// Outputs answers which monitor shows a workspace.
type Outputs interface {
	Monitor(id int) (window.Monitor, bool)
	WorkspaceMonitor(workspace int) (window.Monitor, bool)
}

// Node is the layout metadata of a managed window.
type Node struct {
	Window     window.Handle
	Workspace  int
	Floating   bool
	Fullscreen FullscreenMode

	// restore is where a fullscreen window goes back to. Recalculations
	// update it while the window is fullscreen.
	restore  geom.Box
	floatBox geom.Box
	group    *Group
}

type Option func(e *Engine)

func WithAnchorPolicy(policy AnchorPolicy) Option {
	return func(e *Engine) { e.anchorPolicy = policy }
}

func WithNeighborPolicy(policy NeighborPolicy) Option {
	return func(e *Engine) { e.neighborPolicy = policy }
}

// Engine is the layer shared by all strategies. It owns floating windows,
// focus, fullscreen, groups and drag sessions, and delegates tiling to the
// active Strategy.
//
// Engine is not safe for concurrent use. All calls happen on the host's
// interaction thread.
type Engine struct {
	windows Windows
	outputs Outputs
	poster  bus.Poster
	cfg     Config

	strategy Strategy
	nodes    map[window.Handle]*Node
	floating []window.Handle

	focused   window.Handle
	lastTiled map[int]window.Handle
	// anchorOverride forces the insertion anchor for internal re-inserts.
	anchorOverride window.Handle

	anchorPolicy   AnchorPolicy
	neighborPolicy NeighborPolicy

	drag Drag
}

func New(strategy string, windows Windows, outputs Outputs, poster bus.Poster, cfg Config, opts ...Option) (*Engine, error) {
	factory, ok := lookupFactory(strategy)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, strategy)
	}
	if poster == nil {
		poster = bus.Discard
	}

	e := &Engine{
		windows:        windows,
		outputs:        outputs,
		poster:         poster,
		cfg:            cfg,
		nodes:          make(map[window.Handle]*Node),
		lastTiled:      make(map[int]window.Handle),
		anchorPolicy:   LastTileAnchor,
		neighborPolicy: NearestNeighbor,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.strategy = factory(e)

	return e, nil
}

func (e *Engine) post(name, format string, args ...any) {
	e.poster.PostEvent(name, fmt.Sprintf(format, args...), false)
}

func (e *Engine) Strategy() Strategy {
	return e.strategy
}

func (e *Engine) Config() Config {
	return e.cfg
}

// SetConfig swaps the configuration and re-tiles everything. Announcing the
// reload is left to the host.
func (e *Engine) SetConfig(cfg Config) {
	e.cfg = cfg
	e.RecalculateAll()
}

// Node returns a copy of the layout metadata of h.
func (e *Engine) Node(h window.Handle) (Node, bool) {
	n, ok := e.nodes[h]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

func (e *Engine) Focused() window.Handle {
	return e.focused
}

// Floating returns the floating windows of a workspace in creation order.
func (e *Engine) Floating(workspace int) []window.Handle {
	var list []window.Handle
	for _, h := range e.floating {
		if e.nodes[h].Workspace == workspace {
			list = append(list, h)
		}
	}
	return list
}

// Workspaces returns every workspace holding a managed window, sorted.
func (e *Engine) Workspaces() []int {
	var list []int
	for _, n := range e.nodes {
		if !slices.Contains(list, n.Workspace) {
			list = append(list, n.Workspace)
		}
	}
	slices.Sort(list)
	return list
}

func (e *Engine) OnWindowCreated(h window.Handle, dir Direction) {
	attrs, ok := e.manage(h)
	if !ok {
		return
	}

	e.nodes[h] = &Node{Window: h, Workspace: attrs.Workspace}
	e.strategy.OnWindowCreatedTiling(h, dir)
	e.post("openwindow", "%s,%d,%s,%s", h, attrs.Workspace, attrs.Class, attrs.Title)
}

// OnWindowCreatedFloating manages h as a floating window. The window keeps
// its own geometry when it has one, otherwise it is centered at the
// configured floating size.
func (e *Engine) OnWindowCreatedFloating(h window.Handle) {
	attrs, ok := e.manage(h)
	if !ok {
		return
	}

	n := &Node{Window: h, Workspace: attrs.Workspace, Floating: true}
	e.nodes[h] = n
	e.floating = append(e.floating, h)

	n.floatBox = attrs.Box
	if n.floatBox.Empty() {
		n.floatBox = e.defaultFloatingBox(attrs.Workspace)
	}
	e.windows.Configure(h, n.floatBox)
	e.post("openwindow", "%s,%d,%s,%s", h, attrs.Workspace, attrs.Class, attrs.Title)
}

func (e *Engine) manage(h window.Handle) (window.Attributes, bool) {
	attrs, ok := e.windows.Resolve(h)
	if !ok || !attrs.Mapped {
		slog.Debug("Ignoring unmapped or stale window", "func", "layout.Engine.manage", "window", h)
		return window.Attributes{}, false
	}
	if _, ok := e.nodes[h]; ok {
		return window.Attributes{}, false
	}
	return attrs, true
}

func (e *Engine) defaultFloatingBox(workspace int) geom.Box {
	mon, ok := e.outputs.WorkspaceMonitor(workspace)
	if !ok {
		return geom.Box{W: e.cfg.FloatWidth, H: e.cfg.FloatHeight}
	}
	area := mon.Usable()
	w := min(e.cfg.FloatWidth, area.W)
	h := min(e.cfg.FloatHeight, area.H)
	return geom.Box{X: area.X + (area.W-w)/2, Y: area.Y + (area.H-h)/2, W: w, H: h}
}

// OnWindowRemoved forgets h. It works with handles the registry already
// invalidated.
func (e *Engine) OnWindowRemoved(h window.Handle) {
	n, ok := e.nodes[h]
	if !ok {
		return
	}

	if e.drag.window == h {
		e.drag.reset()
	}
	if n.group != nil {
		e.detachFromGroup(n)
	}

	if n.Floating {
		e.floating = slices.DeleteFunc(e.floating, func(f window.Handle) bool { return f == h })
	} else if e.strategy.IsWindowTiled(h) {
		e.strategy.OnWindowRemovedTiling(h)
	}

	delete(e.nodes, h)
	if e.focused == h {
		e.focused = window.Handle{}
	}
	if e.lastTiled[n.Workspace] == h {
		delete(e.lastTiled, n.Workspace)
	}

	e.post("closewindow", "%s", h)
}

// ChangeWindowFloatingMode toggles h between tiled and floating. Floating
// windows remember their last floating geometry.
func (e *Engine) ChangeWindowFloatingMode(h window.Handle) bool {
	n, ok := e.nodes[h]
	if !ok {
		return false
	}
	if _, ok := e.windows.Resolve(h); !ok || !e.groupActive(n) {
		return false
	}

	if n.Fullscreen != FullscreenNone {
		e.FullscreenRequestForWindow(h, n.Fullscreen, false)
	}
	attrs, _ := e.windows.Resolve(h)

	if n.Floating {
		n.floatBox = attrs.Box
		n.Floating = false
		e.floating = slices.DeleteFunc(e.floating, func(f window.Handle) bool { return f == h })
		e.strategy.OnWindowCreatedTiling(h, DirectionDefault)
		e.post("changefloatingmode", "%s,0", h)
		return true
	}

	if n.group != nil {
		e.detachFromGroup(n)
	}
	if e.strategy.IsWindowTiled(h) {
		e.strategy.OnWindowRemovedTiling(h)
	}
	n.Floating = true
	e.floating = append(e.floating, h)
	if n.floatBox.Empty() {
		n.floatBox = e.defaultFloatingBox(n.Workspace)
	}
	e.windows.SetVisible(h, true)
	e.windows.Configure(h, n.floatBox)
	e.post("changefloatingmode", "%s,1", h)
	return true
}

// tiled reports whether h is managed, resolvable and occupies a tile.
func (e *Engine) tiled(h window.Handle) (*Node, bool) {
	n, ok := e.nodes[h]
	if !ok || n.Floating {
		return nil, false
	}
	if _, ok := e.windows.Resolve(h); !ok {
		return nil, false
	}
	return n, e.strategy.IsWindowTiled(h)
}

func (e *Engine) IsWindowTiled(h window.Handle) bool {
	_, ok := e.tiled(h)
	return ok
}

func (e *Engine) RecalculateMonitor(id int) {
	e.strategy.RecalculateMonitor(id)

	mon, ok := e.outputs.Monitor(id)
	if !ok {
		return
	}
	for _, n := range e.nodes {
		if n.Fullscreen == FullscreenNone {
			continue
		}
		if m, ok := e.outputs.WorkspaceMonitor(n.Workspace); ok && m.ID == id {
			e.windows.Configure(n.Window, fullscreenBox(mon, n.Fullscreen))
		}
	}
}

func (e *Engine) RecalculateWindow(h window.Handle) {
	if _, ok := e.tiled(h); ok {
		e.strategy.RecalculateWindow(h)
	}
}

// RecalculateAll recalculates every monitor that shows a managed workspace.
func (e *Engine) RecalculateAll() {
	var ids []int
	for _, ws := range e.Workspaces() {
		if mon, ok := e.outputs.WorkspaceMonitor(ws); ok && !slices.Contains(ids, mon.ID) {
			ids = append(ids, mon.ID)
		}
	}
	for _, id := range ids {
		e.RecalculateMonitor(id)
	}
}

func fullscreenBox(mon window.Monitor, mode FullscreenMode) geom.Box {
	if mode == FullscreenMaximized {
		return mon.Usable()
	}
	return mon.Box
}

func (e *Engine) FullscreenRequestForWindow(h window.Handle, mode FullscreenMode, on bool) {
	n, ok := e.nodes[h]
	if !ok || !e.IsWindowReachable(h) {
		return
	}
	if n.Floating {
		e.SetFullscreen(h, mode, on)
		return
	}
	if e.strategy.IsWindowTiled(h) {
		e.strategy.FullscreenRequestForWindow(h, mode, on)
	}
}

// SetFullscreen enters or leaves fullscreen for h. Entering saves the current
// geometry and leaving restores it exactly. A workspace has at most one
// fullscreen window.
func (e *Engine) SetFullscreen(h window.Handle, mode FullscreenMode, on bool) bool {
	n, ok := e.nodes[h]
	if !ok {
		return false
	}
	attrs, ok := e.windows.Resolve(h)
	if !ok {
		return false
	}

	if !on || mode == FullscreenNone {
		if n.Fullscreen == FullscreenNone {
			return false
		}
		n.Fullscreen = FullscreenNone
		e.windows.Configure(h, n.restore)
		e.post("fullscreen", "%s,0", h)
		return true
	}

	if n.Fullscreen == mode {
		return false
	}
	mon, ok := e.outputs.WorkspaceMonitor(n.Workspace)
	if !ok {
		return false
	}
	for _, other := range e.nodes {
		if other != n && other.Workspace == n.Workspace && other.Fullscreen != FullscreenNone {
			e.SetFullscreen(other.Window, FullscreenNone, false)
		}
	}

	if n.Fullscreen == FullscreenNone {
		n.restore = attrs.Box
	}
	n.Fullscreen = mode
	e.windows.Configure(h, fullscreenBox(mon, mode))
	e.post("fullscreen", "%s,1", h)
	return true
}

// PlaceTile applies a tile geometry computed by a strategy. Fullscreen
// windows keep their geometry and remember the tile for later.
func (e *Engine) PlaceTile(h window.Handle, box geom.Box) {
	n, ok := e.nodes[h]
	if !ok {
		return
	}
	if n.Fullscreen != FullscreenNone {
		n.restore = box
		return
	}
	e.windows.Configure(h, box)
}

// WorkArea is the area tiles of a workspace are laid out in.
func (e *Engine) WorkArea(workspace int) (geom.Box, bool) {
	mon, ok := e.outputs.WorkspaceMonitor(workspace)
	if !ok {
		return geom.Box{}, false
	}
	return mon.Usable().Shrink(e.cfg.GapsOut), true
}

// Anchor picks the tile a new tile of workspace is inserted next to. It
// returns the zero Handle when the workspace has no other tiles.
func (e *Engine) Anchor(workspace int, exclude window.Handle) window.Handle {
	valid := func(h window.Handle) bool {
		if h.IsZero() || h == exclude || !e.strategy.IsWindowTiled(h) {
			return false
		}
		n, ok := e.nodes[h]
		return ok && n.Workspace == workspace
	}

	if valid(e.anchorOverride) {
		return e.anchorOverride
	}
	if valid(e.lastTiled[workspace]) {
		return e.lastTiled[workspace]
	}

	tiles := slices.DeleteFunc(e.strategy.Tiles(workspace), func(h window.Handle) bool { return h == exclude })
	if len(tiles) == 0 {
		return window.Handle{}
	}
	if h := e.anchorPolicy(tiles); valid(h) {
		return h
	}
	return tiles[len(tiles)-1]
}

// reinsert tiles h next to anchor.
func (e *Engine) reinsert(h, anchor window.Handle, dir Direction) {
	e.anchorOverride = anchor
	e.strategy.OnWindowCreatedTiling(h, dir)
	e.anchorOverride = window.Handle{}
}

// tileBox is the tiled geometry of h, ignoring fullscreen.
func (e *Engine) tileBox(h window.Handle) (geom.Box, bool) {
	n, ok := e.nodes[h]
	if !ok {
		return geom.Box{}, false
	}
	if n.Fullscreen != FullscreenNone {
		return n.restore, true
	}
	attrs, ok := e.windows.Resolve(h)
	return attrs.Box, ok
}

// Neighbor finds the tile next to h in dir.
func (e *Engine) Neighbor(h window.Handle, dir Direction) (window.Handle, bool) {
	n, ok := e.nodes[h]
	if !ok {
		return window.Handle{}, false
	}
	from, ok := e.tileBox(h)
	if !ok {
		return window.Handle{}, false
	}

	var candidates []Candidate
	for _, t := range e.strategy.Tiles(n.Workspace) {
		if t == h {
			continue
		}
		if box, ok := e.tileBox(t); ok {
			candidates = append(candidates, Candidate{Window: t, Box: box})
		}
	}
	return e.neighborPolicy(from, dir, candidates)
}

func (e *Engine) SwitchWindows(a, b window.Handle) bool {
	if a == b {
		return false
	}
	na, ok := e.tiled(a)
	if !ok {
		return false
	}
	nb, ok := e.tiled(b)
	if !ok || na.Workspace != nb.Workspace {
		return false
	}
	if na.Fullscreen != FullscreenNone || nb.Fullscreen != FullscreenNone {
		return false
	}
	if !e.strategy.SwitchWindows(a, b) {
		return false
	}
	e.post("swapwindows", "%s,%s", a, b)
	return true
}

func (e *Engine) MoveWindowTo(h window.Handle, dir Direction) bool {
	n, ok := e.tiled(h)
	if !ok || n.Fullscreen != FullscreenNone || dir == DirectionDefault {
		return false
	}
	if !e.strategy.MoveWindowTo(h, dir) {
		return false
	}
	e.post("movewindow", "%s,%s", h, dir)
	return true
}

func (e *Engine) AlterSplitRatio(h window.Handle, value float64, exact bool) bool {
	if _, ok := e.tiled(h); !ok {
		return false
	}
	if !e.strategy.AlterSplitRatio(h, value, exact) {
		return false
	}
	e.post("splitratio", "%s,%g", h, value)
	return true
}

// ReplaceWindowDataWith hands the layout slot of from to the unmanaged
// window to.
func (e *Engine) ReplaceWindowDataWith(from, to window.Handle) bool {
	n, ok := e.nodes[from]
	if !ok {
		return false
	}
	if _, ok := e.nodes[to]; ok {
		return false
	}
	attrs, ok := e.windows.Resolve(to)
	if !ok {
		return false
	}

	inTree := !n.Floating && e.strategy.IsWindowTiled(from)
	if inTree {
		e.strategy.ReplaceWindowDataWith(from, to)
	}

	delete(e.nodes, from)
	n.Window = to
	n.Workspace = attrs.Workspace
	e.nodes[to] = n

	if idx := slices.Index(e.floating, from); idx != -1 {
		e.floating[idx] = to
	}
	if n.group != nil {
		if idx := slices.Index(n.group.members, from); idx != -1 {
			n.group.members[idx] = to
		}
	}
	if e.focused == from {
		e.focused = to
	}
	for ws, h := range e.lastTiled {
		if h == from {
			e.lastTiled[ws] = to
		}
	}
	if e.drag.window == from {
		e.drag.reset()
	}

	switch {
	case inTree:
		e.strategy.RecalculateWindow(to)
	case n.Floating:
		e.windows.Configure(to, n.floatBox)
	}
	return true
}

func (e *Engine) ResizeActiveWindow(delta geom.Vector2D, corner Corner, h window.Handle) {
	if h.IsZero() {
		if !e.drag.active {
			return
		}
		h = e.drag.window
	}
	n, ok := e.nodes[h]
	if !ok || n.Fullscreen != FullscreenNone || !e.IsWindowReachable(h) {
		return
	}

	if n.Floating {
		attrs, _ := e.windows.Resolve(h)
		n.floatBox = resizeBox(attrs.Box, delta, corner)
		e.windows.Configure(h, n.floatBox)
		return
	}
	if e.strategy.IsWindowTiled(h) {
		e.strategy.ResizeActiveWindow(delta, corner, h)
	}
}

func resizeBox(b geom.Box, d geom.Vector2D, corner Corner) geom.Box {
	right, bottom := b.X+b.W, b.Y+b.H

	if corner.Left() {
		b.X += d.X
		b.W -= d.X
	} else {
		b.W += d.X
	}
	if corner.Top() {
		b.Y += d.Y
		b.H -= d.Y
	} else {
		b.H += d.Y
	}

	if b.W < MinFloatingSize {
		b.W = MinFloatingSize
		if corner.Left() {
			b.X = right - MinFloatingSize
		}
	}
	if b.H < MinFloatingSize {
		b.H = MinFloatingSize
		if corner.Top() {
			b.Y = bottom - MinFloatingSize
		}
	}
	return b
}

// MoveActiveWindow translates h by delta. Tiled windows snap back into the
// layout on the next recalculation.
func (e *Engine) MoveActiveWindow(delta geom.Vector2D, h window.Handle) {
	if h.IsZero() {
		if !e.drag.active {
			return
		}
		h = e.drag.window
	}
	n, ok := e.nodes[h]
	if !ok || n.Fullscreen != FullscreenNone || !e.IsWindowReachable(h) {
		return
	}

	attrs, _ := e.windows.Resolve(h)
	box := attrs.Box.Translate(delta)
	if n.Floating {
		n.floatBox = box
	}
	e.windows.Configure(h, box)
}

func (e *Engine) LayoutMessage(header MessageHeader, command string) Reply {
	if header.Window.IsZero() {
		header.Window = e.focused
	}

	reply := e.strategy.LayoutMessage(header, command)
	if _, ok := reply.(ReplyUnhandled); ok {
		return e.groupMessage(header, command)
	}
	return reply
}

func (e *Engine) RequestRenderHints(h window.Handle) RenderHints {
	if _, ok := e.nodes[h]; !ok {
		return RenderHints{}
	}
	return e.strategy.RequestRenderHints(h)
}

// IsWindowReachable reports whether h can be focused. Hidden group members
// are not reachable.
func (e *Engine) IsWindowReachable(h window.Handle) bool {
	attrs, ok := e.windows.Resolve(h)
	if !ok || !attrs.Mapped {
		return false
	}
	if n, ok := e.nodes[h]; ok {
		return e.groupActive(n)
	}
	return true
}

// GetNextWindowCandidate returns the window to focus after h, walking the
// tiles of h's workspace and then its floating windows.
func (e *Engine) GetNextWindowCandidate(h window.Handle) (window.Handle, bool) {
	var workspace int
	if n, ok := e.nodes[h]; ok {
		workspace = n.Workspace
	} else if attrs, ok := e.windows.Resolve(h); ok {
		workspace = attrs.Workspace
	} else {
		return window.Handle{}, false
	}

	order := append(e.strategy.Tiles(workspace), e.Floating(workspace)...)
	start := slices.Index(order, h)
	for i := 1; i <= len(order); i++ {
		c := order[(start+i)%len(order)]
		if c != h && e.IsWindowReachable(c) {
			return c, true
		}
	}
	return window.Handle{}, false
}

// BringWindowToTop makes h the visible member of its group.
func (e *Engine) BringWindowToTop(h window.Handle) {
	n, ok := e.nodes[h]
	if !ok || n.group == nil {
		return
	}
	e.setGroupActive(n.group, h)
}

func (e *Engine) RequestFocusForWindow(h window.Handle) {
	e.BringWindowToTop(h)
	if !e.IsWindowReachable(h) {
		return
	}
	e.OnWindowFocusChange(h)
}

// OnWindowFocusChange records the focused window. The zero Handle clears
// focus.
func (e *Engine) OnWindowFocusChange(h window.Handle) {
	if h == e.focused {
		return
	}
	if h.IsZero() {
		e.focused = h
		e.post("activewindow", "")
		return
	}
	if _, ok := e.windows.Resolve(h); !ok {
		return
	}

	e.focused = h
	if n, ok := e.nodes[h]; ok && !n.Floating && e.strategy.IsWindowTiled(h) {
		e.lastTiled[n.Workspace] = h
	}
	e.post("activewindow", "%s", h)
}

// SwitchLayout replaces the active strategy. Tiles keep their workspace and
// traversal order.
func (e *Engine) SwitchLayout(name string) error {
	if name == e.strategy.Name() {
		return nil
	}
	factory, ok := lookupFactory(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownStrategy, name)
	}

	old := e.strategy
	tiles := make(map[int][]window.Handle)
	workspaces := old.Workspaces()
	for _, ws := range workspaces {
		tiles[ws] = old.Tiles(ws)
		for _, h := range tiles[ws] {
			e.SetFullscreen(h, FullscreenNone, false)
		}
	}

	e.strategy = factory(e)
	for _, ws := range workspaces {
		var prev window.Handle
		for _, h := range tiles[ws] {
			e.reinsert(h, prev, DirectionDefault)
			prev = h
		}
	}

	e.post("activelayout", "%s", name)
	return nil
}
