package layout

import (
	"slices"
	"strconv"
	"strings"

	"github.com/ItsNotGoodName/x-tilewm/internal/core"
	"github.com/ItsNotGoodName/x-tilewm/internal/geom"
	"github.com/ItsNotGoodName/x-tilewm/internal/window"
)

const DwindleName = "dwindle"

func init() {
	Register(DwindleName, NewDwindle)
}

type dwindleNode struct {
	parent    *dwindleNode
	children  [2]*dwindleNode
	window    window.Handle
	workspace int

	// vertical stacks the children top to bottom.
	vertical bool
	// fixed splits never change axis on recalculation.
	fixed bool
	// ratio is the share of children[0].
	ratio float64
	box   geom.Box
}

func (n *dwindleNode) leaf() bool {
	return n.children[0] == nil
}

func (n *dwindleNode) index(child *dwindleNode) int {
	if n.children[0] == child {
		return 0
	}
	return 1
}

// share is the part of the parent's area taken by n.
func (n *dwindleNode) share() float64 {
	if n.parent == nil {
		return 1
	}
	if n.parent.index(n) == 0 {
		return n.parent.ratio
	}
	return 1 - n.parent.ratio
}

// edgeSplit finds the split that owns an edge of n. far selects the right
// or bottom edge.
func (n *dwindleNode) edgeSplit(vertical, far bool) *dwindleNode {
	for c := n; c.parent != nil; c = c.parent {
		p := c.parent
		if p.vertical == vertical && (p.index(c) == 0) == far {
			return p
		}
	}
	return nil
}

// Dwindle tiles every workspace as a binary tree of splits.
type Dwindle struct {
	e         *Engine
	roots     map[int]*dwindleNode
	leaves    map[window.Handle]*dwindleNode
	preselect map[int]Direction
}

func NewDwindle(e *Engine) Strategy {
	return &Dwindle{
		e:         e,
		roots:     make(map[int]*dwindleNode),
		leaves:    make(map[window.Handle]*dwindleNode),
		preselect: make(map[int]Direction),
	}
}

func (d *Dwindle) Name() string {
	return DwindleName
}

func (d *Dwindle) OnWindowCreatedTiling(h window.Handle, dir Direction) {
	n, ok := d.e.nodes[h]
	if !ok {
		return
	}
	if _, ok := d.leaves[h]; ok {
		return
	}

	ws := n.Workspace
	if dir == DirectionDefault {
		if p, ok := d.preselect[ws]; ok {
			dir = p
			delete(d.preselect, ws)
		}
	}

	anchor := d.leaves[d.e.Anchor(ws, h)]
	leaf := &dwindleNode{window: h, workspace: ws}
	d.leaves[h] = leaf

	root := d.roots[ws]
	switch {
	case root == nil:
		d.roots[ws] = leaf
	case anchor == nil:
		d.split(d.lastLeaf(root), leaf, dir)
	default:
		d.split(anchor, leaf, dir)
	}

	d.recalculateWorkspace(ws)
}

func (d *Dwindle) lastLeaf(n *dwindleNode) *dwindleNode {
	for !n.leaf() {
		n = n.children[1]
	}
	return n
}

// split replaces target with a split holding target and leaf. leaf takes
// the side dir points to.
func (d *Dwindle) split(target, leaf *dwindleNode, dir Direction) {
	cfg := d.e.cfg.Dwindle
	parent := &dwindleNode{
		parent:    target.parent,
		workspace: target.workspace,
		ratio:     core.Clamp(cfg.DefaultSplitRatio, MinSplitRatio, MaxSplitRatio),
		fixed:     dir != DirectionDefault,
	}

	first := false
	switch dir {
	case DirectionLeft:
		first = true
	case DirectionRight:
	case DirectionUp:
		parent.vertical, first = true, true
	case DirectionDown:
		parent.vertical = true
	default:
		parent.vertical = target.box.H > target.box.W
		first = cfg.ForceSplit == 1
	}

	if p := target.parent; p == nil {
		d.roots[target.workspace] = parent
	} else {
		p.children[p.index(target)] = parent
	}
	target.parent, leaf.parent = parent, parent
	leaf.workspace = target.workspace
	if first {
		parent.children = [2]*dwindleNode{leaf, target}
	} else {
		parent.children = [2]*dwindleNode{target, leaf}
	}
}

// detach unlinks leaf from its tree. Its sibling takes the parent's place.
func (d *Dwindle) detach(leaf *dwindleNode) {
	parent := leaf.parent
	leaf.parent = nil
	if parent == nil {
		delete(d.roots, leaf.workspace)
		return
	}

	sibling := parent.children[1-parent.index(leaf)]
	sibling.parent = parent.parent
	if gp := parent.parent; gp == nil {
		d.roots[leaf.workspace] = sibling
	} else {
		gp.children[gp.index(parent)] = sibling
	}
}

func (d *Dwindle) OnWindowRemovedTiling(h window.Handle) {
	leaf, ok := d.leaves[h]
	if !ok {
		return
	}
	delete(d.leaves, h)
	d.detach(leaf)
	d.recalculateWorkspace(leaf.workspace)
}

func (d *Dwindle) IsWindowTiled(h window.Handle) bool {
	_, ok := d.leaves[h]
	return ok
}

func (d *Dwindle) recalculateWorkspace(ws int) {
	root, ok := d.roots[ws]
	if !ok {
		return
	}
	mon, ok := d.e.outputs.WorkspaceMonitor(ws)
	if !ok {
		return
	}

	gaps := d.e.cfg.GapsIn
	area := mon.Usable().Shrink(d.e.cfg.GapsOut)
	if root.leaf() && d.e.cfg.Dwindle.NoGapsWhenOnly {
		area, gaps = mon.Usable(), 0
	}
	d.layout(root, area, gaps)
}

func (d *Dwindle) layout(n *dwindleNode, box geom.Box, gaps float64) {
	n.box = box
	if n.leaf() {
		d.e.PlaceTile(n.window, box.Shrink(gaps))
		return
	}

	if !n.fixed && !d.e.cfg.Dwindle.PreserveSplit {
		n.vertical = box.H > box.W
	}
	a, b := splitBox(box, n.vertical, n.ratio)
	d.layout(n.children[0], a, gaps)
	d.layout(n.children[1], b, gaps)
}

func splitBox(b geom.Box, vertical bool, ratio float64) (geom.Box, geom.Box) {
	if vertical {
		h := b.H * ratio
		return geom.Box{X: b.X, Y: b.Y, W: b.W, H: h}, geom.Box{X: b.X, Y: b.Y + h, W: b.W, H: b.H - h}
	}
	w := b.W * ratio
	return geom.Box{X: b.X, Y: b.Y, W: w, H: b.H}, geom.Box{X: b.X + w, Y: b.Y, W: b.W - w, H: b.H}
}

func (d *Dwindle) RecalculateMonitor(id int) {
	for ws := range d.roots {
		if mon, ok := d.e.outputs.WorkspaceMonitor(ws); ok && mon.ID == id {
			d.recalculateWorkspace(ws)
		}
	}
}

func (d *Dwindle) RecalculateWindow(h window.Handle) {
	if leaf, ok := d.leaves[h]; ok {
		d.recalculateWorkspace(leaf.workspace)
	}
}

func (d *Dwindle) ResizeActiveWindow(delta geom.Vector2D, corner Corner, h window.Handle) {
	leaf, ok := d.leaves[h]
	if !ok {
		return
	}
	if delta.X != 0 {
		d.resizeAxis(leaf, false, delta.X, !corner.Left(), corner)
	}
	if delta.Y != 0 {
		d.resizeAxis(leaf, true, delta.Y, !corner.Top(), corner)
	}
	d.recalculateWorkspace(leaf.workspace)
}

func (d *Dwindle) resizeAxis(leaf *dwindleNode, vertical bool, amount float64, far bool, corner Corner) {
	s := leaf.edgeSplit(vertical, far)
	if s == nil && corner == CornerNone {
		// Grow through the other edge.
		s, amount = leaf.edgeSplit(vertical, !far), -amount
	}
	if s == nil {
		return
	}

	size := s.box.W
	if vertical {
		size = s.box.H
	}
	if size <= 0 {
		return
	}
	s.ratio = core.Clamp(s.ratio+amount/size, MinSplitRatio, MaxSplitRatio)
}

func (d *Dwindle) FullscreenRequestForWindow(h window.Handle, mode FullscreenMode, on bool) {
	if _, ok := d.leaves[h]; !ok {
		return
	}
	d.e.SetFullscreen(h, mode, on)
}

func (d *Dwindle) LayoutMessage(header MessageHeader, command string) Reply {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ReplyUnhandled{}
	}
	leaf := d.leaves[header.Window]

	switch fields[0] {
	case "togglesplit":
		if leaf == nil || leaf.parent == nil {
			return ReplyInvalid{Reason: "window is not in a split"}
		}
		leaf.parent.vertical = !leaf.parent.vertical
		leaf.parent.fixed = true
		d.recalculateWorkspace(leaf.workspace)
		return ReplyOK{}
	case "swapsplit":
		if leaf == nil || leaf.parent == nil {
			return ReplyInvalid{Reason: "window is not in a split"}
		}
		p := leaf.parent
		p.children[0], p.children[1] = p.children[1], p.children[0]
		p.ratio = 1 - p.ratio
		d.recalculateWorkspace(leaf.workspace)
		return ReplyOK{}
	case "preselect":
		if len(fields) < 2 {
			return ReplyInvalid{Reason: "missing direction"}
		}
		dir, err := ParseDirection(fields[1])
		if err != nil {
			return ReplyInvalid{Reason: err.Error()}
		}
		n, ok := d.e.nodes[header.Window]
		if !ok {
			return ReplyInvalid{Reason: "no window"}
		}
		if dir == DirectionDefault {
			delete(d.preselect, n.Workspace)
		} else {
			d.preselect[n.Workspace] = dir
		}
		return ReplyOK{}
	case "splitratio":
		value, exact, err := parseRatioArgs(fields[1:])
		if err != nil {
			return ReplyInvalid{Reason: err.Error()}
		}
		if !d.e.AlterSplitRatio(header.Window, value, exact) {
			return ReplyInvalid{Reason: "window is not in a split"}
		}
		return ReplyOK{}
	}

	return ReplyUnhandled{}
}

// parseRatioArgs parses "<delta>" or "exact <value>".
func parseRatioArgs(args []string) (float64, bool, error) {
	exact := false
	if len(args) > 0 && args[0] == "exact" {
		exact, args = true, args[1:]
	}
	if len(args) == 0 {
		return 0, false, strconv.ErrSyntax
	}
	value, err := strconv.ParseFloat(args[0], 64)
	return value, exact, err
}

func (d *Dwindle) RequestRenderHints(h window.Handle) RenderHints {
	return d.e.GroupRenderHints(h)
}

func (d *Dwindle) SwitchWindows(a, b window.Handle) bool {
	la, ok := d.leaves[a]
	if !ok {
		return false
	}
	lb, ok := d.leaves[b]
	if !ok || la.workspace != lb.workspace {
		return false
	}

	la.window, lb.window = b, a
	d.leaves[a], d.leaves[b] = lb, la
	d.recalculateWorkspace(la.workspace)
	return true
}

// MoveWindowTo re-tiles h next to its neighbor in dir. It is a no-op at the
// edge of the workspace.
func (d *Dwindle) MoveWindowTo(h window.Handle, dir Direction) bool {
	leaf, ok := d.leaves[h]
	if !ok {
		return false
	}
	target, ok := d.e.Neighbor(h, dir)
	if !ok {
		return false
	}

	d.detach(leaf)
	d.split(d.leaves[target], leaf, dir)
	d.recalculateWorkspace(leaf.workspace)
	return true
}

// AlterSplitRatio changes the share of h's tile within its parent split.
// exact sets the share, otherwise value is added to it.
func (d *Dwindle) AlterSplitRatio(h window.Handle, value float64, exact bool) bool {
	leaf, ok := d.leaves[h]
	if !ok || leaf.parent == nil {
		return false
	}

	share := leaf.share()
	if exact {
		share = value
	} else {
		share += value
	}
	share = core.Clamp(share, MinSplitRatio, MaxSplitRatio)

	p := leaf.parent
	if p.index(leaf) == 0 {
		p.ratio = share
	} else {
		p.ratio = 1 - share
	}
	d.recalculateWorkspace(leaf.workspace)
	return true
}

func (d *Dwindle) ReplaceWindowDataWith(from, to window.Handle) {
	leaf, ok := d.leaves[from]
	if !ok {
		return
	}
	delete(d.leaves, from)
	leaf.window = to
	d.leaves[to] = leaf
}

func (d *Dwindle) Tiles(workspace int) []window.Handle {
	var list []window.Handle
	var walk func(n *dwindleNode)
	walk = func(n *dwindleNode) {
		if n.leaf() {
			list = append(list, n.window)
			return
		}
		walk(n.children[0])
		walk(n.children[1])
	}
	if root, ok := d.roots[workspace]; ok {
		walk(root)
	}
	return list
}

func (d *Dwindle) Workspaces() []int {
	list := make([]int, 0, len(d.roots))
	for ws := range d.roots {
		list = append(list, ws)
	}
	slices.Sort(list)
	return list
}

func (d *Dwindle) Describe(workspace int) (TreeNode, bool) {
	root, ok := d.roots[workspace]
	if !ok {
		return TreeNode{}, false
	}
	return describeDwindle(root), true
}

func describeDwindle(n *dwindleNode) TreeNode {
	t := TreeNode{Share: n.share(), Box: n.box}
	if n.leaf() {
		h := n.window
		t.Window = &h
		return t
	}

	t.Split = "horizontal"
	if n.vertical {
		t.Split = "vertical"
	}
	t.Children = []TreeNode{describeDwindle(n.children[0]), describeDwindle(n.children[1])}
	return t
}
