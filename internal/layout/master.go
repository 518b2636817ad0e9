package layout

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ItsNotGoodName/x-tilewm/internal/core"
	"github.com/ItsNotGoodName/x-tilewm/internal/geom"
	"github.com/ItsNotGoodName/x-tilewm/internal/window"
)

const MasterName = "master"

func init() {
	Register(MasterName, NewMaster)
}

// Orientation is the side of the workspace the master column is on.
type Orientation int

const (
	OrientationLeft Orientation = iota
	OrientationTop
	OrientationRight
	OrientationBottom
)

var orientationNames = []string{"left", "top", "right", "bottom"}

func (o Orientation) String() string {
	if int(o) < len(orientationNames) {
		return orientationNames[o]
	}
	return "unknown"
}

func ParseOrientation(s string) (Orientation, error) {
	if idx := slices.Index(orientationNames, s); idx != -1 {
		return Orientation(idx), nil
	}
	return OrientationLeft, fmt.Errorf("invalid orientation %q", s)
}

// horizontal reports whether the master and stack columns sit side by side.
func (o Orientation) horizontal() bool {
	return o == OrientationLeft || o == OrientationRight
}

type masterNode struct {
	window    window.Handle
	workspace int
	master    bool
	// weight is the share of the node within its column, relative to the
	// other weights of that column.
	weight float64
	box    geom.Box
}

type masterWorkspace struct {
	// nodes holds masters first, then the stack.
	nodes       []*masterNode
	mfact       float64
	orientation Orientation
	area        geom.Box
}

func (w *masterWorkspace) masters() []*masterNode {
	return w.nodes[:w.masterCount()]
}

func (w *masterWorkspace) stack() []*masterNode {
	return w.nodes[w.masterCount():]
}

func (w *masterWorkspace) masterCount() int {
	n := 0
	for n < len(w.nodes) && w.nodes[n].master {
		n++
	}
	return n
}

// Master tiles every workspace as a master column and a stack column.
type Master struct {
	e          *Engine
	workspaces map[int]*masterWorkspace
	nodes      map[window.Handle]*masterNode
}

func NewMaster(e *Engine) Strategy {
	return &Master{
		e:          e,
		workspaces: make(map[int]*masterWorkspace),
		nodes:      make(map[window.Handle]*masterNode),
	}
}

func (m *Master) Name() string {
	return MasterName
}

func (m *Master) workspace(id int) *masterWorkspace {
	ws, ok := m.workspaces[id]
	if !ok {
		cfg := m.e.cfg.Master
		ws = &masterWorkspace{
			mfact:       core.Clamp(cfg.MFact, MinSplitRatio, MaxSplitRatio),
			orientation: cfg.Orientation,
		}
		m.workspaces[id] = ws
	}
	return ws
}

func (m *Master) OnWindowCreatedTiling(h window.Handle, dir Direction) {
	n, ok := m.e.nodes[h]
	if !ok {
		return
	}
	if _, ok := m.nodes[h]; ok {
		return
	}

	anchor := m.nodes[m.e.Anchor(n.Workspace, h)]
	ws := m.workspace(n.Workspace)
	node := &masterNode{window: h, workspace: n.Workspace, weight: 1}
	m.nodes[h] = node

	masters := ws.masterCount()
	switch {
	case masters == 0:
		node.master = true
		ws.nodes = slices.Insert(ws.nodes, 0, node)
	case m.e.cfg.Master.NewIsMaster:
		node.master = true
		ws.nodes[masters-1].master = false
		ws.nodes = slices.Insert(ws.nodes, 0, node)
	case anchor != nil && !anchor.master:
		ws.nodes = slices.Insert(ws.nodes, slices.Index(ws.nodes, anchor)+1, node)
	default:
		ws.nodes = append(ws.nodes, node)
	}

	m.recalculateWorkspace(n.Workspace)
}

func (m *Master) OnWindowRemovedTiling(h window.Handle) {
	node, ok := m.nodes[h]
	if !ok {
		return
	}
	delete(m.nodes, h)

	ws := m.workspaces[node.workspace]
	ws.nodes = slices.DeleteFunc(ws.nodes, func(n *masterNode) bool { return n == node })
	if len(ws.nodes) == 0 {
		delete(m.workspaces, node.workspace)
		return
	}
	if ws.masterCount() == 0 {
		ws.nodes[0].master = true
	}
	m.recalculateWorkspace(node.workspace)
}

func (m *Master) IsWindowTiled(h window.Handle) bool {
	_, ok := m.nodes[h]
	return ok
}

func (m *Master) recalculateWorkspace(id int) {
	ws, ok := m.workspaces[id]
	if !ok {
		return
	}
	area, ok := m.e.WorkArea(id)
	if !ok {
		return
	}
	ws.area = area

	masterBox, stackBox := area, geom.Box{}
	if len(ws.stack()) > 0 {
		masterBox, stackBox = masterSplit(area, ws.orientation, ws.mfact)
	}

	gaps := m.e.cfg.GapsIn
	m.layoutColumn(ws.masters(), masterBox, ws.orientation.horizontal(), gaps)
	m.layoutColumn(ws.stack(), stackBox, ws.orientation.horizontal(), gaps)
}

func masterSplit(area geom.Box, o Orientation, mfact float64) (geom.Box, geom.Box) {
	switch o {
	case OrientationRight:
		stack, master := splitBox(area, false, 1-mfact)
		return master, stack
	case OrientationTop:
		return splitBox(area, true, mfact)
	case OrientationBottom:
		stack, master := splitBox(area, true, 1-mfact)
		return master, stack
	default:
		return splitBox(area, false, mfact)
	}
}

// layoutColumn stacks nodes along Y when vertical is set, along X otherwise.
func (m *Master) layoutColumn(nodes []*masterNode, box geom.Box, vertical bool, gaps float64) {
	var total float64
	for _, n := range nodes {
		total += n.weight
	}

	rest := box
	for i, n := range nodes {
		if i == len(nodes)-1 {
			n.box = rest
		} else {
			n.box, rest = splitBox(rest, vertical, n.weight/total)
			total -= n.weight
		}
		m.e.PlaceTile(n.window, n.box.Shrink(gaps))
	}
}

func (m *Master) RecalculateMonitor(id int) {
	for ws := range m.workspaces {
		if mon, ok := m.e.outputs.WorkspaceMonitor(ws); ok && mon.ID == id {
			m.recalculateWorkspace(ws)
		}
	}
}

func (m *Master) RecalculateWindow(h window.Handle) {
	if node, ok := m.nodes[h]; ok {
		m.recalculateWorkspace(node.workspace)
	}
}

func (m *Master) ResizeActiveWindow(delta geom.Vector2D, corner Corner, h window.Handle) {
	node, ok := m.nodes[h]
	if !ok {
		return
	}
	ws := m.workspaces[node.workspace]

	along, across := delta.X, delta.Y
	size := ws.area.W
	grabbedFar, acrossFar := !corner.Left(), !corner.Top()
	if !ws.orientation.horizontal() {
		along, across = delta.Y, delta.X
		size = ws.area.H
		grabbedFar, acrossFar = !corner.Top(), !corner.Left()
	}

	if along != 0 && len(ws.stack()) > 0 && size > 0 {
		m.resizeMFact(ws, node, along/size, grabbedFar, corner)
	}
	if across != 0 {
		column := ws.masters()
		if !node.master {
			column = ws.stack()
		}
		m.resizeInColumn(column, node, across, ws.orientation.horizontal(), acrossFar, corner)
	}

	m.recalculateWorkspace(node.workspace)
}

func (m *Master) resizeMFact(ws *masterWorkspace, node *masterNode, amount float64, grabbedFar bool, corner Corner) {
	// The edge a column shares with the other column.
	boundaryFar := (ws.orientation == OrientationLeft || ws.orientation == OrientationTop) == node.master

	grow := amount
	if corner != CornerNone {
		if grabbedFar != boundaryFar {
			return
		}
		if !boundaryFar {
			grow = -amount
		}
	}
	if !node.master {
		grow = -grow
	}
	ws.mfact = core.Clamp(ws.mfact+grow, MinSplitRatio, MaxSplitRatio)
}

func (m *Master) resizeInColumn(column []*masterNode, node *masterNode, amount float64, vertical, far bool, corner Corner) {
	i := slices.Index(column, node)
	if len(column) < 2 || i == -1 {
		return
	}

	var size, total float64
	for _, n := range column {
		total += n.weight
		if vertical {
			size += n.box.H
		} else {
			size += n.box.W
		}
	}
	if size <= 0 || total <= 0 {
		return
	}

	grow := amount / size
	j := i + 1
	if !far {
		j, grow = i-1, -grow
	}
	if j < 0 || j >= len(column) {
		if corner != CornerNone {
			return
		}
		j = 2*i - j
	}

	shares := make([]float64, len(column))
	for k, n := range column {
		shares[k] = n.weight / total
	}
	grow = core.Clamp(grow, MinSplitRatio-shares[i], shares[j]-MinSplitRatio)
	shares[i] += grow
	shares[j] -= grow
	for k, n := range column {
		n.weight = shares[k]
	}
}

func (m *Master) FullscreenRequestForWindow(h window.Handle, mode FullscreenMode, on bool) {
	if _, ok := m.nodes[h]; !ok {
		return
	}
	m.e.SetFullscreen(h, mode, on)
}

func (m *Master) LayoutMessage(header MessageHeader, command string) Reply {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ReplyUnhandled{}
	}

	switch fields[0] {
	case "swapwithmaster", "focusmaster", "cyclenext", "cycleprev", "swapnext", "swapprev",
		"addmaster", "removemaster", "mfact", "orientationleft", "orientationright",
		"orientationtop", "orientationbottom", "orientationnext", "orientationprev":
	default:
		return ReplyUnhandled{}
	}

	node, ok := m.nodes[header.Window]
	if !ok {
		return ReplyInvalid{Reason: "window is not tiled"}
	}
	ws := m.workspaces[node.workspace]

	switch fields[0] {
	case "swapwithmaster":
		other := ws.nodes[0]
		if node.master {
			stack := ws.stack()
			if len(stack) == 0 {
				return ReplyInvalid{Reason: "stack is empty"}
			}
			other = stack[0]
		}
		if !m.e.SwitchWindows(node.window, other.window) {
			return ReplyInvalid{Reason: "windows can not be swapped"}
		}
	case "focusmaster":
		return ReplyFocus{Window: ws.nodes[0].window}
	case "cyclenext", "cycleprev":
		return ReplyFocus{Window: ws.cycle(node, fields[0] == "cyclenext").window}
	case "swapnext", "swapprev":
		other := ws.cycle(node, fields[0] == "swapnext")
		if other == node {
			return ReplyInvalid{Reason: "nothing to swap with"}
		}
		if !m.e.SwitchWindows(node.window, other.window) {
			return ReplyInvalid{Reason: "windows can not be swapped"}
		}
	case "addmaster":
		stack := ws.stack()
		if len(stack) < 2 {
			return ReplyInvalid{Reason: "stack would be empty"}
		}
		stack[0].master = true
		m.recalculateWorkspace(node.workspace)
	case "removemaster":
		masters := ws.masters()
		if len(masters) < 2 {
			return ReplyInvalid{Reason: "last master"}
		}
		masters[len(masters)-1].master = false
		m.recalculateWorkspace(node.workspace)
	case "mfact":
		value, exact, err := parseRatioArgs(fields[1:])
		if err != nil {
			return ReplyInvalid{Reason: err.Error()}
		}
		m.e.AlterSplitRatio(node.window, value, exact)
	case "orientationnext":
		ws.orientation = (ws.orientation + 1) % Orientation(len(orientationNames))
		m.recalculateWorkspace(node.workspace)
	case "orientationprev":
		ws.orientation = (ws.orientation + Orientation(len(orientationNames)) - 1) % Orientation(len(orientationNames))
		m.recalculateWorkspace(node.workspace)
	default:
		o, err := ParseOrientation(strings.TrimPrefix(fields[0], "orientation"))
		if err != nil {
			return ReplyInvalid{Reason: err.Error()}
		}
		ws.orientation = o
		m.recalculateWorkspace(node.workspace)
	}

	return ReplyOK{}
}

func (w *masterWorkspace) cycle(node *masterNode, forward bool) *masterNode {
	i := slices.Index(w.nodes, node)
	if forward {
		return w.nodes[(i+1)%len(w.nodes)]
	}
	return w.nodes[(i-1+len(w.nodes))%len(w.nodes)]
}

func (m *Master) RequestRenderHints(h window.Handle) RenderHints {
	return m.e.GroupRenderHints(h)
}

// SwitchWindows swaps the windows of two tiles. Tile sizes stay in place.
func (m *Master) SwitchWindows(a, b window.Handle) bool {
	na, ok := m.nodes[a]
	if !ok {
		return false
	}
	nb, ok := m.nodes[b]
	if !ok || na.workspace != nb.workspace {
		return false
	}

	na.window, nb.window = b, a
	m.nodes[a], m.nodes[b] = nb, na
	m.recalculateWorkspace(na.workspace)
	return true
}

// MoveWindowTo swaps h with its neighbor in dir.
func (m *Master) MoveWindowTo(h window.Handle, dir Direction) bool {
	if _, ok := m.nodes[h]; !ok {
		return false
	}
	target, ok := m.e.Neighbor(h, dir)
	if !ok {
		return false
	}
	return m.SwitchWindows(h, target)
}

// AlterSplitRatio changes the master factor of the workspace of h.
func (m *Master) AlterSplitRatio(h window.Handle, value float64, exact bool) bool {
	node, ok := m.nodes[h]
	if !ok {
		return false
	}
	ws := m.workspaces[node.workspace]
	if !exact {
		value += ws.mfact
	}
	ws.mfact = core.Clamp(value, MinSplitRatio, MaxSplitRatio)
	m.recalculateWorkspace(node.workspace)
	return true
}

func (m *Master) ReplaceWindowDataWith(from, to window.Handle) {
	node, ok := m.nodes[from]
	if !ok {
		return
	}
	delete(m.nodes, from)
	node.window = to
	m.nodes[to] = node
}

func (m *Master) Tiles(workspace int) []window.Handle {
	ws, ok := m.workspaces[workspace]
	if !ok {
		return nil
	}
	list := make([]window.Handle, len(ws.nodes))
	for i, n := range ws.nodes {
		list[i] = n.window
	}
	return list
}

func (m *Master) Workspaces() []int {
	list := make([]int, 0, len(m.workspaces))
	for ws := range m.workspaces {
		list = append(list, ws)
	}
	slices.Sort(list)
	return list
}

func (m *Master) Describe(workspace int) (TreeNode, bool) {
	ws, ok := m.workspaces[workspace]
	if !ok {
		return TreeNode{}, false
	}

	split := "vertical"
	if !ws.orientation.horizontal() {
		split = "horizontal"
	}
	column := func(nodes []*masterNode, share float64) TreeNode {
		var total float64
		for _, n := range nodes {
			total += n.weight
		}
		t := TreeNode{Split: split, Share: share}
		for _, n := range nodes {
			h := n.window
			t.Children = append(t.Children, TreeNode{Window: &h, Share: n.weight / total, Box: n.box})
		}
		return t
	}

	root := TreeNode{Split: "master " + ws.orientation.String(), Share: 1, Box: ws.area}
	if len(ws.stack()) == 0 {
		root.Children = []TreeNode{column(ws.masters(), 1)}
	} else {
		root.Children = []TreeNode{column(ws.masters(), ws.mfact), column(ws.stack(), 1-ws.mfact)}
	}
	return root, true
}
