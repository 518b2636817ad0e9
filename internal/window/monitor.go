package window

import (
	"slices"

	"github.com/ItsNotGoodName/x-tilewm/internal/geom"
)

type Monitor struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	// Box is the full output area.
	Box geom.Box `json:"box"`
	// ReservedTopLeft and ReservedBottomRight are taken by bars and panels.
	ReservedTopLeft     geom.Vector2D `json:"reservedTopLeft"`
	ReservedBottomRight geom.Vector2D `json:"reservedBottomRight"`
	ActiveWorkspace     int           `json:"activeWorkspace"`
}

// Usable is the output area minus the reserved area.
func (m Monitor) Usable() geom.Box {
	return geom.Box{
		X: m.Box.X + m.ReservedTopLeft.X,
		Y: m.Box.Y + m.ReservedTopLeft.Y,
		W: m.Box.W - m.ReservedTopLeft.X - m.ReservedBottomRight.X,
		H: m.Box.H - m.ReservedTopLeft.Y - m.ReservedBottomRight.Y,
	}
}

// Monitors tracks outputs and which workspace lives on which output.
type Monitors struct {
	monitors   []Monitor
	workspaces map[int]int
}

func NewMonitors(monitors ...Monitor) *Monitors {
	m := &Monitors{workspaces: make(map[int]int)}
	for _, mon := range monitors {
		m.Add(mon)
	}
	return m
}

// Add registers a monitor and assigns its active workspace to it.
func (m *Monitors) Add(mon Monitor) {
	if idx := m.index(mon.ID); idx != -1 {
		m.monitors[idx] = mon
	} else {
		m.monitors = append(m.monitors, mon)
	}
	m.workspaces[mon.ActiveWorkspace] = mon.ID
}

func (m *Monitors) index(id int) int {
	return slices.IndexFunc(m.monitors, func(mon Monitor) bool { return mon.ID == id })
}

func (m *Monitors) Monitor(id int) (Monitor, bool) {
	idx := m.index(id)
	if idx == -1 {
		return Monitor{}, false
	}
	return m.monitors[idx], true
}

// SetBox updates the output area, e.g. after the root window was resized.
func (m *Monitors) SetBox(id int, box geom.Box) bool {
	idx := m.index(id)
	if idx == -1 {
		return false
	}
	m.monitors[idx].Box = box
	return true
}

// SetReserved updates the reserved area of a monitor.
func (m *Monitors) SetReserved(id int, topLeft, bottomRight geom.Vector2D) bool {
	idx := m.index(id)
	if idx == -1 {
		return false
	}
	m.monitors[idx].ReservedTopLeft = topLeft
	m.monitors[idx].ReservedBottomRight = bottomRight
	return true
}

// AssignWorkspace places a workspace on a monitor.
func (m *Monitors) AssignWorkspace(workspace, id int) {
	m.workspaces[workspace] = id
}

// WorkspaceMonitor returns the monitor a workspace is on. Unassigned
// workspaces fall back to the first monitor.
func (m *Monitors) WorkspaceMonitor(workspace int) (Monitor, bool) {
	if id, ok := m.workspaces[workspace]; ok {
		return m.Monitor(id)
	}
	if len(m.monitors) == 0 {
		return Monitor{}, false
	}
	return m.monitors[0], true
}

// Workspaces returns every workspace assigned to the monitor, sorted.
func (m *Monitors) Workspaces(id int) []int {
	var list []int
	for ws, mon := range m.workspaces {
		if mon == id {
			list = append(list, ws)
		}
	}
	slices.Sort(list)
	return list
}

func (m *Monitors) List() []Monitor {
	return slices.Clone(m.monitors)
}
