package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ItsNotGoodName/x-tilewm/internal/bus"
	"github.com/ItsNotGoodName/x-tilewm/internal/geom"
	"github.com/ItsNotGoodName/x-tilewm/internal/window"
)

type recorder struct {
	events []bus.Event
}

func (r *recorder) PostEvent(name, data string, force bool) {
	r.events = append(r.events, bus.Event{Name: name, Data: data})
}

func (r *recorder) names() []string {
	names := make([]string, len(r.events))
	for i, ev := range r.events {
		names[i] = ev.Name
	}
	return names
}

func (r *recorder) last(name string) (bus.Event, bool) {
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Name == name {
			return r.events[i], true
		}
	}
	return bus.Event{}, false
}

type fixture struct {
	t      *testing.T
	reg    *window.Registry
	mons   *window.Monitors
	events *recorder
	e      *Engine
}

func newFixture(t *testing.T, strategy string, cfg Config) *fixture {
	t.Helper()

	f := &fixture{
		t:      t,
		reg:    window.NewRegistry(),
		mons:   window.NewMonitors(window.Monitor{ID: 1, Name: "screen", Box: geom.Box{W: 1000, H: 1000}, ActiveWorkspace: 1}),
		events: &recorder{},
	}
	e, err := New(strategy, f.reg, f.mons, f.events, cfg)
	require.NoError(t, err)
	f.e = e

	return f
}

func (f *fixture) create(workspace int) window.Handle {
	return f.reg.Create(window.Spec{Workspace: workspace, Class: "term", Title: "shell"})
}

func (f *fixture) open(dir Direction) window.Handle {
	h := f.create(1)
	f.e.OnWindowCreated(h, dir)
	return h
}

func (f *fixture) openFloating(box geom.Box) window.Handle {
	h := f.reg.Create(window.Spec{Workspace: 1, Box: box})
	f.e.OnWindowCreatedFloating(h)
	return h
}

func (f *fixture) box(h window.Handle) geom.Box {
	f.t.Helper()
	attrs, ok := f.reg.Resolve(h)
	require.True(f.t, ok)
	return attrs.Box
}

func (f *fixture) visible(h window.Handle) bool {
	f.t.Helper()
	attrs, ok := f.reg.Resolve(h)
	require.True(f.t, ok)
	return attrs.Visible
}

func (f *fixture) assertBox(expected geom.Box, h window.Handle) {
	f.t.Helper()
	actual := f.box(h)
	assert.InDelta(f.t, expected.X, actual.X, 1e-6, "x of %s", actual)
	assert.InDelta(f.t, expected.Y, actual.Y, 1e-6, "y of %s", actual)
	assert.InDelta(f.t, expected.W, actual.W, 1e-6, "w of %s", actual)
	assert.InDelta(f.t, expected.H, actual.H, 1e-6, "h of %s", actual)
}

func TestNewUnknownStrategy(t *testing.T) {
	_, err := New("spiral", window.NewRegistry(), window.NewMonitors(), nil, DefaultConfig())
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestRegister(t *testing.T) {
	assert.Contains(t, Strategies(), DwindleName)
	assert.Contains(t, Strategies(), MasterName)
	assert.Panics(t, func() { Register(DwindleName, NewDwindle) })
}

func TestOpenAndCloseEvents(t *testing.T) {
	f := newFixture(t, DwindleName, DefaultConfig())

	a := f.open(DirectionDefault)
	ev, ok := f.events.last("openwindow")
	require.True(t, ok)
	assert.Equal(t, a.String()+",1,term,shell", ev.Data)

	f.reg.Destroy(a)
	f.e.OnWindowRemoved(a)
	ev, ok = f.events.last("closewindow")
	require.True(t, ok)
	assert.Equal(t, a.String(), ev.Data)

	// Removing twice is a no-op.
	f.e.OnWindowRemoved(a)
	assert.Equal(t, []string{"openwindow", "closewindow"}, f.events.names())
}

func TestCreateIgnoresStaleAndUnmapped(t *testing.T) {
	f := newFixture(t, DwindleName, DefaultConfig())

	stale := f.create(1)
	f.reg.Destroy(stale)
	f.e.OnWindowCreated(stale, DirectionDefault)

	unmapped := f.create(1)
	f.reg.SetMapped(unmapped, false)
	f.e.OnWindowCreated(unmapped, DirectionDefault)

	assert.Empty(t, f.e.Strategy().Tiles(1))
	assert.Empty(t, f.events.events)
}

func TestFloatingCreation(t *testing.T) {
	f := newFixture(t, DwindleName, DefaultConfig())

	centered := f.openFloating(geom.Box{})
	f.assertBox(geom.Box{X: 100, Y: 200, W: 800, H: 600}, centered)

	placed := f.openFloating(geom.Box{X: 10, Y: 20, W: 300, H: 200})
	f.assertBox(geom.Box{X: 10, Y: 20, W: 300, H: 200}, placed)

	assert.Equal(t, []window.Handle{centered, placed}, f.e.Floating(1))
	assert.False(t, f.e.IsWindowTiled(centered))
}

func TestChangeWindowFloatingMode(t *testing.T) {
	f := newFixture(t, DwindleName, DefaultConfig())

	a := f.open(DirectionDefault)
	b := f.open(DirectionRight)

	require.True(t, f.e.ChangeWindowFloatingMode(b))
	f.assertBox(geom.Box{W: 1000, H: 1000}, a)
	f.assertBox(geom.Box{X: 100, Y: 200, W: 800, H: 600}, b)
	ev, _ := f.events.last("changefloatingmode")
	assert.Equal(t, b.String()+",1", ev.Data)

	f.e.MoveActiveWindow(geom.Vec(10, 10), b)
	f.assertBox(geom.Box{X: 110, Y: 210, W: 800, H: 600}, b)

	require.True(t, f.e.ChangeWindowFloatingMode(b))
	assert.True(t, f.e.IsWindowTiled(b))
	f.assertBox(geom.Box{X: 500, W: 500, H: 1000}, b)

	// The last floating geometry comes back.
	require.True(t, f.e.ChangeWindowFloatingMode(b))
	f.assertBox(geom.Box{X: 110, Y: 210, W: 800, H: 600}, b)

	f.reg.Destroy(b)
	assert.False(t, f.e.ChangeWindowFloatingMode(b))
}

func TestFloatingResizeClamp(t *testing.T) {
	f := newFixture(t, DwindleName, DefaultConfig())
	h := f.openFloating(geom.Box{X: 100, Y: 100, W: 200, H: 200})

	f.e.ResizeActiveWindow(geom.Vec(-1000, -1000), CornerBottomRight, h)
	f.assertBox(geom.Box{X: 100, Y: 100, W: MinFloatingSize, H: MinFloatingSize}, h)

	f.e.ResizeActiveWindow(geom.Vec(180, 180), CornerBottomRight, h)
	f.e.ResizeActiveWindow(geom.Vec(1000, 1000), CornerTopLeft, h)
	f.assertBox(geom.Box{X: 280, Y: 280, W: MinFloatingSize, H: MinFloatingSize}, h)
}

func TestFullscreenRestoresGeometry(t *testing.T) {
	f := newFixture(t, DwindleName, DefaultConfig())
	f.mons.SetReserved(1, geom.Vec(0, 30), geom.Vec(0, 0))

	a := f.open(DirectionDefault)
	b := f.open(DirectionRight)
	before := f.box(a)

	f.e.FullscreenRequestForWindow(a, FullscreenFull, true)
	assert.Equal(t, geom.Box{W: 1000, H: 1000}, f.box(a))
	node, _ := f.e.Node(a)
	assert.Equal(t, FullscreenFull, node.Fullscreen)

	f.e.FullscreenRequestForWindow(a, FullscreenMaximized, true)
	assert.Equal(t, geom.Box{Y: 30, W: 1000, H: 970}, f.box(a))

	f.e.FullscreenRequestForWindow(a, FullscreenNone, false)
	assert.Equal(t, before, f.box(a))

	// The layout changed while fullscreen.
	f.e.FullscreenRequestForWindow(a, FullscreenFull, true)
	f.e.OnWindowRemoved(b)
	assert.Equal(t, geom.Box{W: 1000, H: 1000}, f.box(a))
	f.e.FullscreenRequestForWindow(a, FullscreenFull, false)
	assert.Equal(t, geom.Box{Y: 30, W: 1000, H: 970}, f.box(a))
}

func TestOneFullscreenPerWorkspace(t *testing.T) {
	f := newFixture(t, DwindleName, DefaultConfig())
	a := f.open(DirectionDefault)
	b := f.open(DirectionRight)

	f.e.FullscreenRequestForWindow(a, FullscreenFull, true)
	f.e.FullscreenRequestForWindow(b, FullscreenFull, true)

	na, _ := f.e.Node(a)
	nb, _ := f.e.Node(b)
	assert.Equal(t, FullscreenNone, na.Fullscreen)
	assert.Equal(t, FullscreenFull, nb.Fullscreen)
	f.assertBox(geom.Box{W: 500, H: 1000}, a)
}

func TestFloatingFullscreen(t *testing.T) {
	f := newFixture(t, DwindleName, DefaultConfig())
	h := f.openFloating(geom.Box{X: 10, Y: 10, W: 100, H: 100})

	f.e.FullscreenRequestForWindow(h, FullscreenFull, true)
	assert.Equal(t, geom.Box{W: 1000, H: 1000}, f.box(h))

	// Fullscreen windows ignore drags.
	f.e.MoveActiveWindow(geom.Vec(5, 5), h)
	f.e.ResizeActiveWindow(geom.Vec(5, 5), CornerNone, h)
	assert.Equal(t, geom.Box{W: 1000, H: 1000}, f.box(h))

	f.e.FullscreenRequestForWindow(h, FullscreenFull, false)
	assert.Equal(t, geom.Box{X: 10, Y: 10, W: 100, H: 100}, f.box(h))
}

func TestFocus(t *testing.T) {
	f := newFixture(t, DwindleName, DefaultConfig())
	a := f.open(DirectionDefault)

	f.e.RequestFocusForWindow(a)
	assert.Equal(t, a, f.e.Focused())
	ev, _ := f.events.last("activewindow")
	assert.Equal(t, a.String(), ev.Data)

	f.e.OnWindowFocusChange(window.Handle{})
	assert.True(t, f.e.Focused().IsZero())

	f.e.RequestFocusForWindow(a)
	f.e.OnWindowRemoved(a)
	assert.True(t, f.e.Focused().IsZero())
}

func TestGetNextWindowCandidate(t *testing.T) {
	f := newFixture(t, DwindleName, DefaultConfig())
	a := f.open(DirectionDefault)
	b := f.open(DirectionRight)
	c := f.open(DirectionDown)
	fl := f.openFloating(geom.Box{W: 100, H: 100})

	next := func(h window.Handle) window.Handle {
		t.Helper()
		n, ok := f.e.GetNextWindowCandidate(h)
		require.True(t, ok)
		return n
	}
	assert.Equal(t, b, next(a))
	assert.Equal(t, c, next(b))
	assert.Equal(t, fl, next(c))
	assert.Equal(t, a, next(fl))

	f.reg.SetMapped(b, false)
	assert.Equal(t, c, next(a))

	other := f.create(2)
	f.e.OnWindowCreated(other, DirectionDefault)
	_, ok := f.e.GetNextWindowCandidate(other)
	assert.False(t, ok)
}

func TestSwitchWindows(t *testing.T) {
	f := newFixture(t, DwindleName, DefaultConfig())
	a := f.open(DirectionDefault)
	b := f.open(DirectionRight)

	require.True(t, f.e.SwitchWindows(a, b))
	f.assertBox(geom.Box{X: 500, W: 500, H: 1000}, a)
	f.assertBox(geom.Box{W: 500, H: 1000}, b)
	ev, _ := f.events.last("swapwindows")
	assert.Equal(t, a.String()+","+b.String(), ev.Data)

	other := f.create(2)
	f.e.OnWindowCreated(other, DirectionDefault)
	assert.False(t, f.e.SwitchWindows(a, other))
	assert.False(t, f.e.SwitchWindows(a, a))
}

func TestReplaceWindowDataWith(t *testing.T) {
	f := newFixture(t, DwindleName, DefaultConfig())
	a := f.open(DirectionDefault)
	b := f.open(DirectionRight)
	f.e.RequestFocusForWindow(a)

	x := f.create(1)
	require.True(t, f.e.ReplaceWindowDataWith(a, x))
	f.assertBox(geom.Box{W: 500, H: 1000}, x)
	assert.Equal(t, x, f.e.Focused())
	assert.Equal(t, []window.Handle{x, b}, f.e.Strategy().Tiles(1))

	_, ok := f.e.Node(a)
	assert.False(t, ok)
	assert.False(t, f.e.ReplaceWindowDataWith(x, b))
}

func TestDragMoveFloating(t *testing.T) {
	f := newFixture(t, DwindleName, DefaultConfig())
	h := f.openFloating(geom.Box{X: 100, Y: 100, W: 200, H: 200})

	assert.False(t, f.e.OnBeginDragWindow(DragMove, geom.Vec(150, 150)))
	assert.False(t, f.e.Drag().Active())

	f.e.RequestFocusForWindow(h)
	require.True(t, f.e.OnBeginDragWindow(DragMove, geom.Vec(150, 150)))
	assert.Equal(t, h, f.e.Drag().Window())

	path := []geom.Vector2D{{X: 151, Y: 150}, {X: 160, Y: 140}, {X: 160, Y: 140}, {X: 180, Y: 170}}
	for _, p := range path {
		f.e.OnMouseMove(p)
	}
	f.e.OnEndDragWindow()

	assert.False(t, f.e.Drag().Active())
	f.assertBox(geom.Box{X: 130, Y: 120, W: 200, H: 200}, h)
}

func TestActiveWindowNeedsDragOrWindow(t *testing.T) {
	f := newFixture(t, DwindleName, DefaultConfig())
	h := f.openFloating(geom.Box{X: 100, Y: 100, W: 200, H: 200})
	f.e.RequestFocusForWindow(h)
	require.Equal(t, h, f.e.Focused())

	f.e.ResizeActiveWindow(geom.Vec(50, 50), CornerBottomRight, window.Handle{})
	f.e.MoveActiveWindow(geom.Vec(30, 30), window.Handle{})
	assert.False(t, f.e.Drag().Active())
	f.assertBox(geom.Box{X: 100, Y: 100, W: 200, H: 200}, h)

	// During a drag the zero handle means the dragged window.
	require.True(t, f.e.OnBeginDragWindow(DragMove, geom.Vec(150, 150)))
	f.e.MoveActiveWindow(geom.Vec(30, 30), window.Handle{})
	f.assertBox(geom.Box{X: 130, Y: 130, W: 200, H: 200}, h)
	f.e.ResizeActiveWindow(geom.Vec(50, 50), CornerBottomRight, window.Handle{})
	f.assertBox(geom.Box{X: 130, Y: 130, W: 250, H: 250}, h)
}

func TestMouseMoveAfterDragEnd(t *testing.T) {
	f := newFixture(t, DwindleName, DefaultConfig())
	h := f.openFloating(geom.Box{X: 100, Y: 100, W: 200, H: 200})
	f.e.RequestFocusForWindow(h)

	require.True(t, f.e.OnBeginDragWindow(DragMove, geom.Vec(150, 150)))
	f.e.OnMouseMove(geom.Vec(160, 160))
	f.e.OnEndDragWindow()
	f.assertBox(geom.Box{X: 110, Y: 110, W: 200, H: 200}, h)

	f.e.OnMouseMove(geom.Vec(400, 400))
	f.e.OnMouseMove(geom.Vec(10, 10))
	assert.False(t, f.e.Drag().Active())
	f.assertBox(geom.Box{X: 110, Y: 110, W: 200, H: 200}, h)
}

func TestDragResizeCorner(t *testing.T) {
	f := newFixture(t, DwindleName, DefaultConfig())
	h := f.openFloating(geom.Box{X: 100, Y: 200, W: 800, H: 600})
	f.e.RequestFocusForWindow(h)

	require.True(t, f.e.OnBeginDragWindow(DragResize, geom.Vec(120, 220)))
	assert.Equal(t, CornerTopLeft, f.e.Drag().Corner())

	f.e.OnMouseMove(geom.Vec(130, 240))
	f.assertBox(geom.Box{X: 110, Y: 220, W: 790, H: 580}, h)
	f.e.OnEndDragWindow()
}

func TestDragEndsWhenWindowGoesAway(t *testing.T) {
	f := newFixture(t, DwindleName, DefaultConfig())
	h := f.openFloating(geom.Box{X: 100, Y: 100, W: 200, H: 200})
	f.e.RequestFocusForWindow(h)

	require.True(t, f.e.OnBeginDragWindow(DragMove, geom.Vec(150, 150)))
	f.reg.Destroy(h)
	f.e.OnMouseMove(geom.Vec(200, 200))
	assert.False(t, f.e.Drag().Active())

	g := f.openFloating(geom.Box{X: 100, Y: 100, W: 200, H: 200})
	f.e.RequestFocusForWindow(g)
	require.True(t, f.e.OnBeginDragWindow(DragMove, geom.Vec(150, 150)))
	f.e.OnWindowRemoved(g)
	assert.False(t, f.e.Drag().Active())
}

func TestDragDropRetiles(t *testing.T) {
	f := newFixture(t, DwindleName, DefaultConfig())
	a := f.open(DirectionDefault)
	b := f.open(DirectionRight)
	f.e.RequestFocusForWindow(a)

	require.True(t, f.e.OnBeginDragWindow(DragMove, geom.Vec(250, 500)))
	f.e.OnMouseMove(geom.Vec(900, 500))
	f.assertBox(geom.Box{X: 650, W: 500, H: 1000}, a)
	f.e.OnEndDragWindow()

	f.assertBox(geom.Box{W: 500, H: 1000}, b)
	f.assertBox(geom.Box{X: 500, W: 500, H: 1000}, a)
	ev, _ := f.events.last("movewindow")
	assert.Equal(t, a.String()+",r", ev.Data)
}

func TestDragDropOutsideSnapsBack(t *testing.T) {
	f := newFixture(t, DwindleName, DefaultConfig())
	a := f.open(DirectionDefault)
	f.open(DirectionRight)
	f.e.RequestFocusForWindow(a)

	require.True(t, f.e.OnBeginDragWindow(DragMove, geom.Vec(250, 500)))
	f.e.OnMouseMove(geom.Vec(260, 510))
	f.e.OnEndDragWindow()

	f.assertBox(geom.Box{W: 500, H: 1000}, a)
}

func TestGroups(t *testing.T) {
	f := newFixture(t, DwindleName, DefaultConfig())
	a := f.open(DirectionDefault)
	b := f.open(DirectionRight)

	assert.Equal(t, ReplyOK{}, f.e.LayoutMessage(MessageHeader{Window: a}, "togglegroup"))
	hints := f.e.RequestRenderHints(a)
	assert.True(t, hints.IsBorderGradient)
	assert.Equal(t, DefaultConfig().GroupInactiveBorder, hints.BorderGradient)

	require.True(t, f.e.MoveIntoGroup(b, DirectionLeft))
	g, ok := f.e.Group(a)
	require.True(t, ok)
	assert.Equal(t, []window.Handle{a, b}, g.Members())
	assert.Equal(t, b, g.Active())
	assert.False(t, f.visible(a))
	assert.True(t, f.visible(b))
	f.assertBox(geom.Box{W: 1000, H: 1000}, b)
	assert.False(t, f.e.IsWindowReachable(a))
	_, ok = f.e.GetNextWindowCandidate(b)
	assert.False(t, ok)

	// Hidden members can not be floated.
	assert.False(t, f.e.ChangeWindowFloatingMode(a))

	require.True(t, f.e.ChangeGroupActive(b, true))
	assert.Equal(t, a, g.Active())
	assert.True(t, f.visible(a))
	assert.False(t, f.visible(b))

	f.e.RequestFocusForWindow(b)
	assert.Equal(t, b, g.Active())
	assert.Equal(t, b, f.e.Focused())
	assert.Equal(t, DefaultConfig().GroupActiveBorder, f.e.RequestRenderHints(b).BorderGradient)

	// Closing the active member hands the tile to the next one.
	f.e.OnWindowRemoved(b)
	assert.Equal(t, []window.Handle{a}, g.Members())
	assert.True(t, f.visible(a))
	assert.Equal(t, []window.Handle{a}, f.e.Strategy().Tiles(1))
	f.assertBox(geom.Box{W: 1000, H: 1000}, a)

	require.True(t, f.e.ToggleGroup(a))
	_, ok = f.e.Group(a)
	assert.False(t, ok)
	assert.False(t, f.e.RequestRenderHints(a).IsBorderGradient)
}

func TestBringWindowToTop(t *testing.T) {
	f := newFixture(t, DwindleName, DefaultConfig())
	a := f.open(DirectionDefault)
	b := f.open(DirectionRight)
	require.True(t, f.e.ToggleGroup(a))
	require.True(t, f.e.MoveIntoGroup(b, DirectionLeft))
	require.False(t, f.visible(a))

	f.e.BringWindowToTop(a)
	assert.True(t, f.visible(a))
	assert.False(t, f.visible(b))
	assert.True(t, f.e.IsWindowReachable(a))

	// Windows outside a group are left alone.
	c := f.openFloating(geom.Box{X: 10, Y: 10, W: 100, H: 100})
	f.e.BringWindowToTop(c)
	assert.True(t, f.visible(c))
}

func TestRecalculateWindow(t *testing.T) {
	f := newFixture(t, DwindleName, DefaultConfig())
	a := f.open(DirectionDefault)
	f.open(DirectionRight)

	f.reg.Configure(a, geom.Box{X: 7, Y: 7, W: 7, H: 7})
	f.e.RecalculateWindow(a)
	f.assertBox(geom.Box{W: 500, H: 1000}, a)

	h := f.openFloating(geom.Box{X: 10, Y: 10, W: 100, H: 100})
	f.reg.Configure(h, geom.Box{X: 1, Y: 1, W: 50, H: 50})
	f.e.RecalculateWindow(h)
	f.assertBox(geom.Box{X: 1, Y: 1, W: 50, H: 50}, h)
}

func TestToggleGroupDissolves(t *testing.T) {
	f := newFixture(t, DwindleName, DefaultConfig())
	a := f.open(DirectionDefault)
	b := f.open(DirectionRight)
	c := f.open(DirectionRight)

	require.True(t, f.e.ToggleGroup(a))
	require.True(t, f.e.MoveIntoGroup(b, DirectionLeft))
	require.True(t, f.e.MoveIntoGroup(c, DirectionLeft))
	assert.Equal(t, []window.Handle{c}, f.e.Strategy().Tiles(1))

	require.True(t, f.e.MoveOutOfGroup(b))
	assert.ElementsMatch(t, []window.Handle{c, b}, f.e.Strategy().Tiles(1))
	assert.True(t, f.visible(b))

	require.True(t, f.e.ToggleGroup(c))
	assert.ElementsMatch(t, []window.Handle{a, b, c}, f.e.Strategy().Tiles(1))
	for _, h := range []window.Handle{a, b, c} {
		assert.True(t, f.visible(h))
		assert.True(t, f.e.IsWindowReachable(h))
	}
	ev, _ := f.events.last("togglegroup")
	assert.Equal(t, "0,"+a.String()+","+c.String(), ev.Data)
}

func TestGroupMessages(t *testing.T) {
	f := newFixture(t, DwindleName, DefaultConfig())
	a := f.open(DirectionDefault)

	assert.Equal(t, ReplyInvalid{Reason: "missing direction"}, f.e.LayoutMessage(MessageHeader{Window: a}, "moveintogroup"))
	assert.IsType(t, ReplyInvalid{}, f.e.LayoutMessage(MessageHeader{Window: a}, "changegroupactive f"))
	assert.IsType(t, ReplyInvalid{}, f.e.LayoutMessage(MessageHeader{Window: a}, "moveintogroup x"))
	assert.Equal(t, ReplyUnhandled{}, f.e.LayoutMessage(MessageHeader{Window: a}, "frobnicate"))
	assert.Equal(t, ReplyUnhandled{}, f.e.LayoutMessage(MessageHeader{Window: a}, ""))
}

func TestSwitchLayout(t *testing.T) {
	f := newFixture(t, DwindleName, DefaultConfig())
	a := f.open(DirectionDefault)
	b := f.open(DirectionRight)
	c := f.open(DirectionDown)
	f.e.FullscreenRequestForWindow(c, FullscreenFull, true)

	require.NoError(t, f.e.SwitchLayout(MasterName))
	assert.Equal(t, MasterName, f.e.Strategy().Name())
	assert.Equal(t, []window.Handle{a, b, c}, f.e.Strategy().Tiles(1))
	f.assertBox(geom.Box{W: 550, H: 1000}, a)
	node, _ := f.e.Node(c)
	assert.Equal(t, FullscreenNone, node.Fullscreen)
	ev, _ := f.events.last("activelayout")
	assert.Equal(t, MasterName, ev.Data)

	require.NoError(t, f.e.SwitchLayout(MasterName))
	assert.ErrorIs(t, f.e.SwitchLayout("spiral"), ErrUnknownStrategy)
}

func TestSetConfig(t *testing.T) {
	f := newFixture(t, DwindleName, DefaultConfig())
	a := f.open(DirectionDefault)

	cfg := DefaultConfig()
	cfg.GapsOut = 10
	f.e.SetConfig(cfg)

	f.assertBox(geom.Box{X: 10, Y: 10, W: 980, H: 980}, a)
	_, ok := f.events.last("configreloaded")
	assert.False(t, ok)
}

func TestRecalculateMonitor(t *testing.T) {
	f := newFixture(t, DwindleName, DefaultConfig())
	a := f.open(DirectionDefault)
	b := f.open(DirectionRight)
	f.e.FullscreenRequestForWindow(b, FullscreenFull, true)

	f.mons.SetBox(1, geom.Box{W: 2000, H: 1000})
	f.e.RecalculateMonitor(1)

	f.assertBox(geom.Box{W: 1000, H: 1000}, a)
	f.assertBox(geom.Box{W: 2000, H: 1000}, b)
	f.e.FullscreenRequestForWindow(b, FullscreenFull, false)
	f.assertBox(geom.Box{X: 1000, W: 1000, H: 1000}, b)
}

func TestNearestNeighbor(t *testing.T) {
	from := geom.Box{W: 100, H: 100}
	a := window.NewRegistry()
	left, right, below, far := a.Create(window.Spec{}), a.Create(window.Spec{}), a.Create(window.Spec{}), a.Create(window.Spec{})
	candidates := []Candidate{
		{Window: far, Box: geom.Box{X: 300, W: 100, H: 100}},
		{Window: right, Box: geom.Box{X: 100, W: 100, H: 50}},
		{Window: below, Box: geom.Box{Y: 110, W: 100, H: 100}},
		{Window: left, Box: geom.Box{X: -100, Y: 200, W: 100, H: 100}},
	}

	h, ok := NearestNeighbor(from, DirectionRight, candidates)
	require.True(t, ok)
	assert.Equal(t, right, h)

	h, ok = NearestNeighbor(from, DirectionDown, candidates)
	require.True(t, ok)
	assert.Equal(t, below, h)

	// left does not overlap vertically.
	_, ok = NearestNeighbor(from, DirectionLeft, candidates)
	assert.False(t, ok)
	_, ok = NearestNeighbor(from, DirectionDefault, candidates)
	assert.False(t, ok)
}

func TestDropDirection(t *testing.T) {
	box := geom.Box{X: 100, Y: 100, W: 100, H: 100}
	assert.Equal(t, DirectionLeft, dropDirection(box, geom.Vec(110, 150)))
	assert.Equal(t, DirectionRight, dropDirection(box, geom.Vec(190, 150)))
	assert.Equal(t, DirectionUp, dropDirection(box, geom.Vec(150, 105)))
	assert.Equal(t, DirectionDown, dropDirection(box, geom.Vec(150, 199)))
}

func TestParseDirection(t *testing.T) {
	for s, expected := range map[string]Direction{"l": DirectionLeft, "right": DirectionRight, "u": DirectionUp, "b": DirectionDown, "": DirectionDefault} {
		dir, err := ParseDirection(s)
		require.NoError(t, err)
		assert.Equal(t, expected, dir, s)
	}
	_, err := ParseDirection("sideways")
	assert.Error(t, err)
}

func TestAnchorPolicy(t *testing.T) {
	reg := window.NewRegistry()
	mons := window.NewMonitors(window.Monitor{ID: 1, Box: geom.Box{W: 1000, H: 1000}, ActiveWorkspace: 1})
	e, err := New(DwindleName, reg, mons, nil, DefaultConfig(), WithAnchorPolicy(FirstTileAnchor))
	require.NoError(t, err)

	open := func(dir Direction) window.Handle {
		h := reg.Create(window.Spec{Workspace: 1})
		e.OnWindowCreated(h, dir)
		return h
	}
	a := open(DirectionDefault)
	b := open(DirectionRight)
	c := open(DirectionDown)

	// c split a instead of the last tile.
	assert.Equal(t, []window.Handle{a, c, b}, e.Strategy().Tiles(1))
}
