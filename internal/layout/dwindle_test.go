package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ItsNotGoodName/x-tilewm/internal/geom"
	"github.com/ItsNotGoodName/x-tilewm/internal/window"
)

func describe(t *testing.T, f *fixture) TreeNode {
	t.Helper()
	tree, ok := f.e.Strategy().Describe(1)
	require.True(t, ok)
	return tree
}

func TestDwindleSoleOccupant(t *testing.T) {
	f := newFixture(t, DwindleName, DefaultConfig())
	a := f.open(DirectionDefault)

	f.assertBox(geom.Box{W: 1000, H: 1000}, a)
	tree := describe(t, f)
	require.NotNil(t, tree.Window)
	assert.Equal(t, a, *tree.Window)
	assert.Equal(t, 1.0, tree.Share)
}

func TestDwindleSplitRight(t *testing.T) {
	f := newFixture(t, DwindleName, DefaultConfig())
	a := f.open(DirectionDefault)
	b := f.open(DirectionRight)

	tree := describe(t, f)
	assert.Equal(t, "horizontal", tree.Split)
	require.Len(t, tree.Children, 2)
	assert.Equal(t, a, *tree.Children[0].Window)
	assert.Equal(t, b, *tree.Children[1].Window)
	assert.Equal(t, 0.5, tree.Children[0].Share)
	assert.Equal(t, 0.5, tree.Children[1].Share)

	f.assertBox(geom.Box{W: 500, H: 1000}, a)
	f.assertBox(geom.Box{X: 500, W: 500, H: 1000}, b)
}

func TestDwindleSplitTowardsDirection(t *testing.T) {
	f := newFixture(t, DwindleName, DefaultConfig())
	a := f.open(DirectionDefault)
	b := f.open(DirectionLeft)
	f.assertBox(geom.Box{X: 500, W: 500, H: 1000}, a)
	f.assertBox(geom.Box{W: 500, H: 1000}, b)

	f.e.RequestFocusForWindow(a)
	c := f.open(DirectionUp)
	f.assertBox(geom.Box{X: 500, W: 500, H: 500}, c)
	f.assertBox(geom.Box{X: 500, Y: 500, W: 500, H: 500}, a)
}

func TestDwindleQuarterWidth(t *testing.T) {
	f := newFixture(t, DwindleName, DefaultConfig())
	a := f.open(DirectionDefault)
	b := f.open(DirectionRight)
	f.e.RequestFocusForWindow(b)
	c := f.open(DirectionRight)

	f.assertBox(geom.Box{W: 500, H: 1000}, a)
	f.assertBox(geom.Box{X: 500, W: 250, H: 1000}, b)
	f.assertBox(geom.Box{X: 750, W: 250, H: 1000}, c)
}

func TestDwindleDefaultDirectionFollowsShape(t *testing.T) {
	f := newFixture(t, DwindleName, DefaultConfig())
	f.open(DirectionDefault)
	b := f.open(DirectionDefault)
	f.e.RequestFocusForWindow(b)
	c := f.open(DirectionDefault)

	f.assertBox(geom.Box{X: 500, W: 500, H: 500}, b)
	f.assertBox(geom.Box{X: 500, Y: 500, W: 500, H: 500}, c)
}

func TestDwindleForceSplitFirst(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dwindle.ForceSplit = 1
	f := newFixture(t, DwindleName, cfg)
	a := f.open(DirectionDefault)
	b := f.open(DirectionDefault)

	f.assertBox(geom.Box{W: 500, H: 1000}, b)
	f.assertBox(geom.Box{X: 500, W: 500, H: 1000}, a)
}

func TestDwindleRemovalCollapses(t *testing.T) {
	f := newFixture(t, DwindleName, DefaultConfig())
	a := f.open(DirectionDefault)
	b := f.open(DirectionRight)
	f.e.RequestFocusForWindow(b)
	c := f.open(DirectionDown)

	f.assertBox(geom.Box{X: 500, W: 500, H: 500}, b)
	f.assertBox(geom.Box{X: 500, Y: 500, W: 500, H: 500}, c)

	f.reg.Destroy(b)
	f.e.OnWindowRemoved(b)
	f.assertBox(geom.Box{X: 500, W: 500, H: 1000}, c)
	tree := describe(t, f)
	assert.Equal(t, []window.Handle{a, c}, []window.Handle{*tree.Children[0].Window, *tree.Children[1].Window})

	f.e.OnWindowRemoved(a)
	f.assertBox(geom.Box{W: 1000, H: 1000}, c)

	f.e.OnWindowRemoved(c)
	_, ok := f.e.Strategy().Describe(1)
	assert.False(t, ok)
	assert.Empty(t, f.e.Strategy().Workspaces())
}

func TestDwindleGaps(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GapsIn = 5
	cfg.GapsOut = 20
	f := newFixture(t, DwindleName, cfg)
	a := f.open(DirectionDefault)
	f.assertBox(geom.Box{X: 25, Y: 25, W: 950, H: 950}, a)

	b := f.open(DirectionRight)
	f.assertBox(geom.Box{X: 25, Y: 25, W: 470, H: 950}, a)
	f.assertBox(geom.Box{X: 505, Y: 25, W: 470, H: 950}, b)

	f.e.OnWindowRemoved(b)
	cfg.Dwindle.NoGapsWhenOnly = true
	f.e.SetConfig(cfg)
	f.assertBox(geom.Box{W: 1000, H: 1000}, a)
}

// checkShares walks the tree and checks that siblings share their parent and
// that leaves cover the whole area.
func checkShares(t *testing.T, n TreeNode) float64 {
	t.Helper()
	assert.GreaterOrEqual(t, n.Share, MinSplitRatio-1e-9)
	if n.Window != nil {
		return n.Box.W * n.Box.H
	}

	require.Len(t, n.Children, 2)
	assert.InDelta(t, 1, n.Children[0].Share+n.Children[1].Share, 1e-9)
	return checkShares(t, n.Children[0]) + checkShares(t, n.Children[1])
}

func TestDwindleSharesSumToOne(t *testing.T) {
	f := newFixture(t, DwindleName, DefaultConfig())

	dirs := []Direction{DirectionDefault, DirectionRight, DirectionDown, DirectionLeft, DirectionUp, DirectionDefault, DirectionRight, DirectionDown}
	ratios := []float64{0.3, -0.7, 0.2, 0.9, -0.1, 0.05, -0.4, 0.6}
	var windows []window.Handle
	for i, dir := range dirs {
		h := f.open(dir)
		windows = append(windows, h)
		f.e.RequestFocusForWindow(h)
		f.e.AlterSplitRatio(h, ratios[i], false)

		area := checkShares(t, describe(t, f))
		assert.InDelta(t, 1000*1000, area, 1e-6)
	}

	for _, h := range windows[:5] {
		f.e.OnWindowRemoved(h)
		area := checkShares(t, describe(t, f))
		assert.InDelta(t, 1000*1000, area, 1e-6)
	}
}

func TestDwindleAlterSplitRatio(t *testing.T) {
	f := newFixture(t, DwindleName, DefaultConfig())
	a := f.open(DirectionDefault)
	assert.False(t, f.e.AlterSplitRatio(a, 0.1, false))

	b := f.open(DirectionRight)

	require.True(t, f.e.AlterSplitRatio(a, 0.1, false))
	f.assertBox(geom.Box{W: 600, H: 1000}, a)
	ev, _ := f.events.last("splitratio")
	assert.Equal(t, a.String()+",0.1", ev.Data)

	require.True(t, f.e.AlterSplitRatio(b, 0.3, true))
	f.assertBox(geom.Box{W: 700, H: 1000}, a)

	require.True(t, f.e.AlterSplitRatio(a, 5, false))
	f.assertBox(geom.Box{W: 950, H: 1000}, a)

	require.True(t, f.e.AlterSplitRatio(a, 0, true))
	f.assertBox(geom.Box{W: 50, H: 1000}, a)
}

func TestDwindleResizeTiled(t *testing.T) {
	f := newFixture(t, DwindleName, DefaultConfig())
	a := f.open(DirectionDefault)
	b := f.open(DirectionRight)

	f.e.ResizeActiveWindow(geom.Vec(100, 0), CornerNone, a)
	f.assertBox(geom.Box{W: 600, H: 1000}, a)

	// b has no split on its right edge and grows to the left.
	f.e.ResizeActiveWindow(geom.Vec(200, 0), CornerNone, b)
	f.assertBox(geom.Box{X: 400, W: 600, H: 1000}, b)

	// A top left corner moves the left edge.
	f.e.ResizeActiveWindow(geom.Vec(-50, 0), CornerTopLeft, b)
	f.assertBox(geom.Box{X: 350, W: 650, H: 1000}, b)

	// There is no split above b.
	f.e.ResizeActiveWindow(geom.Vec(0, 100), CornerTopLeft, b)
	f.assertBox(geom.Box{X: 350, W: 650, H: 1000}, b)

	f.e.ResizeActiveWindow(geom.Vec(-5000, 0), CornerNone, a)
	f.assertBox(geom.Box{W: 50, H: 1000}, a)
}

func TestDwindleDragResizeTiled(t *testing.T) {
	f := newFixture(t, DwindleName, DefaultConfig())
	a := f.open(DirectionDefault)
	b := f.open(DirectionRight)
	f.e.RequestFocusForWindow(a)

	require.True(t, f.e.OnBeginDragWindow(DragResize, geom.Vec(450, 900)))
	assert.Equal(t, CornerBottomRight, f.e.Drag().Corner())
	for x := 460.0; x <= 2000; x += 10 {
		f.e.OnMouseMove(geom.Vec(x, 900))
		tree := describe(t, f)
		assert.GreaterOrEqual(t, tree.Children[0].Share, MinSplitRatio)
		assert.LessOrEqual(t, tree.Children[0].Share, MaxSplitRatio)
	}
	f.e.OnEndDragWindow()

	f.assertBox(geom.Box{W: 950, H: 1000}, a)
	f.assertBox(geom.Box{X: 950, W: 50, H: 1000}, b)
}

func TestDwindleMoveWindowTo(t *testing.T) {
	f := newFixture(t, DwindleName, DefaultConfig())
	a := f.open(DirectionDefault)
	b := f.open(DirectionRight)
	f.e.RequestFocusForWindow(b)
	c := f.open(DirectionDown)

	require.True(t, f.e.MoveWindowTo(a, DirectionRight))
	assert.Len(t, f.e.Strategy().Tiles(1), 3)
	f.assertBox(geom.Box{W: 500, H: 500}, b)
	f.assertBox(geom.Box{X: 500, W: 500, H: 500}, a)
	f.assertBox(geom.Box{Y: 500, W: 1000, H: 500}, c)

	ev, _ := f.events.last("movewindow")
	assert.Equal(t, a.String()+",r", ev.Data)

	// a is at the right edge now.
	assert.False(t, f.e.MoveWindowTo(a, DirectionRight))
	assert.False(t, f.e.MoveWindowTo(a, DirectionDefault))
}

func TestDwindleMessages(t *testing.T) {
	f := newFixture(t, DwindleName, DefaultConfig())
	a := f.open(DirectionDefault)
	b := f.open(DirectionRight)
	header := MessageHeader{Window: a}

	assert.Equal(t, ReplyOK{}, f.e.LayoutMessage(header, "togglesplit"))
	f.assertBox(geom.Box{W: 1000, H: 500}, a)
	f.assertBox(geom.Box{Y: 500, W: 1000, H: 500}, b)

	assert.Equal(t, ReplyOK{}, f.e.LayoutMessage(header, "swapsplit"))
	f.assertBox(geom.Box{Y: 500, W: 1000, H: 500}, a)

	assert.Equal(t, ReplyOK{}, f.e.LayoutMessage(header, "splitratio exact 0.3"))
	f.assertBox(geom.Box{Y: 700, W: 1000, H: 300}, a)
	assert.IsType(t, ReplyInvalid{}, f.e.LayoutMessage(header, "splitratio"))

	f.e.RequestFocusForWindow(a)
	assert.Equal(t, ReplyOK{}, f.e.LayoutMessage(MessageHeader{}, "preselect l"))
	c := f.open(DirectionDefault)
	f.assertBox(geom.Box{Y: 700, W: 500, H: 300}, c)
	f.assertBox(geom.Box{X: 500, Y: 700, W: 500, H: 300}, a)

	assert.IsType(t, ReplyInvalid{}, f.e.LayoutMessage(header, "preselect"))
	assert.IsType(t, ReplyInvalid{}, f.e.LayoutMessage(header, "preselect diagonal"))

	floating := f.openFloating(geom.Box{W: 10, H: 10})
	assert.IsType(t, ReplyInvalid{}, f.e.LayoutMessage(MessageHeader{Window: floating}, "togglesplit"))
}
