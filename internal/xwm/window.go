package xwm

import (
	"log/slog"

	"github.com/ItsNotGoodName/x-tilewm/internal/geom"
	"github.com/ItsNotGoodName/x-tilewm/internal/window"
	"github.com/ItsNotGoodName/x-tilewm/internal/xcursor"
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// Backgrounds cycles through the colours of new windows.
var backgrounds = []uint32{0x2e3440, 0x3b4252, 0x434c5e, 0x4c566a, 0x5e6e5e, 0x6e5e6e}

// XBackend shows managed windows as X subwindows of one container window.
type XBackend struct {
	conn        *xgb.Conn
	screen      *xproto.ScreenInfo
	container   xproto.Window
	width       uint16
	height      uint16
	borderWidth uint16
	cursors     *xcursor.Cache

	wids    map[window.Handle]xproto.Window
	handles map[xproto.Window]window.Handle
	created int
}

// NewXBackend creates and maps the container window on the default screen.
func NewXBackend(conn *xgb.Conn, borderWidth int) (*XBackend, error) {
	screen := xproto.Setup(conn).DefaultScreen(conn)
	cursors := xcursor.NewCache(conn)

	cursor, err := cursors.Get(xcursor.LeftPtr)
	if err != nil {
		return nil, err
	}

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return nil, err
	}

	if err := xproto.CreateWindowChecked(conn, screen.RootDepth,
		wid, screen.Root,
		0, 0, screen.WidthInPixels, screen.HeightInPixels, 0,
		xproto.WindowClassInputOutput, screen.RootVisual,
		xproto.CwBackPixel|xproto.CwEventMask|xproto.CwCursor, // 1, 2, 3
		[]uint32{
			0, // 1
			xproto.EventMaskStructureNotify |
				xproto.EventMaskKeyPress |
				xproto.EventMaskButtonPress |
				xproto.EventMaskButtonRelease |
				xproto.EventMaskPointerMotion, // 2
			uint32(cursor), // 3
		}).Check(); err != nil {
		return nil, err
	}

	if err := xproto.MapWindowChecked(conn, wid).Check(); err != nil {
		return nil, err
	}

	return &XBackend{
		conn:        conn,
		screen:      screen,
		container:   wid,
		width:       screen.WidthInPixels,
		height:      screen.HeightInPixels,
		borderWidth: uint16(max(borderWidth, 0)),
		cursors:     cursors,
		wids:        make(map[window.Handle]xproto.Window),
		handles:     make(map[xproto.Window]window.Handle),
	}, nil
}

func (b *XBackend) Container() xproto.Window {
	return b.container
}

func (b *XBackend) Box() geom.Box {
	return geom.Box{W: float64(b.width), H: float64(b.height)}
}

// Handle returns the managed window behind an X window.
func (b *XBackend) Handle(wid xproto.Window) (window.Handle, bool) {
	h, ok := b.handles[wid]
	return h, ok
}

func (b *XBackend) Create(h window.Handle, box geom.Box) error {
	wid, err := xproto.NewWindowId(b.conn)
	if err != nil {
		return err
	}

	x, y, w, hh := b.geometry(box)
	background := backgrounds[b.created%len(backgrounds)]
	b.created++

	if err := xproto.CreateWindowChecked(b.conn, xproto.WindowClassCopyFromParent,
		wid, b.container,
		x, y, w, hh, b.borderWidth,
		xproto.WindowClassInputOutput, xproto.WindowClassCopyFromParent,
		xproto.CwBackPixel|xproto.CwBorderPixel,
		[]uint32{background, borderUnfocused}).Check(); err != nil {
		return err
	}

	if err := xproto.MapWindowChecked(b.conn, wid).Check(); err != nil {
		xproto.DestroyWindow(b.conn, wid)
		return err
	}

	b.wids[h] = wid
	b.handles[wid] = h
	return nil
}

func (b *XBackend) Destroy(h window.Handle) {
	wid, ok := b.wids[h]
	if !ok {
		return
	}
	delete(b.wids, h)
	delete(b.handles, wid)

	if err := xproto.DestroyWindowChecked(b.conn, wid).Check(); err != nil {
		slog.Error("Failed to destroy window", "func", "xwm.XBackend.Destroy", "window", h, "error", err)
	}
}

// geometry converts box to X coordinates. The border is drawn outside the
// window, so the size shrinks by it.
func (b *XBackend) geometry(box geom.Box) (x, y int16, w, h uint16) {
	box = box.Round()
	border := 2 * float64(b.borderWidth)
	return int16(box.X), int16(box.Y), uint16(max(box.W-border, 1)), uint16(max(box.H-border, 1))
}

func (b *XBackend) Configure(h window.Handle, box geom.Box) {
	wid, ok := b.wids[h]
	if !ok {
		return
	}

	x, y, w, hh := b.geometry(box)
	xproto.ConfigureWindow(b.conn, wid,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		[]uint32{uint32(x), uint32(y), uint32(w), uint32(hh)})
}

func (b *XBackend) SetVisible(h window.Handle, visible bool) {
	wid, ok := b.wids[h]
	if !ok {
		return
	}
	if visible {
		xproto.MapWindow(b.conn, wid)
	} else {
		xproto.UnmapWindow(b.conn, wid)
	}
}

func (b *XBackend) Raise(h window.Handle) {
	wid, ok := b.wids[h]
	if !ok {
		return
	}
	xproto.ConfigureWindow(b.conn, wid, xproto.ConfigWindowStackMode, []uint32{xproto.StackModeAbove})
}

func (b *XBackend) SetBorder(h window.Handle, color uint32) {
	wid, ok := b.wids[h]
	if !ok {
		return
	}
	xproto.ChangeWindowAttributes(b.conn, wid, xproto.CwBorderPixel, []uint32{color})
}

func (b *XBackend) SetCursor(glyph uint16) {
	cursor, err := b.cursors.Get(glyph)
	if err != nil {
		slog.Error("Failed to create cursor", "func", "xwm.XBackend.SetCursor", "glyph", glyph, "error", err)
		return
	}
	xproto.ChangeWindowAttributes(b.conn, b.container, xproto.CwCursor, []uint32{uint32(cursor)})
}

// Resize records a new container size.
func (b *XBackend) Resize(width, height uint16) bool {
	if width == b.width && height == b.height {
		return false
	}
	b.width, b.height = width, height
	return true
}

func (b *XBackend) Close() {
	for h := range b.wids {
		b.Destroy(h)
	}
	b.cursors.Free()
	xproto.DestroyWindow(b.conn, b.container)
}
