package xwm

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ItsNotGoodName/x-tilewm/internal/anim"
	"github.com/ItsNotGoodName/x-tilewm/internal/api"
	"github.com/ItsNotGoodName/x-tilewm/internal/bus"
	"github.com/ItsNotGoodName/x-tilewm/internal/config"
	"github.com/ItsNotGoodName/x-tilewm/internal/geom"
	"github.com/ItsNotGoodName/x-tilewm/internal/layout"
	"github.com/ItsNotGoodName/x-tilewm/internal/window"
	"github.com/ItsNotGoodName/x-tilewm/internal/xcursor"
	"github.com/k0kubun/pp"
)

var ErrQuit = errors.New("quit")

// MonitorID is the single output the host manages.
const MonitorID = 1

const (
	borderFocused   uint32 = 0xff5e81ac
	borderUnfocused uint32 = 0xff3b4252
)

// Backend is the display side of the host.
type Backend interface {
	Create(h window.Handle, box geom.Box) error
	Destroy(h window.Handle)
	Configure(h window.Handle, box geom.Box)
	SetVisible(h window.Handle, visible bool)
	Raise(h window.Handle)
	SetBorder(h window.Handle, color uint32)
	SetCursor(glyph uint16)
}

// Bus is where the session posts events.
type Bus interface {
	bus.Poster
	SetIgnoreEvents(ignore bool)
}

// Session owns the layout state of one host. All methods run on the host's
// event loop.
type Session struct {
	backend  Backend
	bus      Bus
	windows  *window.Registry
	monitors *window.Monitors
	engine   *layout.Engine
	animator *anim.Animator

	workspace int
	created   int
	focused   window.Handle
	shown     map[window.Handle]geom.Box
	now       func() time.Time
}

func NewSession(backend Backend, b Bus, cfg config.Config, screen geom.Box) (*Session, error) {
	lcfg, err := cfg.LayoutConfig()
	if err != nil {
		return nil, err
	}

	s := &Session{
		backend:   backend,
		bus:       b,
		windows:   window.NewRegistry(),
		monitors:  window.NewMonitors(window.Monitor{ID: MonitorID, Name: "screen", Box: screen, ActiveWorkspace: 1}),
		workspace: 1,
		shown:     make(map[window.Handle]geom.Box),
		now:       time.Now,
	}

	s.engine, err = layout.New(cfg.Layout, s.windows, s.monitors, b, lcfg)
	if err != nil {
		return nil, err
	}
	s.animator = anim.New(cfg.Curves().Get(cfg.Animations.WindowCurve), cfg.AnimationDuration(), s.show)

	s.windows.OnConfigure(s.onConfigure)
	s.windows.OnVisible(func(attrs window.Attributes) {
		s.backend.SetVisible(attrs.Handle, attrs.Visible)
	})

	return s, nil
}

func (s *Session) Engine() *layout.Engine {
	return s.engine
}

func (s *Session) Windows() *window.Registry {
	return s.windows
}

func (s *Session) show(h window.Handle, box geom.Box) {
	s.shown[h] = box
	s.backend.Configure(h, box)
}

func (s *Session) onConfigure(attrs window.Attributes) {
	h := attrs.Handle
	if drag := s.engine.Drag(); drag.Active() && drag.Window() == h {
		s.animator.Cancel(h)
		s.show(h, attrs.Box)
		return
	}
	s.animator.Animate(h, s.shown[h], attrs.Box, s.now())
}

// Tick advances animations. It reports whether more frames are needed.
func (s *Session) Tick(now time.Time) bool {
	return s.animator.Tick(now)
}

// Resize follows a change of the screen size.
func (s *Session) Resize(screen geom.Box) {
	if mon, ok := s.monitors.Monitor(MonitorID); ok && mon.Box == screen {
		return
	}
	s.monitors.SetBox(MonitorID, screen)
	s.engine.RecalculateMonitor(MonitorID)
}

// Reload applies cfg as one bulk change. Only the final configreloaded event
// is published.
func (s *Session) Reload(cfg config.Config) error {
	lcfg, err := cfg.LayoutConfig()
	if err != nil {
		return err
	}

	s.bus.SetIgnoreEvents(true)
	defer s.bus.SetIgnoreEvents(false)

	if err := s.engine.SwitchLayout(cfg.Layout); err != nil {
		return err
	}
	s.animator.SetCurve(cfg.Curves().Get(cfg.Animations.WindowCurve), cfg.AnimationDuration())
	s.engine.SetConfig(lcfg)
	s.sync()

	s.bus.PostEvent("configreloaded", "", true)
	return nil
}

// RunCall runs an API call against the session state.
func (s *Session) RunCall(call api.Call) {
	call.Run(api.State{Engine: s.engine, Windows: s.windows})
	s.sync()
}

func (s *Session) open(floating bool) (window.Handle, error) {
	s.created++
	h := s.windows.Create(window.Spec{
		Workspace: s.workspace,
		Class:     "x-tilewm",
		Title:     fmt.Sprintf("window %d", s.created),
	})
	if err := s.backend.Create(h, geom.Box{}); err != nil {
		s.windows.Destroy(h)
		return window.Handle{}, err
	}

	if floating {
		s.engine.OnWindowCreatedFloating(h)
	} else {
		s.engine.OnWindowCreated(h, layout.DirectionDefault)
	}
	s.engine.RequestFocusForWindow(h)
	return h, nil
}

func (s *Session) close(h window.Handle) {
	next, hasNext := s.engine.GetNextWindowCandidate(h)

	s.engine.OnWindowRemoved(h)
	s.windows.Destroy(h)
	s.animator.Cancel(h)
	delete(s.shown, h)
	s.backend.Destroy(h)
	if s.focused == h {
		s.focused = window.Handle{}
	}

	if hasNext && next != h {
		s.engine.RequestFocusForWindow(next)
	}
}

func (s *Session) message(h window.Handle, command string) {
	switch reply := s.engine.LayoutMessage(layout.MessageHeader{Window: h}, command).(type) {
	case layout.ReplyFocus:
		s.engine.RequestFocusForWindow(reply.Window)
	case layout.ReplyInvalid:
		slog.Debug("Layout message rejected", "command", command, "reason", reply.Reason)
	}
}

func (s *Session) toggleFullscreen(h window.Handle, mode layout.FullscreenMode) {
	node, ok := s.engine.Node(h)
	if !ok {
		return
	}
	s.engine.FullscreenRequestForWindow(h, mode, node.Fullscreen != mode)
}

// Do performs a keyboard action. It returns ErrQuit for the quit action.
func (s *Session) Do(action Action, dump io.Writer) error {
	focused := s.engine.Focused()

	switch action.Kind {
	case ActionNone:
		return nil
	case ActionQuit:
		return ErrQuit
	case ActionNewTiled, ActionNewFloating:
		if _, err := s.open(action.Kind == ActionNewFloating); err != nil {
			return err
		}
	case ActionClose:
		if !focused.IsZero() {
			s.close(focused)
		}
	case ActionFullscreen:
		s.toggleFullscreen(focused, layout.FullscreenFull)
	case ActionMaximize:
		s.toggleFullscreen(focused, layout.FullscreenMaximized)
	case ActionToggleFloating:
		s.engine.ChangeWindowFloatingMode(focused)
	case ActionFocus:
		if target, ok := s.engine.Neighbor(focused, action.Direction); ok {
			s.engine.RequestFocusForWindow(target)
		}
	case ActionMove:
		s.engine.MoveWindowTo(focused, action.Direction)
	case ActionToggleGroup:
		s.message(focused, "togglegroup")
	case ActionChangeGroupActive:
		s.message(focused, "changegroupactive f")
	case ActionDump:
		s.Dump(dump)
	}

	s.sync()
	return nil
}

// Dump pretty prints the layout trees of every workspace.
func (s *Session) Dump(w io.Writer) {
	strategy := s.engine.Strategy()
	for _, ws := range strategy.Workspaces() {
		tree, ok := strategy.Describe(ws)
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%s workspace %d\n", strategy.Name(), ws)
		pp.Fprintln(w, tree)
	}
}

// ButtonPress focuses the clicked window and starts a drag. Button 1 moves
// and button 3 resizes.
func (s *Session) ButtonPress(button int, cursor geom.Vector2D, clicked window.Handle) {
	if !clicked.IsZero() {
		s.engine.RequestFocusForWindow(clicked)
		s.sync()
	}

	var mode layout.DragMode
	switch button {
	case 1:
		mode = layout.DragMove
	case 3:
		mode = layout.DragResize
	default:
		return
	}

	if s.engine.OnBeginDragWindow(mode, cursor) {
		drag := s.engine.Drag()
		s.backend.Raise(drag.Window())
		s.backend.SetCursor(xcursor.ForDrag(drag.Mode(), drag.Corner()))
	}
}

func (s *Session) Motion(cursor geom.Vector2D) {
	s.engine.OnMouseMove(cursor)
}

func (s *Session) ButtonRelease() {
	if !s.engine.Drag().Active() {
		return
	}
	s.engine.OnEndDragWindow()
	s.backend.SetCursor(xcursor.LeftPtr)
	s.sync()
}

// sync pushes focus and border state to the backend.
func (s *Session) sync() {
	focused := s.engine.Focused()
	if focused != s.focused {
		s.focused = focused
		if !focused.IsZero() {
			s.engine.BringWindowToTop(focused)
			s.backend.Raise(focused)
		}
	}

	for _, attrs := range s.windows.List() {
		s.backend.SetBorder(attrs.Handle, s.borderColor(attrs.Handle))
	}
}

func (s *Session) borderColor(h window.Handle) uint32 {
	hints := s.engine.RequestRenderHints(h)
	if hints.IsBorderGradient && len(hints.BorderGradient.Colors) > 0 {
		return hints.BorderGradient.Colors[0]
	}
	if h == s.focused {
		return borderFocused
	}
	return borderUnfocused
}
