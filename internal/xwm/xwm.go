// Package xwm hosts the layout engine in an X11 window. Managed windows are
// X subwindows driven by the keyboard, the pointer and the HTTP API.
package xwm

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/ItsNotGoodName/x-tilewm/internal/api"
	"github.com/ItsNotGoodName/x-tilewm/internal/bus"
	"github.com/ItsNotGoodName/x-tilewm/internal/config"
	"github.com/ItsNotGoodName/x-tilewm/internal/geom"
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// FrameInterval is the animation frame rate of the host.
const FrameInterval = time.Second / 60

type Host struct {
	store    *config.Store
	bus      *bus.Broadcaster
	queue    api.Queue
	changedC <-chan struct{}
}

func NewHost(store *config.Store, b *bus.Broadcaster, queue api.Queue, changedC <-chan struct{}) Host {
	return Host{
		store:    store,
		bus:      b,
		queue:    queue,
		changedC: changedC,
	}
}

func (Host) String() string {
	return "xwm.Host"
}

func (h Host) Serve(ctx context.Context) error {
	cfg, err := h.store.GetConfig()
	if err != nil {
		return err
	}

	conn, err := xgb.NewConn()
	if err != nil {
		return err
	}
	defer conn.Close()

	backend, err := NewXBackend(conn, cfg.General.BorderSize)
	if err != nil {
		return err
	}
	defer backend.Close()

	session, err := NewSession(backend, h.bus, cfg, backend.Box())
	if err != nil {
		return err
	}

	eventC := make(chan any)
	go ReceiveEvents(ctx, conn, eventC)

	ticker := time.NewTicker(FrameInterval)
	defer ticker.Stop()

	slog := slog.With("func", "xwm.Host.Serve")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case call := <-h.queue.C():
			session.RunCall(call)
		case <-h.changedC:
			cfg, err := h.store.GetConfig()
			if err == nil {
				err = session.Reload(cfg)
			}
			if err != nil {
				slog.Error("Failed to reload config", "error", err)
				continue
			}
			slog.Info("Reloaded config", "layout", cfg.Layout)
		case now := <-ticker.C:
			session.Tick(now)
		case ev, ok := <-eventC:
			if !ok {
				return nil
			}

			switch ev := ev.(type) {
			case xproto.ConfigureNotifyEvent:
				if ev.Window != backend.Container() {
					continue
				}
				if backend.Resize(ev.Width, ev.Height) {
					slog.Debug("Container resized", "width", ev.Width, "height", ev.Height)
					session.Resize(backend.Box())
				}
			case xproto.KeyPressEvent:
				slog.Debug("KeyPressEvent", "detail", ev.Detail, "state", ev.State)

				err := session.Do(ActionFor(ev.Detail, ev.State), os.Stderr)
				if errors.Is(err, ErrQuit) {
					slog.Debug("exit: quit key pressed")
					return nil
				}
				if err != nil {
					return err
				}
			case xproto.ButtonPressEvent:
				clicked, _ := backend.Handle(ev.Child)
				session.ButtonPress(int(ev.Detail), geom.Vec(float64(ev.EventX), float64(ev.EventY)), clicked)
			case xproto.MotionNotifyEvent:
				session.Motion(geom.Vec(float64(ev.EventX), float64(ev.EventY)))
			case xproto.ButtonReleaseEvent:
				session.ButtonRelease()
			case xproto.DestroyNotifyEvent:
				if ev.Window == backend.Container() {
					slog.Debug("exit: destroy notify event")
					return nil
				}
			}
		}
	}
}

func ReceiveEvents(ctx context.Context, conn *xgb.Conn, eventC chan<- any) {
	defer close(eventC)
	slog := slog.With("func", "xwm.ReceiveEvents")

	for {
		ev, err := conn.WaitForEvent()
		if ev == nil && err == nil {
			slog.Debug("exit: no event or error")
			return
		}

		if err != nil {
			// Errors of unchecked requests end up here.
			slog.Error("Failed to read event", "error", err)
			continue
		}

		select {
		case <-ctx.Done():
			return
		case eventC <- ev:
		}
	}
}
