// Package api is the HTTP control surface of the layout engine.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/ItsNotGoodName/x-tilewm/internal/build"
	"github.com/ItsNotGoodName/x-tilewm/internal/layout"
	"github.com/ItsNotGoodName/x-tilewm/internal/window"
	"github.com/danielgtaylor/huma/v2"
)

func NewConfig() huma.Config {
	return huma.DefaultConfig("x-tilewm", build.Current.Version)
}

type WindowInfo struct {
	window.Attributes
	Tiled      bool            `json:"tiled"`
	Floating   bool            `json:"floating"`
	Fullscreen string          `json:"fullscreen" enum:"none,maximized,fullscreen"`
	Focused    bool            `json:"focused"`
	Group      []window.Handle `json:"group,omitempty"`
}

type WorkspaceInfo struct {
	Workspace int              `json:"workspace"`
	Tree      *layout.TreeNode `json:"tree,omitempty"`
	Floating  []window.Handle  `json:"floating"`
}

type LayoutInfo struct {
	Name       string          `json:"name"`
	Focused    *window.Handle  `json:"focused,omitempty"`
	Workspaces []WorkspaceInfo `json:"workspaces"`
}

type VersionOutput struct {
	Body build.Build
}

type LayoutOutput struct {
	Body LayoutInfo
}

type WindowsOutput struct {
	Body []WindowInfo
}

type WindowOutput struct {
	Body WindowInfo
}

type HandleInput struct {
	Handle string `path:"handle" doc:"Window handle in hex"`
}

type SwitchLayoutInput struct {
	Body struct {
		Name string `json:"name" minLength:"1"`
	}
}

type FullscreenInput struct {
	HandleInput
	Body struct {
		Mode string `json:"mode" enum:"maximized,fullscreen" default:"fullscreen"`
		On   bool   `json:"on"`
	}
}

type MoveInput struct {
	HandleInput
	Body struct {
		Direction string `json:"direction" enum:"u,r,d,l,up,right,down,left"`
	}
}

type SplitRatioInput struct {
	HandleInput
	Body struct {
		Value float64 `json:"value"`
		Exact bool    `json:"exact,omitempty"`
	}
}

type SwapInput struct {
	HandleInput
	Body struct {
		Other string `json:"other"`
	}
}

type LayoutMessageInput struct {
	Body struct {
		Window  string `json:"window,omitempty" doc:"Target window, defaults to the focused window"`
		Command string `json:"command" minLength:"1"`
	}
}

type LayoutMessageOutput struct {
	Body struct {
		Result string         `json:"result" enum:"ok,unhandled,focus,invalid"`
		Window *window.Handle `json:"window,omitempty"`
		Reason string         `json:"reason,omitempty"`
	}
}

// Register adds every endpoint to api.
func Register(api huma.API, d Dispatcher) {
	h := handler{d: d}

	huma.Register(api, huma.Operation{
		OperationID: "get-version",
		Method:      http.MethodGet,
		Path:        "/api/version",
		Summary:     "Get the build version",
	}, func(ctx context.Context, input *struct{}) (*VersionOutput, error) {
		return &VersionOutput{Body: build.Current}, nil
	})
	huma.Register(api, huma.Operation{
		OperationID: "get-layout",
		Method:      http.MethodGet,
		Path:        "/api/layout",
		Summary:     "Get the layout trees",
	}, h.GetLayout)
	huma.Register(api, huma.Operation{
		OperationID: "switch-layout",
		Method:      http.MethodPut,
		Path:        "/api/layout",
		Summary:     "Switch the layout",
	}, h.SwitchLayout)
	huma.Register(api, huma.Operation{
		OperationID: "list-windows",
		Method:      http.MethodGet,
		Path:        "/api/windows",
		Summary:     "List managed windows",
	}, h.ListWindows)
	huma.Register(api, huma.Operation{
		OperationID: "toggle-floating",
		Method:      http.MethodPost,
		Path:        "/api/windows/{handle}/float",
		Summary:     "Toggle floating",
	}, h.ToggleFloating)
	huma.Register(api, huma.Operation{
		OperationID: "set-fullscreen",
		Method:      http.MethodPost,
		Path:        "/api/windows/{handle}/fullscreen",
		Summary:     "Enter or leave fullscreen",
	}, h.SetFullscreen)
	huma.Register(api, huma.Operation{
		OperationID: "move-window",
		Method:      http.MethodPost,
		Path:        "/api/windows/{handle}/move",
		Summary:     "Move a tiled window",
	}, h.MoveWindow)
	huma.Register(api, huma.Operation{
		OperationID: "alter-split-ratio",
		Method:      http.MethodPost,
		Path:        "/api/windows/{handle}/splitratio",
		Summary:     "Change the split ratio next to a window",
	}, h.AlterSplitRatio)
	huma.Register(api, huma.Operation{
		OperationID: "swap-windows",
		Method:      http.MethodPost,
		Path:        "/api/windows/{handle}/swap",
		Summary:     "Swap two tiled windows",
	}, h.SwapWindows)
	huma.Register(api, huma.Operation{
		OperationID: "focus-window",
		Method:      http.MethodPost,
		Path:        "/api/windows/{handle}/focus",
		Summary:     "Focus a window",
	}, h.FocusWindow)
	huma.Register(api, huma.Operation{
		OperationID: "layout-message",
		Method:      http.MethodPost,
		Path:        "/api/layoutmsg",
		Summary:     "Send a layout message",
	}, h.LayoutMessage)
}

var (
	errNotManaged = errors.New("window is not managed")
	errRejected   = errors.New("operation does not apply to the window")
)

type handler struct {
	d Dispatcher
}

// dispatch runs fn on the engine and maps its error to an HTTP error.
func (h handler) dispatch(ctx context.Context, fn func(s State) error) error {
	var fnErr error
	if err := h.d.Dispatch(ctx, func(s State) { fnErr = fn(s) }); err != nil {
		return huma.Error503ServiceUnavailable("engine unavailable", err)
	}
	switch {
	case fnErr == nil:
		return nil
	case errors.Is(fnErr, errNotManaged):
		return huma.Error404NotFound(fnErr.Error())
	case errors.Is(fnErr, errRejected):
		return huma.Error422UnprocessableEntity(fnErr.Error())
	case errors.Is(fnErr, layout.ErrUnknownStrategy):
		return huma.Error400BadRequest(fnErr.Error())
	default:
		return fnErr
	}
}

func parseHandle(s string) (window.Handle, error) {
	handle, err := window.ParseHandle(s)
	if err != nil {
		return window.Handle{}, huma.Error400BadRequest("invalid window handle", err)
	}
	return handle, nil
}

func managed(s State, handle window.Handle) error {
	if _, ok := s.Engine.Node(handle); !ok {
		return errNotManaged
	}
	return nil
}

func windowInfo(s State, attrs window.Attributes) WindowInfo {
	info := WindowInfo{Attributes: attrs, Fullscreen: layout.FullscreenNone.String()}
	if node, ok := s.Engine.Node(attrs.Handle); ok {
		info.Tiled = s.Engine.IsWindowTiled(attrs.Handle)
		info.Floating = node.Floating
		info.Fullscreen = node.Fullscreen.String()
	}
	info.Focused = s.Engine.Focused() == attrs.Handle
	if g, ok := s.Engine.Group(attrs.Handle); ok {
		info.Group = g.Members()
	}
	return info
}

// windowOp runs op on a managed window and returns its new state.
func (h handler) windowOp(ctx context.Context, raw string, op func(s State, handle window.Handle) error) (*WindowOutput, error) {
	handle, err := parseHandle(raw)
	if err != nil {
		return nil, err
	}

	var out WindowOutput
	err = h.dispatch(ctx, func(s State) error {
		if err := managed(s, handle); err != nil {
			return err
		}
		if err := op(s, handle); err != nil {
			return err
		}
		attrs, ok := s.Windows.Resolve(handle)
		if !ok {
			return errNotManaged
		}
		out.Body = windowInfo(s, attrs)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (h handler) GetLayout(ctx context.Context, input *struct{}) (*LayoutOutput, error) {
	var out LayoutOutput
	err := h.dispatch(ctx, func(s State) error {
		out.Body.Name = s.Engine.Strategy().Name()
		if focused := s.Engine.Focused(); !focused.IsZero() {
			out.Body.Focused = &focused
		}
		out.Body.Workspaces = []WorkspaceInfo{}
		for _, ws := range s.Engine.Workspaces() {
			info := WorkspaceInfo{Workspace: ws, Floating: s.Engine.Floating(ws)}
			if info.Floating == nil {
				info.Floating = []window.Handle{}
			}
			if tree, ok := s.Engine.Strategy().Describe(ws); ok {
				info.Tree = &tree
			}
			out.Body.Workspaces = append(out.Body.Workspaces, info)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (h handler) SwitchLayout(ctx context.Context, input *SwitchLayoutInput) (*LayoutOutput, error) {
	err := h.dispatch(ctx, func(s State) error {
		return s.Engine.SwitchLayout(input.Body.Name)
	})
	if err != nil {
		return nil, err
	}
	return h.GetLayout(ctx, nil)
}

func (h handler) ListWindows(ctx context.Context, input *struct{}) (*WindowsOutput, error) {
	var out WindowsOutput
	err := h.dispatch(ctx, func(s State) error {
		out.Body = []WindowInfo{}
		for _, attrs := range s.Windows.List() {
			out.Body = append(out.Body, windowInfo(s, attrs))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (h handler) ToggleFloating(ctx context.Context, input *HandleInput) (*WindowOutput, error) {
	return h.windowOp(ctx, input.Handle, func(s State, handle window.Handle) error {
		if !s.Engine.ChangeWindowFloatingMode(handle) {
			return errRejected
		}
		return nil
	})
}

func (h handler) SetFullscreen(ctx context.Context, input *FullscreenInput) (*WindowOutput, error) {
	mode := layout.FullscreenFull
	if input.Body.Mode == layout.FullscreenMaximized.String() {
		mode = layout.FullscreenMaximized
	}
	return h.windowOp(ctx, input.Handle, func(s State, handle window.Handle) error {
		s.Engine.FullscreenRequestForWindow(handle, mode, input.Body.On)
		return nil
	})
}

func (h handler) MoveWindow(ctx context.Context, input *MoveInput) (*WindowOutput, error) {
	dir, err := layout.ParseDirection(input.Body.Direction)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	return h.windowOp(ctx, input.Handle, func(s State, handle window.Handle) error {
		if !s.Engine.MoveWindowTo(handle, dir) {
			return errRejected
		}
		return nil
	})
}

func (h handler) AlterSplitRatio(ctx context.Context, input *SplitRatioInput) (*WindowOutput, error) {
	return h.windowOp(ctx, input.Handle, func(s State, handle window.Handle) error {
		if !s.Engine.AlterSplitRatio(handle, input.Body.Value, input.Body.Exact) {
			return errRejected
		}
		return nil
	})
}

func (h handler) SwapWindows(ctx context.Context, input *SwapInput) (*WindowOutput, error) {
	other, err := parseHandle(input.Body.Other)
	if err != nil {
		return nil, err
	}
	return h.windowOp(ctx, input.Handle, func(s State, handle window.Handle) error {
		if err := managed(s, other); err != nil {
			return err
		}
		if !s.Engine.SwitchWindows(handle, other) {
			return errRejected
		}
		return nil
	})
}

func (h handler) FocusWindow(ctx context.Context, input *HandleInput) (*WindowOutput, error) {
	return h.windowOp(ctx, input.Handle, func(s State, handle window.Handle) error {
		if !s.Engine.IsWindowReachable(handle) {
			return errRejected
		}
		s.Engine.RequestFocusForWindow(handle)
		return nil
	})
}

func (h handler) LayoutMessage(ctx context.Context, input *LayoutMessageInput) (*LayoutMessageOutput, error) {
	var header layout.MessageHeader
	if input.Body.Window != "" {
		handle, err := parseHandle(input.Body.Window)
		if err != nil {
			return nil, err
		}
		header.Window = handle
	}

	var out LayoutMessageOutput
	err := h.dispatch(ctx, func(s State) error {
		if !header.Window.IsZero() {
			if err := managed(s, header.Window); err != nil {
				return err
			}
		}

		switch reply := s.Engine.LayoutMessage(header, input.Body.Command).(type) {
		case layout.ReplyOK:
			out.Body.Result = "ok"
		case layout.ReplyFocus:
			out.Body.Result = "focus"
			out.Body.Window = &reply.Window
		case layout.ReplyInvalid:
			out.Body.Result = "invalid"
			out.Body.Reason = reply.Reason
		default:
			out.Body.Result = "unhandled"
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
