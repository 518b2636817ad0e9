package layout

import (
	"fmt"

	"github.com/ItsNotGoodName/x-tilewm/internal/geom"
	"github.com/ItsNotGoodName/x-tilewm/internal/window"
)

// Split ratios are kept inside [MinSplitRatio, MaxSplitRatio].
const (
	MinSplitRatio = 0.05
	MaxSplitRatio = 0.95
)

// MinFloatingSize is the smallest size a floating window can be resized to.
const MinFloatingSize = 20

type Direction int

const (
	DirectionDefault Direction = iota - 1
	DirectionUp
	DirectionRight
	DirectionDown
	DirectionLeft
)

func (d Direction) String() string {
	switch d {
	case DirectionUp:
		return "u"
	case DirectionRight:
		return "r"
	case DirectionDown:
		return "d"
	case DirectionLeft:
		return "l"
	default:
		return "default"
	}
}

// ParseDirection accepts the short and long direction names.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "u", "t", "up", "top":
		return DirectionUp, nil
	case "r", "right":
		return DirectionRight, nil
	case "d", "b", "down", "bottom":
		return DirectionDown, nil
	case "l", "left":
		return DirectionLeft, nil
	case "", "default":
		return DirectionDefault, nil
	}
	return DirectionDefault, fmt.Errorf("invalid direction %q", s)
}

// Horizontal reports whether d moves along the X axis.
func (d Direction) Horizontal() bool {
	return d == DirectionLeft || d == DirectionRight
}

type Corner int

const (
	CornerNone Corner = iota
	CornerTopLeft
	CornerTopRight
	CornerBottomRight
	CornerBottomLeft
)

func (c Corner) Left() bool {
	return c == CornerTopLeft || c == CornerBottomLeft
}

func (c Corner) Top() bool {
	return c == CornerTopLeft || c == CornerTopRight
}

type FullscreenMode int

const (
	FullscreenNone FullscreenMode = iota
	// FullscreenMaximized covers the monitor minus its reserved area.
	FullscreenMaximized
	// FullscreenFull covers the whole monitor.
	FullscreenFull
)

func (m FullscreenMode) String() string {
	switch m {
	case FullscreenMaximized:
		return "maximized"
	case FullscreenFull:
		return "fullscreen"
	default:
		return "none"
	}
}

type DragMode int

const (
	DragMove DragMode = iota
	DragResize
)

// Gradient is a border colour gradient as 0xAARRGGBB values.
type Gradient struct {
	Colors []uint32 `json:"colors"`
	Angle  float64  `json:"angle"`
}

// RenderHints are presentation hints for the renderer.
type RenderHints struct {
	IsBorderGradient bool     `json:"isBorderGradient"`
	BorderGradient   Gradient `json:"borderGradient"`
}

type MessageHeader struct {
	Window window.Handle
}

// Reply is the result of a layout message. The concrete types are
// ReplyUnhandled, ReplyOK, ReplyFocus and ReplyInvalid.
type Reply interface {
	isReply()
}

// ReplyUnhandled means the layout does not know the command.
type ReplyUnhandled struct{}

// ReplyOK means the command was applied.
type ReplyOK struct{}

// ReplyFocus asks the caller to focus Window.
type ReplyFocus struct {
	Window window.Handle
}

// ReplyInvalid means the command is known but could not be applied.
type ReplyInvalid struct {
	Reason string
}

func (ReplyUnhandled) isReply() {}
func (ReplyOK) isReply()        {}
func (ReplyFocus) isReply()     {}
func (ReplyInvalid) isReply()   {}

// TreeNode describes a layout tree for dumps and the API.
type TreeNode struct {
	Window   *window.Handle `json:"window,omitempty"`
	Split    string         `json:"split,omitempty"`
	Share    float64        `json:"share"`
	Box      geom.Box       `json:"box"`
	Children []TreeNode     `json:"children,omitempty"`
}
