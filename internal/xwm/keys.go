package xwm

import (
	"github.com/ItsNotGoodName/x-tilewm/internal/layout"
	"github.com/jezek/xgb/xproto"
)

type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionNewTiled
	ActionNewFloating
	ActionClose
	ActionFullscreen
	ActionMaximize
	ActionToggleFloating
	ActionFocus
	ActionMove
	ActionToggleGroup
	ActionChangeGroupActive
	ActionDump
	ActionQuit
)

type Action struct {
	Kind      ActionKind
	Direction layout.Direction
}

// Keycodes of a US QWERTY keyboard.
const (
	keyTab   xproto.Keycode = 23
	keyQ     xproto.Keycode = 24
	keyD     xproto.Keycode = 40
	keyF     xproto.Keycode = 41
	keyG     xproto.Keycode = 42
	keyX     xproto.Keycode = 53
	keyV     xproto.Keycode = 55
	keyM     xproto.Keycode = 58
	keySpace xproto.Keycode = 65
	keyUp    xproto.Keycode = 111
	keyLeft  xproto.Keycode = 113
	keyRight xproto.Keycode = 114
	keyDown  xproto.Keycode = 116
)

var arrows = map[xproto.Keycode]layout.Direction{
	keyUp:    layout.DirectionUp,
	keyRight: layout.DirectionRight,
	keyDown:  layout.DirectionDown,
	keyLeft:  layout.DirectionLeft,
}

// ActionFor maps a key press to an action.
func ActionFor(detail xproto.Keycode, state uint16) Action {
	shift := state&xproto.ModMaskShift != 0

	if dir, ok := arrows[detail]; ok {
		if shift {
			return Action{Kind: ActionMove, Direction: dir}
		}
		return Action{Kind: ActionFocus, Direction: dir}
	}

	switch detail {
	case keySpace:
		if shift {
			return Action{Kind: ActionNewFloating}
		}
		return Action{Kind: ActionNewTiled}
	case keyX:
		return Action{Kind: ActionClose}
	case keyF:
		return Action{Kind: ActionFullscreen}
	case keyM:
		return Action{Kind: ActionMaximize}
	case keyV:
		return Action{Kind: ActionToggleFloating}
	case keyG:
		return Action{Kind: ActionToggleGroup}
	case keyTab:
		return Action{Kind: ActionChangeGroupActive}
	case keyD:
		return Action{Kind: ActionDump}
	case keyQ:
		return Action{Kind: ActionQuit}
	}
	return Action{Kind: ActionNone}
}
