package layout

import (
	"fmt"
	"slices"
	"sync"

	"github.com/ItsNotGoodName/x-tilewm/internal/geom"
	"github.com/ItsNotGoodName/x-tilewm/internal/window"
)

// Strategy is the capability set every tiling layout provides. The engine
// validates handles before calling into a strategy, so strategies only see
// windows that are managed and tiled or about to become tiled.
type Strategy interface {
	Name() string

	OnWindowCreatedTiling(h window.Handle, dir Direction)
	OnWindowRemovedTiling(h window.Handle)
	IsWindowTiled(h window.Handle) bool

	RecalculateMonitor(id int)
	RecalculateWindow(h window.Handle)

	ResizeActiveWindow(delta geom.Vector2D, corner Corner, h window.Handle)
	FullscreenRequestForWindow(h window.Handle, mode FullscreenMode, on bool)
	LayoutMessage(header MessageHeader, command string) Reply
	RequestRenderHints(h window.Handle) RenderHints

	SwitchWindows(a, b window.Handle) bool
	MoveWindowTo(h window.Handle, dir Direction) bool
	AlterSplitRatio(h window.Handle, value float64, exact bool) bool
	ReplaceWindowDataWith(from, to window.Handle)

	// Tiles returns the tiled windows of a workspace in traversal order.
	Tiles(workspace int) []window.Handle
	Workspaces() []int
	Describe(workspace int) (TreeNode, bool)
}

// Factory creates a strategy bound to an engine.
type Factory func(e *Engine) Strategy

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// Register makes a strategy available under name. It panics when name is
// taken.
func Register(name string, factory Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()

	if _, ok := factories[name]; ok {
		panic(fmt.Sprintf("layout: strategy %q already registered", name))
	}
	factories[name] = factory
}

func lookupFactory(name string) (Factory, bool) {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	factory, ok := factories[name]
	return factory, ok
}

// Strategies returns the registered strategy names, sorted.
func Strategies() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
