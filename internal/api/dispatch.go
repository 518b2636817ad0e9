package api

import (
	"context"

	"github.com/ItsNotGoodName/x-tilewm/internal/layout"
	"github.com/ItsNotGoodName/x-tilewm/internal/window"
)

// State is what API calls may touch. It is only valid inside a dispatched
// function.
type State struct {
	Engine  *layout.Engine
	Windows *window.Registry
}

// Dispatcher runs fn on the goroutine that owns the layout engine.
type Dispatcher interface {
	Dispatch(ctx context.Context, fn func(s State)) error
}

type Call struct {
	fn    func(s State)
	doneC chan struct{}
}

// Run executes the call and releases the waiting caller.
func (c Call) Run(s State) {
	defer close(c.doneC)
	c.fn(s)
}

// Queue is a Dispatcher whose calls are run by the owner of the engine
// reading from C.
type Queue struct {
	callC chan Call
}

func NewQueue() Queue {
	return Queue{callC: make(chan Call)}
}

func (q Queue) C() <-chan Call {
	return q.callC
}

func (q Queue) Dispatch(ctx context.Context, fn func(s State)) error {
	call := Call{fn: fn, doneC: make(chan struct{})}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case q.callC <- call:
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-call.doneC:
		return nil
	}
}

// Serve runs calls against s until ctx is done. It is used when nothing else
// owns the engine.
func (q Queue) Serve(ctx context.Context, s State) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case call := <-q.callC:
			call.Run(s)
		}
	}
}
