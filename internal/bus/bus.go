package bus

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/ItsNotGoodName/x-tilewm/internal/core"
	"github.com/google/uuid"
)

var ErrBroadcasterClosed = errors.New("broadcaster closed")

// DefaultBufferSize is how many undelivered events a subscriber may lag
// behind before it is dropped.
const DefaultBufferSize = 256

type subscriber struct {
	id string
	c  chan Event
}

// Broadcaster fans events out to subscribers. PostEvent is called from the
// engine thread. Serve runs on its own goroutine and is the only owner of the
// subscriber set. The two share nothing but the queue and the suppression
// flag.
type Broadcaster struct {
	ignore atomic.Bool

	mu    sync.Mutex
	queue []Event

	wakeC  chan struct{}
	joinC  chan *subscriber
	leaveC chan *subscriber
	doneC  chan struct{}
	done   sync.Once

	bufferSize int
}

func NewBroadcaster(bufferSize int) *Broadcaster {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Broadcaster{
		wakeC:      make(chan struct{}, 1),
		joinC:      make(chan *subscriber),
		leaveC:     make(chan *subscriber),
		doneC:      make(chan struct{}),
		bufferSize: bufferSize,
	}
}

func (b *Broadcaster) String() string {
	return "bus.Broadcaster"
}

// SetIgnoreEvents toggles suppression of non forced events, e.g. during a
// bulk reload.
func (b *Broadcaster) SetIgnoreEvents(ignore bool) {
	b.ignore.Store(ignore)
}

func (b *Broadcaster) IgnoreEvents() bool {
	return b.ignore.Load()
}

// PostEvent queues an event in call order. It never blocks.
func (b *Broadcaster) PostEvent(name, data string, force bool) {
	if !force && b.ignore.Load() {
		return
	}

	b.mu.Lock()
	b.queue = append(b.queue, Event{Name: name, Data: data})
	b.mu.Unlock()

	core.FlagChannel(b.wakeC)
}

// Subscribe returns a channel receiving every event delivered after the
// subscriber joined, which includes everything posted after Subscribe
// returns. The channel is closed when the subscriber falls too far behind,
// after unsubscribe, or once the broadcaster stops.
func (b *Broadcaster) Subscribe(ctx context.Context) (<-chan Event, func(), error) {
	sub := &subscriber{
		id: uuid.NewString(),
		c:  make(chan Event, b.bufferSize),
	}

	select {
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	case <-b.doneC:
		return nil, nil, ErrBroadcasterClosed
	case b.joinC <- sub:
	}

	var once sync.Once
	return sub.c, func() {
		once.Do(func() {
			select {
			case <-b.doneC:
			case b.leaveC <- sub:
			}
		})
	}, nil
}

// Serve delivers queued events until ctx is done.
func (b *Broadcaster) Serve(ctx context.Context) error {
	slog := slog.With("func", "bus.Broadcaster.Serve")

	subs := make(map[*subscriber]struct{})
	defer func() {
		b.done.Do(func() { close(b.doneC) })
		for sub := range subs {
			close(sub.c)
		}
	}()

	drop := func(sub *subscriber) {
		if _, ok := subs[sub]; !ok {
			return
		}
		delete(subs, sub)
		close(sub.c)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sub := <-b.joinC:
			subs[sub] = struct{}{}
			slog.Debug("subscriber joined", "id", sub.id, "count", len(subs))
		case sub := <-b.leaveC:
			drop(sub)
			slog.Debug("subscriber left", "id", sub.id, "count", len(subs))
		case <-b.wakeC:
			b.mu.Lock()
			queue := b.queue
			b.queue = nil
			b.mu.Unlock()

			for _, ev := range queue {
				for sub := range subs {
					select {
					case sub.c <- ev:
					default:
						slog.Debug("dropping slow subscriber", "id", sub.id)
						drop(sub)
					}
				}
			}
		}
	}
}
