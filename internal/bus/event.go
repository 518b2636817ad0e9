package bus

// Event is a notification about a layout state change. It is immutable once
// constructed.
type Event struct {
	Name string `json:"name"`
	Data string `json:"data"`
}

// Wire is the line written to socket subscribers.
func (e Event) Wire() string {
	return e.Name + ">>" + e.Data + "\n"
}

// Poster receives events from the layout engine. PostEvent must not block
// the calling thread.
type Poster interface {
	// PostEvent queues an event. force bypasses event suppression.
	PostEvent(name, data string, force bool)
}

// PosterFunc adapts a function to a Poster.
type PosterFunc func(name, data string, force bool)

func (fn PosterFunc) PostEvent(name, data string, force bool) {
	fn(name, data, force)
}

// Discard drops every event.
var Discard Poster = PosterFunc(func(string, string, bool) {})
