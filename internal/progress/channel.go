package progress

type EventKind string

const (
	EventProgress EventKind = "progress"
	EventLog      EventKind = "log"
	EventComplete EventKind = "complete"
	EventError    EventKind = "error"
)

// Event is one sink emission in channel form, for hosts that consume
// progress on another goroutine (a UI loop, a supervisor).
type Event struct {
	Kind    EventKind
	Op      string
	Current int64
	Total   int64
	Message string
	Level   string
	Success bool
	Err     error
}

// Channel forwards every event into a buffered channel, preserving emission
// order. Sends block when the buffer is full, so a stalled consumer slows
// the download rather than losing events.
type Channel struct {
	events chan Event
}

func NewChannel(buffer int) *Channel {
	if buffer <= 0 {
		buffer = 64
	}
	return &Channel{events: make(chan Event, buffer)}
}

func (c *Channel) Events() <-chan Event {
	return c.events
}

// Close ends the event stream. Call only after the producing operation has
// returned.
func (c *Channel) Close() {
	close(c.events)
}

func (c *Channel) Update(op string, current, total int64, message string) {
	c.events <- Event{Kind: EventProgress, Op: op, Current: current, Total: total, Message: message}
}

func (c *Channel) Log(level, message string) {
	c.events <- Event{Kind: EventLog, Level: level, Message: message}
}

func (c *Channel) Complete(success bool, message string) {
	c.events <- Event{Kind: EventComplete, Success: success, Message: message}
}

func (c *Channel) Error(message string, err error) {
	c.events <- Event{Kind: EventError, Message: message, Err: err}
}
