package telemetry

// Sink receives stats snapshots. Publish is called on the tick loop and
// must not block.
type Sink interface {
	Publish(Snapshot)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(Snapshot)

// Publish calls f(s).
func (f SinkFunc) Publish(s Snapshot) { f(s) }

// Discard drops every snapshot.
var Discard Sink = SinkFunc(func(Snapshot) {})

// Latest is a one-slot mailbox: a reader sees only the most recent snapshot
// and earlier unread ones are dropped.
type Latest struct {
	ch chan Snapshot
}

// NewLatest creates an empty mailbox.
func NewLatest() *Latest {
	return &Latest{ch: make(chan Snapshot, 1)}
}

// Publish replaces any unread snapshot with s. Never blocks as long as there
// is a single publisher.
func (l *Latest) Publish(s Snapshot) {
	select {
	case <-l.ch:
	default:
	}
	select {
	case l.ch <- s:
	default:
	}
}

// Poll returns the unread snapshot, if any.
func (l *Latest) Poll() (Snapshot, bool) {
	select {
	case s := <-l.ch:
		return s, true
	default:
		return Snapshot{}, false
	}
}

// C exposes the mailbox for select loops.
func (l *Latest) C() <-chan Snapshot { return l.ch }

// Multi fans a snapshot out to several sinks in order.
type Multi []Sink

// Publish forwards s to every sink.
func (m Multi) Publish(s Snapshot) {
	for _, sink := range m {
		sink.Publish(s)
	}
}
