package telemetry

import "time"

// DefaultStatsInterval is the wall-clock cadence of stats snapshots.
const DefaultStatsInterval = time.Second

// Counts is the population view a Reporter samples.
type Counts interface {
	HerbivoreCount() int
	CarnivoreCount() int
	FoodCount() int
	SpeciesCounts() map[uint32]int
}

// Reporter emits a Snapshot to its sink once per interval of wall-clock
// time, independent of simulated time. It only reads simulation state.
type Reporter struct {
	sink     Sink
	interval time.Duration
	now      func() time.Time

	start time.Time
	last  time.Time
	sent  int
}

// NewReporter creates a reporter. A nil clock means time.Now and a
// non-positive interval means DefaultStatsInterval.
func NewReporter(sink Sink, interval time.Duration, clock func() time.Time) *Reporter {
	if sink == nil {
		sink = Discard
	}
	if interval <= 0 {
		interval = DefaultStatsInterval
	}
	if clock == nil {
		clock = time.Now
	}
	r := &Reporter{sink: sink, interval: interval, now: clock}
	r.Restart()
	return r
}

// Restart resets the reporter's time origin and cadence.
func (r *Reporter) Restart() {
	r.start = r.now()
	r.last = r.start
}

// Maybe publishes a snapshot of c if at least one interval has elapsed
// since the last emission. Reports whether it published.
func (r *Reporter) Maybe(c Counts) bool {
	now := r.now()
	if now.Sub(r.last) < r.interval {
		return false
	}
	r.last = now
	r.Emit(c, now)
	return true
}

// Emit publishes a snapshot of c stamped at now.
func (r *Reporter) Emit(c Counts, now time.Time) {
	r.sink.Publish(Snapshot{
		T:             now.Sub(r.start).Seconds(),
		Herbivores:    c.HerbivoreCount(),
		Carnivores:    c.CarnivoreCount(),
		Food:          c.FoodCount(),
		SpeciesCounts: c.SpeciesCounts(),
	})
	r.sent++
}

// Sent returns the number of snapshots published.
func (r *Reporter) Sent() int { return r.sent }

// SetSink replaces the destination sink.
func (r *Reporter) SetSink(s Sink) {
	if s == nil {
		s = Discard
	}
	r.sink = s
}
