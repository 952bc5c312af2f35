package telemetry

import "sort"

// DefaultHistoryPoints keeps two minutes of snapshots at the default cadence.
const DefaultHistoryPoints = 120

// History is a bounded, oldest-first record of snapshots for charting.
// Not safe for concurrent use.
type History struct {
	max    int
	points []Snapshot
}

// NewHistory creates a history holding at most max points. A non-positive
// max means DefaultHistoryPoints.
func NewHistory(max int) *History {
	if max <= 0 {
		max = DefaultHistoryPoints
	}
	return &History{max: max, points: make([]Snapshot, 0, max)}
}

// Push appends s, dropping the oldest point once the history is full.
func (h *History) Push(s Snapshot) {
	if len(h.points) == h.max {
		copy(h.points, h.points[1:])
		h.points = h.points[:h.max-1]
	}
	h.points = append(h.points, s)
}

// Publish makes History usable as a Sink on the goroutine that owns it.
func (h *History) Publish(s Snapshot) { h.Push(s) }

// Clear drops every point.
func (h *History) Clear() { h.points = h.points[:0] }

// Len returns the number of points held.
func (h *History) Len() int { return len(h.points) }

// Points returns the held snapshots, oldest first. Must not be retained.
func (h *History) Points() []Snapshot { return h.points }

// PeakTotals returns the largest creature count (either kind) and the
// largest food count seen.
func (h *History) PeakTotals() (creatures, food int) {
	for _, p := range h.points {
		creatures = max(creatures, p.Herbivores, p.Carnivores)
		food = max(food, p.Food)
	}
	return creatures, food
}

// PeakSpecies returns the largest single-species herbivore count seen.
func (h *History) PeakSpecies() int {
	peak := 0
	for _, p := range h.points {
		for _, n := range p.SpeciesCounts {
			peak = max(peak, n)
		}
	}
	return peak
}

// SpeciesTags returns every colour tag present in any held point, sorted.
func (h *History) SpeciesTags() []uint32 {
	seen := make(map[uint32]struct{})
	for _, p := range h.points {
		for tag := range p.SpeciesCounts {
			seen[tag] = struct{}{}
		}
	}
	tags := make([]uint32, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}
