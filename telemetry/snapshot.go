// Package telemetry provides statistics reporting, windowed ecosystem
// health tracking and experiment output.
package telemetry

import (
	"fmt"
	"sort"
	"strings"
)

// Snapshot is the periodic aggregate emitted to stats consumers.
type Snapshot struct {
	T             float64        `json:"t"` // wall seconds since the reporter started
	Herbivores    int            `json:"herbivores"`
	Carnivores    int            `json:"carnivores"`
	Food          int            `json:"food"`
	SpeciesCounts map[uint32]int `json:"speciesCounts"` // herbivores per colour tag
}

// SpeciesTotal sums the species counts.
func (s Snapshot) SpeciesTotal() int {
	n := 0
	for _, c := range s.SpeciesCounts {
		n += c
	}
	return n
}

// FormatSpecies flattens the species counts as "tag:count;..." sorted by tag,
// with tags in hex.
func FormatSpecies(counts map[uint32]int) string {
	tags := make([]uint32, 0, len(counts))
	for tag := range counts {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })

	var b strings.Builder
	for i, tag := range tags {
		if i > 0 {
			b.WriteByte(';')
		}
		fmt.Fprintf(&b, "%06x:%d", tag, counts[tag])
	}
	return b.String()
}

// SnapshotCSV is the flat CSV row for a snapshot.
type SnapshotCSV struct {
	T          float64 `csv:"t"`
	Herbivores int     `csv:"herbivores"`
	Carnivores int     `csv:"carnivores"`
	Food       int     `csv:"food"`
	Species    string  `csv:"species"`
}

// ToCSV converts a snapshot to its CSV row.
func (s Snapshot) ToCSV() SnapshotCSV {
	return SnapshotCSV{
		T:          s.T,
		Herbivores: s.Herbivores,
		Carnivores: s.Carnivores,
		Food:       s.Food,
		Species:    FormatSpecies(s.SpeciesCounts),
	}
}
