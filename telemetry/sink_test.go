package telemetry

import (
	"testing"
	"time"
)

func TestLatestKeepsOnlyNewest(t *testing.T) {
	l := NewLatest()

	if _, ok := l.Poll(); ok {
		t.Fatal("empty mailbox should have nothing to poll")
	}

	l.Publish(Snapshot{Herbivores: 1})
	l.Publish(Snapshot{Herbivores: 2})

	got, ok := l.Poll()
	if !ok || got.Herbivores != 2 {
		t.Errorf("Poll = %+v, %v; want the second snapshot", got, ok)
	}
	if _, ok := l.Poll(); ok {
		t.Error("older snapshot should have been dropped")
	}
}

func TestMultiAndSinkFunc(t *testing.T) {
	var got []int
	a := SinkFunc(func(s Snapshot) { got = append(got, s.Food) })
	b := SinkFunc(func(s Snapshot) { got = append(got, s.Food*10) })

	Multi{a, Discard, b}.Publish(Snapshot{Food: 3})

	if len(got) != 2 || got[0] != 3 || got[1] != 30 {
		t.Errorf("got %v, want [3 30]", got)
	}
}

type fakeCounts struct {
	herb, carn, food int
	species          map[uint32]int
}

func (f fakeCounts) HerbivoreCount() int           { return f.herb }
func (f fakeCounts) CarnivoreCount() int           { return f.carn }
func (f fakeCounts) FoodCount() int                { return f.food }
func (f fakeCounts) SpeciesCounts() map[uint32]int { return f.species }

func TestReporterCadence(t *testing.T) {
	start := time.Unix(1000, 0)
	now := start
	clock := func() time.Time { return now }

	var got []Snapshot
	r := NewReporter(SinkFunc(func(s Snapshot) { got = append(got, s) }), time.Second, clock)
	counts := fakeCounts{herb: 3, carn: 1, food: 9, species: map[uint32]int{0x22c55e: 3}}

	steps := []struct {
		advance time.Duration
		want    bool
	}{
		{500 * time.Millisecond, false},
		{499 * time.Millisecond, false},
		{1 * time.Millisecond, true},
		{999 * time.Millisecond, false},
		{5 * time.Second, true},
	}
	for i, st := range steps {
		now = now.Add(st.advance)
		if published := r.Maybe(counts); published != st.want {
			t.Errorf("step %d: published = %v, want %v", i, published, st.want)
		}
	}

	if len(got) != 2 || r.Sent() != 2 {
		t.Fatalf("got %d snapshots, want 2", len(got))
	}
	if got[0].T != 1 {
		t.Errorf("first snapshot t = %v, want 1", got[0].T)
	}
	if got[1].Herbivores != 3 || got[1].Carnivores != 1 || got[1].Food != 9 {
		t.Errorf("unexpected snapshot %+v", got[1])
	}
	if got[1].SpeciesTotal() != got[1].Herbivores {
		t.Error("species counts should sum to herbivores")
	}
}

func TestFormatSpecies(t *testing.T) {
	got := FormatSpecies(map[uint32]int{0x4ade80: 2, 0x22c55e: 5})
	want := "22c55e:5;4ade80:2"
	if got != want {
		t.Errorf("FormatSpecies = %q, want %q", got, want)
	}
	if FormatSpecies(nil) != "" {
		t.Error("empty counts should format to an empty string")
	}
}
