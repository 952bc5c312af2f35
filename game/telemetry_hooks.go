package game

import (
	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/telemetry"
)

// flushTelemetry closes the stats window once enough simulated time passed.
func (s *Simulation) flushTelemetry() {
	if !s.collector.ShouldFlush(s.simTime) {
		return
	}

	stats := s.collector.Flush(s.tick, s.simTime, s.samplePopulation())
	perfStats := s.perf.Stats()

	if s.windowCallback != nil {
		s.windowCallback(stats)
	}

	if s.logStats {
		stats.LogStats(s.logger)
		perfStats.LogStats(s.logger)
	}

	if s.output != nil {
		if err := s.output.WriteTelemetry(stats); err != nil {
			s.logger.Error("failed to write telemetry", "error", err)
		}
		if err := s.output.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			s.logger.Error("failed to write perf", "error", err)
		}
	}
}

// samplePopulation collects the genomes of live creatures for distribution stats.
func (s *Simulation) samplePopulation() telemetry.Population {
	pop := telemetry.Population{
		Herbivores: make([]components.Genome, 0, s.store.Herbivores()),
		Carnivores: make([]components.Genome, 0, s.store.Carnivores()),
		Food:       s.store.FoodCount(),
	}
	for _, e := range s.store.Creatures() {
		_, _, cr, g := s.store.Get(e)
		if !cr.Alive {
			continue
		}
		if cr.Kind == components.Herbivore {
			pop.Herbivores = append(pop.Herbivores, *g)
		} else {
			pop.Carnivores = append(pop.Carnivores, *g)
		}
	}
	return pop
}
