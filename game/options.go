package game

import (
	"log/slog"
	"time"

	"github.com/pthm-cable/ecosim/config"
	"github.com/pthm-cable/ecosim/telemetry"
)

// Options configures a Simulation.
type Options struct {
	// Seed for the simulation's random source. Zero picks a time-based seed.
	Seed int64

	// Settings used until an Initialize message carries its own.
	Settings config.Settings

	// StatsSink receives the periodic snapshots. Required: Initialize fails
	// with ErrNoStatsSink when it is nil. Use telemetry.Discard to opt out.
	StatsSink telemetry.Sink

	// Clock drives the stats cadence. Nil means time.Now.
	Clock func() time.Time

	// StatsInterval is the wall-clock snapshot cadence. Zero means one second.
	StatsInterval time.Duration

	// SpatialIndex enables grid buckets for the carnivore chase query.
	SpatialIndex bool
	GridCellSize float64

	// StatsWindowSec is the simulated length of a telemetry window.
	StatsWindowSec float64

	// Output receives window stats, perf rows and every snapshot. May be nil.
	Output *telemetry.OutputManager

	// LogStats logs every flushed window.
	LogStats bool

	// WindowCallback, if set, is called with every flushed window.
	WindowCallback func(telemetry.WindowStats)

	// PerfWindow is the number of ticks the perf collector averages over.
	PerfWindow int

	Logger *slog.Logger
}

func (o *Options) withDefaults() {
	if o.Seed == 0 {
		o.Seed = time.Now().UnixNano()
	}
	if o.Settings == (config.Settings{}) {
		o.Settings = config.DefaultSettings()
	}
	o.Settings = o.Settings.Sanitize()
	if o.GridCellSize <= 0 {
		o.GridCellSize = 100
	}
	if o.StatsWindowSec <= 0 {
		o.StatsWindowSec = 10
	}
	if o.PerfWindow <= 0 {
		o.PerfWindow = 60
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}
