package telemetry

import "log/slog"

// WindowStats holds aggregated statistics for one simulated-time window.
type WindowStats struct {
	WindowStartTick int64
	WindowEndTick   int64
	SimTimeSec      float64

	// Population at window end
	Herbivores int
	Carnivores int
	Food       int

	// Events during window
	HerbBirths       int
	CarnBirths       int
	HerbDeaths       int
	CarnDeaths       int
	DeathsAge        int
	DeathsStarvation int
	DeathsPredation  int
	Kills            int
	FoodSpawned      int
	FoodEaten        int
	HerbRespawned    int
	CarnRespawned    int

	// Genome distribution (sampled at window end)
	HerbSpeed      TraitStats
	HerbLifespan   TraitStats
	HerbFoodNeeded TraitStats
	HerbOffspring  TraitStats
	CarnSpeed      TraitStats
	CarnLifespan   TraitStats

	ActiveColors int
}

// Extinct reports whether both kinds are gone.
func (s WindowStats) Extinct() bool {
	return s.Herbivores == 0 && s.Carnivores == 0
}

func traitValue(prefix string, t TraitStats) slog.Attr {
	return slog.Group(prefix,
		slog.Float64("mean", t.Mean),
		slog.Float64("std", t.Std),
		slog.Float64("p10", t.P10),
		slog.Float64("p50", t.P50),
		slog.Float64("p90", t.P90),
	)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartTick),
		slog.Int64("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("herbivores", s.Herbivores),
		slog.Int("carnivores", s.Carnivores),
		slog.Int("food", s.Food),
		slog.Int("herb_births", s.HerbBirths),
		slog.Int("carn_births", s.CarnBirths),
		slog.Int("herb_deaths", s.HerbDeaths),
		slog.Int("carn_deaths", s.CarnDeaths),
		slog.Int("deaths_age", s.DeathsAge),
		slog.Int("deaths_starvation", s.DeathsStarvation),
		slog.Int("deaths_predation", s.DeathsPredation),
		slog.Int("kills", s.Kills),
		slog.Int("food_spawned", s.FoodSpawned),
		slog.Int("food_eaten", s.FoodEaten),
		slog.Int("herb_respawned", s.HerbRespawned),
		slog.Int("carn_respawned", s.CarnRespawned),
		traitValue("herb_speed", s.HerbSpeed),
		traitValue("herb_lifespan", s.HerbLifespan),
		traitValue("carn_speed", s.CarnSpeed),
		slog.Int("active_colors", s.ActiveColors),
	)
}

// LogStats logs the window stats using the given logger, or the default one.
func (s WindowStats) LogStats(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"herbivores", s.Herbivores,
		"carnivores", s.Carnivores,
		"food", s.Food,
		"herb_births", s.HerbBirths,
		"carn_births", s.CarnBirths,
		"herb_deaths", s.HerbDeaths,
		"carn_deaths", s.CarnDeaths,
		"kills", s.Kills,
		"food_eaten", s.FoodEaten,
		"herb_speed_mean", s.HerbSpeed.Mean,
		"herb_lifespan_mean", s.HerbLifespan.Mean,
		"active_colors", s.ActiveColors,
	)
}

// WindowStatsCSV is a flat struct for CSV export of window stats.
type WindowStatsCSV struct {
	WindowEnd        int64   `csv:"window_end"`
	SimTime          float64 `csv:"sim_time"`
	Herbivores       int     `csv:"herbivores"`
	Carnivores       int     `csv:"carnivores"`
	Food             int     `csv:"food"`
	HerbBirths       int     `csv:"herb_births"`
	CarnBirths       int     `csv:"carn_births"`
	HerbDeaths       int     `csv:"herb_deaths"`
	CarnDeaths       int     `csv:"carn_deaths"`
	DeathsAge        int     `csv:"deaths_age"`
	DeathsStarvation int     `csv:"deaths_starvation"`
	DeathsPredation  int     `csv:"deaths_predation"`
	Kills            int     `csv:"kills"`
	FoodSpawned      int     `csv:"food_spawned"`
	FoodEaten        int     `csv:"food_eaten"`
	HerbRespawned    int     `csv:"herb_respawned"`
	CarnRespawned    int     `csv:"carn_respawned"`
	HerbSpeedMean    float64 `csv:"herb_speed_mean"`
	HerbSpeedStd     float64 `csv:"herb_speed_std"`
	HerbSpeedP10     float64 `csv:"herb_speed_p10"`
	HerbSpeedP50     float64 `csv:"herb_speed_p50"`
	HerbSpeedP90     float64 `csv:"herb_speed_p90"`
	HerbLifespanMean float64 `csv:"herb_lifespan_mean"`
	HerbFoodNeeded   float64 `csv:"herb_food_needed_mean"`
	HerbOffspring    float64 `csv:"herb_offspring_mean"`
	CarnSpeedMean    float64 `csv:"carn_speed_mean"`
	CarnLifespanMean float64 `csv:"carn_lifespan_mean"`
	ActiveColors     int     `csv:"active_colors"`
}

// ToCSV converts WindowStats to a flat CSV-friendly struct.
func (s WindowStats) ToCSV() WindowStatsCSV {
	return WindowStatsCSV{
		WindowEnd:        s.WindowEndTick,
		SimTime:          s.SimTimeSec,
		Herbivores:       s.Herbivores,
		Carnivores:       s.Carnivores,
		Food:             s.Food,
		HerbBirths:       s.HerbBirths,
		CarnBirths:       s.CarnBirths,
		HerbDeaths:       s.HerbDeaths,
		CarnDeaths:       s.CarnDeaths,
		DeathsAge:        s.DeathsAge,
		DeathsStarvation: s.DeathsStarvation,
		DeathsPredation:  s.DeathsPredation,
		Kills:            s.Kills,
		FoodSpawned:      s.FoodSpawned,
		FoodEaten:        s.FoodEaten,
		HerbRespawned:    s.HerbRespawned,
		CarnRespawned:    s.CarnRespawned,
		HerbSpeedMean:    s.HerbSpeed.Mean,
		HerbSpeedStd:     s.HerbSpeed.Std,
		HerbSpeedP10:     s.HerbSpeed.P10,
		HerbSpeedP50:     s.HerbSpeed.P50,
		HerbSpeedP90:     s.HerbSpeed.P90,
		HerbLifespanMean: s.HerbLifespan.Mean,
		HerbFoodNeeded:   s.HerbFoodNeeded.Mean,
		HerbOffspring:    s.HerbOffspring.Mean,
		CarnSpeedMean:    s.CarnSpeed.Mean,
		CarnLifespanMean: s.CarnLifespan.Mean,
		ActiveColors:     s.ActiveColors,
	}
}
