package cmd

import (
	"log/slog"
	"time"

	"github.com/Aman-CERP/omnisearch/internal/adapters"
	"github.com/Aman-CERP/omnisearch/internal/analyzer"
	"github.com/Aman-CERP/omnisearch/internal/config"
	"github.com/Aman-CERP/omnisearch/internal/health"
	"github.com/Aman-CERP/omnisearch/internal/orchestrator"
	"github.com/Aman-CERP/omnisearch/internal/provider"
	"github.com/Aman-CERP/omnisearch/internal/state"
	"github.com/Aman-CERP/omnisearch/internal/tracker"
)

// app bundles the wired subsystems for one process.
type app struct {
	cfg    *config.Store
	orch   *orchestrator.Orchestrator
	state  *state.Manager
	logger *slog.Logger
}

// buildApp wires configuration, adapters, health, tracking, persistence,
// and the orchestrator. The returned app owns the state manager; callers
// must Close it on shutdown.
func buildApp(logger *slog.Logger, onDemand bool) (*app, error) {
	cfg, err := config.Load(".", logger)
	if err != nil {
		return nil, err
	}
	if onDemand {
		cfg.ApplyOnDemandDefaults()
	}

	store := config.NewStore(cfg)

	reg := provider.NewRegistry()
	adapters.RegisterAll(reg, logger)

	hm := health.NewManager(
		health.WithBreakerThreshold(cfg.CircuitBreakerThreshold),
		health.WithBreakerTimeout(time.Duration(cfg.CircuitBreakerTimeoutMS)*time.Millisecond),
	)
	tr := tracker.New(tracker.WithMaxHistory(cfg.MaxHistory))

	// Restore persisted state before wiring save triggers, so the load
	// itself does not schedule a save.
	sm := state.NewManager(
		state.DefaultDir(cfg.StateDir),
		time.Duration(cfg.SaveThrottleMS)*time.Millisecond,
		logger,
	)
	snap, err := sm.Load(cfg.MaxHistory)
	if err != nil {
		logger.Warn("state load failed, starting fresh", slog.String("error", err.Error()))
	} else {
		hm.Restore(snap.ProviderHealth)
		tr.Restore(snap.PerformanceRecords)
		store.ApplyOverrides(snap.ConfigurationOverrides)
	}

	sm.SetCollector(func() state.Snapshot {
		return state.Snapshot{
			ProviderHealth:         hm.All(),
			PerformanceRecords:     tr.History(),
			ConfigurationOverrides: store.Overrides(),
		}
	})
	hm.SetOnChange(sm.ScheduleSave)
	tr.SetOnChange(sm.ScheduleSave)
	store.SetOnChange(sm.ScheduleSave)

	orch := orchestrator.New(orchestrator.Deps{
		Registry: reg,
		Analyzer: analyzer.New(),
		Health:   hm,
		Tracker:  tr,
		Config:   store,
		Logger:   logger,
	})

	return &app{cfg: store, orch: orch, state: sm, logger: logger}, nil
}

// Close flushes pending state.
func (a *app) Close() {
	a.state.Close()
}
