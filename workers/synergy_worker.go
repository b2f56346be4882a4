// workers/synergy_worker.go
package workers

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"dream-league-engine/metrics"

	"github.com/go-co-op/gocron/v2"
)

// SynergyRefresher recomputes time-dependent team aggregates.
type SynergyRefresher interface {
	RefreshSynergy(ctx context.Context) (int, error)
}

// SynergyWorker periodically re-runs roster aggregation so synergy keeps
// growing with tenure between roster changes.
type SynergyWorker struct {
	teams    SynergyRefresher
	interval time.Duration
	metrics  *metrics.Recorder

	mu    sync.Mutex
	sched gocron.Scheduler
}

func NewSynergyWorker(teams SynergyRefresher, interval time.Duration, rec *metrics.Recorder) *SynergyWorker {
	return &SynergyWorker{teams: teams, interval: interval, metrics: rec}
}

// Start schedules the refresh, running once immediately. The scheduler stops
// when ctx is done.
func (w *SynergyWorker) Start(ctx context.Context) error {
	log.Printf("🔁 [SYNERGY] Starting synergy refresh worker (every %s)…", w.interval)

	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}
	_, err = sched.NewJob(
		gocron.DurationJob(w.interval),
		gocron.NewTask(func() {
			if err := w.RunOnce(ctx); err != nil {
				log.Printf("❌ [SYNERGY] Refresh failed: %v", err)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = sched.Shutdown()
		return fmt.Errorf("schedule synergy refresh: %w", err)
	}

	w.mu.Lock()
	w.sched = sched
	w.mu.Unlock()
	sched.Start()

	go func() {
		<-ctx.Done()
		w.Stop()
	}()
	return nil
}

// Stop shuts the scheduler down, waiting for a running refresh to finish.
// It is safe to call more than once and before Start.
func (w *SynergyWorker) Stop() {
	w.mu.Lock()
	sched := w.sched
	w.sched = nil
	w.mu.Unlock()
	if sched == nil {
		return
	}
	if err := sched.Shutdown(); err != nil {
		log.Printf("⚠️ [SYNERGY] Scheduler shutdown: %v", err)
	}
	log.Println("⏹️ [SYNERGY] Synergy refresh worker stopped")
}

// RunOnce performs a single refresh pass.
func (w *SynergyWorker) RunOnce(ctx context.Context) error {
	start := time.Now()
	n, err := w.teams.RefreshSynergy(ctx)
	w.metrics.RecordSynergyRefresh(n, time.Since(start), err)
	if err != nil {
		return err
	}
	if n > 0 {
		log.Printf("✅ [SYNERGY] Refreshed %d team(s) in %s", n, time.Since(start).Round(time.Millisecond))
	}
	return nil
}
