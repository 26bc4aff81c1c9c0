package payouts

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
)

// Authenticator restores the admin session before a tick touches the API.
type Authenticator interface {
	Ensure(ctx context.Context) error
}

// Refresher auto-refreshes every live desk on a fixed interval. Ticks run in
// singleton mode so a slow tick is never overlapped by the next one.
type Refresher struct {
	desks     *Desks
	auth      Authenticator
	interval  time.Duration
	scheduler *gocron.Scheduler
	log       zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewRefresher creates a refresher. auth may be nil.
func NewRefresher(desks *Desks, auth Authenticator, interval time.Duration, baseLogger *zerolog.Logger) *Refresher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Refresher{
		desks:     desks,
		auth:      auth,
		interval:  interval,
		scheduler: gocron.NewScheduler(time.UTC),
		log:       baseLogger.With().Str("component", "payout_refresher").Logger(),
	}
}

// Start schedules the job. The first tick fires one interval from now.
func (r *Refresher) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)

	r.scheduler.SingletonModeAll()
	if _, err := r.scheduler.Every(r.interval).WaitForSchedule().Do(r.Tick, ctx); err != nil {
		cancel()
		return fmt.Errorf("schedule auto-refresh: %w", err)
	}

	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()

	r.scheduler.StartAsync()
	r.log.Info().Dur("interval", r.interval).Msg("Auto-refresh started")
	return nil
}

// Stop cancels a running tick and stops the scheduler.
func (r *Refresher) Stop() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.mu.Unlock()
	r.scheduler.Stop()
	r.log.Info().Msg("Auto-refresh stopped")
}

// Tick refreshes all desks once and returns how many actually fetched.
func (r *Refresher) Tick(ctx context.Context) int {
	if ctx.Err() != nil {
		return 0
	}
	desks := r.desks.All()
	if len(desks) == 0 {
		return 0
	}

	if r.auth != nil {
		if err := r.auth.Ensure(ctx); err != nil {
			r.log.Warn().Err(err).Msg("No admin session, skipping auto-refresh")
			return 0
		}
	}

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ran int
	)
	for _, d := range desks {
		wg.Add(1)
		go func(d *Desk) {
			defer wg.Done()
			if d.AutoRefresh(ctx) {
				mu.Lock()
				ran++
				mu.Unlock()
			}
		}(d)
	}
	wg.Wait()

	r.log.Debug().Int("desks", len(desks)).Int("refreshed", ran).Msg("Auto-refresh tick")
	return ran
}
