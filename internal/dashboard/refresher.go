package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/afroash/aqi-monitor/internal/models"
)

// Fetcher returns the prediction to display. APIClient implements this.
type Fetcher interface {
	FetchLive(ctx context.Context) (models.LivePrediction, bool)
}

// Publisher receives every completed refresh. Hub implements this.
type Publisher interface {
	Publish(snapshot models.Snapshot)
}

// Refresher periodically fetches the live prediction, records it in the
// history and publishes the result.
type Refresher struct {
	fetcher   Fetcher
	history   *HistoryBuffer
	publisher Publisher
	interval  time.Duration
	logger    zerolog.Logger
	now       func() time.Time

	mutex   sync.RWMutex
	latest  models.Snapshot
	hasData bool
}

// NewRefresher creates a refresher. publisher may be nil.
func NewRefresher(fetcher Fetcher, history *HistoryBuffer, publisher Publisher, interval time.Duration, logger zerolog.Logger) *Refresher {
	return &Refresher{
		fetcher:   fetcher,
		history:   history,
		publisher: publisher,
		interval:  interval,
		logger:    logger.With().Str("component", "refresher").Logger(),
		now:       time.Now,
	}
}

// Run refreshes immediately, then again each interval after the previous
// refresh completed, until ctx is cancelled. Refreshes never overlap.
func (r *Refresher) Run(ctx context.Context) error {
	r.logger.Info().Dur("interval", r.interval).Msg("Refresher started")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.RefreshOnce(ctx)

		timer := time.NewTimer(r.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			r.logger.Info().Msg("Refresher stopped")
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// RefreshOnce performs a single fetch and publishes the resulting snapshot
func (r *Refresher) RefreshOnce(ctx context.Context) models.Snapshot {
	current, sample := r.fetcher.FetchLive(ctx)
	fetchedAt := r.now()

	r.history.Append(models.HistoryEntry{Timestamp: fetchedAt, AQI: current.AQI})

	snapshot := models.Snapshot{
		Current:   current,
		History:   r.history.Entries(),
		Sample:    sample,
		FetchedAt: fetchedAt,
	}

	r.mutex.Lock()
	r.latest = snapshot
	r.hasData = true
	r.mutex.Unlock()

	if r.publisher != nil {
		r.publisher.Publish(snapshot)
	}

	r.logger.Debug().
		Float64("aqi", current.AQI).
		Str("status", current.Status.String()).
		Bool("sample", sample).
		Int("history", len(snapshot.History)).
		Msg("Dashboard refreshed")
	return snapshot
}

// Latest returns the most recent snapshot, or false before the first refresh
func (r *Refresher) Latest() (models.Snapshot, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.latest, r.hasData
}

// Interval returns the wait between refreshes
func (r *Refresher) Interval() time.Duration {
	return r.interval
}
