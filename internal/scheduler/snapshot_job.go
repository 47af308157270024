package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/macrobasket/etf-server/internal/modules/etf"
	"github.com/macrobasket/etf-server/internal/modules/history"
)

// SnapshotJob appends the current basket valuation to the history log on a
// schedule. It reuses a cached snapshot when one is fresh enough, so the
// job and on-demand refreshes never run the pipeline twice concurrently.
type SnapshotJob struct {
	cache   *etf.Cache
	repo    *history.Repository
	maxAge  time.Duration
	timeout time.Duration
	log     zerolog.Logger
}

// NewSnapshotJob creates a history snapshot job.
func NewSnapshotJob(cache *etf.Cache, repo *history.Repository, maxAge time.Duration, log zerolog.Logger) *SnapshotJob {
	return &SnapshotJob{
		cache:   cache,
		repo:    repo,
		maxAge:  maxAge,
		timeout: 5 * time.Minute,
		log:     log.With().Str("job", "history_snapshot").Logger(),
	}
}

// Name returns the job name
func (j *SnapshotJob) Name() string {
	return "history_snapshot"
}

// Run refreshes the snapshot if needed and logs its value.
func (j *SnapshotJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	snapshot, err := j.cache.GetOrRefresh(ctx, j.maxAge)
	if err != nil {
		return err
	}

	if err := j.repo.Append(snapshot.BuiltAt, snapshot.Value); err != nil {
		return err
	}

	j.log.Info().
		Str("run_id", snapshot.RunID).
		Float64("value", snapshot.Value).
		Msg("Basket value logged")

	return nil
}
