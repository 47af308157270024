package etf

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/macrobasket/etf-server/internal/domain"
	"github.com/macrobasket/etf-server/internal/modules/currency"
	"github.com/macrobasket/etf-server/internal/modules/health"
	"github.com/macrobasket/etf-server/internal/modules/panel"
	"github.com/macrobasket/etf-server/internal/modules/scoring"
	"github.com/macrobasket/etf-server/internal/modules/valuation"
)

// Service runs the allocation pipeline end to end: load panel, select
// values, resolve currencies, join FX rates, filter, score, value. Each
// run is strictly sequential over its own in-memory tables and returns
// either a complete snapshot or an error, never a partial result.
type Service struct {
	panelPath      string
	loader         *panel.Loader
	resolver       *currency.Resolver
	joiner         *currency.Joiner
	filter         *health.Filter
	scorer         *scoring.Scorer
	profile        health.Profile
	withHistorical bool
	now            func() time.Time
	log            zerolog.Logger
}

// Config wires a pipeline service.
type Config struct {
	PanelPath      string
	Schema         panel.Schema
	Metadata       currency.MetadataSource
	Rates          currency.RateSource
	Profile        health.Profile
	WithHistorical bool
	Log            zerolog.Logger
}

// NewService creates a pipeline service.
func NewService(cfg Config) *Service {
	log := cfg.Log.With().Str("component", "etf_pipeline").Logger()

	return &Service{
		panelPath:      cfg.PanelPath,
		loader:         panel.NewLoader(cfg.Schema, cfg.Log),
		resolver:       currency.NewResolver(cfg.Metadata, cfg.Log),
		joiner:         currency.NewJoiner(cfg.Rates, cfg.WithHistorical, cfg.Log),
		filter:         health.NewFilter(cfg.Profile, cfg.Log),
		scorer:         scoring.NewScorer(cfg.Log),
		profile:        cfg.Profile,
		withHistorical: cfg.WithHistorical,
		now:            time.Now,
		log:            log,
	}
}

// WithClock overrides the clock (tests).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	s.joiner.WithClock(now)
	return s
}

// Build executes one pipeline run.
func (s *Service) Build(ctx context.Context) (*domain.Snapshot, error) {
	runID := uuid.New().String()
	start := s.now()
	log := s.log.With().Str("run_id", runID).Logger()

	p, err := s.loader.Load(s.panelPath)
	if err != nil {
		return nil, fmt.Errorf("panel load failed: %w", err)
	}

	selector := panel.NewSelector(start.Year(), log)
	rows := selector.Select(p, allIndicators())

	rows, noCurrency, err := s.resolver.Resolve(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("currency resolution failed: %w", err)
	}

	wide, noRate, err := s.joiner.Join(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("FX join failed: %w", err)
	}
	if len(wide) == 0 {
		return nil, fmt.Errorf("no countries survived currency resolution and FX join")
	}

	eligible, filterSkipped := s.filter.Apply(wide)

	result, err := s.scorer.Score(eligible, s.scoreIndicators(wide))
	if err != nil {
		return nil, fmt.Errorf("composite scoring failed: %w", err)
	}

	value, err := valuation.BasketValue(result.Rows, wide)
	if err != nil {
		return nil, fmt.Errorf("valuation failed: %w", err)
	}

	snapshot := &domain.Snapshot{
		RunID:   runID,
		BuiltAt: start,
		Profile: string(s.profile),
		Weights: result.Rows,
		Wide:    wide,
		Value:   value,
		Summary: valuation.BuildSummary(result.Rows, wide, valuation.TopN),
		Dropped: domain.DropStats{
			NoCurrency: noCurrency,
			NoFXRate:   noRate,
		},
		FilterSkipped: filterSkipped,
		ScoreFallback: result.Fallback,
	}

	log.Info().
		Int("countries", len(wide)).
		Int("weighted", len(snapshot.Weights)).
		Float64("value", snapshot.Value).
		Dur("duration", s.now().Sub(start)).
		Msg("Pipeline run complete")

	return snapshot, nil
}

// scoreIndicators is the profile's filter indicators plus the FX change
// column when the historical leg produced one.
func (s *Service) scoreIndicators(wide []domain.CountryRow) []string {
	indicators := s.profile.Indicators()

	if s.withHistorical {
		for _, row := range wide {
			if _, ok := row.Value(domain.IndicatorFXChange); ok {
				return append(indicators, domain.IndicatorFXChange)
			}
		}
	}

	return indicators
}

// allIndicators lists every panel indicator the pipeline selects: the
// filter/score columns of both profiles plus the display columns.
func allIndicators() []string {
	return []string{
		domain.IndicatorGDP,
		domain.IndicatorUnemployment,
		domain.IndicatorInflation,
		domain.IndicatorGovtDebt,
		domain.IndicatorCurrentAccount,
		domain.IndicatorExternalDebt,
		domain.IndicatorExports,
	}
}
