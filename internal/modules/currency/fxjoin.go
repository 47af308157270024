package currency

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/macrobasket/etf-server/internal/domain"
)

// RateSource provides whole-batch FX rates against a base currency, as
// currency units per 1 unit of base.
type RateSource interface {
	Latest(ctx context.Context, base string) (map[string]float64, error)
	Historical(ctx context.Context, base string, date time.Time) (map[string]float64, error)
}

// Joiner merges FX rates into the wide table: one batched latest-rates call
// and, when enabled, one historical call 365 days back for the trailing
// change indicator. A rate-source failure fails the whole run.
type Joiner struct {
	source         rateSourceWithClock
	withHistorical bool
	log            zerolog.Logger
}

type rateSourceWithClock struct {
	RateSource
	now func() time.Time
}

// NewJoiner creates an FX joiner.
func NewJoiner(source RateSource, withHistorical bool, log zerolog.Logger) *Joiner {
	return &Joiner{
		source:         rateSourceWithClock{RateSource: source, now: time.Now},
		withHistorical: withHistorical,
		log:            log.With().Str("component", "fx_join").Logger(),
	}
}

// WithClock overrides the clock used to anchor the historical lookup.
func (j *Joiner) WithClock(now func() time.Time) *Joiner {
	j.source.now = now
	return j
}

// Join attaches fx_rate (and fx_rate_1y plus the fx_change indicator when
// the historical leg is enabled) to each row. Countries whose currency is
// absent from the returned rates, or whose rate is non-positive, are
// dropped and counted.
func (j *Joiner) Join(ctx context.Context, rows []domain.CountryRow) ([]domain.CountryRow, int, error) {
	latest, err := j.source.Latest(ctx, "USD")
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch latest FX rates: %w", err)
	}

	var historical map[string]float64
	if j.withHistorical {
		date := j.source.now().AddDate(0, 0, -365)
		historical, err = j.source.Historical(ctx, "USD", date)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to fetch historical FX rates: %w", err)
		}
	}

	joined := make([]domain.CountryRow, 0, len(rows))
	dropped := 0

	for _, row := range rows {
		rate, ok := latest[row.Currency]
		if !ok || rate <= 0 {
			dropped++
			j.log.Debug().
				Str("country", row.Country).
				Str("currency", row.Currency).
				Msg("No FX rate, dropping country")
			continue
		}

		out := row.Clone()
		out.FXRate = &rate

		if historical != nil {
			if prior, ok := historical[row.Currency]; ok && prior > 0 {
				out.FXRate1Y = &prior
				out.Values[domain.IndicatorFXChange] = (rate - prior) / prior
			}
		}

		joined = append(joined, out)
	}

	if dropped > 0 {
		j.log.Info().Int("dropped", dropped).Msg("Countries without an FX rate")
	}

	return joined, dropped, nil
}
