package health

import (
	"github.com/rs/zerolog"

	"github.com/macrobasket/etf-server/internal/domain"
	"github.com/macrobasket/etf-server/pkg/formulas"
)

// Filter applies the active profile's macro-eligibility thresholds.
// A row must satisfy every condition; a missing indicator fails its
// condition. If no country passes, the filter becomes a no-op and the
// input table is returned unchanged.
type Filter struct {
	profile Profile
	log     zerolog.Logger
}

// NewFilter creates a health filter for a profile.
func NewFilter(profile Profile, log zerolog.Logger) *Filter {
	return &Filter{
		profile: profile,
		log:     log.With().Str("component", "health_filter").Str("profile", string(profile)).Logger(),
	}
}

// Apply returns the eligible subset, or the unchanged input (skipped=true)
// when the conjunction matches nothing.
func (f *Filter) Apply(rows []domain.CountryRow) (kept []domain.CountryRow, skipped bool) {
	eligible := f.eligibility(rows)

	kept = make([]domain.CountryRow, 0, len(rows))
	for _, row := range rows {
		if eligible(row) {
			kept = append(kept, row)
		}
	}

	if len(kept) == 0 {
		f.log.Warn().
			Int("candidates", len(rows)).
			Msg("Health filter matched no countries, skipping filter")
		return rows, true
	}

	f.log.Info().
		Int("candidates", len(rows)).
		Int("eligible", len(kept)).
		Msg("Health filter applied")

	return kept, false
}

func (f *Filter) eligibility(rows []domain.CountryRow) func(domain.CountryRow) bool {
	if f.profile == ProfileStrict {
		gdpMedian := indicatorMedian(rows, domain.IndicatorGDP)
		exportsMedian := indicatorMedian(rows, domain.IndicatorExports)

		return func(row domain.CountryRow) bool {
			return below(row, domain.IndicatorUnemployment, strictMaxUnemployment) &&
				below(row, domain.IndicatorGovtDebt, strictMaxGovtDebt) &&
				between(row, domain.IndicatorInflation, strictMinInflation, strictMaxInflation) &&
				above(row, domain.IndicatorCurrentAccount, strictMinCurrentAccount) &&
				below(row, domain.IndicatorExternalDebt, strictMaxExternalDebt) &&
				atLeast(row, domain.IndicatorGDP, gdpMedian) &&
				atLeast(row, domain.IndicatorExports, exportsMedian)
		}
	}

	return func(row domain.CountryRow) bool {
		return below(row, domain.IndicatorUnemployment, relaxedMaxUnemployment) &&
			below(row, domain.IndicatorGovtDebt, relaxedMaxGovtDebt) &&
			between(row, domain.IndicatorInflation, relaxedMinInflation, relaxedMaxInflation) &&
			above(row, domain.IndicatorCurrentAccount, relaxedMinCurrentAccount)
	}
}

// indicatorMedian computes the median of an indicator over the rows where
// it is present.
func indicatorMedian(rows []domain.CountryRow, indicator string) float64 {
	values := make([]float64, 0, len(rows))
	for _, row := range rows {
		if v, ok := row.Value(indicator); ok {
			values = append(values, v)
		}
	}
	return formulas.Median(values)
}

func below(row domain.CountryRow, indicator string, max float64) bool {
	v, ok := row.Value(indicator)
	return ok && v < max
}

func above(row domain.CountryRow, indicator string, min float64) bool {
	v, ok := row.Value(indicator)
	return ok && v > min
}

func atLeast(row domain.CountryRow, indicator string, min float64) bool {
	v, ok := row.Value(indicator)
	return ok && v >= min
}

func between(row domain.CountryRow, indicator string, min, max float64) bool {
	v, ok := row.Value(indicator)
	return ok && v >= min && v <= max
}
