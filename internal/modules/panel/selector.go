package panel

import (
	"github.com/rs/zerolog"

	"github.com/macrobasket/etf-server/internal/domain"
)

// Selector collapses the panel to one value per (country, indicator):
// the current-year value when present, otherwise the most recent earlier
// year. Future-dated estimates are never selected.
type Selector struct {
	currentYear int
	log         zerolog.Logger
}

// NewSelector creates a temporal value selector pinned to a year.
func NewSelector(currentYear int, log zerolog.Logger) *Selector {
	return &Selector{
		currentYear: currentYear,
		log:         log.With().Str("component", "temporal_selector").Logger(),
	}
}

// Select pivots the panel into one CountryRow per country, with a selected
// value per requested indicator. A country with no usable history for an
// indicator gets a missing cell, not an error.
func (s *Selector) Select(p *Panel, indicators []string) []domain.CountryRow {
	// country -> indicator -> year -> value
	byCountry := make(map[string]map[string]map[int]float64)
	for _, obs := range p.Observations() {
		if obs.Year > s.currentYear {
			continue
		}
		byIndicator, ok := byCountry[obs.Country]
		if !ok {
			byIndicator = make(map[string]map[int]float64)
			byCountry[obs.Country] = byIndicator
		}
		byYear, ok := byIndicator[obs.Indicator]
		if !ok {
			byYear = make(map[int]float64)
			byIndicator[obs.Indicator] = byYear
		}
		byYear[obs.Year] = obs.Value
	}

	rows := make([]domain.CountryRow, 0, len(p.Countries()))
	for _, country := range p.Countries() {
		row := domain.CountryRow{
			Country: country,
			Values:  make(map[string]float64, len(indicators)),
		}

		for _, indicator := range indicators {
			byYear := byCountry[country][indicator]
			if value, ok := selectValue(byYear, s.currentYear); ok {
				row.Values[indicator] = value
			}
		}

		rows = append(rows, row)
	}

	s.log.Debug().
		Int("countries", len(rows)).
		Int("year", s.currentYear).
		Msg("Temporal selection complete")

	return rows
}

// selectValue picks the value for one (country, indicator) history. The
// history already excludes future years.
func selectValue(byYear map[int]float64, currentYear int) (float64, bool) {
	if len(byYear) == 0 {
		return 0, false
	}
	if value, ok := byYear[currentYear]; ok {
		return value, true
	}

	bestYear := 0
	found := false
	for year := range byYear {
		if year < currentYear && (!found || year > bestYear) {
			bestYear = year
			found = true
		}
	}
	if !found {
		return 0, false
	}
	return byYear[bestYear], true
}
