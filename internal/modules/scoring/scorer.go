package scoring

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/macrobasket/etf-server/internal/domain"
	"github.com/macrobasket/etf-server/pkg/formulas"
)

// Result is the scored allocation table.
type Result struct {
	Rows []domain.WeightRow

	// Fallback is set when no country scored above zero and the full
	// scored set was used instead.
	Fallback bool

	// DroppedColumns lists indicator columns excluded because they were
	// entirely missing over the eligible set.
	DroppedColumns []string
}

// Scorer turns the eligible wide table into composite scores and
// normalized weights: median-impute each indicator column, standardize to
// population z-scores, average per country, keep positive scores, then
// normalize to weights summing to 1.
type Scorer struct {
	log zerolog.Logger
}

// NewScorer creates a composite scorer.
func NewScorer(log zerolog.Logger) *Scorer {
	return &Scorer{
		log: log.With().Str("component", "composite_scorer").Logger(),
	}
}

// Score computes weights over rows for the given indicator columns.
func (s *Scorer) Score(rows []domain.CountryRow, indicators []string) (Result, error) {
	if len(rows) == 0 {
		return Result{}, fmt.Errorf("no countries to score")
	}

	var result Result

	// Build imputed columns. An entirely-missing column cannot be imputed
	// and is excluded rather than poisoning the composite.
	columns := make([][]float64, 0, len(indicators))
	for _, indicator := range indicators {
		column, ok := imputedColumn(rows, indicator)
		if !ok {
			result.DroppedColumns = append(result.DroppedColumns, indicator)
			s.log.Warn().Str("indicator", indicator).Msg("Indicator entirely missing, excluded from scoring")
			continue
		}
		columns = append(columns, formulas.ZScores(column))
	}

	if len(columns) == 0 {
		return Result{}, fmt.Errorf("no usable indicator columns among %v", indicators)
	}

	// Composite score: mean of z-scores across columns, per country.
	scores := make([]float64, len(rows))
	for i := range rows {
		sum := 0.0
		for _, column := range columns {
			sum += column[i]
		}
		scores[i] = sum / float64(len(columns))
	}

	// Positivity filter with full-set fallback.
	keep := make([]int, 0, len(rows))
	for i, score := range scores {
		if score > 0 {
			keep = append(keep, i)
		}
	}
	if len(keep) == 0 {
		result.Fallback = true
		s.log.Warn().Int("countries", len(rows)).Msg("No positive composite scores, keeping full scored set")
		for i := range rows {
			keep = append(keep, i)
		}
	}

	total := 0.0
	for _, i := range keep {
		total += scores[i]
	}

	// Only reachable through the fallback set: normalizing against a
	// non-positive sum would produce meaningless weights, so degrade to an
	// equal-weight basket over the same rows.
	equalWeight := total <= 0
	if equalWeight {
		s.log.Warn().Float64("score_sum", total).Msg("Non-positive score sum, using equal weights")
	}

	result.Rows = make([]domain.WeightRow, 0, len(keep))
	for _, i := range keep {
		weight := 1 / float64(len(keep))
		if !equalWeight {
			weight = scores[i] / total
		}
		result.Rows = append(result.Rows, domain.WeightRow{
			Country:  rows[i].Country,
			Currency: rows[i].Currency,
			Score:    scores[i],
			Weight:   weight,
		})
	}

	s.log.Info().
		Int("scored", len(rows)).
		Int("weighted", len(result.Rows)).
		Bool("fallback", result.Fallback).
		Msg("Composite scoring complete")

	return result, nil
}

// imputedColumn extracts one indicator column aligned to rows, replacing
// missing cells with the column median. Returns false when every cell is
// missing.
func imputedColumn(rows []domain.CountryRow, indicator string) ([]float64, bool) {
	present := make([]float64, 0, len(rows))
	for _, row := range rows {
		if v, ok := row.Value(indicator); ok {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return nil, false
	}

	median := formulas.Median(present)
	column := make([]float64, len(rows))
	for i, row := range rows {
		if v, ok := row.Value(indicator); ok {
			column[i] = v
		} else {
			column[i] = median
		}
	}
	return column, true
}
