package scoring

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macrobasket/etf-server/internal/domain"
)

func scoringRows(values map[string][]float64, countries []string) []domain.CountryRow {
	rows := make([]domain.CountryRow, len(countries))
	for i, country := range countries {
		rows[i] = domain.CountryRow{
			Country:  country,
			Currency: "USD",
			Values:   map[string]float64{},
		}
		for indicator, column := range values {
			rows[i].Values[indicator] = column[i]
		}
	}
	return rows
}

func weightSum(rows []domain.WeightRow) float64 {
	sum := 0.0
	for _, r := range rows {
		sum += r.Weight
	}
	return sum
}

func TestScorerWeightsSumToOne(t *testing.T) {
	rows := scoringRows(map[string][]float64{
		domain.IndicatorUnemployment: {3.0, 6.0, 12.0},
		domain.IndicatorGovtDebt:     {40.0, 90.0, 150.0},
	}, []string{"A", "B", "C"})

	scorer := NewScorer(zerolog.Nop())
	result, err := scorer.Score(rows, []string{domain.IndicatorUnemployment, domain.IndicatorGovtDebt})
	require.NoError(t, err)

	assert.False(t, result.Fallback)
	assert.InDelta(t, 1.0, weightSum(result.Rows), 1e-9)
	for _, r := range result.Rows {
		assert.Greater(t, r.Weight, 0.0)
		assert.Greater(t, r.Score, 0.0)
	}
	// The composite is the plain mean of z-scores, so only countries
	// above the column means score positive: C alone here.
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "C", result.Rows[0].Country)
	assert.InDelta(t, 1.0, result.Rows[0].Weight, 1e-12)
}

func TestScorerIsDeterministic(t *testing.T) {
	rows := scoringRows(map[string][]float64{
		domain.IndicatorUnemployment: {3.0, 6.0, 12.0, 8.0},
		domain.IndicatorInflation:    {1.0, 2.0, 3.0, 4.0},
	}, []string{"A", "B", "C", "D"})

	scorer := NewScorer(zerolog.Nop())
	first, err := scorer.Score(rows, []string{domain.IndicatorUnemployment, domain.IndicatorInflation})
	require.NoError(t, err)
	second, err := scorer.Score(rows, []string{domain.IndicatorUnemployment, domain.IndicatorInflation})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestScorerImputesMissingWithColumnMedian(t *testing.T) {
	rows := scoringRows(map[string][]float64{
		domain.IndicatorUnemployment: {3.0, 6.0, 9.0},
	}, []string{"A", "B", "C"})
	// D is missing the indicator entirely: imputed with the median (6.0),
	// which standardizes to z=0.
	rows = append(rows, domain.CountryRow{Country: "D", Currency: "USD", Values: map[string]float64{}})

	scorer := NewScorer(zerolog.Nop())
	result, err := scorer.Score(rows, []string{domain.IndicatorUnemployment})
	require.NoError(t, err)

	for _, r := range result.Rows {
		if r.Country == "D" {
			t.Fatalf("D imputed to the median should score exactly zero and be excluded, got %+v", r)
		}
	}
}

func TestScorerDropsEntirelyMissingColumn(t *testing.T) {
	rows := scoringRows(map[string][]float64{
		domain.IndicatorUnemployment: {3.0, 9.0},
	}, []string{"A", "B"})

	scorer := NewScorer(zerolog.Nop())
	result, err := scorer.Score(rows, []string{domain.IndicatorUnemployment, domain.IndicatorExternalDebt})
	require.NoError(t, err)

	assert.Equal(t, []string{domain.IndicatorExternalDebt}, result.DroppedColumns)
	assert.InDelta(t, 1.0, weightSum(result.Rows), 1e-9)
}

func TestScorerAllColumnsMissingFails(t *testing.T) {
	rows := []domain.CountryRow{
		{Country: "A", Values: map[string]float64{}},
		{Country: "B", Values: map[string]float64{}},
	}

	scorer := NewScorer(zerolog.Nop())
	_, err := scorer.Score(rows, []string{domain.IndicatorUnemployment})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no usable indicator columns")
}

func TestScorerPositivityFallback(t *testing.T) {
	// Identical rows: zero variance, every z-score and composite is 0, so
	// nothing is strictly positive. The full set must come back with
	// equal weights rather than an empty table.
	rows := scoringRows(map[string][]float64{
		domain.IndicatorUnemployment: {5.0, 5.0, 5.0},
	}, []string{"A", "B", "C"})

	scorer := NewScorer(zerolog.Nop())
	result, err := scorer.Score(rows, []string{domain.IndicatorUnemployment})
	require.NoError(t, err)

	assert.True(t, result.Fallback)
	require.Len(t, result.Rows, 3)
	assert.InDelta(t, 1.0, weightSum(result.Rows), 1e-9)
	for _, r := range result.Rows {
		assert.InDelta(t, 1.0/3.0, r.Weight, 1e-12)
	}
}

func TestScorerEmptyInputFails(t *testing.T) {
	scorer := NewScorer(zerolog.Nop())
	_, err := scorer.Score(nil, []string{domain.IndicatorUnemployment})
	require.Error(t, err)
}
