package health

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macrobasket/etf-server/internal/domain"
)

func row(country string, values map[string]float64) domain.CountryRow {
	return domain.CountryRow{Country: country, Values: values}
}

func healthyValues() map[string]float64 {
	return map[string]float64{
		domain.IndicatorUnemployment:   5.0,
		domain.IndicatorGovtDebt:       60.0,
		domain.IndicatorInflation:      2.0,
		domain.IndicatorCurrentAccount: 1.5,
		domain.IndicatorExternalDebt:   40.0,
		domain.IndicatorGDP:            500.0,
		domain.IndicatorExports:        30.0,
	}
}

func TestParseProfile(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Profile
		wantErr bool
	}{
		{name: "strict", input: "strict", want: ProfileStrict},
		{name: "relaxed", input: "relaxed", want: ProfileRelaxed},
		{name: "unknown", input: "balanced", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseProfile(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRelaxedFilterConditions(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(map[string]float64)
		eligible bool
	}{
		{
			name:     "all conditions pass",
			mutate:   func(m map[string]float64) {},
			eligible: true,
		},
		{
			name:     "unemployment too high",
			mutate:   func(m map[string]float64) { m[domain.IndicatorUnemployment] = 12.0 },
			eligible: false,
		},
		{
			name:     "debt too high",
			mutate:   func(m map[string]float64) { m[domain.IndicatorGovtDebt] = 140.0 },
			eligible: false,
		},
		{
			name:     "deflation",
			mutate:   func(m map[string]float64) { m[domain.IndicatorInflation] = -0.5 },
			eligible: false,
		},
		{
			name:     "inflation too high",
			mutate:   func(m map[string]float64) { m[domain.IndicatorInflation] = 9.0 },
			eligible: false,
		},
		{
			name:     "current account too negative",
			mutate:   func(m map[string]float64) { m[domain.IndicatorCurrentAccount] = -5.0 },
			eligible: false,
		},
		{
			name:     "missing indicator fails its condition",
			mutate:   func(m map[string]float64) { delete(m, domain.IndicatorUnemployment) },
			eligible: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			healthy := row("Healthy", healthyValues())
			candidateValues := healthyValues()
			tt.mutate(candidateValues)
			candidate := row("Candidate", candidateValues)

			filter := NewFilter(ProfileRelaxed, zerolog.Nop())
			kept, skipped := filter.Apply([]domain.CountryRow{healthy, candidate})

			assert.False(t, skipped)
			names := make([]string, 0, len(kept))
			for _, r := range kept {
				names = append(names, r.Country)
			}
			if tt.eligible {
				assert.Equal(t, []string{"Healthy", "Candidate"}, names)
			} else {
				assert.Equal(t, []string{"Healthy"}, names)
			}
		})
	}
}

func TestStrictFilterUsesDynamicMedians(t *testing.T) {
	big := healthyValues()
	big[domain.IndicatorGDP] = 1000.0
	big[domain.IndicatorExports] = 50.0

	small := healthyValues()
	small[domain.IndicatorGDP] = 10.0
	small[domain.IndicatorExports] = 5.0

	mid := healthyValues()

	filter := NewFilter(ProfileStrict, zerolog.Nop())
	kept, skipped := filter.Apply([]domain.CountryRow{
		row("Big", big),
		row("Small", small),
		row("Mid", mid),
	})

	require.False(t, skipped)
	// Median GDP is 500 and median exports 30: Small is below both.
	names := make([]string, 0, len(kept))
	for _, r := range kept {
		names = append(names, r.Country)
	}
	assert.Equal(t, []string{"Big", "Mid"}, names)
}

func TestFilterNoMatchIsNoOp(t *testing.T) {
	unhealthy := map[string]float64{
		domain.IndicatorUnemployment:   25.0,
		domain.IndicatorGovtDebt:       180.0,
		domain.IndicatorInflation:      40.0,
		domain.IndicatorCurrentAccount: -12.0,
	}

	input := []domain.CountryRow{
		row("A", unhealthy),
		row("B", unhealthy),
		row("C", unhealthy),
	}

	filter := NewFilter(ProfileRelaxed, zerolog.Nop())
	kept, skipped := filter.Apply(input)

	assert.True(t, skipped)
	assert.Len(t, kept, len(input))
}
