package valuation

import (
	"sort"

	"github.com/macrobasket/etf-server/internal/domain"
	"github.com/macrobasket/etf-server/pkg/formulas"
)

// TopN is the number of rows in the display summary.
const TopN = 10

// BuildSummary projects the heaviest countries into display rows: weight
// descending, ties broken by country name ascending so the ordering is
// total and reproducible.
func BuildSummary(weights []domain.WeightRow, wide []domain.CountryRow, n int) []domain.SummaryRow {
	if n <= 0 {
		n = TopN
	}

	byCountry := make(map[string]domain.CountryRow, len(wide))
	for _, row := range wide {
		byCountry[row.Country] = row
	}

	sorted := make([]domain.WeightRow, len(weights))
	copy(sorted, weights)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Weight != sorted[j].Weight {
			return sorted[i].Weight > sorted[j].Weight
		}
		return sorted[i].Country < sorted[j].Country
	})

	if len(sorted) > n {
		sorted = sorted[:n]
	}

	rows := make([]domain.SummaryRow, 0, len(sorted))
	for _, w := range sorted {
		wideRow := byCountry[w.Country]

		row := domain.SummaryRow{
			Country:   w.Country,
			Currency:  w.Currency,
			WeightPct: formulas.Round2(w.Weight * 100),
		}
		if wideRow.FXRate != nil {
			row.USDPerUnit = formulas.Round2(1 / *wideRow.FXRate)
		}
		row.GDP = indicatorPtr(wideRow, domain.IndicatorGDP)
		row.Unemployment = indicatorPtr(wideRow, domain.IndicatorUnemployment)
		row.Inflation = indicatorPtr(wideRow, domain.IndicatorInflation)

		rows = append(rows, row)
	}

	return rows
}

func indicatorPtr(row domain.CountryRow, indicator string) *float64 {
	if v, ok := row.Value(indicator); ok {
		return &v
	}
	return nil
}
