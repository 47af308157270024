package valuation

import (
	"fmt"

	"github.com/macrobasket/etf-server/internal/domain"
)

// BasketValue computes the USD value of one allocation unit:
// sum(weight * 1/fx_rate) — each country's weight buys 1/fx_rate dollars
// worth of its home currency. Every weighted country must still carry an
// FX rate in the wide table; the weight table is always a subset of the
// FX-joined table, so a miss here means the tables are inconsistent.
func BasketValue(weights []domain.WeightRow, wide []domain.CountryRow) (float64, error) {
	rates := make(map[string]float64, len(wide))
	for _, row := range wide {
		if row.FXRate != nil {
			rates[row.Country] = *row.FXRate
		}
	}

	value := 0.0
	for _, w := range weights {
		rate, ok := rates[w.Country]
		if !ok {
			return 0, fmt.Errorf("no FX rate for weighted country %q", w.Country)
		}
		value += w.Weight / rate
	}

	return value, nil
}
