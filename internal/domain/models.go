package domain

import "time"

// Indicator names used across the pipeline. Panel subject codes are mapped
// to these at load time; everything downstream speaks these names.
const (
	IndicatorGDP            = "gdp"
	IndicatorUnemployment   = "unemployment"
	IndicatorInflation      = "inflation"
	IndicatorGovtDebt       = "govt_debt"
	IndicatorCurrentAccount = "current_account"
	IndicatorExternalDebt   = "external_debt"
	IndicatorExports        = "exports"

	// IndicatorFXChange is derived from the FX join, not the panel:
	// relative change of the USD rate over the trailing year.
	IndicatorFXChange = "fx_change"
)

// CountryRow is one country in the wide table. Values holds the selected
// value per indicator; a missing indicator is simply absent from the map.
// Currency and the FX fields are filled in by the resolver and FX join.
type CountryRow struct {
	Country  string             `json:"country"`
	Values   map[string]float64 `json:"values"`
	Currency string             `json:"currency,omitempty"`
	FXRate   *float64           `json:"fx_rate,omitempty"`    // currency units per 1 USD, > 0
	FXRate1Y *float64           `json:"fx_rate_1y,omitempty"` // rate 365 days ago
}

// Value returns the selected value for an indicator.
func (r CountryRow) Value(indicator string) (float64, bool) {
	v, ok := r.Values[indicator]
	return v, ok
}

// Clone returns a deep copy of the row. Stages never mutate their input
// table, so enrichment always works on copies.
func (r CountryRow) Clone() CountryRow {
	out := r
	out.Values = make(map[string]float64, len(r.Values))
	for k, v := range r.Values {
		out.Values[k] = v
	}
	return out
}

// WeightRow is one country in the final allocation table.
type WeightRow struct {
	Country  string  `json:"country"`
	Currency string  `json:"currency"`
	Score    float64 `json:"score"`
	Weight   float64 `json:"weight"`
}

// SummaryRow is one row of the top-N display projection.
type SummaryRow struct {
	Country      string   `json:"country"`
	Currency     string   `json:"currency"`
	WeightPct    float64  `json:"weight_pct"`   // rounded to 2 decimals
	USDPerUnit   float64  `json:"usd_per_unit"` // 1/fx_rate, rounded to 2 decimals
	GDP          *float64 `json:"gdp,omitempty"`
	Unemployment *float64 `json:"unemployment,omitempty"`
	Inflation    *float64 `json:"inflation,omitempty"`
}

// DropStats counts countries removed during currency resolution and the FX
// join. Attrition is normal, but the counts are kept for auditability.
type DropStats struct {
	NoCurrency int `json:"no_currency"`
	NoFXRate   int `json:"no_fx_rate"`
}

// Snapshot is the complete, internally consistent output of one pipeline
// run. Either every field is populated or the run failed; there are no
// partial snapshots.
type Snapshot struct {
	RunID   string    `json:"run_id"`
	BuiltAt time.Time `json:"built_at"`
	Profile string    `json:"profile"`

	Weights []WeightRow  `json:"weights"`
	Wide    []CountryRow `json:"wide"`
	Value   float64      `json:"value"` // USD value of one basket unit
	Summary []SummaryRow `json:"summary"`

	Dropped       DropStats `json:"dropped"`
	FilterSkipped bool      `json:"filter_skipped"` // health filter matched nothing
	ScoreFallback bool      `json:"score_fallback"` // no positive composite scores
}

// Age returns how old the snapshot is.
func (s *Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.BuiltAt)
}
