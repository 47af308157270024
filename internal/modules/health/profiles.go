package health

import (
	"fmt"

	"github.com/macrobasket/etf-server/internal/domain"
)

// Profile selects one of the two eligibility threshold sets. Exactly one
// profile is active per deployment; it is a configuration choice.
type Profile string

const (
	// ProfileStrict applies seven conditions, including medians of GDP and
	// exports computed dynamically over the candidate set.
	ProfileStrict Profile = "strict"

	// ProfileRelaxed applies four fixed-bound conditions.
	ProfileRelaxed Profile = "relaxed"
)

// ParseProfile validates a configured profile name.
func ParseProfile(name string) (Profile, error) {
	switch Profile(name) {
	case ProfileStrict, ProfileRelaxed:
		return Profile(name), nil
	}
	return "", fmt.Errorf("unknown health profile %q (want %q or %q)", name, ProfileStrict, ProfileRelaxed)
}

// Indicators returns the panel indicators the profile filters on, which are
// also the base columns of the composite score.
func (p Profile) Indicators() []string {
	switch p {
	case ProfileStrict:
		return []string{
			domain.IndicatorUnemployment,
			domain.IndicatorGovtDebt,
			domain.IndicatorInflation,
			domain.IndicatorCurrentAccount,
			domain.IndicatorExternalDebt,
			domain.IndicatorGDP,
			domain.IndicatorExports,
		}
	default:
		return []string{
			domain.IndicatorUnemployment,
			domain.IndicatorGovtDebt,
			domain.IndicatorInflation,
			domain.IndicatorCurrentAccount,
		}
	}
}

// Fixed bounds per profile. The strict GDP and exports conditions use
// medians over the candidate table instead of constants.
const (
	strictMaxUnemployment   = 7.0
	strictMaxGovtDebt       = 80.0
	strictMinInflation      = 1.0
	strictMaxInflation      = 4.0
	strictMinCurrentAccount = 0.0
	strictMaxExternalDebt   = 60.0

	relaxedMaxUnemployment   = 10.0
	relaxedMaxGovtDebt       = 100.0
	relaxedMinInflation      = 0.0
	relaxedMaxInflation      = 6.0
	relaxedMinCurrentAccount = -3.0
)
