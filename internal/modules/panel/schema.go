package panel

import (
	"fmt"
	"strconv"

	"github.com/macrobasket/etf-server/internal/domain"
)

// Schema declares the shape of a panel CSV: which columns identify the
// country and the subject, and how subject codes map to indicator names.
// Every remaining header column must be a numeric year; anything else is a
// load-time error rather than a guess.
type Schema struct {
	CountryColumn string
	SubjectColumn string
	Subjects      map[string]string // subject code -> indicator name
}

// DefaultSchema maps the WEO subject codes the pipeline consumes.
func DefaultSchema() Schema {
	return Schema{
		CountryColumn: "Country",
		SubjectColumn: "Subject",
		Subjects: map[string]string{
			"NGDPD":       domain.IndicatorGDP,
			"LUR":         domain.IndicatorUnemployment,
			"PCPIPCH":     domain.IndicatorInflation,
			"GGXWDG_NGDP": domain.IndicatorGovtDebt,
			"BCA_NGDPD":   domain.IndicatorCurrentAccount,
			"D_NGDPD":     domain.IndicatorExternalDebt,
			"TX_NGDPD":    domain.IndicatorExports,
		},
	}
}

// Validate checks the schema itself is usable.
func (s Schema) Validate() error {
	if s.CountryColumn == "" || s.SubjectColumn == "" {
		return fmt.Errorf("schema requires country and subject column names")
	}
	if len(s.Subjects) == 0 {
		return fmt.Errorf("schema requires at least one subject mapping")
	}
	return nil
}

// yearColumns resolves the header into column positions. Columns other than
// the country and subject columns must parse as years.
func (s Schema) yearColumns(header []string) (countryIdx, subjectIdx int, years map[int]int, err error) {
	countryIdx, subjectIdx = -1, -1
	years = make(map[int]int)

	for i, col := range header {
		switch col {
		case s.CountryColumn:
			countryIdx = i
		case s.SubjectColumn:
			subjectIdx = i
		default:
			year, convErr := strconv.Atoi(col)
			if convErr != nil {
				return 0, 0, nil, fmt.Errorf("column %q is neither a declared identifier column nor a year", col)
			}
			years[i] = year
		}
	}

	if countryIdx < 0 {
		return 0, 0, nil, fmt.Errorf("missing country column %q", s.CountryColumn)
	}
	if subjectIdx < 0 {
		return 0, 0, nil, fmt.Errorf("missing subject column %q", s.SubjectColumn)
	}
	if len(years) == 0 {
		return 0, 0, nil, fmt.Errorf("panel has no year columns")
	}

	return countryIdx, subjectIdx, years, nil
}
