package panel

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macrobasket/etf-server/internal/domain"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func TestLoaderParse(t *testing.T) {
	csv := strings.Join([]string{
		"Country,Subject,2022,2023",
		"Greece,NGDPD,218.0,242.4",
		"Greece,LUR,12.4,11.1",
		"Greece,IGNORED,1.0,2.0",
		`Japan,NGDPD,"4,256.4",`,
	}, "\n")

	loader := NewLoader(DefaultSchema(), testLogger())
	p, err := loader.Parse(strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, []string{"Greece", "Japan"}, p.Countries())

	// Unknown subject rows contribute nothing; blank cells are missing.
	obs := p.Observations()
	assert.Len(t, obs, 5)
	assert.Contains(t, obs, Observation{Country: "Japan", Indicator: domain.IndicatorGDP, Year: 2022, Value: 4256.4})
	for _, o := range obs {
		assert.NotEqual(t, "IGNORED", o.Indicator)
	}
}

func TestLoaderParseHeaderValidation(t *testing.T) {
	tests := []struct {
		name    string
		csv     string
		wantErr string
	}{
		{
			name:    "non-year column",
			csv:     "Country,Subject,2022,Estimates Start After\nGreece,NGDPD,1.0,2.0",
			wantErr: "neither a declared identifier column nor a year",
		},
		{
			name:    "missing country column",
			csv:     "Nation,Subject,2022\nGreece,NGDPD,1.0",
			wantErr: `missing country column "Country"`,
		},
		{
			name:    "missing subject column",
			csv:     "Country,Code,2022\nGreece,NGDPD,1.0",
			wantErr: `missing subject column "Subject"`,
		},
		{
			name:    "no year columns",
			csv:     "Country,Subject\nGreece,NGDPD",
			wantErr: "no year columns",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := NewLoader(DefaultSchema(), testLogger())
			_, err := loader.Parse(strings.NewReader(tt.csv))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseCell(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		want  float64
		valid bool
	}{
		{name: "plain", raw: "5.2", want: 5.2, valid: true},
		{name: "thousands separator", raw: "1,234.5", want: 1234.5, valid: true},
		{name: "negative", raw: "-3.1", want: -3.1, valid: true},
		{name: "blank", raw: "", valid: false},
		{name: "whitespace", raw: "   ", valid: false},
		{name: "n/a sentinel", raw: "n/a", valid: false},
		{name: "dashes sentinel", raw: "--", valid: false},
		{name: "garbage", raw: "abc", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseCell(tt.raw)
			assert.Equal(t, tt.valid, ok)
			if tt.valid {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
