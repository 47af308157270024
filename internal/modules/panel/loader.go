package panel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Observation is a single (country, indicator, year) data point.
type Observation struct {
	Country   string
	Indicator string
	Year      int
	Value     float64
}

// Panel is the immutable in-memory indicator panel. Observations keep the
// file's row order, and countries are tracked in order of first appearance
// so every downstream stage is deterministic.
type Panel struct {
	observations []Observation
	countries    []string
}

// Observations returns all data points in load order.
func (p *Panel) Observations() []Observation {
	return p.observations
}

// Countries returns country names in order of first appearance.
func (p *Panel) Countries() []string {
	return p.countries
}

// Loader parses panel CSV files against an explicit schema.
type Loader struct {
	schema Schema
	log    zerolog.Logger
}

// NewLoader creates a panel loader.
func NewLoader(schema Schema, log zerolog.Logger) *Loader {
	return &Loader{
		schema: schema,
		log:    log.With().Str("component", "panel_loader").Logger(),
	}
}

// Load reads a panel CSV from disk.
func (l *Loader) Load(path string) (*Panel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open panel file: %w", err)
	}
	defer f.Close()

	return l.Parse(f)
}

// Parse reads a panel CSV from a reader. Unknown subject codes are skipped;
// unparseable cells are treated as missing.
func (l *Loader) Parse(r io.Reader) (*Panel, error) {
	if err := l.schema.Validate(); err != nil {
		return nil, fmt.Errorf("invalid panel schema: %w", err)
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read panel header: %w", err)
	}

	countryIdx, subjectIdx, years, err := l.schema.yearColumns(header)
	if err != nil {
		return nil, fmt.Errorf("invalid panel header: %w", err)
	}

	p := &Panel{}
	seen := make(map[string]bool)
	skippedSubjects := 0

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read panel row %d: %w", line, err)
		}
		if countryIdx >= len(record) || subjectIdx >= len(record) {
			return nil, fmt.Errorf("panel row %d is missing identifier columns", line)
		}

		country := strings.TrimSpace(record[countryIdx])
		subject := strings.TrimSpace(record[subjectIdx])
		if country == "" || subject == "" {
			continue
		}

		indicator, ok := l.schema.Subjects[subject]
		if !ok {
			skippedSubjects++
			continue
		}

		if !seen[country] {
			seen[country] = true
			p.countries = append(p.countries, country)
		}

		for col := 0; col < len(record); col++ {
			year, isYear := years[col]
			if !isYear {
				continue
			}
			value, ok := parseCell(record[col])
			if !ok {
				continue
			}
			p.observations = append(p.observations, Observation{
				Country:   country,
				Indicator: indicator,
				Year:      year,
				Value:     value,
			})
		}
	}

	l.log.Info().
		Int("countries", len(p.countries)).
		Int("observations", len(p.observations)).
		Int("skipped_subjects", skippedSubjects).
		Msg("Panel loaded")

	return p, nil
}

// parseCell parses a numeric cell. Blank and sentinel cells ("n/a", "--")
// are missing, and thousands separators are stripped.
func parseCell(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	switch strings.ToLower(s) {
	case "n/a", "na", "--", "...":
		return 0, false
	}

	s = strings.ReplaceAll(s, ",", "")
	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
