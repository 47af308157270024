package currency

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/macrobasket/etf-server/internal/clients/restcountries"
	"github.com/macrobasket/etf-server/internal/domain"
)

// MetadataSource looks up the ISO 4217 currency codes for a country name.
// Implementations return restcountries.ErrNotFound for unknown names.
type MetadataSource interface {
	Currencies(ctx context.Context, name string) ([]string, error)
}

// Resolver maps country names to currency codes using a three-tier name
// fallback: the full name, the name before any parenthetical, then the name
// before any comma. The first variant with at least one code wins.
type Resolver struct {
	source MetadataSource
	log    zerolog.Logger
}

// NewResolver creates a currency resolver.
func NewResolver(source MetadataSource, log zerolog.Logger) *Resolver {
	return &Resolver{
		source: source,
		log:    log.With().Str("component", "currency_resolver").Logger(),
	}
}

// Resolve attaches a currency to each row. Countries that cannot be matched
// are dropped and counted; that is normal attrition, logged once per
// country. Any other metadata-service failure aborts the run.
func (r *Resolver) Resolve(ctx context.Context, rows []domain.CountryRow) ([]domain.CountryRow, int, error) {
	resolved := make([]domain.CountryRow, 0, len(rows))
	dropped := 0

	for _, row := range rows {
		code, err := r.resolveOne(ctx, row.Country)
		if err != nil {
			if errors.Is(err, restcountries.ErrNotFound) {
				dropped++
				r.log.Warn().Str("country", row.Country).Msg("No currency match, dropping country")
				continue
			}
			return nil, 0, fmt.Errorf("currency lookup failed for %q: %w", row.Country, err)
		}

		out := row.Clone()
		out.Currency = code
		resolved = append(resolved, out)
	}

	if dropped > 0 {
		r.log.Info().Int("dropped", dropped).Msg("Countries without a resolvable currency")
	}

	return resolved, dropped, nil
}

// resolveOne tries each name variant in order. Variants that duplicate an
// earlier one are skipped.
func (r *Resolver) resolveOne(ctx context.Context, country string) (string, error) {
	tried := make(map[string]bool)

	for _, variant := range nameVariants(country) {
		if variant == "" || tried[variant] {
			continue
		}
		tried[variant] = true

		codes, err := r.source.Currencies(ctx, variant)
		if err != nil {
			if errors.Is(err, restcountries.ErrNotFound) {
				continue
			}
			return "", err
		}
		if len(codes) > 0 {
			return codes[0], nil
		}
	}

	return "", restcountries.ErrNotFound
}

// nameVariants produces the lookup fallback chain for a country name,
// e.g. "Venezuela (Bolivarian Republic of)" -> "Venezuela",
// "Korea, Republic of" -> "Korea".
func nameVariants(name string) []string {
	variants := []string{strings.TrimSpace(name)}

	if idx := strings.Index(name, "("); idx >= 0 {
		variants = append(variants, strings.TrimSpace(name[:idx]))
	}
	if idx := strings.Index(name, ","); idx >= 0 {
		variants = append(variants, strings.TrimSpace(name[:idx]))
	}

	return variants
}
