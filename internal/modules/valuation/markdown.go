package valuation

import (
	"fmt"
	"strings"

	"github.com/macrobasket/etf-server/internal/domain"
)

// Markdown renders summary rows as a markdown table, the read-only context
// handed to the assistant.
func Markdown(rows []domain.SummaryRow) string {
	var b strings.Builder

	b.WriteString("| Country | Currency | Weight % | USD/Unit | GDP | Unemployment | Inflation |\n")
	b.WriteString("|---|---|---|---|---|---|---|\n")

	for _, row := range rows {
		fmt.Fprintf(&b, "| %s | %s | %.2f | %.2f | %s | %s | %s |\n",
			row.Country,
			row.Currency,
			row.WeightPct,
			row.USDPerUnit,
			formatOptional(row.GDP),
			formatOptional(row.Unemployment),
			formatOptional(row.Inflation),
		)
	}

	return b.String()
}

func formatOptional(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}
