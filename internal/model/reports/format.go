package reports

import (
	"fmt"
	"strings"

	"max.ks1230/travel-finances-bot/internal/entity/category"
	"max.ks1230/travel-finances-bot/internal/entity/currency"
)

// FormatSummary renders the dashboard reply.
func FormatSummary(s Summary) string {
	home := s.Settings.HomeCurrency
	var b strings.Builder

	b.WriteString("Travel dashboard\n\n")
	if s.Settings.TravelBudget > 0 {
		fmt.Fprintf(&b, "Budget: %s\n", currency.Format(s.Settings.TravelBudget, home))
		if s.OverBudget() {
			fmt.Fprintf(&b, "⚠️ Over budget by %s\n", currency.Format(-s.Remaining(), home))
		} else {
			fmt.Fprintf(&b, "Remaining: %s\n", currency.Format(s.Remaining(), home))
		}
	} else {
		b.WriteString("Budget: not set, use /budget <amount>\n")
	}
	fmt.Fprintf(&b, "Spent today: %s\n", currency.Format(s.Today, home))
	fmt.Fprintf(&b, "Spent total: %s\n", currency.Format(s.Total, home))

	if len(s.ByCategory) == 0 {
		b.WriteString("\nNo expenses yet")
		return b.String()
	}
	b.WriteString("\nBy category:\n")
	for _, rec := range s.ByCategory {
		fmt.Fprintf(&b, "%s: %s (%d)\n", category.Name(rec.Category), currency.Format(rec.Amount, home), rec.Count)
	}
	return strings.TrimRight(b.String(), "\n")
}
