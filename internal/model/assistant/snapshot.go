package assistant

import (
	"max.ks1230/travel-finances-bot/internal/entity/currency"
	"max.ks1230/travel-finances-bot/internal/model/reports"
)

// Snapshot is the financial context the assistant answers against.
type Snapshot struct {
	HomeCurrency    currency.Code
	TotalSpent      float64
	TodaySpent      float64
	TravelBudget    float64
	RemainingBudget float64
}

func snapshotOf(s reports.Summary) Snapshot {
	return Snapshot{
		HomeCurrency:    s.Settings.HomeCurrency,
		TotalSpent:      s.Total,
		TodaySpent:      s.Today,
		TravelBudget:    s.Settings.TravelBudget,
		RemainingBudget: s.Remaining(),
	}
}
