package user

import "max.ks1230/travel-finances-bot/internal/entity/currency"

// Settings is the single configuration row of the tracker.
type Settings struct {
	HomeCurrency currency.Code
	TravelBudget float64
}

func Default(anchor currency.Code) Settings {
	return Settings{HomeCurrency: anchor}
}

// RemainingBudget is negative when spending exceeds the budget.
func (s Settings) RemainingBudget(totalSpent float64) float64 {
	return s.TravelBudget - totalSpent
}
