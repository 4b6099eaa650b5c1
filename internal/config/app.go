package config

import (
	"time"

	"max.ks1230/travel-finances-bot/internal/entity/currency"
)

type AppConfig struct {
	AnchorCurrencyName      string `yaml:"anchor-currency"`
	RatePullingDelayMinutes int64  `yaml:"rate-pulling-delay-minutes"`
	RecentTransactions      int    `yaml:"recent-limit"`
	LocationName            string `yaml:"location"`
}

func (s *AppConfig) AnchorCurrency() currency.Code {
	return currency.Code(s.AnchorCurrencyName)
}

func (s *AppConfig) PullingDelayMinutes() int64 {
	return s.RatePullingDelayMinutes
}

func (s *AppConfig) RecentLimit() int {
	return s.RecentTransactions
}

// Location is the clock used for "today" boundaries, local time when unset.
func (s *AppConfig) Location() *time.Location {
	if s.LocationName == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(s.LocationName)
	if err != nil {
		return time.Local
	}
	return loc
}
