package conversion

import (
	"context"

	"max.ks1230/travel-finances-bot/internal/entity/currency"
)

// RateLookup returns units of code per one anchor unit; ok is false when no rate is stored.
type RateLookup interface {
	Anchor() currency.Code
	Rate(ctx context.Context, code currency.Code) (rate float64, ok bool, err error)
}

// Convert expresses amount in from as an amount in home, pivoting through the anchor.
//
// Missing rates fail open: the amount comes back unchanged with converted set to false.
// A non-nil error means the lookup itself failed, the amount is still passed through.
func Convert(ctx context.Context, rates RateLookup, amount float64, from, home currency.Code) (float64, bool, error) {
	if from == home {
		return amount, true, nil
	}

	anchor := rates.Anchor()
	switch {
	case from == anchor:
		rate, ok, err := rates.Rate(ctx, home)
		if err != nil || !ok {
			return amount, false, err
		}
		return amount * rate, true, nil
	case home == anchor:
		rate, ok, err := rates.Rate(ctx, from)
		if err != nil || !ok {
			return amount, false, err
		}
		return amount / rate, true, nil
	}

	fromRate, ok, err := rates.Rate(ctx, from)
	if err != nil || !ok {
		return amount, false, err
	}
	homeRate, ok, err := rates.Rate(ctx, home)
	if err != nil || !ok {
		return amount, false, err
	}
	anchorAmount := amount / fromRate
	return anchorAmount * homeRate, true, nil
}
