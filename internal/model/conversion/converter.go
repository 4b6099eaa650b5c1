package conversion

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"max.ks1230/travel-finances-bot/internal/entity/currency"
	"max.ks1230/travel-finances-bot/internal/entity/expense"
	"max.ks1230/travel-finances-bot/internal/logger"
	"max.ks1230/travel-finances-bot/internal/model/rates"
	"max.ks1230/travel-finances-bot/internal/model/storage"
)

type txRunner interface {
	ReadTx(ctx context.Context, fn func(q storage.Queries) error) error
	WriteTx(ctx context.Context, fn func(q storage.Queries) error) error
}

// Quote is the outcome of a user-requested conversion.
type Quote struct {
	Amount    float64
	From      currency.Code
	Home      currency.Code
	Result    float64
	Converted bool
}

type Converter struct {
	db     txRunner
	anchor currency.Code
	now    func() time.Time
}

func NewConverter(db txRunner, anchor currency.Code) *Converter {
	return &Converter{db: db, anchor: anchor, now: time.Now}
}

// ConvertToHome never fails: when the home currency or a rate cannot be read
// the amount is returned unchanged and the fallback is logged.
func (c *Converter) ConvertToHome(ctx context.Context, amount float64, from currency.Code) float64 {
	var res float64
	err := c.db.ReadTx(ctx, func(q storage.Queries) error {
		settings, err := q.GetSettings(ctx)
		if err != nil {
			return err
		}
		res, _ = InScope(ctx, q, c.anchor, amount, from, settings.HomeCurrency)
		return nil
	})
	if err != nil {
		Fallback(amount, from, "", err)
		return amount
	}
	return res
}

// Convert quotes amount in the home currency and records it in the conversion history.
func (c *Converter) Convert(ctx context.Context, amount float64, from currency.Code) (Quote, error) {
	quote := Quote{Amount: amount, From: from}
	err := c.db.WriteTx(ctx, func(q storage.Queries) error {
		settings, err := q.GetSettings(ctx)
		if err != nil {
			return err
		}
		quote.Home = settings.HomeCurrency
		quote.Result, quote.Converted = InScope(ctx, q, c.anchor, amount, from, settings.HomeCurrency)

		_, err = q.InsertConversion(ctx, expense.Conversion{
			From:    from,
			To:      quote.Home,
			Amount:  amount,
			Result:  quote.Result,
			Created: c.now(),
		})
		return err
	})
	if err != nil {
		return Quote{}, errors.Wrap(err, "convert")
	}
	return quote, nil
}

// History returns the n latest quick conversions, newest first.
func (c *Converter) History(ctx context.Context, n int) (res []expense.Conversion, err error) {
	if n <= 0 {
		return []expense.Conversion{}, nil
	}
	err = c.db.ReadTx(ctx, func(q storage.Queries) error {
		res, err = q.ListConversions(ctx, n)
		return err
	})
	return res, errors.Wrap(err, "conversion history")
}

// InScope converts with rates read through an open transaction scope.
func InScope(ctx context.Context, q storage.Queries, anchor currency.Code, amount float64, from, home currency.Code) (float64, bool) {
	res, converted, err := Convert(ctx, rates.NewLookup(q, anchor), amount, from, home)
	if !converted {
		Fallback(amount, from, home, err)
	}
	return res, converted
}

// Fallback reports an unconverted pass-through, which mixes currencies in totals.
func Fallback(amount float64, from, home currency.Code, err error) {
	observeFallback(from)
	fields := []zap.Field{
		zap.Float64("amount", amount),
		zap.String("from", string(from)),
		zap.String("home", string(home)),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	logger.Warn("rate unavailable, amount passed through unconverted", fields...)
}
