package rates

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"max.ks1230/travel-finances-bot/internal/entity/currency"
	"max.ks1230/travel-finances-bot/internal/model/customerr"
	"max.ks1230/travel-finances-bot/internal/model/storage"
)

type txRunner interface {
	ReadTx(ctx context.Context, fn func(q storage.Queries) error) error
	WriteTx(ctx context.Context, fn func(q storage.Queries) error) error
}

type rateReader interface {
	GetRate(ctx context.Context, code currency.Code) (currency.Rate, bool, error)
}

// Lookup resolves rates inside an already open transaction scope.
// The anchor always resolves to 1 without touching storage.
type Lookup struct {
	reader rateReader
	anchor currency.Code
}

func NewLookup(reader rateReader, anchor currency.Code) Lookup {
	return Lookup{reader: reader, anchor: anchor}
}

func (l Lookup) Anchor() currency.Code {
	return l.anchor
}

func (l Lookup) Rate(ctx context.Context, code currency.Code) (float64, bool, error) {
	if code == l.anchor {
		return 1, true, nil
	}
	rate, ok, err := l.reader.GetRate(ctx, code)
	if err != nil || !ok {
		return 0, false, err
	}
	return rate.Value, true, nil
}

// Store keeps one rate per non-anchor currency, quoted as units per one anchor unit.
type Store struct {
	db     txRunner
	anchor currency.Code
}

func NewStore(db txRunner, anchor currency.Code) *Store {
	return &Store{db: db, anchor: anchor}
}

func (s *Store) Anchor() currency.Code {
	return s.anchor
}

func (s *Store) GetRate(ctx context.Context, code currency.Code) (rate float64, ok bool, err error) {
	err = s.db.ReadTx(ctx, func(q storage.Queries) error {
		rate, ok, err = NewLookup(q, s.anchor).Rate(ctx, code)
		return err
	})
	return rate, ok, errors.Wrap(err, "get rate")
}

func (s *Store) UpsertRate(ctx context.Context, code currency.Code, rate float64, when time.Time) error {
	return s.UpsertRates(ctx, map[currency.Code]float64{code: rate}, when)
}

// UpsertRates writes all rates in one transaction, nothing is written if any rate is invalid.
func (s *Store) UpsertRates(ctx context.Context, rates map[currency.Code]float64, when time.Time) error {
	for code, rate := range rates {
		if err := s.validate(code, rate); err != nil {
			return errors.Wrap(err, "upsert rates")
		}
	}

	return s.db.WriteTx(ctx, func(q storage.Queries) error {
		for code, rate := range rates {
			err := q.UpsertRate(ctx, currency.Rate{Code: code, Value: rate, UpdatedAt: when})
			if err != nil {
				return errors.Wrapf(err, "upsert rate %s", code)
			}
		}
		return nil
	})
}

func (s *Store) ListRates(ctx context.Context) (res []currency.Rate, err error) {
	err = s.db.ReadTx(ctx, func(q storage.Queries) error {
		res, err = q.ListRates(ctx)
		return err
	})
	return res, errors.Wrap(err, "list rates")
}

func (s *Store) validate(code currency.Code, rate float64) error {
	if code == s.anchor {
		return customerr.NewValidation("currency", "the anchor currency has no stored rate")
	}
	if !code.Valid() {
		return customerr.NewValidation("currency", "unsupported currency "+string(code))
	}
	if !(rate > 0) {
		return customerr.NewValidation("rate", "rate must be positive")
	}
	return nil
}
