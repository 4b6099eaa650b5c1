package settings

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"max.ks1230/travel-finances-bot/internal/entity/currency"
	"max.ks1230/travel-finances-bot/internal/entity/user"
	"max.ks1230/travel-finances-bot/internal/model/customerr"
	"max.ks1230/travel-finances-bot/internal/model/storage"
)

type txRunner interface {
	ReadTx(ctx context.Context, fn func(q storage.Queries) error) error
	WriteTx(ctx context.Context, fn func(q storage.Queries) error) error
}

type Service struct {
	db txRunner
}

func New(db txRunner) *Service {
	return &Service{db: db}
}

func (s *Service) Get(ctx context.Context) (res user.Settings, err error) {
	err = s.db.ReadTx(ctx, func(q storage.Queries) error {
		res, err = q.GetSettings(ctx)
		return err
	})
	return res, errors.Wrap(err, "get settings")
}

// SetHomeCurrency only affects entries written afterwards.
func (s *Service) SetHomeCurrency(ctx context.Context, code currency.Code) (user.Settings, error) {
	if !code.Valid() {
		return user.Settings{}, customerr.NewValidation("currency", "unsupported currency "+string(code))
	}
	return s.modify(ctx, func(st *user.Settings) { st.HomeCurrency = code })
}

func (s *Service) SetTravelBudget(ctx context.Context, budget float64) (user.Settings, error) {
	if budget < 0 || math.IsNaN(budget) || math.IsInf(budget, 0) {
		return user.Settings{}, customerr.NewValidation("budget", "must be a non-negative number")
	}
	return s.modify(ctx, func(st *user.Settings) { st.TravelBudget = budget })
}

func (s *Service) modify(ctx context.Context, apply func(st *user.Settings)) (res user.Settings, err error) {
	err = s.db.WriteTx(ctx, func(q storage.Queries) error {
		res, err = q.GetSettings(ctx)
		if err != nil {
			return err
		}
		apply(&res)
		return q.SaveSettings(ctx, res)
	})
	return res, errors.Wrap(err, "save settings")
}
