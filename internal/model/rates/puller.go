package rates

import (
	"context"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"max.ks1230/travel-finances-bot/internal/entity/currency"
	"max.ks1230/travel-finances-bot/internal/logger"
)

type ratesStorage interface {
	Anchor() currency.Code
	UpsertRates(ctx context.Context, rates map[currency.Code]float64, when time.Time) error
}

type ratesProvider interface {
	GetRates(ctx context.Context, base currency.Code) (map[string]float64, error)
}

type config interface {
	PullingDelayMinutes() int64
}

// Updater pulls rate snapshots from the provider into the rate store.
type Updater struct {
	storage      ratesStorage
	provider     ratesProvider
	pullingDelay time.Duration
	now          func() time.Time
}

func NewUpdater(storage ratesStorage, provider ratesProvider, config config) *Updater {
	return &Updater{
		storage:      storage,
		provider:     provider,
		pullingDelay: time.Duration(config.PullingDelayMinutes()) * time.Minute,
		now:          time.Now,
	}
}

// Refresh fetches one snapshot and upserts every supported non-anchor rate in it.
// On any failure the stored rates stay as they were. It does not retry.
func (u *Updater) Refresh(ctx context.Context) (err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "refreshRates")
	defer span.Finish()
	defer func() {
		observeRefresh(err)
		if err != nil {
			ext.Error.Set(span, true)
		}
	}()

	anchor := u.storage.Anchor()
	fetchedAt := u.now()
	pulled, err := u.provider.GetRates(ctx, anchor)
	if err != nil {
		return errors.Wrap(err, "cannot get rates")
	}

	rates := make(map[currency.Code]float64)
	for _, code := range currency.NonAnchor(anchor) {
		if rate, ok := pulled[string(code)]; ok {
			rates[code] = rate
		}
	}
	if len(rates) == 0 {
		return errors.New("no supported currencies in rates response")
	}

	if err = u.storage.UpsertRates(ctx, rates, fetchedAt); err != nil {
		return errors.Wrap(err, "cannot save rates")
	}

	logger.Info("successfully saved rates", zap.Int("count", len(rates)), zap.String("anchor", string(anchor)))
	return nil
}

// Pull refreshes immediately and then on every tick until ctx is done.
// A zero delay means a single refresh at startup.
func (u *Updater) Pull(ctx context.Context) {
	logger.Info("Start pulling rates")
	u.pullOnce(ctx)

	if u.pullingDelay <= 0 {
		return
	}

	ticker := time.NewTicker(u.pullingDelay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Stop pulling rates")
			return
		case <-ticker.C:
			u.pullOnce(ctx)
		}
	}
}

func (u *Updater) pullOnce(ctx context.Context) {
	logger.Info("Pulling current rates...")
	if err := u.Refresh(ctx); err != nil {
		logger.Error("failed to refresh rates", zap.Error(err))
	}
}
