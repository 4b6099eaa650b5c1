package rates

import (
	"context"
	"testing"
	"time"

	"github.com/gojuno/minimock/v3"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"max.ks1230/travel-finances-bot/internal/entity/currency"
	"max.ks1230/travel-finances-bot/internal/model/storage/storagetest"
)

type providerStub struct {
	t       minimock.Tester
	rates   map[string]float64
	err     error
	calls   int
	expects int
}

func newProviderStub(m *minimock.Controller, rates map[string]float64, err error, expects int) *providerStub {
	p := &providerStub{t: m, rates: rates, err: err, expects: expects}
	m.RegisterMocker(p)
	return p
}

func (p *providerStub) GetRates(_ context.Context, base currency.Code) (map[string]float64, error) {
	p.calls++
	if base != currency.IDR {
		p.t.Errorf("unexpected base currency %s", base)
	}
	return p.rates, p.err
}

func (p *providerStub) MinimockFinish() {
	if p.calls != p.expects {
		p.t.Errorf("expected %d GetRates calls, got %d", p.expects, p.calls)
	}
}

func (p *providerStub) MinimockWait(time.Duration) {
	p.MinimockFinish()
}

type delayConfig int64

func (d delayConfig) PullingDelayMinutes() int64 {
	return int64(d)
}

func seededStore(t *testing.T) *Store {
	store := NewStore(storagetest.New(t), currency.IDR)
	require.NoError(t, store.UpsertRates(context.Background(), map[currency.Code]float64{
		currency.USD: 0.000065,
		currency.JPY: 0.0095,
	}, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	return store
}

func Test_OnRefresh_ShouldUpsertSupportedNonAnchorRates(t *testing.T) {
	ctx := context.Background()
	m := minimock.NewController(t)
	defer m.Finish()

	store := seededStore(t)
	provider := newProviderStub(m, map[string]float64{
		"IDR": 1,
		"USD": 0.000061,
		"EUR": 0.000056,
		"XAU": 0.0000001,
	}, nil, 1)

	fetchedAt := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	updater := NewUpdater(store, provider, delayConfig(0))
	updater.now = func() time.Time { return fetchedAt }

	require.NoError(t, updater.Refresh(ctx))

	list, err := store.ListRates(ctx)
	require.NoError(t, err)
	got := make(map[currency.Code]currency.Rate)
	for _, r := range list {
		got[r.Code] = r
	}
	assert.Len(t, got, 3)
	assert.Equal(t, 0.000061, got[currency.USD].Value)
	assert.True(t, fetchedAt.Equal(got[currency.USD].UpdatedAt))
	assert.Equal(t, 0.000056, got[currency.EUR].Value)
	assert.Equal(t, 0.0095, got[currency.JPY].Value)
	_, hasAnchor := got[currency.IDR]
	assert.False(t, hasAnchor)
}

func Test_OnProviderFailure_ShouldLeaveRatesUntouched(t *testing.T) {
	ctx := context.Background()
	m := minimock.NewController(t)
	defer m.Finish()

	store := seededStore(t)
	before, err := store.ListRates(ctx)
	require.NoError(t, err)

	provider := newProviderStub(m, nil, errors.New("connection refused"), 1)
	updater := NewUpdater(store, provider, delayConfig(0))

	assert.Error(t, updater.Refresh(ctx))

	after, err := store.ListRates(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func Test_OnInvalidRateInSnapshot_ShouldLeaveRatesUntouched(t *testing.T) {
	ctx := context.Background()
	m := minimock.NewController(t)
	defer m.Finish()

	store := seededStore(t)
	before, err := store.ListRates(ctx)
	require.NoError(t, err)

	provider := newProviderStub(m, map[string]float64{"USD": 0.00007, "JPY": -1}, nil, 1)
	updater := NewUpdater(store, provider, delayConfig(0))

	assert.Error(t, updater.Refresh(ctx))

	after, err := store.ListRates(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func Test_OnSnapshotWithoutSupportedCodes_ShouldFail(t *testing.T) {
	ctx := context.Background()
	m := minimock.NewController(t)
	defer m.Finish()

	provider := newProviderStub(m, map[string]float64{"XAU": 1}, nil, 1)
	updater := NewUpdater(NewStore(storagetest.New(t), currency.IDR), provider, delayConfig(0))

	assert.Error(t, updater.Refresh(ctx))
}

func Test_OnZeroDelay_ShouldPullOnceAndReturn(t *testing.T) {
	m := minimock.NewController(t)
	defer m.Finish()

	provider := newProviderStub(m, map[string]float64{"USD": 0.00007}, nil, 1)
	updater := NewUpdater(NewStore(storagetest.New(t), currency.IDR), provider, delayConfig(0))

	updater.Pull(context.Background())
}
