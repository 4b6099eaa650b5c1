package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"max.ks1230/travel-finances-bot/internal/entity/category"
	"max.ks1230/travel-finances-bot/internal/entity/currency"
	"max.ks1230/travel-finances-bot/internal/entity/expense"
	"max.ks1230/travel-finances-bot/internal/entity/user"
	"max.ks1230/travel-finances-bot/internal/model/customerr"
	"max.ks1230/travel-finances-bot/internal/model/storage"
	"max.ks1230/travel-finances-bot/internal/model/storage/storagetest"
)

func Test_OnFirstRun_ShouldCreateDefaultSettingsOnce(t *testing.T) {
	ctx := context.Background()
	s := storagetest.New(t)

	require.NoError(t, s.WriteTx(ctx, func(q storage.Queries) error {
		return q.SaveSettings(ctx, user.Settings{HomeCurrency: currency.USD, TravelBudget: 500})
	}))
	require.NoError(t, s.EnsureSettings(ctx, currency.IDR))

	var got user.Settings
	require.NoError(t, s.ReadTx(ctx, func(q storage.Queries) (err error) {
		got, err = q.GetSettings(ctx)
		return err
	}))
	assert.Equal(t, user.Settings{HomeCurrency: currency.USD, TravelBudget: 500}, got)
}

func Test_OnUpsertRate_ShouldKeepOneRowPerCode(t *testing.T) {
	ctx := context.Background()
	s := storagetest.New(t)
	first := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.WriteTx(ctx, func(q storage.Queries) error {
		if err := q.UpsertRate(ctx, currency.Rate{Code: currency.USD, Value: 0.0001, UpdatedAt: first}); err != nil {
			return err
		}
		return q.UpsertRate(ctx, currency.Rate{Code: currency.USD, Value: 0.00007, UpdatedAt: first.Add(time.Hour)})
	}))

	var (
		rates []currency.Rate
		rate  currency.Rate
		ok    bool
	)
	require.NoError(t, s.ReadTx(ctx, func(q storage.Queries) (err error) {
		if rates, err = q.ListRates(ctx); err != nil {
			return err
		}
		rate, ok, err = q.GetRate(ctx, currency.USD)
		return err
	}))
	require.Len(t, rates, 1)
	assert.True(t, ok)
	assert.Equal(t, 0.00007, rate.Value)
	assert.True(t, first.Add(time.Hour).Equal(rate.UpdatedAt))
}

func Test_OnMissingRate_ShouldReportAbsent(t *testing.T) {
	ctx := context.Background()
	s := storagetest.New(t)

	require.NoError(t, s.ReadTx(ctx, func(q storage.Queries) error {
		_, ok, err := q.GetRate(ctx, currency.JPY)
		assert.False(t, ok)
		return err
	}))
}

func Test_OnFailedWriteScope_ShouldRollBack(t *testing.T) {
	ctx := context.Background()
	s := storagetest.New(t)
	boom := errors.New("boom")

	err := s.WriteTx(ctx, func(q storage.Queries) error {
		if err := q.UpsertRate(ctx, currency.Rate{Code: currency.EUR, Value: 0.00006, UpdatedAt: time.Now()}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	require.NoError(t, s.ReadTx(ctx, func(q storage.Queries) error {
		rates, err := q.ListRates(ctx)
		assert.Empty(t, rates)
		return err
	}))
}

func Test_OnRecentTransactions_ShouldOrderByTimeThenID(t *testing.T) {
	ctx := context.Background()
	s := storagetest.New(t)
	sameSecond := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	var ids []int64
	require.NoError(t, s.WriteTx(ctx, func(q storage.Queries) error {
		for _, created := range []time.Time{sameSecond.Add(-time.Hour), sameSecond, sameSecond} {
			id, err := q.InsertTransaction(ctx, expense.Transaction{
				Description: "coffee",
				Amount:      1,
				Currency:    currency.IDR,
				AmountHome:  1,
				Category:    category.Food,
				Created:     created,
			})
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	}))

	var recent []expense.Transaction
	require.NoError(t, s.ReadTx(ctx, func(q storage.Queries) (err error) {
		recent, err = q.ListRecentTransactions(ctx, 2)
		return err
	}))
	require.Len(t, recent, 2)
	assert.Equal(t, ids[2], recent[0].ID)
	assert.Equal(t, ids[1], recent[1].ID)
}

func Test_OnTransactionLifecycle_ShouldUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	s := storagetest.New(t)
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	rec := expense.Transaction{
		Description: "train",
		Amount:      20,
		Currency:    currency.JPY,
		AmountHome:  2000,
		Category:    category.Transport,
		Created:     created,
	}
	require.NoError(t, s.WriteTx(ctx, func(q storage.Queries) (err error) {
		rec.ID, err = q.InsertTransaction(ctx, rec)
		return err
	}))

	rec.Amount = 10
	rec.AmountHome = 1000
	require.NoError(t, s.WriteTx(ctx, func(q storage.Queries) error {
		updated, err := q.UpdateTransaction(ctx, rec)
		assert.True(t, updated)
		return err
	}))

	require.NoError(t, s.ReadTx(ctx, func(q storage.Queries) error {
		got, err := q.GetTransaction(ctx, rec.ID)
		assert.Equal(t, 10.0, got.Amount)
		assert.Equal(t, currency.JPY, got.Currency)
		assert.Equal(t, category.Transport, got.Category)
		return err
	}))

	require.NoError(t, s.WriteTx(ctx, func(q storage.Queries) error {
		return q.DeleteTransaction(ctx, rec.ID)
	}))
	err := s.ReadTx(ctx, func(q storage.Queries) error {
		_, err := q.GetTransaction(ctx, rec.ID)
		return err
	})
	assert.ErrorIs(t, err, customerr.ErrNotFound)
}

func Test_OnConversionHistory_ShouldListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := storagetest.New(t)
	now := time.Now()

	require.NoError(t, s.WriteTx(ctx, func(q storage.Queries) error {
		if _, err := q.InsertConversion(ctx, expense.Conversion{From: currency.USD, To: currency.IDR, Amount: 1, Result: 15000, Created: now.Add(-time.Minute)}); err != nil {
			return err
		}
		_, err := q.InsertConversion(ctx, expense.Conversion{From: currency.EUR, To: currency.IDR, Amount: 2, Result: 34000, Created: now})
		return err
	}))

	require.NoError(t, s.ReadTx(ctx, func(q storage.Queries) error {
		list, err := q.ListConversions(ctx, 10)
		require.Len(t, list, 2)
		assert.Equal(t, currency.EUR, list[0].From)
		return err
	}))
}
