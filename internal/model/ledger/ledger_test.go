package ledger

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"max.ks1230/travel-finances-bot/internal/entity/category"
	"max.ks1230/travel-finances-bot/internal/entity/currency"
	"max.ks1230/travel-finances-bot/internal/entity/user"
	"max.ks1230/travel-finances-bot/internal/model/customerr"
	"max.ks1230/travel-finances-bot/internal/model/storage"
	"max.ks1230/travel-finances-bot/internal/model/storage/storagetest"
)

// usdRate is USD units per one IDR.
const usdRate = 1.0 / 15000

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time {
	return c.now
}

func newTestLedger(t *testing.T) (*Ledger, *storage.Storage, *clock) {
	ctx := context.Background()
	db := storagetest.New(t)
	require.NoError(t, db.WriteTx(ctx, func(q storage.Queries) error {
		return q.UpsertRate(ctx, currency.Rate{Code: currency.USD, Value: usdRate, UpdatedAt: time.Now()})
	}))

	c := &clock{now: time.Date(2024, 7, 1, 10, 0, 0, 0, time.Local)}
	l := New(db, currency.IDR)
	l.now = c.Now
	return l, db, c
}

func Test_OnAddInForeignCurrency_ShouldSnapshotHomeAmount(t *testing.T) {
	ctx := context.Background()
	l, _, c := newTestLedger(t)

	rec, err := l.Add(ctx, Input{
		Description: "Dinner",
		Amount:      100,
		Currency:    currency.USD,
		Category:    category.Food,
	})
	require.NoError(t, err)

	assert.NotZero(t, rec.ID)
	assert.InDelta(t, 100/usdRate, rec.AmountHome, 1e-6)
	assert.True(t, c.now.Equal(rec.Created))

	stored, err := l.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.AmountHome, stored.AmountHome)
	assert.Equal(t, "Dinner", stored.Description)
}

func Test_OnEdit_ShouldRecomputeAndAdvanceTimestamp(t *testing.T) {
	ctx := context.Background()
	l, _, c := newTestLedger(t)

	rec, err := l.Add(ctx, Input{Description: "Taxi", Amount: 100, Currency: currency.USD, Category: category.Transport})
	require.NoError(t, err)

	c.now = c.now.Add(26 * time.Hour)
	edited, err := l.Update(ctx, rec.ID, Input{Description: "Taxi", Amount: 50, Currency: currency.USD, Category: category.Transport})
	require.NoError(t, err)

	assert.InDelta(t, rec.AmountHome/2, edited.AmountHome, 1e-6)
	assert.True(t, edited.Created.After(rec.Created))

	stored, err := l.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, c.now.Equal(stored.Created))
	assert.Equal(t, 50.0, stored.Amount)
}

func Test_OnHomeCurrencyChange_ShouldKeepHistoricalSnapshot(t *testing.T) {
	ctx := context.Background()
	l, db, _ := newTestLedger(t)

	rec, err := l.Add(ctx, Input{Description: "Hotel", Amount: 10, Currency: currency.USD, Category: category.Lodging})
	require.NoError(t, err)

	require.NoError(t, db.WriteTx(ctx, func(q storage.Queries) error {
		return q.SaveSettings(ctx, user.Settings{HomeCurrency: currency.USD})
	}))

	stored, err := l.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.AmountHome, stored.AmountHome)
}

func Test_OnInvalidInput_ShouldRejectWithoutWriting(t *testing.T) {
	ctx := context.Background()
	l, _, _ := newTestLedger(t)

	cases := []struct {
		name  string
		in    Input
		field string
	}{
		{"empty description", Input{Description: "  ", Amount: 1, Currency: currency.IDR, Category: category.Food}, "description"},
		{"zero amount", Input{Description: "x", Amount: 0, Currency: currency.IDR, Category: category.Food}, "amount"},
		{"negative amount", Input{Description: "x", Amount: -5, Currency: currency.IDR, Category: category.Food}, "amount"},
		{"unknown currency", Input{Description: "x", Amount: 1, Currency: "XXX", Category: category.Food}, "currency"},
		{"empty category", Input{Description: "x", Amount: 1, Currency: currency.IDR}, "category"},
		{"unknown category", Input{Description: "x", Amount: 1, Currency: currency.IDR, Category: "spa"}, "category"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := l.Add(ctx, c.in)
			var vErr *customerr.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, c.field, vErr.Field)
		})
	}

	all, err := l.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func Test_OnInfiniteAmount_ShouldRejectWithoutWriting(t *testing.T) {
	ctx := context.Background()
	l, _, _ := newTestLedger(t)

	for _, amount := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		_, err := l.Add(ctx, Input{Description: "x", Amount: amount, Currency: currency.USD, Category: category.Food})
		var vErr *customerr.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "amount", vErr.Field)
	}

	rec, err := l.Add(ctx, Input{Description: "x", Amount: 1, Currency: currency.USD, Category: category.Food})
	require.NoError(t, err)
	_, err = l.Update(ctx, rec.ID, Input{Description: "x", Amount: math.Inf(1), Currency: currency.USD, Category: category.Food})
	assert.True(t, customerr.IsValidation(err))

	all, err := l.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 1.0, all[0].Amount)
}

func Test_OnWrite_ShouldReportConversionOutcome(t *testing.T) {
	ctx := context.Background()
	l, _, _ := newTestLedger(t)

	converted, err := l.Add(ctx, Input{Description: "Dinner", Amount: 10, Currency: currency.USD, Category: category.Food})
	require.NoError(t, err)
	assert.True(t, converted.Converted)
	assert.Equal(t, currency.IDR, converted.Home)

	missing, err := l.Add(ctx, Input{Description: "Train", Amount: 2000, Currency: currency.JPY, Category: category.Transport})
	require.NoError(t, err)
	assert.False(t, missing.Converted)
	assert.Equal(t, 2000.0, missing.AmountHome)

	edited, err := l.Update(ctx, missing.ID, Input{Description: "Train", Amount: 20, Currency: currency.USD, Category: category.Transport})
	require.NoError(t, err)
	assert.True(t, edited.Converted)
}

func Test_OnUpdateMissing_ShouldReportNotFound(t *testing.T) {
	l, _, _ := newTestLedger(t)

	_, err := l.Update(context.Background(), 999, Input{Description: "x", Amount: 1, Currency: currency.IDR, Category: category.Other})
	assert.ErrorIs(t, err, customerr.ErrNotFound)
}

func Test_OnDeleteMissing_ShouldBeNoop(t *testing.T) {
	ctx := context.Background()
	l, _, _ := newTestLedger(t)

	_, err := l.Add(ctx, Input{Description: "Water", Amount: 5000, Currency: currency.IDR, Category: category.Food})
	require.NoError(t, err)

	assert.NoError(t, l.Delete(ctx, 12345))

	all, err := l.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func Test_OnListRecent_ShouldReturnNewestFirst(t *testing.T) {
	ctx := context.Background()
	l, _, c := newTestLedger(t)

	var ids []int64
	for i := 0; i < 4; i++ {
		if i == 2 {
			c.now = c.now.Add(time.Minute)
		}
		rec, err := l.Add(ctx, Input{Description: "Snack", Amount: 1000, Currency: currency.IDR, Category: category.Food})
		require.NoError(t, err)
		ids = append(ids, rec.ID)
	}

	recent, err := l.ListRecent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, []int64{ids[3], ids[2], ids[1]}, []int64{recent[0].ID, recent[1].ID, recent[2].ID})
}
