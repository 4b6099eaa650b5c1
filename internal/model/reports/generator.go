package reports

import (
	"context"
	"sort"
	"time"

	"github.com/jinzhu/now"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"max.ks1230/travel-finances-bot/internal/entity/category"
	"max.ks1230/travel-finances-bot/internal/entity/expense"
	"max.ks1230/travel-finances-bot/internal/entity/user"
	"max.ks1230/travel-finances-bot/internal/model/storage"
)

type txRunner interface {
	ReadTx(ctx context.Context, fn func(q storage.Queries) error) error
}

type config interface {
	Location() *time.Location
}

type CategoryTotal struct {
	Category category.Category
	Amount   float64
	Count    int
}

// Summary is one consistent view of the settings and the ledger, in the home currency.
type Summary struct {
	Settings   user.Settings
	Total      float64
	Today      float64
	ByCategory []CategoryTotal
}

// Remaining is negative when the trip is over budget.
func (s Summary) Remaining() float64 {
	return s.Settings.RemainingBudget(s.Total)
}

func (s Summary) OverBudget() bool {
	return s.Remaining() < 0
}

type Generator struct {
	db  txRunner
	loc *time.Location
	now func() time.Time
}

func NewGenerator(config config, db txRunner) *Generator {
	return &Generator{
		db:  db,
		loc: config.Location(),
		now: time.Now,
	}
}

// Summary scans the whole ledger once inside a single read transaction.
func (g *Generator) Summary(ctx context.Context) (Summary, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "summary")
	defer span.Finish()

	var (
		res      Summary
		expenses []expense.Transaction
	)
	err := g.db.ReadTx(ctx, func(q storage.Queries) (err error) {
		if res.Settings, err = q.GetSettings(ctx); err != nil {
			return err
		}
		expenses, err = q.ListTransactions(ctx)
		return err
	})
	if err != nil {
		return Summary{}, errors.Wrap(err, "generate summary")
	}

	res.Total = sumAfter(expenses, time.Time{})
	res.Today = sumAfter(expenses, g.startOfToday())
	res.ByCategory = groupExpenses(expenses)
	return res, nil
}

// TotalSpent, TodaySpent and ByCategory are single-figure views of Summary for
// callers that need one number; the bot itself renders the whole Summary.
func (g *Generator) TotalSpent(ctx context.Context) (float64, error) {
	s, err := g.Summary(ctx)
	return s.Total, err
}

func (g *Generator) TodaySpent(ctx context.Context) (float64, error) {
	s, err := g.Summary(ctx)
	return s.Today, err
}

func (g *Generator) ByCategory(ctx context.Context) ([]CategoryTotal, error) {
	s, err := g.Summary(ctx)
	return s.ByCategory, err
}

func (g *Generator) startOfToday() time.Time {
	return now.With(g.now().In(g.loc)).BeginningOfDay()
}

// sumAfter adds entries created at or after from.
func sumAfter(exps []expense.Transaction, from time.Time) float64 {
	total := 0.0
	for _, exp := range exps {
		if !exp.Created.Before(from) {
			total += exp.AmountHome
		}
	}
	return total
}

func groupExpenses(exps []expense.Transaction) []CategoryTotal {
	m := make(map[category.Category]*CategoryTotal)
	for _, exp := range exps {
		rec, ok := m[exp.Category]
		if !ok {
			rec = &CategoryTotal{Category: exp.Category}
			m[exp.Category] = rec
		}
		rec.Amount += exp.AmountHome
		rec.Count++
	}

	records := make([]CategoryTotal, 0, len(m))
	for _, rec := range m {
		records = append(records, *rec)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Amount != records[j].Amount {
			return records[i].Amount > records[j].Amount
		}
		return records[i].Category < records[j].Category
	})
	return records
}
