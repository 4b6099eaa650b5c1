package ledger

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"max.ks1230/travel-finances-bot/internal/entity/category"
	"max.ks1230/travel-finances-bot/internal/entity/currency"
	"max.ks1230/travel-finances-bot/internal/entity/expense"
	"max.ks1230/travel-finances-bot/internal/logger"
	"max.ks1230/travel-finances-bot/internal/model/conversion"
	"max.ks1230/travel-finances-bot/internal/model/customerr"
	"max.ks1230/travel-finances-bot/internal/model/storage"
)

type txRunner interface {
	ReadTx(ctx context.Context, fn func(q storage.Queries) error) error
	WriteTx(ctx context.Context, fn func(q storage.Queries) error) error
}

// Input is what the user supplies for a new or edited entry.
type Input struct {
	Description string            `validate:"required"`
	Amount      float64           `validate:"gt=0"`
	Currency    currency.Code     `validate:"required,currency_code"`
	Category    category.Category `validate:"required,category"`
}

// Entry is a written transaction with the conversion outcome of that write.
// Converted is false when the amount was stored unconverted for lack of a rate.
type Entry struct {
	expense.Transaction
	Home      currency.Code
	Converted bool
}

// Ledger is the only writer of transaction records.
type Ledger struct {
	db       txRunner
	anchor   currency.Code
	validate *validator.Validate
	now      func() time.Time
}

func New(db txRunner, anchor currency.Code) *Ledger {
	return &Ledger{
		db:       db,
		anchor:   anchor,
		validate: newValidator(),
		now:      time.Now,
	}
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("currency_code", func(fl validator.FieldLevel) bool {
		return currency.Code(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return category.Category(fl.Field().String()).Valid()
	})
	return v
}

// Add stores a new entry with its home-currency amount fixed at write time.
func (l *Ledger) Add(ctx context.Context, in Input) (Entry, error) {
	in.Description = strings.TrimSpace(in.Description)
	if err := l.check(in); err != nil {
		return Entry{}, err
	}

	rec := Entry{Transaction: expense.Transaction{
		Description: in.Description,
		Amount:      in.Amount,
		Currency:    in.Currency,
		Category:    in.Category,
	}}
	err := l.db.WriteTx(ctx, func(q storage.Queries) (err error) {
		if err = l.toHome(ctx, q, &rec); err != nil {
			return err
		}
		rec.Created = l.now()
		rec.ID, err = q.InsertTransaction(ctx, rec.Transaction)
		return err
	})
	if err != nil {
		return Entry{}, errors.Wrap(err, "add transaction")
	}

	logger.Info("transaction added", zap.Int64("id", rec.ID), zap.Float64("amountHome", rec.AmountHome))
	return rec, nil
}

// Update re-enters an existing entry: the home amount is recomputed and the
// timestamp moves to now, so an edit counts as today's spending.
func (l *Ledger) Update(ctx context.Context, id int64, in Input) (Entry, error) {
	in.Description = strings.TrimSpace(in.Description)
	if err := l.check(in); err != nil {
		return Entry{}, err
	}

	rec := Entry{Transaction: expense.Transaction{
		ID:          id,
		Description: in.Description,
		Amount:      in.Amount,
		Currency:    in.Currency,
		Category:    in.Category,
	}}
	err := l.db.WriteTx(ctx, func(q storage.Queries) error {
		if err := l.toHome(ctx, q, &rec); err != nil {
			return err
		}
		rec.Created = l.now()

		updated, err := q.UpdateTransaction(ctx, rec.Transaction)
		if err != nil {
			return err
		}
		if !updated {
			return errors.Wrapf(customerr.ErrNotFound, "transaction %d", id)
		}
		return nil
	})
	if err != nil {
		return Entry{}, errors.Wrap(err, "update transaction")
	}
	return rec, nil
}

// Delete removes an entry, a missing id is not an error.
func (l *Ledger) Delete(ctx context.Context, id int64) error {
	err := l.db.WriteTx(ctx, func(q storage.Queries) error {
		return q.DeleteTransaction(ctx, id)
	})
	return errors.Wrap(err, "delete transaction")
}

func (l *Ledger) Get(ctx context.Context, id int64) (rec expense.Transaction, err error) {
	err = l.db.ReadTx(ctx, func(q storage.Queries) error {
		rec, err = q.GetTransaction(ctx, id)
		return err
	})
	return rec, errors.Wrap(err, "get transaction")
}

// ListRecent returns the n newest entries, newest first.
func (l *Ledger) ListRecent(ctx context.Context, n int) (res []expense.Transaction, err error) {
	err = l.db.ReadTx(ctx, func(q storage.Queries) error {
		res, err = q.ListRecentTransactions(ctx, n)
		return err
	})
	return res, errors.Wrap(err, "list recent transactions")
}

func (l *Ledger) ListAll(ctx context.Context) (res []expense.Transaction, err error) {
	err = l.db.ReadTx(ctx, func(q storage.Queries) error {
		res, err = q.ListTransactions(ctx)
		return err
	})
	return res, errors.Wrap(err, "list transactions")
}

// toHome fills the home-currency fields of rec using settings and rates of the open scope.
func (l *Ledger) toHome(ctx context.Context, q storage.Queries, rec *Entry) error {
	settings, err := q.GetSettings(ctx)
	if err != nil {
		return err
	}
	rec.Home = settings.HomeCurrency
	rec.AmountHome, rec.Converted = conversion.InScope(ctx, q, l.anchor, rec.Amount, rec.Currency, rec.Home)
	return nil
}

func (l *Ledger) check(in Input) error {
	if math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) {
		return customerr.NewValidation("amount", "must be positive")
	}
	err := l.validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return customerr.NewValidation(strings.ToLower(fe.Field()), reason(fe))
	}
	return customerr.NewValidation("", err.Error())
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be empty"
	case "gt":
		return "must be positive"
	case "currency_code":
		return "unsupported currency"
	case "category":
		return "unknown category"
	}
	return "is invalid"
}
