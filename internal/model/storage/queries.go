package storage

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"max.ks1230/travel-finances-bot/internal/entity/category"
	"max.ks1230/travel-finances-bot/internal/entity/currency"
	"max.ks1230/travel-finances-bot/internal/entity/expense"
	"max.ks1230/travel-finances-bot/internal/entity/user"
	"max.ks1230/travel-finances-bot/internal/logger"
	"max.ks1230/travel-finances-bot/internal/model/customerr"
)

const settingsRowID = 1

// Queries is the record-level API available inside a transaction scope.
type Queries interface {
	GetRate(ctx context.Context, code currency.Code) (currency.Rate, bool, error)
	UpsertRate(ctx context.Context, rate currency.Rate) error
	ListRates(ctx context.Context) ([]currency.Rate, error)

	GetSettings(ctx context.Context) (user.Settings, error)
	SaveSettings(ctx context.Context, settings user.Settings) error

	InsertTransaction(ctx context.Context, t expense.Transaction) (int64, error)
	UpdateTransaction(ctx context.Context, t expense.Transaction) (bool, error)
	DeleteTransaction(ctx context.Context, id int64) error
	GetTransaction(ctx context.Context, id int64) (expense.Transaction, error)
	ListRecentTransactions(ctx context.Context, limit int) ([]expense.Transaction, error)
	ListTransactions(ctx context.Context) ([]expense.Transaction, error)

	InsertConversion(ctx context.Context, c expense.Conversion) (int64, error)
	ListConversions(ctx context.Context, limit int) ([]expense.Conversion, error)
}

// Tx implements Queries on top of a database transaction.
type Tx struct {
	tx *sql.Tx
	sb sq.StatementBuilderType
}

var transactionColumns = []string{
	"id", "description", "amount", "currency", "amount_home_currency", "category", "created_at",
}

func toUnix(t time.Time) int64 {
	return t.UnixMicro()
}

func fromUnix(v int64) time.Time {
	return time.UnixMicro(v)
}

func (t *Tx) GetRate(ctx context.Context, code currency.Code) (currency.Rate, bool, error) {
	query := t.sb.Select("rate", "last_updated").
		From("exchange_rates").
		Where(sq.Eq{"currency_code": string(code)})

	res := currency.Rate{Code: code}
	var updated int64
	err := query.RunWith(t.tx).QueryRowContext(ctx).Scan(&res.Value, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return currency.Rate{}, false, nil
	}
	if err != nil {
		return currency.Rate{}, false, errors.Wrap(err, "get rate")
	}
	res.UpdatedAt = fromUnix(updated)
	return res, true, nil
}

func (t *Tx) UpsertRate(ctx context.Context, rate currency.Rate) error {
	query := t.sb.Insert("exchange_rates").
		Columns("currency_code", "rate", "last_updated").
		Values(string(rate.Code), rate.Value, toUnix(rate.UpdatedAt)).
		Suffix("ON CONFLICT (currency_code) DO UPDATE SET rate = excluded.rate, last_updated = excluded.last_updated")

	_, err := query.RunWith(t.tx).ExecContext(ctx)
	return errors.Wrap(err, "upsert rate")
}

func (t *Tx) ListRates(ctx context.Context) ([]currency.Rate, error) {
	query := t.sb.Select("currency_code", "rate", "last_updated").
		From("exchange_rates").
		OrderBy("currency_code")

	rows, err := query.RunWith(t.tx).QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list rates")
	}
	defer closeRows(rows)

	res := make([]currency.Rate, 0)
	for rows.Next() {
		var (
			code    string
			rate    currency.Rate
			updated int64
		)
		if err = rows.Scan(&code, &rate.Value, &updated); err != nil {
			return nil, errors.Wrap(err, "list rates")
		}
		rate.Code = currency.Code(code)
		rate.UpdatedAt = fromUnix(updated)
		res = append(res, rate)
	}
	return res, errors.Wrap(rows.Err(), "list rates")
}

func (t *Tx) GetSettings(ctx context.Context) (user.Settings, error) {
	query := t.sb.Select("home_currency", "travel_budget").
		From("user_settings").
		Where(sq.Eq{"id": settingsRowID})

	var (
		res  user.Settings
		home string
	)
	err := query.RunWith(t.tx).QueryRowContext(ctx).Scan(&home, &res.TravelBudget)
	if errors.Is(err, sql.ErrNoRows) {
		return user.Settings{}, errors.Wrap(customerr.ErrNotFound, "get settings")
	}
	if err != nil {
		return user.Settings{}, errors.Wrap(err, "get settings")
	}
	res.HomeCurrency = currency.Code(home)
	return res, nil
}

func (t *Tx) SaveSettings(ctx context.Context, settings user.Settings) error {
	query := t.sb.Insert("user_settings").
		Columns("id", "home_currency", "travel_budget").
		Values(settingsRowID, string(settings.HomeCurrency), settings.TravelBudget).
		Suffix("ON CONFLICT (id) DO UPDATE SET home_currency = excluded.home_currency, travel_budget = excluded.travel_budget")

	_, err := query.RunWith(t.tx).ExecContext(ctx)
	return errors.Wrap(err, "save settings")
}

func (t *Tx) insertSettingsIfAbsent(ctx context.Context, settings user.Settings) error {
	query := t.sb.Insert("user_settings").
		Columns("id", "home_currency", "travel_budget").
		Values(settingsRowID, string(settings.HomeCurrency), settings.TravelBudget).
		Suffix("ON CONFLICT (id) DO NOTHING")

	_, err := query.RunWith(t.tx).ExecContext(ctx)
	return errors.Wrap(err, "ensure settings")
}

func (t *Tx) InsertTransaction(ctx context.Context, rec expense.Transaction) (int64, error) {
	query := t.sb.Insert("transactions").
		Columns("description", "amount", "currency", "amount_home_currency", "category", "created_at").
		Values(rec.Description, rec.Amount, string(rec.Currency), rec.AmountHome, string(rec.Category), toUnix(rec.Created)).
		Suffix("RETURNING id")

	var id int64
	err := query.RunWith(t.tx).QueryRowContext(ctx).Scan(&id)
	if err != nil {
		return 0, errors.Wrap(err, "insert transaction")
	}
	return id, nil
}

func (t *Tx) UpdateTransaction(ctx context.Context, rec expense.Transaction) (bool, error) {
	query := t.sb.Update("transactions").
		Set("description", rec.Description).
		Set("amount", rec.Amount).
		Set("currency", string(rec.Currency)).
		Set("amount_home_currency", rec.AmountHome).
		Set("category", string(rec.Category)).
		Set("created_at", toUnix(rec.Created)).
		Where(sq.Eq{"id": rec.ID})

	res, err := query.RunWith(t.tx).ExecContext(ctx)
	if err != nil {
		return false, errors.Wrap(err, "update transaction")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "update transaction")
	}
	return affected > 0, nil
}

func (t *Tx) DeleteTransaction(ctx context.Context, id int64) error {
	query := t.sb.Delete("transactions").Where(sq.Eq{"id": id})
	_, err := query.RunWith(t.tx).ExecContext(ctx)
	return errors.Wrap(err, "delete transaction")
}

func (t *Tx) GetTransaction(ctx context.Context, id int64) (expense.Transaction, error) {
	query := t.sb.Select(transactionColumns...).
		From("transactions").
		Where(sq.Eq{"id": id})

	rec, err := scanTransaction(query.RunWith(t.tx).QueryRowContext(ctx))
	if errors.Is(err, sql.ErrNoRows) {
		return expense.Transaction{}, errors.Wrapf(customerr.ErrNotFound, "transaction %d", id)
	}
	return rec, errors.Wrap(err, "get transaction")
}

func (t *Tx) ListRecentTransactions(ctx context.Context, limit int) ([]expense.Transaction, error) {
	if limit <= 0 {
		return []expense.Transaction{}, nil
	}
	query := t.sb.Select(transactionColumns...).
		From("transactions").
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit))

	return t.queryTransactions(ctx, query)
}

func (t *Tx) ListTransactions(ctx context.Context) ([]expense.Transaction, error) {
	query := t.sb.Select(transactionColumns...).From("transactions")
	return t.queryTransactions(ctx, query)
}

func (t *Tx) queryTransactions(ctx context.Context, query sq.SelectBuilder) ([]expense.Transaction, error) {
	rows, err := query.RunWith(t.tx).QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "get transactions")
	}
	defer closeRows(rows)

	res := make([]expense.Transaction, 0)
	for rows.Next() {
		rec, err := scanTransaction(rows)
		if err != nil {
			return nil, errors.Wrap(err, "get transactions")
		}
		res = append(res, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "get transactions")
	}
	return res, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row scanner) (expense.Transaction, error) {
	var (
		rec      expense.Transaction
		curr     string
		cat      string
		creation int64
	)
	err := row.Scan(&rec.ID, &rec.Description, &rec.Amount, &curr, &rec.AmountHome, &cat, &creation)
	if err != nil {
		return expense.Transaction{}, err
	}
	rec.Currency = currency.Code(curr)
	rec.Category = category.Category(cat)
	rec.Created = fromUnix(creation)
	return rec, nil
}

func (t *Tx) InsertConversion(ctx context.Context, c expense.Conversion) (int64, error) {
	query := t.sb.Insert("conversion_history").
		Columns("from_currency", "to_currency", "amount", "result", "created_at").
		Values(string(c.From), string(c.To), c.Amount, c.Result, toUnix(c.Created)).
		Suffix("RETURNING id")

	var id int64
	if err := query.RunWith(t.tx).QueryRowContext(ctx).Scan(&id); err != nil {
		return 0, errors.Wrap(err, "insert conversion")
	}
	return id, nil
}

func (t *Tx) ListConversions(ctx context.Context, limit int) ([]expense.Conversion, error) {
	query := t.sb.Select("id", "from_currency", "to_currency", "amount", "result", "created_at").
		From("conversion_history").
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit))

	rows, err := query.RunWith(t.tx).QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list conversions")
	}
	defer closeRows(rows)

	res := make([]expense.Conversion, 0)
	for rows.Next() {
		var (
			c        expense.Conversion
			from, to string
			created  int64
		)
		if err = rows.Scan(&c.ID, &from, &to, &c.Amount, &c.Result, &created); err != nil {
			return nil, errors.Wrap(err, "list conversions")
		}
		c.From, c.To, c.Created = currency.Code(from), currency.Code(to), fromUnix(created)
		res = append(res, c)
	}
	return res, errors.Wrap(rows.Err(), "list conversions")
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		logger.Error("error closing rows", zap.Error(err))
	}
}
