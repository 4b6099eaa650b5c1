package messages

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"max.ks1230/travel-finances-bot/internal/entity/category"
	"max.ks1230/travel-finances-bot/internal/entity/currency"
	"max.ks1230/travel-finances-bot/internal/entity/expense"
	"max.ks1230/travel-finances-bot/internal/entity/user"
	"max.ks1230/travel-finances-bot/internal/model/conversion"
	"max.ks1230/travel-finances-bot/internal/model/customerr"
	"max.ks1230/travel-finances-bot/internal/model/ledger"
	"max.ks1230/travel-finances-bot/internal/model/reports"
)

const timeLayout = "02.01 15:04"

const (
	dontUnderstandMessage = "I don't understand you :( Try /help"
	helloMessage          = "Hello! I am your travel finances bot 🧳\n\n"
	notFoundMessage       = "There is no expense with that number"
	noExpensesMessage     = "You have no expenses yet"
	noRatesMessage        = "No exchange rates stored yet. Try /refresh"
	noConversionsMessage  = "No conversions yet. Try /convert"

	cannotSaveMessage     = "Can't save that atm. Try later"
	cannotReadMessage     = "Can't read your data atm. Try later"
	cannotConvertMessage  = "Can't convert atm. Try later"
	expenseUsageMessage   = "Usage: /expense <amount> <currency> <category> <description>"
	editUsageMessage      = "Usage: /edit <id> <amount> <currency> <category> <description>"
	deleteUsageMessage    = "Usage: /delete <id>"
	currencyUsageMessage  = "Usage: /currency <code>, see /currencies"
	budgetUsageMessage    = "Usage: /budget <amount> [currency]"
	convertUsageMessage   = "Usage: /convert <amount> <currency>"
	unconvertedNoteFormat = "\n⚠️ No rate for %s yet, the amount was stored unconverted"
)

const helpMessage = `/expense <amount> <currency> <category> <description> - record an expense
/edit <id> <amount> <currency> <category> <description> - change an expense
/delete <id> - remove an expense
/recent [n] - latest expenses
/report - budget dashboard
/budget <amount> [currency] - set the travel budget, converted to the home currency
/currency <code> - set the home currency
/convert <amount> <currency> - quick conversion to the home currency
/history [n] - latest quick conversions
/rates - stored exchange rates
/refresh - pull fresh exchange rates
/currencies, /categories - what is supported

Anything else is a question for the assistant.`

const (
	startCommand      = "/start"
	helpCommand       = "/help"
	expenseCommand    = "/expense"
	editCommand       = "/edit"
	deleteCommand     = "/delete"
	recentCommand     = "/recent"
	reportCommand     = "/report"
	currencyCommand   = "/currency"
	budgetCommand     = "/budget"
	ratesCommand      = "/rates"
	convertCommand    = "/convert"
	historyCommand    = "/history"
	currenciesCommand = "/currencies"
	categoriesCommand = "/categories"
)

type expenseLedger interface {
	Add(ctx context.Context, in ledger.Input) (ledger.Entry, error)
	Update(ctx context.Context, id int64, in ledger.Input) (ledger.Entry, error)
	Delete(ctx context.Context, id int64) error
	ListRecent(ctx context.Context, n int) ([]expense.Transaction, error)
}

type settingsStore interface {
	Get(ctx context.Context) (user.Settings, error)
	SetHomeCurrency(ctx context.Context, code currency.Code) (user.Settings, error)
	SetTravelBudget(ctx context.Context, budget float64) (user.Settings, error)
}

type summarizer interface {
	Summary(ctx context.Context) (reports.Summary, error)
}

type rateLister interface {
	Anchor() currency.Code
	ListRates(ctx context.Context) ([]currency.Rate, error)
}

type converter interface {
	Convert(ctx context.Context, amount float64, from currency.Code) (conversion.Quote, error)
	ConvertToHome(ctx context.Context, amount float64, from currency.Code) float64
	History(ctx context.Context, n int) ([]expense.Conversion, error)
}

type config interface {
	RecentLimit() int
	Location() *time.Location
}

type handler func(ctx context.Context, arg string) (string, error)

type handlerMap map[string]handler

type HandlerService struct {
	handlersMap handlerMap
	ledger      expenseLedger
	settings    settingsStore
	reports     summarizer
	rates       rateLister
	converter   converter
	recentLimit int
	loc         *time.Location
}

func NewHandlerService(
	config config,
	ledger expenseLedger,
	settings settingsStore,
	reports summarizer,
	rates rateLister,
	converter converter,
) *HandlerService {
	res := &HandlerService{
		ledger:      ledger,
		settings:    settings,
		reports:     reports,
		rates:       rates,
		converter:   converter,
		recentLimit: config.RecentLimit(),
		loc:         config.Location(),
	}
	if res.recentLimit <= 0 {
		res.recentLimit = 10
	}
	res.handlersMap = newMap(res)
	return res
}

// Knows reports whether cmd is a synchronous command.
func (s *HandlerService) Knows(cmd string) bool {
	_, ok := s.handlersMap[cmd]
	return ok
}

func (s *HandlerService) HandleMessage(ctx context.Context, cmd, arg string) (string, error) {
	handler, ok := s.handlersMap[cmd]
	if ok {
		return handler(ctx, arg)
	}
	return dontUnderstandMessage, nil
}

func newMap(s *HandlerService) handlerMap {
	m := make(handlerMap)
	m[startCommand] = s.handleStart
	m[helpCommand] = s.handleHelp
	m[expenseCommand] = s.handleExpense
	m[editCommand] = s.handleEdit
	m[deleteCommand] = s.handleDelete
	m[recentCommand] = s.handleRecent
	m[reportCommand] = s.handleReport
	m[currencyCommand] = s.handleCurrency
	m[budgetCommand] = s.handleBudget
	m[ratesCommand] = s.handleRates
	m[convertCommand] = s.handleConvert
	m[historyCommand] = s.handleHistory
	m[currenciesCommand] = s.handleCurrencies
	m[categoriesCommand] = s.handleCategories
	return m
}

// reply turns domain errors into user text. Only unexpected errors are returned.
func reply(err error, fallback string) (string, error) {
	var vErr *customerr.ValidationError
	switch {
	case errors.As(err, &vErr):
		return "Invalid " + vErr.Error(), nil
	case errors.Is(err, customerr.ErrNotFound):
		return notFoundMessage, nil
	}
	return fallback, err
}

func (s *HandlerService) handleStart(_ context.Context, _ string) (string, error) {
	return helloMessage + helpMessage, nil
}

func (s *HandlerService) handleHelp(_ context.Context, _ string) (string, error) {
	return helpMessage, nil
}

// parseInput reads "<amount> <currency> <category> <description...>".
func parseInput(args []string) (ledger.Input, error) {
	amount, err := parseAmount(args[0])
	if err != nil {
		return ledger.Input{}, err
	}
	code, err := currency.Parse(args[1])
	if err != nil {
		return ledger.Input{}, err
	}
	cat, err := category.Parse(args[2])
	if err != nil {
		return ledger.Input{}, err
	}
	return ledger.Input{
		Description: strings.Join(args[3:], " "),
		Amount:      amount,
		Currency:    code,
		Category:    cat,
	}, nil
}

func (s *HandlerService) handleExpense(ctx context.Context, arg string) (string, error) {
	args := strings.Fields(arg)
	if len(args) < 4 {
		return expenseUsageMessage, nil
	}
	in, err := parseInput(args)
	if err != nil {
		return reply(err, expenseUsageMessage)
	}

	rec, err := s.ledger.Add(ctx, in)
	if err != nil {
		resp, err := reply(err, cannotSaveMessage)
		return resp, errors.Wrap(err, "handle expense")
	}
	return describeSaved("Saved", rec), nil
}

func (s *HandlerService) handleEdit(ctx context.Context, arg string) (string, error) {
	args := strings.Fields(arg)
	if len(args) < 5 {
		return editUsageMessage, nil
	}
	id, err := parseID(args[0])
	if err != nil {
		return reply(err, editUsageMessage)
	}
	in, err := parseInput(args[1:])
	if err != nil {
		return reply(err, editUsageMessage)
	}

	rec, err := s.ledger.Update(ctx, id, in)
	if err != nil {
		resp, err := reply(err, cannotSaveMessage)
		return resp, errors.Wrap(err, "handle edit")
	}
	return describeSaved("Updated", rec), nil
}

func describeSaved(verb string, rec ledger.Entry) string {
	res := fmt.Sprintf("%s #%d: %s (%s)\n%s", verb, rec.ID, rec.Description,
		category.Name(rec.Category), currency.Format(rec.Amount, rec.Currency))

	if rec.Home == rec.Currency {
		return res
	}
	res += " = " + currency.Format(rec.AmountHome, rec.Home)
	if !rec.Converted {
		res += fmt.Sprintf(unconvertedNoteFormat, rec.Currency)
	}
	return res
}

func (s *HandlerService) handleDelete(ctx context.Context, arg string) (string, error) {
	if arg == "" {
		return deleteUsageMessage, nil
	}
	id, err := parseID(arg)
	if err != nil {
		return reply(err, deleteUsageMessage)
	}
	if err = s.ledger.Delete(ctx, id); err != nil {
		return cannotSaveMessage, errors.Wrap(err, "handle delete")
	}
	return fmt.Sprintf("Deleted #%d", id), nil
}

func (s *HandlerService) handleRecent(ctx context.Context, arg string) (string, error) {
	n := s.recentLimit
	if arg != "" {
		v, err := parseID(arg)
		if err != nil {
			return reply(customerr.NewValidation("count", "not a positive number: "+arg), "")
		}
		n = int(v)
	}

	recs, err := s.ledger.ListRecent(ctx, n)
	if err != nil {
		return cannotReadMessage, errors.Wrap(err, "handle recent")
	}
	if len(recs) == 0 {
		return noExpensesMessage, nil
	}
	st, err := s.settings.Get(ctx)
	if err != nil {
		return cannotReadMessage, errors.Wrap(err, "handle recent")
	}

	lines := make([]string, 0, len(recs))
	for _, rec := range recs {
		line := fmt.Sprintf("#%d %s %s: %s", rec.ID, rec.Created.In(s.loc).Format(timeLayout),
			truncate(rec.Description, descriptionMax), currency.Format(rec.Amount, rec.Currency))
		if rec.Currency != st.HomeCurrency {
			line += " (" + currency.Format(rec.AmountHome, st.HomeCurrency) + ")"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}

func (s *HandlerService) handleReport(ctx context.Context, _ string) (string, error) {
	summary, err := s.reports.Summary(ctx)
	if err != nil {
		return cannotReadMessage, errors.Wrap(err, "handle report")
	}
	return reports.FormatSummary(summary), nil
}

func (s *HandlerService) handleCurrency(ctx context.Context, arg string) (string, error) {
	if arg == "" {
		st, err := s.settings.Get(ctx)
		if err != nil {
			return cannotReadMessage, errors.Wrap(err, "handle currency")
		}
		return fmt.Sprintf("Home currency: %s\n%s", currency.Name(st.HomeCurrency), currencyUsageMessage), nil
	}
	code, err := currency.Parse(arg)
	if err != nil {
		return reply(err, currencyUsageMessage)
	}
	if _, err = s.settings.SetHomeCurrency(ctx, code); err != nil {
		return cannotSaveMessage, errors.Wrap(err, "handle currency")
	}
	return fmt.Sprintf("Home currency set to %s. Earlier expenses keep their original conversion.", currency.Name(code)), nil
}

// handleBudget accepts "<amount> [currency]"; a foreign amount is converted to the home currency.
func (s *HandlerService) handleBudget(ctx context.Context, arg string) (string, error) {
	args := strings.Fields(arg)
	if len(args) == 0 || len(args) > 2 {
		return budgetUsageMessage, nil
	}
	budget, err := parseAmount(args[0])
	if err != nil {
		return reply(err, budgetUsageMessage)
	}
	if len(args) == 2 {
		from, err := currency.Parse(args[1])
		if err != nil {
			return reply(err, budgetUsageMessage)
		}
		budget = s.converter.ConvertToHome(ctx, budget, from)
	}

	st, err := s.settings.SetTravelBudget(ctx, budget)
	if err != nil {
		resp, err := reply(err, cannotSaveMessage)
		return resp, errors.Wrap(err, "handle budget")
	}
	return "Travel budget set to " + currency.Format(st.TravelBudget, st.HomeCurrency), nil
}

func (s *HandlerService) handleRates(ctx context.Context, _ string) (string, error) {
	rates, err := s.rates.ListRates(ctx)
	if err != nil {
		return cannotReadMessage, errors.Wrap(err, "handle rates")
	}
	if len(rates) == 0 {
		return noRatesMessage, nil
	}

	anchor := s.rates.Anchor()
	lines := make([]string, 0, len(rates)+1)
	var updated time.Time
	for _, rate := range rates {
		lines = append(lines, fmt.Sprintf("1 %s = %s", rate.Code, currency.Format(1/rate.Value, anchor)))
		if rate.UpdatedAt.After(updated) {
			updated = rate.UpdatedAt
		}
	}
	lines = append(lines, "", "Updated "+updated.In(s.loc).Format("02.01.2006 15:04"))
	return strings.Join(lines, "\n"), nil
}

func (s *HandlerService) handleConvert(ctx context.Context, arg string) (string, error) {
	args := strings.Fields(arg)
	if len(args) != 2 {
		return convertUsageMessage, nil
	}
	amount, err := parseAmount(args[0])
	if err != nil {
		return reply(err, convertUsageMessage)
	}
	if amount <= 0 {
		return reply(customerr.NewValidation("amount", "must be positive"), convertUsageMessage)
	}
	from, err := currency.Parse(args[1])
	if err != nil {
		return reply(err, convertUsageMessage)
	}

	q, err := s.converter.Convert(ctx, amount, from)
	if err != nil {
		return cannotConvertMessage, errors.Wrap(err, "handle convert")
	}
	if !q.Converted {
		return fmt.Sprintf("No rate to convert %s to %s yet. Try /refresh", q.From, q.Home), nil
	}
	return fmt.Sprintf("%s = %s", currency.Format(q.Amount, q.From), currency.Format(q.Result, q.Home)), nil
}

func (s *HandlerService) handleHistory(ctx context.Context, arg string) (string, error) {
	n := s.recentLimit
	if arg != "" {
		v, err := parseID(arg)
		if err != nil {
			return reply(customerr.NewValidation("count", "not a positive number: "+arg), "")
		}
		n = int(v)
	}

	history, err := s.converter.History(ctx, n)
	if err != nil {
		return cannotReadMessage, errors.Wrap(err, "handle history")
	}
	if len(history) == 0 {
		return noConversionsMessage, nil
	}

	lines := make([]string, 0, len(history))
	for _, c := range history {
		lines = append(lines, fmt.Sprintf("%s %s = %s", c.Created.In(s.loc).Format(timeLayout),
			currency.Format(c.Amount, c.From), currency.Format(c.Result, c.To)))
	}
	return strings.Join(lines, "\n"), nil
}

func (s *HandlerService) handleCurrencies(_ context.Context, _ string) (string, error) {
	lines := make([]string, 0, len(currency.Supported))
	for _, c := range currency.Supported {
		lines = append(lines, fmt.Sprintf("%s - %s", c, currency.Name(c)))
	}
	return strings.Join(lines, "\n"), nil
}

func (s *HandlerService) handleCategories(_ context.Context, _ string) (string, error) {
	lines := make([]string, 0, len(category.All))
	for _, c := range category.All {
		lines = append(lines, fmt.Sprintf("%s - %s", c, category.Name(c)))
	}
	return strings.Join(lines, "\n"), nil
}
