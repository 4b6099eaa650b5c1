package currency

import (
	"strings"
	"time"

	"max.ks1230/travel-finances-bot/internal/model/customerr"
)

type Code string

const (
	USD Code = "USD"
	JPY Code = "JPY"
	EUR Code = "EUR"
	GBP Code = "GBP"
	AUD Code = "AUD"
	SGD Code = "SGD"
	MYR Code = "MYR"
	CNY Code = "CNY"
	IDR Code = "IDR"
	THB Code = "THB"
	KRW Code = "KRW"
	PHP Code = "PHP"
	VND Code = "VND"
)

// DefaultAnchor is the pivot currency every stored rate is quoted against.
const DefaultAnchor = IDR

// Supported lists the closed currency domain in display order.
var Supported = []Code{USD, JPY, EUR, GBP, AUD, SGD, MYR, CNY, IDR, THB, KRW, PHP, VND}

var names = map[Code]string{
	USD: "US Dollar (USD)",
	JPY: "Japanese Yen (¥)",
	EUR: "Euro (€)",
	GBP: "British Pound (£)",
	AUD: "Australian Dollar (A$)",
	SGD: "Singapore Dollar (S$)",
	MYR: "Malaysian Ringgit (RM)",
	CNY: "Chinese Yuan (¥)",
	IDR: "Indonesian Rupiah (IDR)",
	THB: "Thai Baht (THB)",
	KRW: "Korean Won (₩)",
	PHP: "Philippine Peso (₱)",
	VND: "Vietnamese Dong (₫)",
}

// Rate is how many units of Code equal one unit of the anchor currency.
type Rate struct {
	Code      Code
	Value     float64
	UpdatedAt time.Time
}

func (c Code) String() string {
	return string(c)
}

func (c Code) Valid() bool {
	_, ok := names[c]
	return ok
}

// Name returns the display name, or the bare code for values outside the set.
func Name(c Code) string {
	if n, ok := names[c]; ok {
		return n
	}
	return string(c)
}

func Parse(s string) (Code, error) {
	c := Code(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", customerr.NewValidation("currency", "unsupported currency "+strings.TrimSpace(s))
	}
	return c, nil
}

// NonAnchor returns every supported code except anchor.
func NonAnchor(anchor Code) []Code {
	res := make([]Code, 0, len(Supported)-1)
	for _, c := range Supported {
		if c != anchor {
			res = append(res, c)
		}
	}
	return res
}
