package category

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
	"max.ks1230/travel-finances-bot/internal/model/customerr"
)

type Category string

const (
	Food          Category = "food"
	Transport     Category = "transport"
	Lodging       Category = "lodging"
	Tickets       Category = "tickets"
	Shopping      Category = "shopping"
	Souvenirs     Category = "souvenirs"
	Health        Category = "health"
	Communication Category = "communication"
	Other         Category = "other"
)

// All lists the closed category domain in display order.
var All = []Category{Food, Transport, Lodging, Tickets, Shopping, Souvenirs, Health, Communication, Other}

var names = map[Category]string{
	Food:          "Food & Drinks",
	Transport:     "Transportation",
	Lodging:       "Accommodation",
	Tickets:       "Entrance Tickets",
	Shopping:      "Shopping",
	Souvenirs:     "Souvenirs",
	Health:        "Health",
	Communication: "Communication",
	Other:         "Other",
}

func (c Category) String() string {
	return string(c)
}

func (c Category) Valid() bool {
	_, ok := names[c]
	return ok
}

func Name(c Category) string {
	if n, ok := names[c]; ok {
		return n
	}
	return string(c)
}

// Parse accepts either the key or the display name, ignoring case.
func Parse(s string) (Category, error) {
	in := strings.ToLower(strings.TrimSpace(s))
	for _, c := range All {
		if in == string(c) || in == strings.ToLower(names[c]) {
			return c, nil
		}
	}
	return "", customerr.NewValidation("category",
		fmt.Sprintf("unknown category %q, did you mean %q?", strings.TrimSpace(s), Closest(in)))
}

// Closest returns the category whose key is nearest to s by edit distance.
func Closest(s string) Category {
	best, bestDist := Other, -1
	for _, c := range All {
		d := levenshtein.ComputeDistance(strings.ToLower(s), string(c))
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
