package expense

import (
	"time"

	"max.ks1230/travel-finances-bot/internal/entity/category"
	"max.ks1230/travel-finances-bot/internal/entity/currency"
)

// Transaction is a recorded expense. AmountHome is fixed at write time
// and is not recomputed when rates or the home currency change.
type Transaction struct {
	ID          int64
	Description string
	Amount      float64
	Currency    currency.Code
	AmountHome  float64
	Category    category.Category
	Created     time.Time
}

// Conversion is a row of the quick-conversion history.
type Conversion struct {
	ID      int64
	From    currency.Code
	To      currency.Code
	Amount  float64
	Result  float64
	Created time.Time
}
