package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_OnFormatZeroDecimalCurrency_ShouldGroupThousands(t *testing.T) {
	assert.Equal(t, "1,200,000 IDR", Format(1200000, IDR))
	assert.Equal(t, "-200,000 IDR", Format(-200000, IDR))
}

func Test_OnFormatCentCurrency_ShouldKeepTwoDecimals(t *testing.T) {
	assert.Equal(t, "1,234.50 USD", Format(1234.5, USD))
	assert.Equal(t, "0.00 EUR", Format(0, EUR))
}

func Test_OnParse_ShouldIgnoreCaseAndSpaces(t *testing.T) {
	c, err := Parse(" usd ")
	assert.NoError(t, err)
	assert.Equal(t, USD, c)

	_, err = Parse("XYZ")
	assert.Error(t, err)
}

func Test_OnNonAnchor_ShouldSkipAnchor(t *testing.T) {
	codes := NonAnchor(IDR)
	assert.Len(t, codes, len(Supported)-1)
	assert.NotContains(t, codes, IDR)
}
