package vacation_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ondahr/vacation-engine/vacation"
)

func TestQuoteCashOut_AddsConstitutionalThird(t *testing.T) {
	// GIVEN: Monthly salary of 6000
	// WHEN: Quoting a 10-day sale
	// THEN: daily 200, base 2000, third 666.67, total 2666.67

	quote, err := vacation.QuoteCashOut(decimal.NewFromInt(6000), 10)
	require.NoError(t, err)

	assert.Equal(t, 10, quote.Days)
	assert.Equal(t, "200", quote.DailyRate.String())
	assert.Equal(t, "2000", quote.Base.String())
	assert.Equal(t, "666.67", quote.ConstitutionalThird.String())
	assert.Equal(t, "2666.67", quote.Total.String())
}

func TestQuoteCashOut_RoundsToCents(t *testing.T) {
	// 5000/30 does not divide evenly; everything is money-rounded.
	quote, err := vacation.QuoteCashOut(decimal.NewFromInt(5000), 3)
	require.NoError(t, err)

	assert.Equal(t, "166.67", quote.DailyRate.String())
	assert.Equal(t, "500", quote.Base.String())
	assert.Equal(t, "166.67", quote.ConstitutionalThird.String())
	assert.Equal(t, "666.67", quote.Total.String())
}

func TestQuoteCashOut_DayBounds(t *testing.T) {
	salary := decimal.NewFromInt(6000)

	_, err := vacation.QuoteCashOut(salary, 0)
	assert.ErrorIs(t, err, vacation.ErrInvalidQuantity)

	_, err = vacation.QuoteCashOut(salary, -2)
	assert.ErrorIs(t, err, vacation.ErrInvalidQuantity)

	_, err = vacation.QuoteCashOut(salary, vacation.AnnualSellCap+1)
	assert.ErrorIs(t, err, vacation.ErrExceedsAnnualCap)

	_, err = vacation.QuoteCashOut(salary, vacation.AnnualSellCap)
	assert.NoError(t, err)
}
