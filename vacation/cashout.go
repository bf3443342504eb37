package vacation

import "github.com/shopspring/decimal"

// =============================================================================
// CASH-OUT VALUATION (abono pecuniario)
// =============================================================================

var (
	thirty = decimal.NewFromInt(30)
	three  = decimal.NewFromInt(3)
)

// CashOutQuote is the monetary breakdown of selling vacation days:
// base pay for the days plus the constitutional one-third bonus.
type CashOutQuote struct {
	Days                int
	DailyRate           decimal.Decimal
	Base                decimal.Decimal
	ConstitutionalThird decimal.Decimal
	Total               decimal.Decimal
}

// QuoteCashOut values a day sale against a monthly salary.
// The daily rate is salary/30; the total adds the one-third bonus.
// Days must be within [1, AnnualSellCap].
func QuoteCashOut(monthlySalary decimal.Decimal, days int) (CashOutQuote, error) {
	if days <= 0 {
		return CashOutQuote{}, ErrInvalidQuantity
	}
	if days > AnnualSellCap {
		return CashOutQuote{}, &AnnualCapError{Requested: days, Cap: AnnualSellCap}
	}

	dailyRate := monthlySalary.Div(thirty)
	base := dailyRate.Mul(decimal.NewFromInt(int64(days)))
	third := base.Div(three)

	return CashOutQuote{
		Days:                days,
		DailyRate:           dailyRate.Round(2),
		Base:                base.Round(2),
		ConstitutionalThird: third.Round(2),
		Total:               base.Add(third).Round(2),
	}, nil
}
