/*
ledger.go - Balance mutations and expiry queries

PURPOSE:
  The read/write surface over individual balances: selling days, editing
  the entitlement, and the expiration math that feeds alert dashboards.

CHECK-THEN-ACT:
  Every operation validates against the freshly loaded balance before the
  single version-guarded write. No partial mutation survives a rejection.

ALERT TIERS:
  Days until expiration classify a balance into alert tiers for the risk
  dashboard: 30 or fewer days is urgent, 31-60 is a warning. Balances that
  are fully taken or already expired are excluded regardless of date math.
*/
package vacation

import (
	"context"
	"fmt"
)

// =============================================================================
// EXPIRATION QUERIES - Pure functions
// =============================================================================

// DaysUntilExpiration returns the days left before the balance's legal
// deadline. Negative once the deadline has passed.
func DaysUntilExpiration(b Balance, asOf Date) int {
	return DaysBetween(asOf, b.ExpirationDate)
}

type AlertTier string

const (
	AlertNone    AlertTier = "none"
	AlertWarning AlertTier = "warning"
	AlertUrgent  AlertTier = "urgent"
)

// AlertTierFor classifies a balance for the expiry-risk dashboard.
func AlertTierFor(b Balance, asOf Date) AlertTier {
	if b.Status == StatusTaken || b.Status == StatusExpired {
		return AlertNone
	}
	switch days := DaysUntilExpiration(b, asOf); {
	case days <= 30:
		return AlertUrgent
	case days <= 60:
		return AlertWarning
	default:
		return AlertNone
	}
}

// =============================================================================
// LEDGER - Balance mutation operations
// =============================================================================

// Ledger mutates balances with check-then-act validation and
// version-guarded writes.
type Ledger struct {
	Store TxStore
	Now   func() Date
}

func NewLedger(store TxStore) *Ledger {
	return &Ledger{Store: store, Now: Today}
}

func (l *Ledger) today() Date {
	if l.Now != nil {
		return l.Now()
	}
	return Today()
}

// SellDays converts remaining days into a sale on the balance.
// Validates the quantity, the legal annual cap and the remaining balance
// before writing anything.
func (l *Ledger) SellDays(ctx context.Context, balanceID BalanceID, days int) (*Balance, error) {
	if days <= 0 {
		return nil, ErrInvalidQuantity
	}

	b, err := l.Store.GetBalance(ctx, balanceID)
	if err != nil {
		return nil, err
	}

	if b.DaysSold+days > AnnualSellCap {
		return nil, &AnnualCapError{
			BalanceID:   balanceID,
			AlreadySold: b.DaysSold,
			Requested:   days,
			Cap:         AnnualSellCap,
		}
	}
	if days > b.DaysRemaining {
		return nil, &ExceedsAvailableDaysError{
			BalanceID: balanceID,
			Available: b.DaysRemaining,
			Requested: days,
		}
	}

	b.DaysSold += days
	b.Recompute(l.today())

	if err := l.Store.UpdateBalance(ctx, *b); err != nil {
		return nil, fmt.Errorf("persisting day sale on %s: %w", balanceID, err)
	}
	return b, nil
}

// AdjustEntitlement is the administrative override of a balance's entitled
// days. Rejected with an UnderflowError when the new entitlement would
// fall below what is already taken plus sold.
func (l *Ledger) AdjustEntitlement(ctx context.Context, balanceID BalanceID, newDaysEntitled int) (*Balance, error) {
	if newDaysEntitled <= 0 {
		return nil, ErrInvalidQuantity
	}

	b, err := l.Store.GetBalance(ctx, balanceID)
	if err != nil {
		return nil, err
	}

	consumed := b.DaysTaken + b.DaysSold
	if newDaysEntitled < consumed {
		return nil, &UnderflowError{
			BalanceID:    balanceID,
			NewEntitled:  newDaysEntitled,
			DaysConsumed: consumed,
		}
	}

	b.DaysEntitled = newDaysEntitled
	b.Recompute(l.today())

	if err := l.Store.UpdateBalance(ctx, *b); err != nil {
		return nil, fmt.Errorf("persisting entitlement change on %s: %w", balanceID, err)
	}
	return b, nil
}
