package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Ledger is the one write path for debt balances. Every mutation settles the
// balance and the paid-off flag together inside the store's transaction, so
// no caller can observe a payment without the matching balance or vice versa.
type Ledger struct {
	store Store
	cache Cache // may be nil
}

func NewLedger(store Store, cache Cache) *Ledger {
	return &Ledger{store: store, cache: cache}
}

// AddPayment records a payment against the debt and settles the new balance.
// Paying more than the outstanding balance is not an error: the payment is
// recorded at its given amount and the balance floors at zero.
func (l *Ledger) AddPayment(ctx context.Context, debtID, ownerID uuid.UUID, amount Money, paidOn time.Time, note string) (Payment, Debt, error) {
	if !amount.IsPositive() {
		return Payment{}, Debt{}, fmt.Errorf("%w: payment must be positive, got %s", ErrInvalidAmount, amount)
	}
	if _, err := l.store.GetDebt(ctx, debtID, ownerID); err != nil {
		return Payment{}, Debt{}, err
	}
	p := Payment{
		ID:        uuid.New(),
		DebtID:    debtID,
		PaidOn:    paidOn,
		Amount:    amount.Round2(),
		Note:      note,
		CreatedAt: time.Now().UTC(),
	}
	p, d, err := l.store.AddPayment(ctx, ownerID, p)
	if err != nil {
		return Payment{}, Debt{}, err
	}
	l.invalidate(ctx, ownerID, debtID)
	return p, d, nil
}

// RemovePayment deletes a payment and restores its amount to the debt's
// balance. The paid-off flag is always cleared: a debt with a reversed
// payment is not considered settled, even when the arithmetic lands on zero.
func (l *Ledger) RemovePayment(ctx context.Context, paymentID, ownerID uuid.UUID) (Debt, error) {
	p, err := l.store.GetPayment(ctx, paymentID, ownerID)
	if err != nil {
		return Debt{}, err
	}
	d, err := l.store.RemovePayment(ctx, paymentID, ownerID)
	if err != nil {
		return Debt{}, err
	}
	l.invalidate(ctx, ownerID, p.DebtID)
	return d, nil
}

// ListPayments returns the debt's payments newest first.
func (l *Ledger) ListPayments(ctx context.Context, debtID, ownerID uuid.UUID) ([]Payment, error) {
	if _, err := l.store.GetDebt(ctx, debtID, ownerID); err != nil {
		return nil, err
	}
	return l.store.ListPayments(ctx, debtID, ownerID)
}

func (l *Ledger) invalidate(ctx context.Context, ownerID, debtID uuid.UUID) {
	if l.cache == nil {
		return
	}
	l.cache.Invalidate(ctx, planCachePrefix(ownerID), projectionCachePrefix(debtID))
}

// deriveBalance recomputes the outstanding balance from the original
// principal and the surviving payments, floored at zero. This is the
// ground truth every stored balance must agree with.
func deriveBalance(principal Money, payments []Payment) Money {
	bal := principal
	for _, p := range payments {
		bal = bal.Sub(p.Amount)
	}
	if bal.IsNegative() {
		return Money{}
	}
	return bal.Round2()
}

// settleAfterAdd computes the debt's balance and paid-off flag after
// recording p. existing must be the payments on the debt before the insert.
// The incremental result is cross-checked against the full derivation; a
// mismatch means the stored balance had already drifted, and the whole
// operation must abort.
func settleAfterAdd(d Debt, existing []Payment, p Payment) (Money, bool, error) {
	next := d.Amount.Sub(p.Amount)
	if next.IsNegative() {
		next = Money{} // overpayment: balance floors at zero
	}
	next = next.Round2()
	derived := deriveBalance(d.Principal, append(append([]Payment(nil), existing...), p))
	if next.Cmp(derived) != 0 {
		return Money{}, false, fmt.Errorf("%w: debt %s balance %s does not re-derive (%s) after payment",
			ErrInvariant, d.ID, next, derived)
	}
	return next, next.IsZero(), nil
}

// settleAfterRemove computes the debt's balance after deleting a payment,
// re-deriving from principal and the remaining payments rather than adding
// the removed amount back, so a reversed overpayment cannot push the balance
// past the principal. Paid-off is always false after a removal.
func settleAfterRemove(d Debt, remaining []Payment) (Money, bool) {
	return deriveBalance(d.Principal, remaining), false
}

// verifyDebtConsistency checks a stored debt against its payment history:
// the balance must be non-negative and re-derivable, and the paid-off flag
// may only be set on a zero balance.
func verifyDebtConsistency(d Debt, payments []Payment) error {
	if d.Amount.IsNegative() {
		return fmt.Errorf("%w: debt %s has negative balance %s", ErrInvariant, d.ID, d.Amount)
	}
	if derived := deriveBalance(d.Principal, payments); d.Amount.Cmp(derived) != 0 {
		return fmt.Errorf("%w: debt %s stores %s, history derives %s", ErrInvariant, d.ID, d.Amount, derived)
	}
	if d.PaidOff && !d.Amount.IsZero() {
		return fmt.Errorf("%w: debt %s marked paid off with balance %s", ErrInvariant, d.ID, d.Amount)
	}
	return nil
}
