package main

import (
	"context"

	"github.com/google/uuid"
)

// DebtFilter narrows and orders ListDebts. Zero value means all debts in the
// default order (open first, then creditor).
type DebtFilter struct {
	Search string // substring match on creditor
	Kind   string
	Status string // "", "open", "paid"
	Sort   string // creditor|balance|apr|min asc/desc, e.g. "balance_desc"
}

// Store is the record-store the ledger runs on. Every lookup is scoped by
// (id, ownerID) and fails closed with ErrNotFound when they disagree.
//
// AddPayment and RemovePayment must be atomic: the payment write and the
// debt rewrite are applied together or not at all, and concurrent mutations
// on the same debt are serialized (row-locked transaction in Postgres, a
// mutex in the in-memory store). Mutations on different debts may proceed
// in parallel.
type Store interface {
	CreateUser(ctx context.Context, email, passwordHash string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (User, error)

	CreateDebt(ctx context.Context, d Debt) (Debt, error)
	GetDebt(ctx context.Context, id, ownerID uuid.UUID) (Debt, error)
	ListDebts(ctx context.Context, ownerID uuid.UUID, f DebtFilter) ([]Debt, error)
	// UpdateDebtDetails rewrites descriptive fields only (creditor, kind,
	// APR, minimum payment, due date, notes). Amount and PaidOff are the
	// ledger's alone.
	UpdateDebtDetails(ctx context.Context, d Debt) error
	// DeleteDebt removes the debt and cascades to its payments.
	DeleteDebt(ctx context.Context, id, ownerID uuid.UUID) error

	GetPayment(ctx context.Context, id, ownerID uuid.UUID) (Payment, error)
	// ListPayments returns the debt's payments newest first.
	ListPayments(ctx context.Context, debtID, ownerID uuid.UUID) ([]Payment, error)

	// AddPayment inserts p and rewrites the parent debt per settleAfterAdd,
	// returning both sides of the settled state.
	AddPayment(ctx context.Context, ownerID uuid.UUID, p Payment) (Payment, Debt, error)
	// RemovePayment deletes the payment and rewrites the parent debt per
	// settleAfterRemove.
	RemovePayment(ctx context.Context, paymentID, ownerID uuid.UUID) (Debt, error)
}
