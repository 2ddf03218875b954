package main

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Debt kinds. Free-form strings in storage, validated at the boundary.
var validDebtKinds = map[string]bool{
	"card":           true,
	"line_of_credit": true,
	"personal_loan":  true,
	"auto_loan":      true,
	"student_loan":   true,
	"mortgage":       true,
	"other":          true,
}

// Debt is a single owed balance, owned by exactly one user. Principal is the
// original amount at creation and never changes; Amount is the current
// outstanding balance and is only ever rewritten together with PaidOff by a
// ledger mutation, so that Amount == clamp(Principal - sum(payments), 0) and
// PaidOff == Amount.IsZero() hold after every operation.
type Debt struct {
	ID         uuid.UUID           `json:"id"`
	OwnerID    uuid.UUID           `json:"-"`
	Creditor   string              `json:"creditor"`
	Kind       string              `json:"kind"`
	Principal  Money               `json:"principal"`
	Amount     Money               `json:"amount"`
	APR        decimal.NullDecimal `json:"apr"` // annual percentage rate, null = no interest
	MinPayment NullMoney           `json:"min_payment"`
	DueDate    *time.Time          `json:"due_date,omitempty"`
	PaidOff    bool                `json:"paid_off"`
	Notes      string              `json:"notes"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// aprOrZero treats a null rate as zero for sorting and simulation.
func (d Debt) aprOrZero() decimal.Decimal {
	if d.APR.Valid {
		return d.APR.Decimal
	}
	return decimal.Decimal{}
}

// Payment belongs to exactly one debt; its lifetime is bounded by the parent
// (deleting the debt cascades). Amount is strictly positive.
type Payment struct {
	ID        uuid.UUID `json:"id"`
	DebtID    uuid.UUID `json:"debt_id"`
	PaidOn    time.Time `json:"paid_on"`
	Amount    Money     `json:"amount"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}
