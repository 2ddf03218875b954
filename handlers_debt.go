package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// debtRequest is the wire shape for create/update. Amounts and rates arrive
// as strings and are parsed into exact decimals before any arithmetic runs.
type debtRequest struct {
	ID         string  `json:"id,omitempty"`
	Creditor   string  `json:"creditor"`
	Kind       string  `json:"kind"`
	Amount     string  `json:"amount"`
	APR        *string `json:"apr"`
	MinPayment *string `json:"min_payment"`
	DueDate    *string `json:"due_date"` // 2006-01-02
	Notes      string  `json:"notes"`
}

func (req debtRequest) toDebt(ownerID uuid.UUID) (Debt, error) {
	d := Debt{
		OwnerID:  ownerID,
		Creditor: strings.TrimSpace(req.Creditor),
		Kind:     req.Kind,
		Notes:    strings.TrimSpace(req.Notes),
	}
	if d.Creditor == "" {
		return Debt{}, fmt.Errorf("creditor name is required")
	}
	if !validDebtKinds[d.Kind] {
		return Debt{}, fmt.Errorf("invalid debt kind %q", d.Kind)
	}
	amount, err := ParseMoney(req.Amount)
	if err != nil {
		return Debt{}, err
	}
	if amount.IsNegative() {
		return Debt{}, fmt.Errorf("%w: balance cannot be negative", ErrInvalidAmount)
	}
	d.Principal = amount
	d.Amount = amount
	if req.APR != nil && *req.APR != "" {
		rate, err := decimal.NewFromString(*req.APR)
		if err != nil || rate.IsNegative() {
			return Debt{}, fmt.Errorf("%w: bad interest rate %q", ErrInvalidAmount, *req.APR)
		}
		d.APR = decimal.NullDecimal{Decimal: rate, Valid: true}
	}
	if req.MinPayment != nil && *req.MinPayment != "" {
		min, err := ParseMoney(*req.MinPayment)
		if err != nil {
			return Debt{}, err
		}
		if min.IsNegative() {
			return Debt{}, fmt.Errorf("%w: minimum payment cannot be negative", ErrInvalidAmount)
		}
		d.MinPayment = NullMoney{Money: min, Valid: true}
	}
	if req.DueDate != nil && *req.DueDate != "" {
		due, err := time.Parse("2006-01-02", *req.DueDate)
		if err != nil {
			return Debt{}, fmt.Errorf("bad due date %q", *req.DueDate)
		}
		d.DueDate = &due
	}
	return d, nil
}

func (a *App) handleDebts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", 405)
		return
	}
	q := r.URL.Query()
	f := DebtFilter{
		Search: q.Get("search"),
		Kind:   q.Get("kind"),
		Status: q.Get("status"),
		Sort:   q.Get("sort"),
	}
	debts, err := a.store.ListDebts(r.Context(), getUserID(r), f)
	if err != nil {
		a.writeError(w, err)
		return
	}
	total := Money{}
	open := Money{}
	for _, d := range debts {
		total = total.Add(d.Amount)
		if !d.PaidOff {
			open = open.Add(d.Amount)
		}
	}
	a.writeJSON(w, http.StatusOK, map[string]any{
		"debts":        debts,
		"total":        total,
		"open_balance": open,
	})
}

func (a *App) handleDebtCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", 405)
		return
	}
	var req debtRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", 400)
		return
	}
	d, err := req.toDebt(getUserID(r))
	if err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	d, err = a.store.CreateDebt(r.Context(), d)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, d)
}

func (a *App) handleDebtView(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", 405)
		return
	}
	id, err := uuid.Parse(r.URL.Query().Get("id"))
	if err != nil {
		http.Error(w, "bad debt id", 400)
		return
	}
	userID := getUserID(r)
	debt, err := a.store.GetDebt(r.Context(), id, userID)
	if err != nil {
		a.writeError(w, err)
		return
	}
	payments, err := a.ledger.ListPayments(r.Context(), id, userID)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]any{
		"debt":     debt,
		"payments": payments,
	})
}

// handleDebtUpdate edits descriptive fields only. The balance and paid-off
// flag never move here; that is the ledger's job.
func (a *App) handleDebtUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", 405)
		return
	}
	var req debtRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", 400)
		return
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		http.Error(w, "bad debt id", 400)
		return
	}
	if req.Amount == "" {
		req.Amount = "0" // amount is ignored on update; keep the parser happy
	}
	d, err := req.toDebt(getUserID(r))
	if err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	d.ID = id
	if err := a.store.UpdateDebtDetails(r.Context(), d); err != nil {
		a.writeError(w, err)
		return
	}
	updated, err := a.store.GetDebt(r.Context(), id, getUserID(r))
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, updated)
}

func (a *App) handleDebtDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", 405)
		return
	}
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", 400)
		return
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		http.Error(w, "bad debt id", 400)
		return
	}
	ownerID := getUserID(r)
	if err := a.store.DeleteDebt(r.Context(), id, ownerID); err != nil {
		a.writeError(w, err)
		return
	}
	if a.cache != nil {
		a.cache.Invalidate(r.Context(), planCachePrefix(ownerID), projectionCachePrefix(id))
	}
	w.WriteHeader(http.StatusNoContent)
}
