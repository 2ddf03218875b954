package main

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

type paymentRequest struct {
	DebtID string `json:"debt_id"`
	Amount string `json:"amount"`
	PaidOn string `json:"paid_on"` // 2006-01-02
	Note   string `json:"note"`
}

func (a *App) handlePaymentAdd(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", 405)
		return
	}
	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", 400)
		return
	}
	debtID, err := uuid.Parse(req.DebtID)
	if err != nil {
		http.Error(w, "bad debt id", 400)
		return
	}
	paidOn, err := time.Parse("2006-01-02", req.PaidOn)
	if err != nil {
		http.Error(w, "bad date", 400)
		return
	}
	amount, err := ParseMoney(req.Amount)
	if err != nil {
		a.writeError(w, err)
		return
	}
	note := strings.TrimSpace(req.Note)

	payment, debt, err := a.ledger.AddPayment(r.Context(), debtID, getUserID(r), amount, paidOn, note)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, map[string]any{
		"payment": payment,
		"debt":    debt,
	})
}

func (a *App) handlePaymentDelete(w http.ResponseWriter, r *http.Request) {
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
	paymentID, err := uuid.Parse(req.ID)
	if err != nil {
		http.Error(w, "bad payment id", 400)
		return
	}
	debt, err := a.ledger.RemovePayment(r.Context(), paymentID, getUserID(r))
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]any{"debt": debt})
}

func (a *App) handlePayments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", 405)
		return
	}
	debtID, err := uuid.Parse(r.URL.Query().Get("debt_id"))
	if err != nil {
		http.Error(w, "bad debt id", 400)
		return
	}
	payments, err := a.ledger.ListPayments(r.Context(), debtID, getUserID(r))
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]any{"payments": payments})
}
