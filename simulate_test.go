package main

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func testDebt(t *testing.T, amount, apr string) Debt {
	t.Helper()
	principal, err := ParseMoney(amount)
	if err != nil {
		t.Fatalf("parse %s: %v", amount, err)
	}
	d := Debt{Creditor: "Test Bank", Kind: "card", Principal: principal, Amount: principal}
	if apr != "" {
		rate, err := decimal.NewFromString(apr)
		if err != nil {
			t.Fatalf("parse apr %s: %v", apr, err)
		}
		d.APR = decimal.NullDecimal{Decimal: rate, Valid: true}
	}
	return d
}

func TestProjectWithInterest(t *testing.T) {
	// 1200 at 12% APR (periodic rate 0.01), 120/month. Interest pushes the
	// payoff past the 10 months a straight split would take.
	d := testDebt(t, "1200.00", "12")
	p, err := Project(d, mustMoney(t, "120"), Money{}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Outcome != OutcomePayable {
		t.Fatalf("outcome = %s, want payable", p.Outcome)
	}
	if p.MonthsToPayoff <= 10 {
		t.Errorf("months = %d, want > 10 (interest accrues)", p.MonthsToPayoff)
	}
	if p.MonthsToPayoff != 11 {
		t.Errorf("months = %d, want 11", p.MonthsToPayoff)
	}
	if p.TotalPaid.String() != "1320.00" {
		t.Errorf("total paid = %s, want 1320.00", p.TotalPaid)
	}
	if p.TotalInterest.String() != "120.00" {
		t.Errorf("total interest = %s, want 120.00", p.TotalInterest)
	}
}

func TestProjectNotPayableWhenInterestEatsPayment(t *testing.T) {
	// 500 at 24% APR accrues 10.00 the first month; a 10.00 payment leaves
	// nothing for principal, so the simulation stops after one evaluation.
	d := testDebt(t, "500.00", "24")
	p, err := Project(d, mustMoney(t, "10"), Money{}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Outcome != OutcomeNotPayable {
		t.Fatalf("outcome = %s, want not_payable", p.Outcome)
	}
	if len(p.Steps) != 0 {
		t.Errorf("expected no recorded steps, got %d", len(p.Steps))
	}
	if p.MonthsToPayoff != 0 {
		t.Errorf("months = %d, want 0", p.MonthsToPayoff)
	}
}

func TestProjectZeroRateIsLinear(t *testing.T) {
	// No APR: monthsToPayoff == ceil(balance / payment).
	cases := []struct {
		amount, payment string
		months          int
	}{
		{"1000.00", "300", 4},
		{"1200.00", "120", 10},
		{"100.00", "100", 1},
		{"100.50", "100", 2},
	}
	for _, tc := range cases {
		d := testDebt(t, tc.amount, "")
		p, err := Project(d, mustMoney(t, tc.payment), Money{}, 0)
		if err != nil {
			t.Fatalf("%s/%s: %v", tc.amount, tc.payment, err)
		}
		if p.Outcome != OutcomePayable {
			t.Errorf("%s/%s: outcome = %s, want payable", tc.amount, tc.payment, p.Outcome)
		}
		if p.MonthsToPayoff != tc.months {
			t.Errorf("%s/%s: months = %d, want %d", tc.amount, tc.payment, p.MonthsToPayoff, tc.months)
		}
	}
}

func TestProjectAdditionalPayment(t *testing.T) {
	d := testDebt(t, "1000.00", "")
	p, err := Project(d, mustMoney(t, "100"), mustMoney(t, "150"), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.MonthsToPayoff != 4 { // ceil(1000 / 250)
		t.Errorf("months = %d, want 4", p.MonthsToPayoff)
	}
}

func TestProjectAlreadyPaidOff(t *testing.T) {
	d := testDebt(t, "0.00", "12")
	p, err := Project(d, mustMoney(t, "100"), Money{}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Outcome != OutcomeAlreadyPaid {
		t.Errorf("outcome = %s, want already_paid_off", p.Outcome)
	}
	if p.MonthsToPayoff != 0 || len(p.Steps) != 0 {
		t.Errorf("expected zero months and no steps, got %d/%d", p.MonthsToPayoff, len(p.Steps))
	}
}

func TestProjectRejectsNonPositivePayment(t *testing.T) {
	d := testDebt(t, "1000.00", "12")
	if _, err := Project(d, Money{}, Money{}, 0); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("zero payment: expected ErrInvalidAmount, got %v", err)
	}
	neg := mustMoney(t, "-50")
	if _, err := Project(d, mustMoney(t, "30"), neg, 0); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("negative total: expected ErrInvalidAmount, got %v", err)
	}
}

func TestProjectHorizonExhaustion(t *testing.T) {
	// The payment covers interest (there is none) but cannot clear the
	// balance within the horizon.
	d := testDebt(t, "1000.00", "")
	p, err := Project(d, mustMoney(t, "0.01"), Money{}, 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Outcome != OutcomeNotPayable {
		t.Errorf("outcome = %s, want not_payable", p.Outcome)
	}
}

func TestProjectStepSampling(t *testing.T) {
	// 2000 at 0% with 100/month pays off in 20 months. Every month of the
	// first year is kept, then only quarters: 1..12, 15, 18.
	d := testDebt(t, "2000.00", "")
	p, err := Project(d, mustMoney(t, "100"), Money{}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.MonthsToPayoff != 20 {
		t.Fatalf("months = %d, want 20", p.MonthsToPayoff)
	}
	wantMonths := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 15, 18}
	if len(p.Steps) != len(wantMonths) {
		t.Fatalf("steps = %d, want %d", len(p.Steps), len(wantMonths))
	}
	for i, want := range wantMonths {
		if p.Steps[i].Month != want {
			t.Errorf("step %d month = %d, want %d", i, p.Steps[i].Month, want)
		}
	}
	// Sampling bounds the response, not the simulation: the balance at the
	// last retained step still has two months of paydown left.
	if p.Steps[len(p.Steps)-1].Balance.String() != "200.00" {
		t.Errorf("balance at month 18 = %s, want 200.00", p.Steps[len(p.Steps)-1].Balance)
	}
}

func TestProjectStepArithmetic(t *testing.T) {
	d := testDebt(t, "1200.00", "12")
	p, err := Project(d, mustMoney(t, "120"), Money{}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first := p.Steps[0]
	if first.Interest.String() != "12.00" {
		t.Errorf("first month interest = %s, want 12.00", first.Interest)
	}
	if first.Principal.String() != "108.00" {
		t.Errorf("first month principal = %s, want 108.00", first.Principal)
	}
	if first.Balance.String() != "1092.00" {
		t.Errorf("first month balance = %s, want 1092.00", first.Balance)
	}
	for _, s := range p.Steps {
		if s.Payment.Cmp(s.Interest.Add(s.Principal)) != 0 {
			t.Errorf("month %d: payment %s != interest %s + principal %s",
				s.Month, s.Payment, s.Interest, s.Principal)
		}
	}
}
