package main

import (
	"testing"
)

func planDebt(t *testing.T, creditor, amount, apr, minPayment string) Debt {
	t.Helper()
	d := strategyDebt(t, creditor, amount, apr)
	if minPayment != "" {
		d.MinPayment = NullMoney{Money: mustMoney(t, minPayment), Valid: true}
	}
	return d
}

func TestPortfolioPlanClearsDebtsWithinBudget(t *testing.T) {
	// Two interest-free debts, budget covers minimums plus enough extra to
	// clear both in the first month.
	debts := []Debt{
		planDebt(t, "a", "100.00", "", "10.00"),
		planDebt(t, "b", "100.00", "", "10.00"),
	}
	res := GeneratePortfolioPlan(debts, mustMoney(t, "220.00"), Avalanche, 240)

	if len(res.Months) != 1 {
		t.Fatalf("expected 1 simulated month, got %d", len(res.Months))
	}
	if res.PayoffMonths != 1 {
		t.Errorf("payoff months = %d, want 1", res.PayoffMonths)
	}
	if !res.TotalInterest.IsZero() {
		t.Errorf("total interest = %s, want 0.00", res.TotalInterest)
	}
	month := res.Months[0]
	if month.TotalPaid.String() != "200.00" {
		t.Errorf("total paid = %s, want 200.00 (the rest of the budget is unused)", month.TotalPaid)
	}
	for _, d := range debts {
		if bal := month.Balances[d.ID]; !bal.IsZero() {
			t.Errorf("%s balance = %s, want 0.00", d.Creditor, bal)
		}
	}
}

func TestPortfolioPlanTargetsHighestRateFirst(t *testing.T) {
	debts := []Debt{
		planDebt(t, "cheap", "500.00", "5", "25.00"),
		planDebt(t, "expensive", "500.00", "20", "25.00"),
	}
	res := GeneratePortfolioPlan(debts, mustMoney(t, "150.00"), Avalanche, 240)
	if len(res.Months) == 0 {
		t.Fatal("expected at least one month")
	}
	month := res.Months[0]

	// Both minimums are covered; the 100.00 remainder lands on the 20% debt.
	cheapPaid := month.Payments[debts[0].ID]
	expensivePaid := month.Payments[debts[1].ID]
	if cheapPaid.String() != "25.00" {
		t.Errorf("cheap debt paid %s, want the 25.00 minimum only", cheapPaid)
	}
	if expensivePaid.String() != "125.00" {
		t.Errorf("expensive debt paid %s, want 125.00 (minimum + remainder)", expensivePaid)
	}
}

func TestPortfolioPlanSnowballTargetsSmallestBalance(t *testing.T) {
	debts := []Debt{
		planDebt(t, "large", "900.00", "20", ""),
		planDebt(t, "small", "90.00", "5", ""),
	}
	res := GeneratePortfolioPlan(debts, mustMoney(t, "100.00"), Snowball, 240)
	month := res.Months[0]

	smallPaid := month.Payments[debts[1].ID]
	// Interest first: 90 * (5/1200) = 0.38, so the small debt needs 90.38
	// to clear. The whole 100 budget goes at it first.
	if smallPaid.String() != "90.38" {
		t.Errorf("small debt paid %s, want 90.38 (cleared in full)", smallPaid)
	}
	if bal := month.Balances[debts[1].ID]; !bal.IsZero() {
		t.Errorf("small debt balance = %s, want 0.00", bal)
	}
	largePaid := month.Payments[debts[0].ID]
	if largePaid.String() != "9.62" {
		t.Errorf("large debt got %s of the remainder, want 9.62", largePaid)
	}
}

func TestPortfolioPlanAccruesInterest(t *testing.T) {
	debts := []Debt{planDebt(t, "card", "1000.00", "12", "")}
	res := GeneratePortfolioPlan(debts, mustMoney(t, "100.00"), Avalanche, 240)
	month := res.Months[0]
	if month.Interest.String() != "10.00" { // 1000 * 1%
		t.Errorf("first month interest = %s, want 10.00", month.Interest)
	}
	if bal := month.Balances[debts[0].ID]; bal.String() != "910.00" {
		t.Errorf("first month balance = %s, want 910.00", bal)
	}
}

func TestPortfolioPlanHitsHorizonWhenBudgetTooSmall(t *testing.T) {
	// 1.00/month against 12% APR on 1000: interest outruns the budget and
	// the balance grows until the horizon cuts the simulation off.
	debts := []Debt{planDebt(t, "card", "1000.00", "12", "")}
	res := GeneratePortfolioPlan(debts, mustMoney(t, "1.00"), Avalanche, 24)
	if res.PayoffMonths != 24 {
		t.Errorf("payoff months = %d, want the 24-month horizon", res.PayoffMonths)
	}
	last := res.Months[len(res.Months)-1]
	if bal := last.Balances[debts[0].ID]; bal.Cmp(mustMoney(t, "1000.00")) <= 0 {
		t.Errorf("balance should have grown past the principal, got %s", bal)
	}
}

func TestPortfolioPlanSkipsPaidOffDebts(t *testing.T) {
	paid := planDebt(t, "done", "0.00", "10", "")
	paid.PaidOff = true
	debts := []Debt{paid, planDebt(t, "open", "50.00", "", "")}
	res := GeneratePortfolioPlan(debts, mustMoney(t, "50.00"), Avalanche, 240)
	if res.PayoffMonths != 1 {
		t.Fatalf("payoff months = %d, want 1", res.PayoffMonths)
	}
	if _, ok := res.Months[0].Balances[paid.ID]; ok {
		t.Error("paid-off debt should not appear in the plan")
	}
}
