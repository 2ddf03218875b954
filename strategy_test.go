package main

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func strategyDebt(t *testing.T, creditor, amount, apr string) Debt {
	t.Helper()
	d := testDebt(t, amount, apr)
	d.ID = uuid.New()
	d.Creditor = creditor
	return d
}

func creditors(debts []Debt) []string {
	out := make([]string, len(debts))
	for i, d := range debts {
		out[i] = d.Creditor
	}
	return out
}

func assertOrder(t *testing.T, got []Debt, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d debts, want %d: %v", len(got), len(want), creditors(got))
	}
	for i := range want {
		if got[i].Creditor != want[i] {
			t.Fatalf("position %d = %s, want %s (full order %v)", i, got[i].Creditor, want[i], creditors(got))
		}
	}
}

func TestAvalancheOrdersByRateDescending(t *testing.T) {
	debts := []Debt{
		strategyDebt(t, "low-rate", "100.00", "5"),
		strategyDebt(t, "high-rate", "900.00", "22.9"),
		strategyDebt(t, "mid-rate", "400.00", "12"),
	}
	plan := PlanStrategies(debts)
	assertOrder(t, plan.Avalanche, []string{"high-rate", "mid-rate", "low-rate"})
}

func TestAvalancheTieBreaksOnSmallerBalance(t *testing.T) {
	debts := []Debt{
		strategyDebt(t, "big", "5000.00", "18"),
		strategyDebt(t, "small", "200.00", "18"),
	}
	plan := PlanStrategies(debts)
	assertOrder(t, plan.Avalanche, []string{"small", "big"})
}

func TestAvalancheSortsNullRatesLast(t *testing.T) {
	debts := []Debt{
		strategyDebt(t, "no-rate", "50.00", ""),
		strategyDebt(t, "rated", "9000.00", "3"),
	}
	plan := PlanStrategies(debts)
	assertOrder(t, plan.Avalanche, []string{"rated", "no-rate"})
}

func TestSnowballOrdersByBalanceAscending(t *testing.T) {
	debts := []Debt{
		strategyDebt(t, "medium", "400.00", "12"),
		strategyDebt(t, "tiny", "50.00", "5"),
		strategyDebt(t, "huge", "9000.00", "22"),
	}
	plan := PlanStrategies(debts)
	assertOrder(t, plan.Snowball, []string{"tiny", "medium", "huge"})
}

func TestSnowballTieBreaksOnHigherRate(t *testing.T) {
	debts := []Debt{
		strategyDebt(t, "cheap", "300.00", "4"),
		strategyDebt(t, "expensive", "300.00", "21"),
	}
	plan := PlanStrategies(debts)
	assertOrder(t, plan.Snowball, []string{"expensive", "cheap"})
}

func TestPlanExcludesPaidOffDebts(t *testing.T) {
	paid := strategyDebt(t, "done", "0.00", "10")
	paid.PaidOff = true
	debts := []Debt{
		paid,
		strategyDebt(t, "open", "100.00", "10"),
	}
	plan := PlanStrategies(debts)
	assertOrder(t, plan.Avalanche, []string{"open"})
	assertOrder(t, plan.Snowball, []string{"open"})
}

func TestPlanIsPureAndAPermutation(t *testing.T) {
	debts := []Debt{
		strategyDebt(t, "a", "300.00", "7"),
		strategyDebt(t, "b", "100.00", "19"),
		strategyDebt(t, "c", "700.00", "2"),
	}
	inputOrder := creditors(debts)
	plan := PlanStrategies(debts)

	// Input untouched.
	for i, c := range creditors(debts) {
		if c != inputOrder[i] {
			t.Fatalf("input mutated at %d: %s != %s", i, c, inputOrder[i])
		}
	}
	// Both outputs contain exactly the input set.
	for _, order := range [][]Debt{plan.Avalanche, plan.Snowball} {
		seen := map[uuid.UUID]bool{}
		for _, d := range order {
			seen[d.ID] = true
		}
		if len(seen) != len(debts) {
			t.Fatalf("expected a permutation of %d debts, got %v", len(debts), creditors(order))
		}
	}
}

func TestPlanStableOnFullTies(t *testing.T) {
	// Equal under both sort keys: input order must survive.
	rate := decimal.NullDecimal{Decimal: decimal.NewFromInt(10), Valid: true}
	a := strategyDebt(t, "first", "100.00", "")
	b := strategyDebt(t, "second", "100.00", "")
	a.APR = rate
	b.APR = rate
	plan := PlanStrategies([]Debt{a, b})
	assertOrder(t, plan.Avalanche, []string{"first", "second"})
	assertOrder(t, plan.Snowball, []string{"first", "second"})
}
