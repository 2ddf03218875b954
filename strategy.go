package main

import "sort"

type Strategy string

const (
	Snowball  Strategy = "snowball"  // smallest balance first
	Avalanche Strategy = "avalanche" // highest APR first
)

// StrategyPlan holds the same unpaid-debt set under both payoff orderings.
// Pure and recomputed per request; carries no state of its own.
type StrategyPlan struct {
	Avalanche []Debt `json:"avalanche"`
	Snowball  []Debt `json:"snowball"`
}

// PlanStrategies orders the unpaid debts by both heuristics. Avalanche:
// APR descending (null rates sort last as zero), ties broken by smaller
// balance first. Snowball: balance ascending, ties broken by higher APR
// first. Stable, so debts equal under both keys keep their input order.
func PlanStrategies(debts []Debt) StrategyPlan {
	unpaid := make([]Debt, 0, len(debts))
	for _, d := range debts {
		if !d.PaidOff {
			unpaid = append(unpaid, d)
		}
	}
	return StrategyPlan{
		Avalanche: orderBy(unpaid, Avalanche),
		Snowball:  orderBy(unpaid, Snowball),
	}
}

func orderBy(debts []Debt, s Strategy) []Debt {
	cp := append([]Debt(nil), debts...)
	switch s {
	case Snowball:
		sort.SliceStable(cp, func(i, j int) bool {
			if c := cp[i].Amount.Cmp(cp[j].Amount); c != 0 {
				return c < 0
			}
			return cp[i].aprOrZero().Cmp(cp[j].aprOrZero()) > 0
		})
	default: // Avalanche
		sort.SliceStable(cp, func(i, j int) bool {
			if c := cp[i].aprOrZero().Cmp(cp[j].aprOrZero()); c != 0 {
				return c > 0
			}
			return cp[i].Amount.Cmp(cp[j].Amount) < 0
		})
	}
	return cp
}
