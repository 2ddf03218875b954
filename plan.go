package main

import (
	"sort"

	"github.com/google/uuid"
)

// PlanMonth is one simulated month of a portfolio plan: interest accrued
// across all debts, what was paid where, and end-of-month balances.
type PlanMonth struct {
	MonthIndex int                  `json:"month"`
	Interest   Money                `json:"interest"`
	Payments   map[uuid.UUID]Money  `json:"payments"`
	Balances   map[uuid.UUID]Money  `json:"balances"`
	TotalPaid  Money                `json:"total_paid"`
}

type PortfolioPlan struct {
	Months        []PlanMonth `json:"months"`
	TotalInterest Money       `json:"total_interest"`
	PayoffMonths  int         `json:"payoff_months"`
}

// GeneratePortfolioPlan simulates paying a fixed monthly budget across the
// whole unpaid-debt set: accrue interest, cover every minimum payment, then
// direct whatever remains at the strategy's current target debt, rolling
// over to the next target within the same month as debts reach zero.
// Read-only over the input; bounded by maxMonths.
func GeneratePortfolioPlan(debts []Debt, monthlyBudget Money, strategy Strategy, maxMonths int) PortfolioPlan {
	active := make([]Debt, 0, len(debts))
	for _, d := range debts {
		if !d.PaidOff && d.Amount.IsPositive() {
			active = append(active, d)
		}
	}
	bal := map[uuid.UUID]Money{}
	for _, d := range active {
		bal[d.ID] = d.Amount
	}

	pickOrder := func() []Debt {
		cp := make([]Debt, 0, len(active))
		for _, d := range active {
			if bal[d.ID].IsPositive() {
				cp = append(cp, d)
			}
		}
		switch strategy {
		case Snowball:
			sort.SliceStable(cp, func(i, j int) bool {
				if c := bal[cp[i].ID].Cmp(bal[cp[j].ID]); c != 0 {
					return c < 0
				}
				return cp[i].aprOrZero().Cmp(cp[j].aprOrZero()) > 0
			})
		default: // Avalanche
			sort.SliceStable(cp, func(i, j int) bool {
				if c := cp[i].aprOrZero().Cmp(cp[j].aprOrZero()); c != 0 {
					return c > 0
				}
				return bal[cp[i].ID].Cmp(bal[cp[j].ID]) < 0
			})
		}
		return cp
	}

	var res PortfolioPlan
	for m := 1; m <= maxMonths; m++ {
		done := true
		for _, d := range active {
			if bal[d.ID].IsPositive() {
				done = false
				break
			}
		}
		if done {
			res.PayoffMonths = m - 1
			return res
		}

		month := PlanMonth{
			MonthIndex: m,
			Payments:   map[uuid.UUID]Money{},
			Balances:   map[uuid.UUID]Money{},
		}

		// 1) Accrue monthly interest on remaining balances.
		for _, d := range active {
			b := bal[d.ID]
			if !b.IsPositive() {
				continue
			}
			interest := b.ScaleByRate(monthlyRateOf(d.APR)).Round2()
			if interest.IsNegative() {
				continue
			}
			bal[d.ID] = b.Add(interest)
			month.Interest = month.Interest.Add(interest)
		}
		res.TotalInterest = res.TotalInterest.Add(month.Interest)

		// 2) Cover minimum payments.
		remaining := monthlyBudget
		for _, d := range active {
			if !bal[d.ID].IsPositive() {
				continue
			}
			minPay := d.MinPayment.Money
			if minPay.Cmp(remaining) > 0 {
				minPay = remaining
			}
			if minPay.Cmp(bal[d.ID]) > 0 {
				minPay = bal[d.ID]
			}
			if minPay.IsPositive() {
				bal[d.ID] = bal[d.ID].Sub(minPay)
				month.Payments[d.ID] = month.Payments[d.ID].Add(minPay)
				month.TotalPaid = month.TotalPaid.Add(minPay)
				remaining = remaining.Sub(minPay)
			}
		}

		// 3) Direct the remainder at the strategy target, rolling over as
		// debts are cleared within the month.
		for remaining.IsPositive() {
			order := pickOrder()
			if len(order) == 0 {
				break
			}
			t := order[0]
			pay := remaining
			if pay.Cmp(bal[t.ID]) > 0 {
				pay = bal[t.ID]
			}
			bal[t.ID] = bal[t.ID].Sub(pay)
			month.Payments[t.ID] = month.Payments[t.ID].Add(pay)
			month.TotalPaid = month.TotalPaid.Add(pay)
			remaining = remaining.Sub(pay)
		}

		for _, d := range active {
			month.Balances[d.ID] = bal[d.ID]
		}
		res.Months = append(res.Months, month)
	}

	res.PayoffMonths = maxMonths
	return res
}
