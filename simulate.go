package main

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// DefaultHorizonMonths bounds a projection at 50 years. The horizon is the
// engine's own termination guarantee; there is no caller-side timeout.
const DefaultHorizonMonths = 600

// payoffEpsilon absorbs sub-cent residue when deciding a balance is settled.
var payoffEpsilon = decimal.New(1, -2) // 0.01

type PayoffOutcome string

const (
	OutcomePayable     PayoffOutcome = "payable"
	OutcomeNotPayable  PayoffOutcome = "not_payable"
	OutcomeAlreadyPaid PayoffOutcome = "already_paid_off"
)

// AmortizationStep is one simulated month. Values are rounded to cents at
// the point they are recorded; the running balance stays at full precision.
type AmortizationStep struct {
	Month     int   `json:"month"`
	Payment   Money `json:"payment"`
	Interest  Money `json:"interest"`
	Principal Money `json:"principal"`
	Balance   Money `json:"balance"`
}

type PayoffProjection struct {
	Outcome        PayoffOutcome      `json:"outcome"`
	MonthsToPayoff int                `json:"months_to_payoff"`
	YearsToPayoff  float64            `json:"years_to_payoff"`
	TotalPaid      Money              `json:"total_paid"`
	TotalInterest  Money              `json:"total_interest"`
	Steps          []AmortizationStep `json:"steps"`
}

// monthlyRateOf converts an annual percentage rate (e.g. 12 for 12%) to the
// periodic monthly rate. A null rate is an interest-free debt.
func monthlyRateOf(apr decimal.NullDecimal) decimal.Decimal {
	if !apr.Valid {
		return decimal.Decimal{}
	}
	return apr.Decimal.Div(decimal.NewFromInt(1200))
}

// keepStep is the sampling policy for returned steps: every month for the
// first year, quarterly after that. All months are still simulated; this
// only bounds the response size.
func keepStep(month int) bool {
	return month <= 12 || month%3 == 0
}

// Project simulates paying monthly+additional against the debt each month
// until the balance is settled or horizonMonths is exhausted. It always
// terminates: a payment that fails to cover the month's interest accrual is
// classified not payable on the spot, since the balance would only grow.
func Project(d Debt, monthly, additional Money, horizonMonths int) (PayoffProjection, error) {
	if horizonMonths <= 0 {
		horizonMonths = DefaultHorizonMonths
	}
	total := monthly.Add(additional)
	if !total.IsPositive() {
		return PayoffProjection{}, fmt.Errorf("%w: total monthly payment must be positive, got %s", ErrInvalidAmount, total)
	}
	if d.Amount.IsZero() {
		return PayoffProjection{Outcome: OutcomeAlreadyPaid}, nil
	}

	rate := monthlyRateOf(d.APR)
	balance := d.Amount.Decimal()
	totalDec := total.Decimal()

	var steps []AmortizationStep
	months := 0
	settled := false

	for m := 1; m <= horizonMonths; m++ {
		interest := balance.Mul(rate)
		principal := totalDec.Sub(interest)
		if principal.Sign() <= 0 {
			// The payment cannot keep up with interest. Stop before the
			// balance starts growing without bound.
			return PayoffProjection{Outcome: OutcomeNotPayable, Steps: steps}, nil
		}
		if principal.Cmp(balance) > 0 {
			principal = balance
		}
		balance = balance.Sub(principal)
		months = m
		if keepStep(m) {
			steps = append(steps, AmortizationStep{
				Month:     m,
				Payment:   moneyFromDecimal(principal.Add(interest)).Round2(),
				Interest:  moneyFromDecimal(interest).Round2(),
				Principal: moneyFromDecimal(principal).Round2(),
				Balance:   moneyFromDecimal(balance).Round2(),
			})
		}
		if balance.Cmp(payoffEpsilon) <= 0 {
			settled = true
			break
		}
	}

	if !settled {
		return PayoffProjection{Outcome: OutcomeNotPayable, Steps: steps}, nil
	}

	totalPaid := total.ScaleByRate(decimal.NewFromInt(int64(months)))
	return PayoffProjection{
		Outcome:        OutcomePayable,
		MonthsToPayoff: months,
		YearsToPayoff:  math.Round(float64(months)/12.0*10) / 10,
		TotalPaid:      totalPaid.Round2(),
		TotalInterest:  totalPaid.Sub(d.Amount).Round2(),
		Steps:          steps,
	}, nil
}
