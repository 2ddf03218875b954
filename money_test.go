package main

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestParseMoney(t *testing.T) {
	m, err := ParseMoney(" 1234.56 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.String() != "1234.56" {
		t.Errorf("expected 1234.56, got %s", m)
	}

	if _, err := ParseMoney("not-a-number"); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := ParseMoney(""); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount for empty input, got %v", err)
	}
}

func TestMoneyFromFloatRejectsNonFinite(t *testing.T) {
	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := MoneyFromFloat(f); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("expected ErrInvalidAmount for %v, got %v", f, err)
		}
	}
	if m, err := MoneyFromFloat(10.5); err != nil || m.String() != "10.50" {
		t.Errorf("expected 10.50, got %v (%v)", m, err)
	}
}

func TestMoneyRoundsHalfUp(t *testing.T) {
	cases := map[string]string{
		"1.005":  "1.01",
		"1.004":  "1.00",
		"2.675":  "2.68", // the classic float trap; exact decimal gets it right
		"0.999":  "1.00",
		"-1.005": "-1.01",
	}
	for in, want := range cases {
		m, err := ParseMoney(in)
		if err != nil {
			t.Fatalf("parse %s: %v", in, err)
		}
		if got := m.Round2().String(); got != want {
			t.Errorf("Round2(%s) = %s, want %s", in, got, want)
		}
	}
}

func TestMoneyArithmeticIsExact(t *testing.T) {
	// 0.1 + 0.2 == 0.3 exactly, which float64 famously cannot do.
	a, _ := ParseMoney("0.1")
	b, _ := ParseMoney("0.2")
	c, _ := ParseMoney("0.3")
	if a.Add(b).Cmp(c) != 0 {
		t.Errorf("0.1 + 0.2 = %s, want 0.30", a.Add(b))
	}

	// Repeated small debits never drift.
	balance, _ := ParseMoney("100.00")
	cent, _ := ParseMoney("0.01")
	for i := 0; i < 10000; i++ {
		balance = balance.Sub(cent)
	}
	if !balance.IsZero() {
		t.Errorf("expected exactly zero after 10000 cent debits, got %s", balance)
	}
}

func TestMoneyNegativeDetection(t *testing.T) {
	a, _ := ParseMoney("5.00")
	b, _ := ParseMoney("7.50")
	diff := a.Sub(b)
	if !diff.IsNegative() {
		t.Errorf("expected %s to be negative", diff)
	}
	if diff.String() != "-2.50" {
		t.Errorf("expected -2.50, got %s", diff)
	}
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	m, _ := ParseMoney("42.10")
	b, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"42.10"` {
		t.Errorf(`expected "42.10", got %s`, b)
	}
	var back Money
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Cmp(m) != 0 {
		t.Errorf("round trip changed value: %s != %s", back, m)
	}
}

func TestNullMoneyJSON(t *testing.T) {
	var n NullMoney
	b, _ := json.Marshal(n)
	if string(b) != "null" {
		t.Errorf("expected null, got %s", b)
	}
	m, _ := ParseMoney("15.00")
	b, _ = json.Marshal(NullMoney{Money: m, Valid: true})
	if string(b) != `"15.00"` {
		t.Errorf(`expected "15.00", got %s`, b)
	}
}
