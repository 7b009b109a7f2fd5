package core

import (
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2026, 1, 1), true},
		{NewDate(2026, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDateISO(t *testing.T) {
	if got := NewDate(2026, 8, 5).ISO(); got != "2026-08-05" {
		t.Fatalf("ISO = %q", got)
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Paise: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Paise: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
	if err := (Money{Paise: -100}).Validate(); err == nil {
		t.Fatalf("expected error for negative")
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		Date:     NewDate(2026, 8, 1),
		Amount:   FromRupees(450),
		Category: "Travel",
		PaidBy:   "Megha",
		Note:     "450 uber Megha",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Expense{
		{Date: Date{}, Amount: FromRupees(1), Category: "c", PaidBy: "p"},
		{Date: NewDate(2026, 8, 1), Amount: Money{}, Category: "c", PaidBy: "p"},
		{Date: NewDate(2026, 8, 1), Amount: FromRupees(1), Category: "", PaidBy: "p"},
		{Date: NewDate(2026, 8, 1), Amount: FromRupees(1), Category: "c", PaidBy: "  "},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestBudgetValidate(t *testing.T) {
	if err := (Budget{Category: "Food", Monthly: FromRupees(5000)}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	// A zero budget is allowed, it just means "no allocation yet".
	if err := (Budget{Category: "Food"}).Validate(); err != nil {
		t.Fatalf("expected ok for zero budget, got %v", err)
	}
	if err := (Budget{Category: ""}).Validate(); err == nil {
		t.Fatalf("expected error for empty category")
	}
}
