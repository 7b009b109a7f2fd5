// Package core holds the domain types shared by the quick-entry flow,
// the ledger store and the dashboard aggregation.
package core

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// FromRupees converts a whole-rupee amount to Money.
func FromRupees(r int64) Money {
	return Money{Paise: r * 100}
}

// Rupees returns the rupee value as a float64 for display purposes.
// Use paise for arithmetic to avoid floating-point drift.
func (m Money) Rupees() float64 {
	return float64(m.Paise) / 100.0
}

// String renders the amount the way the UI shows it, e.g. "₹450".
func (m Money) String() string {
	if m.Paise%100 == 0 {
		return fmt.Sprintf("₹%d", m.Paise/100)
	}
	return fmt.Sprintf("₹%.2f", m.Rupees())
}

// ParseDecimalToPaise converts a decimal string to paise with half-up
// rounding on the third decimal place. Accepts both dot and comma decimal
// separators. Only positive amounts are valid.
func ParseDecimalToPaise(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	var fracPaise int64
	if len(fracPart) > 0 {
		d1 := int64(fracPart[0] - '0')
		fracPaise = d1 * 10
		if len(fracPart) > 1 {
			d2 := int64(fracPart[1] - '0')
			fracPaise += d2
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracPaise++
			}
		}
	}
	paise := iv*100 + fracPaise
	if paise <= 0 {
		return 0, ErrInvalidAmount
	}
	return paise, nil
}
