package calculator

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxAmount bounds a single entry multiplier.
const MaxAmount = 1_000_000

// Recompute aggregates the material costs of every entry, multiplied by the
// entry's effective amount. It never mutates entries and returns a fresh
// Totals on every call.
func Recompute(entries []Entry) Totals {
	var totals Totals
	for _, entry := range entries {
		amount := entry.EffectiveAmount()
		for _, cost := range entry.Item.MaterialCosts {
			totals.add(cost.Material, cost.Quantity*amount)
		}
	}
	return totals
}

// ParseAmount converts user text into an entry multiplier. Non-numeric input
// and values above MaxAmount are rejected; values below 1 are clamped to 1.
func ParseAmount(raw string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	if value > MaxAmount {
		return 0, fmt.Errorf("%w: %d exceeds the maximum of %d", ErrInvalidAmount, value, MaxAmount)
	}
	if value < 1 {
		return 1, nil
	}
	return value, nil
}
