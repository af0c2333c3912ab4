package calculator

import (
	"encoding/json"

	"github.com/eugenenazirov/outpost-calculator/internal/catalog"
)

// Entry is one selected catalog item together with its multiplier.
// An Amount of zero means the amount was never specified and counts as 1.
type Entry struct {
	Item   catalog.Item
	Amount int
}

// EffectiveAmount returns the multiplier used when aggregating the entry.
func (e Entry) EffectiveAmount() int {
	if e.Amount == 0 {
		return 1
	}
	return e.Amount
}

// MaterialTotal is one row of the aggregate totals.
type MaterialTotal struct {
	Material string `json:"material"`
	Quantity int    `json:"quantity"`
}

// Totals maps material names to total required quantities and remembers the
// order in which materials were first seen, so listings are deterministic.
type Totals struct {
	order  []string
	values map[string]int
}

func (t *Totals) add(material string, quantity int) {
	if t.values == nil {
		t.values = make(map[string]int)
	}
	if _, ok := t.values[material]; !ok {
		t.order = append(t.order, material)
	}
	t.values[material] += quantity
}

// Get returns the total for material and whether it is present.
func (t Totals) Get(material string) (int, bool) {
	v, ok := t.values[material]
	return v, ok
}

// Len reports the number of distinct materials.
func (t Totals) Len() int {
	return len(t.order)
}

// Lines returns the totals in first-seen material order.
func (t Totals) Lines() []MaterialTotal {
	out := make([]MaterialTotal, 0, len(t.order))
	for _, material := range t.order {
		out = append(out, MaterialTotal{Material: material, Quantity: t.values[material]})
	}
	return out
}

// Map returns a copy of the totals as a plain map.
func (t Totals) Map() map[string]int {
	out := make(map[string]int, len(t.values))
	for k, v := range t.values {
		out[k] = v
	}
	return out
}

// Merge returns the material-wise sum of t and other. Materials of t keep
// their order; materials only present in other follow in their own order.
func (t Totals) Merge(other Totals) Totals {
	var out Totals
	for _, line := range t.Lines() {
		out.add(line.Material, line.Quantity)
	}
	for _, line := range other.Lines() {
		out.add(line.Material, line.Quantity)
	}
	return out
}

// Equal reports whether both totals hold the same quantities, ignoring order.
func (t Totals) Equal(other Totals) bool {
	if t.Len() != other.Len() {
		return false
	}
	for material, v := range t.values {
		if ov, ok := other.values[material]; !ok || ov != v {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the totals as an ordered list of material rows.
func (t Totals) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Lines())
}
