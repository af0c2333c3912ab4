package calculator

import (
	"fmt"

	"github.com/eugenenazirov/outpost-calculator/internal/catalog"
)

// Resolver finds catalog items by id.
type Resolver interface {
	Lookup(id string) (catalog.Item, bool)
}

// Selection is an ordered list of selected items, unique by item id, with
// totals recomputed from scratch after every change. It is not safe for
// concurrent use; callers serialise access.
type Selection struct {
	resolver Resolver
	entries  []Entry
	totals   Totals
}

// NewSelection creates an empty selection backed by resolver.
func NewSelection(resolver Resolver) *Selection {
	return &Selection{resolver: resolver}
}

// AddOrReplace appends a fresh entry with amount 1 for itemID. An existing
// entry for the same id is dropped first, discarding its amount. Unknown ids
// leave the selection untouched and report false.
func (s *Selection) AddOrReplace(itemID string) bool {
	item, ok := s.resolver.Lookup(itemID)
	if !ok {
		return false
	}

	if idx := s.IndexOf(itemID); idx >= 0 {
		s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
	}
	s.entries = append(s.entries, Entry{Item: item, Amount: 1})
	s.recompute()
	return true
}

// SetAmount parses raw and stores it as the amount of the entry at index.
func (s *Selection) SetAmount(index int, raw string) error {
	if !s.inRange(index) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	amount, err := ParseAmount(raw)
	if err != nil {
		return err
	}

	s.entries[index].Amount = amount
	s.recompute()
	return nil
}

// Remove drops the entry at index, keeping the relative order of the rest.
func (s *Selection) Remove(index int) error {
	if !s.inRange(index) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}

	s.entries = append(s.entries[:index], s.entries[index+1:]...)
	s.recompute()
	return nil
}

// IndexOf returns the position of itemID in the selection, or -1.
func (s *Selection) IndexOf(itemID string) int {
	for i, entry := range s.entries {
		if entry.Item.ID == itemID {
			return i
		}
	}
	return -1
}

// SetAmountByID is SetAmount addressed by item id.
func (s *Selection) SetAmountByID(itemID, raw string) error {
	idx := s.IndexOf(itemID)
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrItemNotSelected, itemID)
	}
	return s.SetAmount(idx, raw)
}

// RemoveByID is Remove addressed by item id.
func (s *Selection) RemoveByID(itemID string) error {
	idx := s.IndexOf(itemID)
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrItemNotSelected, itemID)
	}
	return s.Remove(idx)
}

// Entries returns a copy of the selected entries in order.
func (s *Selection) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	for i, entry := range s.entries {
		out[i] = Entry{Item: entry.Item.Clone(), Amount: entry.Amount}
	}
	return out
}

// Len reports the number of selected entries.
func (s *Selection) Len() int {
	return len(s.entries)
}

// Totals returns the aggregate totals of the current selection.
func (s *Selection) Totals() Totals {
	return s.totals
}

func (s *Selection) inRange(index int) bool {
	return index >= 0 && index < len(s.entries)
}

func (s *Selection) recompute() {
	s.totals = Recompute(s.entries)
}
