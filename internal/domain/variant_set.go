package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// VariantEntry is one editable row. Price stays a raw string so the editor
// can hold half-typed input; it is only parsed by Validate.
type VariantEntry struct {
	Denomination string `json:"amount"`
	Price        string `json:"price"`
}

func (e VariantEntry) blank() bool {
	return strings.TrimSpace(e.Denomination) == "" || strings.TrimSpace(e.Price) == ""
}

// VariantDraft is a validated row ready to be persisted.
type VariantDraft struct {
	Denomination string          `json:"amount"`
	Price        decimal.Decimal `json:"price"`
}

// VariantSet is the in-memory price variant editor of one product. It never
// holds fewer than one entry. Denominations are not required to be unique.
type VariantSet struct {
	entries []VariantEntry
}

// NewVariantSet seeds the editor from persisted rows, or with a single empty
// entry for a new product.
func NewVariantSet(persisted []PriceVariant) *VariantSet {
	s := &VariantSet{}
	for _, v := range persisted {
		s.entries = append(s.entries, VariantEntry{
			Denomination: v.Denomination,
			Price:        v.Price.StringFixed(2),
		})
	}
	if len(s.entries) == 0 {
		s.entries = []VariantEntry{{}}
	}
	return s
}

// NewVariantSetFromEntries builds an editor holding raw rows, e.g. from a
// create request.
func NewVariantSetFromEntries(entries []VariantEntry) *VariantSet {
	s := &VariantSet{entries: make([]VariantEntry, len(entries))}
	copy(s.entries, entries)
	if len(s.entries) == 0 {
		s.entries = []VariantEntry{{}}
	}
	return s
}

func (s *VariantSet) Len() int { return len(s.entries) }

// Entries returns a copy of the rows, including blank and invalid ones.
func (s *VariantSet) Entries() []VariantEntry {
	out := make([]VariantEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Add appends an empty entry.
func (s *VariantSet) Add() {
	s.entries = append(s.entries, VariantEntry{})
}

// Remove deletes the entry at index. It refuses, returning false, for the
// last remaining entry or an index out of range.
func (s *VariantSet) Remove(index int) bool {
	if len(s.entries) <= 1 || index < 0 || index >= len(s.entries) {
		return false
	}
	s.entries = append(s.entries[:index], s.entries[index+1:]...)
	return true
}

// Set overwrites the entry at index without validating it.
func (s *VariantSet) Set(index int, denomination, price string) error {
	if index < 0 || index >= len(s.entries) {
		return NewValidationError("index", fmt.Sprintf("variant index %d out of range [0,%d)", index, len(s.entries)))
	}
	s.entries[index] = VariantEntry{Denomination: denomination, Price: price}
	return nil
}

// Validate keeps the rows where both fields are filled and parses their
// prices. Input order is preserved.
func (s *VariantSet) Validate() ([]VariantDraft, error) {
	var drafts []VariantDraft
	for i, e := range s.entries {
		if e.blank() {
			continue
		}
		price, err := decimal.NewFromString(strings.TrimSpace(e.Price))
		if err != nil {
			return nil, NewValidationError(fmt.Sprintf("amounts[%d].price", i), fmt.Sprintf("%q is not a valid price", e.Price))
		}
		if price.IsNegative() {
			return nil, NewValidationError(fmt.Sprintf("amounts[%d].price", i), "price must not be negative")
		}
		drafts = append(drafts, VariantDraft{
			Denomination: strings.TrimSpace(e.Denomination),
			Price:        price,
		})
	}
	if len(drafts) == 0 {
		return nil, NewValidationError("amounts", "at least one valid price variant required")
	}
	return drafts, nil
}

// SameVariants reports whether drafts describe exactly the persisted rows,
// in order.
func SameVariants(persisted []PriceVariant, drafts []VariantDraft) bool {
	if len(persisted) != len(drafts) {
		return false
	}
	for i := range drafts {
		if persisted[i].Denomination != drafts[i].Denomination || !persisted[i].Price.Equal(drafts[i].Price) {
			return false
		}
	}
	return true
}
