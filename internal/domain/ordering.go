package domain

import "fmt"

type OrderAssignment struct {
	ProductID    int64 `json:"productId"`
	DisplayOrder int   `json:"displayOrder"`
}

// OrderingPlan is a full, dense re-sequencing of the product catalog.
type OrderingPlan []OrderAssignment

// NewOrderingPlan assigns each id its 0-based position in ordered. ordered
// must be a permutation of known; partial or padded lists are rejected.
func NewOrderingPlan(known, ordered []int64) (OrderingPlan, error) {
	if len(ordered) != len(known) {
		return nil, NewValidationError("productIds", fmt.Sprintf("ordering must list all %d products, got %d", len(known), len(ordered)))
	}
	knownSet := make(map[int64]struct{}, len(known))
	for _, id := range known {
		knownSet[id] = struct{}{}
	}

	seen := make(map[int64]struct{}, len(ordered))
	plan := make(OrderingPlan, len(ordered))
	for i, id := range ordered {
		if _, ok := knownSet[id]; !ok {
			return nil, NewValidationError("productIds", fmt.Sprintf("unknown product %d", id))
		}
		if _, dup := seen[id]; dup {
			return nil, NewValidationError("productIds", fmt.Sprintf("product %d listed twice", id))
		}
		seen[id] = struct{}{}
		plan[i] = OrderAssignment{ProductID: id, DisplayOrder: i}
	}
	return plan, nil
}

// IDs returns the product ids in plan order.
func (p OrderingPlan) IDs() []int64 {
	ids := make([]int64, len(p))
	for i, a := range p {
		ids[i] = a.ProductID
	}
	return ids
}

// MoveID returns a copy of ids with the element at from moved to to, as a
// drag-and-drop gesture does.
func MoveID(ids []int64, from, to int) ([]int64, error) {
	if from < 0 || from >= len(ids) || to < 0 || to >= len(ids) {
		return nil, NewValidationError("move", fmt.Sprintf("move %d -> %d out of range [0,%d)", from, to, len(ids)))
	}
	out := make([]int64, 0, len(ids))
	moved := ids[from]
	for i, id := range ids {
		if i == from {
			continue
		}
		out = append(out, id)
	}
	out = append(out[:to], append([]int64{moved}, out[to:]...)...)
	return out, nil
}
