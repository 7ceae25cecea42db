package capture

import (
	"testing"
	"wasgeurtjeInsights/domain"
)

func line(id uint64, variant string, qty int) domain.CartItem {
	return domain.CartItem{ProductID: id, Variant: variant, Quantity: qty, Title: "p", Price: 12.95}
}

// applyDelta replays a delta on top of the old snapshot; the result must
// reconstruct the new snapshot exactly (reconciliation law).
func applyDelta(old []domain.CartItem, delta domain.CartDelta) map[lineKey]int {
	result := make(map[lineKey]int)
	for _, it := range old {
		result[lineKey{it.ProductID, it.Variant}] += it.Quantity
	}
	for _, it := range delta.Added {
		result[lineKey{it.ProductID, it.Variant}] += it.Quantity
	}
	for _, it := range delta.Removed {
		result[lineKey{it.ProductID, it.Variant}] -= it.Quantity
	}
	for k, q := range result {
		if q == 0 {
			delete(result, k)
		}
	}
	return result
}

func asQuantities(items []domain.CartItem) map[lineKey]int {
	out := make(map[lineKey]int)
	for _, it := range items {
		out[lineKey{it.ProductID, it.Variant}] += it.Quantity
	}
	return out
}

func sameQuantities(a, b map[lineKey]int) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

func TestComputeCartDelta(t *testing.T) {
	cases := []struct {
		name        string
		old, new    []domain.CartItem
		wantAdded   map[lineKey]int
		wantRemoved map[lineKey]int
	}{
		{
			name:      "empty to one line",
			old:       nil,
			new:       []domain.CartItem{line(1, "", 2)},
			wantAdded: map[lineKey]int{{1, ""}: 2},
		},
		{
			name:        "line removed entirely",
			old:         []domain.CartItem{line(1, "", 2)},
			new:         nil,
			wantRemoved: map[lineKey]int{{1, ""}: 2},
		},
		{
			name:      "quantity increase yields only the delta",
			old:       []domain.CartItem{line(1, "", 1)},
			new:       []domain.CartItem{line(1, "", 3)},
			wantAdded: map[lineKey]int{{1, ""}: 2},
		},
		{
			name:        "quantity decrease yields only the delta",
			old:         []domain.CartItem{line(1, "", 3)},
			new:         []domain.CartItem{line(1, "", 1)},
			wantRemoved: map[lineKey]int{{1, ""}: 2},
		},
		{
			name: "same variant different product",
			old:  []domain.CartItem{line(1, "100ml", 1)},
			new:  []domain.CartItem{line(1, "100ml", 1), line(2, "100ml", 1)},
			wantAdded: map[lineKey]int{
				{2, "100ml"}: 1,
			},
		},
		{
			name: "same product different variant is a separate line",
			old:  []domain.CartItem{line(1, "100ml", 1)},
			new:  []domain.CartItem{line(1, "250ml", 1)},
			wantAdded: map[lineKey]int{
				{1, "250ml"}: 1,
			},
			wantRemoved: map[lineKey]int{
				{1, "100ml"}: 1,
			},
		},
		{
			name: "no change",
			old:  []domain.CartItem{line(1, "", 2), line(2, "", 1)},
			new:  []domain.CartItem{line(1, "", 2), line(2, "", 1)},
		},
		{
			name: "duplicate new lines aggregate before diffing",
			old:  []domain.CartItem{line(1, "", 2)},
			new:  []domain.CartItem{line(1, "", 1), line(1, "", 1)},
		},
		{
			name:      "duplicate new lines with a net increase",
			old:       []domain.CartItem{line(1, "", 1)},
			new:       []domain.CartItem{line(1, "", 1), line(1, "", 2)},
			wantAdded: map[lineKey]int{{1, ""}: 2},
		},
		{
			name:        "duplicate old lines aggregate before diffing",
			old:         []domain.CartItem{line(1, "", 1), line(1, "", 1)},
			new:         []domain.CartItem{line(1, "", 1)},
			wantRemoved: map[lineKey]int{{1, ""}: 1},
		},
		{
			name: "mixed add remove and change",
			old:  []domain.CartItem{line(1, "", 2), line(2, "", 1)},
			new:  []domain.CartItem{line(1, "", 1), line(3, "", 4)},
			wantAdded: map[lineKey]int{
				{3, ""}: 4,
			},
			wantRemoved: map[lineKey]int{
				{1, ""}: 1,
				{2, ""}: 1,
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			delta := ComputeCartDelta(tc.old, tc.new)

			if tc.wantAdded == nil {
				tc.wantAdded = map[lineKey]int{}
			}
			if tc.wantRemoved == nil {
				tc.wantRemoved = map[lineKey]int{}
			}

			if !sameQuantities(asQuantities(delta.Added), tc.wantAdded) {
				t.Errorf("added = %v, want %v", asQuantities(delta.Added), tc.wantAdded)
			}
			if !sameQuantities(asQuantities(delta.Removed), tc.wantRemoved) {
				t.Errorf("removed = %v, want %v", asQuantities(delta.Removed), tc.wantRemoved)
			}

			// reconciliation law: old + delta == new
			if !sameQuantities(applyDelta(tc.old, delta), asQuantities(tc.new)) {
				t.Errorf("delta does not reconcile old into new: %v", delta)
			}
		})
	}
}

func TestComputeCartDelta_DisjointLists(t *testing.T) {
	old := []domain.CartItem{line(1, "", 2), line(2, "", 3)}
	new := []domain.CartItem{line(1, "", 5), line(3, "", 1)}

	delta := ComputeCartDelta(old, new)

	added := asQuantities(delta.Added)
	for k := range asQuantities(delta.Removed) {
		if _, ok := added[k]; ok {
			t.Errorf("line %v appears in both added and removed", k)
		}
	}
}
