package domain

// CartItem is one line of a session-scoped cart snapshot. Carts are never
// persisted; snapshots only exist to diff against the previous one.
type CartItem struct {
	ProductID uint64  `json:"product_id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Variant   string  `json:"variant"`
}

// CartDelta holds the incremental changes between two cart snapshots.
// Quantities are the changed amounts only, never the resulting line totals,
// so value-based events downstream reflect incremental value.
type CartDelta struct {
	Added   []CartItem
	Removed []CartItem
}

func (d CartDelta) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0
}

// Subtotal sums price*quantity over a cart snapshot.
func Subtotal(items []CartItem) float64 {
	total := 0.0
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
	}
	return total
}
