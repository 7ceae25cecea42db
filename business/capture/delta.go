package capture

import "wasgeurtjeInsights/domain"

type lineKey struct {
	productID uint64
	variant   string
}

// aggregateByKey folds duplicate lines for the same (product id, variant)
// into one, summing quantities, preserving first-seen order.
func aggregateByKey(items []domain.CartItem) ([]lineKey, map[lineKey]domain.CartItem) {
	order := make([]lineKey, 0, len(items))
	byKey := make(map[lineKey]domain.CartItem, len(items))
	for _, it := range items {
		key := lineKey{it.ProductID, it.Variant}
		if existing, ok := byKey[key]; ok {
			existing.Quantity += it.Quantity
			byKey[key] = existing
		} else {
			order = append(order, key)
			byKey[key] = it
		}
	}
	return order, byKey
}

// ComputeCartDelta diffs two cart snapshots into disjoint added/removed
// lists. Lines match on (product id, variant); duplicate lines on either
// side are aggregated before comparing. Each delta line carries only the
// changed quantity, never the resulting total, so downstream value events
// reflect incremental value instead of double-counting across repeated
// small additions.
func ComputeCartDelta(oldItems, newItems []domain.CartItem) domain.CartDelta {
	oldOrder, oldByKey := aggregateByKey(oldItems)
	newOrder, newByKey := aggregateByKey(newItems)

	var delta domain.CartDelta

	for _, key := range newOrder {
		it := newByKey[key]
		old, exists := oldByKey[key]
		switch {
		case !exists:
			delta.Added = append(delta.Added, it)
		case it.Quantity > old.Quantity:
			changed := it
			changed.Quantity = it.Quantity - old.Quantity
			delta.Added = append(delta.Added, changed)
		case it.Quantity < old.Quantity:
			changed := it
			changed.Quantity = old.Quantity - it.Quantity
			delta.Removed = append(delta.Removed, changed)
		}
	}

	for _, key := range oldOrder {
		if _, ok := newByKey[key]; !ok {
			delta.Removed = append(delta.Removed, oldByKey[key])
		}
	}

	return delta
}
