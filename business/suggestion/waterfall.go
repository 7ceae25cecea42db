package suggestion

import (
	"fmt"
	"wasgeurtjeInsights/domain"
)

type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	if cfg.FreeShippingThreshold <= 0 {
		cfg.FreeShippingThreshold = defaultFreeShippingThreshold
	}
	if len(cfg.Heroes) == 0 {
		cfg = DefaultConfig()
	}
	return &Engine{cfg: cfg}
}

// SuggestProduct walks the hero-candidate waterfall. purchasedIDs is the
// caller's purchase history ordered most-recent-first; cartItems is the
// current cart; subtotal the current cart value. Pure function of its
// inputs, no I/O. Returns nil when nothing actionable remains: a product
// already in the cart is never suggested.
func (e *Engine) SuggestProduct(purchasedIDs []uint64, cartItems []domain.CartItem, subtotal float64) *domain.Suggestion {
	if subtotal < 0 {
		return nil
	}
	if subtotal >= e.cfg.FreeShippingThreshold {
		// nothing left to incentivize
		return nil
	}

	inCart := make(map[uint64]bool, len(cartItems))
	for _, it := range cartItems {
		inCart[it.ProductID] = true
	}

	purchased := make(map[uint64]bool, len(purchasedIDs))
	for _, id := range purchasedIDs {
		purchased[id] = true
	}

	hasHistory := len(purchasedIDs) > 0
	additional := e.cartContainsHero(inCart)

	for _, hero := range e.cfg.Heroes {
		if inCart[hero.ProductID] {
			continue
		}
		if hasHistory && purchased[hero.ProductID] {
			continue
		}

		return &domain.Suggestion{
			Product: hero,
			Message: heroMessage(hero, additional, hasHistory),
			Reason:  heroReason(additional, hasHistory),
		}
	}

	if hasHistory {
		return e.buyAgain(purchasedIDs, inCart)
	}

	return nil
}

// buyAgain falls back to the customer's most-recent distinct purchased
// product that is not currently in the cart.
func (e *Engine) buyAgain(purchasedIDs []uint64, inCart map[uint64]bool) *domain.Suggestion {
	seen := make(map[uint64]bool, len(purchasedIDs))
	for _, id := range purchasedIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		if inCart[id] {
			continue
		}

		product, ok := e.cfg.Catalog[id]
		if !ok {
			product = domain.SuggestedProduct{
				ProductID: id,
				Title:     "your previous order",
				Kind:      domain.ProductKindScent,
			}
		}

		var msg string
		if product.Kind == domain.ProductKindAccessory {
			msg = fmt.Sprintf("Running low on %s? Order it again in one click.", product.Title)
		} else {
			msg = fmt.Sprintf("Time to restock %s? Your last bottle is probably almost empty.", product.Title)
		}

		return &domain.Suggestion{
			Product: product,
			Message: msg,
			Reason:  domain.SuggestReasonBuyAgain,
		}
	}

	return nil
}

func (e *Engine) cartContainsHero(inCart map[uint64]bool) bool {
	for _, hero := range e.cfg.Heroes {
		if inCart[hero.ProductID] {
			return true
		}
	}
	return false
}

func heroMessage(hero domain.SuggestedProduct, additional, hasHistory bool) string {
	switch {
	case additional && hasHistory:
		return fmt.Sprintf("Customers who order like you also add %s. One more step to free shipping.", hero.Title)
	case additional:
		return fmt.Sprintf("Add %s as well and get closer to free shipping.", hero.Title)
	case hasHistory:
		return fmt.Sprintf("Something new for you: %s. You haven't tried this one yet.", hero.Title)
	default:
		return fmt.Sprintf("Complete your order with %s and get closer to free shipping.", hero.Title)
	}
}

func heroReason(additional, hasHistory bool) string {
	if additional {
		return domain.SuggestReasonHeroAdditional
	}
	if hasHistory {
		return domain.SuggestReasonHistoryHero
	}
	return domain.SuggestReasonHeroFirst
}
