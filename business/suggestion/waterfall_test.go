package suggestion

import (
	"testing"
	"wasgeurtjeInsights/domain"
)

func testEngine() *Engine {
	return NewEngine(DefaultConfig())
}

func allHeroIDs(cfg Config) []uint64 {
	ids := make([]uint64, 0, len(cfg.Heroes))
	for _, h := range cfg.Heroes {
		ids = append(ids, h.ProductID)
	}
	return ids
}

func cartWith(ids ...uint64) []domain.CartItem {
	items := make([]domain.CartItem, 0, len(ids))
	for _, id := range ids {
		items = append(items, domain.CartItem{ProductID: id, Quantity: 1, Price: 10})
	}
	return items
}

func TestSuggestProduct_FreeShippingReached(t *testing.T) {
	e := testEngine()
	if got := e.SuggestProduct(nil, nil, 40.0); got != nil {
		t.Errorf("expected no suggestion at threshold, got %+v", got)
	}
	if got := e.SuggestProduct(nil, nil, 99.0); got != nil {
		t.Errorf("expected no suggestion above threshold, got %+v", got)
	}
}

func TestSuggestProduct_NegativeSubtotal(t *testing.T) {
	e := testEngine()
	if got := e.SuggestProduct(nil, nil, -1); got != nil {
		t.Errorf("negative subtotal must yield no suggestion, got %+v", got)
	}
}

func TestSuggestProduct_EmptyEverything(t *testing.T) {
	e := testEngine()
	got := e.SuggestProduct([]uint64{}, []domain.CartItem{}, 10)

	if got == nil {
		t.Fatal("expected a suggestion")
	}
	if got.Product.ProductID != DefaultConfig().Heroes[0].ProductID {
		t.Errorf("expected first hero candidate, got %d", got.Product.ProductID)
	}
	if got.Reason != domain.SuggestReasonHeroFirst {
		t.Errorf("expected generic/first reason, got %s", got.Reason)
	}
}

func TestSuggestProduct_NeverSuggestsInCartProduct(t *testing.T) {
	cfg := DefaultConfig()
	e := testEngine()

	cases := []struct {
		name      string
		purchased []uint64
		cart      []domain.CartItem
	}{
		{"first hero in cart", nil, cartWith(cfg.Heroes[0].ProductID)},
		{"two heroes in cart", nil, cartWith(cfg.Heroes[0].ProductID, cfg.Heroes[1].ProductID)},
		{"history plus cart", allHeroIDs(cfg), cartWith(cfg.Heroes[2].ProductID)},
		{"everything in cart", allHeroIDs(cfg), cartWith(allHeroIDs(cfg)...)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := e.SuggestProduct(tc.purchased, tc.cart, 5)
			if got == nil {
				return
			}
			for _, it := range tc.cart {
				if got.Product.ProductID == it.ProductID {
					t.Errorf("suggested product %d is already in the cart", it.ProductID)
				}
			}
		})
	}
}

func TestSuggestProduct_SkipsPurchasedHero(t *testing.T) {
	cfg := DefaultConfig()
	e := testEngine()

	got := e.SuggestProduct([]uint64{cfg.Heroes[0].ProductID}, nil, 10)
	if got == nil {
		t.Fatal("expected a suggestion")
	}
	if got.Product.ProductID != cfg.Heroes[1].ProductID {
		t.Errorf("expected second hero, got %d", got.Product.ProductID)
	}
	if got.Reason != domain.SuggestReasonHistoryHero {
		t.Errorf("expected history-informed reason, got %s", got.Reason)
	}
}

func TestSuggestProduct_AdditionalVariantWhenHeroInCart(t *testing.T) {
	cfg := DefaultConfig()
	e := testEngine()

	got := e.SuggestProduct(nil, cartWith(cfg.Heroes[0].ProductID), 10)
	if got == nil {
		t.Fatal("expected a suggestion")
	}
	if got.Reason != domain.SuggestReasonHeroAdditional {
		t.Errorf("expected additional reason, got %s", got.Reason)
	}
}

func TestSuggestProduct_BuyAgainFallback(t *testing.T) {
	cfg := DefaultConfig()
	e := testEngine()

	// All heroes already purchased, empty cart: fall back to the most
	// recent purchased product.
	purchased := allHeroIDs(cfg)
	got := e.SuggestProduct(purchased, nil, 5)

	if got == nil {
		t.Fatal("expected buy-again suggestion")
	}
	if got.Reason != domain.SuggestReasonBuyAgain {
		t.Errorf("expected buy-again reason, got %s", got.Reason)
	}
	if got.Product.ProductID != purchased[0] {
		t.Errorf("expected most-recent purchased product %d, got %d", purchased[0], got.Product.ProductID)
	}
}

func TestSuggestProduct_BuyAgainSkipsCart(t *testing.T) {
	cfg := DefaultConfig()
	e := testEngine()

	purchased := allHeroIDs(cfg)
	got := e.SuggestProduct(purchased, cartWith(purchased[0]), 5)

	if got == nil {
		t.Fatal("expected buy-again suggestion")
	}
	if got.Product.ProductID != purchased[1] {
		t.Errorf("expected next distinct purchased product %d, got %d", purchased[1], got.Product.ProductID)
	}
}

func TestSuggestProduct_NothingActionable(t *testing.T) {
	cfg := DefaultConfig()
	e := testEngine()

	// Everything purchased and everything in the cart.
	got := e.SuggestProduct(allHeroIDs(cfg), cartWith(allHeroIDs(cfg)...), 5)
	if got != nil {
		t.Errorf("expected no suggestion, got %+v", got)
	}

	// No history and all heroes in the cart.
	got = e.SuggestProduct(nil, cartWith(allHeroIDs(cfg)...), 5)
	if got != nil {
		t.Errorf("expected no suggestion, got %+v", got)
	}
}

func TestSuggestProduct_BuyAgainMessageByKind(t *testing.T) {
	cfg := DefaultConfig()
	e := testEngine()

	var accessoryID uint64
	for _, h := range cfg.Heroes {
		if h.Kind == domain.ProductKindAccessory {
			accessoryID = h.ProductID
		}
	}
	if accessoryID == 0 {
		t.Skip("no accessory hero configured")
	}

	purchased := append([]uint64{accessoryID}, allHeroIDs(cfg)...)
	got := e.SuggestProduct(purchased, nil, 5)
	if got == nil {
		t.Fatal("expected suggestion")
	}
	if got.Product.Kind != domain.ProductKindAccessory {
		t.Errorf("expected accessory product, got kind %s", got.Product.Kind)
	}
}
