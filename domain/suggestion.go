package domain

// SuggestedProduct is one entry in the hero-candidate waterfall or the
// customer's own purchase history.
type SuggestedProduct struct {
	ProductID uint64  `json:"product_id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Category  string  `json:"category"`
	// Kind distinguishes a consumable accessory from a scent product for
	// message selection.
	Kind string `json:"kind"`
}

const (
	ProductKindAccessory = "accessory"
	ProductKindScent     = "scent"
)

// Suggestion is the outcome of the waterfall: the product to push next plus
// the message variant explaining why.
type Suggestion struct {
	Product SuggestedProduct `json:"product"`
	Message string           `json:"message"`
	Reason  string           `json:"reason"`
}

const (
	SuggestReasonHeroFirst      = "hero_first"
	SuggestReasonHeroAdditional = "hero_additional"
	SuggestReasonHistoryHero    = "hero_history"
	SuggestReasonBuyAgain       = "buy_again"
)
