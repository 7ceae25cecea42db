package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Canonical event names shared by the capture layer and every destination.
const (
	EventViewItem       = "view_item"
	EventAddToCart      = "add_to_cart"
	EventRemoveFromCart = "remove_from_cart"
	EventBeginCheckout  = "begin_checkout"
	EventAddPaymentInfo = "add_payment_info"
	EventPurchase       = "purchase"
	EventIdentify       = "identify"
	EventEngagedSession = "engaged_session"
	EventOfferShown     = "offer_shown"
	EventCustom         = "custom"
)

// CREATE TABLE public.behavioral_events (
//     id                  UUID PRIMARY KEY,
//     session_id          TEXT NOT NULL,
//     customer_id         BIGINT,
//     customer_email      TEXT,
//     ip_hash             TEXT,
//     browser_fingerprint TEXT,
//     event_type          TEXT NOT NULL,
//     event_data          JSONB,
//     created_at          TIMESTAMPTZ DEFAULT NOW()
// );
// Append-only: rows are never updated or deleted.

type BehavioralEvent struct {
	ID                 string            `gorm:"column:id;primaryKey" json:"id"`
	SessionID          string            `gorm:"column:session_id;not null;index" json:"session_id"`
	CustomerID         *uint64           `gorm:"column:customer_id" json:"customer_id"`
	CustomerEmail      *string           `gorm:"column:customer_email" json:"customer_email"`
	IPHash             string            `gorm:"column:ip_hash" json:"ip_hash"`
	BrowserFingerprint *string           `gorm:"column:browser_fingerprint" json:"browser_fingerprint"`
	EventType          string            `gorm:"column:event_type;not null" json:"event_type"`
	EventData          datatypes.JSONMap `gorm:"column:event_data;type:jsonb" json:"event_data"`
	CreatedAt          time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (BehavioralEvent) TableName() string {
	return "behavioral_events"
}

// Item is the normalized line-item shape attached to cart/purchase events.
// The same representation works for every destination, including the feed
// compatibility fields some ad platforms match against.
type Item struct {
	ID       uint64  `json:"id"`
	Name     string  `json:"name"`
	Brand    string  `json:"brand"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Currency string  `json:"currency"`

	// feed compatibility
	ItemSKU        string `json:"item_sku"`
	StockStatus    string `json:"stock_status"`
	Classification string `json:"classification"`
}

// UserTraits carries raw identity fields known at dispatch time. The
// dispatcher hashes these before they reach any ad-platform payload; raw
// values never leave the boundary.
type UserTraits struct {
	Email      string
	Phone      string
	FirstName  string
	LastName   string
	City       string
	Country    string
	PostalCode string
}

// HashedTraits is the privacy-transformed counterpart of UserTraits.
type HashedTraits struct {
	Email      string `json:"em,omitempty"`
	Phone      string `json:"ph,omitempty"`
	FirstName  string `json:"fn,omitempty"`
	LastName   string `json:"ln,omitempty"`
	City       string `json:"ct,omitempty"`
	Country    string `json:"country,omitempty"`
	PostalCode string `json:"zp,omitempty"`
}

// TrackingEvent is the canonical, destination-agnostic domain event handed
// to the dispatcher. Value is derived from the items when left zero.
type TrackingEvent struct {
	Name       string
	SessionID  string
	Items      []Item
	Value      float64
	Currency   string
	Traits     UserTraits
	Hashed     HashedTraits
	Extra      map[string]any
	OccurredAt time.Time
}

// TotalValue returns the explicit value when set, otherwise the sum of
// unit price times quantity across the items.
func (e TrackingEvent) TotalValue() float64 {
	if e.Value != 0 {
		return e.Value
	}
	total := 0.0
	for _, it := range e.Items {
		total += it.Price * float64(it.Quantity)
	}
	return total
}
