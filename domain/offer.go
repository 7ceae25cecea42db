package domain

import (
	"time"

	"gorm.io/datatypes"
)

const (
	OfferStatusPending   = "pending"
	OfferStatusViewed    = "viewed"
	OfferStatusAccepted  = "accepted"
	OfferStatusCompleted = "completed"
	OfferStatusRejected  = "rejected"
	OfferStatusExpired   = "expired"
)

// BundleLine is one product line inside an offered bundle.
type BundleLine struct {
	ProductID uint64  `json:"product_id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// CREATE TABLE public.bundle_offers (
//     id               UUID PRIMARY KEY,
//     customer_id      BIGINT,
//     customer_email   TEXT NOT NULL,
//     bundle_products  JSONB NOT NULL,
//     total_quantity   INT,
//     base_price       NUMERIC,
//     discount_amount  NUMERIC,
//     final_price      NUMERIC,
//     bonus_points     INT,
//     trigger_reason   TEXT,
//     cart_snapshot    JSONB,
//     status           TEXT NOT NULL DEFAULT 'pending',
//     offered_at       TIMESTAMPTZ,
//     viewed_at        TIMESTAMPTZ,
//     responded_at     TIMESTAMPTZ,
//     expires_at       TIMESTAMPTZ,
//     conversion_value NUMERIC
// );

type BundleOffer struct {
	ID              string         `gorm:"column:id;primaryKey" json:"id"`
	CustomerID      *uint64        `gorm:"column:customer_id" json:"customer_id"`
	CustomerEmail   string         `gorm:"column:customer_email;not null;index" json:"customer_email"`
	BundleProducts  datatypes.JSON `gorm:"column:bundle_products;type:jsonb;not null" json:"bundle_products"`
	TotalQuantity   int            `gorm:"column:total_quantity" json:"total_quantity"`
	BasePrice       float64        `gorm:"column:base_price;type:numeric" json:"base_price"`
	DiscountAmount  float64        `gorm:"column:discount_amount;type:numeric" json:"discount_amount"`
	FinalPrice      float64        `gorm:"column:final_price;type:numeric" json:"final_price"`
	BonusPoints     int            `gorm:"column:bonus_points" json:"bonus_points"`
	TriggerReason   string         `gorm:"column:trigger_reason" json:"trigger_reason"`
	CartSnapshot    datatypes.JSON `gorm:"column:cart_snapshot;type:jsonb" json:"cart_snapshot"`
	Status          string         `gorm:"column:status;not null;default:pending" json:"status"`
	OfferedAt       time.Time      `gorm:"column:offered_at" json:"offered_at"`
	ViewedAt        *time.Time     `gorm:"column:viewed_at" json:"viewed_at"`
	RespondedAt     *time.Time     `gorm:"column:responded_at" json:"responded_at"`
	ExpiresAt       time.Time      `gorm:"column:expires_at" json:"expires_at"`
	ConversionValue *float64       `gorm:"column:conversion_value;type:numeric" json:"conversion_value"`
}

func (BundleOffer) TableName() string {
	return "bundle_offers"
}

// IsExpired reports whether the offer is past its deadline while still open.
// An overdue pending/viewed offer is logically expired even before any
// client event transitions it.
func (o BundleOffer) IsExpired(now time.Time) bool {
	if o.Status != OfferStatusPending && o.Status != OfferStatusViewed {
		return false
	}
	return now.After(o.ExpiresAt)
}

// EffectiveStatus is the status a read path should report, folding in
// read-time expiry.
func (o BundleOffer) EffectiveStatus(now time.Time) string {
	if o.IsExpired(now) {
		return OfferStatusExpired
	}
	return o.Status
}

// CanTransition enforces the one-directional offer state machine:
// pending -> viewed -> {accepted -> completed | rejected}. A pending offer
// also accepts accepted/rejected directly, for clients that never send the
// viewed ping. Terminal states (completed, rejected, expired) accept
// nothing.
func (o BundleOffer) CanTransition(to string) bool {
	switch o.Status {
	case OfferStatusPending:
		return to == OfferStatusViewed || to == OfferStatusAccepted ||
			to == OfferStatusRejected || to == OfferStatusExpired
	case OfferStatusViewed:
		return to == OfferStatusAccepted || to == OfferStatusRejected || to == OfferStatusExpired
	case OfferStatusAccepted:
		return to == OfferStatusCompleted
	default:
		return false
	}
}
