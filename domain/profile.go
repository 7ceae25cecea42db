package domain

import (
	"time"

	"gorm.io/datatypes"
)

// CREATE TABLE public.customer_profiles (
//     id                      BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     customer_id             BIGINT,
//     email                   TEXT UNIQUE NOT NULL,
//     ip_hash                 TEXT,
//     browser_fingerprint     TEXT,
//     geo_country             TEXT,
//     geo_city                TEXT,
//     favorite_products       JSONB,
//     peak_spending_quantity  INT,
//     peak_spending_amount    NUMERIC,
//     avg_order_value         NUMERIC,
//     total_orders            INT,
//     last_order_date         TIMESTAMPTZ,
//     days_since_last_order   INT,
//     purchase_cycle_days     NUMERIC,
//     next_prime_window_start TIMESTAMPTZ,
//     next_prime_window_end   TIMESTAMPTZ,
//     profile_score           NUMERIC,
//     last_recalculated       TIMESTAMPTZ,
//     created_at              TIMESTAMPTZ DEFAULT NOW(),
//     updated_at              TIMESTAMPTZ DEFAULT NOW()
// );

type CustomerProfile struct {
	ID                   uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerID           *uint64        `gorm:"column:customer_id" json:"customer_id"`
	Email                string         `gorm:"column:email;unique;not null" json:"email"`
	IPHash               string         `gorm:"column:ip_hash" json:"ip_hash"`
	BrowserFingerprint   *string        `gorm:"column:browser_fingerprint" json:"browser_fingerprint"`
	GeoCountry           string         `gorm:"column:geo_country" json:"geo_country"`
	GeoCity              string         `gorm:"column:geo_city" json:"geo_city"`
	FavoriteProducts     datatypes.JSON `gorm:"column:favorite_products;type:jsonb" json:"favorite_products"`
	PeakSpendingQuantity int            `gorm:"column:peak_spending_quantity;default:0" json:"peak_spending_quantity"`
	PeakSpendingAmount   float64        `gorm:"column:peak_spending_amount;type:numeric;default:0" json:"peak_spending_amount"`
	AvgOrderValue        float64        `gorm:"column:avg_order_value;type:numeric;default:0" json:"avg_order_value"`
	TotalOrders          int            `gorm:"column:total_orders;default:0" json:"total_orders"`
	LastOrderDate        *time.Time     `gorm:"column:last_order_date" json:"last_order_date"`
	DaysSinceLastOrder   int            `gorm:"column:days_since_last_order;default:0" json:"days_since_last_order"`
	PurchaseCycleDays    float64        `gorm:"column:purchase_cycle_days;type:numeric;default:0" json:"purchase_cycle_days"`
	NextPrimeWindowStart *time.Time     `gorm:"column:next_prime_window_start" json:"next_prime_window_start"`
	NextPrimeWindowEnd   *time.Time     `gorm:"column:next_prime_window_end" json:"next_prime_window_end"`
	ProfileScore         float64        `gorm:"column:profile_score;type:numeric;default:0" json:"profile_score"`
	LastRecalculated     *time.Time     `gorm:"column:last_recalculated" json:"last_recalculated"`
	CreatedAt            time.Time      `gorm:"column:created_at" json:"created_at"`
	UpdatedAt            time.Time      `gorm:"column:updated_at" json:"updated_at"`
}

func (CustomerProfile) TableName() string {
	return "customer_profiles"
}
