package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"
	"wasgeurtjeInsights/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileRepository struct {
	DB *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{DB: db}
}

func (r *ProfileRepository) FindByEmail(ctx context.Context, email string) (domain.CustomerProfile, bool, error) {
	var profile domain.CustomerProfile

	err := r.DB.WithContext(ctx).Where("email = ?", email).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.CustomerProfile{}, false, nil
		}
		return domain.CustomerProfile{}, false, fmt.Errorf("failed to query customer profile: %w", err)
	}

	return profile, true, nil
}

// Upsert merges by email with a native insert-or-update so concurrent
// sessions never create duplicate rows. Only supplied (non-zero) fields are
// written; everything else on the existing row stays untouched. Derived
// fields are written only when the caller stamped last_recalculated, which
// only the scoring engine path does.
func (r *ProfileRepository) Upsert(ctx context.Context, profile *domain.CustomerProfile) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	now := time.Now()
	profile.UpdatedAt = now
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}

	assignments := map[string]any{
		"updated_at": now,
	}
	if profile.CustomerID != nil {
		assignments["customer_id"] = *profile.CustomerID
	}
	if profile.IPHash != "" {
		assignments["ip_hash"] = profile.IPHash
	}
	if profile.BrowserFingerprint != nil {
		assignments["browser_fingerprint"] = *profile.BrowserFingerprint
	}
	if profile.GeoCountry != "" {
		assignments["geo_country"] = profile.GeoCountry
	}
	if profile.GeoCity != "" {
		assignments["geo_city"] = profile.GeoCity
	}

	if profile.LastRecalculated != nil {
		assignments["favorite_products"] = profile.FavoriteProducts
		assignments["peak_spending_quantity"] = profile.PeakSpendingQuantity
		assignments["peak_spending_amount"] = profile.PeakSpendingAmount
		assignments["avg_order_value"] = profile.AvgOrderValue
		assignments["total_orders"] = profile.TotalOrders
		assignments["last_order_date"] = profile.LastOrderDate
		assignments["days_since_last_order"] = profile.DaysSinceLastOrder
		assignments["purchase_cycle_days"] = profile.PurchaseCycleDays
		assignments["next_prime_window_start"] = profile.NextPrimeWindowStart
		assignments["next_prime_window_end"] = profile.NextPrimeWindowEnd
		assignments["profile_score"] = profile.ProfileScore
		assignments["last_recalculated"] = profile.LastRecalculated
	}

	if err := r.DB.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.Assignments(assignments),
		},
	).Create(profile).Error; err != nil {
		return fmt.Errorf("failed to upsert customer profile: %w", err)
	}

	return nil
}
