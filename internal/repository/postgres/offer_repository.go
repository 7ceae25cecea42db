package postgres

import (
	"context"
	"errors"
	"fmt"
	"wasgeurtjeInsights/domain"

	"gorm.io/gorm"
)

type OfferRepository struct {
	DB *gorm.DB
}

func NewOfferRepository(db *gorm.DB) *OfferRepository {
	return &OfferRepository{DB: db}
}

func (r *OfferRepository) Create(ctx context.Context, offer *domain.BundleOffer) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(offer).Error; err != nil {
		return fmt.Errorf("failed to create bundle offer: %w", err)
	}

	return nil
}

func (r *OfferRepository) FindByID(ctx context.Context, id string) (domain.BundleOffer, bool, error) {
	var offer domain.BundleOffer

	err := r.DB.WithContext(ctx).First(&offer, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.BundleOffer{}, false, nil
		}
		return domain.BundleOffer{}, false, fmt.Errorf("failed to query bundle offer: %w", err)
	}

	return offer, true, nil
}

// FindActiveByEmail returns the newest pending/viewed offer for the email.
// Read-time expiry is the service's concern.
func (r *OfferRepository) FindActiveByEmail(ctx context.Context, email string) (domain.BundleOffer, bool, error) {
	var offer domain.BundleOffer

	err := r.DB.WithContext(ctx).
		Where("customer_email = ? AND status IN ?", email, []string{
			domain.OfferStatusPending,
			domain.OfferStatusViewed,
		}).
		Order("offered_at DESC").
		First(&offer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.BundleOffer{}, false, nil
		}
		return domain.BundleOffer{}, false, fmt.Errorf("failed to query active offer: %w", err)
	}

	return offer, true, nil
}

func (r *OfferRepository) UpdateStatus(ctx context.Context, offer *domain.BundleOffer) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Model(&domain.BundleOffer{}).
		Where("id = ?", offer.ID).
		Select("status", "viewed_at", "responded_at", "conversion_value").
		Updates(offer).Error; err != nil {
		return fmt.Errorf("failed to update bundle offer: %w", err)
	}

	return nil
}
