package postgres

import (
	"context"
	"fmt"
	"time"
	"wasgeurtjeInsights/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DeviceRepository struct {
	DB *gorm.DB
}

func NewDeviceRepository(db *gorm.DB) *DeviceRepository {
	return &DeviceRepository{DB: db}
}

// Upsert inserts a device record or, when the (email, ip_hash, fingerprint)
// triple already exists, bumps last_seen and increments visit_count
// atomically in the database so concurrent tabs never lose an increment or
// create a duplicate row.
func (r *DeviceRepository) Upsert(ctx context.Context, identity domain.DeviceIdentity) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	now := time.Now()
	row := domain.DeviceRecord{
		Email:              identity.Email,
		IPHash:             identity.IPHash,
		BrowserFingerprint: identity.BrowserFingerprint,
		CustomerID:         identity.CustomerID,
		FirstSeen:          now,
		LastSeen:           now,
		VisitCount:         1,
		UserAgent:          identity.UserAgent,
		GeoCountry:         identity.GeoCountry,
		GeoCity:            identity.GeoCity,
	}

	assignments := map[string]any{
		"last_seen":   now,
		"visit_count": gorm.Expr("device_records.visit_count + 1"),
	}
	if identity.CustomerID != nil {
		assignments["customer_id"] = *identity.CustomerID
	}
	if identity.UserAgent != "" {
		assignments["user_agent"] = identity.UserAgent
	}
	if identity.GeoCountry != "" {
		assignments["geo_country"] = identity.GeoCountry
	}
	if identity.GeoCity != "" {
		assignments["geo_city"] = identity.GeoCity
	}

	if err := r.DB.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns: []clause.Column{
				{Name: "email"},
				{Name: "ip_hash"},
				{Name: "browser_fingerprint"},
			},
			DoUpdates: clause.Assignments(assignments),
		},
	).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to upsert device record: %w", err)
	}

	return nil
}
