package postgres

import (
	"context"
	"fmt"
	"wasgeurtjeInsights/domain"

	"gorm.io/gorm"
)

type EventRepository struct {
	DB *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{DB: db}
}

// Append inserts one behavioral event row. The table is append-only; there
// are no update or delete paths.
func (r *EventRepository) Append(ctx context.Context, event domain.BehavioralEvent) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(&event).Error; err != nil {
		return fmt.Errorf("failed to append behavioral event: %w", err)
	}

	return nil
}

func (r *EventRepository) FindBySession(ctx context.Context, sessionID string, limit int) ([]domain.BehavioralEvent, error) {
	var events []domain.BehavioralEvent

	if err := r.DB.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to query behavioral events: %w", err)
	}

	return events, nil
}
