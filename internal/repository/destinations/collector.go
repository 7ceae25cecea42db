package destinations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
	"wasgeurtjeInsights/domain"
)

type CollectorConfig struct {
	CollectURL string
	APIKey     string
}

// AnalyticsCollector ships the full event, items and extras included, to the
// first-party analytics store.
type AnalyticsCollector struct {
	cfg    CollectorConfig
	client *http.Client
}

func NewAnalyticsCollector(cfg CollectorConfig) *AnalyticsCollector {
	return &AnalyticsCollector{
		cfg:    cfg,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

func (r *AnalyticsCollector) Name() string { return "collector" }

type collectorPayload struct {
	Event      string                 `json:"event"`
	SessionID  string                 `json:"session_id"`
	Email      string                 `json:"email,omitempty"`
	Value      float64                `json:"value"`
	Currency   string                 `json:"currency"`
	Items      []domain.Item          `json:"items,omitempty"`
	Extra      map[string]interface{} `json:"extra,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
}

func (r *AnalyticsCollector) Send(ctx context.Context, event domain.TrackingEvent) error {
	body, err := json.Marshal(collectorPayload{
		Event:      event.Name,
		SessionID:  event.SessionID,
		Email:      event.Traits.Email,
		Value:      event.Value,
		Currency:   event.Currency,
		Items:      event.Items,
		Extra:      event.Extra,
		OccurredAt: event.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal collector payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.CollectURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("X-Api-Key", r.cfg.APIKey)

	res, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 200 && res.StatusCode <= 299 {
		return nil
	}

	return fmt.Errorf("analytics collector returned %v", res.StatusCode)
}
