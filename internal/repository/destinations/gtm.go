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

type GTMConfig struct {
	RelayURL string
}

// GTMRelay forwards events to the server-side tag-management container,
// which fans them further into the tags configured there.
type GTMRelay struct {
	cfg    GTMConfig
	client *http.Client
}

func NewGTMRelay(cfg GTMConfig) *GTMRelay {
	return &GTMRelay{
		cfg:    cfg,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

func (r *GTMRelay) Name() string { return "gtm" }

type gtmItem struct {
	ItemID       string  `json:"item_id"`
	ItemName     string  `json:"item_name"`
	ItemBrand    string  `json:"item_brand"`
	ItemCategory string  `json:"item_category"`
	Price        float64 `json:"price"`
	Quantity     int     `json:"quantity"`
}

type gtmPayload struct {
	Event     string    `json:"event"`
	ClientID  string    `json:"client_id"`
	Currency  string    `json:"currency"`
	Value     float64   `json:"value"`
	Items     []gtmItem `json:"items,omitempty"`
	Timestamp int64     `json:"timestamp_micros"`
}

func (r *GTMRelay) Send(ctx context.Context, event domain.TrackingEvent) error {
	payload := gtmPayload{
		Event:     event.Name,
		ClientID:  event.SessionID,
		Currency:  event.Currency,
		Value:     event.Value,
		Timestamp: event.OccurredAt.UnixMicro(),
	}
	for _, it := range event.Items {
		payload.Items = append(payload.Items, gtmItem{
			ItemID:       it.ItemSKU,
			ItemName:     it.Name,
			ItemBrand:    it.Brand,
			ItemCategory: it.Category,
			Price:        it.Price,
			Quantity:     it.Quantity,
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal gtm payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.RelayURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Add("Content-Type", "application/json")

	res, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 200 && res.StatusCode <= 299 {
		return nil
	}

	return fmt.Errorf("gtm relay returned %v", res.StatusCode)
}
