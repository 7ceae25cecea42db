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

type PixelConfig struct {
	RelayURL string
	PixelID  string
}

// PixelRelay forwards events to the client-path ad pixel endpoint. Like
// every ad-bound payload, identity travels as the hashed matching fields
// only; raw traits never enter this payload.
type PixelRelay struct {
	cfg    PixelConfig
	client *http.Client
}

func NewPixelRelay(cfg PixelConfig) *PixelRelay {
	return &PixelRelay{
		cfg:    cfg,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

func (r *PixelRelay) Name() string { return "pixel" }

type pixelContent struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

type pixelPayload struct {
	PixelID     string         `json:"pixel_id"`
	EventName   string         `json:"event_name"`
	EventID     string         `json:"event_id,omitempty"`
	HashedEmail string         `json:"hashed_email,omitempty"`
	Value       float64        `json:"value"`
	Currency    string         `json:"currency"`
	Contents    []pixelContent `json:"contents,omitempty"`
	NumItems    int            `json:"num_items"`
	OccurredAt  int64          `json:"occurred_at"`
}

func (r *PixelRelay) Send(ctx context.Context, event domain.TrackingEvent) error {
	payload := pixelPayload{
		PixelID:     r.cfg.PixelID,
		EventName:   event.Name,
		EventID:     event.SessionID,
		HashedEmail: event.Hashed.Email,
		Value:       event.Value,
		Currency:    event.Currency,
		OccurredAt:  event.OccurredAt.Unix(),
	}
	for _, it := range event.Items {
		payload.Contents = append(payload.Contents, pixelContent{ID: it.ItemSKU, Quantity: it.Quantity})
		payload.NumItems += it.Quantity
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal pixel payload: %w", err)
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

	return fmt.Errorf("pixel relay returned %v", res.StatusCode)
}
