package destinations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
	"wasgeurtjeInsights/domain"

	"github.com/pobyzaarif/goshortcute"
)

type EmailPlatformConfig struct {
	BaseURL           string
	BasicAuthUsername string
	BasicAuthPassword string
}

// EmailPlatform pushes events into the email/CRM platform so flows
// (abandoned cart, post-purchase) can react to them. This is the one
// destination that legitimately receives the raw email address: it is the
// platform's primary key for the subscriber.
type EmailPlatform struct {
	cfg    EmailPlatformConfig
	client *http.Client
}

func NewEmailPlatform(cfg EmailPlatformConfig) *EmailPlatform {
	return &EmailPlatform{
		cfg:    cfg,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

func (r *EmailPlatform) Name() string { return "email_platform" }

type emailEventPayload struct {
	Event      string         `json:"event"`
	Email      string         `json:"email,omitempty"`
	Properties map[string]any `json:"properties"`
	Time       int64          `json:"time"`
}

func (r *EmailPlatform) Send(ctx context.Context, event domain.TrackingEvent) error {
	if event.Traits.Email == "" && event.Name != domain.EventPurchase {
		// without an email there is no subscriber to attach the event to
		return nil
	}

	properties := map[string]any{
		"value":    event.Value,
		"currency": event.Currency,
	}
	if len(event.Items) > 0 {
		names := make([]string, 0, len(event.Items))
		ids := make([]string, 0, len(event.Items))
		for _, it := range event.Items {
			names = append(names, it.Name)
			ids = append(ids, it.ItemSKU)
		}
		properties["item_names"] = names
		properties["item_ids"] = ids
	}
	for k, v := range event.Extra {
		properties[k] = v
	}

	payload := emailEventPayload{
		Event:      event.Name,
		Email:      event.Traits.Email,
		Properties: properties,
		Time:       event.OccurredAt.Unix(),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email platform payload: %w", err)
	}

	url := r.cfg.BaseURL + "/api/track"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}

	buildBasicAuth := goshortcute.StringtoBase64Encode(r.cfg.BasicAuthUsername + ":" + r.cfg.BasicAuthPassword)
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Authorization", "Basic "+buildBasicAuth)

	res, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 200 && res.StatusCode <= 299 {
		return nil
	}

	return fmt.Errorf("email platform returned %v", res.StatusCode)
}
