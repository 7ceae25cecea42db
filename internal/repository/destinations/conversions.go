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

type ConversionsConfig struct {
	APIURL      string
	AccessToken string
}

// ConversionsAPI is the server-side ad-platform path. Identity goes out
// exclusively as the hashed advanced-matching fields; raw PII never enters
// this payload.
type ConversionsAPI struct {
	cfg    ConversionsConfig
	client *http.Client
}

func NewConversionsAPI(cfg ConversionsConfig) *ConversionsAPI {
	return &ConversionsAPI{
		cfg:    cfg,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

func (r *ConversionsAPI) Name() string { return "conversions_api" }

type capiContent struct {
	ID        string  `json:"id"`
	Quantity  int     `json:"quantity"`
	ItemPrice float64 `json:"item_price"`
}

type capiUserData struct {
	Email      string `json:"em,omitempty"`
	Phone      string `json:"ph,omitempty"`
	FirstName  string `json:"fn,omitempty"`
	LastName   string `json:"ln,omitempty"`
	City       string `json:"ct,omitempty"`
	Country    string `json:"country,omitempty"`
	PostalCode string `json:"zp,omitempty"`
}

type capiEvent struct {
	EventName  string       `json:"event_name"`
	EventTime  int64        `json:"event_time"`
	EventID    string       `json:"event_id,omitempty"`
	UserData   capiUserData `json:"user_data"`
	CustomData struct {
		Currency string        `json:"currency"`
		Value    float64       `json:"value"`
		Contents []capiContent `json:"contents,omitempty"`
	} `json:"custom_data"`
}

type capiPayload struct {
	Data        []capiEvent `json:"data"`
	AccessToken string      `json:"access_token"`
}

func (r *ConversionsAPI) Send(ctx context.Context, event domain.TrackingEvent) error {
	capi := capiEvent{
		EventName: event.Name,
		EventTime: event.OccurredAt.Unix(),
		EventID:   event.SessionID,
		UserData: capiUserData{
			Email:      event.Hashed.Email,
			Phone:      event.Hashed.Phone,
			FirstName:  event.Hashed.FirstName,
			LastName:   event.Hashed.LastName,
			City:       event.Hashed.City,
			Country:    event.Hashed.Country,
			PostalCode: event.Hashed.PostalCode,
		},
	}
	capi.CustomData.Currency = event.Currency
	capi.CustomData.Value = event.Value
	for _, it := range event.Items {
		capi.CustomData.Contents = append(capi.CustomData.Contents, capiContent{
			ID:        it.ItemSKU,
			Quantity:  it.Quantity,
			ItemPrice: it.Price,
		})
	}

	body, err := json.Marshal(capiPayload{
		Data:        []capiEvent{capi},
		AccessToken: r.cfg.AccessToken,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal conversions payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.APIURL, bytes.NewReader(body))
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

	return fmt.Errorf("conversions api returned %v", res.StatusCode)
}
