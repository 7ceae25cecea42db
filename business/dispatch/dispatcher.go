package dispatch

import (
	"context"
	"sync"
	"time"
	"wasgeurtjeInsights/business/privacy"
	"wasgeurtjeInsights/domain"
	"wasgeurtjeInsights/pkg/logger"
	"wasgeurtjeInsights/pkg/metrics"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Destination is one external sink. The closed set of implementations lives
// in internal/repository/destinations; which ones are active is static
// configuration, never runtime feature detection.
type Destination interface {
	Name() string
	Send(ctx context.Context, event domain.TrackingEvent) error
}

// EventLogger appends one behavioral event row. Best-effort: a failure is
// observed through metrics but never stops a dispatch.
type EventLogger interface {
	LogEvent(ctx context.Context, event domain.BehavioralEvent) error
}

// IdentityPropagator updates the correlation store when a purchase reveals
// identity. Best-effort.
type IdentityPropagator interface {
	PropagateIdentity(ctx context.Context, meta domain.SessionMeta, traits domain.UserTraits)
}

type Config struct {
	CountryPhonePrefix string
	SendTimeout        time.Duration
}

// Dispatcher fans one canonical event out to every enabled destination.
// Sinks run concurrently, each under its own timeout; one sink failing or
// hanging never affects the others and never surfaces to the caller.
type Dispatcher struct {
	destinations []Destination
	events       EventLogger
	identity     IdentityPropagator
	cfg          Config
}

func NewDispatcher(cfg Config, destinations []Destination, events EventLogger, identity IdentityPropagator) *Dispatcher {
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 5 * time.Second
	}
	return &Dispatcher{
		destinations: destinations,
		events:       events,
		identity:     identity,
		cfg:          cfg,
	}
}

// Dispatch delivers the event to all destinations and logs exactly one
// behavioral event row, independent of any sink outcome. It blocks until
// every sink has finished or timed out but never returns an error: dispatch
// is fire-and-forget from the business-logic perspective.
func (d *Dispatcher) Dispatch(ctx context.Context, event domain.TrackingEvent, meta domain.SessionMeta) {
	event = d.prepare(event, meta)

	// the local log write is attempted once per event, not per sink
	d.logEvent(ctx, event, meta)

	if event.Name == domain.EventPurchase && d.identity != nil && event.Traits.Email != "" {
		d.identity.PropagateIdentity(ctx, meta, event.Traits)
	}

	var wg sync.WaitGroup
	for _, dest := range d.destinations {
		wg.Add(1)
		go func(dest Destination) {
			defer wg.Done()
			d.send(ctx, dest, event)
		}(dest)
	}
	wg.Wait()
}

// FireAndForget returns immediately; delivery happens on a detached
// context so it survives the originating request (page-exit beacons are
// not abortable by navigation teardown).
func (d *Dispatcher) FireAndForget(event domain.TrackingEvent, meta domain.SessionMeta) {
	go d.Dispatch(context.Background(), event, meta)
}

func (d *Dispatcher) send(ctx context.Context, dest Destination, event domain.TrackingEvent) {
	sendCtx, cancel := context.WithTimeout(ctx, d.cfg.SendTimeout)
	defer cancel()

	started := time.Now()
	err := dest.Send(sendCtx, event)
	metrics.DispatchLatency.WithLabelValues(dest.Name()).Observe(time.Since(started).Seconds())

	if err != nil {
		metrics.DispatchResults.WithLabelValues(dest.Name(), "failure").Inc()
		logger.Warn("destination send failed",
			"destination", dest.Name(),
			"event", event.Name,
			"error", err.Error(),
		)
		return
	}
	metrics.DispatchResults.WithLabelValues(dest.Name(), "success").Inc()
}

// prepare fills derived fields: total value from the items when not
// supplied, and the privacy transform over whatever identity is available.
// Raw traits stay on the event for destinations that legitimately take
// them (the email platform); ad-bound payloads only read Hashed.
func (d *Dispatcher) prepare(event domain.TrackingEvent, meta domain.SessionMeta) domain.TrackingEvent {
	event.Value = event.TotalValue()

	if event.Traits.Email == "" && meta.Email != "" {
		event.Traits.Email = meta.Email
	}
	event.Hashed = privacy.HashTraits(event.Traits, d.cfg.CountryPhonePrefix)

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	return event
}

func (d *Dispatcher) logEvent(ctx context.Context, event domain.TrackingEvent, meta domain.SessionMeta) {
	if d.events == nil {
		return
	}

	data := datatypes.JSONMap{
		"value":    event.Value,
		"currency": event.Currency,
	}
	if len(event.Items) > 0 {
		items := make([]map[string]any, 0, len(event.Items))
		for _, it := range event.Items {
			items = append(items, map[string]any{
				"id":       it.ID,
				"name":     it.Name,
				"price":    it.Price,
				"quantity": it.Quantity,
			})
		}
		data["items"] = items
	}
	for k, v := range event.Extra {
		data[k] = v
	}

	row := domain.BehavioralEvent{
		ID:         uuid.NewString(),
		SessionID:  meta.SessionID,
		CustomerID: meta.CustomerID,
		IPHash:     meta.IPHash,
		EventType:  event.Name,
		EventData:  data,
		CreatedAt:  event.OccurredAt,
	}
	if email := event.Traits.Email; email != "" {
		row.CustomerEmail = &email
	}
	if meta.BrowserFingerprint != "" {
		fp := meta.BrowserFingerprint
		row.BrowserFingerprint = &fp
	}

	if err := d.events.LogEvent(ctx, row); err != nil {
		metrics.EventLogFailures.Inc()
		logger.Warn("behavioral event log failed", "event", event.Name, "error", err.Error())
	}
}
