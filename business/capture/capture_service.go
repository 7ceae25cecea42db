package capture

import (
	"context"
	"fmt"
	"time"
	"wasgeurtjeInsights/domain"
	"wasgeurtjeInsights/pkg/logger"
	"wasgeurtjeInsights/pkg/metrics"
)

// EventDispatcher fans a canonical event out to every enabled destination.
// Dispatch never fails the caller; FireAndForget additionally returns before
// delivery is attempted (page-exit beacons).
type EventDispatcher interface {
	Dispatch(ctx context.Context, event domain.TrackingEvent, meta domain.SessionMeta)
	FireAndForget(event domain.TrackingEvent, meta domain.SessionMeta)
}

// OfferTrigger lets the capture layer hand a changed cart to the offer
// engine. Implementations are best-effort and must never block tracking.
type OfferTrigger interface {
	MaybeCreateOffer(ctx context.Context, meta domain.SessionMeta, cart []domain.CartItem)
}

type Config struct {
	Currency            string
	Brand               string
	EngagementMinTime   time.Duration
	EngagementMinScroll int
	SweepInterval       time.Duration
	SessionMaxIdle      time.Duration
}

func DefaultConfig() Config {
	return Config{
		Currency:            "EUR",
		Brand:               "Wasgeurtje",
		EngagementMinTime:   30 * time.Second,
		EngagementMinScroll: 50,
		SweepInterval:       10 * time.Second,
		SessionMaxIdle:      30 * time.Minute,
	}
}

// Service turns observed UI state into deduplicated domain events. One
// visitor session is one sequential stream of observations; emitted events
// are a function of the last emitted-from state, not of how often the UI
// re-evaluates.
type Service struct {
	cfg        Config
	dispatcher EventDispatcher
	offers     OfferTrigger
	registry   *sessionRegistry
	now        func() time.Time
}

func NewService(cfg Config, dispatcher EventDispatcher, offers OfferTrigger) *Service {
	if cfg.EngagementMinTime <= 0 {
		cfg.EngagementMinTime = 30 * time.Second
	}
	if cfg.EngagementMinScroll <= 0 {
		cfg.EngagementMinScroll = 50
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 10 * time.Second
	}
	if cfg.SessionMaxIdle <= 0 {
		cfg.SessionMaxIdle = 30 * time.Minute
	}

	now := time.Now
	return &Service{
		cfg:        cfg,
		dispatcher: dispatcher,
		offers:     offers,
		registry:   newSessionRegistry(now),
		now:        now,
	}
}

// ObserveCart diffs the new snapshot against the last emitted-from cart and
// emits add/remove events for the delta. The very first observation of a
// session only primes the tracker: a cart restored from persisted storage
// on page load is not a change.
func (s *Service) ObserveCart(ctx context.Context, meta domain.SessionMeta, items []domain.CartItem) {
	state := s.registry.get(meta.SessionID)
	state.mu.Lock()
	defer state.mu.Unlock()
	state.mergeMeta(meta)

	snapshot := make([]domain.CartItem, len(items))
	copy(snapshot, items)

	if !state.primed {
		state.primed = true
		state.lastCart = snapshot
		return
	}

	delta := ComputeCartDelta(state.lastCart, snapshot)
	if delta.Empty() {
		return
	}
	state.lastCart = snapshot

	if len(delta.Added) > 0 {
		s.emit(ctx, state, domain.TrackingEvent{
			Name:  domain.EventAddToCart,
			Items: s.itemsFromCart(delta.Added),
			Extra: map[string]any{"cart_size": len(snapshot)},
		})
	}
	if len(delta.Removed) > 0 {
		s.emit(ctx, state, domain.TrackingEvent{
			Name:  domain.EventRemoveFromCart,
			Items: s.itemsFromCart(delta.Removed),
			Extra: map[string]any{"cart_size": len(snapshot)},
		})
	}

	if s.offers != nil && state.meta.Email != "" {
		s.offers.MaybeCreateOffer(ctx, state.meta, snapshot)
	}
}

// ObserveCheckout tracks the checkout funnel: begin_checkout fires at most
// once per session the first time the cart is non-empty, identify fires
// whenever a previously unseen email shows up (tracked against the last
// seen value, so re-renders with the same email stay silent), and
// add_payment_info fires once when the payment step is reached.
func (s *Service) ObserveCheckout(ctx context.Context, meta domain.SessionMeta, email, step string) {
	state := s.registry.get(meta.SessionID)
	state.mu.Lock()
	defer state.mu.Unlock()
	state.mergeMeta(meta)

	if !state.checkoutStarted && len(state.lastCart) > 0 {
		state.checkoutStarted = true
		s.emit(ctx, state, domain.TrackingEvent{
			Name:  domain.EventBeginCheckout,
			Items: s.itemsFromCart(state.lastCart),
			Extra: map[string]any{"step": step},
		})
	}

	if email != "" && email != state.lastEmail {
		state.lastEmail = email
		state.meta.Email = email
		s.emit(ctx, state, domain.TrackingEvent{
			Name:   domain.EventIdentify,
			Traits: domain.UserTraits{Email: email},
			Extra:  map[string]any{"step": step},
		})
	}

	if step == "payment" && !state.paymentInfoSent && len(state.lastCart) > 0 {
		state.paymentInfoSent = true
		s.emit(ctx, state, domain.TrackingEvent{
			Name:  domain.EventAddPaymentInfo,
			Items: s.itemsFromCart(state.lastCart),
		})
	}
}

// ObserveEngagement records a scroll/time ping for the current view. The
// engaged_session event fires at most once per view, as soon as either the
// time or the scroll threshold is crossed.
func (s *Service) ObserveEngagement(ctx context.Context, meta domain.SessionMeta, path string, scrollPct int) {
	state := s.registry.get(meta.SessionID)
	state.mu.Lock()
	defer state.mu.Unlock()
	state.mergeMeta(meta)

	s.resetViewIfChanged(state, path)

	if scrollPct > state.maxScroll {
		state.maxScroll = scrollPct
	}

	elapsed := s.now().Sub(state.viewStarted)
	if s.thresholdMet(state.maxScroll, elapsed) {
		s.fireEngagement(ctx, state, false)
	}
}

// FlushEngagement is the page-exit path: evaluate one final time and, if
// the threshold was met but not yet reported, deliver without blocking the
// caller. The send survives the originating request.
func (s *Service) FlushEngagement(meta domain.SessionMeta, path string, scrollPct int) {
	state := s.registry.get(meta.SessionID)
	state.mu.Lock()
	defer state.mu.Unlock()
	state.mergeMeta(meta)

	s.resetViewIfChanged(state, path)

	if scrollPct > state.maxScroll {
		state.maxScroll = scrollPct
	}

	elapsed := s.now().Sub(state.viewStarted)
	if s.thresholdMet(state.maxScroll, elapsed) {
		s.fireEngagement(context.Background(), state, true)
	}
}

// TrackPurchase emits the purchase event for a completed order. Order lines
// go through the same item normalization as the cart path, so the purchase
// payload carries the full feed-compatible shape at every destination.
// Identity propagation to the correlation store happens inside the
// dispatcher.
func (s *Service) TrackPurchase(ctx context.Context, meta domain.SessionMeta, items []domain.CartItem, value float64, traits domain.UserTraits, orderID string) {
	state := s.registry.get(meta.SessionID)
	state.mu.Lock()
	defer state.mu.Unlock()
	state.mergeMeta(meta)
	if traits.Email != "" {
		state.meta.Email = traits.Email
	}

	s.emit(ctx, state, domain.TrackingEvent{
		Name:   domain.EventPurchase,
		Items:  s.itemsFromCart(items),
		Value:  value,
		Traits: traits,
		Extra:  map[string]any{"order_id": orderID},
	})

	// the next cart observation starts a fresh funnel
	state.lastCart = nil
	state.checkoutStarted = false
	state.paymentInfoSent = false
}

// RunSweeper periodically re-evaluates the time threshold so a visitor who
// scrolled once and then stopped pinging still gets credited, and evicts
// idle sessions. Blocks until ctx is done.
func (s *Service) RunSweeper(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Service) sweep() {
	now := s.now()
	for _, state := range s.registry.snapshot() {
		state.mu.Lock()
		// only sessions that reported a view accrue time-on-page; cart-only
		// sessions have no page to credit
		if !state.engaged && state.viewPath != "" &&
			now.Sub(state.viewStarted) >= s.cfg.EngagementMinTime {
			s.fireEngagement(context.Background(), state, false)
		}
		state.mu.Unlock()
	}

	if dropped := s.registry.evict(s.cfg.SessionMaxIdle); dropped > 0 {
		logger.Debug("evicted idle sessions", "count", dropped)
	}
}

func (s *Service) thresholdMet(maxScroll int, elapsed time.Duration) bool {
	return elapsed >= s.cfg.EngagementMinTime || maxScroll > s.cfg.EngagementMinScroll
}

func (s *Service) fireEngagement(ctx context.Context, state *sessionState, beacon bool) {
	if state.engaged {
		return
	}
	state.engaged = true

	event := domain.TrackingEvent{
		Name: domain.EventEngagedSession,
		Extra: map[string]any{
			"path":         state.viewPath,
			"max_scroll":   state.maxScroll,
			"time_on_page": int(s.now().Sub(state.viewStarted).Seconds()),
		},
	}

	if beacon {
		event.SessionID = state.meta.SessionID
		event.Currency = s.cfg.Currency
		event.OccurredAt = s.now()
		metrics.CapturedEvents.WithLabelValues(event.Name).Inc()
		s.dispatcher.FireAndForget(event, state.meta)
		return
	}
	s.emit(ctx, state, event)
}

func (s *Service) resetViewIfChanged(state *sessionState, path string) {
	if path != "" && path != state.viewPath {
		state.viewPath = path
		state.viewStarted = s.now()
		state.maxScroll = 0
		state.engaged = false
	}
}

func (s *Service) emit(ctx context.Context, state *sessionState, event domain.TrackingEvent) {
	event.SessionID = state.meta.SessionID
	event.Currency = s.cfg.Currency
	event.OccurredAt = s.now()

	metrics.CapturedEvents.WithLabelValues(event.Name).Inc()
	s.dispatcher.Dispatch(ctx, event, state.meta)
}

func (s *Service) itemsFromCart(items []domain.CartItem) []domain.Item {
	out := make([]domain.Item, 0, len(items))
	for _, it := range items {
		out = append(out, domain.Item{
			ID:             it.ProductID,
			Name:           it.Title,
			Brand:          s.cfg.Brand,
			Price:          it.Price,
			Quantity:       it.Quantity,
			Currency:       s.cfg.Currency,
			ItemSKU:        fmt.Sprintf("gla_%d", it.ProductID),
			StockStatus:    "in stock",
			Classification: "new",
		})
	}
	return out
}
