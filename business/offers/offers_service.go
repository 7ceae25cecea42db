package offers

import (
	"context"
	"encoding/json"
	"errors"
	"time"
	"wasgeurtjeInsights/business/suggestion"
	"wasgeurtjeInsights/domain"
	"wasgeurtjeInsights/pkg/logger"
	"wasgeurtjeInsights/pkg/metrics"

	"github.com/google/uuid"
)

var (
	ErrOfferNotFound     = errors.New("offer not found")
	ErrInvalidTransition = errors.New("invalid offer transition")
	ErrOfferExpired      = errors.New("offer expired")
)

type OfferRepository interface {
	Create(ctx context.Context, offer *domain.BundleOffer) error
	FindByID(ctx context.Context, id string) (domain.BundleOffer, bool, error)
	// FindActiveByEmail returns the single newest offer in pending/viewed
	// for that email, ignoring read-time expiry (the service applies it).
	FindActiveByEmail(ctx context.Context, email string) (domain.BundleOffer, bool, error)
	UpdateStatus(ctx context.Context, offer *domain.BundleOffer) error
}

// ProfileReader supplies the purchase-history signal for the waterfall.
type ProfileReader interface {
	GetProfile(ctx context.Context, email string) (domain.CustomerProfile, bool)
}

// OfferEmitter announces a freshly created offer downstream.
type OfferEmitter interface {
	FireAndForget(event domain.TrackingEvent, meta domain.SessionMeta)
}

type Config struct {
	TTL             time.Duration
	DiscountPercent float64
	CacheTTL        time.Duration
}

func DefaultConfig() Config {
	return Config{
		TTL:             48 * time.Hour,
		DiscountPercent: 10,
		CacheTTL:        30 * time.Second,
	}
}

type Service struct {
	repo     OfferRepository
	profiles ProfileReader
	engine   *suggestion.Engine
	emitter  OfferEmitter
	cache    *activeOfferCache
	cfg      Config
	now      func() time.Time
}

func NewService(cfg Config, repo OfferRepository, profiles ProfileReader, engine *suggestion.Engine, emitter OfferEmitter) *Service {
	if cfg.TTL <= 0 {
		cfg.TTL = 48 * time.Hour
	}
	return &Service{
		repo:     repo,
		profiles: profiles,
		engine:   engine,
		emitter:  emitter,
		cache:    newActiveOfferCache(cfg.CacheTTL),
		cfg:      cfg,
		now:      time.Now,
	}
}

// ActiveOffer returns the newest open offer for the email, folding in
// read-time expiry: an overdue pending/viewed offer reads as expired and is
// not returned. Lookups coalesce through the TTL cache.
func (s *Service) ActiveOffer(ctx context.Context, email string) (*domain.BundleOffer, error) {
	return s.cache.getOrFetch(ctx, email, func(ctx context.Context) (*domain.BundleOffer, error) {
		offer, found, err := s.repo.FindActiveByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if !found || offer.IsExpired(s.now()) {
			return nil, nil
		}
		return &offer, nil
	})
}

// MaybeCreateOffer runs the suggestion waterfall against the changed cart
// and creates a bundle offer when a candidate fires and the customer has no
// open offer yet. Best-effort all the way: any failure degrades to "no
// offer" without touching the caller's flow.
func (s *Service) MaybeCreateOffer(ctx context.Context, meta domain.SessionMeta, cart []domain.CartItem) {
	if meta.Email == "" {
		return
	}

	existing, err := s.ActiveOffer(ctx, meta.Email)
	if err != nil {
		logger.Warn("active offer lookup failed", "email", meta.Email, "error", err.Error())
		return
	}
	if existing != nil {
		return
	}

	var purchased []uint64
	if profile, found := s.profiles.GetProfile(ctx, meta.Email); found {
		_ = json.Unmarshal(profile.FavoriteProducts, &purchased)
	}

	sug := s.engine.SuggestProduct(purchased, cart, domain.Subtotal(cart))
	if sug == nil {
		return
	}

	offer, err := s.buildOffer(meta, cart, sug)
	if err != nil {
		logger.Warn("offer build failed", "email", meta.Email, "error", err.Error())
		return
	}

	if err := s.repo.Create(ctx, &offer); err != nil {
		logger.Warn("offer create failed", "email", meta.Email, "error", err.Error())
		return
	}
	metrics.OffersCreated.Inc()
	s.cache.invalidate(meta.Email)

	if s.emitter != nil {
		s.emitter.FireAndForget(domain.TrackingEvent{
			Name: domain.EventOfferShown,
			Extra: map[string]any{
				"offer_id":       offer.ID,
				"trigger_reason": offer.TriggerReason,
				"final_price":    offer.FinalPrice,
			},
		}, meta)
	}
}

func (s *Service) buildOffer(meta domain.SessionMeta, cart []domain.CartItem, sug *domain.Suggestion) (domain.BundleOffer, error) {
	now := s.now()

	lines := []domain.BundleLine{{
		ProductID: sug.Product.ProductID,
		Title:     sug.Product.Title,
		Price:     sug.Product.Price,
		Quantity:  1,
	}}
	bundleJSON, err := json.Marshal(lines)
	if err != nil {
		return domain.BundleOffer{}, err
	}

	snapshotJSON, err := json.Marshal(cart)
	if err != nil {
		return domain.BundleOffer{}, err
	}

	basePrice := sug.Product.Price
	discount := basePrice * s.cfg.DiscountPercent / 100
	finalPrice := basePrice - discount

	return domain.BundleOffer{
		ID:             uuid.NewString(),
		CustomerID:     meta.CustomerID,
		CustomerEmail:  meta.Email,
		BundleProducts: bundleJSON,
		TotalQuantity:  1,
		BasePrice:      basePrice,
		DiscountAmount: discount,
		FinalPrice:     finalPrice,
		BonusPoints:    int(finalPrice),
		TriggerReason:  sug.Reason,
		CartSnapshot:   snapshotJSON,
		Status:         domain.OfferStatusPending,
		OfferedAt:      now,
		ExpiresAt:      now.Add(s.cfg.TTL),
	}, nil
}

// Respond applies a client acknowledgment to the offer state machine.
// Transitions are one-directional; an overdue open offer is expired on the
// spot and rejects the transition.
func (s *Service) Respond(ctx context.Context, offerID, action string, conversionValue *float64) (domain.BundleOffer, error) {
	offer, found, err := s.repo.FindByID(ctx, offerID)
	if err != nil {
		return domain.BundleOffer{}, err
	}
	if !found {
		return domain.BundleOffer{}, ErrOfferNotFound
	}

	now := s.now()

	if offer.IsExpired(now) {
		offer.Status = domain.OfferStatusExpired
		if err := s.repo.UpdateStatus(ctx, &offer); err != nil {
			logger.Warn("offer expiry write failed", "offer_id", offerID, "error", err.Error())
		}
		s.cache.invalidate(offer.CustomerEmail)
		return offer, ErrOfferExpired
	}

	if !offer.CanTransition(action) {
		return offer, ErrInvalidTransition
	}

	switch action {
	case domain.OfferStatusViewed:
		offer.ViewedAt = &now
	case domain.OfferStatusAccepted, domain.OfferStatusRejected:
		offer.RespondedAt = &now
	case domain.OfferStatusCompleted:
		offer.RespondedAt = &now
		if conversionValue != nil {
			offer.ConversionValue = conversionValue
		} else {
			value := offer.FinalPrice
			offer.ConversionValue = &value
		}
	}
	offer.Status = action

	if err := s.repo.UpdateStatus(ctx, &offer); err != nil {
		return domain.BundleOffer{}, err
	}
	s.cache.invalidate(offer.CustomerEmail)

	return offer, nil
}
