package identity

import (
	"context"
	"time"
	"wasgeurtjeInsights/business/suggestion"
	"wasgeurtjeInsights/domain"
	"wasgeurtjeInsights/pkg/logger"
)

// ---- Repository interfaces ----

type ProfileRepository interface {
	FindByEmail(ctx context.Context, email string) (domain.CustomerProfile, bool, error)
	Upsert(ctx context.Context, profile *domain.CustomerProfile) error
}

type DeviceRepository interface {
	Upsert(ctx context.Context, identity domain.DeviceIdentity) error
}

type EventRepository interface {
	Append(ctx context.Context, event domain.BehavioralEvent) error
	FindBySession(ctx context.Context, sessionID string, limit int) ([]domain.BehavioralEvent, error)
}

// ProfileCache is a best-effort read cache in front of the profile table.
// Cache errors degrade to a direct read, never to a caller-visible failure.
type ProfileCache interface {
	Get(ctx context.Context, email string) (*domain.CustomerProfile, error)
	Set(ctx context.Context, profile domain.CustomerProfile, ttl time.Duration) error
	Invalidate(ctx context.Context, email string) error
}

// Service is the correlation store facade. Every operation is best-effort
// from the caller's perspective: a store failure degrades personalization
// and attribution quality but never aborts a user-facing action.
type Service struct {
	profiles ProfileRepository
	devices  DeviceRepository
	events   EventRepository
	cache    ProfileCache
	engine   *suggestion.Engine
	cacheTTL time.Duration
}

func NewService(
	profiles ProfileRepository,
	devices DeviceRepository,
	events EventRepository,
	cache ProfileCache,
	engine *suggestion.Engine,
) *Service {
	return &Service{
		profiles: profiles,
		devices:  devices,
		events:   events,
		cache:    cache,
		engine:   engine,
		cacheTTL: 10 * time.Minute,
	}
}

// GetProfile reads a profile, cache-aside.
func (s *Service) GetProfile(ctx context.Context, email string) (domain.CustomerProfile, bool) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, email); err == nil && cached != nil {
			return *cached, true
		}
	}

	profile, found, err := s.profiles.FindByEmail(ctx, email)
	if err != nil {
		logger.Warn("profile read failed", "email", email, "error", err.Error())
		return domain.CustomerProfile{}, false
	}
	if !found {
		return domain.CustomerProfile{}, false
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, profile, s.cacheTTL); err != nil {
			logger.Debug("profile cache set failed", "error", err.Error())
		}
	}
	return profile, true
}

// UpsertProfile merges the supplied fields into the profile for that email.
// Derived fields (score, prime window) are not touched here; only
// RecalculateProfile writes those.
func (s *Service) UpsertProfile(ctx context.Context, profile domain.CustomerProfile) {
	if profile.Email == "" {
		return
	}
	if err := s.profiles.Upsert(ctx, &profile); err != nil {
		logger.Warn("profile upsert failed", "email", profile.Email, "error", err.Error())
		return
	}
	s.invalidate(ctx, profile.Email)
}

// UpsertDevice records a visit for the (email, ip hash, fingerprint) triple.
func (s *Service) UpsertDevice(ctx context.Context, identity domain.DeviceIdentity) {
	if identity.Email == "" && identity.IPHash == "" {
		// nothing to correlate on
		return
	}
	if err := s.devices.Upsert(ctx, identity); err != nil {
		logger.Warn("device upsert failed", "email", identity.Email, "error", err.Error())
	}
}

// LogEvent appends one behavioral event row. The error return feeds the
// dispatcher's failure metric; it is never propagated further.
func (s *Service) LogEvent(ctx context.Context, event domain.BehavioralEvent) error {
	return s.events.Append(ctx, event)
}

// RecentEvents lists the newest events for a session.
func (s *Service) RecentEvents(ctx context.Context, sessionID string, limit int) ([]domain.BehavioralEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.events.FindBySession(ctx, sessionID, limit)
}

// PropagateIdentity folds identity revealed at purchase time into the
// correlation store: profile by email plus the device record for the
// observed triple.
func (s *Service) PropagateIdentity(ctx context.Context, meta domain.SessionMeta, traits domain.UserTraits) {
	email := traits.Email
	if email == "" {
		email = meta.Email
	}
	if email == "" {
		return
	}

	fingerprint := meta.BrowserFingerprint
	profile := domain.CustomerProfile{
		Email:      email,
		IPHash:     meta.IPHash,
		GeoCountry: meta.GeoCountry,
		GeoCity:    meta.GeoCity,
		CustomerID: meta.CustomerID,
	}
	if fingerprint != "" {
		profile.BrowserFingerprint = &fingerprint
	}
	s.UpsertProfile(ctx, profile)

	s.UpsertDevice(ctx, domain.DeviceIdentity{
		Email:              email,
		IPHash:             meta.IPHash,
		BrowserFingerprint: fingerprint,
		CustomerID:         meta.CustomerID,
		UserAgent:          meta.UserAgent,
		GeoCountry:         meta.GeoCountry,
		GeoCity:            meta.GeoCity,
	})
}

// RecalculateProfile rebuilds the derived profile fields from the supplied
// order history and persists the result.
func (s *Service) RecalculateProfile(ctx context.Context, email string, orders []suggestion.OrderSummary) (domain.CustomerProfile, error) {
	profile, found, err := s.profiles.FindByEmail(ctx, email)
	if err != nil {
		return domain.CustomerProfile{}, err
	}
	if !found {
		profile = domain.CustomerProfile{Email: email}
	}

	s.engine.RecalculateProfile(&profile, orders, time.Now())

	if err := s.profiles.Upsert(ctx, &profile); err != nil {
		return domain.CustomerProfile{}, err
	}
	s.invalidate(ctx, email)

	return profile, nil
}

func (s *Service) invalidate(ctx context.Context, email string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, email); err != nil {
		logger.Debug("profile cache invalidate failed", "error", err.Error())
	}
}
