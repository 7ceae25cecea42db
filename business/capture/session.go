package capture

import (
	"sync"
	"time"
	"wasgeurtjeInsights/domain"
)

// sessionState is the last emitted-from state of one visitor session.
// Observations for one session are mostly sequential, but the sweeper
// goroutine and overlapping pings (beacon plus a late engagement call, two
// tabs) can touch the same session concurrently, so every access goes
// through mu.
type sessionState struct {
	mu   sync.Mutex
	meta domain.SessionMeta

	// cart tracking: primed becomes true on the first observation, which
	// is suppressed (a cart restored from storage on load is not a delta).
	primed   bool
	lastCart []domain.CartItem

	// checkout funnel one-shots
	checkoutStarted bool
	paymentInfoSent bool
	lastEmail       string

	// engagement tracking for the current view
	viewPath    string
	viewStarted time.Time
	maxScroll   int
	engaged     bool

	lastSeen time.Time
}

// sessionRegistry holds per-session trackers. The map lock only guards
// lookup/insert; mutation of a tracker happens under its own mu.
type sessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*sessionState
	now      func() time.Time
}

func newSessionRegistry(now func() time.Time) *sessionRegistry {
	return &sessionRegistry{
		sessions: make(map[string]*sessionState),
		now:      now,
	}
}

func (r *sessionRegistry) get(sessionID string) *sessionState {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		now := r.now()
		s = &sessionState{
			meta:        domain.SessionMeta{SessionID: sessionID},
			viewStarted: now,
			lastSeen:    now,
		}
		r.sessions[sessionID] = s
	}
	s.lastSeen = r.now()
	return s
}

// snapshot returns the current trackers for the sweeper without holding the
// lock during evaluation.
func (r *sessionRegistry) snapshot() []*sessionState {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*sessionState, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

// evict drops sessions idle longer than maxIdle.
func (r *sessionRegistry) evict(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-maxIdle)
	dropped := 0
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			dropped++
		}
	}
	return dropped
}

// mergeMeta folds newly observed identity fields into the session, keeping
// previously known values when the new observation omits them.
func (s *sessionState) mergeMeta(meta domain.SessionMeta) {
	if meta.Email != "" {
		s.meta.Email = meta.Email
	}
	if meta.CustomerID != nil {
		s.meta.CustomerID = meta.CustomerID
	}
	if meta.IPHash != "" {
		s.meta.IPHash = meta.IPHash
	}
	if meta.BrowserFingerprint != "" {
		s.meta.BrowserFingerprint = meta.BrowserFingerprint
	}
	if meta.UserAgent != "" {
		s.meta.UserAgent = meta.UserAgent
	}
	if meta.GeoCountry != "" {
		s.meta.GeoCountry = meta.GeoCountry
	}
	if meta.GeoCity != "" {
		s.meta.GeoCity = meta.GeoCity
	}
}
