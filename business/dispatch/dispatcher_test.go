package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
	"wasgeurtjeInsights/business/privacy"
	"wasgeurtjeInsights/domain"
)

type stubDestination struct {
	name string
	err  error
	hang bool

	mu     sync.Mutex
	events []domain.TrackingEvent
}

func (d *stubDestination) Name() string { return d.name }

func (d *stubDestination) Send(ctx context.Context, event domain.TrackingEvent) error {
	if d.hang {
		<-ctx.Done()
		return ctx.Err()
	}
	d.mu.Lock()
	d.events = append(d.events, event)
	d.mu.Unlock()
	return d.err
}

func (d *stubDestination) received() []domain.TrackingEvent {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]domain.TrackingEvent, len(d.events))
	copy(out, d.events)
	return out
}

type stubEventLog struct {
	mu   sync.Mutex
	rows []domain.BehavioralEvent
	err  error
}

func (l *stubEventLog) LogEvent(ctx context.Context, event domain.BehavioralEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	l.rows = append(l.rows, event)
	return nil
}

type stubIdentity struct {
	mu    sync.Mutex
	calls []domain.UserTraits
}

func (s *stubIdentity) PropagateIdentity(ctx context.Context, meta domain.SessionMeta, traits domain.UserTraits) {
	s.mu.Lock()
	s.calls = append(s.calls, traits)
	s.mu.Unlock()
}

func testConfig() Config {
	return Config{CountryPhonePrefix: "31", SendTimeout: 50 * time.Millisecond}
}

func TestDispatch_FailingSinkDoesNotBlockOthers(t *testing.T) {
	failing := &stubDestination{name: "broken", err: errors.New("boom")}
	working := &stubDestination{name: "working"}

	d := NewDispatcher(testConfig(), []Destination{failing, working}, &stubEventLog{}, nil)

	d.Dispatch(context.Background(), domain.TrackingEvent{Name: domain.EventAddToCart}, domain.SessionMeta{SessionID: "s1"})

	if got := len(working.received()); got != 1 {
		t.Errorf("working destination received %d events, want 1", got)
	}
}

func TestDispatch_HangingSinkTimesOutIndependently(t *testing.T) {
	hanging := &stubDestination{name: "slow", hang: true}
	working := &stubDestination{name: "working"}

	d := NewDispatcher(testConfig(), []Destination{hanging, working}, &stubEventLog{}, nil)

	done := make(chan struct{})
	go func() {
		d.Dispatch(context.Background(), domain.TrackingEvent{Name: domain.EventAddToCart}, domain.SessionMeta{SessionID: "s1"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatch did not return after the per-destination timeout")
	}

	if got := len(working.received()); got != 1 {
		t.Errorf("working destination received %d events, want 1", got)
	}
}

func TestDispatch_LogsExactlyOneRowPerEvent(t *testing.T) {
	log := &stubEventLog{}
	d := NewDispatcher(testConfig(), []Destination{
		&stubDestination{name: "a"},
		&stubDestination{name: "b", err: errors.New("boom")},
		&stubDestination{name: "c"},
	}, log, nil)

	d.Dispatch(context.Background(), domain.TrackingEvent{Name: domain.EventAddToCart}, domain.SessionMeta{SessionID: "s1"})

	if got := len(log.rows); got != 1 {
		t.Errorf("logged %d behavioral events, want exactly 1", got)
	}
}

func TestDispatch_LogFailureDoesNotStopSinks(t *testing.T) {
	working := &stubDestination{name: "working"}
	d := NewDispatcher(testConfig(), []Destination{working}, &stubEventLog{err: errors.New("db down")}, nil)

	d.Dispatch(context.Background(), domain.TrackingEvent{Name: domain.EventAddToCart}, domain.SessionMeta{SessionID: "s1"})

	if got := len(working.received()); got != 1 {
		t.Errorf("sink skipped after log failure: %d events", got)
	}
}

func TestDispatch_DerivesValueFromItems(t *testing.T) {
	dest := &stubDestination{name: "d"}
	d := NewDispatcher(testConfig(), []Destination{dest}, nil, nil)

	d.Dispatch(context.Background(), domain.TrackingEvent{
		Name: domain.EventAddToCart,
		Items: []domain.Item{
			{ID: 1, Price: 12.95, Quantity: 2},
			{ID: 2, Price: 5.00, Quantity: 1},
		},
	}, domain.SessionMeta{SessionID: "s1"})

	events := dest.received()
	if len(events) != 1 {
		t.Fatal("expected one event")
	}
	want := 12.95*2 + 5.00
	if events[0].Value != want {
		t.Errorf("derived value = %f, want %f", events[0].Value, want)
	}
}

func TestDispatch_ExplicitValueWins(t *testing.T) {
	dest := &stubDestination{name: "d"}
	d := NewDispatcher(testConfig(), []Destination{dest}, nil, nil)

	d.Dispatch(context.Background(), domain.TrackingEvent{
		Name:  domain.EventPurchase,
		Value: 99.90,
		Items: []domain.Item{{ID: 1, Price: 1, Quantity: 1}},
	}, domain.SessionMeta{SessionID: "s1"})

	if got := dest.received()[0].Value; got != 99.90 {
		t.Errorf("value = %f, want explicit 99.90", got)
	}
}

func TestDispatch_HashesTraitsBeforeSend(t *testing.T) {
	dest := &stubDestination{name: "d"}
	d := NewDispatcher(testConfig(), []Destination{dest}, nil, nil)

	d.Dispatch(context.Background(), domain.TrackingEvent{
		Name:   domain.EventIdentify,
		Traits: domain.UserTraits{Email: "Test@Example.com ", Phone: "+31 6 1234 5678"},
	}, domain.SessionMeta{SessionID: "s1"})

	got := dest.received()[0].Hashed
	if got.Email != privacy.HashField("test@example.com") {
		t.Errorf("email hash mismatch: %s", got.Email)
	}
	if got.Phone != privacy.HashField("0612345678") {
		t.Errorf("phone hash mismatch: %s", got.Phone)
	}
}

func TestDispatch_PurchasePropagatesIdentity(t *testing.T) {
	identity := &stubIdentity{}
	d := NewDispatcher(testConfig(), []Destination{&stubDestination{name: "d"}}, nil, identity)

	d.Dispatch(context.Background(), domain.TrackingEvent{
		Name:   domain.EventPurchase,
		Traits: domain.UserTraits{Email: "a@b.nl"},
	}, domain.SessionMeta{SessionID: "s1"})

	if len(identity.calls) != 1 || identity.calls[0].Email != "a@b.nl" {
		t.Errorf("expected identity propagation for purchase, got %+v", identity.calls)
	}

	// non-purchase events do not propagate
	d.Dispatch(context.Background(), domain.TrackingEvent{
		Name:   domain.EventAddToCart,
		Traits: domain.UserTraits{Email: "a@b.nl"},
	}, domain.SessionMeta{SessionID: "s1"})

	if len(identity.calls) != 1 {
		t.Errorf("identity propagated for a non-purchase event")
	}
}

func TestDispatch_AnonymousEventStillDelivered(t *testing.T) {
	dest := &stubDestination{name: "d"}
	log := &stubEventLog{}
	d := NewDispatcher(testConfig(), []Destination{dest}, log, nil)

	d.Dispatch(context.Background(), domain.TrackingEvent{Name: domain.EventAddToCart}, domain.SessionMeta{SessionID: "s1"})

	if len(dest.received()) != 1 {
		t.Error("anonymous event not delivered")
	}
	if got := dest.received()[0].Hashed.Email; got != "" {
		t.Errorf("anonymous event carries a hash: %q", got)
	}
	if len(log.rows) != 1 || log.rows[0].CustomerEmail != nil {
		t.Error("anonymous log row should have no email")
	}
}

func TestFireAndForget_ReturnsImmediately(t *testing.T) {
	hanging := &stubDestination{name: "slow", hang: true}
	d := NewDispatcher(testConfig(), []Destination{hanging}, nil, nil)

	start := time.Now()
	d.FireAndForget(domain.TrackingEvent{Name: domain.EventEngagedSession}, domain.SessionMeta{SessionID: "s1"})
	if elapsed := time.Since(start); elapsed > 20*time.Millisecond {
		t.Errorf("FireAndForget blocked for %v", elapsed)
	}
}
