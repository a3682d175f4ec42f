package stripewebhook

import (
	"context"
	"time"

	pkgerrors "github.com/davidfales/soccertraining-backend/pkg/errors"
	"github.com/davidfales/soccertraining-backend/pkg/redis"
)

const eventScope = "stripe_event"

// EventGuard deduplicates webhook deliveries. Stripe retries events, so
// each event id is claimed exactly once for the configured window.
type EventGuard struct {
	store redis.IdempotencyStore
	ttl   time.Duration
}

// NewEventGuard builds a guard over the shared Redis store.
func NewEventGuard(store redis.IdempotencyStore, ttl time.Duration) (*EventGuard, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "idempotency store required")
	}
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &EventGuard{store: store, ttl: ttl}, nil
}

// CheckAndMark claims the event id. It returns false when another
// delivery already claimed it.
func (g *EventGuard) CheckAndMark(ctx context.Context, eventID string) (bool, error) {
	key := g.store.IdempotencyKey(eventScope, eventID)
	claimed, err := g.store.SetNX(ctx, key, "1", g.ttl)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim webhook event")
	}
	return claimed, nil
}

// Release frees a claimed event id so a Stripe retry can reprocess it
// after a handling failure.
func (g *EventGuard) Release(ctx context.Context, eventID string) error {
	key := g.store.IdempotencyKey(eventScope, eventID)
	return g.store.Del(ctx, key)
}
