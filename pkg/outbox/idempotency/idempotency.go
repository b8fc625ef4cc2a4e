// Package idempotency guards event consumers against duplicate delivery.
// Pub/Sub is at-least-once, so every consumer claims an event before
// handling it and confirms the claim afterwards. The two-step protocol
// bounds the damage of a worker dying mid-handle: an unconfirmed claim
// expires after claimTTL and the redelivered event is processed again,
// instead of being mistaken for done and dropped.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/redis"
)

// State describes what a Claim found.
type State int

const (
	// StateFresh means the claim was taken; the caller owns the event.
	StateFresh State = iota
	// StateInFlight means another worker holds an unconfirmed claim. The
	// caller should requeue the event and try again later.
	StateInFlight
	// StateProcessed means the event was handled to completion before.
	StateProcessed
)

const (
	// claimTTL is how long an unconfirmed claim blocks redelivery. It needs
	// to outlast one handling attempt and nothing more.
	claimTTL = 5 * time.Minute

	claimMarker = "claim"
	doneMarker  = "done"
)

// Manager tracks processed event IDs per consumer in Redis. Keys follow
// the `lc:idempotency:evt:processed:<consumer>:<event_id>` pattern.
type Manager struct {
	store     redis.IdempotencyStore
	retention time.Duration
}

// NewManager builds an idempotency guard. Confirmed events stay marked for
// the retention period, which should exceed the broker's maximum redelivery
// horizon.
func NewManager(store redis.IdempotencyStore, retention time.Duration) (*Manager, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if retention < 0 {
		return nil, errors.New("retention must be non-negative")
	}
	return &Manager{
		store:     store,
		retention: retention,
	}, nil
}

// Claim attempts to take ownership of the event for this consumer.
func (m *Manager) Claim(ctx context.Context, consumer string, eventID uuid.UUID) (State, error) {
	key, err := m.processedKey(consumer, eventID)
	if err != nil {
		return StateFresh, err
	}

	taken, err := m.store.SetNX(ctx, key, claimMarker, claimTTL)
	if err != nil {
		return StateFresh, err
	}
	if taken {
		return StateFresh, nil
	}

	value, err := m.store.Get(ctx, key)
	if errors.Is(err, goredis.Nil) {
		// The competing claim expired between our SETNX and GET. Treat it
		// as in flight; the redelivery will claim cleanly.
		return StateInFlight, nil
	}
	if err != nil {
		return StateFresh, err
	}
	if value == doneMarker {
		return StateProcessed, nil
	}
	return StateInFlight, nil
}

// Confirm marks a claimed event as fully processed for the retention
// period.
func (m *Manager) Confirm(ctx context.Context, consumer string, eventID uuid.UUID) error {
	key, err := m.processedKey(consumer, eventID)
	if err != nil {
		return err
	}
	return m.store.Set(ctx, key, doneMarker, m.retention)
}

// Release gives up a claim after a failed handling attempt so the
// redelivered event is retried immediately.
func (m *Manager) Release(ctx context.Context, consumer string, eventID uuid.UUID) error {
	key, err := m.processedKey(consumer, eventID)
	if err != nil {
		return err
	}
	return m.store.Del(ctx, key)
}

func (m *Manager) processedKey(consumer string, eventID uuid.UUID) (string, error) {
	if consumer == "" {
		return "", errors.New("consumer name is required")
	}
	if eventID == uuid.Nil {
		return "", errors.New("event id is required")
	}
	scope := fmt.Sprintf("evt:processed:%s", consumer)
	return m.store.IdempotencyKey(scope, eventID.String()), nil
}
