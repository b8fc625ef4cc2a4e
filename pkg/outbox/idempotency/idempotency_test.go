package idempotency

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

type fakeStore struct {
	values      map[string]string
	setNXTTL    time.Duration
	setTTL      time.Duration
	setNXErr    error
	getErr      error
	setErr      error
	lastDeleted string
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: make(map[string]string)}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	value, ok := f.values[key]
	if !ok {
		return "", goredis.Nil
	}
	return value, nil
}

func (f *fakeStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.setTTL = ttl
	f.values[key] = fmt.Sprint(value)
	return nil
}

func (f *fakeStore) SetNX(_ context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if f.setNXErr != nil {
		return false, f.setNXErr
	}
	f.setNXTTL = ttl
	if _, ok := f.values[key]; ok {
		return false, nil
	}
	f.values[key] = fmt.Sprint(value)
	return true, nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return "lc:idempotency:" + scope + ":" + id
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	if len(keys) > 0 {
		f.lastDeleted = keys[0]
	}
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

func TestClaim_Fresh(t *testing.T) {
	store := newFakeStore()
	manager, err := NewManager(store, 24*time.Hour)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	eventID := uuid.New()
	state, err := manager.Claim(context.Background(), "notifications-worker", eventID)
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if state != StateFresh {
		t.Fatalf("expected StateFresh, got %v", state)
	}

	expectedKey := "lc:idempotency:evt:processed:notifications-worker:" + eventID.String()
	if store.values[expectedKey] != claimMarker {
		t.Fatalf("expected claim marker at %q, got %q", expectedKey, store.values[expectedKey])
	}
	if store.setNXTTL != claimTTL {
		t.Fatalf("claim must use the short claim ttl, got %v", store.setNXTTL)
	}
}

func TestClaim_InFlight(t *testing.T) {
	store := newFakeStore()
	manager, err := NewManager(store, 24*time.Hour)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	eventID := uuid.New()
	if _, err := manager.Claim(context.Background(), "notifications-worker", eventID); err != nil {
		t.Fatalf("first Claim: %v", err)
	}
	state, err := manager.Claim(context.Background(), "notifications-worker", eventID)
	if err != nil {
		t.Fatalf("second Claim: %v", err)
	}
	if state != StateInFlight {
		t.Fatalf("unconfirmed claim should read as in flight, got %v", state)
	}
}

func TestClaim_ProcessedAfterConfirm(t *testing.T) {
	store := newFakeStore()
	manager, err := NewManager(store, 12*time.Hour)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	eventID := uuid.New()
	if _, err := manager.Claim(context.Background(), "notifications-worker", eventID); err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if err := manager.Confirm(context.Background(), "notifications-worker", eventID); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if store.setTTL != 12*time.Hour {
		t.Fatalf("confirm must use the retention ttl, got %v", store.setTTL)
	}

	state, err := manager.Claim(context.Background(), "notifications-worker", eventID)
	if err != nil {
		t.Fatalf("Claim after Confirm: %v", err)
	}
	if state != StateProcessed {
		t.Fatalf("expected StateProcessed, got %v", state)
	}
}

func TestClaim_ReleaseMakesEventClaimableAgain(t *testing.T) {
	store := newFakeStore()
	manager, err := NewManager(store, time.Hour)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	eventID := uuid.New()
	if _, err := manager.Claim(context.Background(), "notifications-worker", eventID); err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if err := manager.Release(context.Background(), "notifications-worker", eventID); err != nil {
		t.Fatalf("Release: %v", err)
	}
	expected := "lc:idempotency:evt:processed:notifications-worker:" + eventID.String()
	if store.lastDeleted != expected {
		t.Fatalf("unexpected released key %q", store.lastDeleted)
	}

	state, err := manager.Claim(context.Background(), "notifications-worker", eventID)
	if err != nil {
		t.Fatalf("Claim after Release: %v", err)
	}
	if state != StateFresh {
		t.Fatalf("released event should be claimable again, got %v", state)
	}
}

type contestedStore struct {
	*fakeStore
}

func (s *contestedStore) SetNX(context.Context, string, any, time.Duration) (bool, error) {
	return false, nil
}

func TestClaim_CompetingClaimExpiresBeforeGet(t *testing.T) {
	store := &contestedStore{fakeStore: newFakeStore()}
	manager, err := NewManager(store, time.Hour)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	state, err := manager.Claim(context.Background(), "notifications-worker", uuid.New())
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if state != StateInFlight {
		t.Fatalf("vanished claim should read as in flight, got %v", state)
	}
}

func TestClaim_StoreError(t *testing.T) {
	store := newFakeStore()
	store.setNXErr = errors.New("boom")
	manager, err := NewManager(store, time.Hour)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	if _, err := manager.Claim(context.Background(), "notifications-worker", uuid.New()); err == nil {
		t.Fatal("expected error")
	}
}

func TestManagerValidation(t *testing.T) {
	if _, err := NewManager(nil, time.Hour); err == nil {
		t.Fatal("expected error for nil store")
	}
	if _, err := NewManager(newFakeStore(), -time.Hour); err == nil {
		t.Fatal("expected error for negative retention")
	}

	manager, err := NewManager(newFakeStore(), time.Hour)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if _, err := manager.Claim(context.Background(), "", uuid.New()); err == nil {
		t.Fatal("expected error for empty consumer")
	}
	if _, err := manager.Claim(context.Background(), "notifications-worker", uuid.Nil); err == nil {
		t.Fatal("expected error for nil event id")
	}
}
