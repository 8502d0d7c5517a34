package cron

import (
	"context"
	"errors"
	"testing"
	"time"
)

type memoryLeases struct {
	values map[string]string
	err    error
}

func (m *memoryLeases) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = value.(string)
	return true, nil
}

func (m *memoryLeases) CompareAndDelete(_ context.Context, key, expected string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if m.values[key] != expected {
		return false, nil
	}
	delete(m.values, key)
	return true, nil
}

func TestRedisLockIsExclusiveAndOwnerScoped(t *testing.T) {
	store := &memoryLeases{values: map[string]string{}}
	first, err := NewRedisLock(store, "ds:lock:cron-worker:test", time.Minute)
	if err != nil {
		t.Fatalf("new lock: %v", err)
	}
	second, _ := NewRedisLock(store, "ds:lock:cron-worker:test", time.Minute)
	ctx := context.Background()

	if ok, err := first.Acquire(ctx); err != nil || !ok {
		t.Fatalf("first acquire: ok=%v err=%v", ok, err)
	}
	if ok, _ := second.Acquire(ctx); ok {
		t.Fatalf("second instance must not acquire a held lock")
	}
	if err := second.Release(ctx); err != nil {
		t.Fatalf("release by non-owner: %v", err)
	}
	if _, ok := store.values["ds:lock:cron-worker:test"]; !ok {
		t.Fatalf("non-owner release must keep the lock")
	}
	if err := first.Release(ctx); err != nil {
		t.Fatalf("owner release: %v", err)
	}
	if ok, _ := second.Acquire(ctx); !ok {
		t.Fatalf("lock should be free after owner release")
	}
}

func TestRedisLockExpiredLeaseDoesNotFreeNewOwner(t *testing.T) {
	store := &memoryLeases{values: map[string]string{}}
	stale, _ := NewRedisLock(store, "lease", time.Minute)
	fresh, _ := NewRedisLock(store, "lease", time.Minute)
	ctx := context.Background()

	if ok, _ := stale.Acquire(ctx); !ok {
		t.Fatalf("stale acquire failed")
	}
	// lease expires while the slow cycle is still running
	delete(store.values, "lease")
	if ok, _ := fresh.Acquire(ctx); !ok {
		t.Fatalf("fresh acquire failed")
	}
	if err := stale.Release(ctx); err != nil {
		t.Fatalf("stale release: %v", err)
	}
	if store.values["lease"] != fresh.token {
		t.Fatalf("stale owner released a lease it no longer holds")
	}
}

func TestRedisLockSurfacesStoreErrors(t *testing.T) {
	store := &memoryLeases{values: map[string]string{}, err: errors.New("connection refused")}
	lock, _ := NewRedisLock(store, "lease", 0)
	if _, err := lock.Acquire(context.Background()); err == nil {
		t.Fatalf("expected acquire error")
	}
	if lock.ttl != defaultLockTTL {
		t.Fatalf("expected default ttl, got %v", lock.ttl)
	}
}

func TestNewRedisLockValidates(t *testing.T) {
	if _, err := NewRedisLock(nil, "k", 0); err == nil {
		t.Fatalf("expected error for nil client")
	}
	if _, err := NewRedisLock(&memoryLeases{values: map[string]string{}}, "", 0); err == nil {
		t.Fatalf("expected error for empty key")
	}
}
