package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryGetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if err := m.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := m.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "v" {
		t.Errorf("Get() = %v, want v", got)
	}
}

func TestMemoryMissingKey(t *testing.T) {
	m := NewMemory()

	got, err := m.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Errorf("Get(missing) = %v, want nil", got)
	}
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	m.Set(ctx, "k", "v", -time.Second)

	got, _ := m.Get(ctx, "k")
	if got != nil {
		t.Errorf("expired entry should be gone, got %v", got)
	}
}

func TestMemoryDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	m.Set(ctx, "k", "v", time.Minute)
	if err := m.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	got, _ := m.Get(ctx, "k")
	if got != nil {
		t.Errorf("deleted entry should be gone, got %v", got)
	}
}

func TestMemoryOverwrite(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	m.Set(ctx, "k", "old", time.Minute)
	m.Set(ctx, "k", "new", time.Minute)

	got, _ := m.Get(ctx, "k")
	if got != "new" {
		t.Errorf("Get() = %v, want new", got)
	}
}
