package sqlite

import (
	"context"
	"path/filepath"
	"testing"
)

func TestMediumRoundTripAndUpsert(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "cmmc_test.db")

	medium, err := OpenMedium(ctx, dbPath)
	if err != nil {
		t.Fatalf("open medium: %v", err)
	}
	defer func() { _ = medium.Close() }()

	if _, ok, err := medium.Get(ctx, "cmmc-inventory"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}

	if err := medium.Set(ctx, "cmmc-inventory", `{"applications":[]}`); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := medium.Set(ctx, "cmmc-inventory", `{"applications":[],"zones":[]}`); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if err := medium.Set(ctx, "another", "x"); err != nil {
		t.Fatalf("set another: %v", err)
	}

	value, ok, err := medium.Get(ctx, "cmmc-inventory")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if value != `{"applications":[],"zones":[]}` {
		t.Fatalf("expected overwritten value, got %q", value)
	}

	entries, err := medium.Entries(ctx)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 2 || entries[0].Key != "another" || entries[1].Key != "cmmc-inventory" {
		t.Fatalf("unexpected entries: %+v", entries)
	}

	if err := medium.Remove(ctx, "another"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := medium.Remove(ctx, "never-existed"); err != nil {
		t.Fatalf("remove missing: %v", err)
	}
	entries, _ = medium.Entries(ctx)
	if len(entries) != 1 {
		t.Fatalf("expected one entry after remove, got %d", len(entries))
	}
}

func TestMediumSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "reopen.db")

	first, err := OpenMedium(ctx, dbPath)
	if err != nil {
		t.Fatalf("open first: %v", err)
	}
	if err := first.Set(ctx, "k", "persisted ✓"); err != nil {
		t.Fatalf("set: %v", err)
	}
	_ = first.Close()

	second, err := OpenMedium(ctx, dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = second.Close() }()

	value, ok, err := second.Get(ctx, "k")
	if err != nil || !ok || value != "persisted ✓" {
		t.Fatalf("expected persisted value, got %q ok=%v err=%v", value, ok, err)
	}
}
