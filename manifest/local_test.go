package manifest

import (
	"context"
	"reflect"
	"testing"
)

func TestLocalAddKeysDrop(t *testing.T) {
	ctx := context.Background()
	m := NewLocalManifest()
	t.Cleanup(func() { _ = m.Close(ctx) })

	if err := m.Add(ctx, "app-v1", "GET http://a/x"); err != nil {
		t.Fatal(err)
	}
	if err := m.Add(ctx, "app-v1", "GET http://a/y"); err != nil {
		t.Fatal(err)
	}
	// idempotent
	if err := m.Add(ctx, "app-v1", "GET http://a/x"); err != nil {
		t.Fatal(err)
	}

	keys, err := m.Keys(ctx, "app-v1")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"GET http://a/x", "GET http://a/y"}
	if !reflect.DeepEqual(keys, want) {
		t.Fatalf("keys=%v want %v", keys, want)
	}

	if err := m.Drop(ctx, "app-v1"); err != nil {
		t.Fatal(err)
	}
	keys, err = m.Keys(ctx, "app-v1")
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 0 {
		t.Fatalf("expected no keys after drop, got %v", keys)
	}
}

func TestLocalKeysMissingGenerationIsEmpty(t *testing.T) {
	ctx := context.Background()
	m := NewLocalManifest()
	t.Cleanup(func() { _ = m.Close(ctx) })

	keys, err := m.Keys(ctx, "nope")
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 0 {
		t.Fatalf("expected empty, got %v", keys)
	}
}

func TestLocalGenerationsFiltersByPrefixSorted(t *testing.T) {
	ctx := context.Background()
	m := NewLocalManifest()
	t.Cleanup(func() { _ = m.Close(ctx) })

	for _, g := range []string{"app-v2", "app-runtime", "other-v1", "app-v1"} {
		if err := m.Add(ctx, g, "k"); err != nil {
			t.Fatal(err)
		}
	}

	got, err := m.Generations(ctx, "app-")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"app-runtime", "app-v1", "app-v2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("generations=%v want %v", got, want)
	}
}

func TestLocalDropUnknownGenerationIsNoop(t *testing.T) {
	ctx := context.Background()
	m := NewLocalManifest()
	t.Cleanup(func() { _ = m.Close(ctx) })

	if err := m.Drop(ctx, "ghost"); err != nil {
		t.Fatalf("drop unknown: %v", err)
	}
}
