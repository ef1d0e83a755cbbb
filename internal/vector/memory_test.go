package vector

import (
	"context"
	"errors"
	"testing"
)

func TestMemorySearchRanksByCosine(t *testing.T) {
	ctx := context.Background()
	idx := NewMemory(3)

	records := []Record{
		{ItemID: "c", Vector: []float32{0, 1, 0}},
		{ItemID: "a", Vector: []float32{1, 0, 0}},
		{ItemID: "b", Vector: []float32{0.9, 0.1, 0}},
	}
	if err := idx.Upsert(ctx, records); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	hits, err := idx.Search(ctx, []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if len(hits) != 2 {
		t.Fatalf("got %d hits, want 2", len(hits))
	}
	if hits[0].ItemID != "a" || hits[1].ItemID != "b" {
		t.Errorf("got order [%s %s], want [a b]", hits[0].ItemID, hits[1].ItemID)
	}
}

func TestMemorySearchTieBreaksByID(t *testing.T) {
	ctx := context.Background()
	idx := NewMemory(2)

	// Identical vectors: ordering must fall back to item id ascending.
	records := []Record{
		{ItemID: "zeta", Vector: []float32{1, 1}},
		{ItemID: "alpha", Vector: []float32{1, 1}},
		{ItemID: "mid", Vector: []float32{1, 1}},
	}
	if err := idx.Upsert(ctx, records); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	hits, err := idx.Search(ctx, []float32{1, 1}, 3)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	want := []string{"alpha", "mid", "zeta"}
	for i, w := range want {
		if hits[i].ItemID != w {
			t.Errorf("hits[%d] = %s, want %s", i, hits[i].ItemID, w)
		}
	}
}

func TestMemorySearchUnbuiltIndex(t *testing.T) {
	idx := NewMemory(2)

	_, err := idx.Search(context.Background(), []float32{1, 0}, 5)
	if !errors.Is(err, ErrNotBuilt) {
		t.Errorf("Search() on empty index error = %v, want ErrNotBuilt", err)
	}
}

func TestMemoryUpsertDimensionMismatch(t *testing.T) {
	idx := NewMemory(4)

	err := idx.Upsert(context.Background(), []Record{{ItemID: "x", Vector: []float32{1, 2}}})
	if err == nil {
		t.Error("Upsert() with wrong dimension, want error")
	}
}

func TestMemoryReset(t *testing.T) {
	ctx := context.Background()
	idx := NewMemory(2)

	if err := idx.Upsert(ctx, []Record{{ItemID: "a", Vector: []float32{1, 0}}}); err != nil {
		t.Fatal(err)
	}
	if err := idx.Reset(ctx); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	n, _ := idx.Count(ctx)
	if n != 0 {
		t.Errorf("Count() after reset = %d, want 0", n)
	}
	if _, err := idx.Search(ctx, []float32{1, 0}, 1); !errors.Is(err, ErrNotBuilt) {
		t.Errorf("Search() after reset error = %v, want ErrNotBuilt", err)
	}
}

func TestMemorySearchDeterminism(t *testing.T) {
	ctx := context.Background()
	idx := NewMemory(3)

	records := []Record{
		{ItemID: "p1", Vector: []float32{0.2, 0.8, 0.1}},
		{ItemID: "p2", Vector: []float32{0.7, 0.3, 0.5}},
		{ItemID: "p3", Vector: []float32{0.1, 0.1, 0.9}},
		{ItemID: "p4", Vector: []float32{0.5, 0.5, 0.5}},
	}
	if err := idx.Upsert(ctx, records); err != nil {
		t.Fatal(err)
	}

	query := []float32{0.4, 0.4, 0.4}
	first, err := idx.Search(ctx, query, 4)
	if err != nil {
		t.Fatal(err)
	}

	for run := 0; run < 5; run++ {
		again, err := idx.Search(ctx, query, 4)
		if err != nil {
			t.Fatal(err)
		}
		for i := range first {
			if again[i].ItemID != first[i].ItemID || again[i].Score != first[i].Score {
				t.Fatalf("run %d: result %d diverged: got %+v, want %+v", run, i, again[i], first[i])
			}
		}
	}
}
