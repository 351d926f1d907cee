package composition

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestMemoryRepository_SaveAndFind(t *testing.T) {
	repo := NewMemoryRepository(0)
	ctx := context.Background()
	c := New()

	if err := repo.Save(ctx, c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	saved, err := repo.FindByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.ID != c.ID {
		t.Errorf("expected ID %s, got %s", c.ID, saved.ID)
	}
}

func TestMemoryRepository_Save_Update(t *testing.T) {
	repo := NewMemoryRepository(0)
	ctx := context.Background()
	c := New()
	_ = repo.Save(ctx, c)

	_ = c.TransitionTo(StatusStaging)
	_ = repo.Save(ctx, c)

	saved, _ := repo.FindByID(ctx, c.ID)
	if saved.Status != StatusStaging {
		t.Errorf("expected status %s, got %s", StatusStaging, saved.Status)
	}

	all, _ := repo.List(ctx)
	if len(all) != 1 {
		t.Errorf("updating a record should not duplicate it, got %d", len(all))
	}
}

func TestMemoryRepository_FindByID_NotFound(t *testing.T) {
	repo := NewMemoryRepository(0)

	_, err := repo.FindByID(context.Background(), "video-1-000000000000")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryRepository_ReturnsClones(t *testing.T) {
	repo := NewMemoryRepository(0)
	ctx := context.Background()
	c := New()
	_ = repo.Save(ctx, c)

	// Mutating the caller's copy after Save must not leak in
	c.AudioFilename = "changed.mp3"

	found, _ := repo.FindByID(ctx, c.ID)
	found.ImageFilename = "changed.png"
	_ = found.Fail("boom")

	original, _ := repo.FindByID(ctx, c.ID)
	if original.AudioFilename != "" || original.ImageFilename != "" {
		t.Error("repository record should be isolated from callers")
	}
	if original.Status != StatusPending {
		t.Errorf("expected status %s, got %s", StatusPending, original.Status)
	}
}

func TestMemoryRepository_List_NewestFirst(t *testing.T) {
	repo := NewMemoryRepository(0)
	ctx := context.Background()

	base := time.Now()
	for i := 0; i < 3; i++ {
		c := NewWithID(fmt.Sprintf("video-%d-000000000000", i))
		c.CreatedAt = base.Add(time.Duration(i) * time.Second)
		_ = repo.Save(ctx, c)
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}
	want := []string{"video-2-000000000000", "video-1-000000000000", "video-0-000000000000"}
	for i, c := range all {
		if c.ID != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], c.ID)
		}
	}
}

func TestMemoryRepository_EvictsOldest(t *testing.T) {
	repo := NewMemoryRepository(2)
	ctx := context.Background()

	first := New()
	second := New()
	third := New()
	for _, c := range []*Composition{first, second, third} {
		_ = repo.Save(ctx, c)
	}

	if _, err := repo.FindByID(ctx, first.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected oldest record to be evicted, got %v", err)
	}
	for _, c := range []*Composition{second, third} {
		if _, err := repo.FindByID(ctx, c.ID); err != nil {
			t.Errorf("expected %s to be kept: %v", c.ID, err)
		}
	}
	all, _ := repo.List(ctx)
	if len(all) != 2 {
		t.Errorf("expected 2 records, got %d", len(all))
	}
}

func TestMemoryRepository_Concurrent(t *testing.T) {
	repo := NewMemoryRepository(0)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := New()
			_ = repo.Save(ctx, c)
			_, _ = repo.FindByID(ctx, c.ID)
			_, _ = repo.List(ctx)
		}()
	}
	wg.Wait()

	all, _ := repo.List(ctx)
	if len(all) != 50 {
		t.Errorf("expected 50 records, got %d", len(all))
	}
}
