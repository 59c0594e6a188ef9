package session

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/russellconstruction9/RRsolutions/internal/document"
	"github.com/russellconstruction9/RRsolutions/internal/response"
)

func sampleSession() *Session {
	return New("Estimate-$1000.pdf", response.FormatJSON, []document.Document{
		{Title: "Project Scope of Work", Content: "<h2>Scope</h2>"},
		{Title: "Work Order: Roofing", Content: "<p>Tear off</p>"},
	}, []response.Finding{{Code: response.FindingTotal, Message: "total off by $5.00"}})
}

// exerciseStore runs the behaviour every Store implementation must share.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	s := sampleSession()
	if err := store.Create(ctx, s); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := store.Get(ctx, s.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if diff := cmp.Diff(s, got, cmpopts.EquateApproxTime(time.Millisecond)); diff != "" {
		t.Errorf("session mismatch (-want +got):\n%s", diff)
	}

	updated, err := store.Update(ctx, s.ID, func(s *Session) error {
		if err := s.Set.SetContent(1, "<p>edited</p>"); err != nil {
			return err
		}
		return s.Set.Select(1)
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Set.Selected != 1 || updated.Set.Documents[1].Content != "<p>edited</p>" {
		t.Errorf("expected edit to be applied, got %+v", updated.Set)
	}

	_, err = store.Update(ctx, s.ID, func(s *Session) error {
		s.Set.Documents[0].Content = "lost"
		return s.Set.Select(9)
	})
	if !errors.Is(err, document.ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	got, _ = store.Get(ctx, s.ID)
	if got.Set.Documents[0].Content != "<h2>Scope</h2>" {
		t.Errorf("expected failed update to be discarded, got %q", got.Set.Documents[0].Content)
	}

	if err := store.Delete(ctx, s.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, s.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Delete(ctx, s.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
	if _, err := store.Update(ctx, "missing", func(*Session) error { return nil }); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound updating missing session, got %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(time.Hour))
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	s := sampleSession()
	store.Create(context.Background(), s)

	got, _ := store.Get(context.Background(), s.ID)
	got.Set.Documents[0].Content = "mutated"

	again, _ := store.Get(context.Background(), s.ID)
	if again.Set.Documents[0].Content != "<h2>Scope</h2>" {
		t.Errorf("expected stored session to be isolated from callers, got %q", again.Set.Documents[0].Content)
	}
}

func TestMemoryStore_Cleanup(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	stale := sampleSession()
	stale.UpdatedAt = time.Now().Add(-2 * time.Minute)
	fresh := sampleSession()
	store.Create(context.Background(), stale)
	store.Create(context.Background(), fresh)

	if n := store.Cleanup(); n != 1 {
		t.Fatalf("expected 1 evicted, got %d", n)
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 session left, got %d", store.Len())
	}
	if _, err := store.Get(context.Background(), fresh.ID); err != nil {
		t.Errorf("expected fresh session to survive: %v", err)
	}
}

func TestNew(t *testing.T) {
	s := New("a.pdf", response.FormatMarkdown, nil, nil)
	if s.ID == "" {
		t.Error("expected generated id")
	}
	if s.Warnings == nil {
		t.Error("expected non-nil warnings")
	}
	if _, ok := s.Set.Active(); ok {
		t.Error("expected no active document in an empty set")
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	rdb, err := DialRedis(context.Background(), addr, os.Getenv("REDIS_PASSWORD"), 0)
	if err != nil {
		t.Fatalf("DialRedis: %v", err)
	}
	defer rdb.Close()

	exerciseStore(t, NewRedisStore(rdb, time.Minute))
}
