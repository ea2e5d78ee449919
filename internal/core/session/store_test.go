package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sandia/users-manager/internal/core/domain"
)

func testUser(username string) *domain.User {
	return &domain.User{
		Ident:  domain.Identity{ID: "0123456789abcdef01234567", Username: username},
		Gender: domain.GenderOther,
	}
}

func TestStore_CreateAndGet(t *testing.T) {
	store := NewStore(time.Hour)

	session, err := store.Create(context.Background(), testUser("alice"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if session.ID == "" {
		t.Fatalf("expected a session id")
	}

	got, err := store.Get(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got == nil || got.Profile.Identity().Username != "alice" {
		t.Fatalf("unexpected session: %+v", got)
	}
}

func TestStore_UnknownIDIsNil(t *testing.T) {
	store := NewStore(time.Hour)

	got, err := store.Get(context.Background(), "nope")
	if err != nil || got != nil {
		t.Fatalf("expected (nil, nil), got %v / %v", got, err)
	}
}

func TestStore_ExpiredSessionIsNil(t *testing.T) {
	store := NewStore(time.Minute)
	now := time.Now()
	store.now = func() time.Time { return now }

	session, err := store.Create(context.Background(), testUser("alice"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	store.now = func() time.Time { return now.Add(2 * time.Minute) }
	got, err := store.Get(context.Background(), session.ID)
	if err != nil || got != nil {
		t.Fatalf("expected expired session to be nil, got %v / %v", got, err)
	}
}

func TestStore_Delete(t *testing.T) {
	store := NewStore(time.Hour)

	session, err := store.Create(context.Background(), testUser("alice"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := store.Delete(context.Background(), session.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if got, _ := store.Get(context.Background(), session.ID); got != nil {
		t.Fatalf("session survived delete")
	}

	// Deleting an unknown id is a no-op.
	if err := store.Delete(context.Background(), "nope"); err != nil {
		t.Fatalf("delete of unknown id failed: %v", err)
	}
}

func TestStore_ConcurrentSessions(t *testing.T) {
	store := NewStore(time.Hour)

	var wg sync.WaitGroup
	ids := make([]string, 16)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			session, err := store.Create(context.Background(), testUser("alice"))
			if err != nil {
				t.Errorf("create failed: %v", err)
				return
			}
			ids[i] = session.ID
		}(i)
	}
	wg.Wait()

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			t.Fatalf("missing session id")
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate session id %s", id)
		}
		seen[id] = struct{}{}
	}
}
