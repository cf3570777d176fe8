package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/radieske/ovo-banking-gateway/internal/payments-service/vfd"
	"github.com/radieske/ovo-banking-gateway/pkg/contracts/events"
)

func ptr(v int64) *int64 { return &v }

func TestApply(t *testing.T) {
	tests := []struct {
		name      string
		res       vfd.Result
		applied   bool
		wantBal   int64
		wantStale bool
		wantNotes int
	}{
		{"success with balance", vfd.Result{Success: true, Balance: ptr(5000)}, true, 5000, false, 1},
		{"success without balance", vfd.Result{Success: true}, true, 10000, true, 1},
		{"failure", vfd.Result{Success: false, Balance: ptr(1)}, false, 10000, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New("u1", 10000)
			if got := s.Apply(tt.res, events.Notification{ID: "n1"}); got != tt.applied {
				t.Fatalf("Apply = %v, want %v", got, tt.applied)
			}
			snap := s.Snapshot()
			if snap.BalanceKobo != tt.wantBal || snap.Stale != tt.wantStale || len(snap.Notifications) != tt.wantNotes {
				t.Errorf("snapshot = %+v", snap)
			}
		})
	}
}

func TestApplyWithoutNotification(t *testing.T) {
	s := New("u1", 100)
	if !s.Apply(vfd.Result{Success: true, Balance: ptr(700)}, events.Notification{}) {
		t.Fatal("Apply = false")
	}
	snap := s.Snapshot()
	if snap.BalanceKobo != 700 || len(snap.Notifications) != 0 {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestNotificationsBounded(t *testing.T) {
	s := New("u1", 0)
	for i := 0; i < MaxNotifications+5; i++ {
		s.Notify(events.Notification{ID: fmt.Sprint(i)})
	}
	snap := s.Snapshot()
	if len(snap.Notifications) != MaxNotifications {
		t.Fatalf("len = %d", len(snap.Notifications))
	}
	if snap.Notifications[0].ID != fmt.Sprint(MaxNotifications+4) {
		t.Errorf("newest first expected, got %s", snap.Notifications[0].ID)
	}
}

type fakeLoader struct {
	mu    sync.Mutex
	bal   int64
	err   error
	calls int
}

func (f *fakeLoader) Balance(context.Context, string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.bal, f.err
}

func newStore(t *testing.T, l BalanceLoader) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewStore(rdb, l, time.Hour), mr
}

func TestStoreLoadsOnMissAndPersists(t *testing.T) {
	loader := &fakeLoader{bal: 7500}
	st, mr := newStore(t, loader)
	ctx := context.Background()

	sess, err := st.Get(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if sess.Snapshot().BalanceKobo != 7500 {
		t.Errorf("balance = %d", sess.Snapshot().BalanceKobo)
	}
	if !mr.Exists("session:u1") {
		t.Fatal("snapshot not written")
	}
	if ttl := mr.TTL("session:u1"); ttl != time.Hour {
		t.Errorf("ttl = %v", ttl)
	}

	if _, err := st.Get(ctx, "u1"); err != nil {
		t.Fatal(err)
	}
	if loader.calls != 1 {
		t.Errorf("loader calls = %d, want 1", loader.calls)
	}
}

func TestStoreReloadsStaleBalance(t *testing.T) {
	loader := &fakeLoader{bal: 100}
	st, _ := newStore(t, loader)
	ctx := context.Background()

	if _, err := st.Update(ctx, "u1", func(s *Session) {
		s.Apply(vfd.Result{Success: true}, events.Notification{ID: "n"})
	}); err != nil {
		t.Fatal(err)
	}

	loader.bal = 250
	sess, err := st.Get(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	snap := sess.Snapshot()
	if snap.Stale || snap.BalanceKobo != 250 || len(snap.Notifications) != 1 {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestStoreLoaderError(t *testing.T) {
	st, _ := newStore(t, &fakeLoader{err: errors.New("db down")})
	if _, err := st.Get(context.Background(), "u1"); err == nil {
		t.Fatal("expected error")
	}
}

func TestStoreConcurrentUpdates(t *testing.T) {
	st, _ := newStore(t, &fakeLoader{})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = st.Update(ctx, "u1", func(s *Session) {
				s.Notify(events.Notification{ID: fmt.Sprint(i)})
			})
		}(i)
	}
	wg.Wait()

	sess, err := st.Get(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if n := len(sess.Snapshot().Notifications); n != 20 {
		t.Errorf("notifications = %d, want 20", n)
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if len(st.locks) != 0 {
		t.Errorf("user locks kept after updates: %d", len(st.locks))
	}
}

func TestStoreReleasesLocksPerUser(t *testing.T) {
	st, _ := newStore(t, &fakeLoader{})
	ctx := context.Background()
	for i := 0; i < 50; i++ {
		if _, err := st.Update(ctx, fmt.Sprintf("u%d", i), func(*Session) {}); err != nil {
			t.Fatal(err)
		}
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if len(st.locks) != 0 {
		t.Errorf("locks = %d, want 0", len(st.locks))
	}
}
