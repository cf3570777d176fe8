package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/ovo-banking-gateway/internal/shared/alerts"
	"github.com/radieske/ovo-banking-gateway/pkg/contracts/events"
)

type fakeStore struct {
	prefs    alerts.Preferences
	prefsErr error
	seen     map[string]bool
	inserted []events.Notification
}

func (f *fakeStore) Preferences(context.Context, string) (alerts.Preferences, error) {
	return f.prefs, f.prefsErr
}

func (f *fakeStore) InsertNotification(_ context.Context, n events.Notification) (bool, error) {
	key := n.Reference + "/" + n.Type
	if f.seen[key] {
		return false, nil
	}
	f.seen[key] = true
	f.inserted = append(f.inserted, n)
	return true, nil
}

type fakeBroadcaster struct{ updates []events.WalletUpdate }

func (f *fakeBroadcaster) Publish(_ context.Context, u events.WalletUpdate) error {
	f.updates = append(f.updates, u)
	return nil
}

type fakeReader struct {
	msgs      []kafka.Message
	committed []kafka.Message
	cancel    context.CancelFunc
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if len(f.msgs) == 0 {
		f.cancel()
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	m := f.msgs[0]
	f.msgs = f.msgs[1:]
	return m, nil
}

func (f *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	f.committed = append(f.committed, msgs...)
	return nil
}

type fakeWriter struct{ msgs []kafka.Message }

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func newProcessor() (*Processor, *fakeStore, *fakeBroadcaster) {
	st := &fakeStore{prefs: alerts.DefaultPreferences(), seen: map[string]bool{}}
	br := &fakeBroadcaster{}
	return &Processor{
		Log:         zap.NewNop(),
		Repo:        st,
		Broadcaster: br,
		Now:         func() time.Time { return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC) },
	}, st, br
}

func encode(t *testing.T, e events.TransactionEvent) []byte {
	t.Helper()
	b, err := json.Marshal(e)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestHandleLargeDebitLowBalance(t *testing.T) {
	p, st, br := newProcessor()
	bal := int64(50_00)
	ev := events.TransactionEvent{
		Type: events.TypeTransactionCompleted, UserID: "u1", Reference: "ref-1",
		Category: "transfer", Direction: events.DirectionDebit, AmountKobo: 60_000_00, BalanceKobo: &bal,
	}
	if err := p.Handle(context.Background(), encode(t, ev)); err != nil {
		t.Fatal(err)
	}

	var types []string
	for _, n := range st.inserted {
		types = append(types, n.Type)
	}
	want := []string{alerts.TypeDebit, alerts.TypeLargeTransaction, alerts.TypeLowBalance}
	if len(types) != len(want) {
		t.Fatalf("types = %v", types)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("types = %v, want %v", types, want)
		}
	}

	if len(br.updates) != 3 {
		t.Fatalf("updates = %d", len(br.updates))
	}
	if br.updates[0].BalanceKobo == nil || br.updates[1].BalanceKobo != nil {
		t.Fatal("balance must travel only with the first update")
	}
}

func TestHandleRedeliveryIsIdempotent(t *testing.T) {
	p, st, br := newProcessor()
	raw := encode(t, events.TransactionEvent{
		Type: events.TypeTransactionCompleted, UserID: "u1", Reference: "ref-2",
		Category: "deposit", Direction: events.DirectionCredit, AmountKobo: 1000_00,
	})
	for i := 0; i < 2; i++ {
		if err := p.Handle(context.Background(), raw); err != nil {
			t.Fatal(err)
		}
	}
	if len(st.inserted) != 1 || len(br.updates) != 1 {
		t.Fatalf("inserted=%d updates=%d", len(st.inserted), len(br.updates))
	}
}

func TestHandleAlertsDisabledStillPushesBalance(t *testing.T) {
	p, st, br := newProcessor()
	st.prefs = alerts.Preferences{}
	bal := int64(500_000_00)
	err := p.Handle(context.Background(), encode(t, events.TransactionEvent{
		Type: events.TypeTransactionCompleted, UserID: "u1", Reference: "ref-3",
		Category: "betting", Direction: events.DirectionDebit, AmountKobo: 100_00, BalanceKobo: &bal,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if len(st.inserted) != 0 {
		t.Fatalf("inserted = %v", st.inserted)
	}
	if len(br.updates) != 1 || br.updates[0].Notification != nil || *br.updates[0].BalanceKobo != bal {
		t.Fatalf("updates = %+v", br.updates)
	}
}

func TestHandleFailedEvent(t *testing.T) {
	p, st, _ := newProcessor()
	err := p.Handle(context.Background(), encode(t, events.TransactionEvent{
		Type: events.TypeTransactionFailed, UserID: "u1", Reference: "ref-4",
		Category: "airtime", Direction: events.DirectionDebit, AmountKobo: 100_00, Reason: "Airtime purchase failed",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if len(st.inserted) != 1 || st.inserted[0].Message != "A transaction failed: Airtime purchase failed" {
		t.Fatalf("inserted = %+v", st.inserted)
	}
}

func TestHandleErrors(t *testing.T) {
	p, st, _ := newProcessor()
	if err := p.Handle(context.Background(), []byte("{not json")); err == nil {
		t.Fatal("expected decode error")
	}
	if err := p.Handle(context.Background(), []byte(`{"reference":"r"}`)); err == nil {
		t.Fatal("expected missing user error")
	}
	st.prefsErr = errors.New("db down")
	if err := p.Handle(context.Background(), []byte(`{"user_id":"u1","reference":"r"}`)); err == nil {
		t.Fatal("expected preferences error")
	}
}

func TestRunSendsPoisonToDLQAndCommits(t *testing.T) {
	p, _, _ := newProcessor()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	good := encode(t, events.TransactionEvent{
		Type: events.TypeTransactionCompleted, UserID: "u1", Reference: "ref-5",
		Category: "deposit", Direction: events.DirectionCredit, AmountKobo: 100_00,
	})
	reader := &fakeReader{
		msgs:   []kafka.Message{{Key: []byte("u1"), Value: []byte("garbage"), Offset: 7}, {Key: []byte("u1"), Value: good, Offset: 8}},
		cancel: cancel,
	}
	dlq := &fakeWriter{}
	p.Reader, p.DLQ = reader, dlq

	if err := p.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run err = %v", err)
	}
	if len(dlq.msgs) != 1 || string(dlq.msgs[0].Value) != "garbage" {
		t.Fatalf("dlq = %+v", dlq.msgs)
	}
	if len(reader.committed) != 2 {
		t.Fatalf("committed = %d", len(reader.committed))
	}
}

type flakyStore struct {
	*fakeStore
	failures int
	calls    int
}

func (f *flakyStore) Preferences(ctx context.Context, uid string) (alerts.Preferences, error) {
	f.calls++
	if f.calls <= f.failures {
		return alerts.Preferences{}, errors.New("db timeout")
	}
	return f.fakeStore.Preferences(ctx, uid)
}

func TestRunRetriesTransientErrors(t *testing.T) {
	p, st, _ := newProcessor()
	flaky := &flakyStore{fakeStore: st, failures: 2}
	p.Repo, p.Backoff = flaky, time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	raw := encode(t, events.TransactionEvent{
		Type: events.TypeTransactionCompleted, UserID: "u1", Reference: "ref-6",
		Category: "deposit", Direction: events.DirectionCredit, AmountKobo: 100_00,
	})
	reader := &fakeReader{msgs: []kafka.Message{{Value: raw}}, cancel: cancel}
	dlq := &fakeWriter{}
	p.Reader, p.DLQ = reader, dlq

	_ = p.Run(ctx)
	if flaky.calls != 3 || len(st.inserted) != 1 {
		t.Fatalf("calls=%d inserted=%d", flaky.calls, len(st.inserted))
	}
	if len(dlq.msgs) != 0 || len(reader.committed) != 1 {
		t.Fatalf("dlq=%d committed=%d", len(dlq.msgs), len(reader.committed))
	}
}

func TestRunWithoutDLQDropsAndCommits(t *testing.T) {
	p, _, _ := newProcessor()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reader := &fakeReader{msgs: []kafka.Message{{Value: []byte("garbage")}}, cancel: cancel}
	p.Reader = reader

	_ = p.Run(ctx)
	if len(reader.committed) != 1 {
		t.Fatalf("committed = %d", len(reader.committed))
	}
}
