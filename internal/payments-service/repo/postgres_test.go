package repo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/radieske/ovo-banking-gateway/internal/shared/alerts"
)

func newMock(t *testing.T) (*Postgres, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
		db.Close()
	})
	return NewPostgres(db), mock
}

func TestGetUserNotFound(t *testing.T) {
	p, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id=$1")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err := p.GetUser(context.Background(), "u1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUserByAccount(t *testing.T) {
	p, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE account_number=$1")).
		WithArgs("0123456789").
		WillReturnRows(sqlmock.NewRows([]string{"id", "phone", "full_name", "account_number", "balance", "pin"}).
			AddRow("u2", "08031111111", "Ada Obi", "0123456789", int64(90000), ""))

	u, err := p.UserByAccount(context.Background(), "0123456789")
	if err != nil {
		t.Fatal(err)
	}
	if u.ID != "u2" || u.FullName != "Ada Obi" || u.BalanceKobo != 90000 {
		t.Errorf("user = %+v", u)
	}
}

func TestRecordTransactionUpdatesMirror(t *testing.T) {
	p, mock := newMock(t)
	bal := int64(5000)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO financial_transactions")).
		WithArgs(sqlmock.AnyArg(), "u1", "betting-123", "t1", "debit", "betting", int64(150000), bal, "completed", "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET balance=$1")).
		WithArgs(bal, "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := p.RecordTransaction(context.Background(), Transaction{
		UserID: "u1", Reference: "betting-123", VFDReference: "t1", Type: "debit",
		Category: "betting", AmountKobo: 150000, BalanceAfter: &bal, Status: "completed",
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestRecordTransactionWithoutBalance(t *testing.T) {
	p, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO financial_transactions")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := p.RecordTransaction(context.Background(), Transaction{UserID: "u1", Reference: "r", Type: "credit", Status: "completed"}); err != nil {
		t.Fatal(err)
	}
}

func TestRecordTransactionDuplicate(t *testing.T) {
	p, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO financial_transactions")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := p.RecordTransaction(context.Background(), Transaction{UserID: "u1", Reference: "dup", Type: "debit"})
	if !errors.Is(err, ErrDuplicateReference) {
		t.Errorf("err = %v, want ErrDuplicateReference", err)
	}
}

func TestSaveAndReadPendingReceipt(t *testing.T) {
	p, mock := newMock(t)
	payload := []byte(`{"reference":"r1"}`)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO receipts")).
		WithArgs("r1", "u1", "transfer", payload).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO pending_receipts")).
		WithArgs("u1", "r1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM pending_receipts pr JOIN receipts r")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"reference", "category", "payload", "created_at"}).
			AddRow("r1", "transfer", payload, now))

	ctx := context.Background()
	if err := p.SaveReceipt(ctx, "u1", "r1", "transfer", payload); err != nil {
		t.Fatal(err)
	}
	r, err := p.PendingReceipt(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if r.Reference != "r1" || string(r.Payload) != string(payload) {
		t.Errorf("receipt = %+v", r)
	}
}

func TestListTransactions(t *testing.T) {
	p, mock := newMock(t)
	cols := []string{"id", "user_id", "reference", "vfd_reference", "type", "category", "amount_kobo", "balance_after", "status", "narration", "party", "created_at"}
	mock.ExpectQuery(regexp.QuoteMeta("FROM financial_transactions WHERE user_id=$1 ORDER BY created_at DESC")).
		WithArgs("u1", 20).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("t1", "u1", "r1", "v1", "debit", "airtime", int64(20000), int64(80000), "completed", "", []byte(`{}`), time.Now()).
			AddRow("t2", "u1", "r2", "", "credit", "deposit", int64(100000), nil, "completed", "", []byte(`{}`), time.Now()))

	txs, err := p.ListTransactions(context.Background(), "u1", 20)
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 2 {
		t.Fatalf("len = %d", len(txs))
	}
	if txs[0].BalanceAfter == nil || *txs[0].BalanceAfter != 80000 {
		t.Errorf("balance_after = %v", txs[0].BalanceAfter)
	}
	if txs[1].BalanceAfter != nil {
		t.Errorf("null balance_after should stay nil")
	}
}

func TestMarkNotificationsRead(t *testing.T) {
	p, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE notifications SET read=true WHERE user_id=$1 AND read=false")).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("id = ANY($2)")).
		WithArgs("u1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ctx := context.Background()
	if n, err := p.MarkNotificationsRead(ctx, "u1", nil); err != nil || n != 3 {
		t.Errorf("all: n=%d err=%v", n, err)
	}
	if n, err := p.MarkNotificationsRead(ctx, "u1", []string{"n1"}); err != nil || n != 1 {
		t.Errorf("ids: n=%d err=%v", n, err)
	}
}

func TestYearSummary(t *testing.T) {
	p, mock := newMock(t)
	wat := time.FixedZone("WAT", 3600)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, wat)
	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY category, type")).
		WithArgs("u1", from, from.AddDate(1, 0, 0)).
		WillReturnRows(sqlmock.NewRows([]string{"category", "type", "sum", "count"}).
			AddRow("airtime", "debit", int64(50000), 2).
			AddRow("deposit", "credit", int64(1000000), 1))

	got, err := p.YearSummary(context.Background(), "u1", 2024, wat)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[1].TotalKobo != 1000000 || got[0].Count != 2 {
		t.Errorf("summary = %+v", got)
	}
	// 00:30 WAT em 1º de janeiro ainda é 2023 em UTC, mas conta para 2024
	if !from.Equal(time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC)) {
		t.Errorf("window starts at %s", from.UTC())
	}
}

func TestPreferences(t *testing.T) {
	p, mock := newMock(t)
	cols := []string{"debit_alerts", "credit_alerts", "large_transactions", "low_balance", "failed_transactions"}
	mock.ExpectQuery(regexp.QuoteMeta("FROM notification_preferences WHERE user_id=$1")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(false, true, true, false, true))
	mock.ExpectQuery(regexp.QuoteMeta("FROM notification_preferences WHERE user_id=$1")).
		WithArgs("u2").
		WillReturnRows(sqlmock.NewRows(cols))

	got, err := p.Preferences(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Debit || !got.Credit || got.LowBalance {
		t.Errorf("prefs = %+v", got)
	}

	got, err = p.Preferences(context.Background(), "u2")
	if err != nil {
		t.Fatal(err)
	}
	if got != alerts.DefaultPreferences() {
		t.Errorf("missing row should default, got %+v", got)
	}
}
