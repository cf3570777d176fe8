package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/radieske/ovo-banking-gateway/internal/shared/alerts"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateReference = errors.New("duplicate reference")
)

// Postgres implementa o registro secundário (Supabase) do payments-service
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

func (p *Postgres) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

// GetUser retorna o usuário com o hash do PIN de transação
func (p *Postgres) GetUser(ctx context.Context, id string) (User, error) {
	return p.scanUser(p.db.QueryRowContext(ctx, `
		SELECT id, phone, full_name, COALESCE(account_number,''), balance, COALESCE(transaction_pin_hash,'')
		FROM users WHERE id=$1`, id))
}

// UserByAccount localiza um cliente pelo número de conta (transferência interna)
func (p *Postgres) UserByAccount(ctx context.Context, accountNumber string) (User, error) {
	return p.scanUser(p.db.QueryRowContext(ctx, `
		SELECT id, phone, full_name, COALESCE(account_number,''), balance, COALESCE(transaction_pin_hash,'')
		FROM users WHERE account_number=$1`, accountNumber))
}

func (p *Postgres) scanUser(row *sql.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Phone, &u.FullName, &u.AccountNumber, &u.BalanceKobo, &u.PinHash)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

// Balance lê o saldo espelhado (kobo)
func (p *Postgres) Balance(ctx context.Context, userID string) (int64, error) {
	var bal int64
	err := p.db.QueryRowContext(ctx, `SELECT balance FROM users WHERE id=$1`, userID).Scan(&bal)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return bal, err
}

// RecordTransaction grava a transação e, quando o provedor devolveu o novo
// saldo, atualiza o espelho em users.balance. Referência repetida retorna
// ErrDuplicateReference sem alterar nada.
func (p *Postgres) RecordTransaction(ctx context.Context, t Transaction) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	party := t.Party
	if len(party) == 0 {
		party = []byte("{}")
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO financial_transactions
			(id,user_id,reference,vfd_reference,type,category,amount_kobo,balance_after,status,narration,party)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (reference) DO NOTHING`,
		t.ID, t.UserID, t.Reference, nullable(t.VFDReference), t.Type, t.Category,
		t.AmountKobo, t.BalanceAfter, t.Status, t.Narration, party,
	)
	if err != nil {
		return fmt.Errorf("insert financial_transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrDuplicateReference
	}

	if t.BalanceAfter != nil {
		if _, err = tx.ExecContext(ctx, `UPDATE users SET balance=$1, updated_at=now() WHERE id=$2`, *t.BalanceAfter, t.UserID); err != nil {
			return fmt.Errorf("update balance mirror: %w", err)
		}
	}
	return tx.Commit()
}

func (p *Postgres) GetTransaction(ctx context.Context, userID, reference string) (Transaction, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT id,user_id,reference,COALESCE(vfd_reference,''),type,category,amount_kobo,balance_after,status,narration,party,created_at
		FROM financial_transactions WHERE user_id=$1 AND reference=$2`, userID, reference)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Transaction{}, ErrNotFound
	}
	return t, err
}

func (p *Postgres) ListTransactions(ctx context.Context, userID string, limit int) ([]Transaction, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id,user_id,reference,COALESCE(vfd_reference,''),type,category,amount_kobo,balance_after,status,narration,party,created_at
		FROM financial_transactions WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

type scanner interface{ Scan(dest ...any) error }

func scanTransaction(s scanner) (Transaction, error) {
	var t Transaction
	var bal sql.NullInt64
	err := s.Scan(&t.ID, &t.UserID, &t.Reference, &t.VFDReference, &t.Type, &t.Category,
		&t.AmountKobo, &bal, &t.Status, &t.Narration, (*[]byte)(&t.Party), &t.CreatedAt)
	if bal.Valid {
		t.BalanceAfter = &bal.Int64
	}
	return t, err
}

// SaveReceipt grava o recibo e o marca como pendente de visualização
func (p *Postgres) SaveReceipt(ctx context.Context, userID, reference, category string, payload []byte) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO receipts (reference,user_id,category,payload) VALUES ($1,$2,$3,$4)
		ON CONFLICT (reference) DO UPDATE SET payload=EXCLUDED.payload`,
		reference, userID, category, payload); err != nil {
		return fmt.Errorf("insert receipt: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO pending_receipts (user_id,reference) VALUES ($1,$2)
		ON CONFLICT (user_id) DO UPDATE SET reference=EXCLUDED.reference, updated_at=now()`,
		userID, reference); err != nil {
		return fmt.Errorf("upsert pending receipt: %w", err)
	}
	return tx.Commit()
}

func (p *Postgres) GetReceipt(ctx context.Context, userID, reference string) (StoredReceipt, error) {
	var r StoredReceipt
	err := p.db.QueryRowContext(ctx, `
		SELECT reference,category,payload,created_at FROM receipts WHERE user_id=$1 AND reference=$2`,
		userID, reference).Scan(&r.Reference, &r.Category, (*[]byte)(&r.Payload), &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return StoredReceipt{}, ErrNotFound
	}
	return r, err
}

// PendingReceipt retorna o último recibo pendente do usuário
func (p *Postgres) PendingReceipt(ctx context.Context, userID string) (StoredReceipt, error) {
	var r StoredReceipt
	err := p.db.QueryRowContext(ctx, `
		SELECT r.reference,r.category,r.payload,r.created_at
		FROM pending_receipts pr JOIN receipts r ON r.reference=pr.reference
		WHERE pr.user_id=$1`, userID).Scan(&r.Reference, &r.Category, (*[]byte)(&r.Payload), &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return StoredReceipt{}, ErrNotFound
	}
	return r, err
}

func (p *Postgres) ClearPendingReceipt(ctx context.Context, userID string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM pending_receipts WHERE user_id=$1`, userID)
	return err
}

func (p *Postgres) ListReceipts(ctx context.Context, userID string, limit int) ([]StoredReceipt, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT reference,category,payload,created_at FROM receipts
		WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredReceipt
	for rows.Next() {
		var r StoredReceipt
		if err := rows.Scan(&r.Reference, &r.Category, (*[]byte)(&r.Payload), &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *Postgres) ListNotifications(ctx context.Context, userID string, limit int, unreadOnly bool) ([]Notification, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id,type,title,message,COALESCE(reference,''),metadata,read,created_at
		FROM notifications WHERE user_id=$1 AND ($2 = false OR read = false)
		ORDER BY created_at DESC LIMIT $3`, userID, unreadOnly, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.Type, &n.Title, &n.Message, &n.Reference, (*[]byte)(&n.Metadata), &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkNotificationsRead marca como lidas; ids vazio marca todas do usuário
func (p *Postgres) MarkNotificationsRead(ctx context.Context, userID string, ids []string) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if len(ids) == 0 {
		res, err = p.db.ExecContext(ctx, `UPDATE notifications SET read=true WHERE user_id=$1 AND read=false`, userID)
	} else {
		res, err = p.db.ExecContext(ctx, `UPDATE notifications SET read=true WHERE user_id=$1 AND id = ANY($2)`, userID, pq.Array(ids))
	}
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Preferences lê notification_preferences; sem linha, todos os alertas ligados
func (p *Postgres) Preferences(ctx context.Context, userID string) (alerts.Preferences, error) {
	var a alerts.Preferences
	err := p.db.QueryRowContext(ctx, `
		SELECT debit_alerts, credit_alerts, large_transactions, low_balance, failed_transactions
		FROM notification_preferences WHERE user_id=$1`, userID).
		Scan(&a.Debit, &a.Credit, &a.LargeTransaction, &a.LowBalance, &a.Failed)
	if errors.Is(err, sql.ErrNoRows) {
		return alerts.DefaultPreferences(), nil
	}
	if err != nil {
		return a, fmt.Errorf("select preferences: %w", err)
	}
	return a, nil
}

// YearSummary agrega transações concluídas do usuário por categoria e tipo no
// ano civil medido em loc (o ano fiscal começa à meia-noite local)
func (p *Postgres) YearSummary(ctx context.Context, userID string, year int, loc *time.Location) ([]CategoryTotal, error) {
	if loc == nil {
		loc = time.UTC
	}
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	to := from.AddDate(1, 0, 0)
	rows, err := p.db.QueryContext(ctx, `
		SELECT category, type, COALESCE(SUM(amount_kobo),0), COUNT(*)
		FROM financial_transactions
		WHERE user_id=$1 AND status='completed' AND created_at >= $2 AND created_at < $3
		GROUP BY category, type ORDER BY category, type`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CategoryTotal
	for rows.Next() {
		var c CategoryTotal
		if err := rows.Scan(&c.Category, &c.Type, &c.TotalKobo, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
