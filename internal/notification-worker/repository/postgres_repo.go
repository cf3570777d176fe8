package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/radieske/ovo-banking-gateway/internal/shared/alerts"
	"github.com/radieske/ovo-banking-gateway/pkg/contracts/events"
)

// PostgresRepo grava notificações e lê as preferências de alerta
type PostgresRepo struct {
	DB *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{DB: db}
}

// Preferences devolve as preferências do usuário; sem linha, tudo ligado
func (r *PostgresRepo) Preferences(ctx context.Context, userID string) (alerts.Preferences, error) {
	const q = `
		SELECT debit_alerts, credit_alerts, large_transactions, low_balance, failed_transactions
		FROM notification_preferences WHERE user_id = $1
	`
	var p alerts.Preferences
	err := r.DB.QueryRowContext(ctx, q, userID).Scan(&p.Debit, &p.Credit, &p.LargeTransaction, &p.LowBalance, &p.Failed)
	if errors.Is(err, sql.ErrNoRows) {
		return alerts.DefaultPreferences(), nil
	}
	if err != nil {
		return p, fmt.Errorf("select preferences: %w", err)
	}
	return p, nil
}

// InsertNotification grava a notificação. false indica que (referência, tipo)
// já existia, ou seja, reentrega do mesmo evento.
func (r *PostgresRepo) InsertNotification(ctx context.Context, n events.Notification) (bool, error) {
	const q = `
		INSERT INTO notifications (id, user_id, type, title, message, reference, metadata, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (user_id, reference, type) WHERE reference IS NOT NULL DO NOTHING
	`
	meta, err := json.Marshal(n.Metadata)
	if err != nil {
		return false, fmt.Errorf("encode metadata: %w", err)
	}
	var ref any
	if n.Reference != "" {
		ref = n.Reference
	}
	res, err := r.DB.ExecContext(ctx, q, n.ID, n.UserID, n.Type, n.Title, n.Message, ref, meta, n.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("insert notification: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}
