package events

import "time"

// Tipos de evento publicados no tópico "transaction_events"
const (
	TypeTransactionCompleted = "transaction_completed"
	TypeTransactionFailed    = "transaction_failed"
)

// Direção do movimento na conta do usuário
const (
	DirectionDebit  = "debit"
	DirectionCredit = "credit"
)

// TransactionEvent é emitido pelo payments-service após cada despacho ao provedor.
// Valores monetários em kobo.
type TransactionEvent struct {
	Type          string    `json:"type"` // transaction_completed | transaction_failed
	UserID        string    `json:"user_id"`
	Reference     string    `json:"reference"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Category      string    `json:"category"`  // transfer | deposit | withdrawal | betting | bills | airtime
	Direction     string    `json:"direction"` // debit | credit
	AmountKobo    int64     `json:"amount_kobo"`
	BalanceKobo   *int64    `json:"balance_kobo,omitempty"`
	Counterparty  string    `json:"counterparty,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	Ts            time.Time `json:"ts"`
}
