package events

import "time"

// WalletUpdate é publicado no Redis Pub/Sub pelo notification-worker
// e repassado aos clientes WebSocket do usuário
type WalletUpdate struct {
	UserID       string        `json:"userId"`
	BalanceKobo  *int64        `json:"balanceKobo,omitempty"`
	Notification *Notification `json:"notification,omitempty"`
	Ts           time.Time     `json:"ts"`
}

// Notification é o registro exibido na central de notificações
type Notification struct {
	ID        string         `json:"id"`
	UserID    string         `json:"userId"`
	Type      string         `json:"type"` // debit | credit | large_transaction | low_balance | failed_transaction
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Reference string         `json:"reference,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Read      bool           `json:"read"`
	CreatedAt time.Time      `json:"createdAt"`
}
