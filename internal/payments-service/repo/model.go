package repo

import (
	"encoding/json"
	"time"
)

// User é o cliente espelhado no Postgres
type User struct {
	ID            string
	Phone         string
	FullName      string
	AccountNumber string
	BalanceKobo   int64
	PinHash       string
}

// Transaction é o registro secundário de uma transação concluída no provedor
type Transaction struct {
	ID           string          `json:"id"`
	UserID       string          `json:"userId"`
	Reference    string          `json:"reference"`
	VFDReference string          `json:"vfdReference,omitempty"`
	Type         string          `json:"type"` // debit | credit
	Category     string          `json:"category"`
	AmountKobo   int64           `json:"amountKobo"`
	BalanceAfter *int64          `json:"balanceAfter,omitempty"`
	Status       string          `json:"status"`
	Narration    string          `json:"narration,omitempty"`
	Party        json.RawMessage `json:"party,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// StoredReceipt é o snapshot do recibo gravado após o sucesso
type StoredReceipt struct {
	Reference string          `json:"reference"`
	Category  string          `json:"category"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"createdAt"`
}

type Notification struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	Reference string          `json:"reference,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	Read      bool            `json:"read"`
	CreatedAt time.Time       `json:"createdAt"`
}

// CategoryTotal agrega débitos/créditos de uma categoria num período
type CategoryTotal struct {
	Category  string `json:"category"`
	Type      string `json:"type"`
	TotalKobo int64  `json:"totalKobo"`
	Count     int    `json:"count"`
}
