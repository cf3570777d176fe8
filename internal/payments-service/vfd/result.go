package vfd

import (
	"time"

	"github.com/shopspring/decimal"
)

// Result é o resultado de uma operação no provedor, já normalizado
type Result struct {
	Success       bool             `json:"success"`
	Reference     string           `json:"reference"`
	TransactionID string           `json:"transactionId,omitempty"`
	Message       string           `json:"message"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`  // Naira
	Balance       *int64           `json:"balance,omitempty"` // kobo
	Token         string           `json:"token,omitempty"`   // token de energia
	Timestamp     time.Time        `json:"timestamp"`
}

// Transfer entre clientes (RecipientPhone) ou para outro banco (conta + código)
type Transfer struct {
	SenderPhone      string
	SenderPin        string
	RecipientPhone   string
	RecipientAccount string
	BankCode         string
	Amount           decimal.Decimal
	Reference        string
	Narration        string
}

type Card struct {
	Number string
	Expiry string // YYMM
	CVV    string
	Pin    string
}

type Deposit struct {
	UserPhone string
	UserPin   string
	Amount    decimal.Decimal
	Reference string
	Method    string // card | bank_transfer | ussd
	Card      *Card
}

type Withdrawal struct {
	UserPhone      string
	UserPin        string
	TransactionPin string
	Amount         decimal.Decimal
	Reference      string
	BankAccount    string
}

type Betting struct {
	SenderPhone string
	SenderPin   string
	Platform    string
	CustomerID  string
	Amount      decimal.Decimal
	Reference   string
	Narration   string
}

type Bill struct {
	SenderPhone string
	SenderPin   string
	CustomerID  string
	BillerID    string
	ProductID   string
	PaymentItem string
	Division    string
	PhoneNumber string
	Amount      decimal.Decimal
	Reference   string
}

type Airtime struct {
	SenderPhone string
	SenderPin   string
	Network     string
	PhoneNumber string
	PlanCode    string
	Amount      decimal.Decimal
	Reference   string
}

// Recipient resultado da consulta de nome de conta
type Recipient struct {
	Found         bool   `json:"found"`
	AccountName   string `json:"accountName,omitempty"`
	AccountNumber string `json:"accountNumber"`
	BankCode      string `json:"bankCode"`
	ClientID      string `json:"clientId,omitempty"`
	Message       string `json:"message,omitempty"`
}
