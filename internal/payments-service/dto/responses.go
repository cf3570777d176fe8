package dto

import (
	"time"

	"github.com/radieske/ovo-banking-gateway/internal/payments-service/receipt"
	"github.com/radieske/ovo-banking-gateway/internal/payments-service/vfd"
	"github.com/radieske/ovo-banking-gateway/internal/shared/validate"
	"github.com/radieske/ovo-banking-gateway/pkg/contracts/events"
)

// PaymentResponse resultado do provedor mais o recibo renderizado
type PaymentResponse struct {
	vfd.Result
	Receipt *receipt.View `json:"receipt,omitempty"`
}

type ErrorResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Errors  validate.Errors `json:"errors,omitempty"`
}

type WalletResponse struct {
	UserID        string                `json:"userId"`
	BalanceKobo   int64                 `json:"balanceKobo"`
	Balance       string                `json:"balance"`
	Stale         bool                  `json:"stale"`
	Notifications []events.Notification `json:"notifications"`
	UpdatedAt     time.Time             `json:"updatedAt"`
}

type ReceiptResponse struct {
	Receipt receipt.Receipt `json:"receipt"`
	View    receipt.View    `json:"view"`
}

type ShareResponse struct {
	Text  string         `json:"text"`
	Links []receipt.Link `json:"links"`
}

type CategorySummary struct {
	Category   string `json:"category"`
	DebitKobo  int64  `json:"debitKobo"`
	CreditKobo int64  `json:"creditKobo"`
	Count      int    `json:"count"`
}

type TaxSummaryResponse struct {
	TaxYear          int               `json:"tax_year"`
	TotalDebitKobo   int64             `json:"totalDebitKobo"`
	TotalCreditKobo  int64             `json:"totalCreditKobo"`
	TotalDebit       string            `json:"totalDebit"`
	TotalCredit      string            `json:"totalCredit"`
	TransactionCount int               `json:"transactionCount"`
	Categories       []CategorySummary `json:"categories"`
	GeneratedAt      time.Time         `json:"generatedAt"`
}
