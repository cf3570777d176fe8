package orchestrator

import (
	"github.com/shopspring/decimal"

	"github.com/radieske/ovo-banking-gateway/internal/payments-service/receipt"
	"github.com/radieske/ovo-banking-gateway/internal/payments-service/vfd"
)

type Kind string

const (
	KindInternalTransfer Kind = "internal_transfer"
	KindExternalTransfer Kind = "external_transfer"
	KindDeposit          Kind = "deposit"
	KindWithdrawal       Kind = "withdrawal"
	KindBetting          Kind = "betting"
	KindBills            Kind = "bills"
	KindAirtime          Kind = "airtime"
)

func (k Kind) Valid() bool {
	switch k {
	case KindInternalTransfer, KindExternalTransfer, KindDeposit, KindWithdrawal, KindBetting, KindBills, KindAirtime:
		return true
	}
	return false
}

// Category é o nome usado em eventos e no registro secundário
func (k Kind) Category() string {
	switch k {
	case KindInternalTransfer, KindExternalTransfer:
		return "transfer"
	default:
		return string(k)
	}
}

func (k Kind) Direction() string {
	if k == KindDeposit {
		return "credit"
	}
	return "debit"
}

// Payment é um pedido de movimentação já validado na borda HTTP
type Payment struct {
	UserID    string
	Kind      Kind
	Reference string
	Amount    decimal.Decimal // Naira
	Pin       string
	Narration string

	// transferências
	RecipientAccount string
	BankCode         string
	BankName         string
	RecipientName    string

	// apostas / contas / recarga
	Platform    string
	CustomerID  string
	BillerID    string
	BillerName  string
	ProductID   string
	PaymentItem string
	Division    string
	Network     string
	PhoneNumber string
	PlanCode    string

	// depósito / saque
	Method      string
	Card        *vfd.Card
	BankAccount string

	// campos extras exibidos no recibo (ex.: units, bouquet)
	Extra map[string]string
}

// Outcome é o resultado devolvido ao cliente
type Outcome struct {
	Result  vfd.Result       `json:"result"`
	Receipt *receipt.Receipt `json:"receipt,omitempty"`
	Balance *int64           `json:"balanceKobo,omitempty"`
}
