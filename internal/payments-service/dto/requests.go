package dto

import "github.com/shopspring/decimal"

// Party identifica o destino de um pagamento por categoria
type Party struct {
	Name        string `json:"name,omitempty"`
	AccountID   string `json:"accountId,omitempty" validate:"omitempty,max=64"` // medidor, smartcard, id na plataforma
	Platform    string `json:"platform,omitempty" validate:"omitempty,oneof=bet9ja sportybet betking 1xbet nairabet"`
	BillerID    string `json:"billerId,omitempty"`
	BillerName  string `json:"billerName,omitempty"`
	ProductID   string `json:"productId,omitempty"`
	PaymentItem string `json:"paymentItem,omitempty"`
	Division    string `json:"division,omitempty"`
	Network     string `json:"network,omitempty" validate:"omitempty,oneof=mtn airtel glo 9mobile"`
	PhoneNumber string `json:"phoneNumber,omitempty" validate:"omitempty,ngphone"`
	PlanCode    string `json:"planCode,omitempty"`
}

// PaymentRequest pagamento genérico por categoria (recarga, contas, apostas)
type PaymentRequest struct {
	ClientReference string            `json:"clientReference" validate:"required,reference"`
	Amount          decimal.Decimal   `json:"amount" validate:"naira"`
	Category        string            `json:"category" validate:"required,oneof=airtime data bills betting"`
	Party           Party             `json:"party"`
	Narration       string            `json:"narration,omitempty" validate:"max=100"`
	Pin             string            `json:"pin" validate:"required,pin"`
	Extra           map[string]string `json:"extra,omitempty"`
}

// InternalTransferRequest transferência para outro cliente pelo número da conta
type InternalTransferRequest struct {
	ClientReference        string          `json:"clientReference" validate:"required,reference"`
	Amount                 decimal.Decimal `json:"amount" validate:"naira"`
	RecipientAccountNumber string          `json:"recipientAccountNumber" validate:"required,nuban"`
	Narration              string          `json:"narration,omitempty" validate:"max=100"`
	Pin                    string          `json:"pin" validate:"required,pin"`
}

// ExternalTransferRequest transferência para conta em outro banco
type ExternalTransferRequest struct {
	ClientReference        string          `json:"clientReference" validate:"required,reference"`
	Amount                 decimal.Decimal `json:"amount" validate:"naira"`
	RecipientAccountNumber string          `json:"recipientAccountNumber" validate:"required,nuban"`
	BankCode               string          `json:"bankCode" validate:"required,numeric,len=3"`
	RecipientName          string          `json:"recipientName,omitempty" validate:"max=100"`
	Narration              string          `json:"narration,omitempty" validate:"max=100"`
	Pin                    string          `json:"pin" validate:"required,pin"`
}

type VerifyAccountRequest struct {
	AccountNumber string `json:"accountNumber" validate:"required,nuban"`
	BankCode      string `json:"bankCode" validate:"required,numeric,len=3"`
}

type CardDetails struct {
	Number string `json:"cardNumber" validate:"required,numeric,min=12,max=19"`
	Expiry string `json:"expiryDate" validate:"required,numeric,len=4"` // YYMM
	CVV    string `json:"cvv" validate:"required,numeric,len=3"`
	Pin    string `json:"cardPin,omitempty" validate:"omitempty,numeric,len=4"`
}

type DepositRequest struct {
	ClientReference string          `json:"clientReference" validate:"required,reference"`
	Amount          decimal.Decimal `json:"amount" validate:"naira"`
	Method          string          `json:"paymentMethod" validate:"required,oneof=card bank_transfer ussd"`
	Card            *CardDetails    `json:"card,omitempty" validate:"required_if=Method card"`
	Pin             string          `json:"pin" validate:"required,pin"`
}

type WithdrawalRequest struct {
	ClientReference string          `json:"clientReference" validate:"required,reference"`
	Amount          decimal.Decimal `json:"amount" validate:"naira"`
	BankAccount     string          `json:"bankAccount" validate:"required,nuban"`
	Pin             string          `json:"pin" validate:"required,pin"`
}

type MarkReadRequest struct {
	IDs []string `json:"ids,omitempty" validate:"max=100,dive,uuid"`
}

type TaxReportRequest struct {
	TaxYear int `json:"tax_year" validate:"required"`
}
