package dto

import "encoding/json"

// Valores em Naira (unidade principal) seguem como número JSON com duas casas.

// TransferRequest representa o payload de transferência no VFD.
// Transferência interna usa RecipientPhone; para outro banco, conta + código do banco.
type TransferRequest struct {
	SenderPhone            string      `json:"sender_phone"`
	SenderPin              string      `json:"sender_pin"`
	RecipientPhone         string      `json:"recipient_phone,omitempty"`
	RecipientAccountNumber string      `json:"recipient_account_number,omitempty"`
	BankCode               string      `json:"bank_code,omitempty"`
	AmountNaira            json.Number `json:"amount_naira"`
	Reference              string      `json:"reference"`
	Narration              string      `json:"narration"`
}

// CardDetails só é enviado quando PaymentMethod == "card"
type CardDetails struct {
	CardNumber string `json:"card_number"`
	ExpiryDate string `json:"expiry_date"` // YYMM
	CVV        string `json:"cvv"`
	CardPin    string `json:"card_pin,omitempty"`
}

// DepositRequest representa o payload de depósito (adicionar dinheiro)
type DepositRequest struct {
	UserPhone     string      `json:"user_phone"`
	UserPin       string      `json:"user_pin"`
	AmountNaira   json.Number `json:"amount_naira"`
	Reference     string      `json:"reference"`
	PaymentMethod string      `json:"payment_method"` // card | bank_transfer | ussd
	*CardDetails
}

// WithdrawalRequest representa o payload de saque
type WithdrawalRequest struct {
	UserPhone      string      `json:"user_phone"`
	UserPin        string      `json:"user_pin"`
	TransactionPin string      `json:"transaction_pin"`
	AmountNaira    json.Number `json:"amount_naira"`
	Reference      string      `json:"reference"`
	BankAccount    string      `json:"bank_account,omitempty"`
}

// BettingRequest representa a recarga de conta em plataforma de apostas
type BettingRequest struct {
	SenderPhone string      `json:"sender_phone"`
	SenderPin   string      `json:"sender_pin"`
	Platform    string      `json:"platform"`    // bet9ja | sportybet | betking | 1xbet | nairabet
	CustomerID  string      `json:"customer_id"` // id da conta na plataforma
	AmountNaira json.Number `json:"amount_naira"`
	Reference   string      `json:"reference"`
	Narration   string      `json:"narration"`
}

// BillRequest representa o pagamento de contas (energia, TV, internet, água)
type BillRequest struct {
	SenderPhone string      `json:"sender_phone"`
	SenderPin   string      `json:"sender_pin"`
	CustomerID  string      `json:"customer_id"` // número do medidor, smartcard etc.
	BillerID    string      `json:"biller_id"`
	ProductID   string      `json:"product_id,omitempty"`
	PaymentItem string      `json:"payment_item,omitempty"`
	Division    string      `json:"division,omitempty"`
	PhoneNumber string      `json:"phone_number,omitempty"`
	AmountNaira json.Number `json:"amount_naira"`
	Reference   string      `json:"reference"`
}

// AirtimeRequest representa recarga de crédito ou pacote de dados
type AirtimeRequest struct {
	SenderPhone string      `json:"sender_phone"`
	SenderPin   string      `json:"sender_pin"`
	Network     string      `json:"network"` // mtn | airtel | glo | 9mobile
	PhoneNumber string      `json:"phone_number"`
	PlanCode    string      `json:"plan_code,omitempty"` // preenchido para pacote de dados
	AmountNaira json.Number `json:"amount_naira"`
	Reference   string      `json:"reference"`
}
