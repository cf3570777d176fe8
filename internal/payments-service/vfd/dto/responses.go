package dto

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// TokenResponse resposta do endpoint de client credentials
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	Token       string `json:"token"`
	ExpiresIn   int    `json:"expires_in,omitempty"`
}

// Value devolve o token, aceitando os dois nomes de campo usados pelo VFD
func (t TokenResponse) Value() string {
	if t.AccessToken != "" {
		return t.AccessToken
	}
	return t.Token
}

// ErrorResponse corpo devolvido pelo VFD em respostas não-2xx
type ErrorResponse struct {
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Text devolve a mensagem do provedor, se houver
func (e ErrorResponse) Text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// TransactionResponse corpo de sucesso dos endpoints de movimentação e consulta.
// Os aliases conhecidos (transaction_id/txn_id, amount_naira/amount,
// new_balance/balance) são resolvidos em UnmarshalJSON.
type TransactionResponse struct {
	TransactionID string
	Status        string
	Message       string
	Amount        *decimal.Decimal // em Naira
	NewBalance    *decimal.Decimal // em kobo, como devolvido pelo provedor
	Token         string           // token de energia (pagamento de contas)
}

type transactionWire struct {
	TransactionID string           `json:"transaction_id"`
	TxnID         string           `json:"txn_id"`
	Status        string           `json:"status"`
	Message       string           `json:"message"`
	AmountNaira   *decimal.Decimal `json:"amount_naira"`
	Amount        *decimal.Decimal `json:"amount"`
	NewBalance    *decimal.Decimal `json:"new_balance"`
	Balance       *decimal.Decimal `json:"balance"`
	Token         string           `json:"token"`
	KCT1          string           `json:"KCT1"`
}

func (t *TransactionResponse) UnmarshalJSON(b []byte) error {
	var w transactionWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*t = TransactionResponse{
		TransactionID: first(w.TransactionID, w.TxnID),
		Status:        w.Status,
		Message:       w.Message,
		Amount:        firstDec(w.AmountNaira, w.Amount),
		NewBalance:    firstDec(w.NewBalance, w.Balance),
		Token:         first(w.Token, w.KCT1),
	}
	return nil
}

// RecipientResponse resposta do /transfer/recipient (consulta de nome da conta)
type RecipientResponse struct {
	Status  string        `json:"status"` // "00" = encontrado
	Message string        `json:"message"`
	Data    RecipientData `json:"data"`
}

type RecipientData struct {
	Name     string `json:"name"`
	ClientID string `json:"clientId"`
	BVN      string `json:"bvn,omitempty"`
	Account  struct {
		Number string `json:"number"`
		ID     string `json:"id"`
	} `json:"account"`
}

func first(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstDec(vals ...*decimal.Decimal) *decimal.Decimal {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}
