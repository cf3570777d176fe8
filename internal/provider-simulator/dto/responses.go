package dto

// TransactionResp corpo de sucesso no formato do VFD. Valores em Naira,
// exceto NewBalance, que o VFD devolve em kobo.
type TransactionResp struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
	Message       string `json:"message"`
	AmountNaira   string `json:"amount_naira"`
	NewBalance    int64  `json:"new_balance"`
	Token         string `json:"token,omitempty"`
}

type ErrorResp struct {
	Status  string `json:"status,omitempty"`
	Message string `json:"message"`
}

type TokenResp struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type RecipientResp struct {
	Status  string        `json:"status"`
	Message string        `json:"message"`
	Data    RecipientData `json:"data"`
}

type RecipientData struct {
	Name     string `json:"name"`
	ClientID string `json:"clientId"`
	Account  struct {
		Number string `json:"number"`
		ID     string `json:"id"`
	} `json:"account"`
}

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)
