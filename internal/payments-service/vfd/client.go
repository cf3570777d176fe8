package vfd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/ovo-banking-gateway/internal/payments-service/vfd/dto"
	"github.com/radieske/ovo-banking-gateway/internal/shared/money"
)

const msgAuthFailed = "Failed to authenticate with payment gateway"

var ErrAuthFailed = errors.New(msgAuthFailed)

// operation descreve as mensagens de cada endpoint de movimentação
type operation struct {
	name     string
	path     string
	ok       string // sucesso
	rejected string // resposta não-2xx sem mensagem do provedor
	failed   string // erro de rede/decodificação
}

var (
	opTransfer   = operation{"transfer", "/transfer", "Transfer successful", "Transfer failed at payment gateway", "Internal transfer failed"}
	opDeposit    = operation{"deposit", "/deposit", "Deposit successful", "Deposit failed at payment gateway", "Deposit failed"}
	opWithdrawal = operation{"withdrawal", "/withdrawal", "Withdrawal successful", "Withdrawal failed at payment gateway", "Withdrawal failed"}
	opBetting    = operation{"betting", "/betting", "Betting wallet funded successfully", "Betting payment failed at payment gateway", "Betting payment failed"}
	opBills      = operation{"bills", "/bills", "Bill payment successful", "Bill payment failed at payment gateway", "Bill payment failed"}
	opAirtime    = operation{"airtime", "/airtime", "Airtime purchase successful", "Airtime purchase failed at payment gateway", "Airtime purchase failed"}
	opQuery      = operation{"query", "/transaction/", "", "Transaction not found", "Failed to query transaction"}
	opRecipient  = operation{"recipient", "/transfer/recipient", "", "Account not found", "Account verification failed"}
)

// Client despacha transações para o VFD. Cada método faz exatamente uma
// requisição HTTP ao provedor; não há deduplicação por referência.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	tokens  TokenSource
	log     *zap.Logger
	metrics *metrics
	now     func() time.Time
}

func New(log *zap.Logger, base string, tokens TokenSource, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(base, "/"),
		HTTP:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		log:     log,
		metrics: newMetrics(),
		now:     time.Now,
	}
}

func (c *Client) InternalTransfer(ctx context.Context, in Transfer) Result {
	return c.dispatch(ctx, opTransfer, in.Reference, in.Amount, dto.TransferRequest{
		SenderPhone:            in.SenderPhone,
		SenderPin:              in.SenderPin,
		RecipientPhone:         in.RecipientPhone,
		RecipientAccountNumber: in.RecipientAccount,
		BankCode:               in.BankCode,
		AmountNaira:            money.Number(in.Amount),
		Reference:              in.Reference,
		Narration:              in.Narration,
	})
}

func (c *Client) Deposit(ctx context.Context, in Deposit) Result {
	req := dto.DepositRequest{
		UserPhone:     in.UserPhone,
		UserPin:       in.UserPin,
		AmountNaira:   money.Number(in.Amount),
		Reference:     in.Reference,
		PaymentMethod: in.Method,
	}
	if in.Method == "card" && in.Card != nil {
		req.CardDetails = &dto.CardDetails{
			CardNumber: in.Card.Number,
			ExpiryDate: in.Card.Expiry,
			CVV:        in.Card.CVV,
			CardPin:    in.Card.Pin,
		}
	}
	return c.dispatch(ctx, opDeposit, in.Reference, in.Amount, req)
}

func (c *Client) Withdrawal(ctx context.Context, in Withdrawal) Result {
	return c.dispatch(ctx, opWithdrawal, in.Reference, in.Amount, dto.WithdrawalRequest{
		UserPhone:      in.UserPhone,
		UserPin:        in.UserPin,
		TransactionPin: in.TransactionPin,
		AmountNaira:    money.Number(in.Amount),
		Reference:      in.Reference,
		BankAccount:    in.BankAccount,
	})
}

func (c *Client) Betting(ctx context.Context, in Betting) Result {
	return c.dispatch(ctx, opBetting, in.Reference, in.Amount, dto.BettingRequest{
		SenderPhone: in.SenderPhone,
		SenderPin:   in.SenderPin,
		Platform:    in.Platform,
		CustomerID:  in.CustomerID,
		AmountNaira: money.Number(in.Amount),
		Reference:   in.Reference,
		Narration:   in.Narration,
	})
}

func (c *Client) PayBill(ctx context.Context, in Bill) Result {
	return c.dispatch(ctx, opBills, in.Reference, in.Amount, dto.BillRequest{
		SenderPhone: in.SenderPhone,
		SenderPin:   in.SenderPin,
		CustomerID:  in.CustomerID,
		BillerID:    in.BillerID,
		ProductID:   in.ProductID,
		PaymentItem: in.PaymentItem,
		Division:    in.Division,
		PhoneNumber: in.PhoneNumber,
		AmountNaira: money.Number(in.Amount),
		Reference:   in.Reference,
	})
}

func (c *Client) Airtime(ctx context.Context, in Airtime) Result {
	return c.dispatch(ctx, opAirtime, in.Reference, in.Amount, dto.AirtimeRequest{
		SenderPhone: in.SenderPhone,
		SenderPin:   in.SenderPin,
		Network:     in.Network,
		PhoneNumber: in.PhoneNumber,
		PlanCode:    in.PlanCode,
		AmountNaira: money.Number(in.Amount),
		Reference:   in.Reference,
	})
}

// QueryTransaction consulta o status de uma referência no provedor.
// Success só é verdadeiro para status "success" ou "completed".
func (c *Client) QueryTransaction(ctx context.Context, reference string) Result {
	op := opQuery
	start := time.Now()
	defer func() { c.metrics.latency.WithLabelValues(op.name).Observe(time.Since(start).Seconds()) }()

	res, status, err := c.do(ctx, http.MethodGet, op.path+url.PathEscape(reference), nil)
	if err != nil {
		return c.fail(op, reference, err)
	}
	defer res.Body.Close()

	if status < 200 || status >= 300 {
		msg := providerMessage(res.Body, op.rejected)
		c.log.Warn("vfd query failed", zap.String("reference", reference), zap.Int("status", status), zap.String("message", msg))
		c.metrics.requests.WithLabelValues(op.name, "rejected").Inc()
		return Result{Reference: reference, Message: msg, Timestamp: c.now()}
	}

	var body dto.TransactionResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return c.fail(op, reference, fmt.Errorf("decode: %w", err))
	}

	out := Result{
		Success:       body.Status == "success" || body.Status == "completed",
		Reference:     reference,
		TransactionID: body.TransactionID,
		Message:       body.Message,
		Amount:        body.Amount,
		Balance:       kobo(body.NewBalance),
		Timestamp:     c.now(),
	}
	if out.Message == "" {
		out.Message = body.Status
	}
	c.metrics.requests.WithLabelValues(op.name, outcome(out.Success)).Inc()
	return out
}

// VerifyAccount consulta o nome do titular de uma conta (name enquiry).
// transferType é "intra" para contas VFD e "inter" para outros bancos.
func (c *Client) VerifyAccount(ctx context.Context, accountNo, bankCode, transferType string) (Recipient, error) {
	op := opRecipient
	out := Recipient{AccountNumber: accountNo, BankCode: bankCode}

	q := url.Values{"accountNo": {accountNo}, "bank": {bankCode}, "transfer_type": {transferType}}
	res, status, err := c.do(ctx, http.MethodGet, op.path+"?"+q.Encode(), nil)
	if err != nil {
		c.metrics.requests.WithLabelValues(op.name, "error").Inc()
		if errors.Is(err, ErrAuthFailed) {
			return out, err
		}
		c.log.Error("vfd recipient error", zap.String("account", accountNo), zap.Error(err))
		return out, fmt.Errorf("%s: %w", op.failed, err)
	}
	defer res.Body.Close()

	if status < 200 || status >= 300 {
		c.metrics.requests.WithLabelValues(op.name, "rejected").Inc()
		out.Message = providerMessage(res.Body, op.rejected)
		return out, nil
	}

	var body dto.RecipientResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return out, fmt.Errorf("%s: decode: %w", op.failed, err)
	}
	out.Found = body.Status == "00" && body.Data.Name != ""
	out.AccountName = body.Data.Name
	out.ClientID = body.Data.ClientID
	out.Message = body.Message
	if !out.Found && out.Message == "" {
		out.Message = op.rejected
	}
	c.metrics.requests.WithLabelValues(op.name, outcome(out.Found)).Inc()
	return out, nil
}

func (c *Client) dispatch(ctx context.Context, op operation, reference string, amount decimal.Decimal, payload any) Result {
	start := time.Now()
	defer func() { c.metrics.latency.WithLabelValues(op.name).Observe(time.Since(start).Seconds()) }()

	body, err := json.Marshal(payload)
	if err != nil {
		return c.fail(op, reference, err)
	}

	res, status, err := c.do(ctx, http.MethodPost, op.path, body)
	if err != nil {
		return c.fail(op, reference, err)
	}
	defer res.Body.Close()

	if status < 200 || status >= 300 {
		msg := providerMessage(res.Body, op.rejected)
		c.log.Error("vfd "+op.name+" failed", zap.String("reference", reference), zap.Int("status", status), zap.String("message", msg))
		c.metrics.requests.WithLabelValues(op.name, "rejected").Inc()
		return Result{Reference: reference, Message: msg, Timestamp: c.now()}
	}

	var data dto.TransactionResponse
	if err := json.NewDecoder(res.Body).Decode(&data); err != nil && !errors.Is(err, io.EOF) {
		return c.fail(op, reference, fmt.Errorf("decode: %w", err))
	}

	out := Result{
		Success:       true,
		Reference:     reference,
		TransactionID: data.TransactionID,
		Message:       op.ok,
		Amount:        data.Amount,
		Balance:       kobo(data.NewBalance),
		Token:         data.Token,
		Timestamp:     c.now(),
	}
	if out.Amount == nil {
		a := amount
		out.Amount = &a
	}
	c.metrics.requests.WithLabelValues(op.name, "success").Inc()
	return out
}

// do adquire um token novo e executa a requisição
func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, int, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil || token == "" {
		return nil, 0, fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, 0, err
	}
	return res, res.StatusCode, nil
}

func (c *Client) fail(op operation, reference string, err error) Result {
	msg := op.failed
	outcomeLabel := "error"
	if errors.Is(err, ErrAuthFailed) {
		msg = msgAuthFailed
		outcomeLabel = "auth_failed"
	}
	c.log.Error("vfd "+op.name+" error", zap.String("reference", reference), zap.Error(err))
	c.metrics.requests.WithLabelValues(op.name, outcomeLabel).Inc()
	return Result{Reference: reference, Message: msg, Timestamp: c.now()}
}

func providerMessage(r io.Reader, fallback string) string {
	var e dto.ErrorResponse
	if err := json.NewDecoder(r).Decode(&e); err != nil || e.Text() == "" {
		return fallback
	}
	return e.Text()
}

func kobo(d *decimal.Decimal) *int64 {
	if d == nil {
		return nil
	}
	v := d.Round(0).IntPart()
	return &v
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failed"
}
