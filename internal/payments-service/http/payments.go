package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/ovo-banking-gateway/internal/payments-service/banks"
	"github.com/radieske/ovo-banking-gateway/internal/payments-service/dto"
	"github.com/radieske/ovo-banking-gateway/internal/payments-service/orchestrator"
	"github.com/radieske/ovo-banking-gateway/internal/payments-service/receipt"
	"github.com/radieske/ovo-banking-gateway/internal/payments-service/repo"
	"github.com/radieske/ovo-banking-gateway/internal/payments-service/vfd"
	"github.com/radieske/ovo-banking-gateway/internal/shared/auth"
	"github.com/radieske/ovo-banking-gateway/internal/shared/validate"
)

const maxBody = 1 << 20

// decode lê e valida o corpo; em erro já responde 400
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid JSON body"})
		return false
	}
	if err := validate.Struct(v); err != nil {
		badRequest(w, err)
		return false
	}
	return true
}

func badRequest(w http.ResponseWriter, err error) {
	var verrs validate.Errors
	if errors.As(err, &verrs) {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request", Errors: verrs})
		return
	}
	writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
}

func (s *Server) createPayment(w http.ResponseWriter, r *http.Request) {
	var req dto.PaymentRequest
	if !decode(w, r, &req) {
		return
	}

	pay := orchestrator.Payment{
		UserID:    auth.UserID(r.Context()),
		Reference: req.ClientReference,
		Amount:    req.Amount,
		Pin:       req.Pin,
		Narration: req.Narration,
		Extra:     req.Extra,
	}
	var missing validate.Errors
	need := func(field, v string) {
		if v == "" {
			missing = append(missing, validate.FieldError{Field: "party." + field, Message: "is required"})
		}
	}

	switch req.Category {
	case "betting":
		need("platform", req.Party.Platform)
		need("accountId", req.Party.AccountID)
		pay.Kind, pay.Platform, pay.CustomerID = orchestrator.KindBetting, req.Party.Platform, req.Party.AccountID
	case "bills":
		need("billerId", req.Party.BillerID)
		need("accountId", req.Party.AccountID)
		pay.Kind = orchestrator.KindBills
		pay.BillerID, pay.BillerName, pay.CustomerID = req.Party.BillerID, req.Party.BillerName, req.Party.AccountID
		pay.ProductID, pay.PaymentItem, pay.Division = req.Party.ProductID, req.Party.PaymentItem, req.Party.Division
		pay.PhoneNumber = req.Party.PhoneNumber
	case "airtime", "data":
		need("network", req.Party.Network)
		need("phoneNumber", req.Party.PhoneNumber)
		if req.Category == "data" {
			need("planCode", req.Party.PlanCode)
		}
		pay.Kind, pay.Network, pay.PhoneNumber, pay.PlanCode = orchestrator.KindAirtime, req.Party.Network, req.Party.PhoneNumber, req.Party.PlanCode
	}
	if len(missing) > 0 {
		badRequest(w, missing)
		return
	}
	if pay.Narration == "" && req.Party.Name != "" {
		pay.Narration = "Payment for " + req.Party.Name
	}
	s.execute(w, r, pay)
}

func (s *Server) internalTransfer(w http.ResponseWriter, r *http.Request) {
	var req dto.InternalTransferRequest
	if !decode(w, r, &req) {
		return
	}
	s.execute(w, r, orchestrator.Payment{
		UserID:           auth.UserID(r.Context()),
		Kind:             orchestrator.KindInternalTransfer,
		Reference:        req.ClientReference,
		Amount:           req.Amount,
		Pin:              req.Pin,
		Narration:        req.Narration,
		RecipientAccount: req.RecipientAccountNumber,
	})
}

func (s *Server) externalTransfer(w http.ResponseWriter, r *http.Request) {
	var req dto.ExternalTransferRequest
	if !decode(w, r, &req) {
		return
	}
	bankName, ok := banks.Name(req.BankCode)
	if !ok {
		badRequest(w, validate.Errors{{Field: "bankCode", Message: "unknown bank"}})
		return
	}
	s.execute(w, r, orchestrator.Payment{
		UserID:           auth.UserID(r.Context()),
		Kind:             orchestrator.KindExternalTransfer,
		Reference:        req.ClientReference,
		Amount:           req.Amount,
		Pin:              req.Pin,
		Narration:        req.Narration,
		RecipientAccount: req.RecipientAccountNumber,
		RecipientName:    req.RecipientName,
		BankCode:         req.BankCode,
		BankName:         bankName,
	})
}

func (s *Server) deposit(w http.ResponseWriter, r *http.Request) {
	var req dto.DepositRequest
	if !decode(w, r, &req) {
		return
	}
	pay := orchestrator.Payment{
		UserID:    auth.UserID(r.Context()),
		Kind:      orchestrator.KindDeposit,
		Reference: req.ClientReference,
		Amount:    req.Amount,
		Pin:       req.Pin,
		Method:    req.Method,
	}
	if req.Card != nil && req.Method == "card" {
		pay.Card = &vfd.Card{Number: req.Card.Number, Expiry: req.Card.Expiry, CVV: req.Card.CVV, Pin: req.Card.Pin}
	}
	s.execute(w, r, pay)
}

func (s *Server) withdrawal(w http.ResponseWriter, r *http.Request) {
	var req dto.WithdrawalRequest
	if !decode(w, r, &req) {
		return
	}
	s.execute(w, r, orchestrator.Payment{
		UserID:      auth.UserID(r.Context()),
		Kind:        orchestrator.KindWithdrawal,
		Reference:   req.ClientReference,
		Amount:      req.Amount,
		Pin:         req.Pin,
		BankAccount: req.BankAccount,
	})
}

// execute roda o pagamento e traduz o resultado. Falha do provedor vira 502
// com o corpo {success:false, message}.
func (s *Server) execute(w http.ResponseWriter, r *http.Request, pay orchestrator.Payment) {
	out, err := s.Payments.Execute(r.Context(), pay)
	if err != nil {
		s.paymentError(w, r, pay, err)
		return
	}
	resp := dto.PaymentResponse{Result: out.Result}
	if out.Receipt != nil {
		v := receipt.Render(*out.Receipt)
		resp.Receipt = &v
	}
	status := http.StatusOK
	if !out.Result.Success {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, resp)
}

type duplicateResponse struct {
	dto.ErrorResponse
	Reference string        `json:"reference"`
	Receipt   *receipt.View `json:"receipt,omitempty"`
}

func (s *Server) paymentError(w http.ResponseWriter, r *http.Request, pay orchestrator.Payment, err error) {
	switch {
	case errors.Is(err, orchestrator.ErrDuplicateReference):
		resp := duplicateResponse{
			ErrorResponse: dto.ErrorResponse{Message: "This transaction reference has already been used"},
			Reference:     pay.Reference,
		}
		if stored, err := s.Store.GetReceipt(r.Context(), pay.UserID, pay.Reference); err == nil {
			var rc receipt.Receipt
			if json.Unmarshal(stored.Payload, &rc) == nil {
				v := receipt.Render(rc)
				resp.Receipt = &v
			}
		}
		writeJSON(w, http.StatusConflict, resp)
	case errors.Is(err, orchestrator.ErrInvalidPin):
		writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Message: "Invalid transaction PIN"})
	case errors.Is(err, orchestrator.ErrPinNotSet):
		writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Message: "Please set a transaction PIN first"})
	case errors.Is(err, orchestrator.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Message: "User not found"})
	case errors.Is(err, orchestrator.ErrRecipientNotFound):
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Message: "Recipient account not found"})
	case errors.Is(err, orchestrator.ErrSelfTransfer),
		errors.Is(err, orchestrator.ErrInvalidAmount),
		errors.Is(err, orchestrator.ErrUnknownKind):
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
	default:
		s.log.Error("payment not dispatched", zap.String("reference", pay.Reference), zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, dto.ErrorResponse{Message: "Service temporarily unavailable, please try again"})
	}
}

func (s *Server) verifyAccount(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyAccountRequest
	if !decode(w, r, &req) {
		return
	}
	if _, ok := banks.Name(req.BankCode); !ok {
		badRequest(w, validate.Errors{{Field: "bankCode", Message: "unknown bank"}})
		return
	}
	rec, err := s.Provider.VerifyAccount(r.Context(), req.AccountNumber, req.BankCode, banks.TransferType(req.BankCode))
	if err != nil {
		msg := "Account verification failed"
		if errors.Is(err, vfd.ErrAuthFailed) {
			msg = vfd.ErrAuthFailed.Error()
		}
		writeJSON(w, http.StatusBadGateway, dto.ErrorResponse{Message: msg})
		return
	}
	if !rec.Found {
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": rec.Message, "recipient": rec})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "recipient": rec})
}

func (s *Server) listBanks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, banks.List())
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.Store.ListTransactions(r.Context(), auth.UserID(r.Context()), limit(r, 20, 100))
	if err != nil {
		s.internalError(w, "list transactions", err)
		return
	}
	if txs == nil {
		txs = []repo.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

// queryTransaction consulta o status no provedor; só o dono da referência pode consultar
func (s *Server) queryTransaction(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "reference")
	uid := auth.UserID(r.Context())

	owner, err := s.Owners.Owner(r.Context(), ref)
	if err != nil {
		s.internalError(w, "reference owner", err)
		return
	}
	if owner == "" {
		if _, err := s.Store.GetTransaction(r.Context(), uid, ref); err == nil {
			owner = uid
		}
	}
	if owner != uid {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Message: "Transaction not found"})
		return
	}

	res := s.Provider.QueryTransaction(r.Context(), ref)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.log.Error(op+" failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Message: "Internal server error"})
}
