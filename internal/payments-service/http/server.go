package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/ovo-banking-gateway/internal/payments-service/dto"
	"github.com/radieske/ovo-banking-gateway/internal/payments-service/orchestrator"
	"github.com/radieske/ovo-banking-gateway/internal/payments-service/receipt"
	"github.com/radieske/ovo-banking-gateway/internal/payments-service/repo"
	"github.com/radieske/ovo-banking-gateway/internal/payments-service/session"
	"github.com/radieske/ovo-banking-gateway/internal/payments-service/vfd"
	"github.com/radieske/ovo-banking-gateway/internal/payments-service/ws"
	"github.com/radieske/ovo-banking-gateway/internal/shared/auth"
)

type Payments interface {
	Execute(ctx context.Context, p orchestrator.Payment) (orchestrator.Outcome, error)
}

type Provider interface {
	QueryTransaction(ctx context.Context, reference string) vfd.Result
	VerifyAccount(ctx context.Context, accountNo, bankCode, transferType string) (vfd.Recipient, error)
}

// Store é a parte de leitura do registro secundário usada pela API
type Store interface {
	GetTransaction(ctx context.Context, userID, reference string) (repo.Transaction, error)
	ListTransactions(ctx context.Context, userID string, limit int) ([]repo.Transaction, error)
	GetReceipt(ctx context.Context, userID, reference string) (repo.StoredReceipt, error)
	ListReceipts(ctx context.Context, userID string, limit int) ([]repo.StoredReceipt, error)
	PendingReceipt(ctx context.Context, userID string) (repo.StoredReceipt, error)
	ClearPendingReceipt(ctx context.Context, userID string) error
	ListNotifications(ctx context.Context, userID string, limit int, unreadOnly bool) ([]repo.Notification, error)
	MarkNotificationsRead(ctx context.Context, userID string, ids []string) (int64, error)
	YearSummary(ctx context.Context, userID string, year int, loc *time.Location) ([]repo.CategoryTotal, error)
}

type Sessions interface {
	Get(ctx context.Context, userID string) (*session.Session, error)
}

type Pending interface {
	Get(ctx context.Context, userID string) ([]byte, error)
	Clear(ctx context.Context, userID string) error
}

type Prefs interface {
	Get(ctx context.Context, userID string) (map[string]string, error)
	Set(ctx context.Context, userID string, values map[string]string) error
}

type Owners interface {
	Owner(ctx context.Context, reference string) (string, error)
}

// Deps agrupa as dependências do servidor HTTP
type Deps struct {
	Payments Payments
	Provider Provider
	Store    Store
	Sessions Sessions
	Pending  Pending
	Prefs    Prefs
	Owners   Owners
	Hub      *ws.Hub
	Tokens   *auth.Issuer

	RateLimitRPS   float64
	AllowedOrigins []string // vazio = qualquer origem
}

// Server expõe a API interna do payments-service
type Server struct {
	log *zap.Logger
	Deps
	metrics *httpMetrics
	now     func() time.Time
	pdf     func(receipt.View) ([]byte, error)
}

func NewServer(log *zap.Logger, d Deps) *Server {
	return &Server{log: log, Deps: d, metrics: newHTTPMetrics(), now: time.Now, pdf: receipt.PDF}
}

// Router monta as rotas públicas; tudo sob /api exige bearer token
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.withCORS, s.instrument)

	r.Get("/api/health", s.health)
	r.Get("/api/banks", s.listBanks)
	r.With(s.authenticate(true)).Get("/ws", s.serveWS)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.rateLimit(), s.authenticate(false))

		r.Post("/payments", s.createPayment)
		r.Post("/transfers/internal", s.internalTransfer)
		r.Post("/transfers/external", s.externalTransfer)
		r.Post("/transfers/verify-account", s.verifyAccount)
		r.Post("/deposits", s.deposit)
		r.Post("/withdrawals", s.withdrawal)

		r.Get("/transactions", s.listTransactions)
		r.Get("/transactions/{reference}", s.queryTransaction)

		r.Get("/receipts", s.listReceipts)
		r.Get("/receipts/pending", s.pendingReceipt)
		r.Delete("/receipts/pending", s.clearPendingReceipt)
		r.Get("/receipts/{reference}", s.getReceipt)
		r.Get("/receipts/{reference}/share", s.shareReceipt)

		r.Get("/wallet", s.wallet)
		r.Get("/notifications", s.listNotifications)
		r.Post("/notifications/read-all", s.markAllRead)
		r.Post("/notifications/{id}/read", s.markRead)
		r.Get("/preferences", s.getPreferences)
		r.Put("/preferences", s.putPreferences)

		r.Get("/wealth/tax-optimization", s.taxSummary)
		r.Post("/wealth/tax-optimization", s.taxReport)
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "time": s.now().UTC()})
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	if s.Hub == nil {
		writeJSON(w, http.StatusServiceUnavailable, dto.ErrorResponse{Message: "Realtime updates unavailable"})
		return
	}
	s.Hub.Serve(w, r, auth.UserID(r.Context()))
}
