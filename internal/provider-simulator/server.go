package simulator

import (
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	vdto "github.com/radieske/ovo-banking-gateway/internal/payments-service/vfd/dto"
	sdto "github.com/radieske/ovo-banking-gateway/internal/provider-simulator/dto"
	"github.com/radieske/ovo-banking-gateway/internal/shared/money"
)

// StartingBalanceKobo saldo inicial de cada telefone visto pela primeira vez
const StartingBalanceKobo int64 = 100_000_00

// Account é uma conta conhecida pela consulta de nome
type Account struct {
	Number   string
	BankCode string
	Name     string
}

type txn struct {
	id         string
	op         string
	phone      string
	amountKobo int64
	balance    int64
	status     string
	message    string
	token      string
	at         time.Time
}

// Server imita os endpoints do VFD usados pelo payments-service
type Server struct {
	log *zap.Logger

	Key, Secret string  // credenciais aceitas em /token; vazio aceita qualquer uma
	FailureRate float64 // fração de pagamentos recusados

	mu       sync.Mutex
	tokens   map[string]time.Time
	balances map[string]int64
	txns     map[string]*txn
	accounts map[string]Account

	roll     func() float64
	now      func() time.Time
	requests *prometheus.CounterVec
}

func New(log *zap.Logger, key, secret string, failureRate float64, accounts []Account) *Server {
	s := &Server{
		log:         log,
		Key:         key,
		Secret:      secret,
		FailureRate: failureRate,
		tokens:      map[string]time.Time{},
		balances:    map[string]int64{},
		txns:        map[string]*txn{},
		accounts:    map[string]Account{},
		roll:        rand.Float64,
		now:         time.Now,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "provider_sim_requests_total",
			Help: "Requisições atendidas pelo simulador por endpoint e resultado",
		}, []string{"endpoint", "outcome"}),
	}
	for _, a := range accounts {
		s.accounts[a.BankCode+"/"+a.Number] = a
	}
	return s
}

func (s *Server) Collectors() []prometheus.Collector {
	return []prometheus.Collector{s.requests}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Post("/token", s.token)

	r.Group(func(r chi.Router) {
		r.Use(s.bearer)
		r.Post("/transfer", s.transfer)
		r.Post("/deposit", s.deposit)
		r.Post("/withdrawal", s.withdrawal)
		r.Post("/betting", s.betting)
		r.Post("/bills", s.bills)
		r.Post("/airtime", s.airtime)
		r.Get("/transaction/{reference}", s.query)
		r.Get("/transfer/recipient", s.recipient)
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// token emite um access token para client credentials via Basic auth
func (s *Server) token(w http.ResponseWriter, r *http.Request) {
	user, pass, ok := basicAuth(r.Header.Get("Authorization"))
	if !ok || (s.Key != "" && !(equal(user, s.Key) && equal(pass, s.Secret))) {
		s.requests.WithLabelValues("token", "rejected").Inc()
		writeJSON(w, http.StatusUnauthorized, sdto.ErrorResp{Status: "401", Message: "invalid client credentials"})
		return
	}
	tok := "sim-" + uuid.NewString()
	s.mu.Lock()
	s.tokens[tok] = s.now().Add(time.Hour)
	s.mu.Unlock()
	s.requests.WithLabelValues("token", "success").Inc()
	writeJSON(w, http.StatusOK, sdto.TokenResp{AccessToken: tok, TokenType: "Bearer", ExpiresIn: 3600})
}

func basicAuth(h string) (string, string, bool) {
	const prefix = "Basic "
	if !strings.HasPrefix(h, prefix) {
		return "", "", false
	}
	raw, err := base64.StdEncoding.DecodeString(h[len(prefix):])
	if err != nil {
		return "", "", false
	}
	user, pass, ok := strings.Cut(string(raw), ":")
	return user, pass, ok
}

func equal(a, b string) bool { return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1 }

func (s *Server) bearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		exp, ok := s.tokens[tok]
		s.mu.Unlock()
		if !ok || s.now().After(exp) {
			writeJSON(w, http.StatusUnauthorized, sdto.ErrorResp{Status: "401", Message: "invalid or expired token"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// movement descreve uma movimentação já decodificada
type movement struct {
	op        string
	phone     string
	reference string
	amount    json.Number
	credit    bool
	payee     string // telefone creditado em transferência interna
	token     bool   // gera token de energia
	decline   string // recusa determinística (ex.: cartão)
}

func (s *Server) transfer(w http.ResponseWriter, r *http.Request) {
	var req vdto.TransferRequest
	if !s.decode(w, r, "transfer", &req) {
		return
	}
	s.apply(w, movement{op: "transfer", phone: req.SenderPhone, reference: req.Reference, amount: req.AmountNaira, payee: req.RecipientPhone})
}

func (s *Server) deposit(w http.ResponseWriter, r *http.Request) {
	var req vdto.DepositRequest
	if !s.decode(w, r, "deposit", &req) {
		return
	}
	m := movement{op: "deposit", phone: req.UserPhone, reference: req.Reference, amount: req.AmountNaira, credit: true}
	if req.PaymentMethod == "card" {
		if req.CardDetails == nil {
			m.decline = "card details required"
		} else if strings.HasSuffix(req.CardNumber, "0002") {
			m.decline = "Card declined"
		}
	}
	s.apply(w, m)
}

func (s *Server) withdrawal(w http.ResponseWriter, r *http.Request) {
	var req vdto.WithdrawalRequest
	if !s.decode(w, r, "withdrawal", &req) {
		return
	}
	s.apply(w, movement{op: "withdrawal", phone: req.UserPhone, reference: req.Reference, amount: req.AmountNaira})
}

func (s *Server) betting(w http.ResponseWriter, r *http.Request) {
	var req vdto.BettingRequest
	if !s.decode(w, r, "betting", &req) {
		return
	}
	s.apply(w, movement{op: "betting", phone: req.SenderPhone, reference: req.Reference, amount: req.AmountNaira})
}

func (s *Server) bills(w http.ResponseWriter, r *http.Request) {
	var req vdto.BillRequest
	if !s.decode(w, r, "bills", &req) {
		return
	}
	s.apply(w, movement{op: "bills", phone: req.SenderPhone, reference: req.Reference, amount: req.AmountNaira, token: isEnergy(req.BillerID)})
}

func (s *Server) airtime(w http.ResponseWriter, r *http.Request) {
	var req vdto.AirtimeRequest
	if !s.decode(w, r, "airtime", &req) {
		return
	}
	s.apply(w, movement{op: "airtime", phone: req.SenderPhone, reference: req.Reference, amount: req.AmountNaira})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, op string, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.requests.WithLabelValues(op, "bad_request").Inc()
		writeJSON(w, http.StatusBadRequest, sdto.ErrorResp{Status: "400", Message: "invalid request body"})
		return false
	}
	return true
}

// apply valida, debita/credita e registra a movimentação. Referência repetida
// é recusada com 409.
func (s *Server) apply(w http.ResponseWriter, m movement) {
	amount, err := decimal.NewFromString(m.amount.String())
	if err != nil || !amount.IsPositive() || m.reference == "" || m.phone == "" {
		s.requests.WithLabelValues(m.op, "bad_request").Inc()
		writeJSON(w, http.StatusBadRequest, sdto.ErrorResp{Status: "400", Message: "invalid amount, reference or phone"})
		return
	}
	kobo := money.ToKobo(amount)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.txns[m.reference]; dup {
		s.requests.WithLabelValues(m.op, "duplicate").Inc()
		writeJSON(w, http.StatusConflict, sdto.ErrorResp{Status: "409", Message: "Duplicate transaction reference"})
		return
	}

	bal := s.balanceLocked(m.phone)
	t := &txn{id: fmt.Sprintf("%s-%s", m.op, uuid.NewString()[:8]), op: m.op, phone: m.phone, amountKobo: kobo, balance: bal, at: s.now()}
	s.txns[m.reference] = t

	reject := func(msg string) {
		t.status, t.message = sdto.StatusFailed, msg
		s.requests.WithLabelValues(m.op, "rejected").Inc()
		s.log.Info("simulated rejection", zap.String("op", m.op), zap.String("reference", m.reference), zap.String("reason", msg))
		writeJSON(w, http.StatusBadRequest, sdto.ErrorResp{Status: "99", Message: msg})
	}
	switch {
	case m.decline != "":
		reject(m.decline)
		return
	case !m.credit && bal < kobo:
		reject("Insufficient funds")
		return
	case s.FailureRate > 0 && s.roll() < s.FailureRate:
		reject("Transaction declined by provider")
		return
	}

	if m.credit {
		bal += kobo
	} else {
		bal -= kobo
	}
	s.balances[m.phone] = bal
	if m.payee != "" {
		s.balances[m.payee] = s.balanceLocked(m.payee) + kobo
	}
	t.balance, t.status, t.message = bal, sdto.StatusSuccess, "Transaction successful"
	if m.token {
		t.token = meterToken()
	}

	s.requests.WithLabelValues(m.op, "success").Inc()
	writeJSON(w, http.StatusOK, sdto.TransactionResp{
		TransactionID: t.id,
		Status:        t.status,
		Message:       t.message,
		AmountNaira:   money.FromKobo(kobo).StringFixed(2),
		NewBalance:    bal,
		Token:         t.token,
	})
}

func (s *Server) balanceLocked(phone string) int64 {
	bal, ok := s.balances[phone]
	if !ok {
		bal = StartingBalanceKobo
		s.balances[phone] = bal
	}
	return bal
}

func (s *Server) query(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "reference")
	s.mu.Lock()
	t, ok := s.txns[ref]
	var resp sdto.TransactionResp
	if ok {
		resp = sdto.TransactionResp{
			TransactionID: t.id,
			Status:        t.status,
			Message:       t.message,
			AmountNaira:   money.FromKobo(t.amountKobo).StringFixed(2),
			NewBalance:    t.balance,
			Token:         t.token,
		}
	}
	s.mu.Unlock()

	if !ok {
		s.requests.WithLabelValues("query", "not_found").Inc()
		writeJSON(w, http.StatusNotFound, sdto.ErrorResp{Status: "404", Message: "Transaction not found"})
		return
	}
	s.requests.WithLabelValues("query", "success").Inc()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) recipient(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	a, ok := s.accounts[q.Get("bank")+"/"+q.Get("accountNo")]
	if !ok {
		s.requests.WithLabelValues("recipient", "not_found").Inc()
		writeJSON(w, http.StatusOK, sdto.RecipientResp{Status: "104", Message: "Account not found"})
		return
	}
	resp := sdto.RecipientResp{Status: "00", Message: "Account found"}
	resp.Data.Name = a.Name
	resp.Data.ClientID = "sim-" + a.Number
	resp.Data.Account.Number = a.Number
	resp.Data.Account.ID = a.BankCode + a.Number
	s.requests.WithLabelValues("recipient", "success").Inc()
	writeJSON(w, http.StatusOK, resp)
}

func isEnergy(billerID string) bool {
	id := strings.ToLower(billerID)
	for _, p := range []string{"ekedc", "ikedc", "aedc", "phed", "kedco", "ibedc", "eedc", "electric"} {
		if strings.Contains(id, p) {
			return true
		}
	}
	return false
}

// meterToken gera um token STS de 20 dígitos em grupos de 4
func meterToken() string {
	var b strings.Builder
	for i := 0; i < 20; i++ {
		if i > 0 && i%4 == 0 {
			b.WriteByte('-')
		}
		b.WriteByte(byte('0' + rand.Intn(10)))
	}
	return b.String()
}
