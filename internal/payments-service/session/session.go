package session

import (
	"sync"
	"time"

	"github.com/radieske/ovo-banking-gateway/internal/payments-service/vfd"
	"github.com/radieske/ovo-banking-gateway/pkg/contracts/events"
)

// MaxNotifications limita a lista mantida na sessão; as mais antigas saem primeiro
const MaxNotifications = 50

// Session guarda o estado local do usuário: saldo espelhado do provedor e
// notificações recentes. Um único escritor por vez.
type Session struct {
	mu            sync.Mutex
	userID        string
	balanceKobo   int64
	stale         bool
	notifications []events.Notification
	updatedAt     time.Time
}

func New(userID string, balanceKobo int64) *Session {
	return &Session{userID: userID, balanceKobo: balanceKobo, updatedAt: time.Now().UTC()}
}

// Apply aplica o resultado de uma transação. Em falha nada muda.
// Em sucesso o saldo vem do novo saldo do provedor; sem ele o saldo fica
// marcado como desatualizado para ser recarregado.
func (s *Session) Apply(res vfd.Result, n events.Notification) bool {
	if !res.Success {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if res.Balance != nil {
		s.balanceKobo = *res.Balance
		s.stale = false
	} else {
		s.stale = true
	}
	s.push(n)
	s.updatedAt = res.Timestamp
	return true
}

// Notify adiciona uma notificação sem alterar o saldo
func (s *Session) Notify(n events.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.push(n)
}

// Refresh substitui o saldo por um valor recarregado da base
func (s *Session) Refresh(balanceKobo int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balanceKobo = balanceKobo
	s.stale = false
	s.updatedAt = time.Now().UTC()
}

func (s *Session) push(n events.Notification) {
	if n.ID == "" {
		return
	}
	s.notifications = append([]events.Notification{n}, s.notifications...)
	if len(s.notifications) > MaxNotifications {
		s.notifications = s.notifications[:MaxNotifications]
	}
}

// Snapshot é a forma serializável da sessão
type Snapshot struct {
	UserID        string                `json:"user_id"`
	BalanceKobo   int64                 `json:"balance_kobo"`
	Stale         bool                  `json:"stale"`
	Notifications []events.Notification `json:"notifications"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	ns := make([]events.Notification, len(s.notifications))
	copy(ns, s.notifications)
	return Snapshot{
		UserID:        s.userID,
		BalanceKobo:   s.balanceKobo,
		Stale:         s.stale,
		Notifications: ns,
		UpdatedAt:     s.updatedAt,
	}
}

func FromSnapshot(snap Snapshot) *Session {
	return &Session{
		userID:        snap.UserID,
		balanceKobo:   snap.BalanceKobo,
		stale:         snap.Stale,
		notifications: snap.Notifications,
		updatedAt:     snap.UpdatedAt,
	}
}
