package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/ovo-banking-gateway/internal/payments-service/receipt"
	"github.com/radieske/ovo-banking-gateway/internal/payments-service/repo"
	"github.com/radieske/ovo-banking-gateway/internal/payments-service/session"
	"github.com/radieske/ovo-banking-gateway/internal/payments-service/vfd"
	"github.com/radieske/ovo-banking-gateway/internal/shared/alerts"
	"github.com/radieske/ovo-banking-gateway/internal/shared/auth"
	"github.com/radieske/ovo-banking-gateway/internal/shared/money"
	"github.com/radieske/ovo-banking-gateway/pkg/contracts/events"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrPinNotSet          = errors.New("transaction PIN not set")
	ErrInvalidPin         = errors.New("invalid transaction PIN")
	ErrDuplicateReference = errors.New("reference already used")
	ErrRecipientNotFound  = errors.New("recipient account not found")
	ErrSelfTransfer       = errors.New("cannot transfer to your own account")
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrUnknownKind        = errors.New("unknown payment type")
)

type Users interface {
	GetUser(ctx context.Context, id string) (repo.User, error)
	UserByAccount(ctx context.Context, accountNumber string) (repo.User, error)
}

type Ledger interface {
	RecordTransaction(ctx context.Context, t repo.Transaction) error
	SaveReceipt(ctx context.Context, userID, reference, category string, payload []byte) error
}

type Dispatcher interface {
	InternalTransfer(ctx context.Context, in vfd.Transfer) vfd.Result
	Deposit(ctx context.Context, in vfd.Deposit) vfd.Result
	Withdrawal(ctx context.Context, in vfd.Withdrawal) vfd.Result
	Betting(ctx context.Context, in vfd.Betting) vfd.Result
	PayBill(ctx context.Context, in vfd.Bill) vfd.Result
	Airtime(ctx context.Context, in vfd.Airtime) vfd.Result
}

type Guard interface {
	Claim(ctx context.Context, reference, userID string) (bool, error)
}

type Sessions interface {
	Update(ctx context.Context, userID string, fn func(*session.Session)) (*session.Session, error)
}

// AlertPreferences lê as preferências de alerta do usuário (notification_preferences)
type AlertPreferences interface {
	Preferences(ctx context.Context, userID string) (alerts.Preferences, error)
}

type PendingReceipts interface {
	Put(ctx context.Context, userID string, payload []byte) error
}

type Publisher interface {
	PublishTransaction(ctx context.Context, e events.TransactionEvent) error
}

// Processor executa o fluxo de uma movimentação:
// PIN -> reserva da referência -> provedor -> estado local -> recibo -> evento
type Processor struct {
	log      *zap.Logger
	users    Users
	ledger   Ledger
	vfd      Dispatcher
	guard    Guard
	sessions Sessions
	prefs    AlertPreferences
	pending  PendingReceipts
	publ     Publisher
	now      func() time.Time
}

func NewProcessor(log *zap.Logger, u Users, l Ledger, d Dispatcher, g Guard, s Sessions, ap AlertPreferences, p PendingReceipts, pub Publisher) *Processor {
	return &Processor{log: log, users: u, ledger: l, vfd: d, guard: g, sessions: s, prefs: ap, pending: p, publ: pub, now: time.Now}
}

// Execute despacha o pagamento. Um erro só é devolvido quando o provedor
// não foi chamado; falhas do provedor voltam em Outcome.Result.
func (p *Processor) Execute(ctx context.Context, pay Payment) (Outcome, error) {
	if !pay.Kind.Valid() {
		return Outcome{}, ErrUnknownKind
	}
	if !pay.Amount.IsPositive() {
		return Outcome{}, ErrInvalidAmount
	}

	user, err := p.users.GetUser(ctx, pay.UserID)
	if errors.Is(err, repo.ErrNotFound) {
		return Outcome{}, ErrUserNotFound
	} else if err != nil {
		return Outcome{}, fmt.Errorf("load user: %w", err)
	}
	if user.PinHash == "" {
		return Outcome{}, ErrPinNotSet
	}
	if !auth.VerifyPIN(pay.Pin, user.PinHash) {
		return Outcome{}, ErrInvalidPin
	}

	var recipient repo.User
	if pay.Kind == KindInternalTransfer {
		if pay.RecipientAccount == user.AccountNumber {
			return Outcome{}, ErrSelfTransfer
		}
		recipient, err = p.users.UserByAccount(ctx, pay.RecipientAccount)
		if errors.Is(err, repo.ErrNotFound) {
			return Outcome{}, ErrRecipientNotFound
		} else if err != nil {
			return Outcome{}, fmt.Errorf("load recipient: %w", err)
		}
		if recipient.ID == user.ID {
			return Outcome{}, ErrSelfTransfer
		}
		if pay.RecipientName == "" {
			pay.RecipientName = recipient.FullName
		}
	}

	claimed, err := p.guard.Claim(ctx, pay.Reference, pay.UserID)
	if err != nil {
		return Outcome{}, err
	}
	if !claimed {
		return Outcome{}, ErrDuplicateReference
	}

	res, err := p.dispatch(ctx, user, recipient, pay)
	if err != nil {
		return Outcome{}, err
	}

	log := p.log.With(zap.String("reference", pay.Reference), zap.String("kind", string(pay.Kind)), zap.String("user_id", pay.UserID))
	if !res.Success {
		log.Warn("payment rejected", zap.String("message", res.Message))
		p.publish(ctx, log, p.event(events.TypeTransactionFailed, pay, res))
		return Outcome{Result: res}, nil
	}
	log.Info("payment completed", zap.String("transaction_id", res.TransactionID))

	ev := p.event(events.TypeTransactionCompleted, pay, res)
	rcpt := p.receipt(pay, res)
	out := Outcome{Result: res, Receipt: &rcpt}

	// Estado local: o saldo vem do provedor. Falhas aqui não mudam o sucesso.
	// A sessão só recebe o alerta de débito/crédito; os demais ficam com o worker.
	var n events.Notification
	if primary := alerts.Build(ev, p.sessionAlerts(ctx, log, pay.UserID), p.now().UTC()); len(primary) > 0 {
		n = primary[0]
	}
	sess, err := p.sessions.Update(ctx, pay.UserID, func(s *session.Session) {
		s.Apply(res, n)
	})
	if err != nil {
		log.Error("session update failed", zap.Error(err))
	} else {
		bal := sess.Snapshot().BalanceKobo
		out.Balance = &bal
	}

	party, _ := json.Marshal(partyOf(pay))
	if err := p.ledger.RecordTransaction(ctx, repo.Transaction{
		UserID:       pay.UserID,
		Reference:    pay.Reference,
		VFDReference: res.TransactionID,
		Type:         ev.Direction,
		Category:     ev.Category,
		AmountKobo:   ev.AmountKobo,
		BalanceAfter: res.Balance,
		Status:       "completed",
		Narration:    pay.Narration,
		Party:        party,
	}); err != nil {
		log.Error("record transaction failed", zap.Error(err))
	}

	if payload, err := json.Marshal(rcpt); err == nil {
		if err := p.ledger.SaveReceipt(ctx, pay.UserID, pay.Reference, string(rcpt.Category), payload); err != nil {
			log.Error("save receipt failed", zap.Error(err))
		}
		if err := p.pending.Put(ctx, pay.UserID, payload); err != nil {
			log.Error("cache pending receipt failed", zap.Error(err))
		}
	}

	p.publish(ctx, log, ev)
	return out, nil
}

func (p *Processor) sessionAlerts(ctx context.Context, log *zap.Logger, userID string) alerts.Preferences {
	prefs := alerts.DefaultPreferences()
	if p.prefs != nil {
		stored, err := p.prefs.Preferences(ctx, userID)
		if err != nil {
			log.Warn("load alert preferences failed, using defaults", zap.Error(err))
		} else {
			prefs = stored
		}
	}
	return alerts.Preferences{Debit: prefs.Debit, Credit: prefs.Credit}
}

func (p *Processor) dispatch(ctx context.Context, user, recipient repo.User, pay Payment) (vfd.Result, error) {
	switch pay.Kind {
	case KindInternalTransfer:
		return p.vfd.InternalTransfer(ctx, vfd.Transfer{
			SenderPhone:    user.Phone,
			SenderPin:      pay.Pin,
			RecipientPhone: recipient.Phone,
			Amount:         pay.Amount,
			Reference:      pay.Reference,
			Narration:      pay.Narration,
		}), nil
	case KindExternalTransfer:
		return p.vfd.InternalTransfer(ctx, vfd.Transfer{
			SenderPhone:      user.Phone,
			SenderPin:        pay.Pin,
			RecipientAccount: pay.RecipientAccount,
			BankCode:         pay.BankCode,
			Amount:           pay.Amount,
			Reference:        pay.Reference,
			Narration:        pay.Narration,
		}), nil
	case KindDeposit:
		return p.vfd.Deposit(ctx, vfd.Deposit{
			UserPhone: user.Phone,
			UserPin:   pay.Pin,
			Amount:    pay.Amount,
			Reference: pay.Reference,
			Method:    pay.Method,
			Card:      pay.Card,
		}), nil
	case KindWithdrawal:
		return p.vfd.Withdrawal(ctx, vfd.Withdrawal{
			UserPhone:      user.Phone,
			UserPin:        pay.Pin,
			TransactionPin: pay.Pin,
			Amount:         pay.Amount,
			Reference:      pay.Reference,
			BankAccount:    pay.BankAccount,
		}), nil
	case KindBetting:
		return p.vfd.Betting(ctx, vfd.Betting{
			SenderPhone: user.Phone,
			SenderPin:   pay.Pin,
			Platform:    pay.Platform,
			CustomerID:  pay.CustomerID,
			Amount:      pay.Amount,
			Reference:   pay.Reference,
			Narration:   pay.Narration,
		}), nil
	case KindBills:
		return p.vfd.PayBill(ctx, vfd.Bill{
			SenderPhone: user.Phone,
			SenderPin:   pay.Pin,
			CustomerID:  pay.CustomerID,
			BillerID:    pay.BillerID,
			ProductID:   pay.ProductID,
			PaymentItem: pay.PaymentItem,
			Division:    pay.Division,
			PhoneNumber: pay.PhoneNumber,
			Amount:      pay.Amount,
			Reference:   pay.Reference,
		}), nil
	case KindAirtime:
		return p.vfd.Airtime(ctx, vfd.Airtime{
			SenderPhone: user.Phone,
			SenderPin:   pay.Pin,
			Network:     pay.Network,
			PhoneNumber: pay.PhoneNumber,
			PlanCode:    pay.PlanCode,
			Amount:      pay.Amount,
			Reference:   pay.Reference,
		}), nil
	}
	return vfd.Result{}, ErrUnknownKind
}

func (p *Processor) event(typ string, pay Payment, res vfd.Result) events.TransactionEvent {
	amount := pay.Amount
	if res.Amount != nil {
		amount = *res.Amount
	}
	ev := events.TransactionEvent{
		Type:          typ,
		UserID:        pay.UserID,
		Reference:     pay.Reference,
		TransactionID: res.TransactionID,
		Category:      pay.Kind.Category(),
		Direction:     pay.Kind.Direction(),
		AmountKobo:    money.ToKobo(amount),
		BalanceKobo:   res.Balance,
		Counterparty:  counterparty(pay),
		Ts:            p.now().UTC(),
	}
	if typ == events.TypeTransactionFailed {
		ev.Reason = res.Message
	}
	return ev
}

func (p *Processor) publish(ctx context.Context, log *zap.Logger, ev events.TransactionEvent) {
	if err := p.publ.PublishTransaction(ctx, ev); err != nil {
		log.Error("publish transaction event failed", zap.String("type", ev.Type), zap.Error(err))
	}
}

func (p *Processor) receipt(pay Payment, res vfd.Result) receipt.Receipt {
	r := receipt.Receipt{
		Category:      receipt.CategoryOf(string(pay.Kind)),
		Reference:     pay.Reference,
		TransactionID: res.TransactionID,
		Amount:        pay.Amount,
		Narration:     pay.Narration,
		CompletedAt:   res.Timestamp,
		Fields:        map[string]string{},
	}
	if res.Amount != nil {
		r.Amount = *res.Amount
	}
	for k, v := range pay.Extra {
		r.Fields[k] = v
	}

	switch pay.Kind {
	case KindInternalTransfer, KindExternalTransfer:
		r.Recipient, r.AccountID, r.Provider = pay.RecipientName, pay.RecipientAccount, pay.BankName
		if pay.Kind == KindInternalTransfer && r.Provider == "" {
			r.Provider = "Ovomonie"
		}
	case KindBetting:
		r.AccountID, r.Provider = pay.CustomerID, pay.Platform
	case KindBills:
		r.AccountID, r.Provider = pay.CustomerID, pay.BillerName
		if r.Provider == "" {
			r.Provider = pay.BillerID
		}
		if res.Token != "" {
			r.Fields["token"] = res.Token
		}
	case KindAirtime:
		r.AccountID, r.Provider = pay.PhoneNumber, pay.Network
		if pay.PlanCode != "" {
			r.Fields["plan"] = pay.PlanCode
		}
	case KindDeposit:
		r.Provider = pay.Method
		if pay.Card != nil && len(pay.Card.Number) >= 4 {
			r.AccountID = "**** " + pay.Card.Number[len(pay.Card.Number)-4:]
		}
	case KindWithdrawal:
		r.AccountID = pay.BankAccount
	}
	if len(r.Fields) == 0 {
		r.Fields = nil
	}
	return r
}

func counterparty(pay Payment) string {
	switch pay.Kind {
	case KindInternalTransfer, KindExternalTransfer:
		if pay.RecipientName != "" {
			return pay.RecipientName
		}
		return pay.RecipientAccount
	case KindBetting:
		return pay.Platform
	case KindBills:
		if pay.BillerName != "" {
			return pay.BillerName
		}
		return pay.BillerID
	case KindAirtime:
		return pay.Network
	}
	return ""
}

func partyOf(pay Payment) map[string]string {
	m := map[string]string{}
	set := func(k, v string) {
		if v != "" {
			m[k] = v
		}
	}
	set("accountNumber", pay.RecipientAccount)
	set("bankCode", pay.BankCode)
	set("name", pay.RecipientName)
	set("platform", pay.Platform)
	set("customerId", pay.CustomerID)
	set("billerId", pay.BillerID)
	set("network", pay.Network)
	set("phoneNumber", pay.PhoneNumber)
	set("method", pay.Method)
	return m
}
