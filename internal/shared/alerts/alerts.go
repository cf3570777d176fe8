package alerts

import (
	"time"

	"github.com/google/uuid"

	"github.com/radieske/ovo-banking-gateway/internal/shared/money"
	"github.com/radieske/ovo-banking-gateway/pkg/contracts/events"
)

// Limiares em kobo
const (
	LargeTransactionKobo int64 = 50_000_00
	LowBalanceKobo       int64 = 1_000_00
)

const (
	TypeDebit            = "debit"
	TypeCredit           = "credit"
	TypeLargeTransaction = "large_transaction"
	TypeLowBalance       = "low_balance"
	TypeFailed           = "failed_transaction"
)

// Preferences liga/desliga cada alerta por usuário
type Preferences struct {
	Debit            bool `json:"debitAlerts"`
	Credit           bool `json:"creditAlerts"`
	LargeTransaction bool `json:"largeTransactions"`
	LowBalance       bool `json:"lowBalance"`
	Failed           bool `json:"failedTransactions"`
}

func DefaultPreferences() Preferences {
	return Preferences{Debit: true, Credit: true, LargeTransaction: true, LowBalance: true, Failed: true}
}

// Build aplica as regras de alerta a um evento de transação
func Build(e events.TransactionEvent, p Preferences, now time.Time) []events.Notification {
	var out []events.Notification
	add := func(typ, title, msg string) {
		out = append(out, events.Notification{
			ID:        uuid.NewString(),
			UserID:    e.UserID,
			Type:      typ,
			Title:     title,
			Message:   msg,
			Reference: e.Reference,
			Metadata:  map[string]any{"category": e.Category, "amountKobo": e.AmountKobo},
			CreatedAt: now,
		})
	}
	amount := money.FormatNaira(money.FromKobo(e.AmountKobo))

	if e.Type == events.TypeTransactionFailed {
		if p.Failed {
			add(TypeFailed, "Failed Transaction", "A transaction failed: "+e.Reason)
		}
		return out
	}

	switch e.Direction {
	case events.DirectionDebit:
		if p.Debit {
			add(TypeDebit, "Debit Alert", amount+" debited from your account.")
		}
		if e.AmountKobo > LargeTransactionKobo && p.LargeTransaction {
			add(TypeLargeTransaction, "Large Transaction Alert", "A large debit of "+amount+" occurred.")
		}
	case events.DirectionCredit:
		if p.Credit {
			add(TypeCredit, "Credit Alert", amount+" credited to your account.")
		}
	}

	if e.BalanceKobo != nil && *e.BalanceKobo < LowBalanceKobo && p.LowBalance {
		add(TypeLowBalance, "Low Balance Alert", "Your account balance is low: "+money.FormatNaira(money.FromKobo(*e.BalanceKobo))+".")
	}
	return out
}
