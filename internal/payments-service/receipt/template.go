package receipt

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryTransfer   Category = "transfer"
	CategoryBetting    Category = "betting"
	CategoryUtility    Category = "utility"
	CategoryAirtime    Category = "airtime"
	CategoryDeposit    Category = "deposit"
	CategoryWithdrawal Category = "withdrawal"
)

// Receipt é a projeção de uma transação concluída, marcada por categoria.
// Campos opcionais da categoria ficam em Fields e podem estar ausentes.
type Receipt struct {
	Category      Category          `json:"category"`
	Reference     string            `json:"reference"`
	TransactionID string            `json:"transactionId,omitempty"`
	Amount        decimal.Decimal   `json:"amount"`
	Recipient     string            `json:"recipient,omitempty"` // nome verificado
	AccountID     string            `json:"accountId,omitempty"` // conta, telefone, medidor, id na plataforma
	Provider      string            `json:"provider,omitempty"`  // banco, biller, plataforma, operadora
	Narration     string            `json:"narration,omitempty"`
	CompletedAt   time.Time         `json:"completedAt"`
	Fields        map[string]string `json:"fields,omitempty"`
}

type Field struct {
	Key   string
	Label string
}

type Template struct {
	Category     Category
	Title        string
	Name         string
	AccountLabel string
	ProviderName string
	Icon         string
	Color        string
	Fields       []Field
}

var templates = map[Category]Template{
	CategoryTransfer: {
		Category: CategoryTransfer, Title: "Transfer Successful", Name: "Transfer Receipt",
		AccountLabel: "Account Number", ProviderName: "Bank", Icon: "send", Color: "#13284d",
		Fields: []Field{{"sessionId", "Session ID"}},
	},
	CategoryBetting: {
		Category: CategoryBetting, Title: "Betting Wallet Funded", Name: "Betting Wallet Receipt",
		AccountLabel: "Customer ID", ProviderName: "Platform", Icon: "trophy", Color: "#10b981",
		Fields: []Field{{"walletBalance", "Wallet Balance"}, {"bonusAmount", "Bonus"}},
	},
	CategoryUtility: {
		Category: CategoryUtility, Title: "Bill Payment Successful", Name: "Utility Bill Receipt",
		AccountLabel: "Meter Number", ProviderName: "Biller", Icon: "zap", Color: "#f59e0b",
		Fields: []Field{{"units", "Units"}, {"tariff", "Tariff"}, {"bouquet", "Package"}},
	},
	CategoryAirtime: {
		Category: CategoryAirtime, Title: "Airtime Purchase Successful", Name: "Airtime Receipt",
		AccountLabel: "Phone Number", ProviderName: "Network", Icon: "phone", Color: "#6366f1",
		Fields: []Field{{"plan", "Data Plan"}},
	},
	CategoryDeposit: {
		Category: CategoryDeposit, Title: "Wallet Funded", Name: "Deposit Receipt",
		AccountLabel: "Funding Source", ProviderName: "Method", Icon: "plus", Color: "#0ea5e9",
	},
	CategoryWithdrawal: {
		Category: CategoryWithdrawal, Title: "Withdrawal Successful", Name: "Withdrawal Receipt",
		AccountLabel: "Bank Account", ProviderName: "Bank", Icon: "bank", Color: "#ef4444",
	},
}

// TemplateFor devolve o template da categoria; desconhecida cai no de transferência
func TemplateFor(c Category) Template {
	if t, ok := templates[Category(strings.ToLower(string(c)))]; ok {
		return t
	}
	return templates[CategoryTransfer]
}

// CategoryOf mapeia o tipo de pagamento para a categoria do recibo
func CategoryOf(paymentType string) Category {
	switch strings.ToLower(paymentType) {
	case "betting":
		return CategoryBetting
	case "bills", "bill", "utility", "electricity", "cable_tv", "internet", "water":
		return CategoryUtility
	case "airtime", "data":
		return CategoryAirtime
	case "deposit":
		return CategoryDeposit
	case "withdrawal":
		return CategoryWithdrawal
	default:
		return CategoryTransfer
	}
}
