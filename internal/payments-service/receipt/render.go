package receipt

import (
	"time"

	"github.com/radieske/ovo-banking-gateway/internal/shared/money"
)

const footer = "Powered by Ovomonie"

type Line struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// View é o recibo pronto para exibição ou exportação
type View struct {
	Reference string `json:"reference"`
	Title     string `json:"title"`
	Subtitle  string `json:"subtitle"`
	Icon      string `json:"icon"`
	Color     string `json:"color"`
	Amount    string `json:"amount"`
	AmountNGN string `json:"amountText"` // sem o símbolo ₦, para fontes sem o glifo
	Status    string `json:"status"`
	Lines     []Line `json:"lines"`
	Token     []Line `json:"token,omitempty"`
	TokenHint string `json:"tokenHint,omitempty"`
	Footer    string `json:"footer"`
}

// Render aplica o template da categoria. Campos opcionais ausentes são omitidos.
func Render(r Receipt) View {
	t := TemplateFor(r.Category)
	v := View{
		Reference: r.Reference,
		Title:     t.Title,
		Subtitle:  t.Name,
		Icon:      t.Icon,
		Color:     t.Color,
		Amount:    money.FormatNaira(r.Amount),
		AmountNGN: money.FormatNGN(r.Amount),
		Status:    "Completed",
		Footer:    footer,
	}

	add := func(label, value string) {
		if value != "" {
			v.Lines = append(v.Lines, Line{label, value})
		}
	}
	add("Recipient", r.Recipient)
	add(t.ProviderName, r.Provider)
	add(t.AccountLabel, r.AccountID)
	for _, f := range t.Fields {
		add(f.Label, r.Fields[f.Key])
	}
	add("Narration", r.Narration)
	add("Reference", r.Reference)
	add("Transaction ID", r.TransactionID)
	if !r.CompletedAt.IsZero() {
		add("Date & Time", r.CompletedAt.In(lagos).Format("02 Jan 2006, 15:04"))
	}

	if r.Category == CategoryUtility {
		kct1, kct2, token := r.Fields["KCT1"], r.Fields["KCT2"], r.Fields["token"]
		if kct1 != "" && kct2 != "" {
			v.Token = append(v.Token, Line{"KCT1", kct1}, Line{"KCT2", kct2})
		}
		if token != "" {
			v.Token = append(v.Token, Line{"Token", token})
		}
		switch {
		case kct1 != "" && kct2 != "":
			v.TokenHint = "Enter KCT1, KCT2, then token on meter"
		case token != "":
			v.TokenHint = "Enter token on meter"
		}
	}
	return v
}

var lagos = func() *time.Location {
	loc, err := time.LoadLocation("Africa/Lagos")
	if err != nil {
		return time.FixedZone("WAT", 3600)
	}
	return loc
}()

// Location é o fuso usado nos recibos e nos resumos anuais
func Location() *time.Location { return lagos }
