package receipt

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func labels(lines []Line) map[string]string {
	m := map[string]string{}
	for _, l := range lines {
		m[l.Label] = l.Value
	}
	return m
}

func TestTemplateFor(t *testing.T) {
	tests := []struct {
		cat   Category
		title string
		label string
	}{
		{CategoryTransfer, "Transfer Successful", "Account Number"},
		{CategoryBetting, "Betting Wallet Funded", "Customer ID"},
		{CategoryUtility, "Bill Payment Successful", "Meter Number"},
		{CategoryAirtime, "Airtime Purchase Successful", "Phone Number"},
		{"UTILITY", "Bill Payment Successful", "Meter Number"},
		{"unknown", "Transfer Successful", "Account Number"},
	}
	for _, tt := range tests {
		t.Run(string(tt.cat), func(t *testing.T) {
			tpl := TemplateFor(tt.cat)
			if tpl.Title != tt.title || tpl.AccountLabel != tt.label {
				t.Errorf("got %+v", tpl)
			}
		})
	}
}

func TestCategoryOf(t *testing.T) {
	cases := map[string]Category{
		"betting": CategoryBetting, "bills": CategoryUtility, "electricity": CategoryUtility,
		"airtime": CategoryAirtime, "data": CategoryAirtime, "deposit": CategoryDeposit,
		"withdrawal": CategoryWithdrawal, "internal_transfer": CategoryTransfer,
	}
	for in, want := range cases {
		if got := CategoryOf(in); got != want {
			t.Errorf("CategoryOf(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRenderOmitsAbsentFields(t *testing.T) {
	v := Render(Receipt{
		Category:  CategoryBetting,
		Reference: "betting-123",
		Amount:    decimal.NewFromInt(1500),
		AccountID: "BJ-99",
	})

	if v.Amount != "₦1,500.00" || v.Title != "Betting Wallet Funded" {
		t.Errorf("header = %q %q", v.Title, v.Amount)
	}
	got := labels(v.Lines)
	if got["Customer ID"] != "BJ-99" || got["Reference"] != "betting-123" {
		t.Errorf("lines = %v", got)
	}
	for _, absent := range []string{"Recipient", "Platform", "Wallet Balance", "Bonus", "Transaction ID", "Date & Time"} {
		if _, ok := got[absent]; ok {
			t.Errorf("%s should be omitted", absent)
		}
	}
	if len(v.Token) != 0 {
		t.Errorf("unexpected token block %v", v.Token)
	}
}

func TestRenderUtilityToken(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]string
		lines  int
		hint   string
	}{
		{"token only", map[string]string{"token": "1234-5678"}, 1, "Enter token on meter"},
		{"kct pair", map[string]string{"token": "1", "KCT1": "a", "KCT2": "b"}, 3, "Enter KCT1, KCT2, then token on meter"},
		{"kct1 alone", map[string]string{"KCT1": "a"}, 0, ""},
		{"nothing", nil, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Render(Receipt{Category: CategoryUtility, Amount: decimal.NewFromInt(5000), Fields: tt.fields})
			if len(v.Token) != tt.lines || v.TokenHint != tt.hint {
				t.Errorf("token = %v, hint = %q", v.Token, v.TokenHint)
			}
		})
	}
}

func sample() View {
	return Render(Receipt{
		Category:      CategoryUtility,
		Reference:     "bill-9",
		TransactionID: "t-77",
		Amount:        decimal.RequireFromString("12500.5"),
		Recipient:     "Ada <Obi>",
		Provider:      "IKEDC",
		AccountID:     "45700000001",
		CompletedAt:   time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC),
		Fields:        map[string]string{"token": "1111-2222", "units": "42.1"},
	})
}

func TestText(t *testing.T) {
	out := Text(sample())
	for _, want := range []string{"Bill Payment Successful", "₦12,500.50", "Meter Number:", "Units:", "Energy Token", "Enter token on meter", "01 Mar 2025, 10:30"} {
		if !strings.Contains(out, want) {
			t.Errorf("text missing %q:\n%s", want, out)
		}
	}
}

func TestHTMLEscapes(t *testing.T) {
	out, err := HTML(sample())
	if err != nil {
		t.Fatal(err)
	}
	s := string(out)
	if !strings.Contains(s, "Ada &lt;Obi&gt;") || strings.Contains(s, "Ada <Obi>") {
		t.Error("recipient not escaped")
	}
	if !strings.Contains(s, "1111-2222") {
		t.Error("token missing")
	}
}

func TestPDF(t *testing.T) {
	out, err := PDF(sample())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Errorf("not a pdf: %q", out[:8])
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatJSON, "PDF": FormatPDF, "text": FormatText, "html": FormatHTML} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("png"); err == nil {
		t.Error("expected error for png")
	}
}

func TestShareLinks(t *testing.T) {
	v := Render(Receipt{Category: CategoryTransfer, Reference: "tr-1", Amount: decimal.NewFromInt(100), Recipient: "Ada Obi"})

	text := ShareText(v)
	if !strings.Contains(text, "Recipient: Ada Obi") || !strings.Contains(text, "Reference: tr-1") {
		t.Errorf("share text = %q", text)
	}

	links := ShareLinks(v)
	want := []string{"whatsapp", "twitter", "facebook", "telegram", "email"}
	if len(links) != len(want) {
		t.Fatalf("links = %v", links)
	}
	for i, l := range links {
		if l.Platform != want[i] {
			t.Errorf("links[%d] = %s, want %s", i, l.Platform, want[i])
		}
	}
	if !strings.HasPrefix(links[0].URL, "https://wa.me/?text=Transfer+Successful") {
		t.Errorf("whatsapp url = %s", links[0].URL)
	}
	if !strings.HasPrefix(links[4].URL, "mailto:?subject=Transfer%20Receipt%20tr-1") {
		t.Errorf("mailto url = %s", links[4].URL)
	}
}
