// Package money converte valores entre Naira (unidade principal) e kobo
// (1/100 Naira) e formata valores para recibos e notificações.
package money

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ToKobo converte Naira para kobo, arredondando meio-kobo para cima
func ToKobo(naira decimal.Decimal) int64 {
	return naira.Mul(hundred).Round(0).IntPart()
}

// FromKobo converte kobo para Naira
func FromKobo(kobo int64) decimal.Decimal {
	return decimal.New(kobo, -2)
}

// Number serializa o valor como número JSON com duas casas (formato do VFD)
func Number(naira decimal.Decimal) json.Number {
	return json.Number(naira.StringFixed(2))
}

// FormatNaira formata como "₦12,500.00"
func FormatNaira(naira decimal.Decimal) string {
	return "₦" + group(naira.StringFixed(2))
}

// FormatNGN formata como "NGN 12,500.00" (fontes sem o símbolo ₦)
func FormatNGN(naira decimal.Decimal) string {
	return "NGN " + group(naira.StringFixed(2))
}

// group insere separadores de milhar na parte inteira
func group(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + frac
}
