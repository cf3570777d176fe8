package receipt

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
)

// ContentType devolve o media type de cada formato exportado
func (f Format) ContentType() string {
	switch f {
	case FormatText:
		return "text/plain; charset=utf-8"
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/json"
	}
}

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatText, FormatHTML, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported receipt format %q", s)
	}
}

func Text(v View) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n\n%s  (%s)\n\n", v.Title, v.Subtitle, v.Amount, v.Status)
	for _, l := range v.Lines {
		fmt.Fprintf(&b, "%-16s %s\n", l.Label+":", l.Value)
	}
	if len(v.Token) > 0 {
		b.WriteString("\nEnergy Token\n")
		for _, l := range v.Token {
			fmt.Fprintf(&b, "%-16s %s\n", l.Label+":", l.Value)
		}
		b.WriteString(v.TokenHint + "\n")
	}
	b.WriteString("\n" + v.Footer + "\n")
	return b.String()
}

var htmlTmpl = template.Must(template.New("receipt").Parse(`<!doctype html>
<html><head><meta charset="utf-8"><title>{{.Subtitle}} {{.Reference}}</title></head>
<body style="font-family:sans-serif;max-width:420px;margin:auto">
<div style="background:{{.Color}};color:#fff;padding:24px;text-align:center;border-radius:16px 16px 0 0">
<h2>{{.Title}}</h2><p>{{.Subtitle}}</p>
<p style="font-size:32px;font-weight:bold">{{.Amount}}</p><p>{{.Status}}</p>
</div>
<table style="width:100%;padding:16px;background:#f9fafb">
{{range .Lines}}<tr><td style="color:#4b5563">{{.Label}}</td><td style="text-align:right;font-weight:600">{{.Value}}</td></tr>
{{end}}</table>
{{if .Token}}<div style="background:#fefce8;border:1px solid #fde68a;padding:12px;margin:16px">
<p><b>Energy Token</b></p>
{{range .Token}}<p>{{.Label}}: <code>{{.Value}}</code></p>
{{end}}<p>{{.TokenHint}}</p></div>{{end}}
<p style="text-align:center;color:#6b7280;font-size:12px">{{.Footer}}</p>
</body></html>`))

func HTML(v View) ([]byte, error) {
	var buf bytes.Buffer
	if err := htmlTmpl.Execute(&buf, v); err != nil {
		return nil, fmt.Errorf("render receipt html: %w", err)
	}
	return buf.Bytes(), nil
}

// PDF gera o recibo em A5. As fontes padrão não têm o glifo ₦, então o
// valor sai no formato "NGN 1,000.00".
func PDF(v View) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetTitle(v.Subtitle+" "+v.Reference, true)
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	r, g, b := hexRGB(v.Color)
	pdf.SetFillColor(r, g, b)
	pdf.SetTextColor(255, 255, 255)
	w, _ := pdf.GetPageSize()
	width := w - 24

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(width, 12, tr(v.Title), "", 1, "C", true, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(width, 6, tr(v.Subtitle), "", 1, "C", true, 0, "")
	pdf.SetFont("Helvetica", "B", 22)
	pdf.CellFormat(width, 14, tr(v.AmountNGN), "", 1, "C", true, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(width, 8, tr(v.Status), "", 1, "C", true, 0, "")
	pdf.Ln(4)

	pdf.SetTextColor(17, 24, 39)
	rows := func(lines []Line) {
		for _, l := range lines {
			pdf.SetFont("Helvetica", "", 10)
			pdf.CellFormat(width*0.4, 7, tr(l.Label), "", 0, "L", false, 0, "")
			pdf.SetFont("Helvetica", "B", 10)
			pdf.CellFormat(width*0.6, 7, tr(l.Value), "", 1, "R", false, 0, "")
		}
	}
	rows(v.Lines)

	if len(v.Token) > 0 {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(width, 7, "Energy Token", "", 1, "L", false, 0, "")
		rows(v.Token)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(width, 6, tr(v.TokenHint), "", 1, "L", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(107, 114, 128)
	pdf.CellFormat(width, 5, tr(v.Footer), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func hexRGB(h string) (int, int, int) {
	h = strings.TrimPrefix(h, "#")
	if len(h) != 6 {
		return 19, 40, 77
	}
	n, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return 19, 40, 77
	}
	return int(n >> 16 & 0xff), int(n >> 8 & 0xff), int(n & 0xff)
}
