package receipt

import (
	"fmt"
	"net/url"
	"strings"
)

type Link struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

// ShareText é o texto curto usado no compartilhamento
func ShareText(v View) string {
	parts := []string{fmt.Sprintf("%s: %s", v.Title, v.Amount)}
	for _, l := range v.Lines {
		if l.Label == "Recipient" || l.Label == "Reference" {
			parts = append(parts, l.Label+": "+l.Value)
		}
	}
	parts = append(parts, v.Footer)
	return strings.Join(parts, "\n")
}

// ShareLinks monta as URLs de compartilhamento para clientes sem share nativo
func ShareLinks(v View) []Link {
	text := url.QueryEscape(ShareText(v))
	subject := url.PathEscape(v.Subtitle + " " + v.Reference)
	return []Link{
		{"whatsapp", "https://wa.me/?text=" + text},
		{"twitter", "https://twitter.com/intent/tweet?text=" + text},
		{"facebook", "https://www.facebook.com/sharer/sharer.php?u=" + text},
		{"telegram", "https://t.me/share/url?url=&text=" + text},
		{"email", "mailto:?subject=" + subject + "&body=" + url.PathEscape(ShareText(v))},
	}
}
