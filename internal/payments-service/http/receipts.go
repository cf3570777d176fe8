package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/radieske/ovo-banking-gateway/internal/payments-service/dto"
	"github.com/radieske/ovo-banking-gateway/internal/payments-service/receipt"
	"github.com/radieske/ovo-banking-gateway/internal/payments-service/repo"
	"github.com/radieske/ovo-banking-gateway/internal/shared/auth"
)

func (s *Server) listReceipts(w http.ResponseWriter, r *http.Request) {
	rs, err := s.Store.ListReceipts(r.Context(), auth.UserID(r.Context()), limit(r, 20, 100))
	if err != nil {
		s.internalError(w, "list receipts", err)
		return
	}
	out := make([]dto.ReceiptResponse, 0, len(rs))
	for _, st := range rs {
		var rc receipt.Receipt
		if err := json.Unmarshal(st.Payload, &rc); err != nil {
			continue
		}
		out = append(out, dto.ReceiptResponse{Receipt: rc, View: receipt.Render(rc)})
	}
	writeJSON(w, http.StatusOK, out)
}

// pendingReceipt devolve o último recibo ainda não exibido; Redis primeiro,
// depois a tabela pending_receipts.
func (s *Server) pendingReceipt(w http.ResponseWriter, r *http.Request) {
	uid := auth.UserID(r.Context())

	raw, err := s.Pending.Get(r.Context(), uid)
	if err != nil {
		s.log.Warn("pending receipt cache unavailable")
	}
	if raw == nil {
		st, err := s.Store.PendingReceipt(r.Context(), uid)
		switch {
		case errors.Is(err, repo.ErrNotFound):
			w.WriteHeader(http.StatusNoContent)
			return
		case err != nil:
			s.internalError(w, "pending receipt", err)
			return
		}
		raw = st.Payload
	}

	var rc receipt.Receipt
	if err := json.Unmarshal(raw, &rc); err != nil {
		s.internalError(w, "decode pending receipt", err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ReceiptResponse{Receipt: rc, View: receipt.Render(rc)})
}

func (s *Server) clearPendingReceipt(w http.ResponseWriter, r *http.Request) {
	uid := auth.UserID(r.Context())
	if err := s.Pending.Clear(r.Context(), uid); err != nil {
		s.log.Warn("clear pending receipt cache failed")
	}
	if err := s.Store.ClearPendingReceipt(r.Context(), uid); err != nil {
		s.internalError(w, "clear pending receipt", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) loadReceipt(w http.ResponseWriter, r *http.Request) (receipt.Receipt, bool) {
	var rc receipt.Receipt
	st, err := s.Store.GetReceipt(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "reference"))
	switch {
	case errors.Is(err, repo.ErrNotFound):
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Message: "Receipt not found"})
		return rc, false
	case err != nil:
		s.internalError(w, "get receipt", err)
		return rc, false
	}
	if err := json.Unmarshal(st.Payload, &rc); err != nil {
		s.internalError(w, "decode receipt", err)
		return rc, false
	}
	return rc, true
}

// getReceipt exporta o recibo em ?format=json|text|html|pdf
func (s *Server) getReceipt(w http.ResponseWriter, r *http.Request) {
	format, err := receipt.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
		return
	}
	rc, ok := s.loadReceipt(w, r)
	if !ok {
		return
	}
	v := receipt.Render(rc)

	var body []byte
	switch format {
	case receipt.FormatJSON:
		writeJSON(w, http.StatusOK, dto.ReceiptResponse{Receipt: rc, View: v})
		return
	case receipt.FormatText:
		body = []byte(receipt.Text(v))
	case receipt.FormatHTML:
		body, err = receipt.HTML(v)
	case receipt.FormatPDF:
		body, err = s.pdf(v)
	}
	if err != nil {
		s.internalError(w, "export receipt", err)
		return
	}
	if format == receipt.FormatPDF {
		w.Header().Set("Content-Disposition", `attachment; filename="receipt-`+rc.Reference+`.pdf"`)
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) shareReceipt(w http.ResponseWriter, r *http.Request) {
	rc, ok := s.loadReceipt(w, r)
	if !ok {
		return
	}
	v := receipt.Render(rc)
	writeJSON(w, http.StatusOK, dto.ShareResponse{Text: receipt.ShareText(v), Links: receipt.ShareLinks(v)})
}
