package httpapi

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/radieske/ovo-banking-gateway/internal/payments-service/dto"
	"github.com/radieske/ovo-banking-gateway/internal/payments-service/receipt"
	"github.com/radieske/ovo-banking-gateway/internal/shared/auth"
	"github.com/radieske/ovo-banking-gateway/internal/shared/money"
	"github.com/radieske/ovo-banking-gateway/internal/shared/validate"
)

const firstTaxYear = 2020

// taxSummary atende GET ?action=current-year-summary|tax-report&tax_year=
func (s *Server) taxSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	year := s.now().In(receipt.Location()).Year()

	switch q.Get("action") {
	case "", "current-year-summary":
	case "tax-report":
		y, err := strconv.Atoi(q.Get("tax_year"))
		if err != nil {
			badRequest(w, validate.Errors{{Field: "tax_year", Message: "must be a year"}})
			return
		}
		year = y
	default:
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid action"})
		return
	}
	s.writeSummary(w, r, year)
}

// taxReport atende POST ?action=generate-report com {"tax_year": 2024}
func (s *Server) taxReport(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("action") != "generate-report" {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid action"})
		return
	}
	var req dto.TaxReportRequest
	if !decode(w, r, &req) {
		return
	}
	s.writeSummary(w, r, req.TaxYear)
}

func (s *Server) writeSummary(w http.ResponseWriter, r *http.Request, year int) {
	if year < firstTaxYear || year > s.now().In(receipt.Location()).Year() {
		badRequest(w, validate.Errors{{Field: "tax_year", Message: "out of range"}})
		return
	}
	totals, err := s.Store.YearSummary(r.Context(), auth.UserID(r.Context()), year, receipt.Location())
	if err != nil {
		s.internalError(w, "tax summary", err)
		return
	}

	resp := dto.TaxSummaryResponse{TaxYear: year, Categories: []dto.CategorySummary{}, GeneratedAt: s.now().UTC()}
	byCat := map[string]*dto.CategorySummary{}
	for _, t := range totals {
		c, ok := byCat[t.Category]
		if !ok {
			c = &dto.CategorySummary{Category: t.Category}
			byCat[t.Category] = c
		}
		if t.Type == "credit" {
			c.CreditKobo += t.TotalKobo
			resp.TotalCreditKobo += t.TotalKobo
		} else {
			c.DebitKobo += t.TotalKobo
			resp.TotalDebitKobo += t.TotalKobo
		}
		c.Count += t.Count
		resp.TransactionCount += t.Count
	}
	for _, c := range byCat {
		resp.Categories = append(resp.Categories, *c)
	}
	sort.Slice(resp.Categories, func(i, j int) bool { return resp.Categories[i].Category < resp.Categories[j].Category })
	resp.TotalDebit = money.FormatNaira(money.FromKobo(resp.TotalDebitKobo))
	resp.TotalCredit = money.FormatNaira(money.FromKobo(resp.TotalCreditKobo))
	writeJSON(w, http.StatusOK, resp)
}
