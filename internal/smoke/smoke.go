// Package smoke verifica a configuração e a conectividade de um ambiente:
// variáveis obrigatórias, token do VFD, provedor, Supabase, schema e API.
// O resultado é informativo; nenhuma falha interrompe as demais checagens.
package smoke

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/radieske/ovo-banking-gateway/internal/payments-service/vfd"
	"github.com/radieske/ovo-banking-gateway/internal/shared/auth"
	"github.com/radieske/ovo-banking-gateway/internal/shared/config"
)

// DefaultTimeout limite de cada chamada de rede
const DefaultTimeout = 15 * time.Second

// RequiredEnv variáveis que precisam estar definidas
var RequiredEnv = []string{
	"AUTH_SECRET",
	"NEXT_PUBLIC_SUPABASE_URL",
	"NEXT_PUBLIC_SUPABASE_ANON_KEY",
	"SUPABASE_SERVICE_ROLE_KEY",
	"VFD_CONSUMER_KEY",
	"VFD_CONSUMER_SECRET",
	"VFD_ACCESS_TOKEN",
	"VFD_WEBHOOK_SECRET",
}

// RequiredTables tabelas esperadas no Postgres
var RequiredTables = []string{
	"users", "financial_transactions", "receipts", "pending_receipts",
	"notifications", "notification_preferences",
}

type Status string

const (
	Pass Status = "PASS"
	Fail Status = "FAIL"
	Warn Status = "WARN"
)

type Result struct {
	Section string
	Status  Status
	Message string
}

// Report acumula os resultados na ordem em que foram produzidos
type Report struct {
	Results []Result
}

func (r *Report) add(section string, st Status, format string, args ...any) {
	r.Results = append(r.Results, Result{Section: section, Status: st, Message: fmt.Sprintf(format, args...)})
}

func (r *Report) Count(st Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == st {
			n++
		}
	}
	return n
}

// Runner executa as checagens contra a configuração carregada
type Runner struct {
	Cfg     config.Config
	Lookup  func(string) (string, bool) // os.LookupEnv
	HTTP    *http.Client
	Tokens  vfd.TokenSource
	DB      *sql.DB // opcional; nil pula a checagem de schema
	Now     func() time.Time
	SkipAPI bool
}

func NewRunner(cfg config.Config, lookup func(string) (string, bool), timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Runner{
		Cfg:    cfg,
		Lookup: lookup,
		HTTP:   &http.Client{Timeout: timeout},
		Now:    time.Now,
	}
}

// Run executa todas as checagens em sequência
func (r *Runner) Run(ctx context.Context) *Report {
	rep := &Report{}
	r.checkEnv(rep)
	r.checkTokenExpiry(rep)
	r.checkTokenExchange(ctx, rep)
	r.checkProvider(ctx, rep)
	r.checkSupabase(ctx, rep)
	r.checkSchema(ctx, rep)
	r.checkAPI(ctx, rep)
	r.checkWebhookSecret(rep)
	return rep
}

func (r *Runner) checkEnv(rep *Report) {
	const sec = "Environment Variables"
	for _, key := range RequiredEnv {
		if v, ok := r.Lookup(key); ok && v != "" {
			rep.add(sec, Pass, "%s is set", key)
		} else {
			rep.add(sec, Fail, "%s is missing", key)
		}
	}
}

func (r *Runner) checkTokenExpiry(rep *Report) {
	const sec = "VFD Token Validation"
	tok := r.Cfg.VFDAccessToken
	if tok == "" {
		rep.add(sec, Fail, "VFD_ACCESS_TOKEN not found")
		return
	}
	if strings.Count(tok, ".") != 2 {
		rep.add(sec, Fail, "Invalid JWT format")
		return
	}
	exp, err := auth.ExpiryUnverified(tok)
	if err != nil {
		rep.add(sec, Warn, "Could not decode token (might be encrypted)")
		return
	}
	if exp.After(r.Now()) {
		rep.add(sec, Pass, "Token valid until %s", exp.UTC().Format(time.RFC3339))
	} else {
		rep.add(sec, Fail, "Token expired on %s", exp.UTC().Format(time.RFC3339))
	}
}

func (r *Runner) checkTokenExchange(ctx context.Context, rep *Report) {
	const sec = "VFD Token Exchange"
	if r.Cfg.VFDConsumerKey == "" || r.Cfg.VFDConsumerSecret == "" {
		rep.add(sec, Warn, "Consumer key/secret not set, exchange skipped")
		return
	}
	if r.Tokens == nil {
		rep.add(sec, Warn, "No token source configured")
		return
	}
	if _, err := r.Tokens.Token(ctx); err != nil {
		rep.add(sec, Fail, "Token exchange failed: %v", err)
		return
	}
	rep.add(sec, Pass, "Token exchange succeeded")
}

func (r *Runner) checkProvider(ctx context.Context, rep *Report) {
	const sec = "VFD API Connectivity"
	code, err := r.get(ctx, strings.TrimRight(r.Cfg.VFDAPIBase, "/")+"/health", map[string]string{
		"Authorization": "Bearer " + r.Cfg.VFDAccessToken,
	})
	switch {
	case err != nil:
		rep.add(sec, Fail, "VFD API unreachable: %v", err)
	case code == http.StatusOK || code == http.StatusNotFound:
		rep.add(sec, Pass, "VFD API is reachable")
	default:
		rep.add(sec, Warn, "VFD API returned status %d", code)
	}
}

func (r *Runner) checkSupabase(ctx context.Context, rep *Report) {
	const sec = "Supabase Connectivity"
	if r.Cfg.SupabaseURL == "" || r.Cfg.SupabaseAnonKey == "" {
		rep.add(sec, Fail, "Supabase credentials missing")
		return
	}
	code, err := r.get(ctx, strings.TrimRight(r.Cfg.SupabaseURL, "/")+"/rest/v1/", map[string]string{
		"apikey": r.Cfg.SupabaseAnonKey,
	})
	switch {
	case err != nil:
		rep.add(sec, Fail, "Supabase unreachable: %v", err)
	case code == http.StatusOK || code == http.StatusNotFound:
		rep.add(sec, Pass, "Supabase is reachable")
	default:
		rep.add(sec, Warn, "Supabase returned status %d", code)
	}
}

func (r *Runner) checkSchema(ctx context.Context, rep *Report) {
	const sec = "Database Schema"
	if r.DB == nil {
		rep.add(sec, Warn, "Database not configured, schema check skipped")
		return
	}
	found := map[string]bool{}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT table_name FROM information_schema.tables WHERE table_schema = 'public'`)
	if err != nil {
		rep.add(sec, Warn, "Schema query failed: %v", err)
		return
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rep.add(sec, Warn, "Schema scan failed: %v", err)
			return
		}
		found[name] = true
	}
	if err := rows.Err(); err != nil {
		rep.add(sec, Warn, "Schema query failed: %v", err)
		return
	}
	for _, t := range RequiredTables {
		if found[t] {
			rep.add(sec, Pass, "table %s exists", t)
		} else {
			rep.add(sec, Fail, "table %s missing, apply migrations", t)
		}
	}
}

func (r *Runner) checkAPI(ctx context.Context, rep *Report) {
	const sec = "API Endpoints"
	if r.SkipAPI {
		rep.add(sec, Warn, "API check skipped")
		return
	}
	code, err := r.get(ctx, strings.TrimRight(r.Cfg.APIURL, "/")+"/api/health", nil)
	switch {
	case err != nil:
		rep.add(sec, Fail, "API unreachable: %v", err)
	case code == http.StatusOK:
		rep.add(sec, Pass, "API is healthy")
	default:
		rep.add(sec, Fail, "API health returned status %d", code)
	}
}

func (r *Runner) checkWebhookSecret(rep *Report) {
	const sec = "Security Validation"
	if len(r.Cfg.VFDWebhookSecret) >= 32 {
		rep.add(sec, Pass, "Webhook secret is strong (32+ chars)")
	} else {
		rep.add(sec, Warn, "Webhook secret should be 32+ characters")
	}
}

func (r *Runner) get(ctx context.Context, url string, headers map[string]string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	res, err := r.HTTP.Do(req)
	if err != nil {
		return 0, err
	}
	_, _ = io.Copy(io.Discard, res.Body)
	res.Body.Close()
	return res.StatusCode, nil
}

// Print escreve o relatório agrupado por seção e o resumo final
func Print(w io.Writer, rep *Report) {
	line := strings.Repeat("=", 60)
	last := ""
	for _, res := range rep.Results {
		if res.Section != last {
			fmt.Fprintf(w, "\n%s\n%s\n%s\n", line, res.Section, line)
			last = res.Section
		}
		fmt.Fprintf(w, "[%s] %s\n", res.Status, res.Message)
	}

	fmt.Fprintf(w, "\n%s\nTEST SUMMARY\n%s\n", line, line)
	fmt.Fprintf(w, "Passed: %d\n", rep.Count(Pass))
	if n := rep.Count(Warn); n > 0 {
		fmt.Fprintf(w, "Warnings: %d\n", n)
	}
	if n := rep.Count(Fail); n > 0 {
		fmt.Fprintf(w, "Failed: %d\n", n)
		fmt.Fprintln(w, "SOME TESTS FAILED")
	} else {
		fmt.Fprintln(w, "ALL CRITICAL TESTS PASSED")
	}
	fmt.Fprintln(w, line)
}
