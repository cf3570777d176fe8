package smoke

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/radieske/ovo-banking-gateway/internal/shared/auth"
	"github.com/radieske/ovo-banking-gateway/internal/shared/config"
)

type fakeTokens struct{ err error }

func (f fakeTokens) Token(context.Context) (string, error) { return "tok", f.err }

func env(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func statusServer(t *testing.T, code int) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(code)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func find(rep *Report, section string) []Result {
	var out []Result
	for _, r := range rep.Results {
		if r.Section == section {
			out = append(out, r)
		}
	}
	return out
}

func validToken(t *testing.T, ttl time.Duration) string {
	t.Helper()
	tok, err := auth.NewIssuer("s", ttl).Issue("u", "p")
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func TestEnvChecks(t *testing.T) {
	r := NewRunner(config.Config{}, env(map[string]string{"AUTH_SECRET": "x", "VFD_ACCESS_TOKEN": ""}), time.Second)
	rep := &Report{}
	r.checkEnv(rep)
	if rep.Count(Pass) != 1 || rep.Count(Fail) != len(RequiredEnv)-1 {
		t.Fatalf("results = %+v", rep.Results)
	}
}

func TestTokenExpiry(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  Status
	}{
		{"missing", "", Fail},
		{"not a jwt", "opaque-token", Fail},
		{"undecodable", "a.b.c", Warn},
		{"valid", validToken(t, time.Hour), Pass},
		{"expired", validToken(t, -time.Hour), Fail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRunner(config.Config{VFDAccessToken: tt.token}, env(nil), time.Second)
			rep := &Report{}
			r.checkTokenExpiry(rep)
			if got := rep.Results[0].Status; got != tt.want {
				t.Fatalf("status = %s (%s), want %s", got, rep.Results[0].Message, tt.want)
			}
		})
	}
}

func TestTokenExchange(t *testing.T) {
	cfg := config.Config{VFDConsumerKey: "k", VFDConsumerSecret: "s"}

	r := NewRunner(cfg, env(nil), time.Second)
	r.Tokens = fakeTokens{}
	rep := &Report{}
	r.checkTokenExchange(context.Background(), rep)
	if rep.Results[0].Status != Pass {
		t.Fatalf("results = %+v", rep.Results)
	}

	r.Tokens = fakeTokens{err: errors.New("http 401")}
	rep = &Report{}
	r.checkTokenExchange(context.Background(), rep)
	if rep.Results[0].Status != Fail {
		t.Fatalf("results = %+v", rep.Results)
	}

	r = NewRunner(config.Config{}, env(nil), time.Second)
	rep = &Report{}
	r.checkTokenExchange(context.Background(), rep)
	if rep.Results[0].Status != Warn {
		t.Fatalf("results = %+v", rep.Results)
	}
}

func TestConnectivity(t *testing.T) {
	tests := []struct {
		code int
		want Status
	}{
		{http.StatusOK, Pass},
		{http.StatusNotFound, Pass},
		{http.StatusBadGateway, Warn},
	}
	for _, tt := range tests {
		ts := statusServer(t, tt.code)
		r := NewRunner(config.Config{VFDAPIBase: ts.URL, SupabaseURL: ts.URL, SupabaseAnonKey: "anon"}, env(nil), time.Second)
		rep := &Report{}
		r.checkProvider(context.Background(), rep)
		r.checkSupabase(context.Background(), rep)
		for _, res := range rep.Results {
			if res.Status != tt.want {
				t.Errorf("code %d: %s = %s, want %s", tt.code, res.Section, res.Status, tt.want)
			}
		}
	}
}

func TestUnreachableProviderFails(t *testing.T) {
	ts := statusServer(t, http.StatusOK)
	ts.Close()
	r := NewRunner(config.Config{VFDAPIBase: ts.URL}, env(nil), time.Second)
	rep := &Report{}
	r.checkProvider(context.Background(), rep)
	if rep.Results[0].Status != Fail {
		t.Fatalf("results = %+v", rep.Results)
	}
}

func TestSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	rows := sqlmock.NewRows([]string{"table_name"})
	for _, tname := range RequiredTables[1:] {
		rows.AddRow(tname)
	}
	mock.ExpectQuery("information_schema.tables").WillReturnRows(rows)

	r := NewRunner(config.Config{}, env(nil), time.Second)
	r.DB = db
	rep := &Report{}
	r.checkSchema(context.Background(), rep)
	if rep.Count(Fail) != 1 || rep.Count(Pass) != len(RequiredTables)-1 {
		t.Fatalf("results = %+v", rep.Results)
	}
	if !strings.Contains(find(rep, "Database Schema")[0].Message, "users") {
		t.Fatalf("first = %+v", rep.Results[0])
	}
}

func TestRunAndPrint(t *testing.T) {
	api := statusServer(t, http.StatusOK)
	cfg := config.Config{
		VFDAPIBase:       api.URL,
		SupabaseURL:      api.URL,
		SupabaseAnonKey:  "anon",
		APIURL:           api.URL,
		VFDAccessToken:   validToken(t, time.Hour),
		VFDWebhookSecret: strings.Repeat("x", 32),
	}
	vars := map[string]string{}
	for _, k := range RequiredEnv {
		vars[k] = "set"
	}
	r := NewRunner(cfg, env(vars), time.Second)
	rep := r.Run(context.Background())

	if rep.Count(Fail) != 0 {
		t.Fatalf("unexpected failures: %+v", rep.Results)
	}
	var buf bytes.Buffer
	Print(&buf, rep)
	out := buf.String()
	if !strings.Contains(out, "ALL CRITICAL TESTS PASSED") || !strings.Contains(out, "Warnings: 2") {
		t.Fatalf("output = %s", out)
	}
}
