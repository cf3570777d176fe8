package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadPortsPerService(t *testing.T) {
	tests := []struct {
		service     string
		httpPort    string
		metricsPort string
	}{
		{"payments-service", "8082", "9098"},
		{"notification-worker", "", "9097"},
		{"provider-simulator", "8081", "9094"},
		{"smoke-test", "8080", "9095"},
	}

	for _, tt := range tests {
		t.Run(tt.service, func(t *testing.T) {
			t.Setenv("SERVICE_NAME", tt.service)
			cfg := Load()
			if cfg.HTTPPort != tt.httpPort {
				t.Errorf("HTTPPort = %q, want %q", cfg.HTTPPort, tt.httpPort)
			}
			if cfg.MetricsPort != tt.metricsPort {
				t.Errorf("MetricsPort = %q, want %q", cfg.MetricsPort, tt.metricsPort)
			}
		})
	}
}

func TestLoadServiceDefaultName(t *testing.T) {
	t.Setenv("SERVICE_NAME", "")
	cfg := LoadService("payments-service")
	if cfg.ServiceName != "payments-service" || cfg.HTTPPort != "8082" {
		t.Fatalf("got service %q port %q", cfg.ServiceName, cfg.HTTPPort)
	}

	t.Setenv("SERVICE_NAME", "provider-simulator")
	cfg = LoadService("payments-service")
	if cfg.ServiceName != "provider-simulator" || cfg.HTTPPort != "8081" {
		t.Fatalf("SERVICE_NAME should win, got %q port %q", cfg.ServiceName, cfg.HTTPPort)
	}
}

func TestLoadPrefersSupabaseDSN(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://local")
	t.Setenv("SUPABASE_DB_URL", "postgres://supabase")

	if got := Load().PostgresDSN; got != "postgres://supabase" {
		t.Errorf("PostgresDSN = %q, want supabase dsn", got)
	}
}

func TestVFDTimeout(t *testing.T) {
	tests := []struct {
		name string
		val  string
		want time.Duration
	}{
		{"duration", "10s", 10 * time.Second},
		{"seconds", "12", 12 * time.Second},
		{"garbage", "soon", 15 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("VFD_TIMEOUT", tt.val)
			if got := Load().VFDTimeout; got != tt.want {
				t.Errorf("VFDTimeout = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".env.test")
	if err := os.WriteFile(file, []byte("VFD_CONSUMER_KEY=from-file\nVFD_CONSUMER_SECRET=secret-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("VFD_CONSUMER_KEY", "from-env")
	t.Setenv("VFD_CONSUMER_SECRET", "")
	os.Unsetenv("VFD_CONSUMER_SECRET")

	LoadDotEnv(file, filepath.Join(dir, "missing.env"))
	defer os.Unsetenv("VFD_CONSUMER_SECRET")

	cfg := Load()
	if cfg.VFDConsumerKey != "from-env" {
		t.Errorf("VFDConsumerKey = %q, env must win", cfg.VFDConsumerKey)
	}
	if cfg.VFDConsumerSecret != "secret-file" {
		t.Errorf("VFDConsumerSecret = %q, want value from file", cfg.VFDConsumerSecret)
	}
}
