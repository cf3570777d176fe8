package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	pcache "github.com/radieske/ovo-banking-gateway/internal/payments-service/cache"
	httpapi "github.com/radieske/ovo-banking-gateway/internal/payments-service/http"
	"github.com/radieske/ovo-banking-gateway/internal/payments-service/orchestrator"
	"github.com/radieske/ovo-banking-gateway/internal/payments-service/producer"
	"github.com/radieske/ovo-banking-gateway/internal/payments-service/repo"
	"github.com/radieske/ovo-banking-gateway/internal/payments-service/session"
	"github.com/radieske/ovo-banking-gateway/internal/payments-service/vfd"
	"github.com/radieske/ovo-banking-gateway/internal/payments-service/ws"
	"github.com/radieske/ovo-banking-gateway/internal/shared/auth"
	"github.com/radieske/ovo-banking-gateway/internal/shared/cache"
	"github.com/radieske/ovo-banking-gateway/internal/shared/config"
	"github.com/radieske/ovo-banking-gateway/internal/shared/db"
	"github.com/radieske/ovo-banking-gateway/internal/shared/kafka"
	"github.com/radieske/ovo-banking-gateway/internal/shared/logger"
	"github.com/radieske/ovo-banking-gateway/internal/shared/metrics"
)

const sessionTTL = 30 * time.Minute

func main() {
	config.LoadDotEnv()
	cfg := config.LoadService("payments-service")

	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()
	log.Info("starting service", zap.String("service", cfg.ServiceName), zap.String("env", cfg.Env))

	if cfg.AuthSecret == "" {
		log.Fatal("AUTH_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// registro secundário (Postgres/Supabase)
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	store := repo.NewPostgres(pg)

	// sessões, reserva de referências, recibos pendentes e preferências
	rdb, err := cache.ConnectRedis(cfg.RedisAddr, cfg.RedisPass)
	if err != nil {
		log.Fatal("failed to connect redis", zap.Error(err))
	}
	defer rdb.Close()

	writer := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicTransactions)
	defer writer.Close()

	tokens := vfd.NewTokenAcquirer(log, cfg.VFDTokenURL, cfg.VFDConsumerKey, cfg.VFDConsumerSecret, cfg.VFDAccessToken, cfg.VFDTimeout)
	provider := vfd.New(log, cfg.VFDAPIBase, tokens, cfg.VFDTimeout)

	guard := pcache.NewReferenceGuard(rdb)
	pending := pcache.NewPendingReceipts(rdb)
	sessions := session.NewStore(rdb, store, sessionTTL)

	proc := orchestrator.NewProcessor(log, store, store, provider, guard, sessions, store, pending, producer.NewKafkaPublisher(writer))

	api := httpapi.NewServer(log, httpapi.Deps{
		Payments:       proc,
		Provider:       provider,
		Store:          store,
		Sessions:       sessions,
		Pending:        pending,
		Prefs:          pcache.NewUIPrefs(rdb),
		Owners:         guard,
		Tokens:         auth.NewIssuer(cfg.AuthSecret, 24*time.Hour),
		RateLimitRPS:   cfg.RateLimitRPS,
		AllowedOrigins: splitList(cfg.AllowedOrigins),
	})
	api.Hub = ws.NewHub(log, api.CheckOrigin)
	ws.StartRedisSubscriber(ctx, log, rdb, cfg.RedisWalletChannel, api.Hub)

	prometheus.MustRegister(provider.Collectors()...)
	prometheus.MustRegister(api.Collectors()...)

	metricsSrv := metrics.StartMetricsServer(log, cfg.MetricsPort, metrics.HealthChecks(map[string]metrics.HealthFunc{
		"postgres": store.Ping,
		"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	}))

	apiSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("api listening", zap.String("addr", apiSrv.Addr))
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("api srv", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = apiSrv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
