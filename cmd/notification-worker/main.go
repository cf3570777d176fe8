package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/ovo-banking-gateway/internal/notification-worker/consumer"
	"github.com/radieske/ovo-banking-gateway/internal/notification-worker/pubsub"
	"github.com/radieske/ovo-banking-gateway/internal/notification-worker/repository"
	"github.com/radieske/ovo-banking-gateway/internal/shared/cache"
	"github.com/radieske/ovo-banking-gateway/internal/shared/config"
	"github.com/radieske/ovo-banking-gateway/internal/shared/db"
	"github.com/radieske/ovo-banking-gateway/internal/shared/kafka"
	"github.com/radieske/ovo-banking-gateway/internal/shared/logger"
	"github.com/radieske/ovo-banking-gateway/internal/shared/metrics"
)

func main() {
	config.LoadDotEnv()
	cfg := config.LoadService("notification-worker")
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	redisClient, err := cache.ConnectRedis(cfg.RedisAddr, cfg.RedisPass)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// consumer group próprio: cada evento gera as notificações uma vez
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicTransactions, "notification-worker")
	defer reader.Close()

	var dlq *kafka.Writer
	if cfg.TopicTransactionsDLQ != "" {
		dlq = kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicTransactionsDLQ)
		defer dlq.Close()
	}

	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "notifications_events_consumed_total", Help: "eventos de transação consumidos"})
	notified := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "notifications_created_total", Help: "notificações gravadas por tipo"}, []string{"type"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "notifications_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, notified, errorsBy)

	proc := &consumer.Processor{
		Log:         log,
		Reader:      reader,
		Repo:        repository.NewPostgresRepo(pg),
		Broadcaster: pubsub.NewRedisBroadcaster(redisClient, cfg.RedisWalletChannel),
		OnConsumed:  func() { consumed.Inc() },
		OnNotified:  func(typ string) { notified.WithLabelValues(typ).Inc() },
		OnError:     func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}
	if dlq != nil {
		proc.DLQ = dlq
	}

	metricsSrv := metrics.StartMetricsServer(log, cfg.MetricsPort, metrics.HealthChecks(map[string]metrics.HealthFunc{
		"postgres": pg.PingContext,
		"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	}))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("notification-worker started",
		zap.String("consume", cfg.TopicTransactions),
		zap.String("dlq", cfg.TopicTransactionsDLQ),
		zap.String("publish", cfg.RedisWalletChannel),
	)
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Error("processor stopped with error", zap.Error(err))
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	_ = metricsSrv.Shutdown(shutdownCtx)
	log.Info("notification-worker stopped")
}
