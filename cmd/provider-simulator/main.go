package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	simulator "github.com/radieske/ovo-banking-gateway/internal/provider-simulator"
	"github.com/radieske/ovo-banking-gateway/internal/shared/config"
	"github.com/radieske/ovo-banking-gateway/internal/shared/logger"
	"github.com/radieske/ovo-banking-gateway/internal/shared/metrics"
)

// contas de demonstração para a consulta de nome
var demoAccounts = []simulator.Account{
	{Number: "1001234567", BankCode: "566", Name: "OVO DEMO USER"},
	{Number: "1007654321", BankCode: "566", Name: "CHIOMA NWOSU"},
	{Number: "0123456789", BankCode: "044", Name: "ADEBAYO OKAFOR"},
	{Number: "0987654321", BankCode: "058", Name: "FATIMA BELLO"},
}

func main() {
	config.LoadDotEnv()
	cfg := config.LoadService("provider-simulator")
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	sim := simulator.New(log, cfg.VFDConsumerKey, cfg.VFDConsumerSecret, cfg.SimFailureRate, demoAccounts)
	prometheus.MustRegister(sim.Collectors()...)

	metricsSrv := metrics.StartMetricsServer(log, cfg.MetricsPort, nil)
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           sim.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		log.Info("provider simulator running",
			zap.String("addr", srv.Addr),
			zap.Float64("failure_rate", cfg.SimFailureRate),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("public server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	_ = srv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
}
