package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/radieske/ovo-banking-gateway/internal/payments-service/vfd"
	"github.com/radieske/ovo-banking-gateway/internal/shared/config"
	"github.com/radieske/ovo-banking-gateway/internal/shared/db"
	"github.com/radieske/ovo-banking-gateway/internal/shared/logger"
	"github.com/radieske/ovo-banking-gateway/internal/smoke"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "smoke-test",
		Short: "Verifica configuração e conectividade do gateway (VFD, Supabase, API)",
		Long: `Executa as checagens de ambiente e imprime o total de aprovados,
avisos e falhas. O código de saída é sempre 0: o relatório é informativo.`,
		RunE: run,
	}
	rootCmd.Flags().String("env-file", "", "arquivo .env adicional (padrão: .env.local e .env)")
	rootCmd.Flags().String("api-url", "", "URL base do payments-service (sobrescreve API_URL)")
	rootCmd.Flags().Duration("timeout", smoke.DefaultTimeout, "timeout de cada chamada de rede")
	rootCmd.Flags().Bool("skip-db", false, "não conecta no Postgres para checar o schema")
	rootCmd.Flags().Bool("skip-api", false, "não checa o health da API")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	envFile, _ := cmd.Flags().GetString("env-file")
	apiURL, _ := cmd.Flags().GetString("api-url")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	skipDB, _ := cmd.Flags().GetBool("skip-db")
	skipAPI, _ := cmd.Flags().GetBool("skip-api")

	if envFile != "" {
		config.LoadDotEnv(envFile)
	}
	config.LoadDotEnv()
	cfg := config.Load()
	if apiURL != "" {
		cfg.APIURL = apiURL
	}

	// logs vão para stderr; o relatório sai em stdout
	log, err := logger.New("smoke-test", cfg.Env)
	if err != nil {
		log = zap.NewNop()
	}
	defer log.Sync()

	r := smoke.NewRunner(cfg, os.LookupEnv, timeout)
	r.SkipAPI = skipAPI
	r.Tokens = vfd.NewTokenAcquirer(log, cfg.VFDTokenURL, cfg.VFDConsumerKey, cfg.VFDConsumerSecret, "", timeout)
	if !skipDB {
		pg, err := db.ConnectPostgres(cfg.PostgresDSN)
		if err != nil {
			log.Warn("postgres unavailable, schema check skipped", zap.Error(err))
		} else {
			defer pg.Close()
			r.DB = pg
		}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	fmt.Fprintln(cmd.OutOrStdout(), "OVO BANKING GATEWAY - SMOKE TEST")
	smoke.Print(cmd.OutOrStdout(), r.Run(ctx))
	return nil
}
