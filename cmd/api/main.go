package main

import (
	"context"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadp "autoempeno-backend/internal/adapter/http"
	mw "autoempeno-backend/internal/adapter/middleware"
	repo "autoempeno-backend/internal/adapter/repository/mysql"
	"autoempeno-backend/internal/config"
	"autoempeno-backend/internal/domain/pledge"
	"autoempeno-backend/internal/infrastructure/cache"
	"autoempeno-backend/internal/infrastructure/db"
	"autoempeno-backend/internal/infrastructure/logging"
	ucasset "autoempeno-backend/internal/usecase/asset"
	ucpledge "autoempeno-backend/internal/usecase/pledge"
	ucreport "autoempeno-backend/internal/usecase/report"
	"autoempeno-backend/pkg/clock"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		stdlog.Fatalf("load .env: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		stdlog.Fatalf("config: %v", err)
	}

	log, err := logging.New(cfg.LogLevel, !cfg.Production())
	if err != nil {
		stdlog.Fatalf("logger: %v", err)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	gormLog, err := db.NewLogger(log, cfg.GormLevel)
	if err != nil {
		return err
	}
	gdb, err := db.OpenGorm(cfg.DBDriver, cfg.DSN(), gormLog)
	if err != nil {
		return err
	}
	if err := db.Migrate(gdb); err != nil {
		return err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()
	log.Info("database ready", zap.String("driver", cfg.DBDriver))

	rdb, err := cache.OpenRedis(cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPass, DB: cfg.RedisDB})
	if err != nil {
		return err
	}
	defer rdb.Close()

	tokens, err := mw.NewTokenValidator(cfg.AuthSecret, cfg.AuthIssuer, cfg.AuthAudience)
	if err != nil {
		return err
	}

	clk := clock.System{}
	lifecycle := pledge.Lifecycle{AllowSaleWhilePawned: cfg.AllowSaleWhilePawned}
	assets := repo.NewAssetRepository(gdb)
	pledges := repo.NewPledgeRepository(gdb)
	txs := repo.NewTransactionRepository(gdb)
	tx := repo.NewGormUoW(gdb)

	assetUC := ucasset.NewUsecase(assets, tx, clk, lifecycle, log.Named("asset"))
	pledgeUC := ucpledge.NewUsecase(pledges, txs, tx, clk, log.Named("pledge"))
	reportUC := ucreport.NewUsecase(txs)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(middleware.Recover(), mw.RequestLogger(log.Named("http")), middleware.BodyLimit("1M"))

	httpadp.Register(e, httpadp.Routes{
		Health: httpadp.NewHandler(map[string]httpadp.Check{
			"db":    sqlDB.PingContext,
			"redis": cache.Ping(rdb),
		}),
		Assets:       httpadp.NewAssetHandler(assetUC, log),
		Pledges:      httpadp.NewPledgeHandler(pledgeUC, log),
		Transactions: httpadp.NewTransactionHandler(reportUC, log),
		Session:      mw.Session(tokens, log.Named("auth")),
		Idempotency:  mw.Idempotency(rdb, cfg.IdempotencyTTL(), log.Named("idempotency")),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := ":" + cfg.AppPort
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.Bool("allow_sale_while_pawned", cfg.AllowSaleWhilePawned))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("shutting down")
	return e.Shutdown(shutdownCtx)
}
