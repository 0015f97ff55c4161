package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"p2plending/internal/adapter/auth"
	httpadp "p2plending/internal/adapter/http"
	mw "p2plending/internal/adapter/middleware"
	"p2plending/internal/adapter/repository/mysql"
	"p2plending/internal/config"
	"p2plending/internal/domain/loan"
	"p2plending/internal/domain/storage"
	"p2plending/internal/infrastructure/cache"
	"p2plending/internal/infrastructure/db"
	"p2plending/internal/infrastructure/events"
	"p2plending/internal/infrastructure/oracle"
	"p2plending/internal/logging"
	"p2plending/internal/observability/metrics"
	"p2plending/internal/usecase/escrow"
	"p2plending/internal/usecase/lending"
)

func main() {
	if err := run(); err != nil {
		slog.Error("lendingd: fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, logFile := logging.Setup(logging.Options{
		Service:    "lendingd",
		Env:        cfg.AppEnv,
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
	})
	defer logFile.Close()
	if err := cfg.Validate(); err != nil {
		return err
	}

	gdb, err := db.OpenGorm(cfg.DBDriver, cfg.DSN(), cfg.DBLogLevel)
	if err != nil {
		return err
	}
	if err := db.Migrate(gdb, mysql.Models()...); err != nil {
		return err
	}
	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		return err
	}
	defer rdb.Close()

	m := metrics.Lending()
	pub, closePub := newPublisher(cfg, rdb, log)
	defer closePub()

	var prices loan.PriceOracle = oracle.NewClient(cfg.OracleEndpoints, cfg.OracleTimeout)
	prices = oracle.NewCached(prices, rdb, cfg.OracleCacheTTL, log, m)

	tx := mysql.NewGormUoW(gdb, storage.Lifetime{Threshold: cfg.LifetimeThreshold, Bump: cfg.LifetimeBump})
	authz := auth.ContextAuthorizer{Reserved: []string{cfg.CustodyAccount}}
	ledger := escrow.NewLedger(cfg.CustodyAccount, authz)
	loans := lending.NewUsecase(tx, ledger, authz, prices, pub,
		lending.WithLogger(log), lending.WithMetrics(m))
	escrows := escrow.NewUsecase(tx, ledger, authz, log, m)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(middleware.Logger(), middleware.Recover())
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	health := httpadp.NewHandler(
		httpadp.HealthCheck{Name: "db", Check: pingDB(gdb)},
		httpadp.HealthCheck{Name: "redis", Check: cache.Ping(rdb)},
	)
	httpadp.Register(e, health, httpadp.NewLoanHandler(loans), httpadp.NewEscrowHandler(escrows),
		mw.JWTAuth(mw.AuthConfig{HMACSecret: cfg.AuthHMACSecret, Issuer: cfg.AuthIssuer, ClockSkew: cfg.AuthClockSkew}),
		mw.Idempotency(rdb, cfg.IdempotencyTTL(), log),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := ":" + cfg.AppPort
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", addr, "db", cfg.DBDriver, "event_sink", cfg.EventSink)
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
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func newPublisher(cfg *config.Config, rdb redis.Cmdable, log *slog.Logger) (lending.Publisher, func()) {
	switch cfg.EventSink {
	case "redis":
		return events.NewRedisPublisher(rdb, cfg.EventChannel), func() {}
	case "kafka":
		p := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		return p, func() {
			if err := p.Close(); err != nil {
				log.Warn("kafka writer close", "error", err)
			}
		}
	default:
		return events.NewLogPublisher(log), func() {}
	}
}

func pingDB(gdb *gorm.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := gdb.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
