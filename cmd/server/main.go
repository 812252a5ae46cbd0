package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Spok95/print-shop/internal/config"
	"github.com/Spok95/print-shop/internal/domain/catalog"
	"github.com/Spok95/print-shop/internal/domain/materials"
	"github.com/Spok95/print-shop/internal/domain/orders"
	"github.com/Spok95/print-shop/internal/domain/stock"
	"github.com/Spok95/print-shop/internal/infra/db"
	httpx "github.com/Spok95/print-shop/internal/infra/http"
	"github.com/Spok95/print-shop/internal/infra/logger"
	"github.com/Spok95/print-shop/internal/infra/notify"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/subosito/gotenv"
)

func runMigrations(dsn string) error {
	sqlDB, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	return goose.Up(sqlDB, "migrations")
}

func main() {
	_ = gotenv.Load()

	path := os.Getenv("APP_CONFIG")
	if path == "" {
		path = "config/example.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.Env)

	if err := runMigrations(cfg.Postgres.DSN); err != nil {
		log.Error("migrations failed", "err", err)
		return
	}
	log.Info("migrations applied")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Error("db connect failed", "err", err)
		return
	}
	defer pool.Close()
	log.Info("db connected")

	catalogRepo := catalog.NewRepo(pool)
	matRepo := materials.NewRepo(pool)
	stockRepo := stock.NewRepo(pool)
	orderRepo := orders.NewRepo(pool)

	var notifier *notify.Telegram
	if cfg.Telegram.Enabled && cfg.Telegram.Token != "" {
		notifier, err = notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.AdminChatID, log)
		if err != nil {
			log.Error("telegram init failed, alerts disabled", "err", err)
		} else {
			log.Info("telegram alerts enabled", "chat_id", cfg.Telegram.AdminChatID)
		}
	}

	orderSvc := orders.NewService(log, matRepo, stockRepo, orderRepo, notifier)

	handler := httpx.NewHandler(log, catalogRepo, matRepo, stockRepo, orderSvc)
	router := httpx.NewRouter(log, handler, cfg.Metrics.Enabled)

	srv := httpx.New(cfg.HTTP.Addr, router)
	go func() {
		if err := srv.Start(); err != nil && err.Error() != "http: Server closed" {
			log.Error("http server error", "err", err)
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("graceful shutdown complete")
}
