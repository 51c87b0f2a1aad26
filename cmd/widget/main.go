// Package main - точка входа процесса виджета School Grade Hub.
//
// Процесс виджета - читатель: он не трогает долговечное хранилище и видит
// журнал только через снапшот в общем Redis-хранилище. Рендер обновляется
// по таймеру и немедленно по сигналу писателя; отсутствующий или
// недоступный снапшот рендерится как пустое состояние, а не как ошибка.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/deinadmin/school-grade-hub/config"
	redisstore "github.com/deinadmin/school-grade-hub/internal/infrastructure/persistence/redis"
	"github.com/deinadmin/school-grade-hub/internal/infrastructure/scheduler"
	"github.com/deinadmin/school-grade-hub/internal/interface/widget"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. КОНФИГУРАЦИЯ И ЛОГИРОВАНИЕ
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := setupLogger(cfg)
	log.Info("starting School Grade Hub widget",
		"env", string(cfg.App.Environment),
		"refresh_interval", cfg.Widget.RefreshInterval.String(),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 2. ПОДКЛЮЧЕНИЕ К ОБЩЕМУ ХРАНИЛИЩУ (Redis)
	// ─────────────────────────────────────────────────────────────────────────
	redisCfg := redisstore.DefaultConfig()
	redisCfg.Host = cfg.Redis.Host
	redisCfg.Port = cfg.Redis.Port
	redisCfg.Password = cfg.Redis.Password
	redisCfg.DB = cfg.Redis.DB
	redisCfg.PoolSize = cfg.Redis.PoolSize
	redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
	redisCfg.DialTimeout = cfg.Redis.DialTimeout
	redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
	redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

	// Клиент создаётся без проверки соединения: читатель стартует и при
	// недоступном хранилище, рендеря пустое состояние до его появления.
	redisClient := redisstore.NewReaderClient(redisCfg)
	defer func() {
		log.Info("closing shared store connection...")
		_ = redisClient.Close()
	}()

	snapshotStore := redisstore.NewSnapshotStore(redisClient, log)

	if !snapshotStore.ValidateAccess(ctx) {
		// Читатель всё равно стартует: Read тотален и вернёт пустое
		// состояние, пока хранилище не станет доступно.
		log.Warn("shared store access probe failed, rendering empty state")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 3. РЕНДЕР И ПЛАНИРОВЩИК
	// ─────────────────────────────────────────────────────────────────────────
	renderer := widget.NewRenderer(cfg.Widget.RoundPointAverages)
	refreshJob := widget.NewRefreshJob(snapshotStore, renderer, log, nil)

	sched := scheduler.New(log)
	if err := sched.Register(refreshJob, scheduler.NewIntervalSchedule(cfg.Widget.RefreshInterval)); err != nil {
		return fmt.Errorf("failed to register refresh job: %w", err)
	}
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer func() {
		log.Info("stopping scheduler...")
		_ = sched.Stop()
	}()

	// Первый рендер сразу, не дожидаясь первого тика.
	if err := sched.TriggerNow(widget.RefreshJobName); err != nil {
		log.Warn("initial render trigger failed", "error", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. ПОДПИСКА НА СИГНАЛ ОБНОВЛЕНИЯ
	// ─────────────────────────────────────────────────────────────────────────
	listener := widget.NewListener(snapshotStore, sched, log)

	listenCtx, listenCancel := context.WithCancel(ctx)
	defer listenCancel()
	go listener.Listen(listenCtx)

	log.Info("widget process is running")

	// ─────────────────────────────────────────────────────────────────────────
	// 5. ОЖИДАНИЕ ЗАВЕРШЕНИЯ
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	sig := <-sigCh
	log.Info("received shutdown signal", "signal", sig.String())

	return nil
}

// setupLogger настраивает структурированное логирование.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if cfg.App.Debug || cfg.Observability.LogLevel == "debug" {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.Observability.LogFormat == "text" || cfg.IsDevelopment() {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)

	return log
}
