// Package main - точка входа основного процесса School Grade Hub.
//
// Основной процесс - единственный писатель: он владеет долговечным
// хранилищем журнала оценок (PostgreSQL), обслуживает HTTP API и после
// каждой мутации пересчитывает и публикует снапшот виджета в общее
// Redis-хранилище, откуда его читает отдельный процесс виджета.
//
// Архитектура следует принципам Clean Architecture и DDD:
// - Domain: системы оценивания, учебные периоды, журнал, снапшот
// - Application: Commands/Queries, выбор периода, републикация снапшота
// - Infrastructure: PostgreSQL, Redis, event bus, планировщик, мигратор
// - Interface: HTTP endpoints
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deinadmin/school-grade-hub/config"
	"github.com/deinadmin/school-grade-hub/internal/application/command"
	"github.com/deinadmin/school-grade-hub/internal/application/eventhandler"
	"github.com/deinadmin/school-grade-hub/internal/application/query"
	"github.com/deinadmin/school-grade-hub/internal/application/selection"
	"github.com/deinadmin/school-grade-hub/internal/infrastructure/messaging"
	"github.com/deinadmin/school-grade-hub/internal/infrastructure/migration"
	"github.com/deinadmin/school-grade-hub/internal/infrastructure/persistence/postgres"
	redisstore "github.com/deinadmin/school-grade-hub/internal/infrastructure/persistence/redis"
	"github.com/deinadmin/school-grade-hub/internal/infrastructure/scheduler"
	httpserver "github.com/deinadmin/school-grade-hub/internal/interface/http"
	"github.com/deinadmin/school-grade-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

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
	// 1. ЗАГРУЗКА КОНФИГУРАЦИИ
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. НАСТРОЙКА ЛОГИРОВАНИЯ
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting School Grade Hub",
		"env", string(cfg.App.Environment),
		"version", cfg.App.Version,
		"debug", cfg.App.Debug,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ПОДКЛЮЧЕНИЕ К БАЗЕ ДАННЫХ (PostgreSQL)
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}

	log.Info("connecting to database...")
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL, postgres.PoolSettings{
		MaxConns:        int32(cfg.Database.MaxOpenConns),
		MinConns:        int32(cfg.Database.MaxIdleConns),
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()

	if err := dbConn.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	log.Info("database connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. ЗАПУСК МИГРАЦИЙ СХЕМЫ
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Database.RunMigrations {
		log.Info("running database migrations...")
		schemaMigrator := postgres.NewMigrator(dbConn)
		if err := schemaMigrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		status, err := schemaMigrator.Status(ctx)
		if err != nil {
			log.Warn("failed to get migration status", "error", err)
		} else {
			appliedCount := 0
			for _, m := range status {
				if m.IsApplied {
					appliedCount++
				}
			}
			log.Info("migrations completed", "applied", appliedCount, "total", len(status))
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. ПОДКЛЮЧЕНИЕ К ОБЩЕМУ ХРАНИЛИЩУ (Redis)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to shared store...")
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

	redisClient, err := redisstore.NewClient(redisCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to shared store: %w", err)
	}
	defer func() {
		log.Info("closing shared store connection...")
		_ = redisClient.Close()
	}()
	log.Info("shared store connection established", "addr", redisCfg.Addr())

	snapshotStore := redisstore.NewSnapshotStore(redisClient, log)

	// ─────────────────────────────────────────────────────────────────────────
	// 6. ИНИЦИАЛИЗАЦИЯ РЕПОЗИТОРИЕВ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing repositories...")
	subjectRepo := postgres.NewSubjectRepository(dbConn)
	gradeRepo := postgres.NewGradeRepository(dbConn)
	finalGradeRepo := postgres.NewFinalGradeRepository(dbConn)
	assignmentRepo := postgres.NewAssignmentRepository(dbConn)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. МИГРАЦИЯ НАСТРОЕК ИЗ LEGACY-ПРОСТРАНСТВА
	// ─────────────────────────────────────────────────────────────────────────
	legacySettings := redisstore.NewLegacySettings(redisClient)
	legacyMigrator := migration.NewMigrator(legacySettings, assignmentRepo, log)
	if state := legacyMigrator.Run(ctx); state != migration.StateCompleted {
		// Не фатально: незавершённый проход повторится при следующем запуске.
		log.Warn("legacy settings migration incomplete, will retry on next launch")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 8. ИНИЦИАЛИЗАЦИЯ EVENT BUS И APPLICATION LAYER
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing application layer...")
	eventBus := messaging.NewInMemoryEventBus(log)
	defer func() {
		log.Info("closing event bus...")
		eventBus.Close()
	}()

	// Выбор периода по умолчанию: текущий год с его сохранённой системой
	// оценивания, чтобы республикация после перезапуска не откатывала
	// снапшот на систему по умолчанию.
	sel, err := selection.NewResolved(ctx, time.Now(), assignmentRepo)
	if err != nil {
		return fmt.Errorf("failed to resolve selected period: %w", err)
	}

	// Queries
	listSubjectsQuery := query.NewListSubjectsHandler(subjectRepo)
	getGradesQuery := query.NewGetGradesHandler(subjectRepo, gradeRepo)
	subjectAverageQuery := query.NewGetSubjectAverageHandler(gradeRepo, finalGradeRepo)
	overallAverageQuery := query.NewGetOverallAverageHandler(subjectRepo, gradeRepo, finalGradeRepo)

	// Commands
	createSubjectCmd := command.NewCreateSubjectHandler(subjectRepo, eventBus)
	updateSubjectCmd := command.NewUpdateSubjectHandler(subjectRepo, eventBus)
	deleteSubjectCmd := command.NewDeleteSubjectHandler(subjectRepo, eventBus)
	recordGradeCmd := command.NewRecordGradeHandler(subjectRepo, gradeRepo, assignmentRepo, eventBus)
	deleteGradeCmd := command.NewDeleteGradeHandler(gradeRepo, eventBus)
	setFinalGradeCmd := command.NewSetFinalGradeHandler(subjectRepo, finalGradeRepo, assignmentRepo, eventBus)
	removeFinalGradeCmd := command.NewRemoveFinalGradeHandler(finalGradeRepo, assignmentRepo, eventBus)
	chooseGradingSystemCmd := command.NewChooseGradingSystemHandler(assignmentRepo, sel, eventBus)
	selectPeriodCmd := command.NewSelectPeriodHandler(sel, assignmentRepo, eventBus)

	// ─────────────────────────────────────────────────────────────────────────
	// 9. РЕГИСТРАЦИЯ РЕПУБЛИКАТОРА СНАПШОТА
	// ─────────────────────────────────────────────────────────────────────────
	snapshotHandler := eventhandler.NewOnGradebookChangedHandler(
		overallAverageQuery, sel, snapshotStore, log)
	if err := eventBus.SubscribeAll(snapshotHandler.Handle); err != nil {
		return fmt.Errorf("failed to subscribe snapshot republisher: %w", err)
	}

	// Стартовая публикация: снапшот отражает текущее состояние журнала
	// ещё до первой мутации.
	if w, err := snapshotHandler.BuildSnapshot(ctx); err != nil {
		log.Warn("initial snapshot build failed", "error", err)
	} else {
		snapshotHandler.PublishSnapshot(ctx, w)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 10. ПЛАНИРОВЩИК: ПЕРИОДИЧЕСКАЯ РЕПУБЛИКАЦИЯ
	// ─────────────────────────────────────────────────────────────────────────
	sched := scheduler.New(log)
	republish := &republishJob{handler: snapshotHandler}
	if err := sched.Register(republish, scheduler.NewIntervalSchedule(cfg.Widget.RepublishInterval)); err != nil {
		return fmt.Errorf("failed to register republish job: %w", err)
	}
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer func() {
		log.Info("stopping scheduler...")
		_ = sched.Stop()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 11. СОЗДАНИЕ HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing HTTP server...")

	httpConfig := httpserver.DefaultConfig()
	httpConfig.Host = cfg.HTTP.Host
	httpConfig.Port = cfg.HTTP.Port
	httpConfig.ReadTimeout = cfg.HTTP.ReadTimeout
	httpConfig.WriteTimeout = cfg.HTTP.WriteTimeout
	httpConfig.IdleTimeout = cfg.HTTP.IdleTimeout
	httpConfig.EnableCORS = cfg.HTTP.EnableCORS
	httpConfig.RateLimitPerMinute = cfg.HTTP.RateLimitPerMinute

	httpDeps := httpserver.Dependencies{
		CreateSubjectHandler:       createSubjectCmd,
		UpdateSubjectHandler:       updateSubjectCmd,
		DeleteSubjectHandler:       deleteSubjectCmd,
		RecordGradeHandler:         recordGradeCmd,
		DeleteGradeHandler:         deleteGradeCmd,
		SetFinalGradeHandler:       setFinalGradeCmd,
		RemoveFinalGradeHandler:    removeFinalGradeCmd,
		ChooseGradingSystemHandler: chooseGradingSystemCmd,
		SelectPeriodHandler:        selectPeriodCmd,
		ListSubjectsHandler:        listSubjectsQuery,
		GetGradesHandler:           getGradesQuery,
		GetSubjectAverageHandler:   subjectAverageQuery,
		GetOverallAverageHandler:   overallAverageQuery,
		Selection:                  sel,
		Assignments:                assignmentRepo,
		SnapshotStore:              snapshotStore,
		SnapshotPublisher:          snapshotHandler,
		Logger:                     setupAPILogger(cfg),
		DBPinger:                   dbConn,
	}

	httpServer := httpserver.NewServer(httpConfig, httpDeps)

	// ─────────────────────────────────────────────────────────────────────────
	// 12. ЗАПУСК И GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting HTTP server", "address", httpServer.Address())
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	log.Info("School Grade Hub is running", "http_address", httpServer.Address())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		log.Error("service error", "error", err)
		return err
	}

	log.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop HTTP server gracefully", "error", err)
		return err
	}

	log.Info("shutdown completed successfully")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// setupLogger настраивает структурированное логирование.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	switch cfg.Observability.LogLevel {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	}
	if cfg.App.Debug {
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

// setupAPILogger настраивает логгер HTTP-слоя.
func setupAPILogger(cfg *config.Config) *logger.Logger {
	opts := logger.DefaultOptions()
	opts.Format = cfg.Observability.LogFormat
	if cfg.App.Debug {
		opts.Level = logger.LevelDebug
	} else {
		opts.Level = logger.ParseLevel(cfg.Observability.LogLevel)
	}
	return logger.New(opts)
}

// ══════════════════════════════════════════════════════════════════════════════
// JOBS
// ══════════════════════════════════════════════════════════════════════════════

// republishJob периодически перепубликует снапшот. Страхует от потерянных
// сигналов обновления и от снапшота, устаревшего за время простоя.
type republishJob struct {
	handler *eventhandler.OnGradebookChangedHandler
}

func (j *republishJob) Name() string { return "snapshot-republish" }

func (j *republishJob) Run(ctx context.Context) error {
	w, err := j.handler.BuildSnapshot(ctx)
	if err != nil {
		return err
	}
	j.handler.PublishSnapshot(ctx, w)
	return nil
}
