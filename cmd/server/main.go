package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/taskpulse/api/handler"
	"github.com/fastygo/taskpulse/internal/config"
	"github.com/fastygo/taskpulse/internal/infrastructure/board"
	"github.com/fastygo/taskpulse/internal/infrastructure/monitor"
	"github.com/fastygo/taskpulse/internal/infrastructure/notifier"
	"github.com/fastygo/taskpulse/internal/infrastructure/outbox"
	pgInfra "github.com/fastygo/taskpulse/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/taskpulse/internal/infrastructure/redis"
	"github.com/fastygo/taskpulse/internal/middleware"
	"github.com/fastygo/taskpulse/internal/router"
	"github.com/fastygo/taskpulse/internal/scheduler"
	"github.com/fastygo/taskpulse/internal/services"
	"github.com/fastygo/taskpulse/internal/services/lifecycle"
	"github.com/fastygo/taskpulse/pkg/httpclient"
	"github.com/fastygo/taskpulse/pkg/httpcontext"
	"github.com/fastygo/taskpulse/pkg/logger"
	"github.com/fastygo/taskpulse/repository"
	"github.com/fastygo/taskpulse/repository/postgres"
	redisRepo "github.com/fastygo/taskpulse/repository/redis"
	"github.com/fastygo/taskpulse/usecase/digest"
	"github.com/fastygo/taskpulse/usecase/maintenance"
	"github.com/fastygo/taskpulse/usecase/preferences"
	"github.com/fastygo/taskpulse/usecase/sweep"
	"github.com/fastygo/taskpulse/usecase/transition"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	appCtx, cancel := manager.Listen(context.Background())
	defer cancel()

	// Validate already parsed these; errors are impossible here.
	location, _ := cfg.Location()
	windows, _ := cfg.ReminderWindows()
	morningHour, morningMinute, _ := config.ParseClock(cfg.Scheduler.MorningAt)
	eveningHour, eveningMinute, _ := config.ParseClock(cfg.Scheduler.EveningAt)
	cleanupHour, cleanupMinute, _ := config.ParseClock(cfg.Scheduler.CleanupAt)

	if err := pgInfra.RunMigrations(cfg.Database, cfg.Migrations, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pgInfra.Close(pool, zapLogger)
		return nil
	})

	redisClient, err := redisInfra.NewClient(appCtx, cfg.Redis, zapLogger)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	outboxStore, err := outbox.Open(cfg.Outbox.Path, "")
	if err != nil {
		zapLogger.Fatal("failed to open outbox store", zap.Error(err))
	}
	manager.Register("outbox", func(ctx context.Context) error {
		return outboxStore.Close()
	})

	mon := monitor.New(pool, monitor.PingFunc(redisInfra.Ping(redisClient)), outboxStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	taskRepo := postgres.NewTaskRepository(pool)
	reminderRepo := postgres.NewReminderRepository(pool)
	settingsRepo := postgres.NewSettingsRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	transitionRepo := postgres.NewTransitionRepository(pool)
	listCache := redisRepo.NewBoardListCache(redisClient, cfg.Redis.BoardListTTL)

	boardHTTP := httpclient.New(httpclient.Config{
		Timeout:    cfg.Board.Timeout,
		MaxRetries: cfg.Board.MaxRetries,
		UserAgent:  cfg.AppName,
	}, zapLogger.Named("board"))
	notifierHTTP := httpclient.New(httpclient.Config{
		Timeout:    cfg.Notifier.Timeout,
		MaxRetries: cfg.Notifier.MaxRetries,
		UserAgent:  cfg.AppName,
	}, zapLogger.Named("notifier"))

	boardClient := board.New(board.Config{BaseURL: cfg.Board.BaseURL, Token: cfg.Board.Token}, boardHTTP, zapLogger)
	telegram := notifier.NewTelegram(notifier.Config{BaseURL: cfg.Notifier.BaseURL, Token: cfg.Notifier.Token}, notifierHTTP, zapLogger)

	relay := services.NewActivityRelay(outboxStore, boardClient, services.RelayConfig{
		BatchSize:  cfg.Outbox.BatchSize,
		MaxRetries: cfg.Outbox.MaxRetry,
	}, zapLogger)

	engine := transition.New(taskRepo, boardClient, listCache, relay, transition.Config{
		DefaultBoardID: cfg.Board.DefaultBoardID,
	}, zapLogger)

	sweepUseCase := sweep.New(taskRepo, reminderRepo, settingsRepo, telegram, sweep.Config{
		Windows:       windows,
		OverdueRepeat: cfg.Reminder.OverdueRepeat,
		Location:      location,
	}, zapLogger)

	digestUseCase := digest.New(taskRepo, userRepo, settingsRepo, telegram, digest.Config{
		ItemCap:     cfg.Digest.ItemCap,
		MorningHour: morningHour,
		Location:    location,
	}, zapLogger)

	cleanupUseCase := maintenance.New(reminderRepo, relay, maintenance.Config{
		ReminderRetention: cfg.Reminder.Retention,
		OutboxRetention:   cfg.Outbox.Retention,
	}, zapLogger)

	prefsUseCase := preferences.New(userRepo, settingsRepo, zapLogger)

	var jobLock repository.JobLock
	if cfg.Scheduler.DistributedLock {
		jobLock = redisRepo.NewJobLock(redisClient)
	}
	sched := scheduler.New(scheduler.Config{
		Location:       location,
		DefaultTimeout: cfg.Scheduler.JobTimeout,
	}, jobLock, zapLogger)

	if err := services.RegisterJobs(sched, services.JobDeps{
		Sweep:   sweepUseCase,
		Digest:  digestUseCase,
		Cleanup: cleanupUseCase,
		Relay:   relay,
	}, services.JobSchedule{
		SweepInterval: cfg.Scheduler.SweepInterval,
		FlushInterval: cfg.Outbox.FlushInterval,
		Morning:       services.ClockTime{Hour: morningHour, Minute: morningMinute},
		Evening:       services.ClockTime{Hour: eveningHour, Minute: eveningMinute},
		Cleanup:       services.ClockTime{Hour: cleanupHour, Minute: cleanupMinute},
	}); err != nil {
		zapLogger.Fatal("failed to register jobs", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		zapLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	manager.Register("scheduler", func(ctx context.Context) error {
		sched.Stop(ctx)
		return nil
	})

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Health:   apiHandler.NewHealthHandler(mon, sched, ctxAdapter, zapLogger),
		Task:     apiHandler.NewTaskHandler(engine, transitionRepo, ctxAdapter, zapLogger),
		Jobs:     apiHandler.NewJobsHandler(sched, ctxAdapter, zapLogger),
		Settings: apiHandler.NewSettingsHandler(prefsUseCase, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, cfg.JWT.Issuer, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Error("server stopped", zap.Error(err))
			cancel()
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
