package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/taskhive/backend/api/handler"
	"github.com/taskhive/backend/internal/config"
	"github.com/taskhive/backend/internal/infrastructure/boltstore"
	"github.com/taskhive/backend/internal/infrastructure/monitor"
	pgInfra "github.com/taskhive/backend/internal/infrastructure/postgres"
	redisInfra "github.com/taskhive/backend/internal/infrastructure/redis"
	"github.com/taskhive/backend/internal/middleware"
	"github.com/taskhive/backend/internal/router"
	"github.com/taskhive/backend/internal/services/lifecycle"
	"github.com/taskhive/backend/internal/services/sweeper"
	"github.com/taskhive/backend/pkg/httpcontext"
	"github.com/taskhive/backend/pkg/logger"
	"github.com/taskhive/backend/repository"
	boltRepo "github.com/taskhive/backend/repository/bolt"
	"github.com/taskhive/backend/repository/postgres"
	redisRepo "github.com/taskhive/backend/repository/redis"
	accountUC "github.com/taskhive/backend/usecase/account"
	authUC "github.com/taskhive/backend/usecase/auth"
	taskUC "github.com/taskhive/backend/usecase/task"
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

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	var (
		sessionRepo  repository.SessionRepository
		flashRepo    repository.FlashRepository
		sessionProbe monitor.Probe
	)

	switch cfg.Session.Store {
	case config.StoreEmbedded:
		store, err := boltstore.Open(cfg.Session.BoltPath)
		if err != nil {
			zapLogger.Fatal("failed to open embedded session store", zap.Error(err))
		}
		manager.Register("session_store", func(ctx context.Context) error {
			return store.Close()
		})
		sessionRepo = boltRepo.NewSessionRepository(store, cfg.Session.TTL)
		flashRepo = boltRepo.NewFlashRepository(store)
		sessionProbe = func(ctx context.Context) error {
			_, err := store.Size(boltstore.BucketSessions)
			return err
		}

		// bolt has no key TTLs; the sweeper enforces session expiry
		sw := sweeper.New(store, cfg.Session.SweepInterval, zapLogger)
		sw.Start()
		manager.Register("session_sweeper", func(ctx context.Context) error {
			sw.Stop(ctx)
			return nil
		})
	default:
		redisClient, err := redisInfra.NewClient(cfg.Redis)
		if err != nil {
			zapLogger.Fatal("redis connection failed", zap.Error(err))
		}
		manager.Register("session_store", func(ctx context.Context) error {
			return redisClient.Close()
		})
		sessionRepo = redisRepo.NewSessionRepository(redisClient, cfg.Session.TTL)
		flashRepo = redisRepo.NewFlashRepository(redisClient, time.Hour)
		sessionProbe = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}

	pgProbe := func(ctx context.Context) error {
		return pool.Ping(ctx)
	}
	mon := monitor.New(pgProbe, sessionProbe, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	userRepo := postgres.NewUserRepository(pool)
	taskRepo := postgres.NewTaskRepository(pool)

	authUseCase := authUC.New(userRepo, sessionRepo, cfg.Session.TTL, zapLogger)
	taskUseCase := taskUC.New(taskRepo, zapLogger)
	accountUseCase := accountUC.New(userRepo, taskRepo, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:    apiHandler.NewAuthHandler(authUseCase, ctxAdapter, flashRepo, zapLogger, cfg.Session.Secret, cfg.Session.CookieName),
		Task:    apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, flashRepo, zapLogger),
		Account: apiHandler.NewAccountHandler(accountUseCase, ctxAdapter, flashRepo, zapLogger),
		Health:  apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	guard := middleware.SessionAuth(authUseCase, cfg.Session.Secret, cfg.Session.CookieName, zapLogger)
	r := router.New(handlers, guard)

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
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
