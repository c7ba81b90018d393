package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/legalvoice/api/internal/auth"
	"github.com/legalvoice/api/internal/client"
	"github.com/legalvoice/api/internal/config"
	"github.com/legalvoice/api/internal/document"
	"github.com/legalvoice/api/internal/handler"
	"github.com/legalvoice/api/internal/logger"
	"github.com/legalvoice/api/internal/metrics"
	"github.com/legalvoice/api/internal/middleware"
	"github.com/legalvoice/api/internal/pipeline"
	"github.com/legalvoice/api/internal/render"
	"github.com/legalvoice/api/internal/service"
	"github.com/legalvoice/api/internal/store"
	ws "github.com/legalvoice/api/internal/websocket"
	"github.com/legalvoice/api/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.MustNew(cfg.Server.IsDevelopment(), cfg.Server.LogLevel)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	redisUp := true
	if err := redisClient.Ping(ctx).Err(); err != nil {
		redisUp = false
		log.Warn("redis not available", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	}

	m := metrics.New()

	caseStore, closeStore, err := openStore(ctx, cfg, redisClient, log)
	if err != nil {
		return err
	}
	defer closeStore()

	storage, storageDriver, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}

	collab, info := collaborators(ctx, cfg, storage, log)
	info.Store = cfg.Store.Driver
	info.Storage = storageDriver

	// Dispatch through the queue when asked to and Redis answers, otherwise in process.
	var (
		dispatcher pipeline.Dispatcher
		inline     *pipeline.InlineDispatcher
		asynqOpt   = asynq.RedisClientOpt{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}
	)
	if cfg.Pipeline.Async && redisUp {
		asynqClient := asynq.NewClient(asynqOpt)
		defer asynqClient.Close()
		dispatcher = pipeline.NewAsynqDispatcher(asynqClient, cfg.Pipeline.MaxRetries)
		info.Dispatch = "asynq"
	} else {
		inline = pipeline.NewInlineDispatcher(ctx, true, log)
		dispatcher = inline
		info.Dispatch = "inline"
	}

	p := pipeline.New(caseStore, collab, dispatcher, m, log, pipeline.ConfigFrom(cfg.Pipeline))
	if inline != nil {
		inline.Bind(p)
		defer inline.Wait()
	} else {
		srv := newWorkerServer(asynqOpt, cfg, log)
		mux := asynq.NewServeMux()
		worker.NewCaseWorker(p, log).Register(mux)
		if err := srv.Start(mux); err != nil {
			return fmt.Errorf("failed to start worker server: %w", err)
		}
		defer srv.Shutdown()
	}

	hub := ws.NewHub(caseStore, cfg.Pipeline.PollInterval, log)
	go hub.Run(ctx)

	verifier := tokenVerifier(ctx, cfg, log)
	info.Auth = verifier.Configured() || cfg.Gateway.Enabled

	var apiAuth fiber.Handler
	if cfg.Gateway.Enabled {
		log.Info("gateway mode enabled, using header-based auth")
		apiAuth = middleware.GatewayAuthMiddleware()
	} else {
		if !verifier.Configured() {
			log.Warn("no token verifier configured, API requests will be rejected")
		}
		apiAuth = middleware.NewAuthMiddleware(verifier).Authenticate()
	}

	var limiter *middleware.RateLimiter
	if redisUp {
		limiter = middleware.NewRateLimiter(redisClient, log)
	}

	caseService := service.NewCaseService(caseStore, storage, p, validator.New(), m, log)

	app := fiber.New(fiber.Config{
		ErrorHandler:          handler.ErrorHandler,
		BodyLimit:             service.MaxAudioSize + 1024*1024,
		DisableStartupMessage: !cfg.Server.IsDevelopment(),
	})
	app.Use(recover.New())
	app.Use(middleware.RequestLogger(log))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	var files *handler.FileHandler
	if mem, ok := storage.(*client.MemoryStorage); ok {
		files = handler.NewFileHandler(mem, log)
	}
	handler.Register(app, handler.Routes{
		Health:      handler.NewHealthHandler(info),
		Auth:        handler.NewAuthHandler(verifier),
		Cases:       handler.NewCaseHandler(caseService, log),
		Files:       files,
		Hub:         hub,
		APIAuth:     apiAuth,
		RateLimiter: limiter,
		RateLimit:   cfg.RateLimit,
		Registry:    m.Registry,
	})

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Server.Port
		log.Info("server starting", zap.String("addr", addr), zap.Any("services", info))
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	}
	return nil
}

func openStore(ctx context.Context, cfg *config.Config, redisClient *redis.Client, log *zap.Logger) (store.Store, func(), error) {
	noop := func() {}
	switch cfg.Store.Driver {
	case "redis":
		return store.NewRedisStore(redisClient), noop, nil
	case "postgres":
		db, err := store.OpenPostgres(ctx, cfg.Store.PostgresDSN)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to open postgres: %w", err)
		}
		pg := store.NewPostgresStore(db)
		if err := pg.Migrate(ctx); err != nil {
			db.Close()
			return nil, noop, fmt.Errorf("failed to migrate postgres: %w", err)
		}
		return pg, func() { db.Close() }, nil
	case "memory", "":
		log.Info("using in-memory case store")
		return store.NewMemoryStore(), noop, nil
	}
	return nil, noop, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

func openStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (client.StorageClient, string, error) {
	switch cfg.Storage.Driver {
	case "r2":
		r2, err := client.NewR2Client(&cfg.R2)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create R2 client: %w", err)
		}
		return r2, "r2", nil
	case "minio":
		mc, err := client.NewMinioClient(ctx, &cfg.Minio)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create minio client: %w", err)
		}
		return mc, "minio", nil
	case "memory", "":
		log.Info("object storage not configured, using in-memory storage")
		return client.NewMemoryStorage(cfg.Storage.PublicURL), "memory", nil
	}
	return nil, "", fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

// collaborators picks real adapters where credentials exist and local fallbacks otherwise.
func collaborators(ctx context.Context, cfg *config.Config, storage client.StorageClient, log *zap.Logger) (pipeline.Collaborators, handler.HealthInfo) {
	var info handler.HealthInfo
	collab := pipeline.Collaborators{
		Storage:  storage,
		Renderer: render.NewPDFRenderer(),
	}

	if whisper := client.NewWhisperTranscriber(&cfg.OpenAI, storage); whisper.IsConfigured() {
		collab.Transcriber = whisper
		info.Transcriber = true
	} else {
		log.Info("OpenAI not configured, using canned transcripts")
		collab.Transcriber = client.MockTranscriber{}
	}

	if llm := client.NewLLMGenerator(&cfg.Groq); llm.IsConfigured() {
		collab.Generator = llm
		info.Generator = true
	} else {
		log.Info("Groq not configured, using letter templates")
		collab.Generator = document.TemplateGenerator{}
	}

	collab.Notifier = client.NewLogNotifier(log)
	if cfg.Notify.Enabled {
		n, err := client.NewAWSNotifier(ctx, &cfg.AWS, &cfg.Notify)
		if err != nil {
			log.Warn("AWS notifier not initialized, logging notifications instead", zap.Error(err))
		} else {
			collab.Notifier = n
			info.Notifier = true
		}
	}
	return collab, info
}

// tokenVerifier prefers Zitadel JWKS and falls back to the shared HMAC secret.
func tokenVerifier(ctx context.Context, cfg *config.Config, log *zap.Logger) auth.Chain {
	var verifiers []auth.TokenVerifier
	if cfg.Zitadel.Issuer != "" {
		discoverCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		v, err := auth.NewJWKSVerifier(discoverCtx, &cfg.Zitadel)
		if err != nil {
			log.Warn("JWKS verifier not initialized", zap.Error(err))
		} else {
			verifiers = append(verifiers, v)
		}
	}
	if cfg.JWT.Secret != "" {
		verifiers = append(verifiers, auth.NewHMACVerifier(cfg.JWT.Secret))
	}
	return auth.NewChain(verifiers...)
}

func newWorkerServer(opt asynq.RedisClientOpt, cfg *config.Config, log *zap.Logger) *asynq.Server {
	level := asynq.InfoLevel
	switch strings.ToLower(cfg.Server.LogLevel) {
	case "debug":
		level = asynq.DebugLevel
	case "warn":
		level = asynq.WarnLevel
	case "error":
		level = asynq.ErrorLevel
	}

	concurrency := cfg.Pipeline.WorkerConcurrency
	if concurrency <= 0 {
		concurrency = 10
	}

	return asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			pipeline.QueuePipeline: 1,
		},
		Logger:   log.Named("asynq").Sugar(),
		LogLevel: level,
	})
}
