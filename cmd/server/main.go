package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"userhub/internal/config"
	apphttp "userhub/internal/http"
	"userhub/internal/jobs"
	"userhub/internal/push"
	"userhub/internal/repository"
	"userhub/internal/repository/cache"
	"userhub/internal/repository/memory"
	"userhub/internal/repository/postgres"
	"userhub/internal/repository/sqlite"
	"userhub/internal/service"
	"userhub/internal/storage"
	"userhub/internal/usecase"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := run(logger); err != nil {
		logger.Fatal(err)
	}
	logger.Info("bye")
}

// run wires the server and blocks until a shutdown signal. Errors are returned
// so deferred cleanup runs before the process exits.
func run(logger *logrus.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	configureLogger(logger, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, closeRepos, err := buildRepositories(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("setup repositories: %w", err)
	}
	defer closeRepos()

	users := repos.users
	var redisClient *redis.Client
	if cfg.Cache.RedisAddr != "" {
		redisClient, err = cache.Connect(ctx, cfg.Cache.RedisAddr)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer redisClient.Close()
		users = cache.NewUserRepository(users, redisClient, cfg.Cache.TTL, logger)
		logger.Infof("caching users in redis at %s", cfg.Cache.RedisAddr)
	}

	deps := apphttp.Dependencies{
		Users:         usecase.NewUsers(users),
		Logger:        logger,
		RateLimit:     cfg.RateLimit.Requests,
		RateWindow:    cfg.RateLimit.Window,
		MaxUploadSize: cfg.Files.MaxSize,
	}
	if cfg.Auth.JWTSecret != "" {
		deps.Auth = service.NewAuthService(users, service.AuthConfig{
			JWTSecret:        cfg.Auth.JWTSecret,
			TokenTTL:         time.Duration(cfg.Auth.TokenTTLMinutes) * time.Minute,
			ClientSecretHash: cfg.Auth.ClientSecretHash,
		})
	}
	if cfg.Features.Payment {
		deps.Payments = service.NewPaymentService(repos.payments)
	}
	if cfg.Features.Files {
		store, err := buildStorage(ctx, cfg, logger)
		if err != nil {
			return fmt.Errorf("setup storage: %w", err)
		}
		deps.Files = service.NewFileService(repos.files, store, service.FileConfig{
			MaxSize:           cfg.Files.MaxSize,
			CompressThreshold: cfg.Files.CompressThreshold,
			Logger:            logger,
		})
	}

	if cfg.Push.Enabled {
		pushService := service.NewPushService(repos.push, buildPushSender(ctx, cfg, logger), service.PushConfig{
			Concurrency: cfg.Push.Concurrency,
			Logger:      logger,
		})
		deps.Push = pushService
		stopPush, err := startPushDelivery(ctx, cfg, logger, pushService)
		if err != nil {
			return fmt.Errorf("start push delivery: %w", err)
		}
		defer stopPush()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.MaxMultipartMemory = cfg.Files.MaxSize + 1<<20
	apphttp.NewHandler(deps).RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}
	return nil
}

func configureLogger(logger *logrus.Logger, cfg config.Config) {
	if cfg.Log.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.Warnf("invalid log level %q, using info", cfg.Log.Level)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
}

type repositories struct {
	users    repository.UserRepository
	payments repository.PaymentRepository
	files    repository.FileRepository
	push     repository.PushMessageRepository
}

// buildRepositories picks the backend from database.driver. The postgres driver
// stores users in postgres and the remaining records in sqlite.
func buildRepositories(ctx context.Context, cfg config.Config, logger *logrus.Logger) (repositories, func(), error) {
	if cfg.Database.Driver == "memory" {
		logger.Warn("using in-memory repositories, data is lost on restart")
		return repositories{
			users:    memory.NewUserRepository(),
			payments: memory.NewPaymentRepository(),
			files:    memory.NewFileRepository(),
			push:     memory.NewPushMessageRepository(),
		}, func() {}, nil
	}

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return repositories{}, nil, fmt.Errorf("open database: %w", err)
	}
	closers := []func(){func() { _ = db.Close() }}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	payments := sqlite.NewPaymentRepository(db)
	files := sqlite.NewFileRepository(db)
	pushes := sqlite.NewPushMessageRepository(db)
	initializers := []sqlite.Initializer{payments, files, pushes}

	var users repository.UserRepository
	switch cfg.Database.Driver {
	case "postgres":
		pool, err := postgres.Connect(ctx, cfg.Database.DSN)
		if err != nil {
			closeAll()
			return repositories{}, nil, fmt.Errorf("connect postgres: %w", err)
		}
		closers = append(closers, pool.Close)
		pgUsers := postgres.NewUserRepository(pool)
		if err := pgUsers.Init(ctx); err != nil {
			closeAll()
			return repositories{}, nil, fmt.Errorf("init user repository: %w", err)
		}
		users = pgUsers
	default:
		sqliteUsers := sqlite.NewUserRepository(db)
		initializers = append(initializers, sqliteUsers)
		users = sqliteUsers
	}

	if err := sqlite.InitAll(ctx, initializers...); err != nil {
		closeAll()
		return repositories{}, nil, err
	}
	logger.Infof("using %s database", cfg.Database.Driver)
	return repositories{users: users, payments: payments, files: files, push: pushes}, closeAll, nil
}

func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.ObjectStore, error) {
	if cfg.Storage.Driver != "s3" {
		logger.Warn("using in-memory object storage")
		return storage.NewMemoryStore(), nil
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("using s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return storage.NewS3Store(client, storage.S3Options{
		Bucket:    cfg.Storage.Bucket,
		KeyPrefix: cfg.Storage.KeyPrefix,
	})
}

func buildPushSender(ctx context.Context, cfg config.Config, logger *logrus.Logger) push.Sender {
	sender, err := push.NewFCMSender(ctx, push.FCMConfig{
		CredentialsFile: cfg.Push.CredentialsFile,
		ProjectID:       cfg.Push.ProjectID,
	})
	if err != nil {
		logger.WithError(err).Warn("fcm disabled, pending push messages will be marked failed")
		return push.DisabledSender()
	}
	return sender
}

// startPushDelivery schedules push batches on asynq when Redis is configured and
// on an in-process ticker otherwise. The returned func stops delivery.
func startPushDelivery(ctx context.Context, cfg config.Config, logger *logrus.Logger, batcher push.Batcher) (func(), error) {
	if cfg.Cache.RedisAddr == "" {
		runner := push.NewRunner(push.RunnerConfig{
			Interval:  cfg.Push.Interval,
			BatchSize: cfg.Push.BatchSize,
			Logger:    logger,
		}, batcher)
		runner.Start(ctx)
		return runner.Shutdown, nil
	}

	task, err := jobs.NewPushBatchTask(cfg.Push.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("build push batch task: %w", err)
	}
	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.Cache.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskPushBatch, Handler: jobs.NewPushBatchJob(batcher, logger).Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.Push.Cron, Task: task, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("init worker: %w", err)
	}

	workerCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := worker.Run(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.WithError(err).Error("job worker stopped")
		}
	}()
	return func() {
		cancel()
		<-done
	}, nil
}
