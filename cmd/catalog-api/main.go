// Command catalog-api serves the book and film catalog over HTTP.
//
//	@title						Catalog API
//	@version					1.0
//	@description				Books and films with optimistic-concurrency updates.
//	@BasePath					/api
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/acme/catalog-system/internal/api"
	"github.com/acme/catalog-system/internal/api/middleware"
	"github.com/acme/catalog-system/internal/core/domain"
	"github.com/acme/catalog-system/internal/core/ports"
	"github.com/acme/catalog-system/internal/core/service"
	"github.com/acme/catalog-system/internal/core/validation"
	"github.com/acme/catalog-system/internal/infrastructure/config"
	"github.com/acme/catalog-system/internal/infrastructure/credentials"
	"github.com/acme/catalog-system/internal/infrastructure/db/mongo"
	"github.com/acme/catalog-system/internal/infrastructure/db/redis"
	"github.com/acme/catalog-system/internal/infrastructure/http/handlers"
	"github.com/acme/catalog-system/internal/infrastructure/mail"
	"github.com/acme/catalog-system/internal/infrastructure/queue"
	"github.com/acme/catalog-system/internal/infrastructure/token"
	"github.com/acme/catalog-system/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.New(logger.Options{})
		bootLog.Fatal().Err(err).Msg("load configuration")
	}

	log := logger.New(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "catalog-api",
	})
	log.Info().Str("env", cfg.Env).Str("port", cfg.Port).Msg("configuration loaded")

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("catalog-api stopped")
	}
	log.Info().Msg("server stopped cleanly")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	startupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// --- MongoDB ---
	client, db, err := mongo.Connect(startupCtx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  cfg.Mongo.Timeout,
	})
	if err != nil {
		return err
	}
	defer func() {
		dctx, dcancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer dcancel()
		if err := client.Disconnect(dctx); err != nil {
			log.Error().Err(err).Msg("mongo disconnect")
		}
	}()

	bookRepo := mongo.NewEntityRepository(db, domain.BookSchema, cfg.Mongo.Transactions)
	filmRepo := mongo.NewEntityRepository(db, domain.FilmSchema, cfg.Mongo.Transactions)
	if err := bookRepo.EnsureIndexes(startupCtx); err != nil {
		return err
	}
	if err := filmRepo.EnsureIndexes(startupCtx); err != nil {
		return err
	}

	checks := map[string]handlers.Check{"mongodb": handlers.MongoCheck(db)}

	// --- Rate limiting: Redis when reachable, otherwise per process ---
	var limiter middleware.Limiter
	if cfg.RateLimit.Enabled {
		rdb, err := redis.Connect(startupCtx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, using in-process rate limiter")
			limiter = middleware.NewLocalLimiter()
		} else {
			defer rdb.Close()
			limiter = redis.NewRateLimiter(rdb)
			checks["redis"] = handlers.RedisCheck(rdb)
		}
	}

	// --- Auth ---
	users, err := credentials.LoadFile(cfg.Auth.UsersFile, cfg.Auth.UserPasswordEncoded)
	if err != nil {
		return err
	}
	log.Info().Int("users", users.Len()).Msg("credentials loaded")

	tokens, err := token.FromConfig(token.Config{
		Secret:         cfg.Auth.JWTSecret,
		PrivateKeyPath: cfg.Auth.PrivateKeyPath,
		PublicKeyPath:  cfg.Auth.PublicKeyPath,
		Issuer:         cfg.Auth.Issuer,
		Lifetime:       cfg.Auth.TokenLifetime,
	})
	if err != nil {
		return err
	}

	// --- Notifications ---
	var notifier ports.NotificationSender
	var dispatcher *queue.Dispatcher
	if cfg.Mail.Enabled {
		sender := mail.NewSMTPSender(mail.Config{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			StartTLS: cfg.Mail.StartTLS,
			Timeout:  cfg.Mail.Timeout,
		})
		dispatcher = queue.NewDispatcher(sender, cfg.Mail.Workers, cfg.Mail.QueueSize, cfg.Mail.Timeout, log)
		notifier = dispatcher
	}
	mailSettings := service.MailSettings{From: cfg.Mail.From, To: cfg.Mail.To}

	// --- Domain wiring ---
	validator := validation.New()
	books := service.NewCatalogService(domain.BookSchema, bookRepo, validator, notifier, mailSettings, log)
	films := service.NewCatalogService(domain.FilmSchema, filmRepo, validator, notifier, mailSettings, log)

	files := mongo.NewFileStore(db)

	e := api.NewRouter(api.Deps{
		Log:             log,
		Realm:           cfg.Auth.Realm,
		Validator:       validator,
		Auth:            service.NewAuthService(users, tokens, log),
		Books:           books,
		Films:           films,
		BookFiles:       service.NewFileService(domain.BookSchema, bookRepo, files, log),
		FilmFiles:       service.NewFileService(domain.FilmSchema, filmRepo, files, log),
		Limiter:         limiter,
		RateLimitMax:    cfg.RateLimit.Max,
		RateLimitWindow: cfg.RateLimit.Window,
		UploadMaxSize:   cfg.UploadMaxSize,
		ReadinessChecks: checks,
	})

	// Workers stop after the HTTP server so in-flight creates can still enqueue.
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	if dispatcher != nil {
		dispatcher.Start(workerCtx)
	}

	// --- HTTP server with graceful shutdown ---
	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", ":"+cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-serverErr:
		stopWorkers()
		return err
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	err = e.Shutdown(shutdownCtx)

	stopWorkers()
	if dispatcher != nil {
		dispatcher.Wait()
	}
	return err
}
