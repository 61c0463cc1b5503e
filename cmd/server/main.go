package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"

	"github.com/Fraol-12/WhisperBox/internal/auth"
	"github.com/Fraol-12/WhisperBox/internal/config"
	"github.com/Fraol-12/WhisperBox/internal/db"
	"github.com/Fraol-12/WhisperBox/internal/handler"
	"github.com/Fraol-12/WhisperBox/internal/middleware"
	"github.com/Fraol-12/WhisperBox/internal/notify"
	"github.com/Fraol-12/WhisperBox/internal/repository"
	"github.com/Fraol-12/WhisperBox/internal/router"
	"github.com/Fraol-12/WhisperBox/internal/service"
	"github.com/Fraol-12/WhisperBox/internal/storage"
	"github.com/Fraol-12/WhisperBox/pkg/ticket"
)

// bodyLimit leaves room for four maximum-size photos plus form fields.
const bodyLimit = 21 << 20

func main() {
	cfg := config.Load()
	middleware.InitLogger(cfg.LogLevel, "whisperbox")
	log := middleware.Logger

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("failed to apply schema")
	}

	rdb, counter := connectRedis(ctx, cfg.RedisURL)
	if rdb != nil {
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Warn().Err(err).Msg("redis close error")
			}
		}()
	}

	photos, err := storage.NewPhotoStore(cfg.UploadDir, cfg.MaxPhotoBytes)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to prepare upload directory")
	}

	notifier := notify.NewSMTP(cfg.Email)
	if !notifier.Enabled() {
		log.Warn().Msg("EMAIL_USER/EMAIL_PASS not set, new-complaint emails are disabled")
	}
	dispatcher := notify.NewDispatcher(notifier, log.With().Str("component", "notify").Logger(), 30*time.Second)
	dispatcher.OnResult = handler.RecordNotification

	complaintRepo := repository.NewComplaintRepo(pool, cfg.StoreTimeout)
	voteRepo := repository.NewVoteRepo(pool, cfg.StoreTimeout)
	adminRepo := repository.NewAdminRepo(pool, cfg.StoreTimeout)

	complaintSvc := service.NewComplaintService(complaintRepo, ticket.Generator{}, dispatcher, log.With().Str("component", "complaints").Logger())
	voteSvc := service.NewVoteService(voteRepo, complaintRepo, log.With().Str("component", "votes").Logger())
	authSvc := service.NewAuthService(adminRepo, auth.NewSigner(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL), log.With().Str("component", "auth").Logger())

	handler.InitMetrics(pool)

	app := fiber.New(fiber.Config{
		AppName:      "WhisperBox API",
		ServerHeader: "WhisperBox",
		BodyLimit:    bodyLimit,
		UnescapePath: true,
		ErrorHandler: middleware.ErrorHandler,
		TrustProxy:   cfg.TrustProxy,
		TrustProxyConfig: fiber.TrustProxyConfig{
			Loopback:  true,
			Private:   true,
			LinkLocal: true,
		},
		ProxyHeader: fiber.HeaderXForwardedFor,
	})

	router.Setup(app, &router.Handlers{
		Complaint: handler.NewComplaintHandler(complaintSvc, voteSvc, photos),
		Admin:     handler.NewAdminHandler(authSvc, complaintSvc),
		Health:    handler.NewHealthHandler(pool, rdb),
	}, router.Options{
		CORSOrigins: cfg.CORSOrigins,
		UploadDir:   photos.Dir(),
		Authorizer:  authSvc,
		Counter:     counter,
		Metrics:     true,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Environment).Msg("WhisperBox backend starting")
		if err := app.Listen(":"+cfg.Port, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	dispatcher.Wait()
}

// connectRedis returns a client and a shared rate limit counter, or nils
// when Redis is not configured or unreachable. Limits then fall back to
// per-process counting.
func connectRedis(ctx context.Context, url string) (*redis.Client, middleware.Counter) {
	log := middleware.Logger
	if url == "" {
		log.Info().Msg("REDIS_URL not set, rate limits are per instance")
		return nil, nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		log.Warn().Err(err).Msg("invalid REDIS_URL, rate limits are per instance")
		return nil, nil
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn().Err(err).Msg("redis unreachable, rate limits are per instance")
		_ = rdb.Close()
		return nil, nil
	}
	return rdb, middleware.NewRedisCounter(rdb)
}
