package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	docs "ebridge-portal/docs"
	appdocuments "ebridge-portal/internal/application/service/documents"
	appprofiles "ebridge-portal/internal/application/service/profiles"
	appproposals "ebridge-portal/internal/application/service/proposals"
	"ebridge-portal/internal/config"
	domainproposals "ebridge-portal/internal/domain/entity/proposals"
	interfaces "ebridge-portal/internal/domain/interfaces"
	"ebridge-portal/internal/infrastructure/auth"
	"ebridge-portal/internal/infrastructure/broker"
	infradocuments "ebridge-portal/internal/infrastructure/documents"
	"ebridge-portal/internal/infrastructure/guard"
	"ebridge-portal/internal/infrastructure/memory"
	"ebridge-portal/internal/infrastructure/metrics"
	infraprofiles "ebridge-portal/internal/infrastructure/profiles"
	infraproposals "ebridge-portal/internal/infrastructure/proposals"
	"ebridge-portal/internal/infrastructure/quotes"
	"ebridge-portal/internal/infrastructure/scheduler"
	"ebridge-portal/internal/infrastructure/signature"
	"ebridge-portal/internal/infrastructure/storage"
	infrahttp "ebridge-portal/internal/interfaces/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const devJWTSecret = "development-only-secret"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	docs.SwaggerInfo.BasePath = "/api/v1"
	docs.SwaggerInfo.Host = cfg.HTTP.Addr()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	portalMetrics := metrics.New(registry)

	repos := openRepositories(ctx, cfg, logger)
	defer repos.close()
	proposalRepo := repos.proposals

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	var events interfaces.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		publisher, err := broker.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.ActivityExchange, logger)
		if err != nil {
			logger.Fatalf("failed to init activity publisher: %v", err)
		}
		defer publisher.Close()
		events = publisher
	} else {
		logger.Warn("RABBITMQ_URL not set, activity events stay in memory")
		events = memory.NewEventLog()
	}

	var (
		files    interfaces.FileStorage
		devFiles *memory.FileStorage
	)
	if cfg.IsDevelopment() && cfg.Storage.Endpoint == "" {
		devFiles = memory.NewFileStorage("http://" + cfg.HTTP.Addr() + infrahttp.FilesPath)
		files = devFiles
	} else {
		s3Storage, err := storage.NewS3Storage(ctx, storage.S3Config{
			Bucket:       cfg.Storage.Bucket,
			Region:       cfg.Storage.Region,
			Endpoint:     cfg.Storage.Endpoint,
			UsePathStyle: cfg.Storage.UsePathStyle,
			PresignTTL:   cfg.Storage.PresignTTL,
		})
		if err != nil {
			logger.Fatalf("failed to init document storage: %v", err)
		}
		files = s3Storage
	}

	var signer interfaces.Signer = signature.RandomSigner{}
	if cfg.Signature.Key != "" {
		digest, err := signature.NewDigestSigner(cfg.Signature.Key)
		if err != nil {
			logger.Fatalf("failed to init signer: %v", err)
		}
		signer = digest
	}

	var quoteProvider interfaces.QuoteProvider
	if cfg.Invest.Token != "" {
		provider, err := quotes.NewInvestProvider(ctx, quotes.Config{
			Token:    cfg.Invest.Token,
			Endpoint: cfg.Invest.Endpoint,
			AppName:  cfg.Invest.AppName,
		}, logger)
		if err != nil {
			logger.Fatalf("failed to init quote provider: %v", err)
		}
		defer provider.Close()
		quoteProvider = provider
	}

	engineOpts := []appproposals.EngineOption{
		appproposals.WithPublisher(events),
		appproposals.WithRecorder(portalMetrics),
		appproposals.WithLogger(logger),
	}
	if redisClient != nil {
		decisionGuard, err := guard.NewRedisGuard(redisClient, cfg.Decision.GuardTTL)
		if err != nil {
			logger.Fatalf("failed to init decision guard: %v", err)
		}
		engineOpts = append(engineOpts, appproposals.WithGuard(decisionGuard))
	}
	proposalService := appproposals.NewService(proposalRepo, signer, quoteProvider, engineOpts...)
	documentService := appdocuments.NewService(repos.documents, files,
		appdocuments.WithMaxFileSize(cfg.Storage.MaxUploadBytes),
		appdocuments.WithPublisher(events),
		appdocuments.WithLogger(logger),
	)
	profileService := appprofiles.NewService(repos.profiles,
		appprofiles.WithPublisher(events),
		appprofiles.WithLogger(logger),
	)

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		logger.Warn("JWT_SECRET not set, using the development secret")
		secret = devJWTSecret
	}
	authenticator, err := auth.NewAuthenticator(secret, cfg.Auth.Issuer)
	if err != nil {
		logger.Fatalf("failed to init authenticator: %v", err)
	}

	reporter, err := scheduler.NewStaleReporter(cfg.Decision.StaleReportPeriod, func(ctx context.Context) (domainproposals.Summary, error) {
		list, err := proposalRepo.List(ctx, domainproposals.Filter{Status: domainproposals.StatusPending})
		if err != nil {
			return domainproposals.Summary{}, err
		}
		return domainproposals.Summarize(list, time.Now()), nil
	}, portalMetrics, logger)
	if err != nil {
		logger.Fatalf("failed to init stale reporter: %v", err)
	}
	reporter.Start()
	defer reporter.Stop()

	cacheTTL := time.Duration(cfg.Cache.TTLSeconds) * time.Second
	opts := []infrahttp.Option{
		infrahttp.WithEvents(events),
		infrahttp.WithMetrics(portalMetrics, promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})),
		infrahttp.WithLogger(logger),
		infrahttp.WithUploadLimit(cfg.Storage.MaxUploadBytes),
	}
	if redisClient != nil {
		opts = append(opts, infrahttp.WithCache(redisClient, cacheTTL))
	}
	if quoteProvider != nil {
		opts = append(opts, infrahttp.WithQuotes(quoteProvider))
	}
	if devFiles != nil {
		opts = append(opts, infrahttp.WithFiles(devFiles))
	}
	handler := infrahttp.NewHandler(proposalService, documentService, profileService, authenticator, opts...)

	server := &http.Server{
		Addr:              cfg.HTTP.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("HTTP server listening on %s", cfg.HTTP.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("http server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("server shutdown error: %v", err)
	}
	logger.Info("server stopped")
}

type repositories struct {
	proposals interfaces.ProposalRepository
	documents interfaces.DocumentRepository
	profiles  interfaces.ProfileRepository
}

func (r repositories) close() {
	r.proposals.Close()
	r.documents.Close()
	r.profiles.Close()
}

// openRepositories connects the Postgres gateways, or the in-memory ones in development
// when no DSN is configured.
func openRepositories(ctx context.Context, cfg *config.Config, logger *logrus.Logger) repositories {
	if cfg.Postgres.DSN == "" {
		logger.Warn("DATABASE_DSN not set, using in-memory repositories")
		return repositories{
			proposals: memory.NewProposalRepository(),
			documents: memory.NewDocumentRepository(),
			profiles:  memory.NewProfileRepository(),
		}
	}

	proposalRepo, err := infraproposals.NewRepository(ctx, cfg.Postgres.DSN)
	if err != nil {
		logger.Fatalf("failed to init proposals repo: %v", err)
	}
	documentRepo, err := infradocuments.Open(ctx, cfg.Postgres.DSN)
	if err != nil {
		proposalRepo.Close()
		logger.Fatalf("failed to init documents repo: %v", err)
	}
	profileRepo, err := infraprofiles.NewRepository(ctx, cfg.Postgres.DSN)
	if err != nil {
		proposalRepo.Close()
		documentRepo.Close()
		logger.Fatalf("failed to init profiles repo: %v", err)
	}
	return repositories{proposals: proposalRepo, documents: documentRepo, profiles: profileRepo}
}
