package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/talent-match/adapters/embedding"
	"github.com/khoahotran/talent-match/adapters/event"
	"github.com/khoahotran/talent-match/adapters/extractor"
	httpAdapter "github.com/khoahotran/talent-match/adapters/http"
	"github.com/khoahotran/talent-match/adapters/media_storage"
	"github.com/khoahotran/talent-match/adapters/payment"
	"github.com/khoahotran/talent-match/adapters/persistence"
	"github.com/khoahotran/talent-match/adapters/storage"
	applicationUC "github.com/khoahotran/talent-match/internal/application/usecase/application"
	authUC "github.com/khoahotran/talent-match/internal/application/usecase/auth"
	bookingUC "github.com/khoahotran/talent-match/internal/application/usecase/booking"
	candidateUC "github.com/khoahotran/talent-match/internal/application/usecase/candidate"
	employerUC "github.com/khoahotran/talent-match/internal/application/usecase/employer"
	enrichmentUC "github.com/khoahotran/talent-match/internal/application/usecase/enrichment"
	feedUC "github.com/khoahotran/talent-match/internal/application/usecase/feed"
	invitationUC "github.com/khoahotran/talent-match/internal/application/usecase/invitation"
	opportunityUC "github.com/khoahotran/talent-match/internal/application/usecase/opportunity"
	savedUC "github.com/khoahotran/talent-match/internal/application/usecase/saved"
	talentUC "github.com/khoahotran/talent-match/internal/application/usecase/talent"
	"github.com/khoahotran/talent-match/internal/config"
	"github.com/khoahotran/talent-match/pkg/auth"
	"github.com/khoahotran/talent-match/pkg/logger"
	"github.com/khoahotran/talent-match/pkg/tracing"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("cannot load config: " + err.Error())
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()
	appLogger.Info("Start Talent Match API Server...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp, err := tracing.NewTracerProvider(cfg, appLogger, "talent-match-api")
	if err != nil {
		appLogger.Fatal("Cannot init tracer", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			appLogger.Error("Failed to shutdown tracer provider", err)
		}
	}()

	// Infrastructure
	dbPool, err := persistence.NewPostgresPool(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot connect Postgres", err)
	}
	defer dbPool.Close()

	redisClient, err := persistence.NewRedisClient(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot connect Redis", err)
	}
	defer redisClient.Close()

	kafkaClient, err := event.NewKafkaProducerClient(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot init Kafka", err)
	}
	defer kafkaClient.Close()

	resumeStorage, err := storage.NewMinIOAdapter(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot init MinIO", err)
	}
	uploader, err := media_storage.NewCloudinaryAdapter(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot init uploader", err)
	}
	textExtractor, err := extractor.NewHTTPExtractor(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot init text extractor", err)
	}
	embedder, err := embedding.New(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot init embedding provider", err)
	}

	// Repositories
	userRepo := persistence.NewPostgresUserRepo(dbPool)
	talentRepo := persistence.NewPostgresTalentRepo(dbPool, appLogger)
	employerRepo := persistence.NewPostgresEmployerRepo(dbPool)
	opportunityRepo := persistence.NewPostgresOpportunityRepo(dbPool)
	matcher := persistence.NewPostgresMatcher(dbPool)
	savedRepo := persistence.NewPostgresSavedRepo(dbPool)
	applicationRepo := persistence.NewPostgresApplicationRepo(dbPool)
	invitationRepo := persistence.NewPostgresInvitationRepo(dbPool)
	bookingRepo := persistence.NewPostgresBookingRepo(dbPool, appLogger)
	pageCache := persistence.NewRedisPageCache(redisClient, cfg.Feed.PreloadTTL)
	locker := persistence.NewRedisLocker(redisClient, appLogger)

	jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan)

	// Enrichment and feed
	enrichUseCase := enrichmentUC.NewEnrichProfileUseCase(
		talentRepo, resumeStorage, textExtractor, embedder, kafkaClient,
		enrichmentUC.Options{StepTimeout: cfg.Enrichment.StepTimeout, MaxRetries: cfg.Enrichment.MaxRetries},
		appLogger,
	)
	readinessUseCase := enrichmentUC.NewReadinessUseCase(
		talentRepo, enrichUseCase, locker,
		enrichmentUC.ReadinessOptions{LockTTL: cfg.Enrichment.LockTTL},
		appLogger,
	)

	generalFetcher := feedUC.NewGeneralFetcher(opportunityRepo, cfg.Feed.GeneralPageSize)
	recommendationFetcher := feedUC.NewRecommendationFetcher(matcher, cfg.Feed.PageSize, appLogger)
	controllerOpts := feedUC.ControllerOptions{
		PreloadThreshold: cfg.Feed.PreloadThreshold,
		PreloadTimeout:   cfg.Feed.PreloadTimeout,
	}
	sessions := feedUC.NewSessionStore(cfg.Feed.SessionTTL, func(userID uuid.UUID) *feedUC.Controller {
		return feedUC.NewController(userID, recommendationFetcher, generalFetcher, pageCache, controllerOpts, appLogger)
	})
	go sessions.RunEviction(ctx, time.Minute)

	feedUseCase := feedUC.NewFeedUseCase(readinessUseCase, sessions, generalFetcher, savedRepo, appLogger)

	// Marketplace
	loginUseCase := authUC.NewLoginUseCase(userRepo, jwtSvc, appLogger)
	signupTalentUseCase := authUC.NewSignupTalentUseCase(userRepo, talentRepo, resumeStorage, kafkaClient, jwtSvc, appLogger)
	signupEmployerUseCase := authUC.NewSignupEmployerUseCase(userRepo, employerRepo, jwtSvc, appLogger)

	profileUseCase := talentUC.NewProfileUseCase(talentRepo, resumeStorage, kafkaClient, appLogger)
	savedOpportunitiesUseCase := savedUC.NewSavedOpportunitiesUseCase(savedRepo, talentRepo, opportunityRepo, sessions, appLogger)
	savedCandidatesUseCase := savedUC.NewSavedCandidatesUseCase(savedRepo, employerRepo)
	applicationUseCase := applicationUC.NewApplicationUseCase(applicationRepo, talentRepo, employerRepo, opportunityRepo, kafkaClient, appLogger)
	invitationUseCase := invitationUC.NewInvitationUseCase(invitationRepo, talentRepo, employerRepo, opportunityRepo, kafkaClient, appLogger)
	employerUseCase := employerUC.NewEmployerUseCase(employerRepo, uploader, appLogger)
	searchCandidatesUseCase := candidateUC.NewSearchCandidatesUseCase(talentRepo)

	createOpportunityUseCase := opportunityUC.NewCreateOpportunityUseCase(opportunityRepo, employerRepo, embedder, appLogger)
	manageOpportunitiesUseCase := opportunityUC.NewManageOpportunitiesUseCase(opportunityRepo, employerRepo)
	rssUseCase := opportunityUC.NewRSSUseCase(opportunityRepo, cfg.App.BaseURL, appLogger)

	gateway := payment.NewMockGateway(cfg.Payment.MockLatency, appLogger)
	bookingUseCase := bookingUC.NewBookingUseCase(bookingRepo, talentRepo, gateway, appLogger)

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpAdapter.NewRouter(httpAdapter.Handlers{
		Auth:   httpAdapter.NewAuthHandler(loginUseCase, signupTalentUseCase, signupEmployerUseCase, appLogger),
		Talent: httpAdapter.NewTalentHandler(profileUseCase, savedOpportunitiesUseCase, applicationUseCase, invitationUseCase),
		Feed:   httpAdapter.NewFeedHandler(feedUseCase),
		Opportunity: httpAdapter.NewOpportunityHandler(
			createOpportunityUseCase, manageOpportunitiesUseCase, rssUseCase, applicationUseCase, appLogger,
		),
		Employer: httpAdapter.NewEmployerHandler(employerUseCase, searchCandidatesUseCase, savedCandidatesUseCase, invitationUseCase),
		Booking:  httpAdapter.NewBookingHandler(bookingUseCase),
	}, jwtSvc, appLogger)

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("Server running", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Cannot run server", err)
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", err)
	}
	appLogger.Info("Server exited")
}
