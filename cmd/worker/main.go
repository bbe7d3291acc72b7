package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/khoahotran/talent-match/adapters/embedding"
	"github.com/khoahotran/talent-match/adapters/event"
	"github.com/khoahotran/talent-match/adapters/extractor"
	"github.com/khoahotran/talent-match/adapters/persistence"
	"github.com/khoahotran/talent-match/adapters/storage"
	backupUC "github.com/khoahotran/talent-match/internal/application/usecase/backup"
	enrichmentUC "github.com/khoahotran/talent-match/internal/application/usecase/enrichment"
	opportunityUC "github.com/khoahotran/talent-match/internal/application/usecase/opportunity"
	"github.com/khoahotran/talent-match/internal/config"
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
	appLogger.Info("Starting Talent Match Worker...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp, err := tracing.NewTracerProvider(cfg, appLogger, "talent-match-worker")
	if err != nil {
		appLogger.Fatal("Cannot init tracer", err)
	}
	defer tp.Shutdown(context.Background())

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
	textExtractor, err := extractor.NewHTTPExtractor(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot init text extractor", err)
	}
	embedder, err := embedding.New(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot init embedding provider", err)
	}

	talentRepo := persistence.NewPostgresTalentRepo(dbPool, appLogger)
	opportunityRepo := persistence.NewPostgresOpportunityRepo(dbPool)
	locker := persistence.NewRedisLocker(redisClient, appLogger)

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
	processEventUseCase := enrichmentUC.NewProcessTalentEventUseCase(readinessUseCase, appLogger)
	talentBackfill := enrichmentUC.NewBackfillUseCase(talentRepo, readinessUseCase, appLogger)
	opportunityBackfill := opportunityUC.NewEmbedBackfillUseCase(opportunityRepo, embedder, appLogger)

	scheduler := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err = scheduler.AddFunc(cfg.Enrichment.BackfillSpec, func() {
		if _, err := talentBackfill.Execute(ctx, enrichmentUC.BackfillInput{Limit: cfg.Enrichment.BackfillSize}); err != nil {
			appLogger.Error("Talent backfill failed", err)
		}
		out, err := opportunityBackfill.Execute(ctx, opportunityUC.EmbedBackfillInput{Limit: cfg.Enrichment.BackfillSize})
		if err != nil {
			appLogger.Error("Opportunity backfill failed", err)
			return
		}
		if out.Embedded+out.Failed > 0 {
			appLogger.Info("Opportunity backfill finished", zap.Int("embedded", out.Embedded), zap.Int("failed", out.Failed))
		}
	})
	if err != nil {
		appLogger.Fatal("Invalid backfill schedule", err, zap.String("spec", cfg.Enrichment.BackfillSpec))
	}
	if cfg.Backup.Spec != "" {
		backupUseCase := backupUC.NewBackupUseCase(cfg.DB.DSN, resumeStorage, backupUC.PGDump, appLogger)
		if _, err := scheduler.AddFunc(cfg.Backup.Spec, func() {
			if _, err := backupUseCase.Execute(ctx); err != nil {
				appLogger.Error("Scheduled backup failed", err)
			}
		}); err != nil {
			appLogger.Fatal("Invalid backup schedule", err, zap.String("spec", cfg.Backup.Spec))
		}
	}
	scheduler.Start()
	defer func() { <-scheduler.Stop().Done() }()

	consumer := event.NewTalentConsumer(cfg, appLogger)
	defer consumer.Close()

	if err := consumer.Run(ctx, processEventUseCase.Execute); err != nil {
		appLogger.Error("Consumer stopped with error", err)
	}
	appLogger.Info("Worker exited")
}
