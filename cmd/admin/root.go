package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/khoahotran/talent-match/adapters/embedding"
	"github.com/khoahotran/talent-match/adapters/event"
	"github.com/khoahotran/talent-match/adapters/extractor"
	"github.com/khoahotran/talent-match/adapters/persistence"
	"github.com/khoahotran/talent-match/adapters/storage"
	enrichmentUC "github.com/khoahotran/talent-match/internal/application/usecase/enrichment"
	"github.com/khoahotran/talent-match/internal/application/service"
	"github.com/khoahotran/talent-match/internal/config"
	"github.com/khoahotran/talent-match/pkg/logger"
)

const app = "talent-admin"

var (
	configPath string
	debug      bool

	rootCmd = &cobra.Command{
		Use:          app,
		Short:        "talent-admin runs maintenance tasks against the talent-match database",
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".", "directory containing config.yaml")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "development logging")

	rootCmd.AddCommand(migrateCmd, enrichCmd, backfillCmd, seedCmd, backupCmd)
}

func loadConfig() (config.Config, logger.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return cfg, nil, fmt.Errorf("cannot load config: %w", err)
	}
	env := cfg.App.Env
	if debug {
		env = "development"
	}
	return cfg, logger.NewZapLogger(env), nil
}

// deps holds what the enrichment commands share.
type deps struct {
	cfg       config.Config
	log       logger.Logger
	pool      *pgxpool.Pool
	embedder  service.EmbeddingService
	readiness *enrichmentUC.ReadinessUseCase
	closers   []func()
}

func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

func buildDeps(ctx context.Context) (*deps, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}
	d := &deps{cfg: cfg, log: log}

	d.pool, err = persistence.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	d.closers = append(d.closers, d.pool.Close)

	rdb, err := persistence.NewRedisClient(ctx, cfg, log)
	if err != nil {
		d.Close()
		return nil, err
	}
	d.closers = append(d.closers, func() { rdb.Close() })

	producer, err := event.NewKafkaProducerClient(cfg, log)
	if err != nil {
		d.Close()
		return nil, err
	}
	d.closers = append(d.closers, producer.Close)

	resumeStorage, err := storage.NewMinIOAdapter(ctx, cfg, log)
	if err != nil {
		d.Close()
		return nil, err
	}
	textExtractor, err := extractor.NewHTTPExtractor(cfg, log)
	if err != nil {
		d.Close()
		return nil, err
	}
	d.embedder, err = embedding.New(ctx, cfg, log)
	if err != nil {
		d.Close()
		return nil, err
	}

	talentRepo := persistence.NewPostgresTalentRepo(d.pool, log)
	enricher := enrichmentUC.NewEnrichProfileUseCase(
		talentRepo, resumeStorage, textExtractor, d.embedder, producer,
		enrichmentUC.Options{StepTimeout: cfg.Enrichment.StepTimeout, MaxRetries: cfg.Enrichment.MaxRetries},
		log,
	)
	d.readiness = enrichmentUC.NewReadinessUseCase(
		talentRepo, enricher, persistence.NewRedisLocker(rdb, log),
		enrichmentUC.ReadinessOptions{LockTTL: cfg.Enrichment.LockTTL},
		log,
	)
	return d, nil
}
