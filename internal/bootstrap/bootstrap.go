package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mkravets/docvision/internal/config"
	"github.com/mkravets/docvision/internal/core/ports"
	"github.com/mkravets/docvision/internal/core/usecase"
	"github.com/mkravets/docvision/internal/infrastructure/export/excel"
	"github.com/mkravets/docvision/internal/infrastructure/imaging"
	"github.com/mkravets/docvision/internal/infrastructure/pdfpage"
	"github.com/mkravets/docvision/internal/infrastructure/queue/nats"
	"github.com/mkravets/docvision/internal/infrastructure/repository/postgres"
	"github.com/mkravets/docvision/internal/infrastructure/resilience"
	visionopenai "github.com/mkravets/docvision/internal/infrastructure/vision/openai"
)

type App struct {
	Config config.Config

	Queue    ports.MessageQueue
	Docs     ports.DocumentRepository
	Fields   ports.FieldRepository
	Ingest   ports.DocumentIngestor
	Correct  ports.FieldCorrector
	Reader   ports.DocumentReader
	Reproc   ports.DocumentReprocessor
	Exporter ports.DocumentExporter

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	docRepo := postgres.NewDocumentRepository(db)
	if err := docRepo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	fieldRepo := postgres.NewFieldRepository(db)

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	visionClient := visionopenai.New(visionopenai.Config{
		BaseURL:        cfg.VisionBaseURL,
		APIKey:         cfg.VisionAPIKey,
		Model:          cfg.VisionModel,
		Timeout:        time.Duration(cfg.VisionTimeoutSeconds) * time.Second,
		RateLimitRPS:   cfg.VisionRateLimitRPS,
		RateLimitBurst: cfg.VisionRateLimitBurst,
	}, executor)
	classifier := visionopenai.NewClassifier(visionClient)
	extractor := visionopenai.NewExtractor(visionClient)

	pages := pdfpage.NewExtractor()
	codec := imaging.NewCodec(cfg.JPEGQuality)

	ingestUC := usecase.NewIngestDocumentUseCase(docRepo, classifier, extractor, pages, codec)
	correctUC := usecase.NewCorrectFieldUseCase(docRepo, fieldRepo, nil)
	readUC := usecase.NewReadDocumentsUseCase(docRepo, fieldRepo)
	reprocessUC := usecase.NewReprocessDocumentUseCase(ingestUC, docRepo, fieldRepo)
	exporter := excel.NewExporter(docRepo, fieldRepo, logger)

	return &App{
		Config: cfg,

		Queue:    queue,
		Docs:     docRepo,
		Fields:   fieldRepo,
		Ingest:   ingestUC,
		Correct:  correctUC,
		Reader:   readUC,
		Reproc:   reprocessUC,
		Exporter: exporter,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
