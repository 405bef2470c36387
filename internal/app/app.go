package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Mateusinhoo/pubmed-blogger-automation/internal/config"
	"github.com/Mateusinhoo/pubmed-blogger-automation/internal/domain"
	"github.com/Mateusinhoo/pubmed-blogger-automation/internal/infrastructure/artifact"
	"github.com/Mateusinhoo/pubmed-blogger-automation/internal/infrastructure/blogger"
	"github.com/Mateusinhoo/pubmed-blogger-automation/internal/infrastructure/llm"
	"github.com/Mateusinhoo/pubmed-blogger-automation/internal/infrastructure/pubmed"
	"github.com/Mateusinhoo/pubmed-blogger-automation/internal/infrastructure/storage"
	"github.com/Mateusinhoo/pubmed-blogger-automation/internal/logging"
	"github.com/Mateusinhoo/pubmed-blogger-automation/internal/ports"
	"github.com/Mateusinhoo/pubmed-blogger-automation/internal/source"
	"github.com/Mateusinhoo/pubmed-blogger-automation/internal/usecase"
)

// Application wires configuration to the publishing pipeline and owns the
// lifetime of the adapters behind it.
type Application struct {
	cfg      config.Config
	pipeline *usecase.Pipeline
	closer   io.Closer
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	registry := source.NewRegistry()
	registry.Register(pubmed.NewEutilsSource(cfg.PubMed, baseLogger.With("component", "source.eutils")))
	registry.Register(pubmed.NewFeedSource(cfg.PubMed, baseLogger.With("component", "source.feed")))

	articleSource, err := registry.Resolve(cfg.PubMed.Strategy)
	if err != nil {
		return nil, err
	}

	var store ports.PublishedStore
	var closer io.Closer
	if cfg.Store.Path == "" {
		baseLogger.Warn("store path is empty, duplicates are only tracked within this process")
		store = storage.NewMemoryStore()
	} else {
		sqlite, err := storage.Open(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("open published store: %w", err)
		}
		store = sqlite
		closer = sqlite
	}

	var writer ports.ArtifactWriter
	if cfg.Artifact.Path != "" {
		writer = artifact.NewWriter(cfg.Artifact.Path)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:     articleSource,
		Store:      store,
		Summarizer: llm.NewOpenAISummarizer(cfg.OpenAI),
		Publisher:  blogger.NewPublisher(cfg.Blogger),
		Artifact:   writer,
		Logger:     baseLogger.With("component", "pipeline"),
	})

	return &Application{cfg: cfg, pipeline: pipeline, closer: closer}, nil
}

// Run performs a single pipeline execution.
func (a *Application) Run(ctx context.Context) domain.Outcome {
	query := domain.SearchQuery{
		Now:      time.Now().UTC(),
		Topic:    a.cfg.PubMed.Topic,
		DaysBack: a.cfg.PubMed.DaysBack,
	}
	return a.pipeline.Run(ctx, query)
}

// Close releases resources held by the adapters.
func (a *Application) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}
