package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Mateusinhoo/pubmed-blogger-automation/internal/domain"
	"github.com/Mateusinhoo/pubmed-blogger-automation/internal/ports"
)

// PipelineDeps wires all driven adapters into the publishing pipeline.
type PipelineDeps struct {
	Source     ports.ArticleSource
	Store      ports.PublishedStore
	Summarizer ports.Summarizer
	Publisher  ports.Publisher
	Artifact   ports.ArtifactWriter
	Logger     *slog.Logger
}

// Pipeline runs the single-article publish workflow: load the dedupe set,
// pick an unseen candidate, summarize it, snapshot the draft, publish it and
// record the result.
type Pipeline struct {
	source     ports.ArticleSource
	store      ports.PublishedStore
	summarizer ports.Summarizer
	publisher  ports.Publisher
	artifact   ports.ArtifactWriter
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		source:     deps.Source,
		store:      deps.Store,
		summarizer: deps.Summarizer,
		publisher:  deps.Publisher,
		artifact:   deps.Artifact,
		logger:     deps.Logger,
	}
}

// Run executes one pass and reports how it ended. Failures carry the stage
// they happened in; finding nothing new to publish is a regular outcome,
// not an error.
//
// Ordering contract: the artifact is written before the publish attempt,
// and the store is only updated after a confirmed publish.
func (p *Pipeline) Run(ctx context.Context, query domain.SearchQuery) domain.Outcome {
	seen, err := p.store.Load(ctx)
	if err != nil {
		return domain.Failed(domain.StageLoad, nil, fmt.Errorf("load published set: %w", err))
	}
	if query.Exclude == nil {
		query.Exclude = seen
	} else {
		for pmid := range seen {
			query.Exclude[pmid] = true
		}
	}
	p.info("searching for a candidate", "window_days", query.DaysBack, "excluded", len(query.Exclude))

	article, err := p.source.FetchCandidate(ctx, query)
	if errors.Is(err, domain.ErrNoCandidate) {
		p.info("every candidate in the window is already published")
		return domain.NoCandidate()
	}
	if err != nil {
		return domain.Failed(domain.StageFetch, nil, fmt.Errorf("fetch candidate: %w", err))
	}
	p.info("candidate selected", "pmid", article.PMID, "title", article.Title)

	post, err := p.summarizer.Summarize(ctx, article)
	if err != nil {
		return domain.Failed(domain.StageSummarize, &article, fmt.Errorf("summarize %s: %w", article.PMID, err))
	}

	if p.artifact != nil {
		if err := p.artifact.Write(post); err != nil {
			return domain.Failed(domain.StageArtifact, &article, fmt.Errorf("write artifact: %w", err))
		}
		p.debug("artifact written", "pmid", article.PMID)
	}

	result, err := p.publisher.Publish(ctx, post)
	if err != nil {
		return domain.Failed(domain.StagePublish, &article, fmt.Errorf("publish %s: %w", article.PMID, err))
	}
	p.info("post published", "pmid", article.PMID, "post_id", result.PostID, "url", result.URL)

	record := domain.PublishedRecord{
		PMID:        article.PMID,
		Title:       article.Title,
		PostID:      result.PostID,
		PublishedAt: result.PublishedAt,
	}
	if err := p.store.Record(ctx, record); err != nil {
		// The post is already live, so the run still counts as done.
		p.warn("post published but not recorded, next run may pick it again",
			"pmid", article.PMID, "error", err)
	}

	return domain.Done(article, result)
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}
