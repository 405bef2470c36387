package ports

import (
	"context"

	"github.com/Mateusinhoo/pubmed-blogger-automation/internal/domain"
)

// ArticleSource picks one unseen candidate article from the literature index.
// Returns domain.ErrNoCandidate when everything recent is already published.
type ArticleSource interface {
	FetchCandidate(ctx context.Context, query domain.SearchQuery) (domain.Article, error)
}

// PublishedStore persists the identifiers of published articles across runs.
type PublishedStore interface {
	// Load returns the full set of previously published PMIDs; an absent
	// or empty store yields an empty set.
	Load(ctx context.Context) (map[string]bool, error)
	// Record appends one published article. Callers must only invoke it
	// after a confirmed successful publish.
	Record(ctx context.Context, rec domain.PublishedRecord) error
}

// Summarizer turns an article into a blog-ready post via a language model.
type Summarizer interface {
	Summarize(ctx context.Context, article domain.Article) (domain.GeneratedPost, error)
}

// Publisher creates the post on the remote blogging platform.
type Publisher interface {
	Publish(ctx context.Context, post domain.GeneratedPost) (domain.PublishResult, error)
}

// ArtifactWriter keeps a local copy of the most recently generated post.
type ArtifactWriter interface {
	Write(post domain.GeneratedPost) error
}
