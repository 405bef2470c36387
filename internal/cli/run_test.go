package cli

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/Mateusinhoo/pubmed-blogger-automation/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestReportOutcome(t *testing.T) {
	t.Parallel()

	done := domain.Done(
		domain.Article{PMID: "40000002"},
		domain.PublishResult{PostID: "42"},
	)
	if err := reportOutcome(discardLogger(), done); err != nil {
		t.Fatalf("done should exit clean, got %v", err)
	}

	if err := reportOutcome(discardLogger(), domain.NoCandidate()); err != nil {
		t.Fatalf("no candidate should exit clean, got %v", err)
	}

	cause := errors.New("blogger 429")
	failed := domain.Failed(domain.StagePublish, nil, cause)
	if err := reportOutcome(discardLogger(), failed); !errors.Is(err, cause) {
		t.Fatalf("failed run should surface its error, got %v", err)
	}
}
