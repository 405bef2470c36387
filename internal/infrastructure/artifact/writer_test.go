package artifact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Mateusinhoo/pubmed-blogger-automation/internal/domain"
)

func TestWriteRendersPost(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out", "latest_blog_post.md")
	writer := NewWriter(path)

	post := domain.GeneratedPost{
		Title: "Why daily aspirin matters",
		Body:  "**Date:** August 25, 2026\n\nSummary text.",
	}
	if err := writer.Write(post); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}

	want := "# Why daily aspirin matters\n\n**Date:** August 25, 2026\n\nSummary text.\n"
	if string(data) != want {
		t.Fatalf("unexpected artifact:\n%s", data)
	}
}

func TestWriteOverwritesPrevious(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "latest_blog_post.md")
	writer := NewWriter(path)

	if err := writer.Write(domain.GeneratedPost{Title: "First", Body: "one"}); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if err := writer.Write(domain.GeneratedPost{Title: "Second", Body: "two"}); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if string(data) != "# Second\n\ntwo\n" {
		t.Fatalf("artifact not replaced:\n%s", data)
	}
}

func TestWriteWithoutPath(t *testing.T) {
	t.Parallel()

	if err := NewWriter("").Write(domain.GeneratedPost{Title: "x"}); err == nil {
		t.Fatal("expected error for empty path")
	}
}
