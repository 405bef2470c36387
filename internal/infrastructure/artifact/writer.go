package artifact

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Mateusinhoo/pubmed-blogger-automation/internal/domain"
	"github.com/Mateusinhoo/pubmed-blogger-automation/internal/ports"
)

// Writer snapshots the most recent generated post as a Markdown file. The
// file is overwritten on every run so it always mirrors the latest draft.
type Writer struct {
	path string
}

var _ ports.ArtifactWriter = (*Writer)(nil)

// NewWriter targets the given file path.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Write renders the post and replaces the artifact file.
func (w *Writer) Write(post domain.GeneratedPost) error {
	if w.path == "" {
		return fmt.Errorf("artifact path not configured")
	}

	if dir := filepath.Dir(w.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create artifact directory: %w", err)
		}
	}

	content := fmt.Sprintf("# %s\n\n%s\n", post.Title, post.Body)
	if err := os.WriteFile(w.path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}

	return nil
}
