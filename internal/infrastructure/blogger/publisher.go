package blogger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Mateusinhoo/pubmed-blogger-automation/internal/config"
	"github.com/Mateusinhoo/pubmed-blogger-automation/internal/domain"
	"github.com/Mateusinhoo/pubmed-blogger-automation/internal/ports"
)

// Publisher creates posts on a Blogger blog via the v3 API.
type Publisher struct {
	apiBase     string
	apiKey      string
	accessToken string
	blogID      string
	client      *http.Client
}

var _ ports.Publisher = (*Publisher)(nil)

// NewPublisher registers the blog identifier and credentials.
func NewPublisher(cfg config.BloggerConfig) *Publisher {
	return &Publisher{
		apiBase:     strings.TrimSuffix(cfg.APIBase, "/"),
		apiKey:      cfg.APIKey,
		accessToken: cfg.AccessToken,
		blogID:      cfg.BlogID,
		client:      &http.Client{Timeout: 20 * time.Second},
	}
}

// Publish creates the post and reports where it landed. Newlines become
// <br> because Blogger renders post content as HTML.
func (p *Publisher) Publish(ctx context.Context, post domain.GeneratedPost) (domain.PublishResult, error) {
	if p.blogID == "" || (p.apiKey == "" && p.accessToken == "") {
		return domain.PublishResult{}, fmt.Errorf("%w: blogger publisher misconfigured", domain.ErrPublish)
	}

	body, err := json.Marshal(map[string]string{
		"kind":    "blogger#post",
		"title":   post.Title,
		"content": strings.ReplaceAll(post.Body, "\n", "<br>"),
	})
	if err != nil {
		return domain.PublishResult{}, fmt.Errorf("marshal post payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint(), bytes.NewReader(body))
	if err != nil {
		return domain.PublishResult{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+p.accessToken)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return domain.PublishResult{}, fmt.Errorf("%w: create post: %v", domain.ErrPublish, err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp); err != nil {
		return domain.PublishResult{}, err
	}

	var created struct {
		ID        string `json:"id"`
		URL       string `json:"url"`
		Published string `json:"published"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return domain.PublishResult{}, fmt.Errorf("%w: decode post response: %v", domain.ErrPublish, err)
	}

	publishedAt := time.Now().UTC()
	if ts, err := time.Parse(time.RFC3339, created.Published); err == nil {
		publishedAt = ts.UTC()
	}

	return domain.PublishResult{
		PostID:      created.ID,
		URL:         created.URL,
		PublishedAt: publishedAt,
	}, nil
}

func (p *Publisher) endpoint() string {
	endpoint := fmt.Sprintf("%s/blogs/%s/posts", p.apiBase, url.PathEscape(p.blogID))
	if p.apiKey != "" {
		endpoint += "?key=" + url.QueryEscape(p.apiKey)
	}
	return endpoint
}

// classifyStatus maps Blogger's HTTP failures onto the error taxonomy so the
// caller can tell credential problems from quota exhaustion.
func classifyStatus(resp *http.Response) error {
	if resp.StatusCode < http.StatusBadRequest {
		return nil
	}

	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	detail := strings.TrimSpace(string(payload))

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: blogger %s: %s", domain.ErrAuth, resp.Status, detail)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: blogger %s: %s", domain.ErrRateLimited, resp.Status, detail)
	default:
		return fmt.Errorf("%w: blogger %s: %s", domain.ErrPublish, resp.Status, detail)
	}
}
