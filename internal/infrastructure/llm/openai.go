package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Mateusinhoo/pubmed-blogger-automation/internal/config"
	"github.com/Mateusinhoo/pubmed-blogger-automation/internal/domain"
	"github.com/Mateusinhoo/pubmed-blogger-automation/internal/ports"
)

const titleDelimiter = "Title:"

// OpenAISummarizer implements ports.Summarizer backed by OpenAI-compatible
// chat-completion APIs.
type OpenAISummarizer struct {
	endpoint     string
	model        string
	apiKey       string
	systemPrompt string
	maxTokens    int
	temperature  float64
	httpClient   *http.Client
	now          func() time.Time
}

var _ ports.Summarizer = (*OpenAISummarizer)(nil)

// NewOpenAISummarizer builds a summarizer from configuration.
func NewOpenAISummarizer(cfg config.OpenAIConfig) *OpenAISummarizer {
	return &OpenAISummarizer{
		endpoint:     cfg.Endpoint,
		model:        cfg.Model,
		apiKey:       cfg.APIKey,
		systemPrompt: cfg.SystemPrompt,
		maxTokens:    cfg.MaxTokens,
		temperature:  cfg.Temperature,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		now: time.Now,
	}
}

// Summarize asks the model for a reader-friendly take on the article and
// assembles the final post around it. The model must open its reply with a
// "Title:" line naming the post headline.
func (c *OpenAISummarizer) Summarize(ctx context.Context, article domain.Article) (domain.GeneratedPost, error) {
	if c == nil {
		return domain.GeneratedPost{}, fmt.Errorf("%w: summarizer is nil", domain.ErrModel)
	}
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return domain.GeneratedPost{}, fmt.Errorf("%w: summarizer misconfigured", domain.ErrModel)
	}

	body, err := json.Marshal(map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": safePrompt(c.systemPrompt)},
			{"role": "user", "content": buildPrompt(article)},
		},
		"max_tokens":  c.maxTokens,
		"temperature": c.temperature,
	})
	if err != nil {
		return domain.GeneratedPost{}, fmt.Errorf("marshal completion payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.GeneratedPost{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.GeneratedPost{}, fmt.Errorf("%w: request completion: %v", domain.ErrModel, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domain.GeneratedPost{}, fmt.Errorf("%w: completion %s: %s", domain.ErrModel, resp.Status, strings.TrimSpace(string(payload)))
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return domain.GeneratedPost{}, fmt.Errorf("%w: decode completion: %v", domain.ErrModel, err)
	}
	if len(parsed.Choices) == 0 {
		return domain.GeneratedPost{}, fmt.Errorf("%w: completion has no choices", domain.ErrModel)
	}

	title, summary, err := splitCompletion(parsed.Choices[0].Message.Content)
	if err != nil {
		return domain.GeneratedPost{}, err
	}

	return domain.GeneratedPost{
		Title:      title,
		Body:       composeBody(article, summary, c.now().UTC()),
		SourcePMID: article.PMID,
	}, nil
}

func safePrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "You are a skilled medical writer who explains complex research in simple terms."
	}
	return prompt
}

// buildPrompt renders the article fields into the user message. The closing
// instruction pins the reply format so the headline can be split off.
func buildPrompt(article domain.Article) string {
	var b strings.Builder
	b.WriteString("Please write a blog-style summary of this medical research article in simple, engaging language:\n\n")
	fmt.Fprintf(&b, "Title: %s\n", article.Title)
	fmt.Fprintf(&b, "Authors: %s\n", article.Authors)
	fmt.Fprintf(&b, "Journal: %s\n", article.Journal)
	fmt.Fprintf(&b, "Publication Date: %s\n", displayDate(article))
	fmt.Fprintf(&b, "Source URL: %s\n\n", article.URL)
	fmt.Fprintf(&b, "Abstract: %s\n\n", article.Abstract)
	b.WriteString("Please:\n")
	b.WriteString("1. Explain the research in simple terms that a general audience can understand\n")
	b.WriteString("2. Highlight why this research matters\n")
	b.WriteString("3. Keep it engaging and informative\n")
	b.WriteString("4. Make it around 300-400 words\n\n")
	b.WriteString("The first line of your reply must be exactly `Title: <your headline>`.")
	return b.String()
}

// splitCompletion separates the mandatory headline line from the summary
// text. A reply without the delimiter is rejected.
func splitCompletion(content string) (string, string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", "", fmt.Errorf("%w: completion is empty", domain.ErrModel)
	}

	line, rest, _ := strings.Cut(content, "\n")
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, titleDelimiter) {
		return "", "", fmt.Errorf("%w: completion missing %q line", domain.ErrModel, titleDelimiter)
	}

	title := strings.TrimSpace(strings.TrimPrefix(line, titleDelimiter))
	if title == "" {
		return "", "", fmt.Errorf("%w: completion title is empty", domain.ErrModel)
	}

	summary := strings.TrimSpace(rest)
	summary = strings.TrimSpace(strings.TrimPrefix(summary, "Body:"))
	if summary == "" {
		return "", "", fmt.Errorf("%w: completion body is empty", domain.ErrModel)
	}
	return title, summary, nil
}

// composeBody surrounds the model summary with the date line, the article
// heading and the source footer.
func composeBody(article domain.Article, summary string, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Date:** %s\n\n", now.Format("January 2, 2006"))
	fmt.Fprintf(&b, "## %s\n\n", article.Title)
	b.WriteString(summary)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "**Source:** [%s (PMID: %s)](%s)", article.Title, article.PMID, article.URL)
	return b.String()
}

func displayDate(article domain.Article) string {
	if !article.PubDate.IsZero() {
		return article.PubDate.Format("January 2, 2006")
	}
	if article.RawDate != "" {
		return article.RawDate
	}
	return "Unknown"
}
