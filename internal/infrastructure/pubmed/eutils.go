package pubmed

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Mateusinhoo/pubmed-blogger-automation/internal/config"
	"github.com/Mateusinhoo/pubmed-blogger-automation/internal/domain"
	"github.com/Mateusinhoo/pubmed-blogger-automation/internal/ports"
)

const (
	articleBaseURL = "https://pubmed.ncbi.nlm.nih.gov"

	titleFallback    = "No title available"
	abstractFallback = "No abstract available"
	journalFallback  = "Unknown Journal"
	authorsFallback  = "Unknown Authors"
)

// highImpactTerm restricts the search to study types worth writing about.
const highImpactTerm = `("Clinical Trial"[Publication Type] OR ` +
	`"Meta-Analysis"[Publication Type] OR ` +
	`"Systematic Review"[Publication Type] OR ` +
	`"Randomized Controlled Trial"[Publication Type] OR ` +
	`"Cohort Studies"[MeSH Terms])`

// EutilsSource discovers candidate articles through the NCBI E-utilities
// API: esearch for the recent ID list, efetch for the metadata of the first
// unseen candidate.
type EutilsSource struct {
	baseURL string
	sort    string
	retMax  int
	client  *http.Client
	logger  *slog.Logger
}

var _ ports.ArticleSource = (*EutilsSource)(nil)

// NewEutilsSource wires an HTTP client; retMax defaults to 10.
func NewEutilsSource(cfg config.PubMedConfig, logger *slog.Logger) *EutilsSource {
	retMax := cfg.MaxCandidates
	if retMax <= 0 {
		retMax = 10
	}
	sort := cfg.Sort
	if sort == "" {
		sort = "pub_date"
	}
	return &EutilsSource{
		baseURL: cfg.BaseURL,
		sort:    sort,
		retMax:  retMax,
		client:  &http.Client{Timeout: 20 * time.Second},
		logger:  logger,
	}
}

// Name identifies the strategy inside the registry.
func (s *EutilsSource) Name() string {
	return config.StrategyEutils
}

// FetchCandidate returns the first recent article whose PMID is not in the
// exclusion set, or domain.ErrNoCandidate when every candidate was already
// published.
func (s *EutilsSource) FetchCandidate(ctx context.Context, query domain.SearchQuery) (domain.Article, error) {
	ids, err := s.search(ctx, query)
	if err != nil {
		return domain.Article{}, err
	}
	s.debug("esearch done", "candidates", len(ids))

	pmid := ""
	for _, id := range ids {
		if !query.Exclude[id] {
			pmid = id
			break
		}
	}
	if pmid == "" {
		return domain.Article{}, domain.ErrNoCandidate
	}
	s.debug("candidate selected", "pmid", pmid)

	article, err := s.fetchDetails(ctx, pmid)
	if err != nil {
		return domain.Article{}, err
	}
	return article, nil
}

func (s *EutilsSource) search(ctx context.Context, query domain.SearchQuery) ([]string, error) {
	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("term", buildTerm(query.Topic, query.Now, query.DaysBack))
	params.Set("retmax", strconv.Itoa(s.retMax))
	params.Set("sort", s.sort)
	params.Set("retmode", "json")

	body, err := s.doGet(ctx, s.endpoint("esearch.fcgi", params))
	if err != nil {
		return nil, fmt.Errorf("esearch: %w", err)
	}

	var parsed struct {
		Result struct {
			IDList []string `json:"idlist"`
		} `json:"esearchresult"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decode esearch response: %v", domain.ErrSourceUnavailable, err)
	}
	return parsed.Result.IDList, nil
}

func (s *EutilsSource) fetchDetails(ctx context.Context, pmid string) (domain.Article, error) {
	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("id", pmid)
	params.Set("retmode", "xml")

	body, err := s.doGet(ctx, s.endpoint("efetch.fcgi", params))
	if err != nil {
		return domain.Article{}, fmt.Errorf("efetch %s: %w", pmid, err)
	}

	var envelope efetchEnvelope
	if err := xml.Unmarshal(body, &envelope); err != nil {
		return domain.Article{}, fmt.Errorf("%w: decode efetch response for %s: %v", domain.ErrSourceUnavailable, pmid, err)
	}
	if len(envelope.Articles) == 0 {
		return domain.Article{}, fmt.Errorf("%w: efetch returned no records for %s", domain.ErrSourceUnavailable, pmid)
	}

	return normalizeArticle(pmid, envelope.Articles[0]), nil
}

func (s *EutilsSource) doGet(ctx context.Context, requestURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "pubmed-blogger/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: pubmed returned %s", domain.ErrSourceUnavailable, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", domain.ErrSourceUnavailable, err)
	}
	return body, nil
}

func (s *EutilsSource) endpoint(path string, params url.Values) string {
	return strings.TrimSuffix(s.baseURL, "/") + "/" + path + "?" + params.Encode()
}

func (s *EutilsSource) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

// buildTerm combines the high-impact filter, the publication-date window,
// and an optional topic restriction into one esearch term.
func buildTerm(topic string, now time.Time, daysBack int) string {
	if daysBack < 1 {
		daysBack = 1
	}
	start := now.AddDate(0, 0, -daysBack).Format("2006/01/02")
	end := now.Format("2006/01/02")

	term := fmt.Sprintf(`%s AND ("%s"[Date - Publication] : "%s"[Date - Publication])`, highImpactTerm, start, end)
	if topic = strings.TrimSpace(topic); topic != "" {
		term = fmt.Sprintf("(%s) AND %s", topic, term)
	}
	return term
}
