package pubmed

import (
	"context"
	"encoding/xml"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Mateusinhoo/pubmed-blogger-automation/internal/config"
	"github.com/Mateusinhoo/pubmed-blogger-automation/internal/domain"
)

const efetchFixture = `<?xml version="1.0" ?>
<PubmedArticleSet>
  <PubmedArticle>
    <MedlineCitation>
      <PMID Version="1">40000002</PMID>
      <Article>
        <Journal>
          <Title>The Lancet</Title>
          <JournalIssue>
            <PubDate><Year>2026</Year><Month>Aug</Month><Day>20</Day></PubDate>
          </JournalIssue>
        </Journal>
        <ArticleTitle>Aspirin and <i>heart</i> health: a meta-analysis</ArticleTitle>
        <Abstract>
          <AbstractText Label="BACKGROUND">Background part.</AbstractText>
          <AbstractText Label="RESULTS">Results with <sup>2</sup> markup.</AbstractText>
        </Abstract>
        <AuthorList>
          <Author><LastName>Smith</LastName><ForeName>Jane</ForeName></Author>
          <Author><LastName>Doe</LastName></Author>
        </AuthorList>
      </Article>
    </MedlineCitation>
  </PubmedArticle>
</PubmedArticleSet>`

func eutilsServer(t *testing.T, idlist string, wantFetchID string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "esearch.fcgi"):
			q := r.URL.Query()
			if q.Get("db") != "pubmed" || q.Get("retmode") != "json" {
				t.Errorf("unexpected esearch params: %v", q)
			}
			if term := q.Get("term"); !strings.Contains(term, "Clinical Trial") {
				t.Errorf("term lost high-impact filter: %s", term)
			}
			_, _ = w.Write([]byte(`{"esearchresult":{"count":"2","idlist":[` + idlist + `]}}`))
		case strings.HasSuffix(r.URL.Path, "efetch.fcgi"):
			if wantFetchID != "" && r.URL.Query().Get("id") != wantFetchID {
				t.Errorf("unexpected efetch id: %s", r.URL.Query().Get("id"))
			}
			_, _ = w.Write([]byte(efetchFixture))
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestEutilsFetchCandidateSkipsExcluded(t *testing.T) {
	t.Parallel()

	server := eutilsServer(t, `"40000001","40000002"`, "40000002")
	defer server.Close()

	src := NewEutilsSource(config.PubMedConfig{BaseURL: server.URL + "/"}, nil)
	query := domain.SearchQuery{
		Now:      time.Date(2026, time.August, 25, 8, 0, 0, 0, time.UTC),
		DaysBack: 1,
		Exclude:  map[string]bool{"40000001": true},
	}

	article, err := src.FetchCandidate(context.Background(), query)
	if err != nil {
		t.Fatalf("FetchCandidate error: %v", err)
	}

	if article.PMID != "40000002" {
		t.Fatalf("unexpected pmid: %s", article.PMID)
	}
	if article.Title != "Aspirin and heart health: a meta-analysis" {
		t.Fatalf("unexpected title: %q", article.Title)
	}
	if article.Abstract != "Background part. Results with 2 markup." {
		t.Fatalf("unexpected abstract: %q", article.Abstract)
	}
	if article.Journal != "The Lancet" {
		t.Fatalf("unexpected journal: %s", article.Journal)
	}
	if article.Authors != "Jane Smith, Doe" {
		t.Fatalf("unexpected authors: %s", article.Authors)
	}
	if !article.PubDate.Equal(time.Date(2026, time.August, 20, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected pub date: %v", article.PubDate)
	}
	if article.URL != "https://pubmed.ncbi.nlm.nih.gov/40000002/" {
		t.Fatalf("unexpected url: %s", article.URL)
	}
}

func TestEutilsFetchCandidateAllSeen(t *testing.T) {
	t.Parallel()

	server := eutilsServer(t, `"40000001","40000002"`, "")
	defer server.Close()

	src := NewEutilsSource(config.PubMedConfig{BaseURL: server.URL + "/"}, nil)
	query := domain.SearchQuery{
		Now:      time.Now().UTC(),
		DaysBack: 1,
		Exclude:  map[string]bool{"40000001": true, "40000002": true},
	}

	_, err := src.FetchCandidate(context.Background(), query)
	if !errors.Is(err, domain.ErrNoCandidate) {
		t.Fatalf("expected ErrNoCandidate, got %v", err)
	}
}

func TestEutilsFetchCandidateEmptyResult(t *testing.T) {
	t.Parallel()

	server := eutilsServer(t, ``, "")
	defer server.Close()

	src := NewEutilsSource(config.PubMedConfig{BaseURL: server.URL + "/"}, nil)
	_, err := src.FetchCandidate(context.Background(), domain.SearchQuery{Now: time.Now().UTC(), DaysBack: 1})
	if !errors.Is(err, domain.ErrNoCandidate) {
		t.Fatalf("expected ErrNoCandidate, got %v", err)
	}
}

func TestEutilsFetchCandidateServiceError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusInternalServerError)
	}))
	defer server.Close()

	src := NewEutilsSource(config.PubMedConfig{BaseURL: server.URL + "/"}, nil)
	_, err := src.FetchCandidate(context.Background(), domain.SearchQuery{Now: time.Now().UTC(), DaysBack: 1})
	if !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
}

func TestBuildTerm(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 25, 8, 0, 0, 0, time.UTC)
	term := buildTerm("", now, 1)

	if !strings.Contains(term, `"Meta-Analysis"[Publication Type]`) {
		t.Fatalf("missing publication type filter: %s", term)
	}
	if !strings.Contains(term, `"2026/08/24"[Date - Publication] : "2026/08/25"[Date - Publication]`) {
		t.Fatalf("missing date window: %s", term)
	}

	withTopic := buildTerm("cardiology", now, 1)
	if !strings.HasPrefix(withTopic, "(cardiology) AND ") {
		t.Fatalf("topic not applied: %s", withTopic)
	}
}

func TestNormalizeArticleFallbacks(t *testing.T) {
	t.Parallel()

	raw := `<PubmedArticleSet>
  <PubmedArticle>
    <MedlineCitation>
      <PMID>123</PMID>
      <Article>
        <Journal><JournalIssue><PubDate><MedlineDate>2025 Jan-Feb</MedlineDate></PubDate></JournalIssue></Journal>
      </Article>
    </MedlineCitation>
  </PubmedArticle>
</PubmedArticleSet>`

	var envelope efetchEnvelope
	if err := xml.Unmarshal([]byte(raw), &envelope); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}

	article := normalizeArticle("123", envelope.Articles[0])
	if article.Title != titleFallback {
		t.Fatalf("unexpected title fallback: %q", article.Title)
	}
	if article.Abstract != abstractFallback {
		t.Fatalf("unexpected abstract fallback: %q", article.Abstract)
	}
	if article.Journal != journalFallback {
		t.Fatalf("unexpected journal fallback: %q", article.Journal)
	}
	if article.Authors != authorsFallback {
		t.Fatalf("unexpected authors fallback: %q", article.Authors)
	}
	if article.RawDate != "2025 Jan-Feb" {
		t.Fatalf("unexpected raw date: %q", article.RawDate)
	}
	if !article.PubDate.Equal(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected parsed medline date: %v", article.PubDate)
	}
}

func TestParsePubDate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		node pubDateNode
		want time.Time
		raw  string
	}{
		{
			name: "full date",
			node: pubDateNode{Year: "2026", Month: "Aug", Day: "20"},
			want: time.Date(2026, time.August, 20, 0, 0, 0, 0, time.UTC),
			raw:  "2026 Aug 20",
		},
		{
			name: "year only",
			node: pubDateNode{Year: "2024"},
			want: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
			raw:  "2024",
		},
		{
			name: "numeric month",
			node: pubDateNode{Year: "2024", Month: "03"},
			want: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
			raw:  "2024 03",
		},
		{
			name: "malformed year",
			node: pubDateNode{Year: "Winter", Month: "Jan"},
			want: time.Time{},
			raw:  "Winter Jan",
		},
	}

	for _, tc := range cases {
		got, raw := parsePubDate(tc.node)
		if !got.Equal(tc.want) {
			t.Fatalf("%s: unexpected time %v", tc.name, got)
		}
		if raw != tc.raw {
			t.Fatalf("%s: unexpected raw %q", tc.name, raw)
		}
	}
}

func TestStripMarkup(t *testing.T) {
	t.Parallel()

	got := stripMarkup("  Effects of <i>daily</i> exercise\n on <sup>31</sup>P levels  ")
	if got != "Effects of daily exercise on 31P levels" {
		t.Fatalf("unexpected text: %q", got)
	}

	if stripMarkup("   ") != "" {
		t.Fatal("whitespace-only input should yield empty string")
	}
}
