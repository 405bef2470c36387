package pubmed

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/Mateusinhoo/pubmed-blogger-automation/internal/domain"
)

// efetchEnvelope models the subset of the efetch XML the pipeline needs.
// Title and abstract are captured as inner XML because PubMed embeds markup
// (<i>, <sup>, section labels) inside them.
type efetchEnvelope struct {
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	PMID    string      `xml:"MedlineCitation>PMID"`
	Article articleNode `xml:"MedlineCitation>Article"`
}

type articleNode struct {
	Title    richText `xml:"ArticleTitle"`
	Abstract struct {
		Parts []richText `xml:"AbstractText"`
	} `xml:"Abstract"`
	Journal struct {
		Title   string      `xml:"Title"`
		PubDate pubDateNode `xml:"JournalIssue>PubDate"`
	} `xml:"Journal"`
	Authors []authorNode `xml:"AuthorList>Author"`
}

type authorNode struct {
	LastName string `xml:"LastName"`
	ForeName string `xml:"ForeName"`
}

type richText struct {
	Raw string `xml:",innerxml"`
}

type pubDateNode struct {
	Year        string `xml:"Year"`
	Month       string `xml:"Month"`
	Day         string `xml:"Day"`
	MedlineDate string `xml:"MedlineDate"`
}

// normalizeArticle flattens one efetch record into the Article shape,
// substituting fallbacks for the fields PubMed occasionally omits.
func normalizeArticle(pmid string, record pubmedArticle) domain.Article {
	if record.PMID != "" {
		pmid = strings.TrimSpace(record.PMID)
	}

	title := stripMarkup(record.Article.Title.Raw)
	if title == "" {
		title = titleFallback
	}

	parts := make([]string, 0, len(record.Article.Abstract.Parts))
	for _, part := range record.Article.Abstract.Parts {
		if text := stripMarkup(part.Raw); text != "" {
			parts = append(parts, text)
		}
	}
	abstract := strings.Join(parts, " ")
	if abstract == "" {
		abstract = abstractFallback
	}

	journal := strings.TrimSpace(record.Article.Journal.Title)
	if journal == "" {
		journal = journalFallback
	}

	published, rawDate := parsePubDate(record.Article.Journal.PubDate)

	return domain.Article{
		PMID:     pmid,
		Title:    title,
		Abstract: abstract,
		Journal:  journal,
		Authors:  joinAuthors(record.Article.Authors),
		PubDate:  published,
		RawDate:  rawDate,
		URL:      fmt.Sprintf("%s/%s/", articleBaseURL, pmid),
	}
}

// stripMarkup reduces an XML/HTML fragment to plain text with collapsed
// whitespace. Unparseable input falls back to the raw string.
func stripMarkup(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return strings.Join(strings.Fields(raw), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func joinAuthors(authors []authorNode) string {
	names := make([]string, 0, len(authors))
	for _, author := range authors {
		last := strings.TrimSpace(author.LastName)
		fore := strings.TrimSpace(author.ForeName)
		switch {
		case last != "" && fore != "":
			names = append(names, fore+" "+last)
		case last != "":
			names = append(names, last)
		}
	}
	if len(names) == 0 {
		return authorsFallback
	}
	return strings.Join(names, ", ")
}

// parsePubDate turns PubMed's structured or Medline-style dates into a
// time.Time plus the display string. Malformed dates yield a zero time and
// keep whatever text was there.
func parsePubDate(node pubDateNode) (time.Time, string) {
	if node.MedlineDate != "" {
		raw := strings.TrimSpace(node.MedlineDate)
		if len(raw) >= 4 {
			if year, err := strconv.Atoi(raw[:4]); err == nil {
				return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC), raw
			}
		}
		return time.Time{}, raw
	}

	fields := make([]string, 0, 3)
	for _, field := range []string{node.Year, node.Month, node.Day} {
		if field = strings.TrimSpace(field); field != "" {
			fields = append(fields, field)
		}
	}
	raw := strings.Join(fields, " ")

	year, err := strconv.Atoi(strings.TrimSpace(node.Year))
	if err != nil {
		return time.Time{}, raw
	}

	month := parseMonth(node.Month)
	day := 1
	if d, err := strconv.Atoi(strings.TrimSpace(node.Day)); err == nil && d >= 1 && d <= 31 {
		day = d
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), raw
}

func parseMonth(value string) time.Month {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.January
	}
	if parsed, err := time.Parse("Jan", value); err == nil {
		return parsed.Month()
	}
	if parsed, err := time.Parse("January", value); err == nil {
		return parsed.Month()
	}
	if n, err := strconv.Atoi(value); err == nil && n >= 1 && n <= 12 {
		return time.Month(n)
	}
	return time.January
}
