package domain

import "time"

// Article is a core entity holding the metadata fetched for one PubMed paper.
// Instances are immutable once the source has normalized them.
type Article struct {
	PMID     string
	Title    string
	Abstract string
	Journal  string
	Authors  string
	// PubDate is the parsed publication date; zero when PubMed reported a
	// date the parser could not make sense of. RawDate keeps the original
	// text for display either way.
	PubDate time.Time
	RawDate string
	URL     string
}

// SearchQuery carries everything a source needs to pick one candidate.
type SearchQuery struct {
	Now      time.Time
	Topic    string
	DaysBack int
	// Exclude holds PMIDs of previously published articles; a source must
	// never return any of them.
	Exclude map[string]bool
}

// GeneratedPost is the blog-ready write-up produced by the summarizer.
type GeneratedPost struct {
	Title      string
	Body       string
	SourcePMID string
}

// PublishResult reports a confirmed remote publish.
type PublishResult struct {
	PostID      string
	URL         string
	PublishedAt time.Time
}

// PublishedRecord is the dedupe row persisted after a successful publish.
type PublishedRecord struct {
	PMID        string
	Title       string
	PostID      string
	PublishedAt time.Time
}
