package domain

import "errors"

// Error taxonomy shared by the adapters. Implementations wrap these
// sentinels with detail via fmt.Errorf("%w: ...") so callers can branch
// with errors.Is while logs keep the full diagnostic.
var (
	// ErrNoCandidate signals that every candidate article is already in the
	// dedupe record. Distinct from a hard source failure.
	ErrNoCandidate = errors.New("no unseen candidate article")

	// ErrSourceUnavailable covers network and service failures of the
	// literature index.
	ErrSourceUnavailable = errors.New("article source unavailable")

	// ErrModel covers completion API failures and malformed completions.
	ErrModel = errors.New("model completion failed")

	// ErrAuth means the blog platform rejected the supplied credentials.
	ErrAuth = errors.New("blog credentials rejected")

	// ErrRateLimited means the blog platform throttled the request; the
	// run aborts instead of busy-retrying.
	ErrRateLimited = errors.New("blog api rate limited")

	// ErrPublish covers any other rejection of the create-post request.
	ErrPublish = errors.New("blog publish rejected")
)
