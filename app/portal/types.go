package portal

import (
	"errors"
)

// RecordSummary is one row of the by-date search results.
type RecordSummary struct {
	Number string
	Agency string
	Status string
	Object string
}

// Event is one row of the detail page's EVENTOS timeline.
type Event struct {
	When        string // Timestamp text as printed by the portal
	Description string
}

// DetailSnapshot is the parsed detail page. It lives for a single
// request/response and is never persisted.
type DetailSnapshot struct {
	Fields map[string]string
	Events []Event
}

var (
	// ErrPortalTimeout signals that the portal did not render the expected
	// element within the configured wait.
	ErrPortalTimeout = errors.New("portal timeout")

	// ErrNoResults signals a by-number search that matched nothing.
	ErrNoResults = errors.New("no results found")
)
