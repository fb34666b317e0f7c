package database

import (
	"time"
)

// Analysis is one cached analysis result, keyed by the canonical document
// identity. The denormalized fields (Code4, PublishedDateJST, DocType,
// Model) exist for grouping and indexing; they are derived, never
// authoritative.
type Analysis struct {
	DocURL      string
	Code        string
	Title       string
	PublishedAt *time.Time // UTC
	PayloadJSON string     // serialized structured result
	CreatedAt   time.Time

	Model            string
	Code4            string
	PublishedDateJST string // YYYY-MM-DD calendar date in the feed's timezone
	DocType          string
}
