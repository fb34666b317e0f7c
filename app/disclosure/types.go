package disclosure

import (
	"time"
)

// Document type categories derived from a disclosure title.
const (
	DocTypeEarningsReport   = "earnings_report"
	DocTypeBriefingMaterial = "briefing_material"
	DocTypeOther            = "other"
)

// Item is the canonical shape of one disclosure record. Upstream schema is
// untrusted; every field except Raw may be empty.
type Item struct {
	Title       string
	Code        string // issuer code as supplied upstream (4 or 5 digits observed)
	Code4       string // derived 4-digit display code, best effort, never an identity
	CompanyName string
	DocumentURL string
	Link        string
	PublishedAt *time.Time // UTC; nil when upstream value was absent or unparseable
	Raw         map[string]interface{}
}

// HasDocument reports whether the item carries a document URL.
func (it Item) HasDocument() bool {
	return it.DocumentURL != ""
}

// Classification is the result of title classification.
type Classification struct {
	IsEarningsReport bool
	DocType          string
}

// ScreenOptions are the predicates applied by the Screener. The zero value
// keeps everything.
type ScreenOptions struct {
	IssuerCode      string     // exact match against Code or Code4; empty disables
	Cutoff          *time.Time // keep items published at or after this instant; unknown dates pass
	RequireDocument bool
	EarningsOnly    bool
}
