package disclosure

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/width"
)

// Wrapper keys the upstream API has been observed to nest records under,
// checked in priority order.
var wrapperKeys = []string{"TDnet", "Tdnet", "tdnet"}

// Ordered alias tables per logical field. The first non-empty value wins,
// which tolerates upstream renaming fields across API revisions without a
// schema version flag.
var (
	titleAliases = []string{"title", "Title", "subject", "Subject"}
	codeAliases  = []string{"code", "Code", "company_code", "ticker"}
	docURLAliases = []string{
		"document_url", "documentUrl", "doc_url",
		"pdf_url", "pdfUrl", "pdf",
		"attachment_url", "attachmentUrl",
	}
	linkAliases        = []string{"url", "link", "detail_url", "detailUrl"}
	companyNameAliases = []string{"company_name", "companyName", "name"}
	publishedAliases   = []string{"published_at", "publishedAt", "pubdate", "date", "datetime"}
)

// The feed's civil timezone. Timestamps without an offset are interpreted
// here and converted to UTC.
var feedLocation = time.FixedZone("JST", 9*60*60)

// Normalizer turns one raw feed record into a canonical Item. Normalization
// is total: any input map yields an Item, never an error, because the
// upstream schema is inconsistent across API variants.
type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

func (n *Normalizer) Run(raw map[string]interface{}) Item {
	rec := n.unwrap(raw)

	code := pickFirst(rec, codeAliases)
	item := Item{
		Title:       pickFirst(rec, titleAliases),
		Code:        code,
		Code4:       DeriveCode4(code),
		CompanyName: pickFirst(rec, companyNameAliases),
		DocumentURL: pickFirst(rec, docURLAliases),
		Link:        pickFirst(rec, linkAliases),
		PublishedAt: parseTimestamp(pickFirst(rec, publishedAliases)),
		Raw:         rec,
	}

	return item
}

// unwrap extracts the record payload from a possibly-wrapped map. The
// wrapper key capitalization varies between API variants; the record itself
// is the fallback.
func (n *Normalizer) unwrap(raw map[string]interface{}) map[string]interface{} {
	if raw == nil {
		return map[string]interface{}{}
	}
	for _, key := range wrapperKeys {
		if inner, ok := raw[key].(map[string]interface{}); ok {
			return inner
		}
	}
	return raw
}

// pickFirst returns the first non-empty string value among the aliases.
// Numeric values are coerced to strings so issuer codes supplied as JSON
// numbers are not lost.
func pickFirst(rec map[string]interface{}, aliases []string) string {
	for _, key := range aliases {
		v, ok := rec[key]
		if !ok || v == nil {
			continue
		}
		switch val := v.(type) {
		case string:
			if s := strings.TrimSpace(val); s != "" {
				return s
			}
		case float64:
			// JSON numbers decode as float64; issuer codes are integral
			return strings.TrimSpace(fmt.Sprintf("%.0f", val))
		case int:
			return strings.TrimSpace(fmt.Sprintf("%d", val))
		case int64:
			return strings.TrimSpace(fmt.Sprintf("%d", val))
		}
	}
	return ""
}

// parseTimestamp accepts ISO-8601 with or without an offset suffix, plus a
// "YYYY-MM-DD HH:MM:SS" fallback. A value without an offset is treated as
// feed-local civil time (UTC+9) and converted to UTC. Unparseable input
// yields nil, never an error: an unknown date must not drop the item.
func parseTimestamp(value string) *time.Time {
	s := strings.TrimSpace(value)
	if s == "" {
		return nil
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		utc := t.UTC()
		return &utc
	}

	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.ParseInLocation(layout, s, feedLocation); err == nil {
			utc := t.UTC()
			return &utc
		}
	}

	return nil
}

// DeriveCode4 derives the 4-digit display form of an issuer code. TDnet
// supplies 5-digit codes whose last digit is a padding zero; stripping it is
// an observed heuristic, not verified upstream behavior, so the result is
// display data only and never a cache or filter identity.
func DeriveCode4(code string) string {
	c := NormalizeCode(code)
	if len(c) == 5 && strings.HasSuffix(c, "0") && isDigits(c) {
		return c[:4]
	}
	return c
}

// NormalizeCode trims an issuer code and folds full-width digits, which
// Japanese feeds and user input both produce.
func NormalizeCode(code string) string {
	return strings.TrimSpace(width.Narrow.String(code))
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
