package tdnet

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/ymdt/tdnet-watch/app/disclosure"
)

// The upstream also publishes the same list as RSS. RSSParser maps RSS
// entries into the raw-record shape the normalizer already understands, so
// both sources share one normalization path.
type RSSParser struct {
	gofeedParser *gofeed.Parser
	normalizer   *disclosure.Normalizer
}

// RSS titles lead with the issuer code, e.g. "81700 アークス 決算短信...".
var leadingCodePattern = regexp.MustCompile(`^([0-9０-９]{4,5})[\s　]`)

func NewRSSParser() *RSSParser {
	return &RSSParser{
		gofeedParser: gofeed.NewParser(),
		normalizer:   disclosure.NewNormalizer(),
	}
}

func (p *RSSParser) Run(data []byte) ([]disclosure.Item, error) {
	feed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse RSS feed: %w", err)
	}

	items := make([]disclosure.Item, 0, len(feed.Items))
	for _, entry := range feed.Items {
		if entry == nil {
			continue
		}
		items = append(items, p.normalizer.Run(p.toRecord(entry)))
	}

	return items, nil
}

func (p *RSSParser) toRecord(entry *gofeed.Item) map[string]interface{} {
	rec := map[string]interface{}{
		"title": entry.Title,
		"url":   entry.Link,
	}

	if code, title := splitLeadingCode(entry.Title); code != "" {
		rec["code"] = code
		rec["title"] = title
	}

	if docURL := documentURL(entry); docURL != "" {
		rec["document_url"] = docURL
	}

	if entry.PublishedParsed != nil {
		rec["pubdate"] = entry.PublishedParsed.UTC().Format(time.RFC3339)
	} else if entry.Published != "" {
		rec["pubdate"] = entry.Published
	}

	return rec
}

// documentURL prefers an explicit PDF enclosure, falling back to the entry
// link when it points at a PDF directly.
func documentURL(entry *gofeed.Item) string {
	for _, enc := range entry.Enclosures {
		if enc == nil {
			continue
		}
		if enc.Type == "application/pdf" || strings.HasSuffix(strings.ToLower(enc.URL), ".pdf") {
			return enc.URL
		}
	}
	if strings.HasSuffix(strings.ToLower(entry.Link), ".pdf") {
		return entry.Link
	}
	return ""
}

func splitLeadingCode(title string) (string, string) {
	m := leadingCodePattern.FindStringSubmatch(title)
	if m == nil {
		return "", title
	}
	code := disclosure.NormalizeCode(m[1])
	rest := strings.TrimLeft(strings.TrimPrefix(title, m[1]), " \t　")
	return code, rest
}
