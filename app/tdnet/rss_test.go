package tdnet

import (
	"testing"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>TDnet recent</title>
    <link>https://webapi.yanoshin.jp/webapi/tdnet/list/recent</link>
    <item>
      <title>81700 アークス 2026年3月期 第3四半期決算短信</title>
      <link>https://webapi.yanoshin.jp/rd.php?https://release.tdnet.info/inbs/a.pdf</link>
      <enclosure url="https://release.tdnet.info/inbs/a.pdf" type="application/pdf" length="120000"/>
      <pubDate>Fri, 06 Feb 2026 09:00:00 +0900</pubDate>
    </item>
    <item>
      <title>株主優待制度に関するお知らせ</title>
      <link>https://example.com/detail.html</link>
    </item>
  </channel>
</rss>`

func TestRSSParser_Run(t *testing.T) {
	parser := NewRSSParser()

	items, err := parser.Run([]byte(sampleRSS))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}

	first := items[0]
	if first.Code != "81700" {
		t.Errorf("Expected leading code 81700, got %q", first.Code)
	}
	if first.Code4 != "8170" {
		t.Errorf("Expected derived code4 8170, got %q", first.Code4)
	}
	if first.Title != "アークス 2026年3月期 第3四半期決算短信" {
		t.Errorf("Expected code stripped from title, got %q", first.Title)
	}
	if first.DocumentURL != "https://release.tdnet.info/inbs/a.pdf" {
		t.Errorf("Expected enclosure PDF as document URL, got %q", first.DocumentURL)
	}
	if first.PublishedAt == nil {
		t.Fatal("Expected parsed publication timestamp")
	}
	if got := first.PublishedAt.UTC().Hour(); got != 0 {
		t.Errorf("Expected 09:00 JST to normalize to 00:00 UTC, got hour %d", got)
	}

	second := items[1]
	if second.Code != "" {
		t.Errorf("Expected no code for title without leading digits, got %q", second.Code)
	}
	if second.DocumentURL != "" {
		t.Errorf("Expected no document URL for HTML-only entry, got %q", second.DocumentURL)
	}
}

func TestRSSParser_Run_InvalidFeed(t *testing.T) {
	parser := NewRSSParser()

	if _, err := parser.Run([]byte("not xml at all")); err == nil {
		t.Error("Expected error for unparseable feed")
	}
}

func TestSplitLeadingCode_FullWidth(t *testing.T) {
	code, rest := splitLeadingCode("８１７００　アークス 決算短信")
	if code != "81700" {
		t.Errorf("Expected folded code 81700, got %q", code)
	}
	if rest != "アークス 決算短信" {
		t.Errorf("Expected title remainder, got %q", rest)
	}
}
