package watchlist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ymdt/tdnet-watch/app/disclosure"
)

func writeWatchlist(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name+".yml"), []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write watchlist file: %v", err)
	}
}

func TestConfigCache_Run(t *testing.T) {
	dir := t.TempDir()
	writeWatchlist(t, dir, "retail", `
title: 小売 決算ウォッチ
codes: ["8170", "7453"]
days: 7
earnings_only: true
require_document: true
`)
	writeWatchlist(t, dir, "all-recent", `
title: 直近全体
`)

	cache := NewConfigCache(dir)
	if err := cache.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if cache.Count() != 2 {
		t.Errorf("Expected 2 watchlists, got %d", cache.Count())
	}

	retail, err := cache.Get("retail")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if retail.Title != "小売 決算ウォッチ" {
		t.Errorf("Unexpected title: %q", retail.Title)
	}
	if len(retail.Codes) != 2 || retail.Days != 7 || !retail.EarningsOnly {
		t.Errorf("Unexpected watchlist: %+v", retail)
	}

	// Defaults applied when fields are omitted
	all, err := cache.Get("all-recent")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if all.Days != 12 {
		t.Errorf("Expected default days 12, got %d", all.Days)
	}
	if len(all.Codes) != 0 || all.EarningsOnly {
		t.Errorf("Unexpected defaults: %+v", all)
	}
}

func TestConfigCache_Run_MissingDirIsEmpty(t *testing.T) {
	cache := NewConfigCache(filepath.Join(t.TempDir(), "does-not-exist"))

	if err := cache.Run(); err != nil {
		t.Fatalf("Missing directory should not error: %v", err)
	}
	if cache.Count() != 0 {
		t.Errorf("Expected empty cache, got %d", cache.Count())
	}
}

func TestConfigCache_InvalidWatchlist(t *testing.T) {
	dir := t.TempDir()
	writeWatchlist(t, dir, "broken", `
codes: ["8170"]
`)

	cache := NewConfigCache(dir)
	if err := cache.Run(); err == nil {
		t.Error("Expected error for watchlist without a title")
	}
}

func TestConfigCache_GetUnknown(t *testing.T) {
	cache := NewConfigCache(t.TempDir())

	if _, err := cache.Get("nope"); err == nil {
		t.Error("Expected error for unknown watchlist")
	}
}

func TestWatchlist_MatchesCode(t *testing.T) {
	wl := &Watchlist{Codes: []string{"8170", "７４５３"}}

	tests := []struct {
		item disclosure.Item
		want bool
	}{
		{disclosure.Item{Code: "8170", Code4: "8170"}, true},
		{disclosure.Item{Code: "81700", Code4: "8170"}, true}, // 5-digit feed code vs 4-digit preset
		{disclosure.Item{Code: "7453", Code4: "7453"}, true},  // full-width preset folded
		{disclosure.Item{Code: "7203", Code4: "7203"}, false},
	}

	for _, tt := range tests {
		if got := wl.MatchesCode(tt.item); got != tt.want {
			t.Errorf("MatchesCode(%q) = %v, want %v", tt.item.Code, got, tt.want)
		}
	}

	empty := &Watchlist{}
	if !empty.MatchesCode(disclosure.Item{Code: "9999"}) {
		t.Error("Empty code list should match everything")
	}
}
