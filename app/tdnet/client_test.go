package tdnet

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestExtractRecords_TopLevelVariants(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"items key", `{"items":[{"title":"a"},{"title":"b"}]}`, 2},
		{"data key", `{"data":[{"title":"a"}]}`, 1},
		{"result key", `{"result":[{"title":"a"}]}`, 1},
		{"bare array", `[{"title":"a"},{"title":"b"},{"title":"c"}]`, 3},
		{"no list key", `{"meta":{"count":2}}`, 0},
		{"non-map entries skipped", `{"items":[{"title":"a"},"junk",42]}`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := extractRecords([]byte(tt.body))
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if len(records) != tt.want {
				t.Errorf("Expected %d records, got %d", tt.want, len(records))
			}
		})
	}
}

func TestExtractRecords_InvalidJSON(t *testing.T) {
	if _, err := extractRecords([]byte("not json")); err == nil {
		t.Error("Expected error for invalid JSON")
	}
}

func TestClient_BuildURL(t *testing.T) {
	client := NewClient("https://webapi.yanoshin.jp/webapi/tdnet/list", "test/1.0")

	tests := []struct {
		code string
		want string
	}{
		{"8170", "https://webapi.yanoshin.jp/webapi/tdnet/list/8170.json?limit=300"},
		{"81700", "https://webapi.yanoshin.jp/webapi/tdnet/list/81700.json?limit=300"},
		{"８１７０", "https://webapi.yanoshin.jp/webapi/tdnet/list/8170.json?limit=300"},
		{"", "https://webapi.yanoshin.jp/webapi/tdnet/list/recent.json?limit=300"},
		{"abc", "https://webapi.yanoshin.jp/webapi/tdnet/list/recent.json?limit=300"},
		{"123", "https://webapi.yanoshin.jp/webapi/tdnet/list/recent.json?limit=300"},
	}

	for _, tt := range tests {
		if got := client.buildURL(tt.code, 300); got != tt.want {
			t.Errorf("buildURL(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestClient_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/recent.json" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[
			{"TDnet":{"title":"決算短信","company_code":"81700","document_url":"https://release.tdnet.info/inbs/a.pdf","pubdate":"2026-02-06 09:00:00"}},
			{"Tdnet":{"subject":"株主優待のお知らせ","code":"7203"}}
		]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test/1.0")

	items, err := client.Fetch(context.Background(), "", 100)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}
	if items[0].Title != "決算短信" {
		t.Errorf("Expected normalized title, got %q", items[0].Title)
	}
	if items[0].Code4 != "8170" {
		t.Errorf("Expected derived code4 8170, got %q", items[0].Code4)
	}
	if items[0].PublishedAt == nil {
		t.Error("Expected parsed publication timestamp")
	}
	if items[1].Title != "株主優待のお知らせ" {
		t.Errorf("Expected subject alias to supply title, got %q", items[1].Title)
	}
}

func TestClient_Fetch_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test/1.0")

	if _, err := client.Fetch(context.Background(), "", 100); err == nil {
		t.Error("Expected error for HTTP 502")
	}
}
