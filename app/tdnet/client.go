// Package tdnet fetches the upstream disclosure feed and hands every record
// through normalization. No other package may assume a fixed upstream shape.
package tdnet

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ymdt/tdnet-watch/app/disclosure"
)

const fetchTimeout = 20 * time.Second

// Keys the top-level item list has been observed under, checked in order. A
// bare array response is also accepted.
var listKeys = []string{"items", "data", "result"}

type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	normalizer *disclosure.Normalizer
}

func NewClient(baseURL, userAgent string) *Client {
	return &Client{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: fetchTimeout},
		normalizer: disclosure.NewNormalizer(),
	}
}

// Fetch retrieves recent disclosures, per-issuer when issuerCode is a 4 or
// 5 digit code, global otherwise. Failures surface immediately; retry is a
// caller action, never automatic.
func (c *Client) Fetch(ctx context.Context, issuerCode string, limit int) ([]disclosure.Item, error) {
	url := c.buildURL(issuerCode, limit)

	data, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	records, err := extractRecords(data)
	if err != nil {
		return nil, err
	}

	items := make([]disclosure.Item, 0, len(records))
	for _, rec := range records {
		items = append(items, c.normalizer.Run(rec))
	}

	slog.Debug("Feed fetched", "url", url, "records", len(records))

	return items, nil
}

func (c *Client) buildURL(issuerCode string, limit int) string {
	code := disclosure.NormalizeCode(issuerCode)
	if isIssuerCode(code) {
		return fmt.Sprintf("%s/%s.json?limit=%d", c.baseURL, code, limit)
	}
	return fmt.Sprintf("%s/recent.json?limit=%d", c.baseURL, limit)
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

// extractRecords pulls the item list out of a response whose top-level shape
// varies between API revisions. Non-map entries are skipped, not errors.
func extractRecords(data []byte) ([]map[string]interface{}, error) {
	var decoded interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode feed response: %w", err)
	}

	var list []interface{}
	switch v := decoded.(type) {
	case map[string]interface{}:
		for _, key := range listKeys {
			if l, ok := v[key].([]interface{}); ok {
				list = l
				break
			}
		}
	case []interface{}:
		list = v
	}

	records := make([]map[string]interface{}, 0, len(list))
	for _, entry := range list {
		if rec, ok := entry.(map[string]interface{}); ok {
			records = append(records, rec)
		}
	}

	return records, nil
}

func isIssuerCode(code string) bool {
	if len(code) != 4 && len(code) != 5 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
