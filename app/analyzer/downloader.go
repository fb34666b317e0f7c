package analyzer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	downloadTimeout  = 35 * time.Second
	preflightTimeout = 15 * time.Second
	chunkSize        = 128 * 1024
)

// Downloader streams a document while enforcing a byte cap. The body is read
// in fixed-size chunks and the cumulative count checked after each one, so a
// hostile or huge response never gets buffered whole. Content-Length is
// advisory only; the streaming counter is authoritative.
type Downloader struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
}

func NewDownloader(userAgent string, maxBytes int64) *Downloader {
	return &Downloader{
		httpClient: &http.Client{Timeout: downloadTimeout},
		userAgent:  userAgent,
		maxBytes:   maxBytes,
	}
}

func (d *Downloader) Run(ctx context.Context, url string) ([]byte, error) {
	if err := d.preflight(ctx, url); err != nil {
		return nil, err
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	var buf bytes.Buffer
	chunk := make([]byte, chunkSize)
	var total int64

	for {
		n, readErr := resp.Body.Read(chunk)
		if n > 0 {
			total += int64(n)
			if total > d.maxBytes {
				// Abort mid-stream; the partial buffer is discarded
				return nil, &SizeLimitError{Observed: total, Limit: d.maxBytes}
			}
			buf.Write(chunk[:n])
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("failed to read document body: %w", readErr)
		}
	}

	return buf.Bytes(), nil
}

// preflight issues a header-only request to reject an obviously oversized
// document before streaming. Failure or a missing Content-Length never
// blocks the download; only the streaming byte counter is authoritative for
// anything the header did not reveal.
func (d *Downloader) preflight(ctx context.Context, url string) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, preflightTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "HEAD", url, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		slog.Debug("Size preflight failed, continuing with download", "url", url, "error", err)
		return nil
	}
	resp.Body.Close()

	if resp.ContentLength > d.maxBytes {
		return &SizeLimitError{Observed: resp.ContentLength, Limit: d.maxBytes}
	}

	return nil
}
