package analyzer

import (
	"errors"
	"fmt"
)

// Policy rejection issued before any network call: the URL failed the
// allowlist check. Never retried automatically.
var ErrIneligibleURL = errors.New("URL is not eligible for automated fetch")

// The analysis capability is off because no API credential was configured.
var ErrAnalysisDisabled = errors.New("AI analysis is disabled (no API key configured)")

// SizeLimitError aborts a download mid-stream. Partial bytes are discarded,
// never cached, never passed to the model.
type SizeLimitError struct {
	Observed int64
	Limit    int64
}

func (e *SizeLimitError) Error() string {
	return fmt.Sprintf("download exceeded size limit (observed %d bytes, limit %d bytes)", e.Observed, e.Limit)
}

// MalformedResponseError means the model call succeeded at the transport
// level but no valid result object could be extracted from its payload.
// Nothing is cached; RawText lets the caller show a raw fallback.
type MalformedResponseError struct {
	RawText string
	Reason  string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("model response could not be parsed: %s", e.Reason)
}

// StoreError reports that the analysis succeeded but could not be
// persisted. The in-memory result is still usable.
type StoreError struct {
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("failed to persist analysis: %v", e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
