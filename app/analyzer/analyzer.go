// Package analyzer runs the cache-or-analyze pipeline: eligibility check,
// cache lookup, bounded download, model call, result parsing, cache write.
package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ymdt/tdnet-watch/app/database"
	"github.com/ymdt/tdnet-watch/app/disclosure"
)

// Request describes one user-triggered analysis.
type Request struct {
	DocURL      string
	Code        string
	Title       string
	PublishedAt *time.Time

	// Force overwrites an existing cache entry. Re-analysis is a deliberate
	// user action, never automatic.
	Force bool
}

// Outcome is the result of a pipeline run. Cached reports whether the
// expensive path was skipped entirely.
type Outcome struct {
	Analysis database.Analysis
	Result   *Result
	Cached   bool
}

type Analyzer struct {
	repo       database.AnalysisRepository
	downloader *Downloader
	gemini     *Gemini
	classifier *disclosure.Classifier
	enabled    bool
}

func New(repo database.AnalysisRepository, downloader *Downloader, gemini *Gemini,
	classifier *disclosure.Classifier, enabled bool) *Analyzer {
	return &Analyzer{
		repo:       repo,
		downloader: downloader,
		gemini:     gemini,
		classifier: classifier,
		enabled:    enabled,
	}
}

// Run executes the pipeline for one document. A cache hit short-circuits
// before any network call. Two near-simultaneous runs for the same identity
// may both miss and both analyze, with the second write winning; that race
// is accepted for this single-user interactive workload.
func (a *Analyzer) Run(ctx context.Context, req Request) (*Outcome, error) {
	identity := disclosure.CanonicalIdentity(req.DocURL)
	if identity == "" || !disclosure.IsEligibleForFetch(identity) {
		return nil, ErrIneligibleURL
	}

	if !req.Force {
		if outcome := a.lookup(identity); outcome != nil {
			return outcome, nil
		}
	}

	if !a.enabled {
		return nil, ErrAnalysisDisabled
	}

	pdfBytes, err := a.downloader.Run(ctx, identity)
	if err != nil {
		return nil, err
	}

	pages, err := checkPDF(pdfBytes)
	if err != nil {
		return nil, err
	}
	slog.Debug("Document downloaded", "identity", identity, "bytes", len(pdfBytes), "pages", pages)

	text, err := a.gemini.AnalyzePDF(ctx, pdfBytes)
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}

	result, payload, err := ParseResult(text)
	if err != nil {
		return nil, err
	}

	analysis := database.Analysis{
		DocURL:      identity,
		Code:        req.Code,
		Code4:       disclosure.DeriveCode4(req.Code),
		Title:       req.Title,
		PublishedAt: req.PublishedAt,
		PayloadJSON: payload,
		CreatedAt:   time.Now().UTC(),
		Model:       a.gemini.Model(),
		DocType:     a.classifier.Run(req.Title).DocType,
	}

	outcome := &Outcome{Analysis: analysis, Result: result}

	if err := a.repo.Upsert(analysis); err != nil {
		// The in-memory result is still shown even though it could not be
		// persisted
		return outcome, &StoreError{Err: err}
	}

	slog.Info("Analysis cached", "identity", identity, "code", req.Code, "doc_type", analysis.DocType)

	return outcome, nil
}

// Lookup probes the cache without triggering any network activity.
func (a *Analyzer) Lookup(docURL string) *Outcome {
	identity := disclosure.CanonicalIdentity(docURL)
	if identity == "" {
		return nil
	}
	return a.lookup(identity)
}

// Enabled reports whether the model credential is configured.
func (a *Analyzer) Enabled() bool {
	return a.enabled
}

func (a *Analyzer) lookup(identity string) *Outcome {
	cached, err := a.repo.Get(identity)
	if err != nil {
		// A failed read degrades to a miss; the expensive path still works
		slog.Warn("Cache read failed, treating as miss", "identity", identity, "error", err)
		return nil
	}
	if cached == nil {
		return nil
	}

	outcome := &Outcome{Analysis: *cached, Cached: true}

	// Older entries may hold a differently shaped object; the structured
	// view is best effort on reads
	var result Result
	if err := json.Unmarshal([]byte(cached.PayloadJSON), &result); err == nil {
		outcome.Result = &result
	}

	return outcome
}
