package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ymdt/tdnet-watch/app/analyzer"
	"github.com/ymdt/tdnet-watch/app/cfg"
	"github.com/ymdt/tdnet-watch/app/database"
	"github.com/ymdt/tdnet-watch/app/disclosure"
	"github.com/ymdt/tdnet-watch/app/watchlist"
)

func NewHandler(fetcher FetcherInterface, screener *disclosure.Screener,
	classifier *disclosure.Classifier, anlz AnalyzerInterface,
	analysisRepo database.AnalysisRepository, watchlists *watchlist.ConfigCache,
	feedLimit int) *Handler {
	return &Handler{
		fetcher:      fetcher,
		screener:     screener,
		classifier:   classifier,
		analyzer:     anlz,
		analysisRepo: analysisRepo,
		watchlists:   watchlists,
		feedLimit:    feedLimit,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if count, err := h.analysisRepo.Count(); err == nil {
		health["analyses"] = count
	}

	health["loaded_watchlists"] = h.watchlists.Count()
	health["analysis_enabled"] = h.analyzer.Enabled()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{
		"version":           cfg.GetVersion(),
		"loaded_watchlists": h.watchlists.Count(),
		"analysis_enabled":  h.analyzer.Enabled(),
	}

	if count, err := h.analysisRepo.Count(); err == nil {
		stats["analyses"] = count
	}

	feedStatus := map[string]interface{}{"reachable": true}
	if _, err := h.fetcher.Fetch(c.Request.Context(), "", 1); err != nil {
		feedStatus["reachable"] = false
		feedStatus["error"] = err.Error()
	}
	stats["feed"] = feedStatus

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) GetDisclosures(c *gin.Context) {
	opts := disclosure.ScreenOptions{}
	days := 0
	limit := h.feedLimit

	var wl *watchlist.Watchlist
	if name := c.Query("watchlist"); name != "" {
		var err error
		wl, err = h.watchlists.Get(name)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Watchlist not found"})
			return
		}
		days = wl.Days
		opts.EarningsOnly = wl.EarningsOnly
		opts.RequireDocument = wl.RequireDocument
	}

	code := c.Query("code")
	if code != "" {
		opts.IssuerCode = code
	}

	if v := c.Query("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid days parameter"})
			return
		}
		days = parsed
	}

	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
			return
		}
		limit = parsed
	}

	if v := c.Query("earnings_only"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid earnings_only parameter"})
			return
		}
		opts.EarningsOnly = parsed
	}

	if v := c.Query("require_pdf"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid require_pdf parameter"})
			return
		}
		opts.RequireDocument = parsed
	}

	if days > 0 {
		cutoff := time.Now().UTC().AddDate(0, 0, -days)
		opts.Cutoff = &cutoff
	}

	// A single-issuer watchlist routes through the per-issuer feed endpoint,
	// same as an explicit code query. Multi-issuer watchlists screen the
	// recent feed instead.
	fetchCode := code
	if code == "" && wl != nil && len(wl.Codes) == 1 {
		fetchCode = wl.Codes[0]
		opts.IssuerCode = fetchCode
	}

	items, err := h.fetcher.Fetch(c.Request.Context(), fetchCode, limit)
	if err != nil {
		slog.Error("Feed fetch failed", "code", fetchCode, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch disclosure feed"})
		return
	}

	if wl != nil && code == "" && len(wl.Codes) > 1 {
		kept := make([]disclosure.Item, 0, len(items))
		for _, item := range items {
			if wl.MatchesCode(item) {
				kept = append(kept, item)
			}
		}
		items = kept
	}

	screened, relaxed := h.screener.Run(items, opts)

	results := make([]map[string]interface{}, 0, len(screened))
	for _, item := range screened {
		results = append(results, h.itemResponse(item))
	}

	c.JSON(http.StatusOK, gin.H{
		"items":   results,
		"total":   len(results),
		"relaxed": relaxed,
	})
}

func (h *Handler) itemResponse(item disclosure.Item) map[string]interface{} {
	resp := map[string]interface{}{
		"title":        item.Title,
		"code":         item.Code,
		"code4":        item.Code4,
		"company_name": item.CompanyName,
		"document_url": item.DocumentURL,
		"link":         item.Link,
		"doc_type":     h.classifier.Run(item.Title).DocType,
		"has_document": item.HasDocument(),
	}
	if item.PublishedAt != nil {
		resp["published_at"] = item.PublishedAt.Format(time.RFC3339)
	}
	return resp
}

type analyzeRequest struct {
	DocURL      string `json:"doc_url" binding:"required"`
	Code        string `json:"code"`
	Title       string `json:"title"`
	PublishedAt string `json:"published_at"`
	Force       bool   `json:"force"`
}

func (h *Handler) PostAnalysis(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	var publishedAt *time.Time
	if req.PublishedAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.PublishedAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid published_at, expected RFC3339"})
			return
		}
		utc := parsed.UTC()
		publishedAt = &utc
	}

	outcome, err := h.analyzer.Run(c.Request.Context(), analyzer.Request{
		DocURL:      req.DocURL,
		Code:        req.Code,
		Title:       req.Title,
		PublishedAt: publishedAt,
		Force:       req.Force,
	})
	if err != nil {
		h.renderAnalysisError(c, outcome, err)
		return
	}

	c.JSON(http.StatusOK, analysisResponse(outcome, true))
}

// renderAnalysisError maps pipeline failures to status codes. A store
// failure after a successful analysis still returns the result, flagged as
// not persisted.
func (h *Handler) renderAnalysisError(c *gin.Context, outcome *analyzer.Outcome, err error) {
	var sizeErr *analyzer.SizeLimitError
	var malformedErr *analyzer.MalformedResponseError
	var storeErr *analyzer.StoreError

	switch {
	case errors.Is(err, analyzer.ErrIneligibleURL):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Document URL is not eligible for fetch"})
	case errors.Is(err, analyzer.ErrAnalysisDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Analysis is disabled, no API key configured"})
	case errors.As(err, &sizeErr):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": sizeErr.Error()})
	case errors.As(err, &malformedErr):
		slog.Error("Model returned an unusable response", "reason", malformedErr.Reason)
		c.JSON(http.StatusBadGateway, gin.H{
			"error":    "Model returned an unusable response",
			"raw_text": malformedErr.RawText,
		})
	case errors.As(err, &storeErr) && outcome != nil:
		slog.Error("Analysis completed but cache write failed", "doc_url", outcome.Analysis.DocURL, "error", err)
		resp := analysisResponse(outcome, false)
		resp["warning"] = "Result was not persisted and will be re-analyzed on the next request"
		c.JSON(http.StatusOK, resp)
	default:
		slog.Error("Analysis failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Analysis failed", "details": err.Error()})
	}
}

func (h *Handler) GetAnalysisLookup(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing url parameter"})
		return
	}

	outcome := h.analyzer.Lookup(url)
	if outcome == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document has not been analyzed"})
		return
	}

	c.JSON(http.StatusOK, analysisResponse(outcome, true))
}

func (h *Handler) ListAnalyses(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
			return
		}
		limit = parsed
	}

	analyses, err := h.analysisRepo.ListRecent(limit)
	if err != nil {
		slog.Error("Database error", "operation", "list_analyses", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	results := make([]map[string]interface{}, 0, len(analyses))
	for _, a := range analyses {
		results = append(results, analysisRow(a, nil))
	}

	c.JSON(http.StatusOK, gin.H{
		"analyses": results,
		"total":    len(results),
	})
}

func analysisResponse(outcome *analyzer.Outcome, stored bool) map[string]interface{} {
	resp := analysisRow(outcome.Analysis, outcome.Result)
	resp["cached"] = outcome.Cached
	resp["stored"] = stored
	return resp
}

func analysisRow(a database.Analysis, result *analyzer.Result) map[string]interface{} {
	row := map[string]interface{}{
		"doc_url":    a.DocURL,
		"code":       a.Code,
		"code4":      a.Code4,
		"title":      a.Title,
		"doc_type":   a.DocType,
		"model":      a.Model,
		"created_at": a.CreatedAt.Format(time.RFC3339),
	}
	if a.PublishedAt != nil {
		row["published_at"] = a.PublishedAt.Format(time.RFC3339)
	}
	if a.PublishedDateJST != "" {
		row["published_date_jst"] = a.PublishedDateJST
	}
	if result != nil {
		row["result"] = result
	} else if a.PayloadJSON != "" {
		row["result"] = json.RawMessage(a.PayloadJSON)
	}
	return row
}
