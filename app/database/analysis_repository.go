package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

var jst = time.FixedZone("JST", 9*60*60)

var _ AnalysisRepository = (*SQLAnalysisRepository)(nil)

// SQLAnalysisRepository persists analysis results in the embedded store,
// one row per document identity.
type SQLAnalysisRepository struct {
	db *DB
}

func NewAnalysisRepository(db *DB) *SQLAnalysisRepository {
	return &SQLAnalysisRepository{db: db}
}

func (r *SQLAnalysisRepository) Get(docURL string) (*Analysis, error) {
	if docURL == "" {
		return nil, nil
	}

	analysis, err := r.getWide(docURL)
	if err != nil {
		// The store may predate the denormalized columns; retry with the
		// minimal column set before treating the read as failed.
		analysis, err = r.getNarrow(docURL)
		if err != nil {
			return nil, fmt.Errorf("failed to read analysis: %w", err)
		}
	}

	if analysis == nil {
		return nil, nil
	}

	if !json.Valid([]byte(analysis.PayloadJSON)) {
		slog.Warn("Cached payload is not valid JSON, treating as miss", "doc_url", docURL)
		return nil, nil
	}

	return analysis, nil
}

func (r *SQLAnalysisRepository) getWide(docURL string) (*Analysis, error) {
	row := r.db.QueryRow(`
		SELECT doc_url, COALESCE(code, ''), COALESCE(title, ''),
		       COALESCE(published_at, ''), payload_json, created_at,
		       COALESCE(model, ''), COALESCE(code4, ''),
		       COALESCE(published_date_jst, ''), COALESCE(doc_type, '')
		FROM analyses WHERE doc_url = ?
	`, docURL)

	var a Analysis
	var publishedAt, createdAt string
	err := row.Scan(&a.DocURL, &a.Code, &a.Title, &publishedAt, &a.PayloadJSON,
		&createdAt, &a.Model, &a.Code4, &a.PublishedDateJST, &a.DocType)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	a.PublishedAt = parseStoredTime(publishedAt)
	a.CreatedAt = parseStoredTimeOrZero(createdAt)

	return &a, nil
}

func (r *SQLAnalysisRepository) getNarrow(docURL string) (*Analysis, error) {
	row := r.db.QueryRow(`
		SELECT doc_url, COALESCE(code, ''), COALESCE(title, ''),
		       COALESCE(published_at, ''), payload_json, created_at
		FROM analyses WHERE doc_url = ?
	`, docURL)

	var a Analysis
	var publishedAt, createdAt string
	err := row.Scan(&a.DocURL, &a.Code, &a.Title, &publishedAt, &a.PayloadJSON, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	a.PublishedAt = parseStoredTime(publishedAt)
	a.CreatedAt = parseStoredTimeOrZero(createdAt)

	return &a, nil
}

func (r *SQLAnalysisRepository) Upsert(analysis Analysis) error {
	if analysis.DocURL == "" {
		return fmt.Errorf("document identity is required")
	}

	publishedAt := ""
	publishedDateJST := analysis.PublishedDateJST
	if analysis.PublishedAt != nil {
		publishedAt = analysis.PublishedAt.UTC().Format(time.RFC3339)
		if publishedDateJST == "" {
			publishedDateJST = analysis.PublishedAt.In(jst).Format("2006-01-02")
		}
	}

	createdAt := analysis.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := r.db.Exec(`
		INSERT INTO analyses (
			doc_url, code, title, published_at, payload_json, created_at,
			model, code4, published_date_jst, doc_type
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(doc_url) DO UPDATE SET
			code = excluded.code,
			title = excluded.title,
			published_at = excluded.published_at,
			payload_json = excluded.payload_json,
			created_at = excluded.created_at,
			model = excluded.model,
			code4 = excluded.code4,
			published_date_jst = excluded.published_date_jst,
			doc_type = excluded.doc_type
	`, analysis.DocURL, analysis.Code, analysis.Title, publishedAt,
		analysis.PayloadJSON, createdAt.Format(time.RFC3339),
		analysis.Model, analysis.Code4, publishedDateJST, analysis.DocType)

	if err != nil {
		return fmt.Errorf("failed to store analysis: %w", err)
	}

	return nil
}

func (r *SQLAnalysisRepository) ListRecent(limit int) ([]Analysis, error) {
	rows, err := r.db.Query(`
		SELECT doc_url, COALESCE(code, ''), COALESCE(title, ''),
		       COALESCE(published_at, ''), payload_json, created_at,
		       COALESCE(model, ''), COALESCE(code4, ''),
		       COALESCE(published_date_jst, ''), COALESCE(doc_type, '')
		FROM analyses
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	var analyses []Analysis
	for rows.Next() {
		var a Analysis
		var publishedAt, createdAt string
		err := rows.Scan(&a.DocURL, &a.Code, &a.Title, &publishedAt, &a.PayloadJSON,
			&createdAt, &a.Model, &a.Code4, &a.PublishedDateJST, &a.DocType)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		a.PublishedAt = parseStoredTime(publishedAt)
		a.CreatedAt = parseStoredTimeOrZero(createdAt)
		analyses = append(analyses, a)
	}

	return analyses, rows.Err()
}

func (r *SQLAnalysisRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM analyses`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count analyses: %w", err)
	}
	return count, nil
}

func parseStoredTime(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}

func parseStoredTimeOrZero(value string) time.Time {
	if t := parseStoredTime(value); t != nil {
		return *t
	}
	return time.Time{}
}
