package api

import (
	"context"

	"github.com/ymdt/tdnet-watch/app/analyzer"
	"github.com/ymdt/tdnet-watch/app/database"
	"github.com/ymdt/tdnet-watch/app/disclosure"
	"github.com/ymdt/tdnet-watch/app/tdnet"
	"github.com/ymdt/tdnet-watch/app/watchlist"
)

type FetcherInterface interface {
	Fetch(ctx context.Context, issuerCode string, limit int) ([]disclosure.Item, error)
}

var _ FetcherInterface = (*tdnet.Client)(nil)

type AnalyzerInterface interface {
	Run(ctx context.Context, req analyzer.Request) (*analyzer.Outcome, error)
	Lookup(docURL string) *analyzer.Outcome
	Enabled() bool
}

var _ AnalyzerInterface = (*analyzer.Analyzer)(nil)

type Handler struct {
	fetcher      FetcherInterface
	screener     *disclosure.Screener
	classifier   *disclosure.Classifier
	analyzer     AnalyzerInterface
	analysisRepo database.AnalysisRepository
	watchlists   *watchlist.ConfigCache
	feedLimit    int
}
