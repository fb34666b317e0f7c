package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./tdnet-watch.db" description:"Path to the SQLite database file"`

	// Application configuration
	Port          string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	AppPassword   string `long:"app-password" env:"APP_PASSWORD" description:"Password required for data endpoints (optional; empty disables the gate)"`
	WatchlistsDir string `long:"watchlists-dir" env:"WATCHLISTS_DIR" default:"./watchlists" description:"Directory containing watchlist configuration files"`

	// Upstream feed configuration
	FeedBaseURL string `long:"feed-base-url" env:"FEED_BASE_URL" default:"https://webapi.yanoshin.jp/webapi/tdnet/list" description:"Base URL of the TDnet list API"`
	FeedLimit   int    `long:"feed-limit" env:"FEED_LIMIT" default:"300" description:"Default number of feed items to request"`

	// AI analysis configuration
	GeminiAPIKey string `long:"gemini-api-key" env:"GEMINI_API_KEY" description:"Gemini API key (optional; empty disables AI analysis)"`
	GeminiModel  string `long:"gemini-model" env:"GEMINI_MODEL" default:"gemini-2.0-flash" description:"Gemini model identifier"`
	MaxPDFBytes  int64  `long:"max-pdf-bytes" env:"MAX_PDF_BYTES" default:"20000000" description:"Maximum PDF download size in bytes"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"tdnet-watch/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, Asia/Tokyo)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:        raw.DBPath,
		Port:          raw.Port,
		AppPassword:   raw.AppPassword,
		WatchlistsDir: raw.WatchlistsDir,
		FeedBaseURL:   raw.FeedBaseURL,
		FeedLimit:     raw.FeedLimit,
		GeminiAPIKey:  raw.GeminiAPIKey,
		GeminiModel:   raw.GeminiModel,
		MaxPDFBytes:   raw.MaxPDFBytes,
		UserAgent:     raw.UserAgent,
		Timezone:      raw.Timezone,
		Debug:         raw.Debug,
		Version:       GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
