package cfg

type Cfg struct {
	// Storage configuration
	DBPath string

	// Application configuration
	Port          string
	AppPassword   string
	WatchlistsDir string

	// Upstream feed configuration
	FeedBaseURL string
	FeedLimit   int

	// AI analysis configuration
	GeminiAPIKey string
	GeminiModel  string
	MaxPDFBytes  int64

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}

// AnalysisEnabled reports whether the AI analysis capability is available.
// An absent credential disables the capability rather than erroring.
func (c *Cfg) AnalysisEnabled() bool {
	return c.GeminiAPIKey != ""
}
