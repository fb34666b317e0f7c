package watchlist

import (
	"github.com/ymdt/tdnet-watch/app/disclosure"
)

// Watchlist is a named, saved set of screening conditions loaded from a
// YAML file.
type Watchlist struct {
	Name            string   // derived from filename (without .yml extension)
	Title           string   `yaml:"title"`
	Codes           []string `yaml:"codes"`
	Days            int      `yaml:"days"`
	EarningsOnly    bool     `yaml:"earnings_only"`
	RequireDocument bool     `yaml:"require_document"`
}

// MatchesCode reports whether an item belongs to one of the watchlist's
// issuers. An empty code list matches everything.
func (w *Watchlist) MatchesCode(item disclosure.Item) bool {
	if len(w.Codes) == 0 {
		return true
	}
	for _, code := range w.Codes {
		c := disclosure.NormalizeCode(code)
		if item.Code == c || item.Code4 == c {
			return true
		}
	}
	return false
}
