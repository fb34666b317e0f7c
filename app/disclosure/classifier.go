package disclosure

import (
	"regexp"
)

var (
	earningsPattern = regexp.MustCompile(`(?i)(決算短信|四半期決算|通期決算|Financial Results|Earnings)`)
	briefingPattern = regexp.MustCompile(`(?i)(決算説明|説明資料|補足資料|Presentation|Briefing)`)
)

// Classifier tags a disclosure title with a document-type category. Pure and
// deterministic, no I/O.
type Classifier struct{}

func NewClassifier() *Classifier {
	return &Classifier{}
}

func (c *Classifier) Run(title string) Classification {
	if earningsPattern.MatchString(title) {
		return Classification{IsEarningsReport: true, DocType: DocTypeEarningsReport}
	}
	if briefingPattern.MatchString(title) {
		return Classification{DocType: DocTypeBriefingMaterial}
	}
	return Classification{DocType: DocTypeOther}
}

// IsEarningsReport reports whether a title looks like a periodic
// financial-results filing.
func (c *Classifier) IsEarningsReport(title string) bool {
	return earningsPattern.MatchString(title)
}
