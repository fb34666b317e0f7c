package disclosure

// Screener applies user-specified predicates to a list of normalized items.
// Output preserves feed order; grouping and sorting are presentation
// concerns.
type Screener struct {
	classifier *Classifier
}

func NewScreener(classifier *Classifier) *Screener {
	return &Screener{classifier: classifier}
}

// Run filters items by the given options. When the earnings-only predicate
// yields zero results it is automatically relaxed (and only it - date,
// issuer and require-document predicates stay in force); the second return
// value reports that relaxation occurred so callers can disclose it.
func (s *Screener) Run(items []Item, opts ScreenOptions) ([]Item, bool) {
	result := s.apply(items, opts)

	if opts.EarningsOnly && len(result) == 0 {
		relaxed := opts
		relaxed.EarningsOnly = false
		return s.apply(items, relaxed), true
	}

	return result, false
}

func (s *Screener) apply(items []Item, opts ScreenOptions) []Item {
	issuer := NormalizeCode(opts.IssuerCode)

	kept := make([]Item, 0, len(items))
	for _, item := range items {
		if issuer != "" && item.Code != issuer && item.Code4 != issuer {
			continue
		}
		// An unknown publication date passes the cutoff check: absence of a
		// parseable timestamp must never silently drop an item.
		if opts.Cutoff != nil && item.PublishedAt != nil && item.PublishedAt.Before(*opts.Cutoff) {
			continue
		}
		if opts.RequireDocument && !item.HasDocument() {
			continue
		}
		if opts.EarningsOnly && !s.classifier.IsEarningsReport(item.Title) {
			continue
		}
		kept = append(kept, item)
	}

	return kept
}
