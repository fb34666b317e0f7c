package database

type AnalysisRepository interface {
	// Get returns nil when the identity is absent. A stored payload that no
	// longer parses degrades to a miss, never an error.
	Get(docURL string) (*Analysis, error)

	// Upsert replaces any prior entry for the same identity
	// (last-write-wins, no versioning).
	Upsert(analysis Analysis) error

	ListRecent(limit int) ([]Analysis, error)
	Count() (int, error)
}
