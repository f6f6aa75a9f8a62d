package domain

// Record is one business-requirement entry loaded from a tabular source.
// Records are read-only once loaded; the analysis pipeline never mutates them.
type Record struct {
	Group       string // originating batch (one CSV file / sheet)
	Position    int    // stable row reference within the group
	Identity    string // raw user-supplied identifier, format varies across runs
	Title       string
	Description string
	Fields      map[string]string // every other named column, header -> cell text
}

// HistoricalEntry is a prior run's result for some record, loaded for
// reconciliation. Immutable once the index is built.
type HistoricalEntry struct {
	Group      string
	TotalScore float64
	Level      string
	Scores     map[string]float64
	Summary    string
	Gaps       map[string]string
}
