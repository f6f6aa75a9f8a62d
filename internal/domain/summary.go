package domain

// GroupStats aggregates the results of one group.
type GroupStats struct {
	Count      int     `json:"count"`
	Average    float64 `json:"average"`
	WeakestDim string  `json:"weakest_dimension,omitempty"`
	SecondDim  string  `json:"second_weakest_dimension,omitempty"`
}

// RunSummary aggregates all results of one run. Built once after every
// result has been collected; callers never see a partial summary.
type RunSummary struct {
	Total      int                   `json:"total"`
	Analyzed   int                   `json:"analyzed"` // non-error results
	Average    float64               `json:"average"`
	Min        float64               `json:"min"`
	Max        float64               `json:"max"`
	ByLevel    map[Level]int         `json:"by_level"`
	Groups     map[string]GroupStats `json:"groups"`
	Narratives map[string]string     `json:"narratives,omitempty"`
}
