package domain

// Level is one of the ordered completeness tiers derived from the total
// score, plus a distinct Error tier for records whose analysis failed.
type Level string

const (
	LevelExcellent  Level = "Excellent"
	LevelComplete   Level = "Complete"
	LevelAcceptable Level = "Acceptable"
	LevelInProgress Level = "In progress"
	LevelNeedsWork  Level = "Needs definition"
	LevelError      Level = "Error"
)

// Result is the outcome of analyzing one Record. Created by the task
// runner, immutable afterwards.
type Result struct {
	Group    string `json:"group"`
	Position int    `json:"position"`
	Identity string `json:"identity"`

	Scores     map[string]float64 `json:"scores"` // per dimension, 0-10
	TotalScore float64            `json:"total_score"`
	Level      Level              `json:"level"`

	TechLayers   string            `json:"tech_layers"`
	Summary      string            `json:"summary"`
	Gaps         map[string]string `json:"gaps"`
	Questions    string            `json:"questions"`
	Improvements string            `json:"improvements"`
	Regression   string            `json:"regression"`
}

// IsError reports whether this result came from the failure path rather
// than a successful analysis call.
func (r Result) IsError() bool {
	return r.Level == LevelError
}
