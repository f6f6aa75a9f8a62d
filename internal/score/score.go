package score

import (
	"math"

	"storyscore/internal/domain"
)

// Dimension names one evaluated aspect of a record. The order is the
// column order of scored output files, so it is part of the artifact
// contract and must stay stable.
type Dimension string

const (
	Functional   Dimension = "functional"
	TechLayers   Dimension = "tech_layers"
	UXUI         Dimension = "ux_ui"
	Integrations Dimension = "integrations"
	Regulatory   Dimension = "regulatory"
	Criteria     Dimension = "criteria"
)

// Dimensions in output order.
var Dimensions = []Dimension{Functional, TechLayers, UXUI, Integrations, Regulatory, Criteria}

// Weights sum to 1.0. Functional definition dominates: the technical
// depth is reviewed later in refinement, not here.
var Weights = map[Dimension]float64{
	Functional:   0.35,
	TechLayers:   0.25,
	UXUI:         0.15,
	Integrations: 0.10,
	Regulatory:   0.08,
	Criteria:     0.07,
}

// Labels are the human-readable dimension names used in output headers.
var Labels = map[Dimension]string{
	Functional:   "Functional Definition",
	TechLayers:   "Technical Layers",
	UXUI:         "UX / UI",
	Integrations: "Integrations / Systems",
	Regulatory:   "Regulatory & Security",
	Criteria:     "Acceptance Criteria",
}

// TotalScore converts per-dimension 0-10 ratings into a weighted 0-100
// total, rounded to one decimal. Out-of-range sub-scores are clamped so
// a misbehaving reply cannot push the total outside [0, 100].
func TotalScore(scores map[string]float64) float64 {
	total := 0.0
	for dim, weight := range Weights {
		s := scores[string(dim)]
		if s < 0 {
			s = 0
		}
		if s > 10 {
			s = 10
		}
		total += s * 10 * weight
	}
	return math.Round(total*10) / 10
}

// LevelForScore maps a 0-100 total onto the discrete completeness tiers.
func LevelForScore(total float64) domain.Level {
	switch {
	case total >= 90:
		return domain.LevelExcellent
	case total >= 75:
		return domain.LevelComplete
	case total >= 55:
		return domain.LevelAcceptable
	case total >= 30:
		return domain.LevelInProgress
	default:
		return domain.LevelNeedsWork
	}
}
