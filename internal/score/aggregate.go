package score

import (
	"math"
	"sort"

	"storyscore/internal/domain"
)

// Summarize folds all results of a run into a RunSummary. Error results
// carry a zero total that would drag the averages down, so they only
// count in the per-level tallies.
func Summarize(results map[int]domain.Result) domain.RunSummary {
	summary := domain.RunSummary{
		Total:   len(results),
		ByLevel: map[domain.Level]int{},
		Groups:  map[string]domain.GroupStats{},
	}

	byGroup := map[string][]domain.Result{}
	var sum float64
	first := true
	for _, r := range results {
		summary.ByLevel[r.Level]++
		if r.IsError() {
			continue
		}
		summary.Analyzed++
		sum += r.TotalScore
		if first || r.TotalScore < summary.Min {
			summary.Min = r.TotalScore
		}
		if first || r.TotalScore > summary.Max {
			summary.Max = r.TotalScore
		}
		first = false
		byGroup[r.Group] = append(byGroup[r.Group], r)
	}
	if summary.Analyzed > 0 {
		summary.Average = round1(sum / float64(summary.Analyzed))
	}

	for group, rs := range byGroup {
		var gsum float64
		dimSums := map[Dimension]float64{}
		for _, r := range rs {
			gsum += r.TotalScore
			for _, d := range Dimensions {
				dimSums[d] += r.Scores[string(d)]
			}
		}
		weakest, second := weakestDimensions(dimSums, len(rs))
		summary.Groups[group] = domain.GroupStats{
			Count:      len(rs),
			Average:    round1(gsum / float64(len(rs))),
			WeakestDim: string(weakest),
			SecondDim:  string(second),
		}
	}
	return summary
}

// weakestDimensions returns the two lowest average-scoring dimensions of
// a group, ties broken by output order.
func weakestDimensions(dimSums map[Dimension]float64, count int) (Dimension, Dimension) {
	dims := make([]Dimension, len(Dimensions))
	copy(dims, Dimensions)
	sort.SliceStable(dims, func(i, j int) bool {
		return dimSums[dims[i]]/float64(count) < dimSums[dims[j]]/float64(count)
	})
	if len(dims) < 2 {
		return dims[0], dims[0]
	}
	return dims[0], dims[1]
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
