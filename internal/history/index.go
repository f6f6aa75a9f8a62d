package history

import (
	"log"
	"strconv"
	"strings"

	"storyscore/internal/domain"
	"storyscore/internal/identity"
	"storyscore/internal/score"
	"storyscore/internal/tabular"
)

// Column offsets of a scored output file relative to its score anchor:
// total, level, six dimension scores, layers, summary, six gap columns.
// Anything that differs per layout is absorbed by the Locator; these
// offsets are part of the scored-artifact shape the writer produces.
const (
	offLevel   = 1
	offScores  = 2
	offSummary = 9
	offGaps    = 10
)

type candidate struct {
	entry     *domain.HistoricalEntry
	normTitle string
	normDesc  string
}

// Index is a lookup over a previous run's output, keyed by normalized
// identity with per-group fallback lists for the looser matching tiers.
type Index struct {
	prefix  string
	byKey   map[groupKey]*domain.HistoricalEntry
	byGroup map[string][]candidate
}

type groupKey struct {
	group string
	key   string
}

// BuildIndex loads previously scored tables into an index. Groups whose
// headers lack a recognizable total-score anchor are skipped, never
// fatal: corrupt history must not abort the run. locate may be nil to
// use the default header heuristics.
func BuildIndex(tables []tabular.Table, locate tabular.LocatorFunc, prefix string) *Index {
	if locate == nil {
		locate = tabular.Locate
	}
	idx := &Index{
		prefix:  prefix,
		byKey:   map[groupKey]*domain.HistoricalEntry{},
		byGroup: map[string][]candidate{},
	}

	for _, tbl := range tables {
		loc := locate(tbl.Headers)
		if loc.ScoreAnchor < 0 {
			log.Printf("history group=%s skipped: no total-score column", tbl.Name)
			continue
		}
		count := 0
		for _, row := range tbl.Rows {
			rawID := tabular.Cell(row, loc.Identity)
			if rawID == "" {
				continue
			}
			key := identity.NormalizeIdentity(rawID, prefix)
			if key == "" {
				continue
			}

			entry := entryFromRow(tbl.Name, row, loc.ScoreAnchor)
			idx.byKey[groupKey{tbl.Name, key}] = entry
			idx.byGroup[tbl.Name] = append(idx.byGroup[tbl.Name], candidate{
				entry:     entry,
				normTitle: identity.NormalizeTitle(tabular.Cell(row, loc.Title)),
				normDesc:  identity.NormalizeDescription(tabular.Cell(row, loc.Description)),
			})
			count++
		}
		log.Printf("history group=%s entries=%d", tbl.Name, count)
	}
	return idx
}

// Len reports the number of indexed entries.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.byKey)
}

func entryFromRow(group string, row []string, anchor int) *domain.HistoricalEntry {
	entry := &domain.HistoricalEntry{
		Group:      group,
		TotalScore: parseScore(tabular.Cell(row, anchor)),
		Level:      tabular.Cell(row, anchor+offLevel),
		Scores:     map[string]float64{},
		Summary:    tabular.Cell(row, anchor+offSummary),
		Gaps:       map[string]string{},
	}
	for i, d := range score.Dimensions {
		entry.Scores[string(d)] = parseScore(tabular.Cell(row, anchor+offScores+i))
		entry.Gaps[string(d)] = tabular.Cell(row, anchor+offGaps+i)
	}
	return entry
}

// parseScore tolerates "8/10" style cells and malformed numbers; corrupt
// score cells degrade to 0 rather than failing the load.
func parseScore(s string) float64 {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "/10"))
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
