package batch

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"storyscore/internal/domain"
	"storyscore/internal/tabular"
)

// Placeholder rows ship with the source template and are never analyzed.
var skipIdentities = map[string]bool{
	"Example": true,
	"EXAMPLE": true,
	"example": true,
	"":        true,
}

// Load reads every CSV in dir into records, one group per file. onlyGroup
// restricts to a single group, limit caps the total record count (0 = no
// cap beyond maxPerRun). maxPerRun bounds the cost of a single run.
func Load(dir, onlyGroup string, limit, maxPerRun int) ([]domain.Record, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading input dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var records []domain.Record
	found := false
	for _, name := range names {
		group := strings.TrimSuffix(name, filepath.Ext(name))
		if onlyGroup != "" && group != onlyGroup {
			continue
		}
		found = true
		tbl, err := tabular.ReadCSV(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		recs := FromTable(tbl)
		log.Printf("batch group=%s records=%d", group, len(recs))
		records = append(records, recs...)
	}
	if onlyGroup != "" && !found {
		return nil, fmt.Errorf("group %q not found in %s", onlyGroup, dir)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no records found in %s", dir)
	}

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	if maxPerRun > 0 && len(records) > maxPerRun {
		return nil, fmt.Errorf("batch has %d records, per-run cap is %d", len(records), maxPerRun)
	}
	return records, nil
}

// FromTable converts one table into records, skipping placeholder rows.
// Position is the row's 1-based line number in the original file so a
// result can always be traced back to its source row.
func FromTable(tbl tabular.Table) []domain.Record {
	loc := tabular.Locate(tbl.Headers)

	var records []domain.Record
	for i, row := range tbl.Rows {
		id := tabular.Cell(row, loc.Identity)
		if skipIdentities[id] {
			continue
		}
		rec := domain.Record{
			Group:       tbl.Name,
			Position:    tbl.DataRow + i,
			Identity:    id,
			Title:       tabular.Cell(row, loc.Title),
			Description: tabular.Cell(row, loc.Description),
			Fields:      map[string]string{},
		}
		for col, header := range tbl.Headers {
			if header == "" || col == loc.Identity || col == loc.Title || col == loc.Description {
				continue
			}
			if val := tabular.Cell(row, col); val != "" {
				rec.Fields[header] = val
			}
		}
		records = append(records, rec)
	}
	return records
}
