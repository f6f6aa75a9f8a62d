package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"storyscore/internal/domain"
	"storyscore/internal/score"
)

// Scored-output column block, appended after the source columns. The
// total column is the anchor the next run finds by header; every other
// output column sits at a fixed offset from it.
var scoreHeaders = func() []string {
	h := []string{"SCORE TOTAL (0-100)", "LEVEL"}
	for _, d := range score.Dimensions {
		h = append(h, string(d))
	}
	h = append(h, "TECH LAYERS", "SUMMARY")
	for _, d := range score.Dimensions {
		h = append(h, "GAP "+string(d))
	}
	h = append(h, "OPEN QUESTIONS", "IMPROVEMENTS", "REGRESSION")
	return h
}()

// Write produces one versioned output directory under baseDir: a scored
// CSV per group plus summary.json. The directory name is
// <batch>_scored_v<N> with N one past the highest existing version, so
// no run ever overwrites a previous one. Returns the created directory.
func Write(baseDir, batchName string, records []domain.Record, results map[int]domain.Result, summary domain.RunSummary) (string, error) {
	outDir := filepath.Join(baseDir, versionedName(baseDir, batchName))
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}

	byGroup := map[string][]int{}
	for i := range records {
		if _, ok := results[i]; !ok {
			continue
		}
		g := records[i].Group
		byGroup[g] = append(byGroup[g], i)
	}

	for group, indices := range byGroup {
		sort.Slice(indices, func(a, b int) bool {
			return records[indices[a]].Position < records[indices[b]].Position
		})
		if err := writeGroup(outDir, group, indices, records, results); err != nil {
			return "", err
		}
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding summary: %w", err)
	}
	if err := os.WriteFile(filepath.Join(outDir, "summary.json"), data, 0o644); err != nil {
		return "", fmt.Errorf("writing summary: %w", err)
	}

	log.Printf("report written dir=%s groups=%d records=%d", outDir, len(byGroup), len(results))
	return outDir, nil
}

func writeGroup(outDir, group string, indices []int, records []domain.Record, results map[int]domain.Result) error {
	// Extra source columns vary per record; the union keeps every
	// field round-trippable into the next run's history.
	fieldSet := map[string]bool{}
	for _, i := range indices {
		for name := range records[i].Fields {
			fieldSet[name] = true
		}
	}
	fields := make([]string, 0, len(fieldSet))
	for name := range fieldSet {
		fields = append(fields, name)
	}
	sort.Strings(fields)

	headers := append([]string{"ID", "Title", "Description"}, fields...)
	headers = append(headers, scoreHeaders...)

	path := filepath.Join(outDir, group+".csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(headers); err != nil {
		return fmt.Errorf("writing headers for %s: %w", group, err)
	}
	for _, i := range indices {
		if err := w.Write(scoredRow(records[i], results[i], fields)); err != nil {
			return fmt.Errorf("writing row for %s: %w", group, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing %s: %w", group, err)
	}
	return f.Close()
}

func scoredRow(rec domain.Record, res domain.Result, fields []string) []string {
	row := []string{rec.Identity, rec.Title, rec.Description}
	for _, name := range fields {
		row = append(row, rec.Fields[name])
	}

	row = append(row, formatFloat(res.TotalScore), string(res.Level))
	for _, d := range score.Dimensions {
		row = append(row, formatFloat(res.Scores[string(d)])+"/10")
	}
	row = append(row, res.TechLayers, res.Summary)
	for _, d := range score.Dimensions {
		row = append(row, res.Gaps[string(d)])
	}
	row = append(row, res.Questions, res.Improvements, res.Regression)
	return row
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var versionSuffix = regexp.MustCompile(`_scored_v(\d+)$`)

// versionedName picks <batch>_scored_v<N> with N one past the highest
// version already present under baseDir for the same batch.
func versionedName(baseDir, batchName string) string {
	highest := 0
	prefix := batchName + "_scored_v"
	if entries, err := os.ReadDir(baseDir); err == nil {
		for _, e := range entries {
			if !e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
				continue
			}
			m := versionSuffix.FindStringSubmatch(e.Name())
			if m == nil {
				continue
			}
			if n, err := strconv.Atoi(m[1]); err == nil && n > highest {
				highest = n
			}
		}
	}
	return fmt.Sprintf("%s_scored_v%d", batchName, highest+1)
}
