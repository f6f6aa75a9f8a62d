package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"storyscore/internal/domain"
)

const executiveSystemPrompt = `You are the analyst who scored a set of business requirement stories,
grouped by initiative. For EACH initiative write one short paragraph (3-5
sentences) that summarizes how it is going, names the improvements made
since the previous analysis, and flags data problems you spot (duplicate
IDs, missing fields, contradictions). Be direct and executive: answer as
if you had thirty seconds.

Respond ONLY with valid JSON, no text before or after:
{"groups": [{"name": "<exact group name>", "narrative": "<paragraph>"}]}`

type executiveReply struct {
	Groups []struct {
		Name      string `json:"name"`
		Narrative string `json:"narrative"`
	} `json:"groups"`
}

// ExecutiveNarratives runs one extra call over compact per-group
// digests and returns a narrative paragraph per group. A failure here
// degrades the summary, never the run.
func ExecutiveNarratives(ctx context.Context, client Client, results map[int]domain.Result) (map[string]string, error) {
	byGroup := map[string][]domain.Result{}
	for _, r := range results {
		if r.IsError() {
			continue
		}
		byGroup[r.Group] = append(byGroup[r.Group], r)
	}
	if len(byGroup) == 0 {
		return nil, nil
	}

	groups := make([]string, 0, len(byGroup))
	for g := range byGroup {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	var blocks []string
	for _, g := range groups {
		blocks = append(blocks, groupDigest(g, byGroup[g]))
	}
	userPrompt := "Scored story digest per initiative:\n\n" + strings.Join(blocks, "\n\n---\n\n")

	raw, err := client.Complete(ctx, executiveSystemPrompt, userPrompt)
	if err != nil {
		return nil, err
	}

	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var rep executiveReply
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &rep); err != nil {
		return nil, fmt.Errorf("parsing executive reply: %w", err)
	}

	out := map[string]string{}
	for _, g := range rep.Groups {
		name := strings.TrimSpace(g.Name)
		narrative := strings.TrimSpace(g.Narrative)
		if name != "" && narrative != "" {
			out[name] = narrative
		}
	}
	return out, nil
}

func groupDigest(group string, rs []domain.Result) string {
	sort.Slice(rs, func(i, j int) bool { return rs[i].Position < rs[j].Position })

	var sum float64
	for _, r := range rs {
		sum += r.TotalScore
	}
	lines := []string{
		fmt.Sprintf("GROUP: %s", group),
		fmt.Sprintf("Records: %d, average score: %.1f", len(rs), sum/float64(len(rs))),
	}
	for _, r := range rs {
		gaps := gapsDigest(filterIncompleteGaps(r.Gaps))
		lines = append(lines, fmt.Sprintf("  %s (%.0f, %s): %s. Improvements: %s. Regression: %s. Gaps: %s",
			r.Identity, r.TotalScore, r.Level,
			truncate(r.Summary, 150), truncate(r.Improvements, 120), truncate(r.Regression, 120), truncate(gaps, 200)))
	}
	return strings.Join(lines, "\n")
}

// filterIncompleteGaps drops dimensions already marked complete so the
// digest only carries real gaps.
func filterIncompleteGaps(gaps map[string]string) map[string]string {
	out := map[string]string{}
	for dim, v := range gaps {
		if strings.TrimSpace(v) == "" || strings.Contains(v, "Complete") {
			continue
		}
		out[dim] = v
	}
	return out
}
