package analyze

import (
	"fmt"
	"sort"
	"strings"

	"storyscore/internal/domain"
	"storyscore/internal/score"
)

const systemPrompt = `You are a senior product manager reviewing business requirement stories.

Stories are written by business people, not engineers. Each story covers one
stage of a larger flow, so do not expect every story to carry the full
picture: judge what is reasonable to define at that stage. Technical
specifications come later in refinement; evaluate only what the author
should define now.

Be constructive and action oriented. Instead of listing what is missing,
say what is worth defining next, in language a business person can act on.

Evaluate six dimensions, each scored 0-10:
1. functional (35%): main flow, business rules, error messages, alternate
   flows, measurement and monitoring.
2. tech_layers (25%): did the author identify which layers are touched
   (UI, backend, integrations, security, notifications)? Identification
   only, no specs.
3. ux_ui (15%): screen states, validations, navigation, user feedback.
4. integrations (10%): which external systems take part. Identification only.
5. regulatory (8%): regulatory and data-sensitivity aspects, where they
   apply to this stage.
6. criteria (7%): testable, measurable acceptance criteria, if they apply
   to this stage.

Respond ONLY with valid JSON, no markdown fences, no text before or after:
{
  "scores": {"functional": 0, "tech_layers": 0, "ux_ui": 0, "integrations": 0, "regulatory": 0, "criteria": 0},
  "tech_layers": "<involved layers separated by | >",
  "summary": "<two constructive sentences: definition level and what to define next>",
  "gaps": {"functional": "<what to define, or 'Complete'>", "tech_layers": "...", "ux_ui": "...", "integrations": "...", "regulatory": "...", "criteria": "..."},
  "questions": "<3-5 clarifying questions separated by | >",
  "improvements": "<improvements versus the previous analysis separated by |, or 'N/A'>",
  "regression": "<if the score dropped versus the previous analysis, what was better defined before; otherwise 'N/A'>"
}`

const (
	priorSummaryMax = 300
	priorGapEachMax = 60
	priorGapsMax    = 400
)

// buildAnalysisPrompt dumps the record's fields plus, when a previous
// counterpart was matched, a compact digest of its prior result so the
// model can call out improvements and regressions.
func buildAnalysisPrompt(rec domain.Record, prev *domain.HistoricalEntry) string {
	var fields strings.Builder
	writeField := func(name, val string) {
		if strings.TrimSpace(val) != "" {
			fmt.Fprintf(&fields, "  %s: %s\n", name, strings.TrimSpace(val))
		}
	}
	writeField("ID", rec.Identity)
	writeField("Title", rec.Title)
	writeField("Description", rec.Description)

	names := make([]string, 0, len(rec.Fields))
	for name := range rec.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		writeField(name, rec.Fields[name])
	}

	prevBlock := ""
	if prev != nil {
		prevBlock = fmt.Sprintf(`
=== PREVIOUS ANALYSIS (reference) ===
Previous total score: %.0f/100
Previous level: %s
Previous summary: %s
Previous gaps: %s
=====================================
Compare the current story with the previous analysis and identify the
improvements the author made. The score should normally rise; if it does
not, state in "regression" what was better defined before.
`, prev.TotalScore, prev.Level, truncate(prev.Summary, priorSummaryMax), gapsDigest(prev.Gaps))
	}

	return fmt.Sprintf(`Analyze the following business requirement story.
Remember: it is one stage of a larger flow; judge what is reasonable for
this stage only.

=== STORY ===
%s=============
%s
Score the six dimensions and respond with the exact JSON shape.`, fields.String(), prevBlock)
}

// gapsDigest compacts the prior gap notes into one bounded line, in
// dimension order so the prompt is deterministic.
func gapsDigest(gaps map[string]string) string {
	var parts []string
	for _, d := range score.Dimensions {
		v := strings.TrimSpace(gaps[string(d)])
		if v == "" {
			continue
		}
		if len(v) > priorGapEachMax {
			v = v[:priorGapEachMax] + "..."
		}
		parts = append(parts, string(d)+": "+v)
	}
	return truncate(strings.Join(parts, " | "), priorGapsMax)
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
