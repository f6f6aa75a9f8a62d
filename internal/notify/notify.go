package notify

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/slack-go/slack"

	"storyscore/internal/domain"
	"storyscore/internal/score"
)

// Poster is the slice of the Slack API the notifier uses. The real
// client satisfies it; tests substitute a recorder.
type Poster interface {
	PostMessage(channelID string, options ...slack.MsgOption) (string, string, error)
}

// Notifier posts a run summary to a Slack channel. Zero-value Notifier
// (no client) is a no-op, so callers never branch on configuration.
type Notifier struct {
	client  Poster
	channel string
}

// New builds a Notifier for the given bot token and channel. An empty
// token disables posting.
func New(botToken, channelID string) *Notifier {
	if botToken == "" {
		return &Notifier{}
	}
	return &Notifier{client: slack.New(botToken), channel: channelID}
}

// NewWithPoster is for tests.
func NewWithPoster(p Poster, channelID string) *Notifier {
	return &Notifier{client: p, channel: channelID}
}

// RunCompleted posts the run summary. Posting failures are logged and
// swallowed: notification is best-effort and must never fail a run that
// already produced its output.
func (n *Notifier) RunCompleted(summary domain.RunSummary, outDir string) {
	if n == nil || n.client == nil {
		return
	}
	_, _, err := n.client.PostMessage(n.channel,
		slack.MsgOptionText(formatSummary(summary, outDir), false),
	)
	if err != nil {
		log.Printf("slack notify failed (non-fatal): %v", err)
		return
	}
	log.Printf("slack notify posted channel=%s", n.channel)
}

func formatSummary(s domain.RunSummary, outDir string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Story analysis finished* — %d/%d records analyzed\n", s.Analyzed, s.Total)
	fmt.Fprintf(&b, "Average score: %.1f (min %.1f, max %.1f)\n", s.Average, s.Min, s.Max)

	if len(s.ByLevel) > 0 {
		levels := make([]string, 0, len(s.ByLevel))
		for level := range s.ByLevel {
			levels = append(levels, string(level))
		}
		sort.Strings(levels)
		var parts []string
		for _, level := range levels {
			parts = append(parts, fmt.Sprintf("%s: %d", level, s.ByLevel[domain.Level(level)]))
		}
		fmt.Fprintf(&b, "Levels: %s\n", strings.Join(parts, ", "))
	}

	groups := make([]string, 0, len(s.Groups))
	for g := range s.Groups {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	for _, g := range groups {
		st := s.Groups[g]
		line := fmt.Sprintf("• %s: %d records, avg %.1f", g, st.Count, st.Average)
		if st.WeakestDim != "" {
			line += fmt.Sprintf(" (weakest: %s)", dimLabel(st.WeakestDim))
		}
		fmt.Fprintf(&b, "%s\n", line)
	}

	fmt.Fprintf(&b, "Output: %s", outDir)
	return b.String()
}

func dimLabel(dim string) string {
	if label, ok := score.Labels[score.Dimension(dim)]; ok {
		return label
	}
	return dim
}
