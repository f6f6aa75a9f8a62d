package notify

import (
	"errors"
	"strings"
	"testing"

	"github.com/slack-go/slack"

	"storyscore/internal/domain"
)

type recordingPoster struct {
	channel string
	calls   int
	err     error
}

func (r *recordingPoster) PostMessage(channelID string, options ...slack.MsgOption) (string, string, error) {
	r.channel = channelID
	r.calls++
	return "", "", r.err
}

func testSummary() domain.RunSummary {
	return domain.RunSummary{
		Total: 3, Analyzed: 2, Average: 70, Min: 60, Max: 80,
		ByLevel: map[domain.Level]int{domain.LevelComplete: 1, domain.LevelAcceptable: 1, domain.LevelError: 1},
		Groups: map[string]domain.GroupStats{
			"payments": {Count: 2, Average: 70, WeakestDim: "regulatory"},
		},
	}
}

func TestRunCompletedPosts(t *testing.T) {
	poster := &recordingPoster{}
	n := NewWithPoster(poster, "C123")
	n.RunCompleted(testSummary(), "/tmp/out_scored_v1")
	if poster.calls != 1 {
		t.Fatalf("calls = %d, want 1", poster.calls)
	}
	if poster.channel != "C123" {
		t.Errorf("channel = %q", poster.channel)
	}
}

func TestRunCompletedDisabledIsNoop(t *testing.T) {
	n := New("", "C123")
	// Must not panic or post.
	n.RunCompleted(testSummary(), "/tmp/out")
}

func TestRunCompletedSwallowsPostError(t *testing.T) {
	poster := &recordingPoster{err: errors.New("channel_not_found")}
	n := NewWithPoster(poster, "C123")
	n.RunCompleted(testSummary(), "/tmp/out")
	if poster.calls != 1 {
		t.Fatalf("calls = %d, want 1", poster.calls)
	}
}

func TestFormatSummary(t *testing.T) {
	text := formatSummary(testSummary(), "/tmp/out_scored_v2")
	for _, want := range []string{
		"2/3 records analyzed",
		"Average score: 70.0",
		"Acceptable: 1, Complete: 1, Error: 1",
		"payments: 2 records, avg 70.0 (weakest: Regulatory & Security)",
		"/tmp/out_scored_v2",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("summary missing %q:\n%s", want, text)
		}
	}
}
