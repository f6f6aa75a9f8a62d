package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"storyscore/internal/domain"
	"storyscore/internal/score"
)

const (
	defaultAttempts         = 3
	defaultRateLimitBackoff = 30 * time.Second
	defaultRetryDelay       = 5 * time.Second
)

// Runner executes one analysis call per record with a bounded retry
// budget. Transient failures degrade to an Error result after the budget
// is spent; quota exhaustion surfaces immediately as ErrQuotaExhausted.
type Runner struct {
	Client           Client
	Attempts         int
	RateLimitBackoff time.Duration // multiplied by the attempt number
	RetryDelay       time.Duration // fixed delay for generic failures
}

// NewRunner builds a Runner with the default retry policy.
func NewRunner(client Client) *Runner {
	return &Runner{
		Client:           client,
		Attempts:         defaultAttempts,
		RateLimitBackoff: defaultRateLimitBackoff,
		RetryDelay:       defaultRetryDelay,
	}
}

// reply is the wire shape of one analysis response.
type reply struct {
	Scores       map[string]float64 `json:"scores"`
	TechLayers   string             `json:"tech_layers"`
	Summary      string             `json:"summary"`
	Gaps         map[string]string  `json:"gaps"`
	Questions    string             `json:"questions"`
	Improvements string             `json:"improvements"`
	Regression   string             `json:"regression"`
}

// Analyze sends one record (plus its matched prior result, if any) to
// the service. The returned error is non-nil only for the fatal quota
// condition; every other failure mode produces an Error result.
func (r *Runner) Analyze(ctx context.Context, rec domain.Record, prev *domain.HistoricalEntry) (domain.Result, error) {
	userPrompt := buildAnalysisPrompt(rec, prev)

	for attempt := 1; attempt <= r.Attempts; attempt++ {
		if ctx.Err() != nil {
			return errorResult(rec, "canceled before completion"), nil
		}

		raw, err := r.Client.Complete(ctx, systemPrompt, userPrompt)
		if err != nil {
			if ctx.Err() != nil {
				return errorResult(rec, "canceled before completion"), nil
			}
			switch classifyError(err) {
			case kindQuota:
				return domain.Result{}, fmt.Errorf("%w: %v", ErrQuotaExhausted, err)
			case kindRateLimit:
				wait := r.RateLimitBackoff * time.Duration(attempt)
				log.Printf("analyze rate-limited group=%s id=%s attempt=%d wait=%s", rec.Group, rec.Identity, attempt, wait)
				if !sleepCtx(ctx, wait) {
					return errorResult(rec, "canceled before completion"), nil
				}
			default:
				if attempt == r.Attempts {
					return errorResult(rec, err.Error()), nil
				}
				if !sleepCtx(ctx, r.RetryDelay) {
					return errorResult(rec, "canceled before completion"), nil
				}
			}
			continue
		}

		parsed, perr := parseReply(raw)
		if perr != nil {
			// Malformed JSON retries immediately; the model usually
			// self-corrects on a fresh sample.
			log.Printf("analyze malformed reply group=%s id=%s attempt=%d err=%v", rec.Group, rec.Identity, attempt, perr)
			if attempt == r.Attempts {
				return errorResult(rec, "malformed reply: "+perr.Error()), nil
			}
			continue
		}
		return resultFromReply(rec, parsed), nil
	}

	return errorResult(rec, "retry budget exhausted"), nil
}

// sleepCtx sleeps for d unless the context ends first. Reports whether
// the full sleep completed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func parseReply(raw string) (reply, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var out reply
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return reply{}, err
	}
	if out.Scores == nil {
		return reply{}, fmt.Errorf("reply has no scores object")
	}
	return out, nil
}

func resultFromReply(rec domain.Record, rep reply) domain.Result {
	total := score.TotalScore(rep.Scores)
	result := domain.Result{
		Group:        rec.Group,
		Position:     rec.Position,
		Identity:     rec.Identity,
		Scores:       rep.Scores,
		TotalScore:   total,
		Level:        score.LevelForScore(total),
		TechLayers:   rep.TechLayers,
		Summary:      rep.Summary,
		Gaps:         rep.Gaps,
		Questions:    rep.Questions,
		Improvements: rep.Improvements,
		Regression:   rep.Regression,
	}
	if result.Gaps == nil {
		result.Gaps = map[string]string{}
	}
	if strings.TrimSpace(result.Improvements) == "" {
		result.Improvements = "N/A"
	}
	if strings.TrimSpace(result.Regression) == "" {
		result.Regression = "N/A"
	}
	return result
}

// errorResult keeps record-level failures inside the batch: zero scores,
// the distinct Error level, and a narrative that explains the failure.
func errorResult(rec domain.Record, msg string) domain.Result {
	scores := map[string]float64{}
	gaps := map[string]string{}
	for _, d := range score.Dimensions {
		scores[string(d)] = 0
		gaps[string(d)] = "Analysis failed"
	}
	return domain.Result{
		Group:        rec.Group,
		Position:     rec.Position,
		Identity:     rec.Identity,
		Scores:       scores,
		TotalScore:   0,
		Level:        domain.LevelError,
		TechLayers:   "Not available",
		Summary:      "Analysis failed: " + msg,
		Gaps:         gaps,
		Questions:    "Not available",
		Improvements: "N/A",
		Regression:   "N/A",
	}
}
