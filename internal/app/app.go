package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"storyscore/internal/analyze"
	"storyscore/internal/batch"
	"storyscore/internal/config"
	"storyscore/internal/history"
	"storyscore/internal/notify"
	"storyscore/internal/report"
	"storyscore/internal/score"
	"storyscore/internal/speed"
	"storyscore/internal/storage/sqlite"
	"storyscore/internal/tabular"

	"github.com/robfig/cron/v3"
)

// Options carries the per-invocation flags; everything else comes from
// the config file.
type Options struct {
	InputDir    string
	OutputDir   string // overrides cfg.OutputDir when set
	PreviousDir string // prior run's scored output, empty for a first run
	Group       string // restrict to one group
	Limit       int    // cap total records, 0 for no cap
}

// Run executes one full analysis pass: load the batch, reconcile it
// against the previous run, analyze every record concurrently, then
// write the scored output and notify. On quota exhaustion nothing is
// written; a partially scored output would silently become the next
// run's history.
func Run(ctx context.Context, cfg config.Config, opts Options) error {
	records, err := batch.Load(opts.InputDir, opts.Group, opts.Limit, cfg.MaxRecordsPerRun)
	if err != nil {
		return err
	}
	log.Printf("run input=%s records=%d", opts.InputDir, len(records))

	idx, err := loadHistory(opts.PreviousDir, cfg.IdentityPrefix)
	if err != nil {
		return err
	}

	policy := history.MatchPolicy{
		TitleWeight:       cfg.MatchTitleWeight,
		DescriptionWeight: cfg.MatchDescriptionWeight,
		Threshold:         cfg.MatchThreshold,
	}
	tasks := make([]analyze.Task, len(records))
	matched := 0
	for i, rec := range records {
		prev := idx.FindMatch(rec, policy)
		if prev != nil {
			matched++
		}
		tasks[i] = analyze.Task{Index: i, Record: rec, Prev: prev}
	}
	log.Printf("reconciled history=%d matched=%d", idx.Len(), matched)

	client := analyze.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.Model)
	runner := analyze.NewRunner(client)
	runner.Attempts = cfg.RetryAttempts
	runner.RateLimitBackoff = time.Duration(cfg.RateLimitBackoffSeconds) * time.Second
	runner.RetryDelay = time.Duration(cfg.RetryDelaySeconds) * time.Second

	est, closeEst := openEstimator(cfg.DBPath)
	defer closeEst()

	results, fatal := analyze.RunBatch(ctx, runner, tasks, cfg.MaxWorkers, est, logProgress)
	if fatal != nil {
		if errors.Is(fatal, analyze.ErrQuotaExhausted) {
			return fmt.Errorf("run aborted, %d/%d records kept unwritten: %w", len(results), len(records), fatal)
		}
		return fatal
	}

	summary := score.Summarize(results)
	if narratives, nerr := analyze.ExecutiveNarratives(ctx, client, results); nerr != nil {
		log.Printf("executive narratives failed (non-fatal): %v", nerr)
	} else {
		summary.Narratives = narratives
	}

	outBase := cfg.OutputDir
	if opts.OutputDir != "" {
		outBase = opts.OutputDir
	}
	if err := os.MkdirAll(outBase, 0o755); err != nil {
		return fmt.Errorf("creating output base dir: %w", err)
	}
	outDir, err := report.Write(outBase, filepath.Base(filepath.Clean(opts.InputDir)), records, results, summary)
	if err != nil {
		return err
	}

	notify.New(cfg.SlackBotToken, cfg.SlackChannelID).RunCompleted(summary, outDir)
	log.Printf("run finished analyzed=%d/%d average=%.1f output=%s", summary.Analyzed, summary.Total, summary.Average, outDir)
	return nil
}

// RunOnSchedule re-runs the analysis on a 5-field cron schedule
// (minute hour day-of-month month day-of-week). Blocks forever; a
// failed run is logged and the schedule keeps going.
func RunOnSchedule(cfg config.Config, opts Options) error {
	schedule := strings.TrimSpace(cfg.Schedule)
	if schedule == "" {
		return fmt.Errorf("schedule mode requires 'schedule' in config")
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		return fmt.Errorf("invalid schedule '%s': %w", schedule, err)
	}
	log.Printf("scheduled runs enabled (cron: %s, timezone: %s)", schedule, cfg.Timezone)

	for {
		now := time.Now().In(cfg.Location)
		next := sched.Next(now)
		wait := next.Sub(now)
		log.Printf("next run at %s (in %s)", next.Format("Mon Jan 2 15:04"), wait.Round(time.Minute))
		time.Sleep(wait)

		if err := Run(context.Background(), cfg, opts); err != nil {
			log.Printf("scheduled run failed: %v", err)
		}
	}
}

// loadHistory builds the reconciliation index from a previous run's
// output directory. Empty dir means a first run: every record analyzes
// without a prior counterpart.
func loadHistory(dir, prefix string) (*history.Index, error) {
	if dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading previous run dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var tables []tabular.Table
	for _, name := range names {
		tbl, err := tabular.ReadCSV(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		tables = append(tables, tbl)
	}
	return history.BuildIndex(tables, nil, prefix), nil
}

// openEstimator opens the cross-run speed store. A broken store degrades
// to an in-memory estimator: losing the persisted average costs one
// run's ETA quality, never the run.
func openEstimator(dbPath string) (speed.Estimator, func()) {
	store, err := sqlite.Open(dbPath)
	if err != nil {
		log.Printf("speed store unavailable (non-fatal): %v", err)
		return &speed.Memory{}, func() {}
	}
	return store, func() {
		if err := store.Close(); err != nil {
			log.Printf("closing speed store: %v", err)
		}
	}
}

func logProgress(p analyze.Progress) {
	if p.Completed == 0 {
		if p.ETA > 0 {
			log.Printf("progress 0/%d eta=%s (from previous runs)", p.Total, fmtETA(p.ETA))
		} else {
			log.Printf("progress 0/%d", p.Total)
		}
		return
	}
	log.Printf("progress %d/%d last=%.1fs avg=%.1fs eta=%s", p.Completed, p.Total, p.LastElapsed, p.Speed, fmtETA(p.ETA))
}

func fmtETA(seconds float64) string {
	if seconds <= 0 {
		return "unknown"
	}
	return time.Duration(seconds * float64(time.Second)).Round(time.Second).String()
}
