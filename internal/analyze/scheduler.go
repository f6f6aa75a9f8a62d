package analyze

import (
	"context"
	"log"
	"sync"
	"time"

	"storyscore/internal/domain"
	"storyscore/internal/speed"
)

// DefaultWorkers matches the service's entry-tier rate limit headroom.
const DefaultWorkers = 5

// Task pairs a record with its matched prior result. Index keys the
// result map so out-of-order completion can never mix up records.
type Task struct {
	Index  int
	Record domain.Record
	Prev   *domain.HistoricalEntry
}

// Progress is one snapshot of batch progress, delivered to the observer
// after every completion from a single fan-in goroutine.
type Progress struct {
	Completed   int
	Total       int
	Speed       float64 // seconds per record, cross-run moving average
	LastElapsed float64 // seconds the most recent record took
	ETA         float64 // estimated seconds remaining, 0 when unknown
}

// Observer receives progress snapshots. It may be called from a
// goroutine other than the caller's.
type Observer func(Progress)

type completion struct {
	task    Task
	result  domain.Result
	err     error
	elapsed float64
}

// RunBatch analyzes every task through a fixed-size worker pool. Results
// are keyed by task index regardless of completion order. When any task
// reports quota exhaustion, dispatch stops, in-flight work drains, and
// the fatal error is returned together with the results collected so
// far: the caller decides what a partial batch is worth.
func RunBatch(ctx context.Context, runner *Runner, tasks []Task, workers int, est speed.Estimator, obs Observer) (map[int]domain.Result, error) {
	results := make(map[int]domain.Result, len(tasks))
	if len(tasks) == 0 {
		return results, nil
	}
	if workers < 1 {
		workers = DefaultWorkers
	}
	if workers > len(tasks) {
		workers = len(tasks)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	seedProgress(est, len(tasks), workers, obs)

	jobs := make(chan Task)
	done := make(chan completion)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case task, ok := <-jobs:
					if !ok {
						return
					}
					start := time.Now()
					result, err := runner.Analyze(ctx, task.Record, task.Prev)
					c := completion{task: task, result: result, err: err, elapsed: time.Since(start).Seconds()}
					select {
					case done <- c:
					case <-ctx.Done():
						return
					}
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, task := range tasks {
			select {
			case jobs <- task:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(done)
	}()

	// Fan-in is serialized here: one completion at a time, so progress
	// and estimator updates need no further locking.
	var fatal error
	completed := 0
	for c := range done {
		if c.err != nil {
			if fatal == nil {
				fatal = c.err
				log.Printf("analyze batch aborting: %v", c.err)
				cancel()
			}
			continue
		}
		results[c.task.Index] = c.result
		completed++

		avg, err := est.Update(c.elapsed)
		if err != nil {
			log.Printf("speed update failed (non-fatal): %v", err)
		}
		if obs != nil {
			obs(Progress{
				Completed:   completed,
				Total:       len(tasks),
				Speed:       avg,
				LastElapsed: c.elapsed,
				ETA:         etaSeconds(len(tasks)-completed, avg, workers),
			})
		}
	}

	return results, fatal
}

// seedProgress reports an initial snapshot so the observer can show an
// ETA before the first record of this run completes.
func seedProgress(est speed.Estimator, total, workers int, obs Observer) {
	if obs == nil {
		return
	}
	avg, ok := est.Current()
	if !ok {
		// No cross-run samples yet: ETA stays unknown until the first
		// completion of this run.
		obs(Progress{Completed: 0, Total: total})
		return
	}
	obs(Progress{Completed: 0, Total: total, Speed: avg, ETA: etaSeconds(total, avg, workers)})
}

func etaSeconds(remaining int, avg float64, workers int) float64 {
	if remaining <= 0 || avg <= 0 {
		return 0
	}
	return float64(remaining) * avg / float64(workers)
}
