package speed

// Estimator tracks the cross-run moving average of per-record analysis
// time, used to seed the ETA before the first record of a run completes.
type Estimator interface {
	// Current returns the persisted average in seconds. ok is false when
	// no samples exist yet.
	Current() (avg float64, ok bool)
	// Update folds one elapsed measurement into the moving average and
	// returns the new average.
	Update(elapsedSeconds float64) (float64, error)
}

// Memory is an in-process Estimator for tests and for runs where no
// store is available. Not safe for concurrent use; the scheduler's
// fan-in is serialized, which is the only caller.
type Memory struct {
	Avg   float64
	Count int
}

// Current implements Estimator.
func (m *Memory) Current() (float64, bool) {
	return m.Avg, m.Count > 0
}

// Update implements Estimator with the incremental moving average
// new = (avg*n + elapsed) / (n+1).
func (m *Memory) Update(elapsedSeconds float64) (float64, error) {
	m.Avg = (m.Avg*float64(m.Count) + elapsedSeconds) / float64(m.Count+1)
	m.Count++
	return m.Avg, nil
}
