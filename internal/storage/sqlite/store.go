package sqlite

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// Store persists the cross-run speed record in a single-row SQLite
// table. It is not a correctness-critical resource: concurrent external
// writes resolve last-writer-wins, and unreadable state is treated as
// if no samples existed.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the store at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS speed_record (
		id           INTEGER PRIMARY KEY CHECK (id = 1),
		avg_seconds  REAL NOT NULL DEFAULT 0,
		sample_count INTEGER NOT NULL DEFAULT 0,
		updated_at   DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Current implements speed.Estimator.
func (s *Store) Current() (float64, bool) {
	avg, count := s.load()
	return avg, count > 0
}

// Update implements speed.Estimator with the incremental moving average
// new = (avg*n + elapsed) / (n+1), persisted once per completed record.
func (s *Store) Update(elapsedSeconds float64) (float64, error) {
	avg, count := s.load()
	newAvg := (avg*float64(count) + elapsedSeconds) / float64(count+1)
	_, err := s.db.Exec(
		`INSERT INTO speed_record (id, avg_seconds, sample_count, updated_at)
		 VALUES (1, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(id) DO UPDATE SET avg_seconds = excluded.avg_seconds,
		   sample_count = excluded.sample_count, updated_at = excluded.updated_at`,
		newAvg, count+1,
	)
	if err != nil {
		return newAvg, err
	}
	return newAvg, nil
}

// load reads the persisted record, degrading corrupt or absent state to
// zero samples.
func (s *Store) load() (float64, int) {
	var avg float64
	var count int
	err := s.db.QueryRow(`SELECT avg_seconds, sample_count FROM speed_record WHERE id = 1`).Scan(&avg, &count)
	if err != nil || count < 0 || avg < 0 {
		return 0, 0
	}
	return avg, count
}
