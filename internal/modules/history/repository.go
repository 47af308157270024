package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Entry is one logged basket valuation.
type Entry struct {
	RecordedAt time.Time `json:"recorded_at"`
	Value      float64   `json:"value"`
}

// Repository is the append-only valuation log.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a history repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("component", "history_repository").Logger(),
	}
}

// Append records a valuation.
func (r *Repository) Append(recordedAt time.Time, value float64) error {
	_, err := r.db.Exec(
		`INSERT INTO etf_history (recorded_at, value) VALUES (?, ?)`,
		recordedAt.UTC().Format(time.RFC3339),
		value,
	)
	if err != nil {
		return fmt.Errorf("failed to append history entry: %w", err)
	}

	r.log.Debug().Time("recorded_at", recordedAt).Float64("value", value).Msg("History entry appended")
	return nil
}

// List returns the most recent entries, newest first. limit <= 0 returns
// everything.
func (r *Repository) List(limit int) ([]Entry, error) {
	query := `SELECT recorded_at, value FROM etf_history ORDER BY recorded_at DESC, id DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var raw string
		var entry Entry
		if err := rows.Scan(&raw, &entry.Value); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entry.RecordedAt, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("invalid history timestamp %q: %w", raw, err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
