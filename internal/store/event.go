package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event is a recorded audio cue.
type Event struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Distance  float64   `json:"distance"`
	CreatedAt time.Time `json:"created_at"`
}

// EventRepository stores fired cues.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Create inserts an event, assigning an ID and timestamp when unset.
func (r *EventRepository) Create(e *Event) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO events (id, kind, distance, created_at) VALUES (?, ?, ?, ?)`,
		e.ID, e.Kind, e.Distance, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// GetByID retrieves an event by its ID.
func (r *EventRepository) GetByID(id string) (*Event, error) {
	e := &Event{}
	err := r.db.QueryRow(
		`SELECT id, kind, distance, created_at FROM events WHERE id = ?`, id,
	).Scan(&e.ID, &e.Kind, &e.Distance, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// List returns the most recent events, newest first. A limit of zero or
// less returns every event.
func (r *EventRepository) List(limit int) ([]*Event, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.Query(
		`SELECT id, kind, distance, created_at FROM events
		 ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		e := &Event{}
		if err := rows.Scan(&e.ID, &e.Kind, &e.Distance, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// Count returns how many events of kind were recorded. An empty kind
// counts every event.
func (r *EventRepository) Count(kind string) (int, error) {
	var n int
	var err error
	if kind == "" {
		err = r.db.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&n)
	} else {
		err = r.db.QueryRow(`SELECT COUNT(*) FROM events WHERE kind = ?`, kind).Scan(&n)
	}
	return n, err
}

// DeleteBefore removes events older than t and reports how many were removed.
func (r *EventRepository) DeleteBefore(t time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM events WHERE created_at < ?`, t)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
