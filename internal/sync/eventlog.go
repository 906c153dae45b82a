package syncx

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// Event types recorded by the grading service. The event log is the audit
// trail for score-affecting mutations.
const (
	EventAttemptGraded     = "attempt.graded"
	EventAttemptOverridden = "attempt.overridden"
	EventAttemptDeleted    = "attempt.deleted"
)

type Event struct {
	Offset    int64
	Type      string
	Key       string // natural key: attempt id
	DataJSON  string
	CreatedAt int64
}

type EventRepo struct{ db *sql.DB }

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

func (r *EventRepo) Append(ctx context.Context, typ, key string, data any) error {
	buf, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO event_log (typ, key, data, created_at)
		 VALUES ($1,$2,$3,$4)`,
		typ, key, string(buf), time.Now().Unix())
	return err
}

// Recent returns the newest events, most recent first.
func (r *EventRepo) Recent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT offset_id, typ, key, data, created_at FROM event_log
		 ORDER BY offset_id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Offset, &e.Type, &e.Key, &e.DataJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
