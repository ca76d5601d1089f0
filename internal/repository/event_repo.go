package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"playback_lights/internal/models"

	"github.com/google/uuid"
)

type EventSQLite struct {
	db *sql.DB
}

func NewEventSQLite(db *sql.DB) *EventSQLite { return &EventSQLite{db: db} }

var _ EventRepo = (*EventSQLite)(nil)

const (
	insertSyncEventSQL = `
		INSERT INTO sync_events (id, occurred_at, type, message, meta)
		VALUES (?, ?, ?, ?, ?)
	`
	selectSyncEventsSQL = `SELECT id, occurred_at, type, message, meta FROM sync_events`

	sqliteTimestampLayout = "2006-01-02 15:04:05"
)

// Append inserts an event, filling EventID and OccurredAt when empty.
func (r *EventSQLite) Append(ctx context.Context, e models.SyncEvent) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}

	var meta *string
	if e.Metadata != nil {
		if b, err := json.Marshal(e.Metadata); err == nil {
			s := string(b)
			meta = &s
		}
	}

	_, err := r.db.ExecContext(ctx, insertSyncEventSQL,
		e.EventID,
		e.OccurredAt.UTC().Format(sqliteTimestampLayout),
		normalizeType(e.Type),
		e.Description,
		meta,
	)
	if err != nil {
		return fmt.Errorf("insert sync event: %w", err)
	}
	return nil
}

// List returns events in [from, to] (zero bounds are open), optionally of one type, oldest first.
func (r *EventSQLite) List(ctx context.Context, from, to time.Time, typ string) ([]models.SyncEvent, error) {
	var (
		conds []string
		args  []any
	)
	if !from.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, from.UTC().Format(sqliteTimestampLayout))
	}
	if !to.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, to.UTC().Format(sqliteTimestampLayout))
	}
	if typ = normalizeType(typ); typ != "" {
		conds = append(conds, "type = ?")
		args = append(args, typ)
	}

	q := selectSyncEventsSQL
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY occurred_at ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.SyncEvent, 0, 64)
	for rows.Next() {
		var ev models.SyncEvent
		var meta sql.NullString
		if err := rows.Scan(&ev.EventID, &ev.OccurredAt, &ev.Type, &ev.Description, &meta); err != nil {
			return nil, err
		}
		ev.OccurredAt = ev.OccurredAt.UTC()
		if meta.Valid && meta.String != "" {
			var v any
			if err := json.Unmarshal([]byte(meta.String), &v); err == nil {
				ev.Metadata = v
			} else {
				ev.Metadata = meta.String
			}
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func normalizeType(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
