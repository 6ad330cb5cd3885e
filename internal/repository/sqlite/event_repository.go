package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"takasafi/internal/domain"
	"takasafi/internal/repository"
)

const createEventsTable = `
CREATE TABLE IF NOT EXISTS events (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	location TEXT NOT NULL,
	image_url TEXT NOT NULL DEFAULT '',
	starts_at DATETIME NOT NULL,
	ends_at DATETIME NOT NULL,
	price TEXT NOT NULL DEFAULT '',
	is_free INTEGER NOT NULL DEFAULT 1,
	url TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL,
	organizer TEXT NOT NULL,
	organizer_id TEXT NOT NULL,
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_category ON events(category);
`

type EventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) repository.EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createEventsTable); err != nil {
		return fmt.Errorf("create events table: %w", err)
	}
	return nil
}

func (r *EventRepository) Create(ctx context.Context, event *domain.Event) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO events (id, title, description, location, image_url, starts_at, ends_at, price, is_free, url, category, organizer, organizer_id, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.Title,
		event.Description,
		event.Location,
		event.ImageURL,
		event.StartsAt,
		event.EndsAt,
		event.Price,
		event.IsFree,
		event.URL,
		string(event.Category),
		event.Organizer,
		event.OrganizerID,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (r *EventRepository) Update(ctx context.Context, event *domain.Event) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE events
SET title = ?, description = ?, location = ?, image_url = ?, starts_at = ?, ends_at = ?, price = ?, is_free = ?, url = ?, category = ?
WHERE id = ?`,
		event.Title,
		event.Description,
		event.Location,
		event.ImageURL,
		event.StartsAt,
		event.EndsAt,
		event.Price,
		event.IsFree,
		event.URL,
		string(event.Category),
		event.ID,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update event rows affected: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *EventRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete event rows affected: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *EventRepository) Get(ctx context.Context, id string) (*domain.Event, error) {
	row := r.db.QueryRowContext(ctx, selectEvents+` WHERE id = ?`, id)
	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return event, nil
}

func (r *EventRepository) List(ctx context.Context, filter repository.EventFilter) ([]domain.Event, error) {
	query := selectEvents
	var conditions []string
	var args []any

	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		conditions = append(conditions, `(lower(title) LIKE ? OR lower(location) LIKE ?)`)
		args = append(args, pattern, pattern)
	}
	if filter.Category != "" {
		conditions = append(conditions, `category = ?`)
		args = append(args, string(filter.Category))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events rows: %w", err)
	}
	return events, nil
}

const selectEvents = `
SELECT id, title, description, location, image_url, starts_at, ends_at, price, is_free, url, category, organizer, organizer_id, created_at
FROM events`

func scanEvent(row interface {
	Scan(dest ...any) error
}) (*domain.Event, error) {
	var event domain.Event
	var category string
	if err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.Location,
		&event.ImageURL,
		&event.StartsAt,
		&event.EndsAt,
		&event.Price,
		&event.IsFree,
		&event.URL,
		&category,
		&event.Organizer,
		&event.OrganizerID,
		&event.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan event: %w", err)
	}
	event.Category = domain.EventCategory(category)
	return &event, nil
}
