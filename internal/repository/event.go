package repository

import (
	"context"

	"takasafi/internal/domain"
)

// EventFilter narrows an event listing query. Zero values match everything.
type EventFilter struct {
	// Search matches a lowercase substring of the title or location.
	Search string
	// Category, when set, must match the event category exactly.
	Category domain.EventCategory
}

// EventRepository exposes persistence operations for Event listings.
type EventRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, event *domain.Event) error
	Update(ctx context.Context, event *domain.Event) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*domain.Event, error)
	List(ctx context.Context, filter EventFilter) ([]domain.Event, error)
}
