package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"takasafi/internal/domain"
	"takasafi/internal/repository"
)

// ErrForbidden is returned when a user attempts to modify an event they do not organize.
var ErrForbidden = errors.New("not the event organizer")

// EventInput carries the caller-editable fields of an event listing.
type EventInput struct {
	Title       string
	Description string
	Location    string
	ImageURL    string
	StartsAt    time.Time
	EndsAt      time.Time
	Price       string
	IsFree      bool
	URL         string
	Category    domain.EventCategory
}

// EventService coordinates event listing operations backed by the repository.
type EventService interface {
	CreateEvent(ctx context.Context, organizer *domain.User, input EventInput) (*domain.Event, error)
	UpdateEvent(ctx context.Context, userID, eventID string, input EventInput) (*domain.Event, error)
	DeleteEvent(ctx context.Context, userID, eventID string) error
	GetEvent(ctx context.Context, id string) (*domain.Event, error)
	ListEvents(ctx context.Context, filter repository.EventFilter) ([]domain.Event, error)
}

type eventService struct {
	events repository.EventRepository
}

func NewEventService(events repository.EventRepository) EventService {
	return &eventService{events: events}
}

func (s *eventService) CreateEvent(ctx context.Context, organizer *domain.User, input EventInput) (*domain.Event, error) {
	if organizer == nil || organizer.ID == "" {
		return nil, fmt.Errorf("%w: organizer is required", ErrValidation)
	}
	if err := validateEventInput(&input); err != nil {
		return nil, err
	}

	event := &domain.Event{
		ID:          uuid.NewString(),
		Title:       input.Title,
		Description: input.Description,
		Location:    input.Location,
		ImageURL:    input.ImageURL,
		StartsAt:    input.StartsAt,
		EndsAt:      input.EndsAt,
		Price:       input.Price,
		IsFree:      input.IsFree,
		URL:         input.URL,
		Category:    input.Category,
		Organizer:   organizerName(organizer),
		OrganizerID: organizer.ID,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.events.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, userID, eventID string, input EventInput) (*domain.Event, error) {
	if err := validateEventInput(&input); err != nil {
		return nil, err
	}

	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.OrganizerID != userID {
		return nil, ErrForbidden
	}

	event.Title = input.Title
	event.Description = input.Description
	event.Location = input.Location
	event.ImageURL = input.ImageURL
	event.StartsAt = input.StartsAt
	event.EndsAt = input.EndsAt
	event.Price = input.Price
	event.IsFree = input.IsFree
	event.URL = input.URL
	event.Category = input.Category

	if err := s.events.Update(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, userID, eventID string) error {
	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return err
	}
	if event.OrganizerID != userID {
		return ErrForbidden
	}
	return s.events.Delete(ctx, eventID)
}

func (s *eventService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	return s.events.Get(ctx, id)
}

func (s *eventService) ListEvents(ctx context.Context, filter repository.EventFilter) ([]domain.Event, error) {
	return s.events.List(ctx, filter)
}

func validateEventInput(input *EventInput) error {
	input.Title = strings.TrimSpace(input.Title)
	input.Location = strings.TrimSpace(input.Location)

	if input.Title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if input.Location == "" {
		return fmt.Errorf("%w: location is required", ErrValidation)
	}
	if input.Category == "" {
		return fmt.Errorf("%w: category is required", ErrValidation)
	}
	if !domain.ValidCategory(input.Category) {
		return fmt.Errorf("%w: unknown category %q", ErrValidation, input.Category)
	}
	if !input.EndsAt.IsZero() && !input.StartsAt.IsZero() && input.EndsAt.Before(input.StartsAt) {
		return fmt.Errorf("%w: event ends before it starts", ErrValidation)
	}
	return nil
}

func organizerName(user *domain.User) string {
	if name := strings.TrimSpace(user.Name); name != "" {
		return name
	}
	return user.Email
}
