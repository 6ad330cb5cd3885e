package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"takasafi/internal/domain"
	"takasafi/internal/repository"
)

type fakeEventRepo struct {
	mu   sync.Mutex
	byID map[string]*domain.Event
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{byID: make(map[string]*domain.Event)}
}

func (f *fakeEventRepo) Init(ctx context.Context) error { return nil }

func (f *fakeEventRepo) Create(ctx context.Context, event *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *event
	f.byID[event.ID] = &clone
	return nil
}

func (f *fakeEventRepo) Update(ctx context.Context, event *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[event.ID]; !ok {
		return repository.ErrNotFound
	}
	clone := *event
	f.byID[event.ID] = &clone
	return nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeEventRepo) Get(ctx context.Context, id string) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	event, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *event
	return &clone, nil
}

func (f *fakeEventRepo) List(ctx context.Context, filter repository.EventFilter) ([]domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var events []domain.Event
	for _, event := range f.byID {
		events = append(events, *event)
	}
	return events, nil
}

func validInput() EventInput {
	now := time.Now().UTC()
	return EventInput{
		Title:    "Nairobi River Cleanup",
		Location: "Nairobi River, KE",
		Category: domain.CategoryCleanup,
		StartsAt: now.Add(24 * time.Hour),
		EndsAt:   now.Add(26 * time.Hour),
		IsFree:   true,
	}
}

func organizer() *domain.User {
	return &domain.User{ID: "user-1", Email: "ann@x.com", Name: "Ann"}
}

func TestEventService_CreateEvent(t *testing.T) {
	t.Parallel()

	repo := newFakeEventRepo()
	svc := NewEventService(repo)

	event, err := svc.CreateEvent(context.Background(), organizer(), validInput())
	require.NoError(t, err)
	require.NotEmpty(t, event.ID)
	assert.Equal(t, "Ann", event.Organizer)
	assert.Equal(t, "user-1", event.OrganizerID)
	assert.False(t, event.CreatedAt.IsZero())

	stored, err := repo.Get(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, event.Title, stored.Title)
}

func TestEventService_CreateEvent_OrganizerFallsBackToEmail(t *testing.T) {
	t.Parallel()

	svc := NewEventService(newFakeEventRepo())

	event, err := svc.CreateEvent(context.Background(), &domain.User{ID: "u2", Email: "bob@x.com"}, validInput())
	require.NoError(t, err)
	assert.Equal(t, "bob@x.com", event.Organizer)
}

func TestEventService_CreateEvent_Validation(t *testing.T) {
	t.Parallel()

	svc := NewEventService(newFakeEventRepo())
	ctx := context.Background()

	_, err := svc.CreateEvent(ctx, nil, validInput())
	assert.ErrorIs(t, err, ErrValidation)

	input := validInput()
	input.Title = "  "
	_, err = svc.CreateEvent(ctx, organizer(), input)
	assert.ErrorIs(t, err, ErrValidation)

	input = validInput()
	input.Location = ""
	_, err = svc.CreateEvent(ctx, organizer(), input)
	assert.ErrorIs(t, err, ErrValidation)

	input = validInput()
	input.Category = "Bake Sale"
	_, err = svc.CreateEvent(ctx, organizer(), input)
	assert.ErrorIs(t, err, ErrValidation)

	input = validInput()
	input.EndsAt = input.StartsAt.Add(-time.Hour)
	_, err = svc.CreateEvent(ctx, organizer(), input)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestEventService_UpdateEvent_OwnershipEnforced(t *testing.T) {
	t.Parallel()

	svc := NewEventService(newFakeEventRepo())
	ctx := context.Background()

	event, err := svc.CreateEvent(ctx, organizer(), validInput())
	require.NoError(t, err)

	input := validInput()
	input.Title = "Updated Title"

	_, err = svc.UpdateEvent(ctx, "someone-else", event.ID, input)
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.UpdateEvent(ctx, "user-1", event.ID, input)
	require.NoError(t, err)
	assert.Equal(t, "Updated Title", updated.Title)
	assert.Equal(t, event.ID, updated.ID)
	assert.Equal(t, event.OrganizerID, updated.OrganizerID)
	assert.Equal(t, event.CreatedAt, updated.CreatedAt)
}

func TestEventService_UpdateEvent_NotFound(t *testing.T) {
	t.Parallel()

	svc := NewEventService(newFakeEventRepo())

	_, err := svc.UpdateEvent(context.Background(), "user-1", "missing", validInput())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestEventService_DeleteEvent(t *testing.T) {
	t.Parallel()

	svc := NewEventService(newFakeEventRepo())
	ctx := context.Background()

	event, err := svc.CreateEvent(ctx, organizer(), validInput())
	require.NoError(t, err)

	err = svc.DeleteEvent(ctx, "someone-else", event.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, svc.DeleteEvent(ctx, "user-1", event.ID))

	_, err = svc.GetEvent(ctx, event.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
