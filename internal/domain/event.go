package domain

import "time"

type EventCategory string

const (
	CategoryCleanup    EventCategory = "Cleanup Drive"
	CategoryRecycling  EventCategory = "Recycling Workshop"
	CategorySeminar    EventCategory = "Educational Seminar"
	CategoryInspection EventCategory = "Waste Inspection"
	CategoryCommunity  EventCategory = "Community Meeting"
)

// Categories lists the supported event categories in display order.
func Categories() []EventCategory {
	return []EventCategory{
		CategoryCleanup,
		CategoryRecycling,
		CategorySeminar,
		CategoryInspection,
		CategoryCommunity,
	}
}

// ValidCategory reports whether the given value is one of the known categories.
func ValidCategory(c EventCategory) bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// Event represents a community event listing.
type Event struct {
	ID          string
	Title       string
	Description string
	Location    string
	ImageURL    string
	StartsAt    time.Time
	EndsAt      time.Time
	Price       string
	IsFree      bool
	URL         string
	Category    EventCategory
	Organizer   string
	OrganizerID string
	CreatedAt   time.Time
}
