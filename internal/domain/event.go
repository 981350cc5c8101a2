package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type EventCategory string

const (
	CategorySeminar     EventCategory = "seminar"
	CategoryCompetition EventCategory = "competition"
	CategoryWorkshop    EventCategory = "workshop"
)

var EventCategories = []interface{}{CategorySeminar, CategoryCompetition, CategoryWorkshop}

type EventStatus string

const (
	StatusPending  EventStatus = "pending"
	StatusActive   EventStatus = "active"
	StatusFinished EventStatus = "finished"
	StatusRejected EventStatus = "rejected"
)

// eventTransitions lists, for each status, the statuses it may move to.
var eventTransitions = map[EventStatus][]EventStatus{
	StatusPending: {StatusActive, StatusRejected},
	StatusActive:  {StatusFinished},
}

type Event struct {
	ID          uint          `json:"id"`
	Title       string        `json:"title"`
	Slug        string        `json:"slug"`
	Description string        `json:"description"`
	OrganizerID uint          `json:"organizer_id"`
	Category    EventCategory `json:"category"`
	DateTime    time.Time     `json:"date_time"`
	Location    string        `json:"location"`
	Price       int64         `json:"price"`
	Status      EventStatus   `json:"status"`
	PosterRef   string        `json:"poster_ref,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func (e Event) IsFree() bool {
	return e.Price == 0
}

// CurrentRevenue is derived from the number of verified participants, never stored.
func (e Event) CurrentRevenue(verifiedCount int64) int64 {
	return verifiedCount * e.Price
}

func (e Event) CanTransitionTo(next EventStatus) bool {
	for _, s := range eventTransitions[e.Status] {
		if s == next {
			return true
		}
	}
	return false
}

// AssignSlug sets the slug from the title plus a random suffix. An event that
// already has a slug keeps it.
func (e *Event) AssignSlug() {
	if e.Slug != "" {
		return
	}
	e.Slug = slug.Make(e.Title) + "-" + uuid.NewString()[:4]
}

// EventSummary is an event with its registration figures, as shown on the
// organizer dashboard.
type EventSummary struct {
	Event
	IsFree           bool  `json:"is_free"`
	ParticipantCount int64 `json:"participant_count"`
	VerifiedCount    int64 `json:"verified_count"`
	CurrentRevenue   int64 `json:"current_revenue"`
}

func NewEventSummary(e Event, participants, verified int64) EventSummary {
	return EventSummary{
		Event:            e,
		IsFree:           e.IsFree(),
		ParticipantCount: participants,
		VerifiedCount:    verified,
		CurrentRevenue:   e.CurrentRevenue(verified),
	}
}

// EventChanges holds the organizer-editable fields. Nil fields are left untouched.
type EventChanges struct {
	Title       *string
	Description *string
	Category    *EventCategory
	DateTime    *time.Time
	Location    *string
	Price       *int64
}

func (c EventChanges) Apply(e *Event) {
	if c.Title != nil {
		e.Title = strings.TrimSpace(*c.Title)
	}
	if c.Description != nil {
		e.Description = *c.Description
	}
	if c.Category != nil {
		e.Category = *c.Category
	}
	if c.DateTime != nil {
		e.DateTime = *c.DateTime
	}
	if c.Location != nil {
		e.Location = *c.Location
	}
	if c.Price != nil {
		e.Price = *c.Price
	}
}
