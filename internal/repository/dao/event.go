package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrEventNotFound   = errors.New("event not found")
	ErrEventSlugExists = errors.New("event slug already exists")
)

type Event struct {
	ID          uint   `gorm:"primaryKey"`
	Title       string `gorm:"not null"`
	Slug        string `gorm:"uniqueIndex:uni_events_slug;not null"`
	Description string
	OrganizerID uint      `gorm:"index;not null"`
	Organizer   User      `gorm:"foreignKey:OrganizerID;constraint:OnDelete:CASCADE"`
	Category    string    `gorm:"not null"` // "seminar", "competition" or "workshop"
	DateTime    time.Time `gorm:"not null"`
	Location    string    `gorm:"not null"`
	Price       int64     `gorm:"not null;default:0"`
	Status      string    `gorm:"index;not null"`
	PosterRef   string
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// EventCounts holds per-event registration figures.
type EventCounts struct {
	EventID      uint
	Participants int64
	Verified     int64
}

type EventDAO struct {
	db *gorm.DB
}

func NewEventDAO(db *gorm.DB) *EventDAO {
	return &EventDAO{
		db: db,
	}
}

func (d *EventDAO) Insert(ctx context.Context, event Event) (Event, error) {
	result := d.db.WithContext(ctx).Omit("Organizer").Create(&event)
	if result.Error != nil {
		if isUniqueViolation(result.Error, "uni_events_slug") {
			return Event{}, ErrEventSlugExists
		}

		return Event{}, result.Error
	}

	return event, nil
}

// Update writes the editable fields back. Slug, organizer and creation time
// are never part of an update.
func (d *EventDAO) Update(ctx context.Context, event Event) (Event, error) {
	result := d.db.WithContext(ctx).Model(&Event{ID: event.ID}).
		Select("title", "description", "category", "date_time", "location", "price").
		Updates(Event{
			Title:       event.Title,
			Description: event.Description,
			Category:    event.Category,
			DateTime:    event.DateTime,
			Location:    event.Location,
			Price:       event.Price,
		})
	if result.Error != nil {
		return Event{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Event{}, ErrEventNotFound
	}

	return d.FindByID(ctx, event.ID)
}

func (d *EventDAO) UpdatePoster(ctx context.Context, id uint, ref string) (Event, error) {
	result := d.db.WithContext(ctx).Model(&Event{ID: id}).Update("poster_ref", ref)
	if result.Error != nil {
		return Event{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Event{}, ErrEventNotFound
	}

	return d.FindByID(ctx, id)
}

// UpdateStatus moves an event from one status to another. It returns
// ErrEventNotFound when no event with the given id is in status from.
func (d *EventDAO) UpdateStatus(ctx context.Context, id uint, from, to string) (Event, error) {
	result := d.db.WithContext(ctx).Model(&Event{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return Event{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Event{}, ErrEventNotFound
	}

	return d.FindByID(ctx, id)
}

func (d *EventDAO) FindByID(ctx context.Context, id uint) (Event, error) {
	var event Event

	result := d.db.WithContext(ctx).First(&event, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Event{}, ErrEventNotFound
		}

		return Event{}, result.Error
	}

	return event, nil
}

func (d *EventDAO) FindBySlug(ctx context.Context, slug string) (Event, error) {
	var event Event

	result := d.db.WithContext(ctx).First(&event, "slug = ?", slug)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Event{}, ErrEventNotFound
		}

		return Event{}, result.Error
	}

	return event, nil
}

// FindByStatus returns events in the given status using the given order clause.
func (d *EventDAO) FindByStatus(ctx context.Context, status, order string) ([]Event, error) {
	var events []Event

	result := d.db.WithContext(ctx).Where("status = ?", status).Order(order).Find(&events)
	if result.Error != nil {
		return nil, result.Error
	}

	return events, nil
}

func (d *EventDAO) FindByOrganizer(ctx context.Context, organizerID uint) ([]Event, error) {
	var events []Event

	result := d.db.WithContext(ctx).
		Where("organizer_id = ?", organizerID).
		Order("created_at desc").
		Find(&events)
	if result.Error != nil {
		return nil, result.Error
	}

	return events, nil
}

// CountParticipants returns participant and verified counts for each of the
// given events. Events without participants are absent from the result.
func (d *EventDAO) CountParticipants(ctx context.Context, eventIDs []uint) (map[uint]EventCounts, error) {
	counts := make(map[uint]EventCounts, len(eventIDs))
	if len(eventIDs) == 0 {
		return counts, nil
	}

	var rows []EventCounts
	result := d.db.WithContext(ctx).Model(&Participant{}).
		Select("event_id, COUNT(*) AS participants, "+
			"COUNT(CASE WHEN is_verified THEN 1 END) AS verified").
		Where("event_id IN ?", eventIDs).
		Group("event_id").
		Scan(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	for _, row := range rows {
		counts[row.EventID] = row
	}

	return counts, nil
}
