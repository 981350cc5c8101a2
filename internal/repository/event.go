package repository

import (
	"context"
	"fmt"

	"github.com/portalevent/portal-api/internal/domain"
	"github.com/portalevent/portal-api/internal/repository/dao"
)

var (
	ErrEventNotFound   = dao.ErrEventNotFound
	ErrEventSlugExists = dao.ErrEventSlugExists
)

type EventDAO interface {
	Insert(ctx context.Context, event dao.Event) (dao.Event, error)
	Update(ctx context.Context, event dao.Event) (dao.Event, error)
	UpdateStatus(ctx context.Context, id uint, from, to string) (dao.Event, error)
	UpdatePoster(ctx context.Context, id uint, ref string) (dao.Event, error)
	FindByID(ctx context.Context, id uint) (dao.Event, error)
	FindBySlug(ctx context.Context, slug string) (dao.Event, error)
	FindByStatus(ctx context.Context, status, order string) ([]dao.Event, error)
	FindByOrganizer(ctx context.Context, organizerID uint) ([]dao.Event, error)
	CountParticipants(ctx context.Context, eventIDs []uint) (map[uint]dao.EventCounts, error)
}

type EventRepository struct {
	dao EventDAO
}

func NewEventRepository(dao EventDAO) *EventRepository {
	return &EventRepository{
		dao: dao,
	}
}

func (r *EventRepository) Create(ctx context.Context, event domain.Event) (domain.Event, error) {
	created, err := r.dao.Insert(ctx, eventDomainToDAO(event))
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return eventDAOToDomain(created), nil
}

func (r *EventRepository) Update(ctx context.Context, event domain.Event) (domain.Event, error) {
	updated, err := r.dao.Update(ctx, eventDomainToDAO(event))
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return eventDAOToDomain(updated), nil
}

func (r *EventRepository) Transition(ctx context.Context, id uint, from, to domain.EventStatus) (domain.Event, error) {
	updated, err := r.dao.UpdateStatus(ctx, id, string(from), string(to))
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.UpdateStatus -> %w", err)
	}

	return eventDAOToDomain(updated), nil
}

func (r *EventRepository) SetPoster(ctx context.Context, id uint, ref string) (domain.Event, error) {
	updated, err := r.dao.UpdatePoster(ctx, id, ref)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.UpdatePoster -> %w", err)
	}

	return eventDAOToDomain(updated), nil
}

func (r *EventRepository) FindByID(ctx context.Context, id uint) (domain.Event, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return eventDAOToDomain(found), nil
}

func (r *EventRepository) FindBySlug(ctx context.Context, slug string) (domain.Event, error) {
	found, err := r.dao.FindBySlug(ctx, slug)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.FindBySlug -> %w", err)
	}

	return eventDAOToDomain(found), nil
}

// ListActive returns the public index: active events, latest date first.
func (r *EventRepository) ListActive(ctx context.Context) ([]domain.Event, error) {
	found, err := r.dao.FindByStatus(ctx, string(domain.StatusActive), "date_time desc")
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByStatus -> %w", err)
	}

	return eventsDAOToDomain(found), nil
}

// ListPending returns the approval queue, oldest submission first.
func (r *EventRepository) ListPending(ctx context.Context) ([]domain.Event, error) {
	found, err := r.dao.FindByStatus(ctx, string(domain.StatusPending), "created_at asc")
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByStatus -> %w", err)
	}

	return eventsDAOToDomain(found), nil
}

func (r *EventRepository) ListByOrganizer(ctx context.Context, organizerID uint) ([]domain.EventSummary, error) {
	found, err := r.dao.FindByOrganizer(ctx, organizerID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByOrganizer -> %w", err)
	}

	ids := make([]uint, 0, len(found))
	for _, e := range found {
		ids = append(ids, e.ID)
	}

	counts, err := r.dao.CountParticipants(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("r.dao.CountParticipants -> %w", err)
	}

	summaries := make([]domain.EventSummary, 0, len(found))
	for _, e := range found {
		c := counts[e.ID]
		summaries = append(summaries, domain.NewEventSummary(eventDAOToDomain(e), c.Participants, c.Verified))
	}

	return summaries, nil
}

func eventDomainToDAO(e domain.Event) dao.Event {
	return dao.Event{
		ID:          e.ID,
		Title:       e.Title,
		Slug:        e.Slug,
		Description: e.Description,
		OrganizerID: e.OrganizerID,
		Category:    string(e.Category),
		DateTime:    e.DateTime,
		Location:    e.Location,
		Price:       e.Price,
		Status:      string(e.Status),
		PosterRef:   e.PosterRef,
		CreatedAt:   e.CreatedAt,
	}
}

func eventDAOToDomain(e dao.Event) domain.Event {
	return domain.Event{
		ID:          e.ID,
		Title:       e.Title,
		Slug:        e.Slug,
		Description: e.Description,
		OrganizerID: e.OrganizerID,
		Category:    domain.EventCategory(e.Category),
		DateTime:    e.DateTime,
		Location:    e.Location,
		Price:       e.Price,
		Status:      domain.EventStatus(e.Status),
		PosterRef:   e.PosterRef,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func eventsDAOToDomain(events []dao.Event) []domain.Event {
	result := make([]domain.Event, 0, len(events))
	for _, e := range events {
		result = append(result, eventDAOToDomain(e))
	}

	return result
}
