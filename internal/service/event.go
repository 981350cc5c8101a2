package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"go.uber.org/zap"

	"github.com/portalevent/portal-api/internal/domain"
	"github.com/portalevent/portal-api/internal/notify"
	"github.com/portalevent/portal-api/internal/repository"
)

const slugAttempts = 3

type EventRepository interface {
	Create(ctx context.Context, event domain.Event) (domain.Event, error)
	Update(ctx context.Context, event domain.Event) (domain.Event, error)
	Transition(ctx context.Context, id uint, from, to domain.EventStatus) (domain.Event, error)
	FindByID(ctx context.Context, id uint) (domain.Event, error)
	FindBySlug(ctx context.Context, slug string) (domain.Event, error)
	ListActive(ctx context.Context) ([]domain.Event, error)
	ListPending(ctx context.Context) ([]domain.Event, error)
	ListByOrganizer(ctx context.Context, organizerID uint) ([]domain.EventSummary, error)
}

// Notifier hands a notification off for delivery without waiting for it.
type Notifier interface {
	Dispatch(n notify.Notification)
}

type EventService struct {
	repo      EventRepository
	users     UserRepository
	notifier  Notifier
	publicURL string
}

func NewEventService(repo EventRepository, users UserRepository, notifier Notifier, publicURL string) *EventService {
	return &EventService{
		repo:      repo,
		users:     users,
		notifier:  notifier,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// Submit stores a new event owned by actor. Events submitted by an admin go
// live immediately, everything else waits for approval.
func (s *EventService) Submit(ctx context.Context, actor domain.User, event domain.Event) (domain.Event, error) {
	if !actor.IsAuthenticated() {
		return domain.Event{}, ErrUnauthenticated
	}
	if !actor.CanSubmitEvents() {
		return domain.Event{}, ErrForbidden
	}

	event.Title = strings.TrimSpace(event.Title)
	if err := validateEvent(event); err != nil {
		return domain.Event{}, err
	}

	event.ID = 0
	event.OrganizerID = actor.ID
	event.Status = domain.StatusPending
	if actor.IsAdmin {
		event.Status = domain.StatusActive
	}

	var created domain.Event
	var err error
	for attempt := 0; attempt < slugAttempts; attempt++ {
		event.Slug = ""
		event.AssignSlug()

		created, err = s.repo.Create(ctx, event)
		if !errors.Is(err, repository.ErrEventSlugExists) {
			break
		}
	}
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	if created.Status == domain.StatusPending {
		s.notifier.Dispatch(notify.Chat(s.pendingMessage(actor, created)))
	}

	return created, nil
}

// Approve makes a pending event public and emails its organizer.
func (s *EventService) Approve(ctx context.Context, actor domain.User, id uint) (domain.Event, error) {
	if !actor.IsAdmin {
		return domain.Event{}, ErrForbidden
	}

	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if event.Status == domain.StatusActive {
		return event, nil
	}

	approved, err := s.transition(ctx, event, domain.StatusActive)
	if err != nil {
		return domain.Event{}, err
	}

	organizer, err := s.users.FindByID(ctx, approved.OrganizerID)
	if err != nil {
		zap.L().Warn("approval email skipped, organizer lookup failed",
			zap.Uint("event_id", approved.ID),
			zap.Error(err),
		)
		return approved, nil
	}

	s.notifier.Dispatch(notify.Email(
		fmt.Sprintf("Your event has been approved: %s", approved.Title),
		s.approvalMessage(organizer, approved),
		organizer.Email,
	))

	return approved, nil
}

// Reject closes a pending event without further side effects.
func (s *EventService) Reject(ctx context.Context, actor domain.User, id uint) (domain.Event, error) {
	if !actor.IsAdmin {
		return domain.Event{}, ErrForbidden
	}

	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if event.Status == domain.StatusRejected {
		return event, nil
	}

	return s.transition(ctx, event, domain.StatusRejected)
}

// Finish closes an active event, which unlocks certificates for its
// verified participants. Only the owning organizer may finish an event.
func (s *EventService) Finish(ctx context.Context, actor domain.User, id uint) (domain.Event, error) {
	if !actor.IsAuthenticated() {
		return domain.Event{}, ErrUnauthenticated
	}

	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if event.OrganizerID != actor.ID {
		return domain.Event{}, ErrForbidden
	}
	if event.Status == domain.StatusFinished {
		return event, nil
	}

	return s.transition(ctx, event, domain.StatusFinished)
}

// Update edits the descriptive fields of an event owned by actor.
func (s *EventService) Update(ctx context.Context, actor domain.User, id uint, changes domain.EventChanges) (domain.Event, error) {
	if !actor.IsAuthenticated() {
		return domain.Event{}, ErrUnauthenticated
	}

	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if event.OrganizerID != actor.ID {
		return domain.Event{}, ErrForbidden
	}

	changes.Apply(&event)
	if err = validateEvent(event); err != nil {
		return domain.Event{}, err
	}

	updated, err := s.repo.Update(ctx, event)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

func (s *EventService) GetBySlug(ctx context.Context, slug string) (domain.Event, error) {
	event, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindBySlug -> %w", err)
	}

	return event, nil
}

func (s *EventService) ListPublic(ctx context.Context) ([]domain.Event, error) {
	events, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListActive -> %w", err)
	}

	return events, nil
}

func (s *EventService) Dashboard(ctx context.Context, actor domain.User) ([]domain.EventSummary, error) {
	if !actor.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}
	if !actor.CanSubmitEvents() {
		return nil, ErrForbidden
	}

	summaries, err := s.repo.ListByOrganizer(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListByOrganizer -> %w", err)
	}

	return summaries, nil
}

func (s *EventService) ApprovalQueue(ctx context.Context, actor domain.User) ([]domain.Event, error) {
	if !actor.IsAdmin {
		return nil, ErrForbidden
	}

	events, err := s.repo.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListPending -> %w", err)
	}

	return events, nil
}

// transition moves event to status to. When a concurrent request already
// moved it there the stored event is returned unchanged.
func (s *EventService) transition(ctx context.Context, event domain.Event, to domain.EventStatus) (domain.Event, error) {
	if !event.CanTransitionTo(to) {
		return domain.Event{}, ErrInvalidTransition
	}

	updated, err := s.repo.Transition(ctx, event.ID, event.Status, to)
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, repository.ErrEventNotFound) {
		return domain.Event{}, fmt.Errorf("s.repo.Transition -> %w", err)
	}

	current, err := s.repo.FindByID(ctx, event.ID)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if current.Status != to {
		return domain.Event{}, ErrInvalidTransition
	}

	return current, nil
}

func (s *EventService) pendingMessage(organizer domain.User, event domain.Event) string {
	price := "Free"
	if !event.IsFree() {
		price = fmt.Sprintf("%d", event.Price)
	}

	name := organizer.Name
	if name == "" {
		name = organizer.Email
	}

	return fmt.Sprintf("New event awaiting approval\n\nTitle: %s\nOrganizer: %s\nDate: %s\nPrice: %s\n\nReview: %s/api/v1/admin/events/pending",
		event.Title,
		name,
		event.DateTime.Format("2006-01-02 15:04"),
		price,
		s.publicURL,
	)
}

func (s *EventService) approvalMessage(organizer domain.User, event domain.Event) string {
	return fmt.Sprintf("Hello %s,\n\nYour event %q has been approved and is now open for registration:\n%s/api/v1/events/%s\n",
		organizer.Name,
		event.Title,
		s.publicURL,
		event.Slug,
	)
}

func validateEvent(event domain.Event) error {
	err := validation.ValidateStruct(&event,
		validation.Field(&event.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&event.Category, validation.Required, validation.In(domain.EventCategories...)),
		validation.Field(&event.DateTime, validation.Required),
		validation.Field(&event.Location, validation.Required, validation.Length(1, 255)),
		validation.Field(&event.Price, validation.Min(int64(0))),
	)
	if err != nil {
		return validationError(err)
	}

	return nil
}
