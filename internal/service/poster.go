package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/portalevent/portal-api/internal/domain"
)

type PosterRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Event, error)
	SetPoster(ctx context.Context, id uint, ref string) (domain.Event, error)
}

type PosterStore interface {
	SavePoster(upload domain.Upload) (string, error)
	Remove(ref string) error
}

type PosterService struct {
	events PosterRepository
	files  PosterStore
}

func NewPosterService(events PosterRepository, files PosterStore) *PosterService {
	return &PosterService{
		events: events,
		files:  files,
	}
}

// Upload replaces the poster of an event owned by actor. The previous
// poster file is removed once the new one is recorded.
func (s *PosterService) Upload(ctx context.Context, actor domain.User, eventID uint, upload domain.Upload) (domain.Event, error) {
	if !actor.IsAuthenticated() {
		return domain.Event{}, ErrUnauthenticated
	}

	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.events.FindByID -> %w", err)
	}
	if event.OrganizerID != actor.ID {
		return domain.Event{}, ErrForbidden
	}

	ref, err := s.files.SavePoster(upload)
	if err != nil {
		if isUploadRejected(err) {
			return domain.Event{}, validationError(fmt.Errorf("poster: %w", err))
		}
		return domain.Event{}, fmt.Errorf("s.files.SavePoster -> %w", err)
	}

	updated, err := s.events.SetPoster(ctx, event.ID, ref)
	if err != nil {
		s.remove(ref)
		return domain.Event{}, fmt.Errorf("s.events.SetPoster -> %w", err)
	}

	s.remove(event.PosterRef)

	return updated, nil
}

func (s *PosterService) remove(ref string) {
	if ref == "" {
		return
	}
	if err := s.files.Remove(ref); err != nil {
		zap.L().Warn("failed to remove poster", zap.String("ref", ref), zap.Error(err))
	}
}
