package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portalevent/portal-api/internal/domain"
	"github.com/portalevent/portal-api/internal/pkg/filestore"
)

type mockPosterRepository struct {
	findByID  func(id uint) (domain.Event, error)
	setPoster func(id uint, ref string) (domain.Event, error)
}

func (m *mockPosterRepository) FindByID(_ context.Context, id uint) (domain.Event, error) {
	return m.findByID(id)
}

func (m *mockPosterRepository) SetPoster(_ context.Context, id uint, ref string) (domain.Event, error) {
	return m.setPoster(id, ref)
}

func TestPosterService_Upload(t *testing.T) {
	event := domain.Event{ID: 10, OrganizerID: organizer.ID, PosterRef: "posters/old.png"}
	poster := domain.Upload{Filename: "poster.png", Data: []byte("img")}

	newRepo := func() *mockPosterRepository {
		return &mockPosterRepository{
			findByID: func(id uint) (domain.Event, error) {
				if id != event.ID {
					return domain.Event{}, ErrEventNotFound
				}
				return event, nil
			},
			setPoster: func(id uint, ref string) (domain.Event, error) {
				updated := event
				updated.PosterRef = ref
				return updated, nil
			},
		}
	}
	newFiles := func() *mockFileStore {
		return &mockFileStore{savePoster: func(domain.Upload) (string, error) {
			return "posters/new.png", nil
		}}
	}

	t.Run("owner replaces poster", func(t *testing.T) {
		files := newFiles()
		updated, err := NewPosterService(newRepo(), files).Upload(context.Background(), organizer, event.ID, poster)
		require.NoError(t, err)
		assert.Equal(t, "posters/new.png", updated.PosterRef)
		assert.Equal(t, []string{"posters/old.png"}, files.removed)
	})

	t.Run("guards", func(t *testing.T) {
		svc := NewPosterService(newRepo(), newFiles())

		_, err := svc.Upload(context.Background(), domain.User{}, event.ID, poster)
		assert.ErrorIs(t, err, ErrUnauthenticated)

		_, err = svc.Upload(context.Background(), admin, event.ID, poster)
		assert.ErrorIs(t, err, ErrForbidden)

		_, err = svc.Upload(context.Background(), organizer, 99, poster)
		assert.ErrorIs(t, err, ErrEventNotFound)
	})

	t.Run("rejected image", func(t *testing.T) {
		files := newFiles()
		files.savePoster = func(domain.Upload) (string, error) {
			return "", filestore.ErrUnsupportedImage
		}

		_, err := NewPosterService(newRepo(), files).Upload(context.Background(), organizer, event.ID, poster)
		assert.ErrorIs(t, err, ErrValidationFailed)
		assert.ErrorIs(t, err, filestore.ErrUnsupportedImage)
		assert.Empty(t, files.removed)
	})

	t.Run("failed update removes the new file", func(t *testing.T) {
		repo := newRepo()
		repo.setPoster = func(uint, string) (domain.Event, error) {
			return domain.Event{}, errors.New("db down")
		}
		files := newFiles()

		_, err := NewPosterService(repo, files).Upload(context.Background(), organizer, event.ID, poster)
		assert.Error(t, err)
		assert.Equal(t, []string{"posters/new.png"}, files.removed)
	})
}
