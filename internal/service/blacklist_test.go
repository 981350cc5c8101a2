package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portalevent/portal-api/internal/domain"
)

type mockBlacklistRepository struct {
	add    func(entry domain.BlacklistEntry) (domain.BlacklistEntry, error)
	remove func(email string) error
	list   func() ([]domain.BlacklistEntry, error)
}

func (m *mockBlacklistRepository) Add(_ context.Context, entry domain.BlacklistEntry) (domain.BlacklistEntry, error) {
	return m.add(entry)
}

func (m *mockBlacklistRepository) Remove(_ context.Context, email string) error {
	return m.remove(email)
}

func (m *mockBlacklistRepository) List(_ context.Context) ([]domain.BlacklistEntry, error) {
	return m.list()
}

func TestBlacklistService(t *testing.T) {
	var removed string
	repo := &mockBlacklistRepository{
		add: func(entry domain.BlacklistEntry) (domain.BlacklistEntry, error) {
			return entry, nil
		},
		remove: func(email string) error {
			removed = email
			return nil
		},
		list: func() ([]domain.BlacklistEntry, error) {
			return []domain.BlacklistEntry{{Email: "spam@example.com"}}, nil
		},
	}
	svc := NewBlacklistService(repo)
	ctx := context.Background()

	entry, err := svc.Add(ctx, admin, " Spam@Example.com ", " bots ")
	require.NoError(t, err)
	assert.Equal(t, "spam@example.com", entry.Email)
	assert.Equal(t, "bots", entry.Reason)

	_, err = svc.Add(ctx, admin, "nope", "")
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = svc.Add(ctx, organizer, "spam@example.com", "")
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, svc.Remove(ctx, admin, "SPAM@example.com"))
	assert.Equal(t, "spam@example.com", removed)

	entries, err := svc.List(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	_, err = svc.List(ctx, attendee)
	assert.ErrorIs(t, err, ErrForbidden)
}
