package repository

import (
	"context"
	"fmt"

	"github.com/portalevent/portal-api/internal/domain"
	"github.com/portalevent/portal-api/internal/repository/dao"
)

var (
	ErrBlacklistEntryExists   = dao.ErrBlacklistEntryExists
	ErrBlacklistEntryNotFound = dao.ErrBlacklistEntryNotFound
)

type BlacklistDAO interface {
	Insert(ctx context.Context, entry dao.BlacklistEntry) (dao.BlacklistEntry, error)
	Delete(ctx context.Context, email string) error
	Exists(ctx context.Context, email string) (bool, error)
	FindAll(ctx context.Context) ([]dao.BlacklistEntry, error)
}

type BlacklistRepository struct {
	dao BlacklistDAO
}

func NewBlacklistRepository(dao BlacklistDAO) *BlacklistRepository {
	return &BlacklistRepository{
		dao: dao,
	}
}

func (r *BlacklistRepository) Add(ctx context.Context, entry domain.BlacklistEntry) (domain.BlacklistEntry, error) {
	created, err := r.dao.Insert(ctx, dao.BlacklistEntry{
		Email:  entry.Email,
		Reason: entry.Reason,
	})
	if err != nil {
		return domain.BlacklistEntry{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return blacklistDAOToDomain(created), nil
}

func (r *BlacklistRepository) Remove(ctx context.Context, email string) error {
	if err := r.dao.Delete(ctx, email); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *BlacklistRepository) Contains(ctx context.Context, email string) (bool, error) {
	exists, err := r.dao.Exists(ctx, email)
	if err != nil {
		return false, fmt.Errorf("r.dao.Exists -> %w", err)
	}

	return exists, nil
}

func (r *BlacklistRepository) List(ctx context.Context) ([]domain.BlacklistEntry, error) {
	found, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	entries := make([]domain.BlacklistEntry, 0, len(found))
	for _, e := range found {
		entries = append(entries, blacklistDAOToDomain(e))
	}

	return entries, nil
}

func blacklistDAOToDomain(e dao.BlacklistEntry) domain.BlacklistEntry {
	return domain.BlacklistEntry{
		ID:        e.ID,
		Email:     e.Email,
		Reason:    e.Reason,
		CreatedAt: e.CreatedAt,
	}
}
