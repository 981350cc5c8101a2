package service

import (
	"context"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/portalevent/portal-api/internal/domain"
)

type BlacklistRepository interface {
	Add(ctx context.Context, entry domain.BlacklistEntry) (domain.BlacklistEntry, error)
	Remove(ctx context.Context, email string) error
	List(ctx context.Context) ([]domain.BlacklistEntry, error)
}

type BlacklistService struct {
	repo BlacklistRepository
}

func NewBlacklistService(repo BlacklistRepository) *BlacklistService {
	return &BlacklistService{
		repo: repo,
	}
}

func (s *BlacklistService) Add(ctx context.Context, actor domain.User, email, reason string) (domain.BlacklistEntry, error) {
	if err := requireAdmin(actor); err != nil {
		return domain.BlacklistEntry{}, err
	}

	entry := domain.BlacklistEntry{
		Email:  normalizeEmail(email),
		Reason: strings.TrimSpace(reason),
	}
	err := validation.ValidateStruct(&entry,
		validation.Field(&entry.Email, validation.Required, is.Email),
		validation.Field(&entry.Reason, validation.Length(0, 500)),
	)
	if err != nil {
		return domain.BlacklistEntry{}, validationError(err)
	}

	entry, err = s.repo.Add(ctx, entry)
	if err != nil {
		return domain.BlacklistEntry{}, fmt.Errorf("s.repo.Add -> %w", err)
	}

	return entry, nil
}

func (s *BlacklistService) Remove(ctx context.Context, actor domain.User, email string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	if err := s.repo.Remove(ctx, normalizeEmail(email)); err != nil {
		return fmt.Errorf("s.repo.Remove -> %w", err)
	}

	return nil
}

func (s *BlacklistService) List(ctx context.Context, actor domain.User) ([]domain.BlacklistEntry, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.List -> %w", err)
	}

	return entries, nil
}

func requireAdmin(actor domain.User) error {
	if !actor.IsAuthenticated() {
		return ErrUnauthenticated
	}
	if !actor.IsAdmin {
		return ErrForbidden
	}

	return nil
}
