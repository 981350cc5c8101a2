package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/portalevent/portal-api/internal/domain"
	"github.com/portalevent/portal-api/internal/repository"
)

type AuthUserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
}

// ExternalSignupHook runs once for every actor created through a federated
// identity provider.
type ExternalSignupHook interface {
	OnExternalSignup(ctx context.Context, user domain.User) (domain.User, error)
}

type AuthService struct {
	repo  AuthUserRepository
	hooks []ExternalSignupHook
}

func NewAuthService(repo AuthUserRepository, hooks ...ExternalSignupHook) *AuthService {
	return &AuthService{
		repo:  repo,
		hooks: hooks,
	}
}

// Signup creates a plain participant account.
func (s *AuthService) Signup(ctx context.Context, user domain.User) (domain.User, error) {
	user.IsOrganizer = false
	user.IsAdmin = false

	return s.create(ctx, user)
}

// CreateAdmin seeds an administrator, who may also submit events.
func (s *AuthService) CreateAdmin(ctx context.Context, user domain.User) (domain.User, error) {
	user.IsOrganizer = true
	user.IsAdmin = true

	return s.create(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (domain.User, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domain.User{}, ErrUserNotFound
		}

		return domain.User{}, fmt.Errorf("s.repo.FindByEmail -> %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return domain.User{}, ErrWrongPassword
	}

	return user, nil
}

// SignupExternal creates an actor for a federated identity and passes it
// through every registered hook. The account gets a random password so it
// can only sign in through the provider.
func (s *AuthService) SignupExternal(ctx context.Context, email, name string) (domain.User, error) {
	user, err := s.create(ctx, domain.User{
		Email:    email,
		Name:     name,
		Password: uuid.NewString(),
	})
	if err != nil {
		return domain.User{}, err
	}

	for _, hook := range s.hooks {
		user, err = hook.OnExternalSignup(ctx, user)
		if err != nil {
			return domain.User{}, fmt.Errorf("hook.OnExternalSignup -> %w", err)
		}
	}

	zap.L().Info("external signup completed", zap.Uint("user_id", user.ID), zap.Bool("is_organizer", user.IsOrganizer))

	return user, nil
}

func (s *AuthService) create(ctx context.Context, user domain.User) (domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("bcrypt.GenerateFromPassword -> %w", err)
	}
	user.Password = string(hash)
	user.Email = normalizeEmail(user.Email)

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

type RoleUpdater interface {
	UpdateRoles(ctx context.Context, user domain.User) (domain.User, error)
}

// OrganizerElevation grants the organizer flag to externally signed up actors.
type OrganizerElevation struct {
	repo RoleUpdater
}

func NewOrganizerElevation(repo RoleUpdater) *OrganizerElevation {
	return &OrganizerElevation{
		repo: repo,
	}
}

func (h *OrganizerElevation) OnExternalSignup(ctx context.Context, user domain.User) (domain.User, error) {
	if user.IsOrganizer {
		return user, nil
	}

	user.IsOrganizer = true
	updated, err := h.repo.UpdateRoles(ctx, user)
	if err != nil {
		return domain.User{}, fmt.Errorf("h.repo.UpdateRoles -> %w", err)
	}

	return updated, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
