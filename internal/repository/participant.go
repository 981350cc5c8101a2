package repository

import (
	"context"
	"fmt"

	"github.com/portalevent/portal-api/internal/domain"
	"github.com/portalevent/portal-api/internal/repository/dao"
)

var (
	ErrParticipantNotFound   = dao.ErrParticipantNotFound
	ErrValidationTokenExists = dao.ErrValidationTokenExists
)

type ParticipantDAO interface {
	Insert(ctx context.Context, participant dao.Participant) (dao.Participant, error)
	MarkVerified(ctx context.Context, id uint) (dao.Participant, error)
	FindByID(ctx context.Context, id uint) (dao.Participant, error)
	FindByToken(ctx context.Context, token string) (dao.Participant, error)
	FindByEmail(ctx context.Context, email string) ([]dao.Participant, error)
	FindByEvent(ctx context.Context, eventID uint) ([]dao.Participant, error)
	CountVerified(ctx context.Context, eventID uint) (int64, error)
}

type ParticipantRepository struct {
	dao ParticipantDAO
}

func NewParticipantRepository(dao ParticipantDAO) *ParticipantRepository {
	return &ParticipantRepository{
		dao: dao,
	}
}

func (r *ParticipantRepository) Create(ctx context.Context, p domain.Participant) (domain.Participant, error) {
	created, err := r.dao.Insert(ctx, dao.Participant{
		EventID:         p.EventID,
		FullName:        p.FullName,
		Email:           p.Email,
		Phone:           p.Phone,
		Institution:     p.Institution,
		PaymentProofRef: p.PaymentProofRef,
		IsVerified:      p.IsVerified,
		RegisteredAt:    p.RegisteredAt,
		ValidationToken: p.ValidationToken,
		TicketImageRef:  p.TicketImageRef,
	})
	if err != nil {
		return domain.Participant{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return participantDAOToDomain(created), nil
}

func (r *ParticipantRepository) MarkVerified(ctx context.Context, id uint) (domain.Participant, error) {
	updated, err := r.dao.MarkVerified(ctx, id)
	if err != nil {
		return domain.Participant{}, fmt.Errorf("r.dao.MarkVerified -> %w", err)
	}

	return participantDAOToDomain(updated), nil
}

func (r *ParticipantRepository) FindByID(ctx context.Context, id uint) (domain.Participant, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Participant{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return participantDAOToDomain(found), nil
}

func (r *ParticipantRepository) FindByToken(ctx context.Context, token string) (domain.Participant, error) {
	found, err := r.dao.FindByToken(ctx, token)
	if err != nil {
		return domain.Participant{}, fmt.Errorf("r.dao.FindByToken -> %w", err)
	}

	return participantDAOToDomain(found), nil
}

func (r *ParticipantRepository) FindByEmail(ctx context.Context, email string) ([]domain.Participant, error) {
	found, err := r.dao.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByEmail -> %w", err)
	}

	return participantsDAOToDomain(found), nil
}

func (r *ParticipantRepository) FindByEvent(ctx context.Context, eventID uint) ([]domain.Participant, error) {
	found, err := r.dao.FindByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByEvent -> %w", err)
	}

	return participantsDAOToDomain(found), nil
}

func (r *ParticipantRepository) CountVerified(ctx context.Context, eventID uint) (int64, error) {
	count, err := r.dao.CountVerified(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.CountVerified -> %w", err)
	}

	return count, nil
}

func participantDAOToDomain(p dao.Participant) domain.Participant {
	participant := domain.Participant{
		ID:              p.ID,
		EventID:         p.EventID,
		FullName:        p.FullName,
		Email:           p.Email,
		Phone:           p.Phone,
		Institution:     p.Institution,
		PaymentProofRef: p.PaymentProofRef,
		IsVerified:      p.IsVerified,
		RegisteredAt:    p.RegisteredAt,
		ValidationToken: p.ValidationToken,
		TicketImageRef:  p.TicketImageRef,
	}
	if p.Event.ID != 0 {
		event := eventDAOToDomain(p.Event)
		participant.Event = &event
	}

	return participant
}

func participantsDAOToDomain(participants []dao.Participant) []domain.Participant {
	result := make([]domain.Participant, 0, len(participants))
	for _, p := range participants {
		result = append(result, participantDAOToDomain(p))
	}

	return result
}
