package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrParticipantNotFound   = errors.New("participant not found")
	ErrValidationTokenExists = errors.New("validation token already exists")
	ErrParticipantIncomplete = errors.New("participant is missing its ticket identity")
)

type Participant struct {
	ID              uint   `gorm:"primaryKey"`
	EventID         uint   `gorm:"index;not null"`
	Event           Event  `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
	FullName        string `gorm:"not null"`
	Email           string `gorm:"index;not null"`
	Phone           string `gorm:"not null"`
	Institution     string
	PaymentProofRef string
	IsVerified      bool      `gorm:"not null;default:false"`
	RegisteredAt    time.Time `gorm:"autoCreateTime;not null"`
	ValidationToken string    `gorm:"uniqueIndex:uni_participants_validation_token;not null"`
	TicketImageRef  string    `gorm:"not null"`
}

type ParticipantDAO struct {
	db *gorm.DB
}

func NewParticipantDAO(db *gorm.DB) *ParticipantDAO {
	return &ParticipantDAO{
		db: db,
	}
}

// Insert persists a registration together with its ticket identity in a
// single statement.
func (d *ParticipantDAO) Insert(ctx context.Context, participant Participant) (Participant, error) {
	if participant.ValidationToken == "" || participant.TicketImageRef == "" {
		return Participant{}, ErrParticipantIncomplete
	}

	result := d.db.WithContext(ctx).Omit("Event").Create(&participant)
	if result.Error != nil {
		if isUniqueViolation(result.Error, "uni_participants_validation_token") {
			return Participant{}, ErrValidationTokenExists
		}

		return Participant{}, result.Error
	}

	return participant, nil
}

// MarkVerified sets is_verified. Running it on an already verified
// participant changes nothing.
func (d *ParticipantDAO) MarkVerified(ctx context.Context, id uint) (Participant, error) {
	result := d.db.WithContext(ctx).Model(&Participant{ID: id}).Update("is_verified", true)
	if result.Error != nil {
		return Participant{}, result.Error
	}

	return d.FindByID(ctx, id)
}

func (d *ParticipantDAO) FindByID(ctx context.Context, id uint) (Participant, error) {
	var participant Participant

	result := d.db.WithContext(ctx).Preload("Event").First(&participant, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Participant{}, ErrParticipantNotFound
		}

		return Participant{}, result.Error
	}

	return participant, nil
}

func (d *ParticipantDAO) FindByToken(ctx context.Context, token string) (Participant, error) {
	var participant Participant

	result := d.db.WithContext(ctx).Preload("Event").First(&participant, "validation_token = ?", token)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Participant{}, ErrParticipantNotFound
		}

		return Participant{}, result.Error
	}

	return participant, nil
}

// FindByEmail matches case-insensitively, newest registration first.
func (d *ParticipantDAO) FindByEmail(ctx context.Context, email string) ([]Participant, error) {
	var participants []Participant

	result := d.db.WithContext(ctx).Preload("Event").
		Where("LOWER(email) = LOWER(?)", email).
		Order("registered_at desc").
		Find(&participants)
	if result.Error != nil {
		return nil, result.Error
	}

	return participants, nil
}

func (d *ParticipantDAO) FindByEvent(ctx context.Context, eventID uint) ([]Participant, error) {
	var participants []Participant

	result := d.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("registered_at desc").
		Find(&participants)
	if result.Error != nil {
		return nil, result.Error
	}

	return participants, nil
}

func (d *ParticipantDAO) CountVerified(ctx context.Context, eventID uint) (int64, error) {
	var count int64

	result := d.db.WithContext(ctx).Model(&Participant{}).
		Where("event_id = ? AND is_verified = ?", eventID, true).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}
