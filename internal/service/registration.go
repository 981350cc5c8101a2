package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/portalevent/portal-api/internal/domain"
	"github.com/portalevent/portal-api/internal/notify"
	"github.com/portalevent/portal-api/internal/pkg/filestore"
)

var (
	errPaymentProofRequired = errors.New("payment_proof: a payment proof is required for paid events")
	phonePattern            = regexp.MustCompile(`^\+?[0-9 ()-]{6,20}$`)
	exportHeader            = []interface{}{"Full Name", "Email", "Phone", "Institution", "Payment Status", "Registered At"}

	singleLine = validation.NewStringRule(func(s string) bool {
		return !strings.ContainsAny(s, "\r\n")
	}, "must not contain line breaks")
)

type ParticipantRepository interface {
	Create(ctx context.Context, p domain.Participant) (domain.Participant, error)
	MarkVerified(ctx context.Context, id uint) (domain.Participant, error)
	FindByID(ctx context.Context, id uint) (domain.Participant, error)
	FindByToken(ctx context.Context, token string) (domain.Participant, error)
	FindByEmail(ctx context.Context, email string) ([]domain.Participant, error)
	FindByEvent(ctx context.Context, eventID uint) ([]domain.Participant, error)
	CountVerified(ctx context.Context, eventID uint) (int64, error)
}

type EventFinder interface {
	FindByID(ctx context.Context, id uint) (domain.Event, error)
	FindBySlug(ctx context.Context, slug string) (domain.Event, error)
}

type BlacklistChecker interface {
	Contains(ctx context.Context, email string) (bool, error)
}

type TicketIssuer interface {
	Issue() (domain.TicketIdentity, error)
}

type FileStore interface {
	SaveTicketImage(token string, png []byte) (string, error)
	SavePaymentProof(upload domain.Upload) (string, error)
	Read(ref string) ([]byte, error)
	Remove(ref string) error
}

type RegistrationService struct {
	participants ParticipantRepository
	events       EventFinder
	blacklist    BlacklistChecker
	tickets      TicketIssuer
	files        FileStore
	notifier     Notifier
	now          func() time.Time
}

func NewRegistrationService(
	participants ParticipantRepository,
	events EventFinder,
	blacklist BlacklistChecker,
	tickets TicketIssuer,
	files FileStore,
	notifier Notifier,
) *RegistrationService {
	return &RegistrationService{
		participants: participants,
		events:       events,
		blacklist:    blacklist,
		tickets:      tickets,
		files:        files,
		notifier:     notifier,
		now:          time.Now,
	}
}

// Register records a registration for the event with the given slug. The
// participant row is written once, already carrying its ticket identity.
// Registrations for free events are verified immediately.
func (s *RegistrationService) Register(ctx context.Context, eventSlug string, reg domain.Registration) (domain.Participant, error) {
	event, err := s.events.FindBySlug(ctx, eventSlug)
	if err != nil {
		return domain.Participant{}, fmt.Errorf("s.events.FindBySlug -> %w", err)
	}

	reg.FullName = strings.TrimSpace(reg.FullName)
	reg.Email = strings.TrimSpace(reg.Email)
	reg.Phone = strings.TrimSpace(reg.Phone)
	reg.Institution = strings.TrimSpace(reg.Institution)
	if err = validateRegistration(reg); err != nil {
		return domain.Participant{}, err
	}

	blacklisted, err := s.blacklist.Contains(ctx, strings.ToLower(reg.Email))
	if err != nil {
		return domain.Participant{}, fmt.Errorf("s.blacklist.Contains -> %w", err)
	}
	if blacklisted {
		return domain.Participant{}, ErrBlacklisted
	}

	var proofRef string
	if !event.IsFree() {
		if reg.PaymentProof == nil {
			return domain.Participant{}, validationError(errPaymentProofRequired)
		}

		proofRef, err = s.files.SavePaymentProof(*reg.PaymentProof)
		if err != nil {
			if isUploadRejected(err) {
				return domain.Participant{}, validationError(err)
			}
			return domain.Participant{}, fmt.Errorf("s.files.SavePaymentProof -> %w", err)
		}
	}

	identity, err := s.tickets.Issue()
	if err != nil {
		s.discard(proofRef)
		return domain.Participant{}, fmt.Errorf("s.tickets.Issue -> %w", err)
	}

	ticketRef, err := s.files.SaveTicketImage(identity.Token, identity.Image)
	if err != nil {
		s.discard(proofRef)
		return domain.Participant{}, fmt.Errorf("s.files.SaveTicketImage -> %w", err)
	}

	created, err := s.participants.Create(ctx, domain.Participant{
		EventID:         event.ID,
		FullName:        reg.FullName,
		Email:           reg.Email,
		Phone:           reg.Phone,
		Institution:     reg.Institution,
		PaymentProofRef: proofRef,
		IsVerified:      event.IsFree(),
		RegisteredAt:    s.now(),
		ValidationToken: identity.Token,
		TicketImageRef:  ticketRef,
	})
	if err != nil {
		s.discard(proofRef, ticketRef)
		return domain.Participant{}, fmt.Errorf("s.participants.Create -> %w", err)
	}

	created.Event = &event

	return created, nil
}

// VerifyPayment marks a registration as paid. Only the organizer of the
// event or an admin may verify; repeating it changes nothing.
func (s *RegistrationService) VerifyPayment(ctx context.Context, actor domain.User, participantID uint) (domain.Participant, error) {
	if !actor.IsAuthenticated() {
		return domain.Participant{}, ErrUnauthenticated
	}

	participant, err := s.participants.FindByID(ctx, participantID)
	if err != nil {
		return domain.Participant{}, fmt.Errorf("s.participants.FindByID -> %w", err)
	}

	event, err := s.eventOf(ctx, participant)
	if err != nil {
		return domain.Participant{}, err
	}
	if !canManage(actor, event) {
		return domain.Participant{}, ErrForbidden
	}
	if participant.IsVerified {
		return participant, nil
	}

	verified, err := s.participants.MarkVerified(ctx, participant.ID)
	if err != nil {
		return domain.Participant{}, fmt.Errorf("s.participants.MarkVerified -> %w", err)
	}
	verified.Event = &event

	return verified, nil
}

// PaymentProof returns the uploaded receipt of a participant to the event's
// organizer or an admin.
func (s *RegistrationService) PaymentProof(ctx context.Context, actor domain.User, participantID uint) (domain.File, error) {
	if !actor.IsAuthenticated() {
		return domain.File{}, ErrUnauthenticated
	}

	participant, err := s.participants.FindByID(ctx, participantID)
	if err != nil {
		return domain.File{}, fmt.Errorf("s.participants.FindByID -> %w", err)
	}

	event, err := s.eventOf(ctx, participant)
	if err != nil {
		return domain.File{}, err
	}
	if !canManage(actor, event) {
		return domain.File{}, ErrForbidden
	}
	if participant.PaymentProofRef == "" {
		return domain.File{}, ErrNoPaymentProof
	}

	content, err := s.files.Read(participant.PaymentProofRef)
	if err != nil {
		return domain.File{}, fmt.Errorf("s.files.Read -> %w", err)
	}

	return domain.File{
		Filename: fmt.Sprintf("payment-proof-%d%s", participant.ID, path.Ext(participant.PaymentProofRef)),
		Content:  content,
	}, nil
}

// ScanValidate resolves a scanned ticket. Any authenticated actor may scan.
func (s *RegistrationService) ScanValidate(ctx context.Context, actor domain.User, token string) (domain.Participant, error) {
	if !actor.IsAuthenticated() {
		return domain.Participant{}, ErrUnauthenticated
	}

	participant, err := s.participants.FindByToken(ctx, token)
	if err != nil {
		return domain.Participant{}, fmt.Errorf("s.participants.FindByToken -> %w", err)
	}

	return participant, nil
}

// LookupByEmail returns every registration made with email, newest first.
func (s *RegistrationService) LookupByEmail(ctx context.Context, email string) ([]domain.Participant, error) {
	email = strings.TrimSpace(email)
	if err := validation.Validate(email, validation.Required, is.Email); err != nil {
		return nil, validationError(fmt.Errorf("email: %w", err))
	}

	participants, err := s.participants.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("s.participants.FindByEmail -> %w", err)
	}

	return participants, nil
}

func (s *RegistrationService) MyRegistrations(ctx context.Context, actor domain.User) ([]domain.Participant, error) {
	if !actor.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}

	participants, err := s.participants.FindByEmail(ctx, actor.Email)
	if err != nil {
		return nil, fmt.Errorf("s.participants.FindByEmail -> %w", err)
	}

	return participants, nil
}

func (s *RegistrationService) ListParticipants(ctx context.Context, actor domain.User, eventID uint) ([]domain.Participant, error) {
	if _, err := s.managedEvent(ctx, actor, eventID); err != nil {
		return nil, err
	}

	participants, err := s.participants.FindByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("s.participants.FindByEvent -> %w", err)
	}

	return participants, nil
}

// ExportParticipants renders the participant list of an event as a spreadsheet.
func (s *RegistrationService) ExportParticipants(ctx context.Context, actor domain.User, eventID uint) (string, []byte, error) {
	event, err := s.managedEvent(ctx, actor, eventID)
	if err != nil {
		return "", nil, err
	}

	participants, err := s.participants.FindByEvent(ctx, eventID)
	if err != nil {
		return "", nil, fmt.Errorf("s.participants.FindByEvent -> %w", err)
	}

	data, err := participantsSheet(participants)
	if err != nil {
		return "", nil, err
	}

	return event.Slug + "_participants.xlsx", data, nil
}

// BlastEmail sends one message to every participant of an event owned by
// actor and returns the number of recipients.
func (s *RegistrationService) BlastEmail(ctx context.Context, actor domain.User, eventID uint, subject, message string) (int, error) {
	if !actor.IsAuthenticated() {
		return 0, ErrUnauthenticated
	}

	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("s.events.FindByID -> %w", err)
	}
	if event.OrganizerID != actor.ID {
		return 0, ErrForbidden
	}

	err = validation.Errors{
		"subject": validation.Validate(strings.TrimSpace(subject), validation.Required, validation.Length(1, 200), singleLine),
		"message": validation.Validate(strings.TrimSpace(message), validation.Required),
	}.Filter()
	if err != nil {
		return 0, validationError(err)
	}

	participants, err := s.participants.FindByEvent(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("s.participants.FindByEvent -> %w", err)
	}

	seen := make(map[string]bool, len(participants))
	recipients := make([]string, 0, len(participants))
	for _, p := range participants {
		key := strings.ToLower(p.Email)
		if seen[key] {
			continue
		}
		seen[key] = true
		recipients = append(recipients, p.Email)
	}
	if len(recipients) == 0 {
		return 0, nil
	}

	s.notifier.Dispatch(notify.Email(subject, message, recipients...))

	return len(recipients), nil
}

// Revenue is the verified participant count of an event times its price.
func (s *RegistrationService) Revenue(ctx context.Context, actor domain.User, eventID uint) (int64, error) {
	event, err := s.managedEvent(ctx, actor, eventID)
	if err != nil {
		return 0, err
	}

	verified, err := s.participants.CountVerified(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("s.participants.CountVerified -> %w", err)
	}

	return event.CurrentRevenue(verified), nil
}

func (s *RegistrationService) managedEvent(ctx context.Context, actor domain.User, eventID uint) (domain.Event, error) {
	if !actor.IsAuthenticated() {
		return domain.Event{}, ErrUnauthenticated
	}

	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.events.FindByID -> %w", err)
	}
	if !canManage(actor, event) {
		return domain.Event{}, ErrForbidden
	}

	return event, nil
}

func (s *RegistrationService) eventOf(ctx context.Context, p domain.Participant) (domain.Event, error) {
	if p.Event != nil {
		return *p.Event, nil
	}

	event, err := s.events.FindByID(ctx, p.EventID)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.events.FindByID -> %w", err)
	}

	return event, nil
}

func (s *RegistrationService) discard(refs ...string) {
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		if err := s.files.Remove(ref); err != nil {
			zap.L().Warn("failed to remove orphaned file", zap.String("ref", ref), zap.Error(err))
		}
	}
}

func canManage(actor domain.User, event domain.Event) bool {
	return actor.IsAdmin || (actor.IsAuthenticated() && event.OrganizerID == actor.ID)
}

func isUploadRejected(err error) bool {
	return errors.Is(err, filestore.ErrFileTooLarge) ||
		errors.Is(err, filestore.ErrUnsupportedFileType) ||
		errors.Is(err, filestore.ErrUnsupportedImage) ||
		errors.Is(err, filestore.ErrEmptyFile)
}

func validateRegistration(reg domain.Registration) error {
	err := validation.ValidateStruct(&reg,
		validation.Field(&reg.FullName, validation.Required, validation.Length(1, 200)),
		validation.Field(&reg.Email, validation.Required, is.Email),
		validation.Field(&reg.Phone, validation.Required, validation.Match(phonePattern)),
		validation.Field(&reg.Institution, validation.Length(0, 200)),
	)
	if err != nil {
		return validationError(err)
	}

	return nil
}

func participantsSheet(participants []domain.Participant) ([]byte, error) {
	const sheet = "Sheet1"

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			zap.L().Warn("failed to close spreadsheet", zap.Error(err))
		}
	}()

	header := exportHeader
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("f.SetSheetRow -> %w", err)
	}

	for i, p := range participants {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("excelize.CoordinatesToCellName -> %w", err)
		}

		row := []interface{}{
			p.FullName,
			p.Email,
			p.Phone,
			p.Institution,
			p.PaymentStatus(),
			p.RegisteredAt.Format("2006-01-02 15:04"),
		}
		if err = f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("f.SetSheetRow -> %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("f.WriteToBuffer -> %w", err)
	}

	return buf.Bytes(), nil
}
