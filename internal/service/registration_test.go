package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/portalevent/portal-api/internal/domain"
	"github.com/portalevent/portal-api/internal/notify"
	"github.com/portalevent/portal-api/internal/pkg/filestore"
)

var (
	paidEvent = domain.Event{ID: 10, Slug: "go-workshop-ab12", Title: "Go Workshop", OrganizerID: organizer.ID, Price: 50000, Status: domain.StatusActive}
	freeEvent = domain.Event{ID: 11, Slug: "open-day-cd34", Title: "Open Day", OrganizerID: organizer.ID, Price: 0, Status: domain.StatusActive}
)

type registrationFixture struct {
	svc          *RegistrationService
	participants *memoryParticipants
	files        *mockFileStore
	notifier     *recordingNotifier
	blacklisted  map[string]bool
}

func newRegistrationFixture() *registrationFixture {
	f := &registrationFixture{
		participants: newMemoryParticipants(paidEvent, freeEvent),
		notifier:     &recordingNotifier{},
		blacklisted:  map[string]bool{},
	}

	tokens := 0
	tickets := &mockTicketIssuer{issue: func() (domain.TicketIdentity, error) {
		tokens++
		return domain.TicketIdentity{Token: fmt.Sprintf("token-%d", tokens), Image: []byte("png")}, nil
	}}
	f.files = &mockFileStore{
		saveTicketImage: func(token string, _ []byte) (string, error) {
			return "tickets/" + token + ".png", nil
		},
		savePaymentProof: func(upload domain.Upload) (string, error) {
			return "payment_proofs/" + upload.Filename, nil
		},
	}
	blacklist := &mockBlacklist{contains: func(email string) (bool, error) {
		return f.blacklisted[email], nil
	}}

	f.svc = NewRegistrationService(
		f.participants,
		staticEvents{paidEvent.ID: paidEvent, freeEvent.ID: freeEvent},
		blacklist,
		tickets,
		f.files,
		f.notifier,
	)
	f.svc.now = func() time.Time { return time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC) }

	return f
}

func registration(email string) domain.Registration {
	return domain.Registration{
		FullName:     "Jane Doe",
		Email:        email,
		Phone:        "+62 812-3456-789",
		Institution:  "University",
		PaymentProof: &domain.Upload{Filename: "receipt.png", Data: []byte("img")},
	}
}

func TestRegistrationService_Register_Paid(t *testing.T) {
	f := newRegistrationFixture()

	p, err := f.svc.Register(context.Background(), paidEvent.Slug, registration("jane@example.com"))
	require.NoError(t, err)

	assert.False(t, p.IsVerified)
	assert.Equal(t, paidEvent.ID, p.EventID)
	assert.Equal(t, "token-1", p.ValidationToken)
	assert.Equal(t, "tickets/token-1.png", p.TicketImageRef)
	assert.Equal(t, "payment_proofs/receipt.png", p.PaymentProofRef)
	assert.True(t, p.HasTicket())
}

func TestRegistrationService_Register_FreeIsVerifiedAndIgnoresProof(t *testing.T) {
	f := newRegistrationFixture()
	f.files.savePaymentProof = func(domain.Upload) (string, error) {
		t.Fatal("proof must not be stored for free events")
		return "", nil
	}

	p, err := f.svc.Register(context.Background(), freeEvent.Slug, registration("jane@example.com"))
	require.NoError(t, err)
	assert.True(t, p.IsVerified)
	assert.Empty(t, p.PaymentProofRef)
}

func TestRegistrationService_Register_TokensAreUnique(t *testing.T) {
	f := newRegistrationFixture()
	seen := map[string]bool{}

	for i := 0; i < 5; i++ {
		p, err := f.svc.Register(context.Background(), freeEvent.Slug, registration(fmt.Sprintf("p%d@example.com", i)))
		require.NoError(t, err)
		assert.False(t, seen[p.ValidationToken])
		seen[p.ValidationToken] = true
	}
}

func TestRegistrationService_Register_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		slug    string
		reg     func() domain.Registration
		wantErr error
	}{
		{
			name:    "blacklisted email, any case",
			slug:    paidEvent.Slug,
			reg:     func() domain.Registration { return registration("Spammer@Example.com") },
			wantErr: ErrBlacklisted,
		},
		{
			name: "missing proof on paid event",
			slug: paidEvent.Slug,
			reg: func() domain.Registration {
				r := registration("jane@example.com")
				r.PaymentProof = nil
				return r
			},
			wantErr: ErrValidationFailed,
		},
		{
			name: "invalid email",
			slug: freeEvent.Slug,
			reg: func() domain.Registration {
				return registration("not-an-email")
			},
			wantErr: ErrValidationFailed,
		},
		{
			name: "missing name",
			slug: freeEvent.Slug,
			reg: func() domain.Registration {
				r := registration("jane@example.com")
				r.FullName = "  "
				return r
			},
			wantErr: ErrValidationFailed,
		},
		{
			name:    "unknown event",
			slug:    "nope",
			reg:     func() domain.Registration { return registration("jane@example.com") },
			wantErr: ErrEventNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRegistrationFixture()
			f.blacklisted["spammer@example.com"] = true

			_, err := f.svc.Register(context.Background(), tt.slug, tt.reg())
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, f.participants.count())
		})
	}
}

func TestRegistrationService_Register_RejectedUpload(t *testing.T) {
	f := newRegistrationFixture()
	f.files.savePaymentProof = func(domain.Upload) (string, error) {
		return "", filestore.ErrUnsupportedFileType
	}

	_, err := f.svc.Register(context.Background(), paidEvent.Slug, registration("jane@example.com"))
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.ErrorIs(t, err, filestore.ErrUnsupportedFileType)
}

func TestRegistrationService_Register_CleansUpOnInsertFailure(t *testing.T) {
	f := newRegistrationFixture()
	failing := &failingParticipants{memoryParticipants: f.participants}
	f.svc.participants = failing

	_, err := f.svc.Register(context.Background(), paidEvent.Slug, registration("jane@example.com"))
	assert.Error(t, err)
	assert.ElementsMatch(t, []string{"payment_proofs/receipt.png", "tickets/token-1.png"}, f.files.removed)
}

type failingParticipants struct {
	*memoryParticipants
}

func (f *failingParticipants) Create(context.Context, domain.Participant) (domain.Participant, error) {
	return domain.Participant{}, errors.New("insert failed")
}

func TestRegistrationService_VerifyPayment(t *testing.T) {
	f := newRegistrationFixture()
	ctx := context.Background()

	p, err := f.svc.Register(ctx, paidEvent.Slug, registration("jane@example.com"))
	require.NoError(t, err)

	revenue, err := f.svc.Revenue(ctx, organizer, paidEvent.ID)
	require.NoError(t, err)
	assert.Zero(t, revenue)

	_, err = f.svc.VerifyPayment(ctx, stranger, p.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	for _, actor := range []domain.User{organizer, admin} {
		verified, err := f.svc.VerifyPayment(ctx, actor, p.ID)
		require.NoError(t, err)
		assert.True(t, verified.IsVerified)
		assert.Equal(t, p.ValidationToken, verified.ValidationToken)
		assert.Equal(t, p.TicketImageRef, verified.TicketImageRef)
	}

	revenue, err = f.svc.Revenue(ctx, organizer, paidEvent.ID)
	require.NoError(t, err)
	assert.Equal(t, paidEvent.Price, revenue)

	_, err = f.svc.Revenue(ctx, stranger, paidEvent.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.VerifyPayment(ctx, organizer, 999)
	assert.ErrorIs(t, err, ErrParticipantNotFound)
}

func TestRegistrationService_PaymentProof(t *testing.T) {
	f := newRegistrationFixture()
	ctx := context.Background()
	f.files.read = func(ref string) ([]byte, error) {
		assert.Equal(t, "payment_proofs/receipt.png", ref)
		return []byte("img"), nil
	}

	paid, err := f.svc.Register(ctx, paidEvent.Slug, registration("jane@example.com"))
	require.NoError(t, err)
	free, err := f.svc.Register(ctx, freeEvent.Slug, registration("joe@example.com"))
	require.NoError(t, err)

	_, err = f.svc.PaymentProof(ctx, domain.User{}, paid.ID)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = f.svc.PaymentProof(ctx, stranger, paid.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	for _, actor := range []domain.User{organizer, admin} {
		file, err := f.svc.PaymentProof(ctx, actor, paid.ID)
		require.NoError(t, err)
		assert.Equal(t, []byte("img"), file.Content)
		assert.Equal(t, fmt.Sprintf("payment-proof-%d.png", paid.ID), file.Filename)
	}

	_, err = f.svc.PaymentProof(ctx, organizer, free.ID)
	assert.ErrorIs(t, err, ErrNoPaymentProof)

	_, err = f.svc.PaymentProof(ctx, organizer, 999)
	assert.ErrorIs(t, err, ErrParticipantNotFound)
}

func TestRegistrationService_ScanValidate(t *testing.T) {
	f := newRegistrationFixture()
	ctx := context.Background()

	p, err := f.svc.Register(ctx, freeEvent.Slug, registration("jane@example.com"))
	require.NoError(t, err)

	found, err := f.svc.ScanValidate(ctx, attendee, p.ValidationToken)
	require.NoError(t, err)
	assert.Equal(t, p.ID, found.ID)

	_, err = f.svc.ScanValidate(ctx, attendee, "unknown")
	assert.ErrorIs(t, err, ErrParticipantNotFound)

	_, err = f.svc.ScanValidate(ctx, domain.User{}, p.ValidationToken)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestRegistrationService_LookupByEmail(t *testing.T) {
	f := newRegistrationFixture()

	_, err := f.svc.LookupByEmail(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = f.svc.Register(context.Background(), freeEvent.Slug, registration("jane@example.com"))
	require.NoError(t, err)

	found, err := f.svc.LookupByEmail(context.Background(), " jane@example.com ")
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestRegistrationService_ListAndExport(t *testing.T) {
	f := newRegistrationFixture()
	ctx := context.Background()

	paid, err := f.svc.Register(ctx, paidEvent.Slug, registration("jane@example.com"))
	require.NoError(t, err)
	_, err = f.svc.Register(ctx, paidEvent.Slug, registration("john@example.com"))
	require.NoError(t, err)
	_, err = f.svc.VerifyPayment(ctx, organizer, paid.ID)
	require.NoError(t, err)

	_, err = f.svc.ListParticipants(ctx, stranger, paidEvent.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	list, err := f.svc.ListParticipants(ctx, admin, paidEvent.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	name, data, err := f.svc.ExportParticipants(ctx, organizer, paidEvent.ID)
	require.NoError(t, err)
	assert.Equal(t, "go-workshop-ab12_participants.xlsx", name)

	book, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer book.Close()

	rows, err := book.GetRows("Sheet1")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Full Name", "Email", "Phone", "Institution", "Payment Status", "Registered At"}, rows[0])
	assert.Equal(t, "Paid", rows[1][4])
	assert.Equal(t, "Pending", rows[2][4])
	assert.Equal(t, "2025-03-02 10:00", rows[1][5])
}

func TestRegistrationService_BlastEmail(t *testing.T) {
	f := newRegistrationFixture()
	ctx := context.Background()

	sent, err := f.svc.BlastEmail(ctx, organizer, paidEvent.ID, "Reminder", "See you tomorrow")
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Empty(t, f.notifier.sent)

	for _, email := range []string{"a@example.com", "b@example.com", "A@example.com"} {
		_, err = f.svc.Register(ctx, paidEvent.Slug, registration(email))
		require.NoError(t, err)
	}

	_, err = f.svc.BlastEmail(ctx, admin, paidEvent.ID, "Reminder", "See you tomorrow")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.BlastEmail(ctx, organizer, paidEvent.ID, "", "body")
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = f.svc.BlastEmail(ctx, organizer, paidEvent.ID, "Reminder\r\nBcc: x@evil.test", "body")
	assert.ErrorIs(t, err, ErrValidationFailed)

	sent, err = f.svc.BlastEmail(ctx, organizer, paidEvent.ID, "Reminder", "See you tomorrow")
	require.NoError(t, err)
	assert.Equal(t, 2, sent)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, notify.KindEmail, f.notifier.sent[0].Kind)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, f.notifier.sent[0].Recipients)
}

func TestRegistrationService_MyRegistrations(t *testing.T) {
	f := newRegistrationFixture()

	_, err := f.svc.MyRegistrations(context.Background(), domain.User{})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = f.svc.Register(context.Background(), freeEvent.Slug, registration(attendee.Email))
	require.NoError(t, err)

	mine, err := f.svc.MyRegistrations(context.Background(), attendee)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, freeEvent.Title, mine[0].Event.Title)
}
